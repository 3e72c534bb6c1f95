// Package export renders tabular datasets to downloadable formats.
package export

import "io"

// Dataset is a format-agnostic table. Rows index values by header name;
// missing cells render empty.
type Dataset struct {
	Title   string
	Headers []string
	Rows    []map[string]string
}

// Exporter writes a dataset to w in a single format.
type Exporter interface {
	Export(w io.Writer, ds *Dataset) error
	ContentType() string
	Extension() string
}
