package export

import (
	"encoding/csv"
	"fmt"
	"io"
)

type CSVExporter struct{}

func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

func (e *CSVExporter) Export(w io.Writer, ds *Dataset) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(ds.Headers); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	record := make([]string, len(ds.Headers))
	for _, row := range ds.Rows {
		for i, header := range ds.Headers {
			record[i] = row[header]
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func (e *CSVExporter) ContentType() string {
	return "text/csv"
}

func (e *CSVExporter) Extension() string {
	return "csv"
}
