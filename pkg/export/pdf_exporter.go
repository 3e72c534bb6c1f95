package export

import (
	"io"

	"github.com/jung-kurt/gofpdf"
)

type PDFExporter struct{}

func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

func (e *PDFExporter) Export(w io.Writer, ds *Dataset) error {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	if ds.Title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, ds.Title, "", 1, "C", false, 0, "")
		pdf.Ln(2)
	}

	pageWidth, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	usable := pageWidth - left - right

	colWidth := usable
	if len(ds.Headers) > 0 {
		colWidth = usable / float64(len(ds.Headers))
	}

	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for _, header := range ds.Headers {
		pdf.CellFormat(colWidth, 8, header, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 8)
	for _, row := range ds.Rows {
		for _, header := range ds.Headers {
			pdf.CellFormat(colWidth, 7, row[header], "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	return pdf.Output(w)
}

func (e *PDFExporter) ContentType() string {
	return "application/pdf"
}

func (e *PDFExporter) Extension() string {
	return "pdf"
}
