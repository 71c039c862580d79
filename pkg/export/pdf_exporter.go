package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// PDFExporter renders a Dataset as a landscape table. Column widths follow
// the same relative proportions as the spreadsheet renderer.
type PDFExporter struct {
	columnWidths []float64
}

// NewPDFExporter constructs a PDF exporter. columnWidths may be nil for
// equal columns.
func NewPDFExporter(columnWidths []float64) *PDFExporter {
	return &PDFExporter{columnWidths: columnWidths}
}

// Render creates the document with an optional title row.
func (e *PDFExporter) Render(data Dataset, title string) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()
	// Core fonts are latin-1; registry text is Cyrillic.
	tr := pdf.UnicodeTranslatorFromDescriptor("cp1251")

	widths := e.scaledWidths(len(data.Headers), 277.0)

	if title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, tr(title), "", 1, "C", false, 0, "")
		pdf.Ln(4)
	}

	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for i, header := range data.Headers {
		pdf.CellFormat(widths[i], 8, tr(header), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, row := range data.Rows {
		for i, header := range data.Headers {
			pdf.CellFormat(widths[i], 7, tr(row[header]), "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// scaledWidths maps the configured proportions onto the usable page width.
func (e *PDFExporter) scaledWidths(cols int, usable float64) []float64 {
	widths := make([]float64, cols)
	if len(e.columnWidths) != cols {
		for i := range widths {
			widths[i] = usable / float64(cols)
		}
		return widths
	}
	var total float64
	for _, w := range e.columnWidths {
		total += w
	}
	for i, w := range e.columnWidths {
		widths[i] = usable * w / total
	}
	return widths
}
