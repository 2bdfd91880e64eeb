package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// PDFExporter renders datasets and certificates into PDF documents.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render creates a PDF document with an optional title and table body.
func (e *PDFExporter) Render(data Dataset, title string) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	if title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, strings.ToUpper(title), "", 1, "C", false, 0, "")
		pdf.Ln(5)
	}

	pdf.SetFont("Arial", "B", 10)
	colWidth := 190.0 / float64(len(data.Headers))
	for _, header := range data.Headers {
		pdf.CellFormat(colWidth, 8, header, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, row := range data.Rows {
		for _, header := range data.Headers {
			value := row[header]
			pdf.CellFormat(colWidth, 7, value, "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// Certificate holds the fields stamped onto a certificate document.
type Certificate struct {
	Kind       string
	FullName   string
	SchoolName string
	SchoolYear string
	IssuedOn   string
	Body       string
}

// RenderCertificate creates a landscape certificate PDF for the given fields.
func (e *PDFExporter) RenderCertificate(cert Certificate) ([]byte, error) {
	if cert.FullName == "" {
		return nil, fmt.Errorf("certificate requires a student name")
	}
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(25, 25, 25)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	pdf.SetLineWidth(1.2)
	pdf.Rect(12, 12, pageW-24, 186, "D")

	pdf.SetFont("Times", "B", 18)
	pdf.CellFormat(0, 12, cert.SchoolName, "", 1, "C", false, 0, "")

	pdf.SetFont("Times", "", 12)
	pdf.CellFormat(0, 8, fmt.Sprintf("School Year %s", cert.SchoolYear), "", 1, "C", false, 0, "")
	pdf.Ln(10)

	pdf.SetFont("Times", "B", 26)
	pdf.CellFormat(0, 14, strings.ToUpper(cert.Kind), "", 1, "C", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont("Times", "I", 13)
	pdf.CellFormat(0, 8, "is hereby awarded to", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Times", "B", 22)
	pdf.CellFormat(0, 12, cert.FullName, "", 1, "C", false, 0, "")
	pdf.Ln(6)

	if cert.Body != "" {
		pdf.SetFont("Times", "", 12)
		pdf.MultiCell(0, 7, cert.Body, "", "C", false)
		pdf.Ln(6)
	}

	pdf.SetFont("Times", "", 11)
	pdf.CellFormat(0, 8, fmt.Sprintf("Given this %s", cert.IssuedOn), "", 1, "C", false, 0, "")

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render certificate: %w", err)
	}
	return buf.Bytes(), nil
}
