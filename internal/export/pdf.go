package export

import (
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"

	"rimborsi/internal/core"
	"rimborsi/internal/ledger"
)

// PDF layout constants (A4 portrait, mm).
var pdfColumns = []struct {
	title string
	width float64
}{
	{"Date", 22},
	{"Name", 45},
	{"Counterparty", 32},
	{"Purpose", 43},
	{"Category", 28},
	{"Amount", 20},
}

const pdfRowHeight = 8

// WriteRecordsPDF renders the All view as a titled tabular document: one
// row per record, a bold total row at the end, and rows without a purpose
// highlighted. The caller fixes now so identical input yields identical
// bytes. Restricting the export to the All view is the caller's job.
func WriteRecordsPDF(out io.Writer, records []core.Record, title string, now time.Time) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	// Resource dictionaries are built from maps; sort them so identical
	// input yields identical bytes.
	pdf.SetCatalogSort(true)
	pdf.SetCreationDate(now)
	pdf.SetModificationDate(now)
	pdf.SetTitle(title, true)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	// Core fonts are cp1252; the translator maps UTF-8 (the € sign) onto it.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 10, tr(title), "", 1, "C", false, 0, "")
	pdf.Ln(2)

	writeHeader := func() {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetFillColor(230, 230, 230)
		for _, col := range pdfColumns {
			pdf.CellFormat(col.width, pdfRowHeight, col.title, "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
	}
	writeHeader()

	pdf.SetFont("Helvetica", "", 9)
	for _, r := range records {
		missingPurpose := r.Purpose == ""
		if missingPurpose {
			// Visual emphasis for records still lacking a justification.
			pdf.SetFillColor(255, 235, 205)
		}
		purpose := r.Purpose
		if missingPurpose {
			purpose = "Missing Purpose"
		}
		cells := []string{
			r.Date.String(),
			r.Name,
			r.Counterparty,
			purpose,
			string(r.Category),
			r.AmountOrZero().Currency(),
		}
		for i, col := range pdfColumns {
			align := "L"
			if i == len(pdfColumns)-1 {
				align = "R"
			}
			pdf.CellFormat(col.width, pdfRowHeight, tr(cells[i]), "1", 0, align, missingPurpose, 0, "")
		}
		pdf.Ln(-1)
	}

	// Bold total row summing all amounts.
	total := ledger.Total(records)
	pdf.SetFont("Helvetica", "B", 9)
	var labelWidth float64
	for _, col := range pdfColumns[:len(pdfColumns)-1] {
		labelWidth += col.width
	}
	pdf.CellFormat(labelWidth, pdfRowHeight, "Total", "1", 0, "R", false, 0, "")
	pdf.CellFormat(pdfColumns[len(pdfColumns)-1].width, pdfRowHeight, tr(total.Currency()), "1", 1, "R", false, 0, "")

	if err := pdf.Output(out); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}
