package receipts

import (
	"io"
	"time"

	"github.com/go-pdf/fpdf"
)

// RenderPDF writes the receipt as an A4 PDF. issued pins the document dates so the same
// shipment always renders the same file.
func RenderPDF(w io.Writer, r Receipt, issued time.Time) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetTitle("Receipt "+r.TrackingNumber, true)
	pdf.SetCreationDate(issued)
	pdf.SetModificationDate(issued)
	pdf.SetCatalogSort(true)
	pdf.AddPage()

	pdf.SetFillColor(29, 78, 216)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 14, tr("Shipping Receipt"), "", 1, "L", true, 0, "")

	pdf.SetTextColor(31, 41, 55)
	pdf.Ln(4)
	pdf.SetFont("Courier", "B", 16)
	pdf.CellFormat(0, 9, tr(r.TrackingNumber), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, tr("Status: "+r.Status+"   Issued: "+r.IssuedOn), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	for _, b := range r.Blocks {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.SetFillColor(229, 231, 235)
		pdf.CellFormat(0, 7, tr(b.Title), "", 1, "L", true, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		for _, l := range b.Lines {
			pdf.CellFormat(55, 6, tr(l.Label), "", 0, "L", false, 0, "")
			pdf.MultiCell(0, 6, tr(l.Value), "", "L", false)
		}
		pdf.Ln(3)
	}

	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 10, tr("Total: "+r.Total), "T", 1, "R", false, 0, "")

	return pdf.Output(w)
}
