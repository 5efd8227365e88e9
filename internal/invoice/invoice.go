// Package invoice renders booking invoices as PDF documents.
package invoice

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
)

// Line is one row of the invoice table.
type Line struct {
	Description string
	Quantity    int
	UnitPrice   float64
	Amount      float64
}

// Data is everything printed on an invoice.
type Data struct {
	Number    string
	IssuedAt  time.Time
	Customer  string
	BookingID string
	Status    string
	StartDate time.Time
	EndDate   time.Time
	Lines     []Line
	Total     float64
	Currency  string
}

// Number derives a stable invoice number from the booking.
func Number(bookingID string, createdAt time.Time) string {
	short := bookingID
	if len(short) > 8 {
		short = short[:8]
	}
	return fmt.Sprintf("INV-%s-%s", createdAt.UTC().Format("20060102"), short)
}

// Renderer produces PDF invoices.
type Renderer struct {
	company string
}

// NewRenderer creates a Renderer printing company in the header.
func NewRenderer(company string) *Renderer {
	return &Renderer{company: company}
}

// Render lays out d on a single A4 page.
func (r *Renderer) Render(d Data) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(d.Number, true)
	pdf.SetCreator(r.company, true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(0, 12, r.company, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 6, "Invoice "+d.Number, "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Issued "+d.IssuedAt.UTC().Format("2006-01-02"), "", 1, "L", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(40, 6, "Customer", "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 6, d.Customer, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(40, 6, "Booking", "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("%s (%s)", d.BookingID, d.Status), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(40, 6, "Rental period", "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("%s to %s",
		d.StartDate.UTC().Format("2006-01-02 15:04"),
		d.EndDate.UTC().Format("2006-01-02 15:04"),
	), "", 1, "L", false, 0, "")
	pdf.Ln(8)

	widths := []float64{90, 25, 35, 40}
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range []string{"Description", "Days", "Unit price", "Amount"} {
		align := "R"
		if i == 0 {
			align = "L"
		}
		pdf.CellFormat(widths[i], 8, h, "1", 0, align, true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 11)
	for _, l := range d.Lines {
		pdf.CellFormat(widths[0], 8, l.Description, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 8, fmt.Sprintf("%d", l.Quantity), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[2], 8, money(l.UnitPrice, d.Currency), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 8, money(l.Amount, d.Currency), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(widths[0]+widths[1]+widths[2], 10, "Total", "1", 0, "R", false, 0, "")
	pdf.CellFormat(widths[3], 10, money(d.Total, d.Currency), "1", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render invoice %s: %w", d.Number, err)
	}
	return buf.Bytes(), nil
}

func money(amount float64, currency string) string {
	return fmt.Sprintf("%.2f %s", amount, currency)
}
