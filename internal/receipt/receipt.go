package receipt

import (
	"fmt"
	"io"
	"time"

	"github.com/phpdave11/gofpdf"

	"flightbooking/internal/model"
)

// Render writes a one-page PDF receipt for booking to w. The booking's Flight
// must be loaded.
func Render(w io.Writer, booking *model.Booking, holder *model.User) error {
	if booking.Flight == nil {
		return fmt.Errorf("booking %d has no flight loaded", booking.ID)
	}
	f := booking.Flight

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(fmt.Sprintf("Booking %d", booking.ID), true)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, tr(fmt.Sprintf("Booking receipt #%d", booking.ID)))
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 12)
	line := func(label, value string) {
		pdf.CellFormat(45, 8, tr(label), "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 8, tr(value), "", 1, "L", false, 0, "")
	}
	if holder != nil {
		line("Holder:", fmt.Sprintf("%s <%s>", holder.Name, holder.Email))
	}
	line("Airline:", f.Airline)
	line("Route:", fmt.Sprintf("%s - %s", f.Origin, f.Destination))
	line("Departure:", fmt.Sprintf("%s %s", f.Date, f.DepartureTime))
	line("Arrival:", f.ArrivalTime)
	line("Status:", string(booking.Status))
	line("Purchased:", booking.PurchaseDate.Format(time.RFC3339))
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(10, 8, "#", "1", 0, "C", false, 0, "")
	pdf.CellFormat(90, 8, "Passenger", "1", 0, "L", false, 0, "")
	pdf.CellFormat(0, 8, "Document", "1", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 12)
	for i, p := range booking.Passengers {
		pdf.CellFormat(10, 8, fmt.Sprint(i+1), "1", 0, "C", false, 0, "")
		pdf.CellFormat(90, 8, tr(p.FirstName+" "+p.LastName), "1", 0, "L", false, 0, "")
		pdf.CellFormat(0, 8, tr(p.DocumentNumber), "1", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 12)
	line("Passengers:", fmt.Sprint(booking.PassengerCount))
	line("Total:", booking.TotalPrice.StringFixed(2))

	return pdf.Output(w)
}
