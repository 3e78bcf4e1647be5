package export

import (
	"bytes"
	"fmt"
	"strings"
	"trip-planner-service/internal/domain"

	"github.com/phpdave11/gofpdf"
)

// TripPDF renders a stored plan as an A4 document and returns the bytes with
// a suggested filename.
func TripPDF(plan domain.TripPlan) ([]byte, string, error) {
	s := plan.State
	req := s.Request

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Trip plan: "+tr(req.Destination), false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, tr("TRIP PLAN: "+strings.ToUpper(req.Destination)))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	lines := []string{
		fmt.Sprintf("Plan ID   : %s", plan.ID),
		fmt.Sprintf("Created   : %s", plan.CreatedAt.Format("2006-01-02 15:04")),
		fmt.Sprintf("Days      : %d", req.Days),
		fmt.Sprintf("Travellers: %d", req.Persons),
		fmt.Sprintf("Budget    : INR %d (%s tier)", req.BudgetINR, req.Tier),
	}
	if s.Geocode != nil {
		lines = append(lines, "Location  : "+s.Geocode.DisplayName)
	}
	for _, l := range lines {
		pdf.Cell(0, 6, tr(l))
		pdf.Ln(6)
	}
	pdf.Ln(4)

	if s.Itinerary != nil {
		writeItinerary(pdf, tr, *s.Itinerary)
	}

	if s.Budget != nil {
		writeBudget(pdf, tr, *s.Budget)
	}

	if s.Narrative != "" {
		pdf.SetFont("Helvetica", "B", 13)
		pdf.Cell(0, 8, "Suggested plan")
		pdf.Ln(9)
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 5, tr(s.Narrative), "", "", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", fmt.Errorf("render trip pdf: %w", err)
	}

	return buf.Bytes(), fmt.Sprintf("trip-%s.pdf", plan.ID), nil
}

func writeItinerary(pdf *gofpdf.Fpdf, tr func(string) string, it domain.Itinerary) {
	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, "Itinerary")
	pdf.Ln(9)

	for _, day := range it.Days {
		pdf.SetFont("Helvetica", "B", 11)
		header := fmt.Sprintf("Day %d - %s", day.Number, day.StartTime.Format("Mon 02 Jan"))
		if day.Forced {
			header += " (over drive budget)"
		}
		pdf.Cell(0, 7, tr(header))
		pdf.Ln(7)

		pdf.SetFont("Helvetica", "", 10)
		for _, v := range day.Visits {
			travel := "unreachable"
			if !v.Unreachable() {
				travel = v.TravelReadable() + " travel"
			}
			line := fmt.Sprintf("  %s - %s  %s (%s)",
				v.ArrivalTime.Format("15:04"), v.DepartureTime.Format("15:04"), v.Name, travel)
			pdf.Cell(0, 6, tr(line))
			pdf.Ln(6)
		}
		pdf.Cell(0, 6, fmt.Sprintf("  Drive: %s, %s",
			domain.FormatDuration(day.DriveSeconds), domain.FormatDistance(day.DriveMeters)))
		pdf.Ln(8)
	}
}

func writeBudget(pdf *gofpdf.Fpdf, tr func(string) string, b domain.BudgetReport) {
	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, "Budget")
	pdf.Ln(9)

	bd := b.Breakdown
	rows := []struct {
		label string
		value int
	}{
		{"Flights", bd.Flight},
		{"Hotel", bd.Hotel},
		{"Meals", bd.Meals},
		{"Sightseeing", bd.Sightseeing},
		{"Local transport", bd.LocalTransport},
		{"Contingency", bd.Contingency},
	}

	pdf.SetFont("Helvetica", "", 10)
	for _, r := range rows {
		pdf.CellFormat(60, 6, r.label, "", 0, "", false, 0, "")
		pdf.CellFormat(40, 6, fmt.Sprintf("INR %d", r.value), "", 1, "R", false, 0, "")
	}

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(60, 7, "Estimated total", "T", 0, "", false, 0, "")
	pdf.CellFormat(40, 7, fmt.Sprintf("INR %d", bd.TotalEstimated), "T", 1, "R", false, 0, "")
	pdf.Ln(3)

	pdf.SetFont("Helvetica", "I", 10)
	for _, a := range b.Assessment.Advice {
		pdf.MultiCell(0, 5, tr(a), "", "", false)
	}
	pdf.Ln(4)
}
