package services

import (
	"fmt"
	"strings"
	"trip-planner-service/internal/domain"
)

const promptWeatherDays = 2

// BuildItineraryPrompt compresses a planning snapshot into an LLM prompt:
// two days of weather, place names per category and the scheduled days.
func BuildItineraryPrompt(s domain.TripState) string {
	var b strings.Builder

	total := 0
	if s.Budget != nil {
		total = s.Budget.Breakdown.TotalEstimated
	}

	b.WriteString("You are an expert travel planner.\n\n")
	fmt.Fprintf(&b, "Destination: %s\n", s.Request.Destination)
	fmt.Fprintf(&b, "Days: %d\n", s.Request.Days)
	fmt.Fprintf(&b, "Travellers: %d\n", s.Request.Persons)
	fmt.Fprintf(&b, "Budget: INR %d (estimated), INR %d (available)\n\n", total, s.Request.BudgetINR)

	fmt.Fprintf(&b, "Weather (next %d days):\n", promptWeatherDays)
	if s.Weather == nil || len(s.Weather.Days) == 0 {
		b.WriteString("- unavailable\n")
	} else {
		for i, d := range s.Weather.Days {
			if i == promptWeatherDays {
				break
			}
			fmt.Fprintf(&b, "- %s: max %.1fC, min %.1fC, rain %.1fmm\n", d.Date, d.TempMaxC, d.TempMinC, d.RainMM)
		}
	}
	b.WriteString("\n")

	if s.Places != nil {
		fmt.Fprintf(&b, "Top Attractions: %s\n", placeNames(s.Places.Attractions))
		fmt.Fprintf(&b, "Top Beaches: %s\n", placeNames(s.Places.Beaches))
		fmt.Fprintf(&b, "Food Places: %s\n\n", placeNames(s.Places.Food))
	}

	b.WriteString("Travel Time (summary):\n")
	if s.Itinerary == nil || len(s.Itinerary.Days) == 0 {
		b.WriteString("- no routed stops\n")
	} else {
		for _, d := range s.Itinerary.Days {
			fmt.Fprintf(&b, "- %s\n", daySummary(d))
		}
	}

	b.WriteString(`
Write a clear, friendly, day-by-day itinerary:
- Morning / Afternoon / Evening plan
- Places to visit
- Food suggestions
- Short budget usage summary
`)

	return b.String()
}

func placeNames(ps []domain.Place) string {
	if len(ps) == 0 {
		return "none"
	}
	names := make([]string, 0, len(ps))
	for _, p := range ps {
		names = append(names, p.Name)
	}
	return strings.Join(names, ", ")
}

func daySummary(d domain.Day) string {
	stops := make([]string, 0, len(d.Visits))
	for _, v := range d.Visits {
		stops = append(stops, v.Name)
	}
	return fmt.Sprintf("Day %d: %s (drive %s)", d.Number, strings.Join(stops, " -> "), domain.FormatDuration(d.DriveSeconds))
}

// FormatItinerary renders a plain-text plan. It is the narrative when no
// writer is configured or the writer fails.
func FormatItinerary(s domain.TripState) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Trip to %s (%d days)\n", s.Request.Destination, s.Request.Days)

	if s.Itinerary == nil || len(s.Itinerary.Days) == 0 {
		b.WriteString("No routed stops were found.\n")
	} else {
		for _, d := range s.Itinerary.Days {
			fmt.Fprintf(&b, "\nDay %d (%s, starts %s)", d.Number, d.StartTime.Format("Mon 02 Jan"), d.StartTime.Format("15:04"))
			if d.Forced {
				b.WriteString(" [over drive budget]")
			}
			b.WriteString("\n")

			for _, v := range d.Visits {
				fmt.Fprintf(&b, "  %s-%s %s (travel %s)\n",
					v.ArrivalTime.Format("15:04"), v.DepartureTime.Format("15:04"), v.Name, v.TravelReadable())
			}
			fmt.Fprintf(&b, "  Drive: %s, %s\n", domain.FormatDuration(d.DriveSeconds), domain.FormatDistance(d.DriveMeters))
		}
	}

	if s.Budget != nil {
		a := s.Budget.Assessment
		fmt.Fprintf(&b, "\nEstimated cost: INR %d, budget INR %d\n", a.EstimatedTotal, a.BudgetProvided)
		for _, line := range a.Advice {
			b.WriteString(line + "\n")
		}
		for _, alt := range s.Budget.Alternatives {
			fmt.Fprintf(&b, "  %s: INR %d\n", alt.Destination, alt.EstimatedTotal)
		}
	}

	return b.String()
}
