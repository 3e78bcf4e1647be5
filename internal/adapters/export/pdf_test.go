package export

import (
	"bytes"
	"testing"
	"time"
	"trip-planner-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTripPDF(t *testing.T) {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	it := domain.Itinerary{Days: []domain.Day{
		{
			Number:    1,
			StartTime: start,
			Visits: []domain.Visit{
				{PlaceIndex: 1, Name: "Fort Aguada", ArrivalTime: start.Add(10 * time.Minute), DepartureTime: start.Add(70 * time.Minute), TravelSeconds: 600, DistanceMeters: 5000},
			},
			DriveSeconds: 600,
			DriveMeters:  5000,
		},
		{
			Number:    2,
			StartTime: start.AddDate(0, 0, 1),
			Visits: []domain.Visit{
				{PlaceIndex: 2, Name: "Island", ArrivalTime: start.AddDate(0, 0, 1), TravelSeconds: domain.Unreachable, DistanceMeters: domain.Unreachable, Forced: true},
			},
			Forced: true,
		},
	}}

	state := domain.NewTripState(domain.TripRequest{Destination: "Goa", Days: 2, Persons: 2, BudgetINR: 40000, Tier: "mid"}).
		WithGeocode(domain.GeoResult{DisplayName: "Goa, India"}).
		WithItinerary(it).
		WithBudget(domain.BudgetReport{
			Breakdown:  domain.BudgetBreakdown{Flight: 20000, TotalEstimated: 35000},
			Assessment: domain.BudgetAssessment{Advice: []string{"Your budget covers the estimated trip cost."}},
		}).
		WithNarrative("Day 1 — Morning: beach walk.\nEvening: café by the river.")

	b, name, err := TripPDF(domain.TripPlan{ID: "abc", CreatedAt: start, State: state})
	require.NoError(t, err)
	assert.Equal(t, "trip-abc.pdf", name)
	assert.True(t, bytes.HasPrefix(b, []byte("%PDF-")))
	assert.Greater(t, len(b), 1000)
}

func TestTripPDFMinimalState(t *testing.T) {
	b, _, err := TripPDF(domain.TripPlan{ID: "x", State: domain.NewTripState(domain.TripRequest{Destination: "Bali"})})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(b, []byte("%PDF-")))
}
