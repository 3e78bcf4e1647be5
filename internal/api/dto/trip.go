package dto

import (
	"time"
	"trip-planner-service/internal/domain"
)

type TripRequest struct {
	Destination string `json:"destination"`
	Days        int    `json:"days"`
	Persons     int    `json:"persons"`
	BudgetINR   int    `json:"budget_inr"`
	Tier        string `json:"budget_tier"`
	// YYYY-MM-DD
	StartDate *string `json:"start_date"`
}

type TripResponse struct {
	ID        string               `json:"id"`
	CreatedAt time.Time            `json:"created_at"`
	Request   domain.TripRequest   `json:"request"`
	Geocode   *domain.GeoResult    `json:"geocode"`
	Weather   *domain.Forecast     `json:"weather"`
	Places    *domain.PlaceSet     `json:"places"`
	Itinerary *ItineraryResponse   `json:"itinerary"`
	Budget    *domain.BudgetReport `json:"budget"`
	Narrative string               `json:"narrative"`
}

type TripSummaryResponse struct {
	ID             string    `json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	Destination    string    `json:"destination"`
	Days           int       `json:"days"`
	EstimatedTotal int       `json:"estimated_total"`
	Fits           bool      `json:"fits"`
}

type ListTripsResponse struct {
	Trips []TripSummaryResponse `json:"trips"`
}

func NewTripResponse(p domain.TripPlan) TripResponse {
	s := p.State
	res := TripResponse{
		ID:        p.ID,
		CreatedAt: p.CreatedAt,
		Request:   s.Request,
		Geocode:   s.Geocode,
		Weather:   s.Weather,
		Places:    s.Places,
		Budget:    s.Budget,
		Narrative: s.Narrative,
	}
	if s.Itinerary != nil {
		it := NewItineraryResponse(*s.Itinerary)
		res.Itinerary = &it
	}
	return res
}

func NewTripSummary(p domain.TripPlan) TripSummaryResponse {
	res := TripSummaryResponse{
		ID:          p.ID,
		CreatedAt:   p.CreatedAt,
		Destination: p.State.Request.Destination,
		Days:        p.State.Request.Days,
	}
	if b := p.State.Budget; b != nil {
		res.EstimatedTotal = b.Breakdown.TotalEstimated
		res.Fits = b.Assessment.Fits
	}
	return res
}
