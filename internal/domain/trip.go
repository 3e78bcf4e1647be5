package domain

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
)

const (
	DefaultTripDays   = 5
	DefaultPersons    = 1
	DefaultBudgetINR  = 30000
	DefaultBudgetTier = "mid"
)

// TripRequest is the user input that seeds a planning run.
type TripRequest struct {
	Destination string    `json:"destination"`
	Days        int       `json:"days"`
	Persons     int       `json:"persons"`
	BudgetINR   int       `json:"budget_inr"`
	Tier        string    `json:"budget_tier"`
	StartDate   time.Time `json:"start_date"`
}

// Normalize trims input and fills zero values with defaults.
func (r TripRequest) Normalize() TripRequest {
	r.Destination = strings.TrimSpace(r.Destination)
	r.Tier = strings.ToLower(strings.TrimSpace(r.Tier))
	if r.Days == 0 {
		r.Days = DefaultTripDays
	}
	if r.Persons == 0 {
		r.Persons = DefaultPersons
	}
	if r.BudgetINR == 0 {
		r.BudgetINR = DefaultBudgetINR
	}
	if r.Tier == "" {
		r.Tier = DefaultBudgetTier
	}
	return r
}

func (r TripRequest) Validate() error {
	if strings.TrimSpace(r.Destination) == "" {
		return errors.New("trip request: destination must be non-empty")
	}
	if r.Days < 0 || r.Persons < 0 || r.BudgetINR < 0 {
		return errors.New("trip request: days, persons and budget must not be negative")
	}
	return nil
}

// GeoResult is a resolved destination.
type GeoResult struct {
	Query       string  `json:"query"`
	DisplayName string  `json:"display_name"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
}

func (g GeoResult) Coordinates() Coordinates { return Coordinates{Lon: g.Lon, Lat: g.Lat} }

type ForecastDay struct {
	Date     string  `json:"date"`
	TempMaxC float64 `json:"temp_max_c"`
	TempMinC float64 `json:"temp_min_c"`
	RainMM   float64 `json:"rain_mm"`
}

type Forecast struct {
	Days []ForecastDay `json:"days"`
}

// Place is a point of interest returned by a places provider.
type Place struct {
	ID         string   `json:"place_id"`
	Name       string   `json:"name"`
	Formatted  string   `json:"formatted"`
	Lat        float64  `json:"lat"`
	Lon        float64  `json:"lon"`
	Categories []string `json:"categories"`
}

func (p Place) Point() Point { return Point{Name: p.Name, Lat: p.Lat, Lon: p.Lon} }

type PlaceSet struct {
	Attractions []Place `json:"attractions"`
	Beaches     []Place `json:"beaches"`
	Food        []Place `json:"food"`
}

type BudgetBreakdown struct {
	Destination    string  `json:"destination"`
	Days           int     `json:"days"`
	Persons        int     `json:"persons"`
	Flight         int     `json:"flight"`
	Hotel          int     `json:"hotel"`
	Meals          int     `json:"meals"`
	Sightseeing    int     `json:"sightseeing"`
	LocalTransport int     `json:"local_transport"`
	Contingency    int     `json:"contingency"`
	TotalEstimated int     `json:"total_estimated"`
	TransportKM    float64 `json:"transport_km"`
}

type BudgetAssessment struct {
	BudgetProvided int      `json:"budget_provided"`
	EstimatedTotal int      `json:"estimated_total"`
	Difference     int      `json:"difference"`
	Fits           bool     `json:"fits"`
	Advice         []string `json:"advice"`
}

type BudgetAlternative struct {
	Destination    string `json:"destination"`
	EstimatedTotal int    `json:"estimated_total"`
}

type BudgetReport struct {
	Breakdown    BudgetBreakdown     `json:"breakdown"`
	Assessment   BudgetAssessment    `json:"assessment"`
	Alternatives []BudgetAlternative `json:"alternatives"`
}

// TripState is an immutable snapshot of a planning run. Pipeline stages
// receive a snapshot and return a new one through the With* methods, which
// copy rather than mutate.
type TripState struct {
	Request   TripRequest   `json:"request"`
	Geocode   *GeoResult    `json:"geocode,omitempty"`
	Weather   *Forecast     `json:"weather,omitempty"`
	Places    *PlaceSet     `json:"places,omitempty"`
	Selected  []Point       `json:"selected,omitempty"`
	Matrix    *TravelMatrix `json:"matrix,omitempty"`
	Itinerary *Itinerary    `json:"itinerary,omitempty"`
	Budget    *BudgetReport `json:"budget,omitempty"`
	Narrative string        `json:"narrative,omitempty"`
}

func NewTripState(req TripRequest) TripState { return TripState{Request: req} }

func (s TripState) WithGeocode(g GeoResult) TripState {
	s.Geocode = &g
	return s
}

func (s TripState) WithWeather(f Forecast) TripState {
	f.Days = append([]ForecastDay(nil), f.Days...)
	s.Weather = &f
	return s
}

func (s TripState) WithPlaces(p PlaceSet) TripState {
	s.Places = &p
	return s
}

func (s TripState) WithSelected(points []Point) TripState {
	s.Selected = append([]Point(nil), points...)
	return s
}

func (s TripState) WithMatrix(m TravelMatrix) TripState {
	s.Matrix = &m
	return s
}

func (s TripState) WithItinerary(it Itinerary) TripState {
	s.Itinerary = &it
	return s
}

func (s TripState) WithBudget(b BudgetReport) TripState {
	s.Budget = &b
	return s
}

func (s TripState) WithNarrative(text string) TripState {
	s.Narrative = text
	return s
}

// TripPlan is a persisted planning result.
type TripPlan struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	State     TripState `json:"state"`
}

type itineraryJSON struct {
	Days []Day `json:"days"`
}

func (it Itinerary) MarshalJSON() ([]byte, error) {
	days := it.Days
	if days == nil {
		days = []Day{}
	}
	return json.Marshal(itineraryJSON{Days: days})
}

func (it *Itinerary) UnmarshalJSON(b []byte) error {
	var raw itineraryJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	it.Days = raw.Days
	return nil
}
