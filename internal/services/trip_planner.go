package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"trip-planner-service/internal/domain"
	"trip-planner-service/internal/metrics"
	"trip-planner-service/internal/platform/obs"
	"trip-planner-service/internal/ports"
	"trip-planner-service/internal/pricing"
)

const (
	topPlacesPerCategory = 3
	selectedAttractions  = 3
)

// TripPlanner runs the planning pipeline for a destination.
// Weather, Places and Writer are optional; Geocoder and Matrix are required.
type TripPlanner struct {
	Geocoder ports.Geocoder
	Weather  ports.WeatherProvider
	Places   ports.PlacesProvider
	Matrix   ports.TravelMatrixProvider
	Writer   ports.NarrativeWriter
	Pricing  *pricing.Model
	Options  ScheduleOptions
}

// Stage is one step of the pipeline. Stages receive a snapshot and return
// a new one; they never mutate their input.
type Stage struct {
	Name string
	Run  func(ctx context.Context, s domain.TripState) (domain.TripState, error)
}

func (p *TripPlanner) Stages() []Stage {
	return []Stage{
		{Name: "geocode", Run: p.geocode},
		{Name: "weather", Run: p.weather},
		{Name: "places", Run: p.places},
		{Name: "select", Run: selectPoints},
		{Name: "matrix", Run: p.matrix},
		{Name: "itinerary", Run: p.itinerary},
		{Name: "budget", Run: p.budget},
		{Name: "narrative", Run: p.narrative},
	}
}

// Plan normalizes req and runs every stage in order. The returned state is
// the last successful snapshot, so callers can inspect partial progress on
// error.
func (p *TripPlanner) Plan(ctx context.Context, req domain.TripRequest) (_ domain.TripState, err error) {
	defer obs.Time(ctx, "services.Plan")(&err)

	req = req.Normalize()
	if err := req.Validate(); err != nil {
		return domain.TripState{}, err
	}

	state := domain.NewTripState(req)
	for _, st := range p.Stages() {
		next, err := runStage(ctx, st, state)
		if err != nil {
			return state, fmt.Errorf("plan trip: %s: %w", st.Name, err)
		}
		state = next
	}

	return state, nil
}

func runStage(ctx context.Context, st Stage, s domain.TripState) (_ domain.TripState, err error) {
	defer obs.Time(ctx, "stage."+st.Name)(&err)
	return st.Run(ctx, s)
}

func (p *TripPlanner) geocode(ctx context.Context, s domain.TripState) (domain.TripState, error) {
	if p.Geocoder == nil {
		return s, domain.NewConfigurationError("geocoder", "no geocoder configured")
	}

	g, err := p.Geocoder.Geocode(ctx, s.Request.Destination)
	if err != nil {
		return s, err
	}
	return s.WithGeocode(g), nil
}

// weather is best effort: a failed forecast is logged and planning goes on.
func (p *TripPlanner) weather(ctx context.Context, s domain.TripState) (domain.TripState, error) {
	if p.Weather == nil || s.Geocode == nil {
		return s, nil
	}

	f, err := p.Weather.Forecast(ctx, s.Geocode.Lat, s.Geocode.Lon)
	if err != nil {
		if ctx.Err() != nil {
			return s, ctx.Err()
		}
		log.Printf("req_id=%s weather unavailable: %v", obs.RequestID(ctx), err)
		return s, nil
	}
	return s.WithWeather(f), nil
}

// places keeps the top results per category. A failing category is logged
// and left empty.
func (p *TripPlanner) places(ctx context.Context, s domain.TripState) (domain.TripState, error) {
	if p.Places == nil || s.Geocode == nil {
		return s.WithPlaces(domain.PlaceSet{}), nil
	}

	lat, lon := s.Geocode.Lat, s.Geocode.Lon
	fetch := func(name string, f func(context.Context, float64, float64) ([]domain.Place, error)) ([]domain.Place, error) {
		found, err := f(ctx, lat, lon)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Printf("req_id=%s places %s unavailable: %v", obs.RequestID(ctx), name, err)
			return []domain.Place{}, nil
		}
		return top(found, topPlacesPerCategory), nil
	}

	var set domain.PlaceSet
	var err error
	if set.Attractions, err = fetch("attractions", p.Places.Attractions); err != nil {
		return s, err
	}
	if set.Beaches, err = fetch("beaches", p.Places.Beaches); err != nil {
		return s, err
	}
	if set.Food, err = fetch("food", p.Places.Food); err != nil {
		return s, err
	}

	return s.WithPlaces(set), nil
}

func top(ps []domain.Place, n int) []domain.Place {
	if len(ps) > n {
		ps = ps[:n]
	}
	return append([]domain.Place{}, ps...)
}

// selectPoints picks what gets routed: the top attractions plus the first
// beach and food place. Places without usable coordinates are dropped.
func selectPoints(_ context.Context, s domain.TripState) (domain.TripState, error) {
	points := []domain.Point{}
	if s.Places == nil {
		return s.WithSelected(points), nil
	}

	add := func(ps []domain.Place, n int) {
		for _, pl := range ps {
			if n == 0 {
				return
			}
			pt := pl.Point()
			if pt.Name == "" || !pt.Coordinates().Valid() || (pt.Lat == 0 && pt.Lon == 0) {
				continue
			}
			points = append(points, pt)
			n--
		}
	}

	add(s.Places.Attractions, selectedAttractions)
	add(s.Places.Beaches, 1)
	add(s.Places.Food, 1)

	return s.WithSelected(points), nil
}

func (p *TripPlanner) matrix(ctx context.Context, s domain.TripState) (domain.TripState, error) {
	if len(s.Selected) == 0 {
		return s.WithMatrix(domain.NewTravelMatrix(nil, true)), nil
	}

	m, err := BuildTravelMatrix(ctx, s.Selected, p.Matrix)
	if err != nil {
		return s, err
	}
	return s.WithMatrix(m), nil
}

func (p *TripPlanner) itinerary(_ context.Context, s domain.TripState) (domain.TripState, error) {
	if s.Matrix == nil {
		return s, errors.New("itinerary: matrix stage has not run")
	}

	opts := p.Options
	opts.StartDate = s.Request.StartDate

	it, err := ScheduleItinerary(s.Selected, *s.Matrix, opts)
	if err != nil {
		return s, err
	}

	metrics.ItineraryDays.Observe(float64(len(it.Days)))
	for _, d := range it.Days {
		if d.Forced {
			metrics.ForcedDays.Inc()
		}
	}

	return s.WithItinerary(it), nil
}

func (p *TripPlanner) budget(_ context.Context, s domain.TripState) (domain.TripState, error) {
	model := p.Pricing
	if model == nil {
		model = pricing.Default()
	}

	req := pricing.EstimateRequest{
		Destination: s.Request.Destination,
		Days:        s.Request.Days,
		Persons:     s.Request.Persons,
		Tier:        s.Request.Tier,
		Mode:        pricing.ModeCity,
	}
	if s.Itinerary != nil {
		if meters := s.Itinerary.TotalDriveMeters(); meters > 0 {
			km := meters / 1000
			req.TransportKM = &km
		}
	}

	return s.WithBudget(model.Run(req, s.Request.BudgetINR)), nil
}

// narrative asks the writer for prose and falls back to a plain summary.
func (p *TripPlanner) narrative(ctx context.Context, s domain.TripState) (domain.TripState, error) {
	if p.Writer == nil {
		return s.WithNarrative(FormatItinerary(s)), nil
	}

	text, err := p.Writer.Write(ctx, BuildItineraryPrompt(s))
	if err != nil {
		if ctx.Err() != nil {
			return s, ctx.Err()
		}
		log.Printf("req_id=%s narrative writer failed, using summary: %v", obs.RequestID(ctx), err)
		return s.WithNarrative(FormatItinerary(s)), nil
	}
	return s.WithNarrative(text), nil
}
