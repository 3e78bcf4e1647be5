package services

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"
	"trip-planner-service/internal/domain"
)

type fakeGeocoder struct{ err error }

func (f fakeGeocoder) Geocode(_ context.Context, q string) (domain.GeoResult, error) {
	if f.err != nil {
		return domain.GeoResult{}, f.err
	}
	return domain.GeoResult{Query: strings.ToLower(q), DisplayName: q + ", India", Lat: 15.3, Lon: 74.1}, nil
}

type fakeWeather struct{ err error }

func (f fakeWeather) Forecast(context.Context, float64, float64) (domain.Forecast, error) {
	if f.err != nil {
		return domain.Forecast{}, f.err
	}
	return domain.Forecast{Days: []domain.ForecastDay{
		{Date: "2026-03-02", TempMaxC: 32, TempMinC: 24, RainMM: 0},
		{Date: "2026-03-03", TempMaxC: 31, TempMinC: 23, RainMM: 1.5},
		{Date: "2026-03-04", TempMaxC: 30, TempMinC: 23, RainMM: 8},
	}}, nil
}

type fakePlaces struct {
	attractions, beaches, food []domain.Place
	beachErr                   error
}

func (f fakePlaces) Attractions(context.Context, float64, float64) ([]domain.Place, error) {
	return f.attractions, nil
}

func (f fakePlaces) Beaches(context.Context, float64, float64) ([]domain.Place, error) {
	return f.beaches, f.beachErr
}

func (f fakePlaces) Food(context.Context, float64, float64) ([]domain.Place, error) {
	return f.food, nil
}

// fakeMatrix returns 600s / 5000m between distinct points and a nonzero
// diagonal that BuildTravelMatrix must overwrite.
type fakeMatrix struct {
	calls int
	rows  int
}

func (f *fakeMatrix) Matrix(_ context.Context, points []domain.Point) (domain.TravelMatrix, error) {
	f.calls++
	n := len(points)
	if f.rows > 0 {
		n = f.rows
	}
	m := domain.TravelMatrix{DurationS: make([][]float64, n), DistanceM: make([][]float64, n)}
	for i := 0; i < n; i++ {
		m.DurationS[i] = make([]float64, n)
		m.DistanceM[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			m.DurationS[i][j] = 600
			m.DistanceM[i][j] = 5000
		}
	}
	return m, nil
}

type fakeWriter struct {
	prompt string
	err    error
}

func (f *fakeWriter) Write(_ context.Context, prompt string) (string, error) {
	f.prompt = prompt
	if f.err != nil {
		return "", f.err
	}
	return "A lovely two days in Goa.", nil
}

func place(name string, lat, lon float64) domain.Place {
	return domain.Place{Name: name, Lat: lat, Lon: lon}
}

func goaPlaces() fakePlaces {
	return fakePlaces{
		attractions: []domain.Place{
			place("Fort Aguada", 15.49, 73.77),
			place("Null Island", 0, 0),
			place("Basilica", 15.50, 73.91),
			place("Spice Farm", 15.40, 74.01),
		},
		beaches: []domain.Place{place("Baga Beach", 15.55, 73.75), place("Calangute", 15.54, 73.76)},
		food:    []domain.Place{place("Fisherman's Wharf", 15.24, 73.93)},
	}
}

func newTestPlanner(w *fakeWriter) (*TripPlanner, *fakeMatrix) {
	m := &fakeMatrix{}
	p := &TripPlanner{
		Geocoder: fakeGeocoder{},
		Weather:  fakeWeather{},
		Places:   goaPlaces(),
		Matrix:   m,
		Options:  DefaultScheduleOptions(),
	}
	if w != nil {
		p.Writer = w
	}
	return p, m
}

func TestTripPlannerPlanRunsAllStages(t *testing.T) {
	w := &fakeWriter{}
	p, m := newTestPlanner(w)

	s, err := p.Plan(context.Background(), domain.TripRequest{Destination: " Goa ", Days: 2, StartDate: anchor})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if s.Geocode == nil || s.Geocode.DisplayName != "Goa, India" {
		t.Fatalf("geocode = %+v", s.Geocode)
	}
	if s.Weather == nil || len(s.Weather.Days) != 3 {
		t.Fatalf("weather = %+v", s.Weather)
	}
	if got := len(s.Places.Attractions); got != 3 {
		t.Fatalf("expected top 3 attractions, got %d", got)
	}

	wantSelected := []string{"Fort Aguada", "Basilica", "Baga Beach", "Fisherman's Wharf"}
	if len(s.Selected) != len(wantSelected) {
		t.Fatalf("selected = %+v", s.Selected)
	}
	for i, name := range wantSelected {
		if s.Selected[i].Name != name {
			t.Errorf("selected[%d] = %q, want %q", i, s.Selected[i].Name, name)
		}
	}

	if m.calls != 1 {
		t.Fatalf("expected 1 matrix call, got %d", m.calls)
	}
	if s.Matrix.Duration(2, 2) != 0 {
		t.Fatalf("diagonal not forced to zero: %v", s.Matrix.DurationS[2][2])
	}

	it := s.Itinerary
	if it == nil || len(it.Days) != 1 || len(it.Days[0].Visits) != 4 {
		t.Fatalf("itinerary = %+v", it)
	}
	if want := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC); !it.Days[0].StartTime.Equal(want) {
		t.Fatalf("day start = %v, want %v", it.Days[0].StartTime, want)
	}
	if it.TotalDriveMeters() != 15000 {
		t.Fatalf("drive meters = %v, want 15000", it.TotalDriveMeters())
	}

	b := s.Budget
	if b == nil {
		t.Fatal("missing budget")
	}
	if b.Breakdown.TransportKM != 15 || b.Breakdown.LocalTransport != 375 {
		t.Fatalf("transport = %v km / %d INR", b.Breakdown.TransportKM, b.Breakdown.LocalTransport)
	}
	if b.Breakdown.TotalEstimated != 15773 || !b.Assessment.Fits {
		t.Fatalf("budget = %+v", b)
	}
	if len(b.Alternatives) != 0 {
		t.Fatalf("expected no alternatives, got %+v", b.Alternatives)
	}

	if s.Narrative != "A lovely two days in Goa." {
		t.Fatalf("narrative = %q", s.Narrative)
	}
	for _, want := range []string{"Destination: Goa", "2026-03-03", "Top Attractions: Fort Aguada, Null Island, Basilica", "Day 1: Fort Aguada -> Basilica"} {
		if !strings.Contains(w.prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, w.prompt)
		}
	}
	if strings.Contains(w.prompt, "2026-03-04") {
		t.Errorf("prompt should only carry two weather days")
	}
}

func TestTripPlannerFallsBackToSummary(t *testing.T) {
	for name, w := range map[string]*fakeWriter{"no writer": nil, "writer fails": {err: errors.New("quota")}} {
		t.Run(name, func(t *testing.T) {
			p, _ := newTestPlanner(w)

			s, err := p.Plan(context.Background(), domain.TripRequest{Destination: "Goa", Days: 2, StartDate: anchor})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !strings.HasPrefix(s.Narrative, "Trip to Goa (2 days)") {
				t.Fatalf("narrative = %q", s.Narrative)
			}
			if !strings.Contains(s.Narrative, "09:00-10:00 Fort Aguada (travel 0s)") {
				t.Fatalf("narrative missing first visit:\n%s", s.Narrative)
			}
		})
	}
}

func TestTripPlannerGeocodeFailureStops(t *testing.T) {
	p, m := newTestPlanner(nil)
	p.Geocoder = fakeGeocoder{err: domain.ErrNotFound}

	_, err := p.Plan(context.Background(), domain.TripRequest{Destination: "Atlantis"})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if !strings.Contains(err.Error(), "geocode") {
		t.Fatalf("error should name the stage: %v", err)
	}
	if m.calls != 0 {
		t.Fatalf("matrix should not be called")
	}
}

func TestTripPlannerDegradesOptionalStages(t *testing.T) {
	p, _ := newTestPlanner(nil)
	p.Weather = fakeWeather{err: errors.New("timeout")}
	places := goaPlaces()
	places.beachErr = errors.New("bad gateway")
	p.Places = places

	s, err := p.Plan(context.Background(), domain.TripRequest{Destination: "Goa", StartDate: anchor})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Weather != nil {
		t.Fatalf("expected no weather, got %+v", s.Weather)
	}
	if len(s.Places.Beaches) != 0 || len(s.Selected) != 3 {
		t.Fatalf("places = %+v selected = %+v", s.Places, s.Selected)
	}
}

func TestTripPlannerNoPlacesGivesEmptyItinerary(t *testing.T) {
	p, m := newTestPlanner(nil)
	p.Places = nil

	s, err := p.Plan(context.Background(), domain.TripRequest{Destination: "Goa", StartDate: anchor})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.calls != 0 {
		t.Fatalf("matrix should not be called for an empty selection")
	}
	if s.Itinerary == nil || len(s.Itinerary.Days) != 0 {
		t.Fatalf("itinerary = %+v", s.Itinerary)
	}
	// Without routed stops the pricing default of 30 km/day applies.
	if s.Budget.Breakdown.TransportKM != 150 {
		t.Fatalf("transport km = %v", s.Budget.Breakdown.TransportKM)
	}
}

func TestTripPlannerRejectsEmptyDestination(t *testing.T) {
	p, _ := newTestPlanner(nil)
	if _, err := p.Plan(context.Background(), domain.TripRequest{Destination: "  "}); err == nil {
		t.Fatal("expected error")
	}
}

func TestBuildTravelMatrix(t *testing.T) {
	ctx := context.Background()

	m, err := BuildTravelMatrix(ctx, nil, nil)
	if err != nil || m.Size() != 0 {
		t.Fatalf("empty input: m=%+v err=%v", m, err)
	}

	points := []domain.Point{{Name: "A", Lat: 1, Lon: 1}, {Name: "B", Lat: 2, Lon: 2}}
	m, err = BuildTravelMatrix(ctx, points, &fakeMatrix{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Names[1] != "B" || m.DurationS[0][0] != 0 || m.DistanceM[1][1] != 0 || m.DurationS[0][1] != 600 {
		t.Fatalf("matrix = %+v", m)
	}

	cases := map[string]struct {
		points   []domain.Point
		provider *fakeMatrix
	}{
		"empty name":   {[]domain.Point{{Name: " ", Lat: 1, Lon: 1}}, &fakeMatrix{}},
		"nan lat":      {[]domain.Point{{Name: "A", Lat: math.NaN(), Lon: 1}}, &fakeMatrix{}},
		"inf lon":      {[]domain.Point{{Name: "A", Lat: 1, Lon: math.Inf(1)}}, &fakeMatrix{}},
		"wrong shape":  {points, &fakeMatrix{rows: 3}},
		"nil provider": {points, nil},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			var err error
			if tc.provider == nil {
				_, err = BuildTravelMatrix(ctx, tc.points, nil)
			} else {
				_, err = BuildTravelMatrix(ctx, tc.points, tc.provider)
			}
			if !errors.Is(err, domain.ErrConfiguration) {
				t.Fatalf("expected configuration error, got %v", err)
			}
		})
	}
}
