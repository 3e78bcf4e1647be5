package ports

import (
	"context"
	"trip-planner-service/internal/domain"
)

// Resolves free-form destination text to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, query string) (domain.GeoResult, error)
}

// Fetches categorized points of interest around a location.
type PlacesProvider interface {
	Attractions(ctx context.Context, lat, lon float64) ([]domain.Place, error)
	Beaches(ctx context.Context, lat, lon float64) ([]domain.Place, error)
	Food(ctx context.Context, lat, lon float64) ([]domain.Place, error)
}

// Fetches a daily forecast for a location.
type WeatherProvider interface {
	Forecast(ctx context.Context, lat, lon float64) (domain.Forecast, error)
}

// Turns an assembled prompt into a human-readable itinerary.
type NarrativeWriter interface {
	Write(ctx context.Context, prompt string) (string, error)
}

// Reports whether a backing store is reachable. *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}
