package ports

import (
	"context"
	"trip-planner-service/internal/domain"
)

// Distance and travel duration between two locations.
// Float metrics keep the Unreachable sentinel representable.
type DistanceResult struct {
	DistanceMeters  float64
	DurationSeconds float64
}

// Contract for retrieving travel distance and duration between two points.
type DistanceProvider interface {
	// Return travel distance and estimated duration between two coordinates.
	GetDistance(ctx context.Context, origin, destination domain.Coordinates) (DistanceResult, error)
}
