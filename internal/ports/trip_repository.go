package ports

import (
	"context"
	"trip-planner-service/internal/domain"
)

// Port: a boundary for persisting planned trips.
type TripRepository interface {
	Save(ctx context.Context, plan domain.TripPlan) error
	// Return domain.ErrTripNotFound when no plan has the given id.
	Get(ctx context.Context, id string) (domain.TripPlan, error)
	// Return up to limit plans, newest first.
	List(ctx context.Context, limit int) ([]domain.TripPlan, error)
}
