package ports

import (
	"context"
	"trip-planner-service/internal/domain"
)

// Contract for computing a full pairwise matrix for an ordered point list.
// Row i / column j of the result correspond to points[i] / points[j].
// Pairs that could not be computed carry domain.Unreachable.
type TravelMatrixProvider interface {
	Matrix(ctx context.Context, points []domain.Point) (domain.TravelMatrix, error)
}
