package services

import (
	"context"
	"fmt"
	"math"
	"strings"
	"trip-planner-service/internal/domain"
	"trip-planner-service/internal/platform/obs"
	"trip-planner-service/internal/ports"
)

// BuildTravelMatrix asks provider for the pairwise matrix of points and
// checks the result before it reaches the scheduler.
func BuildTravelMatrix(
	ctx context.Context,
	points []domain.Point,
	provider ports.TravelMatrixProvider,
) (_ domain.TravelMatrix, err error) {
	defer obs.Time(ctx, "services.BuildTravelMatrix")(&err)

	names := make([]string, len(points))
	for i, p := range points {
		if strings.TrimSpace(p.Name) == "" {
			return domain.TravelMatrix{}, fmt.Errorf("build travel matrix: point %d: %w",
				i, domain.NewConfigurationError("name", "must be non-empty"))
		}
		if !finiteCoord(p.Lat) || !finiteCoord(p.Lon) {
			return domain.TravelMatrix{}, fmt.Errorf("build travel matrix: point %q: %w",
				p.Name, domain.NewConfigurationError("lat/lon", "must be finite numbers"))
		}
		names[i] = p.Name
	}

	if len(points) == 0 {
		return domain.NewTravelMatrix(nil, true), nil
	}

	if provider == nil {
		return domain.TravelMatrix{}, fmt.Errorf("build travel matrix: %w",
			domain.NewConfigurationError("matrix_provider", "no provider configured"))
	}

	m, err := provider.Matrix(ctx, points)
	if err != nil {
		return domain.TravelMatrix{}, fmt.Errorf("build travel matrix: %w", err)
	}

	if err := m.Validate(len(points)); err != nil {
		return domain.TravelMatrix{}, fmt.Errorf("build travel matrix: provider result: %w", err)
	}

	m.Names = names
	for i := range points {
		m.DurationS[i][i] = 0
		if m.DistanceM != nil {
			m.DistanceM[i][i] = 0
		}
	}

	return m, nil
}

func finiteCoord(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
