package distance

import (
	"context"
	"trip-planner-service/internal/domain"
)

// StaticMatrixProvider serves a precomputed matrix, looked up by point name.
// Used by the CLI schedule command and in tests.
type StaticMatrixProvider struct {
	m domain.TravelMatrix
}

func NewStaticMatrixProvider(m domain.TravelMatrix) *StaticMatrixProvider {
	return &StaticMatrixProvider{m: m}
}

// Matrix projects the stored matrix onto points. Names missing from the
// stored matrix produce unreachable rows and columns.
func (p *StaticMatrixProvider) Matrix(ctx context.Context, points []domain.Point) (domain.TravelMatrix, error) {
	if err := ctx.Err(); err != nil {
		return domain.TravelMatrix{}, err
	}

	names := make([]string, len(points))
	idx := make([]int, len(points))
	for i, pt := range points {
		names[i] = pt.Name
		k, ok := p.m.IndexOf(pt.Name)
		if !ok {
			k = -1
		}
		idx[i] = k
	}

	out := domain.NewTravelMatrix(names, p.m.DistanceM != nil)
	for i := range points {
		for j := range points {
			if i == j || idx[i] < 0 || idx[j] < 0 {
				continue
			}
			out.DurationS[i][j] = p.m.Duration(idx[i], idx[j])
			if out.DistanceM != nil {
				out.DistanceM[i][j] = p.m.Distance(idx[i], idx[j])
			}
		}
	}

	return out, nil
}
