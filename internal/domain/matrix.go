package domain

import (
	"encoding/json"
	"math"
)

// Unreachable marks a missing or failed pairwise entry in a TravelMatrix.
var Unreachable = math.Inf(1)

// MaxTravelSeconds caps a single leg. Longer finite durations are provider
// garbage and are read as Unreachable.
const MaxTravelSeconds = 7 * 24 * 3600

// IsUnreachable treats +Inf, NaN and negative values as failed entries.
func IsUnreachable(v float64) bool {
	return math.IsInf(v, 0) || math.IsNaN(v) || v < 0
}

// TravelMatrix holds pairwise travel metrics indexed positionally with a point list.
//
// DurationS is required by the scheduler; a nil DurationS means "absent".
// DistanceM is optional and, when present, has the same shape.
// Names is informational and never authoritative for indexing.
type TravelMatrix struct {
	Names     []string    `json:"names"`
	DurationS [][]float64 `json:"duration_s"`
	DistanceM [][]float64 `json:"distance_m,omitempty"`
}

func (m TravelMatrix) Size() int { return len(m.DurationS) }

// Duration returns travel seconds from i to j. Out-of-range and sentinel
// entries are reported as Unreachable; the diagonal is always zero.
func (m TravelMatrix) Duration(i, j int) float64 {
	if i == j {
		return 0
	}
	d := cell(m.DurationS, i, j)
	if d > MaxTravelSeconds {
		return Unreachable
	}
	return d
}

// Distance returns meters from i to j, or Unreachable when DistanceM is absent.
func (m TravelMatrix) Distance(i, j int) float64 {
	if m.DistanceM == nil {
		return Unreachable
	}
	if i == j {
		return 0
	}
	return cell(m.DistanceM, i, j)
}

// IndexOf returns the first index whose name matches.
func (m TravelMatrix) IndexOf(name string) (int, bool) {
	for i, n := range m.Names {
		if n == name {
			return i, true
		}
	}
	return -1, false
}

// Validate checks that the matrix can be used with a point list of length n.
func (m TravelMatrix) Validate(n int) error {
	if m.DurationS == nil {
		return NewConfigurationError("duration_s", "matrix must contain pairwise durations in seconds")
	}
	if err := checkSquare("duration_s", m.DurationS, n); err != nil {
		return err
	}
	if m.DistanceM != nil {
		if err := checkSquare("distance_m", m.DistanceM, n); err != nil {
			return err
		}
	}
	return nil
}

func checkSquare(field string, rows [][]float64, n int) error {
	if len(rows) != n {
		return NewConfigurationError(field, "expected %d rows, got %d", n, len(rows))
	}
	for i, row := range rows {
		if len(row) != n {
			return NewConfigurationError(field, "row %d has %d columns, expected %d", i, len(row), n)
		}
	}
	return nil
}

func cell(rows [][]float64, i, j int) float64 {
	if i < 0 || i >= len(rows) || j < 0 || j >= len(rows[i]) {
		return Unreachable
	}
	v := rows[i][j]
	if IsUnreachable(v) {
		return Unreachable
	}
	return v
}

// NewTravelMatrix allocates an n x n matrix with a zero diagonal and every
// other cell set to Unreachable.
func NewTravelMatrix(names []string, withDistance bool) TravelMatrix {
	n := len(names)
	m := TravelMatrix{
		Names:     append([]string(nil), names...),
		DurationS: newSquare(n),
	}
	if withDistance {
		m.DistanceM = newSquare(n)
	}
	return m
}

func newSquare(n int) [][]float64 {
	rows := make([][]float64, n)
	for i := range rows {
		rows[i] = make([]float64, n)
		for j := range rows[i] {
			if i != j {
				rows[i][j] = Unreachable
			}
		}
	}
	return rows
}

type matrixJSON struct {
	Names     []string     `json:"names"`
	DurationS [][]*float64 `json:"duration_s"`
	DistanceM [][]*float64 `json:"distance_m,omitempty"`
}

// Unreachable cells are encoded as null, matching the ORS matrix format.
func (m TravelMatrix) MarshalJSON() ([]byte, error) {
	return json.Marshal(matrixJSON{
		Names:     m.Names,
		DurationS: toNullable(m.DurationS),
		DistanceM: toNullable(m.DistanceM),
	})
}

func (m *TravelMatrix) UnmarshalJSON(b []byte) error {
	var raw matrixJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*m = TravelMatrix{
		Names:     raw.Names,
		DurationS: FromNullable(raw.DurationS),
		DistanceM: FromNullable(raw.DistanceM),
	}
	return nil
}

func toNullable(rows [][]float64) [][]*float64 {
	if rows == nil {
		return nil
	}
	out := make([][]*float64, len(rows))
	for i, row := range rows {
		out[i] = make([]*float64, len(row))
		for j, v := range row {
			out[i][j] = finiteOrNil(v)
		}
	}
	return out
}

// FromNullable converts a JSON-style matrix with null cells into one using
// the Unreachable sentinel. A nil input stays nil (absent).
func FromNullable(rows [][]*float64) [][]float64 {
	if rows == nil {
		return nil
	}
	out := make([][]float64, len(rows))
	for i, row := range rows {
		out[i] = make([]float64, len(row))
		for j, p := range row {
			out[i][j] = nilOrUnreachable(p)
		}
	}
	return out
}
