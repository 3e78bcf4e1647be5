package domain

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestTravelMatrixValidate(t *testing.T) {
	var cfgErr *ConfigurationError

	err := TravelMatrix{}.Validate(2)
	if !errors.As(err, &cfgErr) || cfgErr.Field != "duration_s" {
		t.Fatalf("missing duration_s: got %v", err)
	}

	m := TravelMatrix{DurationS: [][]float64{{0, 1}, {1}}}
	if err := m.Validate(2); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("ragged matrix: got %v", err)
	}

	m = TravelMatrix{
		DurationS: [][]float64{{0, 1}, {1, 0}},
		DistanceM: [][]float64{{0}},
	}
	if err := m.Validate(2); !errors.As(err, &cfgErr) || cfgErr.Field != "distance_m" {
		t.Fatalf("mis-shaped distance_m: got %v", err)
	}

	m.DistanceM = nil
	if err := m.Validate(2); err != nil {
		t.Fatalf("valid matrix: unexpected error %v", err)
	}
}

func TestTravelMatrixLookups(t *testing.T) {
	m := TravelMatrix{
		Names:     []string{"A", "B", "B"},
		DurationS: [][]float64{{5, 10, -1}, {10, 0, Unreachable}, {1, 2, 0}},
	}

	if got := m.Duration(0, 0); got != 0 {
		t.Fatalf("diagonal = %v, want 0", got)
	}
	if got := m.Duration(0, 1); got != 10 {
		t.Fatalf("Duration(0,1) = %v, want 10", got)
	}
	if !IsUnreachable(m.Duration(0, 2)) {
		t.Fatalf("negative entry should be unreachable")
	}
	if !IsUnreachable(m.Duration(0, 7)) {
		t.Fatalf("out of range entry should be unreachable")
	}
	if !IsUnreachable(m.Distance(0, 1)) {
		t.Fatalf("absent distance matrix should be unreachable")
	}
	if i, ok := m.IndexOf("B"); !ok || i != 1 {
		t.Fatalf("IndexOf(B) = %d,%v, want 1,true", i, ok)
	}
	if _, ok := m.IndexOf("Z"); ok {
		t.Fatalf("IndexOf(Z) should miss")
	}
}

func TestTravelMatrixCapsAbsurdDurations(t *testing.T) {
	m := TravelMatrix{DurationS: [][]float64{{0, MaxTravelSeconds, MaxTravelSeconds + 1}, {1e19, 0, 5}, {5, 5, 0}}}

	if got := m.Duration(0, 1); got != MaxTravelSeconds {
		t.Fatalf("Duration(0,1) = %v, want %v", got, MaxTravelSeconds)
	}
	if !IsUnreachable(m.Duration(0, 2)) {
		t.Fatalf("duration above the cap should be unreachable")
	}
	if !IsUnreachable(m.Duration(1, 0)) {
		t.Fatalf("1e19 seconds should be unreachable")
	}
}

func TestTravelMatrixJSONUsesNullForUnreachable(t *testing.T) {
	m := NewTravelMatrix([]string{"A", "B"}, false)
	m.DurationS[0][1] = 120

	b, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(b), `[[0,120],[null,0]]`) {
		t.Fatalf("unexpected encoding: %s", b)
	}
	if strings.Contains(string(b), "distance_m") {
		t.Fatalf("absent distance matrix should be omitted: %s", b)
	}

	var back TravelMatrix
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !IsUnreachable(back.DurationS[1][0]) {
		t.Fatalf("null cell should decode as unreachable, got %v", back.DurationS[1][0])
	}
	if back.DistanceM != nil {
		t.Fatalf("distance matrix should stay absent")
	}
}
