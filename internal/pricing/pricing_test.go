package pricing

import (
	"os"
	"path/filepath"
	"testing"
	"trip-planner-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampleRange(t *testing.T) {
	assert.Equal(t, 24300, SampleRange(Range{18000, 32000}))
	assert.Equal(t, 1115, SampleRange(Range{800, 1500}))
	assert.Equal(t, 500, SampleRange(Range{500, 500}))
}

func TestEstimateDefaultTransport(t *testing.T) {
	b := Default().Estimate(EstimateRequest{Destination: "Vietnam", Days: 7, Persons: 1, Tier: "mid"})

	assert.Equal(t, domain.BudgetBreakdown{
		Destination:    "Vietnam",
		Days:           7,
		Persons:        1,
		Flight:         24300,
		Hotel:          17955,
		Meals:          6300,
		Sightseeing:    5600,
		LocalTransport: 4200,
		Contingency:    4668,
		TotalEstimated: 63023,
		TransportKM:    210,
	}, b)
}

func TestEstimateUnknownDestinationAndExplicitKM(t *testing.T) {
	km := 42.5
	b := Default().Estimate(EstimateRequest{Destination: "Goa", Days: 3, Persons: 2, Tier: "budget", TransportKM: &km})

	assert.Equal(t, 11400, b.Flight)
	assert.Equal(t, 3345, b.Hotel)
	assert.Equal(t, 2400, b.Meals)
	assert.Equal(t, 1800, b.Sightseeing)
	assert.Equal(t, 1062, b.LocalTransport)
	assert.Equal(t, 1600, b.Contingency)
	assert.Equal(t, 21607, b.TotalEstimated)
}

func TestEstimateRoomsAndFallbacks(t *testing.T) {
	m := Default()

	three := m.Estimate(EstimateRequest{Destination: "dubai", Days: 1, Persons: 3, Tier: "luxury"})
	// Unknown tier prices as mid; three travellers need two rooms.
	assert.Equal(t, 2565*2, three.Hotel)
	assert.Equal(t, 900*3, three.Meals)

	zeroDays := m.Estimate(EstimateRequest{Destination: "dubai", Days: 0, Persons: 1, Tier: "mid"})
	assert.Equal(t, 2565, zeroDays.Hotel)
	assert.Equal(t, 0, zeroDays.Meals)

	multi := m.Estimate(EstimateRequest{Destination: "Sri Lanka", Days: 2, Persons: 1, Tier: "mid", Mode: ModeMultiCity})
	assert.Equal(t, 160.0, multi.TransportKM)
	assert.Equal(t, 160*18, multi.LocalTransport)
	assert.Equal(t, 12150, multi.Flight)
}

func TestAssessFit(t *testing.T) {
	b := domain.BudgetBreakdown{TotalEstimated: 30000}

	ok := AssessFit(30000, b)
	assert.True(t, ok.Fits)
	assert.Equal(t, 0, ok.Difference)
	assert.Equal(t, []string{"Your budget covers the estimated trip cost."}, ok.Advice)

	short := AssessFit(25000, b)
	assert.False(t, short.Fits)
	assert.Equal(t, -5000, short.Difference)
	require.Len(t, short.Advice, 6)
	assert.Equal(t, "Options to fit budget:", short.Advice[1])
}

func TestSuggestAlternatives(t *testing.T) {
	m := Default()

	under := m.SuggestAlternatives(40000, 5, 1)
	assert.Equal(t, []domain.BudgetAlternative{
		{Destination: "domestic", EstimatedTotal: 33237},
		{Destination: "sri_lanka", EstimatedTotal: 39069},
	}, under)

	none := m.SuggestAlternatives(10000, 5, 1)
	assert.Equal(t, []domain.BudgetAlternative{
		{Destination: "sri_lanka", EstimatedTotal: 39069},
		{Destination: "thailand", EstimatedTotal: 44415},
		{Destination: "malaysia", EstimatedTotal: 49113},
	}, none)
}

func TestRunOnlySuggestsWhenShort(t *testing.T) {
	m := Default()
	req := EstimateRequest{Destination: "vietnam", Days: 7, Persons: 1, Tier: "mid"}

	fits := m.Run(req, 100000)
	assert.True(t, fits.Assessment.Fits)
	assert.Empty(t, fits.Alternatives)

	short := m.Run(req, 40000)
	assert.False(t, short.Assessment.Fits)
	assert.NotEmpty(t, short.Alternatives)
}

func TestLoadYAMLOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pricing.yaml")
	body := `
flights:
  "Sri Lanka": {lo: 10000, hi: 10000}
  goa: {lo: 4000, hi: 6000}
meals:
  mid: 1000
transport_per_km:
  goa: 12
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	m, err := LoadYAML(path)
	require.NoError(t, err)

	assert.Equal(t, Range{10000, 10000}, m.Flights["sri_lanka"])
	assert.Equal(t, 1000, m.Meals["mid"])
	assert.Equal(t, 400, m.Meals["budget"])

	b := m.Estimate(EstimateRequest{Destination: "Goa", Days: 1, Persons: 1, Tier: "mid"})
	assert.Equal(t, 4900, b.Flight)
	assert.Equal(t, 30*12, b.LocalTransport)
}

func TestLoadYAMLErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadYAML(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("hotels:\n  mid: {lo: 5000, hi: 10}\n"), 0o600))
	_, err = LoadYAML(bad)
	assert.Error(t, err)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "sri_lanka", Key("  Sri   Lanka "))
	assert.Equal(t, "bali", Key("BALI"))
}
