package pricing

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Range is an inclusive INR price range.
type Range struct {
	Lo int `yaml:"lo"`
	Hi int `yaml:"hi"`
}

// SampleRange returns a representative value from r, skewed slightly below
// the midpoint to stay conservative.
func SampleRange(r Range) int {
	return int(float64(r.Lo) + float64(r.Hi-r.Lo)*0.45)
}

// Model holds the pricing tables. All values are INR.
type Model struct {
	// Round-trip flight per person, by region.
	Flights map[string]Range `yaml:"flights"`
	// Per room per night, by tier.
	Hotels map[string]Range `yaml:"hotels"`
	// Per person per day, by tier.
	Meals map[string]int `yaml:"meals"`
	// Per km, by country.
	TransportPerKM map[string]int `yaml:"transport_per_km"`
	// Per person per day, by tier.
	Sightseeing map[string]int `yaml:"sightseeing"`
}

const (
	fallbackRegion  = "domestic"
	fallbackTier    = "mid"
	fallbackCountry = "default"
)

func Default() *Model {
	return &Model{
		Flights: map[string]Range{
			"vietnam":   {18000, 32000},
			"thailand":  {12000, 22000},
			"malaysia":  {15000, 26000},
			"sri_lanka": {9000, 16000},
			"bali":      {16000, 28000},
			"dubai":     {18000, 35000},
			"domestic":  {3000, 9000},
		},
		Hotels: map[string]Range{
			"budget":  {800, 1500},
			"mid":     {1800, 3500},
			"premium": {4000, 9000},
		},
		Meals: map[string]int{
			"budget":  400,
			"mid":     900,
			"premium": 1800,
		},
		TransportPerKM: map[string]int{
			"india":     15,
			"vietnam":   20,
			"thailand":  22,
			"malaysia":  28,
			"sri_lanka": 18,
			"bali":      30,
			"dubai":     35,
			"default":   25,
		},
		Sightseeing: map[string]int{
			"budget":  300,
			"mid":     800,
			"premium": 1500,
		},
	}
}

// LoadYAML returns the default tables with entries from path merged on top.
// Keys are normalized the same way destinations are.
func LoadYAML(path string) (*Model, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load pricing: read %q: %w", path, err)
	}

	var override Model
	if err := yaml.Unmarshal(b, &override); err != nil {
		return nil, fmt.Errorf("load pricing: parse %q: %w", path, err)
	}

	m := Default()
	if err := mergeRanges(m.Flights, override.Flights, "flights"); err != nil {
		return nil, err
	}
	if err := mergeRanges(m.Hotels, override.Hotels, "hotels"); err != nil {
		return nil, err
	}
	mergeInts(m.Meals, override.Meals)
	mergeInts(m.TransportPerKM, override.TransportPerKM)
	mergeInts(m.Sightseeing, override.Sightseeing)

	return m, nil
}

func mergeRanges(dst, src map[string]Range, table string) error {
	for k, v := range src {
		if v.Lo < 0 || v.Hi < v.Lo {
			return fmt.Errorf("load pricing: %s[%s]: invalid range %d-%d", table, k, v.Lo, v.Hi)
		}
		dst[Key(k)] = v
	}
	return nil
}

func mergeInts(dst, src map[string]int) {
	for k, v := range src {
		dst[Key(k)] = v
	}
}

// Key normalizes a destination or tier name: "Sri Lanka" -> "sri_lanka".
func Key(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), "_")
}

func (m *Model) flight(destination string) Range {
	if r, ok := m.Flights[Key(destination)]; ok {
		return r
	}
	return m.Flights[fallbackRegion]
}

func (m *Model) hotel(tier string) Range {
	if r, ok := m.Hotels[tier]; ok {
		return r
	}
	return m.Hotels[fallbackTier]
}

func lookup(table map[string]int, key, fallback string) int {
	if v, ok := table[key]; ok {
		return v
	}
	return table[fallback]
}
