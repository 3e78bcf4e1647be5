package distance

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"trip-planner-service/internal/domain"
	"trip-planner-service/internal/platform/httpx"
	"trip-planner-service/internal/platform/obs"
)

type geocodeResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
		Properties struct {
			Label string `json:"label"`
		} `json:"properties"`
	} `json:"features"`
}

// ORSGeocoder resolves destinations with OpenRouteService (/geocode/search).
// It shares the ORS key with ORSMatrixProvider and is an alternative to
// the Nominatim geocoder.
type ORSGeocoder struct {
	client  *httpx.Client
	apiKey  string
	baseURL string
	// Optional ISO country restriction, e.g. "IN".
	Country string
}

// NewORSGeocoder returns a geocoder for apiKey. An empty baseURL uses the
// public ORS endpoint.
func NewORSGeocoder(apiKey, baseURL string) (*ORSGeocoder, error) {
	if apiKey == "" {
		return nil, domain.NewConfigurationError("ors_api_key", "ORS api key is empty")
	}
	if baseURL == "" {
		baseURL = defaultORSBaseURL
	}

	return &ORSGeocoder{client: httpx.NewClient("ors_geocode", 0.6), apiKey: apiKey, baseURL: baseURL}, nil
}

// normalize ensures consistent queries by collapsing whitespace.
func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func (o *ORSGeocoder) Geocode(ctx context.Context, query string) (_ domain.GeoResult, err error) {
	defer obs.Time(ctx, "ors.Geocode")(&err)

	norm := normalize(query)
	if norm == "" {
		return domain.GeoResult{}, fmt.Errorf("ors geocode: query must be non-empty")
	}

	endpoint := o.baseURL + "/geocode/search"

	resp, err := o.client.Do(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", o.apiKey)
		req.Header.Set("Accept", "application/json")

		q := req.URL.Query()
		q.Set("text", norm)
		q.Set("size", "1")
		if o.Country != "" {
			q.Set("boundary.country", o.Country)
		}
		req.URL.RawQuery = q.Encode()
		return req, nil
	})
	if err != nil {
		return domain.GeoResult{}, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	var decoded geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.GeoResult{}, fmt.Errorf("decode geocode response: %w", err)
	}

	if len(decoded.Features) == 0 {
		return domain.GeoResult{}, fmt.Errorf("no geocode results for %q: %w", query, domain.ErrNotFound)
	}

	feature := decoded.Features[0]
	coords := feature.Geometry.Coordinates
	if len(coords) != 2 {
		return domain.GeoResult{}, fmt.Errorf("invalid coordinate format for %q", query)
	}

	label := feature.Properties.Label
	if label == "" {
		label = norm
	}

	return domain.GeoResult{
		Query:       strings.ToLower(norm),
		DisplayName: label,
		Lon:         coords[0],
		Lat:         coords[1],
	}, nil
}
