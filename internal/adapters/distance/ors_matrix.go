package distance

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"trip-planner-service/internal/domain"
	"trip-planner-service/internal/platform/httpx"
	"trip-planner-service/internal/platform/obs"
	"trip-planner-service/internal/ports"
)

const defaultORSBaseURL = "https://api.openrouteservice.org"

// DistanceCache stores matrix rows keyed by Coordinates.Key().
// Both the SQLite and Postgres caches satisfy it.
type DistanceCache interface {
	GetMany(ctx context.Context, origin string, destinations []string) (map[string]ports.DistanceResult, error)
	PutMany(ctx context.Context, origin string, results map[string]ports.DistanceResult) error
}

// ORSMatrixProvider implements TravelMatrixProvider using the
// OpenRouteService matrix endpoint.
//
// It coordinates:
//   - Persistent distance caching, one row per origin
//   - A single full-matrix call when any row is incomplete
//   - Request pacing and retry/backoff via httpx
//
// The provider is safe for concurrent use.
type ORSMatrixProvider struct {
	client  *httpx.Client
	apiKey  string
	baseURL string
	profile string
	cache   DistanceCache
}

type ORSOption func(*ORSMatrixProvider)

func WithORSBaseURL(u string) ORSOption {
	return func(o *ORSMatrixProvider) { o.baseURL = u }
}

func WithORSProfile(p string) ORSOption {
	return func(o *ORSMatrixProvider) { o.profile = p }
}

func WithORSClient(c *httpx.Client) ORSOption {
	return func(o *ORSMatrixProvider) { o.client = c }
}

func NewORSMatrixProvider(apiKey string, cache DistanceCache, opts ...ORSOption) (*ORSMatrixProvider, error) {
	if apiKey == "" {
		return nil, domain.NewConfigurationError("ors_api_key", "ORS api key is empty")
	}

	provider := &ORSMatrixProvider{
		client:  httpx.NewClient("ors", 0.6),
		apiKey:  apiKey,
		baseURL: defaultORSBaseURL,
		profile: "driving-car",
		cache:   cache,
	}
	for _, opt := range opts {
		opt(provider)
	}

	return provider, nil
}

type matrixRequest struct {
	Locations [][]float64 `json:"locations"`
	Metrics   []string    `json:"metrics"`
}

type matrixResponse struct {
	Distances [][]*float64 `json:"distances"`
	Durations [][]*float64 `json:"durations"`
}

func (o *ORSMatrixProvider) newRequest(
	ctx context.Context,
	method string,
	url string,
	body io.Reader,
) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Authorization", o.apiKey)
	req.Header.Set("Accept", "application/json")

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return req, nil
}

// GetDistance delegates to Matrix to reuse caching for a single pair.
func (o *ORSMatrixProvider) GetDistance(
	ctx context.Context,
	origin domain.Coordinates,
	destination domain.Coordinates,
) (ports.DistanceResult, error) {
	points := []domain.Point{
		{Name: "origin", Lat: origin.Lat, Lon: origin.Lon},
		{Name: "destination", Lat: destination.Lat, Lon: destination.Lon},
	}

	m, err := o.Matrix(ctx, points)
	if err != nil {
		return ports.DistanceResult{}, fmt.Errorf("get ORS distance %s -> %s: %w", origin.Key(), destination.Key(), err)
	}

	return ports.DistanceResult{DistanceMeters: m.Distance(0, 1), DurationSeconds: m.Duration(0, 1)}, nil
}

// Matrix returns the full pairwise matrix for points, serving complete rows
// from the cache when possible.
func (o *ORSMatrixProvider) Matrix(ctx context.Context, points []domain.Point) (_ domain.TravelMatrix, err error) {
	defer obs.Time(ctx, "ors.Matrix")(&err)

	names := make([]string, len(points))
	keys := make([]string, len(points))
	for i, p := range points {
		names[i] = p.Name
		keys[i] = p.Coordinates().Key()
	}

	out := domain.NewTravelMatrix(names, true)
	if len(points) < 2 {
		return out, nil
	}

	if o.cache != nil {
		complete, err := o.fillFromCache(ctx, keys, out)
		if err != nil {
			return domain.TravelMatrix{}, err
		}
		if complete {
			return out, nil
		}
	}

	fetched, err := o.fetchMatrix(ctx, points)
	if err != nil {
		return domain.TravelMatrix{}, fmt.Errorf("fetching matrix: %w", err)
	}
	fetched.Names = names

	if o.cache != nil {
		o.writeBack(ctx, keys, fetched)
	}

	return fetched, nil
}

// fillFromCache copies cached cells into m and reports whether every
// off-diagonal cell was found.
func (o *ORSMatrixProvider) fillFromCache(ctx context.Context, keys []string, m domain.TravelMatrix) (bool, error) {
	complete := true
	for i, origin := range keys {
		hits, err := o.cache.GetMany(ctx, origin, keys)
		if err != nil {
			return false, fmt.Errorf("ORS get distance cache: %w", err)
		}

		for j, dest := range keys {
			if i == j {
				continue
			}
			if dest == origin {
				m.DurationS[i][j] = 0
				m.DistanceM[i][j] = 0
				continue
			}
			r, ok := hits[dest]
			if !ok {
				complete = false
				continue
			}
			m.DurationS[i][j] = r.DurationSeconds
			m.DistanceM[i][j] = r.DistanceMeters
		}
	}
	return complete, nil
}

func (o *ORSMatrixProvider) writeBack(ctx context.Context, keys []string, m domain.TravelMatrix) {
	for i, origin := range keys {
		row := make(map[string]ports.DistanceResult, len(keys))
		for j, dest := range keys {
			if dest == origin {
				continue
			}
			row[dest] = ports.DistanceResult{DistanceMeters: m.Distance(i, j), DurationSeconds: m.Duration(i, j)}
		}
		if err := o.cache.PutMany(ctx, origin, row); err != nil {
			log.Printf("distance cache write failed: origin=%s err=%v", origin, err)
		}
	}
}

// fetchMatrix retrieves all pairwise distances and durations in one call.
func (o *ORSMatrixProvider) fetchMatrix(ctx context.Context, points []domain.Point) (domain.TravelMatrix, error) {
	endpoint := fmt.Sprintf("%s/v2/matrix/%s", o.baseURL, o.profile)

	locations := make([][]float64, 0, len(points))
	for _, p := range points {
		locations = append(locations, p.Coordinates().CoordsToList())
	}

	payload, err := json.Marshal(matrixRequest{
		Locations: locations,
		Metrics:   []string{"distance", "duration"},
	})
	if err != nil {
		return domain.TravelMatrix{}, fmt.Errorf("marshal matrix request: %w", err)
	}

	resp, err := o.client.Do(ctx, func() (*http.Request, error) {
		return o.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	})
	if err != nil {
		return domain.TravelMatrix{}, fmt.Errorf("matrix request failed: %w", err)
	}
	defer resp.Body.Close()

	var mr matrixResponse
	if err := json.NewDecoder(resp.Body).Decode(&mr); err != nil {
		return domain.TravelMatrix{}, fmt.Errorf("decode matrix response: %w", err)
	}

	if mr.Durations == nil {
		return domain.TravelMatrix{}, errors.New("matrix response carries no durations")
	}

	m := domain.TravelMatrix{
		DurationS: domain.FromNullable(mr.Durations),
		DistanceM: domain.FromNullable(mr.Distances),
	}
	if err := m.Validate(len(points)); err != nil {
		return domain.TravelMatrix{}, fmt.Errorf("matrix response shape: %w", err)
	}

	return m, nil
}
