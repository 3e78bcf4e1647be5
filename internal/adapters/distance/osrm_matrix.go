package distance

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"trip-planner-service/internal/domain"
	"trip-planner-service/internal/platform/httpx"
	"trip-planner-service/internal/platform/obs"
	"trip-planner-service/internal/ports"

	"golang.org/x/sync/errgroup"
)

const (
	defaultOSRMBaseURL = "https://router.project-osrm.org"
	osrmWorkers        = 5
)

var osrmModes = map[string]struct{}{
	"driving": {},
	"walking": {},
	"cycling": {},
}

// OSRMMatrixProvider builds a matrix from pairwise OSRM route lookups.
// Pairs that fail are logged and recorded as unreachable so planning can
// continue with partial data.
type OSRMMatrixProvider struct {
	client  *httpx.Client
	baseURL string
	mode    string
	workers int
}

type osrmResponse struct {
	Code   string `json:"code"`
	Routes []struct {
		Distance float64 `json:"distance"`
		Duration float64 `json:"duration"`
	} `json:"routes"`
}

// NewOSRMMatrixProvider validates mode and paces requests at perSecond.
func NewOSRMMatrixProvider(baseURL, mode string, perSecond float64) (*OSRMMatrixProvider, error) {
	if baseURL == "" {
		baseURL = defaultOSRMBaseURL
	}
	if mode == "" {
		mode = "driving"
	}
	if _, ok := osrmModes[mode]; !ok {
		return nil, domain.NewConfigurationError("mode", "unsupported OSRM mode %q", mode)
	}

	client := httpx.NewClient("osrm", perSecond)
	// Failed pairs degrade to unreachable, so keep retries short.
	client.MaxAttempts = 2

	return &OSRMMatrixProvider{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		mode:    mode,
		workers: osrmWorkers,
	}, nil
}

func (o *OSRMMatrixProvider) GetDistance(
	ctx context.Context,
	origin domain.Coordinates,
	destination domain.Coordinates,
) (ports.DistanceResult, error) {
	endpoint := fmt.Sprintf("%s/route/v1/%s/%f,%f;%f,%f",
		o.baseURL, o.mode, origin.Lon, origin.Lat, destination.Lon, destination.Lat)

	resp, err := o.client.Do(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		q := req.URL.Query()
		q.Set("overview", "false")
		req.URL.RawQuery = q.Encode()
		return req, nil
	})
	if err != nil {
		return ports.DistanceResult{}, fmt.Errorf("osrm route request: %w", err)
	}
	defer resp.Body.Close()

	var decoded osrmResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return ports.DistanceResult{}, fmt.Errorf("decode osrm response: %w", err)
	}

	if decoded.Code != "Ok" || len(decoded.Routes) == 0 {
		return ports.DistanceResult{}, fmt.Errorf("osrm returned code %q with %d routes", decoded.Code, len(decoded.Routes))
	}

	route := decoded.Routes[0]
	return ports.DistanceResult{DistanceMeters: route.Distance, DurationSeconds: route.Duration}, nil
}

// Matrix fills every off-diagonal cell with a separate route lookup, at most
// o.workers at a time. A failed pair is logged and left Unreachable; only
// context cancellation aborts the whole matrix.
func (o *OSRMMatrixProvider) Matrix(ctx context.Context, points []domain.Point) (_ domain.TravelMatrix, err error) {
	defer obs.Time(ctx, "osrm.Matrix")(&err)

	names := make([]string, len(points))
	for i, p := range points {
		names[i] = p.Name
	}
	out := domain.NewTravelMatrix(names, true)

	if len(points) < 2 {
		return out, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)

launch:
	for i := range points {
		for j := range points {
			if i == j {
				continue
			}
			if gctx.Err() != nil {
				break launch
			}

			// Each goroutine owns cell (i, j), so writes never overlap.
			g.Go(func() error {
				if gctx.Err() != nil {
					return nil
				}
				r, err := o.GetDistance(gctx, points[i].Coordinates(), points[j].Coordinates())
				if err != nil {
					log.Printf("warning: osrm pair failed from=%q to=%q err=%v", points[i].Name, points[j].Name, err)
					return nil
				}
				out.DurationS[i][j] = r.DurationSeconds
				out.DistanceM[i][j] = r.DistanceMeters
				return nil
			})
		}
	}

	// Pair failures never reach the group; Wait only synchronizes.
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return domain.TravelMatrix{}, fmt.Errorf("osrm matrix: %w", err)
	}

	return out, nil
}
