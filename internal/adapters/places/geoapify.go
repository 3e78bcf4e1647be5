package places

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"trip-planner-service/internal/domain"
	"trip-planner-service/internal/platform/httpx"
	"trip-planner-service/internal/platform/obs"
)

const (
	defaultGeoapifyURL = "https://api.geoapify.com"
	defaultLimit       = 20

	categoryAttractions = "tourism.attraction"
	categoryBeaches     = "natural.water.sea,natural.water.ocean"
	categoryNature      = "natural"
	categoryFood        = "catering.restaurant,catering.fast_food,catering.cafe"

	radiusAttractions = 10000
	radiusBeaches     = 30000
	radiusFood        = 8000
)

// GeoapifyClient implements PlacesProvider with the Geoapify Places API.
type GeoapifyClient struct {
	client  *httpx.Client
	apiKey  string
	baseURL string
	limit   int
}

func NewGeoapifyClient(apiKey, baseURL string) (*GeoapifyClient, error) {
	if apiKey == "" {
		return nil, domain.NewConfigurationError("geoapify_api_key", "Geoapify api key is empty")
	}
	if baseURL == "" {
		baseURL = defaultGeoapifyURL
	}

	return &GeoapifyClient{
		client:  httpx.NewClient("geoapify", 5),
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		limit:   defaultLimit,
	}, nil
}

type featureCollection struct {
	Features []feature `json:"features"`
}

type feature struct {
	Properties struct {
		Name       string   `json:"name"`
		Formatted  string   `json:"formatted"`
		Lat        *float64 `json:"lat"`
		Lon        *float64 `json:"lon"`
		Categories []string `json:"categories"`
		PlaceID    string   `json:"place_id"`
	} `json:"properties"`
	Geometry struct {
		Coordinates []float64 `json:"coordinates"`
	} `json:"geometry"`
}

// simplify keeps the fields the planner needs. Coordinates come from the
// properties, falling back to the GeoJSON geometry.
func (f feature) simplify() domain.Place {
	p := f.Properties

	name := p.Name
	if name == "" {
		name = p.Formatted
	}

	place := domain.Place{
		ID:         p.PlaceID,
		Name:       name,
		Formatted:  p.Formatted,
		Categories: p.Categories,
	}

	coords := f.Geometry.Coordinates
	if p.Lat != nil {
		place.Lat = *p.Lat
	} else if len(coords) == 2 {
		place.Lat = coords[1]
	}
	if p.Lon != nil {
		place.Lon = *p.Lon
	} else if len(coords) == 2 {
		place.Lon = coords[0]
	}

	return place
}

func (g *GeoapifyClient) fetch(ctx context.Context, lat, lon float64, categories string, radius int) (_ []domain.Place, err error) {
	defer obs.Time(ctx, "geoapify.fetch")(&err)

	endpoint := g.baseURL + "/v2/places"
	filter := fmt.Sprintf("circle:%s,%s,%d",
		strconv.FormatFloat(lon, 'f', -1, 64), strconv.FormatFloat(lat, 'f', -1, 64), radius)

	resp, err := g.client.Do(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		q := req.URL.Query()
		q.Set("categories", categories)
		q.Set("filter", filter)
		q.Set("limit", strconv.Itoa(g.limit))
		q.Set("apiKey", g.apiKey)
		req.URL.RawQuery = q.Encode()
		return req, nil
	})
	if err != nil {
		return nil, fmt.Errorf("geoapify %s request: %w", categories, err)
	}
	defer resp.Body.Close()

	var fc featureCollection
	if err := json.NewDecoder(resp.Body).Decode(&fc); err != nil {
		return nil, fmt.Errorf("decode geoapify response: %w", err)
	}

	out := make([]domain.Place, 0, len(fc.Features))
	for _, f := range fc.Features {
		out = append(out, f.simplify())
	}
	return out, nil
}

func (g *GeoapifyClient) Attractions(ctx context.Context, lat, lon float64) ([]domain.Place, error) {
	return g.fetch(ctx, lat, lon, categoryAttractions, radiusAttractions)
}

// Beaches searches sea and ocean features, falling back to general nature
// when that fails or finds nothing.
func (g *GeoapifyClient) Beaches(ctx context.Context, lat, lon float64) ([]domain.Place, error) {
	found, err := g.fetch(ctx, lat, lon, categoryBeaches, radiusBeaches)
	if err == nil && len(found) > 0 {
		return found, nil
	}
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		log.Printf("geoapify beaches failed, falling back to %s: %v", categoryNature, err)
	}

	return g.fetch(ctx, lat, lon, categoryNature, radiusBeaches)
}

func (g *GeoapifyClient) Food(ctx context.Context, lat, lon float64) ([]domain.Place, error) {
	return g.fetch(ctx, lat, lon, categoryFood, radiusFood)
}
