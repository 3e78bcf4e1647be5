package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"
	"trip-planner-service/internal/domain"
	"trip-planner-service/internal/platform/httpx"
	"trip-planner-service/internal/platform/obs"
)

const (
	defaultNominatimURL = "https://nominatim.openstreetmap.org"
	defaultUserAgent    = "trip-planner-service/1.0"
)

// Cache stores geocode results keyed by lower-cased query.
// Both the SQLite and Postgres geocode caches satisfy it.
type Cache interface {
	GetMany(ctx context.Context, queries []string) (map[string]domain.GeoResult, error)
	PutMany(ctx context.Context, results map[string]domain.GeoResult) error
}

// NominatimGeocoder resolves destinations with OpenStreetMap Nominatim.
// Requests are paced at one per second per the Nominatim usage policy.
type NominatimGeocoder struct {
	client    *httpx.Client
	baseURL   string
	userAgent string
	cache     Cache
}

type nominatimResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// NewNominatimGeocoder returns a geocoder; cache may be nil. Empty baseURL
// and userAgent fall back to defaults.
func NewNominatimGeocoder(baseURL, userAgent string, cache Cache) *NominatimGeocoder {
	if baseURL == "" {
		baseURL = defaultNominatimURL
	}
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	client := httpx.NewClient("nominatim", 1)
	client.MaxAttempts = 3
	client.Backoff = time.Second

	return &NominatimGeocoder{
		client:    client,
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		cache:     cache,
	}
}

func cacheKey(query string) string {
	return strings.ToLower(strings.Join(strings.Fields(query), " "))
}

func (g *NominatimGeocoder) Geocode(ctx context.Context, query string) (_ domain.GeoResult, err error) {
	defer obs.Time(ctx, "nominatim.Geocode")(&err)

	key := cacheKey(query)
	if key == "" {
		return domain.GeoResult{}, fmt.Errorf("nominatim geocode: query must be non-empty")
	}

	if g.cache != nil {
		hits, err := g.cache.GetMany(ctx, []string{key})
		if err != nil {
			log.Printf("geocode cache read failed: query=%q err=%v", key, err)
		} else if hit, ok := hits[key]; ok {
			return hit, nil
		}
	}

	result, err := g.fetch(ctx, key, strings.TrimSpace(query))
	if err != nil {
		return domain.GeoResult{}, err
	}

	if g.cache != nil {
		if err := g.cache.PutMany(ctx, map[string]domain.GeoResult{key: result}); err != nil {
			log.Printf("geocode cache write failed: query=%q err=%v", key, err)
		}
	}

	return result, nil
}

func (g *NominatimGeocoder) fetch(ctx context.Context, key, query string) (domain.GeoResult, error) {
	endpoint := g.baseURL + "/search"

	resp, err := g.client.Do(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", g.userAgent)
		req.Header.Set("Accept", "application/json")

		q := req.URL.Query()
		q.Set("q", query)
		q.Set("format", "json")
		q.Set("limit", "5")
		q.Set("addressdetails", "1")
		req.URL.RawQuery = q.Encode()
		return req, nil
	})
	if err != nil {
		return domain.GeoResult{}, fmt.Errorf("nominatim request: %w", err)
	}
	defer resp.Body.Close()

	var decoded []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.GeoResult{}, fmt.Errorf("decode nominatim response: %w", err)
	}

	if len(decoded) == 0 {
		return domain.GeoResult{}, fmt.Errorf("no geocode results for %q: %w", query, domain.ErrNotFound)
	}

	top := decoded[0]
	lat, err := strconv.ParseFloat(top.Lat, 64)
	if err != nil {
		return domain.GeoResult{}, fmt.Errorf("parse lat %q: %w", top.Lat, err)
	}
	lon, err := strconv.ParseFloat(top.Lon, 64)
	if err != nil {
		return domain.GeoResult{}, fmt.Errorf("parse lon %q: %w", top.Lon, err)
	}

	display := top.DisplayName
	if display == "" {
		display = query
	}

	return domain.GeoResult{Query: key, DisplayName: display, Lat: lat, Lon: lon}, nil
}
