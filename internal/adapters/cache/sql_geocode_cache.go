package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"trip-planner-service/internal/domain"
	"trip-planner-service/internal/platform/obs"
)

// SQLGeocodeCache is a Postgres-backed cache mapping queries to resolved places.
type SQLGeocodeCache struct {
	DB *sql.DB
}

func NewSQLGeocodeCache(db *sql.DB) *SQLGeocodeCache {
	return &SQLGeocodeCache{DB: db}
}

// Fetch cached geocode results for the given queries.
func (s *SQLGeocodeCache) GetMany(
	ctx context.Context,
	queries []string,
) (_ map[string]domain.GeoResult, err error) {
	defer obs.Time(ctx, "geocode.cache.GetMany")(&err)

	if s.DB == nil {
		return nil, errors.New("geocode cache: db is nil")
	}

	uniq := uniqueKeys(queries)
	if len(uniq) == 0 {
		return map[string]domain.GeoResult{}, nil
	}

	q := `
	SELECT query, display_name, lon, lat
    FROM geocode_cache
    WHERE query = ANY($1::text[]);
	`

	rows, err := s.DB.QueryContext(ctx, q, uniq)
	if err != nil {
		return nil, fmt.Errorf("get geocode cache: query geocode_cache table: %w", err)
	}
	defer rows.Close()

	return scanGeocodeRows(rows, len(uniq))
}

// Store query -> geocode result mappings in the cache.
func (s *SQLGeocodeCache) PutMany(ctx context.Context, results map[string]domain.GeoResult) error {
	if s.DB == nil {
		return errors.New("geocode cache: db is nil")
	}

	return putGeocodeRows(ctx, s.DB, `
	INSERT INTO geocode_cache (query, display_name, lon, lat)
    VALUES ($1, $2, $3, $4)
	ON CONFLICT (query) DO UPDATE
	SET display_name = EXCLUDED.display_name,
		lon = EXCLUDED.lon,
		lat = EXCLUDED.lat;
	`, results)
}
