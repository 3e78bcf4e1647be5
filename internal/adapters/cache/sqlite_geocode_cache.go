package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"trip-planner-service/internal/domain"
)

// SQLite backed cache mapping geocode queries to resolved places.
// Query keys are expected to be normalized (lower-cased, trimmed) by the caller.
type SqliteGeocodeCache struct {
	DB *sql.DB
}

func NewSqliteGeocodeCache(db *sql.DB) *SqliteGeocodeCache {
	return &SqliteGeocodeCache{DB: db}
}

// Fetch cached geocode results for the given queries.
func (s *SqliteGeocodeCache) GetMany(ctx context.Context, queries []string) (map[string]domain.GeoResult, error) {
	if s.DB == nil {
		return nil, errors.New("geocode cache: db is nil")
	}

	uniq := uniqueKeys(queries)
	if len(uniq) == 0 {
		return map[string]domain.GeoResult{}, nil
	}

	args := make([]any, 0, len(uniq))
	for _, a := range uniq {
		args = append(args, a)
	}

	// SQLite does not support binding slices directly in an IN (...) clause.
	// Only the placeholder structure is interpolated; all values remain parameterized.
	q := fmt.Sprintf(`
	SELECT
        query,
        display_name,
        lon,
        lat
    FROM geocode_cache
    WHERE query IN (%s);
	`, placeholders(len(uniq)))

	rows, err := s.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("get geocode cache: query geocode_cache table: %w", err)
	}
	defer rows.Close()

	return scanGeocodeRows(rows, len(uniq))
}

// Store query -> geocode result mappings in the cache.
func (s *SqliteGeocodeCache) PutMany(ctx context.Context, results map[string]domain.GeoResult) error {
	if s.DB == nil {
		return errors.New("geocode cache: db is nil")
	}

	return putGeocodeRows(ctx, s.DB, `
	INSERT OR REPLACE INTO geocode_cache (
        query,
        display_name,
        lon,
        lat
    )
    VALUES (?, ?, ?, ?);
	`, results)
}

func scanGeocodeRows(rows *sql.Rows, sizeHint int) (map[string]domain.GeoResult, error) {
	out := make(map[string]domain.GeoResult, sizeHint)
	for rows.Next() {
		var g domain.GeoResult
		if err := rows.Scan(&g.Query, &g.DisplayName, &g.Lon, &g.Lat); err != nil {
			return nil, fmt.Errorf("get geocode cache: scan rows: %w", err)
		}
		out[g.Query] = g
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get geocode cache: row iteration: %w", err)
	}
	return out, nil
}

func putGeocodeRows(ctx context.Context, db *sql.DB, query string, results map[string]domain.GeoResult) error {
	if len(results) == 0 {
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert geocode cache: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("insert geocode cache: db prepare: %w", err)
	}
	defer stmt.Close()

	for key, g := range results {
		if strings.TrimSpace(key) == "" {
			return fmt.Errorf("insert geocode cache: empty query key")
		}

		if _, err := stmt.ExecContext(ctx, key, g.DisplayName, g.Lon, g.Lat); err != nil {
			return fmt.Errorf("insert geocode cache query=%q: %w", key, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("insert geocode cache commit: %w", err)
	}

	return nil
}
