package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"
	"trip-planner-service/internal/domain"
)

// Initialize the database schema. Statements are portable between SQLite
// and Postgres so cmd/dbtool can prepare either backend.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createTripPlansQuery := `
	CREATE TABLE IF NOT EXISTS trip_plans (
		id TEXT PRIMARY KEY,
		destination TEXT NOT NULL,
		created_at TEXT NOT NULL,
		state_json TEXT NOT NULL
	);
	`

	createDistanceCacheQuery := `
	CREATE TABLE IF NOT EXISTS distance_cache (
        origin TEXT NOT NULL,
        destination TEXT NOT NULL,
        distance_meters REAL NOT NULL,
        duration_seconds REAL NOT NULL,
        PRIMARY KEY (origin, destination)
    );
	`

	createGeocodeCacheQuery := `
	CREATE TABLE IF NOT EXISTS geocode_cache (
        query TEXT PRIMARY KEY,
        display_name TEXT NOT NULL,
        lon REAL NOT NULL,
        lat REAL NOT NULL
    );
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_trip_plans_created_at
    ON trip_plans(created_at);
	`

	statements := []string{
		createTripPlansQuery,
		createDistanceCacheQuery,
		createGeocodeCacheQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

type GeocodeSeed struct {
	Query       string  `json:"query"`
	DisplayName string  `json:"display_name"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
}

// GeocodeWriter is satisfied by both the SQLite and Postgres geocode caches.
type GeocodeWriter interface {
	PutMany(ctx context.Context, results map[string]domain.GeoResult) error
}

// Populate the geocode cache with known destinations from a JSON file so
// demos and tests can run without calling the geocoding service.
func SeedFromJSON(ctx context.Context, cache GeocodeWriter, jsonPath string) error {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed geocode: read %q: %w", jsonPath, err)
	}

	var data []GeocodeSeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return fmt.Errorf("seed geocode: parse json: %w", err)
	}

	rows := make(map[string]domain.GeoResult, len(data))
	for i, item := range data {
		query := strings.ToLower(strings.TrimSpace(item.Query))
		if query == "" {
			return fmt.Errorf("seed geocode: item at index %d: query cannot be empty", i+1)
		}

		if math.IsNaN(item.Lat) || item.Lat < -90 || item.Lat > 90 || math.IsNaN(item.Lon) || item.Lon < -180 || item.Lon > 180 {
			return fmt.Errorf("seed geocode: item %q at index %d: coordinates out of range", query, i+1)
		}

		display := strings.TrimSpace(item.DisplayName)
		if display == "" {
			display = item.Query
		}
		rows[query] = domain.GeoResult{Query: query, DisplayName: display, Lat: item.Lat, Lon: item.Lon}
	}

	if err := cache.PutMany(ctx, rows); err != nil {
		return fmt.Errorf("seed geocode: %w", err)
	}

	return nil
}
