// Package app assembles concrete adapters behind the ports from a Config.
// cmd/server and cmd/tripplan share it as their composition root.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"trip-planner-service/internal/adapters/cache"
	"trip-planner-service/internal/adapters/distance"
	"trip-planner-service/internal/adapters/geocode"
	"trip-planner-service/internal/adapters/llm"
	"trip-planner-service/internal/adapters/places"
	"trip-planner-service/internal/adapters/repositories"
	"trip-planner-service/internal/adapters/weather"
	"trip-planner-service/internal/config"
	"trip-planner-service/internal/domain"
	"trip-planner-service/internal/platform/db"
	"trip-planner-service/internal/ports"
	"trip-planner-service/internal/pricing"
	"trip-planner-service/internal/services"

	_ "modernc.org/sqlite"
)

// App holds the wired collaborators and the resources to release on Close.
type App struct {
	Planner  *services.TripPlanner
	Trips    ports.TripRepository
	Distance ports.DistanceProvider
	Schedule services.ScheduleOptions
	// Stores maps a store name to its connection for readiness checks.
	Stores map[string]ports.Pinger

	closers []func() error
}

type caches struct {
	geocode  geocode.Cache
	distance distance.DistanceCache
}

// New opens storage and builds every adapter selected by cfg.
func New(ctx context.Context, cfg config.Config) (_ *App, err error) {
	a := &App{Schedule: ScheduleOptions(cfg), Stores: map[string]ports.Pinger{}}
	defer func() {
		if err != nil {
			_ = a.Close()
		}
	}()

	sqliteDB, err := OpenSqlite(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, sqliteDB.Close)
	a.Stores["sqlite"] = sqliteDB

	if err := repositories.InitSchema(sqliteDB); err != nil {
		return nil, err
	}
	a.Trips = repositories.NewSqliteTripRepository(sqliteDB)

	c, err := a.openCaches(ctx, cfg, sqliteDB)
	if err != nil {
		return nil, err
	}

	matrix, dist, err := newMatrixProvider(cfg, c.distance)
	if err != nil {
		return nil, err
	}
	a.Distance = dist

	geocoder, err := newGeocoder(cfg, c.geocode)
	if err != nil {
		return nil, err
	}

	model := pricing.Default()
	if cfg.PricingFile != "" {
		if model, err = pricing.LoadYAML(cfg.PricingFile); err != nil {
			return nil, err
		}
	}

	a.Planner = &services.TripPlanner{
		Geocoder: geocoder,
		Matrix:   matrix,
		Pricing:  model,
		Options:  a.Schedule,
	}

	if err := a.wireOptional(ctx, cfg); err != nil {
		return nil, err
	}

	return a, nil
}

// openCaches prefers the shared Postgres caches when DATABASE_URL is set and
// falls back to the local SQLite file otherwise.
func (a *App) openCaches(ctx context.Context, cfg config.Config, sqliteDB *sql.DB) (caches, error) {
	var c caches

	if cfg.DatabaseURL != "" {
		pg, err := db.Open(cfg.DatabaseURL)
		if err != nil {
			return c, err
		}
		a.closers = append(a.closers, pg.Close)
		a.Stores["postgres"] = pg

		if err := repositories.InitSchema(pg); err != nil {
			return c, err
		}
		c.geocode = cache.NewSQLGeocodeCache(pg)
		c.distance = cache.NewSQLDistanceCache(pg)
	} else {
		c.geocode = cache.NewSqliteGeocodeCache(sqliteDB)
		c.distance = cache.NewSqliteDistanceCache(sqliteDB)
	}

	if cfg.SeedPath != "" {
		if _, err := os.Stat(cfg.SeedPath); err == nil {
			if err := repositories.SeedFromJSON(ctx, c.geocode, cfg.SeedPath); err != nil {
				return c, err
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return c, fmt.Errorf("seed geocode: stat %q: %w", cfg.SeedPath, err)
		}
	}

	return c, nil
}

func newMatrixProvider(cfg config.Config, dc distance.DistanceCache) (ports.TravelMatrixProvider, ports.DistanceProvider, error) {
	switch cfg.MatrixProvider {
	case "ors":
		p, err := distance.NewORSMatrixProvider(cfg.ORSAPIKey, dc)
		if err != nil {
			return nil, nil, err
		}
		return p, p, nil
	case "osrm", "":
		p, err := distance.NewOSRMMatrixProvider(cfg.OSRMBaseURL, "driving", 1)
		if err != nil {
			return nil, nil, err
		}
		return p, p, nil
	default:
		return nil, nil, domain.NewConfigurationError("matrix_provider", "unknown provider %q", cfg.MatrixProvider)
	}
}

func newGeocoder(cfg config.Config, gc geocode.Cache) (ports.Geocoder, error) {
	switch cfg.Geocoder {
	case "ors":
		return distance.NewORSGeocoder(cfg.ORSAPIKey, "")
	case "nominatim", "":
		return geocode.NewNominatimGeocoder("", "", gc), nil
	default:
		return nil, domain.NewConfigurationError("geocoder", "unknown geocoder %q", cfg.Geocoder)
	}
}

// wireOptional attaches the best-effort collaborators. A missing key leaves
// the stage disabled rather than failing startup.
func (a *App) wireOptional(ctx context.Context, cfg config.Config) error {
	var forecasts ports.WeatherProvider = weather.NewOpenMeteoClient("")
	if cfg.RedisURL != "" {
		rdb, err := weather.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, rdb.Close)
		forecasts = weather.NewCachedProvider(forecasts, rdb, cfg.WeatherCacheTTL)
	}
	a.Planner.Weather = forecasts

	if cfg.GeoapifyAPIKey != "" {
		p, err := places.NewGeoapifyClient(cfg.GeoapifyAPIKey, "")
		if err != nil {
			return err
		}
		a.Planner.Places = p
	} else {
		log.Println("GEOAPIFY_API_KEY not set; places lookup disabled")
	}

	if cfg.LLMAPIKey != "" {
		w, err := llm.NewLangchainWriter(cfg.LLMAPIKey, cfg.LLMBaseURL, cfg.LLMModel)
		if err != nil {
			return err
		}
		a.Planner.Writer = w
	} else {
		log.Println("GROQ_API_KEY not set; using plain itinerary summaries")
	}

	return nil
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// ScheduleOptions maps the scheduler settings in cfg onto service options.
func ScheduleOptions(cfg config.Config) services.ScheduleOptions {
	opts := services.DefaultScheduleOptions()
	opts.MaxVisitsPerDay = cfg.MaxVisitsPerDay
	opts.DayStartTime = cfg.DayStartTime
	opts.DwellMinutes = cfg.DwellMinutes
	opts.MaxDriveSecondsPerDay = cfg.MaxDriveSecondsPerDay
	return opts
}

func OpenSqlite(dbPath string) (*sql.DB, error) {
	sqlDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("openDB: open sqlite database %q: %w", dbPath, err)
	}

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("openDB: verify sqlite connection to %q: %w", dbPath, err)
	}

	return sqlDB, nil
}
