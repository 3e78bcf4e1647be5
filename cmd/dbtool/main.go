package main

import (
	"context"
	"database/sql"
	"log"
	"trip-planner-service/internal/adapters/cache"
	"trip-planner-service/internal/adapters/repositories"
	"trip-planner-service/internal/app"
	"trip-planner-service/internal/config"
	"trip-planner-service/internal/platform/db"
)

// dbtool prepares the schema and seeds the geocode cache. With DATABASE_URL
// set it targets the shared Postgres caches, otherwise the local SQLite file.
func main() {
	config.LoadDotEnv()
	cfg := config.Load()

	var (
		conn   *sql.DB
		writer repositories.GeocodeWriter
		err    error
	)

	if cfg.DatabaseURL != "" {
		conn, err = db.Open(cfg.DatabaseURL)
		if err != nil {
			log.Fatal(err)
		}
		writer = cache.NewSQLGeocodeCache(conn)
	} else {
		conn, err = app.OpenSqlite(cfg.DBPath)
		if err != nil {
			log.Fatal(err)
		}
		writer = cache.NewSqliteGeocodeCache(conn)
	}
	defer conn.Close()

	if err := initAndSeed(conn, writer, cfg.SeedPath); err != nil {
		log.Fatal(err)
	}
}

func initAndSeed(conn *sql.DB, writer repositories.GeocodeWriter, seedPath string) error {
	log.Println("Initializing database schema...")
	if err := repositories.InitSchema(conn); err != nil {
		return err
	}
	log.Println("Schema ready.")

	log.Printf("Seeding geocode cache from %s...", seedPath)
	if err := repositories.SeedFromJSON(context.Background(), writer, seedPath); err != nil {
		return err
	}
	log.Println("Seeding complete.")

	return nil
}
