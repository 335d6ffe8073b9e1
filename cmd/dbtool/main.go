package main

import (
	"context"
	"database/sql"
	"log"
	"strings"

	"recycling-route-service/internal/adapters/repositories"
	"recycling-route-service/internal/config"
	"recycling-route-service/internal/platform/db"
)

// dbtool creates the dataset schema and loads the CSV files into it.
// DATA_SOURCE selects postgres (default, needs DATABASE_URL) or sqlite (DB_PATH).
func main() {
	config.Load()

	dialect, err := repositories.ParseDialect(config.Get("DATA_SOURCE", "postgres"))
	if err != nil {
		log.Fatal(err)
	}

	var conn *sql.DB
	if dialect == repositories.DialectPostgres {
		databaseURL := config.Get("DATABASE_URL", "")
		if strings.TrimSpace(databaseURL) == "" {
			log.Fatal("DATABASE_URL is required")
		}
		conn, err = db.Open(databaseURL)
	} else {
		conn, err = db.OpenSQLite(config.Get("DB_PATH", "data/app.db"))
	}
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	if err := initAndSeed(conn, dialect); err != nil {
		log.Fatal(err)
	}
}

func initAndSeed(conn *sql.DB, dialect repositories.Dialect) error {
	log.Printf("Initializing database schema dialect=%s...", dialect)
	if err := repositories.InitSchema(conn, dialect); err != nil {
		return err
	}
	log.Println("Schema ready.")

	source := repositories.NewCSVDatasetSource(
		config.Get("ROUTES_CSV", "data/weekly_routes.csv"),
		config.Get("DEPOTS_CSV", "data/depot_locations.csv"),
		config.Get("PRICES_CSV", "data/material_prices.csv"),
	)

	ctx := context.Background()
	ds, err := source.LoadDataset(ctx)
	if err != nil {
		return err
	}

	log.Println("Seeding database...")
	if err := repositories.SeedDataset(ctx, conn, dialect, ds); err != nil {
		return err
	}
	log.Printf("Seeding complete. requests=%d depots=%d prices=%d", len(ds.Requests), len(ds.Depots), len(ds.Prices))

	return nil
}
