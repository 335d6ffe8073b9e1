package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"recycling-route-service/internal/adapters/cache"
	"recycling-route-service/internal/adapters/repositories"
	"recycling-route-service/internal/api"
	"recycling-route-service/internal/config"
	"recycling-route-service/internal/platform/db"
	"recycling-route-service/internal/ports"
)

// main is the application composition root.
// It wires the configured dataset source and result cache behind ports and starts the HTTP server.
func main() {
	config.Load()

	port := config.Get("PORT", "8080")
	dataSource := strings.ToLower(config.Get("DATA_SOURCE", "csv"))

	source, closeSource, err := openSource(dataSource)
	if err != nil {
		log.Fatal(err)
	}
	defer closeSource()

	resultCache, err := openCache()
	if err != nil {
		log.Fatal(err)
	}

	levels, err := config.LoadLevelsOrDefault(config.Get("LEVELS_PATH", ""))
	if err != nil {
		log.Fatal(err)
	}
	defaultLevel := config.Get("DEFAULT_LEVEL", "advanced")
	if _, err := levels.Budget(defaultLevel); err != nil {
		log.Fatalf("DEFAULT_LEVEL: %v", err)
	}

	router := api.NewRouter(api.Deps{
		Source:         source,
		Cache:          resultCache,
		Levels:         levels,
		DefaultLevel:   defaultLevel,
		Rules:          config.BusinessRulesFromEnv(),
		Workers:        config.GetInt("WORKERS", 0),
		DataSource:     dataSource,
		StartedAt:      time.Now(),
		RateLimitRPS:   config.GetFloat("RATE_LIMIT_RPS", 2),
		RateLimitBurst: config.GetInt("RATE_LIMIT_BURST", 5),
	})

	// Premium budgets on large weeks can take a while; WriteTimeout leaves room for that.
	log.Printf("Server listening addr=:%s data_source=%s default_level=%s", port, dataSource, defaultLevel)
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}

func csvSource() *repositories.CSVDatasetSource {
	return repositories.NewCSVDatasetSource(
		config.Get("ROUTES_CSV", "data/weekly_routes.csv"),
		config.Get("DEPOTS_CSV", "data/depot_locations.csv"),
		config.Get("PRICES_CSV", "data/material_prices.csv"),
	)
}

// openSource returns the dataset source for DATA_SOURCE and a func releasing it.
func openSource(kind string) (ports.DatasetSource, func(), error) {
	switch kind {
	case "csv":
		return csvSource(), func() {}, nil

	case "sqlite", "postgres":
		dialect, err := repositories.ParseDialect(kind)
		if err != nil {
			return nil, nil, err
		}

		var conn *sql.DB
		if dialect == repositories.DialectSQLite {
			conn, err = db.OpenSQLite(config.Get("DB_PATH", "data/app.db"))
		} else {
			url := config.Get("DATABASE_URL", "")
			if url == "" {
				return nil, nil, fmt.Errorf("DATABASE_URL is required for DATA_SOURCE=%s", kind)
			}
			conn, err = db.Open(url)
		}
		if err != nil {
			return nil, nil, err
		}

		if err := initAndSeed(conn, dialect); err != nil {
			_ = conn.Close()
			return nil, nil, err
		}
		return repositories.NewSQLDatasetRepository(conn, dialect), func() { _ = conn.Close() }, nil
	}

	return nil, nil, fmt.Errorf("unknown DATA_SOURCE %q (want csv, sqlite or postgres)", kind)
}

// initAndSeed prepares the schema and, when SEED_ON_START is set, loads the CSV files for local runs.
func initAndSeed(conn *sql.DB, dialect repositories.Dialect) error {
	if err := repositories.InitSchema(conn, dialect); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	if config.Get("SEED_ON_START", "false") != "true" {
		return nil
	}

	ctx := context.Background()
	ds, err := csvSource().LoadDataset(ctx)
	if err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}
	if err := repositories.SeedDataset(ctx, conn, dialect, ds); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}
	log.Printf("seeded dataset requests=%d depots=%d prices=%d", len(ds.Requests), len(ds.Depots), len(ds.Prices))

	return nil
}

func openCache() (ports.ResultCache, error) {
	url := config.Get("REDIS_URL", "")
	if url == "" {
		log.Println("REDIS_URL not set; optimization results are not cached")
		return cache.NopResultCache{}, nil
	}

	c, err := cache.NewRedisResultCacheFromURL(url, config.GetDuration("CACHE_TTL", 10*time.Minute))
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := c.Client.Ping(ctx).Err(); err != nil {
		log.Printf("redis ping failed, continuing without warm connection: %v", err)
	}

	return c, nil
}
