package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"

	"recycling-route-service/internal/domain"
)

// Initialize the dataset schema for the given dialect.
func InitSchema(db *sql.DB, dialect Dialect) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// Coordinates and weight are nullable: a missing value is stored as NULL
	// and surfaces as a data issue when the dataset is optimized.
	createRequestsQuery := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS collection_requests (
		row_no INTEGER PRIMARY KEY,
		day TEXT NOT NULL,
		location TEXT NOT NULL,
		material TEXT NOT NULL,
		weight_kg %[1]s,
		lat %[1]s,
		lon %[1]s
	);
	`, dialect.floatType())

	createDepotsQuery := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS depots (
		seq INTEGER PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		lat %[1]s NOT NULL,
		lon %[1]s NOT NULL
	);
	`, dialect.floatType())

	createPricesQuery := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS material_prices (
		material TEXT PRIMARY KEY,
		price_per_kg %s NOT NULL
	);
	`, dialect.moneyType())

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_collection_requests_day
	ON collection_requests(day);
	`

	statements := []string{
		createRequestsQuery,
		createDepotsQuery,
		createPricesQuery,
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

// Replace the stored dataset with ds in a single transaction.
func SeedDataset(ctx context.Context, db *sql.DB, dialect Dialect, ds *domain.Dataset) error {
	if db == nil {
		return errors.New("seed dataset: DB is nil")
	}
	if ds == nil {
		return errors.New("seed dataset: dataset is nil")
	}

	for i, d := range ds.Depots {
		if strings.TrimSpace(d.Name) == "" {
			return fmt.Errorf("seed dataset: depot at index %d: name cannot be empty", i+1)
		}
		if !d.Valid() {
			return fmt.Errorf("seed dataset: depot at index %d (%s): invalid coordinates", i+1, d.Name)
		}
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed dataset: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"collection_requests", "depots", "material_prices"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("seed dataset: clear %s: %w", table, err)
		}
	}

	if err := insertRequests(ctx, tx, dialect, ds.Requests); err != nil {
		return fmt.Errorf("seed dataset: %w", err)
	}
	if err := insertDepots(ctx, tx, dialect, ds.Depots); err != nil {
		return fmt.Errorf("seed dataset: %w", err)
	}
	if err := insertPrices(ctx, tx, dialect, ds.Prices); err != nil {
		return fmt.Errorf("seed dataset: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed dataset: commit tx: %w", err)
	}

	return nil
}

func insertRequests(ctx context.Context, tx *sql.Tx, dialect Dialect, requests []domain.CollectionRequest) error {
	stmt, err := tx.PrepareContext(ctx, dialect.rebind(`
	INSERT INTO collection_requests (row_no, day, location, material, weight_kg, lat, lon)
	VALUES (?, ?, ?, ?, ?, ?, ?);
	`))
	if err != nil {
		return fmt.Errorf("prepare request insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range requests {
		if _, err := stmt.ExecContext(ctx,
			r.Row, r.Day, r.Location, r.Material,
			nullableFloat(r.WeightKg), nullableFloat(r.Lat), nullableFloat(r.Lon),
		); err != nil {
			return fmt.Errorf("insert request row=%d: %w", r.Row, err)
		}
	}

	return nil
}

func insertDepots(ctx context.Context, tx *sql.Tx, dialect Dialect, depots []domain.Depot) error {
	stmt, err := tx.PrepareContext(ctx, dialect.rebind(`
	INSERT INTO depots (seq, name, lat, lon)
	VALUES (?, ?, ?, ?);
	`))
	if err != nil {
		return fmt.Errorf("prepare depot insert: %w", err)
	}
	defer stmt.Close()

	for i, d := range depots {
		if _, err := stmt.ExecContext(ctx, i+1, d.Name, d.Lat, d.Lon); err != nil {
			return fmt.Errorf("insert depot %q: %w", d.Name, err)
		}
	}

	return nil
}

func insertPrices(ctx context.Context, tx *sql.Tx, dialect Dialect, prices domain.PriceTable) error {
	stmt, err := tx.PrepareContext(ctx, dialect.rebind(`
	INSERT INTO material_prices (material, price_per_kg)
	VALUES (?, ?);
	`))
	if err != nil {
		return fmt.Errorf("prepare price insert: %w", err)
	}
	defer stmt.Close()

	for material, price := range prices {
		if _, err := stmt.ExecContext(ctx, material, price.String()); err != nil {
			return fmt.Errorf("insert price material=%q: %w", material, err)
		}
	}

	return nil
}

// nullableFloat maps NaN to NULL; neither driver stores NaN portably.
func nullableFloat(v float64) any {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}
