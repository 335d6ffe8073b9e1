package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"recycling-route-service/internal/domain"
	"recycling-route-service/internal/platform/obs"
)

// SQL-backed implementation of the DatasetSource port (SQLite or Postgres).
type SQLDatasetRepository struct {
	DB      *sql.DB
	Dialect Dialect
}

func NewSQLDatasetRepository(db *sql.DB, dialect Dialect) *SQLDatasetRepository {
	return &SQLDatasetRepository{DB: db, Dialect: dialect}
}

// Load all collection requests, depots and prices.
func (s *SQLDatasetRepository) LoadDataset(ctx context.Context) (_ *domain.Dataset, err error) {
	defer obs.Time(ctx, "dataset.sql.Load")(&err)

	if s.DB == nil {
		return nil, errors.New("sql dataset repository: DB is nil")
	}

	requests, err := s.listRequests(ctx)
	if err != nil {
		return nil, err
	}
	depots, err := s.listDepots(ctx)
	if err != nil {
		return nil, err
	}
	prices, err := s.listPrices(ctx)
	if err != nil {
		return nil, err
	}

	return &domain.Dataset{Requests: requests, Depots: depots, Prices: prices}, nil
}

func (s *SQLDatasetRepository) listRequests(ctx context.Context) ([]domain.CollectionRequest, error) {
	query := `
	SELECT
		row_no,
		day,
		location,
		material,
		weight_kg,
		lat,
		lon
	FROM collection_requests
	ORDER BY row_no;
	`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list requests: query collection_requests table: %w", err)
	}
	defer rows.Close()

	requests := make([]domain.CollectionRequest, 0, 64)
	for rows.Next() {
		var r domain.CollectionRequest
		var weight, lat, lon sql.NullFloat64
		if err := rows.Scan(&r.Row, &r.Day, &r.Location, &r.Material, &weight, &lat, &lon); err != nil {
			return nil, fmt.Errorf("list requests: scan row: %w", err)
		}
		r.WeightKg = floatOrNaNFromNull(weight)
		r.Lat = floatOrNaNFromNull(lat)
		r.Lon = floatOrNaNFromNull(lon)
		requests = append(requests, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list requests: row iteration: %w", err)
	}

	return requests, nil
}

func (s *SQLDatasetRepository) listDepots(ctx context.Context) ([]domain.Depot, error) {
	query := `
	SELECT
		name,
		lat,
		lon
	FROM depots
	ORDER BY seq;
	`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list depots: query depots table: %w", err)
	}
	defer rows.Close()

	depots := make([]domain.Depot, 0, 4)
	for rows.Next() {
		var d domain.Depot
		if err := rows.Scan(&d.Name, &d.Lat, &d.Lon); err != nil {
			return nil, fmt.Errorf("list depots: scan row: %w", err)
		}
		depots = append(depots, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list depots: row iteration: %w", err)
	}

	return depots, nil
}

func (s *SQLDatasetRepository) listPrices(ctx context.Context) (domain.PriceTable, error) {
	query := `
	SELECT
		material,
		price_per_kg
	FROM material_prices;
	`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list prices: query material_prices table: %w", err)
	}
	defer rows.Close()

	prices := make(domain.PriceTable)
	for rows.Next() {
		var material string
		var price decimal.Decimal
		if err := rows.Scan(&material, &price); err != nil {
			return nil, fmt.Errorf("list prices: scan row: %w", err)
		}
		prices[material] = price
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list prices: row iteration: %w", err)
	}

	return prices, nil
}

func floatOrNaNFromNull(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}
