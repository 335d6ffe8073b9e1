package repositories

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"recycling-route-service/internal/domain"
	"recycling-route-service/internal/platform/obs"
)

var (
	routeColumns = []string{"Day", "Location", "Material", "Estimated_Weight_kg", "Latitude", "Longitude"}
	depotColumns = []string{"Depot", "Latitude", "Longitude"}
	priceColumns = []string{"Material", "Price_per_kg"}
)

// CSV-file implementation of the DatasetSource port.
type CSVDatasetSource struct {
	RoutesPath string
	DepotsPath string
	PricesPath string
}

func NewCSVDatasetSource(routesPath, depotsPath, pricesPath string) *CSVDatasetSource {
	return &CSVDatasetSource{RoutesPath: routesPath, DepotsPath: depotsPath, PricesPath: pricesPath}
}

// Read the three CSV files into a Dataset.
func (s *CSVDatasetSource) LoadDataset(ctx context.Context) (_ *domain.Dataset, err error) {
	defer obs.Time(ctx, "dataset.csv.Load")(&err)

	requests, err := readFile(s.RoutesPath, ReadCollectionRequests)
	if err != nil {
		return nil, err
	}
	depots, err := readFile(s.DepotsPath, ReadDepots)
	if err != nil {
		return nil, err
	}
	prices, err := readFile(s.PricesPath, ReadPrices)
	if err != nil {
		return nil, err
	}

	return &domain.Dataset{Requests: requests, Depots: depots, Prices: prices}, nil
}

func readFile[T any](path string, read func(io.Reader) (T, error)) (T, error) {
	var zero T

	f, err := os.Open(path)
	if err != nil {
		return zero, fmt.Errorf("load dataset: open %q: %w", path, err)
	}
	defer f.Close()

	v, err := read(f)
	if err != nil {
		return zero, fmt.Errorf("load dataset: %s: %w", path, err)
	}
	return v, nil
}

// ReadCollectionRequests parses weekly route rows. Unparseable numbers become NaN
// so the optimizer can report the row instead of failing the whole load.
func ReadCollectionRequests(r io.Reader) ([]domain.CollectionRequest, error) {
	records, cols, err := readTable(r, routeColumns)
	if err != nil {
		return nil, fmt.Errorf("read routes: %w", err)
	}

	out := make([]domain.CollectionRequest, 0, len(records))
	for i, rec := range records {
		out = append(out, domain.CollectionRequest{
			Row:      i + 1,
			Day:      field(rec, cols, "Day"),
			Location: field(rec, cols, "Location"),
			Material: field(rec, cols, "Material"),
			WeightKg: floatOrNaN(field(rec, cols, "Estimated_Weight_kg")),
			Coordinates: domain.Coordinates{
				Lat: floatOrNaN(field(rec, cols, "Latitude")),
				Lon: floatOrNaN(field(rec, cols, "Longitude")),
			},
		})
	}

	return out, nil
}

// ReadDepots parses depot rows. Any malformed row is an error.
func ReadDepots(r io.Reader) ([]domain.Depot, error) {
	records, cols, err := readTable(r, depotColumns)
	if err != nil {
		return nil, fmt.Errorf("read depots: %w", err)
	}

	out := make([]domain.Depot, 0, len(records))
	for i, rec := range records {
		name := field(rec, cols, "Depot")
		if name == "" {
			return nil, fmt.Errorf("read depots: row %d: depot name cannot be empty", i+1)
		}

		lat, err := strconv.ParseFloat(field(rec, cols, "Latitude"), 64)
		if err != nil {
			return nil, fmt.Errorf("read depots: row %d (%s): latitude: %w", i+1, name, err)
		}
		lon, err := strconv.ParseFloat(field(rec, cols, "Longitude"), 64)
		if err != nil {
			return nil, fmt.Errorf("read depots: row %d (%s): longitude: %w", i+1, name, err)
		}

		out = append(out, domain.Depot{Name: name, Coordinates: domain.Coordinates{Lat: lat, Lon: lon}})
	}

	return out, nil
}

// ReadPrices parses the material price table. Duplicate materials and negative
// prices are rejected.
func ReadPrices(r io.Reader) (domain.PriceTable, error) {
	records, cols, err := readTable(r, priceColumns)
	if err != nil {
		return nil, fmt.Errorf("read prices: %w", err)
	}

	out := make(domain.PriceTable, len(records))
	for i, rec := range records {
		material := field(rec, cols, "Material")
		if material == "" {
			return nil, fmt.Errorf("read prices: row %d: material cannot be empty", i+1)
		}
		if _, dup := out[material]; dup {
			return nil, fmt.Errorf("read prices: row %d: duplicate material %q", i+1, material)
		}

		price, err := decimal.NewFromString(field(rec, cols, "Price_per_kg"))
		if err != nil {
			return nil, fmt.Errorf("read prices: row %d (%s): %w", i+1, material, err)
		}
		if price.IsNegative() {
			return nil, fmt.Errorf("read prices: row %d (%s): price cannot be negative", i+1, material)
		}

		out[material] = price
	}

	return out, nil
}

// readTable returns the data records and the position of each required column.
// Extra columns are ignored and column order is free.
func readTable(r io.Reader, required []string) ([][]string, map[string]int, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, errors.New("missing header row")
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		// Spreadsheet exports sometimes prefix a UTF-8 BOM.
		h = strings.TrimPrefix(strings.TrimSpace(h), "\ufeff")
		cols[h] = i
	}
	for _, name := range required {
		if _, ok := cols[name]; !ok {
			return nil, nil, fmt.Errorf("missing column %q", name)
		}
	}

	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read records: %w", err)
	}

	return records, cols, nil
}

func field(rec []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func floatOrNaN(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
