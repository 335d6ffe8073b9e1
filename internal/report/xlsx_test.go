package report

import (
	"bytes"
	"context"
	"math"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"recycling-route-service/internal/domain"
	"recycling-route-service/internal/services"
)

func sampleResult(t *testing.T) *services.OptimizeResult {
	t.Helper()
	pt := func(lat, lon float64) domain.Coordinates { return domain.Coordinates{Lat: lat, Lon: lon} }

	res, err := services.Optimize(context.Background(), services.OptimizeRequest{
		Requests: []domain.CollectionRequest{
			{Row: 1, Day: "Monday", Location: "A", Material: "Paper", WeightKg: 10, Coordinates: pt(0, 1)},
			{Row: 2, Day: "Monday", Location: "B", Material: "Glass", WeightKg: 5, Coordinates: pt(0, 2)},
			{Row: 3, Day: "Monday", Location: "C", Material: "Tyres", WeightKg: 3, Coordinates: pt(1, 0)},
			{Row: 4, Day: "Tuesday", Location: "D", Material: "Paper", WeightKg: math.NaN(), Coordinates: pt(1, 1)},
		},
		Depots:        []domain.Depot{{Name: "Central", Coordinates: pt(0, 0)}},
		Prices:        domain.PriceTable{"Paper": decimal.RequireFromString("2"), "Glass": decimal.RequireFromString("0.5")},
		MaxIterations: 100,
		Workers:       1,
	})
	require.NoError(t, err)
	return res
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, sampleResult(t)))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetSummary, SheetRoutes, SheetMaterials, SheetIssues}, f.GetSheetList())

	routes, err := f.GetRows(SheetRoutes)
	require.NoError(t, err)
	require.Len(t, routes, 4)
	assert.Equal(t, "Stop", routes[0][2])
	assert.Equal(t, []string{"Monday", "Central", "1", "1", "A", "Paper", "10"}, routes[1][:7])

	materials, err := f.GetRows(SheetMaterials)
	require.NoError(t, err)
	require.Len(t, materials, 4)
	assert.Equal(t, "Glass", materials[1][0])
	assert.Equal(t, "Tyres", materials[3][0])
	assert.Equal(t, "FALSE", materials[3][5])

	issues, err := f.GetRows(SheetIssues)
	require.NoError(t, err)
	require.Len(t, issues, 3)
	assert.Equal(t, "invalid_row", issues[1][0])
	assert.Equal(t, "Tuesday", issues[1][2])
	assert.Equal(t, "unpriced_material", issues[2][0])

	summary, err := f.GetRows(SheetSummary)
	require.NoError(t, err)
	assert.Equal(t, []string{"Days planned", "1"}, summary[1])

	last := summary[len(summary)-1]
	assert.Equal(t, "Tuesday", last[0], "empty days are listed after planned days")
}

func TestSaveXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "week.xlsx")
	require.NoError(t, SaveXLSX(path, sampleResult(t)))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetSummary)
	require.NoError(t, err)
	assert.Equal(t, "Metric", rows[0][0])

	assert.Error(t, SaveXLSX(filepath.Join(t.TempDir(), "missing", "week.xlsx"), sampleResult(t)))
}
