// Package report renders optimization results as spreadsheet workbooks.
package report

import (
	"fmt"
	"io"
	"os"

	"github.com/xuri/excelize/v2"

	"recycling-route-service/internal/services"
)

const (
	SheetSummary   = "Summary"
	SheetRoutes    = "Routes"
	SheetMaterials = "Materials"
	SheetIssues    = "Issues"
)

// WriteXLSX renders res as a workbook with one sheet each for the weekly summary,
// per-stop routes, material totals and data issues.
func WriteXLSX(w io.Writer, res *services.OptimizeResult) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	for _, name := range []string{SheetRoutes, SheetMaterials, SheetIssues} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("write xlsx: new sheet %s: %w", name, err)
		}
	}

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("write xlsx: header style: %w", err)
	}

	writers := []struct {
		sheet string
		rows  [][]any
	}{
		{SheetSummary, summaryRows(res)},
		{SheetRoutes, routeRows(res)},
		{SheetMaterials, materialRows(res)},
		{SheetIssues, issueRows(res)},
	}
	for _, s := range writers {
		if err := writeSheet(f, s.sheet, s.rows, header); err != nil {
			return fmt.Errorf("write xlsx: %w", err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

// SaveXLSX writes the workbook to path.
func SaveXLSX(path string, res *services.OptimizeResult) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("save xlsx: create %q: %w", path, err)
	}

	if err := WriteXLSX(out, res); err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("save xlsx: close %q: %w", path, err)
	}
	return nil
}

// writeSheet writes rows from A1 and styles the first row as a header.
func writeSheet(f *excelize.File, sheet string, rows [][]any, headerStyle int) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("sheet %s row %d: %w", sheet, i+1, err)
		}
	}

	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil
	}
	last, err := excelize.CoordinatesToCellName(len(rows[0]), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("sheet %s header style: %w", sheet, err)
	}

	lastCol, _, err := excelize.SplitCellName(last)
	if err != nil {
		return err
	}
	return f.SetColWidth(sheet, "A", lastCol, 16)
}

func summaryRows(res *services.OptimizeResult) [][]any {
	s := res.Summary
	rows := [][]any{
		{"Metric", "Value"},
		{"Days planned", s.Days},
		{"Collections", s.Collections},
		{"Total distance (km)", s.TotalDistanceKm},
		{"Total weight (kg)", s.TotalWeightKg},
		{"Total revenue", s.TotalRevenue.InexactFloat64()},
		{"Total fuel cost", s.TotalFuelCost.InexactFloat64()},
		{"Net revenue", s.TotalNetRevenue.InexactFloat64()},
		{"Average efficiency (revenue/km)", s.AverageEfficiency},
	}

	rows = append(rows, []any{}, []any{"Day", "Depot", "Stops", "Distance (km)", "Weight (kg)", "Revenue", "Fuel cost", "Net revenue", "Efficiency", "Over max distance", "2-opt moves", "Converged"})
	for _, day := range res.Order {
		d := res.Days[day]
		rows = append(rows, []any{
			d.Day, d.Depot.Name, len(d.Stops), d.DistanceKm, d.WeightKg,
			d.Revenue.InexactFloat64(), d.FuelCost.InexactFloat64(), d.NetRevenue.InexactFloat64(),
			d.Efficiency, d.ExceedsMaxDistance, d.ImprovementMoves, d.Converged,
		})
	}
	for _, day := range res.EmptyDays {
		rows = append(rows, []any{day, "", 0})
	}

	return rows
}

func routeRows(res *services.OptimizeResult) [][]any {
	rows := [][]any{{"Day", "Depot", "Stop", "Source row", "Location", "Material", "Weight (kg)", "Latitude", "Longitude"}}
	for _, day := range res.Order {
		d := res.Days[day]
		for _, s := range d.Stops {
			row := []any{d.Day, d.Depot.Name, s.Number, "", "", "", "", s.Lat, s.Lon}
			if s.Request != nil {
				row[3] = s.Request.Row
				row[4] = s.Request.Location
				row[5] = s.Request.Material
				row[6] = s.Request.WeightKg
			}
			rows = append(rows, row)
		}
	}
	return rows
}

func materialRows(res *services.OptimizeResult) [][]any {
	rows := [][]any{{"Material", "Collections", "Weight (kg)", "Price per kg", "Value", "Priced"}}
	for _, m := range res.Materials {
		price := any("")
		if m.Priced {
			price = m.PricePerKg.InexactFloat64()
		}
		rows = append(rows, []any{m.Material, m.Collections, m.WeightKg, price, m.Value.InexactFloat64(), m.Priced})
	}
	return rows
}

func issueRows(res *services.OptimizeResult) [][]any {
	rows := [][]any{{"Kind", "Row", "Day", "Location", "Detail"}}
	for _, e := range res.Issues.InvalidRows {
		rows = append(rows, []any{"invalid_row", e.Row, e.Day, e.Location, e.Field + ": " + e.Reason})
	}
	for _, w := range res.Issues.UnpricedMaterials {
		rows = append(rows, []any{"unpriced_material", w.Row, w.Day, w.Location, w.Material})
	}
	return rows
}
