package services

import (
	"slices"

	"github.com/shopspring/decimal"

	"recycling-route-service/internal/domain"
	"recycling-route-service/internal/routing"
)

// PlanOptions configures a single day's planning pass.
type PlanOptions struct {
	// 2-opt iteration budget; zero keeps the nearest-neighbor tour.
	MaxIterations int
	Rules         domain.BusinessRules
}

// PlanDay optimizes the collection tour for one day.
//
// Rows with missing or malformed fields are reported and excluded. The depot is
// chosen by summed straight-line distance, the tour is built by nearest neighbor
// and refined by 2-opt, and weight, revenue and efficiency are attached. Rows whose
// material has no price still get routed but add no revenue and are reported.
//
// Returns a nil result when no row is eligible or depots is empty.
func PlanDay(
	day string,
	rows []domain.CollectionRequest,
	depots []domain.Depot,
	prices domain.PriceTable,
	opts PlanOptions,
) (*domain.DayResult, domain.DataIssues) {
	var issues domain.DataIssues

	collections := make([]domain.CollectionRequest, 0, len(rows))
	for _, r := range rows {
		if bad := validateRow(r); bad != nil {
			issues.InvalidRows = append(issues.InvalidRows, bad)
			continue
		}
		collections = append(collections, r)
	}

	if len(collections) == 0 || len(depots) == 0 {
		return nil, issues
	}

	points := make([]domain.Coordinates, len(collections))
	for i, c := range collections {
		points[i] = c.Coordinates
	}

	depotIdx, _ := routing.SelectDepot(depots, points)
	depot := depots[depotIdx]

	// Index 0 is the depot; collection i sits at index i+1.
	locations := make([]domain.Coordinates, 0, 1+len(points))
	locations = append(locations, depot.Coordinates)
	locations = append(locations, points...)

	m := routing.NewMatrix(locations)
	initial := routing.NearestNeighbor(m, 0)
	improved := routing.TwoOpt(m, initial, opts.MaxIterations)

	distance := improved.DistanceKm

	weight := 0.0
	revenue := decimal.Zero
	unpriced := 0
	for _, c := range collections {
		weight += c.WeightKg

		price, ok := prices.Price(c.Material)
		if !ok {
			unpriced++
			issues.UnpricedMaterials = append(issues.UnpricedMaterials, &domain.UnpricedMaterialWarning{
				Row:      c.Row,
				Day:      c.Day,
				Location: c.Location,
				Material: c.Material,
			})
			continue
		}
		revenue = revenue.Add(decimal.NewFromFloat(c.WeightKg).Mul(price))
	}

	efficiency := 0.0
	if distance > 0 {
		efficiency = revenue.InexactFloat64() / distance
	}

	fuel := opts.Rules.FuelCostPerKm.Mul(decimal.NewFromFloat(distance)).Round(2)

	res := &domain.DayResult{
		Day:                day,
		Depot:              depot,
		Locations:          locations,
		Tour:               slices.Clone(improved.Tour),
		Collections:        collections,
		DistanceKm:         distance,
		WeightKg:           weight,
		Revenue:            revenue,
		FuelCost:           fuel,
		NetRevenue:         revenue.Sub(fuel),
		Efficiency:         efficiency,
		ExceedsMaxDistance: opts.Rules.MaxRouteDistanceKm > 0 && distance > opts.Rules.MaxRouteDistanceKm,
		UnpricedRows:       unpriced,
		ImprovementMoves:   improved.Moves,
		Converged:          improved.Converged,
	}
	res.Stops = buildStops(res)

	return res, issues
}

// buildStops lists the collection visits of a tour in order, skipping the depot legs.
func buildStops(res *domain.DayResult) []domain.Stop {
	if len(res.Tour) < 2 {
		return []domain.Stop{}
	}

	inner := res.Tour[1 : len(res.Tour)-1]
	stops := make([]domain.Stop, 0, len(inner))
	for pos, idx := range inner {
		stops = append(stops, domain.Stop{
			Number:        pos + 1,
			LocationIndex: idx,
			Coordinates:   res.Locations[idx],
			Request:       &res.Collections[idx-1],
		})
	}

	return stops
}
