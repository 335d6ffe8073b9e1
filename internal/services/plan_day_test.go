package services

import (
	"math"
	"slices"
	"testing"

	"github.com/shopspring/decimal"

	"recycling-route-service/internal/domain"
	"recycling-route-service/internal/routing"
)

func at(lat, lon float64) domain.Coordinates {
	return domain.Coordinates{Lat: lat, Lon: lon}
}

func paperPrices() domain.PriceTable {
	return domain.PriceTable{"Paper": decimal.RequireFromString("2.0")}
}

func threeStopDay() []domain.CollectionRequest {
	return []domain.CollectionRequest{
		{Row: 1, Day: "Monday", Location: "A", Material: "Paper", WeightKg: 10, Coordinates: at(0, 1)},
		{Row: 2, Day: "Monday", Location: "B", Material: "Paper", WeightKg: 10, Coordinates: at(0, 2)},
		{Row: 3, Day: "Monday", Location: "C", Material: "Paper", WeightKg: 10, Coordinates: at(1, 0)},
	}
}

func TestPlanDayThreeStops(t *testing.T) {
	depots := []domain.Depot{{Name: "Central", Coordinates: at(0, 0)}}

	res, issues := PlanDay("Monday", threeStopDay(), depots, paperPrices(), PlanOptions{MaxIterations: 1000})
	if res == nil {
		t.Fatalf("expected a day result")
	}
	if !issues.Empty() {
		t.Fatalf("unexpected issues: %+v", issues)
	}

	if res.Depot.Name != "Central" {
		t.Fatalf("depot = %q, want Central", res.Depot.Name)
	}
	if res.WeightKg != 30 {
		t.Fatalf("weight = %v, want 30", res.WeightKg)
	}
	if !res.Revenue.Equal(decimal.NewFromInt(60)) {
		t.Fatalf("revenue = %s, want 60", res.Revenue)
	}

	// (0,1) and (1,0) tie from the depot; the lower index is visited first.
	want := []int{0, 1, 2, 3, 0}
	if !slices.Equal(res.Tour, want) {
		t.Fatalf("tour = %v, want %v", res.Tour, want)
	}
	if err := routing.ValidateTour(res.Tour, 4, 0); err != nil {
		t.Fatalf("invalid tour: %v", err)
	}

	wantDist := 0.0
	for i := 0; i+1 < len(res.Tour); i++ {
		wantDist += routing.Haversine(res.Locations[res.Tour[i]], res.Locations[res.Tour[i+1]])
	}
	if math.Abs(res.DistanceKm-wantDist) > 1e-9 {
		t.Fatalf("distance = %v, want %v", res.DistanceKm, wantDist)
	}
	if math.Abs(res.Efficiency-60/wantDist) > 1e-12 {
		t.Fatalf("efficiency = %v, want %v", res.Efficiency, 60/wantDist)
	}
	if !res.Converged {
		t.Fatalf("expected 2-opt to converge")
	}

	if len(res.Stops) != 3 {
		t.Fatalf("expected 3 stops, got %d", len(res.Stops))
	}
	for i, loc := range []string{"A", "B", "C"} {
		s := res.Stops[i]
		if s.Number != i+1 || s.Request == nil || s.Request.Location != loc {
			t.Fatalf("stop %d = %+v, want location %s", i, s, loc)
		}
	}
}

func TestPlanDayPicksCloserDepot(t *testing.T) {
	depots := []domain.Depot{
		{Name: "Outlying", Coordinates: at(3, 3)},
		{Name: "Local", Coordinates: at(0.5, 0.5)},
	}

	res, _ := PlanDay("Monday", threeStopDay(), depots, paperPrices(), PlanOptions{MaxIterations: 1000})
	if res == nil {
		t.Fatalf("expected a day result")
	}
	if res.Depot.Name != "Local" {
		t.Fatalf("depot = %q, want Local", res.Depot.Name)
	}
	if res.Locations[0] != depots[1].Coordinates {
		t.Fatalf("location 0 = %+v, want depot coordinates", res.Locations[0])
	}
}

func TestPlanDayZeroBudgetKeepsNearestNeighborTour(t *testing.T) {
	rows := []domain.CollectionRequest{
		{Row: 1, Day: "Tue", Material: "Paper", WeightKg: 5, Coordinates: at(0, 0.02)},
		{Row: 2, Day: "Tue", Material: "Paper", WeightKg: 5, Coordinates: at(0.011, 0.001)},
		{Row: 3, Day: "Tue", Material: "Paper", WeightKg: 5, Coordinates: at(0.01, 0.03)},
		{Row: 4, Day: "Tue", Material: "Paper", WeightKg: 5, Coordinates: at(-0.02, 0.015)},
		{Row: 5, Day: "Tue", Material: "Paper", WeightKg: 5, Coordinates: at(0.001, 0.01)},
	}
	depots := []domain.Depot{{Name: "D", Coordinates: at(0, 0)}}

	res, _ := PlanDay("Tue", rows, depots, paperPrices(), PlanOptions{MaxIterations: 0})
	if res == nil {
		t.Fatalf("expected a day result")
	}

	m := routing.NewMatrix(res.Locations)
	nn := routing.NearestNeighbor(m, 0)
	if !slices.Equal(res.Tour, nn) {
		t.Fatalf("tour = %v, want nearest-neighbor tour %v", res.Tour, nn)
	}
	if res.ImprovementMoves != 0 || res.Converged {
		t.Fatalf("budget 0 should not run 2-opt: moves=%d converged=%t", res.ImprovementMoves, res.Converged)
	}

	improved, _ := PlanDay("Tue", rows, depots, paperPrices(), PlanOptions{MaxIterations: 1000})
	if improved.DistanceKm > res.DistanceKm+1e-9 {
		t.Fatalf("2-opt made the tour longer: %v > %v", improved.DistanceKm, res.DistanceKm)
	}
}

func TestPlanDayUnpricedMaterial(t *testing.T) {
	rows := threeStopDay()
	rows[1].Material = "Styrofoam"
	depots := []domain.Depot{{Name: "Central", Coordinates: at(0, 0)}}

	res, issues := PlanDay("Monday", rows, depots, paperPrices(), PlanOptions{MaxIterations: 1000})
	if res == nil {
		t.Fatalf("expected a day result")
	}

	if !res.Revenue.Equal(decimal.NewFromInt(40)) {
		t.Fatalf("revenue = %s, want 40", res.Revenue)
	}
	if res.WeightKg != 30 {
		t.Fatalf("weight = %v, want 30 (unpriced rows still count)", res.WeightKg)
	}
	if res.UnpricedRows != 1 {
		t.Fatalf("unpriced rows = %d, want 1", res.UnpricedRows)
	}
	if len(issues.UnpricedMaterials) != 1 {
		t.Fatalf("expected 1 unpriced warning, got %d", len(issues.UnpricedMaterials))
	}
	w := issues.UnpricedMaterials[0]
	if w.Row != 2 || w.Material != "Styrofoam" || w.Location != "B" {
		t.Fatalf("warning = %+v", w)
	}
}

func TestPlanDayExcludesInvalidRows(t *testing.T) {
	rows := threeStopDay()
	rows = append(rows,
		domain.CollectionRequest{Row: 4, Day: "Monday", Location: "NoLat", Material: "Paper", WeightKg: 10, Coordinates: at(math.NaN(), 1)},
		domain.CollectionRequest{Row: 5, Day: "Monday", Location: "Negative", Material: "Paper", WeightKg: -3, Coordinates: at(0, 3)},
		domain.CollectionRequest{Row: 6, Day: "Monday", Location: "OffMap", Material: "Paper", WeightKg: 1, Coordinates: at(0, 200)},
	)
	depots := []domain.Depot{{Name: "Central", Coordinates: at(0, 0)}}

	res, issues := PlanDay("Monday", rows, depots, paperPrices(), PlanOptions{MaxIterations: 1000})
	if res == nil {
		t.Fatalf("expected a day result")
	}
	if len(res.Collections) != 3 {
		t.Fatalf("collections = %d, want 3", len(res.Collections))
	}
	if len(issues.InvalidRows) != 3 {
		t.Fatalf("invalid rows = %d, want 3", len(issues.InvalidRows))
	}

	want := map[int]string{4: "Latitude", 5: "WeightKg", 6: "Longitude"}
	for _, e := range issues.InvalidRows {
		if want[e.Row] != e.Field {
			t.Fatalf("row %d flagged field %q, want %q", e.Row, e.Field, want[e.Row])
		}
	}
}

func TestPlanDayEmpty(t *testing.T) {
	depots := []domain.Depot{{Name: "Central", Coordinates: at(0, 0)}}

	res, issues := PlanDay("Sunday", nil, depots, paperPrices(), PlanOptions{})
	if res != nil {
		t.Fatalf("expected no result for an empty day")
	}
	if !issues.Empty() {
		t.Fatalf("unexpected issues: %+v", issues)
	}

	bad := []domain.CollectionRequest{{Row: 9, Day: "Sunday", WeightKg: math.NaN(), Coordinates: at(0, 1)}}
	res, issues = PlanDay("Sunday", bad, depots, paperPrices(), PlanOptions{})
	if res != nil {
		t.Fatalf("expected no result when every row is invalid")
	}
	if len(issues.InvalidRows) != 1 {
		t.Fatalf("invalid rows = %d, want 1", len(issues.InvalidRows))
	}
}

func TestPlanDayZeroDistanceEfficiency(t *testing.T) {
	rows := []domain.CollectionRequest{
		{Row: 1, Day: "Wed", Location: "Depot yard", Material: "Paper", WeightKg: 12, Coordinates: at(-33.9, 18.4)},
	}
	depots := []domain.Depot{{Name: "Yard", Coordinates: at(-33.9, 18.4)}}

	res, _ := PlanDay("Wed", rows, depots, paperPrices(), PlanOptions{MaxIterations: 1000})
	if res == nil {
		t.Fatalf("expected a day result")
	}
	if res.DistanceKm != 0 {
		t.Fatalf("distance = %v, want 0", res.DistanceKm)
	}
	if res.Efficiency != 0 {
		t.Fatalf("efficiency = %v, want 0", res.Efficiency)
	}
	if !slices.Equal(res.Tour, []int{0, 1, 0}) {
		t.Fatalf("tour = %v", res.Tour)
	}
}

func TestPlanDayBusinessRules(t *testing.T) {
	depots := []domain.Depot{{Name: "Central", Coordinates: at(0, 0)}}
	rules := domain.BusinessRules{FuelCostPerKm: decimal.RequireFromString("2.50"), MaxRouteDistanceKm: 100}

	res, _ := PlanDay("Monday", threeStopDay(), depots, paperPrices(), PlanOptions{MaxIterations: 1000, Rules: rules})
	if res == nil {
		t.Fatalf("expected a day result")
	}

	wantFuel := decimal.NewFromFloat(res.DistanceKm).Mul(decimal.RequireFromString("2.50")).Round(2)
	if !res.FuelCost.Equal(wantFuel) {
		t.Fatalf("fuel = %s, want %s", res.FuelCost, wantFuel)
	}
	if !res.NetRevenue.Equal(res.Revenue.Sub(wantFuel)) {
		t.Fatalf("net revenue = %s", res.NetRevenue)
	}
	if !res.ExceedsMaxDistance {
		t.Fatalf("a ~580 km tour should exceed the 100 km limit")
	}
}
