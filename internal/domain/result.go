package domain

import "github.com/shopspring/decimal"

// Represents one collection visit along a planned tour.
// Number is the 1-based stop position; LocationIndex points into DayResult.Locations.
type Stop struct {
	Number        int
	LocationIndex int
	Request       *CollectionRequest
	Coordinates
}

// Represents the optimized collection tour for a single day.
// A DayResult is built once by the day planner and never modified afterwards.
// Stops[i].Request points into Collections; readers may share one DayResult.
type DayResult struct {
	Day   string
	Depot Depot

	// Locations[0] is the depot, Locations[i] is Collections[i-1].
	Locations   []Coordinates
	Tour        []int
	Stops       []Stop
	Collections []CollectionRequest

	DistanceKm float64
	WeightKg   float64
	Revenue    decimal.Decimal
	FuelCost   decimal.Decimal
	NetRevenue decimal.Decimal
	// Revenue per kilometer; zero when DistanceKm is zero.
	Efficiency float64

	ExceedsMaxDistance bool
	UnpricedRows       int

	// 2-opt diagnostics. Converged is false when the iteration budget ran out
	// before a full scan found no improving move.
	ImprovementMoves int
	Converged        bool
}
