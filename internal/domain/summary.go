package domain

import "github.com/shopspring/decimal"

// Totals across every planned day of a run.
type WeeklySummary struct {
	Days              int
	Collections       int
	TotalDistanceKm   float64
	TotalWeightKg     float64
	TotalRevenue      decimal.Decimal
	TotalFuelCost     decimal.Decimal
	TotalNetRevenue   decimal.Decimal
	AverageEfficiency float64
}

// Collected weight and value for one material type.
// Priced is false when the material has no entry in the price table; Value is then zero.
type MaterialSummary struct {
	Material    string
	Collections int
	WeightKg    float64
	PricePerKg  decimal.Decimal
	Value       decimal.Decimal
	Priced      bool
}
