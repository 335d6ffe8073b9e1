package domain

import "github.com/shopspring/decimal"

// Business rules applied to every planned day.
type BusinessRules struct {
	FuelCostPerKm decimal.Decimal
	// Routes longer than this are flagged; zero disables the check.
	MaxRouteDistanceKm float64
}
