package config

import (
	"log"

	"github.com/shopspring/decimal"

	"recycling-route-service/internal/domain"
)

func DefaultBusinessRules() domain.BusinessRules {
	return domain.BusinessRules{
		FuelCostPerKm:      decimal.RequireFromString("2.50"),
		MaxRouteDistanceKm: 100,
	}
}

// BusinessRulesFromEnv reads FUEL_COST_PER_KM and MAX_ROUTE_DISTANCE_KM over the defaults.
func BusinessRulesFromEnv() domain.BusinessRules {
	rules := DefaultBusinessRules()

	if v := Get("FUEL_COST_PER_KM", ""); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			log.Printf("config: ignoring FUEL_COST_PER_KM=%q: %v", v, err)
		} else {
			rules.FuelCostPerKm = d
		}
	}
	rules.MaxRouteDistanceKm = GetFloat("MAX_ROUTE_DISTANCE_KM", rules.MaxRouteDistanceKm)

	return rules
}
