package services

import (
	"sort"

	"github.com/shopspring/decimal"

	"recycling-route-service/internal/domain"
)

// Summarize totals the given days. AverageEfficiency is the plain mean of the
// per-day efficiencies.
func Summarize(order []string, days map[string]*domain.DayResult) domain.WeeklySummary {
	s := domain.WeeklySummary{
		TotalRevenue:    decimal.Zero,
		TotalFuelCost:   decimal.Zero,
		TotalNetRevenue: decimal.Zero,
	}

	efficiencySum := 0.0
	for _, day := range order {
		r, ok := days[day]
		if !ok {
			continue
		}
		s.Days++
		s.Collections += len(r.Collections)
		s.TotalDistanceKm += r.DistanceKm
		s.TotalWeightKg += r.WeightKg
		s.TotalRevenue = s.TotalRevenue.Add(r.Revenue)
		s.TotalFuelCost = s.TotalFuelCost.Add(r.FuelCost)
		s.TotalNetRevenue = s.TotalNetRevenue.Add(r.NetRevenue)
		efficiencySum += r.Efficiency
	}

	if s.Days > 0 {
		s.AverageEfficiency = efficiencySum / float64(s.Days)
	}

	return s
}

// SummarizeMaterials groups the routed collections of the given days by material,
// sorted by material name.
func SummarizeMaterials(order []string, days map[string]*domain.DayResult, prices domain.PriceTable) []domain.MaterialSummary {
	byMaterial := make(map[string]*domain.MaterialSummary)

	for _, day := range order {
		r, ok := days[day]
		if !ok {
			continue
		}
		for _, c := range r.Collections {
			ms, ok := byMaterial[c.Material]
			if !ok {
				price, priced := prices.Price(c.Material)
				ms = &domain.MaterialSummary{
					Material:   c.Material,
					PricePerKg: price,
					Value:      decimal.Zero,
					Priced:     priced,
				}
				byMaterial[c.Material] = ms
			}
			ms.Collections++
			ms.WeightKg += c.WeightKg
			if ms.Priced {
				ms.Value = ms.Value.Add(decimal.NewFromFloat(c.WeightKg).Mul(ms.PricePerKg))
			}
		}
	}

	out := make([]domain.MaterialSummary, 0, len(byMaterial))
	for _, ms := range byMaterial {
		out = append(out, *ms)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Material < out[j].Material })

	return out
}
