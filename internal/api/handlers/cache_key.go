package handlers

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"slices"
	"sort"

	"recycling-route-service/internal/domain"
)

// cacheKey fingerprints everything the cached response body depends on: the
// dataset, the level label, the iteration budget, the day filter and the
// business rules. Worker count is left out since it never changes the result.
func cacheKey(ds *domain.Dataset, p runParams, rules domain.BusinessRules) string {
	h := sha256.New()

	days := slices.Clone(p.days)
	slices.Sort(days)
	days = slices.Compact(days)

	fmt.Fprintf(h, "v2|level=%q|budget=%d|days=%q|fuel=%s|max_km=%v\n", p.level, p.budget, days, rules.FuelCostPerKm, rules.MaxRouteDistanceKm)
	writeDataset(h, ds)

	return hex.EncodeToString(h.Sum(nil))
}

func writeDataset(w io.Writer, ds *domain.Dataset) {
	for _, r := range ds.Requests {
		fmt.Fprintf(w, "r|%d|%q|%q|%q|%v|%v|%v\n", r.Row, r.Day, r.Location, r.Material, r.WeightKg, r.Lat, r.Lon)
	}
	for _, d := range ds.Depots {
		fmt.Fprintf(w, "d|%q|%v|%v\n", d.Name, d.Lat, d.Lon)
	}

	materials := make([]string, 0, len(ds.Prices))
	for m := range ds.Prices {
		materials = append(materials, m)
	}
	sort.Strings(materials)
	for _, m := range materials {
		fmt.Fprintf(w, "p|%q|%s\n", m, ds.Prices[m])
	}
}
