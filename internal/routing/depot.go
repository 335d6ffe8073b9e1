package routing

import "recycling-route-service/internal/domain"

// SelectDepot picks the depot with the smallest summed Haversine distance to
// the given collection points and returns its index and that sum.
//
// The sum of straight depot-to-point legs is a proxy for routing cost: it ignores
// visiting order, so the chosen depot is not guaranteed to yield the shortest
// optimized tour. Ties go to the earliest candidate. Returns -1 when depots is empty.
func SelectDepot(depots []domain.Depot, points []domain.Coordinates) (int, float64) {
	best := -1
	bestTotal := 0.0

	for i, d := range depots {
		total := 0.0
		for _, p := range points {
			total += Haversine(d.Coordinates, p)
		}

		if best == -1 || total < bestTotal {
			best = i
			bestTotal = total
		}
	}

	return best, bestTotal
}
