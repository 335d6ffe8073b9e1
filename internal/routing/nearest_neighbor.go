package routing

import "math"

// NearestNeighbor builds a closed tour greedily from start.
//
// At each step the closest unvisited location is appended; when several are
// equidistant the lowest index wins, so the result is reproducible. The tour
// returns to start once every location is visited. An empty matrix (or a start
// outside it) yields an empty tour.
func NearestNeighbor(m Matrix, start int) []int {
	n := m.Size()
	if n == 0 || start < 0 || start >= n {
		return []int{}
	}

	visited := make([]bool, n)
	tour := make([]int, 0, n+1)

	current := start
	visited[current] = true
	tour = append(tour, current)

	for step := 1; step < n; step++ {
		next := -1
		best := math.Inf(1)

		// Ascending scan with strict comparison keeps the lowest index on ties.
		for j := 0; j < n; j++ {
			if visited[j] {
				continue
			}
			if next == -1 || m[current][j] < best {
				next = j
				best = m[current][j]
			}
		}

		visited[next] = true
		tour = append(tour, next)
		current = next
	}

	return append(tour, start)
}
