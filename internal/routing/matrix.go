package routing

import "recycling-route-service/internal/domain"

// Matrix is a square, symmetric table of distances in kilometers with a zero diagonal.
// It is built once per planning pass and only read afterwards.
type Matrix [][]float64

// NewMatrix computes Haversine distances between every pair of locations.
// Each unordered pair is evaluated once and mirrored, so the result is exactly symmetric.
func NewMatrix(locations []domain.Coordinates) Matrix {
	n := len(locations)
	m := make(Matrix, n)
	cells := make([]float64, n*n)
	for i := range m {
		m[i] = cells[i*n : (i+1)*n : (i+1)*n]
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := Haversine(locations[i], locations[j])
			m[i][j] = d
			m[j][i] = d
		}
	}

	return m
}

// Size returns the number of locations covered by the matrix.
func (m Matrix) Size() int { return len(m) }

// TourDistance sums the consecutive edge lengths along a tour.
func (m Matrix) TourDistance(tour []int) float64 {
	total := 0.0
	for i := 0; i+1 < len(tour); i++ {
		total += m[tour[i]][tour[i+1]]
	}
	return total
}
