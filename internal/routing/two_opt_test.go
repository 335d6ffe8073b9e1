package routing

import (
	"math/rand"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recycling-route-service/internal/domain"
)

// Corners of a small square near the equator, listed in perimeter order.
var square = []domain.Coordinates{
	{Lat: 0, Lon: 0},
	{Lat: 0, Lon: 0.01},
	{Lat: 0.01, Lon: 0.01},
	{Lat: 0.01, Lon: 0},
}

func TestTwoOptUncrossesSquare(t *testing.T) {
	m := NewMatrix(square)
	crossed := []int{0, 2, 1, 3, 0}
	input := slices.Clone(crossed)

	res := TwoOpt(m, crossed, 1000)

	assert.Equal(t, []int{0, 1, 2, 3, 0}, res.Tour)
	assert.Equal(t, 1, res.Moves)
	assert.True(t, res.Converged)
	assert.Less(t, res.DistanceKm, m.TourDistance(crossed))
	assert.InDelta(t, m.TourDistance(res.Tour), res.DistanceKm, 1e-12)
	assert.Equal(t, input, crossed, "input tour must not be modified")
}

func TestTwoOptZeroBudgetReturnsInput(t *testing.T) {
	m := NewMatrix(square)
	crossed := []int{0, 2, 1, 3, 0}

	res := TwoOpt(m, crossed, 0)

	assert.Equal(t, crossed, res.Tour)
	assert.Equal(t, 0, res.Moves)
	assert.False(t, res.Converged)
	assert.Equal(t, m.TourDistance(crossed), res.DistanceKm)
}

func TestTwoOptBudgetExhausted(t *testing.T) {
	m := NewMatrix(square)

	// One move fixes the crossing but the budget ends before the confirming scan.
	res := TwoOpt(m, []int{0, 2, 1, 3, 0}, 1)

	assert.Equal(t, []int{0, 1, 2, 3, 0}, res.Tour)
	assert.Equal(t, 1, res.Moves)
	assert.False(t, res.Converged)
}

func TestTwoOptSmallToursConverge(t *testing.T) {
	m := NewMatrix(square[:3])

	for _, tour := range [][]int{{0, 0}, {0, 1, 0}, {0, 1, 2, 0}} {
		res := TwoOpt(m, tour, 10)
		assert.Equal(t, tour, res.Tour)
		assert.True(t, res.Converged)
		assert.Zero(t, res.Moves)
	}
}

func TestTwoOptNeverWorseThanNearestNeighbor(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for trial := 0; trial < 25; trial++ {
		n := 2 + rng.Intn(40)
		locs := make([]domain.Coordinates, n)
		for i := range locs {
			locs[i] = domain.Coordinates{
				Lat: -34 + rng.Float64()*0.5,
				Lon: 18.3 + rng.Float64()*0.5,
			}
		}

		m := NewMatrix(locs)
		initial := NearestNeighbor(m, 0)
		require.NoError(t, ValidateTour(initial, n, 0))

		res := TwoOpt(m, initial, 5000)
		require.NoError(t, ValidateTour(res.Tour, n, 0), "trial %d", trial)
		assert.LessOrEqual(t, res.DistanceKm, m.TourDistance(initial)+1e-9, "trial %d", trial)
		assert.True(t, res.Converged, "trial %d", trial)
	}
}

func TestTwoOptDeterministic(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	locs := make([]domain.Coordinates, 30)
	for i := range locs {
		locs[i] = domain.Coordinates{Lat: rng.Float64(), Lon: rng.Float64()}
	}
	m := NewMatrix(locs)
	initial := NearestNeighbor(m, 0)

	first := TwoOpt(m, initial, 1000)
	for i := 0; i < 3; i++ {
		again := TwoOpt(m, initial, 1000)
		assert.Equal(t, first, again)
	}
}
