package routing

import "slices"

// Moves must shorten the tour by more than this many kilometers to be accepted,
// which keeps floating-point noise from producing endless zero-gain reversals.
const improvementEpsilon = 1e-9

// TwoOptResult is the outcome of a 2-opt pass.
type TwoOptResult struct {
	Tour       []int
	DistanceKm float64
	// Number of accepted reversals.
	Moves int
	// True when a full scan found no improving move before the budget ran out.
	Converged bool
}

// TwoOpt improves a closed tour with first-improvement 2-opt.
//
// Candidate cuts are positions 1 <= i < j <= len(tour)-2, so the depot endpoints
// never move. Reversing tour[i..j] replaces edges (a,b) and (c,d) with (a,c) and
// (b,d) where a=tour[i-1], b=tour[i], c=tour[j], d=tour[j+1]; the gain is
// evaluated from those four edges only. The first improving reversal is applied
// and the scan restarts. Each accepted reversal consumes one unit of
// maxIterations; a budget of zero returns the input unchanged.
//
// The input slice is not modified.
func TwoOpt(m Matrix, tour []int, maxIterations int) TwoOptResult {
	initial := m.TourDistance(tour)
	cur := slices.Clone(tour)

	res := TwoOptResult{Tour: cur, DistanceKm: initial}
	if maxIterations <= 0 {
		return res
	}

	n := len(cur)
	for res.Moves < maxIterations {
		improved := false

	scan:
		for i := 1; i < n-2; i++ {
			for j := i + 1; j < n-1; j++ {
				a, b, c, d := cur[i-1], cur[i], cur[j], cur[j+1]
				delta := m[a][c] + m[b][d] - m[a][b] - m[c][d]
				if delta < -improvementEpsilon {
					slices.Reverse(cur[i : j+1])
					res.Moves++
					improved = true
					break scan
				}
			}
		}

		if !improved {
			res.Converged = true
			break
		}
	}

	// Recompute from scratch so accumulated delta rounding never leaks into the result.
	res.DistanceKm = m.TourDistance(cur)
	if res.DistanceKm > initial {
		res.Tour = slices.Clone(tour)
		res.DistanceKm = initial
	}

	return res
}
