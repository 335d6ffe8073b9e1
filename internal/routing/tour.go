package routing

import (
	"errors"
	"fmt"
)

var (
	ErrTourLength    = errors.New("tour: length must be location count + 1")
	ErrTourNotClosed = errors.New("tour: must start and end at the depot")
	ErrTourVisit     = errors.New("tour: every non-depot location must be visited exactly once")
)

// ValidateTour checks that tour is a closed loop over n locations starting and
// ending at depot, visiting every other index exactly once.
func ValidateTour(tour []int, n int, depot int) error {
	if n == 0 {
		if len(tour) != 0 {
			return ErrTourLength
		}
		return nil
	}
	if len(tour) != n+1 {
		return fmt.Errorf("%w: got %d, want %d", ErrTourLength, len(tour), n+1)
	}
	if tour[0] != depot || tour[n] != depot {
		return ErrTourNotClosed
	}

	seen := make([]bool, n)
	for _, idx := range tour[1:n] {
		if idx < 0 || idx >= n || idx == depot || seen[idx] {
			return fmt.Errorf("%w: index %d", ErrTourVisit, idx)
		}
		seen[idx] = true
	}

	return nil
}
