package order

import (
	"vectorlog/internal/clock"
)

// Frontier returns the indices of the maximal clocks: those not strictly
// dominated by any other clock. Absent participants count as zero. Equal
// clocks are reported once, at their first index.
//
// More than one index means the clocks hold concurrent histories. Frontier
// only exposes them; it does not pick a winner.
func Frontier(clocks []clock.VectorClock) []int {
	maximal := make([]int, 0)

	for i, c1 := range clocks {
		isDominated := false

		// Check if c1 is dominated by any other clock
		for j, c2 := range clocks {
			if i == j {
				continue
			}
			if Dominates(c2, c1) {
				isDominated = true
				break
			}
		}
		if isDominated {
			continue
		}

		// Skip duplicates of a clock already on the frontier
		isDuplicate := false
		for _, k := range maximal {
			if clocks[k].Join(c1).Equal(clocks[k]) && c1.Join(clocks[k]).Equal(c1) {
				isDuplicate = true
				break
			}
		}
		if !isDuplicate {
			maximal = append(maximal, i)
		}
	}

	return maximal
}

// Dominates reports whether a is strictly causally after b, with absent
// participants counted as zero.
func Dominates(a, b clock.VectorClock) bool {
	joined := a.Join(b)
	return joined.Equal(a) && !b.Join(a).Equal(b)
}
