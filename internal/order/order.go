package order

import (
	"sort"

	"vectorlog/internal/clock"
)

// IsOrderable reports whether the clocks, padded with zeros over the union
// of their participants and sorted lexicographically, are non-decreasing in
// every coordinate between neighbours.
func IsOrderable(clocks []clock.VectorClock) bool {
	if len(clocks) < 2 {
		return true
	}

	keys := unionParticipants(clocks)

	// Every tuple must use the same key order
	tuples := make([][]int64, len(clocks))
	for i, c := range clocks {
		tuple := make([]int64, len(keys))
		for j, p := range keys {
			tuple[j], _ = c.Get(p) // absent counts as zero
		}
		tuples[i] = tuple
	}

	sort.Slice(tuples, func(i, j int) bool {
		return lexLess(tuples[i], tuples[j])
	})

	for i := 1; i < len(tuples); i++ {
		prev, cur := tuples[i-1], tuples[i]
		for k := range cur {
			if prev[k] > cur[k] {
				return false
			}
		}
	}
	return true
}

// IsIncreasing reports whether each clock is LessEq the next one, in the
// order given. Clocks over different participants break the chain.
func IsIncreasing(clocks []clock.VectorClock) bool {
	return FirstViolation(clocks) < 0
}

// FirstViolation returns the index of the first clock that is not LessEq
// its successor, or -1 when the sequence is increasing.
func FirstViolation(clocks []clock.VectorClock) int {
	for i := 1; i < len(clocks); i++ {
		if !clocks[i-1].LessEq(clocks[i]) {
			return i - 1
		}
	}
	return -1
}

// unionParticipants returns every participant seen in any clock, sorted.
func unionParticipants(clocks []clock.VectorClock) []string {
	seen := make(map[string]struct{})
	for _, c := range clocks {
		for _, p := range c.Participants() {
			seen[p] = struct{}{}
		}
	}
	keys := make([]string, 0, len(seen))
	for p := range seen {
		keys = append(keys, p)
	}
	sort.Strings(keys)
	return keys
}

func lexLess(a, b []int64) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}
