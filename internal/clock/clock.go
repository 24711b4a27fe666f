package clock

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// VectorClock is an immutable mapping from participant ID to counter.
// The zero value is the empty clock. Every operation returns a new clock.
type VectorClock struct {
	counters map[string]int64
}

// New creates a new empty vector clock.
func New() VectorClock {
	return VectorClock{}
}

// FromMap builds a clock from a participant -> counter mapping.
// The map is copied. Negative counters are rejected.
func FromMap(m map[string]int64) (VectorClock, error) {
	counters := make(map[string]int64, len(m))
	for p, c := range m {
		if c < 0 {
			return VectorClock{}, fmt.Errorf("negative counter %d for participant %q", c, p)
		}
		counters[p] = c
	}
	return VectorClock{counters: counters}, nil
}

// Increment returns a copy of the clock with the counter for the given
// participant increased by one. An absent participant starts at 1.
func (vc VectorClock) Increment(participant string) VectorClock {
	next := vc.ToMap()
	next[participant]++
	return VectorClock{counters: next}
}

// Join returns the least upper bound of both clocks: the union of their
// participants, each mapped to the larger of the two counters.
//
// The joined clock is not a stamp for a new event. Increment it for the
// joining participant before attributing it to that participant.
func (vc VectorClock) Join(other VectorClock) VectorClock {
	joined := vc.ToMap()
	for p, c := range other.counters {
		if cur, ok := joined[p]; !ok || cur < c {
			joined[p] = c
		}
	}
	return VectorClock{counters: joined}
}

// Get returns the counter for the given participant and whether the
// participant is present in the clock.
func (vc VectorClock) Get(participant string) (int64, bool) {
	c, ok := vc.counters[participant]
	return c, ok
}

// Participants returns the participants with a visible counter, sorted.
func (vc VectorClock) Participants() []string {
	keys := make([]string, 0, len(vc.counters))
	for k := range vc.counters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of participants in the clock.
func (vc VectorClock) Len() int {
	return len(vc.counters)
}

// ToMap returns a copy of the underlying counters.
func (vc VectorClock) ToMap() map[string]int64 {
	m := make(map[string]int64, len(vc.counters))
	for k, v := range vc.counters {
		m[k] = v
	}
	return m
}

// Order represents the result of comparing two vector clocks.
type Order int

const (
	// Before indicates this clock happened before the other.
	Before Order = iota - 1
	// Equal indicates the clocks are equal.
	Equal
	// After indicates this clock happened after the other.
	After
	// Unordered indicates the clocks have different participants or their
	// counters move in different directions.
	Unordered
)

func (o Order) String() string {
	switch o {
	case Before:
		return "Before"
	case Equal:
		return "Equal"
	case After:
		return "After"
	case Unordered:
		return "Unordered"
	default:
		return fmt.Sprintf("Order(%d)", int(o))
	}
}

// sameParticipants reports whether both clocks have exactly the same key set.
func (vc VectorClock) sameParticipants(other VectorClock) bool {
	if len(vc.counters) != len(other.counters) {
		return false
	}
	for p := range vc.counters {
		if _, ok := other.counters[p]; !ok {
			return false
		}
	}
	return true
}

// Compare compares two vector clocks and returns their relationship.
//
// Missing participants are not treated as zero: clocks with different key
// sets are always Unordered, even when one is entrywise dominated by the
// other. Only Join pads absent participants with zero.
func (vc VectorClock) Compare(other VectorClock) Order {
	if !vc.sameParticipants(other) {
		return Unordered
	}

	le, eq, ge := true, true, true
	for p, c := range vc.counters {
		o := other.counters[p]
		le = le && c <= o
		eq = eq && c == o
		ge = ge && c >= o
	}

	switch {
	case eq:
		return Equal
	case le:
		return Before
	case ge:
		return After
	default:
		return Unordered
	}
}

// holds applies op to every participant pair. It is false on key set
// mismatch, which is why none of the relational methods below can be
// expressed as the negation of another.
func (vc VectorClock) holds(other VectorClock, op func(a, b int64) bool) bool {
	if !vc.sameParticipants(other) {
		return false
	}
	for p, c := range vc.counters {
		if !op(c, other.counters[p]) {
			return false
		}
	}
	return true
}

// Equal reports whether both clocks have the same participants and counters.
func (vc VectorClock) Equal(other VectorClock) bool {
	return vc.holds(other, func(a, b int64) bool { return a == b })
}

// Less reports whether every counter is strictly less than the other's.
func (vc VectorClock) Less(other VectorClock) bool {
	return vc.holds(other, func(a, b int64) bool { return a < b })
}

// LessEq reports whether every counter is less than or equal to the other's.
func (vc VectorClock) LessEq(other VectorClock) bool {
	return vc.holds(other, func(a, b int64) bool { return a <= b })
}

// Greater reports whether every counter is strictly greater than the other's.
func (vc VectorClock) Greater(other VectorClock) bool {
	return vc.holds(other, func(a, b int64) bool { return a > b })
}

// GreaterEq reports whether every counter is greater than or equal to the other's.
func (vc VectorClock) GreaterEq(other VectorClock) bool {
	return vc.holds(other, func(a, b int64) bool { return a >= b })
}

// String returns a string representation of the vector clock.
func (vc VectorClock) String() string {
	if len(vc.counters) == 0 {
		return "{}"
	}

	// Sort for deterministic output
	var parts []string
	for _, k := range vc.Participants() {
		parts = append(parts, fmt.Sprintf("%s:%d", k, vc.counters[k]))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// MarshalJSON encodes the clock as an object of participant -> counter.
func (vc VectorClock) MarshalJSON() ([]byte, error) {
	if vc.counters == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(vc.counters)
}

// UnmarshalJSON decodes an object of participant -> counter. Counters must
// be non-negative integers.
func (vc *VectorClock) UnmarshalJSON(data []byte) error {
	var m map[string]int64
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("invalid vector clock: %w", err)
	}
	if m == nil {
		return fmt.Errorf("invalid vector clock: expected object, got %s", data)
	}
	parsed, err := FromMap(m)
	if err != nil {
		return fmt.Errorf("invalid vector clock: %w", err)
	}
	*vc = parsed
	return nil
}
