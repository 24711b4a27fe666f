// Package clock provides an immutable vector clock for tracking causality
// between participants. Comparison is key-set sensitive: clocks over
// different participants are never ordered, while Join pads absent
// participants with zero to compute the least upper bound.
package clock

