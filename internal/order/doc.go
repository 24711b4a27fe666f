// Package order validates sequences of vector clocks, which need not come
// from a single log.
//
// The package holds two deliberately different checks. IsOrderable pads
// absent participants with zero and asks whether the clocks can be sorted
// into a per-participant monotone chain. IsIncreasing keeps the given order
// and uses the strict key set comparison of the clock package.
package order
