// Package vlog implements an append-only causal log. Every appended entry
// is stamped with the join of all earlier entries' clocks, incremented for
// the writer, so each entry causally dominates everything before it.
package vlog
