// Package storage persists causal logs by name. Logs are stored in their
// codec form so a load always yields an independent copy that has passed
// the log invariants.
package storage
