// Package cli implements the vclock and vlog command line tools. Commands
// return process exit codes: 0 on success, 1 when a predicate command
// answers no, 2 on usage or input errors.
package cli
