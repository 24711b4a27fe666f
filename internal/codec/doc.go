// Package codec serializes clocks and log entries as JSON.
//
// Values form a closed tagged union: each encoded object carries a "type"
// field naming its variant ("clock" or "entry"). Decoding validates the
// payload against an embedded JSON Schema before building typed values,
// and reports every failure as a *DecodeError.
package codec
