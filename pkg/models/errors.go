package models

import (
	"fmt"
	"strings"
)

// ValidationError reports malformed or out-of-range input. It carries the
// full list of violations found before computation started; inputs are never
// auto-corrected.
type ValidationError struct {
	Method     Method // Empty for engine-level validation
	Violations []string
}

func (e *ValidationError) Error() string {
	scope := "input"
	if e.Method != "" {
		scope = string(e.Method)
	}
	return fmt.Sprintf("validation failed for %s: %s", scope, strings.Join(e.Violations, "; "))
}

// NumericalError reports a computation that would produce a corrupt number:
// a non-positive-semi-definite correlation matrix, division by zero, or a
// NaN/Inf intermediate. It is always surfaced, never coerced to a value.
type NumericalError struct {
	Op     string // e.g. "cholesky", "percentile"
	Detail string
}

func (e *NumericalError) Error() string {
	return fmt.Sprintf("numerical error in %s: %s", e.Op, e.Detail)
}

// NoApplicableMethodError is the fatal case of partial method failure:
// every applicable method for the stage failed, so no hybrid result exists.
type NoApplicableMethodError struct {
	Stage    Stage
	Failures map[Method]string
}

func (e *NoApplicableMethodError) Error() string {
	return fmt.Sprintf("no applicable valuation method succeeded for stage %s (%d failed)", e.Stage, len(e.Failures))
}
