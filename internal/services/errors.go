package services

import (
	"fmt"
	"strings"
)

// ValidationError reports failed field constraints or a store-level
// rejection such as a uniqueness violation. It carries the offending field
// names and the originally submitted arguments for caller diagnostics.
type ValidationError struct {
	Fields []string
	Args   map[string]any
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", strings.Join(e.Fields, ", "))
}

type fieldCheck struct {
	name  string
	value string
	min   int
}

// checkFields returns a ValidationError naming every field shorter than its
// minimum length, or nil when all constraints hold.
func checkFields(args map[string]any, checks ...fieldCheck) error {
	var failed []string
	for _, check := range checks {
		if len(check.value) < check.min {
			failed = append(failed, check.name)
		}
	}
	if len(failed) == 0 {
		return nil
	}
	return &ValidationError{Fields: failed, Args: args}
}
