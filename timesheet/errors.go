/*
errors.go - Error types for the time-accounting engine

PURPOSE:
  All engine errors in one place. Every failure is locally recoverable: the
  caller (HTTP layer, CLI) decides how to surface it.

ERROR CATEGORIES:
  1. Input errors - unparseable dates/times, unknown categories, bad ranges
  2. Lookup errors - unknown employee
  3. Request errors - live in timeoff/errors.go and wrap these helpers

USAGE:
  if errors.Is(err, timesheet.ErrInvalidDate) {
      // reject the form field
  }

SEE ALSO:
  - timeoff/request.go: ErrAlreadyProcessed, ErrRequestNotFound
  - api/handlers.go: maps these to HTTP status codes
*/
package timesheet

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidDate is returned for a malformed or missing calendar date.
	ErrInvalidDate = errors.New("invalid date")

	// ErrInvalidTime is returned for a malformed clock reading.
	ErrInvalidTime = errors.New("invalid time of day")

	// ErrInvalidCategory is returned when a time-off category is required
	// and the given one is outside the recognized set.
	ErrInvalidCategory = errors.New("invalid category")

	// ErrInvalidRange is returned when a range ends before it starts.
	ErrInvalidRange = errors.New("invalid range: end before start")

	// ErrInvalidHours is returned for negative hour values.
	ErrInvalidHours = errors.New("invalid hours")

	// ErrEmployeeNotFound is returned for an unknown employee id.
	ErrEmployeeNotFound = errors.New("employee not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ParseError reports which input failed to parse.
type ParseError struct {
	Kind  error // one of the sentinels above
	Input string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%v: %q", e.Kind, e.Input)
}

func (e *ParseError) Unwrap() error {
	return e.Kind
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrInvalidTime) ||
		errors.Is(err, ErrInvalidCategory) ||
		errors.Is(err, ErrInvalidRange) ||
		errors.Is(err, ErrInvalidHours)
}

// IsNotFound returns true if the error indicates a missing employee.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEmployeeNotFound)
}
