package timeoff

import (
	"errors"

	"github.com/warp/timesheet-engine/timesheet"
)

var (
	// ErrRequestNotFound is returned for an unknown request id.
	ErrRequestNotFound = errors.New("time-off request not found")

	// ErrAlreadyProcessed is returned when a decision targets a request that
	// has already left pending. Callers must surface it.
	ErrAlreadyProcessed = errors.New("time-off request already processed")

	// ErrInvalidDecision is returned for anything but approve/reject.
	ErrInvalidDecision = errors.New("invalid decision")

	// ErrInvalidStatus is returned for an unknown status filter.
	ErrInvalidStatus = errors.New("invalid status")
)

// IsClientError covers engine input errors and bad decisions.
func IsClientError(err error) bool {
	return timesheet.IsClientError(err) ||
		errors.Is(err, ErrInvalidDecision) ||
		errors.Is(err, ErrInvalidStatus)
}

// IsNotFound covers unknown requests and unknown employees.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrRequestNotFound) || timesheet.IsNotFound(err)
}

// IsConflict returns true when the request was decided by someone else first.
func IsConflict(err error) bool {
	return errors.Is(err, ErrAlreadyProcessed)
}
