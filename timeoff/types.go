// Package timeoff implements the time-off request workflow on top of the
// timesheet ledger. A request is independent of the ledger until it is
// approved; approval is the only path that writes TimeEntry rows.
package timeoff

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/timesheet-engine/timesheet"
)

// =============================================================================
// REQUEST
// =============================================================================

type RequestID string

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func (s Status) IsTerminal() bool { return s == StatusApproved || s == StatusRejected }

// ParseStatus accepts the three statuses; "" means "any" for filters.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case "", StatusPending, StatusApproved, StatusRejected:
		return Status(s), nil
	default:
		return "", &timesheet.ParseError{Kind: ErrInvalidStatus, Input: s}
	}
}

// Request is an employee's ask for time off.
type Request struct {
	ID           RequestID
	EmployeeID   timesheet.EmployeeID
	EmployeeName string // filled on reads
	FromDate     timesheet.Date
	ToDate       timesheet.Date
	Category     timesheet.DayCategory
	HoursPerDay  decimal.Decimal // snapshot at creation, never re-derived
	Status       Status
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Days is every calendar day in the inclusive range.
func (r Request) Days() []timesheet.Date {
	return r.FromDate.DaysInclusive(r.ToDate)
}

// EntryFor is the ledger row an approval writes for day.
func (r Request) EntryFor(day timesheet.Date) timesheet.TimeEntry {
	return timesheet.TimeEntry{
		EmployeeID:    r.EmployeeID,
		WorkDate:      day,
		Category:      r.Category,
		RegularHours:  r.HoursPerDay,
		OvertimeHours: decimal.Zero,
	}.Normalized()
}

// =============================================================================
// DECISION
// =============================================================================

type Decision string

const (
	Approve Decision = "approve"
	Reject  Decision = "reject"
)

func ParseDecision(s string) (Decision, error) {
	switch Decision(s) {
	case Approve, Reject:
		return Decision(s), nil
	default:
		return "", &timesheet.ParseError{Kind: ErrInvalidDecision, Input: s}
	}
}

// Target is the status a decision moves a pending request to.
func (d Decision) Target() Status {
	if d == Approve {
		return StatusApproved
	}
	return StatusRejected
}

// =============================================================================
// STORE
// =============================================================================

// RequestFilter selects requests for listings.
type RequestFilter struct {
	EmployeeID  timesheet.EmployeeID // "" = all employees
	Status      Status               // "" = any status
	OldestFirst bool
}

// RequestStore persists requests.
type RequestStore interface {
	CreateRequest(ctx context.Context, req Request) error

	// GetRequest returns ErrRequestNotFound for an unknown id.
	GetRequest(ctx context.Context, id RequestID) (*Request, error)

	ListRequests(ctx context.Context, filter RequestFilter) ([]Request, error)
}

// Tx is the view of the store inside a transaction.
type Tx interface {
	timesheet.EntryWriter

	GetRequest(ctx context.Context, id RequestID) (*Request, error)

	// TransitionRequest sets status to `to` only if it is currently `from`.
	// It reports whether a row changed; this is the compare-and-swap that
	// makes a decision one-shot.
	TransitionRequest(ctx context.Context, id RequestID, from, to Status, at time.Time) (bool, error)
}

// TxStore runs fn atomically: any error rolls back every write made through tx.
type TxStore interface {
	RequestStore
	WithTx(ctx context.Context, fn func(tx Tx) error) error
}

// =============================================================================
// NOTIFICATION
// =============================================================================

// Notice describes a newly created request.
type Notice struct {
	RequestID    RequestID
	EmployeeID   timesheet.EmployeeID
	EmployeeName string
	FromDate     timesheet.Date
	ToDate       timesheet.Date
	Category     timesheet.DayCategory
}

// Notifier is told about new requests. Implementations live in notify/.
type Notifier interface {
	RequestCreated(ctx context.Context, n Notice) error
}
