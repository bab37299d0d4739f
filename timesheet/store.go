/*
store.go - Persistence interfaces for the time-entry ledger

PURPOSE:
  Defines the narrow capability set the engine needs from storage:
  upsert by (employee, day) and range reads. Everything else (rollups,
  classification) is computed from what these return.

KEY INTERFACES:
  EntryStore:        Upsert + week/range reads of TimeEntry rows
  EmployeeDirectory: Employee lookup used for rostering and request rules
  EmployeeStore:     Directory plus writes, including cascading delete

UPSERT CONTRACT:
  Upsert() is keyed by (EmployeeID, WorkDate):
  - First write inserts, later writes replace every field but CreatedAt
  - Replaying the same upsert leaves the same single row
  - Same-key writers serialize inside the store; last writer wins
  - Non Pay entries are normalized to zero hours before they are written

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: SQLite, one INSERT ... ON CONFLICT statement
  - store/memory/memory.go: In-memory for tests

SEE ALSO:
  - roster.go: Aggregator reads through EntryStore + EmployeeDirectory
  - timeoff/request.go: Writes entries inside a request transaction
*/
package timesheet

import "context"

// =============================================================================
// ENTRY STORE
// =============================================================================

// EntryWriter is the single write operation on the ledger.
type EntryWriter interface {
	Upsert(ctx context.Context, entry TimeEntry) error
}

// EntryStore is the ledger as the engine sees it.
type EntryStore interface {
	EntryWriter

	// EntriesForWeek returns the stored entries for the Monday..Sunday week
	// containing weekStart, ordered by date. Missing days are absent.
	EntriesForWeek(ctx context.Context, employeeID EmployeeID, weekStart Date) ([]TimeEntry, error)

	// EntriesInRange returns time-off rows joined with employee name and shift,
	// ordered by employee name then date.
	EntriesInRange(ctx context.Context, filter TimeOffFilter) ([]TimeOffEntry, error)
}

// TimeOffFilter selects time-off rows for reporting.
type TimeOffFilter struct {
	Categories    []DayCategory // empty = all time-off categories
	From          Date
	To            Date
	ExcludeAdmins bool
}

// Validate checks the range and that every category is a time-off category.
func (f TimeOffFilter) Validate() error {
	if f.From.IsZero() || f.To.IsZero() {
		return &ParseError{Kind: ErrInvalidDate, Input: ""}
	}
	if f.To.Before(f.From) {
		return ErrInvalidRange
	}
	for _, c := range f.Categories {
		if !c.IsTimeOff() {
			return &ParseError{Kind: ErrInvalidCategory, Input: c.Note()}
		}
	}
	return nil
}

// Notes returns the stored note values the filter matches.
func (f TimeOffFilter) Notes() []string {
	cats := f.Categories
	if len(cats) == 0 {
		cats = TimeOffCategories()
	}
	notes := make([]string, len(cats))
	for i, c := range cats {
		notes[i] = c.Note()
	}
	return notes
}

// TimeOffEntry is a ledger row joined with the employee for reporting.
type TimeOffEntry struct {
	TimeEntry
	EmployeeName string
	Shift        Shift
}

// =============================================================================
// EMPLOYEES
// =============================================================================

// EmployeeDirectory is the read side the engine consumes.
type EmployeeDirectory interface {
	// GetEmployee returns ErrEmployeeNotFound for an unknown id.
	GetEmployee(ctx context.Context, id EmployeeID) (*Employee, error)

	// ListEmployeesByShift returns every employee assigned to shift, admins included.
	ListEmployeesByShift(ctx context.Context, shift Shift) ([]Employee, error)
}

// EmployeeStore adds writes. DeleteEmployee cascades to entries and requests.
type EmployeeStore interface {
	EmployeeDirectory
	SaveEmployee(ctx context.Context, emp Employee) error
	ListEmployees(ctx context.Context) ([]Employee, error)
	DeleteEmployee(ctx context.Context, id EmployeeID) error
}
