/*
Package timesheet provides the core time-accounting engine.

PURPOSE:
  Turns raw clock readings (clock-in/out, lunch) into payroll-ready hours.
  One TimeEntry per employee per calendar day is the atomic unit of the
  ledger; weekly rollups are always derived on demand, never stored.

KEY CONCEPTS IN THIS FILE (types.go):
  - TimeEntry: One employee's recorded day
  - DayCategory: Tagged variant for worked days, time off and remarks
  - Employee: Collaborator entity (shift, employment type, admin flag)

DESIGN PRINCIPLES:
  1. Precision: Hours use decimal.Decimal, rounded to two places
  2. Purity: Calculator, classifier and rollup are functions of their input
  3. Snapshots: Hours are fixed at write time; config changes do not rewrite history
  4. Narrow storage: The engine only needs upsert and range reads (store.go)

USAGE:
  rules := timesheet.DefaultRules()
  hours := timesheet.DayHours(timesheet.At(23, 0), timesheet.At(7, 0), nil, nil) // 8.00
  week := rules.RollupWeek(empID, weekStart, timesheet.FillWeek(empID, weekStart, entries))

SEE ALSO:
  - hours.go: Daily hours calculator
  - graveyard.go: Late-night window classifier
  - rollup.go: Daily cap split and weekly rollup
  - roster.go: Shift-wide aggregation over a store
  - timeoff/: Request state machine that writes entries on approval
*/
package timesheet

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type EmployeeID string

// =============================================================================
// DAY CATEGORY - Tagged variant replacing the free-text note
// =============================================================================

type CategoryKind int

const (
	CategoryWorked CategoryKind = iota
	CategorySickLeave
	CategoryPTO
	CategoryNonPay
	CategoryRemark
)

// Stored note values for the recognized time-off categories.
const (
	NoteSickLeave = "Sick leave"
	NotePTO       = "PTO"
	NoteNonPay    = "Non Pay"
)

// DayCategory tags a day. Only CategoryRemark carries Text.
type DayCategory struct {
	Kind CategoryKind
	Text string
}

func Worked() DayCategory    { return DayCategory{Kind: CategoryWorked} }
func SickLeave() DayCategory { return DayCategory{Kind: CategorySickLeave} }
func PTO() DayCategory       { return DayCategory{Kind: CategoryPTO} }
func NonPay() DayCategory    { return DayCategory{Kind: CategoryNonPay} }

// Remark is a free-text note. Blank text collapses to Worked.
func Remark(text string) DayCategory {
	text = strings.TrimSpace(text)
	if text == "" {
		return Worked()
	}
	return DayCategory{Kind: CategoryRemark, Text: text}
}

// TimeOffCategories lists the categories a request may carry.
func TimeOffCategories() []DayCategory {
	return []DayCategory{SickLeave(), PTO(), NonPay()}
}

// ParseCategory maps a stored note to its variant. Unrecognized text is a Remark.
func ParseCategory(note string) DayCategory {
	switch strings.TrimSpace(note) {
	case "":
		return Worked()
	case NoteSickLeave:
		return SickLeave()
	case NotePTO:
		return PTO()
	case NoteNonPay:
		return NonPay()
	default:
		return Remark(note)
	}
}

// ParseTimeOffCategory accepts only the three time-off notes.
func ParseTimeOffCategory(note string) (DayCategory, error) {
	c := ParseCategory(note)
	if !c.IsTimeOff() {
		return DayCategory{}, &ParseError{Kind: ErrInvalidCategory, Input: note}
	}
	return c, nil
}

// Note is the storage form of the category.
func (c DayCategory) Note() string {
	switch c.Kind {
	case CategorySickLeave:
		return NoteSickLeave
	case CategoryPTO:
		return NotePTO
	case CategoryNonPay:
		return NoteNonPay
	case CategoryRemark:
		return c.Text
	default:
		return ""
	}
}

func (c DayCategory) String() string { return c.Note() }

func (c DayCategory) IsTimeOff() bool {
	return c.Kind == CategorySickLeave || c.Kind == CategoryPTO || c.Kind == CategoryNonPay
}

func (c DayCategory) IsNonPay() bool { return c.Kind == CategoryNonPay }

// Valid rejects kinds outside the closed set and remarks that collide with a recognized note.
func (c DayCategory) Valid() bool {
	switch c.Kind {
	case CategoryWorked, CategorySickLeave, CategoryPTO, CategoryNonPay:
		return c.Text == ""
	case CategoryRemark:
		return c.Text != "" && ParseCategory(c.Text).Kind == CategoryRemark
	default:
		return false
	}
}

// =============================================================================
// TIME ENTRY - One employee, one calendar day
// =============================================================================

type TimeEntry struct {
	EmployeeID EmployeeID
	WorkDate   Date

	ClockIn    *TimeOfDay
	ClockOut   *TimeOfDay
	LunchStart *TimeOfDay
	LunchEnd   *TimeOfDay

	Category      DayCategory
	RegularHours  decimal.Decimal
	OvertimeHours decimal.Decimal
	Graveyard     bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Placeholder is the zero-valued entry callers synthesize for a missing day.
func Placeholder(employeeID EmployeeID, day Date) TimeEntry {
	return TimeEntry{
		EmployeeID:    employeeID,
		WorkDate:      day,
		Category:      Worked(),
		RegularHours:  decimal.Zero,
		OvertimeHours: decimal.Zero,
	}
}

// Validate checks the write-time invariants of an entry.
func (e TimeEntry) Validate() error {
	if e.WorkDate.IsZero() {
		return &ParseError{Kind: ErrInvalidDate, Input: ""}
	}
	if !e.Category.Valid() {
		return &ParseError{Kind: ErrInvalidCategory, Input: e.Category.Note()}
	}
	if e.RegularHours.IsNegative() || e.OvertimeHours.IsNegative() {
		return ErrInvalidHours
	}
	return nil
}

// Normalized applies the Non Pay rule: both hour columns are forced to zero.
func (e TimeEntry) Normalized() TimeEntry {
	if e.Category.IsNonPay() {
		e.RegularHours = decimal.Zero
		e.OvertimeHours = decimal.Zero
	}
	return e
}

// StoredTotal is regular + overtime as recorded.
func (e TimeEntry) StoredTotal() decimal.Decimal {
	return e.RegularHours.Add(e.OvertimeHours)
}

// =============================================================================
// EMPLOYEE - Referenced, not owned, by the engine
// =============================================================================

type Shift string

const (
	ShiftDay        Shift = "day"
	ShiftSwing      Shift = "swing"
	ShiftGraveyard  Shift = "graveyard"
	ShiftUnassigned Shift = ""
)

// Shifts lists roster order, unassigned last.
func Shifts() []Shift {
	return []Shift{ShiftDay, ShiftSwing, ShiftGraveyard, ShiftUnassigned}
}

// ParseShift normalizes unknown values to unassigned.
func ParseShift(s string) Shift {
	switch Shift(strings.ToLower(strings.TrimSpace(s))) {
	case ShiftDay:
		return ShiftDay
	case ShiftSwing:
		return ShiftSwing
	case ShiftGraveyard:
		return ShiftGraveyard
	default:
		return ShiftUnassigned
	}
}

type EmploymentType string

const (
	FullTime   EmploymentType = "full_time"
	Contractor EmploymentType = "contractor"
)

// ParseEmploymentType defaults to full time.
func ParseEmploymentType(s string) EmploymentType {
	if EmploymentType(strings.ToLower(strings.TrimSpace(s))) == Contractor {
		return Contractor
	}
	return FullTime
}

type Employee struct {
	ID         EmployeeID
	Name       string
	Employment EmploymentType
	Shift      Shift
	IsAdmin    bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (e Employee) IsContractor() bool { return e.Employment == Contractor }
