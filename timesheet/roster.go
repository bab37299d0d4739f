package timesheet

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// =============================================================================
// AGGREGATOR - Weekly rollups read through the store
// =============================================================================

// Aggregator combines the pure rollup with the store reads it needs.
type Aggregator struct {
	Entries   EntryStore
	Employees EmployeeDirectory
	Rules     Rules
}

func NewAggregator(entries EntryStore, employees EmployeeDirectory, rules Rules) *Aggregator {
	return &Aggregator{Entries: entries, Employees: employees, Rules: rules}
}

// EmployeeWeek is a rollup labelled with who it belongs to.
type EmployeeWeek struct {
	Employee Employee
	Week     WeekRollup
}

// ShiftRoster is one shift's section of a roster.
type ShiftRoster struct {
	Shift Shift
	Weeks []EmployeeWeek
}

// RollupEmployee reads one employee's week and rolls it up.
func (a *Aggregator) RollupEmployee(ctx context.Context, id EmployeeID, weekStart Date) (WeekRollup, error) {
	weekStart = weekStart.WeekStart()
	entries, err := a.Entries.EntriesForWeek(ctx, id, weekStart)
	if err != nil {
		return WeekRollup{}, fmt.Errorf("failed to load week %s for %s: %w", weekStart, id, err)
	}
	return a.Rules.RollupWeek(id, weekStart, FillWeek(id, weekStart, entries)), nil
}

// RollupShift rolls up every non-admin employee on the shift, including those
// with no entries, sorted by name.
func (a *Aggregator) RollupShift(ctx context.Context, shift Shift, weekStart Date) ([]EmployeeWeek, error) {
	employees, err := a.Employees.ListEmployeesByShift(ctx, shift)
	if err != nil {
		return nil, fmt.Errorf("failed to list %q shift: %w", shift, err)
	}

	weeks := make([]EmployeeWeek, 0, len(employees))
	for _, emp := range employees {
		if emp.IsAdmin {
			continue
		}
		week, err := a.RollupEmployee(ctx, emp.ID, weekStart)
		if err != nil {
			return nil, err
		}
		weeks = append(weeks, EmployeeWeek{Employee: emp, Week: week})
	}

	sort.SliceStable(weeks, func(i, j int) bool {
		return strings.ToUpper(weeks[i].Employee.Name) < strings.ToUpper(weeks[j].Employee.Name)
	})
	return weeks, nil
}

// RollupAllShifts builds the combined view: day, swing, graveyard, unassigned.
func (a *Aggregator) RollupAllShifts(ctx context.Context, weekStart Date) ([]ShiftRoster, error) {
	var rosters []ShiftRoster
	for _, shift := range Shifts() {
		weeks, err := a.RollupShift(ctx, shift, weekStart)
		if err != nil {
			return nil, err
		}
		rosters = append(rosters, ShiftRoster{Shift: shift, Weeks: weeks})
	}
	return rosters, nil
}
