package timeoff

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/timesheet-engine/timesheet"
)

// =============================================================================
// REPORT - Time off per employee over a date range
// =============================================================================

// ReportRow is one employee's time off in the range.
type ReportRow struct {
	EmployeeID   timesheet.EmployeeID
	EmployeeName string
	Days         int
	Hours        decimal.Decimal
	SickDays     int
}

type Report struct {
	Entries []timesheet.TimeOffEntry
	Rows    []ReportRow
}

// BuildReport totals time-off rows per employee. A row stored with zero hours
// is a whole day and counts fullDayHours. Rows are ordered by days taken,
// most first, then by name.
func BuildReport(entries []timesheet.TimeOffEntry, fullDayHours decimal.Decimal) Report {
	index := make(map[timesheet.EmployeeID]int)
	var rows []ReportRow

	for _, e := range entries {
		i, ok := index[e.EmployeeID]
		if !ok {
			i = len(rows)
			index[e.EmployeeID] = i
			rows = append(rows, ReportRow{
				EmployeeID:   e.EmployeeID,
				EmployeeName: e.EmployeeName,
				Hours:        decimal.Zero,
			})
		}
		row := &rows[i]
		row.Days++
		if e.RegularHours.IsZero() {
			row.Hours = row.Hours.Add(fullDayHours)
		} else {
			row.Hours = row.Hours.Add(e.RegularHours)
		}
		if e.Category.Kind == timesheet.CategorySickLeave {
			row.SickDays++
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Days != rows[j].Days {
			return rows[i].Days > rows[j].Days
		}
		return rows[i].EmployeeName < rows[j].EmployeeName
	})
	return Report{Entries: entries, Rows: rows}
}

// =============================================================================
// CALENDAR - Who is off on each day of a month
// =============================================================================

// NoShiftGroup is the conflict group for employees without a shift.
const NoShiftGroup = "(no shift)"

type CalendarOff struct {
	EmployeeID   timesheet.EmployeeID
	EmployeeName string
	Category     timesheet.DayCategory
}

type CalendarDay struct {
	Date     timesheet.Date
	Off      []CalendarOff
	Conflict bool // two or more people from one shift are off
}

type Calendar struct {
	Year  int
	Month int
	Days  []CalendarDay
}

// ConflictDates returns the days flagged as conflicts, in order.
func (c Calendar) ConflictDates() []timesheet.Date {
	var out []timesheet.Date
	for _, d := range c.Days {
		if d.Conflict {
			out = append(out, d.Date)
		}
	}
	return out
}

// BuildCalendar lays the month's time-off rows onto its days. Rows outside
// the month are ignored.
func BuildCalendar(year, month int, entries []timesheet.TimeOffEntry) (Calendar, error) {
	if month < 1 || month > 12 {
		return Calendar{}, timesheet.ErrInvalidRange
	}

	start := timesheet.StartOfMonth(year, time.Month(month))
	end := timesheet.EndOfMonth(year, time.Month(month))
	dates := start.DaysInclusive(end)

	cal := Calendar{Year: year, Month: month, Days: make([]CalendarDay, len(dates))}
	perShift := make([]map[string]int, len(dates))
	for i, d := range dates {
		cal.Days[i].Date = d
		perShift[i] = make(map[string]int)
	}

	for _, e := range entries {
		if e.WorkDate.Before(start) || e.WorkDate.After(end) {
			continue
		}
		i := e.WorkDate.Day() - 1
		cal.Days[i].Off = append(cal.Days[i].Off, CalendarOff{
			EmployeeID:   e.EmployeeID,
			EmployeeName: e.EmployeeName,
			Category:     e.Category,
		})

		group := string(e.Shift)
		if group == "" {
			group = NoShiftGroup
		}
		perShift[i][group]++
		if perShift[i][group] >= 2 {
			cal.Days[i].Conflict = true
		}
	}
	return cal, nil
}
