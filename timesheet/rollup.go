package timesheet

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// DAILY ROLLUP - Split one day into regular and overtime
// =============================================================================

// DayTotal is the compensable hours for a day before the cap split.
// Non Pay is always zero. A positive stored total wins over the clock
// readings so that manual overrides and time-off credits survive.
func DayTotal(e TimeEntry) decimal.Decimal {
	if e.Category.IsNonPay() {
		return decimal.Zero
	}
	if stored := e.StoredTotal(); stored.IsPositive() {
		return stored
	}
	return DayHours(e.ClockIn, e.ClockOut, e.LunchStart, e.LunchEnd)
}

// RollupDay returns the entry with RegularHours, OvertimeHours and Graveyard
// derived under the daily cap. A stored graveyard flag is kept even when the
// clock readings are gone.
func (r Rules) RollupDay(e TimeEntry) TimeEntry {
	total := DayTotal(e)
	e.RegularHours = decimal.Min(total, r.DailyRegularCap).Round(2)
	e.OvertimeHours = decimal.Max(decimal.Zero, total.Sub(r.DailyRegularCap)).Round(2)
	e.Graveyard = e.Graveyard || r.IsGraveyard(e.ClockIn, e.ClockOut)
	return e
}

// =============================================================================
// WEEKLY ROLLUP - Seven days, weekly cap on regular hours only
// =============================================================================

// WeekRollup is one employee's derived week. Never persisted.
type WeekRollup struct {
	EmployeeID    EmployeeID
	WeekStart     Date
	Days          [7]TimeEntry
	RegularTotal  decimal.Decimal // uncapped sum of daily regular hours
	Attendance    decimal.Decimal // RegularTotal capped at the weekly limit
	OvertimeTotal decimal.Decimal
	TotalHours    decimal.Decimal
}

// FillWeek lays entries onto Monday..Sunday of the week containing weekStart,
// synthesizing placeholders for missing days. Entries outside the week are ignored.
func FillWeek(employeeID EmployeeID, weekStart Date, entries []TimeEntry) [7]TimeEntry {
	weekStart = weekStart.WeekStart()
	byDate := make(map[string]TimeEntry, len(entries))
	for _, e := range entries {
		byDate[e.WorkDate.String()] = e
	}

	var days [7]TimeEntry
	for i := range days {
		day := weekStart.AddDays(i)
		if e, ok := byDate[day.String()]; ok {
			days[i] = e
		} else {
			days[i] = Placeholder(employeeID, day)
		}
	}
	return days
}

// RollupWeek applies RollupDay to each day and totals the week. The weekly
// cap applies to the regular sum; overtime is added on top uncapped.
func (r Rules) RollupWeek(employeeID EmployeeID, weekStart Date, days [7]TimeEntry) WeekRollup {
	week := WeekRollup{
		EmployeeID:    employeeID,
		WeekStart:     weekStart.WeekStart(),
		RegularTotal:  decimal.Zero,
		OvertimeTotal: decimal.Zero,
	}
	for i, d := range days {
		rolled := r.RollupDay(d)
		week.Days[i] = rolled
		week.RegularTotal = week.RegularTotal.Add(rolled.RegularHours)
		week.OvertimeTotal = week.OvertimeTotal.Add(rolled.OvertimeHours)
	}
	week.Attendance = decimal.Min(week.RegularTotal, r.WeeklyRegularCap).Round(2)
	week.OvertimeTotal = week.OvertimeTotal.Round(2)
	week.TotalHours = week.Attendance.Add(week.OvertimeTotal)
	return week
}
