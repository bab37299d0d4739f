package timesheet

import "github.com/shopspring/decimal"

// ClockSubmission is what an employee (or an admin on their behalf) enters
// for a single day.
type ClockSubmission struct {
	WorkDate   Date
	ClockIn    *TimeOfDay
	ClockOut   *TimeOfDay
	LunchStart *TimeOfDay
	LunchEnd   *TimeOfDay
	Category   DayCategory
}

// PrepareSubmission turns a submission into the entry to upsert. Hours are
// snapshot here:
//   - contractors get no hours for any time-off category
//   - Non Pay gets no hours
//   - Sick leave / PTO without a full clock pair is credited a full day
//   - anything else stores the worked hours as regular; the cap split is
//     left to the rollup
func (r Rules) PrepareSubmission(emp Employee, sub ClockSubmission) TimeEntry {
	entry := TimeEntry{
		EmployeeID:    emp.ID,
		WorkDate:      sub.WorkDate,
		ClockIn:       sub.ClockIn,
		ClockOut:      sub.ClockOut,
		LunchStart:    sub.LunchStart,
		LunchEnd:      sub.LunchEnd,
		Category:      sub.Category,
		OvertimeHours: decimal.Zero,
		Graveyard:     r.IsGraveyard(sub.ClockIn, sub.ClockOut),
	}

	clocked := sub.ClockIn != nil && sub.ClockOut != nil
	switch {
	case emp.IsContractor() && sub.Category.IsTimeOff():
		entry.RegularHours = decimal.Zero
	case sub.Category.IsNonPay():
		entry.RegularHours = decimal.Zero
	case sub.Category.IsTimeOff() && !clocked:
		entry.RegularHours = r.FullDayTimeOffHours
	default:
		entry.RegularHours = DayHours(sub.ClockIn, sub.ClockOut, sub.LunchStart, sub.LunchEnd)
	}
	return entry
}
