package timesheet

import "github.com/shopspring/decimal"

var secondsPerHourDec = decimal.NewFromInt(secondsPerHour)

// DayHours is the worked time for one day: clock-out minus clock-in, minus
// lunch when both lunch readings are present, rounded to two places.
// A clock-out at or before clock-in is on the following day. Missing clock
// readings yield zero; Non Pay days are the caller's concern.
func DayHours(clockIn, clockOut, lunchStart, lunchEnd *TimeOfDay) decimal.Decimal {
	if clockIn == nil || clockOut == nil {
		return decimal.Zero
	}
	from, to := span(*clockIn, *clockOut)
	worked := to - from

	if lunchStart != nil && lunchEnd != nil {
		ls, le := span(*lunchStart, *lunchEnd)
		worked -= le - ls
		if worked < 0 {
			worked = 0
		}
	}
	return secondsToHours(worked)
}

func secondsToHours(seconds int) decimal.Decimal {
	return decimal.NewFromInt(int64(seconds)).Div(secondsPerHourDec).Round(2)
}
