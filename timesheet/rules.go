package timesheet

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Rules is the injected accounting configuration. Nothing in the engine
// hard-codes these values.
type Rules struct {
	DailyRegularCap     decimal.Decimal
	WeeklyRegularCap    decimal.Decimal
	Graveyard           Window
	FullDayTimeOffHours decimal.Decimal
}

// Window is a late-night classification window. Start > End wraps midnight.
type Window struct {
	Start TimeOfDay
	End   TimeOfDay
}

func DefaultRules() Rules {
	return Rules{
		DailyRegularCap:     decimal.NewFromInt(8),
		WeeklyRegularCap:    decimal.NewFromInt(40),
		Graveyard:           Window{Start: NewTimeOfDay(22, 0), End: NewTimeOfDay(6, 0)},
		FullDayTimeOffHours: decimal.NewFromInt(8),
	}
}

func (r Rules) Validate() error {
	if r.DailyRegularCap.IsNegative() {
		return fmt.Errorf("daily regular cap %s: %w", r.DailyRegularCap, ErrInvalidHours)
	}
	if r.WeeklyRegularCap.IsNegative() {
		return fmt.Errorf("weekly regular cap %s: %w", r.WeeklyRegularCap, ErrInvalidHours)
	}
	if r.FullDayTimeOffHours.IsNegative() {
		return fmt.Errorf("full-day time-off hours %s: %w", r.FullDayTimeOffHours, ErrInvalidHours)
	}
	return nil
}

// TimeOffHoursPerDay is what an approved request credits per day.
// Contractors and Non Pay always get zero.
func (r Rules) TimeOffHoursPerDay(category DayCategory, isContractor bool) decimal.Decimal {
	if isContractor || category.IsNonPay() {
		return decimal.Zero
	}
	return r.FullDayTimeOffHours
}
