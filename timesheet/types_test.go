package timesheet_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/timesheet-engine/timesheet"
)

func TestParseCategory(t *testing.T) {
	tests := []struct {
		note string
		want timesheet.DayCategory
	}{
		{"", timesheet.Worked()},
		{"   ", timesheet.Worked()},
		{"Sick leave", timesheet.SickLeave()},
		{"PTO", timesheet.PTO()},
		{"Non Pay", timesheet.NonPay()},
		{" PTO ", timesheet.PTO()},
		{"left early, dentist", timesheet.Remark("left early, dentist")},
		{"pto", timesheet.Remark("pto")},
	}
	for _, tt := range tests {
		got := timesheet.ParseCategory(tt.note)
		assert.Equal(t, tt.want, got, "note %q", tt.note)
		assert.True(t, got.Valid())
	}
}

func TestCategory_RoundTripsThroughNote(t *testing.T) {
	for _, c := range []timesheet.DayCategory{
		timesheet.Worked(), timesheet.SickLeave(), timesheet.PTO(), timesheet.NonPay(), timesheet.Remark("training"),
	} {
		assert.Equal(t, c, timesheet.ParseCategory(c.Note()))
	}
}

func TestParseTimeOffCategory(t *testing.T) {
	c, err := timesheet.ParseTimeOffCategory("Sick leave")
	require.NoError(t, err)
	assert.True(t, c.IsTimeOff())

	for _, bad := range []string{"", "Vacation", "sick leave"} {
		_, err := timesheet.ParseTimeOffCategory(bad)
		assert.ErrorIs(t, err, timesheet.ErrInvalidCategory, bad)
	}
}

func TestCategory_Valid(t *testing.T) {
	assert.False(t, timesheet.DayCategory{Kind: timesheet.CategoryRemark, Text: "PTO"}.Valid(), "remark shadowing a time-off note")
	assert.False(t, timesheet.DayCategory{Kind: timesheet.CategoryRemark}.Valid(), "empty remark")
	assert.False(t, timesheet.DayCategory{Kind: timesheet.CategoryPTO, Text: "x"}.Valid())
	assert.False(t, timesheet.DayCategory{Kind: timesheet.CategoryKind(99)}.Valid())
}

func TestTimeEntry_Validate(t *testing.T) {
	valid := entry("2026-02-02", "8")
	require.NoError(t, valid.Validate())

	noDate := valid
	noDate.WorkDate = timesheet.Date{}
	assert.ErrorIs(t, noDate.Validate(), timesheet.ErrInvalidDate)

	negative := valid
	negative.OvertimeHours = hours("-1")
	assert.ErrorIs(t, negative.Validate(), timesheet.ErrInvalidHours)

	badCategory := valid
	badCategory.Category = timesheet.DayCategory{Kind: timesheet.CategoryRemark, Text: "Non Pay"}
	assert.ErrorIs(t, badCategory.Validate(), timesheet.ErrInvalidCategory)
}

func TestTimeEntry_NormalizedZeroesNonPay(t *testing.T) {
	e := entry("2026-02-02", "8")
	e.OvertimeHours = hours("2")
	e.Category = timesheet.NonPay()

	n := e.Normalized()
	assert.True(t, n.RegularHours.IsZero())
	assert.True(t, n.OvertimeHours.IsZero())

	e.Category = timesheet.PTO()
	assertHours(t, "10.00", e.Normalized().StoredTotal())
}

func TestTimeOffHoursPerDay(t *testing.T) {
	rules := timesheet.DefaultRules()

	assertHours(t, "8.00", rules.TimeOffHoursPerDay(timesheet.PTO(), false))
	assertHours(t, "8.00", rules.TimeOffHoursPerDay(timesheet.SickLeave(), false))
	assertHours(t, "0.00", rules.TimeOffHoursPerDay(timesheet.NonPay(), false))
	assertHours(t, "0.00", rules.TimeOffHoursPerDay(timesheet.PTO(), true))
	assertHours(t, "0.00", rules.TimeOffHoursPerDay(timesheet.SickLeave(), true))
}

func TestRules_Validate(t *testing.T) {
	require.NoError(t, timesheet.DefaultRules().Validate())

	rules := timesheet.DefaultRules()
	rules.WeeklyRegularCap = hours("-40")
	assert.ErrorIs(t, rules.Validate(), timesheet.ErrInvalidHours)
}

func TestParseShiftAndEmployment(t *testing.T) {
	assert.Equal(t, timesheet.ShiftGraveyard, timesheet.ParseShift(" Graveyard "))
	assert.Equal(t, timesheet.ShiftUnassigned, timesheet.ParseShift("night"))
	assert.Equal(t, timesheet.Contractor, timesheet.ParseEmploymentType("CONTRACTOR"))
	assert.Equal(t, timesheet.FullTime, timesheet.ParseEmploymentType(""))
}
