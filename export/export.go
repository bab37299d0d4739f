/*
export.go - Spreadsheet exports of computed hours and time off

PURPOSE:
  Renders derived views (weekly rollups, time-off reports) as .xlsx
  workbooks for payroll. Nothing here reads the store; callers pass in
  what the engine already computed.

WORKBOOKS:
  WriteWeek:    sheet "Hours", one row per employee-day plus a weekly total row
  WriteTimeOff: sheet "Time Off" (one row per day off) and "Summary" (per employee)

Hours are written as numbers so totals can be summed in the spreadsheet.

SEE ALSO:
  - timesheet/roster.go: ShiftRoster input
  - timeoff/report.go: Report input
*/
package export

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/warp/timesheet-engine/timeoff"
	"github.com/warp/timesheet-engine/timesheet"
)

const (
	HoursSheet   = "Hours"
	TimeOffSheet = "Time Off"
	SummarySheet = "Summary"
)

var weekHeader = []any{
	"Shift", "Employee", "Date", "Day", "Clock In", "Clock Out",
	"Lunch Out", "Lunch In", "Type", "Regular", "Overtime", "Graveyard",
}

var timeOffHeader = []any{"Employee", "Shift", "Date", "Type", "Hours"}

var summaryHeader = []any{"Employee", "Days", "Hours", "Sick Days"}

// =============================================================================
// WEEKLY HOURS
// =============================================================================

// WriteWeek writes the rolled-up week of every roster to w.
func WriteWeek(w io.Writer, rosters []timesheet.ShiftRoster) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", HoursSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	sheet := newSheetWriter(f, HoursSheet)
	sheet.header(weekHeader)

	for _, roster := range rosters {
		for _, ew := range roster.Weeks {
			for _, day := range ew.Week.Days {
				sheet.row([]any{
					shiftLabel(roster.Shift),
					ew.Employee.Name,
					day.WorkDate.String(),
					day.WorkDate.Weekday().String()[:3],
					timesheet.FormatOptional(day.ClockIn),
					timesheet.FormatOptional(day.ClockOut),
					timesheet.FormatOptional(day.LunchStart),
					timesheet.FormatOptional(day.LunchEnd),
					day.Category.Note(),
					number(day.RegularHours),
					number(day.OvertimeHours),
					yesNo(day.Graveyard),
				})
			}
			sheet.row([]any{
				shiftLabel(roster.Shift),
				ew.Employee.Name,
				"Week total", "", "", "", "", "", "",
				number(ew.Week.Attendance),
				number(ew.Week.OvertimeTotal),
				"",
			})
		}
	}
	if sheet.err != nil {
		return sheet.err
	}
	return write(f, w)
}

// =============================================================================
// TIME OFF
// =============================================================================

// WriteTimeOff writes the report's rows and per-employee summary to w.
func WriteTimeOff(w io.Writer, report timeoff.Report, fullDayHours decimal.Decimal) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", TimeOffSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	detail := newSheetWriter(f, TimeOffSheet)
	detail.header(timeOffHeader)
	for _, e := range report.Entries {
		hours := e.RegularHours
		if hours.IsZero() {
			hours = fullDayHours
		}
		detail.row([]any{
			e.EmployeeName,
			shiftLabel(e.Shift),
			e.WorkDate.String(),
			e.Category.Note(),
			number(hours),
		})
	}
	if detail.err != nil {
		return detail.err
	}

	if _, err := f.NewSheet(SummarySheet); err != nil {
		return fmt.Errorf("failed to add sheet: %w", err)
	}
	summary := newSheetWriter(f, SummarySheet)
	summary.header(summaryHeader)
	for _, r := range report.Rows {
		summary.row([]any{r.EmployeeName, r.Days, number(r.Hours), r.SickDays})
	}
	if summary.err != nil {
		return summary.err
	}
	return write(f, w)
}

// =============================================================================
// HELPERS
// =============================================================================

// sheetWriter appends rows and keeps the first error.
type sheetWriter struct {
	f    *excelize.File
	name string
	next int
	err  error
}

func newSheetWriter(f *excelize.File, name string) *sheetWriter {
	return &sheetWriter{f: f, name: name, next: 1}
}

func (s *sheetWriter) header(cols []any) {
	s.row(cols)
	if s.err != nil {
		return
	}
	style, err := s.f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		s.err = fmt.Errorf("failed to create header style: %w", err)
		return
	}
	if err := s.f.SetRowStyle(s.name, 1, 1, style); err != nil {
		s.err = fmt.Errorf("failed to style header: %w", err)
	}
}

func (s *sheetWriter) row(values []any) {
	if s.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(1, s.next)
	if err != nil {
		s.err = err
		return
	}
	if err := s.f.SetSheetRow(s.name, cell, &values); err != nil {
		s.err = fmt.Errorf("failed to write %s row %d: %w", s.name, s.next, err)
		return
	}
	s.next++
}

func write(f *excelize.File, w io.Writer) error {
	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func number(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

func shiftLabel(s timesheet.Shift) string {
	if s == timesheet.ShiftUnassigned {
		return timeoff.NoShiftGroup
	}
	return string(s)
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return ""
}
