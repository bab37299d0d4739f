/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the engine's types (Date, TimeOfDay, DayCategory, decimal hours) from
  the wire format, which uses plain strings throughout.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

WIRE FORMATS:
  Dates:  YYYY-MM-DD
  Times:  HH:MM (HH:MM:SS accepted on input); "" means absent
  Hours:  decimal string with two places, e.g. "8.00"
  Notes:  "" (worked), "Sick leave", "PTO", "Non Pay", or free text

VALIDATION:
  Validation is done in handlers by the engine's parsers, not in DTOs.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/timesheet-engine/timeoff"
	"github.com/warp/timesheet-engine/timesheet"
)

// =============================================================================
// EMPLOYEES
// =============================================================================

type EmployeeDTO struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	EmploymentType string `json:"employment_type"`
	Shift          string `json:"shift"`
	IsAdmin        bool   `json:"is_admin"`
	CreatedAt      string `json:"created_at,omitempty"`
}

// SaveEmployeeRequest creates or replaces an employee.
type SaveEmployeeRequest struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	EmploymentType string `json:"employment_type"`
	Shift          string `json:"shift"`
	IsAdmin        bool   `json:"is_admin"`
}

func toEmployeeDTO(e timesheet.Employee) EmployeeDTO {
	return EmployeeDTO{
		ID:             string(e.ID),
		Name:           e.Name,
		EmploymentType: string(e.Employment),
		Shift:          string(e.Shift),
		IsAdmin:        e.IsAdmin,
		CreatedAt:      formatTimestamp(e.CreatedAt),
	}
}

// =============================================================================
// ENTRIES AND WEEKS
// =============================================================================

// SubmitEntryRequest is one day's clock readings.
type SubmitEntryRequest struct {
	ClockIn    string `json:"clock_in"`
	ClockOut   string `json:"clock_out"`
	LunchStart string `json:"lunch_start"`
	LunchEnd   string `json:"lunch_end"`
	Note       string `json:"note"`
}

type EntryDTO struct {
	EmployeeID    string `json:"employee_id"`
	WorkDate      string `json:"work_date"`
	ClockIn       string `json:"clock_in"`
	ClockOut      string `json:"clock_out"`
	LunchStart    string `json:"lunch_start"`
	LunchEnd      string `json:"lunch_end"`
	Note          string `json:"note"`
	RegularHours  string `json:"regular_hours"`
	OvertimeHours string `json:"overtime_hours"`
	Graveyard     bool   `json:"graveyard"`
}

func toEntryDTO(e timesheet.TimeEntry) EntryDTO {
	return EntryDTO{
		EmployeeID:    string(e.EmployeeID),
		WorkDate:      e.WorkDate.String(),
		ClockIn:       timesheet.FormatOptional(e.ClockIn),
		ClockOut:      timesheet.FormatOptional(e.ClockOut),
		LunchStart:    timesheet.FormatOptional(e.LunchStart),
		LunchEnd:      timesheet.FormatOptional(e.LunchEnd),
		Note:          e.Category.Note(),
		RegularHours:  hoursString(e.RegularHours),
		OvertimeHours: hoursString(e.OvertimeHours),
		Graveyard:     e.Graveyard,
	}
}

type WeekDTO struct {
	EmployeeID    string     `json:"employee_id"`
	EmployeeName  string     `json:"employee_name,omitempty"`
	WeekStart     string     `json:"week_start"`
	Days          []EntryDTO `json:"days"`
	RegularTotal  string     `json:"regular_total"`
	Attendance    string     `json:"attendance"`
	OvertimeTotal string     `json:"overtime_total"`
	TotalHours    string     `json:"total_hours"`
}

func toWeekDTO(name string, w timesheet.WeekRollup) WeekDTO {
	days := make([]EntryDTO, len(w.Days))
	for i, d := range w.Days {
		days[i] = toEntryDTO(d)
	}
	return WeekDTO{
		EmployeeID:    string(w.EmployeeID),
		EmployeeName:  name,
		WeekStart:     w.WeekStart.String(),
		Days:          days,
		RegularTotal:  hoursString(w.RegularTotal),
		Attendance:    hoursString(w.Attendance),
		OvertimeTotal: hoursString(w.OvertimeTotal),
		TotalHours:    hoursString(w.TotalHours),
	}
}

type ShiftRosterDTO struct {
	Shift string    `json:"shift"`
	Weeks []WeekDTO `json:"weeks"`
}

func toShiftRosterDTO(r timesheet.ShiftRoster) ShiftRosterDTO {
	weeks := make([]WeekDTO, len(r.Weeks))
	for i, ew := range r.Weeks {
		weeks[i] = toWeekDTO(ew.Employee.Name, ew.Week)
	}
	return ShiftRosterDTO{Shift: string(r.Shift), Weeks: weeks}
}

// ComputeDayRequest previews a day without storing it.
type ComputeDayRequest struct {
	ClockIn    string `json:"clock_in"`
	ClockOut   string `json:"clock_out"`
	LunchStart string `json:"lunch_start"`
	LunchEnd   string `json:"lunch_end"`
	Note       string `json:"note"`
}

type ComputeDayDTO struct {
	Hours         string `json:"hours"`
	RegularHours  string `json:"regular_hours"`
	OvertimeHours string `json:"overtime_hours"`
	Graveyard     bool   `json:"graveyard"`
}

// =============================================================================
// TIME-OFF REQUESTS
// =============================================================================

type CreateTimeOffRequest struct {
	FromDate string `json:"from_date"`
	ToDate   string `json:"to_date"`
	Category string `json:"category"`
}

type RequestDTO struct {
	ID           string `json:"id"`
	EmployeeID   string `json:"employee_id"`
	EmployeeName string `json:"employee_name"`
	FromDate     string `json:"from_date"`
	ToDate       string `json:"to_date"`
	Category     string `json:"category"`
	HoursPerDay  string `json:"hours_per_day"`
	Status       string `json:"status"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

func toRequestDTO(r timeoff.Request) RequestDTO {
	return RequestDTO{
		ID:           string(r.ID),
		EmployeeID:   string(r.EmployeeID),
		EmployeeName: r.EmployeeName,
		FromDate:     r.FromDate.String(),
		ToDate:       r.ToDate.String(),
		Category:     r.Category.Note(),
		HoursPerDay:  hoursString(r.HoursPerDay),
		Status:       string(r.Status),
		CreatedAt:    formatTimestamp(r.CreatedAt),
		UpdatedAt:    formatTimestamp(r.UpdatedAt),
	}
}

func toRequestDTOs(reqs []timeoff.Request) []RequestDTO {
	dtos := make([]RequestDTO, len(reqs))
	for i, r := range reqs {
		dtos[i] = toRequestDTO(r)
	}
	return dtos
}

// DecisionDTO is the outcome of approve/reject.
type DecisionDTO struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// =============================================================================
// REPORTS
// =============================================================================

type TimeOffEntryDTO struct {
	EmployeeID   string `json:"employee_id"`
	EmployeeName string `json:"employee_name"`
	Shift        string `json:"shift"`
	WorkDate     string `json:"work_date"`
	Category     string `json:"category"`
	Hours        string `json:"hours"`
}

type ReportRowDTO struct {
	EmployeeID   string `json:"employee_id"`
	EmployeeName string `json:"employee_name"`
	Days         int    `json:"days"`
	Hours        string `json:"hours"`
	SickDays     int    `json:"sick_days"`
}

type ReportDTO struct {
	From    string            `json:"from"`
	To      string            `json:"to"`
	Entries []TimeOffEntryDTO `json:"entries"`
	Rows    []ReportRowDTO    `json:"rows"`
}

func toReportDTO(filter timesheet.TimeOffFilter, report timeoff.Report) ReportDTO {
	dto := ReportDTO{
		From:    filter.From.String(),
		To:      filter.To.String(),
		Entries: make([]TimeOffEntryDTO, len(report.Entries)),
		Rows:    make([]ReportRowDTO, len(report.Rows)),
	}
	for i, e := range report.Entries {
		dto.Entries[i] = TimeOffEntryDTO{
			EmployeeID:   string(e.EmployeeID),
			EmployeeName: e.EmployeeName,
			Shift:        string(e.Shift),
			WorkDate:     e.WorkDate.String(),
			Category:     e.Category.Note(),
			Hours:        hoursString(e.RegularHours),
		}
	}
	for i, r := range report.Rows {
		dto.Rows[i] = ReportRowDTO{
			EmployeeID:   string(r.EmployeeID),
			EmployeeName: r.EmployeeName,
			Days:         r.Days,
			Hours:        hoursString(r.Hours),
			SickDays:     r.SickDays,
		}
	}
	return dto
}

type CalendarOffDTO struct {
	EmployeeID   string `json:"employee_id"`
	EmployeeName string `json:"employee_name"`
	Category     string `json:"category"`
}

type CalendarDayDTO struct {
	Date     string           `json:"date"`
	Off      []CalendarOffDTO `json:"off"`
	Conflict bool             `json:"conflict"`
}

type CalendarDTO struct {
	Year      int              `json:"year"`
	Month     int              `json:"month"`
	Days      []CalendarDayDTO `json:"days"`
	Conflicts []string         `json:"conflicts"`
}

func toCalendarDTO(c timeoff.Calendar) CalendarDTO {
	dto := CalendarDTO{
		Year:      c.Year,
		Month:     c.Month,
		Days:      make([]CalendarDayDTO, len(c.Days)),
		Conflicts: []string{},
	}
	for i, d := range c.Days {
		off := make([]CalendarOffDTO, len(d.Off))
		for j, o := range d.Off {
			off[j] = CalendarOffDTO{
				EmployeeID:   string(o.EmployeeID),
				EmployeeName: o.EmployeeName,
				Category:     o.Category.Note(),
			}
		}
		dto.Days[i] = CalendarDayDTO{Date: d.Date.String(), Off: off, Conflict: d.Conflict}
	}
	for _, d := range c.ConflictDates() {
		dto.Conflicts = append(dto.Conflicts, d.String())
	}
	return dto
}

// =============================================================================
// SCENARIOS
// =============================================================================

type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
	WeekStart  string `json:"week_start"`
}

// =============================================================================
// ERRORS
// =============================================================================

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func hoursString(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
