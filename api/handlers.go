/*
handlers.go - HTTP API handlers for the timesheet engine

PURPOSE:
  Exposes the timesheet engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to the engine (timesheet, timeoff,
  export). Handlers never compute hours themselves.

ENDPOINTS:
  Employees:
    GET    /api/employees                         List all employees
    POST   /api/employees                         Create or replace employee
    GET    /api/employees/{id}                    Get employee
    DELETE /api/employees/{id}                    Delete employee (cascades)

  Time entries:
    PUT    /api/employees/{id}/entries/{date}     Submit a day's clock readings
    GET    /api/employees/{id}/weeks/{weekStart}  Weekly rollup
    GET    /api/shifts/{shift}/weeks/{weekStart}  Shift roster ("combined" = all)
    POST   /api/compute/day                       Preview a day without storing

  Time off:
    POST   /api/employees/{id}/timeoff            Create request
    GET    /api/employees/{id}/timeoff            Employee's requests, newest first
    GET    /api/timeoff/requests?status=          Listing (pending is oldest first)
    POST   /api/timeoff/requests/{id}/approve     Approve
    POST   /api/timeoff/requests/{id}/reject      Reject
    GET    /api/timeoff/report?from&to            Per-employee totals
    GET    /api/timeoff/calendar?year&month       Who is off each day

  Exports (.xlsx):
    GET    /api/export/weeks/{weekStart}?shift=
    GET    /api/export/timeoff?from&to

ERROR HANDLING:
  Errors are returned as JSON {"error": ..., "details": ...}:
  - 400: Invalid date/time/category/range/hours, bad body
  - 404: Unknown employee or request
  - 409: Request already processed
  - 500: Internal errors

SECURITY NOTE:
  No authentication or authorization. Callers are trusted to approve.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo data loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/warp/timesheet-engine/export"
	"github.com/warp/timesheet-engine/timeoff"
	"github.com/warp/timesheet-engine/timesheet"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// errUnknownShift is returned for a shift path value that names no shift.
var errUnknownShift = errors.New("unknown shift")

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Store is everything the API reads and writes. Both store/sqlite and
// store/memory satisfy it.
type Store interface {
	timesheet.EmployeeStore
	timesheet.EntryStore
	timeoff.TxStore
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store      Store
	Rules      timesheet.Rules
	Aggregator *timesheet.Aggregator
	Requests   *timeoff.Service
	Metrics    *Metrics

	// Track currently loaded scenario
	scenarioMu      sync.Mutex
	currentScenario string
}

// NewHandler wires the engine services over one store.
func NewHandler(store Store, rules timesheet.Rules, metrics *Metrics) *Handler {
	if metrics == nil {
		metrics = NewMetrics()
	}
	return &Handler{
		Store:      store,
		Rules:      rules,
		Aggregator: timesheet.NewAggregator(store, store, rules),
		Requests:   timeoff.NewService(store, store, rules),
		Metrics:    metrics,
	}
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ListEmployees returns all employees sorted by name.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Store.ListEmployees(r.Context())
	if err != nil {
		writeEngineError(w, "Failed to list employees", err)
		return
	}

	dtos := make([]EmployeeDTO, len(employees))
	for i, e := range employees {
		dtos[i] = toEmployeeDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetEmployee returns a single employee.
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	emp, err := h.Store.GetEmployee(r.Context(), employeeParam(r))
	if err != nil {
		writeEngineError(w, "Failed to get employee", err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(*emp))
}

// SaveEmployee creates an employee or replaces an existing one.
func (h *Handler) SaveEmployee(w http.ResponseWriter, r *http.Request) {
	var req SaveEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if strings.TrimSpace(req.ID) == "" || strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "id and name are required", nil)
		return
	}

	emp := timesheet.Employee{
		ID:         timesheet.EmployeeID(req.ID),
		Name:       strings.TrimSpace(req.Name),
		Employment: timesheet.ParseEmploymentType(req.EmploymentType),
		Shift:      timesheet.ParseShift(req.Shift),
		IsAdmin:    req.IsAdmin,
	}
	if err := h.Store.SaveEmployee(r.Context(), emp); err != nil {
		writeEngineError(w, "Failed to save employee", err)
		return
	}

	saved, err := h.Store.GetEmployee(r.Context(), emp.ID)
	if err != nil {
		writeEngineError(w, "Failed to get employee", err)
		return
	}
	writeJSON(w, http.StatusCreated, toEmployeeDTO(*saved))
}

// DeleteEmployee removes an employee with their entries and requests.
func (h *Handler) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteEmployee(r.Context(), employeeParam(r)); err != nil {
		writeEngineError(w, "Failed to delete employee", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "deleted"})
}

// =============================================================================
// TIME ENTRY HANDLERS
// =============================================================================

// SubmitEntry stores one day's clock readings. Hours are snapshot now.
// PUT /api/employees/{id}/entries/{date}
func (h *Handler) SubmitEntry(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	day, err := timesheet.ParseDate(chi.URLParam(r, "date"))
	if err != nil {
		writeEngineError(w, "Invalid date (use YYYY-MM-DD)", err)
		return
	}

	var req SubmitEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	sub := timesheet.ClockSubmission{WorkDate: day, Category: timesheet.ParseCategory(req.Note)}
	if sub.ClockIn, sub.ClockOut, sub.LunchStart, sub.LunchEnd, err = parseClocks(
		req.ClockIn, req.ClockOut, req.LunchStart, req.LunchEnd); err != nil {
		writeEngineError(w, "Invalid time (use HH:MM)", err)
		return
	}

	emp, err := h.Store.GetEmployee(ctx, employeeParam(r))
	if err != nil {
		writeEngineError(w, "Failed to get employee", err)
		return
	}

	entry := h.Rules.PrepareSubmission(*emp, sub)
	if err := h.Store.Upsert(ctx, entry); err != nil {
		writeEngineError(w, "Failed to save entry", err)
		return
	}
	h.Metrics.entryUpserted("clock")

	writeJSON(w, http.StatusOK, toEntryDTO(h.Rules.RollupDay(entry.Normalized())))
}

// GetWeek returns one employee's rolled-up week.
// GET /api/employees/{id}/weeks/{weekStart}
func (h *Handler) GetWeek(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	weekStart, err := timesheet.ParseDate(chi.URLParam(r, "weekStart"))
	if err != nil {
		writeEngineError(w, "Invalid week start (use YYYY-MM-DD)", err)
		return
	}
	emp, err := h.Store.GetEmployee(ctx, employeeParam(r))
	if err != nil {
		writeEngineError(w, "Failed to get employee", err)
		return
	}

	week, err := h.Aggregator.RollupEmployee(ctx, emp.ID, weekStart)
	if err != nil {
		writeEngineError(w, "Failed to roll up week", err)
		return
	}
	writeJSON(w, http.StatusOK, toWeekDTO(emp.Name, week))
}

// GetShiftWeek returns the roster for one shift, or every shift for "combined".
// GET /api/shifts/{shift}/weeks/{weekStart}
func (h *Handler) GetShiftWeek(w http.ResponseWriter, r *http.Request) {
	weekStart, err := timesheet.ParseDate(chi.URLParam(r, "weekStart"))
	if err != nil {
		writeEngineError(w, "Invalid week start (use YYYY-MM-DD)", err)
		return
	}
	rosters, err := h.rosters(r, chi.URLParam(r, "shift"), weekStart)
	if err != nil {
		writeEngineError(w, "Failed to build roster", err)
		return
	}

	dtos := make([]ShiftRosterDTO, len(rosters))
	for i, roster := range rosters {
		dtos[i] = toShiftRosterDTO(roster)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"week_start": weekStart.WeekStart().String(),
		"shifts":     dtos,
	})
}

// rosters resolves a shift path value: "" or "combined" means every shift.
func (h *Handler) rosters(r *http.Request, shiftName string, weekStart timesheet.Date) ([]timesheet.ShiftRoster, error) {
	if shiftName == "" || shiftName == "combined" {
		return h.Aggregator.RollupAllShifts(r.Context(), weekStart)
	}
	shift, err := parseShiftName(shiftName)
	if err != nil {
		return nil, err
	}
	weeks, err := h.Aggregator.RollupShift(r.Context(), shift, weekStart)
	if err != nil {
		return nil, err
	}
	return []timesheet.ShiftRoster{{Shift: shift, Weeks: weeks}}, nil
}

// ComputeDay previews hours and graveyard classification.
// POST /api/compute/day
func (h *Handler) ComputeDay(w http.ResponseWriter, r *http.Request) {
	var req ComputeDayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	var entry timesheet.TimeEntry
	var err error
	if entry.ClockIn, entry.ClockOut, entry.LunchStart, entry.LunchEnd, err = parseClocks(
		req.ClockIn, req.ClockOut, req.LunchStart, req.LunchEnd); err != nil {
		writeEngineError(w, "Invalid time (use HH:MM)", err)
		return
	}
	entry.Category = timesheet.ParseCategory(req.Note)

	rolled := h.Rules.RollupDay(entry)
	writeJSON(w, http.StatusOK, ComputeDayDTO{
		Hours:         hoursString(timesheet.DayTotal(entry)),
		RegularHours:  hoursString(rolled.RegularHours),
		OvertimeHours: hoursString(rolled.OvertimeHours),
		Graveyard:     rolled.Graveyard,
	})
}

// =============================================================================
// TIME-OFF HANDLERS
// =============================================================================

// CreateTimeOff files a pending request for the employee.
// POST /api/employees/{id}/timeoff
func (h *Handler) CreateTimeOff(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateTimeOffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	from, err := timesheet.ParseDate(req.FromDate)
	if err != nil {
		writeEngineError(w, "Invalid from_date (use YYYY-MM-DD)", err)
		return
	}
	to, err := timesheet.ParseDate(req.ToDate)
	if err != nil {
		writeEngineError(w, "Invalid to_date (use YYYY-MM-DD)", err)
		return
	}
	category, err := timesheet.ParseTimeOffCategory(req.Category)
	if err != nil {
		writeEngineError(w, "Invalid category", err)
		return
	}

	id, err := h.Requests.CreateForEmployee(ctx, employeeParam(r), from, to, category)
	if err != nil {
		writeEngineError(w, "Failed to create request", err)
		return
	}
	h.Metrics.requestCreated(category.Note())

	created, err := h.Requests.Get(ctx, id)
	if err != nil {
		writeEngineError(w, "Failed to get request", err)
		return
	}
	writeJSON(w, http.StatusCreated, toRequestDTO(*created))
}

// ListEmployeeTimeOff returns the employee's requests, newest first.
// GET /api/employees/{id}/timeoff
func (h *Handler) ListEmployeeTimeOff(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	emp, err := h.Store.GetEmployee(ctx, employeeParam(r))
	if err != nil {
		writeEngineError(w, "Failed to get employee", err)
		return
	}

	reqs, err := h.Requests.ForEmployee(ctx, emp.ID)
	if err != nil {
		writeEngineError(w, "Failed to list requests", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"requests": toRequestDTOs(reqs)})
}

// ListRequests lists requests by status; pending is oldest first, the rest newest first.
// GET /api/timeoff/requests?status=pending
func (h *Handler) ListRequests(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	status, err := timeoff.ParseStatus(r.URL.Query().Get("status"))
	if err != nil {
		writeEngineError(w, "Invalid status", err)
		return
	}

	var reqs []timeoff.Request
	if status == timeoff.StatusPending {
		reqs, err = h.Requests.Pending(ctx)
	} else {
		reqs, err = h.Requests.All(ctx, status)
	}
	if err != nil {
		writeEngineError(w, "Failed to list requests", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"requests": toRequestDTOs(reqs)})
}

// ApproveRequest approves a pending request and materializes its days.
// POST /api/timeoff/requests/{id}/approve
func (h *Handler) ApproveRequest(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, timeoff.Approve)
}

// RejectRequest rejects a pending request.
// POST /api/timeoff/requests/{id}/reject
func (h *Handler) RejectRequest(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, timeoff.Reject)
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request, decision timeoff.Decision) {
	id := timeoff.RequestID(chi.URLParam(r, "id"))

	_, err := h.Requests.Decide(r.Context(), id, decision)
	switch {
	case err == nil:
		h.Metrics.decided(string(decision), "applied")
	case timeoff.IsConflict(err):
		h.Metrics.decided(string(decision), "conflict")
		writeEngineError(w, "Request is not pending", err)
		return
	case timeoff.IsNotFound(err):
		h.Metrics.decided(string(decision), "not_found")
		writeEngineError(w, "Request not found", err)
		return
	default:
		h.Metrics.decided(string(decision), "error")
		writeEngineError(w, fmt.Sprintf("Failed to %s request", decision), err)
		return
	}

	writeJSON(w, http.StatusOK, DecisionDTO{ID: string(id), Status: string(decision.Target())})
}

// =============================================================================
// REPORT HANDLERS
// =============================================================================

// TimeOffReport returns time-off rows in a range with per-employee totals.
// GET /api/timeoff/report?from=2026-01-01&to=2026-03-31&category=PTO
// Administrators are left out unless exclude_admins=false.
func (h *Handler) TimeOffReport(w http.ResponseWriter, r *http.Request) {
	filter, report, err := h.timeOffReport(r)
	if err != nil {
		writeEngineError(w, "Failed to build report", err)
		return
	}
	writeJSON(w, http.StatusOK, toReportDTO(filter, report))
}

func (h *Handler) timeOffReport(r *http.Request) (timesheet.TimeOffFilter, timeoff.Report, error) {
	filter, err := parseTimeOffFilter(r)
	if err != nil {
		return filter, timeoff.Report{}, err
	}
	entries, err := h.Store.EntriesInRange(r.Context(), filter)
	if err != nil {
		return filter, timeoff.Report{}, err
	}
	return filter, timeoff.BuildReport(entries, h.Rules.FullDayTimeOffHours), nil
}

// TimeOffCalendar returns who is off on each day of a month.
// GET /api/timeoff/calendar?year=2026&month=2
func (h *Handler) TimeOffCalendar(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	year, yerr := strconv.Atoi(q.Get("year"))
	month, merr := strconv.Atoi(q.Get("month"))
	if yerr != nil || merr != nil {
		writeError(w, http.StatusBadRequest, "year and month are required numbers", errors.Join(yerr, merr))
		return
	}
	if month < 1 || month > 12 {
		writeEngineError(w, "Invalid month", timesheet.ErrInvalidRange)
		return
	}

	entries, err := h.Store.EntriesInRange(r.Context(), timesheet.TimeOffFilter{
		From:          timesheet.StartOfMonth(year, time.Month(month)),
		To:            timesheet.EndOfMonth(year, time.Month(month)),
		ExcludeAdmins: true,
	})
	if err != nil {
		writeEngineError(w, "Failed to load time off", err)
		return
	}
	cal, err := timeoff.BuildCalendar(year, month, entries)
	if err != nil {
		writeEngineError(w, "Failed to build calendar", err)
		return
	}
	writeJSON(w, http.StatusOK, toCalendarDTO(cal))
}

// =============================================================================
// EXPORT HANDLERS
// =============================================================================

// ExportWeek downloads the week's computed hours.
// GET /api/export/weeks/{weekStart}?shift=day
func (h *Handler) ExportWeek(w http.ResponseWriter, r *http.Request) {
	weekStart, err := timesheet.ParseDate(chi.URLParam(r, "weekStart"))
	if err != nil {
		writeEngineError(w, "Invalid week start (use YYYY-MM-DD)", err)
		return
	}
	rosters, err := h.rosters(r, r.URL.Query().Get("shift"), weekStart)
	if err != nil {
		writeEngineError(w, "Failed to build roster", err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteWeek(&buf, rosters); err != nil {
		writeEngineError(w, "Failed to export week", err)
		return
	}
	writeXLSX(w, fmt.Sprintf("hours-%s.xlsx", weekStart.WeekStart()), buf.Bytes())
}

// ExportTimeOff downloads the time-off report.
// GET /api/export/timeoff?from=2026-01-01&to=2026-03-31
func (h *Handler) ExportTimeOff(w http.ResponseWriter, r *http.Request) {
	filter, report, err := h.timeOffReport(r)
	if err != nil {
		writeEngineError(w, "Failed to build report", err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteTimeOff(&buf, report, h.Rules.FullDayTimeOffHours); err != nil {
		writeEngineError(w, "Failed to export time off", err)
		return
	}
	writeXLSX(w, fmt.Sprintf("timeoff-%s-%s.xlsx", filter.From, filter.To), buf.Bytes())
}

// =============================================================================
// HELPERS
// =============================================================================

func employeeParam(r *http.Request) timesheet.EmployeeID {
	return timesheet.EmployeeID(chi.URLParam(r, "id"))
}

// parseClocks parses the four optional readings of a day.
func parseClocks(in, out, lunchStart, lunchEnd string) (*timesheet.TimeOfDay, *timesheet.TimeOfDay, *timesheet.TimeOfDay, *timesheet.TimeOfDay, error) {
	var parsed [4]*timesheet.TimeOfDay
	for i, s := range []string{in, out, lunchStart, lunchEnd} {
		t, err := timesheet.ParseOptionalTime(s)
		if err != nil {
			return nil, nil, nil, nil, err
		}
		parsed[i] = t
	}
	return parsed[0], parsed[1], parsed[2], parsed[3], nil
}

func parseShiftName(name string) (timesheet.Shift, error) {
	if strings.EqualFold(name, "unassigned") {
		return timesheet.ShiftUnassigned, nil
	}
	shift := timesheet.ParseShift(name)
	if shift == timesheet.ShiftUnassigned {
		return "", fmt.Errorf("%w: %q", errUnknownShift, name)
	}
	return shift, nil
}

func parseTimeOffFilter(r *http.Request) (timesheet.TimeOffFilter, error) {
	q := r.URL.Query()
	var filter timesheet.TimeOffFilter
	var err error

	if filter.From, err = timesheet.ParseDate(q.Get("from")); err != nil {
		return filter, err
	}
	if filter.To, err = timesheet.ParseDate(q.Get("to")); err != nil {
		return filter, err
	}
	for _, note := range q["category"] {
		c, err := timesheet.ParseTimeOffCategory(note)
		if err != nil {
			return filter, err
		}
		filter.Categories = append(filter.Categories, c)
	}
	filter.ExcludeAdmins = true
	if v, err := strconv.ParseBool(q.Get("exclude_admins")); err == nil {
		filter.ExcludeAdmins = v
	}
	return filter, filter.Validate()
}

// statusFor maps engine errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case timeoff.IsNotFound(err):
		return http.StatusNotFound
	case timeoff.IsConflict(err):
		return http.StatusConflict
	case timeoff.IsClientError(err), errors.Is(err, errUnknownShift):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeEngineError(w http.ResponseWriter, message string, err error) {
	writeError(w, statusFor(err), message, err)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

func writeXLSX(w http.ResponseWriter, filename string, data []byte) {
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
