/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the store with realistic
	data for demos. Each scenario creates employees across the shifts and
	writes entries and requests through the same engine calls the API uses,
	so every derived number is what a real submission would produce.

AVAILABLE SCENARIOS:

	shift-week:       Day, swing and graveyard staff with a week of clock
	                  readings, including overtime and a cross-midnight shift
	timeoff-requests: Pending, approved and rejected requests, a contractor,
	                  and a same-shift overlap that shows up as a calendar conflict

HOW SCENARIOS WORK:
 1. Delete every employee (entries and requests cascade)
 2. Create employees
 3. Submit clock readings for the chosen week
 4. Optionally file and decide time-off requests

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "shift-week", "week_start": "2026-02-02"}

NOTE:

	Scenarios wipe the store. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: The handlers scenarios imitate
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/warp/timesheet-engine/timeoff"
	"github.com/warp/timesheet-engine/timesheet"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "shift-week",
		Name:        "Shift Week",
		Description: "Three shifts with a week of clock readings, overtime and a graveyard shift",
	},
	{
		ID:          "timeoff-requests",
		Name:        "Time-Off Requests",
		Description: "Pending, approved and rejected requests with a same-shift conflict",
	},
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.scenarioMu.Lock()
	current := h.currentScenario
	h.scenarioMu.Unlock()

	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, nil)
}

// LoadScenario wipes the store and loads the named scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	weekStart := timesheet.Today().WeekStart()
	if req.WeekStart != "" {
		d, err := timesheet.ParseDate(req.WeekStart)
		if err != nil {
			writeEngineError(w, "Invalid week_start (use YYYY-MM-DD)", err)
			return
		}
		weekStart = d.WeekStart()
	}

	var load func(context.Context, timesheet.Date) error
	switch req.ScenarioID {
	case "shift-week":
		load = h.loadShiftWeekScenario
	case "timeoff-requests":
		load = h.loadTimeOffScenario
	default:
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}

	h.scenarioMu.Lock()
	defer h.scenarioMu.Unlock()

	ctx := r.Context()
	h.currentScenario = ""
	if err := h.reset(ctx); err != nil {
		writeEngineError(w, "Failed to reset store", err)
		return
	}
	if err := load(ctx, weekStart); err != nil {
		writeEngineError(w, fmt.Sprintf("Failed to load scenario: %v", err), err)
		return
	}
	h.currentScenario = req.ScenarioID

	writeJSON(w, http.StatusOK, map[string]string{
		"status":     "loaded",
		"scenario":   req.ScenarioID,
		"week_start": weekStart.String(),
	})
}

// reset deletes every employee; entries and requests go with them.
func (h *Handler) reset(ctx context.Context) error {
	employees, err := h.Store.ListEmployees(ctx)
	if err != nil {
		return err
	}
	for _, e := range employees {
		if err := h.Store.DeleteEmployee(ctx, e.ID); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

var scenarioStaff = []timesheet.Employee{
	{ID: "emp-ana", Name: "Ana Flores", Shift: timesheet.ShiftDay},
	{ID: "emp-ben", Name: "Ben Okafor", Shift: timesheet.ShiftDay},
	{ID: "emp-chen", Name: "Chen Wei", Shift: timesheet.ShiftSwing},
	{ID: "emp-dee", Name: "Dee Marsh", Shift: timesheet.ShiftGraveyard},
	{ID: "emp-eli", Name: "Eli Novak", Shift: timesheet.ShiftSwing, Employment: timesheet.Contractor},
	{ID: "emp-fay", Name: "Fay Ortiz", Shift: timesheet.ShiftDay, IsAdmin: true},
}

// scenarioDay is one clock submission, offset from the week start.
type scenarioDay struct {
	employee   timesheet.EmployeeID
	offset     int
	in, out    string
	lunchStart string
	lunchEnd   string
	note       string
}

func (h *Handler) saveStaff(ctx context.Context) error {
	for _, emp := range scenarioStaff {
		if emp.Employment == "" {
			emp.Employment = timesheet.FullTime
		}
		if err := h.Store.SaveEmployee(ctx, emp); err != nil {
			return fmt.Errorf("employee %s: %w", emp.ID, err)
		}
	}
	return nil
}

func (h *Handler) submitDays(ctx context.Context, weekStart timesheet.Date, days []scenarioDay) error {
	for _, d := range days {
		emp, err := h.Store.GetEmployee(ctx, d.employee)
		if err != nil {
			return err
		}
		sub := timesheet.ClockSubmission{
			WorkDate: weekStart.AddDays(d.offset),
			Category: timesheet.ParseCategory(d.note),
		}
		if sub.ClockIn, sub.ClockOut, sub.LunchStart, sub.LunchEnd, err = parseClocks(
			d.in, d.out, d.lunchStart, d.lunchEnd); err != nil {
			return err
		}
		if err := h.Store.Upsert(ctx, h.Rules.PrepareSubmission(*emp, sub)); err != nil {
			return err
		}
		h.Metrics.entryUpserted("scenario")
	}
	return nil
}

func (h *Handler) loadShiftWeekScenario(ctx context.Context, weekStart timesheet.Date) error {
	if err := h.saveStaff(ctx); err != nil {
		return err
	}

	var days []scenarioDay
	for i := 0; i < 5; i++ {
		days = append(days,
			scenarioDay{employee: "emp-ana", offset: i, in: "08:00", out: "16:30", lunchStart: "12:00", lunchEnd: "12:30"},
			scenarioDay{employee: "emp-chen", offset: i, in: "14:00", out: "22:30", lunchStart: "18:00", lunchEnd: "18:30"},
			scenarioDay{employee: "emp-dee", offset: i, in: "22:00", out: "06:30", lunchStart: "02:00", lunchEnd: "02:30"},
		)
	}
	days = append(days,
		// Long days push Ben into overtime.
		scenarioDay{employee: "emp-ben", offset: 0, in: "07:00", out: "18:00", lunchStart: "12:00", lunchEnd: "13:00"},
		scenarioDay{employee: "emp-ben", offset: 1, in: "07:00", out: "18:00", lunchStart: "12:00", lunchEnd: "13:00"},
		scenarioDay{employee: "emp-ben", offset: 2, in: "07:00", out: "18:00", lunchStart: "12:00", lunchEnd: "13:00"},
		scenarioDay{employee: "emp-ben", offset: 3, in: "07:00", out: "18:00", lunchStart: "12:00", lunchEnd: "13:00"},
		scenarioDay{employee: "emp-ben", offset: 4, note: timesheet.NoteSickLeave},
		scenarioDay{employee: "emp-ben", offset: 5, in: "09:00", out: "13:00"},
		scenarioDay{employee: "emp-eli", offset: 2, in: "15:00", out: "23:30"},
		scenarioDay{employee: "emp-eli", offset: 3, note: timesheet.NoteNonPay},
	)
	return h.submitDays(ctx, weekStart, days)
}

func (h *Handler) loadTimeOffScenario(ctx context.Context, weekStart timesheet.Date) error {
	if err := h.saveStaff(ctx); err != nil {
		return err
	}

	type filing struct {
		employee timesheet.EmployeeID
		from, to int
		category timesheet.DayCategory
		decision timeoff.Decision // "" leaves it pending
	}
	filings := []filing{
		{employee: "emp-ana", from: 1, to: 3, category: timesheet.PTO(), decision: timeoff.Approve},
		// Overlaps Ana on the day shift.
		{employee: "emp-ben", from: 2, to: 2, category: timesheet.SickLeave(), decision: timeoff.Approve},
		{employee: "emp-chen", from: 7, to: 11, category: timesheet.PTO()},
		{employee: "emp-dee", from: 4, to: 4, category: timesheet.NonPay(), decision: timeoff.Reject},
		{employee: "emp-eli", from: 8, to: 9, category: timesheet.PTO()},
	}

	for _, f := range filings {
		id, err := h.Requests.CreateForEmployee(ctx, f.employee,
			weekStart.AddDays(f.from), weekStart.AddDays(f.to), f.category)
		if err != nil {
			return fmt.Errorf("request for %s: %w", f.employee, err)
		}
		h.Metrics.requestCreated(f.category.Note())
		if f.decision == "" {
			continue
		}
		if _, err := h.Requests.Decide(ctx, id, f.decision); err != nil {
			return fmt.Errorf("decide %s: %w", id, err)
		}
		h.Metrics.decided(string(f.decision), "applied")
	}
	return nil
}
