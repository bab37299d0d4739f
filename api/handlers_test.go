/*
handlers_test.go - HTTP tests for the API handlers

Tests run the full router over the in-memory store:
- Employee CRUD and cascade delete
- Clock submission, weekly rollup and shift rosters
- Time-off create/approve/reject, including double approval
- Reports, calendar conflicts and spreadsheet exports
- Error status mapping and metrics exposure
*/
package api_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/warp/timesheet-engine/api"
	"github.com/warp/timesheet-engine/export"
	"github.com/warp/timesheet-engine/store/memory"
	"github.com/warp/timesheet-engine/timesheet"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func newRouter(t *testing.T) *chi.Mux {
	t.Helper()
	h := api.NewHandler(memory.New(), timesheet.DefaultRules(), api.NewMetrics())
	return api.NewRouter(h, nil)
}

func do(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func saveEmployee(t *testing.T, router http.Handler, id, name, shift string) {
	t.Helper()
	rec := do(t, router, http.MethodPost, "/api/employees", api.SaveEmployeeRequest{ID: id, Name: name, Shift: shift})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func submit(t *testing.T, router http.Handler, id, date string, req api.SubmitEntryRequest) api.EntryDTO {
	t.Helper()
	rec := do(t, router, http.MethodPut, "/api/employees/"+id+"/entries/"+date, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[api.EntryDTO](t, rec)
}

func createTimeOff(t *testing.T, router http.Handler, id, from, to, category string) api.RequestDTO {
	t.Helper()
	rec := do(t, router, http.MethodPost, "/api/employees/"+id+"/timeoff",
		api.CreateTimeOffRequest{FromDate: from, ToDate: to, Category: category})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[api.RequestDTO](t, rec)
}

// =============================================================================
// EMPLOYEES
// =============================================================================

func TestEmployees_CRUD(t *testing.T) {
	router := newRouter(t)

	saveEmployee(t, router, "bob", "Bob", "swing")
	saveEmployee(t, router, "alice", "Alice", "day")

	rec := do(t, router, http.MethodGet, "/api/employees", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]api.EmployeeDTO](t, rec)
	require.Len(t, list, 2)
	assert.Equal(t, "Alice", list[0].Name, "sorted by name")
	assert.Equal(t, "full_time", list[0].EmploymentType)

	rec = do(t, router, http.MethodGet, "/api/employees/bob", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "swing", decode[api.EmployeeDTO](t, rec).Shift)

	rec = do(t, router, http.MethodDelete, "/api/employees/bob", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/employees/bob", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = do(t, router, http.MethodDelete, "/api/employees/bob", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEmployees_Validation(t *testing.T) {
	router := newRouter(t)

	rec := do(t, router, http.MethodPost, "/api/employees", api.SaveEmployeeRequest{Name: "No ID"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/employees", strings.NewReader("{"))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid request body", decode[api.ErrorResponse](t, rec).Error)
}

// =============================================================================
// ENTRIES AND WEEKS
// =============================================================================

func TestSubmitEntry_ComputesHours(t *testing.T) {
	router := newRouter(t)
	saveEmployee(t, router, "alice", "Alice", "day")

	// GIVEN: A day with a 30 minute lunch
	entry := submit(t, router, "alice", "2026-02-02", api.SubmitEntryRequest{
		ClockIn: "09:00", ClockOut: "17:00", LunchStart: "12:00", LunchEnd: "12:30",
	})
	assert.Equal(t, "7.50", entry.RegularHours)
	assert.Equal(t, "0.00", entry.OvertimeHours)
	assert.False(t, entry.Graveyard)

	// GIVEN: A long day is split at the daily cap
	entry = submit(t, router, "alice", "2026-02-03", api.SubmitEntryRequest{ClockIn: "07:00", ClockOut: "17:00"})
	assert.Equal(t, "8.00", entry.RegularHours)
	assert.Equal(t, "2.00", entry.OvertimeHours)

	// GIVEN: A cross-midnight shift
	entry = submit(t, router, "alice", "2026-02-04", api.SubmitEntryRequest{ClockIn: "23:00", ClockOut: "07:00"})
	assert.Equal(t, "8.00", entry.RegularHours)
	assert.True(t, entry.Graveyard)

	// GIVEN: Non Pay with clock readings
	entry = submit(t, router, "alice", "2026-02-05", api.SubmitEntryRequest{
		ClockIn: "09:00", ClockOut: "17:00", Note: timesheet.NoteNonPay,
	})
	assert.Equal(t, "0.00", entry.RegularHours)
	assert.Equal(t, timesheet.NoteNonPay, entry.Note)

	// WHEN: Reading the week
	rec := do(t, router, http.MethodGet, "/api/employees/alice/weeks/2026-02-04", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	week := decode[api.WeekDTO](t, rec)

	// THEN: The week is Monday-based with seven days and the sums above
	assert.Equal(t, "2026-02-02", week.WeekStart)
	assert.Equal(t, "Alice", week.EmployeeName)
	require.Len(t, week.Days, 7)
	assert.Equal(t, "2026-02-08", week.Days[6].WorkDate)
	assert.Equal(t, "0.00", week.Days[6].RegularHours)
	assert.Equal(t, "23.50", week.RegularTotal)
	assert.Equal(t, "23.50", week.Attendance)
	assert.Equal(t, "2.00", week.OvertimeTotal)
	assert.Equal(t, "25.50", week.TotalHours)
}

func TestSubmitEntry_IdempotentResubmit(t *testing.T) {
	router := newRouter(t)
	saveEmployee(t, router, "alice", "Alice", "day")

	req := api.SubmitEntryRequest{ClockIn: "09:00", ClockOut: "17:00"}
	submit(t, router, "alice", "2026-02-02", req)
	submit(t, router, "alice", "2026-02-02", req)

	rec := do(t, router, http.MethodGet, "/api/employees/alice/weeks/2026-02-02", nil)
	week := decode[api.WeekDTO](t, rec)
	assert.Equal(t, "8.00", week.Attendance, "one row, not two")
}

func TestSubmitEntry_Errors(t *testing.T) {
	router := newRouter(t)
	saveEmployee(t, router, "alice", "Alice", "day")

	tests := []struct {
		name   string
		path   string
		body   api.SubmitEntryRequest
		status int
	}{
		{"bad date", "/api/employees/alice/entries/2026-13-01", api.SubmitEntryRequest{}, http.StatusBadRequest},
		{"bad time", "/api/employees/alice/entries/2026-02-02", api.SubmitEntryRequest{ClockIn: "25:00"}, http.StatusBadRequest},
		{"unknown employee", "/api/employees/nobody/entries/2026-02-02", api.SubmitEntryRequest{ClockIn: "09:00"}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, router, http.MethodPut, tt.path, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.NotEmpty(t, decode[api.ErrorResponse](t, rec).Error)
		})
	}
}

func TestComputeDay(t *testing.T) {
	router := newRouter(t)

	tests := []struct {
		name      string
		req       api.ComputeDayRequest
		hours     string
		overtime  string
		graveyard bool
	}{
		{"overnight", api.ComputeDayRequest{ClockIn: "23:00", ClockOut: "07:00"}, "8.00", "0.00", true},
		{"late evening", api.ComputeDayRequest{ClockIn: "21:00", ClockOut: "23:30"}, "2.50", "0.00", true},
		{"day shift", api.ComputeDayRequest{ClockIn: "08:00", ClockOut: "16:00"}, "8.00", "0.00", false},
		{"long day", api.ComputeDayRequest{ClockIn: "06:00", ClockOut: "18:00", LunchStart: "12:00", LunchEnd: "13:00"}, "11.00", "3.00", false},
		{"lunch longer than shift", api.ComputeDayRequest{ClockIn: "09:00", ClockOut: "10:00", LunchStart: "09:00", LunchEnd: "11:00"}, "0.00", "0.00", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, router, http.MethodPost, "/api/compute/day", tt.req)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			got := decode[api.ComputeDayDTO](t, rec)
			assert.Equal(t, tt.hours, got.Hours)
			assert.Equal(t, tt.overtime, got.OvertimeHours)
			assert.Equal(t, tt.graveyard, got.Graveyard)
		})
	}
}

func TestShiftRoster(t *testing.T) {
	router := newRouter(t)
	saveEmployee(t, router, "zoe", "Zoe", "day")
	saveEmployee(t, router, "alice", "Alice", "day")
	saveEmployee(t, router, "gus", "Gus", "graveyard")
	rec := do(t, router, http.MethodPost, "/api/employees", api.SaveEmployeeRequest{
		ID: "boss", Name: "Boss", Shift: "day", IsAdmin: true,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	submit(t, router, "zoe", "2026-02-02", api.SubmitEntryRequest{ClockIn: "08:00", ClockOut: "16:00"})

	// WHEN: Reading the day shift
	rec = do(t, router, http.MethodGet, "/api/shifts/day/weeks/2026-02-02", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		WeekStart string               `json:"week_start"`
		Shifts    []api.ShiftRosterDTO `json:"shifts"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	// THEN: Admins are left out, employees without entries are kept, sorted by name
	require.Len(t, body.Shifts, 1)
	weeks := body.Shifts[0].Weeks
	require.Len(t, weeks, 2)
	assert.Equal(t, "Alice", weeks[0].EmployeeName)
	assert.Equal(t, "0.00", weeks[0].TotalHours)
	assert.Equal(t, "Zoe", weeks[1].EmployeeName)
	assert.Equal(t, "8.00", weeks[1].TotalHours)

	// WHEN: Reading every shift
	rec = do(t, router, http.MethodGet, "/api/shifts/combined/weeks/2026-02-02", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Shifts, 4)
	assert.Equal(t, "day", body.Shifts[0].Shift)
	assert.Equal(t, "graveyard", body.Shifts[2].Shift)
	assert.Len(t, body.Shifts[2].Weeks, 1)

	rec = do(t, router, http.MethodGet, "/api/shifts/nights/weeks/2026-02-02", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// TIME OFF
// =============================================================================

func TestTimeOff_ApproveMaterializesDays(t *testing.T) {
	router := newRouter(t)
	saveEmployee(t, router, "alice", "Alice", "day")

	// GIVEN: A pending three-day PTO request
	created := createTimeOff(t, router, "alice", "2026-02-02", "2026-02-04", timesheet.NotePTO)
	assert.Equal(t, "pending", created.Status)
	assert.Equal(t, "8.00", created.HoursPerDay)
	assert.Equal(t, "Alice", created.EmployeeName)

	rec := do(t, router, http.MethodGet, "/api/timeoff/requests?status=pending", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var listing struct {
		Requests []api.RequestDTO `json:"requests"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listing))
	require.Len(t, listing.Requests, 1)

	// WHEN: Approving it twice
	rec = do(t, router, http.MethodPost, "/api/timeoff/requests/"+created.ID+"/approve", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "approved", decode[api.DecisionDTO](t, rec).Status)

	rec = do(t, router, http.MethodPost, "/api/timeoff/requests/"+created.ID+"/approve", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// THEN: Exactly three PTO days at 8.00 appear in the week
	rec = do(t, router, http.MethodGet, "/api/employees/alice/weeks/2026-02-02", nil)
	week := decode[api.WeekDTO](t, rec)
	for i := 0; i < 3; i++ {
		assert.Equal(t, timesheet.NotePTO, week.Days[i].Note)
		assert.Equal(t, "8.00", week.Days[i].RegularHours)
		assert.Equal(t, "0.00", week.Days[i].OvertimeHours)
	}
	assert.Equal(t, "", week.Days[3].Note)
	assert.Equal(t, "24.00", week.TotalHours)

	rec = do(t, router, http.MethodGet, "/api/timeoff/requests?status=pending", nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listing))
	assert.Empty(t, listing.Requests)

	rec = do(t, router, http.MethodGet, "/api/employees/alice/timeoff", nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listing))
	require.Len(t, listing.Requests, 1)
	assert.Equal(t, "approved", listing.Requests[0].Status)
}

func TestTimeOff_RejectWritesNothing(t *testing.T) {
	router := newRouter(t)
	saveEmployee(t, router, "alice", "Alice", "day")
	created := createTimeOff(t, router, "alice", "2026-02-02", "2026-02-02", timesheet.NoteSickLeave)

	rec := do(t, router, http.MethodPost, "/api/timeoff/requests/"+created.ID+"/reject", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "rejected", decode[api.DecisionDTO](t, rec).Status)

	rec = do(t, router, http.MethodPost, "/api/timeoff/requests/"+created.ID+"/approve", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/timeoff/report?from=2026-02-01&to=2026-02-28", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[api.ReportDTO](t, rec).Entries)
}

func TestTimeOff_Errors(t *testing.T) {
	router := newRouter(t)
	saveEmployee(t, router, "alice", "Alice", "day")

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
	}{
		{"worked is not time off", http.MethodPost, "/api/employees/alice/timeoff",
			api.CreateTimeOffRequest{FromDate: "2026-02-02", ToDate: "2026-02-02", Category: "Vacation"}, http.StatusBadRequest},
		{"range ends before start", http.MethodPost, "/api/employees/alice/timeoff",
			api.CreateTimeOffRequest{FromDate: "2026-02-04", ToDate: "2026-02-02", Category: "PTO"}, http.StatusBadRequest},
		{"bad from date", http.MethodPost, "/api/employees/alice/timeoff",
			api.CreateTimeOffRequest{FromDate: "02/02/2026", ToDate: "2026-02-02", Category: "PTO"}, http.StatusBadRequest},
		{"unknown employee", http.MethodPost, "/api/employees/nobody/timeoff",
			api.CreateTimeOffRequest{FromDate: "2026-02-02", ToDate: "2026-02-02", Category: "PTO"}, http.StatusNotFound},
		{"unknown request", http.MethodPost, "/api/timeoff/requests/missing/approve", nil, http.StatusNotFound},
		{"bad status filter", http.MethodGet, "/api/timeoff/requests?status=lost", nil, http.StatusBadRequest},
		{"report without range", http.MethodGet, "/api/timeoff/report", nil, http.StatusBadRequest},
		{"report range backwards", http.MethodGet, "/api/timeoff/report?from=2026-03-01&to=2026-02-01", nil, http.StatusBadRequest},
		{"calendar bad month", http.MethodGet, "/api/timeoff/calendar?year=2026&month=13", nil, http.StatusBadRequest},
		{"calendar missing year", http.MethodGet, "/api/timeoff/calendar?month=2", nil, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, router, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}
}

func TestTimeOff_ReportAndCalendar(t *testing.T) {
	router := newRouter(t)
	saveEmployee(t, router, "alice", "Alice", "day")
	saveEmployee(t, router, "bob", "Bob", "day")
	saveEmployee(t, router, "gus", "Gus", "graveyard")

	for _, r := range []api.RequestDTO{
		createTimeOff(t, router, "alice", "2026-02-02", "2026-02-04", timesheet.NotePTO),
		createTimeOff(t, router, "bob", "2026-02-03", "2026-02-03", timesheet.NoteSickLeave),
		createTimeOff(t, router, "gus", "2026-02-04", "2026-02-04", timesheet.NotePTO),
	} {
		rec := do(t, router, http.MethodPost, "/api/timeoff/requests/"+r.ID+"/approve", nil)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	// WHEN: Reporting February
	rec := do(t, router, http.MethodGet, "/api/timeoff/report?from=2026-02-01&to=2026-02-28", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	report := decode[api.ReportDTO](t, rec)

	// THEN: Alice leads with three days
	assert.Len(t, report.Entries, 5)
	require.Len(t, report.Rows, 3)
	assert.Equal(t, "Alice", report.Rows[0].EmployeeName)
	assert.Equal(t, 3, report.Rows[0].Days)
	assert.Equal(t, "24.00", report.Rows[0].Hours)
	assert.Equal(t, "Bob", report.Rows[1].EmployeeName)
	assert.Equal(t, 1, report.Rows[1].SickDays)

	rec = do(t, router, http.MethodGet, "/api/timeoff/report?from=2026-02-01&to=2026-02-28&category=Sick%20leave", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[api.ReportDTO](t, rec).Entries, 1)

	// WHEN: Reading the calendar
	rec = do(t, router, http.MethodGet, "/api/timeoff/calendar?year=2026&month=2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	cal := decode[api.CalendarDTO](t, rec)

	// THEN: Only the day two day-shift people are off is a conflict
	assert.Len(t, cal.Days, 28)
	assert.Equal(t, []string{"2026-02-03"}, cal.Conflicts)
	assert.Len(t, cal.Days[3].Off, 2, "alice and gus on the 4th, different shifts")
	assert.False(t, cal.Days[3].Conflict)
}

func TestTimeOff_AdminsLeftOutOfReportAndCalendar(t *testing.T) {
	// GIVEN: Alice and an administrator on the day shift, both off on 2026-02-03
	// WHEN: Reading the report and calendar
	// THEN: The administrator is not counted, so there is no conflict

	router := newRouter(t)
	saveEmployee(t, router, "alice", "Alice", "day")
	rec := do(t, router, http.MethodPost, "/api/employees",
		api.SaveEmployeeRequest{ID: "boss", Name: "Boss", Shift: "day", IsAdmin: true})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	for _, r := range []api.RequestDTO{
		createTimeOff(t, router, "alice", "2026-02-03", "2026-02-03", timesheet.NotePTO),
		createTimeOff(t, router, "boss", "2026-02-03", "2026-02-03", timesheet.NotePTO),
	} {
		rec := do(t, router, http.MethodPost, "/api/timeoff/requests/"+r.ID+"/approve", nil)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec = do(t, router, http.MethodGet, "/api/timeoff/calendar?year=2026&month=2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	cal := decode[api.CalendarDTO](t, rec)
	assert.Empty(t, cal.Conflicts)
	assert.Len(t, cal.Days[2].Off, 1)
	assert.False(t, cal.Days[2].Conflict)

	rec = do(t, router, http.MethodGet, "/api/timeoff/report?from=2026-02-01&to=2026-02-28", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	report := decode[api.ReportDTO](t, rec)
	require.Len(t, report.Rows, 1)
	assert.Equal(t, "Alice", report.Rows[0].EmployeeName)

	// Opting in brings the administrator back.
	rec = do(t, router, http.MethodGet, "/api/timeoff/report?from=2026-02-01&to=2026-02-28&exclude_admins=false", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[api.ReportDTO](t, rec).Rows, 2)
}

// =============================================================================
// EXPORTS AND METRICS
// =============================================================================

func TestExportWeek(t *testing.T) {
	router := newRouter(t)
	saveEmployee(t, router, "alice", "Alice", "day")
	submit(t, router, "alice", "2026-02-02", api.SubmitEntryRequest{ClockIn: "08:00", ClockOut: "18:00"})

	rec := do(t, router, http.MethodGet, "/api/export/weeks/2026-02-04?shift=day", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Type"), "spreadsheetml")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "hours-2026-02-02.xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(export.HoursSheet)
	require.NoError(t, err)
	require.Len(t, rows, 9)
	assert.Equal(t, "Alice", rows[1][1])
	assert.Equal(t, "8", rows[1][9])
	assert.Equal(t, "2", rows[1][10])
}

func TestExportTimeOff(t *testing.T) {
	router := newRouter(t)
	saveEmployee(t, router, "alice", "Alice", "day")
	created := createTimeOff(t, router, "alice", "2026-02-02", "2026-02-03", timesheet.NotePTO)
	rec := do(t, router, http.MethodPost, "/api/timeoff/requests/"+created.ID+"/approve", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/export/timeoff?from=2026-02-01&to=2026-02-28", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	summary, err := f.GetRows(export.SummarySheet)
	require.NoError(t, err)
	require.Len(t, summary, 2)
	assert.Equal(t, []string{"Alice", "2", "16", "0"}, summary[1])
}

func TestMetricsEndpoint(t *testing.T) {
	router := newRouter(t)
	saveEmployee(t, router, "alice", "Alice", "day")
	submit(t, router, "alice", "2026-02-02", api.SubmitEntryRequest{ClockIn: "08:00", ClockOut: "16:00"})
	created := createTimeOff(t, router, "alice", "2026-02-03", "2026-02-03", timesheet.NotePTO)
	do(t, router, http.MethodPost, "/api/timeoff/requests/"+created.ID+"/approve", nil)
	do(t, router, http.MethodPost, "/api/timeoff/requests/"+created.ID+"/approve", nil)

	rec := do(t, router, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `timesheet_entries_upserted_total{source="clock"} 1`)
	assert.Contains(t, body, `timesheet_timeoff_requests_created_total{category="PTO"} 1`)
	assert.Contains(t, body, `timesheet_timeoff_decisions_total{decision="approve",result="applied"} 1`)
	assert.Contains(t, body, `timesheet_timeoff_decisions_total{decision="approve",result="conflict"} 1`)
	assert.Contains(t, body, `route="/api/employees/{id}/entries/{date}"`)
}
