// Package memory provides an in-memory store for tests and development.
package memory

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/warp/timesheet-engine/timeoff"
	"github.com/warp/timesheet-engine/timesheet"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu        sync.RWMutex
	employees map[timesheet.EmployeeID]timesheet.Employee
	entries   map[entryKey]timesheet.TimeEntry
	requests  map[timeoff.RequestID]storedRequest
	seq       int64
}

type entryKey struct {
	EmployeeID timesheet.EmployeeID
	WorkDate   string
}

// storedRequest keeps insertion order for requests created in the same instant.
type storedRequest struct {
	timeoff.Request
	seq int64
}

func keyOf(id timesheet.EmployeeID, day timesheet.Date) entryKey {
	return entryKey{EmployeeID: id, WorkDate: day.String()}
}

func New() *Memory {
	return &Memory{
		employees: make(map[timesheet.EmployeeID]timesheet.Employee),
		entries:   make(map[entryKey]timesheet.TimeEntry),
		requests:  make(map[timeoff.RequestID]storedRequest),
	}
}

// =============================================================================
// EMPLOYEES
// =============================================================================

func (m *Memory) SaveEmployee(_ context.Context, emp timesheet.Employee) error {
	if emp.ID == "" {
		return fmt.Errorf("employee id is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()
	if existing, ok := m.employees[emp.ID]; ok {
		emp.CreatedAt = existing.CreatedAt
	} else if emp.CreatedAt.IsZero() {
		emp.CreatedAt = now
	}
	emp.UpdatedAt = now
	if emp.Employment == "" {
		emp.Employment = timesheet.FullTime
	}
	m.employees[emp.ID] = emp
	return nil
}

func (m *Memory) GetEmployee(_ context.Context, id timesheet.EmployeeID) (*timesheet.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	emp, ok := m.employees[id]
	if !ok {
		return nil, timesheet.ErrEmployeeNotFound
	}
	return &emp, nil
}

func (m *Memory) ListEmployees(_ context.Context) ([]timesheet.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.filterEmployeesLocked(func(timesheet.Employee) bool { return true }), nil
}

func (m *Memory) ListEmployeesByShift(_ context.Context, shift timesheet.Shift) ([]timesheet.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.filterEmployeesLocked(func(e timesheet.Employee) bool { return e.Shift == shift }), nil
}

func (m *Memory) filterEmployeesLocked(keep func(timesheet.Employee) bool) []timesheet.Employee {
	var out []timesheet.Employee
	for _, e := range m.employees {
		if keep(e) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := strings.ToUpper(out[i].Name), strings.ToUpper(out[j].Name)
		if a != b {
			return a < b
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// DeleteEmployee removes the employee with their entries and requests.
func (m *Memory) DeleteEmployee(_ context.Context, id timesheet.EmployeeID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.employees[id]; !ok {
		return timesheet.ErrEmployeeNotFound
	}
	delete(m.employees, id)
	maps.DeleteFunc(m.entries, func(k entryKey, _ timesheet.TimeEntry) bool { return k.EmployeeID == id })
	maps.DeleteFunc(m.requests, func(_ timeoff.RequestID, r storedRequest) bool { return r.EmployeeID == id })
	return nil
}

// =============================================================================
// ENTRIES
// =============================================================================

func (m *Memory) Upsert(_ context.Context, entry timesheet.TimeEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.upsertLocked(entry)
}

func (m *Memory) upsertLocked(entry timesheet.TimeEntry) error {
	if err := entry.Validate(); err != nil {
		return err
	}
	if _, ok := m.employees[entry.EmployeeID]; !ok {
		return timesheet.ErrEmployeeNotFound
	}

	entry = cloneEntry(entry.Normalized())
	now := time.Now().UTC()
	if entry.UpdatedAt.IsZero() {
		entry.UpdatedAt = now
	}
	k := keyOf(entry.EmployeeID, entry.WorkDate)
	if existing, ok := m.entries[k]; ok {
		entry.CreatedAt = existing.CreatedAt
	} else if entry.CreatedAt.IsZero() {
		entry.CreatedAt = entry.UpdatedAt
	}
	m.entries[k] = entry
	return nil
}

func (m *Memory) EntriesForWeek(_ context.Context, employeeID timesheet.EmployeeID, weekStart timesheet.Date) ([]timesheet.TimeEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	start := weekStart.WeekStart()
	var out []timesheet.TimeEntry
	for i := 0; i < 7; i++ {
		if e, ok := m.entries[keyOf(employeeID, start.AddDays(i))]; ok {
			out = append(out, cloneEntry(e))
		}
	}
	return out, nil
}

func (m *Memory) EntriesInRange(_ context.Context, filter timesheet.TimeOffFilter) ([]timesheet.TimeOffEntry, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	notes := filter.Notes()

	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []timesheet.TimeOffEntry
	for _, e := range m.entries {
		if e.WorkDate.Before(filter.From) || e.WorkDate.After(filter.To) {
			continue
		}
		if !slices.Contains(notes, e.Category.Note()) {
			continue
		}
		emp := m.employees[e.EmployeeID]
		if filter.ExcludeAdmins && emp.IsAdmin {
			continue
		}
		out = append(out, timesheet.TimeOffEntry{
			TimeEntry:    cloneEntry(e),
			EmployeeName: emp.Name,
			Shift:        emp.Shift,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].EmployeeName != out[j].EmployeeName {
			return out[i].EmployeeName < out[j].EmployeeName
		}
		if !out[i].WorkDate.Equal(out[j].WorkDate) {
			return out[i].WorkDate.Before(out[j].WorkDate)
		}
		return out[i].EmployeeID < out[j].EmployeeID
	})
	return out, nil
}

// cloneEntry copies the clock pointers so callers cannot mutate stored rows.
func cloneEntry(e timesheet.TimeEntry) timesheet.TimeEntry {
	e.ClockIn = cloneTime(e.ClockIn)
	e.ClockOut = cloneTime(e.ClockOut)
	e.LunchStart = cloneTime(e.LunchStart)
	e.LunchEnd = cloneTime(e.LunchEnd)
	return e
}

func cloneTime(t *timesheet.TimeOfDay) *timesheet.TimeOfDay {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

// =============================================================================
// REQUESTS
// =============================================================================

func (m *Memory) CreateRequest(_ context.Context, req timeoff.Request) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.employees[req.EmployeeID]; !ok {
		return timesheet.ErrEmployeeNotFound
	}
	if _, ok := m.requests[req.ID]; ok {
		return fmt.Errorf("request %s already exists", req.ID)
	}
	m.seq++
	m.requests[req.ID] = storedRequest{Request: req, seq: m.seq}
	return nil
}

func (m *Memory) GetRequest(_ context.Context, id timeoff.RequestID) (*timeoff.Request, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getRequestLocked(id)
}

func (m *Memory) getRequestLocked(id timeoff.RequestID) (*timeoff.Request, error) {
	r, ok := m.requests[id]
	if !ok {
		return nil, timeoff.ErrRequestNotFound
	}
	req := r.Request
	req.EmployeeName = m.employees[req.EmployeeID].Name
	return &req, nil
}

func (m *Memory) ListRequests(_ context.Context, filter timeoff.RequestFilter) ([]timeoff.Request, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matched []storedRequest
	for _, r := range m.requests {
		if filter.EmployeeID != "" && r.EmployeeID != filter.EmployeeID {
			continue
		}
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		matched = append(matched, r)
	}
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		older := a.CreatedAt.Before(b.CreatedAt) || (a.CreatedAt.Equal(b.CreatedAt) && a.seq < b.seq)
		if filter.OldestFirst {
			return older
		}
		return !older
	})

	out := make([]timeoff.Request, len(matched))
	for i, r := range matched {
		out[i] = r.Request
		out[i].EmployeeName = m.employees[r.EmployeeID].Name
	}
	return out, nil
}

func (m *Memory) transitionLocked(id timeoff.RequestID, from, to timeoff.Status, at time.Time) bool {
	r, ok := m.requests[id]
	if !ok || r.Status != from {
		return false
	}
	r.Status = to
	r.UpdatedAt = at
	m.requests[id] = r
	return true
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

// WithTx executes fn within a transaction.
// For the memory store, this is simulated with a snapshot + rollback on error.
// The write lock is held for the whole of fn, so transactions serialize.
func (m *Memory) WithTx(_ context.Context, fn func(timeoff.Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := m.snapshot()
	if err := fn(&txView{parent: m}); err != nil {
		m.restore(snap)
		return err
	}
	return nil
}

type memorySnapshot struct {
	entries  map[entryKey]timesheet.TimeEntry
	requests map[timeoff.RequestID]storedRequest
}

func (m *Memory) snapshot() memorySnapshot {
	return memorySnapshot{
		entries:  maps.Clone(m.entries),
		requests: maps.Clone(m.requests),
	}
}

func (m *Memory) restore(s memorySnapshot) {
	m.entries = s.entries
	m.requests = s.requests
}

// txView works on the parent's maps; the parent's lock is already held.
type txView struct {
	parent *Memory
}

func (tv *txView) Upsert(_ context.Context, entry timesheet.TimeEntry) error {
	return tv.parent.upsertLocked(entry)
}

func (tv *txView) GetRequest(_ context.Context, id timeoff.RequestID) (*timeoff.Request, error) {
	return tv.parent.getRequestLocked(id)
}

func (tv *txView) TransitionRequest(_ context.Context, id timeoff.RequestID, from, to timeoff.Status, at time.Time) (bool, error) {
	return tv.parent.transitionLocked(id, from, to, at), nil
}

var (
	_ timesheet.EntryStore    = (*Memory)(nil)
	_ timesheet.EmployeeStore = (*Memory)(nil)
	_ timeoff.TxStore         = (*Memory)(nil)
)
