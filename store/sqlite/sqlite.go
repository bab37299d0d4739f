/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Implements every persistence interface the engine and the request workflow
  need, on one SQLite database.

INTERFACES IMPLEMENTED:
  timesheet.EntryStore:    Time-entry ledger (upsert + range reads)
  timesheet.EmployeeStore: Employee directory with cascading delete
  timeoff.TxStore:         Time-off requests and transactional decisions

UPSERT ENFORCEMENT:
  time_entries carries UNIQUE(employee_id, work_date). Every write is a single
  INSERT ... ON CONFLICT DO UPDATE, so replaying a write never duplicates a row
  and CreatedAt survives rewrites.

ONE-SHOT DECISIONS:
  TransitionRequest is an UPDATE guarded by the current status. Inside WithTx it
  is the compare-and-swap that lets exactly one decision win.

KEY TABLES:
  employees:        Employee records (shift, employment type, admin flag)
  time_entries:     One row per employee per day
  timeoff_requests: Requests with their hours-per-day snapshot

CONCURRENCY:
  Uses sync.RWMutex for thread-safety, and a single connection so that
  ":memory:" databases are shared by every caller. WithTx holds the write lock
  for the whole transaction; code running inside it must only use the Tx.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/timesheet.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  agg := timesheet.NewAggregator(store, store, rules)
  svc := timeoff.NewService(store, store, rules)

MIGRATION:
  Schema is auto-migrated on New().

SEE ALSO:
  - timesheet/store.go: Ledger and directory interfaces
  - timeoff/types.go: Request store and transaction interfaces
  - store/memory/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/timesheet-engine/timeoff"
	"github.com/warp/timesheet-engine/timesheet"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	store := newWithDB(db)
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

func newWithDB(db *sql.DB) *Store {
	return &Store{db: db}
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		employment_type TEXT NOT NULL DEFAULT 'full_time',
		shift TEXT NOT NULL DEFAULT '',
		is_admin INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_employees_shift
		ON employees(shift);

	-- One row per employee per day; writes are upserts
	CREATE TABLE IF NOT EXISTS time_entries (
		employee_id TEXT NOT NULL REFERENCES employees(id) ON DELETE CASCADE,
		work_date TEXT NOT NULL,
		clock_in TEXT,
		clock_out TEXT,
		lunch_start TEXT,
		lunch_end TEXT,
		notes TEXT NOT NULL DEFAULT '',
		regular_hours TEXT NOT NULL DEFAULT '0',
		overtime_hours TEXT NOT NULL DEFAULT '0',
		graveyard INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		UNIQUE(employee_id, work_date)
	);

	-- Time-off reporting scans by date and category
	CREATE INDEX IF NOT EXISTS idx_time_entries_date_notes
		ON time_entries(work_date, notes);

	CREATE TABLE IF NOT EXISTS timeoff_requests (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL REFERENCES employees(id) ON DELETE CASCADE,
		from_date TEXT NOT NULL,
		to_date TEXT NOT NULL,
		notes TEXT NOT NULL,
		hours_per_day TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending'
			CHECK (status IN ('pending', 'approved', 'rejected')),
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_timeoff_requests_status
		ON timeoff_requests(status, created_at);
	CREATE INDEX IF NOT EXISTS idx_timeoff_requests_employee
		ON timeoff_requests(employee_id, created_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// EMPLOYEE STORE (timesheet.EmployeeStore interface)
// =============================================================================

const employeeColumns = `id, name, employment_type, shift, is_admin, created_at, updated_at`

// SaveEmployee inserts or updates an employee.
func (s *Store) SaveEmployee(ctx context.Context, emp timesheet.Employee) error {
	if emp.ID == "" {
		return errors.New("employee id is required")
	}
	if emp.Employment == "" {
		emp.Employment = timesheet.FullTime
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC().Format(time.RFC3339)
	query := `
		INSERT INTO employees (id, name, employment_type, shift, is_admin, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			employment_type = excluded.employment_type,
			shift = excluded.shift,
			is_admin = excluded.is_admin,
			updated_at = excluded.updated_at
	`

	_, err := s.db.ExecContext(ctx, query,
		emp.ID, emp.Name, string(emp.Employment), string(emp.Shift), emp.IsAdmin, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to save employee %s: %w", emp.ID, err)
	}
	return nil
}

// GetEmployee retrieves an employee by ID.
func (s *Store) GetEmployee(ctx context.Context, id timesheet.EmployeeID) (*timesheet.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, "SELECT "+employeeColumns+" FROM employees WHERE id = ?", id)
	emp, err := scanEmployee(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, timesheet.ErrEmployeeNotFound
	}
	if err != nil {
		return nil, err
	}
	return &emp, nil
}

// ListEmployees returns all employees ordered by name.
func (s *Store) ListEmployees(ctx context.Context) ([]timesheet.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryEmployees(ctx, "SELECT "+employeeColumns+" FROM employees ORDER BY UPPER(name), id")
}

// ListEmployeesByShift returns the employees on one shift, admins included.
func (s *Store) ListEmployeesByShift(ctx context.Context, shift timesheet.Shift) ([]timesheet.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryEmployees(ctx,
		"SELECT "+employeeColumns+" FROM employees WHERE shift = ? ORDER BY UPPER(name), id",
		string(shift),
	)
}

// DeleteEmployee removes an employee; entries and requests cascade.
func (s *Store) DeleteEmployee(ctx context.Context, id timesheet.EmployeeID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM employees WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete employee %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return timesheet.ErrEmployeeNotFound
	}
	return nil
}

func (s *Store) queryEmployees(ctx context.Context, query string, args ...any) ([]timesheet.Employee, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []timesheet.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, emp)
	}
	return employees, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEmployee(row scanner) (timesheet.Employee, error) {
	var emp timesheet.Employee
	var id, employment, shift, createdAt, updatedAt string
	if err := row.Scan(&id, &emp.Name, &employment, &shift, &emp.IsAdmin, &createdAt, &updatedAt); err != nil {
		return timesheet.Employee{}, err
	}
	emp.ID = timesheet.EmployeeID(id)
	emp.Employment = timesheet.ParseEmploymentType(employment)
	emp.Shift = timesheet.ParseShift(shift)
	emp.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	emp.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return emp, nil
}

// =============================================================================
// ENTRY STORE (timesheet.EntryStore interface)
// =============================================================================

const entryColumns = `t.employee_id, t.work_date, t.clock_in, t.clock_out, t.lunch_start, t.lunch_end,
	t.notes, t.regular_hours, t.overtime_hours, t.graveyard, t.created_at, t.updated_at`

// Upsert writes the entry for (employee, day), replacing any existing row.
func (s *Store) Upsert(ctx context.Context, entry timesheet.TimeEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return upsertEntry(ctx, s.db, entry)
}

func upsertEntry(ctx context.Context, q querier, entry timesheet.TimeEntry) error {
	if err := entry.Validate(); err != nil {
		return err
	}
	entry = entry.Normalized()

	now := entry.UpdatedAt
	if now.IsZero() {
		now = time.Now()
	}
	stamp := now.UTC().Format(time.RFC3339)

	query := `
		INSERT INTO time_entries (employee_id, work_date, clock_in, clock_out, lunch_start, lunch_end,
			notes, regular_hours, overtime_hours, graveyard, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(employee_id, work_date) DO UPDATE SET
			clock_in = excluded.clock_in,
			clock_out = excluded.clock_out,
			lunch_start = excluded.lunch_start,
			lunch_end = excluded.lunch_end,
			notes = excluded.notes,
			regular_hours = excluded.regular_hours,
			overtime_hours = excluded.overtime_hours,
			graveyard = excluded.graveyard,
			updated_at = excluded.updated_at
	`

	_, err := q.ExecContext(ctx, query,
		entry.EmployeeID,
		entry.WorkDate.String(),
		nullString(timesheet.FormatOptional(entry.ClockIn)),
		nullString(timesheet.FormatOptional(entry.ClockOut)),
		nullString(timesheet.FormatOptional(entry.LunchStart)),
		nullString(timesheet.FormatOptional(entry.LunchEnd)),
		entry.Category.Note(),
		entry.RegularHours.String(),
		entry.OvertimeHours.String(),
		entry.Graveyard,
		stamp,
		stamp,
	)
	if err != nil {
		if isForeignKeyError(err) {
			return timesheet.ErrEmployeeNotFound
		}
		return fmt.Errorf("failed to upsert entry %s/%s: %w", entry.EmployeeID, entry.WorkDate, err)
	}
	return nil
}

// EntriesForWeek returns the stored entries for the week containing weekStart.
func (s *Store) EntriesForWeek(ctx context.Context, employeeID timesheet.EmployeeID, weekStart timesheet.Date) ([]timesheet.TimeEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	start := weekStart.WeekStart()
	query := `
		SELECT ` + entryColumns + `
		FROM time_entries t
		WHERE t.employee_id = ? AND t.work_date >= ? AND t.work_date <= ?
		ORDER BY t.work_date
	`

	rows, err := s.db.QueryContext(ctx, query, employeeID, start.String(), start.AddDays(6).String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []timesheet.TimeEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// EntriesInRange returns time-off rows joined with the employee.
func (s *Store) EntriesInRange(ctx context.Context, filter timesheet.TimeOffFilter) ([]timesheet.TimeOffEntry, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	notes := filter.Notes()
	args := []any{filter.From.String(), filter.To.String()}
	for _, n := range notes {
		args = append(args, n)
	}

	query := `
		SELECT ` + entryColumns + `, e.name, e.shift
		FROM time_entries t
		JOIN employees e ON e.id = t.employee_id
		WHERE t.work_date >= ? AND t.work_date <= ?
		  AND t.notes IN (` + placeholders(len(notes)) + `)`
	if filter.ExcludeAdmins {
		query += ` AND e.is_admin = 0`
	}
	query += ` ORDER BY e.name, t.work_date, t.employee_id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []timesheet.TimeOffEntry
	for rows.Next() {
		var name, shift string
		e, err := scanEntry(rows, &name, &shift)
		if err != nil {
			return nil, err
		}
		out = append(out, timesheet.TimeOffEntry{
			TimeEntry:    e,
			EmployeeName: name,
			Shift:        timesheet.ParseShift(shift),
		})
	}
	return out, rows.Err()
}

// scanEntry reads entryColumns followed by any extra columns.
func scanEntry(row scanner, extra ...any) (timesheet.TimeEntry, error) {
	var e timesheet.TimeEntry
	var employeeID, workDate, notes, regular, overtime, createdAt, updatedAt string
	var clockIn, clockOut, lunchStart, lunchEnd sql.NullString

	dest := []any{
		&employeeID, &workDate, &clockIn, &clockOut, &lunchStart, &lunchEnd,
		&notes, &regular, &overtime, &e.Graveyard, &createdAt, &updatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return timesheet.TimeEntry{}, err
	}

	var err error
	e.EmployeeID = timesheet.EmployeeID(employeeID)
	if e.WorkDate, err = timesheet.ParseDate(workDate); err != nil {
		return timesheet.TimeEntry{}, fmt.Errorf("corrupt work_date: %w", err)
	}
	for _, f := range []struct {
		dst **timesheet.TimeOfDay
		src sql.NullString
	}{
		{&e.ClockIn, clockIn}, {&e.ClockOut, clockOut}, {&e.LunchStart, lunchStart}, {&e.LunchEnd, lunchEnd},
	} {
		if *f.dst, err = timesheet.ParseOptionalTime(f.src.String); err != nil {
			return timesheet.TimeEntry{}, fmt.Errorf("corrupt clock reading: %w", err)
		}
	}
	e.Category = timesheet.ParseCategory(notes)
	if e.RegularHours, err = decimal.NewFromString(regular); err != nil {
		return timesheet.TimeEntry{}, fmt.Errorf("corrupt regular_hours: %w", err)
	}
	if e.OvertimeHours, err = decimal.NewFromString(overtime); err != nil {
		return timesheet.TimeEntry{}, fmt.Errorf("corrupt overtime_hours: %w", err)
	}
	e.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	e.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return e, nil
}

// =============================================================================
// REQUEST STORE (timeoff.RequestStore interface)
// =============================================================================

const requestColumns = `r.id, r.employee_id, COALESCE(e.name, ''), r.from_date, r.to_date, r.notes,
	r.hours_per_day, r.status, r.created_at, r.updated_at`

// CreateRequest stores a new request.
func (s *Store) CreateRequest(ctx context.Context, req timeoff.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO timeoff_requests (id, employee_id, from_date, to_date, notes, hours_per_day,
			status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		req.ID, req.EmployeeID, req.FromDate.String(), req.ToDate.String(),
		req.Category.Note(), req.HoursPerDay.String(), string(req.Status),
		req.CreatedAt.UTC().Format(time.RFC3339), req.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isForeignKeyError(err) {
			return timesheet.ErrEmployeeNotFound
		}
		return err
	}
	return nil
}

// GetRequest retrieves a request by ID.
func (s *Store) GetRequest(ctx context.Context, id timeoff.RequestID) (*timeoff.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return getRequest(ctx, s.db, id)
}

func getRequest(ctx context.Context, q querier, id timeoff.RequestID) (*timeoff.Request, error) {
	query := `
		SELECT ` + requestColumns + `
		FROM timeoff_requests r
		LEFT JOIN employees e ON e.id = r.employee_id
		WHERE r.id = ?
	`

	req, err := scanRequest(q.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, timeoff.ErrRequestNotFound
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// ListRequests returns requests matching the filter.
func (s *Store) ListRequests(ctx context.Context, filter timeoff.RequestFilter) ([]timeoff.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var where []string
	var args []any
	if filter.EmployeeID != "" {
		where = append(where, "r.employee_id = ?")
		args = append(args, filter.EmployeeID)
	}
	if filter.Status != "" {
		where = append(where, "r.status = ?")
		args = append(args, string(filter.Status))
	}

	query := `SELECT ` + requestColumns + ` FROM timeoff_requests r LEFT JOIN employees e ON e.id = r.employee_id`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	if filter.OldestFirst {
		query += " ORDER BY r.created_at ASC, r.rowid ASC"
	} else {
		query += " ORDER BY r.created_at DESC, r.rowid DESC"
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []timeoff.Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

func scanRequest(row scanner) (timeoff.Request, error) {
	var r timeoff.Request
	var id, employeeID, from, to, notes, hoursPerDay, status, createdAt, updatedAt string
	if err := row.Scan(&id, &employeeID, &r.EmployeeName, &from, &to, &notes,
		&hoursPerDay, &status, &createdAt, &updatedAt); err != nil {
		return timeoff.Request{}, err
	}

	var err error
	r.ID = timeoff.RequestID(id)
	r.EmployeeID = timesheet.EmployeeID(employeeID)
	if r.FromDate, err = timesheet.ParseDate(from); err != nil {
		return timeoff.Request{}, fmt.Errorf("corrupt from_date: %w", err)
	}
	if r.ToDate, err = timesheet.ParseDate(to); err != nil {
		return timeoff.Request{}, fmt.Errorf("corrupt to_date: %w", err)
	}
	r.Category = timesheet.ParseCategory(notes)
	if r.HoursPerDay, err = decimal.NewFromString(hoursPerDay); err != nil {
		return timeoff.Request{}, fmt.Errorf("corrupt hours_per_day: %w", err)
	}
	r.Status = timeoff.Status(status)
	r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	r.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return r, nil
}

func transitionRequest(ctx context.Context, q querier, id timeoff.RequestID, from, to timeoff.Status, at time.Time) (bool, error) {
	res, err := q.ExecContext(ctx,
		"UPDATE timeoff_requests SET status = ?, updated_at = ? WHERE id = ? AND status = ?",
		string(to), at.UTC().Format(time.RFC3339), id, string(from),
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// =============================================================================
// TRANSACTION SUPPORT
// =============================================================================

// WithTx executes a function within a database transaction.
func (s *Store) WithTx(ctx context.Context, fn func(tx timeoff.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&txStore{tx: sqlTx}); err != nil {
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// txStore wraps a sql.Tx to implement timeoff.Tx.
type txStore struct {
	tx *sql.Tx
}

func (ts *txStore) Upsert(ctx context.Context, entry timesheet.TimeEntry) error {
	return upsertEntry(ctx, ts.tx, entry)
}

func (ts *txStore) GetRequest(ctx context.Context, id timeoff.RequestID) (*timeoff.Request, error) {
	return getRequest(ctx, ts.tx, id)
}

func (ts *txStore) TransitionRequest(ctx context.Context, id timeoff.RequestID, from, to timeoff.Status, at time.Time) (bool, error) {
	return transitionRequest(ctx, ts.tx, id, from, to, at)
}

var (
	_ timesheet.EntryStore    = (*Store)(nil)
	_ timesheet.EmployeeStore = (*Store)(nil)
	_ timeoff.TxStore         = (*Store)(nil)
)

// Helper functions

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func isForeignKeyError(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey
	}
	return false
}
