package timeoff_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/timesheet-engine/store/memory"
	"github.com/warp/timesheet-engine/timeoff"
	"github.com/warp/timesheet-engine/timesheet"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

var d = timesheet.MustParseDate

type recordingNotifier struct {
	mu      sync.Mutex
	notices []timeoff.Notice
	err     error
}

func (n *recordingNotifier) RequestCreated(_ context.Context, notice timeoff.Notice) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, notice)
	return n.err
}

func newService(t *testing.T, store timeoff.TxStore, employees timesheet.EmployeeDirectory) *timeoff.Service {
	t.Helper()
	svc := timeoff.NewService(store, employees, timesheet.DefaultRules())

	var seq atomic.Int64
	base := time.Date(2026, time.January, 15, 9, 0, 0, 0, time.UTC)
	svc.Now = func() time.Time { return base.Add(time.Duration(seq.Load()) * time.Minute) }
	svc.NewID = func() timeoff.RequestID { return timeoff.RequestID(fmt.Sprintf("req-%d", seq.Add(1))) }
	return svc
}

func seed(t *testing.T) *memory.Memory {
	t.Helper()
	store := memory.New()
	ctx := context.Background()
	require.NoError(t, store.SaveEmployee(ctx, timesheet.Employee{ID: "alice", Name: "Alice", Shift: timesheet.ShiftDay}))
	require.NoError(t, store.SaveEmployee(ctx, timesheet.Employee{ID: "carl", Name: "Carl", Employment: timesheet.Contractor, Shift: timesheet.ShiftDay}))
	return store
}

func ledgerRows(t *testing.T, store timesheet.EntryStore, from, to string) []timesheet.TimeOffEntry {
	t.Helper()
	rows, err := store.EntriesInRange(context.Background(), timesheet.TimeOffFilter{From: d(from), To: d(to)})
	require.NoError(t, err)
	return rows
}

// =============================================================================
// CREATE
// =============================================================================

func TestCreate_SnapshotsHoursPerDay(t *testing.T) {
	tests := []struct {
		name       string
		category   timesheet.DayCategory
		contractor bool
		want       string
	}{
		{"pto full time", timesheet.PTO(), false, "8"},
		{"sick leave full time", timesheet.SickLeave(), false, "8"},
		{"non pay full time", timesheet.NonPay(), false, "0"},
		{"pto contractor", timesheet.PTO(), true, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			store := seed(t)
			svc := newService(t, store, store)

			id, err := svc.Create(ctx, "alice", d("2026-02-02"), d("2026-02-04"), tt.category, tt.contractor)
			require.NoError(t, err)

			req, err := svc.Get(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, timeoff.StatusPending, req.Status)
			assert.Equal(t, tt.want, req.HoursPerDay.String())
			assert.Equal(t, "Alice", req.EmployeeName)
			assert.Equal(t, tt.category, req.Category)
		})
	}
}

func TestCreate_RejectsBadInput(t *testing.T) {
	ctx := context.Background()
	store := seed(t)
	svc := newService(t, store, store)

	_, err := svc.Create(ctx, "alice", d("2026-02-05"), d("2026-02-04"), timesheet.PTO(), false)
	assert.ErrorIs(t, err, timesheet.ErrInvalidRange)

	_, err = svc.Create(ctx, "alice", d("2026-02-02"), d("2026-02-04"), timesheet.Worked(), false)
	assert.ErrorIs(t, err, timesheet.ErrInvalidCategory)

	_, err = svc.Create(ctx, "alice", d("2026-02-02"), d("2026-02-04"), timesheet.Remark("Vacation"), false)
	assert.ErrorIs(t, err, timesheet.ErrInvalidCategory)

	_, err = svc.Create(ctx, "alice", timesheet.Date{}, d("2026-02-04"), timesheet.PTO(), false)
	assert.ErrorIs(t, err, timesheet.ErrInvalidDate)

	_, err = svc.Create(ctx, "ghost", d("2026-02-02"), d("2026-02-04"), timesheet.PTO(), false)
	assert.ErrorIs(t, err, timesheet.ErrEmployeeNotFound)

	all, err := svc.All(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCreateForEmployee_DerivesContractor(t *testing.T) {
	ctx := context.Background()
	store := seed(t)
	svc := newService(t, store, store)

	id, err := svc.CreateForEmployee(ctx, "carl", d("2026-02-02"), d("2026-02-02"), timesheet.SickLeave())
	require.NoError(t, err)
	req, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.True(t, req.HoursPerDay.IsZero())

	_, err = svc.CreateForEmployee(ctx, "ghost", d("2026-02-02"), d("2026-02-02"), timesheet.PTO())
	assert.True(t, timeoff.IsNotFound(err))
}

func TestCreate_Notifies(t *testing.T) {
	ctx := context.Background()
	store := seed(t)
	svc := newService(t, store, store)
	notifier := &recordingNotifier{}
	svc.Notifier = notifier

	id, err := svc.Create(ctx, "alice", d("2026-02-02"), d("2026-02-03"), timesheet.PTO(), false)
	require.NoError(t, err)

	require.Len(t, notifier.notices, 1)
	n := notifier.notices[0]
	assert.Equal(t, id, n.RequestID)
	assert.Equal(t, "Alice", n.EmployeeName)
	assert.Equal(t, "2026-02-02", n.FromDate.String())
	assert.Equal(t, timesheet.PTO(), n.Category)
}

func TestCreate_NotificationFailureIsNotAnError(t *testing.T) {
	ctx := context.Background()
	store := seed(t)
	svc := newService(t, store, store)
	svc.Notifier = &recordingNotifier{err: errors.New("smtp down")}

	id, err := svc.Create(ctx, "alice", d("2026-02-02"), d("2026-02-03"), timesheet.PTO(), false)
	require.NoError(t, err)

	_, err = svc.Get(ctx, id)
	assert.NoError(t, err)
}

// =============================================================================
// DECIDE
// =============================================================================

func TestDecide_ApproveMaterializesEachDay(t *testing.T) {
	// GIVEN: Pending PTO 2026-02-02..04 at 8h/day
	// WHEN: Approved
	// THEN: Exactly three rows, each 8.00 regular, 0.00 overtime, PTO, no clocks

	ctx := context.Background()
	store := seed(t)
	svc := newService(t, store, store)

	id, err := svc.Create(ctx, "alice", d("2026-02-02"), d("2026-02-04"), timesheet.PTO(), false)
	require.NoError(t, err)

	ok, err := svc.Decide(ctx, id, timeoff.Approve)
	require.NoError(t, err)
	assert.True(t, ok)

	rows := ledgerRows(t, store, "2026-01-01", "2026-03-31")
	require.Len(t, rows, 3)
	for i, row := range rows {
		assert.Equal(t, d("2026-02-02").AddDays(i).String(), row.WorkDate.String())
		assert.Equal(t, "8.00", row.RegularHours.StringFixed(2))
		assert.Equal(t, "0.00", row.OvertimeHours.StringFixed(2))
		assert.Equal(t, timesheet.PTO(), row.Category)
		assert.Nil(t, row.ClockIn)
		assert.Nil(t, row.ClockOut)
	}

	req, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, timeoff.StatusApproved, req.Status)
}

func TestDecide_ApproveTwice(t *testing.T) {
	ctx := context.Background()
	store := seed(t)
	svc := newService(t, store, store)

	id, err := svc.Create(ctx, "alice", d("2026-02-02"), d("2026-02-04"), timesheet.PTO(), false)
	require.NoError(t, err)

	ok, err := svc.Decide(ctx, id, timeoff.Approve)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.Decide(ctx, id, timeoff.Approve)
	assert.False(t, ok)
	assert.ErrorIs(t, err, timeoff.ErrAlreadyProcessed)
	assert.True(t, timeoff.IsConflict(err))

	assert.Len(t, ledgerRows(t, store, "2026-02-01", "2026-02-28"), 3)
}

func TestDecide_RejectWritesNothing(t *testing.T) {
	ctx := context.Background()
	store := seed(t)
	svc := newService(t, store, store)

	id, err := svc.Create(ctx, "alice", d("2026-02-02"), d("2026-02-04"), timesheet.SickLeave(), false)
	require.NoError(t, err)

	ok, err := svc.Decide(ctx, id, timeoff.Reject)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, ledgerRows(t, store, "2026-02-01", "2026-02-28"))

	ok, err = svc.Decide(ctx, id, timeoff.Approve)
	assert.False(t, ok)
	assert.ErrorIs(t, err, timeoff.ErrAlreadyProcessed)
	assert.Empty(t, ledgerRows(t, store, "2026-02-01", "2026-02-28"))
}

func TestDecide_NonPayAndContractorRowsAreZero(t *testing.T) {
	ctx := context.Background()
	store := seed(t)
	svc := newService(t, store, store)

	nonPay, err := svc.Create(ctx, "alice", d("2026-02-02"), d("2026-02-02"), timesheet.NonPay(), false)
	require.NoError(t, err)
	contractor, err := svc.CreateForEmployee(ctx, "carl", d("2026-02-03"), d("2026-02-03"), timesheet.PTO())
	require.NoError(t, err)

	for _, id := range []timeoff.RequestID{nonPay, contractor} {
		ok, err := svc.Decide(ctx, id, timeoff.Approve)
		require.NoError(t, err)
		require.True(t, ok)
	}

	rows := ledgerRows(t, store, "2026-02-01", "2026-02-28")
	require.Len(t, rows, 2)
	for _, row := range rows {
		assert.True(t, row.RegularHours.IsZero(), row.EmployeeName)
		assert.True(t, row.OvertimeHours.IsZero(), row.EmployeeName)
	}
}

func TestDecide_OverwritesExistingDay(t *testing.T) {
	// GIVEN: A worked day already on the ledger inside the request range
	// WHEN: The request is approved
	// THEN: The day is replaced, not duplicated

	ctx := context.Background()
	store := seed(t)
	svc := newService(t, store, store)

	require.NoError(t, store.Upsert(ctx, timesheet.TimeEntry{
		EmployeeID: "alice",
		WorkDate:   d("2026-02-03"),
		ClockIn:    timesheet.At(9, 0),
		ClockOut:   timesheet.At(17, 0),
		Category:   timesheet.Worked(),
	}))

	id, err := svc.Create(ctx, "alice", d("2026-02-03"), d("2026-02-03"), timesheet.PTO(), false)
	require.NoError(t, err)
	_, err = svc.Decide(ctx, id, timeoff.Approve)
	require.NoError(t, err)

	week, err := store.EntriesForWeek(ctx, "alice", d("2026-02-02"))
	require.NoError(t, err)
	require.Len(t, week, 1)
	assert.Equal(t, timesheet.PTO(), week[0].Category)
	assert.Nil(t, week[0].ClockIn)
}

func TestDecide_UnknownRequest(t *testing.T) {
	store := seed(t)
	svc := newService(t, store, store)

	ok, err := svc.Decide(context.Background(), "nope", timeoff.Approve)
	assert.False(t, ok)
	assert.ErrorIs(t, err, timeoff.ErrRequestNotFound)
	assert.True(t, timeoff.IsNotFound(err))
}

func TestDecide_InvalidDecision(t *testing.T) {
	store := seed(t)
	svc := newService(t, store, store)

	_, err := svc.Decide(context.Background(), "req-1", timeoff.Decision("maybe"))
	assert.ErrorIs(t, err, timeoff.ErrInvalidDecision)
	assert.True(t, timeoff.IsClientError(err))
}

func TestDecide_ConcurrentApprovalsMaterializeOnce(t *testing.T) {
	// GIVEN: One pending request and 20 concurrent approvers
	// THEN: Exactly one wins; the rest see ErrAlreadyProcessed; no duplicate rows

	ctx := context.Background()
	store := seed(t)
	svc := newService(t, store, store)

	id, err := svc.Create(ctx, "alice", d("2026-02-02"), d("2026-02-06"), timesheet.PTO(), false)
	require.NoError(t, err)

	var wins, conflicts atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := svc.Decide(ctx, id, timeoff.Approve)
			if ok {
				wins.Add(1)
			}
			if errors.Is(err, timeoff.ErrAlreadyProcessed) {
				conflicts.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
	assert.Equal(t, int32(19), conflicts.Load())
	assert.Len(t, ledgerRows(t, store, "2026-02-01", "2026-02-28"), 5)
}

// failingStore fails the upsert for one day inside every transaction.
type failingStore struct {
	*memory.Memory
	failOn timesheet.Date
}

func (f *failingStore) WithTx(ctx context.Context, fn func(timeoff.Tx) error) error {
	return f.Memory.WithTx(ctx, func(tx timeoff.Tx) error {
		return fn(&failingTx{Tx: tx, failOn: f.failOn})
	})
}

type failingTx struct {
	timeoff.Tx
	failOn timesheet.Date
}

func (f *failingTx) Upsert(ctx context.Context, e timesheet.TimeEntry) error {
	if e.WorkDate.Equal(f.failOn) {
		return errors.New("disk full")
	}
	return f.Tx.Upsert(ctx, e)
}

func TestDecide_FailedMaterializationRollsBack(t *testing.T) {
	// GIVEN: A store that fails writing the third day
	// WHEN: Approving a three-day request
	// THEN: The error surfaces, no days are written and the request stays pending

	ctx := context.Background()
	mem := seed(t)
	store := &failingStore{Memory: mem, failOn: d("2026-02-04")}
	svc := newService(t, store, mem)

	id, err := svc.Create(ctx, "alice", d("2026-02-02"), d("2026-02-04"), timesheet.PTO(), false)
	require.NoError(t, err)

	ok, err := svc.Decide(ctx, id, timeoff.Approve)
	assert.False(t, ok)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")

	assert.Empty(t, ledgerRows(t, mem, "2026-02-01", "2026-02-28"))
	req, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, timeoff.StatusPending, req.Status)

	// A retry against a healthy store succeeds.
	healthy := newService(t, mem, mem)
	ok, err = healthy.Decide(ctx, id, timeoff.Approve)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Len(t, ledgerRows(t, mem, "2026-02-01", "2026-02-28"), 3)
}

// =============================================================================
// LISTINGS
// =============================================================================

func TestListings(t *testing.T) {
	ctx := context.Background()
	store := seed(t)
	svc := newService(t, store, store)

	first, err := svc.Create(ctx, "alice", d("2026-02-02"), d("2026-02-02"), timesheet.PTO(), false)
	require.NoError(t, err)
	second, err := svc.Create(ctx, "carl", d("2026-02-03"), d("2026-02-03"), timesheet.PTO(), true)
	require.NoError(t, err)
	third, err := svc.Create(ctx, "alice", d("2026-02-04"), d("2026-02-04"), timesheet.SickLeave(), false)
	require.NoError(t, err)

	_, err = svc.Decide(ctx, second, timeoff.Reject)
	require.NoError(t, err)

	pending, err := svc.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, first, pending[0].ID, "oldest first")
	assert.Equal(t, third, pending[1].ID)

	all, err := svc.All(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, third, all[0].ID, "newest first")

	rejected, err := svc.All(ctx, timeoff.StatusRejected)
	require.NoError(t, err)
	require.Len(t, rejected, 1)
	assert.Equal(t, "Carl", rejected[0].EmployeeName)

	mine, err := svc.ForEmployee(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, third, mine[0].ID)
}
