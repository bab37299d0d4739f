package timeoff

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/warp/timesheet-engine/timesheet"
)

// =============================================================================
// REQUEST SERVICE - Handles request lifecycle with transactional guarantees
// =============================================================================

type Service struct {
	Store     TxStore
	Employees timesheet.EmployeeDirectory // optional; needed by CreateForEmployee
	Rules     timesheet.Rules
	Notifier  Notifier // optional

	Now   func() time.Time
	NewID func() RequestID
}

func NewService(store TxStore, employees timesheet.EmployeeDirectory, rules timesheet.Rules) *Service {
	return &Service{
		Store:     store,
		Employees: employees,
		Rules:     rules,
		Now:       time.Now,
		NewID:     func() RequestID { return RequestID(uuid.NewString()) },
	}
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}

func (s *Service) newID() RequestID {
	if s.NewID == nil {
		return RequestID(uuid.NewString())
	}
	return s.NewID()
}

// =============================================================================
// CREATE
// =============================================================================

// Create records a pending request. Hours per day are decided now and stored
// with the request; later rule changes do not affect it.
func (s *Service) Create(ctx context.Context, employeeID timesheet.EmployeeID, from, to timesheet.Date, category timesheet.DayCategory, isContractor bool) (RequestID, error) {
	if from.IsZero() || to.IsZero() {
		return "", &timesheet.ParseError{Kind: timesheet.ErrInvalidDate}
	}
	if to.Before(from) {
		return "", fmt.Errorf("%w: %s is after %s", timesheet.ErrInvalidRange, from, to)
	}
	if !category.IsTimeOff() {
		return "", &timesheet.ParseError{Kind: timesheet.ErrInvalidCategory, Input: category.Note()}
	}

	now := s.now()
	req := Request{
		ID:          s.newID(),
		EmployeeID:  employeeID,
		FromDate:    from,
		ToDate:      to,
		Category:    category,
		HoursPerDay: s.Rules.TimeOffHoursPerDay(category, isContractor),
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Store.CreateRequest(ctx, req); err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	s.notify(ctx, req)
	return req.ID, nil
}

// CreateForEmployee looks the employee up and derives the contractor flag
// from their employment type.
func (s *Service) CreateForEmployee(ctx context.Context, employeeID timesheet.EmployeeID, from, to timesheet.Date, category timesheet.DayCategory) (RequestID, error) {
	if s.Employees == nil {
		return "", errors.New("no employee directory configured")
	}
	emp, err := s.Employees.GetEmployee(ctx, employeeID)
	if err != nil {
		return "", err
	}
	return s.Create(ctx, emp.ID, from, to, category, emp.IsContractor())
}

// notify never fails the create; the request is already stored.
func (s *Service) notify(ctx context.Context, req Request) {
	if s.Notifier == nil {
		return
	}
	name := string(req.EmployeeID)
	if s.Employees != nil {
		if emp, err := s.Employees.GetEmployee(ctx, req.EmployeeID); err == nil {
			name = emp.Name
		}
	}
	err := s.Notifier.RequestCreated(ctx, Notice{
		RequestID:    req.ID,
		EmployeeID:   req.EmployeeID,
		EmployeeName: name,
		FromDate:     req.FromDate,
		ToDate:       req.ToDate,
		Category:     req.Category,
	})
	if err != nil {
		log.Printf("[TimeOff] notification for request %s failed: %v", req.ID, err)
	}
}

// =============================================================================
// DECIDE - The critical transactional operation
// =============================================================================

// Decide moves a pending request to approved or rejected.
// This is TRANSACTIONAL:
//   - The status change is a guarded update that only matches pending rows
//   - On approval, one entry per day in [from, to] is upserted
//
// If ANY step fails, ALL changes are rolled back, including the status.
// Returns (true, nil) when this call made the transition and
// (false, ErrAlreadyProcessed) when the request had already been decided.
func (s *Service) Decide(ctx context.Context, id RequestID, decision Decision) (bool, error) {
	if _, err := ParseDecision(string(decision)); err != nil {
		return false, err
	}
	target := decision.Target()
	now := s.now()

	err := s.Store.WithTx(ctx, func(tx Tx) error {
		changed, err := tx.TransitionRequest(ctx, id, StatusPending, target, now)
		if err != nil {
			return fmt.Errorf("failed to update request %s: %w", id, err)
		}
		if !changed {
			if _, err := tx.GetRequest(ctx, id); err != nil {
				return err
			}
			return ErrAlreadyProcessed
		}
		if target != StatusApproved {
			return nil
		}

		req, err := tx.GetRequest(ctx, id)
		if err != nil {
			return err
		}
		for _, day := range req.Days() {
			entry := req.EntryFor(day)
			entry.CreatedAt = now
			entry.UpdatedAt = now
			if err := tx.Upsert(ctx, entry); err != nil {
				return fmt.Errorf("failed to write %s for request %s: %w", day, id, err)
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}

	log.Printf("[TimeOff] request %s %s", id, target)
	return true, nil
}

// =============================================================================
// LISTINGS
// =============================================================================

func (s *Service) Get(ctx context.Context, id RequestID) (*Request, error) {
	return s.Store.GetRequest(ctx, id)
}

// Pending lists undecided requests, oldest first.
func (s *Service) Pending(ctx context.Context) ([]Request, error) {
	return s.Store.ListRequests(ctx, RequestFilter{Status: StatusPending, OldestFirst: true})
}

// All lists requests in the given status ("" = any), newest first.
func (s *Service) All(ctx context.Context, status Status) ([]Request, error) {
	return s.Store.ListRequests(ctx, RequestFilter{Status: status})
}

// ForEmployee lists one employee's requests, newest first.
func (s *Service) ForEmployee(ctx context.Context, employeeID timesheet.EmployeeID) ([]Request, error) {
	return s.Store.ListRequests(ctx, RequestFilter{EmployeeID: employeeID})
}
