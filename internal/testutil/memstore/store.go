// Package memstore is an in-memory, transactional implementation of every
// repository plus uow.UnitOfWork. Transactions are serialized on a single
// mutex and roll back by restoring a snapshot.
package memstore

import (
	"context"
	"sync"

	"leaveflow/internal/domain/balance"
	"leaveflow/internal/domain/holiday"
	"leaveflow/internal/domain/leave"
	"leaveflow/internal/domain/leavetype"
	"leaveflow/internal/domain/uow"
	"leaveflow/internal/domain/user"
	"leaveflow/internal/domain/workflow"
)

var _ uow.UnitOfWork = (*Store)(nil)

type balanceKey struct {
	UserID      string
	LeaveTypeID string
	Year        int
}

type state struct {
	users      map[string]user.User
	leaveTypes map[string]leavetype.LeaveType
	holidays   map[string]holiday.Holiday
	balances   map[balanceKey]balance.LeaveBalance
	workflows  map[string]workflow.ApprovalWorkflow
	requests   map[string]leave.LeaveRequest
}

func newState() *state {
	return &state{
		users:      map[string]user.User{},
		leaveTypes: map[string]leavetype.LeaveType{},
		holidays:   map[string]holiday.Holiday{},
		balances:   map[balanceKey]balance.LeaveBalance{},
		workflows:  map[string]workflow.ApprovalWorkflow{},
		requests:   map[string]leave.LeaveRequest{},
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.leaveTypes {
		c.leaveTypes[k] = v
	}
	for k, v := range s.holidays {
		c.holidays[k] = v
	}
	for k, v := range s.balances {
		c.balances[k] = v
	}
	for k, v := range s.workflows {
		c.workflows[k] = cloneWorkflow(v)
	}
	for k, v := range s.requests {
		c.requests[k] = cloneRequest(v)
	}
	return c
}

type Store struct {
	mu    sync.Mutex
	data  *state
	fails map[string]error
}

func New() *Store {
	return &Store{data: newState(), fails: map[string]error{}}
}

// FailOn makes every subsequent call to op return err. op is "<Repo>.<Method>",
// for example "Requests.Save". A nil err clears the hook.
func (s *Store) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.fails, op)
		return
	}
	s.fails[op] = err
}

// Repos returns repositories that lock per call, outside any transaction.
func (s *Store) Repos() uow.Repos { return s.repos(false) }

func (s *Store) repos(inTx bool) uow.Repos {
	return uow.Repos{
		Users:      &userRepo{s: s, tx: inTx},
		LeaveTypes: &leaveTypeRepo{s: s, tx: inTx},
		Holidays:   &holidayRepo{s: s, tx: inTx},
		Balances:   &balanceRepo{s: s, tx: inTx},
		Workflows:  &workflowRepo{s: s, tx: inTx},
		Requests:   &requestRepo{s: s, tx: inTx},
	}
}

func (s *Store) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	snapshot := s.data.clone()
	if err := fn(s.repos(true)); err != nil {
		s.data = snapshot
		return err
	}
	return nil
}

func (s *Store) WithinRequestTx(ctx context.Context, requestID string, fn func(r uow.Repos, req *leave.LeaveRequest) error) error {
	return s.WithinTx(ctx, func(r uow.Repos) error {
		req, err := r.Requests.GetByIDForUpdate(ctx, requestID)
		if err != nil {
			return err
		}
		return fn(r, req)
	})
}

// run executes fn with the store locked unless the caller already holds it.
func (s *Store) run(inTx bool, op string, fn func(d *state) error) error {
	if !inTx {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	if err := s.fails[op]; err != nil {
		return err
	}
	return fn(s.data)
}

// Seeding helpers for tests. They bypass failure hooks.

func (s *Store) PutUser(u user.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.users[u.ID] = u
}

func (s *Store) PutLeaveType(t leavetype.LeaveType) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.leaveTypes[t.ID] = t
}

func (s *Store) PutHoliday(h holiday.Holiday) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.holidays[h.ID] = h
}

func (s *Store) PutBalance(b balance.LeaveBalance) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.balances[balanceKey{b.UserID, b.LeaveTypeID, b.Year}] = b
}

func (s *Store) PutWorkflow(w workflow.ApprovalWorkflow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.workflows[w.ID] = cloneWorkflow(w)
}

func (s *Store) PutRequest(r leave.LeaveRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.requests[r.ID] = cloneRequest(r)
}

// Balance returns a copy of the stored balance, if any.
func (s *Store) Balance(userID, leaveTypeID string, year int) (balance.LeaveBalance, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.data.balances[balanceKey{userID, leaveTypeID, year}]
	return b, ok
}

// Request returns a copy of the stored request, if any.
func (s *Store) Request(id string) (leave.LeaveRequest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.data.requests[id]
	return cloneRequest(r), ok
}

func (s *Store) RequestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data.requests)
}

func cloneWorkflow(w workflow.ApprovalWorkflow) workflow.ApprovalWorkflow {
	levels := make([]workflow.ApprovalLevel, len(w.Levels))
	for i, l := range w.Levels {
		l.Roles = append([]user.Role(nil), l.Roles...)
		levels[i] = l
	}
	w.Levels = levels
	return w
}

func cloneRequest(r leave.LeaveRequest) leave.LeaveRequest {
	r.Metadata.ApprovalHistory = append([]leave.ApprovalEntry(nil), r.Metadata.ApprovalHistory...)
	if r.ApprovedAt != nil {
		t := *r.ApprovedAt
		r.ApprovedAt = &t
	}
	return r
}
