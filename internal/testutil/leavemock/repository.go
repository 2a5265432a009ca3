package leavemock

import (
	"context"
	"time"

	domain "leaveflow/internal/domain/leave"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
// Unset writers are no-ops; unset readers report domain.ErrNotFound.
type Repo struct {
	CreateFn           func(ctx context.Context, r *domain.LeaveRequest) error
	SaveFn             func(ctx context.Context, r *domain.LeaveRequest) error
	GetByIDFn          func(ctx context.Context, id string) (*domain.LeaveRequest, error)
	GetByIDForUpdateFn func(ctx context.Context, id string) (*domain.LeaveRequest, error)
	FindOverlappingFn  func(ctx context.Context, userID string, from, to time.Time, statuses []domain.Status) ([]domain.LeaveRequest, error)
}

func (m *Repo) Create(ctx context.Context, r *domain.LeaveRequest) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, r)
	}
	return nil
}

func (m *Repo) Save(ctx context.Context, r *domain.LeaveRequest) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, r)
	}
	return nil
}

func (m *Repo) GetByID(ctx context.Context, id string) (*domain.LeaveRequest, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) GetByIDForUpdate(ctx context.Context, id string) (*domain.LeaveRequest, error) {
	if m.GetByIDForUpdateFn != nil {
		return m.GetByIDForUpdateFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) FindOverlapping(ctx context.Context, userID string, from, to time.Time, statuses []domain.Status) ([]domain.LeaveRequest, error) {
	if m.FindOverlappingFn != nil {
		return m.FindOverlappingFn(ctx, userID, from, to, statuses)
	}
	return nil, nil
}
