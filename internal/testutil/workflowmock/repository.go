package workflowmock

import (
	"context"

	domain "leaveflow/internal/domain/workflow"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	CreateFn     func(ctx context.Context, w *domain.ApprovalWorkflow) error
	SaveFn       func(ctx context.Context, w *domain.ApprovalWorkflow) error
	GetByIDFn    func(ctx context.Context, id string) (*domain.ApprovalWorkflow, error)
	GetByNameFn  func(ctx context.Context, name string) (*domain.ApprovalWorkflow, error)
	ListActiveFn func(ctx context.Context) ([]domain.ApprovalWorkflow, error)
}

func (m *Repo) Create(ctx context.Context, w *domain.ApprovalWorkflow) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, w)
	}
	return nil
}

func (m *Repo) Save(ctx context.Context, w *domain.ApprovalWorkflow) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, w)
	}
	return nil
}

func (m *Repo) GetByID(ctx context.Context, id string) (*domain.ApprovalWorkflow, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) GetByName(ctx context.Context, name string) (*domain.ApprovalWorkflow, error) {
	if m.GetByNameFn != nil {
		return m.GetByNameFn(ctx, name)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) ListActive(ctx context.Context) ([]domain.ApprovalWorkflow, error) {
	if m.ListActiveFn != nil {
		return m.ListActiveFn(ctx)
	}
	return nil, nil
}
