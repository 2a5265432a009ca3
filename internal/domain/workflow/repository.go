package workflow

import "context"

type Repository interface {
	Create(ctx context.Context, w *ApprovalWorkflow) error
	Save(ctx context.Context, w *ApprovalWorkflow) error
	GetByID(ctx context.Context, id string) (*ApprovalWorkflow, error)
	GetByName(ctx context.Context, name string) (*ApprovalWorkflow, error)
	ListActive(ctx context.Context) ([]ApprovalWorkflow, error)
}
