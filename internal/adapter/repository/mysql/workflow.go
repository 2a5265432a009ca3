package mysql

import (
	"context"
	"errors"

	workflowDomain "leaveflow/internal/domain/workflow"

	"gorm.io/gorm"
)

type WorkflowRepository struct{ db *gorm.DB }

func NewWorkflowRepository(db *gorm.DB) *WorkflowRepository { return &WorkflowRepository{db: db} }

func (r *WorkflowRepository) Create(ctx context.Context, w *workflowDomain.ApprovalWorkflow) error {
	err := r.db.WithContext(ctx).Create(w).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return workflowDomain.ErrDuplicateName
	}
	return err
}

func (r *WorkflowRepository) Save(ctx context.Context, w *workflowDomain.ApprovalWorkflow) error {
	err := r.db.WithContext(ctx).Save(w).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return workflowDomain.ErrDuplicateName
	}
	return err
}

func (r *WorkflowRepository) GetByID(ctx context.Context, id string) (*workflowDomain.ApprovalWorkflow, error) {
	var out workflowDomain.ApprovalWorkflow
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&out).Error; err != nil {
		return nil, mapErr(err, workflowDomain.ErrNotFound)
	}
	return &out, nil
}

func (r *WorkflowRepository) GetByName(ctx context.Context, name string) (*workflowDomain.ApprovalWorkflow, error) {
	var out workflowDomain.ApprovalWorkflow
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&out).Error; err != nil {
		return nil, mapErr(err, workflowDomain.ErrNotFound)
	}
	return &out, nil
}

func (r *WorkflowRepository) ListActive(ctx context.Context) ([]workflowDomain.ApprovalWorkflow, error) {
	var out []workflowDomain.ApprovalWorkflow
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("min_days ASC, id ASC").
		Find(&out).Error
	return out, err
}
