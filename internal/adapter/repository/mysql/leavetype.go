package mysql

import (
	"context"

	leaveTypeDomain "leaveflow/internal/domain/leavetype"

	"gorm.io/gorm"
)

type LeaveTypeRepository struct{ db *gorm.DB }

func NewLeaveTypeRepository(db *gorm.DB) *LeaveTypeRepository { return &LeaveTypeRepository{db: db} }

func (r *LeaveTypeRepository) Create(ctx context.Context, t *leaveTypeDomain.LeaveType) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *LeaveTypeRepository) GetByID(ctx context.Context, id string) (*leaveTypeDomain.LeaveType, error) {
	var out leaveTypeDomain.LeaveType
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&out).Error; err != nil {
		return nil, mapErr(err, leaveTypeDomain.ErrNotFound)
	}
	return &out, nil
}
