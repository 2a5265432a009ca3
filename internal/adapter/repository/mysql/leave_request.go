package mysql

import (
	"context"
	"time"

	leaveDomain "leaveflow/internal/domain/leave"

	"gorm.io/gorm"
)

type LeaveRequestRepository struct{ db *gorm.DB }

func NewLeaveRequestRepository(db *gorm.DB) *LeaveRequestRepository {
	return &LeaveRequestRepository{db: db}
}

func (r *LeaveRequestRepository) Create(ctx context.Context, req *leaveDomain.LeaveRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *LeaveRequestRepository) Save(ctx context.Context, req *leaveDomain.LeaveRequest) error {
	return r.db.WithContext(ctx).Save(req).Error
}

func (r *LeaveRequestRepository) GetByID(ctx context.Context, id string) (*leaveDomain.LeaveRequest, error) {
	return r.get(r.db.WithContext(ctx), id)
}

func (r *LeaveRequestRepository) GetByIDForUpdate(ctx context.Context, id string) (*leaveDomain.LeaveRequest, error) {
	return r.get(forUpdate(r.db.WithContext(ctx)), id)
}

func (r *LeaveRequestRepository) get(db *gorm.DB, id string) (*leaveDomain.LeaveRequest, error) {
	var out leaveDomain.LeaveRequest
	if err := db.Where("id = ?", id).First(&out).Error; err != nil {
		return nil, mapErr(err, leaveDomain.ErrNotFound)
	}
	return &out, nil
}

func (r *LeaveRequestRepository) FindOverlapping(ctx context.Context, userID string, from, to time.Time, statuses []leaveDomain.Status) ([]leaveDomain.LeaveRequest, error) {
	if len(statuses) == 0 {
		return nil, nil
	}
	var out []leaveDomain.LeaveRequest
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status IN ? AND start_date <= ? AND end_date >= ?", userID, statuses, to, from).
		Order("start_date ASC, id ASC").
		Find(&out).Error
	return out, err
}
