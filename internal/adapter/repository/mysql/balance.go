package mysql

import (
	"context"

	balanceDomain "leaveflow/internal/domain/balance"

	"gorm.io/gorm"
)

type BalanceRepository struct{ db *gorm.DB }

func NewBalanceRepository(db *gorm.DB) *BalanceRepository { return &BalanceRepository{db: db} }

func (r *BalanceRepository) Create(ctx context.Context, b *balanceDomain.LeaveBalance) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *BalanceRepository) Save(ctx context.Context, b *balanceDomain.LeaveBalance) error {
	return r.db.WithContext(ctx).Save(b).Error
}

func (r *BalanceRepository) Get(ctx context.Context, userID, leaveTypeID string, year int) (*balanceDomain.LeaveBalance, error) {
	return r.get(r.db.WithContext(ctx), userID, leaveTypeID, year)
}

func (r *BalanceRepository) GetForUpdate(ctx context.Context, userID, leaveTypeID string, year int) (*balanceDomain.LeaveBalance, error) {
	return r.get(forUpdate(r.db.WithContext(ctx)), userID, leaveTypeID, year)
}

func (r *BalanceRepository) get(db *gorm.DB, userID, leaveTypeID string, year int) (*balanceDomain.LeaveBalance, error) {
	var out balanceDomain.LeaveBalance
	err := db.Where("user_id = ? AND leave_type_id = ? AND year = ?", userID, leaveTypeID, year).First(&out).Error
	if err != nil {
		return nil, mapErr(err, balanceDomain.ErrNotFound)
	}
	return &out, nil
}
