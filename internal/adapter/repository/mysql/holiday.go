package mysql

import (
	"context"
	"time"

	holidayDomain "leaveflow/internal/domain/holiday"

	"gorm.io/gorm"
)

type HolidayRepository struct{ db *gorm.DB }

func NewHolidayRepository(db *gorm.DB) *HolidayRepository { return &HolidayRepository{db: db} }

func (r *HolidayRepository) Create(ctx context.Context, h *holidayDomain.Holiday) error {
	return r.db.WithContext(ctx).Create(h).Error
}

func (r *HolidayRepository) ListActiveBetween(ctx context.Context, from, to time.Time) ([]holidayDomain.Holiday, error) {
	var out []holidayDomain.Holiday
	err := r.db.WithContext(ctx).
		Where("is_active = ? AND `date` >= ? AND `date` <= ?", true, from, to).
		Order("`date` ASC").
		Find(&out).Error
	return out, err
}
