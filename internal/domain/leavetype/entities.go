package leavetype

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"leaveflow/internal/domain/user"
)

var (
	ErrNotFound = errors.New("leave type not found")
)

type LeaveType struct {
	ID                  string          `gorm:"column:id;type:char(36);primaryKey" json:"id"`
	Name                string          `gorm:"column:name;size:100;not null;uniqueIndex" json:"name"`
	DefaultDays         decimal.Decimal `gorm:"column:default_days;type:decimal(6,2);not null" json:"default_days"`
	IsCarryForward      bool            `gorm:"column:is_carry_forward;not null" json:"is_carry_forward"`
	MaxCarryForwardDays decimal.Decimal `gorm:"column:max_carry_forward_days;type:decimal(6,2);not null" json:"max_carry_forward_days"`
	ApplicableGender    *user.Gender    `gorm:"column:applicable_gender;size:16" json:"applicable_gender,omitempty"`
	IsHalfDayAllowed    bool            `gorm:"column:is_half_day_allowed;not null" json:"is_half_day_allowed"`
	IsPaidLeave         bool            `gorm:"column:is_paid_leave;not null" json:"is_paid_leave"`
	IsActive            bool            `gorm:"column:is_active;not null" json:"is_active"`
	CreatedAt           time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (LeaveType) TableName() string { return "leave_types" }

// AppliesTo reports whether the type is available to users of gender g.
// A type without a gender filter applies to everyone.
func (t *LeaveType) AppliesTo(g user.Gender) bool {
	return t.ApplicableGender == nil || *t.ApplicableGender == "" || *t.ApplicableGender == g
}
