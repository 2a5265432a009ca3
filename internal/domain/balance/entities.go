package balance

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound            = errors.New("leave balance not found")
	ErrInsufficientBalance = errors.New("insufficient leave balance")
)

// LeaveBalance is identified by (UserID, LeaveTypeID, Year).
type LeaveBalance struct {
	ID           string          `gorm:"column:id;type:char(36);primaryKey" json:"id"`
	UserID       string          `gorm:"column:user_id;type:char(36);not null;uniqueIndex:ux_leave_balances_owner_year" json:"user_id"`
	LeaveTypeID  string          `gorm:"column:leave_type_id;type:char(36);not null;uniqueIndex:ux_leave_balances_owner_year" json:"leave_type_id"`
	Year         int             `gorm:"column:year;not null;uniqueIndex:ux_leave_balances_owner_year" json:"year"`
	Balance      decimal.Decimal `gorm:"column:balance;type:decimal(6,2);not null" json:"balance"`
	Used         decimal.Decimal `gorm:"column:used;type:decimal(6,2);not null" json:"used"`
	CarryForward decimal.Decimal `gorm:"column:carry_forward;type:decimal(6,2);not null" json:"carry_forward"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (LeaveBalance) TableName() string { return "leave_balances" }

// Available is balance + carryForward - used.
func (b *LeaveBalance) Available() decimal.Decimal {
	return b.Balance.Add(b.CarryForward).Sub(b.Used)
}

func (b *LeaveBalance) Debit(days decimal.Decimal) {
	b.Used = b.Used.Add(days)
}

// Credit returns days to the ledger; used never drops below zero.
func (b *LeaveBalance) Credit(days decimal.Decimal) {
	b.Used = decimal.Max(decimal.Zero, b.Used.Sub(days))
}

// CheckSufficient fails when requested exceeds Available. Unpaid leave is never checked.
func (b *LeaveBalance) CheckSufficient(requested decimal.Decimal, paid bool) error {
	if !paid {
		return nil
	}
	if avail := b.Available(); requested.GreaterThan(avail) {
		return fmt.Errorf("%w: requested %s, available %s", ErrInsufficientBalance, requested.String(), avail.String())
	}
	return nil
}

// CarryForwardFor is the number of days a prior-year balance rolls into the
// next year: the unused remainder clamped at zero, then capped at maxDays.
// Returns zero when carry-forward is disabled.
func CarryForwardFor(enabled bool, maxDays decimal.Decimal, prior *LeaveBalance) decimal.Decimal {
	if !enabled || prior == nil {
		return decimal.Zero
	}
	remainder := decimal.Max(prior.Balance.Sub(prior.Used), decimal.Zero)
	return decimal.Min(remainder, decimal.Max(maxDays, decimal.Zero))
}
