package balance

import "context"

type Repository interface {
	Create(ctx context.Context, b *LeaveBalance) error
	Save(ctx context.Context, b *LeaveBalance) error

	// Get returns ErrNotFound when no balance exists for the key.
	Get(ctx context.Context, userID, leaveTypeID string, year int) (*LeaveBalance, error)

	// GetForUpdate is Get with the row locked until the surrounding transaction ends.
	GetForUpdate(ctx context.Context, userID, leaveTypeID string, year int) (*LeaveBalance, error)
}
