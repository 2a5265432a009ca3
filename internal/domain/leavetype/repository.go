package leavetype

import "context"

type Repository interface {
	Create(ctx context.Context, t *LeaveType) error
	GetByID(ctx context.Context, id string) (*LeaveType, error)
}
