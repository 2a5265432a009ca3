package leave

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, r *LeaveRequest) error
	Save(ctx context.Context, r *LeaveRequest) error
	GetByID(ctx context.Context, id string) (*LeaveRequest, error)

	// GetByIDForUpdate locks the request row until the surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, id string) (*LeaveRequest, error)

	// FindOverlapping returns the user's requests in any of statuses whose
	// inclusive date range intersects [from, to].
	FindOverlapping(ctx context.Context, userID string, from, to time.Time, statuses []Status) ([]LeaveRequest, error)
}
