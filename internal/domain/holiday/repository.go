package holiday

import (
	"context"
	"time"
)

// Repository is the holiday calendar provider.
type Repository interface {
	Create(ctx context.Context, h *Holiday) error

	// ListActiveBetween returns active holidays with from <= date <= to.
	ListActiveBetween(ctx context.Context, from, to time.Time) ([]Holiday, error)
}
