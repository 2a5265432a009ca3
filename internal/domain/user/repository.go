package user

import "context"

// Repository is the read side of the user/department directory.
type Repository interface {
	GetByID(ctx context.Context, id string) (*User, error)

	// GetByIDForUpdate locks the user row until the transaction ends. Create
	// takes it so one user's requests are checked for overlap one at a time.
	GetByIDForUpdate(ctx context.Context, id string) (*User, error)

	// FindActiveByRoles returns active users holding any of roles, ordered by
	// created_at then id. An empty departmentID searches every department.
	FindActiveByRoles(ctx context.Context, roles []Role, departmentID string) ([]User, error)

	ListActive(ctx context.Context) ([]User, error)
}
