package approver

import (
	"context"
	"errors"
	"fmt"

	"leaveflow/internal/domain/leave"
	"leaveflow/internal/domain/user"
	"leaveflow/internal/domain/workflow"
)

var ErrNotResolved = errors.New("approver could not be resolved")

// Decision is the outcome of an authorization check.
type Decision struct {
	Authorized bool
	Reason     string
}

// Resolver finds concrete approvers in the user directory.
type Resolver struct {
	users user.Repository
}

func NewResolver(users user.Repository) *Resolver {
	return &Resolver{users: users}
}

// Resolve finds the user acting as approverType for the requester.
// It returns ErrNotResolved when nobody active fills the role.
func (r *Resolver) Resolve(ctx context.Context, requesterID string, approverType workflow.ApproverType) (*user.User, error) {
	requester, err := r.users.GetByID(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	return r.resolveFor(ctx, requester, approverType)
}

func (r *Resolver) resolveFor(ctx context.Context, requester *user.User, approverType workflow.ApproverType) (*user.User, error) {
	switch approverType {
	case workflow.ApproverTeamLead:
		return r.activeRef(ctx, requester.TeamLeadID, approverType)
	case workflow.ApproverManager:
		return r.activeRef(ctx, requester.ManagerID, approverType)
	case workflow.ApproverHR:
		if u, err := r.activeRef(ctx, requester.HRID, approverType); !errors.Is(err, ErrNotResolved) {
			return u, err
		}
		return r.firstInDepartment(ctx, user.RoleHR, requester.DepartmentID, approverType)
	case workflow.ApproverDepartmentHead:
		return r.firstInDepartment(ctx, user.RoleManager, requester.DepartmentID, approverType)
	case workflow.ApproverSuperAdmin:
		admins, err := r.users.FindActiveByRoles(ctx, []user.Role{user.RoleSuperAdmin}, "")
		if err != nil {
			return nil, err
		}
		if len(admins) == 0 {
			return nil, fmt.Errorf("%w: no active %s", ErrNotResolved, approverType)
		}
		return &admins[0], nil
	}
	return nil, fmt.Errorf("%w: unknown approver type %q", workflow.ErrInvalid, approverType)
}

func (r *Resolver) activeRef(ctx context.Context, ref *string, approverType workflow.ApproverType) (*user.User, error) {
	if ref == nil || *ref == "" {
		return nil, fmt.Errorf("%w: requester has no %s", ErrNotResolved, approverType)
	}
	u, err := r.users.GetByID(ctx, *ref)
	if errors.Is(err, user.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s %s does not exist", ErrNotResolved, approverType, *ref)
	}
	if err != nil {
		return nil, err
	}
	if !u.IsActive {
		return nil, fmt.Errorf("%w: %s %s is inactive", ErrNotResolved, approverType, u.ID)
	}
	return u, nil
}

// firstInDepartment picks the earliest-created active user with role in the
// department.
func (r *Resolver) firstInDepartment(ctx context.Context, role user.Role, departmentID string, approverType workflow.ApproverType) (*user.User, error) {
	if departmentID == "" {
		return nil, fmt.Errorf("%w: requester has no department for %s", ErrNotResolved, approverType)
	}
	found, err := r.users.FindActiveByRoles(ctx, []user.Role{role}, departmentID)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, fmt.Errorf("%w: no active %s in department %s", ErrNotResolved, role, departmentID)
	}
	return &found[0], nil
}

// ResolveFallback searches active users holding any of roles, preferring
// departmentID and broadening to every department only when that is empty.
func (r *Resolver) ResolveFallback(ctx context.Context, roles []user.Role, departmentID string) ([]user.User, error) {
	if len(roles) == 0 {
		return nil, nil
	}
	if departmentID != "" {
		scoped, err := r.users.FindActiveByRoles(ctx, roles, departmentID)
		if err != nil {
			return nil, err
		}
		if len(scoped) > 0 {
			return scoped, nil
		}
	}
	return r.users.FindActiveByRoles(ctx, roles, "")
}

// ResolveLevel returns whoever should be asked to sign off at level: the
// typed approver when resolvable, else the fallback role search. The
// requester never appears in the result.
func (r *Resolver) ResolveLevel(ctx context.Context, requester *user.User, level workflow.ApprovalLevel) ([]user.User, error) {
	u, err := r.resolveFor(ctx, requester, level.ApproverType)
	if err == nil && u.ID != requester.ID {
		return []user.User{*u}, nil
	}
	if err != nil && !errors.Is(err, ErrNotResolved) {
		return nil, err
	}
	candidates, err := r.ResolveFallback(ctx, level.Roles, requester.DepartmentID)
	if err != nil {
		return nil, err
	}
	out := candidates[:0]
	for _, c := range candidates {
		if c.ID != requester.ID {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: level %d (%s)", ErrNotResolved, level.Level, level.ApproverType)
	}
	return out, nil
}

// RequireAdmin loads actorID and insists on an active SuperAdmin or HR user.
// Anything else, including an unknown actor, is leave.ErrUnauthorized.
func RequireAdmin(ctx context.Context, users user.Repository, actorID string) (*user.User, error) {
	actor, err := users.GetByID(ctx, actorID)
	if errors.Is(err, user.ErrNotFound) {
		return nil, fmt.Errorf("%w: unknown actor %s", leave.ErrUnauthorized, actorID)
	}
	if err != nil {
		return nil, err
	}
	if !actor.IsActive || !actor.Role.IsAdminOverride() {
		return nil, fmt.Errorf("%w: role %s cannot administer leave settings", leave.ErrUnauthorized, actor.Role)
	}
	return actor, nil
}

// Authorize reports whether actor may act on requests owned by requester.
func Authorize(actor, requester *user.User) Decision {
	switch {
	case !actor.IsActive:
		return Decision{Reason: "actor is inactive"}
	case actor.Role == user.RoleSuperAdmin:
		return Decision{Authorized: true, Reason: "super admin"}
	case user.Refers(requester.ManagerID, actor.ID):
		return Decision{Authorized: true, Reason: "direct manager"}
	case user.Refers(requester.TeamLeadID, actor.ID):
		return Decision{Authorized: true, Reason: "team lead"}
	case user.Refers(requester.HRID, actor.ID):
		return Decision{Authorized: true, Reason: "assigned hr"}
	}
	if actor.DepartmentID != "" && actor.DepartmentID == requester.DepartmentID {
		switch actor.Role {
		case user.RoleHR, user.RoleManager, user.RoleTeamLead:
			return Decision{Authorized: true, Reason: "same department " + string(actor.Role)}
		}
	}
	return Decision{Reason: "actor has no authority over requester"}
}
