package memstore

import (
	"context"
	"sort"
	"strings"
	"time"

	"leaveflow/internal/domain/balance"
	"leaveflow/internal/domain/holiday"
	"leaveflow/internal/domain/leave"
	"leaveflow/internal/domain/leavetype"
	"leaveflow/internal/domain/user"
	"leaveflow/internal/domain/workflow"
)

type userRepo struct {
	s  *Store
	tx bool
}

func (r *userRepo) GetByID(_ context.Context, id string) (*user.User, error) {
	return r.get("Users.GetByID", id)
}

// GetByIDForUpdate needs no lock of its own: transactions already run one at a time.
func (r *userRepo) GetByIDForUpdate(_ context.Context, id string) (*user.User, error) {
	return r.get("Users.GetByIDForUpdate", id)
}

func (r *userRepo) get(op, id string) (*user.User, error) {
	var out *user.User
	err := r.s.run(r.tx, op, func(d *state) error {
		u, ok := d.users[id]
		if !ok {
			return user.ErrNotFound
		}
		out = &u
		return nil
	})
	return out, err
}

func (r *userRepo) FindActiveByRoles(_ context.Context, roles []user.Role, departmentID string) ([]user.User, error) {
	var out []user.User
	err := r.s.run(r.tx, "Users.FindActiveByRoles", func(d *state) error {
		for _, u := range d.users {
			if !u.IsActive || (departmentID != "" && u.DepartmentID != departmentID) {
				continue
			}
			for _, role := range roles {
				if u.Role == role {
					out = append(out, u)
					break
				}
			}
		}
		sortUsers(out)
		return nil
	})
	return out, err
}

func (r *userRepo) ListActive(_ context.Context) ([]user.User, error) {
	var out []user.User
	err := r.s.run(r.tx, "Users.ListActive", func(d *state) error {
		for _, u := range d.users {
			if u.IsActive {
				out = append(out, u)
			}
		}
		sortUsers(out)
		return nil
	})
	return out, err
}

func sortUsers(us []user.User) {
	sort.Slice(us, func(i, j int) bool {
		if !us[i].CreatedAt.Equal(us[j].CreatedAt) {
			return us[i].CreatedAt.Before(us[j].CreatedAt)
		}
		return us[i].ID < us[j].ID
	})
}

type leaveTypeRepo struct {
	s  *Store
	tx bool
}

func (r *leaveTypeRepo) Create(_ context.Context, t *leavetype.LeaveType) error {
	return r.s.run(r.tx, "LeaveTypes.Create", func(d *state) error {
		d.leaveTypes[t.ID] = *t
		return nil
	})
}

func (r *leaveTypeRepo) GetByID(_ context.Context, id string) (*leavetype.LeaveType, error) {
	var out *leavetype.LeaveType
	err := r.s.run(r.tx, "LeaveTypes.GetByID", func(d *state) error {
		t, ok := d.leaveTypes[id]
		if !ok {
			return leavetype.ErrNotFound
		}
		out = &t
		return nil
	})
	return out, err
}

type holidayRepo struct {
	s  *Store
	tx bool
}

func (r *holidayRepo) Create(_ context.Context, h *holiday.Holiday) error {
	return r.s.run(r.tx, "Holidays.Create", func(d *state) error {
		d.holidays[h.ID] = *h
		return nil
	})
}

func (r *holidayRepo) ListActiveBetween(_ context.Context, from, to time.Time) ([]holiday.Holiday, error) {
	var out []holiday.Holiday
	err := r.s.run(r.tx, "Holidays.ListActiveBetween", func(d *state) error {
		for _, h := range d.holidays {
			if h.IsActive && !h.Date.Before(from) && !h.Date.After(to) {
				out = append(out, h)
			}
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
		return nil
	})
	return out, err
}

type balanceRepo struct {
	s  *Store
	tx bool
}

func (r *balanceRepo) Create(_ context.Context, b *balance.LeaveBalance) error {
	return r.s.run(r.tx, "Balances.Create", func(d *state) error {
		d.balances[balanceKey{b.UserID, b.LeaveTypeID, b.Year}] = *b
		return nil
	})
}

func (r *balanceRepo) Save(_ context.Context, b *balance.LeaveBalance) error {
	return r.s.run(r.tx, "Balances.Save", func(d *state) error {
		d.balances[balanceKey{b.UserID, b.LeaveTypeID, b.Year}] = *b
		return nil
	})
}

func (r *balanceRepo) Get(_ context.Context, userID, leaveTypeID string, year int) (*balance.LeaveBalance, error) {
	var out *balance.LeaveBalance
	err := r.s.run(r.tx, "Balances.Get", func(d *state) error {
		b, ok := d.balances[balanceKey{userID, leaveTypeID, year}]
		if !ok {
			return balance.ErrNotFound
		}
		out = &b
		return nil
	})
	return out, err
}

func (r *balanceRepo) GetForUpdate(ctx context.Context, userID, leaveTypeID string, year int) (*balance.LeaveBalance, error) {
	return r.Get(ctx, userID, leaveTypeID, year)
}

type workflowRepo struct {
	s  *Store
	tx bool
}

func (r *workflowRepo) Create(_ context.Context, w *workflow.ApprovalWorkflow) error {
	return r.s.run(r.tx, "Workflows.Create", func(d *state) error {
		for _, existing := range d.workflows {
			if strings.EqualFold(existing.Name, w.Name) {
				return workflow.ErrDuplicateName
			}
		}
		d.workflows[w.ID] = cloneWorkflow(*w)
		return nil
	})
}

func (r *workflowRepo) Save(_ context.Context, w *workflow.ApprovalWorkflow) error {
	return r.s.run(r.tx, "Workflows.Save", func(d *state) error {
		d.workflows[w.ID] = cloneWorkflow(*w)
		return nil
	})
}

func (r *workflowRepo) GetByID(_ context.Context, id string) (*workflow.ApprovalWorkflow, error) {
	var out *workflow.ApprovalWorkflow
	err := r.s.run(r.tx, "Workflows.GetByID", func(d *state) error {
		w, ok := d.workflows[id]
		if !ok {
			return workflow.ErrNotFound
		}
		w = cloneWorkflow(w)
		out = &w
		return nil
	})
	return out, err
}

func (r *workflowRepo) GetByName(_ context.Context, name string) (*workflow.ApprovalWorkflow, error) {
	var out *workflow.ApprovalWorkflow
	err := r.s.run(r.tx, "Workflows.GetByName", func(d *state) error {
		for _, w := range d.workflows {
			if strings.EqualFold(w.Name, name) {
				w = cloneWorkflow(w)
				out = &w
				return nil
			}
		}
		return workflow.ErrNotFound
	})
	return out, err
}

func (r *workflowRepo) ListActive(_ context.Context) ([]workflow.ApprovalWorkflow, error) {
	var out []workflow.ApprovalWorkflow
	err := r.s.run(r.tx, "Workflows.ListActive", func(d *state) error {
		for _, w := range d.workflows {
			if w.IsActive {
				out = append(out, cloneWorkflow(w))
			}
		}
		sort.Slice(out, func(i, j int) bool { return out[i].MinDays.LessThan(out[j].MinDays) })
		return nil
	})
	return out, err
}

type requestRepo struct {
	s  *Store
	tx bool
}

func (r *requestRepo) Create(_ context.Context, req *leave.LeaveRequest) error {
	return r.s.run(r.tx, "Requests.Create", func(d *state) error {
		d.requests[req.ID] = cloneRequest(*req)
		return nil
	})
}

func (r *requestRepo) Save(_ context.Context, req *leave.LeaveRequest) error {
	return r.s.run(r.tx, "Requests.Save", func(d *state) error {
		if _, ok := d.requests[req.ID]; !ok {
			return leave.ErrNotFound
		}
		d.requests[req.ID] = cloneRequest(*req)
		return nil
	})
}

func (r *requestRepo) GetByID(_ context.Context, id string) (*leave.LeaveRequest, error) {
	var out *leave.LeaveRequest
	err := r.s.run(r.tx, "Requests.GetByID", func(d *state) error {
		req, ok := d.requests[id]
		if !ok {
			return leave.ErrNotFound
		}
		req = cloneRequest(req)
		out = &req
		return nil
	})
	return out, err
}

func (r *requestRepo) GetByIDForUpdate(ctx context.Context, id string) (*leave.LeaveRequest, error) {
	return r.GetByID(ctx, id)
}

func (r *requestRepo) FindOverlapping(_ context.Context, userID string, from, to time.Time, statuses []leave.Status) ([]leave.LeaveRequest, error) {
	var out []leave.LeaveRequest
	err := r.s.run(r.tx, "Requests.FindOverlapping", func(d *state) error {
		for _, req := range d.requests {
			if req.UserID != userID || !req.Overlaps(from, to) {
				continue
			}
			for _, st := range statuses {
				if req.Status == st {
					out = append(out, cloneRequest(req))
					break
				}
			}
		}
		return nil
	})
	return out, err
}
