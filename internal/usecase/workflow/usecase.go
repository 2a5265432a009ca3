package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"leaveflow/internal/domain/uow"
	domainWorkflow "leaveflow/internal/domain/workflow"
	"leaveflow/internal/usecase/approver"
	"leaveflow/pkg/id"
)

type Usecase struct {
	uow uow.UnitOfWork
	log *zap.Logger
}

func NewUsecase(tx uow.UnitOfWork, log *zap.Logger) *Usecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &Usecase{uow: tx, log: log.Named("workflow")}
}

// Select returns the single active workflow covering days, with its levels
// sorted ascending. Zero matches is ErrNotFound; more than one is
// ErrConfiguration.
func Select(ctx context.Context, repo domainWorkflow.Repository, days decimal.Decimal) (*domainWorkflow.ApprovalWorkflow, error) {
	active, err := repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	var matches []domainWorkflow.ApprovalWorkflow
	for _, w := range active {
		if w.Covers(days) {
			matches = append(matches, w)
		}
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: no active workflow covers %s days", domainWorkflow.ErrNotFound, days)
	case 1:
		w := matches[0]
		w.Levels = w.SortedLevels()
		return &w, nil
	}
	names := make([]string, len(matches))
	for i, w := range matches {
		names[i] = w.Name
	}
	return nil, fmt.Errorf("%w: %d active workflows cover %s days (%s)",
		domainWorkflow.ErrConfiguration, len(matches), days, strings.Join(names, ", "))
}

func (u *Usecase) SelectWorkflow(ctx context.Context, days decimal.Decimal) (*domainWorkflow.ApprovalWorkflow, error) {
	var out *domainWorkflow.ApprovalWorkflow
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		w, err := Select(ctx, r.Workflows, days)
		out = w
		return err
	})
	if errors.Is(err, domainWorkflow.ErrConfiguration) {
		u.log.Error("workflow configuration inconsistent", zap.String("days", days.String()), zap.Error(err))
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CreateWorkflow, UpdateWorkflow and SetWorkflowActive are reserved for
// SuperAdmin and HR actors.
func (u *Usecase) CreateWorkflow(ctx context.Context, actorID string, in WorkflowInput) (*domainWorkflow.ApprovalWorkflow, error) {
	w := &domainWorkflow.ApprovalWorkflow{
		ID:       id.NewID(),
		Name:     strings.TrimSpace(in.Name),
		MinDays:  in.MinDays,
		MaxDays:  in.MaxDays,
		Levels:   in.Levels,
		IsActive: in.IsActive == nil || *in.IsActive,
	}
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if _, err := approver.RequireAdmin(ctx, r.Users, actorID); err != nil {
			return err
		}
		if err := w.Validate(); err != nil {
			return err
		}
		w.Levels = w.SortedLevels()
		if err := ensureNameFree(ctx, r.Workflows, w.Name, ""); err != nil {
			return err
		}
		if err := ensureNoOverlap(ctx, r.Workflows, w); err != nil {
			return err
		}
		return r.Workflows.Create(ctx, w)
	})
	if err != nil {
		return nil, err
	}
	u.log.Info("workflow created", zap.String("workflow_id", w.ID), zap.String("name", w.Name), zap.String("actor_id", actorID))
	return w, nil
}

func (u *Usecase) UpdateWorkflow(ctx context.Context, actorID, workflowID string, in WorkflowInput) (*domainWorkflow.ApprovalWorkflow, error) {
	var out *domainWorkflow.ApprovalWorkflow
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if _, err := approver.RequireAdmin(ctx, r.Users, actorID); err != nil {
			return err
		}
		w, err := r.Workflows.GetByID(ctx, workflowID)
		if err != nil {
			return err
		}
		w.Name = strings.TrimSpace(in.Name)
		w.MinDays = in.MinDays
		w.MaxDays = in.MaxDays
		w.Levels = in.Levels
		if in.IsActive != nil {
			w.IsActive = *in.IsActive
		}
		if err := w.Validate(); err != nil {
			return err
		}
		w.Levels = w.SortedLevels()
		if err := ensureNameFree(ctx, r.Workflows, w.Name, w.ID); err != nil {
			return err
		}
		if err := ensureNoOverlap(ctx, r.Workflows, w); err != nil {
			return err
		}
		if err := r.Workflows.Save(ctx, w); err != nil {
			return err
		}
		out = w
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.log.Info("workflow updated", zap.String("workflow_id", out.ID), zap.String("name", out.Name), zap.String("actor_id", actorID))
	return out, nil
}

// SetWorkflowActive re-checks the overlap rule when activating.
func (u *Usecase) SetWorkflowActive(ctx context.Context, actorID, workflowID string, active bool) (*domainWorkflow.ApprovalWorkflow, error) {
	var out *domainWorkflow.ApprovalWorkflow
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if _, err := approver.RequireAdmin(ctx, r.Users, actorID); err != nil {
			return err
		}
		w, err := r.Workflows.GetByID(ctx, workflowID)
		if err != nil {
			return err
		}
		w.IsActive = active
		if err := ensureNoOverlap(ctx, r.Workflows, w); err != nil {
			return err
		}
		if err := r.Workflows.Save(ctx, w); err != nil {
			return err
		}
		out = w
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.log.Info("workflow activation changed", zap.String("workflow_id", out.ID), zap.Bool("active", active), zap.String("actor_id", actorID))
	return out, nil
}

// SeedDefaults creates each default whose name is not yet taken and leaves
// existing workflows untouched. It returns how many were created.
func (u *Usecase) SeedDefaults(ctx context.Context, defaults []domainWorkflow.ApprovalWorkflow) (int, error) {
	created := 0
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		created = 0
		for _, d := range defaults {
			_, err := r.Workflows.GetByName(ctx, d.Name)
			if err == nil {
				continue
			}
			if !errors.Is(err, domainWorkflow.ErrNotFound) {
				return err
			}
			w := d
			w.ID = id.NewID()
			w.IsActive = true
			if err := w.Validate(); err != nil {
				return fmt.Errorf("default workflow %q: %w", d.Name, err)
			}
			w.Levels = w.SortedLevels()
			if err := ensureNoOverlap(ctx, r.Workflows, &w); err != nil {
				return fmt.Errorf("default workflow %q: %w", d.Name, err)
			}
			if err := r.Workflows.Create(ctx, &w); err != nil {
				return err
			}
			created++
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domainWorkflow.ErrOverlap) {
			u.log.Error("default workflows overlap active workflows", zap.Error(err))
		}
		return 0, err
	}
	u.log.Info("default workflows seeded", zap.Int("created", created), zap.Int("defaults", len(defaults)))
	return created, nil
}

func ensureNameFree(ctx context.Context, repo domainWorkflow.Repository, name, selfID string) error {
	existing, err := repo.GetByName(ctx, name)
	switch {
	case errors.Is(err, domainWorkflow.ErrNotFound):
		return nil
	case err != nil:
		return err
	case existing.ID != selfID:
		return fmt.Errorf("%w: %q", domainWorkflow.ErrDuplicateName, name)
	}
	return nil
}

// ensureNoOverlap checks w against every other active workflow. Inactive
// workflows are never checked.
func ensureNoOverlap(ctx context.Context, repo domainWorkflow.Repository, w *domainWorkflow.ApprovalWorkflow) error {
	if !w.IsActive {
		return nil
	}
	active, err := repo.ListActive(ctx)
	if err != nil {
		return err
	}
	for i := range active {
		o := &active[i]
		if o.ID == w.ID {
			continue
		}
		if w.Overlaps(o) {
			return fmt.Errorf("%w: %q [%s..%s] overlaps %q [%s..%s]",
				domainWorkflow.ErrOverlap, w.Name, w.MinDays, w.MaxDays, o.Name, o.MinDays, o.MaxDays)
		}
	}
	return nil
}
