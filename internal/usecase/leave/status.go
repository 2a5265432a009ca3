package leave

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	domainLeave "leaveflow/internal/domain/leave"
	"leaveflow/internal/domain/notification"
	"leaveflow/internal/domain/uow"
	"leaveflow/internal/domain/user"
	domainWorkflow "leaveflow/internal/domain/workflow"
	"leaveflow/internal/usecase/approver"
	"leaveflow/internal/usecase/balance"
)

// UpdateStatus approves, rejects or cancels a request. The request row is
// locked for the whole transition so concurrent calls are serialized and the
// loser observes the winner's status.
func (u *Usecase) UpdateStatus(ctx context.Context, in UpdateStatusInput) (*domainLeave.LeaveRequest, error) {
	switch in.TargetStatus {
	case domainLeave.StatusApproved, domainLeave.StatusRejected, domainLeave.StatusCancelled:
	default:
		return nil, fmt.Errorf("%w: target status %q", domainLeave.ErrInvalidStatusTransition, in.TargetStatus)
	}

	var (
		out    *domainLeave.LeaveRequest
		from   domainLeave.Status
		outbox []notification.Message
	)
	err := u.uow.WithinRequestTx(ctx, in.RequestID, func(r uow.Repos, req *domainLeave.LeaveRequest) error {
		outbox = nil
		from = req.Status
		if err := checkTransition(req.Status, in.TargetStatus); err != nil {
			return err
		}

		actor, owner, err := u.authorize(ctx, r, req, in)
		if err != nil {
			return err
		}

		t := &transition{u: u, r: r, req: req, actor: actor, owner: owner, comments: in.Comments}
		switch in.TargetStatus {
		case domainLeave.StatusApproved:
			err = t.approve(ctx)
		case domainLeave.StatusRejected:
			err = t.reject(ctx)
		case domainLeave.StatusCancelled:
			err = t.cancel(ctx)
		}
		if err != nil {
			return err
		}
		if err := r.Requests.Save(ctx, req); err != nil {
			return err
		}
		out = req
		outbox = t.outbox
		return nil
	})
	if err != nil {
		u.logFailure("update leave request status", err,
			zap.String("request_id", in.RequestID),
			zap.String("actor_id", in.ActorID),
			zap.String("target_status", string(in.TargetStatus)),
		)
		return nil, err
	}

	u.log.Info("leave request status changed",
		zap.String("request_id", out.ID),
		zap.String("actor_id", in.ActorID),
		zap.String("from", string(from)),
		zap.String("to", string(out.Status)),
		zap.Int("approval_level", out.Metadata.CurrentApprovalLevel),
	)
	u.dispatch(ctx, outbox)
	return out, nil
}

// Cancel is UpdateStatus with a Cancelled target and no comments.
func (u *Usecase) Cancel(ctx context.Context, requestID, actorID string) (*domainLeave.LeaveRequest, error) {
	return u.UpdateStatus(ctx, UpdateStatusInput{
		RequestID:    requestID,
		ActorID:      actorID,
		TargetStatus: domainLeave.StatusCancelled,
	})
}

func (u *Usecase) Get(ctx context.Context, requestID string) (*domainLeave.LeaveRequest, error) {
	var out *domainLeave.LeaveRequest
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		req, err := r.Requests.GetByID(ctx, requestID)
		if err != nil {
			return err
		}
		out = req
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func checkTransition(current, target domainLeave.Status) error {
	if current == target {
		return fmt.Errorf("%w: %s", domainLeave.ErrAlreadyInStatus, current)
	}
	if target == domainLeave.StatusCancelled || current.InFlight() {
		return nil
	}
	return fmt.Errorf("%w: %s -> %s", domainLeave.ErrInvalidStatusTransition, current, target)
}

func (u *Usecase) authorize(ctx context.Context, r uow.Repos, req *domainLeave.LeaveRequest, in UpdateStatusInput) (*user.User, *user.User, error) {
	actor, err := r.Users.GetByID(ctx, in.ActorID)
	if errors.Is(err, user.ErrNotFound) {
		return nil, nil, fmt.Errorf("%w: unknown actor %s", domainLeave.ErrUnauthorized, in.ActorID)
	}
	if err != nil {
		return nil, nil, err
	}
	owner, err := r.Users.GetByID(ctx, req.UserID)
	if err != nil {
		return nil, nil, err
	}

	if actor.ID == owner.ID {
		if in.TargetStatus == domainLeave.StatusCancelled {
			return actor, owner, nil
		}
		return nil, nil, fmt.Errorf("%w: owners cannot %s their own request", domainLeave.ErrUnauthorized, verb(in.TargetStatus))
	}
	if actor.IsActive && actor.Role.IsAdminOverride() {
		return actor, owner, nil
	}
	if d := approver.Authorize(actor, owner); !d.Authorized {
		return nil, nil, fmt.Errorf("%w: %s", domainLeave.ErrUnauthorized, d.Reason)
	}
	return actor, owner, nil
}

func verb(s domainLeave.Status) string {
	switch s {
	case domainLeave.StatusApproved:
		return "approve"
	case domainLeave.StatusRejected:
		return "reject"
	}
	return "cancel"
}

// transition carries one status change inside its transaction.
type transition struct {
	u        *Usecase
	r        uow.Repos
	req      *domainLeave.LeaveRequest
	actor    *user.User
	owner    *user.User
	comments string
	outbox   []notification.Message
}

func (t *transition) approve(ctx context.Context) error {
	wf, err := governing(ctx, t.r, t.req.NumberOfDays)
	if err != nil {
		return err
	}
	if wf == nil {
		// No workflow covers the request: a single authorized approval is final.
		t.req.Metadata.RequiredApprovalLevels = 1
		return t.finalize(ctx, t.req.Metadata.CurrentApprovalLevel+1)
	}

	current := t.req.Metadata.CurrentApprovalLevel
	level, err := actorLevel(wf, t.actor.Role, current)
	if err != nil {
		return err
	}
	highest := wf.HighestLevel()
	t.req.Metadata.RequiredApprovalLevels = highest
	if level.Level >= highest {
		return t.finalize(ctx, level.Level)
	}

	t.record(level.Level)
	t.req.Status = domainLeave.StatusPartiallyApproved
	next, _ := wf.LevelAfter(level.Level)
	t.outbox = append(t.outbox, t.u.approvalRequested(ctx, t.r, t.req, t.owner, wf, level.Level)...)
	t.notifyOwner(notification.KindPartiallyApproved, level.Level)
	t.u.log.Debug("awaiting next approval level",
		zap.String("request_id", t.req.ID),
		zap.Int("next_level", next.Level),
	)
	return nil
}

// actorLevel picks the lowest level above current that accepts role and
// insists it is the next pending level.
func actorLevel(wf *domainWorkflow.ApprovalWorkflow, role user.Role, current int) (domainWorkflow.ApprovalLevel, error) {
	next, ok := wf.LevelAfter(current)
	if !ok {
		return domainWorkflow.ApprovalLevel{}, fmt.Errorf("%w: every level of %q is already approved", domainLeave.ErrInvalidStatusTransition, wf.Name)
	}
	for _, l := range wf.SortedLevels() {
		if l.Level <= current || !l.Accepts(role) {
			continue
		}
		if l.Level != next.Level {
			return domainWorkflow.ApprovalLevel{}, fmt.Errorf("%w: %s approves at level %d but level %d is pending",
				domainLeave.ErrInvalidStatusTransition, role, l.Level, next.Level)
		}
		return l, nil
	}
	if wf.AnyLevelAccepts(role) {
		return domainWorkflow.ApprovalLevel{}, fmt.Errorf("%w: %s levels are already approved (current level %d)",
			domainLeave.ErrInvalidStatusTransition, role, current)
	}
	return domainWorkflow.ApprovalLevel{}, fmt.Errorf("%w: insufficient role %s for any approval level", domainLeave.ErrUnauthorized, role)
}

func (t *transition) record(level int) {
	t.req.RecordApproval(domainLeave.ApprovalEntry{
		Level:        level,
		ApproverID:   t.actor.ID,
		ApproverName: t.actor.Name,
		ApprovedAt:   t.u.now().UTC(),
		Comments:     t.comments,
	})
	t.req.AppendComments(t.comments)
}

func (t *transition) finalize(ctx context.Context, level int) error {
	lt, err := t.r.LeaveTypes.GetByID(ctx, t.req.LeaveTypeID)
	if err != nil {
		return err
	}
	b, err := balance.GetOrCreate(ctx, t.r, t.req.UserID, lt, t.req.Year())
	if err != nil {
		return err
	}
	b.Debit(t.req.NumberOfDays)
	if err := t.r.Balances.Save(ctx, b); err != nil {
		return err
	}

	t.record(level)
	now := t.u.now().UTC()
	actorID := t.actor.ID
	t.req.Status = domainLeave.StatusApproved
	t.req.Metadata.IsFullyApproved = true
	t.req.ApproverID = &actorID
	t.req.ApprovedAt = &now
	t.notifyOwner(notification.KindApproved, level)
	return nil
}

func (t *transition) reject(ctx context.Context) error {
	if !t.actor.Role.IsAdminOverride() {
		wf, err := governing(ctx, t.r, t.req.NumberOfDays)
		if err != nil {
			return err
		}
		if wf != nil && !wf.AnyLevelAccepts(t.actor.Role) {
			return fmt.Errorf("%w: role %s cannot reject under %q", domainLeave.ErrUnauthorized, t.actor.Role, wf.Name)
		}
	}
	actorID := t.actor.ID
	t.req.Status = domainLeave.StatusRejected
	t.req.ApproverID = &actorID
	t.req.AppendComments(t.comments)
	t.notifyOwner(notification.KindRejected, t.req.Metadata.CurrentApprovalLevel)
	return nil
}

func (t *transition) cancel(ctx context.Context) error {
	if t.req.Status == domainLeave.StatusApproved {
		if t.req.StartDate.Before(t.u.today()) {
			return domainLeave.ErrCannotCancelStarted
		}
		lt, err := t.r.LeaveTypes.GetByID(ctx, t.req.LeaveTypeID)
		if err != nil {
			return err
		}
		b, err := balance.GetOrCreate(ctx, t.r, t.req.UserID, lt, t.req.Year())
		if err != nil {
			return err
		}
		b.Credit(t.req.NumberOfDays)
		if err := t.r.Balances.Save(ctx, b); err != nil {
			return err
		}
	}
	t.req.Status = domainLeave.StatusCancelled
	t.req.AppendComments(t.comments)

	if t.owner.ManagerID != nil && *t.owner.ManagerID != "" && *t.owner.ManagerID != t.actor.ID {
		mgr, err := t.r.Users.GetByID(ctx, *t.owner.ManagerID)
		switch {
		case err == nil:
			t.outbox = append(t.outbox, message(notification.KindCancelled, mgr, t.req, t.owner, t.actor, 0, t.comments))
		case errors.Is(err, user.ErrNotFound):
			t.u.log.Warn("manager of cancelling user not found", zap.String("manager_id", *t.owner.ManagerID))
		default:
			return err
		}
	}
	if t.actor.ID != t.owner.ID {
		t.notifyOwner(notification.KindCancelled, 0)
	}
	return nil
}

func (t *transition) notifyOwner(kind notification.Kind, level int) {
	t.outbox = append(t.outbox, message(kind, t.owner, t.req, t.owner, t.actor, level, t.comments))
}
