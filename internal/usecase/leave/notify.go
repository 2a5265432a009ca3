package leave

import (
	"context"
	"errors"

	"go.uber.org/zap"

	domainLeave "leaveflow/internal/domain/leave"
	"leaveflow/internal/domain/notification"
	"leaveflow/internal/domain/uow"
	"leaveflow/internal/domain/user"
	domainWorkflow "leaveflow/internal/domain/workflow"
	"leaveflow/internal/usecase/approver"
)

// approvalRequested addresses whoever must sign off at the level after
// current. Without a workflow the requester's manager is asked. An
// unresolvable approver is logged, never returned.
func (u *Usecase) approvalRequested(ctx context.Context, r uow.Repos, req *domainLeave.LeaveRequest, requester *user.User, wf *domainWorkflow.ApprovalWorkflow, current int) []notification.Message {
	res := approver.NewResolver(r.Users)

	var (
		recipients []user.User
		level      = current + 1
		err        error
	)
	if wf == nil {
		var mgr *user.User
		mgr, err = res.Resolve(ctx, requester.ID, domainWorkflow.ApproverManager)
		if err == nil {
			recipients = []user.User{*mgr}
		}
	} else {
		next, ok := wf.LevelAfter(current)
		if !ok {
			return nil
		}
		level = next.Level
		recipients, err = res.ResolveLevel(ctx, requester, next)
	}
	if err != nil {
		fields := []zap.Field{zap.String("request_id", req.ID), zap.Int("level", level), zap.Error(err)}
		if errors.Is(err, approver.ErrNotResolved) {
			u.log.Warn("approver not resolved", fields...)
		} else {
			u.log.Warn("approver lookup failed", fields...)
		}
		return nil
	}

	out := make([]notification.Message, 0, len(recipients))
	for i := range recipients {
		out = append(out, message(notification.KindApprovalRequested, &recipients[i], req, requester, nil, level, ""))
	}
	return out
}

func message(kind notification.Kind, to *user.User, req *domainLeave.LeaveRequest, requester, actor *user.User, level int, comments string) notification.Message {
	m := notification.Message{
		Kind:           kind,
		RecipientName:  to.Name,
		RecipientEmail: to.Email,
		RequestID:      req.ID,
		RequesterName:  requester.Name,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
		NumberOfDays:   req.NumberOfDays,
		Level:          level,
		Comments:       comments,
	}
	if actor != nil {
		m.ActorName = actor.Name
	}
	return m
}

// dispatch runs after commit; failures are logged and dropped.
func (u *Usecase) dispatch(ctx context.Context, outbox []notification.Message) {
	if u.sender == nil {
		return
	}
	for _, m := range outbox {
		if m.RecipientEmail == "" {
			u.log.Debug("notification skipped, recipient has no email",
				zap.String("kind", string(m.Kind)), zap.String("request_id", m.RequestID))
			continue
		}
		if err := u.sender.Send(ctx, m); err != nil {
			u.log.Warn("notification failed",
				zap.String("kind", string(m.Kind)),
				zap.String("request_id", m.RequestID),
				zap.String("recipient", m.RecipientEmail),
				zap.Error(err),
			)
		}
	}
}
