package leave

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	domainLeave "leaveflow/internal/domain/leave"
	"leaveflow/internal/domain/leavetype"
	"leaveflow/internal/domain/notification"
	"leaveflow/internal/domain/uow"
	"leaveflow/internal/domain/user"
	domainWorkflow "leaveflow/internal/domain/workflow"
	"leaveflow/internal/usecase/balance"
	"leaveflow/internal/usecase/calendar"
	"leaveflow/internal/usecase/workflow"
	"leaveflow/pkg/id"
)

var halfDay = decimal.RequireFromString("0.5")

// blocking are the statuses that reserve a date range for their owner.
var blocking = []domainLeave.Status{
	domainLeave.StatusPending,
	domainLeave.StatusPartiallyApproved,
	domainLeave.StatusApproved,
}

type Usecase struct {
	uow    uow.UnitOfWork
	sender notification.Sender
	log    *zap.Logger
	now    func() time.Time
}

type Option func(*Usecase)

// WithClock replaces time.Now, which decides "today" for date checks.
func WithClock(now func() time.Time) Option {
	return func(u *Usecase) { u.now = now }
}

// NewUsecase: sender may be nil, in which case nothing is delivered.
func NewUsecase(tx uow.UnitOfWork, sender notification.Sender, log *zap.Logger, opts ...Option) *Usecase {
	if log == nil {
		log = zap.NewNop()
	}
	u := &Usecase{uow: tx, sender: sender, log: log.Named("leave"), now: time.Now}
	for _, o := range opts {
		o(u)
	}
	return u
}

func (u *Usecase) today() time.Time { return domainLeave.DateOnly(u.now()) }

func (u *Usecase) Create(ctx context.Context, in CreateInput) (*domainLeave.LeaveRequest, error) {
	reqType, err := domainLeave.ParseRequestType(string(in.RequestType))
	if err != nil {
		return nil, err
	}
	start, end := domainLeave.DateOnly(in.StartDate), domainLeave.DateOnly(in.EndDate)

	var (
		out    *domainLeave.LeaveRequest
		outbox []notification.Message
	)
	err = u.uow.WithinTx(ctx, func(r uow.Repos) error {
		outbox = nil
		requester, err := r.Users.GetByIDForUpdate(ctx, in.ActorID)
		if errors.Is(err, user.ErrNotFound) {
			return fmt.Errorf("%w: unknown requester %s", domainLeave.ErrUnauthorized, in.ActorID)
		}
		if err != nil {
			return err
		}
		if !requester.IsActive {
			return fmt.Errorf("%w: requester %s is inactive", domainLeave.ErrUnauthorized, requester.ID)
		}

		lt, err := r.LeaveTypes.GetByID(ctx, in.LeaveTypeID)
		if err != nil {
			return err
		}
		if err := validateCreate(lt, requester, reqType, start, end, u.today()); err != nil {
			return err
		}

		existing, err := r.Requests.FindOverlapping(ctx, requester.ID, start, end, blocking)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			return fmt.Errorf("%w: %s (%s..%s, %s)", domainLeave.ErrOverlappingRequest,
				existing[0].ID, existing[0].StartDate.Format(time.DateOnly), existing[0].EndDate.Format(time.DateOnly), existing[0].Status)
		}

		days := halfDay
		if !reqType.IsHalfDay() {
			if days, err = calendar.NewService(r.Holidays).BusinessDays(ctx, start, end); err != nil {
				return err
			}
			if days.IsZero() {
				return domainLeave.ErrNoWorkingDays
			}
		}

		b, err := balance.GetOrCreate(ctx, r, requester.ID, lt, start.Year())
		if err != nil {
			return err
		}
		if err := balance.ValidateSufficiency(b, lt, days); err != nil {
			return err
		}

		wf, err := governing(ctx, r, days)
		if err != nil {
			return err
		}

		req := &domainLeave.LeaveRequest{
			ID:           id.NewID(),
			UserID:       requester.ID,
			LeaveTypeID:  lt.ID,
			StartDate:    start,
			EndDate:      end,
			RequestType:  reqType,
			NumberOfDays: days,
			Reason:       strings.TrimSpace(in.Reason),
			Status:       domainLeave.StatusPending,
			Metadata: domainLeave.Metadata{
				RequiredApprovalLevels: requiredLevels(wf),
				ApprovalHistory:        []domainLeave.ApprovalEntry{},
			},
		}
		if err := r.Requests.Create(ctx, req); err != nil {
			return err
		}
		out = req
		outbox = u.approvalRequested(ctx, r, req, requester, wf, 0)
		return nil
	})
	if err != nil {
		u.logFailure("create leave request", err, zap.String("actor_id", in.ActorID))
		return nil, err
	}

	u.log.Info("leave request created",
		zap.String("request_id", out.ID),
		zap.String("user_id", out.UserID),
		zap.String("number_of_days", out.NumberOfDays.String()),
	)
	u.dispatch(ctx, outbox)
	return out, nil
}

func validateCreate(lt *leavetype.LeaveType, requester *user.User, reqType domainLeave.RequestType, start, end, today time.Time) error {
	switch {
	case !lt.IsActive:
		return domainLeave.ErrLeaveTypeInactive
	case !lt.AppliesTo(requester.Gender):
		return domainLeave.ErrGenderMismatch
	case reqType.IsHalfDay() && !lt.IsHalfDayAllowed:
		return domainLeave.ErrHalfDayNotAllowed
	case start.After(end):
		return domainLeave.ErrInvalidDateRange
	case start.Before(today):
		return domainLeave.ErrPastStartDate
	case reqType.IsHalfDay() && !start.Equal(end):
		return domainLeave.ErrHalfDayMultiDay
	}
	return nil
}

// governing returns the workflow for days, or nil when none covers it.
// A misconfigured workflow set is an error.
func governing(ctx context.Context, r uow.Repos, days decimal.Decimal) (*domainWorkflow.ApprovalWorkflow, error) {
	wf, err := workflow.Select(ctx, r.Workflows, days)
	if errors.Is(err, domainWorkflow.ErrNotFound) {
		return nil, nil
	}
	return wf, err
}

func requiredLevels(wf *domainWorkflow.ApprovalWorkflow) int {
	if wf == nil {
		return 1
	}
	return wf.HighestLevel()
}

func (u *Usecase) logFailure(op string, err error, fields ...zap.Field) {
	fields = append(fields, zap.Error(err))
	if errors.Is(err, domainWorkflow.ErrConfiguration) {
		u.log.Error(op+": workflow configuration inconsistent", fields...)
		return
	}
	u.log.Debug(op+" rejected", fields...)
}
