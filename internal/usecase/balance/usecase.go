package balance

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	domainBalance "leaveflow/internal/domain/balance"
	"leaveflow/internal/domain/leave"
	"leaveflow/internal/domain/leavetype"
	"leaveflow/internal/domain/uow"
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
	return &Usecase{uow: tx, log: log.Named("balance")}
}

// GetOrCreate returns the (user, leave type, year) balance, locked for the
// rest of the transaction, creating it from the type's default days if absent.
func GetOrCreate(ctx context.Context, r uow.Repos, userID string, lt *leavetype.LeaveType, year int) (*domainBalance.LeaveBalance, error) {
	b, err := r.Balances.GetForUpdate(ctx, userID, lt.ID, year)
	if err == nil {
		return b, nil
	}
	if !errors.Is(err, domainBalance.ErrNotFound) {
		return nil, err
	}
	b = &domainBalance.LeaveBalance{
		ID:           id.NewID(),
		UserID:       userID,
		LeaveTypeID:  lt.ID,
		Year:         year,
		Balance:      lt.DefaultDays,
		Used:         decimal.Zero,
		CarryForward: decimal.Zero,
	}
	if err := r.Balances.Create(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// ValidateSufficiency fails with ErrInsufficientBalance when requested exceeds
// the available balance of a paid leave type.
func ValidateSufficiency(b *domainBalance.LeaveBalance, lt *leavetype.LeaveType, requested decimal.Decimal) error {
	return b.CheckSufficient(requested, lt.IsPaidLeave)
}

// GetAvailableBalance does not create a missing balance; it reports what a
// freshly created one would hold.
func (u *Usecase) GetAvailableBalance(ctx context.Context, userID, leaveTypeID string, year int) (decimal.Decimal, error) {
	var avail decimal.Decimal
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		lt, err := r.LeaveTypes.GetByID(ctx, leaveTypeID)
		if err != nil {
			return err
		}
		b, err := r.Balances.Get(ctx, userID, leaveTypeID, year)
		switch {
		case errors.Is(err, domainBalance.ErrNotFound):
			avail = lt.DefaultDays
			return nil
		case err != nil:
			return err
		}
		avail = b.Available()
		return nil
	})
	if err != nil {
		return decimal.Zero, err
	}
	return avail, nil
}

// BulkProvisionBalances ensures every active user the leave type applies to
// has a balance for year. Existing balances are reset only when resetExisting
// is set; users of a non-matching gender are skipped. Only SuperAdmin and HR
// actors may provision.
func (u *Usecase) BulkProvisionBalances(ctx context.Context, actorID, leaveTypeID string, year int, resetExisting bool) (ProvisionResult, error) {
	var res ProvisionResult
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		res = ProvisionResult{}
		if _, err := approver.RequireAdmin(ctx, r.Users, actorID); err != nil {
			return err
		}
		lt, err := r.LeaveTypes.GetByID(ctx, leaveTypeID)
		if err != nil {
			return err
		}
		if !lt.IsActive {
			return leave.ErrLeaveTypeInactive
		}
		users, err := r.Users.ListActive(ctx)
		if err != nil {
			return err
		}
		for _, usr := range users {
			if !lt.AppliesTo(usr.Gender) {
				res.Skipped++
				continue
			}
			carry, err := carryForwardInto(ctx, r, usr.ID, lt, year)
			if err != nil {
				return err
			}

			b, err := r.Balances.GetForUpdate(ctx, usr.ID, lt.ID, year)
			switch {
			case errors.Is(err, domainBalance.ErrNotFound):
				nb := &domainBalance.LeaveBalance{
					ID:           id.NewID(),
					UserID:       usr.ID,
					LeaveTypeID:  lt.ID,
					Year:         year,
					Balance:      lt.DefaultDays,
					Used:         decimal.Zero,
					CarryForward: carry,
				}
				if err := r.Balances.Create(ctx, nb); err != nil {
					return fmt.Errorf("create balance for user %s: %w", usr.ID, err)
				}
				res.Created++
			case err != nil:
				return err
			case resetExisting:
				b.Balance = lt.DefaultDays
				b.Used = decimal.Zero
				b.CarryForward = carry
				if err := r.Balances.Save(ctx, b); err != nil {
					return fmt.Errorf("reset balance for user %s: %w", usr.ID, err)
				}
				res.Updated++
			default:
				res.Skipped++
			}
		}
		return nil
	})
	if err != nil {
		u.log.Warn("provision balances failed", zap.String("actor_id", actorID), zap.String("leave_type_id", leaveTypeID), zap.Error(err))
		return ProvisionResult{}, err
	}
	u.log.Info("balances provisioned",
		zap.String("actor_id", actorID),
		zap.String("leave_type_id", leaveTypeID),
		zap.Int("year", year),
		zap.Bool("reset_existing", resetExisting),
		zap.Int("created", res.Created),
		zap.Int("updated", res.Updated),
		zap.Int("skipped", res.Skipped),
	)
	return res, nil
}

// RollForward recomputes the carry-forward of the year balance from the
// prior year's remainder. Like provisioning it is reserved for SuperAdmin and HR.
func (u *Usecase) RollForward(ctx context.Context, actorID, userID, leaveTypeID string, year int) (*domainBalance.LeaveBalance, error) {
	var out *domainBalance.LeaveBalance
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if _, err := approver.RequireAdmin(ctx, r.Users, actorID); err != nil {
			return err
		}
		lt, err := r.LeaveTypes.GetByID(ctx, leaveTypeID)
		if err != nil {
			return err
		}
		carry, err := carryForwardInto(ctx, r, userID, lt, year)
		if err != nil {
			return err
		}
		b, err := GetOrCreate(ctx, r, userID, lt, year)
		if err != nil {
			return err
		}
		b.CarryForward = carry
		if err := r.Balances.Save(ctx, b); err != nil {
			return err
		}
		out = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.log.Info("carry-forward applied",
		zap.String("actor_id", actorID),
		zap.String("user_id", userID),
		zap.String("leave_type_id", leaveTypeID),
		zap.Int("year", year),
		zap.String("carry_forward", out.CarryForward.String()),
	)
	return out, nil
}

func carryForwardInto(ctx context.Context, r uow.Repos, userID string, lt *leavetype.LeaveType, year int) (decimal.Decimal, error) {
	if !lt.IsCarryForward {
		return decimal.Zero, nil
	}
	prior, err := r.Balances.Get(ctx, userID, lt.ID, year-1)
	switch {
	case errors.Is(err, domainBalance.ErrNotFound):
		return decimal.Zero, nil
	case err != nil:
		return decimal.Zero, err
	}
	return domainBalance.CarryForwardFor(lt.IsCarryForward, lt.MaxCarryForwardDays, prior), nil
}
