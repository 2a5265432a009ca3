package balance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainBalance "leaveflow/internal/domain/balance"
	"leaveflow/internal/domain/leave"
	"leaveflow/internal/domain/leavetype"
	"leaveflow/internal/domain/uow"
	"leaveflow/internal/domain/user"
	"leaveflow/internal/testutil/memstore"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func annual() leavetype.LeaveType {
	return leavetype.LeaveType{
		ID:                  "lt-annual",
		Name:                "Annual",
		DefaultDays:         dec("20"),
		IsCarryForward:      true,
		MaxCarryForwardDays: dec("5"),
		IsPaidLeave:         true,
		IsActive:            true,
	}
}

func TestGetOrCreate(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	lt := annual()

	var first *domainBalance.LeaveBalance
	require.NoError(t, s.WithinTx(ctx, func(r uow.Repos) error {
		var err error
		first, err = GetOrCreate(ctx, r, "u1", &lt, 2026)
		return err
	}))
	assert.True(t, first.Balance.Equal(dec("20")))
	assert.True(t, first.Used.IsZero())
	assert.True(t, first.CarryForward.IsZero())

	require.NoError(t, s.WithinTx(ctx, func(r uow.Repos) error {
		again, err := GetOrCreate(ctx, r, "u1", &lt, 2026)
		if err != nil {
			return err
		}
		assert.Equal(t, first.ID, again.ID)
		return nil
	}))
}

func TestValidateSufficiency(t *testing.T) {
	b := &domainBalance.LeaveBalance{Balance: dec("8")}
	paid := annual()
	unpaid := annual()
	unpaid.IsPaidLeave = false

	err := ValidateSufficiency(b, &paid, dec("10"))
	assert.ErrorIs(t, err, domainBalance.ErrInsufficientBalance)
	assert.NoError(t, ValidateSufficiency(b, &unpaid, dec("10")))
	assert.NoError(t, ValidateSufficiency(b, &paid, dec("8")))
}

func TestGetAvailableBalance(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	lt := annual()
	s.PutLeaveType(lt)
	s.PutBalance(domainBalance.LeaveBalance{ID: "b1", UserID: "u1", LeaveTypeID: lt.ID, Year: 2026, Balance: dec("20"), Used: dec("4.5"), CarryForward: dec("2")})
	uc := NewUsecase(s, nil)

	got, err := uc.GetAvailableBalance(ctx, "u1", lt.ID, 2026)
	require.NoError(t, err)
	assert.True(t, got.Equal(dec("17.5")), "got %s", got)

	got, err = uc.GetAvailableBalance(ctx, "u2", lt.ID, 2026)
	require.NoError(t, err)
	assert.True(t, got.Equal(dec("20")))
	_, exists := s.Balance("u2", lt.ID, 2026)
	assert.False(t, exists, "read must not create a balance")

	_, err = uc.GetAvailableBalance(ctx, "u1", "missing", 2026)
	assert.ErrorIs(t, err, leavetype.ErrNotFound)
}

func TestBulkProvisionBalances(t *testing.T) {
	ctx := context.Background()
	female := user.GenderFemale
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	setup := func() (*memstore.Store, leavetype.LeaveType) {
		s := memstore.New()
		lt := annual()
		lt.ID = "lt-maternity"
		lt.Name = "Maternity"
		lt.ApplicableGender = &female
		s.PutLeaveType(lt)
		s.PutUser(user.User{ID: "hr", Role: user.RoleHR, Gender: user.GenderMale, IsActive: true, CreatedAt: base})
		s.PutUser(user.User{ID: "alice", Gender: user.GenderFemale, IsActive: true, CreatedAt: base})
		s.PutUser(user.User{ID: "bob", Gender: user.GenderMale, IsActive: true, CreatedAt: base.Add(time.Hour)})
		s.PutUser(user.User{ID: "carol", Gender: user.GenderFemale, IsActive: true, CreatedAt: base.Add(2 * time.Hour)})
		s.PutUser(user.User{ID: "dora", Gender: user.GenderFemale, IsActive: false, CreatedAt: base.Add(3 * time.Hour)})
		s.PutBalance(domainBalance.LeaveBalance{ID: "prior", UserID: "alice", LeaveTypeID: lt.ID, Year: 2025, Balance: dec("20"), Used: dec("18")})
		s.PutBalance(domainBalance.LeaveBalance{ID: "existing", UserID: "carol", LeaveTypeID: lt.ID, Year: 2026, Balance: dec("3"), Used: dec("1")})
		return s, lt
	}

	t.Run("creates missing and skips gender mismatch", func(t *testing.T) {
		s, lt := setup()
		res, err := NewUsecase(s, nil).BulkProvisionBalances(ctx, "hr", lt.ID, 2026, false)
		require.NoError(t, err)
		assert.Equal(t, ProvisionResult{Created: 1, Updated: 0, Skipped: 3}, res)

		alice, ok := s.Balance("alice", lt.ID, 2026)
		require.True(t, ok)
		assert.True(t, alice.Balance.Equal(dec("20")))
		assert.True(t, alice.CarryForward.Equal(dec("2")))

		_, ok = s.Balance("bob", lt.ID, 2026)
		assert.False(t, ok)
		_, ok = s.Balance("hr", lt.ID, 2026)
		assert.False(t, ok)
		_, ok = s.Balance("dora", lt.ID, 2026)
		assert.False(t, ok)

		carol, _ := s.Balance("carol", lt.ID, 2026)
		assert.True(t, carol.Balance.Equal(dec("3")), "existing balance untouched")
	})

	t.Run("reset existing", func(t *testing.T) {
		s, lt := setup()
		res, err := NewUsecase(s, nil).BulkProvisionBalances(ctx, "hr", lt.ID, 2026, true)
		require.NoError(t, err)
		assert.Equal(t, ProvisionResult{Created: 1, Updated: 1, Skipped: 2}, res)

		carol, _ := s.Balance("carol", lt.ID, 2026)
		assert.True(t, carol.Balance.Equal(dec("20")))
		assert.True(t, carol.Used.IsZero())
	})

	t.Run("inactive leave type", func(t *testing.T) {
		s, lt := setup()
		lt.IsActive = false
		s.PutLeaveType(lt)
		_, err := NewUsecase(s, nil).BulkProvisionBalances(ctx, "hr", lt.ID, 2026, false)
		assert.ErrorIs(t, err, leave.ErrLeaveTypeInactive)
	})

	t.Run("failure rolls back every balance", func(t *testing.T) {
		s, lt := setup()
		s.FailOn("Balances.Save", errors.New("disk full"))
		_, err := NewUsecase(s, nil).BulkProvisionBalances(ctx, "hr", lt.ID, 2026, true)
		require.Error(t, err)
		_, ok := s.Balance("alice", lt.ID, 2026)
		assert.False(t, ok, "created balance must be rolled back")
	})
}

func TestRollForward(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name      string
		carry     bool
		prior     *domainBalance.LeaveBalance
		wantCarry string
	}{
		{"capped remainder", true, &domainBalance.LeaveBalance{Balance: dec("20"), Used: dec("10")}, "5"},
		{"remainder below cap", true, &domainBalance.LeaveBalance{Balance: dec("20"), Used: dec("18")}, "2"},
		{"overdrawn prior clamps to zero", true, &domainBalance.LeaveBalance{Balance: dec("20"), Used: dec("22")}, "0"},
		{"no prior year", true, nil, "0"},
		{"carry-forward disabled", false, &domainBalance.LeaveBalance{Balance: dec("20"), Used: dec("0")}, "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := memstore.New()
			s.PutUser(user.User{ID: "hr", Role: user.RoleHR, IsActive: true})
			lt := annual()
			lt.IsCarryForward = tt.carry
			s.PutLeaveType(lt)
			if tt.prior != nil {
				p := *tt.prior
				p.ID, p.UserID, p.LeaveTypeID, p.Year = "prior", "u1", lt.ID, 2025
				s.PutBalance(p)
			}
			b, err := NewUsecase(s, nil).RollForward(ctx, "hr", "u1", lt.ID, 2026)
			require.NoError(t, err)
			assert.True(t, b.CarryForward.Equal(dec(tt.wantCarry)), "carry = %s", b.CarryForward)

			stored, ok := s.Balance("u1", lt.ID, 2026)
			require.True(t, ok)
			assert.True(t, stored.CarryForward.Equal(dec(tt.wantCarry)))
		})
	}
}

func TestAdministrationRequiresAdminRole(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	lt := annual()
	s.PutLeaveType(lt)
	s.PutUser(user.User{ID: "admin", Role: user.RoleSuperAdmin, IsActive: true})
	s.PutUser(user.User{ID: "mgr", Role: user.RoleManager, IsActive: true})
	s.PutUser(user.User{ID: "emp", Role: user.RoleEmployee, IsActive: true})
	s.PutBalance(domainBalance.LeaveBalance{ID: "b1", UserID: "emp", LeaveTypeID: lt.ID, Year: 2026, Balance: dec("20"), Used: dec("6")})
	uc := NewUsecase(s, nil)

	for _, actor := range []string{"emp", "mgr", "ghost"} {
		_, err := uc.BulkProvisionBalances(ctx, actor, lt.ID, 2026, true)
		assert.ErrorIs(t, err, leave.ErrUnauthorized, actor)
		_, err = uc.RollForward(ctx, actor, "emp", lt.ID, 2026)
		assert.ErrorIs(t, err, leave.ErrUnauthorized, actor)
	}
	b, _ := s.Balance("emp", lt.ID, 2026)
	assert.True(t, b.Used.Equal(dec("6")), "a refused reset must leave used alone")

	res, err := uc.BulkProvisionBalances(ctx, "admin", lt.ID, 2026, true)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Updated)
	b, _ = s.Balance("emp", lt.ID, 2026)
	assert.True(t, b.Used.IsZero())
}
