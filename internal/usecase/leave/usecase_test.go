package leave

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainBalance "leaveflow/internal/domain/balance"
	"leaveflow/internal/domain/holiday"
	domainLeave "leaveflow/internal/domain/leave"
	"leaveflow/internal/domain/leavetype"
	"leaveflow/internal/domain/notification"
	"leaveflow/internal/domain/user"
	domainWorkflow "leaveflow/internal/domain/workflow"
	"leaveflow/internal/testutil/memstore"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func d(m time.Month, day int) time.Time { return time.Date(2026, m, day, 0, 0, 0, 0, time.UTC) }

func ref(id string) *string { return &id }

// Monday 2026-03-02, mid-morning.
var now = time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)

type recordingSender struct {
	mu   sync.Mutex
	sent []notification.Message
	err  error
}

func (s *recordingSender) Send(_ context.Context, m notification.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, m)
	return s.err
}

func (s *recordingSender) kinds(to string) []notification.Kind {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []notification.Kind
	for _, m := range s.sent {
		if m.RecipientEmail == to {
			out = append(out, m.Kind)
		}
	}
	return out
}

func (s *recordingSender) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = nil
}

func person(id string, role user.Role, dept string) user.User {
	return user.User{ID: id, Name: id, Email: id + "@example.com", Role: role, DepartmentID: dept, Gender: user.GenderMale, IsActive: true, CreatedAt: now}
}

func fixture(t *testing.T) (*memstore.Store, *Usecase, *recordingSender) {
	t.Helper()
	s := memstore.New()

	s.PutUser(person("admin", user.RoleSuperAdmin, ""))
	s.PutUser(person("hr", user.RoleHR, "eng"))
	s.PutUser(person("mgr", user.RoleManager, "eng"))
	s.PutUser(person("lead", user.RoleTeamLead, "eng"))
	s.PutUser(person("outsider", user.RoleManager, "ops"))
	emp := person("emp", user.RoleEmployee, "eng")
	emp.Gender = user.GenderFemale
	emp.ManagerID = ref("mgr")
	emp.TeamLeadID = ref("lead")
	s.PutUser(emp)
	inactive := person("gone", user.RoleEmployee, "eng")
	inactive.IsActive = false
	s.PutUser(inactive)

	female := user.GenderFemale
	male := user.GenderMale
	s.PutLeaveType(leavetype.LeaveType{ID: "annual", Name: "Annual", DefaultDays: dec("20"), IsCarryForward: true, MaxCarryForwardDays: dec("5"), IsHalfDayAllowed: true, IsPaidLeave: true, IsActive: true})
	s.PutLeaveType(leavetype.LeaveType{ID: "sick", Name: "Sick", DefaultDays: dec("10"), IsPaidLeave: true, IsActive: true})
	s.PutLeaveType(leavetype.LeaveType{ID: "unpaid", Name: "Unpaid", DefaultDays: dec("0"), IsPaidLeave: false, IsActive: true})
	s.PutLeaveType(leavetype.LeaveType{ID: "paternity", Name: "Paternity", DefaultDays: dec("5"), ApplicableGender: &male, IsPaidLeave: true, IsActive: true})
	s.PutLeaveType(leavetype.LeaveType{ID: "maternity", Name: "Maternity", DefaultDays: dec("90"), ApplicableGender: &female, IsPaidLeave: true, IsActive: true})
	s.PutLeaveType(leavetype.LeaveType{ID: "retired", Name: "Retired", DefaultDays: dec("5"), IsPaidLeave: true, IsActive: false})

	s.PutWorkflow(domainWorkflow.ApprovalWorkflow{
		ID: "short", Name: "Short", MinDays: dec("0.5"), MaxDays: dec("3"), IsActive: true,
		Levels: []domainWorkflow.ApprovalLevel{
			{Level: 1, ApproverType: domainWorkflow.ApproverTeamLead, Roles: []user.Role{user.RoleTeamLead, user.RoleManager}},
		},
	})
	s.PutWorkflow(domainWorkflow.ApprovalWorkflow{
		ID: "medium", Name: "Medium", MinDays: dec("3.5"), MaxDays: dec("7"), IsActive: true,
		Levels: []domainWorkflow.ApprovalLevel{
			{Level: 2, ApproverType: domainWorkflow.ApproverManager, Roles: []user.Role{user.RoleManager}},
			{Level: 1, ApproverType: domainWorkflow.ApproverTeamLead, Roles: []user.Role{user.RoleTeamLead}},
		},
	})

	sender := &recordingSender{}
	return s, NewUsecase(s, sender, nil, WithClock(func() time.Time { return now })), sender
}

func create(t *testing.T, uc *Usecase, lt string, start, end time.Time) *domainLeave.LeaveRequest {
	t.Helper()
	req, err := uc.Create(context.Background(), CreateInput{ActorID: "emp", LeaveTypeID: lt, StartDate: start, EndDate: end, Reason: "trip"})
	require.NoError(t, err)
	return req
}

func act(uc *Usecase, id, actor string, target domainLeave.Status, comments string) (*domainLeave.LeaveRequest, error) {
	return uc.UpdateStatus(context.Background(), UpdateStatusInput{RequestID: id, ActorID: actor, TargetStatus: target, Comments: comments})
}

func used(t *testing.T, s *memstore.Store, lt string) decimal.Decimal {
	t.Helper()
	b, ok := s.Balance("emp", lt, 2026)
	require.True(t, ok, "balance must exist")
	return b.Used
}

func TestCreate_Validation(t *testing.T) {
	tests := []struct {
		name    string
		in      CreateInput
		wantErr error
	}{
		{"unknown leave type", CreateInput{LeaveTypeID: "nope", StartDate: d(3, 3), EndDate: d(3, 3)}, leavetype.ErrNotFound},
		{"inactive leave type", CreateInput{LeaveTypeID: "retired", StartDate: d(3, 3), EndDate: d(3, 3)}, domainLeave.ErrLeaveTypeInactive},
		{"gender mismatch", CreateInput{LeaveTypeID: "paternity", StartDate: d(3, 3), EndDate: d(3, 3)}, domainLeave.ErrGenderMismatch},
		{"half day not allowed", CreateInput{LeaveTypeID: "sick", StartDate: d(3, 3), EndDate: d(3, 3), RequestType: domainLeave.HalfDayMorning}, domainLeave.ErrHalfDayNotAllowed},
		{"start after end", CreateInput{LeaveTypeID: "annual", StartDate: d(3, 5), EndDate: d(3, 3)}, domainLeave.ErrInvalidDateRange},
		{"start in the past", CreateInput{LeaveTypeID: "annual", StartDate: d(3, 1), EndDate: d(3, 3)}, domainLeave.ErrPastStartDate},
		{"half day spanning days", CreateInput{LeaveTypeID: "annual", StartDate: d(3, 3), EndDate: d(3, 4), RequestType: domainLeave.HalfDayAfternoon}, domainLeave.ErrHalfDayMultiDay},
		{"weekend only", CreateInput{LeaveTypeID: "annual", StartDate: d(3, 7), EndDate: d(3, 8)}, domainLeave.ErrNoWorkingDays},
		{"bad request type", CreateInput{LeaveTypeID: "annual", StartDate: d(3, 3), EndDate: d(3, 3), RequestType: "quarter"}, domainLeave.ErrInvalidRequestType},
		{"unknown requester", CreateInput{ActorID: "ghost", LeaveTypeID: "annual", StartDate: d(3, 3), EndDate: d(3, 3)}, domainLeave.ErrUnauthorized},
		{"inactive requester", CreateInput{ActorID: "gone", LeaveTypeID: "annual", StartDate: d(3, 3), EndDate: d(3, 3)}, domainLeave.ErrUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, uc, sender := fixture(t)
			if tt.in.ActorID == "" {
				tt.in.ActorID = "emp"
			}
			_, err := uc.Create(context.Background(), tt.in)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Zero(t, s.RequestCount())
			assert.Empty(t, sender.sent)
		})
	}
}

func TestCreate_StartTodayIsAllowed(t *testing.T) {
	_, uc, _ := fixture(t)
	req := create(t, uc, "annual", d(3, 2), d(3, 2))
	assert.True(t, req.NumberOfDays.Equal(dec("1")))
}

func TestCreate_HalfDay(t *testing.T) {
	s, uc, sender := fixture(t)
	req, err := uc.Create(context.Background(), CreateInput{
		ActorID: "emp", LeaveTypeID: "annual", StartDate: d(3, 3), EndDate: d(3, 3), RequestType: domainLeave.HalfDayMorning,
	})
	require.NoError(t, err)
	assert.True(t, req.NumberOfDays.Equal(dec("0.5")))
	assert.Equal(t, domainLeave.StatusPending, req.Status)
	assert.Equal(t, 1, req.Metadata.RequiredApprovalLevels)
	assert.True(t, used(t, s, "annual").IsZero(), "nothing is debited on create")
	assert.Equal(t, []notification.Kind{notification.KindApprovalRequested}, sender.kinds("lead@example.com"))
}

func TestCreate_BusinessDaysExcludeHolidays(t *testing.T) {
	s, uc, _ := fixture(t)
	s.PutHoliday(holidayOn(d(3, 11)))
	req := create(t, uc, "annual", d(3, 9), d(3, 15))
	assert.True(t, req.NumberOfDays.Equal(dec("4")), "got %s", req.NumberOfDays)
	assert.Equal(t, 2, req.Metadata.RequiredApprovalLevels)
}

func TestCreate_InsufficientBalance(t *testing.T) {
	s, uc, _ := fixture(t)
	s.PutBalance(domainBalance.LeaveBalance{ID: "b-annual", UserID: "emp", LeaveTypeID: "annual", Year: 2026, Balance: dec("20"), Used: dec("12")})

	_, err := uc.Create(context.Background(), CreateInput{ActorID: "emp", LeaveTypeID: "annual", StartDate: d(3, 2), EndDate: d(3, 13)})
	assert.ErrorIs(t, err, domainBalance.ErrInsufficientBalance)

	req, err := uc.Create(context.Background(), CreateInput{ActorID: "emp", LeaveTypeID: "unpaid", StartDate: d(3, 2), EndDate: d(3, 13)})
	require.NoError(t, err, "unpaid leave bypasses the balance check")
	assert.True(t, req.NumberOfDays.Equal(dec("10")))
}

func TestCreate_Overlap(t *testing.T) {
	s, uc, _ := fixture(t)
	s.PutRequest(domainLeave.LeaveRequest{ID: "old-rejected", UserID: "emp", StartDate: d(3, 3), EndDate: d(3, 5), Status: domainLeave.StatusRejected})
	s.PutRequest(domainLeave.LeaveRequest{ID: "other-user", UserID: "lead", StartDate: d(3, 3), EndDate: d(3, 5), Status: domainLeave.StatusApproved})
	first := create(t, uc, "annual", d(3, 3), d(3, 5))

	for _, st := range []domainLeave.Status{domainLeave.StatusPending, domainLeave.StatusPartiallyApproved, domainLeave.StatusApproved} {
		stored, _ := s.Request(first.ID)
		stored.Status = st
		s.PutRequest(stored)
		_, err := uc.Create(context.Background(), CreateInput{ActorID: "emp", LeaveTypeID: "annual", StartDate: d(3, 5), EndDate: d(3, 6)})
		assert.ErrorIs(t, err, domainLeave.ErrOverlappingRequest, "status %s must block", st)
	}

	stored, _ := s.Request(first.ID)
	stored.Status = domainLeave.StatusCancelled
	s.PutRequest(stored)
	create(t, uc, "annual", d(3, 5), d(3, 6))
}

func TestApprove_SingleLevelWorkflow(t *testing.T) {
	s, uc, sender := fixture(t)
	req := create(t, uc, "annual", d(3, 3), d(3, 4))
	sender.reset()

	got, err := act(uc, req.ID, "mgr", domainLeave.StatusApproved, "enjoy")
	require.NoError(t, err)
	assert.Equal(t, domainLeave.StatusApproved, got.Status)
	assert.True(t, got.Metadata.IsFullyApproved)
	assert.Equal(t, 1, got.Metadata.CurrentApprovalLevel)
	require.NotNil(t, got.ApproverID)
	assert.Equal(t, "mgr", *got.ApproverID)
	require.NotNil(t, got.ApprovedAt)
	assert.Equal(t, "enjoy", got.ApproverComments)
	assert.True(t, used(t, s, "annual").Equal(dec("2")))
	assert.Equal(t, []notification.Kind{notification.KindApproved}, sender.kinds("emp@example.com"))
}

func TestApprove_TwoLevelWorkflow(t *testing.T) {
	s, uc, sender := fixture(t)
	req := create(t, uc, "annual", d(3, 9), d(3, 13))
	require.True(t, req.NumberOfDays.Equal(dec("5")))
	sender.reset()

	got, err := act(uc, req.ID, "lead", domainLeave.StatusApproved, "fine by me")
	require.NoError(t, err)
	assert.Equal(t, domainLeave.StatusPartiallyApproved, got.Status)
	assert.Equal(t, 1, got.Metadata.CurrentApprovalLevel)
	assert.Equal(t, 2, got.Metadata.RequiredApprovalLevels)
	assert.False(t, got.Metadata.IsFullyApproved)
	assert.True(t, used(t, s, "annual").IsZero(), "partial approval leaves the ledger alone")
	assert.Equal(t, []notification.Kind{notification.KindApprovalRequested}, sender.kinds("mgr@example.com"))
	assert.Equal(t, []notification.Kind{notification.KindPartiallyApproved}, sender.kinds("emp@example.com"))

	_, err = act(uc, req.ID, "lead", domainLeave.StatusApproved, "")
	assert.ErrorIs(t, err, domainLeave.ErrInvalidStatusTransition, "a level is never approved twice")

	got, err = act(uc, req.ID, "mgr", domainLeave.StatusApproved, "approved")
	require.NoError(t, err)
	assert.Equal(t, domainLeave.StatusApproved, got.Status)
	assert.Equal(t, 2, got.Metadata.CurrentApprovalLevel)
	assert.True(t, got.Metadata.IsFullyApproved)
	assert.Equal(t, "fine by me\napproved", got.ApproverComments)
	require.Len(t, got.Metadata.ApprovalHistory, 2)
	assert.Equal(t, "lead", got.Metadata.ApprovalHistory[0].ApproverID)
	assert.Equal(t, 2, got.Metadata.ApprovalHistory[1].Level)
	assert.True(t, used(t, s, "annual").Equal(dec("5")))

	_, err = act(uc, req.ID, "mgr", domainLeave.StatusApproved, "")
	assert.ErrorIs(t, err, domainLeave.ErrAlreadyInStatus)
	assert.True(t, used(t, s, "annual").Equal(dec("5")), "no double debit")
}

func TestApprove_LevelRules(t *testing.T) {
	tests := []struct {
		name    string
		actor   string
		wantErr error
	}{
		{"skipping the pending level", "mgr", domainLeave.ErrInvalidStatusTransition},
		{"role in no level", "hr", domainLeave.ErrUnauthorized},
		{"owner approving", "emp", domainLeave.ErrUnauthorized},
		{"manager of another department", "outsider", domainLeave.ErrUnauthorized},
		{"unknown actor", "ghost", domainLeave.ErrUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, uc, _ := fixture(t)
			req := create(t, uc, "annual", d(3, 9), d(3, 13))
			_, err := act(uc, req.ID, tt.actor, domainLeave.StatusApproved, "")
			assert.ErrorIs(t, err, tt.wantErr)
			stored, _ := s.Request(req.ID)
			assert.Equal(t, domainLeave.StatusPending, stored.Status)
			assert.Empty(t, stored.Metadata.ApprovalHistory)
		})
	}
}

func TestApprove_NoWorkflowIsSingleStep(t *testing.T) {
	s, uc, sender := fixture(t)
	req := create(t, uc, "annual", d(3, 2), d(3, 13))
	require.True(t, req.NumberOfDays.Equal(dec("10")))
	assert.Equal(t, []notification.Kind{notification.KindApprovalRequested}, sender.kinds("mgr@example.com"), "manager asked when no workflow applies")

	got, err := act(uc, req.ID, "hr", domainLeave.StatusApproved, "")
	require.NoError(t, err)
	assert.Equal(t, domainLeave.StatusApproved, got.Status)
	assert.True(t, used(t, s, "annual").Equal(dec("10")))
}

func TestApprove_MisconfiguredWorkflowsBlock(t *testing.T) {
	s, uc, _ := fixture(t)
	req := create(t, uc, "annual", d(3, 3), d(3, 4))
	s.PutWorkflow(domainWorkflow.ApprovalWorkflow{
		ID: "rogue", Name: "Rogue", MinDays: dec("1"), MaxDays: dec("30"), IsActive: true,
		Levels: []domainWorkflow.ApprovalLevel{{Level: 1, ApproverType: domainWorkflow.ApproverHR, Roles: []user.Role{user.RoleHR}}},
	})

	_, err := act(uc, req.ID, "mgr", domainLeave.StatusApproved, "")
	assert.ErrorIs(t, err, domainWorkflow.ErrConfiguration)
	stored, _ := s.Request(req.ID)
	assert.Equal(t, domainLeave.StatusPending, stored.Status)
}

func TestApprove_FailedSaveRollsBackDebit(t *testing.T) {
	s, uc, sender := fixture(t)
	req := create(t, uc, "annual", d(3, 3), d(3, 4))
	sender.reset()
	s.FailOn("Requests.Save", errors.New("connection reset"))

	_, err := act(uc, req.ID, "mgr", domainLeave.StatusApproved, "")
	require.Error(t, err)
	assert.True(t, used(t, s, "annual").IsZero(), "debit must not survive a failed status write")
	stored, _ := s.Request(req.ID)
	assert.Equal(t, domainLeave.StatusPending, stored.Status)
	assert.Empty(t, sender.sent, "nothing is sent for a rolled back transition")
}

func TestApprove_ConcurrentApproversOnlyOneWins(t *testing.T) {
	s, uc, _ := fixture(t)
	req := create(t, uc, "annual", d(3, 3), d(3, 4))

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, actor := range []string{"mgr", "lead"} {
		wg.Add(1)
		go func(i int, actor string) {
			defer wg.Done()
			_, errs[i] = act(uc, req.ID, actor, domainLeave.StatusApproved, "")
		}(i, actor)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, domainLeave.ErrAlreadyInStatus)
	}
	assert.Equal(t, 1, succeeded)
	assert.True(t, used(t, s, "annual").Equal(dec("2")), "debited exactly once")
}

func TestReject(t *testing.T) {
	s, uc, sender := fixture(t)
	req := create(t, uc, "annual", d(3, 9), d(3, 13))
	_, err := act(uc, req.ID, "lead", domainLeave.StatusApproved, "ok")
	require.NoError(t, err)
	sender.reset()

	got, err := act(uc, req.ID, "mgr", domainLeave.StatusRejected, "team offsite")
	require.NoError(t, err)
	assert.Equal(t, domainLeave.StatusRejected, got.Status)
	assert.Equal(t, "ok\nteam offsite", got.ApproverComments)
	assert.Len(t, got.Metadata.ApprovalHistory, 1, "history is kept on rejection")
	assert.True(t, used(t, s, "annual").IsZero())
	assert.Equal(t, []notification.Kind{notification.KindRejected}, sender.kinds("emp@example.com"))

	_, err = act(uc, req.ID, "mgr", domainLeave.StatusApproved, "")
	assert.ErrorIs(t, err, domainLeave.ErrInvalidStatusTransition)
	_, err = act(uc, req.ID, "mgr", domainLeave.StatusRejected, "")
	assert.ErrorIs(t, err, domainLeave.ErrAlreadyInStatus)
}

func TestReject_RoleRules(t *testing.T) {
	_, uc, _ := fixture(t)
	req := create(t, uc, "annual", d(3, 9), d(3, 13))

	s2, uc2, _ := fixture(t)
	s2.PutUser(person("lead2", user.RoleTeamLead, "eng"))
	req2 := create(t, uc2, "annual", d(3, 9), d(3, 13))

	_, err := act(uc, req.ID, "emp", domainLeave.StatusRejected, "")
	assert.ErrorIs(t, err, domainLeave.ErrUnauthorized, "owners cannot reject")

	got, err := act(uc, req.ID, "hr", domainLeave.StatusRejected, "")
	require.NoError(t, err, "hr overrides level roles")
	assert.Equal(t, domainLeave.StatusRejected, got.Status)

	got, err = act(uc2, req2.ID, "lead2", domainLeave.StatusRejected, "")
	require.NoError(t, err, "a same-department team lead holds a level role")
	assert.Equal(t, domainLeave.StatusRejected, got.Status)
}

func TestApprovedRequestCannotBeRejected(t *testing.T) {
	_, uc, _ := fixture(t)
	req := create(t, uc, "annual", d(3, 3), d(3, 4))
	_, err := act(uc, req.ID, "mgr", domainLeave.StatusApproved, "")
	require.NoError(t, err)
	_, err = act(uc, req.ID, "admin", domainLeave.StatusRejected, "")
	assert.ErrorIs(t, err, domainLeave.ErrInvalidStatusTransition)
}

func TestCancel(t *testing.T) {
	t.Run("approved future request credits the ledger", func(t *testing.T) {
		s, uc, sender := fixture(t)
		req := create(t, uc, "annual", d(3, 9), d(3, 13))
		_, err := act(uc, req.ID, "lead", domainLeave.StatusApproved, "")
		require.NoError(t, err)
		_, err = act(uc, req.ID, "mgr", domainLeave.StatusApproved, "")
		require.NoError(t, err)
		require.True(t, used(t, s, "annual").Equal(dec("5")))
		sender.reset()

		got, err := uc.Cancel(context.Background(), req.ID, "emp")
		require.NoError(t, err)
		assert.Equal(t, domainLeave.StatusCancelled, got.Status)
		assert.True(t, used(t, s, "annual").IsZero())
		assert.Equal(t, []notification.Kind{notification.KindCancelled}, sender.kinds("mgr@example.com"))
		assert.Empty(t, sender.kinds("emp@example.com"), "owner cancelling is not notified")

		_, err = uc.Cancel(context.Background(), req.ID, "emp")
		assert.ErrorIs(t, err, domainLeave.ErrAlreadyInStatus)
		assert.True(t, used(t, s, "annual").IsZero(), "no double credit")
	})

	t.Run("pending request credits nothing", func(t *testing.T) {
		s, uc, _ := fixture(t)
		s.PutBalance(domainBalance.LeaveBalance{ID: "b", UserID: "emp", LeaveTypeID: "annual", Year: 2026, Balance: dec("20"), Used: dec("3")})
		req := create(t, uc, "annual", d(3, 3), d(3, 4))
		_, err := uc.Cancel(context.Background(), req.ID, "emp")
		require.NoError(t, err)
		assert.True(t, used(t, s, "annual").Equal(dec("3")))
	})

	t.Run("started approved request cannot be cancelled", func(t *testing.T) {
		s, uc, _ := fixture(t)
		s.PutRequest(domainLeave.LeaveRequest{
			ID: "started", UserID: "emp", LeaveTypeID: "annual", StartDate: d(2, 27), EndDate: d(3, 3),
			NumberOfDays: dec("3"), Status: domainLeave.StatusApproved,
		})
		_, err := uc.Cancel(context.Background(), "started", "admin")
		assert.ErrorIs(t, err, domainLeave.ErrCannotCancelStarted)
	})

	t.Run("approved request starting today can be cancelled", func(t *testing.T) {
		s, uc, _ := fixture(t)
		s.PutBalance(domainBalance.LeaveBalance{ID: "b", UserID: "emp", LeaveTypeID: "annual", Year: 2026, Balance: dec("20"), Used: dec("1")})
		s.PutRequest(domainLeave.LeaveRequest{
			ID: "today", UserID: "emp", LeaveTypeID: "annual", StartDate: d(3, 2), EndDate: d(3, 2),
			NumberOfDays: dec("1"), Status: domainLeave.StatusApproved,
		})
		_, err := uc.Cancel(context.Background(), "today", "hr")
		require.NoError(t, err)
		assert.True(t, used(t, s, "annual").IsZero())
	})

	t.Run("unrelated user cannot cancel", func(t *testing.T) {
		_, uc, _ := fixture(t)
		req := create(t, uc, "annual", d(3, 3), d(3, 4))
		_, err := uc.Cancel(context.Background(), req.ID, "outsider")
		assert.ErrorIs(t, err, domainLeave.ErrUnauthorized)
	})

	t.Run("missing request", func(t *testing.T) {
		_, uc, _ := fixture(t)
		_, err := uc.Cancel(context.Background(), "nope", "emp")
		assert.ErrorIs(t, err, domainLeave.ErrNotFound)
	})
}

func TestUpdateStatus_RejectsUnknownTarget(t *testing.T) {
	_, uc, _ := fixture(t)
	req := create(t, uc, "annual", d(3, 3), d(3, 4))
	_, err := act(uc, req.ID, "mgr", domainLeave.StatusPending, "")
	assert.ErrorIs(t, err, domainLeave.ErrInvalidStatusTransition)
}

func TestNotificationFailureDoesNotFailTransition(t *testing.T) {
	s, uc, sender := fixture(t)
	sender.err = errors.New("smtp down")
	req := create(t, uc, "annual", d(3, 3), d(3, 4))

	got, err := act(uc, req.ID, "mgr", domainLeave.StatusApproved, "")
	require.NoError(t, err)
	assert.Equal(t, domainLeave.StatusApproved, got.Status)
	assert.NotEmpty(t, sender.sent)
	stored, _ := s.Request(req.ID)
	assert.Equal(t, domainLeave.StatusApproved, stored.Status)
}

func TestNilSender(t *testing.T) {
	s, _, _ := fixture(t)
	uc := NewUsecase(s, nil, nil, WithClock(func() time.Time { return now }))
	req := create(t, uc, "annual", d(3, 3), d(3, 4))
	_, err := act(uc, req.ID, "lead", domainLeave.StatusApproved, "")
	assert.NoError(t, err)
}

func holidayOn(t time.Time) holiday.Holiday {
	return holiday.Holiday{ID: "h-" + t.Format(time.DateOnly), Date: t, Name: "holiday", IsActive: true}
}

func TestGet(t *testing.T) {
	_, uc, _ := fixture(t)
	req := create(t, uc, "annual", d(3, 3), d(3, 4))

	got, err := uc.Get(context.Background(), req.ID)
	require.NoError(t, err)
	assert.Equal(t, req.ID, got.ID)
	assert.True(t, got.NumberOfDays.Equal(dec("2")))

	_, err = uc.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domainLeave.ErrNotFound)
}

func TestCreate_LocksRequesterBeforeOverlapCheck(t *testing.T) {
	s, uc, sender := fixture(t)
	boom := errors.New("lock wait timeout exceeded")
	s.FailOn("Users.GetByIDForUpdate", boom)

	_, err := uc.Create(context.Background(), CreateInput{ActorID: "emp", LeaveTypeID: "annual", StartDate: d(3, 3), EndDate: d(3, 4)})
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, s.RequestCount())
	assert.Empty(t, sender.sent)

	s.FailOn("Users.GetByIDForUpdate", nil)
	create(t, uc, "annual", d(3, 3), d(3, 4))
}

func TestCreate_ConcurrentOverlappingRequestsOnlyOneWins(t *testing.T) {
	s, uc, _ := fixture(t)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, lt := range []string{"annual", "sick"} {
		wg.Add(1)
		go func(i int, lt string) {
			defer wg.Done()
			_, errs[i] = uc.Create(context.Background(), CreateInput{ActorID: "emp", LeaveTypeID: lt, StartDate: d(3, 3), EndDate: d(3, 4)})
		}(i, lt)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, domainLeave.ErrOverlappingRequest)
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, s.RequestCount())
}
