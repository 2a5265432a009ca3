package uow

import (
	"context"

	"leaveflow/internal/domain/balance"
	"leaveflow/internal/domain/holiday"
	"leaveflow/internal/domain/leave"
	"leaveflow/internal/domain/leavetype"
	"leaveflow/internal/domain/user"
	"leaveflow/internal/domain/workflow"
)

// Repos are bound to one transaction.
type Repos struct {
	Users      user.Repository
	LeaveTypes leavetype.Repository
	Holidays   holiday.Repository
	Balances   balance.Repository
	Workflows  workflow.Repository
	Requests   leave.Repository
}

type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// lock the leave request first, then pass it in
	WithinRequestTx(ctx context.Context, requestID string, fn func(r Repos, req *leave.LeaveRequest) error) error
}
