package workflow

import (
	"github.com/shopspring/decimal"

	domainWorkflow "leaveflow/internal/domain/workflow"
)

type WorkflowInput struct {
	Name    string
	MinDays decimal.Decimal
	MaxDays decimal.Decimal
	Levels  []domainWorkflow.ApprovalLevel
	// IsActive defaults to true on create and is left unchanged on update when nil.
	IsActive *bool
}
