package config

import (
	"github.com/shopspring/decimal"

	"leaveflow/internal/domain/user"
	"leaveflow/internal/domain/workflow"
)

// DefaultWorkflows is the fixed table seeded at startup. Ranges are
// contiguous at half-day granularity and never overlap.
func DefaultWorkflows() []workflow.ApprovalWorkflow {
	d := decimal.RequireFromString
	return []workflow.ApprovalWorkflow{
		{
			Name:    "Short Leave",
			MinDays: d("0.5"),
			MaxDays: d("3"),
			Levels: []workflow.ApprovalLevel{
				{Level: 1, ApproverType: workflow.ApproverTeamLead, Roles: []user.Role{user.RoleTeamLead, user.RoleManager}},
			},
		},
		{
			Name:    "Medium Leave",
			MinDays: d("3.5"),
			MaxDays: d("7"),
			Levels: []workflow.ApprovalLevel{
				{Level: 1, ApproverType: workflow.ApproverTeamLead, Roles: []user.Role{user.RoleTeamLead}},
				{Level: 2, ApproverType: workflow.ApproverManager, Roles: []user.Role{user.RoleManager}},
			},
		},
		{
			Name:    "Long Leave",
			MinDays: d("7.5"),
			MaxDays: d("365"),
			Levels: []workflow.ApprovalLevel{
				{Level: 1, ApproverType: workflow.ApproverTeamLead, Roles: []user.Role{user.RoleTeamLead}},
				{Level: 2, ApproverType: workflow.ApproverManager, Roles: []user.Role{user.RoleManager}},
				{Level: 3, ApproverType: workflow.ApproverHR, Roles: []user.Role{user.RoleHR}},
			},
		},
	}
}
