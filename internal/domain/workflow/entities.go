package workflow

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"leaveflow/internal/domain/user"
)

var (
	ErrNotFound      = errors.New("approval workflow not found")
	ErrConfiguration = errors.New("approval workflow configuration error")
	ErrOverlap       = errors.New("approval workflow day range overlaps an active workflow")
	ErrDuplicateName = errors.New("approval workflow name already exists")
	ErrInvalid       = errors.New("invalid approval workflow")
)

// ApproverType names who is expected to sign off at a level.
type ApproverType string

const (
	ApproverTeamLead       ApproverType = "team_lead"
	ApproverManager        ApproverType = "manager"
	ApproverHR             ApproverType = "hr"
	ApproverDepartmentHead ApproverType = "department_head"
	ApproverSuperAdmin     ApproverType = "super_admin"
)

func ParseApproverType(s string) (ApproverType, error) {
	switch t := ApproverType(strings.ToLower(strings.TrimSpace(s))); t {
	case ApproverTeamLead, ApproverManager, ApproverHR, ApproverDepartmentHead, ApproverSuperAdmin:
		return t, nil
	}
	return "", fmt.Errorf("%w: unknown approver type %q", ErrInvalid, s)
}

type ApprovalLevel struct {
	Level        int          `json:"level"`
	ApproverType ApproverType `json:"approver_type"`
	Roles        []user.Role  `json:"roles"`
}

// Accepts reports whether role may sign off at this level.
func (l ApprovalLevel) Accepts(role user.Role) bool {
	for _, r := range l.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// ApprovalWorkflow covers requests of MinDays..MaxDays (inclusive).
// Levels are persisted as structured JSON.
type ApprovalWorkflow struct {
	ID        string          `gorm:"column:id;type:char(36);primaryKey" json:"id"`
	Name      string          `gorm:"column:name;size:100;not null;uniqueIndex" json:"name"`
	MinDays   decimal.Decimal `gorm:"column:min_days;type:decimal(6,2);not null" json:"min_days"`
	MaxDays   decimal.Decimal `gorm:"column:max_days;type:decimal(6,2);not null" json:"max_days"`
	Levels    []ApprovalLevel `gorm:"column:levels;type:text;serializer:json" json:"levels"`
	IsActive  bool            `gorm:"column:is_active;not null" json:"is_active"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (ApprovalWorkflow) TableName() string { return "approval_workflows" }

func (w *ApprovalWorkflow) Covers(days decimal.Decimal) bool {
	return w.MinDays.LessThanOrEqual(days) && days.LessThanOrEqual(w.MaxDays)
}

func (w *ApprovalWorkflow) Overlaps(o *ApprovalWorkflow) bool {
	return w.MinDays.LessThanOrEqual(o.MaxDays) && o.MinDays.LessThanOrEqual(w.MaxDays)
}

// SortedLevels returns a copy of the levels in ascending level order.
func (w *ApprovalWorkflow) SortedLevels() []ApprovalLevel {
	out := make([]ApprovalLevel, len(w.Levels))
	copy(out, w.Levels)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Level < out[j].Level })
	return out
}

// HighestLevel is max(levels[].level), or 0 for a workflow without levels.
func (w *ApprovalWorkflow) HighestLevel() int {
	highest := 0
	for _, l := range w.Levels {
		if l.Level > highest {
			highest = l.Level
		}
	}
	return highest
}

// LevelAfter returns the first level strictly above current, if any.
func (w *ApprovalWorkflow) LevelAfter(current int) (ApprovalLevel, bool) {
	for _, l := range w.SortedLevels() {
		if l.Level > current {
			return l, true
		}
	}
	return ApprovalLevel{}, false
}

// AnyLevelAccepts reports whether role appears in any level.
func (w *ApprovalWorkflow) AnyLevelAccepts(role user.Role) bool {
	for _, l := range w.Levels {
		if l.Accepts(role) {
			return true
		}
	}
	return false
}

// Validate checks the workflow's own shape. Range overlap against other
// workflows is checked by the caller, which owns the workflow set.
func (w *ApprovalWorkflow) Validate() error {
	if strings.TrimSpace(w.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalid)
	}
	if !w.MinDays.IsPositive() {
		return fmt.Errorf("%w: min_days must be positive", ErrInvalid)
	}
	if w.MaxDays.LessThan(w.MinDays) {
		return fmt.Errorf("%w: max_days %s is below min_days %s", ErrInvalid, w.MaxDays, w.MinDays)
	}
	if len(w.Levels) == 0 {
		return fmt.Errorf("%w: at least one approval level is required", ErrInvalid)
	}
	prev := 0
	for _, l := range w.SortedLevels() {
		if l.Level <= 0 {
			return fmt.Errorf("%w: level numbers must be positive, got %d", ErrInvalid, l.Level)
		}
		if l.Level == prev {
			return fmt.Errorf("%w: duplicate level %d", ErrInvalid, l.Level)
		}
		prev = l.Level
		if _, err := ParseApproverType(string(l.ApproverType)); err != nil {
			return err
		}
		if len(l.Roles) == 0 {
			return fmt.Errorf("%w: level %d has no roles", ErrInvalid, l.Level)
		}
		for _, r := range l.Roles {
			if !r.Valid() {
				return fmt.Errorf("%w: level %d has unknown role %q", ErrInvalid, l.Level, r)
			}
		}
	}
	return nil
}
