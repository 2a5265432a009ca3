package leave

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending           Status = "pending"
	StatusPartiallyApproved Status = "partially_approved"
	StatusApproved          Status = "approved"
	StatusRejected          Status = "rejected"
	StatusCancelled         Status = "cancelled"
	// StatusPendingDeletion marks a decided request awaiting deletion review.
	StatusPendingDeletion Status = "pending_deletion"
)

// InFlight reports whether approvals may still be recorded.
func (s Status) InFlight() bool {
	return s == StatusPending || s == StatusPartiallyApproved
}

type RequestType string

const (
	FullDay          RequestType = "full_day"
	HalfDayMorning   RequestType = "half_day_morning"
	HalfDayAfternoon RequestType = "half_day_afternoon"
)

func ParseRequestType(s string) (RequestType, error) {
	switch t := RequestType(strings.ToLower(strings.TrimSpace(s))); t {
	case FullDay, HalfDayMorning, HalfDayAfternoon:
		return t, nil
	case "":
		return FullDay, nil
	}
	return "", ErrInvalidRequestType
}

func (t RequestType) IsHalfDay() bool {
	return t == HalfDayMorning || t == HalfDayAfternoon
}

type ApprovalEntry struct {
	Level        int       `json:"level"`
	ApproverID   string    `json:"approver_id"`
	ApproverName string    `json:"approver_name"`
	ApprovedAt   time.Time `json:"approved_at"`
	Comments     string    `json:"comments,omitempty"`
}

type Metadata struct {
	CurrentApprovalLevel   int             `json:"current_approval_level"`
	RequiredApprovalLevels int             `json:"required_approval_levels"`
	ApprovalHistory        []ApprovalEntry `json:"approval_history"`
	IsFullyApproved        bool            `json:"is_fully_approved"`

	DeletionRequested   bool       `json:"deletion_requested,omitempty"`
	DeletionRequestedBy string     `json:"deletion_requested_by,omitempty"`
	DeletionRequestedAt *time.Time `json:"deletion_requested_at,omitempty"`
	DeletionReason      string     `json:"deletion_reason,omitempty"`
	PreviousStatus      Status     `json:"previous_status,omitempty"`
}

type LeaveRequest struct {
	ID               string          `gorm:"column:id;type:char(36);primaryKey" json:"id"`
	UserID           string          `gorm:"column:user_id;type:char(36);not null;index:idx_leave_requests_user_dates" json:"user_id"`
	LeaveTypeID      string          `gorm:"column:leave_type_id;type:char(36);not null" json:"leave_type_id"`
	StartDate        time.Time       `gorm:"column:start_date;type:date;not null;index:idx_leave_requests_user_dates" json:"start_date"`
	EndDate          time.Time       `gorm:"column:end_date;type:date;not null;index:idx_leave_requests_user_dates" json:"end_date"`
	RequestType      RequestType     `gorm:"column:request_type;size:32;not null" json:"request_type"`
	NumberOfDays     decimal.Decimal `gorm:"column:number_of_days;type:decimal(6,2);not null" json:"number_of_days"`
	Reason           string          `gorm:"column:reason;type:text" json:"reason"`
	Status           Status          `gorm:"column:status;size:32;not null;index" json:"status"`
	ApproverID       *string         `gorm:"column:approver_id;type:char(36)" json:"approver_id,omitempty"`
	ApproverComments string          `gorm:"column:approver_comments;type:text" json:"approver_comments,omitempty"`
	ApprovedAt       *time.Time      `gorm:"column:approved_at" json:"approved_at,omitempty"`
	Metadata         Metadata        `gorm:"column:metadata;type:text;serializer:json" json:"metadata"`
	CreatedAt        time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (LeaveRequest) TableName() string { return "leave_requests" }

// Year is the ledger year the request is charged against.
func (r *LeaveRequest) Year() int { return r.StartDate.Year() }

// AppendComments accumulates approver comments; earlier comments are kept.
func (r *LeaveRequest) AppendComments(comments string) {
	comments = strings.TrimSpace(comments)
	if comments == "" {
		return
	}
	if r.ApproverComments == "" {
		r.ApproverComments = comments
		return
	}
	r.ApproverComments += "\n" + comments
}

// RecordApproval appends to the approval history and advances the current level.
func (r *LeaveRequest) RecordApproval(e ApprovalEntry) {
	r.Metadata.ApprovalHistory = append(r.Metadata.ApprovalHistory, e)
	r.Metadata.CurrentApprovalLevel = e.Level
}

// Overlaps uses the inclusive test start <= otherEnd && end >= otherStart.
func (r *LeaveRequest) Overlaps(start, end time.Time) bool {
	return !r.StartDate.After(end) && !r.EndDate.Before(start)
}

// DateOnly strips the time of day, keeping the calendar date in UTC.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
