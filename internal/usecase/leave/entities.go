package leave

import (
	"time"

	domainLeave "leaveflow/internal/domain/leave"
)

type CreateInput struct {
	ActorID     string
	LeaveTypeID string
	StartDate   time.Time
	EndDate     time.Time
	RequestType domainLeave.RequestType
	Reason      string
}

type UpdateStatusInput struct {
	RequestID    string
	ActorID      string
	TargetStatus domainLeave.Status
	Comments     string
}
