package notification

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type Kind string

const (
	KindApprovalRequested Kind = "approval_requested"
	KindPartiallyApproved Kind = "partially_approved"
	KindApproved          Kind = "approved"
	KindRejected          Kind = "rejected"
	KindCancelled         Kind = "cancelled"
)

// Message describes one leave-request event addressed to one recipient.
type Message struct {
	Kind           Kind
	RecipientName  string
	RecipientEmail string

	RequestID     string
	RequesterName string
	StartDate     time.Time
	EndDate       time.Time
	NumberOfDays  decimal.Decimal
	Level         int
	ActorName     string
	Comments      string
}

// Sender delivers messages outside the transaction boundary.
type Sender interface {
	Send(ctx context.Context, m Message) error
}
