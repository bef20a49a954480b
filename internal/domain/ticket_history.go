package domain

import "time"

// TicketChangeType captures what changed in a history entry.
type TicketChangeType string

const (
	ChangeTypeStatus   TicketChangeType = "STATUS_CHANGE"
	ChangeTypeReopen   TicketChangeType = "REOPEN"
	ChangeTypePriority TicketChangeType = "PRIORITY_CHANGE"
	ChangeTypeAssignee TicketChangeType = "ASSIGNEE_CHANGE"
	ChangeTypeRating   TicketChangeType = "RATING"
)

// TicketHistory is an immutable audit trail entry. FromUser is the actor, ToUser the
// user affected by the change (new assignee or the customer).
type TicketHistory struct {
	ID          string
	TicketID    string
	ChangeType  TicketChangeType
	FromUser    string
	ToUser      *string
	FromValue   string
	ToValue     string
	Description string
	CreatedAt   time.Time
}
