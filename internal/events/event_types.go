package events

import (
	"time"

	"github.com/spec-kit/support-desk/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated         EventType = "ticket_created"
	EventTicketStatusChanged   EventType = "ticket_status_changed"
	EventTicketPriorityChanged EventType = "ticket_priority_changed"
	EventTicketAssigned        EventType = "ticket_assigned"
	EventTicketMessageAdded    EventType = "ticket_message_added"
	EventTicketRated           EventType = "ticket_rated"
)

// AllTypes lists every event the ticket service emits.
var AllTypes = []EventType{
	EventTicketCreated,
	EventTicketStatusChanged,
	EventTicketPriorityChanged,
	EventTicketAssigned,
	EventTicketMessageAdded,
	EventTicketRated,
}

// Actor encapsulates actor metadata for an event.
type Actor struct {
	ID   string           `json:"id"`
	Role domain.ActorRole `json:"role"`
}

// Notice is a customer-facing notification carried by an event. Events without a
// notice are audit-only.
type Notice struct {
	RecipientID string `json:"recipientId"`
	Summary     string `json:"summary"`
}

// Event represents a domain event emitted by services. TicketID is the human-facing key.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	TicketID  string    `json:"ticketId"`
	Actor     Actor     `json:"actor"`
	Notice    *Notice   `json:"notice,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	UserID   string                `json:"userId"`
	Subject  string                `json:"subject"`
	Category domain.TicketCategory `json:"category"`
	Priority domain.TicketPriority `json:"priority"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"oldStatus"`
	NewStatus domain.TicketStatus `json:"newStatus"`
	Reopened  bool                `json:"reopened"`
}

// TicketPriorityChangedPayload payload.
type TicketPriorityChangedPayload struct {
	OldPriority domain.TicketPriority `json:"oldPriority"`
	NewPriority domain.TicketPriority `json:"newPriority"`
}

// TicketAssignedPayload payload. A nil AssignedTo means the ticket was unassigned.
type TicketAssignedPayload struct {
	AssignedTo *string `json:"assignedTo,omitempty"`
}

// TicketMessageAddedPayload payload.
type TicketMessageAddedPayload struct {
	MessageID       string            `json:"messageId"`
	SenderType      domain.SenderType `json:"senderType"`
	IsInternal      bool              `json:"isInternal"`
	AttachmentCount int               `json:"attachmentCount"`
	BodyPreview     string            `json:"bodyPreview"`
}

// TicketRatedPayload payload.
type TicketRatedPayload struct {
	Rating      int  `json:"rating"`
	HasFeedback bool `json:"hasFeedback"`
}
