package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusClosed     TicketStatus = "closed"
)

// Valid reports whether s is a known status.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusClosed:
		return true
	}
	return false
}

// TicketPriority enumerates urgency levels.
type TicketPriority string

const (
	TicketPriorityLow      TicketPriority = "low"
	TicketPriorityMedium   TicketPriority = "medium"
	TicketPriorityHigh     TicketPriority = "high"
	TicketPriorityCritical TicketPriority = "critical"
)

// Valid reports whether p is a known priority.
func (p TicketPriority) Valid() bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh, TicketPriorityCritical:
		return true
	}
	return false
}

// TicketCategory is the closed set of ticket topics.
type TicketCategory string

const (
	TicketCategoryTechnical  TicketCategory = "technical"
	TicketCategoryBilling    TicketCategory = "billing"
	TicketCategoryInquiry    TicketCategory = "inquiry"
	TicketCategorySuggestion TicketCategory = "suggestion"
	TicketCategoryComplaint  TicketCategory = "complaint"
)

// Valid reports whether c is a known category.
func (c TicketCategory) Valid() bool {
	switch c {
	case TicketCategoryTechnical, TicketCategoryBilling, TicketCategoryInquiry,
		TicketCategorySuggestion, TicketCategoryComplaint:
		return true
	}
	return false
}

// Ticket is the aggregate for support requests. Messages are owned by the ticket
// and only ever appended.
type Ticket struct {
	ID         string
	TicketID   string
	UserID     string
	Subject    string
	Category   TicketCategory
	Status     TicketStatus
	Priority   TicketPriority
	AssignedTo *string
	Messages   []TicketMessage
	Rating     *int
	Feedback   *string
	Version    int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
	ResolvedAt *time.Time
}

// IsOwnedBy reports whether userID created the ticket.
func (t *Ticket) IsOwnedBy(userID string) bool {
	return t != nil && userID != "" && t.UserID == userID
}

// Clone returns a deep copy so callers can mutate without touching shared state.
func (t *Ticket) Clone() *Ticket {
	if t == nil {
		return nil
	}
	cp := *t
	if t.AssignedTo != nil {
		v := *t.AssignedTo
		cp.AssignedTo = &v
	}
	if t.Rating != nil {
		v := *t.Rating
		cp.Rating = &v
	}
	if t.Feedback != nil {
		v := *t.Feedback
		cp.Feedback = &v
	}
	if t.ResolvedAt != nil {
		v := *t.ResolvedAt
		cp.ResolvedAt = &v
	}
	if t.Messages != nil {
		cp.Messages = make([]TicketMessage, len(t.Messages))
		for i := range t.Messages {
			cp.Messages[i] = t.Messages[i].Clone()
		}
	}
	return &cp
}
