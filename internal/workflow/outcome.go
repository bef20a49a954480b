package workflow

import (
	"time"

	"github.com/spec-kit/support-desk/internal/domain"
)

// Notification asks the caller to tell a user about a change.
type Notification struct {
	RecipientID string
	TicketID    string
	ChangeType  domain.TicketChangeType
	Summary     string
}

// Outcome is what a state machine decision requests from its caller. The machine
// mutates the ticket in memory; persisting it and dispatching History and
// Notifications is the caller's job.
type Outcome struct {
	Changed       bool
	History       []domain.TicketHistory
	Notifications []Notification
}

type change struct {
	changeType  domain.TicketChangeType
	from        string
	to          string
	toUser      *string
	description string
	notify      string
}

func recordChange(t *domain.Ticket, actor domain.Actor, c change, now time.Time) Outcome {
	t.UpdatedAt = now
	out := Outcome{
		Changed: true,
		History: []domain.TicketHistory{{
			TicketID:    t.ID,
			ChangeType:  c.changeType,
			FromUser:    actor.ID,
			ToUser:      c.toUser,
			FromValue:   c.from,
			ToValue:     c.to,
			Description: c.description,
			CreatedAt:   now,
		}},
	}
	if c.notify != "" && t.UserID != "" {
		out.Notifications = append(out.Notifications, Notification{
			RecipientID: t.UserID,
			TicketID:    t.TicketID,
			ChangeType:  c.changeType,
			Summary:     c.notify,
		})
	}
	return out
}
