package workflow

import "github.com/spec-kit/support-desk/internal/domain"

// VisibleMessages returns the part of the thread role may read, in original order.
// Staff see everything. Any other role is treated as a customer and never receives
// internal notes.
func VisibleMessages(t *domain.Ticket, role domain.ActorRole) []domain.TicketMessage {
	if t == nil {
		return nil
	}
	out := make([]domain.TicketMessage, 0, len(t.Messages))
	for _, msg := range t.Messages {
		if msg.IsInternal && role != domain.RoleStaff {
			continue
		}
		out = append(out, msg.Clone())
	}
	return out
}

// ViewFor returns a copy of the ticket whose thread is filtered for role.
func ViewFor(t *domain.Ticket, role domain.ActorRole) *domain.Ticket {
	if t == nil {
		return nil
	}
	view := t.Clone()
	view.Messages = VisibleMessages(t, role)
	return view
}
