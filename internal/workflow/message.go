package workflow

import (
	"strings"
	"time"

	"github.com/spec-kit/support-desk/internal/domain"
)

// MessageDraft is a message before it is accepted into a thread.
type MessageDraft struct {
	Content         string
	AttachmentCount int
	IsInternal      bool
}

// AuthorizeMessage decides whether actor may append draft to the ticket.
// Staff may post to closed tickets; customers have to wait for a reopen.
func AuthorizeMessage(t *domain.Ticket, actor domain.Actor, draft MessageDraft) error {
	if strings.TrimSpace(draft.Content) == "" && draft.AttachmentCount == 0 {
		return ErrEmptyMessage
	}
	if actor.IsStaff() {
		return nil
	}
	if !actor.IsCustomer() || !t.IsOwnedBy(actor.ID) {
		return ErrNotOwner
	}
	if draft.IsInternal {
		return ErrInternalNoteByCustomer
	}
	if t.Status == domain.TicketStatusClosed {
		return ErrTicketClosed
	}
	return nil
}

// NewMessage builds the thread entry for an authorized draft. SenderType is frozen
// from the actor's role at send time.
func NewMessage(t *domain.Ticket, actor domain.Actor, draft MessageDraft, attachments []domain.Attachment, now time.Time) domain.TicketMessage {
	return domain.TicketMessage{
		TicketID:    t.ID,
		SenderID:    actor.ID,
		SenderType:  actor.SenderType(),
		IsInternal:  draft.IsInternal && actor.IsStaff(),
		Content:     strings.TrimSpace(draft.Content),
		Attachments: attachments,
		CreatedAt:   now,
	}
}
