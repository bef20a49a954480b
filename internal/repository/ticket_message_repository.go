package repository

import (
	"context"
	"fmt"

	"github.com/spec-kit/support-desk/internal/domain"
)

// Messages have no repository of their own: they are written through
// TicketRepository and read back in thread order.

func insertMessage(ctx context.Context, q querier, ticketUUID string, position int, msg domain.TicketMessage) error {
	attachments := msg.Attachments
	if attachments == nil {
		attachments = []domain.Attachment{}
	}
	const query = `
        INSERT INTO ticket_messages (id, ticket_id, position, sender_id, sender_type, is_internal, content, attachments, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`
	if _, err := q.Exec(ctx, query,
		msg.ID,
		ticketUUID,
		position,
		msg.SenderID,
		msg.SenderType,
		msg.IsInternal,
		msg.Content,
		attachments,
		msg.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

func listMessages(ctx context.Context, q querier, ticketUUID string) ([]domain.TicketMessage, error) {
	const query = `
        SELECT id, ticket_id, sender_id, sender_type, is_internal, content, attachments, created_at
        FROM ticket_messages WHERE ticket_id=$1 ORDER BY position ASC`
	rows, err := q.Query(ctx, query, ticketUUID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.TicketMessage{}
	for rows.Next() {
		var msg domain.TicketMessage
		if err := rows.Scan(
			&msg.ID,
			&msg.TicketID,
			&msg.SenderID,
			&msg.SenderType,
			&msg.IsInternal,
			&msg.Content,
			&msg.Attachments,
			&msg.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, msg)
	}
	return result, rows.Err()
}
