package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/support-desk/internal/domain"
)

// TicketHistoryRepository reads the audit trail. Entries are written together with
// the ticket change they describe, see TicketRepository.Update.
type TicketHistoryRepository interface {
	ListByTicket(ctx context.Context, ticketUUID string) ([]domain.TicketHistory, error)
}

type ticketHistoryRepository struct {
	pool *pgxpool.Pool
}

// NewTicketHistoryRepository builds repository.
func NewTicketHistoryRepository(pool *pgxpool.Pool) TicketHistoryRepository {
	return &ticketHistoryRepository{pool: pool}
}

func insertHistory(ctx context.Context, q querier, history *domain.TicketHistory) error {
	const query = `
        INSERT INTO ticket_history (id, ticket_id, change_type, from_user, to_user, from_value, to_value, description, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`
	if _, err := q.Exec(ctx, query,
		history.ID,
		history.TicketID,
		history.ChangeType,
		history.FromUser,
		history.ToUser,
		history.FromValue,
		history.ToValue,
		history.Description,
		history.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert history: %w", err)
	}
	return nil
}

func (r *ticketHistoryRepository) ListByTicket(ctx context.Context, ticketUUID string) ([]domain.TicketHistory, error) {
	const query = `
        SELECT id, ticket_id, change_type, from_user, to_user, from_value, to_value, description, created_at
        FROM ticket_history WHERE ticket_id=$1 ORDER BY created_at ASC, id ASC`
	rows, err := r.pool.Query(ctx, query, ticketUUID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.TicketHistory{}
	for rows.Next() {
		var history domain.TicketHistory
		if err := rows.Scan(
			&history.ID,
			&history.TicketID,
			&history.ChangeType,
			&history.FromUser,
			&history.ToUser,
			&history.FromValue,
			&history.ToValue,
			&history.Description,
			&history.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, history)
	}
	return result, rows.Err()
}
