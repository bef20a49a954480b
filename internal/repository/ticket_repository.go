package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/support-desk/internal/domain"
)

// TicketFilter captures listing parameters shared by customer and staff views.
type TicketFilter struct {
	UserID     *string
	ExcludeID  *string
	AssignedTo *string
	Statuses   []domain.TicketStatus
	Categories []domain.TicketCategory
	Priorities []domain.TicketPriority
	SearchTerm *string
	Page
}

// TicketRepository encapsulates ticket persistence. Messages are stored alongside the
// ticket and loaded with it; list queries return tickets without messages.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByTicketID(ctx context.Context, ticketID string) (*domain.Ticket, error)
	// Update persists mutable ticket fields and the history entries describing the
	// change. It fails with ErrStaleTicket when ticket.Version is out of date and
	// bumps ticket.Version on success.
	Update(ctx context.Context, ticket *domain.Ticket, history ...domain.TicketHistory) error
	// AppendMessage adds msg to the thread under the same version check as Update.
	AppendMessage(ctx context.Context, ticket *domain.Ticket, msg domain.TicketMessage) error
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, int, error)
	// MaxKeySequence returns the highest numeric suffix among stored ticket keys.
	MaxKeySequence(ctx context.Context) (int64, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, ticket_id, user_id, subject, category, status, priority, assigned_to,
       rating, feedback, version, created_at, updated_at, resolved_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		const query = `
        INSERT INTO tickets (id, ticket_id, user_id, subject, category, status, priority, assigned_to,
                             rating, feedback, version, created_at, updated_at, resolved_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,1,$11,$12,$13)`
		if _, err := tx.Exec(ctx, query,
			ticket.ID,
			ticket.TicketID,
			ticket.UserID,
			ticket.Subject,
			ticket.Category,
			ticket.Status,
			ticket.Priority,
			ticket.AssignedTo,
			ticket.Rating,
			ticket.Feedback,
			ticket.CreatedAt,
			ticket.UpdatedAt,
			ticket.ResolvedAt,
		); err != nil {
			if isUniqueViolation(err, "tickets_ticket_id_key") {
				return fmt.Errorf("insert ticket %s: %w", ticket.TicketID, ErrDuplicateTicketKey)
			}
			return fmt.Errorf("insert ticket: %w", err)
		}
		for i, msg := range ticket.Messages {
			if err := insertMessage(ctx, tx, ticket.ID, i, msg); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	ticket.Version = 1
	return nil
}

func (r *ticketRepository) MaxKeySequence(ctx context.Context) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(MAX(CAST(substring(ticket_id FROM '([0-9]+)$') AS BIGINT)), 0) FROM tickets`,
	).Scan(&n)
	return n, err
}

func (r *ticketRepository) GetByTicketID(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE ticket_id=$1`, ticketID)
	ticket, err := scanTicket(row)
	if err != nil {
		return nil, err
	}
	msgs, err := listMessages(ctx, r.pool, ticket.ID)
	if err != nil {
		return nil, err
	}
	ticket.Messages = msgs
	return ticket, nil
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket, history ...domain.TicketHistory) error {
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		const query = `
        UPDATE tickets SET status=$1, priority=$2, assigned_to=$3, rating=$4, feedback=$5,
            updated_at=$6, resolved_at=$7, version=version+1
        WHERE id=$8 AND version=$9`
		cmd, err := tx.Exec(ctx, query,
			ticket.Status,
			ticket.Priority,
			ticket.AssignedTo,
			ticket.Rating,
			ticket.Feedback,
			ticket.UpdatedAt,
			ticket.ResolvedAt,
			ticket.ID,
			ticket.Version,
		)
		if err != nil {
			return fmt.Errorf("update ticket: %w", err)
		}
		if cmd.RowsAffected() == 0 {
			return ErrStaleTicket
		}
		for i := range history {
			if err := insertHistory(ctx, tx, &history[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	ticket.Version++
	return nil
}

func (r *ticketRepository) AppendMessage(ctx context.Context, ticket *domain.Ticket, msg domain.TicketMessage) error {
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		cmd, err := tx.Exec(ctx,
			`UPDATE tickets SET updated_at=$1, version=version+1 WHERE id=$2 AND version=$3`,
			msg.CreatedAt, ticket.ID, ticket.Version)
		if err != nil {
			return fmt.Errorf("touch ticket: %w", err)
		}
		if cmd.RowsAffected() == 0 {
			return ErrStaleTicket
		}
		return insertMessage(ctx, tx, ticket.ID, len(ticket.Messages), msg)
	})
	if err != nil {
		return err
	}
	ticket.Messages = append(ticket.Messages, msg)
	ticket.UpdatedAt = msg.CreatedAt
	ticket.Version++
	return nil
}

func (r *ticketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, int, error) {
	where, args := ticketWhere(filter)

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tickets WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count tickets: %w", err)
	}

	page := filter.Page.normalize(20)
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE %s ORDER BY created_at DESC, ticket_id DESC LIMIT %d OFFSET %d`,
		ticketColumns, where, page.Limit, page.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []domain.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, *ticket)
	}
	return result, total, rows.Err()
}

func ticketWhere(filter TicketFilter) (string, []any) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		clauses = append(clauses, fmt.Sprintf("user_id=$%d", len(args)))
	}
	if filter.ExcludeID != nil {
		args = append(args, *filter.ExcludeID)
		clauses = append(clauses, fmt.Sprintf("id<>$%d", len(args)))
	}
	if filter.AssignedTo != nil {
		args = append(args, *filter.AssignedTo)
		clauses = append(clauses, fmt.Sprintf("assigned_to=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		args = append(args, toStrings(filter.Statuses))
		clauses = append(clauses, fmt.Sprintf("status = ANY($%d)", len(args)))
	}
	if len(filter.Categories) > 0 {
		args = append(args, toStrings(filter.Categories))
		clauses = append(clauses, fmt.Sprintf("category = ANY($%d)", len(args)))
	}
	if len(filter.Priorities) > 0 {
		args = append(args, toStrings(filter.Priorities))
		clauses = append(clauses, fmt.Sprintf("priority = ANY($%d)", len(args)))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		args = append(args, "%"+strings.ToLower(strings.TrimSpace(*filter.SearchTerm))+"%")
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(subject) LIKE %s OR LOWER(ticket_id) LIKE %s)", placeholder, placeholder))
	}
	return strings.Join(clauses, " AND "), args
}

func toStrings[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := row.Scan(
		&ticket.ID,
		&ticket.TicketID,
		&ticket.UserID,
		&ticket.Subject,
		&ticket.Category,
		&ticket.Status,
		&ticket.Priority,
		&ticket.AssignedTo,
		&ticket.Rating,
		&ticket.Feedback,
		&ticket.Version,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
		&ticket.ResolvedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}
