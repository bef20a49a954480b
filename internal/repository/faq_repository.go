package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/support-desk/internal/domain"
)

// FAQFilter narrows the public FAQ listing. Only active entries are ever returned.
type FAQFilter struct {
	Category   *string
	SearchTerm *string
}

// FAQRepository stores published FAQs and their vote counters.
type FAQRepository interface {
	Create(ctx context.Context, faq *domain.FAQ) error
	List(ctx context.Context, filter FAQFilter) ([]domain.FAQ, error)
	Vote(ctx context.Context, id string, helpful bool) (*domain.FAQ, error)
}

type faqRepository struct {
	pool *pgxpool.Pool
}

// NewFAQRepository instantiates the repository.
func NewFAQRepository(pool *pgxpool.Pool) FAQRepository {
	return &faqRepository{pool: pool}
}

const faqColumns = `id, question, answer, category, tags, helpful_count, not_helpful_count, is_active, created_at, updated_at`

func (r *faqRepository) Create(ctx context.Context, faq *domain.FAQ) error {
	tags := faq.Tags
	if tags == nil {
		tags = []string{}
	}
	const query = `
        INSERT INTO faqs (question, answer, category, tags, is_active)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query, faq.Question, faq.Answer, faq.Category, tags, faq.IsActive).
		Scan(&faq.ID, &faq.CreatedAt, &faq.UpdatedAt)
}

func (r *faqRepository) List(ctx context.Context, filter FAQFilter) ([]domain.FAQ, error) {
	clauses := []string{"is_active"}
	args := []any{}
	if filter.Category != nil && *filter.Category != "" {
		args = append(args, *filter.Category)
		clauses = append(clauses, fmt.Sprintf("category=$%d", len(args)))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		args = append(args, "%"+strings.ToLower(strings.TrimSpace(*filter.SearchTerm))+"%")
		p := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(question) LIKE %s OR LOWER(answer) LIKE %s)", p, p))
	}

	query := fmt.Sprintf(`SELECT %s FROM faqs WHERE %s ORDER BY helpful_count DESC, created_at DESC`,
		faqColumns, strings.Join(clauses, " AND "))
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.FAQ{}
	for rows.Next() {
		faq, err := scanFAQ(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *faq)
	}
	return result, rows.Err()
}

func (r *faqRepository) Vote(ctx context.Context, id string, helpful bool) (*domain.FAQ, error) {
	column := "not_helpful_count"
	if helpful {
		column = "helpful_count"
	}
	query := fmt.Sprintf(`UPDATE faqs SET %[1]s=%[1]s+1, updated_at=NOW() WHERE id=$1 AND is_active RETURNING %[2]s`,
		column, faqColumns)
	return scanFAQ(r.pool.QueryRow(ctx, query, id))
}

func scanFAQ(row pgx.Row) (*domain.FAQ, error) {
	var faq domain.FAQ
	if err := row.Scan(
		&faq.ID,
		&faq.Question,
		&faq.Answer,
		&faq.Category,
		&faq.Tags,
		&faq.HelpfulCount,
		&faq.NotHelpfulCount,
		&faq.IsActive,
		&faq.CreatedAt,
		&faq.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &faq, nil
}
