// Package memrepo holds in-memory implementations of the repository interfaces.
// They honor the same version checks and not-found errors as the Postgres stores.
package memrepo

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/repository"
	"github.com/spec-kit/support-desk/internal/ticketkey"
)

// Tickets stores tickets and their history.
type Tickets struct {
	mu      sync.RWMutex
	byKey   map[string]*domain.Ticket
	history map[string][]domain.TicketHistory
}

// NewTickets returns an empty store.
func NewTickets() *Tickets {
	return &Tickets{
		byKey:   map[string]*domain.Ticket{},
		history: map[string][]domain.TicketHistory{},
	}
}

var (
	_ repository.TicketRepository        = (*Tickets)(nil)
	_ repository.TicketHistoryRepository = (*Tickets)(nil)
)

func (s *Tickets) Create(_ context.Context, ticket *domain.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byKey[ticket.TicketID]; ok {
		return &duplicateKeyError{key: ticket.TicketID, err: repository.ErrDuplicateTicketKey}
	}
	if ticket.ID == "" {
		ticket.ID = uuid.NewString()
	}
	ticket.Version = 1
	s.byKey[ticket.TicketID] = ticket.Clone()
	return nil
}

func (s *Tickets) GetByTicketID(_ context.Context, ticketID string) (*domain.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.byKey[ticketID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := t.Clone()
	if cp.Messages == nil {
		cp.Messages = []domain.TicketMessage{}
	}
	return cp, nil
}

func (s *Tickets) Update(_ context.Context, ticket *domain.Ticket, history ...domain.TicketHistory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.byKey[ticket.TicketID]
	if !ok || stored.ID != ticket.ID || stored.Version != ticket.Version {
		return repository.ErrStaleTicket
	}
	next := ticket.Clone()
	next.Messages = stored.Messages
	next.Version++
	s.byKey[ticket.TicketID] = next
	for _, h := range history {
		s.history[ticket.ID] = append(s.history[ticket.ID], h)
	}
	ticket.Version = next.Version
	return nil
}

func (s *Tickets) AppendMessage(_ context.Context, ticket *domain.Ticket, msg domain.TicketMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.byKey[ticket.TicketID]
	if !ok || stored.ID != ticket.ID || stored.Version != ticket.Version {
		return repository.ErrStaleTicket
	}
	stored.Messages = append(stored.Messages, msg.Clone())
	stored.UpdatedAt = msg.CreatedAt
	stored.Version++

	ticket.Messages = append(ticket.Messages, msg)
	ticket.UpdatedAt = msg.CreatedAt
	ticket.Version = stored.Version
	return nil
}

func (s *Tickets) ListWithFilter(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []domain.Ticket
	for _, t := range s.byKey {
		if matchTicket(t, filter) {
			cp := t.Clone()
			cp.Messages = nil
			matched = append(matched, *cp)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].TicketID > matched[j].TicketID
	})

	total := len(matched)
	limit, offset := filter.Limit, filter.Offset
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= total {
		return []domain.Ticket{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

func (s *Tickets) MaxKeySequence(context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var highest int64
	for key := range s.byKey {
		if n, ok := ticketkey.Sequence(key); ok && n > highest {
			highest = n
		}
	}
	return highest, nil
}

func (s *Tickets) ListByTicket(_ context.Context, ticketUUID string) ([]domain.TicketHistory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.TicketHistory{}, s.history[ticketUUID]...), nil
}

func matchTicket(t *domain.Ticket, f repository.TicketFilter) bool {
	if f.UserID != nil && t.UserID != *f.UserID {
		return false
	}
	if f.ExcludeID != nil && t.ID == *f.ExcludeID {
		return false
	}
	if f.AssignedTo != nil && (t.AssignedTo == nil || *t.AssignedTo != *f.AssignedTo) {
		return false
	}
	if len(f.Statuses) > 0 && !contains(f.Statuses, t.Status) {
		return false
	}
	if len(f.Categories) > 0 && !contains(f.Categories, t.Category) {
		return false
	}
	if len(f.Priorities) > 0 && !contains(f.Priorities, t.Priority) {
		return false
	}
	if f.SearchTerm != nil {
		term := strings.ToLower(strings.TrimSpace(*f.SearchTerm))
		if term != "" && !strings.Contains(strings.ToLower(t.Subject), term) &&
			!strings.Contains(strings.ToLower(t.TicketID), term) {
			return false
		}
	}
	return true
}

func contains[T comparable](values []T, v T) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}

type duplicateKeyError struct {
	key string
	err error
}

func (e *duplicateKeyError) Error() string { return "duplicate key " + e.key }
func (e *duplicateKeyError) Unwrap() error { return e.err }

// Users stores customers and staff members keyed by id and email.
type Users struct {
	mu    sync.RWMutex
	users map[string]*domain.User
	staff map[string]*domain.StaffMember
}

// NewUsers returns an empty account store.
func NewUsers() *Users {
	return &Users{users: map[string]*domain.User{}, staff: map[string]*domain.StaffMember{}}
}

// StaffView exposes the staff half of the store as a repository.StaffRepository.
func (s *Users) StaffView() repository.StaffRepository { return staffView{s} }

var _ repository.UserRepository = (*Users)(nil)

func (s *Users) Create(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user.Email = strings.ToLower(user.Email)
	for _, u := range s.users {
		if u.Email == user.Email {
			return &duplicateKeyError{key: user.Email}
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	user.CreatedAt, user.UpdatedAt = now, now
	cp := *user
	s.users[user.ID] = &cp
	return nil
}

func (s *Users) GetByID(_ context.Context, id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *u
	return &cp, nil
}

func (s *Users) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	email = strings.ToLower(email)
	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type staffView struct{ s *Users }

func (v staffView) Create(_ context.Context, staff *domain.StaffMember) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	staff.Email = strings.ToLower(staff.Email)
	if staff.ID == "" {
		staff.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	staff.CreatedAt, staff.UpdatedAt = now, now
	cp := *staff
	v.s.staff[staff.ID] = &cp
	return nil
}

func (v staffView) GetByID(_ context.Context, id string) (*domain.StaffMember, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	m, ok := v.s.staff[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *m
	return &cp, nil
}

func (v staffView) GetByEmail(_ context.Context, email string) (*domain.StaffMember, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	email = strings.ToLower(email)
	for _, m := range v.s.staff {
		if m.Email == email {
			cp := *m
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (v staffView) List(_ context.Context, filter repository.StaffFilter) ([]domain.StaffMember, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	result := []domain.StaffMember{}
	for _, m := range v.s.staff {
		if filter.Role != nil && m.Role != *filter.Role {
			continue
		}
		if filter.Active != nil && m.Active != *filter.Active {
			continue
		}
		result = append(result, *m)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// FAQs stores FAQ entries.
type FAQs struct {
	mu   sync.Mutex
	faqs map[string]*domain.FAQ
}

// NewFAQs returns an empty FAQ store.
func NewFAQs() *FAQs {
	return &FAQs{faqs: map[string]*domain.FAQ{}}
}

var _ repository.FAQRepository = (*FAQs)(nil)

func (s *FAQs) Create(_ context.Context, faq *domain.FAQ) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if faq.ID == "" {
		faq.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	faq.CreatedAt, faq.UpdatedAt = now, now
	cp := *faq
	s.faqs[faq.ID] = &cp
	return nil
}

func (s *FAQs) List(_ context.Context, filter repository.FAQFilter) ([]domain.FAQ, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := []domain.FAQ{}
	for _, f := range s.faqs {
		if !f.IsActive {
			continue
		}
		if filter.Category != nil && *filter.Category != "" && f.Category != *filter.Category {
			continue
		}
		if filter.SearchTerm != nil {
			term := strings.ToLower(strings.TrimSpace(*filter.SearchTerm))
			if term != "" && !strings.Contains(strings.ToLower(f.Question), term) &&
				!strings.Contains(strings.ToLower(f.Answer), term) {
				continue
			}
		}
		result = append(result, *f)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].HelpfulCount != result[j].HelpfulCount {
			return result[i].HelpfulCount > result[j].HelpfulCount
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (s *FAQs) Vote(_ context.Context, id string, helpful bool) (*domain.FAQ, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.faqs[id]
	if !ok || !f.IsActive {
		return nil, pgx.ErrNoRows
	}
	if helpful {
		f.HelpfulCount++
	} else {
		f.NotHelpfulCount++
	}
	f.UpdatedAt = time.Now().UTC()
	cp := *f
	return &cp, nil
}
