package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/config"
	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/events"
	"github.com/spec-kit/support-desk/internal/observability"
	"github.com/spec-kit/support-desk/internal/repository"
	"github.com/spec-kit/support-desk/internal/storage"
	"github.com/spec-kit/support-desk/internal/workflow"
	apperrors "github.com/spec-kit/support-desk/pkg/util/errorutil"
)

const (
	maxSubjectLength    = 200
	customerHistorySize = 50
	maxKeyAttempts      = 3
)

// KeyGenerator issues human-facing ticket keys. Resync moves the generator past
// keys already stored.
type KeyGenerator interface {
	Next(ctx context.Context) (string, error)
	Resync(ctx context.Context) error
}

// TicketService coordinates ticket workflows. Decisions are taken by the workflow
// package; this service loads, persists, uploads and publishes around them.
type TicketService struct {
	tickets   repository.TicketRepository
	history   repository.TicketHistoryRepository
	staff     repository.StaffRepository
	keys      KeyGenerator
	files     storage.Store
	publisher events.Publisher
	metrics   *observability.Metrics
	logger    *zap.Logger
	limits    config.TicketsConfig
	filesRoot string

	sanitizer *textSanitizer
	locks     *keyedMutex
	now       func() time.Time
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo  repository.TicketRepository
	HistoryRepo repository.TicketHistoryRepository
	StaffRepo   repository.StaffRepository
	Keys        KeyGenerator
	Files       storage.Store
	Publisher   events.Publisher
	Metrics     *observability.Metrics
	Logger      *zap.Logger
	Limits      config.TicketsConfig
	FilesPrefix string
	Clock       func() time.Time
}

// AttachmentUpload is a file received with a ticket or message.
type AttachmentUpload struct {
	OriginalName string
	ContentType  string
	Data         []byte
}

// CreateTicketInput describes ticket creation payload.
type CreateTicketInput struct {
	Subject     string
	Category    domain.TicketCategory
	Content     string
	Attachments []AttachmentUpload
}

// PostMessageInput describes a reply or internal note.
type PostMessageInput struct {
	Content     string
	IsInternal  bool
	Attachments []AttachmentUpload
}

// TicketListFilter describes listing filters. Page is 1-based.
type TicketListFilter struct {
	Statuses   []domain.TicketStatus
	Categories []domain.TicketCategory
	Priorities []domain.TicketPriority
	AssignedTo *string
	Search     *string
	Page       int
	Limit      int
}

// TicketPage is one page of a ticket listing.
type TicketPage struct {
	Tickets []domain.Ticket
	Page    int
	Limit   int
	Total   int
}

// Pages returns the number of pages for the listing.
func (p TicketPage) Pages() int {
	if p.Limit <= 0 {
		return 0
	}
	return (p.Total + p.Limit - 1) / p.Limit
}

// TicketView is a ticket filtered for its viewer. Staff viewers also get the
// customer's other tickets, newest first.
type TicketView struct {
	Ticket          *domain.Ticket
	CustomerTickets []domain.Ticket
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := deps.Clock
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	limits := deps.Limits
	if limits.DefaultPageSize <= 0 {
		limits.DefaultPageSize = 20
	}
	if limits.MaxPageSize <= 0 {
		limits.MaxPageSize = 100
	}
	return &TicketService{
		tickets:   deps.TicketRepo,
		history:   deps.HistoryRepo,
		staff:     deps.StaffRepo,
		keys:      deps.Keys,
		files:     deps.Files,
		publisher: deps.Publisher,
		metrics:   deps.Metrics,
		logger:    logger,
		limits:    limits,
		filesRoot: deps.FilesPrefix,
		sanitizer: newTextSanitizer(),
		locks:     newKeyedMutex(),
		now:       clock,
	}
}

// CreateTicket opens a ticket for the calling customer with its first message.
func (s *TicketService) CreateTicket(ctx context.Context, actor domain.Actor, input CreateTicketInput) (ticket *domain.Ticket, err error) {
	defer s.observe("create_ticket", &err)

	if !actor.IsCustomer() {
		return nil, apperrors.NewForbidden("you do not have permission to open tickets")
	}
	subject := s.sanitizer.Clean(input.Subject)
	content := s.sanitizer.Clean(input.Content)
	switch {
	case subject == "":
		return nil, apperrors.NewValidationError("subject is required", nil)
	case utf8.RuneCountInString(subject) > maxSubjectLength:
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("subject must be at most %d characters", maxSubjectLength), nil)
	case !input.Category.Valid():
		return nil, apperrors.NewValidationError("invalid category", map[string]any{"category": input.Category})
	case content == "":
		return nil, apperrors.NewValidationError("content is required", nil)
	}
	if err := s.checkAttachments(input.Attachments); err != nil {
		return nil, err
	}

	now := s.now()
	ticket = &domain.Ticket{
		ID:        uuid.NewString(),
		UserID:    actor.ID,
		Subject:   subject,
		Category:  input.Category,
		Status:    domain.TicketStatusOpen,
		Priority:  domain.TicketPriorityMedium,
		CreatedAt: now,
		UpdatedAt: now,
	}

	for attempt := 1; ; attempt++ {
		err = s.createWithNextKey(ctx, actor, ticket, content, input.Attachments, now)
		if !errors.Is(err, repository.ErrDuplicateTicketKey) || attempt == maxKeyAttempts {
			break
		}
		s.logger.Warn("ticket key already in use, resyncing sequence",
			zap.String("ticket_id", ticket.TicketID), zap.Int("attempt", attempt))
		if rerr := s.keys.Resync(ctx); rerr != nil {
			return nil, apperrors.NewInternalError(rerr)
		}
	}
	if err != nil {
		return nil, translate(err)
	}

	s.publish(ctx, actor, ticket, events.EventTicketCreated, events.TicketCreatedPayload{
		UserID:   ticket.UserID,
		Subject:  ticket.Subject,
		Category: ticket.Category,
		Priority: ticket.Priority,
	}, &events.Notice{
		RecipientID: ticket.UserID,
		Summary:     fmt.Sprintf("We received your ticket %s: %s", ticket.TicketID, ticket.Subject),
	})
	return workflow.ViewFor(ticket, actor.Role), nil
}

// createWithNextKey draws a key, uploads attachments under it and stores the
// ticket with its first message. Uploads are removed when the store rejects it.
func (s *TicketService) createWithNextKey(ctx context.Context, actor domain.Actor, ticket *domain.Ticket, content string, files []AttachmentUpload, now time.Time) error {
	key, err := s.keys.Next(ctx)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	ticket.TicketID = key

	uploaded, keys, err := s.upload(ctx, key, files)
	if err != nil {
		return err
	}
	draft := workflow.MessageDraft{Content: content, AttachmentCount: len(uploaded)}
	msg := workflow.NewMessage(ticket, actor, draft, uploaded, now)
	msg.ID = uuid.NewString()
	ticket.Messages = []domain.TicketMessage{msg}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		s.discard(keys)
		return err
	}
	return nil
}

// PostMessage appends a reply or internal note to a ticket.
func (s *TicketService) PostMessage(ctx context.Context, actor domain.Actor, ticketID string, input PostMessageInput) (view *domain.Ticket, err error) {
	defer s.observe("post_message", &err)

	unlock := s.locks.Lock(ticketID)
	defer unlock()

	ticket, err := s.load(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	draft := workflow.MessageDraft{
		Content:         s.sanitizer.Clean(input.Content),
		AttachmentCount: len(input.Attachments),
		IsInternal:      input.IsInternal,
	}
	if err := workflow.AuthorizeMessage(ticket, actor, draft); err != nil {
		return nil, translate(err)
	}
	if err := s.checkAttachments(input.Attachments); err != nil {
		return nil, err
	}

	uploaded, keys, err := s.upload(ctx, ticket.TicketID, input.Attachments)
	if err != nil {
		return nil, err
	}
	msg := workflow.NewMessage(ticket, actor, draft, uploaded, s.now())
	msg.ID = uuid.NewString()

	if err := s.tickets.AppendMessage(ctx, ticket, msg); err != nil {
		s.discard(keys)
		return nil, translate(err)
	}

	var notice *events.Notice
	if actor.IsStaff() && !msg.IsInternal {
		notice = &events.Notice{
			RecipientID: ticket.UserID,
			Summary:     fmt.Sprintf("Support replied to your ticket %s.", ticket.TicketID),
		}
	}
	s.publish(ctx, actor, ticket, events.EventTicketMessageAdded, events.TicketMessageAddedPayload{
		MessageID:       msg.ID,
		SenderType:      msg.SenderType,
		IsInternal:      msg.IsInternal,
		AttachmentCount: len(msg.Attachments),
		BodyPreview:     stringPreview(msg.Content, 120),
	}, notice)
	return workflow.ViewFor(ticket, actor.Role), nil
}

// ChangeStatus moves a ticket through the status table.
func (s *TicketService) ChangeStatus(ctx context.Context, actor domain.Actor, ticketID string, status domain.TicketStatus) (view *domain.Ticket, err error) {
	defer s.observe("change_status", &err)

	var prev domain.TicketStatus
	ticket, out, err := s.mutate(ctx, ticketID, func(t *domain.Ticket) (workflow.Outcome, error) {
		prev = t.Status
		return workflow.SetStatus(t, status, actor, s.now())
	})
	if err != nil {
		return nil, err
	}
	if out.Changed {
		s.publishOutcome(ctx, actor, ticket, events.EventTicketStatusChanged, events.TicketStatusChangedPayload{
			OldStatus: prev,
			NewStatus: ticket.Status,
			Reopened:  prev == domain.TicketStatusClosed,
		}, out)
	}
	return workflow.ViewFor(ticket, actor.Role), nil
}

// ChangePriority updates the ticket priority.
func (s *TicketService) ChangePriority(ctx context.Context, actor domain.Actor, ticketID string, priority domain.TicketPriority) (view *domain.Ticket, err error) {
	defer s.observe("change_priority", &err)

	var prev domain.TicketPriority
	ticket, out, err := s.mutate(ctx, ticketID, func(t *domain.Ticket) (workflow.Outcome, error) {
		prev = t.Priority
		return workflow.SetPriority(t, priority, actor, s.now())
	})
	if err != nil {
		return nil, err
	}
	if out.Changed {
		s.publishOutcome(ctx, actor, ticket, events.EventTicketPriorityChanged, events.TicketPriorityChangedPayload{
			OldPriority: prev,
			NewPriority: ticket.Priority,
		}, out)
	}
	return workflow.ViewFor(ticket, actor.Role), nil
}

// Assign sets or clears the assignee. An empty or nil staffID unassigns.
func (s *TicketService) Assign(ctx context.Context, actor domain.Actor, ticketID string, staffID *string) (view *domain.Ticket, err error) {
	defer s.observe("assign", &err)

	if staffID != nil && *staffID != "" && actor.IsStaff() {
		if err := s.checkAssignee(ctx, *staffID); err != nil {
			return nil, err
		}
	}
	ticket, out, err := s.mutate(ctx, ticketID, func(t *domain.Ticket) (workflow.Outcome, error) {
		return workflow.Assign(t, staffID, actor, s.now())
	})
	if err != nil {
		return nil, err
	}
	s.publishAssigned(ctx, actor, ticket, out)
	return workflow.ViewFor(ticket, actor.Role), nil
}

// AssignToSelf assigns the ticket to the calling staff member.
func (s *TicketService) AssignToSelf(ctx context.Context, actor domain.Actor, ticketID string) (view *domain.Ticket, err error) {
	defer s.observe("assign_self", &err)

	ticket, out, err := s.mutate(ctx, ticketID, func(t *domain.Ticket) (workflow.Outcome, error) {
		return workflow.AssignToSelf(t, actor, s.now())
	})
	if err != nil {
		return nil, err
	}
	s.publishAssigned(ctx, actor, ticket, out)
	return workflow.ViewFor(ticket, actor.Role), nil
}

// Rate records the customer's satisfaction rating on a closed ticket.
func (s *TicketService) Rate(ctx context.Context, actor domain.Actor, ticketID string, rating int, feedback string) (view *domain.Ticket, err error) {
	defer s.observe("rate", &err)

	feedback = s.sanitizer.Clean(feedback)
	ticket, out, err := s.mutate(ctx, ticketID, func(t *domain.Ticket) (workflow.Outcome, error) {
		return workflow.SubmitRating(t, rating, feedback, actor, s.now())
	})
	if err != nil {
		return nil, err
	}
	s.publishOutcome(ctx, actor, ticket, events.EventTicketRated, events.TicketRatedPayload{
		Rating:      rating,
		HasFeedback: ticket.Feedback != nil,
	}, out)
	return workflow.ViewFor(ticket, actor.Role), nil
}

// GetTicketForViewer returns the ticket as the actor may see it.
func (s *TicketService) GetTicketForViewer(ctx context.Context, actor domain.Actor, ticketID string) (*TicketView, error) {
	ticket, err := s.load(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	switch {
	case actor.IsStaff():
		others, _, err := s.tickets.ListWithFilter(ctx, repository.TicketFilter{
			UserID:    &ticket.UserID,
			ExcludeID: &ticket.ID,
			Page:      repository.Page{Limit: customerHistorySize},
		})
		if err != nil {
			return nil, translate(err)
		}
		return &TicketView{Ticket: workflow.ViewFor(ticket, actor.Role), CustomerTickets: others}, nil
	case actor.IsCustomer() && ticket.IsOwnedBy(actor.ID):
		return &TicketView{Ticket: workflow.ViewFor(ticket, actor.Role)}, nil
	}
	return nil, apperrors.NewForbidden("you do not have permission to view this ticket")
}

// ListOwnTickets lists the calling customer's tickets, newest first.
func (s *TicketService) ListOwnTickets(ctx context.Context, actor domain.Actor, filter TicketListFilter) (*TicketPage, error) {
	if !actor.IsCustomer() {
		return nil, apperrors.NewForbidden("you do not have permission to list customer tickets")
	}
	filter.Priorities, filter.AssignedTo, filter.Search = nil, nil, nil
	return s.list(ctx, &actor.ID, filter)
}

// ListAllTickets lists every ticket for staff, with search and filters.
func (s *TicketService) ListAllTickets(ctx context.Context, actor domain.Actor, filter TicketListFilter) (*TicketPage, error) {
	if !actor.IsStaff() {
		return nil, apperrors.NewForbidden("you do not have permission to list all tickets")
	}
	return s.list(ctx, nil, filter)
}

// ListCustomerTickets lists one customer's tickets for staff.
func (s *TicketService) ListCustomerTickets(ctx context.Context, actor domain.Actor, userID string, filter TicketListFilter) (*TicketPage, error) {
	if !actor.IsStaff() {
		return nil, apperrors.NewForbidden("you do not have permission to view customer history")
	}
	if strings.TrimSpace(userID) == "" {
		return nil, apperrors.NewValidationError("userId is required", nil)
	}
	if err := checkID("userId", userID); err != nil {
		return nil, err
	}
	return s.list(ctx, &userID, filter)
}

// ListHistory returns the audit trail of a ticket, oldest first.
func (s *TicketService) ListHistory(ctx context.Context, actor domain.Actor, ticketID string) ([]domain.TicketHistory, error) {
	if !actor.IsStaff() {
		return nil, apperrors.NewForbidden("you do not have permission to view ticket history")
	}
	ticket, err := s.load(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	history, err := s.history.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, translate(err)
	}
	return history, nil
}

func (s *TicketService) list(ctx context.Context, userID *string, filter TicketListFilter) (*TicketPage, error) {
	for _, st := range filter.Statuses {
		if !st.Valid() {
			return nil, translate(workflow.ErrUnknownStatus)
		}
	}
	for _, p := range filter.Priorities {
		if !p.Valid() {
			return nil, translate(workflow.ErrUnknownPriority)
		}
	}
	for _, c := range filter.Categories {
		if !c.Valid() {
			return nil, apperrors.NewValidationError("invalid category", map[string]any{"category": c})
		}
	}
	if filter.AssignedTo != nil {
		if err := checkID("assignedTo", *filter.AssignedTo); err != nil {
			return nil, err
		}
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = s.limits.DefaultPageSize
	}
	if limit > s.limits.MaxPageSize {
		limit = s.limits.MaxPageSize
	}

	tickets, total, err := s.tickets.ListWithFilter(ctx, repository.TicketFilter{
		UserID:     userID,
		AssignedTo: filter.AssignedTo,
		Statuses:   filter.Statuses,
		Categories: filter.Categories,
		Priorities: filter.Priorities,
		SearchTerm: filter.Search,
		Page:       repository.Page{Limit: limit, Offset: (page - 1) * limit},
	})
	if err != nil {
		return nil, translate(err)
	}
	if tickets == nil {
		tickets = []domain.Ticket{}
	}
	return &TicketPage{Tickets: tickets, Page: page, Limit: limit, Total: total}, nil
}

// mutate runs one version-checked state change under the ticket's lock.
func (s *TicketService) mutate(ctx context.Context, ticketID string, decide func(*domain.Ticket) (workflow.Outcome, error)) (*domain.Ticket, workflow.Outcome, error) {
	unlock := s.locks.Lock(ticketID)
	defer unlock()

	ticket, err := s.load(ctx, ticketID)
	if err != nil {
		return nil, workflow.Outcome{}, err
	}
	out, err := decide(ticket)
	if err != nil {
		return nil, workflow.Outcome{}, translate(err)
	}
	if !out.Changed {
		return ticket, out, nil
	}
	for i := range out.History {
		out.History[i].ID = uuid.NewString()
	}
	if err := s.tickets.Update(ctx, ticket, out.History...); err != nil {
		return nil, workflow.Outcome{}, translate(err)
	}
	return ticket, out, nil
}

func (s *TicketService) load(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticketID = strings.TrimSpace(ticketID)
	if ticketID == "" {
		return nil, apperrors.NewValidationError("ticketId is required", nil)
	}
	ticket, err := s.tickets.GetByTicketID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticketId": ticketID})
		}
		return nil, translate(err)
	}
	return ticket, nil
}

func (s *TicketService) checkAssignee(ctx context.Context, staffID string) error {
	if err := checkID("assignedUserId", staffID); err != nil {
		return err
	}
	if s.staff == nil {
		return nil
	}
	member, err := s.staff.GetByID(ctx, staffID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewValidationError("assignee must be an active staff member", map[string]any{"assignedUserId": staffID})
		}
		return translate(err)
	}
	if !member.Active {
		return apperrors.NewValidationError("assignee must be an active staff member", map[string]any{"assignedUserId": staffID})
	}
	return nil
}

// checkID rejects values the UUID columns would refuse.
func checkID(field, value string) error {
	if len(value) != 36 {
		return apperrors.NewValidationError(field+" must be a valid id", map[string]any{field: value})
	}
	if _, err := uuid.Parse(value); err != nil {
		return apperrors.NewValidationError(field+" must be a valid id", map[string]any{field: value})
	}
	return nil
}

func (s *TicketService) checkAttachments(files []AttachmentUpload) error {
	if s.limits.MaxAttachments > 0 && len(files) > s.limits.MaxAttachments {
		return apperrors.NewValidationError(
			fmt.Sprintf("at most %d attachments are allowed", s.limits.MaxAttachments), nil)
	}
	for _, f := range files {
		if len(f.Data) == 0 {
			return apperrors.NewValidationError("attachment is empty", map[string]any{"file": f.OriginalName})
		}
		if s.limits.MaxAttachmentBytes > 0 && int64(len(f.Data)) > s.limits.MaxAttachmentBytes {
			return apperrors.NewValidationError("attachment is too large", map[string]any{
				"file":     f.OriginalName,
				"maxBytes": s.limits.MaxAttachmentBytes,
			})
		}
	}
	if len(files) > 0 && s.files == nil {
		return apperrors.NewValidationError("attachments are not supported", nil)
	}
	return nil
}

// upload stores every file before the message is recorded. On failure the files
// written so far are removed.
func (s *TicketService) upload(ctx context.Context, ticketKey string, files []AttachmentUpload) ([]domain.Attachment, []string, error) {
	if len(files) == 0 {
		return nil, nil, nil
	}
	attachments := make([]domain.Attachment, 0, len(files))
	keys := make([]string, 0, len(files))
	for _, f := range files {
		key := storage.ObjectKey(s.filesRoot, ticketKey, f.OriginalName)
		mime := storage.DetectContentType(f.Data, f.ContentType)
		url, err := s.files.Put(ctx, key, f.Data, mime)
		if err != nil {
			s.discard(keys)
			return nil, nil, apperrors.NewInternalError(fmt.Errorf("upload attachment: %w", err))
		}
		keys = append(keys, key)
		attachments = append(attachments, domain.Attachment{
			Filename:     key[strings.LastIndex(key, "/")+1:],
			OriginalName: f.OriginalName,
			Mimetype:     mime,
			Size:         int64(len(f.Data)),
			URL:          url,
		})
	}
	return attachments, keys, nil
}

func (s *TicketService) discard(keys []string) {
	if len(keys) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, key := range keys {
		if err := s.files.Delete(ctx, key); err != nil {
			s.logger.Warn("remove orphaned attachment", zap.String("key", key), zap.Error(err))
		}
	}
}

func (s *TicketService) publishAssigned(ctx context.Context, actor domain.Actor, ticket *domain.Ticket, out workflow.Outcome) {
	if !out.Changed {
		return
	}
	s.publishOutcome(ctx, actor, ticket, events.EventTicketAssigned, events.TicketAssignedPayload{
		AssignedTo: ticket.AssignedTo,
	}, out)
}

func (s *TicketService) publishOutcome(ctx context.Context, actor domain.Actor, ticket *domain.Ticket, eventType events.EventType, payload any, out workflow.Outcome) {
	var notice *events.Notice
	if len(out.Notifications) > 0 {
		n := out.Notifications[0]
		notice = &events.Notice{RecipientID: n.RecipientID, Summary: n.Summary}
	}
	s.publish(ctx, actor, ticket, eventType, payload, notice)
}

func (s *TicketService) publish(ctx context.Context, actor domain.Actor, ticket *domain.Ticket, eventType events.EventType, payload any, notice *events.Notice) {
	if s.publisher == nil {
		return
	}
	event := events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		TicketID:  ticket.TicketID,
		Actor:     events.Actor{ID: actor.ID, Role: actor.Role},
		Notice:    notice,
		Timestamp: ticket.UpdatedAt,
		Payload:   payload,
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("publish event", zap.String("event_type", string(eventType)),
			zap.String("ticket_id", ticket.TicketID), zap.Error(err))
	}
}

func (s *TicketService) observe(op string, err *error) {
	s.metrics.RecordTicketOp(op, resultCode(*err))
}

func stringPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	if utf8.RuneCountInString(body) <= max {
		return body
	}
	runes := []rune(body)
	return string(runes[:max-3]) + "..."
}
