package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/support-desk/internal/config"
	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/events"
	"github.com/spec-kit/support-desk/internal/repository"
	"github.com/spec-kit/support-desk/internal/repository/memrepo"
	"github.com/spec-kit/support-desk/internal/storage"
	"github.com/spec-kit/support-desk/internal/ticketkey"
	apperrors "github.com/spec-kit/support-desk/pkg/util/errorutil"
)

const (
	customerID      = "6f1c2a4e-8b3d-4f5a-9c7e-0d1e2f3a4b01"
	otherCustomerID = "6f1c2a4e-8b3d-4f5a-9c7e-0d1e2f3a4b02"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) types() []events.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.EventType, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

type fixture struct {
	svc       *TicketService
	tickets   *memrepo.Tickets
	users     *memrepo.Users
	files     *storage.BlobStore
	published *recordingPublisher
	customer  domain.Actor
	other     domain.Actor
	staff     domain.Actor
	clock     time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	files, err := storage.OpenBlobStore(ctx, "mem://", "/attachments")
	require.NoError(t, err)
	t.Cleanup(func() { _ = files.Close() })

	users := memrepo.NewUsers()
	agent := &domain.StaffMember{Name: "Agent", Email: "agent@example.com", Role: domain.StaffRoleAgent, Active: true}
	require.NoError(t, users.StaffView().Create(ctx, agent))

	f := &fixture{
		tickets:   memrepo.NewTickets(),
		users:     users,
		files:     files,
		published: &recordingPublisher{},
		customer:  domain.CustomerActor(customerID),
		other:     domain.CustomerActor(otherCustomerID),
		staff:     agent.Actor(),
		clock:     time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
	}
	f.svc = NewTicketService(TicketDependencies{
		TicketRepo:  f.tickets,
		HistoryRepo: f.tickets,
		StaffRepo:   users.StaffView(),
		Keys:        ticketkey.NewGenerator("TKT", &ticketkey.MemorySequencer{}),
		Files:       files,
		Publisher:   f.published,
		Limits: config.TicketsConfig{
			MaxAttachments:     2,
			MaxAttachmentBytes: 1024,
		},
		FilesPrefix: "tickets",
		Clock: func() time.Time {
			f.clock = f.clock.Add(time.Minute)
			return f.clock
		},
	})
	return f
}

func (f *fixture) open(t *testing.T, actor domain.Actor) *domain.Ticket {
	t.Helper()
	ticket, err := f.svc.CreateTicket(context.Background(), actor, CreateTicketInput{
		Subject:  "Cannot log in",
		Category: domain.TicketCategoryTechnical,
		Content:  "Error 500 on login",
	})
	require.NoError(t, err)
	return ticket
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, code), "expected %s, got %v", code, err)
}

func TestCreateTicketSeedsCustomerMessage(t *testing.T) {
	f := newFixture(t)
	ticket := f.open(t, f.customer)

	assert.Equal(t, "TKT-000001", ticket.TicketID)
	assert.Equal(t, domain.TicketStatusOpen, ticket.Status)
	assert.Equal(t, domain.TicketPriorityMedium, ticket.Priority)
	assert.Nil(t, ticket.ResolvedAt)
	require.Len(t, ticket.Messages, 1)
	msg := ticket.Messages[0]
	assert.Equal(t, customerID, msg.SenderID)
	assert.Equal(t, domain.SenderTypeUser, msg.SenderType)
	assert.False(t, msg.IsInternal)
	assert.Equal(t, "Error 500 on login", msg.Content)
	assert.Equal(t, []events.EventType{events.EventTicketCreated}, f.published.types())
}

func TestCreateTicketValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateTicket(ctx, f.customer, CreateTicketInput{Category: domain.TicketCategoryBilling, Content: "x"})
	requireCode(t, err, apperrors.CodeValidation)

	_, err = f.svc.CreateTicket(ctx, f.customer, CreateTicketInput{Subject: "s", Category: "hardware", Content: "x"})
	requireCode(t, err, apperrors.CodeValidation)

	_, err = f.svc.CreateTicket(ctx, f.customer, CreateTicketInput{Subject: "s", Category: domain.TicketCategoryBilling, Content: "<b></b>"})
	requireCode(t, err, apperrors.CodeValidation)

	_, err = f.svc.CreateTicket(ctx, f.staff, CreateTicketInput{Subject: "s", Category: domain.TicketCategoryBilling, Content: "x"})
	requireCode(t, err, apperrors.CodeForbidden)
}

func TestCloseThenRateOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ticket := f.open(t, f.customer)

	_, err := f.svc.Rate(ctx, f.customer, ticket.TicketID, 5, "")
	requireCode(t, err, apperrors.CodeInvalidState)
	assert.Contains(t, err.Error(), "must be closed")

	closed, err := f.svc.ChangeStatus(ctx, f.staff, ticket.TicketID, domain.TicketStatusClosed)
	require.NoError(t, err)
	require.NotNil(t, closed.ResolvedAt)

	rated, err := f.svc.Rate(ctx, f.customer, ticket.TicketID, 5, "  <i>great</i> help ")
	require.NoError(t, err)
	require.NotNil(t, rated.Rating)
	assert.Equal(t, 5, *rated.Rating)
	require.NotNil(t, rated.Feedback)
	assert.Equal(t, "great help", *rated.Feedback)

	_, err = f.svc.Rate(ctx, f.customer, ticket.TicketID, 3, "")
	requireCode(t, err, apperrors.CodeAlreadyRated)

	view, err := f.svc.GetTicketForViewer(ctx, f.customer, ticket.TicketID)
	require.NoError(t, err)
	assert.Equal(t, 5, *view.Ticket.Rating)
}

func TestRateOrderOfChecks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ticket := f.open(t, f.customer)

	_, err := f.svc.Rate(ctx, f.other, ticket.TicketID, 9, "")
	requireCode(t, err, apperrors.CodeForbidden)

	_, err = f.svc.Rate(ctx, f.customer, ticket.TicketID, 0, "")
	requireCode(t, err, apperrors.CodeValidation)

	_, err = f.svc.Rate(ctx, f.staff, ticket.TicketID, 4, "")
	requireCode(t, err, apperrors.CodeForbidden)
}

func TestInternalNotesAreHiddenFromCustomer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ticket := f.open(t, f.customer)

	_, err := f.svc.PostMessage(ctx, f.staff, ticket.TicketID, PostMessageInput{Content: "escalate to dev team", IsInternal: true})
	require.NoError(t, err)
	_, err = f.svc.PostMessage(ctx, f.staff, ticket.TicketID, PostMessageInput{Content: "We are looking into it"})
	require.NoError(t, err)

	customerView, err := f.svc.GetTicketForViewer(ctx, f.customer, ticket.TicketID)
	require.NoError(t, err)
	require.Len(t, customerView.Ticket.Messages, 2)
	for _, m := range customerView.Ticket.Messages {
		assert.False(t, m.IsInternal)
	}
	assert.Nil(t, customerView.CustomerTickets)

	staffView, err := f.svc.GetTicketForViewer(ctx, f.staff, ticket.TicketID)
	require.NoError(t, err)
	require.Len(t, staffView.Ticket.Messages, 3)
	assert.True(t, staffView.Ticket.Messages[1].IsInternal)
	assert.Equal(t, domain.SenderTypeAdmin, staffView.Ticket.Messages[1].SenderType)
	assert.Equal(t, "escalate to dev team", staffView.Ticket.Messages[1].Content)
}

func TestPostMessageAuthorization(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ticket := f.open(t, f.customer)

	_, err := f.svc.PostMessage(ctx, f.customer, ticket.TicketID, PostMessageInput{Content: "secret", IsInternal: true})
	requireCode(t, err, apperrors.CodeForbidden)

	_, err = f.svc.PostMessage(ctx, f.other, ticket.TicketID, PostMessageInput{Content: "hi"})
	requireCode(t, err, apperrors.CodeForbidden)

	for _, actor := range []domain.Actor{f.customer, f.staff} {
		_, err = f.svc.PostMessage(ctx, actor, ticket.TicketID, PostMessageInput{Content: "   "})
		requireCode(t, err, apperrors.CodeValidation)
	}

	_, err = f.svc.PostMessage(ctx, f.customer, "TKT-999999", PostMessageInput{Content: "hi"})
	requireCode(t, err, apperrors.CodeNotFound)

	_, err = f.svc.ChangeStatus(ctx, f.staff, ticket.TicketID, domain.TicketStatusClosed)
	require.NoError(t, err)

	_, err = f.svc.PostMessage(ctx, f.customer, ticket.TicketID, PostMessageInput{Content: "still broken"})
	requireCode(t, err, apperrors.CodeInvalidState)

	view, err := f.svc.PostMessage(ctx, f.staff, ticket.TicketID, PostMessageInput{Content: "closing note"})
	require.NoError(t, err)
	assert.Len(t, view.Messages, 2)

	stored, err := f.tickets.GetByTicketID(ctx, ticket.TicketID)
	require.NoError(t, err)
	for _, m := range stored.Messages {
		if m.SenderType == domain.SenderTypeUser {
			assert.False(t, m.IsInternal)
		}
	}
}

func TestCustomerCannotChangeTicketFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ticket := f.open(t, f.customer)

	_, err := f.svc.ChangeStatus(ctx, f.customer, ticket.TicketID, domain.TicketStatusClosed)
	requireCode(t, err, apperrors.CodeForbidden)
	_, err = f.svc.ChangePriority(ctx, f.customer, ticket.TicketID, domain.TicketPriorityHigh)
	requireCode(t, err, apperrors.CodeForbidden)
	_, err = f.svc.AssignToSelf(ctx, f.customer, ticket.TicketID)
	requireCode(t, err, apperrors.CodeForbidden)
	_, err = f.svc.ListHistory(ctx, f.customer, ticket.TicketID)
	requireCode(t, err, apperrors.CodeForbidden)
	_, err = f.svc.ListAllTickets(ctx, f.customer, TicketListFilter{})
	requireCode(t, err, apperrors.CodeForbidden)

	stored, err := f.tickets.GetByTicketID(ctx, ticket.TicketID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusOpen, stored.Status)
	assert.Equal(t, int64(1), stored.Version)
}

func TestStatusLifecycleAndHistory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ticket := f.open(t, f.customer)
	key := ticket.TicketID

	_, err := f.svc.ChangeStatus(ctx, f.staff, key, "archived")
	requireCode(t, err, apperrors.CodeValidation)

	_, err = f.svc.ChangeStatus(ctx, f.staff, key, domain.TicketStatusInProgress)
	require.NoError(t, err)
	closed, err := f.svc.ChangeStatus(ctx, f.staff, key, domain.TicketStatusClosed)
	require.NoError(t, err)
	firstResolved := *closed.ResolvedAt

	reopened, err := f.svc.ChangeStatus(ctx, f.staff, key, domain.TicketStatusOpen)
	require.NoError(t, err)
	require.NotNil(t, reopened.ResolvedAt)
	assert.Equal(t, firstResolved, *reopened.ResolvedAt)

	same, err := f.svc.ChangeStatus(ctx, f.staff, key, domain.TicketStatusOpen)
	require.NoError(t, err)
	assert.Equal(t, reopened.Version, same.Version)

	again, err := f.svc.ChangeStatus(ctx, f.staff, key, domain.TicketStatusClosed)
	require.NoError(t, err)
	assert.True(t, again.ResolvedAt.After(firstResolved))

	_, err = f.svc.ChangePriority(ctx, f.staff, key, domain.TicketPriorityCritical)
	require.NoError(t, err)

	history, err := f.svc.ListHistory(ctx, f.staff, key)
	require.NoError(t, err)
	var types []domain.TicketChangeType
	for _, h := range history {
		types = append(types, h.ChangeType)
		assert.Equal(t, f.staff.ID, h.FromUser)
		assert.NotEmpty(t, h.ID)
	}
	assert.Equal(t, []domain.TicketChangeType{
		domain.ChangeTypeStatus,
		domain.ChangeTypeStatus,
		domain.ChangeTypeReopen,
		domain.ChangeTypeStatus,
		domain.ChangeTypePriority,
	}, types)
}

func TestAssignment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ticket := f.open(t, f.customer)

	self, err := f.svc.AssignToSelf(ctx, f.staff, ticket.TicketID)
	require.NoError(t, err)
	require.NotNil(t, self.AssignedTo)
	assert.Equal(t, f.staff.ID, *self.AssignedTo)

	ghost := "0b7e6d5c-4a3b-4c2d-9e1f-000000000000"
	_, err = f.svc.Assign(ctx, f.staff, ticket.TicketID, &ghost)
	requireCode(t, err, apperrors.CodeValidation)

	cleared, err := f.svc.Assign(ctx, f.staff, ticket.TicketID, nil)
	require.NoError(t, err)
	assert.Nil(t, cleared.AssignedTo)

	assert.Equal(t, []events.EventType{
		events.EventTicketCreated,
		events.EventTicketAssigned,
		events.EventTicketAssigned,
	}, f.published.types())
}

func TestStaleWriteIsConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ticket := f.open(t, f.customer)

	stale, err := f.tickets.GetByTicketID(ctx, ticket.TicketID)
	require.NoError(t, err)

	_, err = f.svc.ChangePriority(ctx, f.staff, ticket.TicketID, domain.TicketPriorityHigh)
	require.NoError(t, err)

	stale.Status = domain.TicketStatusClosed
	err = translate(f.tickets.Update(ctx, stale))
	requireCode(t, err, apperrors.CodeConflict)
}

func TestConcurrentRatingsRecordOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ticket := f.open(t, f.customer)
	_, err := f.svc.ChangeStatus(ctx, f.staff, ticket.TicketID, domain.TicketStatusClosed)
	require.NoError(t, err)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 1; i <= 5; i++ {
		wg.Add(1)
		go func(r int) {
			defer wg.Done()
			if _, err := f.svc.Rate(ctx, f.customer, ticket.TicketID, r, ""); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 1, succeeded)
}

func TestAttachmentsAreStored(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ticket := f.open(t, f.customer)

	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	view, err := f.svc.PostMessage(ctx, f.customer, ticket.TicketID, PostMessageInput{
		Attachments: []AttachmentUpload{{OriginalName: "screen.png", ContentType: "application/octet-stream", Data: png}},
	})
	require.NoError(t, err)
	require.Len(t, view.Messages, 2)
	att := view.Messages[1].Attachments
	require.Len(t, att, 1)
	assert.Equal(t, "screen.png", att[0].OriginalName)
	assert.Equal(t, "image/png", att[0].Mimetype)
	assert.Equal(t, int64(len(png)), att[0].Size)
	assert.Contains(t, att[0].URL, "/attachments/tickets/"+ticket.TicketID+"/")
	assert.Empty(t, view.Messages[1].Content)

	big := make([]byte, 2048)
	_, err = f.svc.PostMessage(ctx, f.customer, ticket.TicketID, PostMessageInput{
		Attachments: []AttachmentUpload{{OriginalName: "big.bin", Data: big}},
	})
	requireCode(t, err, apperrors.CodeValidation)

	three := []AttachmentUpload{{OriginalName: "a", Data: png}, {OriginalName: "b", Data: png}, {OriginalName: "c", Data: png}}
	_, err = f.svc.PostMessage(ctx, f.customer, ticket.TicketID, PostMessageInput{Content: "x", Attachments: three})
	requireCode(t, err, apperrors.CodeValidation)
}

type failingAppend struct {
	repository.TicketRepository
}

func (failingAppend) AppendMessage(context.Context, *domain.Ticket, domain.TicketMessage) error {
	return errors.New("db down")
}

type recordingStore struct {
	storage.Store
	put []string
}

func (r *recordingStore) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	r.put = append(r.put, key)
	return r.Store.Put(ctx, key, data, contentType)
}

func TestAttachmentsRemovedWhenMessageFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ticket := f.open(t, f.customer)
	rec := &recordingStore{Store: f.files}
	f.svc.files = rec
	f.svc.tickets = failingAppend{f.tickets}

	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	_, err := f.svc.PostMessage(ctx, f.customer, ticket.TicketID, PostMessageInput{
		Attachments: []AttachmentUpload{{OriginalName: "a.png", Data: png}, {OriginalName: "b.png", Data: png}},
	})
	requireCode(t, err, apperrors.CodeInternal)

	require.Len(t, rec.put, 2)
	for _, key := range rec.put {
		ok, err := f.files.Exists(ctx, key)
		require.NoError(t, err)
		assert.False(t, ok, key)
	}
}

func TestStaffViewIncludesCustomerHistory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first := f.open(t, f.customer)
	second := f.open(t, f.customer)
	third := f.open(t, f.customer)
	f.open(t, f.other)

	view, err := f.svc.GetTicketForViewer(ctx, f.staff, second.TicketID)
	require.NoError(t, err)
	require.Len(t, view.CustomerTickets, 2)
	assert.Equal(t, third.TicketID, view.CustomerTickets[0].TicketID)
	assert.Equal(t, first.TicketID, view.CustomerTickets[1].TicketID)

	_, err = f.svc.GetTicketForViewer(ctx, f.other, second.TicketID)
	requireCode(t, err, apperrors.CodeForbidden)
}

func TestListings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		f.open(t, f.customer)
	}
	otherTicket := f.open(t, f.other)
	_, err := f.svc.ChangeStatus(ctx, f.staff, otherTicket.TicketID, domain.TicketStatusClosed)
	require.NoError(t, err)

	own, err := f.svc.ListOwnTickets(ctx, f.customer, TicketListFilter{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, own.Total)
	assert.Equal(t, 2, own.Pages())
	require.Len(t, own.Tickets, 1)
	assert.Equal(t, "TKT-000001", own.Tickets[0].TicketID)

	all, err := f.svc.ListAllTickets(ctx, f.staff, TicketListFilter{Statuses: []domain.TicketStatus{domain.TicketStatusClosed}})
	require.NoError(t, err)
	require.Len(t, all.Tickets, 1)
	assert.Equal(t, otherTicket.TicketID, all.Tickets[0].TicketID)

	search := "000002"
	found, err := f.svc.ListAllTickets(ctx, f.staff, TicketListFilter{Search: &search})
	require.NoError(t, err)
	assert.Equal(t, 1, found.Total)

	_, err = f.svc.ListAllTickets(ctx, f.staff, TicketListFilter{Statuses: []domain.TicketStatus{"bogus"}})
	requireCode(t, err, apperrors.CodeValidation)

	history, err := f.svc.ListCustomerTickets(ctx, f.staff, f.other.ID, TicketListFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, history.Total)
}

func TestReplyNoticesFollowVisibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ticket := f.open(t, f.customer)

	_, err := f.svc.PostMessage(ctx, f.staff, ticket.TicketID, PostMessageInput{Content: "note", IsInternal: true})
	require.NoError(t, err)
	_, err = f.svc.PostMessage(ctx, f.staff, ticket.TicketID, PostMessageInput{Content: "reply"})
	require.NoError(t, err)

	f.published.mu.Lock()
	defer f.published.mu.Unlock()
	require.Len(t, f.published.events, 3)
	assert.Nil(t, f.published.events[1].Notice)
	require.NotNil(t, f.published.events[2].Notice)
	assert.Equal(t, f.customer.ID, f.published.events[2].Notice.RecipientID)
}

func TestCreateTicketSkipsKeysAlreadyStored(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first := f.open(t, f.customer)
	require.Equal(t, "TKT-000001", first.TicketID)

	// A counter that restarted from zero, as after a Redis flush.
	f.svc.keys = ticketkey.NewGenerator("TKT", &ticketkey.MemorySequencer{Floor: f.tickets.MaxKeySequence})

	second, err := f.svc.CreateTicket(ctx, f.customer, CreateTicketInput{
		Subject:     "Still broken",
		Category:    domain.TicketCategoryTechnical,
		Content:     "Second report",
		Attachments: []AttachmentUpload{{OriginalName: "log.txt", Data: []byte("trace")}},
	})
	require.NoError(t, err)
	assert.Equal(t, "TKT-000002", second.TicketID)
	require.Len(t, second.Messages, 1)
	require.Len(t, second.Messages[0].Attachments, 1)
	assert.Contains(t, second.Messages[0].Attachments[0].URL, "TKT-000002")

	third := f.open(t, f.other)
	assert.Equal(t, "TKT-000003", third.TicketID)
}

type stuckKeys struct{}

func (stuckKeys) Next(context.Context) (string, error) { return "TKT-000001", nil }
func (stuckKeys) Resync(context.Context) error         { return nil }

func TestCreateTicketGivesUpOnTakenKey(t *testing.T) {
	f := newFixture(t)
	f.open(t, f.customer)
	f.svc.keys = stuckKeys{}

	_, err := f.svc.CreateTicket(context.Background(), f.customer, CreateTicketInput{
		Subject:  "Again",
		Category: domain.TicketCategoryBilling,
		Content:  "Charged twice",
	})
	requireCode(t, err, apperrors.CodeConflict)
}

func TestMalformedIDsAreValidationErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ticket := f.open(t, f.customer)

	bad := "abc"
	_, err := f.svc.Assign(ctx, f.staff, ticket.TicketID, &bad)
	requireCode(t, err, apperrors.CodeValidation)

	_, err = f.svc.ListCustomerTickets(ctx, f.staff, "abc", TicketListFilter{})
	requireCode(t, err, apperrors.CodeValidation)

	_, err = f.svc.ListAllTickets(ctx, f.staff, TicketListFilter{AssignedTo: &bad})
	requireCode(t, err, apperrors.CodeValidation)

	staffID := f.staff.ID
	page, err := f.svc.ListAllTickets(ctx, f.staff, TicketListFilter{AssignedTo: &staffID})
	require.NoError(t, err)
	assert.Zero(t, page.Total)

	// Customers are refused before their input is looked at.
	_, err = f.svc.Assign(ctx, f.customer, ticket.TicketID, &bad)
	requireCode(t, err, apperrors.CodeForbidden)
}
