package workflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/support-desk/internal/domain"
)

var (
	t0       = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	staff    = domain.StaffActor("staff-1")
	customer = domain.CustomerActor("user-1")
)

func newTicket() *domain.Ticket {
	return &domain.Ticket{
		ID:        "id-1",
		TicketID:  "TKT-000001",
		UserID:    customer.ID,
		Subject:   "Cannot log in",
		Category:  domain.TicketCategoryTechnical,
		Status:    domain.TicketStatusOpen,
		Priority:  domain.TicketPriorityMedium,
		CreatedAt: t0,
		UpdatedAt: t0,
	}
}

func TestSetStatusRequiresStaff(t *testing.T) {
	ticket := newTicket()
	_, err := SetStatus(ticket, domain.TicketStatusClosed, customer, t0)
	require.ErrorIs(t, err, ErrStaffOnly)
	assert.Equal(t, domain.TicketStatusOpen, ticket.Status)
}

func TestSetStatusRejectsUnknownStatus(t *testing.T) {
	_, err := SetStatus(newTicket(), domain.TicketStatus("resolved"), staff, t0)
	require.ErrorIs(t, err, ErrUnknownStatus)
}

func TestSetStatusCloseStampsResolvedAt(t *testing.T) {
	ticket := newTicket()
	closedAt := t0.Add(time.Hour)

	out, err := SetStatus(ticket, domain.TicketStatusClosed, staff, closedAt)
	require.NoError(t, err)

	assert.True(t, out.Changed)
	require.NotNil(t, ticket.ResolvedAt)
	assert.Equal(t, closedAt, *ticket.ResolvedAt)
	require.Len(t, out.History, 1)
	assert.Equal(t, domain.ChangeTypeStatus, out.History[0].ChangeType)
	assert.Equal(t, "open", out.History[0].FromValue)
	assert.Equal(t, "closed", out.History[0].ToValue)
	assert.Equal(t, staff.ID, out.History[0].FromUser)
	require.Len(t, out.Notifications, 1)
	assert.Equal(t, customer.ID, out.Notifications[0].RecipientID)
}

func TestReopenKeepsResolvedAt(t *testing.T) {
	ticket := newTicket()
	closedAt := t0.Add(time.Hour)
	_, err := SetStatus(ticket, domain.TicketStatusClosed, staff, closedAt)
	require.NoError(t, err)

	out, err := SetStatus(ticket, domain.TicketStatusOpen, staff, closedAt.Add(time.Hour))
	require.NoError(t, err)

	assert.Equal(t, domain.TicketStatusOpen, ticket.Status)
	require.NotNil(t, ticket.ResolvedAt)
	assert.Equal(t, closedAt, *ticket.ResolvedAt)
	assert.Equal(t, domain.ChangeTypeReopen, out.History[0].ChangeType)
}

func TestSetStatusSameStatusIsNoop(t *testing.T) {
	ticket := newTicket()
	out, err := SetStatus(ticket, domain.TicketStatusOpen, staff, t0.Add(time.Minute))
	require.NoError(t, err)
	assert.False(t, out.Changed)
	assert.Empty(t, out.History)
	assert.Equal(t, t0, ticket.UpdatedAt)
}

func TestTransitionTable(t *testing.T) {
	statuses := []domain.TicketStatus{domain.TicketStatusOpen, domain.TicketStatusInProgress, domain.TicketStatusClosed}
	for _, from := range statuses {
		for _, to := range statuses {
			if from == to {
				assert.False(t, CanTransition(from, to), "%s -> %s", from, to)
				continue
			}
			assert.True(t, CanTransition(from, to), "%s -> %s", from, to)
		}
	}
	assert.False(t, CanTransition(domain.TicketStatus("archived"), domain.TicketStatusOpen))
}

func TestResolvedAtOnlyAfterClose(t *testing.T) {
	ticket := newTicket()
	steps := []domain.TicketStatus{
		domain.TicketStatusInProgress,
		domain.TicketStatusOpen,
		domain.TicketStatusClosed,
		domain.TicketStatusInProgress,
		domain.TicketStatusClosed,
		domain.TicketStatusOpen,
	}
	everClosed := false
	for i, next := range steps {
		_, err := SetStatus(ticket, next, staff, t0.Add(time.Duration(i)*time.Minute))
		require.NoError(t, err)
		if next == domain.TicketStatusClosed {
			everClosed = true
		}
		assert.Equal(t, everClosed, ticket.ResolvedAt != nil, "step %d", i)
	}
}

func TestSetPriority(t *testing.T) {
	ticket := newTicket()
	ticket.Status = domain.TicketStatusClosed

	out, err := SetPriority(ticket, domain.TicketPriorityCritical, staff, t0)
	require.NoError(t, err)
	assert.True(t, out.Changed)
	assert.Equal(t, domain.TicketPriorityCritical, ticket.Priority)
	assert.Equal(t, domain.ChangeTypePriority, out.History[0].ChangeType)

	_, err = SetPriority(ticket, domain.TicketPriority("urgent"), staff, t0)
	require.ErrorIs(t, err, ErrUnknownPriority)

	_, err = SetPriority(ticket, domain.TicketPriorityLow, customer, t0)
	require.ErrorIs(t, err, ErrStaffOnly)
}

func TestAssignOverwritesUnconditionally(t *testing.T) {
	ticket := newTicket()
	first, second := "staff-2", "staff-3"

	_, err := Assign(ticket, &first, staff, t0)
	require.NoError(t, err)
	out, err := Assign(ticket, &second, staff, t0)
	require.NoError(t, err)

	require.NotNil(t, ticket.AssignedTo)
	assert.Equal(t, second, *ticket.AssignedTo)
	assert.Equal(t, first, out.History[0].FromValue)
	require.NotNil(t, out.History[0].ToUser)
	assert.Equal(t, second, *out.History[0].ToUser)

	second = "mutated"
	assert.Equal(t, "staff-3", *ticket.AssignedTo)
}

func TestAssignToSelfMatchesAssign(t *testing.T) {
	a, b := newTicket(), newTicket()
	id := staff.ID

	_, err := Assign(a, &id, staff, t0)
	require.NoError(t, err)
	_, err = AssignToSelf(b, staff, t0)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestAssignClearAndCustomer(t *testing.T) {
	ticket := newTicket()
	_, err := AssignToSelf(ticket, customer, t0)
	require.ErrorIs(t, err, ErrStaffOnly)

	_, err = AssignToSelf(ticket, staff, t0)
	require.NoError(t, err)
	out, err := Assign(ticket, nil, staff, t0)
	require.NoError(t, err)
	assert.True(t, out.Changed)
	assert.Nil(t, ticket.AssignedTo)
	assert.Empty(t, out.Notifications)
}
