package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/support-desk/internal/domain"
)

func closedTicket(t *testing.T) *domain.Ticket {
	t.Helper()
	ticket := newTicket()
	_, err := SetStatus(ticket, domain.TicketStatusClosed, staff, t0)
	require.NoError(t, err)
	return ticket
}

func TestSubmitRatingOnce(t *testing.T) {
	ticket := closedTicket(t)

	out, err := SubmitRating(ticket, 5, " great ", customer, t0)
	require.NoError(t, err)
	assert.True(t, out.Changed)
	require.NotNil(t, ticket.Rating)
	assert.Equal(t, 5, *ticket.Rating)
	require.NotNil(t, ticket.Feedback)
	assert.Equal(t, "great", *ticket.Feedback)

	_, err = SubmitRating(ticket, 3, "", customer, t0)
	require.ErrorIs(t, err, ErrAlreadyRated)
	assert.Equal(t, 5, *ticket.Rating)
}

func TestSubmitRatingRequiresClosed(t *testing.T) {
	ticket := newTicket()
	_, err := SubmitRating(ticket, 4, "", customer, t0)
	require.ErrorIs(t, err, ErrTicketNotClosed)
	assert.Nil(t, ticket.Rating)
}

func TestSubmitRatingRange(t *testing.T) {
	for _, r := range []int{0, -1, 6} {
		_, err := SubmitRating(closedTicket(t), r, "", customer, t0)
		require.ErrorIs(t, err, ErrRatingOutOfRange, r)
	}
}

func TestSubmitRatingOwnerOnly(t *testing.T) {
	ticket := closedTicket(t)

	_, err := SubmitRating(ticket, 5, "", staff, t0)
	require.ErrorIs(t, err, ErrNotOwner)
	_, err = SubmitRating(ticket, 5, "", domain.CustomerActor("user-2"), t0)
	require.ErrorIs(t, err, ErrNotOwner)
}

func TestSubmitRatingLeavesOtherFields(t *testing.T) {
	ticket := closedTicket(t)
	before := ticket.Clone()

	_, err := SubmitRating(ticket, 2, "", customer, t0)
	require.NoError(t, err)

	assert.Nil(t, ticket.Feedback)
	ticket.Rating = nil
	assert.Equal(t, before, ticket)
}
