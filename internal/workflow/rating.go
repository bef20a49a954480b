package workflow

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spec-kit/support-desk/internal/domain"
)

const (
	MinRating = 1
	MaxRating = 5
)

// SubmitRating records the customer's satisfaction rating. It succeeds once, only
// for the owning customer and only while the ticket is closed.
func SubmitRating(t *domain.Ticket, rating int, feedback string, actor domain.Actor, now time.Time) (Outcome, error) {
	if !actor.IsCustomer() || !t.IsOwnedBy(actor.ID) {
		return Outcome{}, ErrNotOwner
	}
	if rating < MinRating || rating > MaxRating {
		return Outcome{}, ErrRatingOutOfRange
	}
	if t.Status != domain.TicketStatusClosed {
		return Outcome{}, ErrTicketNotClosed
	}
	if t.Rating != nil {
		return Outcome{}, ErrAlreadyRated
	}

	r := rating
	t.Rating = &r
	if fb := strings.TrimSpace(feedback); fb != "" {
		t.Feedback = &fb
	}
	return recordChange(t, actor, change{
		changeType:  domain.ChangeTypeRating,
		to:          strconv.Itoa(rating),
		toUser:      copyPtr(t.AssignedTo),
		description: fmt.Sprintf("customer rated the ticket %d/%d", rating, MaxRating),
	}, now), nil
}
