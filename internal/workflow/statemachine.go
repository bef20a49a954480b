package workflow

import (
	"fmt"
	"time"

	"github.com/spec-kit/support-desk/internal/domain"
)

type transition struct {
	reopen bool
}

// transitions lists every allowed status change. Leaving closed is a reopen and is
// audited separately.
var transitions = map[domain.TicketStatus]map[domain.TicketStatus]transition{
	domain.TicketStatusOpen: {
		domain.TicketStatusInProgress: {},
		domain.TicketStatusClosed:     {},
	},
	domain.TicketStatusInProgress: {
		domain.TicketStatusOpen:   {},
		domain.TicketStatusClosed: {},
	},
	domain.TicketStatusClosed: {
		domain.TicketStatusOpen:       {reopen: true},
		domain.TicketStatusInProgress: {reopen: true},
	},
}

// CanTransition reports whether from -> to is in the transition table.
func CanTransition(from, to domain.TicketStatus) bool {
	_, ok := transitions[from][to]
	return ok
}

// SetStatus moves the ticket to next. Setting the current status is a no-op.
// Entering closed stamps ResolvedAt; leaving closed keeps it.
func SetStatus(t *domain.Ticket, next domain.TicketStatus, actor domain.Actor, now time.Time) (Outcome, error) {
	if !actor.IsStaff() {
		return Outcome{}, ErrStaffOnly
	}
	if !next.Valid() {
		return Outcome{}, ErrUnknownStatus
	}
	if t.Status == next {
		return Outcome{}, nil
	}
	tr, ok := transitions[t.Status][next]
	if !ok {
		return Outcome{}, ErrInvalidTransition
	}

	prev := t.Status
	t.Status = next
	if next == domain.TicketStatusClosed {
		resolved := now
		t.ResolvedAt = &resolved
	}

	c := change{
		changeType:  domain.ChangeTypeStatus,
		from:        string(prev),
		to:          string(next),
		toUser:      ptr(t.UserID),
		description: fmt.Sprintf("status changed from %s to %s", prev, next),
		notify:      fmt.Sprintf("Your ticket %s is now %s.", t.TicketID, statusLabel(next)),
	}
	if tr.reopen {
		c.changeType = domain.ChangeTypeReopen
		c.description = fmt.Sprintf("ticket reopened as %s", next)
		c.notify = fmt.Sprintf("Your ticket %s has been reopened.", t.TicketID)
	}
	return recordChange(t, actor, c, now), nil
}

// SetPriority changes the ticket priority regardless of status.
func SetPriority(t *domain.Ticket, next domain.TicketPriority, actor domain.Actor, now time.Time) (Outcome, error) {
	if !actor.IsStaff() {
		return Outcome{}, ErrStaffOnly
	}
	if !next.Valid() {
		return Outcome{}, ErrUnknownPriority
	}
	if t.Priority == next {
		return Outcome{}, nil
	}
	prev := t.Priority
	t.Priority = next
	return recordChange(t, actor, change{
		changeType:  domain.ChangeTypePriority,
		from:        string(prev),
		to:          string(next),
		toUser:      ptr(t.UserID),
		description: fmt.Sprintf("priority changed from %s to %s", prev, next),
		notify:      fmt.Sprintf("The priority of your ticket %s is now %s.", t.TicketID, next),
	}, now), nil
}

// Assign overwrites the assignee. A nil staffID unassigns the ticket. There is no
// "already assigned" guard.
func Assign(t *domain.Ticket, staffID *string, actor domain.Actor, now time.Time) (Outcome, error) {
	if !actor.IsStaff() {
		return Outcome{}, ErrStaffOnly
	}
	if staffID != nil && *staffID == "" {
		staffID = nil
	}
	if sameAssignee(t.AssignedTo, staffID) {
		return Outcome{}, nil
	}
	prev := deref(t.AssignedTo)
	t.AssignedTo = copyPtr(staffID)

	c := change{
		changeType:  domain.ChangeTypeAssignee,
		from:        prev,
		to:          deref(staffID),
		toUser:      copyPtr(staffID),
		description: fmt.Sprintf("assigned to %s", deref(staffID)),
		notify:      fmt.Sprintf("Your ticket %s has been assigned to a support agent.", t.TicketID),
	}
	if staffID == nil {
		c.description = "assignment cleared"
		c.notify = ""
	}
	return recordChange(t, actor, c, now), nil
}

// AssignToSelf is Assign with the acting staff member as the assignee.
func AssignToSelf(t *domain.Ticket, actor domain.Actor, now time.Time) (Outcome, error) {
	id := actor.ID
	return Assign(t, &id, actor, now)
}

func statusLabel(s domain.TicketStatus) string {
	if s == domain.TicketStatusInProgress {
		return "in progress"
	}
	return string(s)
}

func sameAssignee(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func ptr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func copyPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
