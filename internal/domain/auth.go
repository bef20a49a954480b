package domain

import "time"

// SubjectType differentiates users vs staff tokens.
type SubjectType string

const (
	SubjectTypeUser  SubjectType = "USER"
	SubjectTypeStaff SubjectType = "STAFF"
)

// Token represents issued authentication tokens (JWT or opaque) metadata.
type Token struct {
	ID        string
	SubjectID string
	Subject   SubjectType
	Role      *StaffRole
	ExpiresAt time.Time
	IssuedAt  time.Time
}

// ActorRole is the ticket-core view of a caller.
type ActorRole string

const (
	RoleCustomer ActorRole = "customer"
	RoleStaff    ActorRole = "staff"
)

// Actor identifies who performs a ticket operation. It is passed explicitly into
// every service call.
type Actor struct {
	ID   string
	Role ActorRole
}

// IsStaff reports whether the actor holds the staff role.
func (a Actor) IsStaff() bool {
	return a.Role == RoleStaff && a.ID != ""
}

// IsCustomer reports whether the actor is an end customer.
func (a Actor) IsCustomer() bool {
	return a.Role == RoleCustomer && a.ID != ""
}

// SenderType maps the actor role to the denormalized message sender type.
func (a Actor) SenderType() SenderType {
	if a.Role == RoleStaff {
		return SenderTypeAdmin
	}
	return SenderTypeUser
}

// CustomerActor builds a customer actor.
func CustomerActor(id string) Actor {
	return Actor{ID: id, Role: RoleCustomer}
}

// StaffActor builds a staff actor.
func StaffActor(id string) Actor {
	return Actor{ID: id, Role: RoleStaff}
}
