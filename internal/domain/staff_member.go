package domain

import "time"

// StaffRole enumerates internal operator roles. All of them act as staff on tickets.
type StaffRole string

const (
	StaffRoleAgent    StaffRole = "AGENT"
	StaffRoleTeamLead StaffRole = "TEAM_LEAD"
	StaffRoleAdmin    StaffRole = "ADMIN"
)

// StaffMember models a support agent or administrator.
type StaffMember struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         StaffRole
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Actor returns the ticket-core identity for the staff member.
func (s *StaffMember) Actor() Actor {
	return StaffActor(s.ID)
}
