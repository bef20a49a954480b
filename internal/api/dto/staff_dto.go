package dto

import (
	"time"

	"github.com/spec-kit/support-desk/internal/domain"
)

// CreateStaffRequest payload for admins adding staff.
type CreateStaffRequest struct {
	Name     string           `json:"name" valid:"required"`
	Email    string           `json:"email" valid:"required,email"`
	Password string           `json:"password" valid:"required"`
	Role     domain.StaffRole `json:"role" valid:"required,in(AGENT|TEAM_LEAD|ADMIN)"`
}

// StaffResponse describes a staff member.
type StaffResponse struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Email     string           `json:"email"`
	Role      domain.StaffRole `json:"role"`
	Active    bool             `json:"active"`
	CreatedAt time.Time        `json:"createdAt"`
}
