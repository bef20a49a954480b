package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/support-desk/internal/auth"
	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/repository"
	apperrors "github.com/spec-kit/support-desk/pkg/util/errorutil"
)

// StaffService manages staff members.
type StaffService struct {
	staff      repository.StaffRepository
	bcryptCost int
}

// StaffListFilters define listing parameters.
type StaffListFilters struct {
	Role            *domain.StaffRole
	IncludeInactive bool
	Limit           int
	Offset          int
}

// NewStaffService constructs the service.
func NewStaffService(staff repository.StaffRepository, bcryptCost int) *StaffService {
	return &StaffService{staff: staff, bcryptCost: bcryptCost}
}

func requireAdmin(actor *domain.StaffMember) error {
	if actor == nil || actor.Role != domain.StaffRoleAdmin {
		return apperrors.NewForbidden("you do not have permission to manage staff")
	}
	return nil
}

// CreateStaffMember adds a staff account. Only admins may do so.
func (s *StaffService) CreateStaffMember(ctx context.Context, actor *domain.StaffMember, name, email, password string, role domain.StaffRole) (*domain.StaffMember, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return s.BootstrapStaffMember(ctx, name, email, password, role)
}

// BootstrapStaffMember creates a staff account without an acting admin. It backs the
// command line, where the first admin has to come from.
func (s *StaffService) BootstrapStaffMember(ctx context.Context, name, email, password string, role domain.StaffRole) (*domain.StaffMember, error) {
	switch role {
	case domain.StaffRoleAgent, domain.StaffRoleTeamLead, domain.StaffRoleAdmin:
	default:
		return nil, apperrors.NewValidationError("invalid staff role", map[string]any{"role": role})
	}
	name, email = strings.TrimSpace(name), strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" {
		return nil, apperrors.NewValidationError("name and email are required", nil)
	}
	if len(password) < minPasswordLength {
		return nil, apperrors.NewValidationError("password must be at least 8 characters", nil)
	}
	if _, err := s.staff.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict("email already registered", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	member := &domain.StaffMember{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Active:       true,
	}
	if err := s.staff.Create(ctx, member); err != nil {
		return nil, apperrors.MapError(err)
	}
	return member, nil
}

// ListStaffMembers lists staff for assignment pickers. Inactive members are hidden
// unless an admin asks for them.
func (s *StaffService) ListStaffMembers(ctx context.Context, actor *domain.StaffMember, filters StaffListFilters) ([]domain.StaffMember, error) {
	if actor == nil {
		return nil, apperrors.NewForbidden("you do not have permission to list staff")
	}
	repoFilter := repository.StaffFilter{
		Role: filters.Role,
		Page: repository.Page{Limit: filters.Limit, Offset: filters.Offset},
	}
	if !filters.IncludeInactive || actor.Role != domain.StaffRoleAdmin {
		active := true
		repoFilter.Active = &active
	}
	members, err := s.staff.List(ctx, repoFilter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return members, nil
}
