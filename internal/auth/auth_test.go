package auth

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/repository/memrepo"
	apperrors "github.com/spec-kit/support-desk/pkg/util/errorutil"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", 5)
	role := domain.StaffRoleAgent
	token, exp, err := tm.GenerateToken("staff-1", domain.SubjectTypeStaff, &role)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), exp, time.Minute)

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "staff-1", claims.Subject)
	assert.Equal(t, domain.SubjectTypeStaff, claims.Kind)
	require.NotNil(t, claims.Role)
	assert.Equal(t, domain.StaffRoleAgent, *claims.Role)
}

func TestTokenRejectsExpiredAndForeign(t *testing.T) {
	tm := NewTokenManager("secret", 1)
	token, _, err := tm.GenerateToken("u1", domain.SubjectTypeUser, nil)
	require.NoError(t, err)

	tm.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = tm.ParseToken(token)
	assert.Error(t, err)

	other := NewTokenManager("other-secret", 1)
	_, err = other.ParseToken(token)
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret-pass", 4)
	require.NoError(t, err)
	assert.NoError(t, ComparePassword(hash, "s3cret-pass"))
	assert.Error(t, ComparePassword(hash, "wrong"))
}

func newTestApp(t *testing.T) (*fiber.App, *TokenManager, *domain.User, *domain.StaffMember) {
	t.Helper()
	ctx := context.Background()
	users := memrepo.NewUsers()
	user := &domain.User{Name: "Cus", Email: "c@example.com", Status: domain.UserStatusActive}
	require.NoError(t, users.Create(ctx, user))
	staff := &domain.StaffMember{Name: "Agent", Email: "a@example.com", Role: domain.StaffRoleAgent, Active: true}
	require.NoError(t, users.StaffView().Create(ctx, staff))

	tm := NewTokenManager("secret", 5)
	mw := NewAuthMiddleware(tm, users, users.StaffView())

	app := fiber.New(fiber.Config{ErrorHandler: func(c *fiber.Ctx, err error) error {
		de := apperrors.ToDomainError(err)
		return c.Status(de.HTTPStatus).SendString(de.Code)
	}})
	app.Get("/me", mw.Handle, func(c *fiber.Ctx) error {
		p, _ := PrincipalFromContext(c)
		return c.SendString(string(p.Actor().Role))
	})
	app.Get("/staff", mw.Handle, RequireStaffRole(), func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/admin", mw.Handle, RequireStaffRole(domain.StaffRoleAdmin), func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/customer", mw.Handle, RequireUser(), func(c *fiber.Ctx) error { return c.SendString("ok") })
	return app, tm, user, staff
}

func call(t *testing.T, app *fiber.App, path, token string) int {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestMiddlewareRoles(t *testing.T) {
	app, tm, user, staff := newTestApp(t)
	userToken, _, err := tm.GenerateToken(user.ID, domain.SubjectTypeUser, nil)
	require.NoError(t, err)
	staffToken, _, err := tm.GenerateToken(staff.ID, domain.SubjectTypeStaff, &staff.Role)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusUnauthorized, call(t, app, "/me", ""))
	assert.Equal(t, fiber.StatusUnauthorized, call(t, app, "/me", "garbage"))
	assert.Equal(t, fiber.StatusOK, call(t, app, "/me", userToken))

	assert.Equal(t, fiber.StatusForbidden, call(t, app, "/staff", userToken))
	assert.Equal(t, fiber.StatusOK, call(t, app, "/staff", staffToken))
	assert.Equal(t, fiber.StatusForbidden, call(t, app, "/admin", staffToken))

	assert.Equal(t, fiber.StatusOK, call(t, app, "/customer", userToken))
	assert.Equal(t, fiber.StatusForbidden, call(t, app, "/customer", staffToken))

	ghost, _, err := tm.GenerateToken("nobody", domain.SubjectTypeUser, nil)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, call(t, app, "/me", ghost))
}
