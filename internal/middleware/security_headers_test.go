package middleware

import (
	"context"
	"errors"
	"net/http/httptest"
	"strconv"
	"testing"

	"schwarzesbrett/domain"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func whoAmI(c *fiber.Ctx) error {
	ctx := c.UserContext()
	return c.JSON(fiber.Map{"id": UserID(ctx), "role": UserRole(ctx)})
}

func TestSecurityHeaders_RejectsMissingHeaders(t *testing.T) {
	app := fiber.New()
	app.Get("/", NewSecurityHeadersMiddleware(), whoAmI)

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("User-ID", "abc")
	req.Header.Set("Authorization", "Bearer x")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestSecurityHeaders_SetsIdentity(t *testing.T) {
	var gotID int64
	var gotRole string

	app := fiber.New()
	app.Get("/", NewSecurityHeadersMiddleware(), func(c *fiber.Ctx) error {
		gotID = UserID(c.UserContext())
		gotRole = UserRole(c.UserContext())
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("User-ID", "42")
	req.Header.Set("User-Role", "Admin")
	req.Header.Set("Authorization", "Bearer x")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(42), gotID)
	assert.Equal(t, domain.RoleAdmin, gotRole)
}

func TestOptionalIdentity_AllowsAnonymous(t *testing.T) {
	var gotID int64 = -1

	app := fiber.New()
	app.Get("/", NewOptionalIdentityMiddleware(), func(c *fiber.Ctx) error {
		gotID = UserID(c.UserContext())
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Zero(t, gotID)
}

func TestAdmin_RequiresRole(t *testing.T) {
	app := fiber.New()
	app.Get("/", NewSecurityHeadersMiddleware(), NewAdminMiddleware(), whoAmI)

	for role, want := range map[string]int{"user": fiber.StatusForbidden, "admin": fiber.StatusOK} {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("User-ID", "7")
		req.Header.Set("User-Role", role)
		req.Header.Set("Authorization", "Bearer x")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, want, resp.StatusCode, role)
	}
}

type fakeUsers map[int64]domain.User

func (f fakeUsers) GetUser(_ context.Context, id int64) (domain.User, error) {
	u, ok := f[id]
	if !ok {
		return u, errors.New("missing")
	}
	return u, nil
}

func TestActiveUser(t *testing.T) {
	users := fakeUsers{
		1: {ID: 1},
		2: {ID: 2, Locked: true},
	}
	app := fiber.New()
	app.Get("/", NewSecurityHeadersMiddleware(), NewActiveUserMiddleware(users), whoAmI)

	cases := map[int64]int{1: fiber.StatusOK, 2: fiber.StatusForbidden, 3: fiber.StatusUnauthorized}
	for id, want := range cases {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("User-ID", strconv.FormatInt(id, 10))
		req.Header.Set("Authorization", "Bearer x")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, want, resp.StatusCode, id)
	}
}
