package middleware

import (
	"context"
	"strconv"
	"strings"

	"schwarzesbrett/domain"
	"schwarzesbrett/pkg/httperror"

	"github.com/gofiber/fiber/v2"
)

type contextKey string

const (
	userIDKey   contextKey = "UserID"
	userRoleKey contextKey = "UserRole"
	jwtKey      contextKey = "Jwt"
)

// NewSecurityHeadersMiddleware trusts the identity headers set by the gateway
// and rejects requests without them.
func NewSecurityHeadersMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := parseUserID(c.Get("User-ID"))
		authorization := strings.TrimSpace(c.Get("Authorization"))

		if !ok || authorization == "" {
			return reject(c, httperror.Unauthorized(
				"schwarzesbrett.security_headers.unauthorized",
				"Security headers mismatch",
				nil,
			))
		}

		userCtx := WithUser(c.UserContext(), userID, roleHeader(c))
		userCtx = context.WithValue(userCtx, jwtKey, authorization)

		c.SetUserContext(userCtx)
		return c.Next()
	}
}

// NewOptionalIdentityMiddleware attaches the identity headers when present and
// lets anonymous requests through.
func NewOptionalIdentityMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if userID, ok := parseUserID(c.Get("User-ID")); ok {
			c.SetUserContext(WithUser(c.UserContext(), userID, roleHeader(c)))
		}
		return c.Next()
	}
}

// NewAdminMiddleware must run after NewSecurityHeadersMiddleware.
func NewAdminMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !IsAdmin(c.UserContext()) {
			return reject(c, httperror.Forbidden(
				"schwarzesbrett.admin.forbidden",
				"Administrator role required",
				nil,
			))
		}
		return c.Next()
	}
}

type UserGetter interface {
	GetUser(ctx context.Context, id int64) (domain.User, error)
}

// NewActiveUserMiddleware rejects locked accounts. It must run after
// NewSecurityHeadersMiddleware.
func NewActiveUserMiddleware(users UserGetter) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		user, err := users.GetUser(ctx, UserID(ctx))
		if err != nil {
			return reject(c, httperror.Unauthorized(
				"schwarzesbrett.active_user.unknown",
				"Unknown user",
				nil,
			))
		}
		if user.Locked {
			return reject(c, httperror.Forbidden(
				"schwarzesbrett.active_user.locked",
				"Your account is locked",
				nil,
			))
		}
		return c.Next()
	}
}

func WithUser(ctx context.Context, userID int64, role string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if role == "" {
		role = domain.RoleUser
	}
	ctx = context.WithValue(ctx, userIDKey, userID)
	return context.WithValue(ctx, userRoleKey, role)
}

// UserID returns the caller id, or 0 for anonymous requests.
func UserID(ctx context.Context) int64 {
	id, _ := ctx.Value(userIDKey).(int64)
	return id
}

func UserRole(ctx context.Context) string {
	role, _ := ctx.Value(userRoleKey).(string)
	return role
}

func IsAdmin(ctx context.Context) bool {
	return UserRole(ctx) == domain.RoleAdmin
}

func parseUserID(header string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(header), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func roleHeader(c *fiber.Ctx) string {
	return strings.ToLower(strings.TrimSpace(c.Get("User-Role")))
}

func reject(c *fiber.Ctx, err *httperror.Error) error {
	return c.Status(err.Status).JSON(fiber.Map{
		"code":    err.Code,
		"message": err.Message,
	})
}
