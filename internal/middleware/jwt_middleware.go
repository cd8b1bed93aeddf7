package middleware

import (
	"context"
	"strings"

	"wanderlog/internal/models"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// userKey is the c.Locals key holding the authenticated *models.User.
const userKey = "user"

// IdentityResolver maps a bearer token to the account it was issued for.
// services.AuthService satisfies it.
type IdentityResolver interface {
	Resolve(ctx context.Context, token string) (*models.User, error)
}

func unauthorized(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"success": false,
		"message": msg,
	})
}

func bearerToken(c *fiber.Ctx) (string, bool, string) {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return "", false, "Authorization header is required"
	}
	// Expected format: "Bearer <token>"
	parts := strings.SplitN(authHeader, " ", 2)
	if !(len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") && strings.TrimSpace(parts[1]) != "") {
		return "", false, "Authorization header format must be 'Bearer <token>'"
	}
	return strings.TrimSpace(parts[1]), true, ""
}

// AuthRequired rejects requests without a valid bearer token and stores
// the resolved user for subsequent handlers.
func AuthRequired(resolver IdentityResolver, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok, msg := bearerToken(c)
		if !ok {
			return unauthorized(c, msg)
		}
		user, err := resolver.Resolve(c.UserContext(), token)
		if err != nil {
			logger.Debug("bearer token rejected", zap.String("path", c.Path()), zap.Error(err))
			return unauthorized(c, "Invalid or expired token")
		}
		c.Locals(userKey, user)
		return c.Next()
	}
}

// OptionalAuth resolves a bearer token when one is sent and lets anonymous
// requests through. A malformed or invalid token is still rejected.
func OptionalAuth(resolver IdentityResolver, logger *zap.Logger) fiber.Handler {
	required := AuthRequired(resolver, logger)
	return func(c *fiber.Ctx) error {
		if c.Get(fiber.HeaderAuthorization) == "" {
			return c.Next()
		}
		return required(c)
	}
}

// RequireRole rejects callers below the given role. It must run after
// AuthRequired.
func RequireRole(role models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil {
			return unauthorized(c, "Authentication required")
		}
		if !user.Role.AtLeast(role) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"success": false,
				"message": "Role '" + string(role) + "' or higher is required",
			})
		}
		return c.Next()
	}
}

// CurrentUser returns the authenticated user of the request, or nil.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(userKey).(*models.User)
	return user
}
