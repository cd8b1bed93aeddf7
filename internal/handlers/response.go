package handlers

import (
	"errors"

	"wanderlog/internal/errs"
	"wanderlog/internal/middleware"
	"wanderlog/internal/models"
	"wanderlog/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Gate bundles the authentication middleware routes are guarded with.
type Gate struct {
	Required fiber.Handler
	Optional fiber.Handler
}

// NewGate builds the required and optional authentication middleware.
func NewGate(resolver middleware.IdentityResolver, logger *zap.Logger) Gate {
	return Gate{
		Required: middleware.AuthRequired(resolver, logger),
		Optional: middleware.OptionalAuth(resolver, logger),
	}
}

// Role returns the middleware chain admitting authenticated callers of at
// least the given role.
func (g Gate) Role(role models.Role) []fiber.Handler {
	return []fiber.Handler{g.Required, middleware.RequireRole(role)}
}

func ok(c *fiber.Ctx, status int, message string, data interface{}) error {
	body := fiber.Map{"success": true, "data": data}
	if message != "" {
		body["message"] = message
	}
	return c.Status(status).JSON(body)
}

func okPage(c *fiber.Ctx, data interface{}, page services.Pagination) error {
	return c.JSON(fiber.Map{
		"success":    true,
		"data":       data,
		"pagination": page,
	})
}

func badBody(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"message": "Invalid request body",
		"error":   err.Error(),
	})
}

// ErrorStatus maps a service error onto an HTTP status and a client-facing
// message. Unrecognised errors are store failures.
func ErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, errs.ErrValidation):
		return fiber.StatusBadRequest, "Validation failed"
	case errors.Is(err, errs.ErrInvalidAction):
		return fiber.StatusBadRequest, "Invalid action"
	case errors.Is(err, errs.ErrDuplicateSlug):
		return fiber.StatusConflict, "A blog with this title already exists"
	case errors.Is(err, errs.ErrConflict):
		return fiber.StatusConflict, "Resource already exists"
	case errors.Is(err, errs.ErrNotFound):
		return fiber.StatusNotFound, "Resource not found"
	case errors.Is(err, errs.ErrForbidden):
		return fiber.StatusForbidden, "Not authorized to perform this action"
	case errors.Is(err, errs.ErrUnauthorized):
		return fiber.StatusUnauthorized, "Authentication failed"
	default:
		return fiber.StatusInternalServerError, "Internal server error"
	}
}

// fail writes the error envelope for err.
func fail(c *fiber.Ctx, logger *zap.Logger, err error) error {
	status, message := ErrorStatus(err)
	body := fiber.Map{"success": false, "message": message}

	var verr *errs.ValidationError
	switch {
	case errors.As(err, &verr):
		body["errors"] = verr.Fields
	case status == fiber.StatusInternalServerError:
		logger.Error("request failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err))
	default:
		body["error"] = err.Error()
	}
	return c.Status(status).JSON(body)
}
