package handlers

import (
	"wanderlog/internal/middleware"
	"wanderlog/internal/models"
	"wanderlog/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// UserHandler serves account administration.
type UserHandler struct {
	users  *services.UserService
	gate   Gate
	logger *zap.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users *services.UserService, gate Gate, logger *zap.Logger) *UserHandler {
	return &UserHandler{users: users, gate: gate, logger: logger}
}

// RegisterRoutes registers the admin user routes.
func (h *UserHandler) RegisterRoutes(router fiber.Router) {
	admin := router.Group("/users", h.gate.Role(models.RoleAdmin)...)
	admin.Get("/", h.HandleList)
	admin.Patch("/:id/role", h.HandleSetRole)
	admin.Patch("/:id/status", h.HandleSetStatus)
}

// HandleList lists accounts.
func (h *UserHandler) HandleList(c *fiber.Ctx) error {
	page, err := h.users.List(c.UserContext(), middleware.CurrentUser(c), services.UserQuery{
		Page:     c.QueryInt("page", 1),
		Limit:    c.QueryInt("limit", 0),
		Search:   c.Query("search"),
		Role:     c.Query("role"),
		IsActive: c.Query("isActive"),
	})
	if err != nil {
		return fail(c, h.logger, err)
	}
	return okPage(c, page.Users, page.Pagination)
}

type roleRequest struct {
	Role string `json:"role"`
}

// HandleSetRole changes an account's role.
func (h *UserHandler) HandleSetRole(c *fiber.Ctx) error {
	var req roleRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	user, err := h.users.SetRole(c.UserContext(), middleware.CurrentUser(c), c.Params("id"), req.Role)
	if err != nil {
		return fail(c, h.logger, err)
	}
	return ok(c, fiber.StatusOK, "Role updated", user)
}

type statusRequest struct {
	IsActive *bool `json:"isActive"`
}

// HandleSetStatus activates or deactivates an account.
func (h *UserHandler) HandleSetStatus(c *fiber.Ctx) error {
	var req statusRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if req.IsActive == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Validation failed",
			"errors":  fiber.Map{"isActive": "is required"},
		})
	}
	user, err := h.users.SetActive(c.UserContext(), middleware.CurrentUser(c), c.Params("id"), *req.IsActive)
	if err != nil {
		return fail(c, h.logger, err)
	}
	return ok(c, fiber.StatusOK, "Status updated", user)
}
