package handlers

import (
	"wanderlog/internal/middleware"
	"wanderlog/internal/models"
	"wanderlog/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// AnalyticsHandler serves the read-only analytics views.
type AnalyticsHandler struct {
	analytics *services.AnalyticsService
	gate      Gate
	logger    *zap.Logger
}

// NewAnalyticsHandler creates a new AnalyticsHandler.
func NewAnalyticsHandler(analytics *services.AnalyticsService, gate Gate, logger *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics, gate: gate, logger: logger}
}

// RegisterRoutes registers the analytics routes.
func (h *AnalyticsHandler) RegisterRoutes(router fiber.Router) {
	editors := router.Group("/analytics", h.gate.Role(models.RoleEditor)...)
	editors.Get("/dashboard", h.HandleDashboard)
	editors.Get("/content", h.HandleContent)
	editors.Get("/realtime", h.HandleRealtime)
	editors.Get("/users", middleware.RequireRole(models.RoleAdmin), h.HandleUsers)
}

// HandleDashboard returns the dashboard overview.
func (h *AnalyticsHandler) HandleDashboard(c *fiber.Ctx) error {
	dashboard, err := h.analytics.Dashboard(c.UserContext())
	if err != nil {
		return fail(c, h.logger, err)
	}
	return ok(c, fiber.StatusOK, "", dashboard)
}

// HandleContent returns content analytics over the ?period= window in days.
func (h *AnalyticsHandler) HandleContent(c *fiber.Ctx) error {
	content, err := h.analytics.Content(c.UserContext(), c.QueryInt("period", services.DefaultPeriodDays))
	if err != nil {
		return fail(c, h.logger, err)
	}
	return ok(c, fiber.StatusOK, "", content)
}

// HandleUsers returns user analytics over the ?period= window in days.
func (h *AnalyticsHandler) HandleUsers(c *fiber.Ctx) error {
	users, err := h.analytics.Users(c.UserContext(), middleware.CurrentUser(c), c.QueryInt("period", services.DefaultPeriodDays))
	if err != nil {
		return fail(c, h.logger, err)
	}
	return ok(c, fiber.StatusOK, "", users)
}

// HandleRealtime returns the realtime snapshot.
func (h *AnalyticsHandler) HandleRealtime(c *fiber.Ctx) error {
	snapshot, err := h.analytics.Realtime(c.UserContext())
	if err != nil {
		return fail(c, h.logger, err)
	}
	return ok(c, fiber.StatusOK, "", snapshot)
}
