package handlers

import (
	"wanderlog/internal/middleware"
	"wanderlog/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	authService *services.AuthService
	gate        Gate
	logger      *zap.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, gate Gate, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		gate:        gate,
		logger:      logger,
	}
}

// RegisterRoutes registers the authentication routes.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/register", h.HandleRegister)
	authRoutes.Post("/login", h.HandleLogin)
	authRoutes.Get("/me", h.gate.Required, h.HandleMe)
	authRoutes.Put("/password", h.gate.Required, h.HandleChangePassword)
}

// HandleRegister handles new user registration.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var req services.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}

	user, err := h.authService.RegisterUser(c.UserContext(), req)
	if err != nil {
		return fail(c, h.logger, err)
	}
	return ok(c, fiber.StatusCreated, "User registered successfully", user)
}

// HandleLogin handles user login and issues a JWT token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req services.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}

	token, user, err := h.authService.LoginUser(c.UserContext(), req.Login, req.Password)
	if err != nil {
		h.logger.Info("login failed", zap.String("login", req.Login), zap.Error(err))
		return fail(c, h.logger, err)
	}

	return ok(c, fiber.StatusOK, "Login successful", fiber.Map{
		"token": token,
		"user":  user,
	})
}

// HandleMe returns the authenticated account.
func (h *AuthHandler) HandleMe(c *fiber.Ctx) error {
	return ok(c, fiber.StatusOK, "", middleware.CurrentUser(c))
}

// HandleChangePassword changes the caller's password.
func (h *AuthHandler) HandleChangePassword(c *fiber.Ctx) error {
	var req services.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if err := h.authService.ChangePassword(c.UserContext(), middleware.CurrentUser(c), req); err != nil {
		return fail(c, h.logger, err)
	}
	return ok(c, fiber.StatusOK, "Password updated", nil)
}
