package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"wanderlog/internal/middleware"
	"wanderlog/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubResolver map[string]*models.User

func (s stubResolver) Resolve(_ context.Context, token string) (*models.User, error) {
	if u, ok := s[token]; ok {
		return u, nil
	}
	return nil, errors.New("unknown token")
}

func newApp() *fiber.App {
	resolver := stubResolver{
		"author-token": {ID: "u1", Username: "ana", Role: models.RoleAuthor},
		"editor-token": {ID: "u2", Username: "eli", Role: models.RoleEditor},
		"admin-token":  {ID: "u3", Username: "ade", Role: models.RoleAdmin},
	}
	logger := zap.NewNop()
	app := fiber.New()
	whoami := func(c *fiber.Ctx) error {
		if u := middleware.CurrentUser(c); u != nil {
			return c.SendString(u.Username)
		}
		return c.SendString("anonymous")
	}
	app.Get("/public", middleware.OptionalAuth(resolver, logger), whoami)
	app.Get("/private", middleware.AuthRequired(resolver, logger), whoami)
	app.Get("/editor", middleware.AuthRequired(resolver, logger), middleware.RequireRole(models.RoleEditor), whoami)
	app.Get("/admin", middleware.AuthRequired(resolver, logger), middleware.RequireRole(models.RoleAdmin), whoami)
	return app
}

func do(t *testing.T, app *fiber.App, path, token string) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	resp.Body.Close()
	return resp.StatusCode
}

func TestAuthRequired(t *testing.T) {
	app := newApp()
	assert.Equal(t, http.StatusUnauthorized, do(t, app, "/private", ""))
	assert.Equal(t, http.StatusUnauthorized, do(t, app, "/private", "bogus"))
	assert.Equal(t, http.StatusOK, do(t, app, "/private", "author-token"))

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Token author-token")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestOptionalAuth(t *testing.T) {
	app := newApp()
	assert.Equal(t, http.StatusOK, do(t, app, "/public", ""))
	assert.Equal(t, http.StatusOK, do(t, app, "/public", "editor-token"))
	assert.Equal(t, http.StatusUnauthorized, do(t, app, "/public", "bogus"))
}

func TestRequireRole(t *testing.T) {
	app := newApp()
	assert.Equal(t, http.StatusForbidden, do(t, app, "/editor", "author-token"))
	assert.Equal(t, http.StatusOK, do(t, app, "/editor", "editor-token"))
	assert.Equal(t, http.StatusOK, do(t, app, "/editor", "admin-token"))
	assert.Equal(t, http.StatusForbidden, do(t, app, "/admin", "editor-token"))
	assert.Equal(t, http.StatusOK, do(t, app, "/admin", "admin-token"))
}
