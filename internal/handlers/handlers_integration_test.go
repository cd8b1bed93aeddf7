package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"wanderlog/internal/database"
	"wanderlog/internal/models"
	"wanderlog/internal/server"
	"wanderlog/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type testEnv struct {
	t   *testing.T
	db  *gorm.DB
	app *server.App
}

// setupApp builds the full application over a fresh SQLite database.
func setupApp(t *testing.T) *testEnv {
	t.Helper()
	logger := zap.NewNop()
	db, err := database.Open("sqlite", filepath.Join(t.TempDir(), "api.db"), logger)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { _ = database.Close(db) })

	app := server.New(db, server.Options{JWTSecret: "test_jwt_secret", TokenTTL: time.Hour}, logger)
	return &testEnv{t: t, db: db, app: app}
}

type envelope struct {
	Success    bool              `json:"success"`
	Message    string            `json:"message"`
	Data       json.RawMessage   `json:"data"`
	Errors     map[string]string `json:"errors"`
	Pagination *struct {
		Page  int   `json:"page"`
		Limit int   `json:"limit"`
		Total int64 `json:"total"`
		Pages int   `json:"pages"`
	} `json:"pagination"`
}

func (e *testEnv) do(method, path, token string, body interface{}) (int, envelope) {
	e.t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(e.t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.app.Fiber.Test(req, -1)
	require.NoError(e.t, err)
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(e.t, err)
	if len(raw) > 0 {
		require.NoError(e.t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp.StatusCode, env
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}

// userWithRole registers an account, promotes it and returns a login token.
func (e *testEnv) userWithRole(username string, role models.Role) (string, *models.User) {
	e.t.Helper()
	user, err := e.app.Auth.RegisterUser(context.Background(), services.RegisterRequest{
		Username: username,
		Email:    username + "@example.com",
		Password: "password123",
	})
	require.NoError(e.t, err)
	require.NoError(e.t, e.db.Model(&models.User{}).Where("id = ?", user.ID).Update("role", role).Error)

	status, env := e.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"login":    username,
		"password": "password123",
	})
	require.Equal(e.t, http.StatusOK, status)
	data := decode[struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}](e.t, env)
	return data.Token, &data.User
}

func newPost(title, status string) map[string]interface{} {
	return map[string]interface{}{
		"title":    title,
		"content":  "A long walk through old streets.",
		"excerpt":  "Walking tour.",
		"category": "city",
		"tags":     []string{"Walking", "walking", "Europe"},
		"status":   status,
	}
}

func TestAuthFlow(t *testing.T) {
	env := setupApp(t)

	status, res := env.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": "traveller",
		"email":    "traveller@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, status)
	assert.True(t, res.Success)
	assert.NotContains(t, string(res.Data), "password")

	status, _ = env.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": "traveller",
		"email":    "other@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusConflict, status)

	status, res = env.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{"username": "x"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, res.Errors, "email")

	status, _ = env.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"login": "traveller", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, res = env.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"login": ""})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Validation failed", res.Message)
	assert.Contains(t, res.Errors, "login")
	assert.Contains(t, res.Errors, "password")

	token, _ := env.userWithRole("writer", models.RoleAuthor)
	status, res = env.do(http.MethodGet, "/api/v1/auth/me", token, nil)
	require.Equal(t, http.StatusOK, status)
	me := decode[models.User](t, res)
	assert.Equal(t, "writer", me.Username)
	assert.Equal(t, models.RoleAuthor, me.Role)

	status, _ = env.do(http.MethodGet, "/api/v1/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = env.do(http.MethodPut, "/api/v1/auth/password", token, map[string]string{
		"currentPassword": "password123",
		"newPassword":     "password456",
	})
	assert.Equal(t, http.StatusOK, status)
	status, _ = env.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"login": "writer@example.com", "password": "password456"})
	assert.Equal(t, http.StatusOK, status)
}

func TestBlogLifecycle(t *testing.T) {
	env := setupApp(t)
	authorToken, author := env.userWithRole("ana", models.RoleAuthor)
	otherToken, _ := env.userWithRole("bob", models.RoleAuthor)
	editorToken, _ := env.userWithRole("eli", models.RoleEditor)
	adminToken, _ := env.userWithRole("ade", models.RoleAdmin)
	readerToken, _ := env.userWithRole("sam", models.RoleSubscriber)

	// Authors create through /me/blogs; /blogs is for editors and up.
	status, _ := env.do(http.MethodPost, "/api/v1/blogs", authorToken, newPost("Old Town Walk", "draft"))
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = env.do(http.MethodPost, "/api/v1/me/blogs", readerToken, newPost("Old Town Walk", "draft"))
	assert.Equal(t, http.StatusForbidden, status)

	status, res := env.do(http.MethodPost, "/api/v1/me/blogs", authorToken, newPost("Old Town Walk", "draft"))
	require.Equal(t, http.StatusCreated, status)
	draft := decode[models.Blog](t, res)
	assert.Equal(t, "old-town-walk", draft.Slug)
	assert.Equal(t, []string{"walking", "europe"}, []string(draft.Tags))
	require.NotNil(t, draft.Author)
	assert.Equal(t, "ana", draft.Author.Username)

	status, res = env.do(http.MethodPost, "/api/v1/blogs", editorToken, newPost("  old town WALK!", "published"))
	assert.Equal(t, http.StatusConflict, status)
	assert.False(t, res.Success)

	status, res = env.do(http.MethodPost, "/api/v1/blogs", editorToken, newPost("Harbour Sunset", "published"))
	require.Equal(t, http.StatusCreated, status)
	live := decode[models.Blog](t, res)
	require.NotNil(t, live.PublishedAt)

	status, res = env.do(http.MethodPost, "/api/v1/blogs", editorToken, map[string]interface{}{"title": "No body", "category": "moon"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, res.Errors, "content")
	assert.Contains(t, res.Errors, "category")

	// Anonymous listings only show published posts.
	status, res = env.do(http.MethodGet, "/api/v1/blogs", "", nil)
	require.Equal(t, http.StatusOK, status)
	list := decode[[]models.Blog](t, res)
	require.Len(t, list, 1)
	assert.Equal(t, "harbour-sunset", list[0].Slug)
	require.NotNil(t, res.Pagination)
	assert.Equal(t, int64(1), res.Pagination.Total)

	status, res = env.do(http.MethodGet, "/api/v1/blogs?status=draft", editorToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]models.Blog](t, res), 1)

	status, res = env.do(http.MethodGet, "/api/v1/me/blogs", authorToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]models.Blog](t, res), 1)

	status, _ = env.do(http.MethodGet, "/api/v1/blogs?sortBy=password", "", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	// Reading by slug or id counts views.
	for _, ident := range []string{"harbour-sunset", live.ID} {
		status, _ = env.do(http.MethodGet, "/api/v1/blogs/"+ident, "", nil)
		require.Equal(t, http.StatusOK, status)
	}
	status, res = env.do(http.MethodGet, "/api/v1/blogs/harbour-sunset", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, int64(3), decode[models.Blog](t, res).Stats.Views)
	status, _ = env.do(http.MethodGet, "/api/v1/blogs/no-such-post", "", nil)
	assert.Equal(t, http.StatusNotFound, status)

	// Only the owner or an admin may modify.
	patch := map[string]interface{}{"excerpt": "Edited."}
	status, _ = env.do(http.MethodPut, "/api/v1/blogs/"+draft.ID, editorToken, patch)
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = env.do(http.MethodPut, "/api/v1/blogs/"+draft.ID, otherToken, patch)
	assert.Equal(t, http.StatusForbidden, status)

	status, res = env.do(http.MethodPut, "/api/v1/blogs/"+draft.ID, authorToken, map[string]interface{}{
		"title":  "Old Town at Dawn",
		"status": "published",
		"seo":    map[string]string{"metaTitle": "Dawn walk"},
	})
	require.Equal(t, http.StatusOK, status)
	updated := decode[models.Blog](t, res)
	assert.Equal(t, "old-town-at-dawn", updated.Slug)
	assert.Equal(t, "Walking tour.", updated.Excerpt)
	assert.NotNil(t, updated.PublishedAt)
	assert.Equal(t, "Dawn walk", updated.SEO.Data().MetaTitle)

	// Engagement.
	status, _ = env.do(http.MethodPost, "/api/v1/blogs/"+live.ID+"/like", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	status, _ = env.do(http.MethodPost, "/api/v1/blogs/"+live.ID+"/like", readerToken, nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = env.do(http.MethodPost, "/api/v1/blogs/"+live.ID+"/share", "", nil)
	assert.Equal(t, http.StatusOK, status)

	// Bulk actions are admin only.
	bulk := map[string]interface{}{"action": "feature", "blogIds": []string{draft.ID, live.ID}}
	status, _ = env.do(http.MethodPost, "/api/v1/blogs/bulk", authorToken, bulk)
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = env.do(http.MethodPost, "/api/v1/blogs/bulk", editorToken, bulk)
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = env.do(http.MethodPost, "/api/v1/blogs/bulk", adminToken, map[string]interface{}{"action": "explode", "blogIds": []string{live.ID}})
	assert.Equal(t, http.StatusBadRequest, status)
	status, res = env.do(http.MethodPost, "/api/v1/blogs/bulk", adminToken, bulk)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 2, decode[map[string]interface{}](t, res)["affected"])

	status, res = env.do(http.MethodGet, "/api/v1/blogs/stats/overview", editorToken, nil)
	require.Equal(t, http.StatusOK, status)
	overview := decode[services.BlogOverview](t, res)
	assert.Equal(t, int64(2), overview.Total)
	assert.Equal(t, int64(2), overview.Featured)
	assert.Equal(t, int64(1), overview.Engagement.Likes)

	// Deleting decrements the author's post count.
	status, _ = env.do(http.MethodDelete, "/api/v1/blogs/"+draft.ID, otherToken, nil)
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = env.do(http.MethodDelete, "/api/v1/blogs/"+draft.ID, adminToken, nil)
	require.Equal(t, http.StatusOK, status)
	var stored models.User
	require.NoError(t, env.db.First(&stored, "id = ?", author.ID).Error)
	assert.Equal(t, int64(0), stored.Stats.Posts)
}

func TestAnalyticsAndUserAdmin(t *testing.T) {
	env := setupApp(t)
	authorToken, author := env.userWithRole("ana", models.RoleAuthor)
	editorToken, _ := env.userWithRole("eli", models.RoleEditor)
	adminToken, _ := env.userWithRole("ade", models.RoleAdmin)

	status, _ := env.do(http.MethodPost, "/api/v1/me/blogs", authorToken, newPost("Desert Nights", "published"))
	require.Equal(t, http.StatusCreated, status)

	status, _ = env.do(http.MethodGet, "/api/v1/analytics/dashboard", authorToken, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, res := env.do(http.MethodGet, "/api/v1/analytics/dashboard", editorToken, nil)
	require.Equal(t, http.StatusOK, status)
	dashboard := decode[services.Dashboard](t, res)
	assert.Equal(t, int64(1), dashboard.Overview.PublishedBlogs)
	assert.Equal(t, int64(3), dashboard.Overview.TotalUsers)
	require.Len(t, dashboard.MonthlyTrend, 1)
	assert.Equal(t, int64(1), dashboard.MonthlyTrend[0].Count)

	status, res = env.do(http.MethodGet, "/api/v1/analytics/content?period=7", editorToken, nil)
	require.Equal(t, http.StatusOK, status)
	content := decode[services.ContentAnalytics](t, res)
	assert.Equal(t, 7, content.PeriodDays)
	require.Len(t, content.AuthorPerformance, 1)
	assert.Equal(t, "ana", content.AuthorPerformance[0].Username)

	status, _ = env.do(http.MethodGet, "/api/v1/analytics/realtime", editorToken, nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = env.do(http.MethodGet, "/api/v1/analytics/users", editorToken, nil)
	assert.Equal(t, http.StatusForbidden, status)
	status, res = env.do(http.MethodGet, "/api/v1/analytics/users", adminToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[services.UserAnalytics](t, res).RecentlyActive, 3)

	// Account administration.
	status, _ = env.do(http.MethodGet, "/api/v1/users", editorToken, nil)
	assert.Equal(t, http.StatusForbidden, status)
	status, res = env.do(http.MethodGet, "/api/v1/users?role=author", adminToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]models.User](t, res), 1)

	status, res = env.do(http.MethodPatch, "/api/v1/users/"+author.ID+"/role", adminToken, map[string]string{"role": "editor"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, models.RoleEditor, decode[models.User](t, res).Role)

	status, _ = env.do(http.MethodPatch, "/api/v1/users/"+author.ID+"/status", adminToken, map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, status)
	status, _ = env.do(http.MethodPatch, "/api/v1/users/"+author.ID+"/status", adminToken, map[string]bool{"isActive": false})
	require.Equal(t, http.StatusOK, status)

	// A deactivated account's token stops working.
	status, _ = env.do(http.MethodGet, "/api/v1/auth/me", authorToken, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	status, _ = env.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"login": "ana", "password": "password123"})
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestHealthAndUnknownRoutes(t *testing.T) {
	env := setupApp(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	resp, err := env.app.Fiber.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	status, res := env.do(http.MethodGet, "/api/v1/nowhere", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.False(t, res.Success)
}
