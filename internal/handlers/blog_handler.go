package handlers

import (
	"wanderlog/internal/middleware"
	"wanderlog/internal/models"
	"wanderlog/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// BlogHandler handles HTTP requests for blogs.
type BlogHandler struct {
	blogs     *services.BlogService
	analytics *services.AnalyticsService
	gate      Gate
	logger    *zap.Logger
}

// NewBlogHandler creates a new BlogHandler.
func NewBlogHandler(blogs *services.BlogService, analytics *services.AnalyticsService, gate Gate, logger *zap.Logger) *BlogHandler {
	return &BlogHandler{
		blogs:     blogs,
		analytics: analytics,
		gate:      gate,
		logger:    logger,
	}
}

// RegisterRoutes registers the blog routes. Fixed paths are registered
// before the :identifier routes.
func (h *BlogHandler) RegisterRoutes(router fiber.Router) {
	blogRoutes := router.Group("/blogs")
	blogRoutes.Get("/", h.gate.Optional, h.HandleList)
	blogRoutes.Get("/stats/overview", append(h.gate.Role(models.RoleEditor), h.HandleOverview)...)
	blogRoutes.Post("/bulk", append(h.gate.Role(models.RoleAdmin), h.HandleBulk)...)
	blogRoutes.Post("/", append(h.gate.Role(models.RoleEditor), h.HandleCreate)...)
	blogRoutes.Get("/:identifier", h.HandleGet)
	blogRoutes.Put("/:id", h.gate.Required, h.HandleUpdate)
	blogRoutes.Delete("/:id", h.gate.Required, h.HandleDelete)
	blogRoutes.Post("/:id/like", h.gate.Required, h.HandleLike)
	blogRoutes.Post("/:id/share", h.HandleShare)

	meRoutes := router.Group("/me", h.gate.Role(models.RoleAuthor)...)
	meRoutes.Get("/blogs", h.HandleListOwn)
	meRoutes.Post("/blogs", h.HandleCreate)
}

func blogQuery(c *fiber.Ctx) services.BlogQuery {
	return services.BlogQuery{
		Page:      c.QueryInt("page", 1),
		Limit:     c.QueryInt("limit", 0),
		Search:    c.Query("search"),
		Category:  c.Query("category"),
		Status:    c.Query("status"),
		Author:    c.Query("author"),
		Featured:  c.Query("featured"),
		SortBy:    c.Query("sortBy"),
		SortOrder: c.Query("sortOrder"),
	}
}

// HandleList lists blogs with filtering, sorting and pagination.
func (h *BlogHandler) HandleList(c *fiber.Ctx) error {
	page, err := h.blogs.List(c.UserContext(), middleware.CurrentUser(c), blogQuery(c))
	if err != nil {
		return fail(c, h.logger, err)
	}
	return okPage(c, page.Blogs, page.Pagination)
}

// HandleListOwn lists the caller's own blogs in every status.
func (h *BlogHandler) HandleListOwn(c *fiber.Ctx) error {
	caller := middleware.CurrentUser(c)
	q := blogQuery(c)
	q.Author = caller.ID
	page, err := h.blogs.List(c.UserContext(), caller, q)
	if err != nil {
		return fail(c, h.logger, err)
	}
	return okPage(c, page.Blogs, page.Pagination)
}

// HandleGet returns a blog by id or slug and records the view.
func (h *BlogHandler) HandleGet(c *fiber.Ctx) error {
	blog, err := h.blogs.Get(c.UserContext(), c.Params("identifier"))
	if err != nil {
		return fail(c, h.logger, err)
	}
	return ok(c, fiber.StatusOK, "", blog)
}

// HandleCreate creates a blog owned by the caller.
func (h *BlogHandler) HandleCreate(c *fiber.Ctx) error {
	var req services.CreateBlogRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	blog, err := h.blogs.Create(c.UserContext(), middleware.CurrentUser(c), req)
	if err != nil {
		return fail(c, h.logger, err)
	}
	return ok(c, fiber.StatusCreated, "Blog created successfully", blog)
}

// HandleUpdate applies a partial update.
func (h *BlogHandler) HandleUpdate(c *fiber.Ctx) error {
	var req services.UpdateBlogRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	blog, err := h.blogs.Update(c.UserContext(), middleware.CurrentUser(c), c.Params("id"), req)
	if err != nil {
		return fail(c, h.logger, err)
	}
	return ok(c, fiber.StatusOK, "Blog updated successfully", blog)
}

// HandleDelete deletes a blog.
func (h *BlogHandler) HandleDelete(c *fiber.Ctx) error {
	if err := h.blogs.Delete(c.UserContext(), middleware.CurrentUser(c), c.Params("id")); err != nil {
		return fail(c, h.logger, err)
	}
	return ok(c, fiber.StatusOK, "Blog deleted successfully", nil)
}

// HandleBulk applies an admin bulk action.
func (h *BlogHandler) HandleBulk(c *fiber.Ctx) error {
	var req services.BulkActionRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	affected, err := h.blogs.Bulk(c.UserContext(), middleware.CurrentUser(c), req)
	if err != nil {
		return fail(c, h.logger, err)
	}
	return ok(c, fiber.StatusOK, "Bulk action completed", fiber.Map{
		"action":   req.Action,
		"affected": affected,
	})
}

// HandleLike records a like.
func (h *BlogHandler) HandleLike(c *fiber.Ctx) error {
	blog, err := h.blogs.Like(c.UserContext(), c.Params("id"))
	if err != nil {
		return fail(c, h.logger, err)
	}
	return ok(c, fiber.StatusOK, "", fiber.Map{"likes": blog.Stats.Likes})
}

// HandleShare records a share.
func (h *BlogHandler) HandleShare(c *fiber.Ctx) error {
	blog, err := h.blogs.Share(c.UserContext(), c.Params("id"))
	if err != nil {
		return fail(c, h.logger, err)
	}
	return ok(c, fiber.StatusOK, "", fiber.Map{"shares": blog.Stats.Shares})
}

// HandleOverview returns blog totals by status and engagement.
func (h *BlogHandler) HandleOverview(c *fiber.Ctx) error {
	overview, err := h.analytics.BlogOverview(c.UserContext())
	if err != nil {
		return fail(c, h.logger, err)
	}
	return ok(c, fiber.StatusOK, "", overview)
}
