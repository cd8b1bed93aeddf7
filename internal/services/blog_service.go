package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"wanderlog/internal/errs"
	"wanderlog/internal/models"
	"wanderlog/internal/repositories"
	"wanderlog/pkg/slug"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// CreateBlogRequest is the payload for creating a blog.
type CreateBlogRequest struct {
	Title         string           `json:"title" validate:"required,max=200"`
	Content       string           `json:"content" validate:"required"`
	Excerpt       string           `json:"excerpt" validate:"required,max=300"`
	Category      string           `json:"category" validate:"required,oneof=adventure culture food nature city beach mountains budget"`
	Tags          []string         `json:"tags" validate:"max=20,dive,max=50"`
	Location      *models.Location `json:"location"`
	FeaturedImage *models.Image    `json:"featuredImage"`
	Images        []models.Image   `json:"images" validate:"dive"`
	SEO           *models.SEO      `json:"seo"`
	Status        string           `json:"status" validate:"omitempty,oneof=draft published scheduled archived"`
	ScheduledAt   *time.Time       `json:"scheduledAt"`
	Featured      bool             `json:"featured"`
}

// SEOPatch carries the SEO keys to overwrite; nil keys are kept.
type SEOPatch struct {
	MetaTitle       *string   `json:"metaTitle" validate:"omitempty,max=60"`
	MetaDescription *string   `json:"metaDescription" validate:"omitempty,max=160"`
	Keywords        *[]string `json:"keywords" validate:"omitempty,max=20,dive,max=50"`
}

// UpdateBlogRequest is a partial update: nil fields are left untouched.
type UpdateBlogRequest struct {
	Title         *string          `json:"title" validate:"omitempty,max=200"`
	Content       *string          `json:"content"`
	Excerpt       *string          `json:"excerpt" validate:"omitempty,max=300"`
	Category      *string          `json:"category" validate:"omitempty,oneof=adventure culture food nature city beach mountains budget"`
	Tags          *[]string        `json:"tags" validate:"omitempty,max=20,dive,max=50"`
	Location      *models.Location `json:"location"`
	FeaturedImage *models.Image    `json:"featuredImage"`
	Images        *[]models.Image  `json:"images" validate:"omitempty,dive"`
	SEO           *SEOPatch        `json:"seo"`
	Status        *string          `json:"status" validate:"omitempty,oneof=draft published scheduled archived"`
	ScheduledAt   *time.Time       `json:"scheduledAt"`
	Featured      *bool            `json:"featured"`
}

// BulkAction is a batch mutation applied to a set of blogs.
type BulkAction string

const (
	BulkDelete    BulkAction = "delete"
	BulkPublish   BulkAction = "publish"
	BulkDraft     BulkAction = "draft"
	BulkFeature   BulkAction = "feature"
	BulkUnfeature BulkAction = "unfeature"
)

// BulkActionRequest is the payload of a bulk action.
type BulkActionRequest struct {
	Action string   `json:"action"`
	IDs    []string `json:"blogIds"`
}

// BlogQuery holds the raw listing parameters of a request.
type BlogQuery struct {
	Page      int
	Limit     int
	Search    string
	Category  string
	Status    string
	Author    string
	Featured  string
	SortBy    string
	SortOrder string
}

// Pagination describes one page of a listing.
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

// BlogPage is one page of blogs.
type BlogPage struct {
	Blogs      []models.Blog `json:"blogs"`
	Pagination Pagination    `json:"pagination"`
}

// BlogService applies lifecycle transitions to blogs and keeps the
// denormalized counters of blogs and their authors in step.
type BlogService struct {
	blogs    repositories.BlogRepository
	users    repositories.UserRepository
	events   EventPublisher
	logger   *zap.Logger
	validate *validator.Validate
	now      func() time.Time
}

// NewBlogService creates a new BlogService. events may be nil.
func NewBlogService(blogs repositories.BlogRepository, users repositories.UserRepository, events EventPublisher, logger *zap.Logger) *BlogService {
	return &BlogService{
		blogs:    blogs,
		users:    users,
		events:   events,
		logger:   logger,
		validate: newValidator(),
		now:      time.Now,
	}
}

// WithClock replaces the service clock. Used by tests.
func (s *BlogService) WithClock(now func() time.Time) *BlogService {
	s.now = now
	return s
}

// assignSlug derives the slug for title and rejects it if another blog
// (other than excludeID) already uses it.
func (s *BlogService) assignSlug(ctx context.Context, title, excludeID string) (string, error) {
	candidate := slug.Make(title)
	if candidate == "" {
		return "", errs.Field("title", "must contain at least one letter or digit")
	}
	exists, err := s.blogs.ExistsBySlug(ctx, candidate, excludeID)
	if err != nil {
		return "", err
	}
	if exists {
		return "", fmt.Errorf("slug %q: %w", candidate, errs.ErrDuplicateSlug)
	}
	return candidate, nil
}

func canModify(caller *models.User, blog *models.Blog) bool {
	return caller.Role == models.RoleAdmin || blog.OwnedBy(caller.ID)
}

// Create stores a new blog owned by caller and bumps the caller's post count.
func (s *BlogService) Create(ctx context.Context, caller *models.User, req CreateBlogRequest) (*models.Blog, error) {
	if caller == nil {
		return nil, errs.ErrUnauthorized
	}
	if !caller.Role.AtLeast(models.RoleAuthor) {
		return nil, fmt.Errorf("role %s cannot create blogs: %w", caller.Role, errs.ErrForbidden)
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Excerpt = strings.TrimSpace(req.Excerpt)
	if err := validateStruct(s.validate, req); err != nil {
		return nil, err
	}

	status := models.StatusDraft
	if req.Status != "" {
		status = models.Status(req.Status)
	}
	if status == models.StatusScheduled && req.ScheduledAt == nil {
		return nil, errs.Field("scheduledAt", "is required for scheduled posts")
	}

	blogSlug, err := s.assignSlug(ctx, req.Title, "")
	if err != nil {
		return nil, err
	}

	now := s.now()
	blog := &models.Blog{
		ID:          uuid.New().String(),
		Title:       req.Title,
		Slug:        blogSlug,
		Content:     req.Content,
		Excerpt:     req.Excerpt,
		Category:    models.Category(req.Category),
		Tags:        req.Tags,
		Images:      req.Images,
		Status:      status,
		ScheduledAt: req.ScheduledAt,
		Featured:    req.Featured,
		AuthorID:    caller.ID,
		CreatedAt:   now,
	}
	if req.Location != nil {
		loc := datatypes.NewJSONType(*req.Location)
		blog.Location = &loc
	}
	if req.FeaturedImage != nil {
		img := datatypes.NewJSONType(*req.FeaturedImage)
		blog.FeaturedImage = &img
	}
	if req.SEO != nil {
		blog.SEO = datatypes.NewJSONType(*req.SEO)
	}
	prepareBlog(blog, now, true)

	if err := s.blogs.Create(ctx, blog); err != nil {
		return nil, err
	}
	if err := s.users.IncrementCounter(ctx, caller.ID, repositories.UserPosts, 1); err != nil {
		return nil, fmt.Errorf("blog %s created but author post count not updated: %w", blog.ID, err)
	}

	s.logger.Info("blog created",
		zap.String("blog_id", blog.ID),
		zap.String("slug", blog.Slug),
		zap.String("author_id", caller.ID))
	publishEvent(s.events, s.logger, EventBlogCreated, blogPayload(blog))
	if blog.Status == models.StatusPublished {
		publishEvent(s.events, s.logger, EventBlogPublished, blogPayload(blog))
	}

	return s.blogs.GetByID(ctx, blog.ID)
}

func (s *BlogService) resolve(ctx context.Context, identifier string) (*models.Blog, error) {
	if _, err := uuid.Parse(identifier); err == nil {
		blog, err := s.blogs.GetByID(ctx, identifier)
		if err == nil || !errors.Is(err, errs.ErrNotFound) {
			return blog, err
		}
	}
	return s.blogs.GetBySlug(ctx, identifier)
}

// Get fetches a blog by ID or slug and records a view. The view counters
// are incremented atomically; a failed increment is logged and ignored.
func (s *BlogService) Get(ctx context.Context, identifier string) (*models.Blog, error) {
	blog, err := s.resolve(ctx, strings.TrimSpace(identifier))
	if err != nil {
		return nil, err
	}
	if err := s.blogs.IncrementCounter(ctx, blog.ID, repositories.BlogViews, 1); err != nil {
		s.logger.Warn("failed to record blog view", zap.String("blog_id", blog.ID), zap.Error(err))
		return blog, nil
	}
	blog.Stats.Views++
	if err := s.users.IncrementCounter(ctx, blog.AuthorID, repositories.UserViews, 1); err != nil {
		s.logger.Warn("failed to record author view", zap.String("author_id", blog.AuthorID), zap.Error(err))
	}
	return blog, nil
}

// Filter converts raw listing parameters into a typed filter. Callers
// below editor only see published blogs, except their own.
func (s *BlogService) Filter(caller *models.User, q BlogQuery) (repositories.BlogFilter, error) {
	filter := repositories.BlogFilter{
		Search:   q.Search,
		AuthorID: strings.TrimSpace(q.Author),
		Page:     q.Page,
		Limit:    q.Limit,
		SortBy:   q.SortBy,
	}
	fields := map[string]string{}

	if q.Category != "" {
		c, err := models.ParseCategory(q.Category)
		if err != nil {
			fields["category"] = err.Error()
		} else {
			filter.Category = &c
		}
	}
	if q.Status != "" {
		st, err := models.ParseStatus(q.Status)
		if err != nil {
			fields["status"] = err.Error()
		} else {
			filter.Status = &st
		}
	}
	if q.Featured != "" {
		f, err := strconv.ParseBool(q.Featured)
		if err != nil {
			fields["featured"] = "must be true or false"
		} else {
			filter.Featured = &f
		}
	}
	if q.SortBy == "" {
		filter.SortBy = "createdAt"
	} else if _, ok := repositories.SortColumns[q.SortBy]; !ok {
		fields["sortBy"] = fmt.Sprintf("unsupported sort field %q", q.SortBy)
	}
	switch strings.ToLower(q.SortOrder) {
	case "", "desc":
	case "asc":
		filter.SortAsc = true
	default:
		fields["sortOrder"] = "must be asc or desc"
	}
	if len(fields) > 0 {
		return repositories.BlogFilter{}, errs.Validation(fields)
	}

	ownListing := caller != nil && filter.AuthorID == caller.ID
	privileged := caller != nil && caller.Role.AtLeast(models.RoleEditor)
	if !privileged && !ownListing {
		published := models.StatusPublished
		filter.Status = &published
	}
	return filter, nil
}

// List returns one page of blogs visible to caller.
func (s *BlogService) List(ctx context.Context, caller *models.User, q BlogQuery) (*BlogPage, error) {
	filter, err := s.Filter(caller, q)
	if err != nil {
		return nil, err
	}
	blogs, total, err := s.blogs.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	page, limit := repositories.PageBounds(q.Page, q.Limit)
	if blogs == nil {
		blogs = []models.Blog{}
	}
	return &BlogPage{
		Blogs: blogs,
		Pagination: Pagination{
			Page:  page,
			Limit: limit,
			Total: total,
			Pages: int(math.Ceil(float64(total) / float64(limit))),
		},
	}, nil
}

// Update applies a partial update. Only the author or an admin may update.
func (s *BlogService) Update(ctx context.Context, caller *models.User, id string, req UpdateBlogRequest) (*models.Blog, error) {
	if caller == nil {
		return nil, errs.ErrUnauthorized
	}
	if err := validateStruct(s.validate, req); err != nil {
		return nil, err
	}
	blog, err := s.blogs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canModify(caller, blog) {
		return nil, fmt.Errorf("user %s cannot modify blog %s: %w", caller.ID, id, errs.ErrForbidden)
	}

	wasPublished := blog.PublishedAt != nil
	var fields []string
	contentChanged := false

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, errs.Field("title", "is required")
		}
		if title != blog.Title {
			newSlug, err := s.assignSlug(ctx, title, blog.ID)
			if err != nil {
				return nil, err
			}
			blog.Title = title
			blog.Slug = newSlug
			fields = append(fields, "title", "slug")
		}
	}
	if req.Content != nil {
		if strings.TrimSpace(*req.Content) == "" {
			return nil, errs.Field("content", "is required")
		}
		blog.Content = *req.Content
		contentChanged = true
		fields = append(fields, "content")
	}
	if req.Excerpt != nil {
		excerpt := strings.TrimSpace(*req.Excerpt)
		if excerpt == "" {
			return nil, errs.Field("excerpt", "is required")
		}
		blog.Excerpt = excerpt
		fields = append(fields, "excerpt")
	}
	if req.Category != nil {
		blog.Category = models.Category(*req.Category)
		fields = append(fields, "category")
	}
	if req.Tags != nil {
		blog.Tags = *req.Tags
		fields = append(fields, "tags")
	}
	if req.Location != nil {
		loc := datatypes.NewJSONType(*req.Location)
		blog.Location = &loc
		fields = append(fields, "location")
	}
	if req.FeaturedImage != nil {
		img := datatypes.NewJSONType(*req.FeaturedImage)
		blog.FeaturedImage = &img
		fields = append(fields, "featured_image")
	}
	if req.Images != nil {
		blog.Images = *req.Images
		fields = append(fields, "images")
	}
	if req.SEO != nil {
		blog.SEO = datatypes.NewJSONType(mergeSEO(blog.SEO.Data(), *req.SEO))
		fields = append(fields, "seo")
	}
	if req.ScheduledAt != nil {
		blog.ScheduledAt = req.ScheduledAt
		fields = append(fields, "scheduled_at")
	}
	if req.Status != nil {
		blog.Status = models.Status(*req.Status)
		fields = append(fields, "status")
	}
	if blog.Status == models.StatusScheduled && blog.ScheduledAt == nil {
		return nil, errs.Field("scheduledAt", "is required for scheduled posts")
	}
	if req.Featured != nil {
		blog.Featured = *req.Featured
		fields = append(fields, "featured")
	}

	fields = append(fields, prepareBlog(blog, s.now(), contentChanged)...)
	if err := s.blogs.Update(ctx, blog, fields...); err != nil {
		return nil, err
	}

	s.logger.Info("blog updated", zap.String("blog_id", blog.ID), zap.Strings("fields", fields))
	publishEvent(s.events, s.logger, EventBlogUpdated, blogPayload(blog))
	if !wasPublished && blog.PublishedAt != nil {
		publishEvent(s.events, s.logger, EventBlogPublished, blogPayload(blog))
	}
	return blog, nil
}

func mergeSEO(current models.SEO, patch SEOPatch) models.SEO {
	if patch.MetaTitle != nil {
		current.MetaTitle = *patch.MetaTitle
	}
	if patch.MetaDescription != nil {
		current.MetaDescription = *patch.MetaDescription
	}
	if patch.Keywords != nil {
		current.Keywords = *patch.Keywords
	}
	return current
}

// Delete removes a blog and decrements its author's post count by one.
// The counter is not floored at zero. A failed decrement is logged and
// ignored once the blog is gone.
func (s *BlogService) Delete(ctx context.Context, caller *models.User, id string) error {
	if caller == nil {
		return errs.ErrUnauthorized
	}
	blog, err := s.blogs.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !canModify(caller, blog) {
		return fmt.Errorf("user %s cannot delete blog %s: %w", caller.ID, id, errs.ErrForbidden)
	}
	if err := s.blogs.Delete(ctx, blog.ID); err != nil {
		return err
	}
	if err := s.users.IncrementCounter(ctx, blog.AuthorID, repositories.UserPosts, -1); err != nil {
		s.logger.Warn("blog deleted but author post count not updated",
			zap.String("blog_id", blog.ID),
			zap.String("author_id", blog.AuthorID),
			zap.Error(err))
	}

	s.logger.Info("blog deleted", zap.String("blog_id", blog.ID), zap.String("author_id", blog.AuthorID))
	publishEvent(s.events, s.logger, EventBlogDeleted, blogPayload(blog))
	return nil
}

// Bulk applies one action to every blog in req.IDs and returns how many
// records it affected. Admin only; ownership is not checked per record.
// The batch is not atomic: a failure part-way leaves earlier writes in place.
func (s *BlogService) Bulk(ctx context.Context, caller *models.User, req BulkActionRequest) (int64, error) {
	if caller == nil {
		return 0, errs.ErrUnauthorized
	}
	if caller.Role != models.RoleAdmin {
		return 0, fmt.Errorf("bulk actions require admin: %w", errs.ErrForbidden)
	}
	action := BulkAction(strings.ToLower(strings.TrimSpace(req.Action)))
	switch action {
	case BulkDelete, BulkPublish, BulkDraft, BulkFeature, BulkUnfeature:
	default:
		return 0, fmt.Errorf("%q: %w", req.Action, errs.ErrInvalidAction)
	}
	ids := uniqueIDs(req.IDs)
	if len(ids) == 0 {
		return 0, errs.Field("blogIds", "at least one blog id is required")
	}

	now := s.now()
	var (
		affected int64
		err      error
	)
	switch action {
	case BulkDelete:
		affected, err = s.bulkDelete(ctx, ids)
	case BulkPublish:
		affected, err = s.blogs.BulkUpdate(ctx, ids, map[string]interface{}{
			"status":     models.StatusPublished,
			"updated_at": now,
		})
		if err == nil {
			_, err = s.blogs.SetPublishedAt(ctx, ids, now)
		}
	case BulkDraft:
		affected, err = s.blogs.BulkUpdate(ctx, ids, map[string]interface{}{
			"status":     models.StatusDraft,
			"updated_at": now,
		})
	case BulkFeature, BulkUnfeature:
		affected, err = s.blogs.BulkUpdate(ctx, ids, map[string]interface{}{
			"featured":   action == BulkFeature,
			"updated_at": now,
		})
	}
	if err != nil {
		return affected, err
	}

	s.logger.Info("bulk action applied",
		zap.String("action", string(action)),
		zap.Int("requested", len(ids)),
		zap.Int64("affected", affected))
	publishEvent(s.events, s.logger, EventBlogBulk, map[string]interface{}{
		"action":   action,
		"blogIds":  ids,
		"affected": affected,
	})
	return affected, nil
}

func (s *BlogService) bulkDelete(ctx context.Context, ids []string) (int64, error) {
	blogs, err := s.blogs.FindByIDs(ctx, ids)
	if err != nil {
		return 0, err
	}
	if len(blogs) == 0 {
		return 0, nil
	}
	perAuthor := make(map[string]int64)
	found := make([]string, 0, len(blogs))
	for _, b := range blogs {
		perAuthor[b.AuthorID]++
		found = append(found, b.ID)
	}
	affected, err := s.blogs.BulkDelete(ctx, found)
	if err != nil {
		return 0, err
	}
	for authorID, n := range perAuthor {
		if err := s.users.IncrementCounter(ctx, authorID, repositories.UserPosts, -n); err != nil {
			return affected, fmt.Errorf("blogs deleted but post count of %s not updated: %w", authorID, err)
		}
	}
	return affected, nil
}

func uniqueIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// Like records a like on the blog and on its author.
func (s *BlogService) Like(ctx context.Context, id string) (*models.Blog, error) {
	blog, err := s.blogs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.blogs.IncrementCounter(ctx, blog.ID, repositories.BlogLikes, 1); err != nil {
		return nil, err
	}
	blog.Stats.Likes++
	if err := s.users.IncrementCounter(ctx, blog.AuthorID, repositories.UserLikes, 1); err != nil {
		s.logger.Warn("failed to record author like", zap.String("author_id", blog.AuthorID), zap.Error(err))
	}
	return blog, nil
}

// Share records a share of the blog.
func (s *BlogService) Share(ctx context.Context, id string) (*models.Blog, error) {
	blog, err := s.blogs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.blogs.IncrementCounter(ctx, blog.ID, repositories.BlogShares, 1); err != nil {
		return nil, err
	}
	blog.Stats.Shares++
	return blog, nil
}

// PublishDue publishes every scheduled blog whose time has come and
// returns how many were published.
func (s *BlogService) PublishDue(ctx context.Context) (int64, error) {
	now := s.now()
	due, err := s.blogs.ListDueScheduled(ctx, now)
	if err != nil {
		return 0, err
	}
	if len(due) == 0 {
		return 0, nil
	}
	ids := make([]string, len(due))
	for i := range due {
		ids[i] = due[i].ID
	}
	n, err := s.blogs.BulkUpdate(ctx, ids, map[string]interface{}{
		"status":     models.StatusPublished,
		"updated_at": now,
	})
	if err != nil {
		return 0, err
	}
	if _, err := s.blogs.SetPublishedAt(ctx, ids, now); err != nil {
		return n, err
	}
	for i := range due {
		due[i].Status = models.StatusPublished
		publishEvent(s.events, s.logger, EventBlogPublished, blogPayload(&due[i]))
	}
	s.logger.Info("published scheduled blogs", zap.Int64("count", n))
	return n, nil
}
