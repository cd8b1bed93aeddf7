package repositories

import (
	"context"
	"strings"
	"time"

	"wanderlog/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BlogCounter names one of the denormalized engagement counters.
type BlogCounter string

const (
	BlogViews  BlogCounter = "stats_views"
	BlogLikes  BlogCounter = "stats_likes"
	BlogShares BlogCounter = "stats_shares"
)

// SortColumns maps the accepted sortBy values to blog columns.
var SortColumns = map[string]string{
	"createdAt":   "created_at",
	"updatedAt":   "updated_at",
	"publishedAt": "published_at",
	"title":       "title",
	"views":       "stats_views",
	"likes":       "stats_likes",
	"readingTime": "reading_time",
}

// BlogFilter describes a blog listing. Each set field contributes one
// predicate; predicates are combined with AND. Unset fields add nothing.
type BlogFilter struct {
	Search   string
	Category *models.Category
	Status   *models.Status
	AuthorID string
	Featured *bool
	SortBy   string // key of SortColumns, defaults to createdAt
	SortAsc  bool
	Page     int
	Limit    int
}

// Scopes returns the typed predicates selected by the filter.
func (f BlogFilter) Scopes() []func(*gorm.DB) *gorm.DB {
	var scopes []func(*gorm.DB) *gorm.DB
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		scopes = append(scopes, func(db *gorm.DB) *gorm.DB {
			return db.Where("(LOWER(blogs.title) LIKE ? OR LOWER(blogs.excerpt) LIKE ? OR LOWER(blogs.content) LIKE ?)", like, like, like)
		})
	}
	if f.Category != nil {
		category := *f.Category
		scopes = append(scopes, func(db *gorm.DB) *gorm.DB {
			return db.Where("blogs.category = ?", category)
		})
	}
	if f.Status != nil {
		status := *f.Status
		scopes = append(scopes, func(db *gorm.DB) *gorm.DB {
			return db.Where("blogs.status = ?", status)
		})
	}
	if f.AuthorID != "" {
		author := f.AuthorID
		scopes = append(scopes, func(db *gorm.DB) *gorm.DB {
			return db.Where("blogs.author_id = ?", author)
		})
	}
	if f.Featured != nil {
		featured := *f.Featured
		scopes = append(scopes, func(db *gorm.DB) *gorm.DB {
			return db.Where("blogs.featured = ?", featured)
		})
	}
	return scopes
}

func (f BlogFilter) order() clause.OrderBy {
	col, ok := SortColumns[f.SortBy]
	if !ok {
		col = SortColumns["createdAt"]
	}
	return clause.OrderBy{Columns: []clause.OrderByColumn{
		{Column: clause.Column{Table: "blogs", Name: col}, Desc: !f.SortAsc},
		{Column: clause.Column{Table: "blogs", Name: "id"}},
	}}
}

// BlogRepository defines the interface for blog data access.
type BlogRepository interface {
	Create(ctx context.Context, blog *models.Blog) error
	// GetByID and GetBySlug return the blog with its author's public profile.
	GetByID(ctx context.Context, id string) (*models.Blog, error)
	GetBySlug(ctx context.Context, slug string) (*models.Blog, error)
	// ExistsBySlug reports whether another blog (not excludeID) uses slug.
	ExistsBySlug(ctx context.Context, slug, excludeID string) (bool, error)
	List(ctx context.Context, filter BlogFilter) ([]models.Blog, int64, error)
	// Update writes only the named columns of blog.
	Update(ctx context.Context, blog *models.Blog, fields ...string) error
	Delete(ctx context.Context, id string) error
	IncrementCounter(ctx context.Context, id string, counter BlogCounter, delta int64) error

	FindByIDs(ctx context.Context, ids []string) ([]models.Blog, error)
	BulkDelete(ctx context.Context, ids []string) (int64, error)
	BulkUpdate(ctx context.Context, ids []string, values map[string]interface{}) (int64, error)
	// SetPublishedAt stamps at on the given blogs that have never been published.
	SetPublishedAt(ctx context.Context, ids []string, at time.Time) (int64, error)
	ListDueScheduled(ctx context.Context, now time.Time) ([]models.Blog, error)
}
