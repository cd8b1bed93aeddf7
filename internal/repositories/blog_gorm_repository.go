package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wanderlog/internal/errs"
	"wanderlog/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMBlogRepository is a GORM implementation of BlogRepository.
type GORMBlogRepository struct {
	db *gorm.DB
}

// NewGORMBlogRepository creates a new instance of GORMBlogRepository.
func NewGORMBlogRepository(db *gorm.DB) *GORMBlogRepository {
	return &GORMBlogRepository{
		db: db,
	}
}

func withAuthor(db *gorm.DB) *gorm.DB {
	return db.Preload("Author", func(db *gorm.DB) *gorm.DB {
		return db.Select(models.PublicColumns)
	})
}

// Create inserts a new blog. A slug collision on the unique index is
// reported as errs.ErrDuplicateSlug.
func (r *GORMBlogRepository) Create(ctx context.Context, blog *models.Blog) error {
	if blog.ID == "" {
		blog.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(blog).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("slug %q: %w", blog.Slug, errs.ErrDuplicateSlug)
		}
		return fmt.Errorf("failed to create blog: %w", err)
	}
	return nil
}

// GetByID retrieves a blog by its ID.
func (r *GORMBlogRepository) GetByID(ctx context.Context, id string) (*models.Blog, error) {
	return r.first(ctx, "blogs.id = ?", id)
}

// GetBySlug retrieves a blog by its slug.
func (r *GORMBlogRepository) GetBySlug(ctx context.Context, slug string) (*models.Blog, error) {
	return r.first(ctx, "blogs.slug = ?", slug)
}

func (r *GORMBlogRepository) first(ctx context.Context, query string, arg string) (*models.Blog, error) {
	var blog models.Blog
	if err := r.db.WithContext(ctx).Scopes(withAuthor).First(&blog, query, arg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("blog %s: %w", arg, errs.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get blog %s: %w", arg, err)
	}
	return &blog, nil
}

// ExistsBySlug reports whether a blog other than excludeID already uses slug.
func (r *GORMBlogRepository) ExistsBySlug(ctx context.Context, slug, excludeID string) (bool, error) {
	q := r.db.WithContext(ctx).Model(&models.Blog{}).Where("slug = ?", slug)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check slug %q: %w", slug, err)
	}
	return count > 0, nil
}

// List returns one page of blogs matching filter and the total match count.
func (r *GORMBlogRepository) List(ctx context.Context, filter BlogFilter) ([]models.Blog, int64, error) {
	scopes := filter.Scopes()

	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Blog{}).Scopes(scopes...).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count blogs: %w", err)
	}

	page, limit := PageBounds(filter.Page, filter.Limit)
	var blogs []models.Blog
	err := r.db.WithContext(ctx).Model(&models.Blog{}).
		Scopes(scopes...).
		Scopes(withAuthor).
		Clauses(filter.order()).
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&blogs).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list blogs: %w", err)
	}
	return blogs, total, nil
}

// Update writes the named columns of blog.
func (r *GORMBlogRepository) Update(ctx context.Context, blog *models.Blog, fields ...string) error {
	if len(fields) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).Model(blog).Omit(clause.Associations).Select(fields).Updates(blog)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("slug %q: %w", blog.Slug, errs.ErrDuplicateSlug)
		}
		return fmt.Errorf("failed to update blog %s: %w", blog.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("blog %s: %w", blog.ID, errs.ErrNotFound)
	}
	return nil
}

// Delete deletes a blog by its ID.
func (r *GORMBlogRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Blog{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete blog %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("blog %s: %w", id, errs.ErrNotFound)
	}
	return nil
}

// IncrementCounter adds delta to an engagement counter in a single statement.
// updated_at is left alone: counters are not content edits.
func (r *GORMBlogRepository) IncrementCounter(ctx context.Context, id string, counter BlogCounter, delta int64) error {
	col := string(counter)
	res := r.db.WithContext(ctx).Model(&models.Blog{}).Where("id = ?", id).
		UpdateColumn(col, gorm.Expr(col+" + ?", delta))
	if res.Error != nil {
		return fmt.Errorf("failed to increment %s for blog %s: %w", col, id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("blog %s: %w", id, errs.ErrNotFound)
	}
	return nil
}

// FindByIDs returns the blogs among ids that exist, without authors.
func (r *GORMBlogRepository) FindByIDs(ctx context.Context, ids []string) ([]models.Blog, error) {
	var blogs []models.Blog
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&blogs).Error; err != nil {
		return nil, fmt.Errorf("failed to find blogs: %w", err)
	}
	return blogs, nil
}

// BulkDelete removes every blog in ids and returns how many were deleted.
func (r *GORMBlogRepository) BulkDelete(ctx context.Context, ids []string) (int64, error) {
	res := r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&models.Blog{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to bulk delete blogs: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// BulkUpdate applies values to every blog in ids and returns how many matched.
func (r *GORMBlogRepository) BulkUpdate(ctx context.Context, ids []string, values map[string]interface{}) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Blog{}).Where("id IN ?", ids).Updates(values)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to bulk update blogs: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// SetPublishedAt stamps at on blogs in ids whose published_at is still unset.
func (r *GORMBlogRepository) SetPublishedAt(ctx context.Context, ids []string, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Blog{}).
		Where("id IN ? AND published_at IS NULL", ids).
		UpdateColumn("published_at", at)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to set published_at: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// ListDueScheduled returns scheduled blogs whose scheduled time has passed.
func (r *GORMBlogRepository) ListDueScheduled(ctx context.Context, now time.Time) ([]models.Blog, error) {
	var blogs []models.Blog
	err := r.db.WithContext(ctx).
		Where("status = ? AND scheduled_at IS NOT NULL AND scheduled_at <= ?", models.StatusScheduled, now).
		Order("scheduled_at ASC").
		Find(&blogs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list due scheduled blogs: %w", err)
	}
	return blogs, nil
}
