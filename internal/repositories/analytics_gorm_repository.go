package repositories

import (
	"context"
	"fmt"
	"time"

	"wanderlog/internal/models"

	"gorm.io/gorm"
)

// GORMAnalyticsRepository is a GORM implementation of AnalyticsRepository.
// Aggregates use plain GROUP BY SQL understood by both PostgreSQL and SQLite.
type GORMAnalyticsRepository struct {
	db *gorm.DB
}

// NewGORMAnalyticsRepository creates a new instance of GORMAnalyticsRepository.
func NewGORMAnalyticsRepository(db *gorm.DB) *GORMAnalyticsRepository {
	return &GORMAnalyticsRepository{
		db: db,
	}
}

func createdIn(r TimeRange) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if r.From != nil {
			db = db.Where("created_at >= ?", *r.From)
		}
		if r.To != nil {
			db = db.Where("created_at < ?", *r.To)
		}
		return db
	}
}

// CountBlogs counts blogs, optionally of one status, created within r.
func (r *GORMAnalyticsRepository) CountBlogs(ctx context.Context, status *models.Status, created TimeRange) (int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Blog{}).Scopes(createdIn(created))
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count blogs: %w", err)
	}
	return n, nil
}

// CountUsers counts users created within r.
func (r *GORMAnalyticsRepository) CountUsers(ctx context.Context, created TimeRange) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Scopes(createdIn(created)).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}

func (r *GORMAnalyticsRepository) CountActiveUsers(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Where("is_active = ?", true).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count active users: %w", err)
	}
	return n, nil
}

func (r *GORMAnalyticsRepository) CountUsersLoggedInSince(ctx context.Context, since time.Time) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Where("last_login >= ?", since).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count recent logins: %w", err)
	}
	return n, nil
}

func (r *GORMAnalyticsRepository) CountFeatured(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Blog{}).Where("featured = ?", true).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count featured blogs: %w", err)
	}
	return n, nil
}

func (r *GORMAnalyticsRepository) StatusCounts(ctx context.Context) ([]StatusCount, error) {
	var rows []StatusCount
	err := r.db.WithContext(ctx).Model(&models.Blog{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count blogs by status: %w", err)
	}
	return rows, nil
}

func (r *GORMAnalyticsRepository) EngagementTotals(ctx context.Context) (EngagementTotals, error) {
	var totals EngagementTotals
	err := r.db.WithContext(ctx).Model(&models.Blog{}).
		Select("COALESCE(SUM(stats_views), 0) AS views, COALESCE(SUM(stats_likes), 0) AS likes, " +
			"COALESCE(SUM(stats_shares), 0) AS shares, COALESCE(SUM(stats_comments), 0) AS comments").
		Scan(&totals).Error
	if err != nil {
		return EngagementTotals{}, fmt.Errorf("failed to sum engagement: %w", err)
	}
	return totals, nil
}

// BlogCreationTimes returns the creation time of every blog created since.
// Bucketing into calendar days happens in the caller's time zone.
func (r *GORMAnalyticsRepository) BlogCreationTimes(ctx context.Context, since time.Time) ([]time.Time, error) {
	var times []time.Time
	err := r.db.WithContext(ctx).Model(&models.Blog{}).
		Where("created_at >= ?", since).
		Order("created_at ASC").
		Pluck("created_at", &times).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load blog creation times: %w", err)
	}
	return times, nil
}

func (r *GORMAnalyticsRepository) UserCreationTimes(ctx context.Context, since time.Time) ([]time.Time, error) {
	var times []time.Time
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("created_at >= ?", since).
		Order("created_at ASC").
		Pluck("created_at", &times).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load user creation times: %w", err)
	}
	return times, nil
}

func (r *GORMAnalyticsRepository) CategoryDistribution(ctx context.Context) ([]CategoryCount, error) {
	var rows []CategoryCount
	err := r.db.WithContext(ctx).Model(&models.Blog{}).
		Select("category, COUNT(*) AS count").
		Group("category").
		Order("count DESC, category ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load category distribution: %w", err)
	}
	return rows, nil
}

func (r *GORMAnalyticsRepository) RoleDistribution(ctx context.Context) ([]RoleCount, error) {
	var rows []RoleCount
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Select("role, COUNT(*) AS count").
		Group("role").
		Order("count DESC, role ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load role distribution: %w", err)
	}
	return rows, nil
}

// TopPublished returns the most viewed published blogs.
func (r *GORMAnalyticsRepository) TopPublished(ctx context.Context, limit int) ([]models.Blog, error) {
	var blogs []models.Blog
	err := r.db.WithContext(ctx).
		Select("id", "title", "slug", "category", "status", "published_at", "author_id",
			"stats_views", "stats_likes", "stats_shares", "stats_comments", "created_at", "updated_at").
		Where("status = ?", models.StatusPublished).
		Order("stats_views DESC, id ASC").
		Limit(limit).
		Find(&blogs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load top blogs: %w", err)
	}
	return blogs, nil
}

func (r *GORMAnalyticsRepository) ContentAverages(ctx context.Context, since time.Time) (ContentAverages, error) {
	var avg ContentAverages
	err := r.db.WithContext(ctx).Model(&models.Blog{}).
		Select("COALESCE(AVG(stats_views), 0) AS avg_views, COALESCE(AVG(stats_likes), 0) AS avg_likes, "+
			"COALESCE(AVG(reading_time), 0) AS avg_reading_time, COUNT(*) AS total_posts").
		Where("created_at >= ?", since).
		Scan(&avg).Error
	if err != nil {
		return ContentAverages{}, fmt.Errorf("failed to compute content averages: %w", err)
	}
	return avg, nil
}

// CategoryPerformance aggregates published blogs created since, by category.
func (r *GORMAnalyticsRepository) CategoryPerformance(ctx context.Context, since time.Time) ([]CategoryPerformance, error) {
	var rows []CategoryPerformance
	err := r.db.WithContext(ctx).Model(&models.Blog{}).
		Select("category, COUNT(*) AS count, COALESCE(SUM(stats_views), 0) AS total_views, "+
			"COALESCE(AVG(stats_views), 0) AS avg_views").
		Where("status = ? AND created_at >= ?", models.StatusPublished, since).
		Group("category").
		Order("total_views DESC, category ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to compute category performance: %w", err)
	}
	return rows, nil
}

func (r *GORMAnalyticsRepository) AuthorPerformance(ctx context.Context, since time.Time, limit int) ([]AuthorPerformance, error) {
	var rows []AuthorPerformance
	err := r.db.WithContext(ctx).Table("blogs AS b").
		Select("b.author_id AS author_id, u.username AS username, COUNT(*) AS post_count, "+
			"COALESCE(SUM(b.stats_views), 0) AS total_views, COALESCE(AVG(b.stats_views), 0) AS avg_views, "+
			"COALESCE(SUM(b.stats_likes), 0) AS total_likes, COALESCE(AVG(b.stats_likes), 0) AS avg_likes").
		Joins("JOIN users AS u ON u.id = b.author_id").
		Where("b.created_at >= ?", since).
		Group("b.author_id, u.username").
		Order("total_views DESC, u.username ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to compute author performance: %w", err)
	}
	return rows, nil
}

// TagSources loads the raw tag sets of blogs created since. Tag arrays are
// stored as JSON, so exploding them is left to the caller.
func (r *GORMAnalyticsRepository) TagSources(ctx context.Context, since time.Time) ([]TagSource, error) {
	var rows []TagSource
	err := r.db.WithContext(ctx).Model(&models.Blog{}).
		Select("tags, stats_views AS views").
		Where("created_at >= ?", since).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load tags: %w", err)
	}
	return rows, nil
}

// RoleActivity counts users per role and those of them who logged in since.
func (r *GORMAnalyticsRepository) RoleActivity(ctx context.Context, since time.Time) ([]RoleActivity, error) {
	var rows []RoleActivity
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Select("role, COUNT(*) AS count, COALESCE(SUM(CASE WHEN last_login >= ? THEN 1 ELSE 0 END), 0) AS active", since).
		Group("role").
		Order("count DESC, role ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to compute role activity: %w", err)
	}
	return rows, nil
}

func (r *GORMAnalyticsRepository) RecentlyAuthenticated(ctx context.Context, limit int) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Where("last_login IS NOT NULL").
		Order("last_login DESC").
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load recently authenticated users: %w", err)
	}
	return users, nil
}

func (r *GORMAnalyticsRepository) UserAverages(ctx context.Context) (UserAverages, error) {
	var avg UserAverages
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Select("COALESCE(AVG(stats_posts), 0) AS avg_posts, COALESCE(AVG(stats_views), 0) AS avg_views").
		Scan(&avg).Error
	if err != nil {
		return UserAverages{}, fmt.Errorf("failed to compute user averages: %w", err)
	}
	return avg, nil
}

// RecentlyUpdated returns blogs updated since, newest first, with author handles.
func (r *GORMAnalyticsRepository) RecentlyUpdated(ctx context.Context, since time.Time, limit int) ([]models.Blog, error) {
	var blogs []models.Blog
	err := r.db.WithContext(ctx).
		Select("id", "title", "slug", "status", "author_id", "created_at", "updated_at").
		Preload("Author", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "username")
		}).
		Where("updated_at >= ?", since).
		Order("updated_at DESC").
		Limit(limit).
		Find(&blogs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load recently updated blogs: %w", err)
	}
	return blogs, nil
}
