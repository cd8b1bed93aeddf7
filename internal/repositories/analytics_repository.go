package repositories

import (
	"context"
	"time"

	"wanderlog/internal/models"

	"gorm.io/datatypes"
)

// TimeRange bounds a query on creation time. Nil ends are open.
type TimeRange struct {
	From *time.Time // inclusive
	To   *time.Time // exclusive
}

// Since is a TimeRange open at the upper end.
func Since(t time.Time) TimeRange {
	return TimeRange{From: &t}
}

// Between is the half-open range [from, to).
func Between(from, to time.Time) TimeRange {
	return TimeRange{From: &from, To: &to}
}

type CategoryCount struct {
	Category models.Category `json:"category"`
	Count    int64           `json:"count"`
}

type RoleCount struct {
	Role  models.Role `json:"role"`
	Count int64       `json:"count"`
}

type StatusCount struct {
	Status models.Status
	Count  int64
}

type EngagementTotals struct {
	Views    int64 `json:"views"`
	Likes    int64 `json:"likes"`
	Shares   int64 `json:"shares"`
	Comments int64 `json:"comments"`
}

type ContentAverages struct {
	AvgViews       float64 `json:"avgViews"`
	AvgLikes       float64 `json:"avgLikes"`
	AvgReadingTime float64 `json:"avgReadingTime"`
	TotalPosts     int64   `json:"totalPosts"`
}

type CategoryPerformance struct {
	Category   models.Category `json:"category"`
	Count      int64           `json:"count"`
	TotalViews int64           `json:"totalViews"`
	AvgViews   float64         `json:"avgViews"`
}

type AuthorPerformance struct {
	AuthorID   string  `json:"authorId"`
	Username   string  `json:"username"`
	PostCount  int64   `json:"postCount"`
	TotalViews int64   `json:"totalViews"`
	AvgViews   float64 `json:"avgViews"`
	TotalLikes int64   `json:"totalLikes"`
	AvgLikes   float64 `json:"avgLikes"`
}

// TagSource is the tag set and view count of one blog, before tags are exploded.
type TagSource struct {
	Tags  datatypes.JSONSlice[string]
	Views int64
}

type RoleActivity struct {
	Role   models.Role `json:"role"`
	Count  int64       `json:"count"`
	Active int64       `json:"active"`
}

type UserAverages struct {
	AvgPosts float64 `json:"avgPostsPerUser"`
	AvgViews float64 `json:"avgViewsPerUser"`
}

// AnalyticsRepository runs the read-only aggregate queries behind the
// analytics views. Every call reads the store as it is at that moment.
type AnalyticsRepository interface {
	CountBlogs(ctx context.Context, status *models.Status, created TimeRange) (int64, error)
	CountUsers(ctx context.Context, created TimeRange) (int64, error)
	CountActiveUsers(ctx context.Context) (int64, error)
	CountUsersLoggedInSince(ctx context.Context, since time.Time) (int64, error)
	CountFeatured(ctx context.Context) (int64, error)
	StatusCounts(ctx context.Context) ([]StatusCount, error)
	EngagementTotals(ctx context.Context) (EngagementTotals, error)

	BlogCreationTimes(ctx context.Context, since time.Time) ([]time.Time, error)
	UserCreationTimes(ctx context.Context, since time.Time) ([]time.Time, error)

	CategoryDistribution(ctx context.Context) ([]CategoryCount, error)
	RoleDistribution(ctx context.Context) ([]RoleCount, error)
	TopPublished(ctx context.Context, limit int) ([]models.Blog, error)

	ContentAverages(ctx context.Context, since time.Time) (ContentAverages, error)
	CategoryPerformance(ctx context.Context, since time.Time) ([]CategoryPerformance, error)
	AuthorPerformance(ctx context.Context, since time.Time, limit int) ([]AuthorPerformance, error)
	TagSources(ctx context.Context, since time.Time) ([]TagSource, error)

	RoleActivity(ctx context.Context, since time.Time) ([]RoleActivity, error)
	RecentlyAuthenticated(ctx context.Context, limit int) ([]models.User, error)
	UserAverages(ctx context.Context) (UserAverages, error)
	RecentlyUpdated(ctx context.Context, since time.Time, limit int) ([]models.Blog, error)
}
