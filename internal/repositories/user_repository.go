package repositories

import (
	"context"
	"time"

	"wanderlog/internal/models"
)

// UserCounter names one of the denormalized user activity counters.
type UserCounter string

const (
	UserPosts UserCounter = "stats_posts"
	UserViews UserCounter = "stats_views"
	UserLikes UserCounter = "stats_likes"
)

// UserFilter narrows user listings. Zero values omit the predicate.
type UserFilter struct {
	Search   string
	Role     *models.Role
	IsActive *bool
	Page     int
	Limit    int
}

// UserRepository defines the interface for user data access.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context, filter UserFilter) ([]models.User, int64, error)
	// Update writes only the named columns of user.
	Update(ctx context.Context, user *models.User, fields ...string) error
	// IncrementCounter adds delta to a counter atomically. No floor is applied.
	IncrementCounter(ctx context.Context, id string, counter UserCounter, delta int64) error
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
}
