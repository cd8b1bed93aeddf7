package services_test

import (
	"context"
	"time"

	"wanderlog/internal/models"
	"wanderlog/internal/repositories"

	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) user(args mock.Arguments) (*models.User, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return m.user(m.Called(ctx, username))
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return m.user(m.Called(ctx, email))
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return m.user(m.Called(ctx, id))
}

func (m *MockUserRepository) List(ctx context.Context, filter repositories.UserFilter) ([]models.User, int64, error) {
	args := m.Called(ctx, filter)
	users, _ := args.Get(0).([]models.User)
	return users, args.Get(1).(int64), args.Error(2)
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User, fields ...string) error {
	args := m.Called(ctx, user, fields)
	return args.Error(0)
}

func (m *MockUserRepository) IncrementCounter(ctx context.Context, id string, counter repositories.UserCounter, delta int64) error {
	args := m.Called(ctx, id, counter, delta)
	return args.Error(0)
}

func (m *MockUserRepository) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

// MockBlogRepository is a mock implementation of repositories.BlogRepository
type MockBlogRepository struct {
	mock.Mock
}

func (m *MockBlogRepository) blog(args mock.Arguments) (*models.Blog, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Blog), args.Error(1)
}

func (m *MockBlogRepository) Create(ctx context.Context, blog *models.Blog) error {
	args := m.Called(ctx, blog)
	return args.Error(0)
}

func (m *MockBlogRepository) GetByID(ctx context.Context, id string) (*models.Blog, error) {
	return m.blog(m.Called(ctx, id))
}

func (m *MockBlogRepository) GetBySlug(ctx context.Context, slug string) (*models.Blog, error) {
	return m.blog(m.Called(ctx, slug))
}

func (m *MockBlogRepository) ExistsBySlug(ctx context.Context, slug, excludeID string) (bool, error) {
	args := m.Called(ctx, slug, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockBlogRepository) List(ctx context.Context, filter repositories.BlogFilter) ([]models.Blog, int64, error) {
	args := m.Called(ctx, filter)
	blogs, _ := args.Get(0).([]models.Blog)
	return blogs, args.Get(1).(int64), args.Error(2)
}

func (m *MockBlogRepository) Update(ctx context.Context, blog *models.Blog, fields ...string) error {
	args := m.Called(ctx, blog, fields)
	return args.Error(0)
}

func (m *MockBlogRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockBlogRepository) IncrementCounter(ctx context.Context, id string, counter repositories.BlogCounter, delta int64) error {
	args := m.Called(ctx, id, counter, delta)
	return args.Error(0)
}

func (m *MockBlogRepository) FindByIDs(ctx context.Context, ids []string) ([]models.Blog, error) {
	args := m.Called(ctx, ids)
	blogs, _ := args.Get(0).([]models.Blog)
	return blogs, args.Error(1)
}

func (m *MockBlogRepository) BulkDelete(ctx context.Context, ids []string) (int64, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBlogRepository) BulkUpdate(ctx context.Context, ids []string, values map[string]interface{}) (int64, error) {
	args := m.Called(ctx, ids, values)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBlogRepository) SetPublishedAt(ctx context.Context, ids []string, at time.Time) (int64, error) {
	args := m.Called(ctx, ids, at)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBlogRepository) ListDueScheduled(ctx context.Context, now time.Time) ([]models.Blog, error) {
	args := m.Called(ctx, now)
	blogs, _ := args.Get(0).([]models.Blog)
	return blogs, args.Error(1)
}

// MockEventPublisher records published events.
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(eventType string, payload map[string]interface{}) error {
	args := m.Called(eventType, payload)
	return args.Error(0)
}
