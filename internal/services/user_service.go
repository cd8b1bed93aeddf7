package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"wanderlog/internal/errs"
	"wanderlog/internal/models"
	"wanderlog/internal/repositories"

	"go.uber.org/zap"
)

// UserQuery holds the raw listing parameters for users.
type UserQuery struct {
	Page     int
	Limit    int
	Search   string
	Role     string
	IsActive string
}

// UserPage is one page of users.
type UserPage struct {
	Users      []models.User `json:"users"`
	Pagination Pagination    `json:"pagination"`
}

// UserService holds the admin operations on accounts. Accounts are never
// deleted; they are deactivated instead.
type UserService struct {
	users  repositories.UserRepository
	logger *zap.Logger
	now    func() time.Time
}

// NewUserService creates a new UserService.
func NewUserService(users repositories.UserRepository, logger *zap.Logger) *UserService {
	return &UserService{users: users, logger: logger, now: time.Now}
}

func requireAdmin(caller *models.User) error {
	if caller == nil {
		return errs.ErrUnauthorized
	}
	if caller.Role != models.RoleAdmin {
		return fmt.Errorf("admin role required: %w", errs.ErrForbidden)
	}
	return nil
}

// List returns one page of users.
func (s *UserService) List(ctx context.Context, caller *models.User, q UserQuery) (*UserPage, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	filter := repositories.UserFilter{Search: q.Search, Page: q.Page, Limit: q.Limit}
	if q.Role != "" {
		r, err := models.ParseRole(q.Role)
		if err != nil {
			return nil, errs.Field("role", err.Error())
		}
		filter.Role = &r
	}
	if q.IsActive != "" {
		active, err := strconv.ParseBool(q.IsActive)
		if err != nil {
			return nil, errs.Field("isActive", "must be true or false")
		}
		filter.IsActive = &active
	}
	users, total, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	page, limit := repositories.PageBounds(q.Page, q.Limit)
	if users == nil {
		users = []models.User{}
	}
	return &UserPage{
		Users: users,
		Pagination: Pagination{
			Page:  page,
			Limit: limit,
			Total: total,
			Pages: int((total + int64(limit) - 1) / int64(limit)),
		},
	}, nil
}

// SetRole changes the role of another account.
func (s *UserService) SetRole(ctx context.Context, caller *models.User, id, role string) (*models.User, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	r, err := models.ParseRole(role)
	if err != nil {
		return nil, errs.Field("role", err.Error())
	}
	if caller.ID == strings.TrimSpace(id) {
		return nil, fmt.Errorf("admins cannot change their own role: %w", errs.ErrForbidden)
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	user.Role = r
	user.UpdatedAt = s.now()
	if err := s.users.Update(ctx, user, "role", "updated_at"); err != nil {
		return nil, err
	}
	s.logger.Info("user role changed", zap.String("user_id", user.ID), zap.String("role", string(r)))
	return user, nil
}

// SetActive activates or deactivates another account.
func (s *UserService) SetActive(ctx context.Context, caller *models.User, id string, active bool) (*models.User, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	if caller.ID == strings.TrimSpace(id) {
		return nil, fmt.Errorf("admins cannot change their own status: %w", errs.ErrForbidden)
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	user.IsActive = active
	user.UpdatedAt = s.now()
	if err := s.users.Update(ctx, user, "is_active", "updated_at"); err != nil {
		return nil, err
	}
	s.logger.Info("user status changed", zap.String("user_id", user.ID), zap.Bool("active", active))
	return user, nil
}
