// Package seed loads demo accounts and blogs from a YAML fixture file.
// Every record goes through the services so the usual invariants hold.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"wanderlog/internal/errs"
	"wanderlog/internal/models"
	"wanderlog/internal/repositories"
	"wanderlog/internal/services"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// UserFixture is one account to create.
type UserFixture struct {
	Username  string `yaml:"username"`
	Email     string `yaml:"email"`
	Password  string `yaml:"password"`
	Role      string `yaml:"role"`
	FirstName string `yaml:"firstName"`
	LastName  string `yaml:"lastName"`
}

// BlogFixture is one blog to create on behalf of Author.
type BlogFixture struct {
	Author   string           `yaml:"author"`
	Title    string           `yaml:"title"`
	Content  string           `yaml:"content"`
	Excerpt  string           `yaml:"excerpt"`
	Category string           `yaml:"category"`
	Tags     []string         `yaml:"tags"`
	Status   string           `yaml:"status"`
	Featured bool             `yaml:"featured"`
	Location *models.Location `yaml:"location"`
}

// Fixtures is the document layout of a fixture file.
type Fixtures struct {
	Users []UserFixture `yaml:"users"`
	Blogs []BlogFixture `yaml:"blogs"`
}

// Result counts what a run created and skipped.
type Result struct {
	UsersCreated int
	UsersSkipped int
	BlogsCreated int
	BlogsSkipped int
}

// Parse decodes fixtures from r. Unknown keys are rejected.
func Parse(r io.Reader) (*Fixtures, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var f Fixtures
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse fixtures: %w", err)
	}
	return &f, nil
}

// LoadFile parses the fixture file at path.
func LoadFile(path string) (*Fixtures, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open fixtures: %w", err)
	}
	defer file.Close()
	return Parse(file)
}

// Seeder applies fixtures through the services.
type Seeder struct {
	auth   *services.AuthService
	users  repositories.UserRepository
	blogs  *services.BlogService
	logger *zap.Logger
}

// NewSeeder creates a new Seeder.
func NewSeeder(auth *services.AuthService, users repositories.UserRepository, blogs *services.BlogService, logger *zap.Logger) *Seeder {
	return &Seeder{auth: auth, users: users, blogs: blogs, logger: logger}
}

// Apply creates every fixture. Records that already exist are skipped, so
// running the same file twice is harmless.
func (s *Seeder) Apply(ctx context.Context, f *Fixtures) (Result, error) {
	var res Result
	for _, uf := range f.Users {
		created, err := s.applyUser(ctx, uf)
		if err != nil {
			return res, fmt.Errorf("user %s: %w", uf.Username, err)
		}
		if created {
			res.UsersCreated++
		} else {
			res.UsersSkipped++
		}
	}

	for _, bf := range f.Blogs {
		author, err := s.users.GetByUsername(ctx, bf.Author)
		if err != nil {
			return res, fmt.Errorf("blog %q: author %s: %w", bf.Title, bf.Author, err)
		}
		_, err = s.blogs.Create(ctx, author, services.CreateBlogRequest{
			Title:    bf.Title,
			Content:  bf.Content,
			Excerpt:  bf.Excerpt,
			Category: bf.Category,
			Tags:     bf.Tags,
			Status:   bf.Status,
			Featured: bf.Featured,
			Location: bf.Location,
		})
		switch {
		case errors.Is(err, errs.ErrDuplicateSlug):
			res.BlogsSkipped++
		case err != nil:
			return res, fmt.Errorf("blog %q: %w", bf.Title, err)
		default:
			res.BlogsCreated++
		}
	}

	s.logger.Info("fixtures applied",
		zap.Int("users_created", res.UsersCreated),
		zap.Int("users_skipped", res.UsersSkipped),
		zap.Int("blogs_created", res.BlogsCreated),
		zap.Int("blogs_skipped", res.BlogsSkipped))
	return res, nil
}

func (s *Seeder) applyUser(ctx context.Context, uf UserFixture) (bool, error) {
	role := models.RoleSubscriber
	if uf.Role != "" {
		r, err := models.ParseRole(uf.Role)
		if err != nil {
			return false, err
		}
		role = r
	}

	user, err := s.auth.RegisterUser(ctx, services.RegisterRequest{
		Username:  uf.Username,
		Email:     uf.Email,
		Password:  uf.Password,
		FirstName: uf.FirstName,
		LastName:  uf.LastName,
	})
	if errors.Is(err, errs.ErrConflict) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if role != user.Role {
		user.Role = role
		if err := s.users.Update(ctx, user, "role"); err != nil {
			return true, err
		}
	}
	return true, nil
}
