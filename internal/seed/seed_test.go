package seed_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"wanderlog/internal/database"
	"wanderlog/internal/models"
	"wanderlog/internal/repositories"
	"wanderlog/internal/seed"
	"wanderlog/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const fixtures = `
users:
  - username: ines
    email: ines@example.com
    password: secret123
    role: author
  - username: root
    email: root@example.com
    password: secret123
    role: admin
blogs:
  - author: ines
    title: Three Days in Lisbon
    content: Trams, tiles and pastel de nata.
    excerpt: A short city break.
    category: city
    tags: [Portugal, Food, portugal]
    status: published
  - author: ines
    title: Packing for the Alps
    content: Layers, always layers.
    excerpt: What to bring.
    category: mountains
`

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := seed.Parse(strings.NewReader("users:\n  - username: a\n    nickname: b\n"))
	assert.Error(t, err)

	f, err := seed.Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, f.Users)
}

func TestApplyIsIdempotent(t *testing.T) {
	logger := zap.NewNop()
	db, err := database.Open("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	require.NoError(t, database.Migrate(db))

	userRepo := repositories.NewGORMUserRepository(db)
	auth := services.NewAuthService(userRepo, "secret", time.Hour, logger)
	blogs := services.NewBlogService(repositories.NewGORMBlogRepository(db), userRepo, nil, logger)
	seeder := seed.NewSeeder(auth, userRepo, blogs, logger)

	f, err := seed.Parse(strings.NewReader(fixtures))
	require.NoError(t, err)

	ctx := context.Background()
	res, err := seeder.Apply(ctx, f)
	require.NoError(t, err)
	assert.Equal(t, seed.Result{UsersCreated: 2, BlogsCreated: 2}, res)

	ines, err := userRepo.GetByUsername(ctx, "ines")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAuthor, ines.Role)
	assert.Equal(t, int64(2), ines.Stats.Posts)

	lisbon, err := blogs.Get(ctx, "three-days-in-lisbon")
	require.NoError(t, err)
	assert.Equal(t, []string{"portugal", "food"}, []string(lisbon.Tags))
	assert.NotNil(t, lisbon.PublishedAt)

	res, err = seeder.Apply(ctx, f)
	require.NoError(t, err)
	assert.Equal(t, seed.Result{UsersSkipped: 2, BlogsSkipped: 2}, res)
}
