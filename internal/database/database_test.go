package database

import (
	"fmt"
	"testing"

	"wanderlog/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestOpenAndMigrateSQLite(t *testing.T) {
	db, err := Open("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })

	require.NoError(t, Migrate(db))
	assert.True(t, db.Migrator().HasTable(&models.User{}))
	assert.True(t, db.Migrator().HasTable(&models.Blog{}))
	assert.NoError(t, Ping(db))
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open("oracle", "dsn", zap.NewNop())
	assert.ErrorContains(t, err, "unsupported")
}
