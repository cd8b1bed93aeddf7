package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRole_AtLeast(t *testing.T) {
	assert.True(t, RoleAdmin.AtLeast(RoleEditor))
	assert.True(t, RoleEditor.AtLeast(RoleEditor))
	assert.True(t, RoleAuthor.AtLeast(RoleSubscriber))
	assert.False(t, RoleAuthor.AtLeast(RoleEditor))
	assert.False(t, RoleSubscriber.AtLeast(RoleAuthor))
	assert.False(t, Role("root").AtLeast(RoleSubscriber))
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole(" Editor ")
	assert.NoError(t, err)
	assert.Equal(t, RoleEditor, r)

	_, err = ParseRole("superuser")
	assert.Error(t, err)
}

func TestParseCategoryAndStatus(t *testing.T) {
	c, err := ParseCategory("Beach")
	assert.NoError(t, err)
	assert.Equal(t, CategoryBeach, c)
	assert.Len(t, Categories(), 8)

	_, err = ParseCategory("space")
	assert.Error(t, err)

	s, err := ParseStatus("scheduled")
	assert.NoError(t, err)
	assert.Equal(t, StatusScheduled, s)

	_, err = ParseStatus("deleted")
	assert.Error(t, err)
}

func TestBlog_OwnedBy(t *testing.T) {
	b := &Blog{AuthorID: "user-1"}
	assert.True(t, b.OwnedBy("user-1"))
	assert.False(t, b.OwnedBy("user-2"))
	assert.False(t, (&Blog{}).OwnedBy(""))
}
