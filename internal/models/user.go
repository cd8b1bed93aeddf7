package models

import (
	"fmt"
	"strings"
	"time"
)

// Role is a privilege level. Roles are ordered: subscriber < author < editor < admin.
type Role string

const (
	RoleSubscriber Role = "subscriber"
	RoleAuthor     Role = "author"
	RoleEditor     Role = "editor"
	RoleAdmin      Role = "admin"
)

var roleRank = map[Role]int{
	RoleSubscriber: 1,
	RoleAuthor:     2,
	RoleEditor:     3,
	RoleAdmin:      4,
}

// Roles lists every role from least to most privileged.
func Roles() []Role {
	return []Role{RoleSubscriber, RoleAuthor, RoleEditor, RoleAdmin}
}

// ParseRole returns the Role named by s (case-insensitive).
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := roleRank[r]; !ok {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

// AtLeast reports whether r carries at least the privileges of required.
// Unknown roles never satisfy any minimum.
func (r Role) AtLeast(required Role) bool {
	rank, ok := roleRank[r]
	if !ok {
		return false
	}
	return rank >= roleRank[required]
}

// UserStats holds denormalized activity counters.
type UserStats struct {
	Posts int64 `json:"posts" gorm:"not null;default:0"`
	Views int64 `json:"views" gorm:"not null;default:0"`
	Likes int64 `json:"likes" gorm:"not null;default:0"`
}

// User represents an account of the blog.
type User struct {
	ID        string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Username  string     `json:"username" gorm:"uniqueIndex;type:varchar(30);not null"`
	Email     string     `json:"email" gorm:"uniqueIndex;type:varchar(255);not null"`
	Password  string     `json:"-" gorm:"type:varchar(255);not null"` // bcrypt hash
	Role      Role       `json:"role" gorm:"type:varchar(20);index;not null"`
	FirstName string     `json:"firstName" gorm:"type:varchar(50)"`
	LastName  string     `json:"lastName" gorm:"type:varchar(50)"`
	Avatar    string     `json:"avatar" gorm:"type:varchar(500)"`
	Bio       string     `json:"bio" gorm:"type:varchar(500)"`
	Stats     UserStats  `json:"stats" gorm:"embedded;embeddedPrefix:stats_"`
	IsActive  bool       `json:"isActive" gorm:"not null"`
	LastLogin *time.Time `json:"lastLogin,omitempty" gorm:"index"`
	CreatedAt time.Time  `json:"createdAt" gorm:"index"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// PublicColumns are the user columns safe to join into content responses.
var PublicColumns = []string{"id", "username", "first_name", "last_name", "avatar", "bio"}
