package models

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
)

// Category is the closed set of blog categories.
type Category string

const (
	CategoryAdventure Category = "adventure"
	CategoryCulture   Category = "culture"
	CategoryFood      Category = "food"
	CategoryNature    Category = "nature"
	CategoryCity      Category = "city"
	CategoryBeach     Category = "beach"
	CategoryMountains Category = "mountains"
	CategoryBudget    Category = "budget"
)

// Categories lists every valid category.
func Categories() []Category {
	return []Category{
		CategoryAdventure, CategoryCulture, CategoryFood, CategoryNature,
		CategoryCity, CategoryBeach, CategoryMountains, CategoryBudget,
	}
}

// ParseCategory returns the Category named by s.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Categories() {
		if c == known {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// Status is the publication state of a blog.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusScheduled Status = "scheduled"
	StatusArchived  Status = "archived"
)

// Statuses lists every valid status.
func Statuses() []Status {
	return []Status{StatusDraft, StatusPublished, StatusScheduled, StatusArchived}
}

// ParseStatus returns the Status named by s.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Statuses() {
		if st == known {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown status %q", s)
}

// Location is the optional place a post is about.
type Location struct {
	Name      string  `json:"name" validate:"required,max=100"`
	Country   string  `json:"country,omitempty" validate:"max=100"`
	Latitude  float64 `json:"latitude,omitempty" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"longitude,omitempty" validate:"gte=-180,lte=180"`
}

// Image is a picture attached to a post.
type Image struct {
	URL     string `json:"url" validate:"required,url"`
	Alt     string `json:"alt,omitempty" validate:"max=200"`
	Caption string `json:"caption,omitempty" validate:"max=300"`
}

// SEO is the search-engine metadata of a post.
type SEO struct {
	MetaTitle       string   `json:"metaTitle,omitempty" validate:"max=60"`
	MetaDescription string   `json:"metaDescription,omitempty" validate:"max=160"`
	Keywords        []string `json:"keywords,omitempty" validate:"max=20,dive,max=50"`
}

// BlogStats holds denormalized engagement counters.
type BlogStats struct {
	Views    int64 `json:"views" gorm:"not null;default:0"`
	Likes    int64 `json:"likes" gorm:"not null;default:0"`
	Shares   int64 `json:"shares" gorm:"not null;default:0"`
	Comments int64 `json:"comments" gorm:"not null;default:0"`
}

// Blog is a post of the travel blog.
type Blog struct {
	ID            string                        `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Title         string                        `json:"title" gorm:"type:varchar(200);not null"`
	Slug          string                        `json:"slug" gorm:"uniqueIndex;type:varchar(50);not null"`
	Content       string                        `json:"content" gorm:"type:text;not null"`
	Excerpt       string                        `json:"excerpt" gorm:"type:varchar(300);not null"`
	Category      Category                      `json:"category" gorm:"type:varchar(20);index;not null"`
	Tags          datatypes.JSONSlice[string]   `json:"tags"`
	Location      *datatypes.JSONType[Location] `json:"location,omitempty"`
	FeaturedImage *datatypes.JSONType[Image]    `json:"featuredImage,omitempty"`
	Images        datatypes.JSONSlice[Image]    `json:"images"`
	SEO           datatypes.JSONType[SEO]       `json:"seo" gorm:"column:seo"`
	Status        Status                        `json:"status" gorm:"type:varchar(20);index;not null"`
	PublishedAt   *time.Time                    `json:"publishedAt,omitempty"`
	ScheduledAt   *time.Time                    `json:"scheduledAt,omitempty"`
	Stats         BlogStats                     `json:"stats" gorm:"embedded;embeddedPrefix:stats_"`
	ReadingTime   int                           `json:"readingTime" gorm:"not null;default:0"`
	Featured      bool                          `json:"featured" gorm:"index;not null"`
	AuthorID      string                        `json:"authorId" gorm:"type:varchar(36);index;not null"`
	Author        *User                         `json:"author,omitempty" gorm:"foreignKey:AuthorID"`
	CreatedAt     time.Time                     `json:"createdAt" gorm:"index"`
	UpdatedAt     time.Time                     `json:"updatedAt" gorm:"index"`
}

// OwnedBy reports whether the blog belongs to the user with the given ID.
func (b *Blog) OwnedBy(userID string) bool {
	return b.AuthorID != "" && b.AuthorID == userID
}
