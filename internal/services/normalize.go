package services

import (
	"strings"
	"time"

	"wanderlog/internal/models"
)

// WordsPerMinute is the reading rate behind Blog.ReadingTime.
const WordsPerMinute = 200

// ReadingTime returns the minutes needed to read content, rounded up.
func ReadingTime(content string) int {
	words := len(strings.Fields(content))
	return (words + WordsPerMinute - 1) / WordsPerMinute
}

// NormalizeTags lower-cases and trims tags, dropping empties and duplicates
// while keeping first-seen order.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// prepareBlog is the pre-persist step run before every blog write. It
// returns the extra columns it touched so partial updates can include them.
func prepareBlog(blog *models.Blog, now time.Time, contentChanged bool) []string {
	fields := []string{"updated_at"}
	if contentChanged {
		blog.ReadingTime = ReadingTime(blog.Content)
		fields = append(fields, "reading_time")
	}
	blog.Tags = NormalizeTags(blog.Tags)
	if blog.Images == nil {
		blog.Images = []models.Image{}
	}
	if blog.Status == models.StatusPublished && blog.PublishedAt == nil {
		at := now
		blog.PublishedAt = &at
		fields = append(fields, "published_at")
	}
	blog.UpdatedAt = now
	return fields
}
