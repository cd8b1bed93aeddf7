package services

import (
	"go.uber.org/zap"

	"wanderlog/internal/models"
)

// Lifecycle event types published after successful writes.
const (
	EventBlogCreated   = "blog.created"
	EventBlogUpdated   = "blog.updated"
	EventBlogPublished = "blog.published"
	EventBlogDeleted   = "blog.deleted"
	EventBlogBulk      = "blog.bulk"
)

// EventPublisher delivers lifecycle events to interested consumers.
// pkg/rabbitmq.Client satisfies it.
type EventPublisher interface {
	Publish(eventType string, payload map[string]interface{}) error
}

func blogPayload(blog *models.Blog) map[string]interface{} {
	return map[string]interface{}{
		"blogId":   blog.ID,
		"slug":     blog.Slug,
		"title":    blog.Title,
		"status":   blog.Status,
		"authorId": blog.AuthorID,
	}
}

// publishEvent is fire-and-forget: the write already succeeded, so a
// delivery failure is only logged.
func publishEvent(events EventPublisher, logger *zap.Logger, eventType string, payload map[string]interface{}) {
	if events == nil {
		return
	}
	if err := events.Publish(eventType, payload); err != nil {
		logger.Warn("failed to publish event", zap.String("event", eventType), zap.Error(err))
		return
	}
	logger.Debug("published event", zap.String("event", eventType))
}
