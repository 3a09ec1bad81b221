// internal/notifications/service.go
package notifications

import (
	"context"

	"github.com/google/uuid"
)

// Service defines the interface for reading and acknowledging notifications.
// Rows are created only by the request lifecycle emitter.
type Service interface {
	ListForUser(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]*Notification, error)
	MarkRead(ctx context.Context, id, userID uuid.UUID) (*Notification, error)
}
