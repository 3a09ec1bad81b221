// internal/notifications/domain.go
package notifications

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound  = errors.New("notification not found")
	ErrForbidden = errors.New("notification belongs to another user")
)

// Type enumerates the request lifecycle events that produce notifications.
type Type string

const (
	TypeRequestSubmitted Type = "request_submitted"
	TypeRequestApproved  Type = "request_approved"
	TypeRequestRejected  Type = "request_rejected"
	TypeCommentAdded     Type = "comment_added"
)

// Notification is delivered to a single recipient for a single lifecycle
// event. Only the recipient may mark it read; it is never deleted.
type Notification struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	UserID        uuid.UUID  `json:"user_id" db:"user_id"`
	Type          Type       `json:"type" db:"type"`
	Message       string     `json:"message" db:"message"`
	IsRead        bool       `json:"is_read" db:"is_read"`
	RelatedItemID *uuid.UUID `json:"related_item_id,omitempty" db:"related_item_id"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
}
