// internal/notifications/implementation.go
package notifications

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"stockroom/internal/postgres"
)

// service implements the Service interface.
type service struct {
	db *sqlx.DB
}

// NewService creates a new notifications service instance.
func NewService(db *sqlx.DB) Service {
	return &service{db: db}
}

// ListForUser returns a recipient's notifications, newest first.
func (s *service) ListForUser(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]*Notification, error) {
	query := `
		SELECT id, user_id, type, message, is_read, related_item_id, created_at
		FROM notifications
		WHERE user_id = $1
	`
	if unreadOnly {
		query += " AND is_read = FALSE"
	}
	query += " ORDER BY created_at DESC"

	var items []*Notification
	if err := s.db.SelectContext(ctx, &items, query, userID); err != nil {
		return nil, postgres.ClassifyError(fmt.Errorf("list notifications: %w", err))
	}
	return items, nil
}

// MarkRead marks a notification as read. Only the recipient may do so.
func (s *service) MarkRead(ctx context.Context, id, userID uuid.UUID) (*Notification, error) {
	n := &Notification{}
	err := s.db.GetContext(ctx, n, `
		SELECT id, user_id, type, message, is_read, related_item_id, created_at
		FROM notifications
		WHERE id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, postgres.ClassifyError(fmt.Errorf("get notification: %w", err))
	}

	if n.UserID != userID {
		return nil, ErrForbidden
	}
	if n.IsRead {
		return n, nil
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE notifications SET is_read = TRUE WHERE id = $1
	`, id)
	if err != nil {
		return nil, postgres.ClassifyError(fmt.Errorf("mark notification read: %w", err))
	}

	n.IsRead = true
	return n, nil
}
