// internal/requests/implementation.go
package requests

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"stockroom/internal/directory"
	"stockroom/internal/inventory"
	"stockroom/internal/notifications"
	"stockroom/internal/postgres"
)

const requestColumns = `
	id, title, description, category_id, inventory_item_id, priority, status,
	user_id, quantity, approved_by, approved_at, rejected_by, rejected_at,
	rejection_reason, fulfillment_date, created_at, updated_at
`

// service implements the Service interface.
type service struct {
	db        *sqlx.DB
	directory directory.Service
	inventory inventory.Service
	breaker   *postgres.Breaker
	limiter   *rate.Limiter
	tracer    trace.Tracer
}

// NewService creates a new request lifecycle service instance.
func NewService(db *sqlx.DB, dir directory.Service, inv inventory.Service) Service {
	return &service{
		db:        db,
		directory: dir,
		inventory: inv,
		breaker:   postgres.NewBreaker("requests"),
		limiter:   rate.NewLimiter(rate.Every(time.Second), 20),
		tracer:    otel.Tracer("stockroom/requests"),
	}
}

// Create validates the input, persists a pending request and emits one
// notification to every reviewer other than the requester. The row and its
// notifications commit together.
func (s *service) Create(ctx context.Context, input CreateInput) (*ItemRequest, error) {
	ctx, span := s.tracer.Start(ctx, "requests.create")
	defer span.End()

	if !s.limiter.Allow() {
		return nil, ErrRateLimited
	}

	if err := validateCreate(&input); err != nil {
		return nil, err
	}

	if _, err := s.directory.GetUser(ctx, input.UserID); err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			return nil, fmt.Errorf("%w: user %s", ErrNotFound, input.UserID)
		}
		return nil, err
	}
	if _, err := s.inventory.GetCategory(ctx, input.CategoryID); err != nil {
		if errors.Is(err, inventory.ErrCategoryNotFound) {
			return nil, fmt.Errorf("%w: category %s", ErrNotFound, input.CategoryID)
		}
		return nil, err
	}
	if input.InventoryItemID != nil {
		if _, err := s.inventory.GetItem(ctx, *input.InventoryItemID); err != nil {
			if errors.Is(err, inventory.ErrNotFound) {
				return nil, fmt.Errorf("%w: inventory item %s", ErrNotFound, *input.InventoryItemID)
			}
			return nil, err
		}
	}

	reviewers, err := s.directory.ListReviewers(ctx)
	if err != nil {
		return nil, err
	}

	req := &ItemRequest{
		ID:              uuid.New(),
		Title:           input.Title,
		Description:     input.Description,
		CategoryID:      input.CategoryID,
		InventoryItemID: input.InventoryItemID,
		Priority:        input.Priority,
		Status:          StatusPending,
		UserID:          input.UserID,
		Quantity:        input.Quantity,
	}

	span.SetAttributes(attribute.String("request.id", req.ID.String()))

	err = s.breaker.Do(func() error {
		tx, err := s.db.BeginTxx(ctx, nil)
		if err != nil {
			return postgres.ClassifyError(err)
		}
		defer tx.Rollback()

		err = tx.QueryRowxContext(ctx, `
			INSERT INTO item_requests (id, title, description, category_id, inventory_item_id, priority, status, user_id, quantity)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING created_at, updated_at
		`, req.ID, req.Title, req.Description, req.CategoryID, req.InventoryItemID,
			req.Priority, req.Status, req.UserID, req.Quantity,
		).Scan(&req.CreatedAt, &req.UpdatedAt)
		if err != nil {
			return postgres.ClassifyError(fmt.Errorf("insert request: %w", err))
		}

		if err := insertNotifications(ctx, tx, notificationsForCreate(req, reviewers)); err != nil {
			return err
		}

		if err := tx.Commit(); err != nil {
			return postgres.ClassifyError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return req, nil
}

func validateCreate(input *CreateInput) error {
	if strings.TrimSpace(input.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if input.CategoryID == uuid.Nil {
		return fmt.Errorf("%w: category_id is required", ErrValidation)
	}
	if input.UserID == uuid.Nil {
		return fmt.Errorf("%w: user_id is required", ErrValidation)
	}
	if input.Quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive", ErrValidation)
	}
	if input.Priority == "" {
		input.Priority = PriorityMedium
	}
	switch input.Priority {
	case PriorityLow, PriorityMedium, PriorityHigh:
	default:
		return fmt.Errorf("%w: unknown priority %q", ErrValidation, input.Priority)
	}
	return nil
}

// Get retrieves a request by its ID.
func (s *service) Get(ctx context.Context, id uuid.UUID) (*ItemRequest, error) {
	req := &ItemRequest{}
	err := s.db.GetContext(ctx, req, `
		SELECT `+requestColumns+`
		FROM item_requests
		WHERE id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, postgres.ClassifyError(fmt.Errorf("get request: %w", err))
	}
	return req, nil
}

// Transition applies a status change with an optimistic check on the stored
// status. The status write, any inventory adjustment and the requester's
// notification commit as one transaction; a concurrent transition that wins
// the race leaves this call with ErrConflictingUpdate.
func (s *service) Transition(ctx context.Context, id uuid.UUID, input TransitionInput) (*ItemRequest, error) {
	ctx, span := s.tracer.Start(ctx, "requests.transition",
		trace.WithAttributes(
			attribute.String("request.id", id.String()),
			attribute.String("transition.target", string(input.Target)),
		),
	)
	defer span.End()

	if input.Actor == uuid.Nil {
		return nil, fmt.Errorf("%w: actor is required", ErrValidation)
	}

	if input.Target == StatusApproved || input.Target == StatusRejected {
		actor, err := s.directory.GetUser(ctx, input.Actor)
		if err != nil {
			if errors.Is(err, directory.ErrNotFound) {
				return nil, fmt.Errorf("%w: actor %s", ErrNotFound, input.Actor)
			}
			return nil, err
		}
		if !actor.IsReviewer() {
			return nil, ErrNotReviewer
		}
	}

	var updated *ItemRequest
	err := s.breaker.Do(func() error {
		var txErr error
		updated, txErr = s.transitionTx(ctx, id, input)
		return txErr
	})
	if err != nil {
		span.SetAttributes(attribute.Bool("transition.conflict", errors.Is(err, ErrConflictingUpdate)))
		return nil, err
	}

	span.SetAttributes(attribute.String("request.status", string(updated.Status)))
	return updated, nil
}

func (s *service) transitionTx(ctx context.Context, id uuid.UUID, input TransitionInput) (*ItemRequest, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, postgres.ClassifyError(err)
	}
	defer tx.Rollback()

	req := &ItemRequest{}
	err = tx.GetContext(ctx, req, `
		SELECT `+requestColumns+`
		FROM item_requests
		WHERE id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, postgres.ClassifyError(fmt.Errorf("get request: %w", err))
	}

	expected := req.Status
	if err := validateTransition(expected, input); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	applyTransition(req, input, now)

	// Optimistic check: the update only lands if the stored status still
	// matches the one read above.
	res, err := tx.ExecContext(ctx, `
		UPDATE item_requests
		SET status = $1,
		    approved_by = $2, approved_at = $3,
		    rejected_by = $4, rejected_at = $5, rejection_reason = $6,
		    fulfillment_date = $7,
		    updated_at = $8
		WHERE id = $9 AND status = $10
	`, req.Status, req.ApprovedBy, req.ApprovedAt, req.RejectedBy, req.RejectedAt,
		req.RejectionReason, req.FulfillmentDate, req.UpdatedAt, req.ID, expected)
	if err != nil {
		return nil, postgres.ClassifyError(fmt.Errorf("update request status: %w", err))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, postgres.ClassifyError(err)
	}
	if affected == 0 {
		var stored Status
		err := tx.GetContext(ctx, &stored, `SELECT status FROM item_requests WHERE id = $1`, id)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		if err != nil {
			return nil, postgres.ClassifyError(err)
		}
		return nil, fmt.Errorf("%w: expected %s, stored %s", ErrConflictingUpdate, expected, stored)
	}

	if input.Target == StatusFulfilled && req.InventoryItemID != nil {
		if err := adjustStock(ctx, tx, *req.InventoryItemID, req.Quantity); err != nil {
			return nil, err
		}
	}

	if n := notificationForTransition(req, input); n != nil {
		if err := insertNotifications(ctx, tx, []*notifications.Notification{n}); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, postgres.ClassifyError(err)
	}

	return req, nil
}

// adjustStock moves quantity from available to reserved, guarded so the
// decrement never lands when stock is short.
func adjustStock(ctx context.Context, tx *sqlx.Tx, itemID uuid.UUID, quantity int) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE inventory_items
		SET quantity_available = quantity_available - $1,
		    quantity_reserved = quantity_reserved + $1,
		    updated_at = NOW()
		WHERE id = $2 AND quantity_available >= $1
	`, quantity, itemID)
	if err != nil {
		return postgres.ClassifyError(fmt.Errorf("adjust stock: %w", err))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return postgres.ClassifyError(err)
	}
	if affected == 0 {
		var exists bool
		err := tx.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM inventory_items WHERE id = $1)`, itemID)
		if err != nil {
			return postgres.ClassifyError(err)
		}
		if !exists {
			return fmt.Errorf("%w: inventory item %s", ErrNotFound, itemID)
		}
		return fmt.Errorf("%w: need %d of item %s", ErrInsufficientStock, quantity, itemID)
	}
	return nil
}

// List returns requests matching the filter, newest first.
func (s *service) List(ctx context.Context, filter Filter) ([]*ItemRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM item_requests`

	var clauses []string
	var args []interface{}
	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		clauses = append(clauses, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if filter.Status != nil {
		if !ValidStatus(*filter.Status) {
			return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, *filter.Status)
		}
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status = $%d", len(args)))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY created_at DESC"

	var items []*ItemRequest
	if err := s.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, postgres.ClassifyError(fmt.Errorf("list requests: %w", err))
	}
	return items, nil
}

// AddComment appends a comment and notifies the request owner when the
// commenter is someone else.
func (s *service) AddComment(ctx context.Context, requestID, userID uuid.UUID, body string) (*Comment, error) {
	if strings.TrimSpace(body) == "" {
		return nil, fmt.Errorf("%w: comment body is required", ErrValidation)
	}

	comment := &Comment{
		ID:        uuid.New(),
		RequestID: requestID,
		UserID:    userID,
		Body:      body,
	}

	err := s.breaker.Do(func() error {
		tx, err := s.db.BeginTxx(ctx, nil)
		if err != nil {
			return postgres.ClassifyError(err)
		}
		defer tx.Rollback()

		req := &ItemRequest{}
		err = tx.GetContext(ctx, req, `
			SELECT `+requestColumns+`
			FROM item_requests
			WHERE id = $1
		`, requestID)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return postgres.ClassifyError(fmt.Errorf("get request: %w", err))
		}

		err = tx.QueryRowxContext(ctx, `
			INSERT INTO request_comments (id, request_id, user_id, body)
			VALUES ($1, $2, $3, $4)
			RETURNING created_at
		`, comment.ID, comment.RequestID, comment.UserID, comment.Body).Scan(&comment.CreatedAt)
		if err != nil {
			return postgres.ClassifyError(fmt.Errorf("insert comment: %w", err))
		}

		if n := notificationForComment(req, comment); n != nil {
			if err := insertNotifications(ctx, tx, []*notifications.Notification{n}); err != nil {
				return err
			}
		}

		if err := tx.Commit(); err != nil {
			return postgres.ClassifyError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return comment, nil
}

func insertNotifications(ctx context.Context, tx *sqlx.Tx, items []*notifications.Notification) error {
	for _, n := range items {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO notifications (id, user_id, type, message, related_item_id)
			VALUES ($1, $2, $3, $4, $5)
		`, n.ID, n.UserID, n.Type, n.Message, n.RelatedItemID)
		if err != nil {
			return postgres.ClassifyError(fmt.Errorf("insert notification: %w", err))
		}
	}
	return nil
}
