// internal/requests/domain.go
package requests

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of an item request.
type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusFulfilled Status = "fulfilled"
)

// Priority of an item request.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

var (
	ErrValidation        = errors.New("invalid input")
	ErrNotFound          = errors.New("request not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrConflictingUpdate = errors.New("conflicting update: stored status changed")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrNotReviewer       = errors.New("actor lacks reviewer privilege")
	ErrRateLimited       = errors.New("rate limit exceeded")
)

// ItemRequest is a user's request for a supply item. Its status moves
// pending -> approved -> fulfilled, or pending -> rejected.
type ItemRequest struct {
	ID              uuid.UUID  `json:"id" db:"id"`
	Title           string     `json:"title" db:"title"`
	Description     string     `json:"description" db:"description"`
	CategoryID      uuid.UUID  `json:"category_id" db:"category_id"`
	InventoryItemID *uuid.UUID `json:"inventory_item_id,omitempty" db:"inventory_item_id"`
	Priority        Priority   `json:"priority" db:"priority"`
	Status          Status     `json:"status" db:"status"`
	UserID          uuid.UUID  `json:"user_id" db:"user_id"`
	Quantity        int        `json:"quantity" db:"quantity"`
	ApprovedBy      *uuid.UUID `json:"approved_by,omitempty" db:"approved_by"`
	ApprovedAt      *time.Time `json:"approved_at,omitempty" db:"approved_at"`
	RejectedBy      *uuid.UUID `json:"rejected_by,omitempty" db:"rejected_by"`
	RejectedAt      *time.Time `json:"rejected_at,omitempty" db:"rejected_at"`
	RejectionReason *string    `json:"rejection_reason,omitempty" db:"rejection_reason"`
	FulfillmentDate *time.Time `json:"fulfillment_date,omitempty" db:"fulfillment_date"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
}

// Comment is a remark left on a request by any user.
type Comment struct {
	ID        uuid.UUID `json:"id" db:"id"`
	RequestID uuid.UUID `json:"request_id" db:"request_id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Body      string    `json:"body" db:"body"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// CreateInput carries the fields accepted when submitting a request.
type CreateInput struct {
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	CategoryID      uuid.UUID  `json:"category_id"`
	InventoryItemID *uuid.UUID `json:"inventory_item_id,omitempty"`
	Priority        Priority   `json:"priority"`
	UserID          uuid.UUID  `json:"-"`
	Quantity        int        `json:"quantity"`
}

// TransitionInput carries a status transition attempt.
type TransitionInput struct {
	Target Status
	Actor  uuid.UUID
	// Reason is required when rejecting.
	Reason string
}

// Filter narrows List results.
type Filter struct {
	UserID *uuid.UUID
	Status *Status
}
