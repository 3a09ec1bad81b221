// internal/requests/service.go
package requests

import (
	"context"

	"github.com/google/uuid"
)

// Service defines the interface for the request lifecycle.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*ItemRequest, error)
	Get(ctx context.Context, id uuid.UUID) (*ItemRequest, error)
	Transition(ctx context.Context, id uuid.UUID, input TransitionInput) (*ItemRequest, error)
	List(ctx context.Context, filter Filter) ([]*ItemRequest, error)
	AddComment(ctx context.Context, requestID, userID uuid.UUID, body string) (*Comment, error)
}
