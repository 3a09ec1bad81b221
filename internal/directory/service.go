// internal/directory/service.go
package directory

import (
	"context"

	"github.com/google/uuid"
)

// Service defines the interface for the user directory.
type Service interface {
	Register(ctx context.Context, email, name, password, role string) (*User, error)
	Authenticate(ctx context.Context, email, password string) (*User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*User, error)
	ListReviewers(ctx context.Context) ([]*User, error)
}
