// internal/directory/domain.go
package directory

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Roles a user can hold. Reviewers (admins) may approve and reject requests.
const (
	RoleMember = "member"
	RoleAdmin  = "admin"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrValidation         = errors.New("invalid input")
	ErrRateLimited        = errors.New("rate limit exceeded")
)

// User represents an account known to the system.
type User struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	Name      string    `json:"name" db:"name"`
	Role      string    `json:"role" db:"role"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// IsReviewer reports whether the user may approve or reject requests.
func (u *User) IsReviewer() bool {
	return u.Role == RoleAdmin
}

// Credential represents a user's login credentials.
type Credential struct {
	UserID       uuid.UUID `json:"-" db:"user_id"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Salt         string    `json:"-" db:"salt"`
}
