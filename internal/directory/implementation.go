// internal/directory/implementation.go
package directory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/time/rate"

	"stockroom/internal/postgres"
)

// service implements the Service interface.
type service struct {
	db          *sqlx.DB
	rateLimiter *rate.Limiter
}

// NewService creates a new directory service instance.
func NewService(db *sqlx.DB) Service {
	return &service{
		db:          db,
		rateLimiter: rate.NewLimiter(rate.Every(1*time.Minute), 5), // 5 requests per minute
	}
}

// Register creates a new user with hashed credentials.
func (s *service) Register(ctx context.Context, email, name, password, role string) (*User, error) {
	if !s.rateLimiter.Allow() {
		return nil, ErrRateLimited
	}

	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: email is required", ErrValidation)
	}
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", ErrValidation)
	}
	if role == "" {
		role = RoleMember
	}
	if role != RoleMember && role != RoleAdmin {
		return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, role)
	}

	passwordHash, salt, err := hashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &User{
		ID:    uuid.New(),
		Email: email,
		Name:  name,
		Role:  role,
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, postgres.ClassifyError(err)
	}
	defer tx.Rollback()

	err = tx.QueryRowxContext(ctx, `
		INSERT INTO users (id, email, name, role)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
	`, user.ID, user.Email, user.Name, user.Role).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, postgres.ClassifyError(fmt.Errorf("insert user: %w", err))
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO credentials (user_id, password_hash, salt)
		VALUES ($1, $2, $3)
	`, user.ID, passwordHash, salt)
	if err != nil {
		return nil, postgres.ClassifyError(fmt.Errorf("insert credentials: %w", err))
	}

	if err := tx.Commit(); err != nil {
		return nil, postgres.ClassifyError(err)
	}

	return user, nil
}

// Authenticate verifies a user's credentials and returns the user if successful.
func (s *service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	if !s.rateLimiter.Allow() {
		return nil, ErrRateLimited
	}

	email = strings.TrimSpace(strings.ToLower(email))

	user := &User{}
	err := s.db.GetContext(ctx, user, `
		SELECT id, email, name, role, created_at, updated_at
		FROM users
		WHERE email = $1
	`, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, postgres.ClassifyError(fmt.Errorf("get user by email: %w", err))
	}

	credential := &Credential{}
	err = s.db.GetContext(ctx, credential, `
		SELECT user_id, password_hash, salt
		FROM credentials
		WHERE user_id = $1
	`, user.ID)
	if err != nil {
		return nil, postgres.ClassifyError(fmt.Errorf("get credentials: %w", err))
	}

	ok, err := verifyPassword(password, credential.Salt, credential.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// GetUser retrieves a user by their ID.
func (s *service) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	user := &User{}
	err := s.db.GetContext(ctx, user, `
		SELECT id, email, name, role, created_at, updated_at
		FROM users
		WHERE id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, postgres.ClassifyError(fmt.Errorf("get user: %w", err))
	}
	return user, nil
}

// ListReviewers returns every user with the reviewer (admin) role.
func (s *service) ListReviewers(ctx context.Context) ([]*User, error) {
	var users []*User
	err := s.db.SelectContext(ctx, &users, `
		SELECT id, email, name, role, created_at, updated_at
		FROM users
		WHERE role = $1
		ORDER BY created_at
	`, RoleAdmin)
	if err != nil {
		return nil, postgres.ClassifyError(fmt.Errorf("list reviewers: %w", err))
	}
	return users, nil
}
