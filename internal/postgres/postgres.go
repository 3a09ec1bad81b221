// internal/postgres/postgres.go
package postgres

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"time"

	_ "embed"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/sony/gobreaker"
)

// ErrStoreUnavailable signals a connectivity failure with the database.
// It is the only error kind callers may retry.
var ErrStoreUnavailable = errors.New("store unavailable")

//go:embed schema.sql
var schemaSQL string

// Open connects to PostgreSQL and configures the connection pool.
func Open(ctx context.Context, databaseURL string) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	return db, nil
}

// EnsureSchema applies the embedded schema. All statements are idempotent.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// ClassifyError maps driver-level connectivity failures to
// ErrStoreUnavailable so callers can distinguish retryable faults from
// domain errors. Other errors pass through unchanged.
func ClassifyError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, driver.ErrBadConn) {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Class() == "08" {
		// Class 08: connection exceptions.
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return err
}

// IsUniqueViolation reports whether err is a PostgreSQL unique constraint
// violation (code 23505), which surfaces on insert races.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// Breaker guards store access with a circuit breaker. Only connectivity
// failures count against the breaker; domain errors pass through without
// affecting its state.
type Breaker struct {
	cb *gobreaker.CircuitBreaker
}

// NewBreaker creates a breaker that opens after five consecutive
// connectivity failures and probes again after ten seconds.
func NewBreaker(name string) *Breaker {
	return &Breaker{
		cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        name,
			MaxRequests: 1,
			Timeout:     10 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
			IsSuccessful: func(err error) bool {
				return !errors.Is(err, ErrStoreUnavailable)
			},
		}),
	}
}

// Do runs fn through the breaker. An open breaker short-circuits to
// ErrStoreUnavailable without touching the store.
func (b *Breaker) Do(fn func() error) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, fn()
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: circuit open", ErrStoreUnavailable)
	}
	return err
}
