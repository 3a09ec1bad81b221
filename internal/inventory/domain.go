// internal/inventory/domain.go
package inventory

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound         = errors.New("inventory record not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrValidation       = errors.New("invalid input")
	ErrDuplicateName    = errors.New("name already in use")
)

// Category groups inventory items and requests.
type Category struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// Item represents a stocked item. Available and reserved counters are
// mutated only by the request fulfillment transaction.
type Item struct {
	ID                uuid.UUID `json:"id" db:"id"`
	CategoryID        uuid.UUID `json:"category_id" db:"category_id"`
	Name              string    `json:"name" db:"name"`
	QuantityAvailable int       `json:"quantity_available" db:"quantity_available"`
	QuantityReserved  int       `json:"quantity_reserved" db:"quantity_reserved"`
	UnitPrice         float64   `json:"unit_price" db:"unit_price"`
	Location          string    `json:"location" db:"location"`
	ReorderLevel      int       `json:"reorder_level" db:"reorder_level"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time `json:"updated_at" db:"updated_at"`
}

// LowStock reports whether available stock has fallen to the reorder level.
func (i *Item) LowStock() bool {
	return i.QuantityAvailable <= i.ReorderLevel
}
