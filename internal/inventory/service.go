// internal/inventory/service.go
package inventory

import (
	"context"

	"github.com/google/uuid"
)

// ItemFilter narrows ListItems results.
type ItemFilter struct {
	CategoryID *uuid.UUID
	LowStock   bool
}

// Service defines the interface for inventory reference data.
type Service interface {
	CreateCategory(ctx context.Context, name, description string) (*Category, error)
	GetCategory(ctx context.Context, id uuid.UUID) (*Category, error)
	ListCategories(ctx context.Context) ([]*Category, error)
	CreateItem(ctx context.Context, item *Item) (*Item, error)
	GetItem(ctx context.Context, id uuid.UUID) (*Item, error)
	ListItems(ctx context.Context, filter ItemFilter) ([]*Item, error)
}
