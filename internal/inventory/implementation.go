// internal/inventory/implementation.go
package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"stockroom/internal/postgres"
)

// service implements the Service interface.
type service struct {
	db *sqlx.DB
}

// NewService creates a new inventory service instance.
func NewService(db *sqlx.DB) Service {
	return &service{db: db}
}

// CreateCategory creates a new category.
func (s *service) CreateCategory(ctx context.Context, name, description string) (*Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}

	category := &Category{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
	}

	err := s.db.QueryRowxContext(ctx, `
		INSERT INTO categories (id, name, description)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`, category.ID, category.Name, category.Description).Scan(&category.CreatedAt)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return nil, ErrDuplicateName
		}
		return nil, postgres.ClassifyError(fmt.Errorf("insert category: %w", err))
	}

	return category, nil
}

// GetCategory retrieves a category by its ID.
func (s *service) GetCategory(ctx context.Context, id uuid.UUID) (*Category, error) {
	category := &Category{}
	err := s.db.GetContext(ctx, category, `
		SELECT id, name, description, created_at
		FROM categories
		WHERE id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCategoryNotFound
	}
	if err != nil {
		return nil, postgres.ClassifyError(fmt.Errorf("get category: %w", err))
	}
	return category, nil
}

// ListCategories returns all categories ordered by name.
func (s *service) ListCategories(ctx context.Context) ([]*Category, error) {
	var categories []*Category
	err := s.db.SelectContext(ctx, &categories, `
		SELECT id, name, description, created_at
		FROM categories
		ORDER BY name
	`)
	if err != nil {
		return nil, postgres.ClassifyError(fmt.Errorf("list categories: %w", err))
	}
	return categories, nil
}

// CreateItem creates a new stock item under an existing category.
func (s *service) CreateItem(ctx context.Context, item *Item) (*Item, error) {
	if strings.TrimSpace(item.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if item.QuantityAvailable < 0 || item.QuantityReserved < 0 {
		return nil, fmt.Errorf("%w: quantities must not be negative", ErrValidation)
	}

	if _, err := s.GetCategory(ctx, item.CategoryID); err != nil {
		return nil, err
	}

	item.ID = uuid.New()
	err := s.db.QueryRowxContext(ctx, `
		INSERT INTO inventory_items (id, category_id, name, quantity_available, quantity_reserved, unit_price, location, reorder_level)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`, item.ID, item.CategoryID, item.Name, item.QuantityAvailable, item.QuantityReserved,
		item.UnitPrice, item.Location, item.ReorderLevel).Scan(&item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, postgres.ClassifyError(fmt.Errorf("insert item: %w", err))
	}

	return item, nil
}

// GetItem retrieves a stock item by its ID.
func (s *service) GetItem(ctx context.Context, id uuid.UUID) (*Item, error) {
	item := &Item{}
	err := s.db.GetContext(ctx, item, `
		SELECT id, category_id, name, quantity_available, quantity_reserved, unit_price, location, reorder_level, created_at, updated_at
		FROM inventory_items
		WHERE id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, postgres.ClassifyError(fmt.Errorf("get item: %w", err))
	}
	return item, nil
}

// ListItems returns stock items, optionally narrowed by category or to
// items at or below their reorder level.
func (s *service) ListItems(ctx context.Context, filter ItemFilter) ([]*Item, error) {
	query := `
		SELECT id, category_id, name, quantity_available, quantity_reserved, unit_price, location, reorder_level, created_at, updated_at
		FROM inventory_items
	`
	var clauses []string
	var args []interface{}

	if filter.CategoryID != nil {
		args = append(args, *filter.CategoryID)
		clauses = append(clauses, fmt.Sprintf("category_id = $%d", len(args)))
	}
	if filter.LowStock {
		clauses = append(clauses, "quantity_available <= reorder_level")
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY name"

	var items []*Item
	if err := s.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, postgres.ClassifyError(fmt.Errorf("list items: %w", err))
	}
	return items, nil
}
