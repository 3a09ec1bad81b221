package inventory

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockroom/internal/postgres"
)

// setupTestDB connects to PostgreSQL for testing, skipping when no
// database is reachable.
func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			envOr("PGHOST", "localhost"), envOr("PGPORT", "5432"),
			envOr("PGUSER", "stockroom"), envOr("PGPASSWORD", "stockroom"),
			envOr("PGDATABASE", "stockroom_test"))
	}

	db, err := sqlx.Open("postgres", dsn)
	require.NoError(t, err)

	if err := db.Ping(); err != nil {
		t.Skipf("skipping: could not connect to postgres: %v", err)
	}

	require.NoError(t, postgres.EnsureSchema(context.Background(), db))
	_, err = db.Exec(`TRUNCATE notifications, request_comments, item_requests, inventory_items, categories, credentials, users CASCADE`)
	require.NoError(t, err)

	t.Cleanup(func() { db.Close() })
	return db
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func TestCategories(t *testing.T) {
	svc := NewService(setupTestDB(t))
	ctx := context.Background()

	category, err := svc.CreateCategory(ctx, "Office Supplies", "pens and paper")
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, category.ID)

	_, err = svc.CreateCategory(ctx, "Office Supplies", "duplicate")
	assert.ErrorIs(t, err, ErrDuplicateName)

	_, err = svc.CreateCategory(ctx, "  ", "")
	assert.ErrorIs(t, err, ErrValidation)

	got, err := svc.GetCategory(ctx, category.ID)
	require.NoError(t, err)
	assert.Equal(t, "Office Supplies", got.Name)

	_, err = svc.GetCategory(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrCategoryNotFound)

	all, err := svc.ListCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestItems(t *testing.T) {
	svc := NewService(setupTestDB(t))
	ctx := context.Background()

	category, err := svc.CreateCategory(ctx, "Electronics", "")
	require.NoError(t, err)

	item, err := svc.CreateItem(ctx, &Item{
		CategoryID:        category.ID,
		Name:              "USB-C cable",
		QuantityAvailable: 10,
		UnitPrice:         7.50,
		Location:          "shelf B2",
		ReorderLevel:      3,
	})
	require.NoError(t, err)
	assert.False(t, item.LowStock())

	_, err = svc.CreateItem(ctx, &Item{CategoryID: uuid.New(), Name: "orphan"})
	assert.ErrorIs(t, err, ErrCategoryNotFound)

	_, err = svc.CreateItem(ctx, &Item{CategoryID: category.ID, Name: " "})
	assert.ErrorIs(t, err, ErrValidation)

	got, err := svc.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, got.QuantityAvailable)
	assert.Equal(t, "shelf B2", got.Location)

	_, err = svc.GetItem(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListItemsLowStock(t *testing.T) {
	svc := NewService(setupTestDB(t))
	ctx := context.Background()

	category, err := svc.CreateCategory(ctx, "Electronics", "")
	require.NoError(t, err)

	_, err = svc.CreateItem(ctx, &Item{
		CategoryID: category.ID, Name: "plenty", QuantityAvailable: 50, ReorderLevel: 5,
	})
	require.NoError(t, err)
	low, err := svc.CreateItem(ctx, &Item{
		CategoryID: category.ID, Name: "scarce", QuantityAvailable: 2, ReorderLevel: 5,
	})
	require.NoError(t, err)
	assert.True(t, low.LowStock())

	all, err := svc.ListItems(ctx, ItemFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	short, err := svc.ListItems(ctx, ItemFilter{LowStock: true})
	require.NoError(t, err)
	require.Len(t, short, 1)
	assert.Equal(t, "scarce", short[0].Name)

	byCategory, err := svc.ListItems(ctx, ItemFilter{CategoryID: &category.ID})
	require.NoError(t, err)
	assert.Len(t, byCategory, 2)
}
