package products

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/pati-platform/pati-backend/pkg/db/models"
	"github.com/pati-platform/pati-backend/pkg/enums"
	"github.com/pati-platform/pati-backend/pkg/pagination"
)

func setupProductsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	products := `
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  store_id TEXT NOT NULL,
  name TEXT NOT NULL,
  description TEXT,
  image_url TEXT,
  category TEXT NOT NULL,
  currency TEXT NOT NULL DEFAULT 'USD',
  price1_cents INTEGER NOT NULL,
  price2_cents INTEGER NOT NULL,
  price3_cents INTEGER NOT NULL,
  stock INTEGER NOT NULL DEFAULT 0,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(products).Error)
	return db
}

func createProduct(t *testing.T, db *gorm.DB, name, category string, stock int) *models.Product {
	t.Helper()

	product := &models.Product{
		ID:          uuid.New(),
		StoreID:     uuid.New(),
		Name:        name,
		Category:    category,
		Currency:    enums.CurrencyUSD,
		Price1Cents: 1000,
		Price2Cents: 900,
		Price3Cents: 800,
		Stock:       stock,
		IsActive:    true,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func TestDecrementStockGuardsAvailability(t *testing.T) {
	db := setupProductsTestDB(t)
	repo := NewRepository(db)

	product := createProduct(t, db, "Linen Shirt", "clothing", 10)

	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		ok, err := repo.DecrementStockTx(tx, product.ID, 7)
		require.NoError(t, err)
		assert.True(t, ok)
		return nil
	}))

	// 3 left; asking for 4 must not touch the row.
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		ok, err := repo.DecrementStockTx(tx, product.ID, 4)
		require.NoError(t, err)
		assert.False(t, ok)
		return nil
	}))

	found, err := repo.FindByID(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, found.Stock)
}

func TestDecrementStockRejectsNonPositiveQty(t *testing.T) {
	db := setupProductsTestDB(t)
	repo := NewRepository(db)

	product := createProduct(t, db, "Linen Shirt", "clothing", 10)

	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		_, err := repo.DecrementStockTx(tx, product.ID, 0)
		require.Error(t, err)
		return nil
	}))
}

func TestListFiltersByCategoryAndSearch(t *testing.T) {
	db := setupProductsTestDB(t)
	repo := NewRepository(db)

	createProduct(t, db, "Guayabera Shirt", "clothing", 5)
	createProduct(t, db, "Linen Dress", "clothing", 5)
	createProduct(t, db, "Coffee Beans", "grocery", 5)

	rows, _, err := repo.List(context.Background(), ListFilter{Category: "clothing"}, pagination.Params{Limit: 10})
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	rows, _, err = repo.List(context.Background(), ListFilter{Search: "guayabera"}, pagination.Params{Limit: 10})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Guayabera Shirt", rows[0].Name)
}
