package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/pati-platform/pati-backend/pkg/db/models"
	"github.com/pati-platform/pati-backend/pkg/enums"
	"github.com/pati-platform/pati-backend/pkg/pagination"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	orders := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  order_number INTEGER NOT NULL UNIQUE,
  user_id TEXT NOT NULL,
  type TEXT NOT NULL DEFAULT 'normal',
  status TEXT NOT NULL DEFAULT 'pending',
  customer TEXT,
  shipping_address TEXT,
  payment_method TEXT NOT NULL DEFAULT 'cash',
  currency TEXT NOT NULL,
  subtotal_cents INTEGER NOT NULL,
  shipping_cents INTEGER NOT NULL,
  total_cents INTEGER NOT NULL,
  affiliate_id TEXT,
  affiliate_name TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	orderLines := `
CREATE TABLE IF NOT EXISTS order_lines (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_id TEXT,
  store_id TEXT NOT NULL,
  name TEXT NOT NULL,
  store_name TEXT NOT NULL,
  currency TEXT NOT NULL,
  unit_price_cents INTEGER NOT NULL,
  qty INTEGER NOT NULL,
  total_cents INTEGER NOT NULL,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(orders).Error)
	require.NoError(t, db.Exec(orderLines).Error)
	return db
}

func createOrder(t *testing.T, db *gorm.DB, userID uuid.UUID, number int64, created time.Time) *models.Order {
	t.Helper()

	order := &models.Order{
		ID:            uuid.New(),
		OrderNumber:   number,
		UserID:        userID,
		Type:          enums.OrderTypeNormal,
		Status:        enums.OrderStatusPending,
		PaymentMethod: enums.PaymentMethodCash,
		Currency:      enums.CurrencyUSD,
		SubtotalCents: 4500,
		ShippingCents: 500,
		TotalCents:    5000,
		CreatedAt:     created,
		UpdatedAt:     created,
	}
	require.NoError(t, db.Create(order).Error)

	line := &models.OrderLine{
		ID:             uuid.New(),
		OrderID:        order.ID,
		StoreID:        uuid.New(),
		Name:           "Guayabera Shirt",
		StoreName:      "Casa Lina",
		Currency:       enums.CurrencyUSD,
		UnitPriceCents: 900,
		Qty:            5,
		TotalCents:     4500,
		CreatedAt:      created,
	}
	require.NoError(t, db.Create(line).Error)
	return order
}

func TestNextOrderNumberStartsAboveSeed(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		number, err := repo.NextOrderNumberTx(tx)
		require.NoError(t, err)
		assert.Equal(t, int64(1000), number)
		return nil
	}))
}

func TestNextOrderNumberFollowsHighestExisting(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	userID := uuid.New()
	createOrder(t, db, userID, 1000, time.Now().Add(-2*time.Hour))
	createOrder(t, db, userID, 1004, time.Now().Add(-time.Hour))

	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		number, err := repo.NextOrderNumberTx(tx)
		require.NoError(t, err)
		assert.Equal(t, int64(1005), number)
		return nil
	}))
}

func TestCreateTxPersistsOrderWithLines(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	userID := uuid.New()
	order := &models.Order{
		ID:            uuid.New(),
		OrderNumber:   1000,
		UserID:        userID,
		Type:          enums.OrderTypeNormal,
		Status:        enums.OrderStatusPending,
		PaymentMethod: enums.PaymentMethodCash,
		Currency:      enums.CurrencyUSD,
		SubtotalCents: 13500,
		ShippingCents: 0,
		TotalCents:    13500,
		Lines: []models.OrderLine{
			{
				ID:             uuid.New(),
				StoreID:        uuid.New(),
				Name:           "Linen Dress",
				StoreName:      "Casa Lina",
				Currency:       enums.CurrencyUSD,
				UnitPriceCents: 900,
				Qty:            15,
				TotalCents:     13500,
			},
		},
	}

	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return repo.CreateTx(tx, order)
	}))

	found, err := repo.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), found.OrderNumber)
	require.Len(t, found.Lines, 1)
	assert.Equal(t, 15, found.Lines[0].Qty)
	assert.Equal(t, 13500, found.Lines[0].TotalCents)
}

func TestListByUserPaginatesNewestFirst(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	userID := uuid.New()
	base := time.Now().Add(-3 * time.Hour).Truncate(time.Second)
	createOrder(t, db, userID, 1000, base)
	createOrder(t, db, userID, 1001, base.Add(time.Hour))
	newest := createOrder(t, db, userID, 1002, base.Add(2*time.Hour))
	createOrder(t, db, uuid.New(), 1003, base.Add(3*time.Hour))

	rows, next, err := repo.ListByUser(context.Background(), userID, pagination.Params{Limit: 2})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, newest.ID, rows[0].ID)
	assert.Equal(t, int64(1001), rows[1].OrderNumber)
	require.NotEmpty(t, next)

	rows, next, err = repo.ListByUser(context.Background(), userID, pagination.Params{Limit: 2, Cursor: next})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(1000), rows[0].OrderNumber)
	assert.Empty(t, next)
}

func TestListByStoreMatchesLineStore(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	storeID := uuid.New()
	order := createOrder(t, db, uuid.New(), 1000, time.Now().Add(-time.Hour))
	require.NoError(t, db.Model(&models.OrderLine{}).
		Where("order_id = ?", order.ID).
		Update("store_id", storeID).Error)
	createOrder(t, db, uuid.New(), 1001, time.Now())

	rows, next, err := repo.ListByStore(context.Background(), storeID, pagination.Params{Limit: 10})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, order.ID, rows[0].ID)
	assert.Empty(t, next)
}

func TestListByAffiliateFiltersByReferrer(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	affiliateID := uuid.New()
	order := createOrder(t, db, uuid.New(), 1000, time.Now().Add(-time.Hour))
	require.NoError(t, db.Model(&models.Order{}).
		Where("id = ?", order.ID).
		Updates(map[string]any{"type": enums.OrderTypeAffiliateSale.String(), "affiliate_id": affiliateID}).Error)
	createOrder(t, db, uuid.New(), 1001, time.Now())

	rows, next, err := repo.ListByAffiliate(context.Background(), affiliateID, pagination.Params{Limit: 10})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, order.ID, rows[0].ID)
	assert.Empty(t, next)
}
