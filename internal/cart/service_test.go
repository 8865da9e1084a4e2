package cart

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pati-platform/pati-backend/pkg/config"
	"github.com/pati-platform/pati-backend/pkg/db/models"
	"github.com/pati-platform/pati-backend/pkg/enums"
	pkgerrors "github.com/pati-platform/pati-backend/pkg/errors"
)

type stubTx struct {
	calls int
}

func (s *stubTx) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	s.calls++
	return fn(&gorm.DB{})
}

type lineKey struct {
	cartID    uuid.UUID
	productID uuid.UUID
}

type stubCartRepo struct {
	carts map[uuid.UUID]*models.CartRecord
	lines map[lineKey]*models.CartLine
}

func newStubCartRepo() *stubCartRepo {
	return &stubCartRepo{
		carts: map[uuid.UUID]*models.CartRecord{},
		lines: map[lineKey]*models.CartLine{},
	}
}

func (r *stubCartRepo) FindActiveByUser(_ context.Context, userID uuid.UUID) (*models.CartRecord, error) {
	for _, cart := range r.carts {
		if cart.UserID == userID && cart.Status == enums.CartStatusActive {
			return cart, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubCartRepo) CreateActive(_ context.Context, userID uuid.UUID, currency enums.Currency) (*models.CartRecord, error) {
	cart := &models.CartRecord{
		ID:       uuid.New(),
		UserID:   userID,
		Status:   enums.CartStatusActive,
		Currency: currency,
	}
	r.carts[cart.ID] = cart
	return cart, nil
}

func (r *stubCartRepo) SetCurrency(_ context.Context, cartID uuid.UUID, currency enums.Currency) error {
	if cart, ok := r.carts[cartID]; ok {
		cart.Currency = currency
	}
	return nil
}

func (r *stubCartRepo) GetLineForUpdateTx(_ *gorm.DB, cartID, productID uuid.UUID) (*models.CartLine, error) {
	line, ok := r.lines[lineKey{cartID, productID}]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return line, nil
}

func (r *stubCartRepo) SaveLineTx(_ *gorm.DB, line *models.CartLine) error {
	r.lines[lineKey{line.CartID, line.ProductID}] = line
	return nil
}

func (r *stubCartRepo) DeleteLine(_ context.Context, cartID, productID uuid.UUID) error {
	delete(r.lines, lineKey{cartID, productID})
	return nil
}

func (r *stubCartRepo) DeleteAllLines(_ context.Context, cartID uuid.UUID) error {
	for key := range r.lines {
		if key.cartID == cartID {
			delete(r.lines, key)
		}
	}
	return nil
}

func (r *stubCartRepo) ListLines(_ context.Context, cartID uuid.UUID) ([]models.CartLine, error) {
	var out []models.CartLine
	for key, line := range r.lines {
		if key.cartID == cartID {
			out = append(out, *line)
		}
	}
	return out, nil
}

type stubCatalog struct {
	products map[uuid.UUID]*models.Product
	stores   map[uuid.UUID]*models.Store
}

func newStubCatalog() *stubCatalog {
	return &stubCatalog{
		products: map[uuid.UUID]*models.Product{},
		stores:   map[uuid.UUID]*models.Store{},
	}
}

func (c *stubCatalog) FindByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	product, ok := c.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return product, nil
}

type stubStoreLoader struct{ catalog *stubCatalog }

func (s stubStoreLoader) FindByID(_ context.Context, id uuid.UUID) (*models.Store, error) {
	store, ok := s.catalog.stores[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return store, nil
}

func (c *stubCatalog) addProduct(p1, p2, p3, stock int, currency enums.Currency) *models.Product {
	store := &models.Store{ID: uuid.New(), Name: "Bodega", IsActive: true}
	c.stores[store.ID] = store
	product := &models.Product{
		ID:          uuid.New(),
		StoreID:     store.ID,
		Name:        "Rice 1kg",
		Category:    "grocery",
		Currency:    currency,
		Price1Cents: p1,
		Price2Cents: p2,
		Price3Cents: p3,
		Stock:       stock,
		IsActive:    true,
	}
	c.products[product.ID] = product
	return product
}

func testCartService(t *testing.T) (Service, *stubCartRepo, *stubCatalog) {
	t.Helper()
	repo := newStubCartRepo()
	catalog := newStubCatalog()
	svc, err := NewService(&stubTx{}, repo, catalog, stubStoreLoader{catalog}, config.CheckoutConfig{
		FreeShippingThresholdCents: 5000,
		FlatShippingCents:          500,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, repo, catalog
}

func TestAddLineAccumulatesAndReprices(t *testing.T) {
	t.Parallel()

	svc, _, catalog := testCartService(t)
	product := catalog.addProduct(1000, 900, 800, 100, enums.CurrencyUSD)
	userID := uuid.New()

	dto, err := svc.AddLine(context.Background(), userID, AddLineInput{ProductID: product.ID, Qty: 5})
	if err != nil {
		t.Fatalf("add 5: %v", err)
	}
	if dto.Lines[0].UnitPriceCents != 1000 {
		t.Fatalf("expected tier-1 unit price, got %d", dto.Lines[0].UnitPriceCents)
	}
	if dto.SubtotalCents != 5000 {
		t.Fatalf("expected subtotal 5000, got %d", dto.SubtotalCents)
	}

	// Adding 10 more lands the line at 15 units, re-pricing every unit at
	// tier 2: 15 * 900 = 13500.
	dto, err = svc.AddLine(context.Background(), userID, AddLineInput{ProductID: product.ID, Qty: 10})
	if err != nil {
		t.Fatalf("add 10: %v", err)
	}
	if len(dto.Lines) != 1 {
		t.Fatalf("expected a single aggregated line, got %d", len(dto.Lines))
	}
	line := dto.Lines[0]
	if line.Qty != 15 {
		t.Fatalf("expected qty 15, got %d", line.Qty)
	}
	if line.UnitPriceCents != 900 {
		t.Fatalf("expected tier-2 unit price, got %d", line.UnitPriceCents)
	}
	if line.LineTotalCents != 13500 {
		t.Fatalf("expected line total 13500, got %d", line.LineTotalCents)
	}
	if dto.ItemCount != 15 {
		t.Fatalf("expected item count 15, got %d", dto.ItemCount)
	}
}

func TestAddLineRejectsNonPositiveQty(t *testing.T) {
	t.Parallel()

	svc, _, catalog := testCartService(t)
	product := catalog.addProduct(1000, 900, 800, 100, enums.CurrencyUSD)

	for _, qty := range []int{0, -3} {
		_, err := svc.AddLine(context.Background(), uuid.New(), AddLineInput{ProductID: product.ID, Qty: qty})
		appErr := pkgerrors.As(err)
		if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
			t.Fatalf("qty %d: expected validation error, got %v", qty, err)
		}
	}
}

func TestAddLineInsufficientStock(t *testing.T) {
	t.Parallel()

	svc, _, catalog := testCartService(t)
	product := catalog.addProduct(1000, 900, 800, 8, enums.CurrencyUSD)
	userID := uuid.New()

	if _, err := svc.AddLine(context.Background(), userID, AddLineInput{ProductID: product.ID, Qty: 5}); err != nil {
		t.Fatalf("add within stock: %v", err)
	}

	_, err := svc.AddLine(context.Background(), userID, AddLineInput{ProductID: product.ID, Qty: 4})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict for stock overrun, got %v", err)
	}
}

func TestAddLineRejectsCurrencyMix(t *testing.T) {
	t.Parallel()

	svc, _, catalog := testCartService(t)
	usd := catalog.addProduct(1000, 900, 800, 100, enums.CurrencyUSD)
	cup := catalog.addProduct(50000, 45000, 40000, 100, enums.CurrencyCUP)
	userID := uuid.New()

	if _, err := svc.AddLine(context.Background(), userID, AddLineInput{ProductID: usd.ID, Qty: 1}); err != nil {
		t.Fatalf("add usd product: %v", err)
	}

	_, err := svc.AddLine(context.Background(), userID, AddLineInput{ProductID: cup.ID, Qty: 1})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected currency conflict, got %v", err)
	}
}

func TestShippingEstimateThreshold(t *testing.T) {
	t.Parallel()

	svc, _, catalog := testCartService(t)
	// 4999 subtotal pays flat shipping; 5000 ships free.
	under := catalog.addProduct(4999, 4999, 4999, 10, enums.CurrencyUSD)
	userID := uuid.New()

	dto, err := svc.AddLine(context.Background(), userID, AddLineInput{ProductID: under.ID, Qty: 1})
	if err != nil {
		t.Fatalf("add under-threshold: %v", err)
	}
	if dto.EstimatedShippingCents != 500 {
		t.Fatalf("expected flat shipping 500, got %d", dto.EstimatedShippingCents)
	}
	if dto.EstimatedTotalCents != 5499 {
		t.Fatalf("expected total 5499, got %d", dto.EstimatedTotalCents)
	}

	svc2, _, catalog2 := testCartService(t)
	exact := catalog2.addProduct(5000, 5000, 5000, 10, enums.CurrencyUSD)
	dto, err = svc2.AddLine(context.Background(), uuid.New(), AddLineInput{ProductID: exact.ID, Qty: 1})
	if err != nil {
		t.Fatalf("add at-threshold: %v", err)
	}
	if dto.EstimatedShippingCents != 0 {
		t.Fatalf("expected free shipping at threshold, got %d", dto.EstimatedShippingCents)
	}
	if dto.EstimatedTotalCents != 5000 {
		t.Fatalf("expected total 5000, got %d", dto.EstimatedTotalCents)
	}
}

func TestRemoveLineIsIdempotent(t *testing.T) {
	t.Parallel()

	svc, _, catalog := testCartService(t)
	product := catalog.addProduct(1000, 900, 800, 100, enums.CurrencyUSD)
	userID := uuid.New()

	if _, err := svc.AddLine(context.Background(), userID, AddLineInput{ProductID: product.ID, Qty: 2}); err != nil {
		t.Fatalf("add line: %v", err)
	}

	dto, err := svc.RemoveLine(context.Background(), userID, product.ID)
	if err != nil {
		t.Fatalf("remove line: %v", err)
	}
	if len(dto.Lines) != 0 {
		t.Fatalf("expected empty cart, got %d lines", len(dto.Lines))
	}

	// A second remove of the same product is a no-op.
	if _, err := svc.RemoveLine(context.Background(), userID, product.ID); err != nil {
		t.Fatalf("second remove: %v", err)
	}

	// Removing with no cart at all returns an empty summary.
	if _, err := svc.RemoveLine(context.Background(), uuid.New(), product.ID); err != nil {
		t.Fatalf("remove without cart: %v", err)
	}
}

func TestClearEmptiesCart(t *testing.T) {
	t.Parallel()

	svc, _, catalog := testCartService(t)
	first := catalog.addProduct(1000, 900, 800, 100, enums.CurrencyUSD)
	second := catalog.addProduct(2000, 1800, 1600, 100, enums.CurrencyUSD)
	userID := uuid.New()

	if _, err := svc.AddLine(context.Background(), userID, AddLineInput{ProductID: first.ID, Qty: 1}); err != nil {
		t.Fatalf("add first: %v", err)
	}
	if _, err := svc.AddLine(context.Background(), userID, AddLineInput{ProductID: second.ID, Qty: 1}); err != nil {
		t.Fatalf("add second: %v", err)
	}

	dto, err := svc.Clear(context.Background(), userID)
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if dto.ItemCount != 0 || dto.SubtotalCents != 0 || len(dto.Lines) != 0 {
		t.Fatalf("expected empty summary, got %+v", dto)
	}
}

// raceCartRepo simulates a concurrent request winning the insert race for a
// brand-new line: the first save hits the cart_id+product_id unique index
// because the other request's row landed in between.
type raceCartRepo struct {
	*stubCartRepo
	winnerQty int
	raced     bool
}

func (r *raceCartRepo) SaveLineTx(tx *gorm.DB, line *models.CartLine) error {
	if !r.raced {
		r.raced = true
		r.lines[lineKey{line.CartID, line.ProductID}] = &models.CartLine{
			CartID:         line.CartID,
			ProductID:      line.ProductID,
			StoreID:        line.StoreID,
			ProductName:    line.ProductName,
			StoreName:      line.StoreName,
			Qty:            r.winnerQty,
			UnitPriceCents: 1000,
			LineTotalCents: 1000 * r.winnerQty,
		}
		return errors.New(`duplicate key value violates unique constraint "ux_cart_lines_cart_product"`)
	}
	return r.stubCartRepo.SaveLineTx(tx, line)
}

func TestAddLineAccumulatesWhenConcurrentInsertWins(t *testing.T) {
	t.Parallel()

	catalog := newStubCatalog()
	product := catalog.addProduct(1000, 900, 800, 100, enums.CurrencyUSD)
	repo := &raceCartRepo{stubCartRepo: newStubCartRepo(), winnerQty: 5}
	tx := &stubTx{}
	svc, err := NewService(tx, repo, catalog, stubStoreLoader{catalog}, config.CheckoutConfig{
		FreeShippingThresholdCents: 5000,
		FlatShippingCents:          500,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	// Both adds must survive: the 5 units the winner inserted plus the 10
	// from this request, re-priced at tier 2 for the combined quantity.
	dto, err := svc.AddLine(context.Background(), uuid.New(), AddLineInput{ProductID: product.ID, Qty: 10})
	if err != nil {
		t.Fatalf("add after losing insert race: %v", err)
	}
	if len(dto.Lines) != 1 {
		t.Fatalf("expected a single aggregated line, got %d", len(dto.Lines))
	}
	line := dto.Lines[0]
	if line.Qty != 15 {
		t.Fatalf("expected qty 15 after both adds, got %d", line.Qty)
	}
	if line.UnitPriceCents != 900 {
		t.Fatalf("expected tier-2 unit price for combined qty, got %d", line.UnitPriceCents)
	}
	if line.LineTotalCents != 13500 {
		t.Fatalf("expected line total 13500, got %d", line.LineTotalCents)
	}
	if tx.calls != 2 {
		t.Fatalf("expected the add to retry in a second transaction, got %d", tx.calls)
	}
}

func TestGetWithoutCartReturnsEmptySummary(t *testing.T) {
	t.Parallel()

	svc, _, _ := testCartService(t)
	dto, err := svc.Get(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if dto.ItemCount != 0 || len(dto.Lines) != 0 || dto.EstimatedTotalCents != 0 {
		t.Fatalf("expected empty summary, got %+v", dto)
	}
}
