package checkout

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pati-platform/pati-backend/pkg/config"
	"github.com/pati-platform/pati-backend/pkg/db/models"
	"github.com/pati-platform/pati-backend/pkg/enums"
	pkgerrors "github.com/pati-platform/pati-backend/pkg/errors"
	"github.com/pati-platform/pati-backend/pkg/outbox"
	"github.com/pati-platform/pati-backend/pkg/types"
)

type stubTx struct{}

func (stubTx) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

type stubCarts struct {
	cart      *models.CartRecord
	lines     []models.CartLine
	converted bool
}

func (s *stubCarts) FindActiveByUser(_ context.Context, _ uuid.UUID) (*models.CartRecord, error) {
	if s.cart == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.cart, nil
}

func (s *stubCarts) ListLines(_ context.Context, _ uuid.UUID) ([]models.CartLine, error) {
	return s.lines, nil
}

func (s *stubCarts) MarkConvertedTx(_ *gorm.DB, _ uuid.UUID) error {
	s.converted = true
	return nil
}

type stubStock struct {
	available   map[uuid.UUID]int
	decremented map[uuid.UUID]int
}

func newStubStock() *stubStock {
	return &stubStock{available: map[uuid.UUID]int{}, decremented: map[uuid.UUID]int{}}
}

func (s *stubStock) DecrementStockTx(_ *gorm.DB, productID uuid.UUID, qty int) (bool, error) {
	if s.available[productID] < qty {
		return false, nil
	}
	s.available[productID] -= qty
	s.decremented[productID] += qty
	return true, nil
}

type stubOrders struct {
	next    int64
	created *models.Order
}

func (s *stubOrders) NextOrderNumberTx(_ *gorm.DB) (int64, error) {
	return s.next, nil
}

func (s *stubOrders) CreateTx(_ *gorm.DB, order *models.Order) error {
	order.ID = uuid.New()
	s.created = order
	return nil
}

type stubUsers struct {
	user *models.User
}

func (s *stubUsers) FindByID(_ context.Context, _ uuid.UUID) (*models.User, error) {
	return s.user, nil
}

type stubCommissions struct {
	accrued *models.AffiliateCommission
}

func (s *stubCommissions) AccrueTx(_ *gorm.DB, affiliateID, orderID uuid.UUID, subtotalCents int64, currency enums.Currency) (*models.AffiliateCommission, error) {
	s.accrued = &models.AffiliateCommission{
		ID:              uuid.New(),
		OrderID:         orderID,
		AffiliateID:     affiliateID,
		BaseCents:       int(subtotalCents),
		CommissionCents: int(subtotalCents / 10),
		Currency:        currency,
		Status:          enums.CommissionStatusAccrued,
	}
	return s.accrued, nil
}

type stubEvents struct {
	emitted []outbox.DomainEvent
}

func (s *stubEvents) Emit(_ context.Context, _ *gorm.DB, event outbox.DomainEvent) error {
	s.emitted = append(s.emitted, event)
	return nil
}

type fixture struct {
	svc     Service
	carts   *stubCarts
	stock   *stubStock
	orders  *stubOrders
	events  *stubEvents
	commits *stubCommissions
	userID  uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	userID := uuid.New()
	f := &fixture{
		carts:   &stubCarts{},
		stock:   newStubStock(),
		orders:  &stubOrders{next: 1000},
		events:  &stubEvents{},
		commits: &stubCommissions{},
		userID:  userID,
	}
	users := &stubUsers{user: &models.User{
		ID:        userID,
		Email:     "buyer@example.com",
		FirstName: "Ana",
		LastName:  "Lopez",
	}}

	svc, err := NewService(
		stubTx{}, f.carts, f.stock, f.orders, users, f.commits, f.events,
		config.CheckoutConfig{FreeShippingThresholdCents: 5000, FlatShippingCents: 500},
		nil,
	)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	f.svc = svc
	return f
}

func (f *fixture) loadCart(lines ...models.CartLine) {
	cartID := uuid.New()
	for i := range lines {
		lines[i].CartID = cartID
	}
	f.carts.cart = &models.CartRecord{
		ID:       cartID,
		UserID:   f.userID,
		Status:   enums.CartStatusActive,
		Currency: enums.CurrencyUSD,
	}
	f.carts.lines = lines
}

func validInput() Input {
	return Input{
		ShippingAddress: types.Address{Line1: "Calle 23 #456", City: "Havana", State: "La Habana"},
		PaymentMethod:   "cash",
	}
}

func TestCheckoutBelowThresholdChargesFlatShipping(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	productID := uuid.New()
	f.stock.available[productID] = 10
	f.loadCart(models.CartLine{
		ProductID: productID, StoreID: uuid.New(),
		ProductName: "Beans", StoreName: "Bodega",
		Qty: 1, UnitPriceCents: 4999, LineTotalCents: 4999,
	})

	order, err := f.svc.Checkout(context.Background(), f.userID, enums.UserRoleCustomer, validInput())
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if order.SubtotalCents != 4999 || order.ShippingCents != 500 || order.TotalCents != 5499 {
		t.Fatalf("expected 4999+500=5499, got %d+%d=%d", order.SubtotalCents, order.ShippingCents, order.TotalCents)
	}
	if order.OrderNumber != 1000 {
		t.Fatalf("expected order number 1000, got %d", order.OrderNumber)
	}
	if order.Type != enums.OrderTypeNormal {
		t.Fatalf("expected normal order, got %s", order.Type)
	}
	if order.Customer.Name != "Ana" || order.Customer.Email != "buyer@example.com" {
		t.Fatalf("expected buyer snapshot, got %+v", order.Customer)
	}
	if !f.carts.converted {
		t.Fatal("cart was not marked converted")
	}
	if f.stock.decremented[productID] != 1 {
		t.Fatalf("expected stock decrement of 1, got %d", f.stock.decremented[productID])
	}
	if len(f.events.emitted) != 1 || f.events.emitted[0].EventType != enums.OutboxEventOrderPlaced {
		t.Fatalf("expected one order.placed event, got %+v", f.events.emitted)
	}
}

func TestCheckoutAtThresholdShipsFree(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	productID := uuid.New()
	f.stock.available[productID] = 10
	f.loadCart(models.CartLine{
		ProductID: productID, StoreID: uuid.New(),
		ProductName: "Rice", StoreName: "Bodega",
		Qty: 2, UnitPriceCents: 2500, LineTotalCents: 5000,
	})

	order, err := f.svc.Checkout(context.Background(), f.userID, enums.UserRoleCustomer, validInput())
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if order.ShippingCents != 0 || order.TotalCents != 5000 {
		t.Fatalf("expected free shipping at threshold, got shipping=%d total=%d", order.ShippingCents, order.TotalCents)
	}
}

func TestCheckoutEmptyCartRejected(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.loadCart() // active cart, no lines

	_, err := f.svc.Checkout(context.Background(), f.userID, enums.UserRoleCustomer, validInput())
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	f.carts.cart = nil // no cart at all
	_, err = f.svc.Checkout(context.Background(), f.userID, enums.UserRoleCustomer, validInput())
	appErr = pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error without a cart, got %v", err)
	}
}

func TestCheckoutInsufficientStockRollsBack(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	productID := uuid.New()
	f.stock.available[productID] = 1
	f.loadCart(models.CartLine{
		ProductID: productID, StoreID: uuid.New(),
		ProductName: "Coffee", StoreName: "Bodega",
		Qty: 3, UnitPriceCents: 1000, LineTotalCents: 3000,
	})

	_, err := f.svc.Checkout(context.Background(), f.userID, enums.UserRoleCustomer, validInput())
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict on stock shortfall, got %v", err)
	}
	if f.carts.converted {
		t.Fatal("cart must not convert when stock fails")
	}
	if len(f.events.emitted) != 0 {
		t.Fatalf("no events expected, got %d", len(f.events.emitted))
	}
}

func TestCheckoutInvalidSubmissionRejected(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.loadCart(models.CartLine{
		ProductID: uuid.New(), StoreID: uuid.New(),
		ProductName: "Sugar", StoreName: "Bodega",
		Qty: 1, UnitPriceCents: 100, LineTotalCents: 100,
	})

	bad := validInput()
	bad.PaymentMethod = "crypto"
	_, err := f.svc.Checkout(context.Background(), f.userID, enums.UserRoleCustomer, bad)
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation for payment method, got %v", err)
	}

	bad = validInput()
	bad.ShippingAddress.City = ""
	_, err = f.svc.Checkout(context.Background(), f.userID, enums.UserRoleCustomer, bad)
	appErr = pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation for address, got %v", err)
	}
}

func TestCheckoutAffiliateForClientAccruesCommission(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	productID := uuid.New()
	f.stock.available[productID] = 100
	f.loadCart(models.CartLine{
		ProductID: productID, StoreID: uuid.New(),
		ProductName: "Flour", StoreName: "Bodega",
		Qty: 20, UnitPriceCents: 900, LineTotalCents: 18000,
	})

	input := validInput()
	input.ForClient = true
	input.Customer = types.Customer{Name: "Carlos", LastName: "Perez", Email: "carlos@example.com"}

	order, err := f.svc.Checkout(context.Background(), f.userID, enums.UserRoleAffiliate, input)
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if order.Type != enums.OrderTypeAffiliateSale {
		t.Fatalf("expected affiliate sale, got %s", order.Type)
	}
	if order.AffiliateID == nil || *order.AffiliateID != f.userID {
		t.Fatal("expected affiliate id on order")
	}
	if order.Customer.Name != "Carlos" {
		t.Fatalf("expected client snapshot, got %+v", order.Customer)
	}
	if f.commits.accrued == nil || f.commits.accrued.BaseCents != 18000 {
		t.Fatalf("expected commission on 18000, got %+v", f.commits.accrued)
	}
	if len(f.events.emitted) != 2 || f.events.emitted[1].EventType != enums.OutboxEventCommissionAccrued {
		t.Fatalf("expected order.placed + commission events, got %+v", f.events.emitted)
	}
}

func TestCheckoutAffiliateSelfPurchaseSkipsCommission(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	productID := uuid.New()
	f.stock.available[productID] = 10
	f.loadCart(models.CartLine{
		ProductID: productID, StoreID: uuid.New(),
		ProductName: "Oil", StoreName: "Bodega",
		Qty: 1, UnitPriceCents: 700, LineTotalCents: 700,
	})

	order, err := f.svc.Checkout(context.Background(), f.userID, enums.UserRoleAffiliate, validInput())
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if order.Type != enums.OrderTypeAffiliatePurchase {
		t.Fatalf("expected affiliate purchase, got %s", order.Type)
	}
	if f.commits.accrued != nil {
		t.Fatal("no commission expected for self purchase")
	}
	if len(f.events.emitted) != 1 {
		t.Fatalf("expected only order.placed, got %d events", len(f.events.emitted))
	}
}
