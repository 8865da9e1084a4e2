// Package checkout converts the active cart into an immutable order
// inside a single transaction: stock is decremented with a guard, the
// order number is allocated, the cart flips to converted, and the
// order.placed event lands in the outbox atomically with all of it.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pati-platform/pati-backend/internal/orders"
	"github.com/pati-platform/pati-backend/pkg/config"
	"github.com/pati-platform/pati-backend/pkg/db/models"
	"github.com/pati-platform/pati-backend/pkg/enums"
	pkgerrors "github.com/pati-platform/pati-backend/pkg/errors"
	"github.com/pati-platform/pati-backend/pkg/logger"
	"github.com/pati-platform/pati-backend/pkg/outbox"
	"github.com/pati-platform/pati-backend/pkg/pricing"
	"github.com/pati-platform/pati-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type cartStore interface {
	FindActiveByUser(ctx context.Context, userID uuid.UUID) (*models.CartRecord, error)
	ListLines(ctx context.Context, cartID uuid.UUID) ([]models.CartLine, error)
	MarkConvertedTx(tx *gorm.DB, cartID uuid.UUID) error
}

type stockDecrementer interface {
	DecrementStockTx(tx *gorm.DB, productID uuid.UUID, qty int) (bool, error)
}

type orderWriter interface {
	NextOrderNumberTx(tx *gorm.DB) (int64, error)
	CreateTx(tx *gorm.DB, order *models.Order) error
}

type userLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type commissionAccruer interface {
	AccrueTx(tx *gorm.DB, affiliateID, orderID uuid.UUID, subtotalCents int64, currency enums.Currency) (*models.AffiliateCommission, error)
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service places orders from active carts.
type Service interface {
	Checkout(ctx context.Context, actorID uuid.UUID, actorRole enums.UserRole, input Input) (*orders.OrderDTO, error)
}

type service struct {
	tx          txRunner
	carts       cartStore
	products    stockDecrementer
	orders      orderWriter
	users       userLoader
	commissions commissionAccruer
	events      eventEmitter
	shipping    pricing.ShippingRule
	logg        *logger.Logger
}

// NewService wires the checkout orchestration. The commission accruer and
// event emitter are required; checkout without them would silently drop
// affiliate earnings or downstream notifications.
func NewService(
	tx txRunner,
	carts cartStore,
	products stockDecrementer,
	orderRepo orderWriter,
	users userLoader,
	commissions commissionAccruer,
	events eventEmitter,
	checkoutCfg config.CheckoutConfig,
	logg *logger.Logger,
) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if carts == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if orderRepo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if users == nil {
		return nil, fmt.Errorf("user repository required")
	}
	if commissions == nil {
		return nil, fmt.Errorf("commission service required")
	}
	if events == nil {
		return nil, fmt.Errorf("outbox service required")
	}
	return &service{
		tx:          tx,
		carts:       carts,
		products:    products,
		orders:      orderRepo,
		users:       users,
		commissions: commissions,
		events:      events,
		shipping: pricing.ShippingRule{
			FreeThresholdCents: int64(checkoutCfg.FreeShippingThresholdCents),
			FlatCents:          int64(checkoutCfg.FlatShippingCents),
		},
		logg: logg,
	}, nil
}

// Checkout validates the submission, then runs the conversion transaction.
// Any stock shortfall rolls the whole order back; cart totals are an
// estimate and stock here is the authority.
func (s *service) Checkout(ctx context.Context, actorID uuid.UUID, actorRole enums.UserRole, input Input) (*orders.OrderDTO, error) {
	method, err := enums.ParsePaymentMethod(input.PaymentMethod)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method").
			WithDetails(map[string]string{"payment_method": input.PaymentMethod})
	}
	if field := input.ShippingAddress.Validate(); field != "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipping address incomplete").
			WithDetails(map[string]string{"missing": field})
	}

	cart, err := s.carts.FindActiveByUser(ctx, actorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	lines, err := s.carts.ListLines(ctx, cart.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list cart lines")
	}
	if len(lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	actor, err := s.users.FindByID(ctx, actorID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}

	customer := input.Customer
	if strings.TrimSpace(customer.Name) == "" {
		customer = types.Customer{
			Name:     actor.FirstName,
			LastName: actor.LastName,
			Email:    actor.Email,
		}
		if actor.Phone != nil {
			customer.Phone = *actor.Phone
		}
	}

	order := &models.Order{
		UserID:          actorID,
		Type:            enums.OrderTypeNormal,
		Status:          enums.OrderStatusPending,
		Customer:        customer,
		ShippingAddress: input.ShippingAddress,
		PaymentMethod:   method,
		Currency:        cart.Currency,
	}
	if actorRole == enums.UserRoleAffiliate {
		if input.ForClient {
			order.Type = enums.OrderTypeAffiliateSale
			affiliateName := strings.TrimSpace(actor.FirstName + " " + actor.LastName)
			order.AffiliateID = &actor.ID
			order.AffiliateName = &affiliateName
		} else {
			order.Type = enums.OrderTypeAffiliatePurchase
		}
	}

	var subtotal int64
	order.Lines = make([]models.OrderLine, 0, len(lines))
	for i := range lines {
		line := &lines[i]
		productID := line.ProductID
		order.Lines = append(order.Lines, models.OrderLine{
			ProductID:      &productID,
			StoreID:        line.StoreID,
			Name:           line.ProductName,
			StoreName:      line.StoreName,
			Currency:       cart.Currency,
			UnitPriceCents: line.UnitPriceCents,
			Qty:            line.Qty,
			TotalCents:     line.LineTotalCents,
		})
		subtotal += int64(line.LineTotalCents)
	}
	shipping := s.shipping.ShippingCost(subtotal)
	order.SubtotalCents = int(subtotal)
	order.ShippingCents = int(shipping)
	order.TotalCents = int(subtotal + shipping)

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		for i := range lines {
			ok, err := s.products.DecrementStockTx(tx, lines[i].ProductID, lines[i].Qty)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decrement stock")
			}
			if !ok {
				return pkgerrors.New(pkgerrors.CodeConflict, "insufficient stock").
					WithDetails(map[string]string{"product_id": lines[i].ProductID.String(), "product": lines[i].ProductName})
			}
		}

		number, err := s.orders.NextOrderNumberTx(tx)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "allocate order number")
		}
		order.OrderNumber = number

		if err := s.orders.CreateTx(tx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}
		if err := s.carts.MarkConvertedTx(tx, cart.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "convert cart")
		}

		actorRef := &outbox.ActorRef{UserID: actorID, Role: actorRole.String()}
		if err := s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.OutboxEventOrderPlaced,
			AggregateType: enums.OutboxAggregateOrder,
			AggregateID:   order.ID,
			Actor:         actorRef,
			Data: outbox.OrderPlacedData{
				OrderID:     order.ID,
				OrderNumber: order.OrderNumber,
				OrderType:   order.Type.String(),
				UserID:      order.UserID,
				Currency:    order.Currency.String(),
				TotalCents:  int64(order.TotalCents),
			},
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit order event")
		}

		if order.Type == enums.OrderTypeAffiliateSale {
			commission, err := s.commissions.AccrueTx(tx, actorID, order.ID, subtotal, order.Currency)
			if err != nil {
				return err
			}
			if err := s.events.Emit(ctx, tx, outbox.DomainEvent{
				EventType:     enums.OutboxEventCommissionAccrued,
				AggregateType: enums.OutboxAggregateOrder,
				AggregateID:   order.ID,
				Actor:         actorRef,
				Data: outbox.CommissionAccruedData{
					CommissionID:    commission.ID,
					OrderID:         order.ID,
					AffiliateID:     actorID,
					CommissionCents: int64(commission.CommissionCents),
				},
			}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit commission event")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"order_id":     order.ID.String(),
			"order_number": order.OrderNumber,
			"order_type":   order.Type,
			"total_cents":  order.TotalCents,
		})
		s.logg.Info(logCtx, "order placed")
	}
	return orders.FromModel(order), nil
}
