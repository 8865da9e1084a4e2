package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pati-platform/pati-backend/pkg/config"
	dbpkg "github.com/pati-platform/pati-backend/pkg/db"
	"github.com/pati-platform/pati-backend/pkg/db/models"
	"github.com/pati-platform/pati-backend/pkg/enums"
	pkgerrors "github.com/pati-platform/pati-backend/pkg/errors"
	"github.com/pati-platform/pati-backend/pkg/pricing"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type cartRepository interface {
	FindActiveByUser(ctx context.Context, userID uuid.UUID) (*models.CartRecord, error)
	CreateActive(ctx context.Context, userID uuid.UUID, currency enums.Currency) (*models.CartRecord, error)
	SetCurrency(ctx context.Context, cartID uuid.UUID, currency enums.Currency) error
	GetLineForUpdateTx(tx *gorm.DB, cartID, productID uuid.UUID) (*models.CartLine, error)
	SaveLineTx(tx *gorm.DB, line *models.CartLine) error
	DeleteLine(ctx context.Context, cartID, productID uuid.UUID) error
	DeleteAllLines(ctx context.Context, cartID uuid.UUID) error
	ListLines(ctx context.Context, cartID uuid.UUID) ([]models.CartLine, error)
}

type productLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type storeLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Store, error)
}

// Service exposes cart aggregation operations.
type Service interface {
	Get(ctx context.Context, userID uuid.UUID) (*CartDTO, error)
	AddLine(ctx context.Context, userID uuid.UUID, input AddLineInput) (*CartDTO, error)
	RemoveLine(ctx context.Context, userID, productID uuid.UUID) (*CartDTO, error)
	Clear(ctx context.Context, userID uuid.UUID) (*CartDTO, error)
}

type service struct {
	tx       txRunner
	repo     cartRepository
	products productLoader
	stores   storeLoader
	shipping pricing.ShippingRule
}

// NewService builds a cart service with the provided repositories.
func NewService(tx txRunner, repo cartRepository, products productLoader, stores storeLoader, checkoutCfg config.CheckoutConfig) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if stores == nil {
		return nil, fmt.Errorf("store repository required")
	}
	return &service{
		tx:       tx,
		repo:     repo,
		products: products,
		stores:   stores,
		shipping: pricing.ShippingRule{
			FreeThresholdCents: int64(checkoutCfg.FreeShippingThresholdCents),
			FlatCents:          int64(checkoutCfg.FlatShippingCents),
		},
	}, nil
}

// Get returns the user's active cart summary, creating nothing: a user with
// no cart yet gets an empty summary.
func (s *service) Get(ctx context.Context, userID uuid.UUID) (*CartDTO, error) {
	cart, err := s.repo.FindActiveByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return s.emptySummary(), nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return s.summarize(ctx, cart)
}

// AddLine accumulates qty into the product's line and re-resolves the unit
// price for the new total quantity, so crossing a tier boundary re-prices
// the whole line.
func (s *service) AddLine(ctx context.Context, userID uuid.UUID, input AddLineInput) (*CartDTO, error) {
	if input.Qty < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	product, err := s.products.FindByID(ctx, input.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}

	cart, err := s.ensureActiveCart(ctx, userID, product.Currency)
	if err != nil {
		return nil, err
	}
	if cart.Currency != product.Currency {
		lines, err := s.repo.ListLines(ctx, cart.ID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list cart lines")
		}
		if len(lines) > 0 {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "cart holds items in a different currency").
				WithDetails(map[string]string{"cart_currency": cart.Currency.String(), "product_currency": product.Currency.String()})
		}
		if err := s.repo.SetCurrency(ctx, cart.ID, product.Currency); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "set cart currency")
		}
		cart.Currency = product.Currency
	}

	// The read-accumulate-save runs under a row lock so two adds for the
	// same product serialize instead of overwriting each other's quantity.
	addOnce := func() error {
		return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			newQty := input.Qty
			line, err := s.repo.GetLineForUpdateTx(tx, cart.ID, product.ID)
			switch {
			case err == nil:
				newQty += line.Qty
			case errors.Is(err, gorm.ErrRecordNotFound):
				line = nil
			default:
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart line")
			}

			// Advisory early check; the authoritative guard runs at checkout.
			if newQty > product.Stock {
				return pkgerrors.New(pkgerrors.CodeConflict, "insufficient stock").
					WithDetails(map[string]int{"available": product.Stock, "requested": newQty})
			}

			unit, err := pricing.ResolveUnitPrice(pricing.TierPrices{
				Price1Cents: int64(product.Price1Cents),
				Price2Cents: int64(product.Price2Cents),
				Price3Cents: int64(product.Price3Cents),
			}, newQty)
			if err != nil {
				return err
			}

			if line == nil {
				store, err := s.stores.FindByID(ctx, product.StoreID)
				if err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store")
				}
				line = &models.CartLine{
					CartID:      cart.ID,
					ProductID:   product.ID,
					StoreID:     product.StoreID,
					ProductName: product.Name,
					StoreName:   store.Name,
					ImageURL:    product.ImageURL,
				}
			}
			line.Qty = newQty
			line.UnitPriceCents = int(unit)
			line.LineTotalCents = int(unit) * newQty
			return s.repo.SaveLineTx(tx, line)
		})
	}

	err = addOnce()
	if dbpkg.IsUniqueViolation(err, "ux_cart_lines_cart_product") {
		// Lost an insert race for a brand-new line. The second pass locks
		// the winner's row and accumulates into it.
		err = addOnce()
	}
	if err != nil {
		if appErr := pkgerrors.As(err); appErr != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart line")
	}
	return s.summarize(ctx, cart)
}

// RemoveLine drops the product's line entirely. Removing an absent product
// is a no-op.
func (s *service) RemoveLine(ctx context.Context, userID, productID uuid.UUID) (*CartDTO, error) {
	cart, err := s.repo.FindActiveByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return s.emptySummary(), nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if err := s.repo.DeleteLine(ctx, cart.ID, productID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete cart line")
	}
	return s.summarize(ctx, cart)
}

// Clear empties the cart.
func (s *service) Clear(ctx context.Context, userID uuid.UUID) (*CartDTO, error) {
	cart, err := s.repo.FindActiveByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return s.emptySummary(), nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if err := s.repo.DeleteAllLines(ctx, cart.ID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	return s.summarize(ctx, cart)
}

func (s *service) ensureActiveCart(ctx context.Context, userID uuid.UUID, currency enums.Currency) (*models.CartRecord, error) {
	cart, err := s.repo.FindActiveByUser(ctx, userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	cart, err = s.repo.CreateActive(ctx, userID, currency)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cart")
	}
	return cart, nil
}

func (s *service) summarize(ctx context.Context, cart *models.CartRecord) (*CartDTO, error) {
	lines, err := s.repo.ListLines(ctx, cart.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list cart lines")
	}

	dto := &CartDTO{
		ID:       cart.ID,
		Currency: cart.Currency,
		Status:   cart.Status,
		Lines:    make([]LineDTO, 0, len(lines)),
	}
	for i := range lines {
		line := &lines[i]
		dto.Lines = append(dto.Lines, lineFromModel(line))
		dto.ItemCount += line.Qty
		dto.SubtotalCents += int64(line.LineTotalCents)
	}
	if len(lines) > 0 {
		dto.EstimatedShippingCents = s.shipping.ShippingCost(dto.SubtotalCents)
	}
	dto.EstimatedTotalCents = dto.SubtotalCents + dto.EstimatedShippingCents
	return dto, nil
}

func (s *service) emptySummary() *CartDTO {
	return &CartDTO{
		Status: enums.CartStatusActive,
		Lines:  []LineDTO{},
	}
}
