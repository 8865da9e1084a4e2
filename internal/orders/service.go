package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pati-platform/pati-backend/pkg/db/models"
	"github.com/pati-platform/pati-backend/pkg/enums"
	pkgerrors "github.com/pati-platform/pati-backend/pkg/errors"
	"github.com/pati-platform/pati-backend/pkg/pagination"
)

type orderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.Order, string, error)
	ListByAffiliate(ctx context.Context, affiliateID uuid.UUID, params pagination.Params) ([]models.Order, string, error)
	ListByStore(ctx context.Context, storeID uuid.UUID, params pagination.Params) ([]models.Order, string, error)
}

// Service exposes order history reads.
type Service interface {
	GetByID(ctx context.Context, actorID uuid.UUID, actorRole enums.UserRole, orderID uuid.UUID) (*OrderDTO, error)
	ListMine(ctx context.Context, userID uuid.UUID, params pagination.Params) (*OrderPage, error)
	ListAffiliateSales(ctx context.Context, affiliateID uuid.UUID, params pagination.Params) (*OrderPage, error)
	ListForStore(ctx context.Context, storeID uuid.UUID, params pagination.Params) (*OrderPage, error)
}

type service struct {
	repo orderRepository
}

// NewService builds an order service with the provided repository.
func NewService(repo orderRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	return &service{repo: repo}, nil
}

// GetByID returns the order when the actor owns it, placed it as an
// affiliate, or holds an admin role.
func (s *service) GetByID(ctx context.Context, actorID uuid.UUID, actorRole enums.UserRole, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}

	allowed := order.UserID == actorID ||
		(order.AffiliateID != nil && *order.AffiliateID == actorID) ||
		actorRole == enums.UserRoleOwner || actorRole == enums.UserRoleAdmin
	if !allowed {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return FromModel(order), nil
}

func (s *service) ListMine(ctx context.Context, userID uuid.UUID, params pagination.Params) (*OrderPage, error) {
	rows, next, err := s.repo.ListByUser(ctx, userID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return pageFromRows(rows, next), nil
}

func (s *service) ListAffiliateSales(ctx context.Context, affiliateID uuid.UUID, params pagination.Params) (*OrderPage, error) {
	rows, next, err := s.repo.ListByAffiliate(ctx, affiliateID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list affiliate orders")
	}
	return pageFromRows(rows, next), nil
}

// ListForStore returns orders that include the store's products, for the
// vendor fulfillment view.
func (s *service) ListForStore(ctx context.Context, storeID uuid.UUID, params pagination.Params) (*OrderPage, error) {
	rows, next, err := s.repo.ListByStore(ctx, storeID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list store orders")
	}
	return pageFromRows(rows, next), nil
}

func pageFromRows(rows []models.Order, next string) *OrderPage {
	items := make([]*OrderDTO, 0, len(rows))
	for i := range rows {
		items = append(items, FromModel(&rows[i]))
	}
	return &OrderPage{Items: items, NextCursor: next}
}
