package products

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pati-platform/pati-backend/pkg/db/models"
	"github.com/pati-platform/pati-backend/pkg/enums"
	pkgerrors "github.com/pati-platform/pati-backend/pkg/errors"
	"github.com/pati-platform/pati-backend/pkg/pagination"
	"github.com/pati-platform/pati-backend/pkg/pricing"
)

type productRepository interface {
	Create(ctx context.Context, product *models.Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter ListFilter, params pagination.Params) ([]models.Product, string, error)
}

type storeLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Store, error)
}

// Service exposes catalog operations.
type Service interface {
	Create(ctx context.Context, actor Actor, input CreateProductInput) (*ProductDTO, error)
	Update(ctx context.Context, actor Actor, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	Delete(ctx context.Context, actor Actor, productID uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*ProductDTO, error)
	List(ctx context.Context, filter ListFilter, params pagination.Params) (*ProductPage, error)
	ListForStore(ctx context.Context, actor Actor, params pagination.Params) (*ProductPage, error)
}

// Actor identifies the authenticated staff member performing a catalog change.
type Actor struct {
	UserID  uuid.UUID
	Role    enums.UserRole
	StoreID *uuid.UUID
}

type service struct {
	repo   productRepository
	stores storeLoader
}

// NewService builds a product service with the provided repositories.
func NewService(repo productRepository, stores storeLoader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if stores == nil {
		return nil, fmt.Errorf("store repository required")
	}
	return &service{repo: repo, stores: stores}, nil
}

func (s *service) Create(ctx context.Context, actor Actor, input CreateProductInput) (*ProductDTO, error) {
	storeID, err := s.authorizeVendor(ctx, actor)
	if err != nil {
		return nil, err
	}

	currency, err := enums.ParseCurrency(input.Currency)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unsupported currency")
	}
	tiers := pricing.TierPrices{
		Price1Cents: int64(input.Price1Cents),
		Price2Cents: int64(input.Price2Cents),
		Price3Cents: int64(input.Price3Cents),
	}
	if err := pricing.ValidateTiers(tiers); err != nil {
		return nil, err
	}
	if input.Stock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
	}

	product := &models.Product{
		StoreID:     storeID,
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		ImageURL:    input.ImageURL,
		Category:    strings.TrimSpace(input.Category),
		Currency:    currency,
		Price1Cents: input.Price1Cents,
		Price2Cents: input.Price2Cents,
		Price3Cents: input.Price3Cents,
		Stock:       input.Stock,
		IsActive:    true,
	}
	if product.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}
	if product.Category == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category is required")
	}

	if err := s.repo.Create(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	return FromModel(product), nil
}

func (s *service) Update(ctx context.Context, actor Actor, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	storeID, err := s.authorizeVendor(ctx, actor)
	if err != nil {
		return nil, err
	}

	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if product.StoreID != storeID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "product belongs to another store")
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name cannot be empty")
		}
		product.Name = name
	}
	if input.Description != nil {
		product.Description = input.Description
	}
	if input.ImageURL != nil {
		product.ImageURL = input.ImageURL
	}
	if input.Category != nil {
		category := strings.TrimSpace(*input.Category)
		if category == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "category cannot be empty")
		}
		product.Category = category
	}
	if input.Price1Cents != nil {
		product.Price1Cents = *input.Price1Cents
	}
	if input.Price2Cents != nil {
		product.Price2Cents = *input.Price2Cents
	}
	if input.Price3Cents != nil {
		product.Price3Cents = *input.Price3Cents
	}
	if input.Stock != nil {
		if *input.Stock < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
		}
		product.Stock = *input.Stock
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}

	tiers := pricing.TierPrices{
		Price1Cents: int64(product.Price1Cents),
		Price2Cents: int64(product.Price2Cents),
		Price3Cents: int64(product.Price3Cents),
	}
	if err := pricing.ValidateTiers(tiers); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}
	return FromModel(product), nil
}

// Delete removes a listing from the actor's catalog. Order lines keep
// their snapshot, so history is unaffected.
func (s *service) Delete(ctx context.Context, actor Actor, productID uuid.UUID) error {
	storeID, err := s.authorizeVendor(ctx, actor)
	if err != nil {
		return err
	}

	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if product.StoreID != storeID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "product belongs to another store")
	}

	if err := s.repo.Delete(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}
	return nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return FromModel(product), nil
}

func (s *service) List(ctx context.Context, filter ListFilter, params pagination.Params) (*ProductPage, error) {
	filter.IncludeHidden = false
	return s.list(ctx, filter, params)
}

// ListForStore returns the actor's own catalog including hidden listings.
func (s *service) ListForStore(ctx context.Context, actor Actor, params pagination.Params) (*ProductPage, error) {
	storeID, err := s.authorizeVendor(ctx, actor)
	if err != nil {
		return nil, err
	}
	filter := ListFilter{StoreID: &storeID, IncludeHidden: true}
	return s.list(ctx, filter, params)
}

func (s *service) list(ctx context.Context, filter ListFilter, params pagination.Params) (*ProductPage, error) {
	rows, next, err := s.repo.List(ctx, filter, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	items := make([]*ProductDTO, 0, len(rows))
	for i := range rows {
		items = append(items, FromModel(&rows[i]))
	}
	return &ProductPage{Items: items, NextCursor: next}, nil
}

func (s *service) authorizeVendor(ctx context.Context, actor Actor) (uuid.UUID, error) {
	if !actor.Role.IsVendorStaff() {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "vendor role required")
	}
	if actor.StoreID == nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "no store bound to account")
	}
	store, err := s.stores.FindByID(ctx, *actor.StoreID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
		}
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store")
	}
	if !store.IsActive {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "store is disabled")
	}
	return store.ID, nil
}
