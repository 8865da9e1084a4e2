package products

import (
	"time"

	"github.com/google/uuid"

	"github.com/pati-platform/pati-backend/pkg/db/models"
	"github.com/pati-platform/pati-backend/pkg/enums"
)

// ProductDTO is the public projection of a product listing.
type ProductDTO struct {
	ID          uuid.UUID      `json:"id"`
	StoreID     uuid.UUID      `json:"store_id"`
	Name        string         `json:"name"`
	Description *string        `json:"description,omitempty"`
	ImageURL    *string        `json:"image_url,omitempty"`
	Category    string         `json:"category"`
	Currency    enums.Currency `json:"currency"`
	Price1Cents int            `json:"price1_cents"`
	Price2Cents int            `json:"price2_cents"`
	Price3Cents int            `json:"price3_cents"`
	Stock       int            `json:"stock"`
	IsActive    bool           `json:"is_active"`
	CreatedAt   time.Time      `json:"created_at"`
}

// FromModel maps a product row to its public projection.
func FromModel(product *models.Product) *ProductDTO {
	if product == nil {
		return nil
	}
	return &ProductDTO{
		ID:          product.ID,
		StoreID:     product.StoreID,
		Name:        product.Name,
		Description: product.Description,
		ImageURL:    product.ImageURL,
		Category:    product.Category,
		Currency:    product.Currency,
		Price1Cents: product.Price1Cents,
		Price2Cents: product.Price2Cents,
		Price3Cents: product.Price3Cents,
		Stock:       product.Stock,
		IsActive:    product.IsActive,
		CreatedAt:   product.CreatedAt,
	}
}

// CreateProductInput captures the vendor payload for a new listing.
type CreateProductInput struct {
	Name        string  `json:"name" validate:"required,min=2"`
	Description *string `json:"description,omitempty"`
	ImageURL    *string `json:"image_url,omitempty"`
	Category    string  `json:"category" validate:"required"`
	Currency    string  `json:"currency" validate:"required,oneof=USD CUP"`
	Price1Cents int     `json:"price1_cents" validate:"required,gt=0"`
	Price2Cents int     `json:"price2_cents" validate:"required,gt=0"`
	Price3Cents int     `json:"price3_cents" validate:"required,gt=0"`
	Stock       int     `json:"stock" validate:"gte=0"`
}

// UpdateProductInput captures the vendor payload for listing mutation.
// Price tiers move together so the non-increasing rule can be re-checked.
type UpdateProductInput struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=2"`
	Description *string `json:"description,omitempty"`
	ImageURL    *string `json:"image_url,omitempty"`
	Category    *string `json:"category,omitempty"`
	Price1Cents *int    `json:"price1_cents,omitempty" validate:"omitempty,gt=0"`
	Price2Cents *int    `json:"price2_cents,omitempty" validate:"omitempty,gt=0"`
	Price3Cents *int    `json:"price3_cents,omitempty" validate:"omitempty,gt=0"`
	Stock       *int    `json:"stock,omitempty" validate:"omitempty,gte=0"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

// ListFilter narrows the catalog listing.
type ListFilter struct {
	StoreID       *uuid.UUID
	Category      string
	Search        string
	IncludeHidden bool
}

// ProductPage is one page of catalog results.
type ProductPage struct {
	Items      []*ProductDTO `json:"items"`
	NextCursor string        `json:"next_cursor,omitempty"`
}
