package stores

import (
	"time"

	"github.com/google/uuid"

	"github.com/pati-platform/pati-backend/pkg/db/models"
)

// StoreDTO is the public projection of a store.
type StoreDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	LogoURL     *string   `json:"logo_url,omitempty"`
	OwnerID     uuid.UUID `json:"owner_id"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

// FromModel maps a store row to its public projection.
func FromModel(store *models.Store) *StoreDTO {
	if store == nil {
		return nil
	}
	return &StoreDTO{
		ID:          store.ID,
		Name:        store.Name,
		Description: store.Description,
		LogoURL:     store.LogoURL,
		OwnerID:     store.OwnerID,
		IsActive:    store.IsActive,
		CreatedAt:   store.CreatedAt,
	}
}

// CreateStoreInput captures the fields required to open a store.
type CreateStoreInput struct {
	Name        string  `json:"name" validate:"required,min=2"`
	Description *string `json:"description,omitempty"`
	LogoURL     *string `json:"logo_url,omitempty"`
}

// UpdateStoreInput captures the allowed store fields for mutation.
type UpdateStoreInput struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=2"`
	Description *string `json:"description,omitempty"`
	LogoURL     *string `json:"logo_url,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}
