package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/pati-platform/pati-backend/pkg/enums"
)

// Product represents a vendor listing with three quantity-tiered unit
// prices: Price1Cents for 1-10 units, Price2Cents for 11-50, Price3Cents
// for 51 and above. Tiers are non-increasing; the product service enforces
// it on create and update.
type Product struct {
	ID          uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	StoreID     uuid.UUID      `gorm:"column:store_id;type:uuid;not null;index"`
	Name        string         `gorm:"column:name;not null"`
	Description *string        `gorm:"column:description"`
	ImageURL    *string        `gorm:"column:image_url"`
	Category    string         `gorm:"column:category;not null;index"`
	Currency    enums.Currency `gorm:"column:currency;type:text;not null;default:'USD'"`
	Price1Cents int            `gorm:"column:price1_cents;not null"`
	Price2Cents int            `gorm:"column:price2_cents;not null"`
	Price3Cents int            `gorm:"column:price3_cents;not null"`
	Stock       int            `gorm:"column:stock;not null;default:0"`
	IsActive    bool           `gorm:"column:is_active;not null;default:true"`
	CreatedAt   time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
