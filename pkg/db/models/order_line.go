package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/pati-platform/pati-backend/pkg/enums"
)

// OrderLine captures the snapshot of each item within an order.
type OrderLine struct {
	ID             uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID        uuid.UUID      `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID      *uuid.UUID     `gorm:"column:product_id;type:uuid"`
	StoreID        uuid.UUID      `gorm:"column:store_id;type:uuid;not null"`
	Name           string         `gorm:"column:name;not null"`
	StoreName      string         `gorm:"column:store_name;not null"`
	Currency       enums.Currency `gorm:"column:currency;type:text;not null"`
	UnitPriceCents int            `gorm:"column:unit_price_cents;not null"`
	Qty            int            `gorm:"column:qty;not null"`
	TotalCents     int            `gorm:"column:total_cents;not null"`
	CreatedAt      time.Time      `gorm:"column:created_at;autoCreateTime"`
}
