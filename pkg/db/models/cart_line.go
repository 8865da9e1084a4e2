package models

import (
	"time"

	"github.com/google/uuid"
)

// CartLine aggregates one product's quantity inside a cart. At most one
// line per product (unique cart_id+product_id); adds accumulate into the
// existing line and re-resolve the unit price for the new total quantity.
type CartLine struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CartID         uuid.UUID `gorm:"column:cart_id;type:uuid;not null;uniqueIndex:ux_cart_lines_cart_product"`
	ProductID      uuid.UUID `gorm:"column:product_id;type:uuid;not null;uniqueIndex:ux_cart_lines_cart_product"`
	StoreID        uuid.UUID `gorm:"column:store_id;type:uuid;not null"`
	ProductName    string    `gorm:"column:product_name;not null"`
	StoreName      string    `gorm:"column:store_name;not null"`
	ImageURL       *string   `gorm:"column:image_url"`
	Qty            int       `gorm:"column:qty;not null"`
	UnitPriceCents int       `gorm:"column:unit_price_cents;not null"`
	LineTotalCents int       `gorm:"column:line_total_cents;not null"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
