package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/pati-platform/pati-backend/pkg/enums"
	"github.com/pati-platform/pati-backend/pkg/types"
)

// Order is the immutable snapshot produced at checkout.
type Order struct {
	ID              uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber     int64               `gorm:"column:order_number;not null;uniqueIndex"`
	UserID          uuid.UUID           `gorm:"column:user_id;type:uuid;not null;index"`
	Type            enums.OrderType     `gorm:"column:type;type:text;not null;default:'normal'"`
	Status          enums.OrderStatus   `gorm:"column:status;type:text;not null;default:'pending'"`
	Customer        types.Customer      `gorm:"column:customer;type:jsonb;serializer:json"`
	ShippingAddress types.Address       `gorm:"column:shipping_address;type:jsonb;serializer:json"`
	PaymentMethod   enums.PaymentMethod `gorm:"column:payment_method;type:text;not null;default:'cash'"`
	Currency        enums.Currency      `gorm:"column:currency;type:text;not null"`
	SubtotalCents   int                 `gorm:"column:subtotal_cents;not null"`
	ShippingCents   int                 `gorm:"column:shipping_cents;not null"`
	TotalCents      int                 `gorm:"column:total_cents;not null"`
	AffiliateID     *uuid.UUID          `gorm:"column:affiliate_id;type:uuid"`
	AffiliateName   *string             `gorm:"column:affiliate_name"`
	Lines           []OrderLine         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
