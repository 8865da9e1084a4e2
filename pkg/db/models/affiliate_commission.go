package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/pati-platform/pati-backend/pkg/enums"
)

// AffiliateCommission records the commission accrued by an affiliate for
// a sale placed on behalf of a client. Rate is stored as the decimal
// string applied at accrual time so later rate changes never rewrite
// history.
type AffiliateCommission struct {
	ID              uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID         uuid.UUID              `gorm:"column:order_id;type:uuid;not null;uniqueIndex"`
	AffiliateID     uuid.UUID              `gorm:"column:affiliate_id;type:uuid;not null;index"`
	Rate            string                 `gorm:"column:rate;type:numeric(6,4);not null"`
	BaseCents       int                    `gorm:"column:base_cents;not null"`
	CommissionCents int                    `gorm:"column:commission_cents;not null"`
	Currency        enums.Currency         `gorm:"column:currency;type:text;not null"`
	Status          enums.CommissionStatus `gorm:"column:status;type:text;not null;default:'accrued'"`
	CreatedAt       time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}
