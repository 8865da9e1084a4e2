package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/pati-platform/pati-backend/pkg/enums"
)

// CartRecord is the single active cart owned by a user. All lines share
// the record's currency; mixing currencies is rejected at add time.
type CartRecord struct {
	ID        uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID        `gorm:"column:user_id;type:uuid;not null;index"`
	Status    enums.CartStatus `gorm:"column:status;type:text;not null;default:'active'"`
	Currency  enums.Currency   `gorm:"column:currency;type:text;not null;default:'USD'"`
	Lines     []CartLine       `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
