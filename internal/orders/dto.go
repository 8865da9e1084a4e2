package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/pati-platform/pati-backend/pkg/db/models"
	"github.com/pati-platform/pati-backend/pkg/enums"
	"github.com/pati-platform/pati-backend/pkg/types"
)

// LineDTO is one snapshotted item inside an order.
type LineDTO struct {
	ProductID      *uuid.UUID     `json:"product_id,omitempty"`
	StoreID        uuid.UUID      `json:"store_id"`
	Name           string         `json:"name"`
	StoreName      string         `json:"store_name"`
	Currency       enums.Currency `json:"currency"`
	UnitPriceCents int            `json:"unit_price_cents"`
	Qty            int            `json:"qty"`
	TotalCents     int            `json:"total_cents"`
}

// OrderDTO is the public projection of an order.
type OrderDTO struct {
	ID              uuid.UUID           `json:"id"`
	OrderNumber     int64               `json:"order_number"`
	UserID          uuid.UUID           `json:"user_id"`
	Type            enums.OrderType     `json:"type"`
	Status          enums.OrderStatus   `json:"status"`
	Customer        types.Customer      `json:"customer"`
	ShippingAddress types.Address       `json:"shipping_address"`
	PaymentMethod   enums.PaymentMethod `json:"payment_method"`
	Currency        enums.Currency      `json:"currency"`
	SubtotalCents   int                 `json:"subtotal_cents"`
	ShippingCents   int                 `json:"shipping_cents"`
	TotalCents      int                 `json:"total_cents"`
	AffiliateID     *uuid.UUID          `json:"affiliate_id,omitempty"`
	AffiliateName   *string             `json:"affiliate_name,omitempty"`
	Lines           []LineDTO           `json:"lines"`
	CreatedAt       time.Time           `json:"created_at"`
}

// FromModel maps an order row (with lines) to its public projection.
func FromModel(order *models.Order) *OrderDTO {
	if order == nil {
		return nil
	}
	dto := &OrderDTO{
		ID:              order.ID,
		OrderNumber:     order.OrderNumber,
		UserID:          order.UserID,
		Type:            order.Type,
		Status:          order.Status,
		Customer:        order.Customer,
		ShippingAddress: order.ShippingAddress,
		PaymentMethod:   order.PaymentMethod,
		Currency:        order.Currency,
		SubtotalCents:   order.SubtotalCents,
		ShippingCents:   order.ShippingCents,
		TotalCents:      order.TotalCents,
		AffiliateID:     order.AffiliateID,
		AffiliateName:   order.AffiliateName,
		Lines:           make([]LineDTO, 0, len(order.Lines)),
		CreatedAt:       order.CreatedAt,
	}
	for i := range order.Lines {
		line := &order.Lines[i]
		dto.Lines = append(dto.Lines, LineDTO{
			ProductID:      line.ProductID,
			StoreID:        line.StoreID,
			Name:           line.Name,
			StoreName:      line.StoreName,
			Currency:       line.Currency,
			UnitPriceCents: line.UnitPriceCents,
			Qty:            line.Qty,
			TotalCents:     line.TotalCents,
		})
	}
	return dto
}

// OrderPage is one page of order history.
type OrderPage struct {
	Items      []*OrderDTO `json:"items"`
	NextCursor string      `json:"next_cursor,omitempty"`
}
