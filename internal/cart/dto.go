package cart

import (
	"github.com/google/uuid"

	"github.com/pati-platform/pati-backend/pkg/db/models"
	"github.com/pati-platform/pati-backend/pkg/enums"
)

// AddLineInput carries the add-to-cart payload.
type AddLineInput struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Qty       int       `json:"qty" validate:"required,gt=0"`
}

// LineDTO is one aggregated product line inside the cart.
type LineDTO struct {
	ProductID      uuid.UUID `json:"product_id"`
	StoreID        uuid.UUID `json:"store_id"`
	ProductName    string    `json:"product_name"`
	StoreName      string    `json:"store_name"`
	ImageURL       *string   `json:"image_url,omitempty"`
	Qty            int       `json:"qty"`
	UnitPriceCents int       `json:"unit_price_cents"`
	LineTotalCents int       `json:"line_total_cents"`
}

// CartDTO is the cart summary returned to clients. EstimatedShippingCents
// and EstimatedTotalCents preview the checkout math for the current content.
type CartDTO struct {
	ID                     uuid.UUID        `json:"id"`
	Currency               enums.Currency   `json:"currency"`
	Status                 enums.CartStatus `json:"status"`
	Lines                  []LineDTO        `json:"lines"`
	ItemCount              int              `json:"item_count"`
	SubtotalCents          int64            `json:"subtotal_cents"`
	EstimatedShippingCents int64            `json:"estimated_shipping_cents"`
	EstimatedTotalCents    int64            `json:"estimated_total_cents"`
}

func lineFromModel(line *models.CartLine) LineDTO {
	return LineDTO{
		ProductID:      line.ProductID,
		StoreID:        line.StoreID,
		ProductName:    line.ProductName,
		StoreName:      line.StoreName,
		ImageURL:       line.ImageURL,
		Qty:            line.Qty,
		UnitPriceCents: line.UnitPriceCents,
		LineTotalCents: line.LineTotalCents,
	}
}
