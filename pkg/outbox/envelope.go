package outbox

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ActorRef identifies who produced the event.
type ActorRef struct {
	UserID  uuid.UUID  `json:"userId"`
	Role    string     `json:"role,omitempty"`
	StoreID *uuid.UUID `json:"storeId,omitempty"`
}

// PayloadEnvelope is the stable payload structure stored in outbox_events.
type PayloadEnvelope struct {
	Version    int             `json:"version"`
	EventID    string          `json:"eventId"`
	OccurredAt time.Time       `json:"occurredAt"`
	Actor      *ActorRef       `json:"actor,omitempty"`
	Data       json.RawMessage `json:"data"`
}

// OrderPlacedData is the event body for order.placed.
type OrderPlacedData struct {
	OrderID     uuid.UUID `json:"orderId"`
	OrderNumber int64     `json:"orderNumber"`
	OrderType   string    `json:"orderType"`
	UserID      uuid.UUID `json:"userId"`
	Currency    string    `json:"currency"`
	TotalCents  int64     `json:"totalCents"`
}

// CommissionAccruedData is the event body for affiliate.commission_accrued.
type CommissionAccruedData struct {
	CommissionID    uuid.UUID `json:"commissionId"`
	OrderID         uuid.UUID `json:"orderId"`
	AffiliateID     uuid.UUID `json:"affiliateId"`
	CommissionCents int64     `json:"commissionCents"`
}
