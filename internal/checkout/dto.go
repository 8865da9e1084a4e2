package checkout

import (
	"github.com/pati-platform/pati-backend/pkg/types"
)

// Input carries everything the buyer submits at checkout. For affiliate
// sales Customer holds the client's details; otherwise it may be left
// empty and the session user's details are snapshotted instead.
type Input struct {
	Customer        types.Customer `json:"customer"`
	ShippingAddress types.Address  `json:"shipping_address"`
	PaymentMethod   string         `json:"payment_method" validate:"required"`
	ForClient       bool           `json:"for_client"`
}
