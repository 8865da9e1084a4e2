// Package pricing implements the quantity-tier price resolver and the flat
// shipping rule shared by cart and checkout.
package pricing

import (
	"github.com/pati-platform/pati-backend/pkg/errors"
)

// Quantity tier brackets. A product carries three prices; the bracket the
// total line quantity falls in selects which one applies to every unit.
const (
	tier2MinQty = 11
	tier3MinQty = 51
)

// TierPrices holds a product's three price points in cents.
type TierPrices struct {
	Price1Cents int64
	Price2Cents int64
	Price3Cents int64
}

// ResolveUnitPrice returns the per-unit price in cents for the given total
// quantity. All units in a line share the resolved price; crossing a bracket
// boundary re-prices the whole line, never just the marginal units.
func ResolveUnitPrice(p TierPrices, qty int) (int64, error) {
	if qty < 1 {
		return 0, errors.New(errors.CodeValidation, "quantity must be at least 1")
	}
	switch {
	case qty >= tier3MinQty:
		return p.Price3Cents, nil
	case qty >= tier2MinQty:
		return p.Price2Cents, nil
	default:
		return p.Price1Cents, nil
	}
}

// ValidateTiers enforces that tier prices are positive and non-increasing,
// so a larger quantity never pays a higher unit price.
func ValidateTiers(p TierPrices) error {
	if p.Price1Cents <= 0 || p.Price2Cents <= 0 || p.Price3Cents <= 0 {
		return errors.New(errors.CodeValidation, "tier prices must be positive")
	}
	if p.Price2Cents > p.Price1Cents || p.Price3Cents > p.Price2Cents {
		return errors.New(errors.CodeValidation, "tier prices must be non-increasing")
	}
	return nil
}

// ShippingRule carries the flat shipping parameters in cents.
type ShippingRule struct {
	FreeThresholdCents int64
	FlatCents          int64
}

// ShippingCost returns the shipping charge for a subtotal: zero at or above
// the free threshold, the flat rate below it.
func (r ShippingRule) ShippingCost(subtotalCents int64) int64 {
	if subtotalCents >= r.FreeThresholdCents {
		return 0
	}
	return r.FlatCents
}
