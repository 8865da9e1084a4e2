package enums

import "fmt"

// OrderType distinguishes who an order was placed for.
type OrderType string

const (
	// OrderTypeNormal is a customer buying for themselves.
	OrderTypeNormal OrderType = "normal"
	// OrderTypeAffiliateSale is an affiliate ordering on behalf of a client.
	OrderTypeAffiliateSale OrderType = "affiliate_sale"
	// OrderTypeAffiliatePurchase is an affiliate buying for themselves.
	OrderTypeAffiliatePurchase OrderType = "affiliate_purchase"
)

var validOrderTypes = []OrderType{
	OrderTypeNormal,
	OrderTypeAffiliateSale,
	OrderTypeAffiliatePurchase,
}

// String implements fmt.Stringer.
func (o OrderType) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OrderType.
func (o OrderType) IsValid() bool {
	for _, candidate := range validOrderTypes {
		if candidate == o {
			return true
		}
	}
	return false
}

// ParseOrderType converts raw input into an OrderType.
func ParseOrderType(value string) (OrderType, error) {
	for _, candidate := range validOrderTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order type %q", value)
}
