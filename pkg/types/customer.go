package types

// Customer is the buyer snapshot embedded into an order. For affiliate
// sales these are the client's details, not the session user's.
type Customer struct {
	Name     string `json:"name"`
	LastName string `json:"lastname"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
}
