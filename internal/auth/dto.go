package auth

import (
	"github.com/pati-platform/pati-backend/internal/users"
)

// RegisterRequest carries the self-service signup payload.
type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Phone     string `json:"phone,omitempty"`
	Role      string `json:"role,omitempty" validate:"omitempty,oneof=customer affiliate"`
}

// LoginRequest carries the credential payload.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest exchanges an expired access token for a fresh pair.
type RefreshRequest struct {
	AccessToken  string `json:"access_token" validate:"required"`
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// AuthResponse is returned from login, register, and refresh. HomeRoute is
// the client route the UI should land on for the user's role.
type AuthResponse struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	HomeRoute    string         `json:"home_route"`
	User         *users.UserDTO `json:"user"`
}
