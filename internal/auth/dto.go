package auth

import (
	"github.com/google/uuid"

	"github.com/poojakit/poojakit-backend/internal/users"
)

// SignupRequest carries the fields accepted by POST /api/signup.
type SignupRequest struct {
	Name     string  `json:"name" validate:"required"`
	Email    string  `json:"email" validate:"required,email"`
	Phone    *string `json:"phone,omitempty"`
	Password string  `json:"password" validate:"required,min=6"`
}

// LoginRequest carries the fields accepted by POST /api/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthResult bundles the public user fields with a freshly minted session
// token. The token doubles as the cookie value and the bearer credential.
type AuthResult struct {
	User  *users.UserDTO
	Token string
}

// Identity is the resolved, store-verified subject of a session token.
type Identity struct {
	UserID  uuid.UUID
	Name    string
	Email   string
	IsAdmin bool
}
