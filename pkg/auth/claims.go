package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SessionTokenPayload captures the data available when minting a session JWT.
type SessionTokenPayload struct {
	UserID  uuid.UUID
	Email   string
	IsAdmin bool
}

// SessionTokenClaims represents the typed JWT issued to clients. It is the
// only session state; there is no server-side session store.
type SessionTokenClaims struct {
	UserID  uuid.UUID `json:"user_id"`
	Email   string    `json:"email"`
	IsAdmin bool      `json:"is_admin"`
	jwt.RegisteredClaims
}
