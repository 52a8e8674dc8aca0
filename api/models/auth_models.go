// api/models/auth_models.go
package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// LoginRequest is the operator login body. Operator only names the session.
type LoginRequest struct {
	Operator string `json:"operator" binding:"omitempty,max=64"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the signed session token.
type LoginResponse struct {
	Message   string    `json:"message"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SessionResponse describes the caller's session.
type SessionResponse struct {
	Operator  string    `json:"operator"`
	SessionID string    `json:"session_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SessionClaims are the JWT claims of an operator session. The operator is
// the subject; Scope limits the token to the seeding API.
type SessionClaims struct {
	Scope string `json:"scope"`
	jwt.RegisteredClaims
}
