package auth

import (
	"fmt"
	"time"
)

// TokenService defines the interface for bearer token creation and
// validation. Implementations: JWTService (HS256) and PasetoService
// (PASETO v4.local).
type TokenService interface {
	CreateToken(userID int64, duration time.Duration) (string, error)
	VerifyToken(tokenStr string) (*TokenClaims, error)
}

// TokenClaims represents the claims carried by an access token.
type TokenClaims struct {
	UserID    int64     `json:"user_id"`
	IssuedAt  time.Time `json:"iat"`
	ExpiresAt time.Time `json:"exp"`
}

// NewTokenService builds the token service selected by config.
func NewTokenService(scheme string, secret []byte) (TokenService, error) {
	switch scheme {
	case "jwt":
		return NewJWTService(secret)
	case "paseto":
		return NewPasetoService(secret)
	default:
		return nil, fmt.Errorf("unknown token scheme %q", scheme)
	}
}
