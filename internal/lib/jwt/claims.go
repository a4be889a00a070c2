// Package jwt implements generation and parsing of JWT access tokens
// with custom claim fields.
package jwt

import (
	"time"
)

// Maker describes the contract for issuing and parsing access tokens.
type Maker interface {
	// GenerateToken issues a signed token for the given user.
	GenerateToken(userID int64, email, role string) (string, error)
	// ParseToken validates a token and returns its custom claims.
	ParseToken(tokenStr string) (*CustomClaims, error)
}

// MakerImpl implements Maker using an HS256 secret key and a token TTL.
type MakerImpl struct {
	secretKey string
	tokenTTL  time.Duration
}

// NewJWTMaker creates a MakerImpl from a secret key and token TTL.
func NewJWTMaker(secretKey string, ttl time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey: secretKey,
		tokenTTL:  ttl,
	}
}
