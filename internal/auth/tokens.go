package auth

import (
	"errors"
	"fmt"
	"time"
)

const tokenIssuer = "bookreview-server"

// Token verification failures. Both surface as 401; the distinction only changes the message.
var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("invalid token")
)

// Claims are the verified contents of a bearer token.
type Claims struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
	TokenID   string
}

// TokenIssuer signs and verifies bearer tokens for a user ID.
type TokenIssuer interface {
	Issue(userID string) (token string, expiresAt time.Time, err error)
	Verify(token string) (*Claims, error)
	TTL() time.Duration
}

// Token formats accepted by NewTokenIssuer.
const (
	FormatJWT    = "jwt"
	FormatPaseto = "paseto"
)

// NewTokenIssuer builds the issuer for format using a 32-byte key.
// An empty format selects JWT.
func NewTokenIssuer(format string, key []byte, ttl time.Duration) (TokenIssuer, error) {
	if ttl <= 0 {
		return nil, errors.New("token lifetime must be positive")
	}

	switch format {
	case "", FormatJWT:
		return NewJWTIssuer(key, ttl)
	case FormatPaseto:
		return NewPasetoIssuer(key, ttl)
	default:
		return nil, fmt.Errorf("unsupported token format: %s", format)
	}
}
