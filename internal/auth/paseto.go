package auth

import (
	"fmt"
	"time"

	"aidanwoods.dev/go-paseto"
	"github.com/google/uuid"
)

const tokenAudience = "bookreview-client"

// PasetoIssuer issues encrypted PASETO v4.local tokens.
type PasetoIssuer struct {
	symmetricKey paseto.V4SymmetricKey
	ttl          time.Duration
	now          func() time.Time
}

// NewPasetoIssuer creates a PASETO issuer from a 32-byte key.
func NewPasetoIssuer(key []byte, ttl time.Duration) (*PasetoIssuer, error) {
	if len(key) != keyLength {
		return nil, fmt.Errorf("PASETO v4 key must be exactly %d bytes, got %d", keyLength, len(key))
	}

	symmetricKey, err := paseto.V4SymmetricKeyFromBytes(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create PASETO symmetric key: %w", err)
	}

	return &PasetoIssuer{symmetricKey: symmetricKey, ttl: ttl, now: time.Now}, nil
}

// TTL returns the token lifetime.
func (i *PasetoIssuer) TTL() time.Duration { return i.ttl }

// Issue encrypts a token for userID.
func (i *PasetoIssuer) Issue(userID string) (string, time.Time, error) {
	now := i.now()
	expiresAt := now.Add(i.ttl)

	token := paseto.NewToken()
	token.SetIssuer(tokenIssuer)
	token.SetSubject(userID)
	token.SetAudience(tokenAudience)
	token.SetIssuedAt(now)
	token.SetNotBefore(now)
	token.SetExpiration(expiresAt)
	token.SetJti(uuid.NewString())

	return token.V4Encrypt(i.symmetricKey, nil), expiresAt, nil
}

// Verify decrypts the token, checks its claims and returns them.
func (i *PasetoIssuer) Verify(tokenString string) (*Claims, error) {
	now := i.now()

	parser := paseto.NewParserWithoutExpiryCheck()
	parser.AddRule(paseto.ForAudience(tokenAudience))
	parser.AddRule(paseto.IssuedBy(tokenIssuer))

	token, err := parser.ParseV4Local(i.symmetricKey, tokenString, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}

	expiresAt, err := token.GetExpiration()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}
	if !now.Before(expiresAt) {
		return nil, ErrTokenExpired
	}

	subject, err := token.GetSubject()
	if err != nil || subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrTokenInvalid)
	}

	claims := &Claims{Subject: subject, ExpiresAt: expiresAt}
	if issuedAt, err := token.GetIssuedAt(); err == nil {
		claims.IssuedAt = issuedAt
	}
	if jti, err := token.GetJti(); err == nil {
		claims.TokenID = jti
	}
	return claims, nil
}
