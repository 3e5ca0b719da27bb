package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the payload shared by every token kind. Kind selects which of
// the optional fields must be present: refresh tokens carry ClientIP.
type Claims struct {
	Kind     Kind   `json:"type"`
	ClientIP string `json:"ip,omitempty"`
	jwt.RegisteredClaims
}

// Extra holds the kind-specific fields supplied at issuance.
type Extra struct {
	ClientIP string
}

// TokenID returns the jti claim.
func (c *Claims) TokenID() string { return c.ID }

// IssuedAtTime returns iat, or the zero time when absent.
func (c *Claims) IssuedAtTime() time.Time {
	if c.IssuedAt == nil {
		return time.Time{}
	}
	return c.IssuedAt.Time.UTC()
}

// ExpiresAtTime returns exp, or the zero time when absent.
func (c *Claims) ExpiresAtTime() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time.UTC()
}
