package domain

import (
	"time"
)

// TokenClaims is the decoded, unverified payload of an admin token.
type TokenClaims struct {
	ExpiresAt *time.Time     `json:"exp,omitempty"`
	IssuedAt  *time.Time     `json:"iat,omitempty"`
	Subject   string         `json:"sub,omitempty"`
	Email     string         `json:"email,omitempty"`
	Role      string         `json:"role,omitempty"`
	Raw       map[string]any `json:"-"`
}

// HasExpiry reports whether the token carries an exp claim.
func (c *TokenClaims) HasExpiry() bool {
	return c != nil && c.ExpiresAt != nil
}
