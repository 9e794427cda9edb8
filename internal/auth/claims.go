package auth

import (
	"time"
)

// AccessClaims represents the claims stored in a PASETO access token.
// These are encrypted in v4.local tokens, so they're not readable without the key.
//
// Tokens carry no expiration claim. A token stays valid until the account it
// references disappears, at which point resolution falls back to anonymous.
type AccessClaims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`

	// Standard PASETO claims
	Issuer   string    `json:"iss"`
	Subject  string    `json:"sub"`
	Audience string    `json:"aud"`
	IssuedAt time.Time `json:"iat"`
	TokenID  string    `json:"jti"`
}
