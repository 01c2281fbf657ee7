package domain

import "time"

// TokenPair is what the token endpoint returns: a short-lived access token
// (JWT) and an opaque refresh token.
type TokenPair struct {
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token,omitempty"`
	TokenType    string        `json:"token_type,omitempty"` // typically "bearer"
	ExpiresIn    time.Duration `json:"expires_in"`           // seconds until expiry
	Scope        string        `json:"scope,omitempty"`      // space-delimited
}

// RefreshToken models a stored refresh token record. Only the fingerprint
// of the opaque token is persisted.
type RefreshToken struct {
	ID        string
	UserID    string // empty for client_credentials grants
	ClientID  string
	TokenHash string // deterministic fingerprint (base64url SHA-256)
	Scopes    []string
	ExpiresAt time.Time
	Revoked   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AccessTokenClaims are the claims embedded in the JWT.
type AccessTokenClaims struct {
	Subject  string   `json:"sub"`
	ClientID string   `json:"cid"`
	Scopes   []string `json:"scp"`
	Exp      int64    `json:"exp"`
	Iat      int64    `json:"iat"`
	Iss      string   `json:"iss"`
}
