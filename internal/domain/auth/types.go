package auth

import "time"

// CodeInvalidToken marks a rejected bearer token.
const CodeInvalidToken = "invalid_token"

// Config drives token issuance and validation.
type Config struct {
	Secret   string
	Issuer   string
	TokenTTL time.Duration
}

// IssueRequest asks for a service token.
type IssueRequest struct {
	Subject string
	TTL     time.Duration
}

// Token is a signed bearer token.
type Token struct {
	Token     string    `json:"token"`
	TokenID   string    `json:"tokenId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Claims are extracted from a validated token.
type Claims struct {
	Subject   string
	TokenID   string
	ExpiresAt time.Time
}
