package token

import (
	"time"

	"github.com/jrsteele09/hrdash/users"
)

// LoginRequest is the body of POST /api/auth/login
type LoginRequest struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	RememberMe bool   `json:"remember_me,omitempty"` // Extends the token lifetime from one day to seven
}

// RegisterRequest is the body of POST /api/auth/register
type RegisterRequest struct {
	Username string  `json:"username"`
	Password string  `json:"password"`
	Email    *string `json:"email,omitempty"`
	FullName *string `json:"full_name,omitempty"`
}

// LoginResponse represents the response from the login endpoint.
type LoginResponse struct {
	// AccessToken is the bearer token to send on every authorized request.
	// Usage: Include in Authorization header: "Bearer <access_token>"
	AccessToken string `json:"access_token"`

	// TokenType indicates how to use the access token (always "bearer").
	TokenType string `json:"token_type"`

	// ExpiresIn is the lifetime in seconds of the access token.
	// Example: 86400 for a normal login, 604800 with remember_me
	ExpiresIn int `json:"expires_in"`

	// User is the profile of the account that logged in.
	User users.Identity `json:"user"`
}

// Credential extracts the credential half of the response, stamped with the issue time
func (r *LoginResponse) Credential(issuedAt time.Time) Credential {
	tokenType := r.TokenType
	if tokenType == "" {
		tokenType = DefaultTokenType
	}
	return Credential{
		AccessToken: r.AccessToken,
		TokenType:   tokenType,
		ExpiresIn:   r.ExpiresIn,
		IssuedAt:    issuedAt.UTC(),
	}
}
