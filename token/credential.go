package token

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/jrsteele09/hrdash/internal/errors"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
)

// DefaultTokenType is assumed when the backend (or a legacy persisted value) omits the kind tag
const DefaultTokenType = "bearer"

// Credential is the bearer token issued at login. The access token is opaque: it is stored and
// forwarded as-is and never decoded on the client.
type Credential struct {
	AccessToken string    `json:"access_token"`        // Opaque bearer token
	TokenType   string    `json:"token_type"`          // Kind tag, normally "bearer"
	ExpiresIn   int       `json:"expires_in"`          // Lifetime in seconds from IssuedAt
	IssuedAt    time.Time `json:"issued_at,omitempty"` // Client clock at login
}

func (c *Credential) Empty() bool {
	return c == nil || strings.TrimSpace(c.AccessToken) == ""
}

// OAuth2 bridges the credential to golang.org/x/oauth2 so header formatting follows its rules
// ("bearer" is normalised to "Bearer").
func (c *Credential) OAuth2() *oauth2.Token {
	tokenType := c.TokenType
	if tokenType == "" {
		tokenType = DefaultTokenType
	}
	return &oauth2.Token{
		AccessToken: c.AccessToken,
		TokenType:   tokenType,
		ExpiresIn:   int64(c.ExpiresIn),
	}
}

// SetAuthHeader sets the Authorization header on r
func (c *Credential) SetAuthHeader(r *http.Request) {
	c.OAuth2().SetAuthHeader(r)
}

// Encode serialises the credential for durable storage
func (c *Credential) Encode() (string, error) {
	if c.Empty() {
		return "", errors.New("[Credential.Encode] empty access token")
	}
	data, err := json.Marshal(c)
	if err != nil {
		return "", errors.Wrap(err, "[Credential.Encode] marshal")
	}
	return string(data), nil
}

// DecodeCredential parses a persisted credential. A value that is not a JSON document is the
// bare token string older installs stored, and is accepted as a bearer token. Unusable values
// return an error matching apperrors.ErrInvalidSession.
func DecodeCredential(value string) (*Credential, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, errors.Wrap(apperrors.ErrInvalidSession, "[DecodeCredential] empty value")
	}
	if !strings.HasPrefix(value, "{") {
		return &Credential{AccessToken: value, TokenType: DefaultTokenType}, nil
	}

	var c Credential
	if err := json.Unmarshal([]byte(value), &c); err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidSession, "[DecodeCredential] unmarshal: %v", err)
	}
	if c.Empty() {
		return nil, errors.Wrap(apperrors.ErrInvalidSession, "[DecodeCredential] stored credential has no access token")
	}
	if c.TokenType == "" {
		c.TokenType = DefaultTokenType
	}
	return &c, nil
}
