package jwt

import (
	"fmt"
	"strconv"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jrsteele09/hrdash/users"
	"github.com/pkg/errors"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenRevoked = errors.New("token revoked")
)

// RevokedChecker is an interface for checking if a token has been revoked
type RevokedChecker interface {
	IsRevoked(jti string) bool
}

// Claims are the access token claims the backend issues: subject is the numeric user id
type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwtlib.RegisteredClaims
}

// UserID parses the numeric subject
func (c *Claims) UserID() (int64, error) {
	return strconv.ParseInt(c.Subject, 10, 64)
}

// Issuer signs and validates HS256 access tokens. It backs the stub backend only; the client
// never looks inside a token.
type Issuer struct {
	secret  []byte
	revoked RevokedChecker
}

func NewIssuer(secret []byte, revoked RevokedChecker) (*Issuer, error) {
	if len(secret) == 0 {
		return nil, errors.New("[NewIssuer] secret is required")
	}
	return &Issuer{secret: secret, revoked: revoked}, nil
}

// Issue creates a signed access token for identity valid for ttl
func (i *Issuer) Issue(identity *users.Identity, ttl time.Duration) (string, *Claims, error) {
	now := NowTimeFunc()
	claims := &Claims{
		Username: identity.Username,
		Role:     string(identity.Role),
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   strconv.FormatInt(identity.ID, 10),
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(ttl)),
			ID:        uuid.New().String(),
		},
	}
	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign JWT token: %w", err)
	}
	return signed, claims, nil
}

// Validate verifies signature, expiry and revocation
func (i *Issuer) Validate(raw string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwtlib.ParseWithClaims(raw, claims, func(t *jwtlib.Token) (interface{}, error) {
		return i.secret, nil
	},
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
		jwtlib.WithTimeFunc(NowTimeFunc),
	)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidToken, err.Error())
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if i.revoked != nil && i.revoked.IsRevoked(claims.ID) {
		return nil, ErrTokenRevoked
	}
	return claims, nil
}
