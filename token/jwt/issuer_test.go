package jwt_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/hrdash/token"
	"github.com/jrsteele09/hrdash/token/jwt"
	"github.com/jrsteele09/hrdash/users"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestIssuer(t *testing.T) {
	revoked := token.NewRevocationList()
	issuer, err := jwt.NewIssuer([]byte("secret"), revoked)
	require.NoError(t, err)
	identity := &users.Identity{ID: 7, Username: "alice", Role: users.RoleHR}

	t.Run("issue and validate", func(t *testing.T) {
		raw, claims, err := issuer.Issue(identity, time.Hour)
		require.NoError(t, err)
		require.NotEmpty(t, claims.ID)

		got, err := issuer.Validate(raw)
		require.NoError(t, err)
		require.Equal(t, "alice", got.Username)
		require.Equal(t, string(users.RoleHR), got.Role)
		id, err := got.UserID()
		require.NoError(t, err)
		require.Equal(t, int64(7), id)
	})

	t.Run("every token has its own id", func(t *testing.T) {
		_, a, err := issuer.Issue(identity, time.Hour)
		require.NoError(t, err)
		_, b, err := issuer.Issue(identity, time.Hour)
		require.NoError(t, err)
		require.NotEqual(t, a.ID, b.ID)
	})

	t.Run("revoked", func(t *testing.T) {
		raw, claims, err := issuer.Issue(identity, time.Hour)
		require.NoError(t, err)
		require.NoError(t, revoked.Revoke(claims.ID, claims.ExpiresAt.Time))

		_, err = issuer.Validate(raw)
		require.True(t, errors.Is(err, jwt.ErrTokenRevoked))
	})

	t.Run("expired", func(t *testing.T) {
		raw, _, err := issuer.Issue(identity, -time.Minute)
		require.NoError(t, err)
		_, err = issuer.Validate(raw)
		require.True(t, errors.Is(err, jwt.ErrInvalidToken))
	})

	t.Run("wrong secret", func(t *testing.T) {
		other, err := jwt.NewIssuer([]byte("other"), nil)
		require.NoError(t, err)
		raw, _, err := other.Issue(identity, time.Hour)
		require.NoError(t, err)
		_, err = issuer.Validate(raw)
		require.True(t, errors.Is(err, jwt.ErrInvalidToken))
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := issuer.Validate("not-a-token")
		require.Error(t, err)
	})
}

func TestNewIssuerRequiresSecret(t *testing.T) {
	_, err := jwt.NewIssuer(nil, nil)
	require.Error(t, err)
}
