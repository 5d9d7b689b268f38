package session_test

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "github.com/jrsteele09/hrdash/internal/errors"
	"github.com/jrsteele09/hrdash/session"
	"github.com/jrsteele09/hrdash/storage/repofake"
	"github.com/jrsteele09/hrdash/users"
	"github.com/stretchr/testify/require"
)

func TestGuard_Require(t *testing.T) {
	s := newStore(t, repofake.NewFakeRepo())
	g := session.NewGuard(s)
	s.Initialize()

	t.Run("anonymous is redirected to login", func(t *testing.T) {
		_, err := g.Require(context.Background())
		var redirect *session.RedirectError
		require.True(t, errors.As(err, &redirect))
		require.Equal(t, session.LoginRoute, redirect.To)
		require.ErrorIs(t, err, apperrors.ErrNotAuthenticated)
	})

	identity := testIdentity("hr-person")
	identity.Role = users.RoleHR
	require.NoError(t, s.Login(testCredential("T1"), identity))

	t.Run("any signed-in user", func(t *testing.T) {
		got, err := g.Require(context.Background())
		require.NoError(t, err)
		require.Equal(t, "hr-person", got.Username)
	})

	t.Run("matching role", func(t *testing.T) {
		_, err := g.Require(context.Background(), users.RoleAdmin, users.RoleHR)
		require.NoError(t, err)
	})

	t.Run("missing role", func(t *testing.T) {
		_, err := g.Require(context.Background(), users.RoleAdmin)
		require.ErrorIs(t, err, apperrors.ErrForbidden)
	})
}

func TestGuard_WaitsForRestore(t *testing.T) {
	s := newStore(t, repofake.NewFakeRepo())
	g := session.NewGuard(s)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := g.Require(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestGuard_LandingRoute(t *testing.T) {
	s := newStore(t, repofake.NewFakeRepo())
	g := session.NewGuard(s)
	s.Initialize()

	route, err := g.LandingRoute(context.Background())
	require.NoError(t, err)
	require.Equal(t, session.LoginRoute, route)

	require.NoError(t, s.Login(testCredential("T1"), testIdentity("alice")))
	route, err = g.LandingRoute(context.Background())
	require.NoError(t, err)
	require.Equal(t, session.DefaultRoute, route)
}
