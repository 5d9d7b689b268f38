package session

import (
	"context"

	apperrors "github.com/jrsteele09/hrdash/internal/errors"
	"github.com/jrsteele09/hrdash/users"
)

const (
	LoginRoute   = "/login"     // Where anonymous users are sent
	DefaultRoute = "/dashboard" // Where signed-in users land
)

// RedirectError tells the caller to navigate to To instead of running the protected action
type RedirectError struct {
	To     string
	Reason error
}

func (e *RedirectError) Error() string {
	return "redirect to " + e.To + ": " + e.Reason.Error()
}

func (e *RedirectError) Unwrap() error {
	return e.Reason
}

// Guard protects actions that need a signed-in user. It waits for rehydration first, so a
// persisted session is never mistaken for an anonymous one while it is still being read.
type Guard struct {
	store *Store
}

func NewGuard(store *Store) *Guard {
	return &Guard{store: store}
}

// Require returns the signed-in identity. Anonymous callers get a *RedirectError to LoginRoute
// wrapping ErrNotAuthenticated; callers lacking every one of roles get ErrForbidden.
func (g *Guard) Require(ctx context.Context, roles ...users.RoleType) (*users.Identity, error) {
	if err := g.store.WaitRestored(ctx); err != nil {
		return nil, err
	}
	identity := g.store.Identity()
	if identity == nil {
		return nil, &RedirectError{To: LoginRoute, Reason: apperrors.ErrNotAuthenticated}
	}
	if !identity.HasRole(roles...) {
		return nil, apperrors.Wrapf(apperrors.ErrForbidden, "role %q", identity.Role)
	}
	return identity, nil
}

// LandingRoute is where the login entry point should send the user: DefaultRoute when a session
// already exists, otherwise LoginRoute.
func (g *Guard) LandingRoute(ctx context.Context) (string, error) {
	if err := g.store.WaitRestored(ctx); err != nil {
		return "", err
	}
	if g.store.IsAuthenticated() {
		return DefaultRoute, nil
	}
	return LoginRoute, nil
}
