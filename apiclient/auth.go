package apiclient

import (
	"context"
	"net/http"

	apperrors "github.com/jrsteele09/hrdash/internal/errors"
	"github.com/jrsteele09/hrdash/token"
	"github.com/jrsteele09/hrdash/users"
	"github.com/pkg/errors"
)

// Login exchanges username and password for a credential and records the new session.
// Wrong credentials yield ErrInvalidCredentials and an inactive account ErrAccountInactive;
// neither touches the current session.
func (c *Client) Login(ctx context.Context, username, password string, rememberMe bool) (*token.LoginResponse, error) {
	if err := users.ValidateLoginInput(username, password); err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidArgument, "%v", err)
	}

	var resp token.LoginResponse
	req := token.LoginRequest{Username: username, Password: password, RememberMe: rememberMe}
	if err := c.postJSON(WithoutAuthFailureHandling(ctx), RouteLogin, req, &resp); err != nil {
		return nil, loginError(err)
	}
	if resp.AccessToken == "" {
		return nil, errors.Wrap(apperrors.ErrBackend, "[Client.Login] response has no access token")
	}

	if err := c.session.Login(resp.Credential(c.nowTime()), resp.User); err != nil {
		return nil, errors.Wrap(err, "[Client.Login] record session")
	}
	return &resp, nil
}

func loginError(err error) error {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return err
	}
	switch apiErr.StatusCode {
	case http.StatusUnauthorized:
		apiErr.kind = apperrors.ErrInvalidCredentials
	case http.StatusForbidden:
		apiErr.kind = apperrors.ErrAccountInactive
	}
	return apiErr
}

// Register creates an account. It does not sign the new user in.
func (c *Client) Register(ctx context.Context, req token.RegisterRequest) (*users.Identity, error) {
	if err := users.ValidateLoginInput(req.Username, req.Password); err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidArgument, "%v", err)
	}
	var identity users.Identity
	if err := c.postJSON(WithoutAuthFailureHandling(ctx), RouteRegister, req, &identity); err != nil {
		return nil, err
	}
	return &identity, nil
}

// Me fetches the signed-in user's current profile
func (c *Client) Me(ctx context.Context) (*users.Identity, error) {
	var identity users.Identity
	if err := c.getJSON(ctx, RouteMe, nil, &identity); err != nil {
		return nil, err
	}
	return &identity, nil
}

// RefreshIdentity re-reads the profile and stores it in the session
func (c *Client) RefreshIdentity(ctx context.Context) (*users.Identity, error) {
	identity, err := c.Me(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.session.UpdateIdentity(*identity); err != nil {
		return nil, err
	}
	return identity, nil
}

// Logout notifies the backend only; the session store clears local state. A 401 here is not
// treated as expiry since the session is being discarded anyway.
func (c *Client) Logout(ctx context.Context) error {
	return c.postJSON(WithoutAuthFailureHandling(ctx), RouteLogout, nil, nil)
}
