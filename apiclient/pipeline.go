package apiclient

import (
	"context"
	"net/http"
	"strings"

	"github.com/jrsteele09/hrdash/internal/metrics"
	"github.com/jrsteele09/hrdash/session"
	"github.com/jrsteele09/hrdash/token"
	"github.com/rs/zerolog/log"
)

// Session is the part of the session store the pipeline needs
type Session interface {
	Credential() *token.Credential
	Expire(accessToken string) bool
}

// Middleware decorates a RoundTripper
type Middleware func(next http.RoundTripper) http.RoundTripper

type RoundTripperFunc func(*http.Request) (*http.Response, error)

func (f RoundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

// Chain wraps transport in mw; the first middleware is the outermost
func Chain(transport http.RoundTripper, mw ...Middleware) http.RoundTripper {
	chained := transport
	// Apply middleware in reverse order
	for i := len(mw) - 1; i >= 0; i-- {
		chained = mw[i](chained)
	}
	return chained
}

// Authorize attaches the current bearer credential. Anonymous requests, and requests that
// already carry an Authorization header, pass through unchanged.
func Authorize(s Session) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			credential := s.Credential()
			if credential.Empty() || req.Header.Get("Authorization") != "" {
				return next.RoundTrip(req)
			}
			authorized := req.Clone(req.Context())
			credential.SetAuthHeader(authorized)
			return next.RoundTrip(authorized)
		})
	}
}

type authFailureKey struct{}

// WithoutAuthFailureHandling marks requests made with ctx as exempt from HandleAuthFailure.
// Used for the login call, where 401 means wrong credentials rather than an expired session.
func WithoutAuthFailureHandling(ctx context.Context) context.Context {
	return context.WithValue(ctx, authFailureKey{}, true)
}

func authFailureHandlingDisabled(ctx context.Context) bool {
	disabled, _ := ctx.Value(authFailureKey{}).(bool)
	return disabled
}

// HandleAuthFailure reacts to 401 by expiring the session for the token the request carried and
// then navigating to the login route. The response itself is returned unchanged. A 401 for a
// token that a newer login has already replaced neither clears nor navigates, and neither does a
// 401 for a request sent without credentials once a login has completed.
func HandleAuthFailure(s Session, nav Navigator, rec metrics.Recorder) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			resp, err := next.RoundTrip(req)
			if err != nil || resp.StatusCode != http.StatusUnauthorized || authFailureHandlingDisabled(req.Context()) {
				return resp, err
			}

			accessToken := bearerToken(req.Header.Get("Authorization"))
			if !s.Expire(accessToken) {
				log.Debug().Str("path", req.URL.Path).Msg("Ignoring 401 for a superseded credential")
				return resp, nil
			}
			log.Warn().Str("path", req.URL.Path).Msg("Session expired, redirecting to login")
			rec.RecordSessionExpired()
			nav.Navigate(session.LoginRoute)
			return resp, nil
		})
	}
}

func bearerToken(header string) string {
	const prefix = "bearer "
	if len(header) >= len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}
