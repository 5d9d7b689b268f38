package apiclient_test

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/jrsteele09/hrdash/apiclient"
	"github.com/jrsteele09/hrdash/internal/metrics"
	"github.com/jrsteele09/hrdash/session"
	"github.com/jrsteele09/hrdash/token"
	"github.com/stretchr/testify/require"
)

// fakeSession mirrors the store: Expire refuses whenever a different token is current
type fakeSession struct {
	mu      sync.Mutex
	current *token.Credential
	expired []string
}

func (f *fakeSession) Credential() *token.Credential {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.current == nil {
		return nil
	}
	c := *f.current
	return &c
}

func (f *fakeSession) Expire(accessToken string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.expired = append(f.expired, accessToken)
	if f.current != nil && f.current.AccessToken != accessToken {
		return false
	}
	f.current = nil
	return true
}

type recordingNavigator struct {
	mu     sync.Mutex
	routes []string
}

func (n *recordingNavigator) Navigate(route string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.routes = append(n.routes, route)
}

func (n *recordingNavigator) Routes() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.routes...)
}

// respond is a terminal transport answering status and recording the request it saw
func respond(status int, seen **http.Request) http.RoundTripper {
	return apiclient.RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
		if seen != nil {
			*seen = req
		}
		return &http.Response{
			StatusCode: status,
			Header:     http.Header{},
			Body:       io.NopCloser(strings.NewReader(`{}`)),
			Request:    req,
		}, nil
	})
}

func newRequest(t *testing.T, ctx context.Context) *http.Request {
	t.Helper()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://backend.test/api/dashboard/stats", nil)
	require.NoError(t, err)
	return req
}

func TestChainOrder(t *testing.T) {
	var order []string
	tag := func(name string) apiclient.Middleware {
		return func(next http.RoundTripper) http.RoundTripper {
			return apiclient.RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
				order = append(order, name)
				return next.RoundTrip(req)
			})
		}
	}

	rt := apiclient.Chain(respond(http.StatusOK, nil), tag("outer"), tag("middle"), tag("inner"))
	resp, err := rt.RoundTrip(newRequest(t, context.Background()))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, []string{"outer", "middle", "inner"}, order)
}

func TestAuthorize(t *testing.T) {
	t.Run("attaches the bearer credential", func(t *testing.T) {
		s := &fakeSession{current: &token.Credential{AccessToken: "tok-1", TokenType: "bearer"}}
		var seen *http.Request
		req := newRequest(t, context.Background())

		resp, err := apiclient.Authorize(s)(respond(http.StatusOK, &seen)).RoundTrip(req)
		require.NoError(t, err)
		resp.Body.Close()

		require.Equal(t, "Bearer tok-1", seen.Header.Get("Authorization"))
		require.Empty(t, req.Header.Get("Authorization"), "the caller's request is not mutated")
	})

	t.Run("anonymous requests pass through", func(t *testing.T) {
		var seen *http.Request
		resp, err := apiclient.Authorize(&fakeSession{})(respond(http.StatusOK, &seen)).RoundTrip(newRequest(t, context.Background()))
		require.NoError(t, err)
		resp.Body.Close()
		require.Empty(t, seen.Header.Get("Authorization"))
	})

	t.Run("an explicit header wins", func(t *testing.T) {
		s := &fakeSession{current: &token.Credential{AccessToken: "tok-1"}}
		var seen *http.Request
		req := newRequest(t, context.Background())
		req.Header.Set("Authorization", "Bearer other")

		resp, err := apiclient.Authorize(s)(respond(http.StatusOK, &seen)).RoundTrip(req)
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, "Bearer other", seen.Header.Get("Authorization"))
	})
}

func TestHandleAuthFailure(t *testing.T) {
	pipeline := func(s *fakeSession, nav *recordingNavigator, status int) http.RoundTripper {
		return apiclient.Chain(respond(status, nil),
			apiclient.Authorize(s),
			apiclient.HandleAuthFailure(s, nav, metrics.Nop{}),
		)
	}

	t.Run("401 expires the session and navigates to login", func(t *testing.T) {
		s := &fakeSession{current: &token.Credential{AccessToken: "tok-1"}}
		nav := &recordingNavigator{}

		resp, err := pipeline(s, nav, http.StatusUnauthorized).RoundTrip(newRequest(t, context.Background()))
		require.NoError(t, err)
		resp.Body.Close()

		require.Equal(t, http.StatusUnauthorized, resp.StatusCode, "the response is still returned")
		require.Nil(t, s.Credential())
		require.Equal(t, []string{"tok-1"}, s.expired)
		require.Equal(t, []string{session.LoginRoute}, nav.Routes())
	})

	t.Run("other statuses are left alone", func(t *testing.T) {
		for _, status := range []int{http.StatusOK, http.StatusForbidden, http.StatusInternalServerError} {
			s := &fakeSession{current: &token.Credential{AccessToken: "tok-1"}}
			nav := &recordingNavigator{}
			resp, err := pipeline(s, nav, status).RoundTrip(newRequest(t, context.Background()))
			require.NoError(t, err)
			resp.Body.Close()
			require.NotNil(t, s.Credential(), "status %d", status)
			require.Empty(t, nav.Routes())
		}
	})

	t.Run("exempt requests keep the session", func(t *testing.T) {
		s := &fakeSession{current: &token.Credential{AccessToken: "tok-1"}}
		nav := &recordingNavigator{}
		ctx := apiclient.WithoutAuthFailureHandling(context.Background())

		resp, err := pipeline(s, nav, http.StatusUnauthorized).RoundTrip(newRequest(t, ctx))
		require.NoError(t, err)
		resp.Body.Close()
		require.NotNil(t, s.Credential())
		require.Empty(t, s.expired)
		require.Empty(t, nav.Routes())
	})

	t.Run("401 for a superseded token is ignored", func(t *testing.T) {
		s := &fakeSession{current: &token.Credential{AccessToken: "new-token"}}
		nav := &recordingNavigator{}
		req := newRequest(t, context.Background())
		req.Header.Set("Authorization", "BEARER old-token")

		resp, err := pipeline(s, nav, http.StatusUnauthorized).RoundTrip(req)
		require.NoError(t, err)
		resp.Body.Close()

		require.Equal(t, []string{"old-token"}, s.expired)
		require.Equal(t, "new-token", s.Credential().AccessToken)
		require.Empty(t, nav.Routes())
	})

	t.Run("anonymous 401 navigates to login", func(t *testing.T) {
		s := &fakeSession{}
		nav := &recordingNavigator{}
		resp, err := pipeline(s, nav, http.StatusUnauthorized).RoundTrip(newRequest(t, context.Background()))
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, []string{session.LoginRoute}, nav.Routes())
	})

	t.Run("anonymous 401 after a login keeps the new session", func(t *testing.T) {
		s := &fakeSession{}
		nav := &recordingNavigator{}
		// The login completes while the anonymous request is in flight
		loginThenReject := apiclient.RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			s.mu.Lock()
			s.current = &token.Credential{AccessToken: "tok-2"}
			s.mu.Unlock()
			return respond(http.StatusUnauthorized, nil).RoundTrip(req)
		})
		rt := apiclient.Chain(loginThenReject,
			apiclient.Authorize(s),
			apiclient.HandleAuthFailure(s, nav, metrics.Nop{}),
		)

		resp, err := rt.RoundTrip(newRequest(t, context.Background()))
		require.NoError(t, err)
		resp.Body.Close()

		require.Equal(t, []string{""}, s.expired)
		require.Equal(t, "tok-2", s.Credential().AccessToken)
		require.Empty(t, nav.Routes())
	})
}

func TestRequestID(t *testing.T) {
	var seen *http.Request
	rt := apiclient.RequestID()(respond(http.StatusOK, &seen))

	resp, err := rt.RoundTrip(newRequest(t, context.Background()))
	require.NoError(t, err)
	resp.Body.Close()
	first := seen.Header.Get(apiclient.RequestIDHeader)
	require.Len(t, first, 36)

	req := newRequest(t, context.Background())
	req.Header.Set(apiclient.RequestIDHeader, "caller-id")
	resp, err = rt.RoundTrip(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, "caller-id", seen.Header.Get(apiclient.RequestIDHeader))
}
