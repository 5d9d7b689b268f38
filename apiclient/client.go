// Package apiclient is the typed client for the HR dashboard backend. Every call goes through an
// http.RoundTripper pipeline that attaches the session's bearer credential and turns a 401 into
// a local sign-out plus a redirect to the login route.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	apperrors "github.com/jrsteele09/hrdash/internal/errors"
	"github.com/jrsteele09/hrdash/internal/metrics"
	"github.com/jrsteele09/hrdash/token"
	"github.com/jrsteele09/hrdash/users"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"
)

const defaultTimeout = 30 * time.Second

// SessionStore is the session the client reads credentials from and records logins into
type SessionStore interface {
	Session
	Login(credential token.Credential, identity users.Identity) error
	UpdateIdentity(identity users.Identity) error
}

type Client struct {
	baseURL   *url.URL
	http      *http.Client
	session   SessionStore
	navigator Navigator
	recorder  metrics.Recorder
	limiter   *rate.Limiter
	transport http.RoundTripper
	timeout   time.Duration
	nowTime   func() time.Time
}

type ClientOption func(*Client)

func WithHTTPClientTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithRateLimit caps outbound requests at rps with the given burst. rps <= 0 disables limiting.
func WithRateLimit(rps float64, burst int) ClientOption {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

func WithMetrics(rec metrics.Recorder) ClientOption {
	return func(c *Client) {
		c.recorder = rec
	}
}

func WithNavigator(nav Navigator) ClientOption {
	return func(c *Client) {
		c.navigator = nav
	}
}

// WithBaseTransport replaces http.DefaultTransport at the bottom of the pipeline
func WithBaseTransport(rt http.RoundTripper) ClientOption {
	return func(c *Client) {
		c.transport = rt
	}
}

func WithNowTime(now func() time.Time) ClientOption {
	return func(c *Client) {
		c.nowTime = now
	}
}

// New builds a client for the backend at baseURL (scheme and host, optionally a path prefix)
func New(baseURL string, store SessionStore, options ...ClientOption) (*Client, error) {
	if store == nil {
		return nil, errors.New("[apiclient.New] session store is required")
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, errors.Wrap(err, "[apiclient.New] parse base url")
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidArgument, "[apiclient.New] base url %q must be http(s)://host", baseURL)
	}

	c := &Client{
		baseURL:   u,
		session:   store,
		navigator: logNavigator{},
		recorder:  metrics.Nop{},
		transport: http.DefaultTransport,
		timeout:   defaultTimeout,
		nowTime:   time.Now,
	}
	for _, opt := range options {
		opt(c)
	}

	mw := []Middleware{
		RequestID(),
		Logging(),
		Metrics(c.recorder),
		Authorize(c.session),
		HandleAuthFailure(c.session, c.navigator, c.recorder),
	}
	if c.limiter != nil {
		mw = append(mw, RateLimit(c.limiter, c.recorder))
	}
	c.http = &http.Client{
		Transport: Chain(c.transport, mw...),
		Timeout:   c.timeout,
	}
	return c, nil
}

func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// resolve joins path (and query) onto the base URL
func (c *Client) resolve(path string, query url.Values) *url.URL {
	u := *c.baseURL
	u.Path = c.baseURL.Path + path
	u.RawQuery = ""
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return &u
}

func (c *Client) newRequest(ctx context.Context, method string, u *url.URL, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrap(err, "marshal request body")
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// send runs req through the pipeline and returns the response when it is 2xx. Other statuses
// are returned as *APIError with the body consumed.
func (c *Client) send(req *http.Request) (*http.Response, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "%s %s", req.Method, req.URL.Path)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, newAPIError(resp)
	}
	return resp, nil
}

// do sends a JSON request and decodes a JSON answer into out (when out is non-nil)
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	req, err := c.newRequest(ctx, method, c.resolve(path, query), body)
	if err != nil {
		return errors.Wrapf(err, "[Client] %s %s", method, path)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.send(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "[Client] decode %s %s", method, path)
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}
