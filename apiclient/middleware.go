package apiclient

import (
	"net/http"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/hrdash/internal/metrics"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const RequestIDHeader = "X-Request-ID"

// RequestID tags every request with a fresh id unless the caller set one
func RequestID() Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			if req.Header.Get(RequestIDHeader) != "" {
				return next.RoundTrip(req)
			}
			tagged := req.Clone(req.Context())
			tagged.Header.Set(RequestIDHeader, uuid.NewString())
			return next.RoundTrip(tagged)
		})
	}
}

// Logging logs each exchange: debug for success, warn for 4xx, error for 5xx and transport errors
func Logging() Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			start := time.Now()
			resp, err := next.RoundTrip(req)

			var event *zerolog.Event
			switch {
			case err != nil:
				event = log.Error().Err(err)
			case resp.StatusCode >= 500:
				event = log.Error()
			case resp.StatusCode >= 400:
				event = log.Warn()
			default:
				event = log.Debug()
			}
			if resp != nil {
				event = event.Int("status", resp.StatusCode)
			}
			event.Str("method", req.Method).
				Str("path", req.URL.Path).
				Str("request_id", req.Header.Get(RequestIDHeader)).
				Dur("duration", time.Since(start)).
				Msg("API request")
			return resp, err
		})
	}
}

var idSegment = regexp.MustCompile(`/\d+(/|$)`)

// routeLabel replaces numeric path segments so report ids do not explode metric cardinality
func routeLabel(path string) string {
	return idSegment.ReplaceAllString(path, "/{id}$1")
}

// Metrics records status and latency per route
func Metrics(rec metrics.Recorder) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			start := time.Now()
			resp, err := next.RoundTrip(req)
			route := routeLabel(req.URL.Path)
			if err != nil {
				rec.RecordTransportError(req.Method, route)
				return resp, err
			}
			rec.RecordRequest(req.Method, route, resp.StatusCode, time.Since(start))
			return resp, nil
		})
	}
}

// RateLimit holds requests until limiter grants them or the request context ends
func RateLimit(limiter *rate.Limiter, rec metrics.Recorder) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			start := time.Now()
			if err := limiter.Wait(req.Context()); err != nil {
				return nil, errors.Wrap(err, "[RateLimit] wait")
			}
			rec.RecordRateLimitWait(time.Since(start))
			return next.RoundTrip(req)
		})
	}
}
