package server

import (
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

const preflightMaxAge = 24 * time.Hour

func ChainMiddleware(routeFunction http.HandlerFunc, mw ...func(http.HandlerFunc) http.HandlerFunc) http.HandlerFunc {
	chainedHandler := routeFunction
	// Apply middleware in reverse order
	for i := len(mw) - 1; i >= 0; i-- {
		chainedHandler = mw[i](chainedHandler)
	}
	return chainedHandler
}

// APIMiddleware is applied to every route, including preflight requests chi would otherwise reject
func (s *Server) APIMiddleware() []func(http.HandlerFunc) http.HandlerFunc {
	return []func(http.HandlerFunc) http.HandlerFunc{
		s.RecoverMiddleware,
		s.LoggingMiddleware,
		s.CorsMiddleware,
	}
}

// routerMiddleware adapts a HandlerFunc middleware to the chi Use signature
func routerMiddleware(mw func(http.HandlerFunc) http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return mw(next.ServeHTTP)
	}
}

func (s *Server) LoggingMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		if s.env == "DEV" {
			logRoute(r.Method, r.URL.Path+" "+statusColor(status)+http.StatusText(status)+ResetColor)
			return
		}
		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Str("request_id", r.Header.Get("X-Request-ID")).
			Msg("request")
	}
}

func (s *Server) RecoverMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				log.Error().
					Interface("panic", rec).
					Str("path", r.URL.Path).
					Bytes("stack", debug.Stack()).
					Msg("Recovered from panic")
				writeDetail(w, http.StatusInternalServerError, "Internal server error")
			}
		}()
		next(w, r)
	}
}

// allowOrigin returns the Access-Control-Allow-Origin value for origin, or "" when the origin is refused.
// Credentials are only allowed for origins listed explicitly.
func (s *Server) allowOrigin(origin string) (value string, credentials bool) {
	origins := s.config.GetAllowedOrigins()
	switch {
	case origins.IsAllowedOrigin(origin):
		return origin, true
	case origins.IsAllowedOrigin("*"):
		return "*", false
	}
	return "", false
}

func (s *Server) CorsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin == "" {
			next(w, r)
			return
		}

		h := w.Header()
		allowed, credentials := s.allowOrigin(origin)
		if allowed != "" {
			h.Set("Access-Control-Allow-Origin", allowed)
			// Downloads need the filename readable from script
			h.Set("Access-Control-Expose-Headers", "Content-Disposition, X-Request-ID")
		}
		if credentials {
			h.Set("Access-Control-Allow-Credentials", "true")
		}
		h.Add("Vary", "Origin")

		if r.Method != http.MethodOptions {
			next(w, r)
			return
		}
		// Refused preflights get a bare 200 and the browser blocks the request
		if allowed != "" {
			h.Set("Access-Control-Allow-Methods", s.config.GetAllowedMethods())
			h.Set("Access-Control-Allow-Headers", s.config.GetAllowedHeaders())
			h.Set("Access-Control-Max-Age", strconv.Itoa(int(preflightMaxAge.Seconds())))
		}
		w.WriteHeader(http.StatusOK)
	}
}
