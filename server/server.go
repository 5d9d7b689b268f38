// Package server is a stand-in for the HR dashboard backend. It serves the same JSON API with
// in-memory accounts and reports so the client can be developed and tested without the real service.
package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jrsteele09/hrdash/dashboard"
	"github.com/jrsteele09/hrdash/internal/config"
	"github.com/jrsteele09/hrdash/token"
	"github.com/jrsteele09/hrdash/token/jwt"
	"github.com/jrsteele09/hrdash/users"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

// Repos holds the stores the server reads and writes
type Repos struct {
	Accounts users.AccountRepo
	Reports  dashboard.ReportRepo
	Revoked  token.Revocations
}

type Server struct {
	env      string // Environment (e.g., "DEV", "PROD")
	router   *chi.Mux
	routes   []string
	config   config.Config
	repos    Repos
	issuer   *jwt.Issuer
	gatherer prometheus.Gatherer
	seed     bool
	nowTime  func() time.Time
}

type ServerOption func(*Server)

// WithNowTime overrides the clock used for tokens, last-login stamps and analytics windows
func WithNowTime(now func() time.Time) ServerOption {
	return func(s *Server) {
		s.nowTime = now
	}
}

// WithGatherer exposes g on /metrics instead of the default registry
func WithGatherer(g prometheus.Gatherer) ServerOption {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithoutSampleReports skips seeding demo reports; the admin account is always created
func WithoutSampleReports() ServerOption {
	return func(s *Server) {
		s.seed = false
	}
}

func New(config config.Config, repos Repos, options ...ServerOption) (*Server, error) {
	if repos.Accounts == nil || repos.Reports == nil {
		return nil, errors.New("[Server New] account and report repos are required")
	}
	if repos.Revoked == nil {
		repos.Revoked = token.NewRevocationList()
	}

	issuer, err := jwt.NewIssuer([]byte(config.GetJWTSecret()), repos.Revoked)
	if err != nil {
		return nil, errors.Wrap(err, "[Server New] failed to create token issuer")
	}

	s := &Server{
		env:      config.GetEnv(),
		router:   chi.NewRouter(),
		config:   config,
		repos:    repos,
		issuer:   issuer,
		gatherer: prometheus.DefaultGatherer,
		seed:     true,
		nowTime:  time.Now,
	}
	for _, opt := range options {
		opt(s)
	}

	if err := s.InitialiseSystem(); err != nil {
		return nil, errors.Wrap(err, "[Server New] failed to initialise the system")
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// RegisterRouteFunc registers handler for a "METHOD /path" pattern
func (s *Server) RegisterRouteFunc(pattern string, handler http.HandlerFunc) {
	method, path, ok := strings.Cut(pattern, " ")
	if !ok {
		panic("route pattern needs a method: " + pattern)
	}
	s.routes = append(s.routes, pattern)
	s.router.Method(method, path, handler)
}

// RevokeToken invalidates an issued access token so the next request with it answers 401
func (s *Server) RevokeToken(raw string) error {
	claims, err := s.issuer.Validate(raw)
	if err != nil {
		return errors.Wrap(err, "[Server RevokeToken]")
	}
	return s.repos.Revoked.Revoke(claims.ID, claims.ExpiresAt.Time)
}

// PruneRevocations drops revocations for tokens that have expired, on every tick of interval
// and by the server's clock, until ctx is done
func (s *Server) PruneRevocations(ctx context.Context, interval time.Duration) {
	token.PruneEvery(ctx, s.repos.Revoked, interval, s.nowTime)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		method, path, _ := strings.Cut(route, " ")
		logRoute(method, path)
	}
}

func logRoute(method, path string) {
	paddedMethod := fmt.Sprintf(" %-7s", method)
	color, ok := methodColors[method]
	if !ok {
		color = Gray
	}
	log.Info().Msgf("[%s] %s", color+paddedMethod+ResetColor, path)
}
