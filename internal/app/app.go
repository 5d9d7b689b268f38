// Package app wires the session store, the API client and the route guard from configuration.
package app

import (
	"context"
	"io"

	"github.com/jrsteele09/hrdash/apiclient"
	"github.com/jrsteele09/hrdash/internal/config"
	"github.com/jrsteele09/hrdash/internal/metrics"
	"github.com/jrsteele09/hrdash/session"
	"github.com/jrsteele09/hrdash/storage"
	"github.com/jrsteele09/hrdash/storage/filestore"
	"github.com/jrsteele09/hrdash/storage/redisstore"
	"github.com/jrsteele09/hrdash/storage/repofake"
	"github.com/jrsteele09/hrdash/storage/sqlstore"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

// ErrUnknownStore is returned by OpenStorage for an unrecognised HRDASH_STORE value
var ErrUnknownStore = errors.New("unknown store kind")

// OpenStorage opens the session storage backend named by cfg. The returned close function
// releases connections and is never nil.
func OpenStorage(ctx context.Context, cfg config.StorageConfig) (storage.Repo, func() error, error) {
	noop := func() error { return nil }

	switch kind := cfg.GetStoreKind(); kind {
	case config.StoreFile:
		s, err := filestore.New(cfg.GetStorePath())
		if err != nil {
			return nil, noop, err
		}
		return s, noop, nil
	case config.StoreSQLite:
		s, err := sqlstore.OpenSQLite(cfg.GetStorePath())
		if err != nil {
			return nil, noop, err
		}
		return s, s.Close, nil
	case config.StorePostgres:
		s, err := sqlstore.OpenPostgres(ctx, cfg.GetDatabaseURL())
		if err != nil {
			return nil, noop, err
		}
		return s, s.Close, nil
	case config.StoreRedis:
		s, err := redisstore.Dial(ctx, cfg.GetRedisAddr(), cfg.GetRedisPrefix())
		if err != nil {
			return nil, noop, err
		}
		return s, s.Close, nil
	case config.StoreMemory:
		return repofake.NewFakeRepo(), noop, nil
	default:
		return nil, noop, errors.Wrapf(ErrUnknownStore, "[app.OpenStorage] %q", kind)
	}
}

// App is a restored session plus the client that authorizes requests with it
type App struct {
	Store    *session.Store
	Client   *apiclient.Client
	Guard    *session.Guard
	Registry *prometheus.Registry

	closeStorage func() error
}

type Option func(*options)

type options struct {
	navigator apiclient.Navigator
	repo      storage.Repo
	client    []apiclient.ClientOption
}

// WithNavigator receives the login redirect after the backend rejects the credential
func WithNavigator(nav apiclient.Navigator) Option {
	return func(o *options) {
		o.navigator = nav
	}
}

// WithStorage uses repo instead of opening the configured backend
func WithStorage(repo storage.Repo) Option {
	return func(o *options) {
		o.repo = repo
	}
}

// WithClientOptions appends options applied after the configured ones
func WithClientOptions(opts ...apiclient.ClientOption) Option {
	return func(o *options) {
		o.client = append(o.client, opts...)
	}
}

// New opens storage, builds the client against cfg's backend and restores any persisted session
func New(ctx context.Context, cfg config.Config, opts ...Option) (*App, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	repo, closeStorage := o.repo, func() error { return nil }
	if repo == nil {
		var err error
		repo, closeStorage, err = OpenStorage(ctx, cfg)
		if err != nil {
			return nil, errors.Wrap(err, "[app.New] open storage")
		}
	}

	store, err := session.NewStore(repo)
	if err != nil {
		_ = closeStorage()
		return nil, err
	}

	registry := prometheus.NewRegistry()
	clientOpts := []apiclient.ClientOption{
		apiclient.WithHTTPClientTimeout(cfg.GetHTTPTimeout()),
		apiclient.WithRateLimit(cfg.GetRateLimit(), cfg.GetRateBurst()),
		apiclient.WithMetrics(metrics.NewCollector(registry)),
	}
	if o.navigator != nil {
		clientOpts = append(clientOpts, apiclient.WithNavigator(o.navigator))
	}
	client, err := apiclient.New(cfg.GetAPIBaseURL(), store, append(clientOpts, o.client...)...)
	if err != nil {
		_ = closeStorage()
		return nil, err
	}
	store.SetRemote(client)

	snap := store.Initialize()
	log.Debug().Str("store", cfg.GetStoreKind()).Bool("authenticated", snap.IsAuthenticated()).Msg("Session restored")

	return &App{
		Store:        store,
		Client:       client,
		Guard:        session.NewGuard(store),
		Registry:     registry,
		closeStorage: closeStorage,
	}, nil
}

// WriteMetrics dumps the client metrics in the Prometheus text format
func (a *App) WriteMetrics(w io.Writer) error {
	return metrics.WriteText(w, a.Registry)
}

func (a *App) Close() error {
	return a.closeStorage()
}
