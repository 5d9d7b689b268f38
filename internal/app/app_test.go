package app_test

import (
	"bytes"
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	fakereportrepo "github.com/jrsteele09/hrdash/dashboard/repofake"
	"github.com/jrsteele09/hrdash/internal/app"
	"github.com/jrsteele09/hrdash/internal/config"
	"github.com/jrsteele09/hrdash/server"
	"github.com/jrsteele09/hrdash/storage"
	"github.com/jrsteele09/hrdash/storage/filestore"
	"github.com/jrsteele09/hrdash/storage/redisstore"
	"github.com/jrsteele09/hrdash/storage/repofake"
	"github.com/jrsteele09/hrdash/storage/sqlstore"
	"github.com/jrsteele09/hrdash/token"
	"github.com/jrsteele09/hrdash/token/jwt"
	fakeuserrepo "github.com/jrsteele09/hrdash/users/repofake"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func storageConfig(t *testing.T, kind string) config.Config {
	t.Helper()
	t.Setenv("HRDASH_STORE", kind)
	t.Setenv("HRDASH_DATA_DIR", t.TempDir())
	t.Setenv("HRDASH_STORE_PATH", "")
	return config.New(filepath.Join(t.TempDir(), "missing.env"))
}

func TestOpenStorage(t *testing.T) {
	ctx := context.Background()

	t.Run("file", func(t *testing.T) {
		repo, closeFn, err := app.OpenStorage(ctx, storageConfig(t, config.StoreFile))
		require.NoError(t, err)
		defer closeFn()
		require.IsType(t, &filestore.Store{}, repo)
		require.NoError(t, repo.Set(storage.KeyCredential, "tok"))
	})

	t.Run("sqlite", func(t *testing.T) {
		cfg := storageConfig(t, config.StoreSQLite)
		repo, closeFn, err := app.OpenStorage(ctx, cfg)
		require.NoError(t, err)
		require.IsType(t, &sqlstore.Store{}, repo)
		require.NoError(t, repo.Set(storage.KeyIdentity, "{}"))
		require.NoError(t, closeFn())
		require.FileExists(t, cfg.GetStorePath())
	})

	t.Run("redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		t.Setenv("HRDASH_REDIS_ADDR", mr.Addr())
		t.Setenv("HRDASH_REDIS_PREFIX", "cli")
		repo, closeFn, err := app.OpenStorage(ctx, storageConfig(t, config.StoreRedis))
		require.NoError(t, err)
		defer closeFn()
		require.IsType(t, &redisstore.Store{}, repo)
		require.NoError(t, repo.Set(storage.KeyCredential, "tok"))
		require.True(t, mr.Exists("cli:access_token"))
	})

	t.Run("memory", func(t *testing.T) {
		repo, closeFn, err := app.OpenStorage(ctx, storageConfig(t, config.StoreMemory))
		require.NoError(t, err)
		require.NoError(t, closeFn())
		require.IsType(t, &repofake.FakeRepo{}, repo)
	})

	t.Run("postgres without a dsn", func(t *testing.T) {
		t.Setenv("HRDASH_DATABASE_URL", "")
		_, closeFn, err := app.OpenStorage(ctx, storageConfig(t, config.StorePostgres))
		require.Error(t, err)
		require.NotNil(t, closeFn)
	})

	t.Run("unknown", func(t *testing.T) {
		_, _, err := app.OpenStorage(ctx, storageConfig(t, "floppy"))
		require.True(t, errors.Is(err, app.ErrUnknownStore))
	})
}

func TestNew(t *testing.T) {
	t.Setenv("ENV", "TEST")
	t.Setenv("HRDASH_JWT_SECRET", "app-test-secret")
	backend, err := server.New(config.New(), server.Repos{
		Accounts: fakeuserrepo.NewFakeAccountRepo(),
		Reports:  fakereportrepo.NewFakeReportRepo(),
		Revoked:  token.NewRevocationList(),
	}, server.WithGatherer(prometheus.NewRegistry()))
	require.NoError(t, err)
	ts := httptest.NewServer(backend)
	t.Cleanup(ts.Close)

	cfg := storageConfig(t, config.StoreFile)
	t.Setenv("HRDASH_API_BASE_URL", ts.URL)
	ctx := context.Background()

	first, err := app.New(ctx, cfg)
	require.NoError(t, err)
	defer first.Close()
	require.True(t, first.Store.Restored())
	require.False(t, first.Store.IsAuthenticated())

	_, err = first.Client.Login(ctx, server.DefaultAdminUsername, "admin123", false)
	require.NoError(t, err)

	t.Run("a second process restores the session", func(t *testing.T) {
		second, err := app.New(ctx, cfg)
		require.NoError(t, err)
		defer second.Close()

		identity, err := second.Guard.Require(ctx)
		require.NoError(t, err)
		require.Equal(t, server.DefaultAdminUsername, identity.Username)

		_, err = second.Client.Stats(ctx)
		require.NoError(t, err)

		var buf bytes.Buffer
		require.NoError(t, second.WriteMetrics(&buf))
		require.Contains(t, buf.String(), `route="/api/dashboard/stats"`)
	})

	t.Run("logout reaches the backend", func(t *testing.T) {
		accessToken := first.Store.Credential().AccessToken
		first.Store.Logout(ctx)
		require.False(t, first.Store.IsAuthenticated())

		err := backend.RevokeToken(accessToken)
		require.True(t, errors.Is(err, jwt.ErrTokenRevoked), "already revoked by the remote logout")
	})

	t.Run("bad base url", func(t *testing.T) {
		t.Setenv("HRDASH_API_BASE_URL", "not a url")
		_, err := app.New(ctx, cfg, app.WithStorage(repofake.NewFakeRepo()))
		require.Error(t, err)
	})
}
