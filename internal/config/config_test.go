package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jrsteele09/hrdash/internal/config"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	for _, v := range []string{"HRDASH_API_BASE_URL", "HRDASH_STORE", "HRDASH_HTTP_TIMEOUT", "HRDASH_RATE_LIMIT", "PORT", "ENV"} {
		t.Setenv(v, "")
	}
	cfg := config.New(filepath.Join(t.TempDir(), "missing.env"))

	require.Equal(t, "http://localhost:8080", cfg.GetAPIBaseURL())
	require.Equal(t, config.StoreFile, cfg.GetStoreKind())
	require.Equal(t, 30*time.Second, cfg.GetHTTPTimeout())
	require.Equal(t, 10.0, cfg.GetRateLimit())
	require.Equal(t, ":8080", cfg.GetPort())
	require.Equal(t, "DEV", cfg.GetEnv())
	require.Equal(t, 24*time.Hour, cfg.GetTokenExpiry())
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("HRDASH_API_BASE_URL", "https://hr.example.com/")
	t.Setenv("HRDASH_STORE", "Redis")
	t.Setenv("HRDASH_HTTP_TIMEOUT", "5")
	t.Setenv("HRDASH_RATE_BURST", "not-a-number")
	t.Setenv("HRDASH_DATA_DIR", "/var/lib/hrdash")
	t.Setenv("HRDASH_STORE_PATH", "")
	t.Setenv("PORT", ":9090")

	cfg := config.New(filepath.Join(t.TempDir(), "missing.env"))
	require.Equal(t, "https://hr.example.com", cfg.GetAPIBaseURL())
	require.Equal(t, config.StoreRedis, cfg.GetStoreKind())
	require.Equal(t, 5*time.Second, cfg.GetHTTPTimeout())
	require.Equal(t, 20, cfg.GetRateBurst())
	require.Equal(t, filepath.Join("/var/lib/hrdash", "session.json"), cfg.GetStorePath())
	require.Equal(t, ":9090", cfg.GetPort())
}

func TestSQLiteStorePath(t *testing.T) {
	t.Setenv("HRDASH_STORE", "sqlite")
	t.Setenv("HRDASH_STORE_PATH", "")
	t.Setenv("HRDASH_DATA_DIR", "/data")
	require.Equal(t, filepath.Join("/data", "session.db"), config.Storage{}.GetStorePath())
}

func TestNew_LoadsEnvFile(t *testing.T) {
	t.Setenv("HRDASH_REDIS_PREFIX", "")
	os.Unsetenv("HRDASH_REDIS_PREFIX")

	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("HRDASH_REDIS_PREFIX=from-file\n"), 0o600))

	cfg := config.New(envFile)
	t.Cleanup(func() { os.Unsetenv("HRDASH_REDIS_PREFIX") })
	require.Equal(t, "from-file", cfg.GetRedisPrefix())
}

func TestAllowedOrigins(t *testing.T) {
	t.Setenv("HRDASH_ALLOWED_ORIGINS", "http://a.test, *")
	origins := config.Cors{}.GetAllowedOrigins()
	require.True(t, origins.IsAllowedOrigin("http://a.test"))
	require.True(t, origins.IsAllowedOrigin("*"))
	require.False(t, origins.IsAllowedOrigin("http://b.test"))
}
