package sqlstore_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jrsteele09/hrdash/storage"
	"github.com/jrsteele09/hrdash/storage/sqlstore"
	"github.com/jrsteele09/hrdash/storage/storagetest"
	"github.com/stretchr/testify/require"
)

func openSQLite(t *testing.T, path string) *sqlstore.Store {
	t.Helper()
	s, err := sqlstore.OpenSQLite(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLStore(t *testing.T) {
	storagetest.RunRepoTests(t, openSQLite(t, filepath.Join(t.TempDir(), "session.db")))
}

func TestSQLStore_PersistsAcrossConnections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.db")

	first, err := sqlstore.OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, first.Set(storage.KeyIdentity, `{"id":1}`))
	require.NoError(t, first.Close())

	second := openSQLite(t, path)
	v, err := second.Get(storage.KeyIdentity)
	require.NoError(t, err)
	require.Equal(t, `{"id":1}`, v)
}

func TestSQLStore_NilDB(t *testing.T) {
	_, err := sqlstore.New(nil)
	require.Error(t, err)
}

func TestOpenPostgres_EmptyDSN(t *testing.T) {
	_, err := sqlstore.OpenPostgres(context.Background(), "")
	require.Error(t, err)
}
