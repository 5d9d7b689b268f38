// Package storagetest holds behaviour checks shared by every storage.Repo implementation.
package storagetest

import (
	"testing"

	"github.com/jrsteele09/hrdash/storage"
	"github.com/stretchr/testify/require"
)

// RunRepoTests exercises the storage.Repo contract against a fresh, empty repo
func RunRepoTests(t *testing.T, repo storage.Repo) {
	t.Helper()

	t.Run("missing key", func(t *testing.T) {
		_, err := repo.Get("missing")
		require.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("set then get", func(t *testing.T) {
		require.NoError(t, repo.Set(storage.KeyCredential, `{"access_token":"abc"}`))
		v, err := repo.Get(storage.KeyCredential)
		require.NoError(t, err)
		require.Equal(t, `{"access_token":"abc"}`, v)
	})

	t.Run("overwrite", func(t *testing.T) {
		require.NoError(t, repo.Set(storage.KeyIdentity, "first"))
		require.NoError(t, repo.Set(storage.KeyIdentity, "second"))
		v, err := repo.Get(storage.KeyIdentity)
		require.NoError(t, err)
		require.Equal(t, "second", v)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.Set("temp", "value"))
		require.NoError(t, repo.Delete("temp"))
		_, err := repo.Get("temp")
		require.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("delete missing key", func(t *testing.T) {
		require.NoError(t, repo.Delete("never-set"))
	})

	t.Run("keys are independent", func(t *testing.T) {
		require.NoError(t, repo.Set("a", "1"))
		require.NoError(t, repo.Set("b", "2"))
		require.NoError(t, repo.Delete("a"))
		v, err := repo.Get("b")
		require.NoError(t, err)
		require.Equal(t, "2", v)
	})

	t.Run("unicode values", func(t *testing.T) {
		require.NoError(t, repo.Set("name", "张三 ✓"))
		v, err := repo.Get("name")
		require.NoError(t, err)
		require.Equal(t, "张三 ✓", v)
	})
}
