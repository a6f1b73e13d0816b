package localstore_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/niksmo/stylehub/internal/adapter/localstore"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	t.Run("AbsentKey", func(t *testing.T) {
		data, err := localstore.InMemory().Load(t.Context(), "stylehub-cart")
		require.NoError(t, err)
		assert.Nil(t, data)
	})

	t.Run("SaveThenLoad", func(t *testing.T) {
		s := localstore.InMemory()

		require.NoError(t, s.Save(t.Context(), "stylehub-cart", []byte(`[1]`)))
		require.NoError(t, s.Save(t.Context(), "stylehub-cart", []byte(`[2]`)))

		data, err := s.Load(t.Context(), "stylehub-cart")
		require.NoError(t, err)
		assert.Equal(t, []byte(`[2]`), data)
	})

	t.Run("NoTempFileLeft", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		s := localstore.New(fs)

		require.NoError(t, s.Save(t.Context(), "stylehub-wishlist", []byte(`[]`)))

		exists, err := afero.Exists(fs, "/stylehub-wishlist.json.tmp")
		require.NoError(t, err)
		assert.False(t, exists)
		exists, err = afero.Exists(fs, "/stylehub-wishlist.json")
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("InvalidKey", func(t *testing.T) {
		s := localstore.InMemory()

		for _, key := range []string{"", "..", "../etc/passwd", `a\b`} {
			err := s.Save(t.Context(), key, []byte(`[]`))
			assert.ErrorIs(t, err, localstore.ErrInvalidKey, "key %q", key)
		}
	})

	t.Run("OpenDir", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "state")
		s, err := localstore.OpenDir(dir)
		require.NoError(t, err)

		require.NoError(t, s.Save(t.Context(), "stylehub-cart", []byte(`[]`)))

		data, err := os.ReadFile(filepath.Join(dir, "stylehub-cart.json"))
		require.NoError(t, err)
		assert.Equal(t, []byte(`[]`), data)

		reopened, err := localstore.OpenDir(dir)
		require.NoError(t, err)
		data, err = reopened.Load(t.Context(), "stylehub-cart")
		require.NoError(t, err)
		assert.Equal(t, []byte(`[]`), data)
	})
}
