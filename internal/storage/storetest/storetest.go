// Package storetest holds the behaviour every storage.Store driver must share.
package storetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/tripbook/internal/storage"
)

// Run exercises store against the storage.Store contract.
func Run(t *testing.T, store storage.Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		_, err := store.Get(ctx, "absent")
		require.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("set and overwrite", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, storage.ProductStore, []byte(`{"v":1}`)))
		require.NoError(t, store.Set(ctx, storage.ProductStore, []byte(`{"v":2}`)))
		got, err := store.Get(ctx, storage.ProductStore)
		require.NoError(t, err)
		require.JSONEq(t, `{"v":2}`, string(got))
	})

	t.Run("set many", func(t *testing.T) {
		require.NoError(t, store.SetMany(ctx, map[string][]byte{
			storage.SalesStore:  []byte(`{"s":1}`),
			storage.ShopStorage: []byte(`{"h":1}`),
		}))
		for key, want := range map[string]string{storage.SalesStore: `{"s":1}`, storage.ShopStorage: `{"h":1}`} {
			got, err := store.Get(ctx, key)
			require.NoError(t, err, key)
			require.JSONEq(t, want, string(got), key)
		}
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "gone", []byte("x")))
		require.NoError(t, store.Delete(ctx, "gone"))
		_, err := store.Get(ctx, "gone")
		require.ErrorIs(t, err, storage.ErrNotFound)
		require.NoError(t, store.Delete(ctx, "never-there"))
	})
}
