package sqlitestore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/tripbook/internal/storage"
	"github.com/odyssey-erp/tripbook/internal/storage/storetest"
)

func openTemp(t *testing.T, path string) *Store {
	t.Helper()
	s, err := Open(context.Background(), path)
	require.NoError(t, err)
	return s
}

func TestStoreContract(t *testing.T) {
	s := openTemp(t, filepath.Join(t.TempDir(), "book.db"))
	t.Cleanup(func() { _ = s.Close() })
	storetest.Run(t, s)
}

func TestStoreSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "book.db")

	s := openTemp(t, path)
	require.NoError(t, s.Set(ctx, storage.ProductStore, []byte(`{"state":{},"version":1}`)))
	require.NoError(t, s.Close())

	s = openTemp(t, path)
	t.Cleanup(func() { _ = s.Close() })
	got, err := s.Get(ctx, storage.ProductStore)
	require.NoError(t, err)
	require.JSONEq(t, `{"state":{},"version":1}`, string(got))
}
