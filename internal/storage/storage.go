// Package storage defines the key-value blob store the book persists into.
//
// Each logical namespace holds one JSON envelope. Drivers live in
// subpackages; NewMemory is the in-process driver used by tests and the
// memory storage setting.
package storage

import (
	"context"
	"errors"
)

// Logical namespaces written by the book.
const (
	ProductStore = "product-store"
	SalesStore   = "sales-store"
	ShopStorage  = "shop-storage"
)

// Namespaces lists every namespace in write order.
var Namespaces = []string{ProductStore, SalesStore, ShopStorage}

// ErrNotFound is returned by Get when a key has never been written.
var ErrNotFound = errors.New("storage: key not found")

// Store is a key-value blob store.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// SetMany writes every entry atomically.
	SetMany(ctx context.Context, entries map[string][]byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}
