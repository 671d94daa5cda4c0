package book

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/odyssey-erp/tripbook/internal/inventory"
	"github.com/odyssey-erp/tripbook/internal/sales"
	"github.com/odyssey-erp/tripbook/internal/shops"
	"github.com/odyssey-erp/tripbook/internal/storage"
)

type productState struct {
	Products []inventory.Product `json:"products"`
}

type storedProductState struct {
	Products []inventory.Record `json:"products"`
}

type salesState struct {
	Sales []sales.Sale `json:"sales"`
}

type shopState struct {
	Data []shops.Shop `json:"data"`
}

// snapshot is the decoded content of every namespace.
type snapshot struct {
	products []inventory.Product
	sales    []sales.Sale
	shops    []shops.Shop
	versions map[string]int
}

// hydrate loads all namespaces concurrently. Missing namespaces start empty;
// a namespace that cannot be decoded fails the load so it is never
// overwritten with an empty state.
func hydrate(ctx context.Context, store storage.Store) (snapshot, error) {
	var (
		stored storedProductState
		sold   salesState
		shop   shopState
		vers   [3]int
	)
	targets := []any{&stored, &sold, &shop}

	g, ctx := errgroup.WithContext(ctx)
	for i, ns := range storage.Namespaces {
		i, ns := i, ns
		g.Go(func() error {
			raw, err := store.Get(ctx, ns)
			if errors.Is(err, storage.ErrNotFound) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("book: load %s: %w", ns, err)
			}
			v, err := storage.Decode(raw, targets[i])
			if err != nil {
				return fmt.Errorf("book: load %s: %w", ns, err)
			}
			vers[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return snapshot{}, err
	}

	snap := snapshot{
		products: inventory.NormalizeAll(stored.Products),
		sales:    sales.NormalizeAll(sold.Sales),
		shops:    shop.Data,
		versions: make(map[string]int, len(storage.Namespaces)),
	}
	for i, ns := range storage.Namespaces {
		snap.versions[ns] = vers[i]
	}
	return snap, nil
}

func decodeNamespace(ns string, raw []byte) (snapshot, error) {
	var snap snapshot
	switch ns {
	case storage.ProductStore:
		var st storedProductState
		if _, err := storage.Decode(raw, &st); err != nil {
			return snap, err
		}
		snap.products = inventory.NormalizeAll(st.Products)
	case storage.SalesStore:
		var st salesState
		if _, err := storage.Decode(raw, &st); err != nil {
			return snap, err
		}
		snap.sales = sales.NormalizeAll(st.Sales)
	case storage.ShopStorage:
		var st shopState
		if _, err := storage.Decode(raw, &st); err != nil {
			return snap, err
		}
		snap.shops = st.Data
	default:
		return snap, fmt.Errorf("book: unknown namespace %q", ns)
	}
	return snap, nil
}
