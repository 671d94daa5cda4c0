package book

import (
	"context"
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/odyssey-erp/tripbook/internal/storage"
)

// ArchiveFormat identifies backup archives written by Export.
const ArchiveFormat = "tripbook.archive/1"

// Archive is a backup of every namespace envelope.
type Archive struct {
	Format     string            `msgpack:"format"`
	CreatedAt  time.Time         `msgpack:"created_at"`
	Namespaces map[string][]byte `msgpack:"namespaces"`
}

// Export encodes the current state of every namespace as a msgpack archive.
func (b *Book) Export(_ context.Context) ([]byte, error) {
	b.mu.Lock()
	entries, err := b.encodeLocked(storage.Namespaces...)
	now := b.now()
	b.mu.Unlock()
	if err != nil {
		return nil, err
	}
	data, err := msgpack.Marshal(&Archive{Format: ArchiveFormat, CreatedAt: now, Namespaces: entries})
	if err != nil {
		return nil, fmt.Errorf("book: encode archive: %w", err)
	}
	return data, nil
}

// Import replaces every namespace with the content of an archive produced by
// Export. Namespaces missing from the archive are emptied. Nothing changes
// when any namespace fails to decode.
func (b *Book) Import(ctx context.Context, data []byte) error {
	var archive Archive
	if err := msgpack.Unmarshal(data, &archive); err != nil {
		return fmt.Errorf("book: decode archive: %w", err)
	}
	if archive.Format != ArchiveFormat {
		return fmt.Errorf("book: unsupported archive format %q", archive.Format)
	}

	var merged snapshot
	for ns, raw := range archive.Namespaces {
		part, err := decodeNamespace(ns, raw)
		if err != nil {
			return fmt.Errorf("book: import %s: %w", ns, err)
		}
		switch ns {
		case storage.ProductStore:
			merged.products = part.products
		case storage.SalesStore:
			merged.sales = part.sales
		case storage.ShopStorage:
			merged.shops = part.shops
		}
	}

	return b.do(ctx, Imported, func() (string, bool, error) {
		b.load(merged)
		return "", true, nil
	}, storage.Namespaces...)
}
