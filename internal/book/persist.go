package book

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/odyssey-erp/tripbook/internal/storage"
)

const writeTimeout = 10 * time.Second

// writer drains namespace snapshots into the store on a background
// goroutine. Pending snapshots coalesce per key, latest wins, and each drain
// is a single SetMany.
type writer struct {
	store  storage.Store
	logger *slog.Logger

	mu      sync.Mutex
	pending map[string][]byte
	queued  uint64
	flushed uint64
	lastErr error
	drained chan struct{}

	kick     chan struct{}
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

func newWriter(store storage.Store, logger *slog.Logger) *writer {
	w := &writer{
		store:   store,
		logger:  logger,
		pending: make(map[string][]byte),
		drained: make(chan struct{}),
		kick:    make(chan struct{}, 1),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go w.run()
	return w
}

func (w *writer) enqueue(entries map[string][]byte) {
	w.mu.Lock()
	for k, v := range entries {
		w.pending[k] = v
	}
	w.queued++
	w.mu.Unlock()

	select {
	case w.kick <- struct{}{}:
	default:
	}
}

func (w *writer) run() {
	defer close(w.done)
	for {
		select {
		case <-w.kick:
			w.drain()
		case <-w.stop:
			w.drain()
			return
		}
	}
}

func (w *writer) drain() {
	for {
		w.mu.Lock()
		if len(w.pending) == 0 {
			w.mu.Unlock()
			return
		}
		entries, seq := w.pending, w.queued
		w.pending = make(map[string][]byte)
		w.mu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		err := w.store.SetMany(ctx, entries)
		cancel()
		if err != nil {
			w.logger.Error("persist namespaces", slog.Any("keys", sortedKeys(entries)), slog.Any("error", err))
		}

		w.mu.Lock()
		w.flushed = seq
		if err != nil {
			w.lastErr = err
		}
		close(w.drained)
		w.drained = make(chan struct{})
		w.mu.Unlock()
	}
}

// flush waits until everything enqueued so far has been written and returns
// the last write failure seen since the previous flush.
func (w *writer) flush(ctx context.Context) error {
	w.mu.Lock()
	target := w.queued
	for w.flushed < target {
		ch := w.drained
		w.mu.Unlock()
		select {
		case <-ch:
		case <-w.done:
			w.mu.Lock()
			if w.flushed < target {
				w.mu.Unlock()
				return ErrClosed
			}
			w.mu.Unlock()
		case <-ctx.Done():
			return ctx.Err()
		}
		w.mu.Lock()
	}
	err := w.lastErr
	w.lastErr = nil
	w.mu.Unlock()
	return err
}

// close drains the queue and stops the goroutine.
func (w *writer) close(ctx context.Context) error {
	w.stopOnce.Do(func() { close(w.stop) })
	select {
	case <-w.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	w.mu.Lock()
	err := w.lastErr
	w.lastErr = nil
	w.mu.Unlock()
	return err
}

func sortedKeys(m map[string][]byte) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
