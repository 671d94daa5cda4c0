package book

import (
	"sort"
	"sync"
)

// Op names a state change.
type Op string

const (
	ProductAdded   Op = "product.added"
	ProductUpdated Op = "product.updated"
	ProductDeleted Op = "product.deleted"
	ProductsReset  Op = "products.reset"
	SaleAdded      Op = "sale.added"
	SaleUpdated    Op = "sale.updated"
	SaleDeleted    Op = "sale.deleted"
	SalesReset     Op = "sales.reset"
	ShopAdded      Op = "shop.added"
	ShopUpdated    Op = "shop.updated"
	ShopDeleted    Op = "shop.deleted"
	ShopsReset     Op = "shops.reset"
	Imported       Op = "imported"
)

// Event tells subscribers that state changed. Subscribers read the new state
// back through the Book.
type Event struct {
	Op         Op       `json:"op"`
	ID         string   `json:"id,omitempty"`
	Namespaces []string `json:"namespaces"`
}

type subscribers struct {
	mu         sync.Mutex
	next       int
	fns        map[int]func(Event)
	pending    []Event
	delivering bool
}

func (s *subscribers) add(fn func(Event)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fns == nil {
		s.fns = make(map[int]func(Event))
	}
	id := s.next
	s.next++
	s.fns[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.fns, id)
	}
}

// queue appends ev. Callers hold the book lock so the queue follows
// mutation order.
func (s *subscribers) queue(ev Event) {
	s.mu.Lock()
	s.pending = append(s.pending, ev)
	s.mu.Unlock()
}

// deliver drains the queue unless another goroutine already is. A
// subscriber that mutates the book from its callback only queues its event.
func (s *subscribers) deliver() {
	s.mu.Lock()
	if s.delivering {
		s.mu.Unlock()
		return
	}
	s.delivering = true
	for len(s.pending) > 0 {
		ev := s.pending[0]
		s.pending = s.pending[1:]
		ids := make([]int, 0, len(s.fns))
		for id := range s.fns {
			ids = append(ids, id)
		}
		sort.Ints(ids)
		fns := make([]func(Event), 0, len(ids))
		for _, id := range ids {
			fns = append(fns, s.fns[id])
		}
		s.mu.Unlock()
		for _, fn := range fns {
			fn(ev)
		}
		s.mu.Lock()
	}
	s.pending = nil
	s.delivering = false
	s.mu.Unlock()
}
