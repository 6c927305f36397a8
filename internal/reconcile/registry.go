package reconcile

import (
	"sort"
	"sync"
)

// Registry hands out one Store per partition. Stores are never shared
// between partitions, so a late fetch for one conversation can only touch
// that conversation's list.
type Registry[T Record] struct {
	order Order
	fetch Fetcher[T]

	mu     sync.Mutex
	stores map[string]*Store[T]
}

// NewRegistry returns a registry whose stores use order and fetch.
func NewRegistry[T Record](order Order, fetch Fetcher[T]) *Registry[T] {
	return &Registry[T]{order: order, fetch: fetch, stores: make(map[string]*Store[T])}
}

// Store returns the store for partition, creating it on first use.
func (r *Registry[T]) Store(partition string) *Store[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.stores[partition]
	if !ok {
		s = NewStore(partition, r.order, r.fetch)
		r.stores[partition] = s
	}
	return s
}

// Lookup returns the store for partition if one exists.
func (r *Registry[T]) Lookup(partition string) (*Store[T], bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.stores[partition]
	return s, ok
}

// Drop forgets the store for partition.
func (r *Registry[T]) Drop(partition string) {
	r.mu.Lock()
	delete(r.stores, partition)
	r.mu.Unlock()
}

// Partitions lists the partitions with a store, sorted.
func (r *Registry[T]) Partitions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.stores))
	for p := range r.stores {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
