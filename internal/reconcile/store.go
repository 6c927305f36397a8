// Package reconcile keeps client-side lists of records consistent with the
// backend. A Store merges a bulk fetch and a live stream of insert/update
// events into one ordered, id-deduplicated sequence; a Mutation applies a
// user action optimistically and reconciles it with the canonical row the
// write returns.
package reconcile

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Record is anything a Store can hold.
type Record interface {
	RecordID() string
	RecordTime() time.Time
}

// Partitioned records name the partition they belong to. Stores scoped to a
// partition reject records from other partitions.
type Partitioned interface {
	RecordPartition() string
}

// Order is the materialised order of a Store.
type Order int

const (
	// Ascending keeps the oldest record first (chat).
	Ascending Order = iota
	// Descending keeps the newest record first (orders, reviews).
	Descending
)

// Fetcher loads every record of a partition.
type Fetcher[T Record] func(ctx context.Context, partition string) ([]T, error)

// Store is an ordered, id-deduplicated list of records for one partition.
// It is safe for concurrent use; listeners run outside the lock.
type Store[T Record] struct {
	partition string
	order     Order
	fetch     Fetcher[T]

	mu        sync.RWMutex
	items     []T
	listeners []func([]T)
}

// NewStore returns an empty store. partition may be empty for stores that
// hold records of every partition (the admin order list).
func NewStore[T Record](partition string, order Order, fetch Fetcher[T]) *Store[T] {
	return &Store[T]{partition: partition, order: order, fetch: fetch}
}

// Partition returns the partition the store is scoped to.
func (s *Store[T]) Partition() string { return s.partition }

// Load replaces the list with a fresh fetch. On error the previous contents
// are kept and the error is logged and returned.
func (s *Store[T]) Load(ctx context.Context) error {
	if s.fetch == nil {
		return nil
	}
	fetched, err := s.fetch(ctx, s.partition)
	if err != nil {
		log.Warn().Err(err).Str("partition", s.partition).Msg("list load failed; keeping previous state")
		return err
	}

	items := make([]T, 0, len(fetched))
	seen := make(map[string]struct{}, len(fetched))
	for _, r := range fetched {
		if !s.accepts(r) {
			continue
		}
		if _, dup := seen[r.RecordID()]; dup {
			continue
		}
		seen[r.RecordID()] = struct{}{}
		items = append(items, r)
	}
	sort.SliceStable(items, func(i, j int) bool { return s.before(items[i], items[j]) })

	s.mu.Lock()
	s.items = items
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)
	return nil
}

// ApplyInsert adds r at its chronological position. It reports false and
// changes nothing when r's id is already present or r belongs to another
// partition.
func (s *Store[T]) ApplyInsert(r T) bool {
	if !s.accepts(r) {
		return false
	}
	s.mu.Lock()
	if s.indexLocked(r.RecordID()) >= 0 {
		s.mu.Unlock()
		return false
	}
	s.insertLocked(r)
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)
	return true
}

// ApplyUpdate replaces the record with r's id in place. Updates for unknown
// ids are ignored.
func (s *Store[T]) ApplyUpdate(r T) bool {
	if !s.accepts(r) {
		return false
	}
	s.mu.Lock()
	i := s.indexLocked(r.RecordID())
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	s.items[i] = r
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)
	return true
}

// Upsert updates r when present and inserts it otherwise. A present record
// whose time changed (a local stand-in replaced by the canonical row) is
// moved to its new chronological position.
func (s *Store[T]) Upsert(r T) bool {
	if !s.accepts(r) {
		return false
	}
	s.mu.Lock()
	switch i := s.indexLocked(r.RecordID()); {
	case i < 0:
		s.insertLocked(r)
	case s.items[i].RecordTime().Equal(r.RecordTime()):
		s.items[i] = r
	default:
		s.items = append(s.items[:i], s.items[i+1:]...)
		s.insertLocked(r)
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)
	return true
}

// Items returns a copy of the list.
func (s *Store[T]) Items() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Len returns the number of records.
func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Get returns the record with id.
func (s *Store[T]) Get(id string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexLocked(id); i >= 0 {
		return s.items[i], true
	}
	var zero T
	return zero, false
}

// OnChange registers fn to receive a copy of the list after every change.
func (s *Store[T]) OnChange(fn func([]T)) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

func (s *Store[T]) accepts(r T) bool {
	if s.partition == "" {
		return true
	}
	p, ok := any(r).(Partitioned)
	return !ok || p.RecordPartition() == s.partition
}

// before reports whether a sorts ahead of b.
func (s *Store[T]) before(a, b T) bool {
	if s.order == Descending {
		return a.RecordTime().After(b.RecordTime())
	}
	return a.RecordTime().Before(b.RecordTime())
}

func (s *Store[T]) insertLocked(r T) {
	t := r.RecordTime()
	var i int
	if s.order == Descending {
		// first record not newer than r; ties go in front
		i = sort.Search(len(s.items), func(k int) bool { return !s.items[k].RecordTime().After(t) })
	} else {
		// first record strictly newer than r; ties go behind
		i = sort.Search(len(s.items), func(k int) bool { return s.items[k].RecordTime().After(t) })
	}
	var zero T
	s.items = append(s.items, zero)
	copy(s.items[i+1:], s.items[i:])
	s.items[i] = r
}

func (s *Store[T]) indexLocked(id string) int {
	for i := range s.items {
		if s.items[i].RecordID() == id {
			return i
		}
	}
	return -1
}

func (s *Store[T]) snapshotLocked() []T {
	out := make([]T, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Store[T]) notify(snap []T) {
	s.mu.RLock()
	ls := append([]func([]T){}, s.listeners...)
	s.mu.RUnlock()
	for _, fn := range ls {
		fn(snap)
	}
}
