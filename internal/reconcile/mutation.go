package reconcile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/rs/zerolog/log"
)

var (
	// ErrEmptyDraft is returned when there is nothing to submit.
	ErrEmptyDraft = errors.New("reconcile: draft is empty")
	// ErrBusy is returned while an earlier submission is still in flight.
	ErrBusy = errors.New("reconcile: submission in progress")
)

// Writer persists r and returns the canonical row.
type Writer[T Record] func(ctx context.Context, r T) (T, error)

// Mutation turns a draft into a record, applies it locally and writes it.
//
// With ApplyBeforeWrite the record shows up in Store before the write
// resolves (chat). Otherwise it is added once the write succeeds (orders,
// reviews). Either way the canonical row replaces the local one by id, so
// records must be built with the id the backend will keep.
//
// A failed write restores the draft. A record already applied before the
// write is left in the store.
type Mutation[T Record] struct {
	Store            *Store[T]
	Write            Writer[T]
	ApplyBeforeWrite bool
	OnSuccess        func(T)

	busy atomic.Bool
}

// Submit runs one mutation. build receives the trimmed draft text.
func (m *Mutation[T]) Submit(ctx context.Context, d *Draft, build func(text string) T) (T, error) {
	var zero T
	if !m.busy.CompareAndSwap(false, true) {
		return zero, ErrBusy
	}
	defer m.busy.Store(false)

	raw := d.Value()
	text := strings.TrimSpace(raw)
	if text == "" {
		return zero, ErrEmptyDraft
	}
	d.Clear()

	local := build(text)
	if m.ApplyBeforeWrite {
		m.Store.ApplyInsert(local)
	}

	saved, err := m.Write(ctx, local)
	if err != nil {
		d.Restore(raw)
		log.Warn().Err(err).Str("id", local.RecordID()).Msg("write failed; draft restored")
		return zero, fmt.Errorf("reconcile: write %s: %w", local.RecordID(), err)
	}

	m.Store.Upsert(saved)
	if m.OnSuccess != nil {
		m.OnSuccess(saved)
	}
	return saved, nil
}

// Busy reports whether a submission is in flight.
func (m *Mutation[T]) Busy() bool { return m.busy.Load() }
