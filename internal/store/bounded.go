// Package store holds the dashboard's in-memory working set of events
// and the TSV codec used for one-shot exports.
package store

import (
	"sync"

	"github.com/Santhoshkumar2302/langfuse/pkg/model"
)

// MaxRetained is the default cap on the working set size.
const MaxRetained = 300

// Bounded owns the working set: an ordered slice of events, newest-first,
// never longer than the configured maximum. It also owns the dirty flag
// that marks the rendered view as stale; the flag is set by merges and
// cleared only by ConsumeDirty.
type Bounded struct {
	mu     sync.Mutex
	events []model.Event
	dirty  bool
	max    int
}

// NewBounded returns a store capped at max events (MaxRetained when
// max <= 0).
func NewBounded(max int) *Bounded {
	if max <= 0 {
		max = MaxRetained
	}
	return &Bounded{max: max}
}

// Replace swaps the working set wholesale, truncating to the cap. The
// dirty flag is left untouched: replacement is always followed by an
// immediate synchronous render by the caller, not a coalesced one.
func (b *Bounded) Replace(events []model.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(events) > b.max {
		events = events[:b.max]
	}
	b.events = append([]model.Event(nil), events...)
}

// Merge prepends batch to the front of the working set in the order
// received, truncates the tail back to the cap, and marks the view
// dirty. An empty batch is a no-op and does not set the flag. Entries
// are not deduplicated against the existing set.
func (b *Bounded) Merge(batch []model.Event) {
	if len(batch) == 0 {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	merged := make([]model.Event, 0, len(batch)+len(b.events))
	merged = append(merged, batch...)
	merged = append(merged, b.events...)
	if len(merged) > b.max {
		merged = merged[:b.max]
	}
	b.events = merged
	b.dirty = true
}

// Snapshot returns a copy of the working set, newest-first.
func (b *Bounded) Snapshot() []model.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]model.Event(nil), b.events...)
}

// ConsumeDirty clears the dirty flag and returns a snapshot taken in the
// same critical section, so a coalescer flush always reflects the
// working set at the instant of the tick. ok is false when nothing has
// been merged since the last flush.
func (b *Bounded) ConsumeDirty() (events []model.Event, ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.dirty {
		return nil, false
	}
	b.dirty = false
	return append([]model.Event(nil), b.events...), true
}

// Len returns the working set size.
func (b *Bounded) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.events)
}

// Dirty reports whether a merge has happened since the last flush.
func (b *Bounded) Dirty() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dirty
}
