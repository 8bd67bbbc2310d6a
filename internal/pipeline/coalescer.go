package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/Santhoshkumar2302/langfuse/internal/store"
	"github.com/Santhoshkumar2302/langfuse/pkg/model"
)

// DefaultInterval is the fixed flush cadence.
const DefaultInterval = 5 * time.Second

// Coalescer batches "new data arrived" signals into a fixed-cadence
// flush, so a bursty stream cannot trigger more than one render per
// period. A tick on a clean store does no work at all; a tick on a
// dirty store clears the flag, runs exactly one flush over the working
// set as of that instant, and stamps the last-updated time.
type Coalescer struct {
	Interval time.Duration
	Store    *store.Bounded
	Flush    func(events []model.Event)

	mu          sync.Mutex
	lastUpdated time.Time
}

// Run drives the tick loop until ctx is cancelled.
func (c *Coalescer) Run(ctx context.Context) error {
	interval := c.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			c.Tick()
		}
	}
}

// Tick performs one coalescing pass. Exposed so manual refresh paths
// and tests can drive the coalescer without the ticker.
func (c *Coalescer) Tick() {
	events, ok := c.Store.ConsumeDirty()
	if !ok {
		return
	}

	c.Flush(events)
	flushesTotal.Inc()

	c.mu.Lock()
	c.lastUpdated = time.Now()
	c.mu.Unlock()
}

// LastUpdated returns the wall-clock time of the most recent flush, or
// the zero time before the first one.
func (c *Coalescer) LastUpdated() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastUpdated
}
