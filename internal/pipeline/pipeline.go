// Package pipeline wires the dashboard data flow: snapshot loads replace
// the working set and render immediately, stream merges render on the
// next coalescer flush.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Santhoshkumar2302/langfuse/internal/aggregate"
	"github.com/Santhoshkumar2302/langfuse/internal/snapshot"
	"github.com/Santhoshkumar2302/langfuse/internal/store"
	"github.com/Santhoshkumar2302/langfuse/internal/stream"
	"github.com/Santhoshkumar2302/langfuse/internal/view"
	"github.com/Santhoshkumar2302/langfuse/pkg/logger"
	"github.com/Santhoshkumar2302/langfuse/pkg/model"
)

// Options configures a Pipeline. Zero values fall back to the package
// defaults of each component.
type Options struct {
	APIBaseURL      string
	StreamURL       string
	MaxRetained     int
	MaxPoints       int
	RefreshInterval time.Duration
	ReconnectDelay  time.Duration
	Sink            view.Sink
	Logger          *slog.Logger
}

// Pipeline owns the dashboard's moving parts. It is constructed once at
// startup; cancelling the Run context is the only teardown.
type Pipeline struct {
	store     *store.Bounded
	coalescer *Coalescer
	stream    *stream.Client
	loader    *snapshot.Loader
	sink      view.Sink
	maxPoints int
	log       *slog.Logger
}

// New assembles a pipeline from opts.
func New(opts Options) *Pipeline {
	log := opts.Logger
	if log == nil {
		log = logger.Default()
	}

	p := &Pipeline{
		store:     store.NewBounded(opts.MaxRetained),
		sink:      opts.Sink,
		maxPoints: opts.MaxPoints,
		log:       log,
	}

	p.coalescer = &Coalescer{
		Interval: opts.RefreshInterval,
		Store:    p.store,
		Flush:    p.render,
	}
	p.stream = &stream.Client{
		URL:            opts.StreamURL,
		ReconnectDelay: opts.ReconnectDelay,
		OnBatch:        p.merge,
		Logger:         log,
	}
	p.loader = &snapshot.Loader{BaseURL: opts.APIBaseURL}

	return p
}

// Run starts the stream subscription and the coalesced refresh loop,
// blocking until ctx is cancelled.
func (p *Pipeline) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return p.stream.Run(ctx) })
	g.Go(func() error { return p.coalescer.Run(ctx) })
	return g.Wait()
}

// Refresh fetches a snapshot, replaces the working set, and renders
// synchronously, bypassing the coalescer. On error the working set and
// the rendered view are left exactly as they were.
func (p *Pipeline) Refresh(ctx context.Context, f model.Filter) error {
	events, err := p.loader.Load(ctx, f)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}

	p.store.Replace(events)
	snapshotLoadsTotal.Inc()
	p.render(p.store.Snapshot())
	return nil
}

// Store exposes the working set for status displays.
func (p *Pipeline) Store() *store.Bounded {
	return p.store
}

// LastUpdated returns the time of the most recent coalesced flush.
func (p *Pipeline) LastUpdated() time.Time {
	return p.coalescer.LastUpdated()
}

func (p *Pipeline) merge(batch []model.Event) {
	p.store.Merge(batch)
	if len(batch) > 0 {
		mergesTotal.Inc()
		mergedEventsTotal.Add(float64(len(batch)))
	}
}

func (p *Pipeline) render(events []model.Event) {
	v := aggregate.Aggregate(events, p.maxPoints)
	if p.sink != nil {
		p.sink.Render(v, events, time.Now())
	}
}
