package pipeline

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/Santhoshkumar2302/langfuse/internal/aggregate"
	"github.com/Santhoshkumar2302/langfuse/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingSink records every render for assertions.
type countingSink struct {
	mu      sync.Mutex
	renders int
	lastV   aggregate.View
	lastLen int
}

func (s *countingSink) Render(v aggregate.View, rows []model.Event, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.renders++
	s.lastV = v
	s.lastLen = len(rows)
}

func (s *countingSink) snapshot() (int, aggregate.View, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.renders, s.lastV, s.lastLen
}

func TestRefreshReplacesAndRendersImmediately(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]model.Event{
			{ID: "new", Type: "api_call", CostUSD: 2.5, Timestamp: "2024-05-01T00:00:00Z"},
		})
	}))
	defer srv.Close()

	sink := &countingSink{}
	p := New(Options{APIBaseURL: srv.URL, Sink: sink})

	// Pre-existing streamed data is discarded wholesale by the snapshot.
	p.Store().Merge([]model.Event{{ID: "old"}})

	require.NoError(t, p.Refresh(context.Background(), model.Filter{}))

	renders, v, rows := sink.snapshot()
	assert.Equal(t, 1, renders, "refresh renders synchronously, not via the coalescer")
	assert.Equal(t, 1, rows)
	assert.Equal(t, 1, v.APIEventCount)
	assert.InDelta(t, 2.5, v.TotalCostUSD, 1e-9)

	got := p.Store().Snapshot()
	require.Len(t, got, 1)
	assert.Equal(t, "new", got[0].ID)
}

func TestRefreshFailureLeavesStateUntouched(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	sink := &countingSink{}
	p := New(Options{APIBaseURL: srv.URL, Sink: sink})
	p.Store().Merge([]model.Event{{ID: "kept"}})

	err := p.Refresh(context.Background(), model.Filter{})
	require.Error(t, err)

	renders, _, _ := sink.snapshot()
	assert.Equal(t, 0, renders, "failed refresh must not clear or re-render the view")

	got := p.Store().Snapshot()
	require.Len(t, got, 1)
	assert.Equal(t, "kept", got[0].ID)
	assert.True(t, p.Store().Dirty(), "pending stream data still flushes later")
}

func TestRunStreamsMergesAndCoalesces(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/events/stream", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		w.Write([]byte(`data: [{"id":"s1","type":"llm-generation","cost_usd":0.2}]` + "\n\n"))
		flusher.Flush()
		// Hold the connection open so the client does not reconnect and
		// redeliver during the test window.
		<-r.Context().Done()
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	sink := &countingSink{}
	p := New(Options{
		APIBaseURL:      srv.URL,
		StreamURL:       srv.URL + "/events/stream",
		RefreshInterval: 20 * time.Millisecond,
		ReconnectDelay:  10 * time.Millisecond,
		Sink:            sink,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = p.Run(ctx)
	}()

	require.Eventually(t, func() bool {
		renders, _, _ := sink.snapshot()
		return renders >= 1
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	<-done

	_, v, rows := sink.snapshot()
	assert.Equal(t, 1, rows)
	assert.Equal(t, 1, v.LLMEventCount)
	assert.False(t, p.LastUpdated().IsZero())
}
