package server

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Santhoshkumar2302/langfuse/internal/config"
	"github.com/Santhoshkumar2302/langfuse/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory EventStore recording calls.
type fakeStore struct {
	mu         sync.Mutex
	events     []model.Event
	lastFilter model.Filter
	fetchErr   error
	insertErr  error
	pingErr    error
}

func (f *fakeStore) InsertEvent(_ context.Context, e model.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return f.insertErr
	}
	f.events = append(f.events, e)
	return nil
}

func (f *fakeStore) FetchEvents(_ context.Context, filter model.Filter) ([]model.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastFilter = filter
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.events, nil
}

func (f *fakeStore) Ping(context.Context) error { return f.pingErr }

func (f *fakeStore) filter() model.Filter {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastFilter
}

func (f *fakeStore) inserted() []model.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Event(nil), f.events...)
}

func newTestServer(st EventStore) *Server {
	return New(config.ServerConfig{Host: "127.0.0.1", Port: 0}, st, nil)
}

func TestListEventsDefaults(t *testing.T) {
	t.Parallel()

	st := &fakeStore{}
	s := newTestServer(st)

	tests := []struct {
		name  string
		query string
		want  model.Filter
	}{
		{"no params", "", model.Filter{Limit: 1000, LastNDays: 30}},
		{"explicit", "?user=alice&limit=50&last_n_days=7", model.Filter{User: "alice", Limit: 50, LastNDays: 7}},
		{"invalid numbers fall back", "?limit=abc&last_n_days=-3", model.Filter{Limit: 1000, LastNDays: 30}},
		{"whitespace user trimmed", "?user=%20%20", model.Filter{Limit: 1000, LastNDays: 30}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/events"+tt.query, nil)
			s.Handler().ServeHTTP(rec, req)

			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.want, st.filter())
		})
	}
}

func TestListEventsEmptyIsArray(t *testing.T) {
	t.Parallel()

	s := newTestServer(&fakeStore{})
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/events", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestListEventsStoreError(t *testing.T) {
	t.Parallel()

	s := newTestServer(&fakeStore{fetchErr: errors.New("db down")})
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/events", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestIngestSingleEvent(t *testing.T) {
	t.Parallel()

	st := &fakeStore{}
	s := newTestServer(st)

	body := `{"type":"llm-generation","user_id":"alice","tokens_used":12,"cost_usd":0.01}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/events", strings.NewReader(body))
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)

	inserted := st.inserted()
	require.Len(t, inserted, 1)
	assert.NotEmpty(t, inserted[0].ID, "missing id is filled")
	assert.NotEmpty(t, inserted[0].Timestamp, "missing timestamp is filled")
	assert.Equal(t, "alice", inserted[0].UserID)
}

func TestIngestBatchPublishesToHub(t *testing.T) {
	t.Parallel()

	st := &fakeStore{}
	s := newTestServer(st)

	ch, cancel := s.Hub().Subscribe()
	defer cancel()

	body := `[{"type":"api-span","url":"https://x"},{"type":"llm-generation"}]`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/events", strings.NewReader(body))
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp map[string]int
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp["accepted"])
	assert.Equal(t, 2, resp["inserted"])

	select {
	case batch := <-ch:
		require.Len(t, batch, 2)
		assert.Equal(t, model.UnknownUser, batch[1].UserID)
	case <-time.After(time.Second):
		t.Fatal("batch was not published to the hub")
	}
}

func TestIngestRejectsMalformedBody(t *testing.T) {
	t.Parallel()

	s := newTestServer(&fakeStore{})

	for _, body := range []string{"", "not json", `"a string"`, `[1,2]`} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/events", strings.NewReader(body))
		s.Handler().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %q", body)
	}
}

func TestIngestInsertErrorStillStreams(t *testing.T) {
	t.Parallel()

	st := &fakeStore{insertErr: errors.New("disk full")}
	s := newTestServer(st)

	ch, cancel := s.Hub().Subscribe()
	defer cancel()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/events", strings.NewReader(`[{"type":"api-span"}]`))
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp map[string]int
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp["inserted"])

	select {
	case batch := <-ch:
		assert.Len(t, batch, 1)
	case <-time.After(time.Second):
		t.Fatal("batch should stream even when persistence fails")
	}
}

func TestHealth(t *testing.T) {
	t.Parallel()

	t.Run("ok", func(t *testing.T) {
		t.Parallel()

		s := newTestServer(&fakeStore{})
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("degraded", func(t *testing.T) {
		t.Parallel()

		s := newTestServer(&fakeStore{pingErr: errors.New("no db")})
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestStreamDeliversPublishedBatch(t *testing.T) {
	t.Parallel()

	s := newTestServer(&fakeStore{})
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/events/stream", nil)
	require.NoError(t, err)
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Equal(t, "text/event-stream", res.Header.Get("Content-Type"))

	// Wait for the subscription to land before publishing.
	require.Eventually(t, func() bool {
		return s.Hub().Subscribers() == 1
	}, 2*time.Second, 5*time.Millisecond)

	s.Hub().Publish([]model.Event{{ID: "live-1", Type: "llm-generation"}})

	scanner := bufio.NewScanner(res.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		var batch []model.Event
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		require.NoError(t, json.Unmarshal([]byte(payload), &batch))
		require.Len(t, batch, 1)
		assert.Equal(t, "live-1", batch[0].ID)
		return
	}
	t.Fatalf("no data frame received: %v", scanner.Err())
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()

	s := newTestServer(&fakeStore{})
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "lfdash_")
}
