// Package tracker records llm-generation and api-span events and
// forwards them to a Langfuse-compatible ingestion endpoint.
package tracker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/Santhoshkumar2302/langfuse/internal/config"
	"github.com/Santhoshkumar2302/langfuse/pkg/logger"
	"github.com/Santhoshkumar2302/langfuse/pkg/model"
)

const (
	// EventTypeLLM marks a model generation.
	EventTypeLLM = "llm-generation"
	// EventTypeAPI marks an instrumented HTTP call.
	EventTypeAPI = "api-span"

	ingestionPath = "/api/public/ingestion"

	maxRetries = 2
	retryStep  = 200 * time.Millisecond
)

// Persister stores the local event row.
type Persister interface {
	InsertEvent(ctx context.Context, e model.Event) error
}

// Publisher fans a recorded event out to live stream subscribers.
type Publisher interface {
	Publish(batch []model.Event)
}

// LLMCall describes one model generation to record.
type LLMCall struct {
	UserID      string
	TraceID     string
	Model       string
	Prompt      string
	Output      string
	TokensUsed  float64
	CostUSD     float64
	DurationSec float64
}

// APICall describes one instrumented HTTP call to record.
type APICall struct {
	UserID      string
	TraceID     string
	URL         string
	Method      string
	StatusCode  int
	DurationSec float64
}

// Tracker persists events locally, publishes them to the stream, and
// forwards ingestion batches upstream when an upstream is configured.
type Tracker struct {
	store      Persister
	publisher  Publisher
	upstream   config.UpstreamConfig
	httpClient *http.Client
	log        *slog.Logger

	// sleep is swapped out in tests.
	sleep func(time.Duration)
}

// New builds a tracker. publisher may be nil when no live stream is
// attached; upstream forwarding is disabled when BaseURL is empty.
func New(store Persister, publisher Publisher, upstream config.UpstreamConfig, log *slog.Logger) *Tracker {
	if log == nil {
		log = logger.Default()
	}
	return &Tracker{
		store:      store,
		publisher:  publisher,
		upstream:   upstream,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		log:        log,
		sleep:      time.Sleep,
	}
}

// TrackLLM records a model generation. The local row is persisted
// before any upstream delivery is attempted; an upstream failure is
// logged but never loses the row.
func (t *Tracker) TrackLLM(ctx context.Context, call LLMCall) (model.Event, error) {
	e := t.newEvent(EventTypeLLM, call.UserID, call.TraceID)
	e.Model = call.Model
	e.Prompt = call.Prompt
	e.Output = call.Output
	e.TokensUsed = call.TokensUsed
	e.CostUSD = call.CostUSD
	e.DurationSec = call.DurationSec

	if err := t.record(ctx, e); err != nil {
		return model.Event{}, err
	}
	t.forward(ctx, e, batchForLLM(e))
	return e, nil
}

// TrackAPI records an instrumented HTTP call.
func (t *Tracker) TrackAPI(ctx context.Context, call APICall) (model.Event, error) {
	e := t.newEvent(EventTypeAPI, call.UserID, call.TraceID)
	e.URL = call.URL
	e.Method = call.Method
	e.StatusCode = call.StatusCode
	e.DurationSec = call.DurationSec

	if err := t.record(ctx, e); err != nil {
		return model.Event{}, err
	}
	t.forward(ctx, e, batchForAPI(e))
	return e, nil
}

func (t *Tracker) newEvent(typ, userID, traceID string) model.Event {
	if traceID == "" {
		traceID = uuid.New().String()
	}
	if userID == "" {
		userID = model.UnknownUser
	}
	return model.Event{
		ID:        uuid.New().String(),
		Type:      typ,
		UserID:    userID,
		TraceID:   traceID,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
	}
}

func (t *Tracker) record(ctx context.Context, e model.Event) error {
	if err := t.store.InsertEvent(ctx, e); err != nil {
		return fmt.Errorf("persist %s event: %w", e.Type, err)
	}
	if t.publisher != nil {
		t.publisher.Publish([]model.Event{e})
	}
	return nil
}

// forward posts the ingestion batch upstream, retrying twice with a
// linearly growing sleep. Failures are logged only.
func (t *Tracker) forward(ctx context.Context, e model.Event, batch ingestionBatch) {
	if t.upstream.BaseURL == "" {
		return
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			t.sleep(retryStep * time.Duration(attempt))
		}
		if lastErr = t.post(ctx, batch); lastErr == nil {
			return
		}
		t.log.Warn("upstream ingestion attempt failed",
			"event", e.ID, "attempt", attempt+1, "error", lastErr)
	}
	t.log.Error("upstream ingestion gave up", "event", e.ID, "error", lastErr)
}

func (t *Tracker) post(ctx context.Context, batch ingestionBatch) error {
	body, err := json.Marshal(batch)
	if err != nil {
		return fmt.Errorf("encode batch: %w", err)
	}

	url := t.upstream.BaseURL + ingestionPath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(t.upstream.PublicKey, t.upstream.SecretKey)

	res, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post ingestion batch: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode >= 300 {
		return fmt.Errorf("ingestion endpoint returned %s", res.Status)
	}
	return nil
}
