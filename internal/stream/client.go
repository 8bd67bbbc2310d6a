// Package stream maintains the dashboard's subscription to the
// server-pushed event feed.
package stream

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/valyala/fastjson"

	"github.com/Santhoshkumar2302/langfuse/pkg/logger"
	"github.com/Santhoshkumar2302/langfuse/pkg/model"
)

// DefaultReconnectDelay is the fixed wait between subscription attempts.
const DefaultReconnectDelay = 2 * time.Second

// Client holds one logical SSE subscription at a time. Valid event
// batches are handed to OnBatch in receipt order; malformed frames are
// discarded without surfacing an error.
type Client struct {
	URL            string
	HTTPClient     *http.Client // no timeout: the subscription is long-lived
	ReconnectDelay time.Duration
	OnBatch        func(batch []model.Event)
	Logger         *slog.Logger
}

// Run subscribes and keeps resubscribing until ctx is cancelled. A
// failed or closed subscription is fully discarded and a new one opened
// after a fixed delay — no backoff growth, no retry cap. The delay also
// guarantees two subscriptions are never active at once.
func (c *Client) Run(ctx context.Context) error {
	delay := c.ReconnectDelay
	if delay <= 0 {
		delay = DefaultReconnectDelay
	}

	for {
		if err := c.subscribe(ctx); err != nil && ctx.Err() == nil {
			c.logger().Warn("event stream interrupted", "url", c.URL, "error", err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(delay):
		}
	}
}

func (c *Client) subscribe(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return fmt.Errorf("build stream request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	res, err := c.httpClient().Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", res.StatusCode)
	}

	scanner := bufio.NewScanner(res.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))

		batch, ok := parseBatch(payload)
		if !ok {
			c.logger().Debug("discarding malformed stream payload", "size", len(payload))
			continue
		}
		if c.OnBatch != nil {
			c.OnBatch(batch)
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	return errors.New("stream closed by server")
}

// parseBatch accepts only a JSON array of events. Anything else — plain
// text, a JSON object, a bare string — is reported as not-ok so the
// frame can be dropped without taking the pipeline down.
func parseBatch(payload string) ([]model.Event, bool) {
	v, err := fastjson.Parse(payload)
	if err != nil || v.Type() != fastjson.TypeArray {
		return nil, false
	}

	var batch []model.Event
	if err := json.Unmarshal([]byte(payload), &batch); err != nil {
		return nil, false
	}
	return batch, true
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func (c *Client) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return logger.Default()
}
