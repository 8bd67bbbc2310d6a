// Package snapshot fetches filtered historical events from the query
// API, replacing the dashboard working set wholesale.
package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Santhoshkumar2302/langfuse/pkg/model"
)

// Loader queries GET {BaseURL}/api/events. Concurrent loads are
// independent requests; callers decide what to do with each response
// (in practice the last one to arrive wins the working set).
type Loader struct {
	BaseURL    string
	HTTPClient *http.Client
}

// Load fetches one snapshot. On any error the caller's working set must
// be left untouched, so nothing is returned besides the error.
func (l *Loader) Load(ctx context.Context, f model.Filter) ([]model.Event, error) {
	f = f.Normalized()

	q := url.Values{}
	if f.User != "" {
		q.Set("user", f.User)
	}
	q.Set("limit", strconv.Itoa(f.Limit))
	q.Set("last_n_days", strconv.Itoa(f.LastNDays))

	endpoint := strings.TrimRight(l.BaseURL, "/") + "/api/events?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build snapshot request: %w", err)
	}

	res, err := l.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch snapshot: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch snapshot: unexpected status %d", res.StatusCode)
	}

	var events []model.Event
	if err := json.NewDecoder(res.Body).Decode(&events); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return events, nil
}

func (l *Loader) httpClient() *http.Client {
	if l.HTTPClient != nil {
		return l.HTTPClient
	}
	return &http.Client{Timeout: 30 * time.Second}
}
