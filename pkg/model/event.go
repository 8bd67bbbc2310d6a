package model

import "time"

// UnknownUser is the bucket for events that carry no user id.
const UnknownUser = "unknown"

// Event is a single telemetry record: one API call span or one LLM
// generation. Fields mirror the columns of the events table, so the same
// struct travels through the HTTP API, the SSE feed, and Postgres.
type Event struct {
	ID          string  `json:"id,omitempty"`
	Type        string  `json:"type,omitempty"`
	UserID      string  `json:"user_id,omitempty"`
	TraceID     string  `json:"trace_id,omitempty"`
	Timestamp   string  `json:"timestamp,omitempty"`
	Model       string  `json:"model,omitempty"`
	Prompt      string  `json:"prompt,omitempty"`
	Output      string  `json:"output,omitempty"`
	TokensUsed  float64 `json:"tokens_used,omitempty"`
	CostUSD     float64 `json:"cost_usd,omitempty"`
	URL         string  `json:"url,omitempty"`
	Method      string  `json:"method,omitempty"`
	StatusCode  int     `json:"status_code,omitempty"`
	DurationSec float64 `json:"duration_sec,omitempty"`
}

// Time parses the event timestamp. ok is false when the timestamp is
// absent or not RFC3339; callers fall back to the raw string.
func (e Event) Time() (time.Time, bool) {
	if e.Timestamp == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339Nano, e.Timestamp); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, e.Timestamp); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// User returns the event's user id, defaulting to UnknownUser.
func (e Event) User() string {
	if e.UserID == "" {
		return UnknownUser
	}
	return e.UserID
}
