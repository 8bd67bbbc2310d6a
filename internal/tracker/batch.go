package tracker

import (
	"github.com/google/uuid"

	"github.com/Santhoshkumar2302/langfuse/pkg/model"
)

// ingestionBatch is the wire shape of the Langfuse batch ingestion API.
type ingestionBatch struct {
	Batch []ingestionItem `json:"batch"`
}

type ingestionItem struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Timestamp string `json:"timestamp"`
	Body      any    `json:"body"`
}

type traceBody struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	UserID    string `json:"userId"`
	Timestamp string `json:"timestamp"`
}

type generationBody struct {
	ID        string         `json:"id"`
	TraceID   string         `json:"traceId"`
	Name      string         `json:"name"`
	Model     string         `json:"model,omitempty"`
	Input     string         `json:"input,omitempty"`
	Output    string         `json:"output,omitempty"`
	Usage     map[string]any `json:"usage,omitempty"`
	StartTime string         `json:"startTime"`
}

type spanBody struct {
	ID        string         `json:"id"`
	TraceID   string         `json:"traceId"`
	Name      string         `json:"name"`
	Input     map[string]any `json:"input,omitempty"`
	Output    map[string]any `json:"output,omitempty"`
	StartTime string         `json:"startTime"`
}

// batchForLLM pairs a trace-create with a generation-create so the
// upstream UI groups the generation under its own trace.
func batchForLLM(e model.Event) ingestionBatch {
	return ingestionBatch{Batch: []ingestionItem{
		{
			ID:        uuid.New().String(),
			Type:      "trace-create",
			Timestamp: e.Timestamp,
			Body: traceBody{
				ID:        e.TraceID,
				Name:      EventTypeLLM,
				UserID:    e.User(),
				Timestamp: e.Timestamp,
			},
		},
		{
			ID:        uuid.New().String(),
			Type:      "generation-create",
			Timestamp: e.Timestamp,
			Body: generationBody{
				ID:      e.ID,
				TraceID: e.TraceID,
				Name:    EventTypeLLM,
				Model:   e.Model,
				Input:   e.Prompt,
				Output:  e.Output,
				Usage: map[string]any{
					"totalTokens": e.TokensUsed,
					"totalCost":   e.CostUSD,
				},
				StartTime: e.Timestamp,
			},
		},
	}}
}

func batchForAPI(e model.Event) ingestionBatch {
	return ingestionBatch{Batch: []ingestionItem{
		{
			ID:        uuid.New().String(),
			Type:      "trace-create",
			Timestamp: e.Timestamp,
			Body: traceBody{
				ID:        e.TraceID,
				Name:      EventTypeAPI,
				UserID:    e.User(),
				Timestamp: e.Timestamp,
			},
		},
		{
			ID:        uuid.New().String(),
			Type:      "span-create",
			Timestamp: e.Timestamp,
			Body: spanBody{
				ID:      e.ID,
				TraceID: e.TraceID,
				Name:    EventTypeAPI,
				Input: map[string]any{
					"url":    e.URL,
					"method": e.Method,
				},
				Output: map[string]any{
					"statusCode":  e.StatusCode,
					"durationSec": e.DurationSec,
				},
				StartTime: e.Timestamp,
			},
		},
	}}
}
