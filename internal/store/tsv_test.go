package store

import (
	"strings"
	"testing"

	"github.com/Santhoshkumar2302/langfuse/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalEvent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		event model.Event
	}{
		{
			name: "llm generation",
			event: model.Event{
				ID:         "gen-001",
				Type:       "llm-generation",
				UserID:     "alice",
				TraceID:    "trace-001",
				Timestamp:  "2025-01-15T10:30:00Z",
				Model:      "gpt-4",
				TokensUsed: 1250,
				CostUSD:    0.0375,
			},
		},
		{
			name: "api span",
			event: model.Event{
				ID:          "span-002",
				Type:        "api-span",
				UserID:      "bob",
				TraceID:     "trace-002",
				Timestamp:   "2025-01-15T10:31:00Z",
				URL:         "https://api.example.com/v1/items",
				Method:      "GET",
				StatusCode:  200,
				DurationSec: 0.123,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			line := MarshalEvent(tt.event)
			got, err := UnmarshalEvent(line)
			require.NoError(t, err)
			assert.Equal(t, tt.event, got)
		})
	}
}

func TestMarshalEventSanitizesSeparators(t *testing.T) {
	t.Parallel()

	e := model.Event{ID: "x", Type: "api\tspan", UserID: "a\nb", StatusCode: 1}
	line := MarshalEvent(e)
	assert.Equal(t, 11, strings.Count(line, "\t"))

	got, err := UnmarshalEvent(line)
	require.NoError(t, err)
	assert.Equal(t, "api span", got.Type)
	assert.Equal(t, "a b", got.UserID)
}

func TestUnmarshalEventErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		line string
	}{
		{name: "too few fields", line: "a\tb\tc"},
		{name: "bad tokens", line: "id\ttype\tuser\ttrace\tts\tmodel\tabc\t0\turl\tGET\t200\t0"},
		{name: "bad cost", line: "id\ttype\tuser\ttrace\tts\tmodel\t1\tabc\turl\tGET\t200\t0"},
		{name: "bad status", line: "id\ttype\tuser\ttrace\tts\tmodel\t1\t0\turl\tGET\tabc\t0"},
		{name: "bad duration", line: "id\ttype\tuser\ttrace\tts\tmodel\t1\t0\turl\tGET\t200\tabc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := UnmarshalEvent(tt.line)
			assert.Error(t, err)
		})
	}
}

func TestHeaderMatchesColumnCount(t *testing.T) {
	t.Parallel()

	cols := strings.Split(EventsTSVHeader, "\t")
	assert.Len(t, cols, 12)
}
