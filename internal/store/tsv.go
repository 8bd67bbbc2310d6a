package store

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Santhoshkumar2302/langfuse/pkg/model"
)

// TSV header for event exports. Prompt and output bodies are not
// exported: they are free-form text and the export is a usage artifact,
// not a backup.
const EventsTSVHeader = "id\ttype\tuser_id\ttrace_id\ttimestamp\tmodel\ttokens_used\tcost_usd\turl\tmethod\tstatus_code\tduration_sec"

// MarshalEvent serializes an Event to a TSV line.
func MarshalEvent(e model.Event) string {
	return fmt.Sprintf("%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%d\t%s",
		clean(e.ID), clean(e.Type), clean(e.UserID), clean(e.TraceID),
		clean(e.Timestamp), clean(e.Model),
		formatFloat(e.TokensUsed), formatFloat(e.CostUSD),
		clean(e.URL), clean(e.Method), e.StatusCode, formatFloat(e.DurationSec),
	)
}

// UnmarshalEvent parses a TSV line into an Event.
func UnmarshalEvent(line string) (model.Event, error) {
	fields := strings.Split(line, "\t")
	if len(fields) < 12 {
		return model.Event{}, fmt.Errorf("expected 12 fields, got %d", len(fields))
	}

	tokens, err := strconv.ParseFloat(fields[6], 64)
	if err != nil {
		return model.Event{}, fmt.Errorf("invalid tokens_used: %w", err)
	}

	cost, err := strconv.ParseFloat(fields[7], 64)
	if err != nil {
		return model.Event{}, fmt.Errorf("invalid cost_usd: %w", err)
	}

	status, err := strconv.Atoi(fields[10])
	if err != nil {
		return model.Event{}, fmt.Errorf("invalid status_code: %w", err)
	}

	duration, err := strconv.ParseFloat(fields[11], 64)
	if err != nil {
		return model.Event{}, fmt.Errorf("invalid duration_sec: %w", err)
	}

	return model.Event{
		ID:          fields[0],
		Type:        fields[1],
		UserID:      fields[2],
		TraceID:     fields[3],
		Timestamp:   fields[4],
		Model:       fields[5],
		TokensUsed:  tokens,
		CostUSD:     cost,
		URL:         fields[8],
		Method:      fields[9],
		StatusCode:  status,
		DurationSec: duration,
	}, nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// clean keeps field values on one line and out of the column separator.
func clean(s string) string {
	s = strings.ReplaceAll(s, "\t", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}
