package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Santhoshkumar2302/langfuse/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventsTSVRoundTrip(t *testing.T) {
	t.Parallel()

	events := []model.Event{
		{ID: "e1", Type: "llm-generation", UserID: "alice", Timestamp: "2026-01-02T03:04:05Z",
			Model: "gpt-4o", TokensUsed: 120, CostUSD: 0.0042},
		{ID: "e2", Type: "api-span", UserID: "bob", Timestamp: "2026-01-02T03:04:06Z",
			URL: "https://api.example.com", Method: "GET", StatusCode: 200, DurationSec: 0.31},
	}

	path := filepath.Join(t.TempDir(), "events.tsv")
	require.NoError(t, writeEventsTSV(path, events))

	got, err := readEventsTSV(path)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "e1", got[0].ID)
	assert.Equal(t, 120.0, got[0].TokensUsed)
	assert.Equal(t, "https://api.example.com", got[1].URL)
	assert.Equal(t, 200, got[1].StatusCode)
}

func TestReadEventsTSVSkipsMalformedLines(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "events.tsv")
	content := "id\ttype\n" + "garbage line\n" +
		"e1\tllm-generation\talice\t\t2026-01-02T03:04:05Z\tgpt-4o\t10\t0.01\t\t\t0\t0\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	got, err := readEventsTSV(path)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "e1", got[0].ID)
}

func TestReadEventsTSVMissingFile(t *testing.T) {
	t.Parallel()

	_, err := readEventsTSV(filepath.Join(t.TempDir(), "nope.tsv"))
	assert.Error(t, err)
}
