package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/Santhoshkumar2302/langfuse/internal/store"
	"github.com/Santhoshkumar2302/langfuse/pkg/model"
)

// readEventsTSV reads events from a TSV export. Malformed lines are
// skipped.
func readEventsTSV(path string) ([]model.Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var events []model.Event
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	// Skip header
	if scanner.Scan() {
		// consumed
	}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		event, err := store.UnmarshalEvent(line)
		if err != nil {
			continue
		}
		events = append(events, event)
	}

	return events, scanner.Err()
}

// writeEventsTSV writes events to path as a TSV export.
func writeEventsTSV(path string, events []model.Event) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintln(w, store.EventsTSVHeader)
	for _, e := range events {
		fmt.Fprintln(w, store.MarshalEvent(e))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return f.Close()
}
