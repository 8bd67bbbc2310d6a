package view

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/Santhoshkumar2302/langfuse/internal/aggregate"
	"github.com/Santhoshkumar2302/langfuse/pkg/model"
)

const (
	barWidth     = 40
	maxTableRows = 300
)

// Terminal renders the dashboard as plain text: metrics cards, a
// cost-by-date chart, a count-by-user chart, and the event table.
type Terminal struct {
	mu         sync.Mutex
	w          io.Writer
	ClearFirst bool // emit an ANSI clear before each render
	TableRows  int  // table row cap, maxTableRows when 0
}

// NewTerminal returns a sink writing to w.
func NewTerminal(w io.Writer) *Terminal {
	return &Terminal{w: w}
}

// Render implements Sink.
func (t *Terminal) Render(v aggregate.View, rows []model.Event, at time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.ClearFirst {
		fmt.Fprint(t.w, "\033[2J\033[H")
	}

	fmt.Fprintf(t.w, "Usage dashboard — last updated %s\n\n", at.Format("15:04:05"))
	fmt.Fprintf(t.w, "  Total tokens: %.0f   Total cost: $%.4f   API events: %d   LLM events: %d   Rows: %d\n\n",
		v.TotalTokens, v.TotalCostUSD, v.APIEventCount, v.LLMEventCount, len(rows))

	fmt.Fprintln(t.w, "Cost by date")
	WriteCostChart(t.w, v.CostByDate)
	fmt.Fprintln(t.w)

	fmt.Fprintln(t.w, "Events by user")
	WriteUserChart(t.w, v.CountByUser)
	fmt.Fprintln(t.w)

	t.writeTable(rows)
}

// WriteCostChart renders the cost-by-date series as horizontal bars.
func WriteCostChart(w io.Writer, series []aggregate.DatePoint) {
	if len(series) == 0 {
		fmt.Fprintln(w, "  (no data)")
		return
	}

	max := 0.0
	for _, p := range series {
		if p.Cost > max {
			max = p.Cost
		}
	}

	for _, p := range series {
		fmt.Fprintf(w, "  %-12s %s $%.4f\n", p.Date, bar(p.Cost, max), p.Cost)
	}
}

// WriteUserChart renders the count-by-user series as horizontal bars.
func WriteUserChart(w io.Writer, series []aggregate.UserCount) {
	if len(series) == 0 {
		fmt.Fprintln(w, "  (no data)")
		return
	}

	max := 0
	for _, u := range series {
		if u.Count > max {
			max = u.Count
		}
	}

	for _, u := range series {
		fmt.Fprintf(w, "  %-16s %s %d\n", truncate(u.User, 16), bar(float64(u.Count), float64(max)), u.Count)
	}
}

func (t *Terminal) writeTable(rows []model.Event) {
	limit := t.TableRows
	if limit <= 0 {
		limit = maxTableRows
	}
	if len(rows) > limit {
		rows = rows[:limit]
	}

	fmt.Fprintf(t.w, "%-20s  %-16s  %-16s  %-12s  %10s  %10s\n",
		"TIMESTAMP", "USER", "TYPE", "MODEL", "TOKENS", "COST")
	for _, e := range rows {
		fmt.Fprintf(t.w, "%-20s  %-16s  %-16s  %-12s  %10.0f  %10.4f\n",
			truncate(e.Timestamp, 20), truncate(e.User(), 16),
			truncate(e.Type, 16), truncate(e.Model, 12),
			e.TokensUsed, e.CostUSD)
	}
}

func bar(value, max float64) string {
	if max <= 0 {
		return ""
	}
	n := int(value / max * barWidth)
	if n < 1 && value > 0 {
		n = 1
	}
	return strings.Repeat("█", n)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
