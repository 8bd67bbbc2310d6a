// Package aggregate turns a working set of events into the derived views
// the dashboard renders. All transforms are pure: the same input always
// yields the same View.
package aggregate

import (
	"sort"
	"strings"

	"github.com/Santhoshkumar2302/langfuse/pkg/model"
)

// DefaultMaxPoints is the chart window size: charts cover the most
// recent DefaultMaxPoints events while totals and the table always
// cover the full working set.
const DefaultMaxPoints = 50

// DatePoint is one bucket of the cost-by-date series.
type DatePoint struct {
	Date string  `json:"date"`
	Cost float64 `json:"cost"`
}

// UserCount is one bar of the count-by-user series.
type UserCount struct {
	User  string `json:"user"`
	Count int    `json:"count"`
}

// View is the aggregate of a working set at flush time. It has no
// lifecycle of its own; it is recomputed wholesale on every flush.
type View struct {
	TotalTokens   float64     `json:"total_tokens"`
	TotalCostUSD  float64     `json:"total_cost_usd"`
	APIEventCount int         `json:"api_event_count"`
	LLMEventCount int         `json:"llm_event_count"`
	CostByDate    []DatePoint `json:"cost_by_date"`
	CountByUser   []UserCount `json:"count_by_user"`
}

// Aggregate computes a View from events ordered newest-first (the
// working set's storage order). Totals and classification counts cover
// every event; the two chart series are computed from a chronological
// window of the most recent maxPoints events.
func Aggregate(events []model.Event, maxPoints int) View {
	if maxPoints <= 0 {
		maxPoints = DefaultMaxPoints
	}

	var v View
	for _, e := range events {
		v.TotalTokens += e.TokensUsed
		v.TotalCostUSD += e.CostUSD
		if IsAPI(e) {
			v.APIEventCount++
		}
		if IsLLM(e) {
			v.LLMEventCount++
		}
	}

	window := chartWindow(events, maxPoints)
	v.CostByDate = costByDate(window)
	v.CountByUser = countByUser(window)
	return v
}

// IsAPI reports whether the event counts as an API call. Classification
// is by substring and not mutually exclusive with IsLLM.
func IsAPI(e model.Event) bool {
	return strings.Contains(e.Type, "api")
}

// IsLLM reports whether the event counts as an LLM generation.
func IsLLM(e model.Event) bool {
	return strings.Contains(e.Type, "llm") || strings.Contains(e.Type, "generation")
}

// DateBucket returns the UTC calendar date of the event timestamp, or
// the raw timestamp string when it cannot be parsed.
func DateBucket(e model.Event) string {
	t, ok := e.Time()
	if !ok {
		return e.Timestamp
	}
	return t.UTC().Format("2006-01-02")
}

// chartWindow converts the newest-first working set to chronological
// (oldest-first) order and keeps the most recent maxPoints events.
func chartWindow(events []model.Event, maxPoints int) []model.Event {
	if len(events) > maxPoints {
		events = events[:maxPoints]
	}
	out := make([]model.Event, len(events))
	for i, e := range events {
		out[len(events)-1-i] = e
	}
	return out
}

func costByDate(events []model.Event) []DatePoint {
	totals := make(map[string]float64)
	for _, e := range events {
		totals[DateBucket(e)] += e.CostUSD
	}

	dates := make([]string, 0, len(totals))
	for d := range totals {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	series := make([]DatePoint, 0, len(dates))
	for _, d := range dates {
		series = append(series, DatePoint{Date: d, Cost: totals[d]})
	}
	return series
}

func countByUser(events []model.Event) []UserCount {
	index := make(map[string]int)
	var series []UserCount
	for _, e := range events {
		user := e.User()
		if i, ok := index[user]; ok {
			series[i].Count++
			continue
		}
		index[user] = len(series)
		series = append(series, UserCount{User: user, Count: 1})
	}
	return series
}
