// Package view renders aggregated usage data. The terminal sink is the
// default consumer of the dashboard pipeline; chart helpers are shared
// with the one-shot graph command.
package view

import (
	"time"

	"github.com/Santhoshkumar2302/langfuse/internal/aggregate"
	"github.com/Santhoshkumar2302/langfuse/pkg/model"
)

// Sink consumes aggregator output. Render receives the derived view,
// the full working set in display order (newest-first), and the
// wall-clock time of the flush.
type Sink interface {
	Render(v aggregate.View, rows []model.Event, at time.Time)
}
