package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	mergesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lfdash_pipeline_merges_total",
		Help: "Stream batches merged into the working set.",
	})
	mergedEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lfdash_pipeline_merged_events_total",
		Help: "Events merged into the working set.",
	})
	flushesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lfdash_pipeline_flushes_total",
		Help: "Coalesced aggregate-and-render passes.",
	})
	snapshotLoadsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lfdash_pipeline_snapshot_loads_total",
		Help: "Successful snapshot loads replacing the working set.",
	})
)
