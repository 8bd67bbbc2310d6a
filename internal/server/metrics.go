package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lfdash_http_requests_total",
		Help: "HTTP requests by method, route and status.",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "lfdash_http_request_duration_seconds",
		Help:    "HTTP request latency by method and route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	eventsIngestedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lfdash_events_ingested_total",
		Help: "Events accepted through the ingestion endpoint.",
	})

	streamClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "lfdash_stream_clients",
		Help: "Currently connected SSE subscribers.",
	})
)
