// Package metrics defines the Prometheus instrumentation for the server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ConversionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "abm_conversions_total",
		Help: "Total number of conversion queries served.",
	})

	MissingLinkTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "abm_missing_link_total",
		Help: "Total number of conversion queries with no connecting path.",
	})

	RoutesReturned = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "abm_routes_returned",
		Help:    "Number of alternative routes returned per conversion query.",
		Buckets: []float64{0, 1, 2, 3, 4, 5},
	})

	SnapshotReloads = promauto.NewCounter(prometheus.CounterOpts{
		Name: "abm_snapshot_reloads_total",
		Help: "Total number of dataset snapshot reloads.",
	})

	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "abm_http_request_duration_ms",
		Help:    "HTTP request latency in milliseconds.",
		Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
	}, []string{"path"})
)
