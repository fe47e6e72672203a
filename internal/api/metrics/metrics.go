// Package metrics defines and registers all custom Prometheus metrics for the
// dataset API. It is the single source of truth for metric names, labels, and
// help strings. Metrics register with the default registry via promauto at
// package load; the /metrics endpoint is wired in the router.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "medidata"

// ── Ingestion metrics ─────────────────────────────────────────────────────────

// IngestJobsTotal counts ingestion jobs by terminal outcome.
// Label:
//   - outcome: "completed" or "failed"
var IngestJobsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ingest_jobs_total",
		Help:      "Total number of ingestion jobs that reached a terminal state.",
	},
	[]string{"outcome"},
)

// IngestRowsTotal counts dataset entry rows by insertion result.
// Labels:
//   - dataset_type: declared type of the dataset (e.g. "ICD-10-CM")
//   - result: "inserted" or "failed"
var IngestRowsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ingest_rows_total",
		Help:      "Total number of parsed rows, labelled by insertion result.",
	},
	[]string{"dataset_type", "result"},
)

// IngestQueueDepth tracks the number of jobs waiting in the dispatcher queue.
var IngestQueueDepth = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "ingest_queue_depth",
		Help:      "Current number of ingestion jobs pending in the dispatcher queue.",
	},
)

// IngestJobDuration measures end-to-end job processing time from dequeue to
// terminal state.
// Label:
//   - outcome: "completed" or "failed"
var IngestJobDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "ingest_job_duration_seconds",
		Help:      "Duration of ingestion job processing from dequeue to terminal state.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"outcome"},
)

// ── Query metrics ─────────────────────────────────────────────────────────────

// EntrySearchesTotal counts entry queries against datasets.
// Label:
//   - kind: "search" (searchTerm present) or "view"
var EntrySearchesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "entry_searches_total",
		Help:      "Total number of dataset entry queries, by kind.",
	},
	[]string{"kind"},
)
