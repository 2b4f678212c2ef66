package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "giftbudget"

var (
	SyncOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "ops_total",
			Help:      "Document writes processed by the sync queue, by result.",
		},
		[]string{"result"},
	)

	SyncRetriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "retries_total",
			Help:      "Retried document write attempts.",
		},
	)

	SyncQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "queue_depth",
			Help:      "Document writes waiting across all sessions.",
		},
	)

	SessionsOpen = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "sessions",
			Name:      "open",
			Help:      "User sessions currently held in memory.",
		},
	)

	SuggestionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "suggestions",
			Name:      "requests_total",
			Help:      "Suggestion requests by outcome (llm, fallback, superseded).",
		},
		[]string{"outcome"},
	)

	SuggestionLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "suggestions",
			Name:      "completion_seconds",
			Help:      "LLM completion latency.",
			Buckets:   prometheus.DefBuckets,
		},
	)

	RelayUpstreamTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "relay",
			Name:      "upstream_responses_total",
			Help:      "Upstream chat-completion responses by status code.",
		},
		[]string{"code"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route pattern and status code.",
		},
		[]string{"route", "code"},
	)
)
