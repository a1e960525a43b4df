// Package metrics registers the service's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration observes handler latency by route and status class.
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "feed_ranker",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route and status.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "status"})

	// CandidatesScored counts candidates run through the predictor.
	CandidatesScored = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "feed_ranker",
		Name:      "candidates_scored_total",
		Help:      "Total candidates scored across all requests.",
	})

	// EmbeddingFailures counts failed embedding calls by operation.
	EmbeddingFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "feed_ranker",
		Name:      "embedding_failures_total",
		Help:      "Embedding provider failures by operation.",
	}, []string{"operation"})

	// ModerationVerdicts counts moderation outcomes by verdict.
	ModerationVerdicts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "feed_ranker",
		Name:      "moderation_verdicts_total",
		Help:      "Moderation verdicts rendered, by verdict.",
	}, []string{"verdict"})

	// RetrievalCandidates observes how many candidates retrieval returns.
	RetrievalCandidates = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "feed_ranker",
		Name:      "retrieval_candidates",
		Help:      "Candidates returned per retrieval request.",
		Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250, 500},
	})
)
