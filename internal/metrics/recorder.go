// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pdiddy/bioexplorer/pkg/types"
)

const namespace = "bioexplorer"

// Outcome labels for search requests.
const (
	OutcomeOK         = "ok"
	OutcomeEmpty      = "empty"
	OutcomeError      = "error"
	OutcomeTooShort   = "too_short"
	OutcomeSuperseded = "superseded"
)

// Recorder owns a Prometheus registry with the explorer's collectors. A
// nil *Recorder is valid and records nothing.
type Recorder struct {
	registry *prometheus.Registry

	searchTotal     *prometheus.CounterVec
	oracleLatency   *prometheus.HistogramVec
	groundedRatio   prometheus.Histogram
	dedupTotal      prometheus.Counter
	sectionTotal    *prometheus.CounterVec
	skippedTotal    *prometheus.CounterVec
	cacheTotal      *prometheus.CounterVec
	detailTotal     *prometheus.CounterVec
	chatTurnsTotal  prometheus.Counter
	httpRequests    *prometheus.CounterVec
	httpRequestTime *prometheus.HistogramVec
}

// NewRecorder builds a Recorder on a fresh registry.
func NewRecorder() *Recorder {
	registry := prometheus.NewRegistry()

	r := &Recorder{
		registry: registry,
		searchTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "search",
				Name:      "requests_total",
				Help:      "Search requests by retrieval mode and outcome.",
			},
			[]string{"mode", "outcome"},
		),
		oracleLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "oracle",
				Name:      "request_duration_seconds",
				Help:      "Retrieval backend call duration in seconds.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"op"},
		),
		groundedRatio: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "rag",
				Name:      "grounded_ratio",
				Help:      "Oracle-reported grounded ratio per answer.",
				Buckets:   []float64{0.1, 0.25, 0.5, 0.75, 0.9, 0.95, 1},
			},
		),
		dedupTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "rag",
				Name:      "dedup_total",
				Help:      "Near-duplicate evidence items collapsed by the oracle.",
			},
		),
		sectionTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "rag",
				Name:      "evidence_sections_total",
				Help:      "Evidence items by document section.",
			},
			[]string{"section"},
		),
		skippedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "normalize",
				Name:      "skipped_total",
				Help:      "Malformed records skipped during normalization.",
			},
			[]string{"mode"},
		),
		cacheTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "cache",
				Name:      "lookups_total",
				Help:      "Study cache lookups by result.",
			},
			[]string{"result"},
		),
		detailTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "detail",
				Name:      "requests_total",
				Help:      "Study detail lookups by source.",
			},
			[]string{"source"},
		),
		chatTurnsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "chat",
				Name:      "turns_total",
				Help:      "Chat answers appended to session history.",
			},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "BFF HTTP requests processed.",
			},
			[]string{"method", "route", "status"},
		),
		httpRequestTime: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "BFF HTTP request duration in seconds.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}

	registry.MustRegister(
		r.searchTotal,
		r.oracleLatency,
		r.groundedRatio,
		r.dedupTotal,
		r.sectionTotal,
		r.skippedTotal,
		r.cacheTotal,
		r.detailTotal,
		r.chatTurnsTotal,
		r.httpRequests,
		r.httpRequestTime,
	)
	return r
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Search counts one search request.
func (r *Recorder) Search(mode types.SearchMode, outcome string) {
	if r == nil {
		return
	}
	if mode == "" {
		mode = "unknown"
	}
	r.searchTotal.WithLabelValues(string(mode), outcome).Inc()
}

// OracleCall observes the duration of one backend call.
func (r *Recorder) OracleCall(op string, d time.Duration) {
	if r == nil {
		return
	}
	r.oracleLatency.WithLabelValues(op).Observe(d.Seconds())
}

// Answer records the oracle-reported metrics of one answer.
func (r *Recorder) Answer(m *types.ResponseMetrics) {
	if r == nil || m == nil {
		return
	}
	r.groundedRatio.Observe(m.GroundedRatio)
	if m.DedupCount > 0 {
		r.dedupTotal.Add(float64(m.DedupCount))
	}
	for section, n := range m.SectionDistribution {
		if n > 0 {
			r.sectionTotal.WithLabelValues(section).Add(float64(n))
		}
	}
}

// Skipped counts records dropped by normalization.
func (r *Recorder) Skipped(mode types.SearchMode, n int) {
	if r == nil || n <= 0 {
		return
	}
	r.skippedTotal.WithLabelValues(string(mode)).Add(float64(n))
}

// CacheLookup counts a study cache hit or miss.
func (r *Recorder) CacheLookup(hit bool) {
	if r == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheTotal.WithLabelValues(result).Inc()
}

// Detail counts a detail lookup by where the record came from.
func (r *Recorder) Detail(source types.DetailSource) {
	if r == nil {
		return
	}
	r.detailTotal.WithLabelValues(string(source)).Inc()
}

// ChatTurn counts one answer appended to a chat history.
func (r *Recorder) ChatTurn() {
	if r == nil {
		return
	}
	r.chatTurnsTotal.Inc()
}

// HTTPRequest records one BFF request.
func (r *Recorder) HTTPRequest(method, route, status string, d time.Duration) {
	if r == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	r.httpRequests.WithLabelValues(method, route, status).Inc()
	r.httpRequestTime.WithLabelValues(method, route).Observe(d.Seconds())
}
