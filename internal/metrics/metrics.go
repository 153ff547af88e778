// Package metrics holds the Prometheus collectors of the analysis service.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "structure"

// Outcome labels of the analyses counter.
const (
	OutcomeOK        = "ok"
	OutcomeCached    = "cached"
	OutcomeNoData    = "no_data"
	OutcomeShortData = "short_history"
	OutcomeError     = "error"
)

// Metrics holds the Prometheus collectors registered by New.
type Metrics struct {
	registry *prometheus.Registry

	AnalysisDuration *prometheus.HistogramVec // labels: ticker
	AnalysesTotal    *prometheus.CounterVec   // labels: outcome
	FetchDuration    *prometheus.HistogramVec // labels: provider
	CacheHits        prometheus.Counter
	CacheMisses      prometheus.Counter
	StructureSignals *prometheus.CounterVec // labels: ticker, kind=tg|bg
	RefreshRuns      *prometheus.CounterVec // labels: outcome
	LastRefresh      prometheus.Gauge
}

// New registers every collector on a fresh registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.NewRegistry())
}

// NewWithRegistry registers every collector on reg.
func NewWithRegistry(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry: reg,
		AnalysisDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_duration_seconds",
			Help:      "Time spent running the structure pipeline over one series",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}, []string{"ticker"}),
		AnalysesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Analyses served, by outcome",
		}, []string{"outcome"}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Market data fetch latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"provider"}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Analysis results served from the cache",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_misses_total",
			Help:      "Analysis cache lookups that found nothing",
		}),
		StructureSignals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "structure_signals_total",
			Help:      "TG and BG rows seen on the latest row of refreshed series",
		}, []string{"ticker", "kind"}),
		RefreshRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_runs_total",
			Help:      "Scheduled watchlist refreshes, by outcome",
		}, []string{"outcome"}),
		LastRefresh: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_refresh_timestamp_seconds",
			Help:      "Unix time of the last completed watchlist refresh",
		}),
	}

	reg.MustRegister(
		m.AnalysisDuration,
		m.AnalysesTotal,
		m.FetchDuration,
		m.CacheHits,
		m.CacheMisses,
		m.StructureSignals,
		m.RefreshRuns,
		m.LastRefresh,
	)

	return m
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveAnalysis records one pipeline run.
func (m *Metrics) ObserveAnalysis(ticker string, d time.Duration) {
	if m == nil {
		return
	}

	m.AnalysisDuration.WithLabelValues(ticker).Observe(d.Seconds())
}

// ObserveFetch records one provider call.
func (m *Metrics) ObserveFetch(provider string, d time.Duration) {
	if m == nil {
		return
	}

	m.FetchDuration.WithLabelValues(provider).Observe(d.Seconds())
}

// CountOutcome increments the analyses counter.
func (m *Metrics) CountOutcome(outcome string) {
	if m == nil {
		return
	}

	m.AnalysesTotal.WithLabelValues(outcome).Inc()
}

// CountCache records a cache lookup.
func (m *Metrics) CountCache(hit bool) {
	if m == nil {
		return
	}

	if hit {
		m.CacheHits.Inc()
	} else {
		m.CacheMisses.Inc()
	}
}

// CountSignal records a TG or BG on the latest row of a series.
func (m *Metrics) CountSignal(ticker, kind string) {
	if m == nil {
		return
	}

	m.StructureSignals.WithLabelValues(ticker, kind).Inc()
}

// CountRefresh records a watchlist refresh.
func (m *Metrics) CountRefresh(outcome string, at time.Time) {
	if m == nil {
		return
	}

	m.RefreshRuns.WithLabelValues(outcome).Inc()

	if outcome == OutcomeOK {
		m.LastRefresh.Set(float64(at.Unix()))
	}
}
