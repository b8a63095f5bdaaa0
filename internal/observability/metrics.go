package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "flood_risk"

// Metrics holds the Prometheus counters, histograms, and gauges for the update pipeline.
type Metrics struct {
	PipelineRunning prometheus.Gauge

	// Source resolution.
	FetchOutcomes *prometheus.CounterVec // labels: domain={weather,tide}, origin={live,cache,static_fallback,unavailable}
	FetchFailures *prometheus.CounterVec // labels: domain, stage={primary,cache_read,cache_write,fallback}

	// Update runs.
	Updates             *prometheus.CounterVec // labels: result={complete,degraded,failed}
	UpdateDuration      prometheus.Histogram
	StaleResultsDropped prometheus.Counter
	SinkErrors          *prometheus.CounterVec // labels: sink

	// Latest assessment.
	RiskPoints prometheus.Gauge
	RiskLevel  *prometheus.GaugeVec // labels: level={low,moderate,high}; 1 for the current level

	// Weather API client.
	WeatherAPIDuration  prometheus.Histogram
	WeatherBreakerState prometheus.Gauge

	// High-risk alerts.
	Alerts *prometheus.CounterVec // labels: result={sent,failed}
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.PipelineRunning,
		m.FetchOutcomes,
		m.FetchFailures,
		m.Updates,
		m.UpdateDuration,
		m.StaleResultsDropped,
		m.SinkErrors,
		m.RiskPoints,
		m.RiskLevel,
		m.WeatherAPIDuration,
		m.WeatherBreakerState,
		m.Alerts,
	)

	return m
}

// NewMetricsForTesting creates Metrics that are not registered anywhere, to
// avoid "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 when the refresh loop is active, 0 when shut down.",
		}),
		FetchOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_outcomes_total",
			Help:      "Resolved data fetches by domain and origin.",
		}, []string{"domain", "origin"}),
		FetchFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_failures_total",
			Help:      "Failed fetch attempts by domain and stage.",
		}, []string{"domain", "stage"}),
		Updates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "updates_total",
			Help:      "Pipeline runs by result.",
		}, []string{"result"}),
		UpdateDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "update_duration_seconds",
			Help:      "Duration of a complete fetch-select-score run.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}),
		StaleResultsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stale_results_dropped_total",
			Help:      "Results discarded because a newer invocation was already delivered.",
		}),
		SinkErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sink_errors_total",
			Help:      "Failed result deliveries by sink.",
		}, []string{"sink"}),
		RiskPoints: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "risk_points",
			Help:      "Risk points of the latest delivered assessment.",
		}),
		RiskLevel: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "risk_level",
			Help:      "1 for the level of the latest delivered assessment, 0 otherwise.",
		}, []string{"level"}),
		WeatherAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "weather_api_duration_seconds",
			Help:      "Open-Meteo request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		WeatherBreakerState: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "weather_breaker_state",
			Help:      "Weather API circuit breaker state: 0 closed, 1 half-open, 2 open.",
		}),
		Alerts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_total",
			Help:      "High-risk alert e-mails by result.",
		}, []string{"result"}),
	}
}
