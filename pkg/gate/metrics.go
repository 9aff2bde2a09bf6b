package gate

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains Prometheus metrics for the gate pipeline.
type Metrics struct {
	requests        *prometheus.CounterVec
	failures        *prometheus.CounterVec
	cacheLookups    *prometheus.CounterVec
	rateLimitHits   *prometheus.CounterVec
	budgetHits      *prometheus.CounterVec
	tokensConsumed  prometheus.Counter
	costAccrued     prometheus.Counter
	requestDuration *prometheus.HistogramVec
}

// NewMetrics creates a Metrics instance registered on the default
// Prometheus registerer. Call at most once per process.
func NewMetrics() *Metrics {
	return &Metrics{
		requests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "beacon_gate_requests_total",
				Help: "Total assistant requests by category and outcome",
			},
			[]string{"category", "outcome"},
		),

		failures: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "beacon_gate_failures_total",
				Help: "Total failed assistant requests by failure kind",
			},
			[]string{"kind", "code"},
		),

		cacheLookups: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "beacon_gate_cache_lookups_total",
				Help: "Total response cache lookups by result",
			},
			[]string{"result"},
		),

		rateLimitHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "beacon_gate_rate_limit_hits_total",
				Help: "Total rate limit rejections by window tier",
			},
			[]string{"tier"},
		),

		budgetHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "beacon_gate_budget_hits_total",
				Help: "Total budget rejections by period",
			},
			[]string{"period"},
		),

		tokensConsumed: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "beacon_gate_tokens_consumed_total",
				Help: "Total tokens consumed by upstream completions",
			},
		),

		costAccrued: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "beacon_gate_cost_accrued_usd_total",
				Help: "Total USD cost accrued by upstream completions",
			},
		),

		requestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "beacon_gate_request_duration_seconds",
				Help:    "Duration of assistant requests in seconds",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 15), // 1ms to 16s
			},
			[]string{"outcome"},
		),
	}
}

// RecordRequest records a completed request.
func (m *Metrics) RecordRequest(category, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(category, outcome).Inc()
	m.requestDuration.WithLabelValues(outcome).Observe(seconds)
}

// RecordFailure records a failed request by failure kind and code.
func (m *Metrics) RecordFailure(kind Kind, code string) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(string(kind), code).Inc()
}

// RecordCacheLookup records a cache lookup result ("hit" or "miss").
func (m *Metrics) RecordCacheLookup(result string) {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

// RecordRateLimitHit records a rate limit rejection.
func (m *Metrics) RecordRateLimitHit(tier string) {
	if m == nil {
		return
	}
	m.rateLimitHits.WithLabelValues(tier).Inc()
}

// RecordBudgetHit records a budget rejection.
func (m *Metrics) RecordBudgetHit(period string) {
	if m == nil {
		return
	}
	m.budgetHits.WithLabelValues(period).Inc()
}

// RecordUsage records tokens and cost from a successful upstream call.
func (m *Metrics) RecordUsage(tokens int, cost float64) {
	if m == nil {
		return
	}
	m.tokensConsumed.Add(float64(tokens))
	m.costAccrued.Add(cost)
}
