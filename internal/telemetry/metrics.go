package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the smart router.
type Metrics struct {
	RunTotal           *prometheus.CounterVec
	RunDurationMs      *prometheus.HistogramVec
	RouterOverheadMs   *prometheus.HistogramVec
	TokensTotal        *prometheus.CounterVec
	CostUSDTotal       *prometheus.CounterVec
	SavingsUSDTotal    *prometheus.CounterVec
	RiskTierTotal      *prometheus.CounterVec
	EfficiencyTotal    *prometheus.CounterVec
	RateLimitHitsTotal *prometheus.CounterVec
}

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		RunTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "smartrouter_run_total",
			Help: "Total number of routed runs.",
		}, []string{"tenant", "band", "provider", "model", "route_source", "status"}),

		RunDurationMs: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "smartrouter_run_duration_ms",
			Help:    "Total run duration in milliseconds (including provider latency).",
			Buckets: []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000, 60000},
		}, []string{"model", "provider"}),

		RouterOverheadMs: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "smartrouter_overhead_ms",
			Help:    "Router decision overhead in milliseconds (excluding provider latency).",
			Buckets: []float64{1, 2, 5, 10, 25, 50, 100, 250},
		}, []string{"tenant"}),

		TokensTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "smartrouter_tokens_total",
			Help: "Total tokens processed.",
		}, []string{"tenant", "model", "direction"}),

		CostUSDTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "smartrouter_cost_usd_total",
			Help: "Estimated total cost in USD.",
		}, []string{"tenant", "model", "provider"}),

		SavingsUSDTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "smartrouter_savings_usd_total",
			Help: "Estimated USD saved against the naive baseline.",
		}, []string{"tenant", "band"}),

		RiskTierTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "smartrouter_risk_tier_total",
			Help: "Runs by assessed risk tier.",
		}, []string{"tenant", "tier"}),

		EfficiencyTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "smartrouter_routing_efficiency_total",
			Help: "Runs by whether the selected route beat the band default on cost.",
		}, []string{"tenant", "efficient"}),

		RateLimitHitsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "smartrouter_rate_limit_hits_total",
			Help: "Requests rejected by rate or budget limits.",
		}, []string{"dimension", "tenant"}),
	}
}

// RecordRun records metrics for a completed run.
func (m *Metrics) RecordRun(labels RunLabels) {
	m.RunTotal.WithLabelValues(
		labels.Tenant, labels.Band, labels.Provider, labels.Model,
		labels.RouteSource, labels.Status,
	).Inc()

	m.RunDurationMs.WithLabelValues(
		labels.Model, labels.Provider,
	).Observe(labels.DurationMs)

	m.RouterOverheadMs.WithLabelValues(
		labels.Tenant,
	).Observe(labels.OverheadMs)

	if labels.PromptTokens > 0 {
		m.TokensTotal.WithLabelValues(
			labels.Tenant, labels.Model, "prompt",
		).Add(float64(labels.PromptTokens))
	}

	if labels.CompletionTokens > 0 {
		m.TokensTotal.WithLabelValues(
			labels.Tenant, labels.Model, "completion",
		).Add(float64(labels.CompletionTokens))
	}

	if labels.CostUSD > 0 {
		m.CostUSDTotal.WithLabelValues(
			labels.Tenant, labels.Model, labels.Provider,
		).Add(labels.CostUSD)
	}

	if labels.SavingsUSD > 0 {
		m.SavingsUSDTotal.WithLabelValues(
			labels.Tenant, labels.Band,
		).Add(labels.SavingsUSD)
	}

	if labels.RiskTier != "" {
		m.RiskTierTotal.WithLabelValues(labels.Tenant, labels.RiskTier).Inc()
	}

	efficient := "false"
	if labels.Efficient {
		efficient = "true"
	}
	m.EfficiencyTotal.WithLabelValues(labels.Tenant, efficient).Inc()
}

// RecordRateLimitHit records a rejected request by limit dimension.
func (m *Metrics) RecordRateLimitHit(dimension, tenant string) {
	m.RateLimitHitsTotal.WithLabelValues(dimension, tenant).Inc()
}

// RunLabels holds the label values for recording a run.
type RunLabels struct {
	Tenant           string
	Band             string
	Provider         string
	Model            string
	RouteSource      string
	Status           string
	RiskTier         string
	Efficient        bool
	DurationMs       float64
	OverheadMs       float64
	PromptTokens     int
	CompletionTokens int
	CostUSD          float64
	SavingsUSD       float64
}
