package types

// RouteSource records why a (provider, model) pair was picked.
type RouteSource string

const (
	RouteDefault        RouteSource = "default"
	RouteManualOverride RouteSource = "manual_override"
	RouteEnhanced       RouteSource = "enhanced"
	RouteFallback       RouteSource = "fallback"
)

// SelectionResult is the outcome of model selection for one request.
type SelectionResult struct {
	Provider    string      `json:"provider"`
	Model       string      `json:"model"`
	Band        RoutingBand `json:"band"`
	RouteSource RouteSource `json:"route_source"`
}

// ModelKey returns the registry key for the selected pair.
func (s SelectionResult) ModelKey() string {
	return s.Provider + ":" + s.Model
}

// CostFigures holds the cost accounting for one run.
// SavingsUSD is never negative; Optimal means the selected model was already
// at or above the baseline spend, so there was nothing to save.
type CostFigures struct {
	ActualCostUSD   float64 `json:"actual_cost_usd"`
	BaselineCostUSD float64 `json:"baseline_cost_usd"`
	SavingsUSD      float64 `json:"savings_usd"`
	SavingsPct      float64 `json:"savings_pct"`
	Optimal         bool    `json:"optimal"`
}

// RiskTier is the retention tier derived from the ALRI score.
type RiskTier string

const (
	TierGreenLow     RiskTier = "green_low"
	TierYellowMedium RiskTier = "yellow_medium"
	TierOrangeHigh   RiskTier = "orange_high"
	TierRedCritical  RiskTier = "red_critical"
)

// RiskAssessment is the composite risk result for one run.
type RiskAssessment struct {
	ALRIScore float64  `json:"alri_score"`
	ALRITier  RiskTier `json:"alri_tier"`
}

// Usage is what the provider dispatch layer reports back after executing
// the selected model.
type Usage struct {
	PromptTokens     int     `json:"prompt_tokens"`
	CompletionTokens int     `json:"completion_tokens"`
	LatencyMs        float64 `json:"latency_ms"`
	// ReportedCostUSD is a provider-supplied cost, used only as a last
	// resort when registry and pricing-table computation both yield zero.
	ReportedCostUSD float64 `json:"reported_cost_usd,omitempty"`
}

// RunResult is the immutable record the core hands to the persistence and
// response layers after a run completes.
type RunResult struct {
	Selection  SelectionResult `json:"selection"`
	Cost       CostFigures     `json:"cost"`
	Risk       RiskAssessment  `json:"risk"`
	Efficient  bool            `json:"routing_efficient"`
	Complexity float64         `json:"complexity_score"`

	// Counterfactual cost of the unforced rule-based default selection,
	// zero when it could not be computed.
	CounterfactualCostUSD float64 `json:"counterfactual_cost_usd"`

	// Passed through from the external classifier unchanged.
	Category           QueryCategory `json:"query_category"`
	CategoryConfidence float64       `json:"query_category_conf"`
}
