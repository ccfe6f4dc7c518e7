// Package gateway is the HTTP surface of the smart router: request parsing,
// the per-run orchestration (policy gate, classification, selection,
// dispatch, accounting) and the reporting endpoints.
package gateway

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/agenticlabs/smartrouter/internal/auth"
	"github.com/agenticlabs/smartrouter/internal/classifier"
	"github.com/agenticlabs/smartrouter/internal/config"
	"github.com/agenticlabs/smartrouter/internal/cost"
	"github.com/agenticlabs/smartrouter/internal/httputil"
	"github.com/agenticlabs/smartrouter/internal/pipeline"
	"github.com/agenticlabs/smartrouter/internal/policy"
	"github.com/agenticlabs/smartrouter/internal/ratelimit"
	"github.com/agenticlabs/smartrouter/internal/router"
	"github.com/agenticlabs/smartrouter/internal/router/adapters"
	"github.com/agenticlabs/smartrouter/internal/routing"
	"github.com/agenticlabs/smartrouter/internal/store"
	"github.com/agenticlabs/smartrouter/internal/telemetry"
	"github.com/agenticlabs/smartrouter/internal/types"
)

// RunStore is the persistence surface the handler needs.
type RunStore interface {
	InsertRun(ctx context.Context, rec store.RunRecord) error
	Overview(ctx context.Context, tenantID string, window time.Duration) (*store.Overview, error)
	SavingsTotals(ctx context.Context, tenantID string, window time.Duration) (*store.SavingsTotals, error)
	ListRuns(ctx context.Context, tenantID string, limit, offset int) ([]store.RunRecord, error)
}

// Classifier is the category-labeling surface the handler needs.
type Classifier interface {
	Enabled() bool
	Classify(ctx context.Context, prompt string) (classifier.Classification, error)
}

// Handler holds dependencies for the router HTTP handlers.
type Handler struct {
	pipeline   *pipeline.Pipeline
	dispatcher *router.Dispatcher
	registry   *routing.Registry
	costs      *cost.Engine
	classifier Classifier
	policy     *policy.Evaluator
	runs       RunStore
	budget     *ratelimit.BudgetTracker
	metrics    *telemetry.Metrics
	cfg        func() *config.Config
}

func NewHandler(
	p *pipeline.Pipeline,
	dispatcher *router.Dispatcher,
	registry *routing.Registry,
	costs *cost.Engine,
	cls Classifier,
	pol *policy.Evaluator,
	runs RunStore,
	budget *ratelimit.BudgetTracker,
	metrics *telemetry.Metrics,
	cfg func() *config.Config,
) *Handler {
	return &Handler{
		pipeline:   p,
		dispatcher: dispatcher,
		registry:   registry,
		costs:      costs,
		classifier: cls,
		policy:     pol,
		runs:       runs,
		budget:     budget,
		metrics:    metrics,
		cfg:        cfg,
	}
}

// runRequestBody is the wire shape of POST /v1/run.
type runRequestBody struct {
	Prompt          string         `json:"prompt"`
	AgentID         string         `json:"agent_id"`
	TaskType        string         `json:"task_type"`
	MaxTokens       int            `json:"max_tokens"`
	Temperature     float64        `json:"temperature"`
	PolicyOverrides map[string]any `json:"policy_overrides"`
	Context         map[string]any `json:"context"`
}

type runResponse struct {
	RunID      string  `json:"run_id"`
	Output     string  `json:"output"`
	Provider   string  `json:"provider"`
	Model      string  `json:"model"`
	Band       string  `json:"band"`
	Confidence float64 `json:"confidence"`

	Provenance       provenanceBody    `json:"provenance"`
	Usage            usageBody         `json:"usage"`
	Cost             types.CostFigures `json:"cost"`
	Audit            auditBody         `json:"audit"`
	PolicyEvaluation policyEvalBody    `json:"policy_evaluation"`
}

type provenanceBody struct {
	RouteSource           string  `json:"route_source"`
	Complexity            float64 `json:"complexity_score"`
	QueryCategory         string  `json:"query_category"`
	QueryCategoryConf     float64 `json:"query_category_conf"`
	RoutingEfficient      bool    `json:"routing_efficient"`
	CounterfactualCostUSD float64 `json:"counterfactual_cost_usd"`
}

type usageBody struct {
	PromptTokens     int     `json:"prompt_tokens"`
	CompletionTokens int     `json:"completion_tokens"`
	LatencyMs        float64 `json:"latency_ms"`
}

type auditBody struct {
	ALRIScore float64 `json:"alri_score"`
	ALRITier  string  `json:"alri_tier"`
}

type policyEvalBody struct {
	Allowed     bool     `json:"allowed"`
	HILRequired bool     `json:"hil_required"`
	Violations  []string `json:"violations"`
}

// Run handles POST /v1/run.
func (h *Handler) Run(w http.ResponseWriter, r *http.Request) {
	reqID := w.Header().Get("X-Request-ID")
	receivedAt := time.Now()

	authInfo, ok := auth.AuthFromContext(r.Context())
	if !ok {
		httputil.WriteAuthError(w, reqID, "Not authenticated")
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		httputil.WriteBadRequestError(w, reqID, "Failed to read request body")
		return
	}
	defer r.Body.Close()

	var in runRequestBody
	if err := json.Unmarshal(body, &in); err != nil {
		httputil.WriteBadRequestError(w, reqID, "Invalid JSON: "+err.Error())
		return
	}
	if in.Prompt == "" {
		httputil.WriteBadRequestError(w, reqID, "prompt is required")
		return
	}

	req := &types.RunRequest{
		RequestID:       reqID,
		TenantID:        authInfo.Tenant.ID,
		APIKeyID:        authInfo.KeyID,
		Prompt:          in.Prompt,
		AgentID:         in.AgentID,
		TaskType:        in.TaskType,
		PolicyOverrides: in.PolicyOverrides,
		Context:         in.Context,
		ReceivedAt:      receivedAt,
	}

	// Routing overrides go through the policy gate before they take effect.
	if req.OverridesUsed() && h.policy != nil && h.policy.Enabled() {
		allowed, reason, err := h.policy.Evaluate(r.Context(), policy.Input{
			Tenant: policy.TenantInput{ID: authInfo.Tenant.ID, Name: authInfo.Tenant.Name},
			Request: policy.RequestInput{
				Provider:  req.ForcedProvider(),
				Model:     req.ForcedModel(),
				Band:      req.ForcedBand(),
				Overrides: req.PolicyOverrides,
			},
			Time: policyTimeNow(),
		})
		if err != nil {
			slog.Error("policy evaluation failed", "request_id", reqID, "error", err)
		}
		if !allowed {
			slog.Warn("override denied by policy",
				"request_id", reqID,
				"tenant_id", authInfo.Tenant.ID,
				"reason", reason,
			)
			httputil.WritePolicyDeniedError(w, reqID, "Routing override denied by policy: "+reason)
			return
		}
	}

	cls := classifier.Classification{Category: types.CategoryUnknown}
	if h.classifier != nil && h.classifier.Enabled() {
		cls, _ = h.classifier.Classify(r.Context(), in.Prompt)
	}

	decision := h.pipeline.Decide(req, authInfo.Tenant, cls.Category, cls.Confidence)

	cfg := h.cfg()
	dispatchCtx, cancel := context.WithTimeout(r.Context(), cfg.Routing.DefaultTimeout)
	defer cancel()

	result, err := h.dispatcher.Dispatch(dispatchCtx, decision.Selection, in.Prompt, adapters.Params{
		Temperature: in.Temperature,
		MaxTokens:   in.MaxTokens,
	})
	if err != nil {
		var noAdapter *router.ErrNoAdapter
		if errors.As(err, &noAdapter) {
			slog.Error("selected provider has no adapter",
				"request_id", reqID,
				"provider", noAdapter.Provider,
			)
			httputil.WriteConfigError(w, reqID, "No adapter configured for provider "+noAdapter.Provider)
			return
		}
		slog.Error("provider dispatch failed",
			"request_id", reqID,
			"provider", decision.Selection.Provider,
			"model", decision.Selection.Model,
			"error", err,
		)
		h.recordRunResult(authInfo, types.RunResult{Selection: decision.Selection}, types.Usage{}, time.Since(receivedAt), "502")
		httputil.WriteUpstreamError(w, reqID, "Provider request failed")
		return
	}

	usage := router.Usage(result)
	runResult := h.pipeline.Complete(req, decision, usage)
	runID := newRunID()

	if h.runs != nil {
		rec := store.RecordFromResult(runID, authInfo.Tenant.ID, *req, &runResult, usage)
		if err := h.runs.InsertRun(r.Context(), rec); err != nil {
			// The run already happened; losing the audit row is not a
			// reason to fail the caller.
			slog.Error("failed to persist run", "run_id", runID, "error", err)
		}
	}

	if h.budget != nil {
		cents := int64(math.Round(runResult.Cost.ActualCostUSD * 100))
		if err := h.budget.RecordSpend(r.Context(), authInfo.Tenant.ID, cents); err != nil {
			slog.Warn("failed to record spend", "tenant_id", authInfo.Tenant.ID, "error", err)
		}
	}

	threshold := req.ConfidenceThreshold(cfg.Routing.ConfidenceThreshold)
	hil := result.Confidence < threshold
	violations := []string{}
	if hil {
		violations = append(violations, "confidence_below_threshold")
	}

	totalDuration := time.Since(receivedAt)

	slog.Info("run completed",
		"run_id", runID,
		"request_id", reqID,
		"tenant_id", authInfo.Tenant.ID,
		"band", string(runResult.Selection.Band),
		"provider", runResult.Selection.Provider,
		"model", runResult.Selection.Model,
		"route_source", string(runResult.Selection.RouteSource),
		"complexity", runResult.Complexity,
		"category", string(runResult.Category),
		"actual_cost_usd", runResult.Cost.ActualCostUSD,
		"savings_usd", runResult.Cost.SavingsUSD,
		"alri_score", runResult.Risk.ALRIScore,
		"alri_tier", string(runResult.Risk.ALRITier),
		"routing_efficient", runResult.Efficient,
		"duration_ms", totalDuration.Milliseconds(),
	)

	h.recordRunResult(authInfo, runResult, usage, totalDuration, "200")

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(runResponse{
		RunID:      runID,
		Output:     result.Output,
		Provider:   runResult.Selection.Provider,
		Model:      runResult.Selection.Model,
		Band:       string(runResult.Selection.Band),
		Confidence: result.Confidence,
		Provenance: provenanceBody{
			RouteSource:           string(runResult.Selection.RouteSource),
			Complexity:            runResult.Complexity,
			QueryCategory:         string(runResult.Category),
			QueryCategoryConf:     runResult.CategoryConfidence,
			RoutingEfficient:      runResult.Efficient,
			CounterfactualCostUSD: runResult.CounterfactualCostUSD,
		},
		Usage: usageBody{
			PromptTokens:     usage.PromptTokens,
			CompletionTokens: usage.CompletionTokens,
			LatencyMs:        usage.LatencyMs,
		},
		Cost: runResult.Cost,
		Audit: auditBody{
			ALRIScore: runResult.Risk.ALRIScore,
			ALRITier:  string(runResult.Risk.ALRITier),
		},
		PolicyEvaluation: policyEvalBody{
			Allowed:     true,
			HILRequired: hil,
			Violations:  violations,
		},
	})
}

func (h *Handler) recordRunResult(authInfo *auth.AuthInfo, res types.RunResult, usage types.Usage, duration time.Duration, status string) {
	if h.metrics == nil {
		return
	}
	h.metrics.RecordRun(telemetry.RunLabels{
		Tenant:           authInfo.Tenant.ID,
		Band:             string(res.Selection.Band),
		Provider:         res.Selection.Provider,
		Model:            res.Selection.Model,
		RouteSource:      string(res.Selection.RouteSource),
		Status:           status,
		RiskTier:         string(res.Risk.ALRITier),
		Efficient:        res.Efficient,
		DurationMs:       float64(duration.Milliseconds()),
		OverheadMs:       float64(duration.Milliseconds()) - usage.LatencyMs,
		PromptTokens:     usage.PromptTokens,
		CompletionTokens: usage.CompletionTokens,
		CostUSD:          res.Cost.ActualCostUSD,
		SavingsUSD:       res.Cost.SavingsUSD,
	})
}

// ListModels handles GET /v1/models.
func (h *Handler) ListModels(w http.ResponseWriter, r *http.Request) {
	reqID := w.Header().Get("X-Request-ID")

	authInfo, ok := auth.AuthFromContext(r.Context())
	if !ok {
		httputil.WriteAuthError(w, reqID, "Not authenticated")
		return
	}

	var models []modelObject
	for _, key := range h.registry.Keys() {
		if !authInfo.Tenant.Allows(key) {
			continue
		}
		desc, _ := h.registry.Get(key)
		models = append(models, modelObject{
			Key:              key,
			Provider:         desc.Provider,
			Model:            desc.ModelID,
			DisplayName:      desc.DisplayName,
			InputPerMillion:  desc.Pricing.InputPerMillion,
			OutputPerMillion: desc.Pricing.OutputPerMillion,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(modelListResponse{Models: models})
}

type modelObject struct {
	Key              string  `json:"key"`
	Provider         string  `json:"provider"`
	Model            string  `json:"model"`
	DisplayName      string  `json:"display_name"`
	InputPerMillion  float64 `json:"input_per_million"`
	OutputPerMillion float64 `json:"output_per_million"`
}

type modelListResponse struct {
	Models []modelObject `json:"models"`
}

// MetricsOverview handles GET /v1/metrics/overview.
func (h *Handler) MetricsOverview(w http.ResponseWriter, r *http.Request) {
	reqID := w.Header().Get("X-Request-ID")

	authInfo, ok := auth.AuthFromContext(r.Context())
	if !ok {
		httputil.WriteAuthError(w, reqID, "Not authenticated")
		return
	}

	window := windowParam(r, 24*time.Hour)
	ov, err := h.runs.Overview(r.Context(), authInfo.Tenant.ID, window)
	if err != nil {
		slog.Error("overview query failed", "error", err)
		httputil.WriteInternalError(w, reqID, "Failed to compute overview")
		return
	}

	savingsUSD, savingsPct, message := cost.SummarizeSavings(ov.TotalActualCostUSD, ov.TotalBaselineCostUSD)

	efficiencyRate := 0.0
	costPerRun := 0.0
	if ov.TotalRuns > 0 {
		efficiencyRate = float64(ov.EfficientRuns) / float64(ov.TotalRuns)
		costPerRun = ov.TotalActualCostUSD / float64(ov.TotalRuns)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"window_hours":      window.Hours(),
		"total_runs":        ov.TotalRuns,
		"total_cost_usd":    ov.TotalActualCostUSD,
		"cost_per_run_usd":  costPerRun,
		"baseline_cost_usd": ov.TotalBaselineCostUSD,
		"savings_usd":       savingsUSD,
		"savings_pct":       savingsPct,
		"savings_message":   message,
		"efficiency_rate":   efficiencyRate,
		"avg_latency_ms":    ov.AvgLatencyMs,
		"avg_complexity":    ov.AvgComplexity,
		"avg_alri_score":    ov.AvgALRIScore,
		"runs_by_band":      ov.RunsByBand,
		"runs_by_risk_tier": ov.RunsByTier,
	})
}

// MetricsSavings handles GET /v1/metrics/savings.
func (h *Handler) MetricsSavings(w http.ResponseWriter, r *http.Request) {
	reqID := w.Header().Get("X-Request-ID")

	authInfo, ok := auth.AuthFromContext(r.Context())
	if !ok {
		httputil.WriteAuthError(w, reqID, "Not authenticated")
		return
	}

	window := windowParam(r, 24*time.Hour)
	totals, err := h.runs.SavingsTotals(r.Context(), authInfo.Tenant.ID, window)
	if err != nil {
		slog.Error("savings query failed", "error", err)
		httputil.WriteInternalError(w, reqID, "Failed to compute savings")
		return
	}

	naiveUSD, naivePct, naiveMsg := cost.SummarizeSavings(totals.TotalActualCostUSD, totals.TotalBaselineCostUSD)
	bandUSD, bandPct, bandMsg := cost.SummarizeSavings(totals.TotalActualCostUSD, totals.TotalCounterfactualCostUSD)

	// Window savings extrapolated to a 30-day month.
	projectedMonthlyUSD := naiveUSD / window.Hours() * 24 * 30

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"window_hours":                  window.Hours(),
		"total_runs":                    totals.TotalRuns,
		"total_cost_usd":                totals.TotalActualCostUSD,
		"projected_monthly_savings_usd": projectedMonthlyUSD,
		"vs_naive_baseline": map[string]any{
			"baseline_cost_usd": totals.TotalBaselineCostUSD,
			"savings_usd":       naiveUSD,
			"savings_pct":       naivePct,
			"message":           naiveMsg,
		},
		"vs_band_baseline": map[string]any{
			"baseline_cost_usd": totals.TotalCounterfactualCostUSD,
			"savings_usd":       bandUSD,
			"savings_pct":       bandPct,
			"message":           bandMsg,
		},
	})
}

// ListRuns handles GET /v1/runs.
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	reqID := w.Header().Get("X-Request-ID")

	authInfo, ok := auth.AuthFromContext(r.Context())
	if !ok {
		httputil.WriteAuthError(w, reqID, "Not authenticated")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	runs, err := h.runs.ListRuns(r.Context(), authInfo.Tenant.ID, limit, offset)
	if err != nil {
		slog.Error("list runs query failed", "error", err)
		httputil.WriteInternalError(w, reqID, "Failed to list runs")
		return
	}

	items := make([]runListItem, 0, len(runs))
	for _, rec := range runs {
		items = append(items, runListItem{
			RunID:            rec.ID,
			AgentID:          rec.AgentID,
			TaskType:         rec.TaskType,
			Band:             rec.Band,
			Provider:         rec.Provider,
			Model:            rec.Model,
			RouteSource:      rec.RouteSource,
			Category:         rec.Category,
			ActualCostUSD:    rec.ActualCostUSD,
			SavingsUSD:       rec.SavingsUSD,
			ALRIScore:        rec.ALRIScore,
			ALRITier:         rec.ALRITier,
			RoutingEfficient: rec.RoutingEfficient,
			CreatedAt:        rec.CreatedAt,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"runs": items})
}

type runListItem struct {
	RunID            string    `json:"run_id"`
	AgentID          string    `json:"agent_id,omitempty"`
	TaskType         string    `json:"task_type,omitempty"`
	Band             string    `json:"band"`
	Provider         string    `json:"provider"`
	Model            string    `json:"model"`
	RouteSource      string    `json:"route_source"`
	Category         string    `json:"category"`
	ActualCostUSD    float64   `json:"actual_cost_usd"`
	SavingsUSD       float64   `json:"savings_usd"`
	ALRIScore        float64   `json:"alri_score"`
	ALRITier         string    `json:"alri_tier"`
	RoutingEfficient bool      `json:"routing_efficient"`
	CreatedAt        time.Time `json:"created_at"`
}

func windowParam(r *http.Request, def time.Duration) time.Duration {
	if raw := r.URL.Query().Get("window_hours"); raw != "" {
		if hours, err := strconv.Atoi(raw); err == nil && hours > 0 && hours <= 24*30 {
			return time.Duration(hours) * time.Hour
		}
	}
	return def
}

func policyTimeNow() policy.TimeInput {
	now := time.Now().UTC()
	return policy.TimeInput{Hour: now.Hour(), Day: now.Weekday().String()}
}

func newRunID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "r_" + strconv.FormatInt(time.Now().UnixNano(), 16)
	}
	return "r_" + hex.EncodeToString(b)
}
