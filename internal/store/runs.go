// Package store persists routing runs in Postgres and serves the
// aggregation queries behind the metrics endpoints.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/agenticlabs/smartrouter/internal/types"
)

// RunRecord is one persisted routing run.
type RunRecord struct {
	ID                    string
	TenantID              string
	AgentID               string
	TaskType              string
	Band                  string
	Provider              string
	Model                 string
	RouteSource           string
	Complexity            float64
	Category              string
	CategoryConfidence    float64
	PromptTokens          int
	CompletionTokens      int
	LatencyMs             float64
	ActualCostUSD         float64
	BaselineCostUSD       float64
	SavingsUSD            float64
	SavingsPct            float64
	CounterfactualCostUSD float64
	RoutingEfficient      bool
	ALRIScore             float64
	ALRITier              string
	CreatedAt             time.Time
}

// RecordFromResult assembles a RunRecord from the decision core's output.
func RecordFromResult(runID, tenantID string, req types.RunRequest, res *types.RunResult, usage types.Usage) RunRecord {
	return RunRecord{
		ID:                    runID,
		TenantID:              tenantID,
		AgentID:               req.AgentID,
		TaskType:              req.TaskType,
		Band:                  string(res.Selection.Band),
		Provider:              res.Selection.Provider,
		Model:                 res.Selection.Model,
		RouteSource:           string(res.Selection.RouteSource),
		Complexity:            res.Complexity,
		Category:              string(res.Category),
		CategoryConfidence:    res.CategoryConfidence,
		PromptTokens:          usage.PromptTokens,
		CompletionTokens:      usage.CompletionTokens,
		LatencyMs:             usage.LatencyMs,
		ActualCostUSD:         res.Cost.ActualCostUSD,
		BaselineCostUSD:       res.Cost.BaselineCostUSD,
		SavingsUSD:            res.Cost.SavingsUSD,
		SavingsPct:            res.Cost.SavingsPct,
		CounterfactualCostUSD: res.CounterfactualCostUSD,
		RoutingEfficient:      res.Efficient,
		ALRIScore:             res.Risk.ALRIScore,
		ALRITier:              string(res.Risk.ALRITier),
		CreatedAt:             time.Now().UTC(),
	}
}

// RunStore reads and writes router runs.
type RunStore struct {
	db *pgxpool.Pool
}

func NewRunStore(db *pgxpool.Pool) *RunStore {
	return &RunStore{db: db}
}

func (s *RunStore) InsertRun(ctx context.Context, rec RunRecord) error {
	query := `
		INSERT INTO router_runs (
			id, tenant_id, agent_id, task_type, band, provider, model,
			route_source, complexity, category, category_confidence,
			prompt_tokens, completion_tokens, latency_ms,
			actual_cost_usd, baseline_cost_usd, savings_usd, savings_pct,
			counterfactual_cost_usd, routing_efficient,
			alri_score, alri_tier, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21, $22, $23
		)
	`
	_, err := s.db.Exec(ctx, query,
		rec.ID, rec.TenantID, rec.AgentID, rec.TaskType, rec.Band,
		rec.Provider, rec.Model, rec.RouteSource, rec.Complexity,
		rec.Category, rec.CategoryConfidence,
		rec.PromptTokens, rec.CompletionTokens, rec.LatencyMs,
		rec.ActualCostUSD, rec.BaselineCostUSD, rec.SavingsUSD, rec.SavingsPct,
		rec.CounterfactualCostUSD, rec.RoutingEfficient,
		rec.ALRIScore, rec.ALRITier, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// Overview is the aggregate view over a time window.
type Overview struct {
	TotalRuns            int64
	TotalActualCostUSD   float64
	TotalBaselineCostUSD float64
	EfficientRuns        int64
	AvgComplexity        float64
	AvgALRIScore         float64
	AvgLatencyMs         float64
	RunsByBand           map[string]int64
	RunsByTier           map[string]int64
}

// Overview aggregates runs for the given window. tenantID narrows the query
// when non-empty.
func (s *RunStore) Overview(ctx context.Context, tenantID string, window time.Duration) (*Overview, error) {
	since := time.Now().UTC().Add(-window)

	query := `
		SELECT
			count(*),
			coalesce(sum(actual_cost_usd), 0),
			coalesce(sum(baseline_cost_usd), 0),
			count(*) FILTER (WHERE routing_efficient),
			coalesce(avg(complexity), 0),
			coalesce(avg(alri_score), 0),
			coalesce(avg(latency_ms), 0)
		FROM router_runs
		WHERE created_at >= $1 AND ($2 = '' OR tenant_id = $2)
	`

	ov := &Overview{
		RunsByBand: make(map[string]int64),
		RunsByTier: make(map[string]int64),
	}
	err := s.db.QueryRow(ctx, query, since, tenantID).Scan(
		&ov.TotalRuns, &ov.TotalActualCostUSD, &ov.TotalBaselineCostUSD,
		&ov.EfficientRuns, &ov.AvgComplexity, &ov.AvgALRIScore, &ov.AvgLatencyMs,
	)
	if err != nil {
		return nil, fmt.Errorf("overview aggregate: %w", err)
	}

	rows, err := s.db.Query(ctx, `
		SELECT band, alri_tier, count(*)
		FROM router_runs
		WHERE created_at >= $1 AND ($2 = '' OR tenant_id = $2)
		GROUP BY band, alri_tier
	`, since, tenantID)
	if err != nil {
		return nil, fmt.Errorf("overview breakdown: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var band, tier string
		var count int64
		if err := rows.Scan(&band, &tier, &count); err != nil {
			return nil, fmt.Errorf("scan breakdown row: %w", err)
		}
		ov.RunsByBand[band] += count
		ov.RunsByTier[tier] += count
	}
	return ov, rows.Err()
}

// SavingsTotals holds the raw sums the savings report is computed from.
type SavingsTotals struct {
	TotalRuns                  int64
	TotalActualCostUSD         float64
	TotalBaselineCostUSD       float64
	TotalCounterfactualCostUSD float64
}

// SavingsTotals sums actual spend against both baselines for the window.
func (s *RunStore) SavingsTotals(ctx context.Context, tenantID string, window time.Duration) (*SavingsTotals, error) {
	since := time.Now().UTC().Add(-window)

	query := `
		SELECT
			count(*),
			coalesce(sum(actual_cost_usd), 0),
			coalesce(sum(baseline_cost_usd), 0),
			coalesce(sum(counterfactual_cost_usd), 0)
		FROM router_runs
		WHERE created_at >= $1 AND ($2 = '' OR tenant_id = $2)
	`

	totals := &SavingsTotals{}
	err := s.db.QueryRow(ctx, query, since, tenantID).Scan(
		&totals.TotalRuns, &totals.TotalActualCostUSD,
		&totals.TotalBaselineCostUSD, &totals.TotalCounterfactualCostUSD,
	)
	if err != nil {
		return nil, fmt.Errorf("savings totals: %w", err)
	}
	return totals, nil
}

// ListRuns returns the most recent runs, newest first.
func (s *RunStore) ListRuns(ctx context.Context, tenantID string, limit, offset int) ([]RunRecord, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT id, tenant_id, agent_id, task_type, band, provider, model,
		       route_source, complexity, category, category_confidence,
		       prompt_tokens, completion_tokens, latency_ms,
		       actual_cost_usd, baseline_cost_usd, savings_usd, savings_pct,
		       counterfactual_cost_usd, routing_efficient,
		       alri_score, alri_tier, created_at
		FROM router_runs
		WHERE ($1 = '' OR tenant_id = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := s.db.Query(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		var rec RunRecord
		err := rows.Scan(
			&rec.ID, &rec.TenantID, &rec.AgentID, &rec.TaskType, &rec.Band,
			&rec.Provider, &rec.Model, &rec.RouteSource, &rec.Complexity,
			&rec.Category, &rec.CategoryConfidence,
			&rec.PromptTokens, &rec.CompletionTokens, &rec.LatencyMs,
			&rec.ActualCostUSD, &rec.BaselineCostUSD, &rec.SavingsUSD, &rec.SavingsPct,
			&rec.CounterfactualCostUSD, &rec.RoutingEfficient,
			&rec.ALRIScore, &rec.ALRITier, &rec.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		runs = append(runs, rec)
	}
	return runs, rows.Err()
}
