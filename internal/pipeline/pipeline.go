// Package pipeline wires the decision core together: complexity scoring,
// band classification, model selection, cost accounting, risk scoring and
// the routing-efficiency comparison. Everything here is a pure function over
// immutable per-request inputs; persistence and provider dispatch live with
// the callers.
package pipeline

import (
	"github.com/agenticlabs/smartrouter/internal/cost"
	"github.com/agenticlabs/smartrouter/internal/risk"
	"github.com/agenticlabs/smartrouter/internal/routing"
	"github.com/agenticlabs/smartrouter/internal/types"
)

type Pipeline struct {
	registry  *routing.Registry
	selector  *routing.Selector
	costs     *cost.Engine
	risk      *risk.Scorer
	tolerance float64
}

func New(registry *routing.Registry, selector *routing.Selector, costs *cost.Engine, scorer *risk.Scorer, tolerance float64) *Pipeline {
	if tolerance <= 0 {
		tolerance = routing.DefaultEfficiencyTolerance
	}
	return &Pipeline{
		registry:  registry,
		selector:  selector,
		costs:     costs,
		risk:      scorer,
		tolerance: tolerance,
	}
}

// Decision is the pre-dispatch routing outcome for one request.
type Decision struct {
	Complexity float64
	BandAlias  string
	Band       types.RoutingBand
	Selection  types.SelectionResult

	// Default is the unforced rule-based selection, kept as the
	// counterfactual for the efficiency comparison.
	Default types.SelectionResult

	Category           types.QueryCategory
	CategoryConfidence float64
}

// Decide classifies the prompt and selects a model. A forced band override
// replaces the classified band; everything else is heuristic.
func (p *Pipeline) Decide(req *types.RunRequest, tenant types.Tenant, category types.QueryCategory, confidence float64) Decision {
	score := routing.ScoreComplexity(req.Prompt)
	alias := routing.ChooseBand(score)
	if forced := req.ForcedBand(); forced != "" {
		alias = forced
	}
	band := types.NormalizeBand(alias)

	selection := p.selector.Select(routing.SelectionInput{
		Band:           band,
		Category:       category,
		TaskType:       req.TaskType,
		Tenant:         tenant,
		ForcedProvider: req.ForcedProvider(),
		ForcedModel:    req.ForcedModel(),
	})

	return Decision{
		Complexity:         score,
		BandAlias:          alias,
		Band:               band,
		Selection:          selection,
		Default:            p.selector.DefaultSelection(band, req.TaskType),
		Category:           category,
		CategoryConfidence: confidence,
	}
}

// Complete turns a decision plus the dispatcher's reported usage into the
// immutable run result handed to persistence and the response layer.
func (p *Pipeline) Complete(req *types.RunRequest, d Decision, usage types.Usage) types.RunResult {
	actual := p.costs.Cost(d.Selection.ModelKey(), usage.PromptTokens, usage.CompletionTokens)
	if actual == 0 && usage.ReportedCostUSD > 0 {
		// Neither the registry nor the pricing table knew this model;
		// trust the provider-reported figure as a last resort.
		actual = usage.ReportedCostUSD
	}

	rc := cost.RunCost{
		Band:             string(d.Band),
		PromptTokens:     usage.PromptTokens,
		CompletionTokens: usage.CompletionTokens,
		ActualCostUSD:    actual,
	}
	figures := p.costs.Figures(rc)

	assessment := p.risk.Score(risk.Input{
		Band:                string(d.Band),
		Provider:            d.Selection.Provider,
		CostUSD:             actual,
		BaselineCostUSD:     figures.BaselineCostUSD,
		OverridesUsed:       req.OverridesUsed(),
		GovernanceLevel:     req.ContextLevel("governance_level"),
		SafetyLevel:         req.ContextLevel("safety_flag_level"),
		BusinessImpactLevel: req.ContextLevel("business_impact_level"),
	})

	counterfactual := p.costs.Cost(d.Default.ModelKey(), usage.PromptTokens, usage.CompletionTokens)
	efficient := routing.IsEfficient(actual, counterfactual, p.tolerance)

	return types.RunResult{
		Selection:             d.Selection,
		Cost:                  figures,
		Risk:                  assessment,
		Efficient:             efficient,
		Complexity:            d.Complexity,
		CounterfactualCostUSD: counterfactual,
		Category:              d.Category,
		CategoryConfidence:    d.CategoryConfidence,
	}
}
