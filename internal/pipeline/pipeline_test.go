package pipeline

import (
	"math"
	"strings"
	"testing"

	"github.com/agenticlabs/smartrouter/internal/config"
	"github.com/agenticlabs/smartrouter/internal/cost"
	"github.com/agenticlabs/smartrouter/internal/risk"
	"github.com/agenticlabs/smartrouter/internal/routing"
	"github.com/agenticlabs/smartrouter/internal/types"
)

func newTestPipeline() *Pipeline {
	mc := config.DefaultModelsConfig()
	registry := routing.NewRegistry(mc)
	selector := routing.NewSelector(registry, mc.Routes, types.ModeStandard)
	return New(registry, selector, cost.NewEngine(registry, mc), risk.NewScorer(mc.Risk), 0.02)
}

func TestDecide_BandFromComplexity(t *testing.T) {
	p := newTestPipeline()

	req := &types.RunRequest{Prompt: "What is the capital of France?"}
	d := p.Decide(req, types.Tenant{}, types.CategoryGeneral, 0.9)

	if d.BandAlias != "simple" || d.Band != types.BandLow {
		t.Errorf("expected simple/low, got %s/%s", d.BandAlias, d.Band)
	}
	if d.Selection.Provider != "openai" || d.Selection.Model != "gpt-4o-mini" {
		t.Errorf("unexpected selection %s/%s", d.Selection.Provider, d.Selection.Model)
	}
	if d.Selection.RouteSource != types.RouteDefault {
		t.Errorf("expected default route source, got %s", d.Selection.RouteSource)
	}
	if d.Default != d.Selection {
		t.Errorf("unforced run: default should equal the selection, got %+v", d.Default)
	}
	if d.Category != types.CategoryGeneral || d.CategoryConfidence != 0.9 {
		t.Errorf("classifier output not carried through: %+v", d)
	}
}

func TestDecide_ForcedBandReplacesClassification(t *testing.T) {
	p := newTestPipeline()

	req := &types.RunRequest{
		Prompt:          "hi",
		PolicyOverrides: map[string]any{types.OverrideForceBand: "complex"},
	}
	d := p.Decide(req, types.Tenant{}, types.CategoryUnknown, 0)

	if d.Band != types.BandHigh {
		t.Errorf("expected forced high band, got %s", d.Band)
	}
	if d.Selection.Provider != "anthropic" || d.Selection.Model != "claude-3.7-sonnet" {
		t.Errorf("expected the high-band default, got %s/%s", d.Selection.Provider, d.Selection.Model)
	}
	// The complexity score still reflects the prompt, not the forced band.
	if d.Complexity >= 0.25 {
		t.Errorf("forcing the band must not alter the complexity score, got %v", d.Complexity)
	}
}

func TestDecide_ForcedModelKeepsRuleDefaultAsCounterfactual(t *testing.T) {
	p := newTestPipeline()

	req := &types.RunRequest{
		Prompt:          "hi",
		PolicyOverrides: map[string]any{types.OverrideForceModel: "gpt-4.1"},
	}
	d := p.Decide(req, types.Tenant{}, types.CategoryUnknown, 0)

	if d.Selection.Model != "gpt-4.1" {
		t.Errorf("override not applied, got %s", d.Selection.Model)
	}
	if d.Selection.RouteSource != types.RouteManualOverride {
		t.Errorf("expected manual_override, got %s", d.Selection.RouteSource)
	}
	if d.Default.Model != "gpt-4o-mini" {
		t.Errorf("counterfactual must stay the rule-based default, got %s", d.Default.Model)
	}
}

func TestComplete_DefaultRouteIsEfficient(t *testing.T) {
	p := newTestPipeline()

	req := &types.RunRequest{Prompt: "What is the capital of France?"}
	d := p.Decide(req, types.Tenant{}, types.CategoryGeneral, 0.9)
	res := p.Complete(req, d, types.Usage{PromptTokens: 200, CompletionTokens: 100})

	want := 200*0.15/1e6 + 100*0.6/1e6
	if math.Abs(res.Cost.ActualCostUSD-want) > 1e-12 {
		t.Errorf("expected actual cost %v, got %v", want, res.Cost.ActualCostUSD)
	}
	if res.Cost.SavingsUSD <= 0 {
		t.Errorf("routing below the naive baseline should save, got %v", res.Cost.SavingsUSD)
	}
	if !res.Efficient {
		t.Error("the default selection is always within tolerance of itself")
	}
	if math.Abs(res.CounterfactualCostUSD-want) > 1e-12 {
		t.Errorf("counterfactual should match the default's cost, got %v", res.CounterfactualCostUSD)
	}
	if res.Risk.ALRITier == "" {
		t.Error("risk tier must be set")
	}
}

func TestComplete_OverriddenPremiumIsInefficient(t *testing.T) {
	p := newTestPipeline()

	req := &types.RunRequest{
		Prompt:          "hi",
		PolicyOverrides: map[string]any{types.OverrideForceModel: "gpt-4.1"},
	}
	d := p.Decide(req, types.Tenant{}, types.CategoryUnknown, 0)
	res := p.Complete(req, d, types.Usage{PromptTokens: 1000, CompletionTokens: 500})

	if res.Efficient {
		t.Error("a forced premium model on a low band should be flagged inefficient")
	}
	if res.CounterfactualCostUSD >= res.Cost.ActualCostUSD {
		t.Errorf("counterfactual %v should undercut the actual %v",
			res.CounterfactualCostUSD, res.Cost.ActualCostUSD)
	}
}

func TestComplete_ReportedCostFallback(t *testing.T) {
	p := newTestPipeline()

	req := &types.RunRequest{
		Prompt: "hi",
		PolicyOverrides: map[string]any{
			types.OverrideForceProvider: "nowhere",
			types.OverrideForceModel:    "ghost",
		},
	}
	d := p.Decide(req, types.Tenant{}, types.CategoryUnknown, 0)
	res := p.Complete(req, d, types.Usage{PromptTokens: 100, CompletionTokens: 50, ReportedCostUSD: 0.5})

	if res.Cost.ActualCostUSD != 0.5 {
		t.Errorf("unknown model should fall back to the reported cost, got %v", res.Cost.ActualCostUSD)
	}
}

func TestComplete_ContextLevelsRaiseRisk(t *testing.T) {
	p := newTestPipeline()

	plain := &types.RunRequest{Prompt: "hi"}
	flagged := &types.RunRequest{
		Prompt: "hi",
		Context: map[string]any{
			"governance_level":      float64(3),
			"safety_flag_level":     float64(3),
			"business_impact_level": float64(3),
		},
	}

	usage := types.Usage{PromptTokens: 200, CompletionTokens: 100}
	base := p.Complete(plain, p.Decide(plain, types.Tenant{}, types.CategoryUnknown, 0), usage)
	hot := p.Complete(flagged, p.Decide(flagged, types.Tenant{}, types.CategoryUnknown, 0), usage)

	if hot.Risk.ALRIScore <= base.Risk.ALRIScore {
		t.Errorf("maxed context levels must raise the score: %v vs %v",
			hot.Risk.ALRIScore, base.Risk.ALRIScore)
	}
}

func TestComplete_LongPromptRoutesHigh(t *testing.T) {
	p := newTestPipeline()

	req := &types.RunRequest{
		Prompt: strings.Repeat("Design the policy architecture and explain the tradeoffs. ", 60),
	}
	d := p.Decide(req, types.Tenant{}, types.CategoryUnknown, 0)
	if d.Band != types.BandHigh {
		t.Fatalf("expected high band, got %s", d.Band)
	}

	res := p.Complete(req, d, types.Usage{PromptTokens: 3000, CompletionTokens: 800})
	// The high-band default is also the naive baseline's superior, so spend
	// lands above baseline and the premium is reported as warranted.
	if !res.Cost.Optimal {
		t.Errorf("expected optimal spend on the high band, got %+v", res.Cost)
	}
	if res.Cost.SavingsUSD != 0 {
		t.Errorf("optimal runs carry zero savings, got %v", res.Cost.SavingsUSD)
	}
}
