package cost

import (
	"math"

	"github.com/agenticlabs/smartrouter/internal/config"
	"github.com/agenticlabs/smartrouter/internal/routing"
	"github.com/agenticlabs/smartrouter/internal/types"
)

// OptimalMessage is the sentinel emitted when raw savings are zero or
// negative: the premium spend was warranted, there was nothing to save.
// It distinguishes "nothing to save" from "no data".
const OptimalMessage = "Premium model required for this task (correct)."

// Engine computes per-token spend and baseline costs against the model
// catalog. It is built once at startup and safe for concurrent use.
type Engine struct {
	registry      *routing.Registry
	pricing       map[string]map[string]config.PriceEntry
	naiveBaseline string
	bandBaselines map[types.RoutingBand]string
}

func NewEngine(registry *routing.Registry, mc *config.ModelsConfig) *Engine {
	bands := make(map[types.RoutingBand]string, len(mc.Baselines.Band))
	for band, key := range mc.Baselines.Band {
		bands[types.NormalizeBand(band)] = key
	}
	return &Engine{
		registry:      registry,
		pricing:       mc.Pricing,
		naiveBaseline: mc.Baselines.Naive,
		bandBaselines: bands,
	}
}

// Cost computes USD spend for the given model and token counts. Registry
// pricing wins; the per-provider pricing table is the fallback; with neither,
// the price is zero. Rounded to 10 decimals only at the end so tiny
// fractional-dollar figures keep their precision through the sum.
func (e *Engine) Cost(modelKey string, inputTokens, outputTokens int) float64 {
	if inputTokens < 0 {
		inputTokens = 0
	}
	if outputTokens < 0 {
		outputTokens = 0
	}
	perIn, perOut := e.perTokenPrices(modelKey)
	return round10(float64(inputTokens)*perIn + float64(outputTokens)*perOut)
}

func (e *Engine) perTokenPrices(modelKey string) (float64, float64) {
	if m, ok := e.registry.Get(modelKey); ok {
		p := m.Pricing
		if p.InputPerMillion > 0 || p.OutputPerMillion > 0 {
			return p.InputPerMillion / 1e6, p.OutputPerMillion / 1e6
		}
	}
	provider, modelID, ok := routing.SplitModelKey(modelKey)
	if !ok {
		return 0, 0
	}
	if models, ok := e.pricing[provider]; ok {
		if p, ok := models[modelID]; ok {
			return p.InputPerMillion / 1e6, p.OutputPerMillion / 1e6
		}
	}
	return 0, 0
}

// NaiveBaselineModel is the band-agnostic baseline used for global savings
// reporting.
func (e *Engine) NaiveBaselineModel() string { return e.naiveBaseline }

// BandBaselineModel resolves the band-aware baseline; unknown bands fall
// back to the naive baseline. Callers must not conflate the two baselines:
// global reports use the naive one, per-band efficiency reports this one.
func (e *Engine) BandBaselineModel(band string) string {
	if band == "" {
		return e.naiveBaseline
	}
	if key, ok := e.bandBaselines[types.NormalizeBand(band)]; ok {
		return key
	}
	return e.naiveBaseline
}

// RunCost is the minimal per-run slice needed for savings accounting.
type RunCost struct {
	Band             string
	PromptTokens     int
	CompletionTokens int
	ActualCostUSD    float64
}

// SavingsResult is the per-run outcome against one baseline.
type SavingsResult struct {
	BaselineModel   string
	BaselineCostUSD float64
	SavingsUSD      float64
	// Optimal means actual spend was already at or above a positive
	// baseline, which is correct routing, not an error.
	Optimal bool
}

// NaiveSavings computes savings against the band-agnostic naive baseline.
func (e *Engine) NaiveSavings(rc RunCost) SavingsResult {
	return e.savingsAgainst(e.naiveBaseline, rc)
}

// BandSavings computes savings against the band-aware baseline.
func (e *Engine) BandSavings(rc RunCost) SavingsResult {
	return e.savingsAgainst(e.BandBaselineModel(rc.Band), rc)
}

func (e *Engine) savingsAgainst(baselineModel string, rc RunCost) SavingsResult {
	baseline := e.Cost(baselineModel, rc.PromptTokens, rc.CompletionTokens)
	optimal := rc.ActualCostUSD >= baseline && baseline > 0
	savings := 0.0
	if !optimal {
		savings = math.Max(baseline-rc.ActualCostUSD, 0)
	}
	return SavingsResult{
		BaselineModel:   baselineModel,
		BaselineCostUSD: baseline,
		SavingsUSD:      round10(savings),
		Optimal:         optimal,
	}
}

// Figures assembles the CostFigures record for one run against the naive
// baseline. The band-aware comparison lives in the counterfactual cost, not
// here.
func (e *Engine) Figures(rc RunCost) types.CostFigures {
	res := e.NaiveSavings(rc)
	pct := 0.0
	if res.BaselineCostUSD > 0 {
		pct = round4(res.SavingsUSD / res.BaselineCostUSD * 100.0)
	}
	return types.CostFigures{
		ActualCostUSD:   rc.ActualCostUSD,
		BaselineCostUSD: res.BaselineCostUSD,
		SavingsUSD:      res.SavingsUSD,
		SavingsPct:      pct,
		Optimal:         res.Optimal,
	}
}

// SummarizeSavings reduces aggregate totals to (absolute, percent, message).
// A non-positive baseline means no data: (0, 0, ""). Zero-or-negative raw
// savings yield (0, 0, OptimalMessage).
func SummarizeSavings(totalActual, totalBaseline float64) (float64, float64, string) {
	if totalBaseline <= 0 {
		return 0, 0, ""
	}
	raw := totalBaseline - totalActual
	if raw <= 0 {
		return 0, 0, OptimalMessage
	}
	pct := raw / totalBaseline * 100.0
	return round10(raw), round4(pct), ""
}

// Summary is an aggregate savings report over many runs.
type Summary struct {
	TotalActualCostUSD   float64
	TotalBaselineCostUSD float64
	SavingsUSD           float64
	SavingsPct           float64
	Message              string
}

// AggregateNaive totals savings against the naive baseline (overview report).
func (e *Engine) AggregateNaive(runs []RunCost) Summary {
	return e.aggregate(runs, e.NaiveSavings)
}

// AggregateBand totals savings against band-aware baselines (routing report).
func (e *Engine) AggregateBand(runs []RunCost) Summary {
	return e.aggregate(runs, e.BandSavings)
}

func (e *Engine) aggregate(runs []RunCost, per func(RunCost) SavingsResult) Summary {
	totalActual := 0.0
	totalBaseline := 0.0
	for _, rc := range runs {
		totalActual += rc.ActualCostUSD
		totalBaseline += per(rc).BaselineCostUSD
	}
	abs, pct, msg := SummarizeSavings(totalActual, totalBaseline)
	return Summary{
		TotalActualCostUSD:   round10(totalActual),
		TotalBaselineCostUSD: round10(totalBaseline),
		SavingsUSD:           abs,
		SavingsPct:           pct,
		Message:              msg,
	}
}

func round10(v float64) float64 { return math.Round(v*1e10) / 1e10 }
func round4(v float64) float64  { return math.Round(v*1e4) / 1e4 }
