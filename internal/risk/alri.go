// Package risk computes the ALRI composite risk score: five ordinal
// sub-factors (cost ratio, band severity, governance, safety, business
// impact) weighted into a 0-10 score and a retention tier.
package risk

import (
	"math"

	"github.com/agenticlabs/smartrouter/internal/config"
	"github.com/agenticlabs/smartrouter/internal/types"
)

// Sub-factor weights. Raw maximum is 21 with every factor at 3.
const (
	weightCost           = 1.0
	weightBand           = 1.0
	weightGovernance     = 1.5
	weightSafety         = 1.5
	weightBusinessImpact = 2.0
	rawMax               = 21.0
)

// Input is everything the scorer may consider for one run. Every field has a
// defined default, so scoring is total: it never fails, whatever the inputs.
type Input struct {
	Band            string
	Provider        string
	CostUSD         float64
	BaselineCostUSD float64

	// OverridesUsed adds one safety level when policy overrides forced
	// this request's routing.
	OverridesUsed bool

	// Explicit ordinal overrides, clamped to 0..3 when present.
	GovernanceLevel     *int
	SafetyLevel         *int
	BusinessImpactLevel *int
}

// Scorer holds the pluggable governance and business-impact rule tables.
// The tables are data, not code: deployments supply their own policy.
type Scorer struct {
	governance     []config.RiskRule
	businessImpact []config.RiskRule
}

func NewScorer(rules config.RiskRules) *Scorer {
	return &Scorer{
		governance:     rules.Governance,
		businessImpact: rules.BusinessImpact,
	}
}

// Score computes the ALRI score and retention tier.
func (s *Scorer) Score(in Input) types.RiskAssessment {
	band := types.NormalizeBand(in.Band)

	c := costFactor(in.CostUSD, in.BaselineCostUSD)
	x := bandFactor(band)

	g := 0
	if in.GovernanceLevel != nil {
		g = clampLevel(*in.GovernanceLevel)
	} else {
		g = matchRule(s.governance, in.Provider, band, 3)
	}

	sf := 0
	if in.SafetyLevel != nil {
		sf = clampLevel(*in.SafetyLevel)
	}
	if in.OverridesUsed {
		sf++
	}
	if sf > 3 {
		sf = 3
	}

	b := 0
	if in.BusinessImpactLevel != nil {
		b = clampLevel(*in.BusinessImpactLevel)
	} else {
		b = matchRule(s.businessImpact, in.Provider, band, 0)
	}

	raw := weightCost*float64(c) + weightBand*float64(x) +
		weightGovernance*float64(g) + weightSafety*float64(sf) +
		weightBusinessImpact*float64(b)

	score := math.Round(raw/rawMax*10.0*10) / 10
	if score < 0 {
		score = 0
	}
	if score > 10 {
		score = 10
	}

	return types.RiskAssessment{ALRIScore: score, ALRITier: Tier(score)}
}

// Tier maps a score to its retention tier via fixed breakpoints.
func Tier(score float64) types.RiskTier {
	switch {
	case score <= 2.5:
		return types.TierGreenLow
	case score <= 5.0:
		return types.TierYellowMedium
	case score <= 7.5:
		return types.TierOrangeHigh
	default:
		return types.TierRedCritical
	}
}

// costFactor buckets the actual/baseline spend ratio. A non-positive
// baseline means no counterfactual spend, which scores the lowest bucket.
func costFactor(actual, baseline float64) int {
	r := 0.0
	if baseline > 0 {
		r = actual / baseline
	}
	switch {
	case r <= 0.25:
		return 0
	case r <= 0.75:
		return 1
	case r <= 1.25:
		return 2
	default:
		return 3
	}
}

func bandFactor(band types.RoutingBand) int {
	switch band {
	case types.BandLow:
		return 0
	case types.BandMedium:
		return 1
	case types.BandHigh:
		return 2
	default:
		return 1
	}
}

// matchRule walks a rule list in order; empty provider or band fields are
// wildcards. The default applies when nothing matches.
func matchRule(rules []config.RiskRule, provider string, band types.RoutingBand, def int) int {
	for _, rule := range rules {
		if rule.Provider != "" && rule.Provider != provider {
			continue
		}
		if rule.Band != "" && types.NormalizeBand(rule.Band) != band {
			continue
		}
		return clampLevel(rule.Level)
	}
	return clampLevel(def)
}

func clampLevel(v int) int {
	if v < 0 {
		return 0
	}
	if v > 3 {
		return 3
	}
	return v
}
