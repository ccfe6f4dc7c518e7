package routing

import (
	"github.com/agenticlabs/smartrouter/internal/config"
	"github.com/agenticlabs/smartrouter/internal/types"
)

// SelectionInput carries everything the selector needs for one request.
type SelectionInput struct {
	Band     types.RoutingBand
	Category types.QueryCategory
	TaskType string
	Tenant   types.Tenant

	// Explicit overrides; either may be empty.
	ForcedProvider string
	ForcedModel    string
}

// Selector picks a (provider, model) pair for each request. It is pure over
// its immutable inputs; the optional health check is the only collaborator.
type Selector struct {
	registry *Registry
	routes   config.RouteTable
	mode     types.RouterMode

	// available reports whether a provider can currently take traffic.
	// Nil means every provider is considered available.
	available func(provider string) bool
}

func NewSelector(registry *Registry, routes config.RouteTable, mode types.RouterMode) *Selector {
	return &Selector{registry: registry, routes: routes, mode: mode}
}

// WithHealth attaches a provider availability check, consulted during the
// allow-list re-check: an unavailable provider disqualifies a pair the same
// way an allow-list miss does.
func (s *Selector) WithHealth(available func(provider string) bool) *Selector {
	s.available = available
	return s
}

// Select resolves exactly one SelectionResult. It never returns "no decision":
// the worst case is the known-good fallback pair.
func (s *Selector) Select(in SelectionInput) types.SelectionResult {
	// 1. Explicit override wins unconditionally.
	if in.ForcedProvider != "" || in.ForcedModel != "" {
		base := s.defaultRoute(in.Band, in.TaskType)
		provider, model := base.Provider, base.Model
		if in.ForcedProvider != "" {
			provider = in.ForcedProvider
		}
		if in.ForcedModel != "" {
			model = in.ForcedModel
		}
		return types.SelectionResult{
			Provider:    provider,
			Model:       model,
			Band:        in.Band,
			RouteSource: types.RouteManualOverride,
		}
	}

	provider, model := "", ""
	source := types.RouteDefault

	// 2–3. Enhanced scoring in enhanced mode, rule table otherwise.
	if s.mode == types.ModeEnhanced {
		if best, ok := s.chooseEnhanced(in.Category, s.candidateKeys(in.Tenant), in.Band); ok {
			provider, model = best.Provider, best.ModelID
			source = types.RouteEnhanced
		}
	}
	if provider == "" {
		route := s.defaultRoute(in.Band, in.TaskType)
		provider, model = route.Provider, route.Model
		source = types.RouteDefault
	}

	// 4. Allow-list and availability re-check.
	if !s.usable(in.Tenant, ModelKey(provider, model), provider) {
		if best, ok := s.chooseEnhanced(in.Category, s.usableKeys(in.Tenant), in.Band); ok {
			provider, model = best.Provider, best.ModelID
			source = types.RouteEnhanced
		} else {
			provider, model = s.routes.Fallback.Provider, s.routes.Fallback.Model
			source = types.RouteFallback
		}
	}

	return types.SelectionResult{
		Provider:    provider,
		Model:       model,
		Band:        in.Band,
		RouteSource: source,
	}
}

// DefaultSelection resolves the unforced rule-based default pair for a band
// and task type. Used as the counterfactual for efficiency reporting.
func (s *Selector) DefaultSelection(band types.RoutingBand, taskType string) types.SelectionResult {
	route := s.defaultRoute(band, taskType)
	return types.SelectionResult{
		Provider:    route.Provider,
		Model:       route.Model,
		Band:        band,
		RouteSource: types.RouteDefault,
	}
}

// defaultRoute walks the rule table: exact (band, task_type) match first,
// then the band's own default, then the table fallback pair.
func (s *Selector) defaultRoute(band types.RoutingBand, taskType string) config.ProviderRoute {
	if taskType != "" {
		for _, rule := range s.routes.Rules {
			if types.NormalizeBand(rule.Band) == band && rule.TaskType == taskType {
				return config.ProviderRoute{Provider: rule.Provider, Model: rule.Model}
			}
		}
	}
	for _, rule := range s.routes.Rules {
		if types.NormalizeBand(rule.Band) == band && rule.TaskType == "" {
			return config.ProviderRoute{Provider: rule.Provider, Model: rule.Model}
		}
	}
	return s.routes.Fallback
}

// chooseEnhanced scores every candidate key and returns the strict best.
// Ties keep the first-encountered candidate.
func (s *Selector) chooseEnhanced(category types.QueryCategory, keys []string, band types.RoutingBand) (ModelDescriptor, bool) {
	axis := category.CapabilityAxis()
	penalty := riskPenalty(band)

	var best ModelDescriptor
	bestScore := 0.0
	found := false
	for _, key := range keys {
		m, ok := s.registry.Get(key)
		if !ok {
			continue
		}
		score := 0.6*m.Capability(axis) + 0.3*costScore(m.Pricing) - penalty
		if !found || score > bestScore {
			best = m
			bestScore = score
			found = true
		}
	}
	return best, found
}

// candidateKeys is the tenant's allow-list, or the whole registry when the
// allow-list is empty.
func (s *Selector) candidateKeys(tenant types.Tenant) []string {
	if len(tenant.AllowedModels) == 0 {
		return s.registry.Keys()
	}
	return tenant.AllowedModels
}

// usableKeys filters candidateKeys down to registered, available entries.
func (s *Selector) usableKeys(tenant types.Tenant) []string {
	var keys []string
	for _, key := range s.candidateKeys(tenant) {
		m, ok := s.registry.Get(key)
		if !ok {
			continue
		}
		if s.available != nil && !s.available(m.Provider) {
			continue
		}
		keys = append(keys, key)
	}
	return keys
}

func (s *Selector) usable(tenant types.Tenant, modelKey, provider string) bool {
	if !tenant.Allows(modelKey) {
		return false
	}
	if s.available != nil && !s.available(provider) {
		return false
	}
	return true
}

// costScore is the inverse of total per-million price. Zero-priced (local)
// models count as 1.0 rather than dividing by zero.
func costScore(p Pricing) float64 {
	total := p.InputPerMillion + p.OutputPerMillion
	if total <= 0 {
		return 1.0
	}
	return 1.0 / total
}

// riskPenalty discourages cheap-but-risky picks on harder bands.
func riskPenalty(band types.RoutingBand) float64 {
	switch band {
	case types.BandHigh:
		return 0.4
	case types.BandMedium:
		return 0.2
	default:
		return 0.0
	}
}
