package routing

import (
	"testing"

	"github.com/agenticlabs/smartrouter/internal/config"
	"github.com/agenticlabs/smartrouter/internal/types"
)

func newTestSelector(mode types.RouterMode) *Selector {
	mc := config.DefaultModelsConfig()
	return NewSelector(NewRegistry(mc), mc.Routes, mode)
}

func TestSelect_DefaultRouteTable(t *testing.T) {
	s := newTestSelector(types.ModeStandard)

	cases := []struct {
		band         types.RoutingBand
		taskType     string
		wantProvider string
		wantModel    string
	}{
		{types.BandLow, "", "openai", "gpt-4o-mini"},
		{types.BandMedium, "", "openai", "gpt-4o"},
		{types.BandHigh, "", "anthropic", "claude-3.7-sonnet"},
		{types.BandMedium, "coding", "openai", "gpt-4.1-mini"},
		{types.BandHigh, "coding", "openai", "gpt-4.1"},
	}
	for _, tc := range cases {
		got := s.Select(SelectionInput{Band: tc.band, TaskType: tc.taskType})
		if got.Provider != tc.wantProvider || got.Model != tc.wantModel {
			t.Errorf("Select(%s, %q) = %s/%s, want %s/%s",
				tc.band, tc.taskType, got.Provider, got.Model, tc.wantProvider, tc.wantModel)
		}
		if got.RouteSource != types.RouteDefault {
			t.Errorf("expected route source default, got %s", got.RouteSource)
		}
	}
}

func TestSelect_UnknownTaskTypeFallsBackToBandDefault(t *testing.T) {
	s := newTestSelector(types.ModeStandard)

	got := s.Select(SelectionInput{Band: types.BandMedium, TaskType: "gardening"})
	if got.Provider != "openai" || got.Model != "gpt-4o" {
		t.Errorf("expected band default openai/gpt-4o, got %s/%s", got.Provider, got.Model)
	}
}

func TestSelect_ManualOverride(t *testing.T) {
	s := newTestSelector(types.ModeStandard)

	got := s.Select(SelectionInput{
		Band:           types.BandLow,
		ForcedProvider: "anthropic",
		ForcedModel:    "claude-3.7-sonnet",
	})
	if got.Provider != "anthropic" || got.Model != "claude-3.7-sonnet" {
		t.Errorf("override not honored: %s/%s", got.Provider, got.Model)
	}
	if got.RouteSource != types.RouteManualOverride {
		t.Errorf("expected manual_override, got %s", got.RouteSource)
	}
}

func TestSelect_PartialOverrideKeepsDefaultBase(t *testing.T) {
	s := newTestSelector(types.ModeStandard)

	// Forcing only the model keeps the default route's provider.
	got := s.Select(SelectionInput{Band: types.BandLow, ForcedModel: "gpt-4.1"})
	if got.Provider != "openai" || got.Model != "gpt-4.1" {
		t.Errorf("expected openai/gpt-4.1, got %s/%s", got.Provider, got.Model)
	}
}

func TestSelect_OverrideBypassesAllowList(t *testing.T) {
	s := newTestSelector(types.ModeStandard)

	tenant := types.Tenant{ID: "t1", AllowedModels: []string{"openai:gpt-4o-mini"}}
	got := s.Select(SelectionInput{
		Band:           types.BandLow,
		Tenant:         tenant,
		ForcedProvider: "anthropic",
		ForcedModel:    "claude-3.7-sonnet",
	})
	if got.Provider != "anthropic" {
		t.Errorf("manual override should bypass the allow-list, got %s", got.Provider)
	}
}

func TestSelect_AllowListForcesRescore(t *testing.T) {
	s := newTestSelector(types.ModeStandard)

	// Medium default is gpt-4o, which the tenant does not allow. The selector
	// must rescore over the allow-list instead.
	tenant := types.Tenant{ID: "t1", AllowedModels: []string{"openai:gpt-4o-mini", "ollama:qwen2-7b-instruct"}}
	got := s.Select(SelectionInput{Band: types.BandMedium, Tenant: tenant})

	if got.ModelKey() != "openai:gpt-4o-mini" && got.ModelKey() != "ollama:qwen2-7b-instruct" {
		t.Fatalf("selection must come from the allow-list, got %s", got.ModelKey())
	}
	if got.RouteSource != types.RouteEnhanced {
		t.Errorf("rescored selection should be marked enhanced, got %s", got.RouteSource)
	}
}

func TestSelect_EmptyAllowListFallsBack(t *testing.T) {
	mc := config.DefaultModelsConfig()
	s := NewSelector(NewRegistry(mc), mc.Routes, types.ModeStandard)

	// Allow-list names only an unregistered key: nothing is usable, so the
	// known-good fallback pair is returned.
	tenant := types.Tenant{ID: "t1", AllowedModels: []string{"nowhere:ghost"}}
	got := s.Select(SelectionInput{Band: types.BandMedium, Tenant: tenant})

	if got.Provider != mc.Routes.Fallback.Provider || got.Model != mc.Routes.Fallback.Model {
		t.Errorf("expected fallback pair, got %s/%s", got.Provider, got.Model)
	}
	if got.RouteSource != types.RouteFallback {
		t.Errorf("expected route source fallback, got %s", got.RouteSource)
	}
}

func TestSelect_EnhancedModePrefersCheapCapable(t *testing.T) {
	s := newTestSelector(types.ModeEnhanced)

	got := s.Select(SelectionInput{Band: types.BandLow, Category: types.CategoryGeneral})
	if got.RouteSource != types.RouteEnhanced {
		t.Fatalf("expected enhanced route source, got %s", got.RouteSource)
	}
	// gpt-4.1-mini pairs the best reasoning capability with mini pricing, so
	// it outscores both the premium entries and the weaker local model.
	if got.ModelKey() != "openai:gpt-4.1-mini" {
		t.Errorf("expected openai:gpt-4.1-mini to win on low band, got %s", got.ModelKey())
	}
}

func TestSelect_UnavailableProviderTriggersRescore(t *testing.T) {
	mc := config.DefaultModelsConfig()
	s := NewSelector(NewRegistry(mc), mc.Routes, types.ModeStandard).
		WithHealth(func(provider string) bool { return provider != "anthropic" })

	got := s.Select(SelectionInput{Band: types.BandHigh})
	if got.Provider == "anthropic" {
		t.Errorf("unavailable provider must not be selected, got %s/%s", got.Provider, got.Model)
	}
}

func TestDefaultSelection(t *testing.T) {
	s := newTestSelector(types.ModeEnhanced)

	got := s.DefaultSelection(types.BandHigh, "")
	if got.Provider != "anthropic" || got.Model != "claude-3.7-sonnet" {
		t.Errorf("expected the rule-table default, got %s/%s", got.Provider, got.Model)
	}
	if got.RouteSource != types.RouteDefault {
		t.Errorf("expected route source default, got %s", got.RouteSource)
	}
}

func TestCostScore(t *testing.T) {
	if got := costScore(Pricing{}); got != 1.0 {
		t.Errorf("zero-priced models score 1.0, got %v", got)
	}
	if got := costScore(Pricing{InputPerMillion: 2, OutputPerMillion: 8}); got != 0.1 {
		t.Errorf("expected 0.1, got %v", got)
	}
}
