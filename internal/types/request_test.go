package types

import "testing"

func TestRunRequest_Overrides(t *testing.T) {
	r := &RunRequest{PolicyOverrides: map[string]any{
		OverrideForceModel:    "gpt-4.1",
		OverrideForceProvider: "openai",
	}}

	if r.ForcedModel() != "gpt-4.1" || r.ForcedProvider() != "openai" {
		t.Errorf("overrides not read back: %q / %q", r.ForcedModel(), r.ForcedProvider())
	}
	if r.ForcedBand() != "" {
		t.Errorf("absent override should be empty, got %q", r.ForcedBand())
	}
	if !r.OverridesUsed() {
		t.Error("forcing a model counts as an override")
	}

	empty := &RunRequest{}
	if empty.OverridesUsed() {
		t.Error("no overrides map means no overrides used")
	}

	// Wrong type is ignored, not an error.
	typed := &RunRequest{PolicyOverrides: map[string]any{OverrideForceModel: 42}}
	if typed.ForcedModel() != "" || typed.OverridesUsed() {
		t.Error("non-string override values are ignored")
	}
}

func TestRunRequest_ConfidenceThreshold(t *testing.T) {
	empty := &RunRequest{}
	if got := empty.ConfidenceThreshold(0.7); got != 0.7 {
		t.Errorf("expected the default 0.7, got %v", got)
	}

	// JSON numbers decode as float64.
	r := &RunRequest{PolicyOverrides: map[string]any{OverrideConfidenceThreshold: 0.95}}
	if got := r.ConfidenceThreshold(0.7); got != 0.95 {
		t.Errorf("expected 0.95, got %v", got)
	}

	bad := &RunRequest{PolicyOverrides: map[string]any{OverrideConfidenceThreshold: "high"}}
	if got := bad.ConfidenceThreshold(0.7); got != 0.7 {
		t.Errorf("malformed override should fall back to the default, got %v", got)
	}
}

func TestRunRequest_ContextLevel(t *testing.T) {
	r := &RunRequest{Context: map[string]any{
		"governance_level":  float64(2),
		"safety_flag_level": "high",
	}}

	if got := r.ContextLevel("governance_level"); got == nil || *got != 2 {
		t.Errorf("expected 2, got %v", got)
	}
	if got := r.ContextLevel("safety_flag_level"); got != nil {
		t.Errorf("non-numeric level should be nil, got %v", *got)
	}
	if got := r.ContextLevel("business_impact_level"); got != nil {
		t.Errorf("absent key should be nil, got %v", *got)
	}

	empty := &RunRequest{}
	if got := empty.ContextLevel("governance_level"); got != nil {
		t.Error("nil context should yield nil")
	}
}

func TestTenant_Allows(t *testing.T) {
	open := Tenant{ID: "t1"}
	if !open.Allows("openai:gpt-4o") {
		t.Error("empty allow-list permits everything")
	}

	scoped := Tenant{ID: "t2", AllowedModels: []string{"openai:gpt-4o-mini"}}
	if !scoped.Allows("openai:gpt-4o-mini") {
		t.Error("listed model should be allowed")
	}
	if scoped.Allows("openai:gpt-4o") {
		t.Error("unlisted model should be denied")
	}
}
