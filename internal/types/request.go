package types

import "time"

// RouterMode selects the model-selection strategy.
type RouterMode string

const (
	ModeStandard RouterMode = "standard"
	ModeEnhanced RouterMode = "enhanced"
)

// ParseRouterMode resolves a mode flag, defaulting to standard.
func ParseRouterMode(s string) RouterMode {
	if RouterMode(s) == ModeEnhanced {
		return ModeEnhanced
	}
	return ModeStandard
}

// Recognized policy-override keys.
const (
	OverrideForceModel          = "force_model"
	OverrideForceProvider       = "force_provider"
	OverrideForceBand           = "force_band"
	OverrideConfidenceThreshold = "confidence_threshold"
)

// RunRequest is the canonical internal representation of an incoming routing
// request. The HTTP layer adapts whatever it receives into this one shape;
// the decision core never sees anything else.
type RunRequest struct {
	// Identity (set by auth middleware)
	RequestID string `json:"request_id"`
	TenantID  string `json:"tenant_id"`
	APIKeyID  string `json:"api_key_id"`

	// Request content
	Prompt  string `json:"prompt"`
	AgentID string `json:"agent_id,omitempty"`

	// Optional explicit routing controls
	TaskType        string         `json:"task_type,omitempty"`
	PolicyOverrides map[string]any `json:"policy_overrides,omitempty"`

	// Context carries caller-supplied risk attributes (governance_level,
	// safety_flag_level, business_impact_level). Values are clamped
	// downstream; anything unrecognized is ignored.
	Context map[string]any `json:"context,omitempty"`

	// Internal tracking
	ReceivedAt time.Time `json:"-"`
}

// ForcedProvider returns the force_provider override, if present.
func (r *RunRequest) ForcedProvider() string { return r.overrideString(OverrideForceProvider) }

// ForcedModel returns the force_model override, if present.
func (r *RunRequest) ForcedModel() string { return r.overrideString(OverrideForceModel) }

// ForcedBand returns the force_band override, if present.
func (r *RunRequest) ForcedBand() string { return r.overrideString(OverrideForceBand) }

// ConfidenceThreshold returns the confidence_threshold override, or the
// given default when absent or malformed.
func (r *RunRequest) ConfidenceThreshold(def float64) float64 {
	if r.PolicyOverrides == nil {
		return def
	}
	switch v := r.PolicyOverrides[OverrideConfidenceThreshold].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return def
	}
}

// OverridesUsed reports whether any routing-forcing override is present.
func (r *RunRequest) OverridesUsed() bool {
	return r.ForcedProvider() != "" || r.ForcedModel() != "" || r.ForcedBand() != ""
}

// ContextLevel returns an ordinal level from the request context, or nil
// when absent or not a number.
func (r *RunRequest) ContextLevel(key string) *int {
	if r.Context == nil {
		return nil
	}
	switch v := r.Context[key].(type) {
	case float64:
		n := int(v)
		return &n
	case int:
		n := v
		return &n
	default:
		return nil
	}
}

func (r *RunRequest) overrideString(key string) string {
	if r.PolicyOverrides == nil {
		return ""
	}
	s, _ := r.PolicyOverrides[key].(string)
	return s
}

// Tenant is the per-request tenancy snapshot. An empty AllowedModels list
// means every registry entry is allowed.
type Tenant struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	AllowedModels []string `json:"allowed_models,omitempty"`
}

// Allows reports whether the tenant may use the given model key.
func (t Tenant) Allows(modelKey string) bool {
	if len(t.AllowedModels) == 0 {
		return true
	}
	for _, k := range t.AllowedModels {
		if k == modelKey {
			return true
		}
	}
	return false
}
