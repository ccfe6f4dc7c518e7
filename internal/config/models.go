package config

// ModelsConfig is the model catalog: registry entries, the per-provider
// pricing fallback, baseline assignments, the rule-based route table, and the
// risk rule tables. It is loaded once at startup; editing it adds a model or
// changes a routing default without touching router logic.
type ModelsConfig struct {
	// Models is keyed by "provider:model_id".
	Models map[string]ModelEntry `yaml:"models"`

	// Pricing is the per-provider fallback table (provider -> model ->
	// per-million prices) consulted when a registry entry carries none.
	Pricing map[string]map[string]PriceEntry `yaml:"pricing"`

	Baselines BaselineConfig `yaml:"baselines"`
	Routes    RouteTable     `yaml:"routes"`
	Risk      RiskRules      `yaml:"risk"`
}

type ModelEntry struct {
	DisplayName  string             `yaml:"display_name"`
	Capabilities map[string]float64 `yaml:"capabilities"`
	Pricing      PriceEntry         `yaml:"pricing"`
}

type PriceEntry struct {
	InputPerMillion  float64 `yaml:"input_per_million"`
	OutputPerMillion float64 `yaml:"output_per_million"`
}

// BaselineConfig assigns baseline models for savings reporting. Naive is the
// band-agnostic baseline used for global reporting; Band maps each canonical
// band to its band-aware baseline, with Naive as the fallback for unknowns.
type BaselineConfig struct {
	Naive string            `yaml:"naive"`
	Band  map[string]string `yaml:"band"`
}

// RouteTable is the static rule-based selection table.
type RouteTable struct {
	// Rules are matched in order: first exact (band, task_type) match wins,
	// then a band match with empty task_type.
	Rules []RouteRule `yaml:"rules"`

	// Fallback is the known-good pair used when nothing else resolves.
	Fallback ProviderRoute `yaml:"fallback"`
}

type RouteRule struct {
	Band     string `yaml:"band"`
	TaskType string `yaml:"task_type,omitempty"`
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
}

type ProviderRoute struct {
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
}

// RiskRules holds the pluggable governance and business-impact rule lists.
// Rules are evaluated in order; empty provider or band fields are wildcards.
// The shipped defaults are illustrative policy, not law: deployments are
// expected to override them.
type RiskRules struct {
	Governance     []RiskRule `yaml:"governance"`
	BusinessImpact []RiskRule `yaml:"business_impact"`
}

type RiskRule struct {
	Provider string `yaml:"provider,omitempty"`
	Band     string `yaml:"band,omitempty"`
	Level    int    `yaml:"level"`
}

// DefaultModelsConfig mirrors the production catalog so the router works
// without a models.yaml present.
func DefaultModelsConfig() *ModelsConfig {
	return &ModelsConfig{
		Models: map[string]ModelEntry{
			"openai:gpt-4o-mini": {
				DisplayName: "GPT-4o Mini",
				Capabilities: map[string]float64{
					"reasoning": 0.75, "coding": 0.8, "creative": 0.78,
					"operations": 0.72, "product": 0.74,
				},
				Pricing: PriceEntry{InputPerMillion: 0.15, OutputPerMillion: 0.6},
			},
			"openai:gpt-4o": {
				DisplayName: "GPT-4o",
				Capabilities: map[string]float64{
					"reasoning": 0.85, "coding": 0.88, "creative": 0.86,
					"operations": 0.82, "product": 0.83,
				},
				Pricing: PriceEntry{InputPerMillion: 2.5, OutputPerMillion: 10.0},
			},
			"openai:gpt-4.1-mini": {
				DisplayName: "GPT-4.1 Mini",
				Capabilities: map[string]float64{
					"reasoning": 0.8, "coding": 0.86, "creative": 0.8,
					"operations": 0.75, "product": 0.78,
				},
				Pricing: PriceEntry{InputPerMillion: 0.15, OutputPerMillion: 0.6},
			},
			"openai:gpt-4.1": {
				DisplayName: "GPT-4.1",
				Capabilities: map[string]float64{
					"reasoning": 0.9, "coding": 0.92, "creative": 0.9,
					"operations": 0.9, "product": 0.88,
				},
				Pricing: PriceEntry{InputPerMillion: 5.0, OutputPerMillion: 15.0},
			},
			"anthropic:claude-3.7-sonnet": {
				DisplayName: "Claude 3.7 Sonnet",
				Capabilities: map[string]float64{
					"reasoning": 0.88, "coding": 0.86, "creative": 0.87,
					"operations": 0.85, "product": 0.84,
				},
				Pricing: PriceEntry{InputPerMillion: 3.0, OutputPerMillion: 15.0},
			},
			"ollama:qwen2-7b-instruct": {
				DisplayName: "Qwen2 7B Instruct (local)",
				Capabilities: map[string]float64{
					"reasoning": 0.62, "coding": 0.65, "creative": 0.6,
					"operations": 0.6, "product": 0.58,
				},
				// Local inference: no per-token spend.
				Pricing: PriceEntry{},
			},
		},
		Pricing: map[string]map[string]PriceEntry{
			"openai": {
				"gpt-4o":      {InputPerMillion: 2.5, OutputPerMillion: 10.0},
				"gpt-4o-mini": {InputPerMillion: 0.15, OutputPerMillion: 0.6},
			},
		},
		Baselines: BaselineConfig{
			Naive: "openai:gpt-4o",
			Band: map[string]string{
				"low":    "openai:gpt-4o-mini",
				"medium": "openai:gpt-4o",
				"high":   "anthropic:claude-3.7-sonnet",
			},
		},
		Routes: RouteTable{
			Rules: []RouteRule{
				{Band: "high", TaskType: "coding", Provider: "openai", Model: "gpt-4.1"},
				{Band: "medium", TaskType: "coding", Provider: "openai", Model: "gpt-4.1-mini"},
				{Band: "low", Provider: "openai", Model: "gpt-4o-mini"},
				{Band: "medium", Provider: "openai", Model: "gpt-4o"},
				{Band: "high", Provider: "anthropic", Model: "claude-3.7-sonnet"},
			},
			Fallback: ProviderRoute{Provider: "openai", Model: "gpt-4o-mini"},
		},
		Risk: RiskRules{
			Governance: []RiskRule{
				{Provider: "ollama", Band: "low", Level: 0},
				{Provider: "ollama", Level: 1},
				{Provider: "openai", Band: "low", Level: 1},
				{Provider: "openai", Band: "medium", Level: 2},
				{Level: 3},
			},
			BusinessImpact: []RiskRule{
				{Provider: "openai", Band: "high", Level: 2},
				{Band: "medium", Level: 1},
				{Level: 0},
			},
		},
	}
}
