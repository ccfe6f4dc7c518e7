package adapters

import "context"

// Params are the generation controls forwarded to the provider.
type Params struct {
	Temperature float64
	MaxTokens   int
}

// Result is what a provider reports back after executing a prompt. Token
// counts are provider-reported where available, estimated otherwise; the
// router recomputes cost itself and only falls back to ReportedCostUSD when
// its own pricing yields zero.
type Result struct {
	Output           string
	PromptTokens     int
	CompletionTokens int
	LatencyMs        float64
	ReportedCostUSD  float64
	Confidence       float64
}

// ProviderAdapter executes a prompt against one upstream model provider.
type ProviderAdapter interface {
	Name() string
	Execute(ctx context.Context, model, prompt string, params Params) (*Result, error)
}

// EstimateTokens is the crude ~4 chars/token fallback used when a provider
// reports no usage.
func EstimateTokens(text string) int {
	n := len(text) / 4
	if n < 1 {
		return 1
	}
	return n
}
