package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/agenticlabs/smartrouter/internal/config"
)

// OllamaAdapter speaks the Ollama generate API for local inference.
// Local models carry no per-token spend, so ReportedCostUSD stays zero.
type OllamaAdapter struct {
	name   string
	cfg    config.ProviderConfig
	client *http.Client
}

func NewOllamaAdapter(name string, cfg config.ProviderConfig, client *http.Client) *OllamaAdapter {
	return &OllamaAdapter{name: name, cfg: cfg, client: client}
}

func (a *OllamaAdapter) Name() string { return a.name }

func (a *OllamaAdapter) Execute(ctx context.Context, model, prompt string, params Params) (*Result, error) {
	body := ollamaRequestBody{
		Model:  model,
		Prompt: prompt,
		Stream: false,
	}
	if params.Temperature != 0 || params.MaxTokens != 0 {
		body.Options = &ollamaOptions{
			Temperature: params.Temperature,
			NumPredict:  params.MaxTokens,
		}
	}

	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal generate request: %w", err)
	}

	url := a.cfg.BaseURL + "/api/generate"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create http request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := a.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%s request: %w", a.name, err)
	}
	defer resp.Body.Close()
	latency := float64(time.Since(start).Milliseconds())

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", a.name, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned status %d: %s", a.name, resp.StatusCode, string(raw))
	}

	var parsed ollamaResponseBody
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("unmarshal %s response: %w", a.name, err)
	}

	promptTokens := parsed.PromptEvalCount
	completionTokens := parsed.EvalCount
	if promptTokens == 0 {
		promptTokens = EstimateTokens(prompt)
	}
	if completionTokens == 0 {
		completionTokens = EstimateTokens(parsed.Response)
	}

	return &Result{
		Output:           parsed.Response,
		PromptTokens:     promptTokens,
		CompletionTokens: completionTokens,
		LatencyMs:        latency,
		Confidence:       0.9,
	}, nil
}

type ollamaRequestBody struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Options *ollamaOptions `json:"options,omitempty"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type ollamaResponseBody struct {
	Model           string `json:"model"`
	Response        string `json:"response"`
	Done            bool   `json:"done"`
	PromptEvalCount int    `json:"prompt_eval_count"`
	EvalCount       int    `json:"eval_count"`
}
