package adapters

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/agenticlabs/smartrouter/internal/config"
)

func TestOpenAIAdapter_Execute(t *testing.T) {
	var gotAuth, gotVersion string
	var gotBody chatRequestBody

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotVersion = r.Header.Get("anthropic-version")
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"id": "chatcmpl-1",
			"choices": []map[string]any{
				{"index": 0, "message": map[string]string{"role": "assistant", "content": "Paris."}},
			},
			"usage": map[string]int{"prompt_tokens": 12, "completion_tokens": 3, "total_tokens": 15},
		})
	}))
	defer server.Close()

	a := NewOpenAIAdapter("openai", config.ProviderConfig{
		BaseURL: server.URL + "/v1",
		APIKey:  "sk-test",
		Headers: map[string]string{"anthropic-version": "2023-06-01"},
	}, server.Client())

	res, err := a.Execute(context.Background(), "gpt-4o-mini", "capital of France?", Params{Temperature: 0.2, MaxTokens: 64})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Output != "Paris." {
		t.Errorf("unexpected output %q", res.Output)
	}
	if res.PromptTokens != 12 || res.CompletionTokens != 3 {
		t.Errorf("provider-reported usage not used: %d/%d", res.PromptTokens, res.CompletionTokens)
	}
	if res.Confidence != 0.9 {
		t.Errorf("expected the fixed adapter confidence 0.9, got %v", res.Confidence)
	}

	if gotAuth != "Bearer sk-test" {
		t.Errorf("unexpected authorization header %q", gotAuth)
	}
	if gotVersion != "2023-06-01" {
		t.Errorf("extra headers not forwarded, got %q", gotVersion)
	}
	if gotBody.Model != "gpt-4o-mini" || gotBody.MaxTokens != 64 {
		t.Errorf("unexpected request body: %+v", gotBody)
	}
	if len(gotBody.Messages) != 2 || gotBody.Messages[1].Content != "capital of France?" {
		t.Errorf("prompt should be the user message: %+v", gotBody.Messages)
	}
}

func TestOpenAIAdapter_EstimatesWhenUsageMissing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": "a response of some length"}},
			},
		})
	}))
	defer server.Close()

	a := NewOpenAIAdapter("openai", config.ProviderConfig{BaseURL: server.URL}, server.Client())

	res, err := a.Execute(context.Background(), "gpt-4o-mini", "a prompt of some length", Params{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.PromptTokens != EstimateTokens("a prompt of some length") {
		t.Errorf("expected estimated prompt tokens, got %d", res.PromptTokens)
	}
	if res.CompletionTokens != EstimateTokens("a response of some length") {
		t.Errorf("expected estimated completion tokens, got %d", res.CompletionTokens)
	}
}

func TestOpenAIAdapter_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "rate limited"}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	a := NewOpenAIAdapter("openai", config.ProviderConfig{BaseURL: server.URL}, server.Client())

	_, err := a.Execute(context.Background(), "gpt-4o-mini", "hi", Params{})
	if err == nil {
		t.Fatal("expected an error on non-200 status")
	}
	if !strings.Contains(err.Error(), "429") {
		t.Errorf("error should carry the status code, got %v", err)
	}
}
