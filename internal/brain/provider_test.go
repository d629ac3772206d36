package brain

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/abelbrown/georisk/internal/config"
)

func TestHTTPProviderOpenAICompatible(t *testing.T) {
	var body map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer xai-key" {
			t.Errorf("unexpected auth header %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		w.Write([]byte(`{"model":"grok-3-fast","choices":[{"message":{"content":"{\"ok\":true}"}}]}`))
	}))
	defer server.Close()

	p := NewHTTPProvider(GrokConfig(config.ProviderSettings{APIKey: "xai-key", Model: "grok-3-fast", Endpoint: server.URL}))
	resp, err := p.Generate(context.Background(), Request{
		SystemPrompt: "system",
		UserPrompt:   "user",
		Temperature:  0.2,
		MaxTokens:    100,
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if resp.Content != `{"ok":true}` || resp.Model != "grok-3-fast" {
		t.Errorf("unexpected response %+v", resp)
	}
	if body["temperature"] != 0.2 {
		t.Errorf("temperature not sent: %v", body["temperature"])
	}
	if body["max_tokens"] != float64(100) {
		t.Errorf("max tokens not sent: %v", body["max_tokens"])
	}
	msgs, _ := body["messages"].([]any)
	if len(msgs) != 2 {
		t.Errorf("expected system and user messages, got %v", body["messages"])
	}
}

func TestHTTPProviderGemini(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-goog-api-key") != "g-key" {
			t.Errorf("missing gemini key header")
		}
		w.Write([]byte(`{"modelVersion":"gemini-2.5-flash","candidates":[{"content":{"parts":[{"text":"{\"a\":"},{"text":"1}"}]}}]}`))
	}))
	defer server.Close()

	p := NewHTTPProvider(GeminiConfig(config.ProviderSettings{APIKey: "g-key", Model: "gemini-2.5-flash", Endpoint: server.URL}))
	resp, err := p.Generate(context.Background(), Request{UserPrompt: "x"})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if resp.Content != `{"a":1}` {
		t.Errorf("expected joined parts, got %q", resp.Content)
	}
}

func TestHTTPProviderOllamaNeedsNoKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/api/generate") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"model":"llama3","response":"hello"}`))
	}))
	defer server.Close()

	p := NewHTTPProvider(OllamaConfig(config.ProviderSettings{Model: "llama3", Endpoint: server.URL}))
	if !p.Available() {
		t.Fatal("ollama with a model should be available without a key")
	}
	resp, err := p.Generate(context.Background(), Request{UserPrompt: "hi"})
	if err != nil || resp.Content != "hello" {
		t.Errorf("unexpected result %+v, %v", resp, err)
	}
}

func TestHTTPProviderErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":"rate limited"}`))
	}))
	defer server.Close()

	p := NewHTTPProvider(GrokConfig(config.ProviderSettings{APIKey: "k", Model: "m", Endpoint: server.URL}))
	_, err := p.Generate(context.Background(), Request{UserPrompt: "x"})
	if err == nil || !strings.Contains(err.Error(), "429") {
		t.Errorf("expected status error, got %v", err)
	}
}

func TestHTTPProviderUnavailable(t *testing.T) {
	p := NewHTTPProvider(GrokConfig(config.ProviderSettings{Model: "m"}))
	if p.Available() {
		t.Error("provider without key should not be available")
	}
	if _, err := p.Generate(context.Background(), Request{}); err == nil {
		t.Error("expected error from unavailable provider")
	}
}

func TestClaudeProvider(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/messages") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id":"msg_1","type":"message","role":"assistant","model":"claude-test",
			"content":[{"type":"text","text":"{\"summary\":\"ok\"}"}],
			"stop_reason":"end_turn","usage":{"input_tokens":3,"output_tokens":5}
		}`))
	}))
	defer server.Close()

	p := NewClaudeProvider(config.ProviderSettings{APIKey: "sk-ant", Model: "claude-test", Endpoint: server.URL + "/"})
	resp, err := p.Generate(context.Background(), Request{SystemPrompt: "s", UserPrompt: "u", Temperature: 0.2, MaxTokens: 64})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if resp.Content != `{"summary":"ok"}` || resp.Model != "claude-test" {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestOpenAIProvider(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id":"chatcmpl-1","object":"chat.completion","created":1,"model":"gpt-test",
			"choices":[{"index":0,"message":{"role":"assistant","content":"hi"},"finish_reason":"stop"}]
		}`))
	}))
	defer server.Close()

	p := NewOpenAIProvider(config.ProviderSettings{APIKey: "sk", Model: "gpt-test", Endpoint: server.URL + "/"})
	resp, err := p.Generate(context.Background(), Request{UserPrompt: "u"})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if resp.Content != "hi" || resp.Model != "gpt-test" {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestSDKProvidersUnavailableWithoutKey(t *testing.T) {
	if NewClaudeProvider(config.ProviderSettings{}).Available() {
		t.Error("claude without key should be unavailable")
	}
	if NewOpenAIProvider(config.ProviderSettings{}).Available() {
		t.Error("openai without key should be unavailable")
	}
}

func TestNew(t *testing.T) {
	for _, name := range Names() {
		p, err := New(name, config.ProviderSettings{Model: "m"})
		if err != nil {
			t.Errorf("New(%q) failed: %v", name, err)
			continue
		}
		if p.Name() != name {
			t.Errorf("New(%q).Name() = %q", name, p.Name())
		}
	}
	if _, err := New("nope", config.ProviderSettings{}); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Synthesis.Primary = "claude"
	cfg.Synthesis.Secondary = "openai"
	primary, secondary, err := FromConfig(cfg)
	if err != nil {
		t.Fatalf("FromConfig failed: %v", err)
	}
	if primary.Name() != "claude" || secondary.Name() != "openai" {
		t.Errorf("unexpected providers %s, %s", primary.Name(), secondary.Name())
	}

	cfg.Synthesis.Secondary = ""
	_, secondary, err = FromConfig(cfg)
	if err != nil || secondary != nil {
		t.Errorf("expected nil secondary, got %v, %v", secondary, err)
	}
}
