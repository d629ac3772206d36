package brain

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/abelbrown/georisk/internal/config"
	"github.com/abelbrown/georisk/internal/logging"
)

var _ Provider = (*ClaudeProvider)(nil)

// ClaudeProvider implements the Provider interface for Anthropic's Claude
type ClaudeProvider struct {
	client anthropic.Client
	apiKey string
	model  string
}

// NewClaudeProvider creates a new Claude provider. Retries are disabled in
// the SDK; the synthesizer owns the retry policy.
func NewClaudeProvider(s config.ProviderSettings) *ClaudeProvider {
	model := s.Model
	if model == "" {
		model = "claude-sonnet-4-5-20250929"
	}
	opts := []option.RequestOption{
		option.WithAPIKey(s.APIKey),
		option.WithMaxRetries(0),
	}
	if s.Endpoint != "" {
		opts = append(opts, option.WithBaseURL(s.Endpoint))
	}
	return &ClaudeProvider{
		client: anthropic.NewClient(opts...),
		apiKey: s.APIKey,
		model:  model,
	}
}

func (c *ClaudeProvider) Name() string {
	return "claude"
}

func (c *ClaudeProvider) Available() bool {
	return c.apiKey != ""
}

func (c *ClaudeProvider) Generate(ctx context.Context, req Request) (Response, error) {
	if !c.Available() {
		return Response{}, fmt.Errorf("claude provider not configured")
	}

	logging.Debug("Claude API request starting", "model", c.model)

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: int64(maxTokensOr(req.MaxTokens, 2048)),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.UserPrompt)),
		},
		Temperature: anthropic.Float(req.Temperature),
	}
	if req.SystemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.SystemPrompt}}
	}

	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return Response{}, fmt.Errorf("anthropic API error: %w", err)
	}

	var texts []string
	for _, block := range msg.Content {
		if block.Type == "text" {
			texts = append(texts, block.Text)
		}
	}
	if len(texts) == 0 {
		return Response{}, fmt.Errorf("no text content from anthropic")
	}

	logging.Debug("Claude API response", "model", msg.Model, "stop_reason", msg.StopReason)

	return Response{
		Content: strings.Join(texts, "\n\n"),
		Model:   string(msg.Model),
	}, nil
}
