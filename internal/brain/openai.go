package brain

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/abelbrown/georisk/internal/config"
	"github.com/abelbrown/georisk/internal/logging"
)

var _ Provider = (*OpenAIProvider)(nil)

// OpenAIProvider implements the Provider interface for OpenAI chat models
type OpenAIProvider struct {
	client openai.Client
	apiKey string
	model  string
}

// NewOpenAIProvider creates a new OpenAI provider with SDK retries disabled.
func NewOpenAIProvider(s config.ProviderSettings) *OpenAIProvider {
	model := s.Model
	if model == "" {
		model = "gpt-4o"
	}
	opts := []option.RequestOption{
		option.WithAPIKey(s.APIKey),
		option.WithMaxRetries(0),
	}
	if s.Endpoint != "" {
		opts = append(opts, option.WithBaseURL(s.Endpoint))
	}
	return &OpenAIProvider{
		client: openai.NewClient(opts...),
		apiKey: s.APIKey,
		model:  model,
	}
}

func (o *OpenAIProvider) Name() string {
	return "openai"
}

func (o *OpenAIProvider) Available() bool {
	return o.apiKey != ""
}

func (o *OpenAIProvider) Generate(ctx context.Context, req Request) (Response, error) {
	if !o.Available() {
		return Response{}, fmt.Errorf("openai provider not configured")
	}

	logging.Debug("OpenAI API request starting", "model", o.model)

	var messages []openai.ChatCompletionMessageParamUnion
	if req.SystemPrompt != "" {
		messages = append(messages, openai.SystemMessage(req.SystemPrompt))
	}
	messages = append(messages, openai.UserMessage(req.UserPrompt))

	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:               openai.ChatModel(o.model),
		Messages:            messages,
		Temperature:         openai.Float(req.Temperature),
		MaxCompletionTokens: openai.Int(int64(maxTokensOr(req.MaxTokens, 2048))),
	})
	if err != nil {
		return Response{}, fmt.Errorf("openai API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Response{}, fmt.Errorf("no response from openai")
	}

	logging.Debug("OpenAI API response", "model", resp.Model, "finish_reason", resp.Choices[0].FinishReason)

	return Response{
		Content: resp.Choices[0].Message.Content,
		Model:   resp.Model,
	}, nil
}
