package brain

import (
	"encoding/json"
	"strings"

	"github.com/abelbrown/georisk/internal/config"
)

// Provider configurations for the APIs reached through HTTPProvider.

func GrokConfig(s config.ProviderSettings) *ProviderConfig {
	return &ProviderConfig{
		Name:          "grok",
		Endpoint:      endpointOr(s.Endpoint, "https://api.x.ai/v1/chat/completions"),
		APIKey:        s.APIKey,
		Model:         s.Model,
		AuthHeader:    "Authorization",
		AuthPrefix:    "Bearer ",
		BuildBody:     buildOpenAIBody, // Grok uses OpenAI-compatible API
		ParseResponse: parseOpenAIResponse,
	}
}

func GeminiConfig(s config.ProviderSettings) *ProviderConfig {
	return &ProviderConfig{
		Name:          "gemini",
		Endpoint:      endpointOr(s.Endpoint, "https://generativelanguage.googleapis.com/v1beta/models/"+s.Model+":generateContent"),
		APIKey:        s.APIKey,
		Model:         s.Model,
		AuthHeader:    "x-goog-api-key",
		BuildBody:     buildGeminiBody,
		ParseResponse: parseGeminiResponse,
	}
}

func OllamaConfig(s config.ProviderSettings) *ProviderConfig {
	host := strings.TrimSuffix(endpointOr(s.Endpoint, "http://localhost:11434"), "/")
	return &ProviderConfig{
		Name:          "ollama",
		Endpoint:      host + "/api/generate",
		Model:         s.Model,
		KeyOptional:   true,
		BuildBody:     buildOllamaBody,
		ParseResponse: parseOllamaResponse,
	}
}

// Body builders

func buildOpenAIBody(cfg *ProviderConfig, req Request) map[string]any {
	messages := []map[string]string{}
	if req.SystemPrompt != "" {
		messages = append(messages, map[string]string{"role": "system", "content": req.SystemPrompt})
	}
	messages = append(messages, map[string]string{"role": "user", "content": req.UserPrompt})

	return map[string]any{
		"model":       cfg.Model,
		"max_tokens":  maxTokensOr(req.MaxTokens, 2048),
		"temperature": req.Temperature,
		"messages":    messages,
	}
}

func buildGeminiBody(cfg *ProviderConfig, req Request) map[string]any {
	contents := []map[string]any{
		{"role": "user", "parts": []map[string]string{{"text": req.UserPrompt}}},
	}

	body := map[string]any{
		"contents": contents,
		"generationConfig": map[string]any{
			"maxOutputTokens":  maxTokensOr(req.MaxTokens, 2048),
			"temperature":      req.Temperature,
			"responseMimeType": "application/json",
		},
	}

	if req.SystemPrompt != "" {
		body["systemInstruction"] = map[string]any{
			"parts": []map[string]string{{"text": req.SystemPrompt}},
		}
	}

	return body
}

func buildOllamaBody(cfg *ProviderConfig, req Request) map[string]any {
	return map[string]any{
		"model":  cfg.Model,
		"system": req.SystemPrompt,
		"prompt": req.UserPrompt,
		"stream": false,
		"format": "json",
		"options": map[string]any{
			"temperature": req.Temperature,
			"num_predict": maxTokensOr(req.MaxTokens, 2048),
		},
	}
}

// Response parsers

func parseOpenAIResponse(body []byte) (string, string, error) {
	var resp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Model string `json:"model"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", "", err
	}
	if len(resp.Choices) > 0 {
		return resp.Choices[0].Message.Content, resp.Model, nil
	}
	return "", resp.Model, nil
}

func parseGeminiResponse(body []byte) (string, string, error) {
	var resp struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
		ModelVersion string `json:"modelVersion"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", "", err
	}
	if len(resp.Candidates) > 0 && len(resp.Candidates[0].Content.Parts) > 0 {
		var texts []string
		for _, part := range resp.Candidates[0].Content.Parts {
			texts = append(texts, part.Text)
		}
		return strings.Join(texts, ""), resp.ModelVersion, nil
	}
	return "", resp.ModelVersion, nil
}

func parseOllamaResponse(body []byte) (string, string, error) {
	var resp struct {
		Response string `json:"response"`
		Model    string `json:"model"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", "", err
	}
	return resp.Response, resp.Model, nil
}

func endpointOr(v, defaultVal string) string {
	if v != "" {
		return v
	}
	return defaultVal
}
