package brain

import (
	"fmt"

	"github.com/abelbrown/georisk/internal/config"
)

// Names lists every provider New can build.
func Names() []string {
	return []string{"claude", "gemini", "grok", "ollama", "openai"}
}

// New creates a provider by name from its settings. A provider without
// credentials is still returned; callers check Available.
func New(name string, s config.ProviderSettings) (Provider, error) {
	switch name {
	case "claude":
		return NewClaudeProvider(s), nil
	case "openai":
		return NewOpenAIProvider(s), nil
	case "grok":
		return NewHTTPProvider(GrokConfig(s)), nil
	case "gemini":
		return NewHTTPProvider(GeminiConfig(s)), nil
	case "ollama":
		return NewHTTPProvider(OllamaConfig(s)), nil
	default:
		return nil, fmt.Errorf("unknown provider %q (known: %v)", name, Names())
	}
}

// FromConfig builds the primary and secondary providers named in the
// synthesis settings.
func FromConfig(cfg *config.Config) (primary, secondary Provider, err error) {
	primary, err = New(cfg.Synthesis.Primary, cfg.Providers[cfg.Synthesis.Primary])
	if err != nil {
		return nil, nil, fmt.Errorf("primary: %w", err)
	}
	if cfg.Synthesis.Secondary == "" {
		return primary, nil, nil
	}
	secondary, err = New(cfg.Synthesis.Secondary, cfg.Providers[cfg.Synthesis.Secondary])
	if err != nil {
		return nil, nil, fmt.Errorf("secondary: %w", err)
	}
	return primary, secondary, nil
}
