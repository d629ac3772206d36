package synth

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Payload is the loosely-typed shape models return. Field aliases cover the
// names models commonly substitute.
type Payload struct {
	Overview    string        `json:"overview"`
	Summary     string        `json:"summary"`
	Index       looseString   `json:"geopoliticalRiskIndex"`
	LastUpdated string        `json:"lastUpdated"`
	Risks       []RiskPayload `json:"risks"`
}

// RiskPayload is one risk as emitted by the model.
type RiskPayload struct {
	Name         string      `json:"name"`
	Title        string      `json:"title"`
	Description  string      `json:"description"`
	Analysis     string      `json:"analysis"`
	Region       string      `json:"region"`
	ImpactLevel  looseString `json:"impactLevel"`
	MarketImpact string      `json:"marketImpact"`
	Source       string      `json:"source"`
	SourceURL    string      `json:"sourceUrl"`
	URL          string      `json:"url"`
	LastUpdated  string      `json:"lastUpdated"`
}

// looseString accepts a JSON string or any bare scalar such as a number.
type looseString string

func (l *looseString) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*l = looseString(s)
		return nil
	}
	if string(data) == "null" {
		*l = ""
		return nil
	}
	if len(data) > 0 && (data[0] == '{' || data[0] == '[') {
		return fmt.Errorf("expected scalar, got %s", data)
	}
	*l = looseString(data)
	return nil
}

// strategy extracts a payload from raw model text.
type strategy struct {
	name    string
	extract func(text string) (string, error)
}

// strategies run in order; the first that yields a decodable payload wins.
var strategies = []strategy{
	{"direct", extractDirect},
	{"fenced", extractFenced},
	{"bracket", extractBracket},
}

var fencedRe = regexp.MustCompile("(?s)```(?:json|JSON)?\\s*\\n?(.*?)```")

// Parse decodes model output. It returns the payload and the name of the
// strategy that succeeded, or an error wrapping ErrInvalidResponse.
func Parse(text string) (*Payload, string, error) {
	var errs []error
	for _, s := range strategies {
		candidate, err := s.extract(text)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.name, err))
			continue
		}
		p, err := decode(candidate)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.name, err))
			continue
		}
		return p, s.name, nil
	}
	return nil, "", fmt.Errorf("%w: %v", ErrInvalidResponse, errors.Join(errs...))
}

func extractDirect(text string) (string, error) {
	t := strings.TrimSpace(text)
	if t == "" {
		return "", errors.New("empty response")
	}
	return t, nil
}

// extractFenced returns the first fenced code block that decodes.
func extractFenced(text string) (string, error) {
	blocks := fencedRe.FindAllStringSubmatch(text, -1)
	if len(blocks) == 0 {
		return "", errors.New("no fenced code block")
	}
	var lastErr error
	for _, m := range blocks {
		body := strings.TrimSpace(m[1])
		if _, err := decode(body); err != nil {
			lastErr = err
			continue
		}
		return body, nil
	}
	return "", lastErr
}

// extractBracket scans opening brackets left to right and returns the first
// balanced span that decodes. Brackets inside JSON strings are skipped.
func extractBracket(text string) (string, error) {
	lastErr := errors.New("no JSON object or array")
	for start := 0; start < len(text); start++ {
		if text[start] != '{' && text[start] != '[' {
			continue
		}
		end, ok := matchBracket(text, start)
		if !ok {
			lastErr = errors.New("unbalanced brackets")
			continue
		}
		span := text[start:end]
		if _, err := decode(span); err != nil {
			lastErr = err
			continue
		}
		return span, nil
	}
	return "", lastErr
}

// matchBracket returns the index just past the bracket closing text[start].
func matchBracket(text string, start int) (int, bool) {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				return i + 1, true
			}
		}
	}
	return 0, false
}

// decode accepts either the report object or a bare risks array.
func decode(s string) (*Payload, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "[") {
		var risks []RiskPayload
		if err := json.Unmarshal([]byte(s), &risks); err != nil {
			return nil, err
		}
		return &Payload{Risks: risks}, nil
	}
	var p Payload
	if err := json.Unmarshal([]byte(s), &p); err != nil {
		return nil, err
	}
	return &p, nil
}
