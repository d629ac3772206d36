package synth

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/abelbrown/georisk/internal/brain"
	"github.com/abelbrown/georisk/internal/model"
	"github.com/abelbrown/georisk/internal/ranking"
)

const maxDescriptionChars = 320

const systemPrompt = `You are a geopolitical risk analyst writing a daily briefing for investors.
Work only from the events provided. Do not invent events, sources or links.

Respond with a single JSON object and nothing else, using exactly this schema:
{
  "overview": "3-5 sentences on today's overall geopolitical risk picture",
  "geopoliticalRiskIndex": 0-100 (0 calm, 100 extreme),
  "lastUpdated": "YYYY-MM-DD",
  "risks": [
    {
      "name": "short risk title",
      "description": "2-4 sentences of analysis",
      "region": "affected region or country",
      "impactLevel": "Low" | "Medium" | "High" | "Severe",
      "marketImpact": "expected effect on markets, sectors or assets",
      "source": "publisher of the supporting event",
      "sourceUrl": "link of the supporting event",
      "lastUpdated": "ISO 8601 timestamp of the supporting event"
    }
  ]
}

List between 3 and 10 risks, most severe first. Merge events describing the same development.`

// BuildPrompt renders the request for a day's candidate events. The same
// template serves every provider.
func BuildPrompt(now time.Time, cands []ranking.Candidate, temperature float64, maxTokens int) brain.Request {
	var b strings.Builder
	fmt.Fprintf(&b, "Today's date: %s\n\n", model.Day(now))
	fmt.Fprintf(&b, "Candidate events (%d), highest priority first:\n", len(cands))
	for _, c := range cands {
		ev := c.Event
		fmt.Fprintf(&b, "- [%s | %s | %s | priority %d] %s\n",
			ev.Source, ev.Channel, ev.PublishedDate.UTC().Format(time.RFC3339), c.Score, ev.Title)
		if desc := truncate(ev.Description, maxDescriptionChars); desc != "" && desc != ev.Title {
			fmt.Fprintf(&b, "  %s\n", desc)
		}
		fmt.Fprintf(&b, "  %s\n", ev.Link)
	}
	fmt.Fprintf(&b, "\nSet lastUpdated to %s.", model.Day(now))

	return brain.Request{
		SystemPrompt: systemPrompt,
		UserPrompt:   b.String(),
		Temperature:  temperature,
		MaxTokens:    maxTokens,
	}
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return strings.TrimSpace(string(r[:n])) + "..."
}
