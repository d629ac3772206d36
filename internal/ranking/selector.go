// Package ranking turns deduplicated events into the ordered, quota-capped
// candidate list handed to synthesis.
package ranking

import (
	"sort"
	"strings"

	"github.com/abelbrown/georisk/internal/config"
	"github.com/abelbrown/georisk/internal/model"
)

const (
	baseScore       = 5
	premiumBonus    = 2
	highImpactBonus = 1
	maxScore        = 10
)

// Candidate is an event selected for synthesis with its heuristic score.
// Score is a rough starting priority, not the final impact level.
type Candidate struct {
	Event   model.Event
	Score   int
	Premium bool
}

// Selector applies per-channel and global quotas.
type Selector struct {
	SourceLimits map[model.Channel]int
	DefaultLimit int // for channels missing from SourceLimits
	MaxTotal     int
	Premium      []string
	HighImpact   []string
}

// New builds a Selector from configuration.
func New(cfg config.RankingConfig) *Selector {
	return &Selector{
		SourceLimits: cfg.SourceLimits,
		DefaultLimit: cfg.DefaultSourceLimit,
		MaxTotal:     cfg.MaxTotalEvents,
		Premium:      cfg.PremiumSources,
		HighImpact:   cfg.HighImpactKeywords,
	}
}

// Limit returns the quota for a channel.
func (s *Selector) Limit(ch model.Channel) int {
	if n, ok := s.SourceLimits[ch]; ok {
		return n
	}
	return s.DefaultLimit
}

// Score computes the heuristic priority: base 5, +2 for a premium source,
// +1 for a high-impact keyword in the title, capped at 10.
func Score(ev model.Event, premium, highImpact []string) int {
	score := baseScore
	if ev.IsPremium(premium) {
		score += premiumBonus
	}
	title := strings.ToLower(ev.Title)
	for _, k := range highImpact {
		if k != "" && strings.Contains(title, strings.ToLower(k)) {
			score += highImpactBonus
			break
		}
	}
	if score > maxScore {
		score = maxScore
	}
	return score
}

// Select sorts premium sources first then newest first, keeping discovery
// order on ties, takes at most Limit(channel) per channel and truncates the
// result to MaxTotal.
func (s *Selector) Select(events []model.Event) []Candidate {
	cands := make([]Candidate, len(events))
	for i, ev := range events {
		cands[i] = Candidate{
			Event:   ev,
			Score:   Score(ev, s.Premium, s.HighImpact),
			Premium: ev.IsPremium(s.Premium),
		}
	}
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].Premium != cands[j].Premium {
			return cands[i].Premium
		}
		return cands[i].Event.PublishedDate.After(cands[j].Event.PublishedDate)
	})

	counts := make(map[model.Channel]int)
	result := make([]Candidate, 0, len(cands))
	for _, c := range cands {
		ch := c.Event.Channel
		if counts[ch] >= s.Limit(ch) {
			continue
		}
		counts[ch]++
		result = append(result, c)
	}

	if s.MaxTotal > 0 && len(result) > s.MaxTotal {
		result = result[:s.MaxTotal]
	}
	return result
}

// Events unwraps candidates back to events, preserving order.
func Events(cands []Candidate) []model.Event {
	out := make([]model.Event, len(cands))
	for i, c := range cands {
		out[i] = c.Event
	}
	return out
}
