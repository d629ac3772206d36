// Package dedup removes cross-channel duplicates with a single greedy
// leader-clustering pass over a fixed priority order.
package dedup

import (
	"sort"
	"strings"

	"github.com/abelbrown/georisk/internal/model"
)

// DefaultThreshold is the similarity above which two titles are the same story.
const DefaultThreshold = 0.65

// substringSimilarity is the score when one title contains the other.
const substringSimilarity = 0.9

// Similarity scores two normalized titles in [0, 1]. Containment scores
// 0.9; otherwise it is the Jaccard index of the word sets.
func Similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return substringSimilarity
	}
	return jaccard(strings.Fields(a), strings.Fields(b))
}

func jaccard(a, b []string) float64 {
	set := make(map[string]bool, len(a))
	for _, w := range a {
		set[w] = true
	}
	inter := 0
	union := len(set)
	seen := make(map[string]bool, len(b))
	for _, w := range b {
		if seen[w] {
			continue
		}
		seen[w] = true
		if set[w] {
			inter++
		} else {
			union++
		}
	}
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// Priority returns events ordered premium sources first, then newest first.
// Ties keep input order. The input slice is not modified.
func Priority(events []model.Event, premium []string) []model.Event {
	type keyed struct {
		ev      model.Event
		premium bool
	}
	ks := make([]keyed, len(events))
	for i, ev := range events {
		ks[i] = keyed{ev: ev, premium: ev.IsPremium(premium)}
	}
	sort.SliceStable(ks, func(i, j int) bool {
		if ks[i].premium != ks[j].premium {
			return ks[i].premium
		}
		return ks[i].ev.PublishedDate.After(ks[j].ev.PublishedDate)
	})
	out := make([]model.Event, len(ks))
	for i := range ks {
		out[i] = ks[i].ev
	}
	return out
}

// Deduper holds the clustering parameters.
type Deduper struct {
	Threshold float64
	Premium   []string
}

// New returns a Deduper. A non-positive threshold uses DefaultThreshold.
func New(threshold float64, premium []string) *Deduper {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Deduper{Threshold: threshold, Premium: premium}
}

// Dedup orders events by priority, drops repeated links, then keeps each
// event only if no already-accepted event is more similar than the
// threshold. Candidates are compared against accepted events only.
func (d *Deduper) Dedup(events []model.Event) []model.Event {
	ordered := ByURL(Priority(events, d.Premium))

	kept := make([]model.Event, 0, len(ordered))
	leaders := make([]string, 0, len(ordered))

	for _, ev := range ordered {
		title := NormalizeTitle(ev.Title)
		dup := false
		for _, l := range leaders {
			if Similarity(title, l) > d.Threshold {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		leaders = append(leaders, title)
		kept = append(kept, ev)
	}
	return kept
}

// ByURL removes events whose link was already seen verbatim. First wins.
func ByURL(events []model.Event) []model.Event {
	seen := make(map[string]bool, len(events))
	result := make([]model.Event, 0, len(events))
	for _, ev := range events {
		if ev.Link != "" && seen[ev.Link] {
			continue
		}
		if ev.Link != "" {
			seen[ev.Link] = true
		}
		result = append(result, ev)
	}
	return result
}
