// Package filter provides pure filter functions for events.
// All functions are simple: []Event in, []Event out. No side effects.
package filter

import (
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/abelbrown/georisk/internal/config"
	"github.com/abelbrown/georisk/internal/model"
)

// ByUsability drops events that cannot be displayed or deduplicated: a
// description shorter than minDesc with a title shorter than minTitle.
// A short description next to a usable title is replaced by the title.
func ByUsability(events []model.Event, minDesc, minTitle int) []model.Event {
	result := make([]model.Event, 0, len(events))
	for _, ev := range events {
		if utf8.RuneCountInString(strings.TrimSpace(ev.Description)) >= minDesc {
			result = append(result, ev)
			continue
		}
		if utf8.RuneCountInString(strings.TrimSpace(ev.Title)) < minTitle {
			continue
		}
		ev.Description = ev.Title
		result = append(result, ev)
	}
	return result
}

// ValidLink reports whether s is an absolute http(s) URL with a host.
func ValidLink(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// ByLink keeps events with a valid link.
func ByLink(events []model.Event) []model.Event {
	result := make([]model.Event, 0, len(events))
	for _, ev := range events {
		if ValidLink(ev.Link) {
			result = append(result, ev)
		}
	}
	return result
}

// ByRecency keeps events no older than their channel's window. The boundary
// is inclusive and future-dated events count as age zero.
func ByRecency(events []model.Event, now time.Time, window func(model.Channel) time.Duration) []model.Event {
	result := make([]model.Event, 0, len(events))
	for _, ev := range events {
		if ev.Age(now) <= window(ev.Channel) {
			result = append(result, ev)
		}
	}
	return result
}

// ByRelevance keeps events whose title or description contains at least one
// keyword, case-insensitively.
func ByRelevance(events []model.Event, keywords []string) []model.Event {
	lowered := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			lowered = append(lowered, k)
		}
	}

	result := make([]model.Event, 0, len(events))
	for _, ev := range events {
		if Relevant(ev, lowered) {
			result = append(result, ev)
		}
	}
	return result
}

// Relevant reports whether any lowercase keyword occurs in the event text.
func Relevant(ev model.Event, lowered []string) bool {
	text := strings.ToLower(ev.Title + " " + ev.Description)
	for _, k := range lowered {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

// Stats counts what each stage removed.
type Stats struct {
	Input      int `json:"input"`
	Unusable   int `json:"unusable"`
	BadLink    int `json:"badLink"`
	Stale      int `json:"stale"`
	Irrelevant int `json:"irrelevant"`
	Kept       int `json:"kept"`
}

// Filter chains the stages with one configuration.
type Filter struct {
	Windows        map[model.Channel]time.Duration
	DefaultWindow  time.Duration
	Keywords       []string
	MinDescription int
	MinTitle       int
}

// New builds a Filter from configuration.
func New(cfg config.FilterConfig) *Filter {
	f := &Filter{
		Windows:        make(map[model.Channel]time.Duration, len(cfg.MaxAgeHours)),
		DefaultWindow:  time.Duration(cfg.DefaultMaxAgeHours) * time.Hour,
		Keywords:       cfg.Keywords,
		MinDescription: cfg.MinDescriptionLength,
		MinTitle:       cfg.MinTitleLength,
	}
	for ch := range cfg.MaxAgeHours {
		f.Windows[ch] = cfg.Window(ch)
	}
	return f
}

// Window returns the max age for a channel.
func (f *Filter) Window(ch model.Channel) time.Duration {
	if w, ok := f.Windows[ch]; ok && w > 0 {
		return w
	}
	return f.DefaultWindow
}

// Apply runs usability, link, recency and relevance in that order.
func (f *Filter) Apply(events []model.Event, now time.Time) ([]model.Event, Stats) {
	st := Stats{Input: len(events)}

	out := ByUsability(events, f.MinDescription, f.MinTitle)
	st.Unusable = st.Input - len(out)

	n := len(out)
	out = ByLink(out)
	st.BadLink = n - len(out)

	n = len(out)
	out = ByRecency(out, now, f.Window)
	st.Stale = n - len(out)

	n = len(out)
	out = ByRelevance(out, f.Keywords)
	st.Irrelevant = n - len(out)

	st.Kept = len(out)
	return out, st
}
