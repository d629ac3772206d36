// Package normalize turns raw connector records into Events.
// A record that cannot yield a title and a publish date is rejected.
package normalize

import (
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/abelbrown/georisk/internal/logging"
	"github.com/abelbrown/georisk/internal/model"
)

// isoLayouts are machine timestamps, tried against RawRecord.ISODate.
var isoLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// textLayouts are human-readable dates, tried against RawRecord.DateText.
var textLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	"20060102T150405", // market news APIs
	"20060102T1504",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2 January 2006",
	"Jan 2, 2006 3:04 PM",
	"January 2, 2006 3:04 PM",
	"2006-01-02",
}

var (
	spaceRe    = regexp.MustCompile(`\s+`)
	relativeRe = regexp.MustCompile(`^(\d+)\s+(minute|min|hour|hr|day|week)s?\s+ago$`)
)

// Normalize converts one raw record. The boolean is false when the record
// must be dropped.
func Normalize(raw model.RawRecord, now time.Time) (model.Event, bool) {
	title := collapse(stripHTML(raw.Title))
	if title == "" {
		return model.Event{}, false
	}

	published, ok := PublishedDate(raw, now)
	if !ok {
		return model.Event{}, false
	}

	link := strings.TrimSpace(raw.Link)
	source := strings.TrimSpace(raw.Source)
	if source == "" {
		if u, err := url.Parse(link); err == nil {
			source = strings.TrimPrefix(u.Hostname(), "www.")
		}
	}

	ev := model.Event{
		Title:         title,
		Description:   collapse(stripHTML(raw.Body)),
		Link:          link,
		PublishedDate: published,
		Source:        source,
		Channel:       raw.Channel,
	}
	ev.Topics = Topics(ev.Title + " " + ev.Description)
	return ev, true
}

// All normalizes records in order, dropping rejects.
func All(records []model.RawRecord, now time.Time) []model.Event {
	events := make([]model.Event, 0, len(records))
	for _, r := range records {
		if ev, ok := Normalize(r, now); ok {
			events = append(events, ev)
		}
	}
	if rejected := len(records) - len(events); rejected > 0 {
		logging.Debug("Normalization rejected records", "rejected", rejected, "kept", len(events))
	}
	return events
}

// PublishedDate picks the record's publish instant. An explicit ISO
// timestamp wins over a parsed feed time, which wins over free text.
func PublishedDate(raw model.RawRecord, now time.Time) (time.Time, bool) {
	if t, ok := parseLayouts(raw.ISODate, isoLayouts); ok {
		return t, true
	}
	if raw.Published != nil && !raw.Published.IsZero() {
		return *raw.Published, true
	}
	if t, ok := parseLayouts(raw.DateText, textLayouts); ok {
		return t, true
	}
	if t, ok := parseRelative(raw.DateText, now); ok {
		return t, true
	}
	return time.Time{}, false
}

func parseLayouts(s string, layouts []string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseRelative handles "5 hours ago" style snippet dates.
func parseRelative(s string, now time.Time) (time.Time, bool) {
	m := relativeRe.FindStringSubmatch(strings.ToLower(strings.TrimSpace(s)))
	if m == nil {
		return time.Time{}, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return time.Time{}, false
	}
	var unit time.Duration
	switch m[2] {
	case "minute", "min":
		unit = time.Minute
	case "hour", "hr":
		unit = time.Hour
	case "day":
		unit = 24 * time.Hour
	case "week":
		unit = 7 * 24 * time.Hour
	}
	return now.Add(-time.Duration(n) * unit), true
}

// stripHTML reduces markup to its text content. Plain text passes through.
func stripHTML(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return s
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	// Block elements otherwise glue words together.
	doc.Find("br, p, div, li").Each(func(_ int, sel *goquery.Selection) {
		sel.AppendHtml(" ")
	})
	return doc.Text()
}

func collapse(s string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

// topicKeywords maps informational topic tags to trigger words. Words match
// whole, with an optional plural; a trailing * marks a stem matched as a
// word prefix.
var topicKeywords = map[string][]string{
	"conflict":  {"war", "military", "missile", "troops", "invasion", "airstrike", "attack*", "ceasefire"},
	"trade":     {"tariff", "trade", "export", "import", "sanction", "embargo", "supply chain"},
	"energy":    {"oil", "gas", "opec", "pipeline", "lng", "energy"},
	"markets":   {"stock", "bond", "currency", "inflation", "interest rate", "central bank", "fed"},
	"politics":  {"election", "coup", "protest", "parliament", "president", "prime minister"},
	"diplomacy": {"summit", "talks", "treaty", "diplomat*", "negotiat*"},
	"cyber":     {"cyber*", "hack*", "ransomware"},
}

var topicPatterns = compileTopics(topicKeywords)

func compileTopics(keywords map[string][]string) map[string]*regexp.Regexp {
	out := make(map[string]*regexp.Regexp, len(keywords))
	for topic, words := range keywords {
		alts := make([]string, 0, len(words))
		for _, w := range words {
			if stem, ok := strings.CutSuffix(w, "*"); ok {
				alts = append(alts, regexp.QuoteMeta(stem)+`\w*`)
				continue
			}
			alts = append(alts, regexp.QuoteMeta(w)+`(?:s|es)?`)
		}
		out[topic] = regexp.MustCompile(`(?i)\b(?:` + strings.Join(alts, "|") + `)\b`)
	}
	return out
}

// Topics returns the sorted topic tags whose keywords occur in text.
func Topics(text string) []string {
	var topics []string
	for topic, re := range topicPatterns {
		if re.MatchString(text) {
			topics = append(topics, topic)
		}
	}
	sort.Strings(topics)
	return topics
}
