package model

import (
	"strings"
	"time"
)

// Channel identifies which kind of connector produced a record.
type Channel string

const (
	ChannelFeed    Channel = "feed"    // RSS/Atom feeds
	ChannelSearch  Channel = "search"  // web search results
	ChannelCurated Channel = "curated" // hand-picked author pages, lower frequency
	ChannelMarket  Channel = "market"  // market news APIs
)

// Channels lists every known channel in a fixed order.
func Channels() []Channel {
	return []Channel{ChannelFeed, ChannelSearch, ChannelCurated, ChannelMarket}
}

// RawRecord is what a connector hands back before normalization.
// Connectors fill whatever they have; the date fields are all optional.
type RawRecord struct {
	Title     string
	Body      string // description, snippet or summary; may contain HTML
	Link      string
	ISODate   string     // explicit machine timestamp, e.g. "2026-10-12T08:00:00Z"
	DateText  string     // human-readable date, e.g. "Oct 12, 2026"
	Published *time.Time // already-parsed timestamp (feed parsers)
	Source    string
	Author    string
	Channel   Channel
}

// Event is a candidate news item before synthesis. Events live for a single
// pipeline run and are never persisted.
type Event struct {
	Title         string
	Description   string
	Link          string
	PublishedDate time.Time
	Source        string
	Channel       Channel
	Topics        []string // informational only
}

// Age returns how old the event is relative to now. Future-dated events are
// treated as brand new.
func (e Event) Age(now time.Time) time.Duration {
	age := now.Sub(e.PublishedDate)
	if age < 0 {
		return 0
	}
	return age
}

// IsPremium reports whether the event's source matches the allow-list.
// Entries match case-insensitively as substrings of the source name.
func (e Event) IsPremium(allow []string) bool {
	src := strings.ToLower(e.Source)
	if src == "" {
		return false
	}
	for _, a := range allow {
		if a != "" && strings.Contains(src, strings.ToLower(a)) {
			return true
		}
	}
	return false
}
