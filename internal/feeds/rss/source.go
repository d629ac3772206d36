// Package rss is the feed-channel connector for RSS and Atom feeds.
package rss

import (
	"context"
	"fmt"
	"net/http"

	"github.com/mmcdole/gofeed"

	"github.com/abelbrown/georisk/internal/httpclient"
	"github.com/abelbrown/georisk/internal/model"
)

// Source fetches items from an RSS/Atom feed
type Source struct {
	name      string
	url       string
	userAgent string
	client    *http.Client
}

// New creates a new RSS source. A nil client uses the shared default.
func New(name, url string, client *http.Client, userAgent string) *Source {
	if client == nil {
		client = httpclient.Default()
	}
	return &Source{
		name:      name,
		url:       url,
		userAgent: userAgent,
		client:    client,
	}
}

func (s *Source) Name() string {
	return s.name
}

func (s *Source) Channel() model.Channel {
	return model.ChannelFeed
}

func (s *Source) Fetch(ctx context.Context) ([]model.RawRecord, error) {
	body, err := httpclient.Get(ctx, s.client, s.url, nil, s.userAgent)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", s.name, err)
	}

	feed, err := gofeed.NewParser().ParseString(string(body))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.name, err)
	}

	records := make([]model.RawRecord, 0, len(feed.Items))
	for _, entry := range feed.Items {
		records = append(records, convertItem(entry, s.name))
	}
	return records, nil
}

// convertItem maps a gofeed.Item onto a raw record. The parsed published
// time is preferred over the updated time; the raw strings are kept so the
// normalizer can fall back to them.
func convertItem(entry *gofeed.Item, sourceName string) model.RawRecord {
	rec := model.RawRecord{
		Title:   entry.Title,
		Body:    entry.Description,
		Link:    entry.Link,
		Source:  sourceName,
		Channel: model.ChannelFeed,
	}

	if rec.Body == "" && entry.Content != "" {
		rec.Body = entry.Content
	}

	switch {
	case entry.PublishedParsed != nil:
		rec.Published = entry.PublishedParsed
	case entry.UpdatedParsed != nil:
		rec.Published = entry.UpdatedParsed
	}

	rec.DateText = entry.Published
	if rec.DateText == "" {
		rec.DateText = entry.Updated
	}

	if entry.Author != nil {
		rec.Author = entry.Author.Name
	}
	return rec
}
