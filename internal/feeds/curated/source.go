// Package curated scrapes hand-picked analysis pages that publish no feed.
// Each page is described by CSS selectors in configuration.
package curated

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/abelbrown/georisk/internal/config"
	"github.com/abelbrown/georisk/internal/httpclient"
	"github.com/abelbrown/georisk/internal/model"
)

// Source scrapes one curated page.
type Source struct {
	cfg       config.CuratedSource
	userAgent string
	client    *http.Client
}

// New creates a curated source. A nil client uses the shared default.
func New(cfg config.CuratedSource, client *http.Client, userAgent string) *Source {
	if client == nil {
		client = httpclient.Default()
	}
	return &Source{cfg: cfg, userAgent: userAgent, client: client}
}

func (s *Source) Name() string {
	return s.cfg.Name
}

func (s *Source) Channel() model.Channel {
	return model.ChannelCurated
}

func (s *Source) Fetch(ctx context.Context) ([]model.RawRecord, error) {
	if s.cfg.Item == "" {
		return nil, errors.New("curated: item selector required")
	}
	base, err := url.Parse(s.cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("curated %s: bad url: %w", s.cfg.Name, err)
	}

	body, err := httpclient.Get(ctx, s.client, s.cfg.URL, nil, s.userAgent)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", s.cfg.Name, err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.cfg.Name, err)
	}

	var records []model.RawRecord
	doc.Find(s.cfg.Item).Each(func(_ int, item *goquery.Selection) {
		rec := model.RawRecord{
			Title:   text(item, s.cfg.Title),
			Body:    text(item, s.cfg.Summary),
			Link:    s.link(item, base),
			Source:  s.cfg.Name,
			Channel: model.ChannelCurated,
		}
		if rec.Title == "" && rec.Link == "" {
			return
		}
		if s.cfg.Date != "" {
			date := item.Find(s.cfg.Date).First()
			if dt, ok := date.Attr("datetime"); ok {
				rec.ISODate = strings.TrimSpace(dt)
			}
			rec.DateText = strings.TrimSpace(date.Text())
		}
		records = append(records, rec)
	})
	return records, nil
}

// link resolves the item's href against the page URL. A missing link
// selector uses the first anchor in the item.
func (s *Source) link(item *goquery.Selection, base *url.URL) string {
	sel := s.cfg.Link
	if sel == "" {
		sel = "a"
	}
	a := item.Find(sel).First()
	if item.Is(sel) {
		a = item
	}
	href, ok := a.Attr("href")
	if !ok {
		return ""
	}
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}

func text(item *goquery.Selection, sel string) string {
	if sel == "" {
		return ""
	}
	return strings.Join(strings.Fields(item.Find(sel).First().Text()), " ")
}
