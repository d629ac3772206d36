// Package search is the search-channel connector. It speaks the Google
// Custom Search JSON API and runs one request per configured query.
package search

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/time/rate"

	"github.com/abelbrown/georisk/internal/httpclient"
	"github.com/abelbrown/georisk/internal/logging"
	"github.com/abelbrown/georisk/internal/model"
)

// Config for a search source.
type Config struct {
	APIKey          string
	EngineID        string
	Endpoint        string
	Queries         []string
	ResultsPerQuery int
	RatePerSecond   float64 // spacing between query requests
	UserAgent       string
}

// Source runs the configured queries against the search API.
type Source struct {
	cfg     Config
	client  *http.Client
	limiter *rate.Limiter
}

type response struct {
	Items []result `json:"items"`
}

type result struct {
	Title       string  `json:"title"`
	Link        string  `json:"link"`
	Snippet     string  `json:"snippet"`
	DisplayLink string  `json:"displayLink"`
	Pagemap     pagemap `json:"pagemap"`
}

type pagemap struct {
	Metatags []map[string]string `json:"metatags"`
}

// isoDateKeys are metatag keys carrying machine-readable publish times,
// in preference order.
var isoDateKeys = []string{
	"article:published_time",
	"og:article:published_time",
	"datepublished",
	"date",
	"article:modified_time",
}

// snippetDateRe matches the date prefix search engines put on news snippets,
// e.g. "Oct 12, 2026 ... " or "3 hours ago ... ".
var snippetDateRe = regexp.MustCompile(`^\s*((?:[A-Z][a-z]{2} \d{1,2}, \d{4})|(?:\d+ (?:minute|hour|day)s? ago))\s*(?:\.\.\.|·|-)?\s*`)

// New creates a search source. A nil client uses the shared default.
func New(cfg Config, client *http.Client) *Source {
	if client == nil {
		client = httpclient.Default()
	}
	if cfg.ResultsPerQuery <= 0 || cfg.ResultsPerQuery > 10 {
		cfg.ResultsPerQuery = 10 // API maximum
	}
	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}
	return &Source{
		cfg:     cfg,
		client:  client,
		limiter: rate.NewLimiter(limit, 1),
	}
}

func (s *Source) Name() string {
	return "Web Search"
}

func (s *Source) Channel() model.Channel {
	return model.ChannelSearch
}

// Available reports whether credentials are configured.
func (s *Source) Available() bool {
	return s.cfg.APIKey != "" && s.cfg.EngineID != ""
}

// Fetch runs every query sequentially. A failing query is logged and skipped;
// Fetch only errors when every query failed.
func (s *Source) Fetch(ctx context.Context) ([]model.RawRecord, error) {
	if !s.Available() {
		return nil, errors.New("search: api key and engine id required")
	}

	var records []model.RawRecord
	var errs []error
	for _, q := range s.cfg.Queries {
		if err := s.limiter.Wait(ctx); err != nil {
			errs = append(errs, err)
			break
		}
		got, err := s.query(ctx, q)
		if err != nil {
			logging.Warn("Search query failed", "query", q, "error", err)
			errs = append(errs, fmt.Errorf("query %q: %w", q, err))
			continue
		}
		records = append(records, got...)
	}

	if len(records) == 0 && len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return records, nil
}

func (s *Source) query(ctx context.Context, q string) ([]model.RawRecord, error) {
	params := url.Values{
		"key":          {s.cfg.APIKey},
		"cx":           {s.cfg.EngineID},
		"q":            {q},
		"num":          {strconv.Itoa(s.cfg.ResultsPerQuery)},
		"sort":         {"date"},
		"dateRestrict": {"d7"},
	}

	var resp response
	if err := httpclient.GetJSON(ctx, s.client, s.cfg.Endpoint, params, s.cfg.UserAgent, &resp); err != nil {
		return nil, err
	}

	records := make([]model.RawRecord, 0, len(resp.Items))
	for _, it := range resp.Items {
		records = append(records, convertResult(it))
	}
	return records, nil
}

func convertResult(it result) model.RawRecord {
	rec := model.RawRecord{
		Title:   it.Title,
		Link:    it.Link,
		Source:  it.DisplayLink,
		Channel: model.ChannelSearch,
	}

	snippet := it.Snippet
	if m := snippetDateRe.FindStringSubmatch(snippet); m != nil {
		rec.DateText = m[1]
		snippet = snippet[len(m[0]):]
	}
	rec.Body = strings.TrimSpace(snippet)

	for _, tags := range it.Pagemap.Metatags {
		if rec.ISODate == "" {
			for _, key := range isoDateKeys {
				if v := tags[key]; v != "" {
					rec.ISODate = v
					break
				}
			}
		}
		if name := tags["og:site_name"]; name != "" {
			rec.Source = name
		}
	}
	return rec
}
