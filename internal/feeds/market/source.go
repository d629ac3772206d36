// Package market is the market-news connector (Alpha Vantage NEWS_SENTIMENT).
package market

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/abelbrown/georisk/internal/httpclient"
	"github.com/abelbrown/georisk/internal/model"
)

// TimeLayout is the compact timestamp format the API uses for time_published.
const TimeLayout = "20060102T150405"

// Config for the market source.
type Config struct {
	APIKey    string
	Endpoint  string
	Topics    []string
	Limit     int
	UserAgent string
}

// Source pulls market-moving news.
type Source struct {
	cfg    Config
	client *http.Client
}

type response struct {
	Feed []article `json:"feed"`

	// The API answers rate limiting and bad keys with 200 and one of these.
	Information  string `json:"Information"`
	Note         string `json:"Note"`
	ErrorMessage string `json:"Error Message"`
}

type article struct {
	Title         string   `json:"title"`
	URL           string   `json:"url"`
	TimePublished string   `json:"time_published"`
	Summary       string   `json:"summary"`
	Source        string   `json:"source"`
	Authors       []string `json:"authors"`
}

// New creates a market source. A nil client uses the shared default.
func New(cfg Config, client *http.Client) *Source {
	if client == nil {
		client = httpclient.Default()
	}
	return &Source{cfg: cfg, client: client}
}

func (s *Source) Name() string {
	return "Market News"
}

func (s *Source) Channel() model.Channel {
	return model.ChannelMarket
}

// Available reports whether an API key is configured.
func (s *Source) Available() bool {
	return s.cfg.APIKey != ""
}

func (s *Source) Fetch(ctx context.Context) ([]model.RawRecord, error) {
	if !s.Available() {
		return nil, errors.New("market: api key required")
	}

	params := url.Values{
		"function": {"NEWS_SENTIMENT"},
		"apikey":   {s.cfg.APIKey},
		"sort":     {"LATEST"},
	}
	if len(s.cfg.Topics) > 0 {
		params.Set("topics", strings.Join(s.cfg.Topics, ","))
	}
	if s.cfg.Limit > 0 {
		params.Set("limit", strconv.Itoa(s.cfg.Limit))
	}

	var resp response
	if err := httpclient.GetJSON(ctx, s.client, s.cfg.Endpoint, params, s.cfg.UserAgent, &resp); err != nil {
		return nil, fmt.Errorf("market news: %w", err)
	}
	if msg := firstNonEmpty(resp.ErrorMessage, resp.Note, resp.Information); msg != "" && len(resp.Feed) == 0 {
		return nil, fmt.Errorf("market news: %s", msg)
	}

	records := make([]model.RawRecord, 0, len(resp.Feed))
	for _, a := range resp.Feed {
		records = append(records, model.RawRecord{
			Title:    a.Title,
			Body:     a.Summary,
			Link:     a.URL,
			DateText: a.TimePublished,
			Source:   a.Source,
			Author:   strings.Join(a.Authors, ", "),
			Channel:  model.ChannelMarket,
		})
	}
	return records, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
