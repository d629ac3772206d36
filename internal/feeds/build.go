package feeds

import (
	"net/http"

	"github.com/abelbrown/georisk/internal/config"
	"github.com/abelbrown/georisk/internal/feeds/curated"
	"github.com/abelbrown/georisk/internal/feeds/market"
	"github.com/abelbrown/georisk/internal/feeds/rss"
	"github.com/abelbrown/georisk/internal/feeds/search"
	"github.com/abelbrown/georisk/internal/logging"
)

// Build constructs every configured source in a fixed order: feeds, search,
// curated pages, market news. Sources missing credentials are skipped.
// A nil client uses each connector's default.
func Build(cfg *config.Config, client *http.Client) []Source {
	ua := cfg.Fetch.UserAgent
	var sources []Source

	for _, f := range cfg.Sources.Feeds {
		if f.URL == "" {
			logging.Warn("Skipping feed without url", "source", f.Name)
			continue
		}
		sources = append(sources, rss.New(f.Name, f.URL, client, ua))
	}

	sc := cfg.Sources.Search
	if len(sc.Queries) > 0 {
		src := search.New(search.Config{
			APIKey:          sc.APIKey,
			EngineID:        sc.EngineID,
			Endpoint:        sc.Endpoint,
			Queries:         sc.Queries,
			ResultsPerQuery: sc.ResultsPerQuery,
			RatePerSecond:   sc.RatePerSecond,
			UserAgent:       ua,
		}, client)
		if src.Available() {
			sources = append(sources, src)
		} else {
			logging.Info("Search channel disabled: no credentials", "channel", src.Channel())
		}
	}

	for _, c := range cfg.Sources.Curated {
		if c.URL == "" || c.Item == "" {
			logging.Warn("Skipping curated source without url or item selector", "source", c.Name)
			continue
		}
		sources = append(sources, curated.New(c, client, ua))
	}

	mc := cfg.Sources.Market
	msrc := market.New(market.Config{
		APIKey:    mc.APIKey,
		Endpoint:  mc.Endpoint,
		Topics:    mc.Topics,
		Limit:     mc.Limit,
		UserAgent: ua,
	}, client)
	if msrc.Available() {
		sources = append(sources, msrc)
	} else {
		logging.Info("Market channel disabled: no credentials", "channel", msrc.Channel())
	}

	return sources
}
