package config

import (
	"time"

	"github.com/abelbrown/georisk/internal/model"
)

// DefaultKeywords is the relevance vocabulary. Deliberately broad: false
// positives are cleaned up by dedup and ranking, false negatives are lost.
var DefaultKeywords = []string{
	// conflict and security
	"war", "conflict", "military", "missile", "troops", "invasion", "ceasefire",
	"nuclear", "attack", "strike", "coup", "terror", "insurgent", "border",
	// diplomacy and politics
	"sanction", "embargo", "diplomat", "summit", "treaty", "election", "regime",
	"geopolit", "nato", "united nations", "g7", "g20", "brics", "opec",
	// trade and economics
	"tariff", "trade", "export", "import", "supply chain", "shipping", "strait",
	"oil", "gas", "energy", "commodit", "currency", "inflation", "recession",
	"central bank", "interest rate", "federal reserve", "fed ", "ecb", "debt",
	"default", "yuan", "ruble", "semiconductor", "rare earth",
}

// DefaultPremiumSources is the reputation allow-list, matched
// case-insensitively as a substring of the source name.
var DefaultPremiumSources = []string{
	"Reuters", "Bloomberg", "Financial Times", "Wall St", "Wall Street Journal",
	"Associated Press", "AP News", "The Economist", "BBC", "Foreign Affairs",
	"Nikkei", "Politico",
}

// DefaultHighImpactKeywords bump an event's heuristic score.
var DefaultHighImpactKeywords = []string{
	"war", "tariff", "sanction", "nuclear", "invasion", "missile", "embargo",
	"coup", "blockade", "default", "escalat", "mobiliz",
}

// DefaultFeeds is the general-news feed list.
var DefaultFeeds = []FeedSource{
	{Name: "BBC World", URL: "https://feeds.bbci.co.uk/news/world/rss.xml"},
	{Name: "Al Jazeera", URL: "https://www.aljazeera.com/xml/rss/all.xml"},
	{Name: "NPR News", URL: "https://feeds.npr.org/1001/rss.xml"},
	{Name: "The Guardian", URL: "https://www.theguardian.com/world/rss"},
	{Name: "DW News", URL: "https://rss.dw.com/rdf/rss-en-all"},
	{Name: "France 24", URL: "https://www.france24.com/en/rss"},
	{Name: "NY Times World", URL: "https://rss.nytimes.com/services/xml/rss/nyt/World.xml"},
	{Name: "Wall St Journal", URL: "https://feeds.a.dj.com/rss/RSSWorldNews.xml"},
	{Name: "Bloomberg", URL: "https://feeds.bloomberg.com/markets/news.rss"},
	{Name: "r/geopolitics", URL: "https://www.reddit.com/r/geopolitics/top/.rss?limit=25"},
}

// Default returns the configuration every deployment starts from.
func Default() *Config {
	return &Config{
		Log: LogConfig{Level: "info"},
		Store: StoreConfig{
			Driver: "file",
			DSN:    "data",
		},
		Server: ServerConfig{Addr: ":8080"},
		Sources: SourcesConfig{
			Feeds: append([]FeedSource(nil), DefaultFeeds...),
			Search: SearchConfig{
				Endpoint: "https://www.googleapis.com/customsearch/v1",
				Queries: []string{
					"geopolitical risk markets",
					"trade war tariffs",
					"new sanctions announced",
					"military escalation",
					"central bank geopolitical",
				},
				ResultsPerQuery: 10,
				RatePerSecond:   1,
			},
			Market: MarketConfig{
				Endpoint: "https://www.alphavantage.co/query",
				Topics:   []string{"economy_macro", "economy_monetary", "financial_markets"},
				Limit:    50,
			},
		},
		Fetch: FetchConfig{
			Timeout:       12 * time.Second,
			MaxConcurrent: 5,
			UserAgent:     "georisk/1.0 (+https://github.com/abelbrown/georisk)",
		},
		Filter: FilterConfig{
			MaxAgeHours: map[model.Channel]int{
				model.ChannelFeed:    48,
				model.ChannelSearch:  48,
				model.ChannelMarket:  48,
				model.ChannelCurated: 168,
			},
			DefaultMaxAgeHours:   48,
			Keywords:             append([]string(nil), DefaultKeywords...),
			MinDescriptionLength: 10,
			MinTitleLength:       20,
		},
		Dedup: DedupConfig{Threshold: 0.65},
		Ranking: RankingConfig{
			SourceLimits: map[model.Channel]int{
				model.ChannelFeed:    20,
				model.ChannelSearch:  25,
				model.ChannelCurated: 8,
				model.ChannelMarket:  15,
			},
			DefaultSourceLimit: 10,
			MaxTotalEvents:     50,
			PremiumSources:     append([]string(nil), DefaultPremiumSources...),
			HighImpactKeywords: append([]string(nil), DefaultHighImpactKeywords...),
		},
		Synthesis: SynthesisConfig{
			Primary:     "claude",
			Secondary:   "openai",
			Temperature: 0.2,
			MaxTokens:   4096,
			Timeout:     90 * time.Second,
			MaxAttempts: 3,
			MinDelay:    time.Second,
			MaxDelay:    10 * time.Second,
		},
		Providers: map[string]ProviderSettings{
			"claude": {Model: "claude-sonnet-4-5-20250929"},
			"openai": {Model: "gpt-4o"},
			"grok":   {Model: "grok-3-fast"},
			"gemini": {Model: "gemini-2.5-flash"},
			"ollama": {Endpoint: "http://localhost:11434"},
		},
	}
}
