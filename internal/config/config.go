// Package config holds the explicit configuration passed into the pipeline.
// Nothing below internal/config reads the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/abelbrown/georisk/internal/model"
)

// Config is the full application configuration.
type Config struct {
	Log       LogConfig                   `yaml:"log"`
	Store     StoreConfig                 `yaml:"store"`
	Server    ServerConfig                `yaml:"server"`
	Sources   SourcesConfig               `yaml:"sources"`
	Fetch     FetchConfig                 `yaml:"fetch"`
	Filter    FilterConfig                `yaml:"filter"`
	Dedup     DedupConfig                 `yaml:"dedup"`
	Ranking   RankingConfig               `yaml:"ranking"`
	Synthesis SynthesisConfig             `yaml:"synthesis"`
	Providers map[string]ProviderSettings `yaml:"providers"`
}

type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	JSON  bool   `yaml:"json"`
}

// StoreConfig selects the Report Store backend.
type StoreConfig struct {
	Driver string `yaml:"driver"` // file, sqlite, postgres, redis, memory
	DSN    string `yaml:"dsn"`    // directory, database path/DSN or redis URL
	Prefix string `yaml:"prefix"` // key prefix for shared backends (redis)
}

type ServerConfig struct {
	Addr         string   `yaml:"addr"`
	AllowOrigins []string `yaml:"allow_origins"` // CORS; empty allows none
}

// FeedSource is one RSS/Atom feed.
type FeedSource struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// SearchConfig configures the web search channel (Google Custom Search JSON API).
type SearchConfig struct {
	APIKey          string   `yaml:"api_key"`
	EngineID        string   `yaml:"engine_id"`
	Endpoint        string   `yaml:"endpoint"`
	Queries         []string `yaml:"queries"`
	ResultsPerQuery int      `yaml:"results_per_query"`
	RatePerSecond   float64  `yaml:"rate_per_second"`
}

// CuratedSource is an author or columnist listing page scraped with CSS selectors.
type CuratedSource struct {
	Name    string `yaml:"name"`
	URL     string `yaml:"url"`
	Item    string `yaml:"item"`    // selector for one article block
	Title   string `yaml:"title"`   // selector within the block
	Link    string `yaml:"link"`    // selector whose href is the article link
	Date    string `yaml:"date"`    // selector for the date element
	Summary string `yaml:"summary"` // selector for the teaser text
}

// MarketConfig configures the market news channel (AlphaVantage NEWS_SENTIMENT).
type MarketConfig struct {
	APIKey   string   `yaml:"api_key"`
	Endpoint string   `yaml:"endpoint"`
	Topics   []string `yaml:"topics"`
	Limit    int      `yaml:"limit"`
}

type SourcesConfig struct {
	Feeds   []FeedSource    `yaml:"feeds"`
	Search  SearchConfig    `yaml:"search"`
	Curated []CuratedSource `yaml:"curated"`
	Market  MarketConfig    `yaml:"market"`
}

type FetchConfig struct {
	Timeout       time.Duration `yaml:"timeout"`        // per connector
	MaxConcurrent int           `yaml:"max_concurrent"` // worker limit
	UserAgent     string        `yaml:"user_agent"`
}

type FilterConfig struct {
	MaxAgeHours          map[model.Channel]int `yaml:"max_age_hours"`
	DefaultMaxAgeHours   int                   `yaml:"default_max_age_hours"`
	Keywords             []string              `yaml:"keywords"`
	MinDescriptionLength int                   `yaml:"min_description_length"`
	MinTitleLength       int                   `yaml:"min_title_length"`
}

type DedupConfig struct {
	Threshold float64 `yaml:"threshold"`
}

type RankingConfig struct {
	SourceLimits       map[model.Channel]int `yaml:"source_limits"`
	DefaultSourceLimit int                   `yaml:"default_source_limit"`
	MaxTotalEvents     int                   `yaml:"max_total_events"`
	PremiumSources     []string              `yaml:"premium_sources"`
	HighImpactKeywords []string              `yaml:"high_impact_keywords"`
}

type SynthesisConfig struct {
	Primary     string        `yaml:"primary"`
	Secondary   string        `yaml:"secondary"`
	Temperature float64       `yaml:"temperature"`
	MaxTokens   int           `yaml:"max_tokens"`
	Timeout     time.Duration `yaml:"timeout"` // per provider call
	MaxAttempts int           `yaml:"max_attempts"`
	MinDelay    time.Duration `yaml:"min_delay"`
	MaxDelay    time.Duration `yaml:"max_delay"`
}

// ProviderSettings for a single language-model provider.
type ProviderSettings struct {
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
	Endpoint string `yaml:"endpoint"` // optional override, mostly for tests and proxies
}

// Load reads a YAML (or JSON, which YAML accepts) file over the defaults.
// An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadDotEnv loads KEY=value pairs from the given files into the process
// environment without overriding variables that are already set. Missing
// files are ignored.
func LoadDotEnv(paths ...string) error {
	var existing []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}

// ApplyEnv fills credentials and a few operational knobs from the environment.
func (c *Config) ApplyEnv() {
	if c.Providers == nil {
		c.Providers = map[string]ProviderSettings{}
	}
	setKey := func(provider string, envs ...string) {
		for _, env := range envs {
			if v := strings.TrimSpace(os.Getenv(env)); v != "" {
				p := c.Providers[provider]
				p.APIKey = v
				c.Providers[provider] = p
				return
			}
		}
	}
	setKey("claude", "ANTHROPIC_API_KEY", "CLAUDE_API_KEY")
	setKey("openai", "OPENAI_API_KEY")
	setKey("grok", "XAI_API_KEY")
	setKey("gemini", "GEMINI_API_KEY", "GOOGLE_API_KEY")

	if v := os.Getenv("GOOGLE_CSE_KEY"); v != "" {
		c.Sources.Search.APIKey = v
	}
	if v := os.Getenv("GOOGLE_CSE_ID"); v != "" {
		c.Sources.Search.EngineID = v
	}
	if v := os.Getenv("ALPHAVANTAGE_API_KEY"); v != "" {
		c.Sources.Market.APIKey = v
	}
	if v := os.Getenv("GEORISK_STORE"); v != "" {
		c.Store.Driver = v
	}
	if v := os.Getenv("GEORISK_DSN"); v != "" {
		c.Store.DSN = v
	}
	if v := os.Getenv("GEORISK_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("GEORISK_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("FRONTEND_URL"); v != "" {
		c.Server.AllowOrigins = append(c.Server.AllowOrigins, v)
	}
}

// Validate rejects configurations the pipeline cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Dedup.Threshold <= 0 || c.Dedup.Threshold > 1 {
		errs = append(errs, fmt.Errorf("dedup.threshold must be in (0,1], got %v", c.Dedup.Threshold))
	}
	if c.Ranking.MaxTotalEvents <= 0 {
		errs = append(errs, errors.New("ranking.max_total_events must be positive"))
	}
	if c.Ranking.DefaultSourceLimit <= 0 {
		errs = append(errs, errors.New("ranking.default_source_limit must be positive"))
	}
	for ch, limit := range c.Ranking.SourceLimits {
		if limit <= 0 {
			errs = append(errs, fmt.Errorf("ranking.source_limits[%s] must be positive", ch))
		}
	}
	if c.Filter.DefaultMaxAgeHours <= 0 {
		errs = append(errs, errors.New("filter.default_max_age_hours must be positive"))
	}
	if len(c.Filter.Keywords) == 0 {
		errs = append(errs, errors.New("filter.keywords must not be empty"))
	}
	if c.Synthesis.MaxAttempts <= 0 {
		errs = append(errs, errors.New("synthesis.max_attempts must be positive"))
	}
	if c.Synthesis.MinDelay < 0 || c.Synthesis.MaxDelay < c.Synthesis.MinDelay {
		errs = append(errs, fmt.Errorf("synthesis delays invalid: min=%s max=%s", c.Synthesis.MinDelay, c.Synthesis.MaxDelay))
	}
	if c.Synthesis.Primary == "" {
		errs = append(errs, errors.New("synthesis.primary must name a provider"))
	}
	if c.Synthesis.Primary == c.Synthesis.Secondary {
		errs = append(errs, errors.New("synthesis.primary and synthesis.secondary must differ"))
	}
	if c.Fetch.Timeout <= 0 || c.Synthesis.Timeout <= 0 {
		errs = append(errs, errors.New("fetch.timeout and synthesis.timeout must be positive"))
	}
	return errors.Join(errs...)
}

// Window returns the recency window for a channel.
func (f FilterConfig) Window(ch model.Channel) time.Duration {
	if h, ok := f.MaxAgeHours[ch]; ok && h > 0 {
		return time.Duration(h) * time.Hour
	}
	return time.Duration(f.DefaultMaxAgeHours) * time.Hour
}
