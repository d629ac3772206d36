package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/abelbrown/georisk/internal/brain"
	"github.com/abelbrown/georisk/internal/config"
	"github.com/abelbrown/georisk/internal/feeds"
	"github.com/abelbrown/georisk/internal/httpclient"
	"github.com/abelbrown/georisk/internal/logging"
	"github.com/abelbrown/georisk/internal/metrics"
	"github.com/abelbrown/georisk/internal/pipeline"
	"github.com/abelbrown/georisk/internal/store"
)

// commonFlags registers -config and -env on fs.
type commonFlags struct {
	config *string
	env    *string
	level  *string
}

func addCommonFlags(fs *flag.FlagSet) commonFlags {
	return commonFlags{
		config: fs.String("config", "", "YAML config file"),
		env:    fs.String("env", ".env", ".env file to load"),
		level:  fs.String("log-level", "", "override log level (debug, info, warn, error)"),
	}
}

// loadConfig builds the configuration or fatals. Logging is initialized
// to stderr so stdout stays clean for JSON.
func loadConfig(f commonFlags) *config.Config {
	if err := config.LoadDotEnv(*f.env); err != nil {
		log.Fatalf("failed to load %s: %v", *f.env, err)
	}
	cfg, err := config.Load(*f.config)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg.ApplyEnv()
	if *f.level != "" {
		cfg.Log.Level = *f.level
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}
	logging.Init(os.Stderr, cfg.Log.Level, cfg.Log.JSON)
	return cfg
}

// openStore opens the configured Report Store or fatals.
func openStore(cfg *config.Config) store.Store {
	st, err := store.Open(cfg.Store.Driver, cfg.Store.DSN, cfg.Store.Prefix)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	return st
}

// buildPipeline wires connectors, providers and stages.
func buildPipeline(cfg *config.Config, st store.Store, m *metrics.Metrics) *pipeline.Pipeline {
	primary, secondary, err := brain.FromConfig(cfg)
	if err != nil {
		log.Fatalf("failed to configure providers: %v", err)
	}
	sources := feeds.Build(cfg, httpclient.New(cfg.Fetch.Timeout))
	if len(sources) == 0 {
		fmt.Fprintln(os.Stderr, "warning: no connectors configured")
	}
	return pipeline.New(cfg, st, sources, primary, secondary, m)
}
