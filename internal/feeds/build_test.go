package feeds

import (
	"testing"

	"github.com/abelbrown/georisk/internal/config"
	"github.com/abelbrown/georisk/internal/model"
)

func TestBuildSkipsSourcesWithoutCredentials(t *testing.T) {
	cfg := config.Default()
	cfg.Sources.Feeds = []config.FeedSource{
		{Name: "A", URL: "https://a.example.com/rss"},
		{Name: "NoURL"},
	}
	cfg.Sources.Curated = []config.CuratedSource{
		{Name: "Desk", URL: "https://desk.example.com", Item: "article"},
		{Name: "Broken", URL: "https://broken.example.com"},
	}
	cfg.Sources.Search.APIKey = ""
	cfg.Sources.Market.APIKey = ""

	sources := Build(cfg, nil)
	if len(sources) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(sources))
	}
	if sources[0].Channel() != model.ChannelFeed || sources[0].Name() != "A" {
		t.Errorf("unexpected first source %s/%s", sources[0].Channel(), sources[0].Name())
	}
	if sources[1].Channel() != model.ChannelCurated {
		t.Errorf("expected curated second, got %s", sources[1].Channel())
	}
}

func TestBuildWithCredentials(t *testing.T) {
	cfg := config.Default()
	cfg.Sources.Feeds = nil
	cfg.Sources.Curated = nil
	cfg.Sources.Search.APIKey = "k"
	cfg.Sources.Search.EngineID = "cx"
	cfg.Sources.Market.APIKey = "m"

	sources := Build(cfg, nil)
	if len(sources) != 2 {
		t.Fatalf("expected search and market sources, got %d", len(sources))
	}
	if sources[0].Channel() != model.ChannelSearch || sources[1].Channel() != model.ChannelMarket {
		t.Errorf("unexpected order: %s, %s", sources[0].Channel(), sources[1].Channel())
	}
}
