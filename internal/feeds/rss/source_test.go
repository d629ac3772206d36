package rss

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/abelbrown/georisk/internal/model"
)

const testFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Test Feed</title>
    <item>
      <title>Sanctions widen on energy exports</title>
      <link>http://example.com/article1</link>
      <description>&lt;p&gt;Officials announced new measures.&lt;/p&gt;</description>
      <pubDate>Mon, 12 Oct 2026 12:00:00 GMT</pubDate>
    </item>
    <item>
      <title>Article without a date</title>
      <link>http://example.com/article2</link>
      <description>Second article</description>
    </item>
  </channel>
</rss>`

func TestSourceFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(testFeed))
	}))
	defer server.Close()

	src := New("Test Feed", server.URL, nil, "")
	if src.Channel() != model.ChannelFeed {
		t.Errorf("expected feed channel, got %s", src.Channel())
	}

	records, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	first := records[0]
	if first.Title != "Sanctions widen on energy exports" {
		t.Errorf("unexpected title: %s", first.Title)
	}
	if first.Link != "http://example.com/article1" {
		t.Errorf("unexpected link: %s", first.Link)
	}
	if first.Published == nil || first.Published.Day() != 12 {
		t.Errorf("expected parsed publish date, got %v", first.Published)
	}
	if first.Source != "Test Feed" || first.Channel != model.ChannelFeed {
		t.Errorf("unexpected source tagging: %+v", first)
	}

	if records[1].Published != nil {
		t.Errorf("expected nil published for undated item, got %v", records[1].Published)
	}
}

func TestSourceFetch404(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	if _, err := New("Test", server.URL, nil, "").Fetch(context.Background()); err == nil {
		t.Error("expected error for 404 response")
	}
}

func TestSourceFetchInvalidXML(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not valid xml"))
	}))
	defer server.Close()

	if _, err := New("Test", server.URL, nil, "").Fetch(context.Background()); err == nil {
		t.Error("expected error for invalid XML")
	}
}
