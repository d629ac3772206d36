package dedup

import (
	"testing"
	"time"

	"github.com/abelbrown/georisk/internal/model"
)

var base = time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

func ev(title, source string, age time.Duration) model.Event {
	return model.Event{
		Title:         title,
		Link:          "https://example.com/" + NormalizeTitle(title) + "/" + source,
		Source:        source,
		PublishedDate: base.Add(-age),
	}
}

func titles(events []model.Event) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.Title
	}
	return out
}

func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Fed Hikes Rates by 50bps", "fed raise rate 50 bp"},
		{"Federal Reserve Raises Rates 50 Basis Points", "fed raise rate 50 bp"},
		{"  BREAKING:   Oil  prices   SURGE!! ", "breaking oil price surge"},
		{"Élysée convoque l'ambassadeur", "elysee convoque l ambassadeur"},
		{"U.S. lifts tariffs on steel", "us raise tariff steel"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeTitle(tt.in); got != tt.want {
			t.Errorf("NormalizeTitle(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"substring", "oil price surge", "oil price surge middle east", 0.9},
		{"identical", "fed raise rate", "fed raise rate", 0.9},
		{"jaccard half", "a b c", "b c d e", 0.4},
		{"disjoint", "fed raise rate", "oil price surge middle east", 0},
		{"empty", "", "anything", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Similarity(tt.a, tt.b); got != tt.want {
				t.Errorf("Similarity(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestDedupKeepsExactlyOneOfSameStory(t *testing.T) {
	events := []model.Event{
		ev("Fed Hikes Rates by 50bps", "Wire A", time.Hour),
		ev("Federal Reserve Raises Rates 50 Basis Points", "Wire B", 2*time.Hour),
	}
	got := New(DefaultThreshold, nil).Dedup(events)
	if len(got) != 1 {
		t.Fatalf("expected exactly one event, got %v", titles(got))
	}
	if got[0].Title != "Fed Hikes Rates by 50bps" {
		t.Errorf("expected newest to win, got %q", got[0].Title)
	}
}

func TestDedupKeepsIndependentStories(t *testing.T) {
	events := []model.Event{
		ev("Fed Hikes Rates", "Wire A", time.Hour),
		ev("Oil Prices Surge in Middle East", "Wire B", 2*time.Hour),
	}
	got := New(DefaultThreshold, nil).Dedup(events)
	if len(got) != 2 {
		t.Errorf("expected both events kept, got %v", titles(got))
	}
}

func TestDedupPremiumWins(t *testing.T) {
	events := []model.Event{
		ev("Oil Prices Surge in Middle East", "Some Blog", time.Minute),
		ev("Oil prices surge in Middle East", "Reuters", 3*time.Hour),
	}
	got := New(DefaultThreshold, []string{"Reuters"}).Dedup(events)
	if len(got) != 1 || got[0].Source != "Reuters" {
		t.Errorf("expected premium copy to survive, got %+v", got)
	}
}

func TestDedupURLPrePass(t *testing.T) {
	a := ev("Strait closure disrupts shipping", "Wire A", time.Hour)
	b := ev("Completely different headline text", "Wire B", 2*time.Hour)
	b.Link = a.Link
	got := New(DefaultThreshold, nil).Dedup([]model.Event{a, b})
	if len(got) != 1 || got[0].Title != a.Title {
		t.Errorf("expected repeated link dropped, got %v", titles(got))
	}
}

func TestDedupThresholdIsStrict(t *testing.T) {
	events := []model.Event{
		ev("Oil price surge", "A", time.Hour),
		ev("Oil price surge middle east", "B", 2*time.Hour),
	}
	if got := New(0.9, nil).Dedup(events); len(got) != 2 {
		t.Errorf("similarity equal to threshold must not dedup, got %v", titles(got))
	}
	if got := New(0.89, nil).Dedup(events); len(got) != 1 {
		t.Errorf("similarity above threshold must dedup, got %v", titles(got))
	}
}

func TestDedupComparesAgainstAcceptedOnly(t *testing.T) {
	// C duplicates A and is dropped. B duplicates C but not A, so greedy
	// leader clustering keeps it.
	events := []model.Event{
		ev("alpha beta gamma delta", "A", time.Hour),
		ev("alpha beta gamma delta epsilon", "C", 2*time.Hour),
		ev("beta gamma delta epsilon zeta", "B", 3*time.Hour),
	}
	got := New(DefaultThreshold, nil).Dedup(events)
	want := []string{"alpha beta gamma delta", "beta gamma delta epsilon zeta"}
	if len(got) != 2 || got[0].Title != want[0] || got[1].Title != want[1] {
		t.Errorf("got %v, want %v", titles(got), want)
	}
}

func TestDedupDeterministic(t *testing.T) {
	events := []model.Event{
		ev("Tariffs rise on steel imports", "A", time.Hour),
		ev("Steel import tariffs rise", "B", time.Hour),
		ev("Election results contested", "C", time.Hour),
	}
	first := titles(New(DefaultThreshold, nil).Dedup(events))
	for i := 0; i < 10; i++ {
		again := titles(New(DefaultThreshold, nil).Dedup(events))
		if len(again) != len(first) {
			t.Fatalf("run %d differs: %v vs %v", i, again, first)
		}
		for j := range again {
			if again[j] != first[j] {
				t.Fatalf("run %d differs: %v vs %v", i, again, first)
			}
		}
	}
}

func TestPriorityStable(t *testing.T) {
	events := []model.Event{
		ev("one", "Blog", time.Hour),
		ev("two", "Reuters", 5*time.Hour),
		ev("three", "Blog", time.Hour),
		ev("four", "Blog", 30*time.Minute),
	}
	got := titles(Priority(events, []string{"reuters"}))
	want := []string{"two", "four", "one", "three"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
	if events[0].Title != "one" {
		t.Error("Priority must not reorder its input")
	}
}
