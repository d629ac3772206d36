package model

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// ImpactLevel is an ordinal severity. Higher values sort first.
type ImpactLevel int

const (
	ImpactLow ImpactLevel = iota + 1
	ImpactMedium
	ImpactHigh
	ImpactSevere
)

func (l ImpactLevel) String() string {
	switch l {
	case ImpactLow:
		return "Low"
	case ImpactMedium:
		return "Medium"
	case ImpactHigh:
		return "High"
	case ImpactSevere:
		return "Severe"
	default:
		return "Unknown"
	}
}

// ParseImpactLevel accepts the level names case-insensitively.
// "critical" and "extreme" map to Severe, "moderate" to Medium.
func ParseImpactLevel(s string) (ImpactLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low", "minor":
		return ImpactLow, nil
	case "medium", "moderate":
		return ImpactMedium, nil
	case "high", "major":
		return ImpactHigh, nil
	case "severe", "critical", "extreme":
		return ImpactSevere, nil
	}
	return 0, fmt.Errorf("unknown impact level %q", s)
}

func (l ImpactLevel) MarshalJSON() ([]byte, error) {
	if l < ImpactLow || l > ImpactSevere {
		return nil, fmt.Errorf("invalid impact level %d", int(l))
	}
	return json.Marshal(l.String())
}

func (l *ImpactLevel) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("impact level must be a string: %w", err)
	}
	parsed, err := ParseImpactLevel(s)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// Risk is a synthesized, report-ready item.
type Risk struct {
	Name         string      `json:"name"`
	Description  string      `json:"description"`
	Region       string      `json:"region"`
	ImpactLevel  ImpactLevel `json:"impactLevel"`
	MarketImpact string      `json:"marketImpact"`
	Source       string      `json:"source"`
	SourceURL    string      `json:"sourceUrl"`
	LastUpdated  string      `json:"lastUpdated"`
}

// Meta records how a report was produced.
type Meta struct {
	Provider     string `json:"provider"`
	Model        string `json:"model,omitempty"`
	UsedFallback bool   `json:"usedFallback"`
	Attempts     int    `json:"attempts,omitempty"`
	RunID        string `json:"runId,omitempty"`
}

// RiskReport is the synthesis output, created at most once per calendar day.
type RiskReport struct {
	Summary               string  `json:"summary"`
	GeopoliticalRiskIndex float64 `json:"geopoliticalRiskIndex"`
	Risks                 []Risk  `json:"risks"`
	Meta                  Meta    `json:"meta"`
	LastUpdated           string  `json:"lastUpdated"` // YYYY-MM-DD
}

// DayFormat is the layout used for report dates and archive keys.
const DayFormat = "2006-01-02"

// Day formats t as a calendar date in t's location.
func Day(t time.Time) string {
	return t.Format(DayFormat)
}

// timestampLayouts are tried in order when reading Risk.LastUpdated.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	DayFormat,
	"January 2, 2006",
	"Jan 2, 2006",
	time.RFC1123Z,
	time.RFC1123,
}

// ParseTimestamp parses the loose timestamp formats models and feeds emit.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// SortRisks orders risks by impact level descending, then by LastUpdated
// descending. Unparsable timestamps sort after parsable ones within a level.
// The sort is stable so equal keys keep their input order.
func SortRisks(risks []Risk) {
	type keyed struct {
		risk Risk
		at   time.Time
	}
	ks := make([]keyed, len(risks))
	for i, r := range risks {
		at, _ := ParseTimestamp(r.LastUpdated)
		ks[i] = keyed{risk: r, at: at}
	}
	sort.SliceStable(ks, func(i, j int) bool {
		if ks[i].risk.ImpactLevel != ks[j].risk.ImpactLevel {
			return ks[i].risk.ImpactLevel > ks[j].risk.ImpactLevel
		}
		return ks[i].at.After(ks[j].at)
	})
	for i := range ks {
		risks[i] = ks[i].risk
	}
}
