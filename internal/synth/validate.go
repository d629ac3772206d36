package synth

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/abelbrown/georisk/internal/model"
)

const (
	minOverviewChars    = 20  // below this the overview is rejected
	shortOverviewChars  = 200 // below this a warning is logged
	minDescriptionChars = 20
)

// Validate checks a parsed payload and converts it into a report. Blocking
// problems are returned as *ValidationError; warnings come back either way.
// day fills risk timestamps the model left empty.
func Validate(p *Payload, day time.Time) (model.RiskReport, []string, error) {
	var errs, warns []string

	summary := strings.TrimSpace(p.Overview)
	if summary == "" {
		summary = strings.TrimSpace(p.Summary)
	}
	switch n := utf8.RuneCountInString(summary); {
	case n == 0:
		errs = append(errs, "missing overview")
	case n < minOverviewChars:
		errs = append(errs, fmt.Sprintf("overview too short (%d chars)", n))
	case n < shortOverviewChars:
		warns = append(warns, fmt.Sprintf("short overview (%d chars)", n))
	}

	if p.Risks == nil {
		errs = append(errs, "missing risks array")
	} else if len(p.Risks) == 0 {
		errs = append(errs, "risks array is empty")
	}

	if strings.TrimSpace(p.LastUpdated) == "" {
		errs = append(errs, "missing lastUpdated")
	} else if _, ok := model.ParseTimestamp(p.LastUpdated); !ok {
		errs = append(errs, fmt.Sprintf("lastUpdated %q is not a date", p.LastUpdated))
	}

	risks := make([]model.Risk, 0, len(p.Risks))
	for i, rp := range p.Risks {
		r, rerrs, rwarns := convertRisk(rp, day)
		for _, e := range rerrs {
			errs = append(errs, fmt.Sprintf("risk[%d]: %s", i, e))
		}
		for _, w := range rwarns {
			warns = append(warns, fmt.Sprintf("risk[%d]: %s", i, w))
		}
		risks = append(risks, r)
	}

	if len(errs) > 0 {
		return model.RiskReport{}, warns, &ValidationError{Errors: errs, Warnings: warns}
	}

	index, ok := parseIndex(string(p.Index))
	if !ok {
		index = IndexFromRisks(risks)
		warns = append(warns, fmt.Sprintf("missing or invalid geopoliticalRiskIndex, derived %.1f from impact levels", index))
	}

	return model.RiskReport{
		Summary:               summary,
		GeopoliticalRiskIndex: clampIndex(index),
		Risks:                 risks,
		LastUpdated:           model.Day(day),
	}, warns, nil
}

func convertRisk(rp RiskPayload, day time.Time) (model.Risk, []string, []string) {
	var errs, warns []string

	name := firstNonEmpty(rp.Name, rp.Title)
	if name == "" {
		errs = append(errs, "missing name")
	}
	desc := firstNonEmpty(rp.Description, rp.Analysis)
	if utf8.RuneCountInString(desc) < minDescriptionChars {
		errs = append(errs, "description missing or too short")
	}

	level, err := model.ParseImpactLevel(string(rp.ImpactLevel))
	if err != nil {
		level = model.ImpactMedium
		warns = append(warns, fmt.Sprintf("impactLevel %q defaulted to Medium", string(rp.ImpactLevel)))
	}

	link := firstNonEmpty(rp.SourceURL, rp.URL)
	if link != "" {
		if u, err := url.Parse(link); err != nil || u.Host == "" {
			warns = append(warns, fmt.Sprintf("sourceUrl %q is not absolute", link))
		}
	}
	if strings.TrimSpace(rp.Region) == "" {
		warns = append(warns, "missing region")
	}

	updated := strings.TrimSpace(rp.LastUpdated)
	if _, ok := model.ParseTimestamp(updated); !ok {
		updated = model.Day(day)
	}

	return model.Risk{
		Name:         name,
		Description:  desc,
		Region:       strings.TrimSpace(rp.Region),
		ImpactLevel:  level,
		MarketImpact: strings.TrimSpace(rp.MarketImpact),
		Source:       strings.TrimSpace(rp.Source),
		SourceURL:    link,
		LastUpdated:  updated,
	}, errs, warns
}

func parseIndex(s string) (float64, bool) {
	s = strings.TrimSuffix(strings.TrimSpace(s), "%")
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func clampIndex(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}

// IndexFromRisks derives an index from impact levels: the mean level
// scaled so all-Severe is 100, rounded to one decimal.
func IndexFromRisks(risks []model.Risk) float64 {
	if len(risks) == 0 {
		return 0
	}
	var sum float64
	for _, r := range risks {
		sum += float64(r.ImpactLevel)
	}
	mean := sum / float64(len(risks))
	return math.Round(mean/float64(model.ImpactSevere)*1000) / 10
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
