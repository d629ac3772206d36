// Package ui renders reports and run status for the terminal.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/abelbrown/georisk/internal/model"
)

// levelColors maps impact levels to badge colors.
var levelColors = map[model.ImpactLevel]lipgloss.Color{
	model.ImpactLow:    colorSuccess,
	model.ImpactMedium: colorSecondary,
	model.ImpactHigh:   colorWarning,
	model.ImpactSevere: colorDanger,
}

// levelBadge renders "[HIGH]" style markers.
func levelBadge(l model.ImpactLevel) string {
	c, ok := levelColors[l]
	if !ok {
		c = colorMuted
	}
	return lipgloss.NewStyle().Foreground(c).Bold(true).Render("[" + strings.ToUpper(l.String()) + "]")
}

// indexColor bands the 0-100 index.
func indexColor(v float64) lipgloss.Color {
	switch {
	case v >= 75:
		return colorDanger
	case v >= 50:
		return colorWarning
	case v >= 25:
		return colorSecondary
	default:
		return colorSuccess
	}
}

// RenderReport formats a report for a terminal of the given width.
// A width of zero or less disables wrapping.
func RenderReport(r model.RiskReport, width int) string {
	var b strings.Builder

	header := Title.Render("Geopolitical Risk Report " + r.LastUpdated)
	badge := IndexBadge.Foreground(indexColor(r.GeopoliticalRiskIndex)).
		Render(fmt.Sprintf("index %.0f/100", r.GeopoliticalRiskIndex))
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, header, badge))
	b.WriteString("\n")

	summary := Summary
	body := Body
	detail := Detail
	if width > 0 {
		summary = summary.Width(width)
		body = body.Width(width)
		detail = detail.Width(width)
	}
	b.WriteString(summary.Render(r.Summary))
	b.WriteString("\n")

	for i, risk := range r.Risks {
		line := fmt.Sprintf("%d. %s %s", i+1, levelBadge(risk.ImpactLevel), RiskName.Render(risk.Name))
		if risk.Region != "" {
			line += Region.Render(risk.Region)
		}
		b.WriteString(line + "\n")
		b.WriteString(body.Render(risk.Description) + "\n")
		if risk.MarketImpact != "" {
			b.WriteString(detail.Render("Markets: "+risk.MarketImpact) + "\n")
		}
		if src := sourceLine(risk); src != "" {
			b.WriteString(detail.Render(src) + "\n")
		}
		b.WriteString("\n")
	}

	foot := fmt.Sprintf("generated by %s", r.Meta.Provider)
	if r.Meta.Model != "" {
		foot += " (" + r.Meta.Model + ")"
	}
	if r.Meta.UsedFallback {
		foot += " after failover"
	}
	b.WriteString(Footer.Render(foot))
	b.WriteString("\n")
	return b.String()
}

func sourceLine(r model.Risk) string {
	switch {
	case r.Source != "" && r.SourceURL != "":
		return r.Source + " " + r.SourceURL
	case r.SourceURL != "":
		return r.SourceURL
	default:
		return r.Source
	}
}

// RenderStatus formats the status object as one line.
func RenderStatus(s model.Status, now time.Time) string {
	var state string
	switch s.Status {
	case model.StateCompleted:
		state = StatusOK.Render(string(s.Status))
	case model.StateProcessing:
		state = StatusBusy.Render(string(s.Status))
	default:
		state = ErrorStyle.Render(string(s.Status))
	}
	ago := now.Sub(s.Timestamp).Round(time.Second)
	line := fmt.Sprintf("%s %s (%s ago)", state, s.Message, ago)
	if s.RunID != "" {
		line += Footer.UnsetMarginTop().Render(" run " + s.RunID)
	}
	return line
}
