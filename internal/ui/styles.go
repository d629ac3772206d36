package ui

import "github.com/charmbracelet/lipgloss"

// Colors used in terminal output.
var (
	colorPrimary   = lipgloss.Color("62")  // Purple
	colorSecondary = lipgloss.Color("241") // Gray
	colorMuted     = lipgloss.Color("240") // Darker gray
	colorHighlight = lipgloss.Color("212") // Pink
	colorSuccess   = lipgloss.Color("78")  // Green
	colorWarning   = lipgloss.Color("214") // Orange
	colorDanger    = lipgloss.Color("196") // Red
)

// Title style for the report header.
var Title = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("255")).
	Background(colorPrimary).
	Padding(0, 1)

// IndexBadge style for the risk index next to the title.
var IndexBadge = lipgloss.NewStyle().
	Bold(true).
	Padding(0, 1).
	MarginLeft(1)

// Summary style for the overview paragraph.
var Summary = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	MarginTop(1).
	MarginBottom(1)

// RiskName style for each risk heading.
var RiskName = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorHighlight)

// Region style for the region tag after a risk name.
var Region = lipgloss.NewStyle().
	Foreground(colorPrimary).
	Background(lipgloss.Color("236")).
	Padding(0, 1).
	MarginLeft(1)

// Body style for risk descriptions.
var Body = lipgloss.NewStyle().
	Foreground(lipgloss.Color("252")).
	PaddingLeft(2)

// Detail style for market impact and source lines.
var Detail = lipgloss.NewStyle().
	Foreground(colorSecondary).
	PaddingLeft(2)

// Footer style for provenance.
var Footer = lipgloss.NewStyle().
	Foreground(colorMuted).
	MarginTop(1)

// StatusOK style for a completed run.
var StatusOK = lipgloss.NewStyle().
	Foreground(colorSuccess).
	Bold(true)

// StatusBusy style for a processing run.
var StatusBusy = lipgloss.NewStyle().
	Foreground(colorWarning).
	Bold(true)

// ErrorStyle for failed runs.
var ErrorStyle = lipgloss.NewStyle().
	Foreground(colorDanger).
	Bold(true)
