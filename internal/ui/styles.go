// Package ui holds the lipgloss styles shared by the TUI and the table output
// of the CLI commands.
package ui

import "github.com/charmbracelet/lipgloss"

// Palette. Adaptive colors keep the transcript readable on light terminals.
var (
	Accent  = lipgloss.AdaptiveColor{Light: "#0B6E99", Dark: "#5FD7FF"}
	Self    = lipgloss.AdaptiveColor{Light: "#2E7D32", Dark: "#87D787"}
	Warn    = lipgloss.AdaptiveColor{Light: "#B26A00", Dark: "#FFD75F"}
	Alert   = lipgloss.AdaptiveColor{Light: "#C62828", Dark: "#FF5F5F"}
	Chat    = lipgloss.AdaptiveColor{Light: "#8E24AA", Dark: "#D787FF"}
	Muted   = lipgloss.AdaptiveColor{Light: "#757575", Dark: "#808080"}
	Faint   = lipgloss.AdaptiveColor{Light: "#BDBDBD", Dark: "#4E4E4E"}
	Primary = lipgloss.AdaptiveColor{Light: "#212121", Dark: "#EEEEEE"}
)

func fg(c lipgloss.TerminalColor) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c)
}

func bold(c lipgloss.TerminalColor) lipgloss.Style {
	return fg(c).Bold(true)
}

// Header and status line.
var (
	TitleStyle        = bold(Accent)
	StatusStyle       = fg(Muted)
	RecordingDotStyle = bold(Alert)
	IdleDotStyle      = fg(Muted)
	SpinnerStyle      = fg(Chat)

	// DisabledSourceStyle marks a capture source that stopped after a failure.
	DisabledSourceStyle = fg(Alert).Italic(true)
)

// Panels.
var (
	PanelTitleStyle       = bold(Primary)
	PanelTitleActiveStyle = bold(Accent).Underline(true)
	SelectedStyle         = bold(Accent)
	SectionTitleStyle     = fg(Warn)
	DividerStyle          = fg(Faint)
	DimStyle              = fg(Muted)
	LiveBadgeStyle        = bold(Self)
	ScrollBadgeStyle      = bold(Warn)
)

// Transcript lines.
var (
	SpeakerStyle     = bold(Accent)
	SelfSpeakerStyle = bold(Self)
	ChatLabelStyle   = fg(Chat)
	TimestampStyle   = fg(Muted)
	PartialTextStyle = fg(Warn).Italic(true)
)

// Errors and key help.
var (
	ErrorStyle      = bold(Alert)
	ErrorTextStyle  = fg(Alert)
	FooterKeyStyle  = bold(Warn)
	FooterDescStyle = fg(Muted)
)
