package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/meetmind/meetmind/internal/ui"
)

// chromeLines is the height taken by everything except the two panels:
// title, status, two rules, error line, footer, and slack for wrapping.
const chromeLines = 8

type keyHelp struct{ key, desc string }

func (m Model) transcriptVisibleLines() int {
	if m.height == 0 {
		return 20
	}
	return max(5, m.height-chromeLines)
}

func (m Model) maxTranscriptScroll() int {
	lines := len(m.entries)
	if m.partialText != "" {
		lines++
	}
	return max(0, lines-m.transcriptVisibleLines())
}

func (m Model) meetingPanelWidth() int {
	if m.width == 0 {
		return 30
	}
	return max(20, m.width*35/100)
}

func (m Model) transcriptPanelWidth() int {
	if m.width == 0 {
		return 60
	}
	return max(30, m.width-m.meetingPanelWidth()-1)
}

// View renders the full TUI.
func (m Model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	rule := ui.DividerStyle.Render(strings.Repeat("─", m.width))
	parts := []string{m.renderHeader(), m.renderStatusBar(), rule, m.renderMainContent(), rule}
	if m.errorMessage != "" {
		parts = append(parts, ui.ErrorStyle.Render("Error: ")+ui.ErrorTextStyle.Render(m.errorMessage))
	}
	parts = append(parts, m.renderFooter())
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) renderHeader() string {
	h := ui.TitleStyle.Render("MEETMIND")
	if m.title != "" {
		h += ui.DimStyle.Render(" · " + m.title)
	}
	return h
}

func (m Model) renderStatusBar() string {
	var b strings.Builder
	if m.recording {
		b.WriteString(ui.RecordingDotStyle.Render("● REC"))
	} else {
		b.WriteString(ui.IdleDotStyle.Render("○ IDLE"))
	}
	b.WriteString("  " + ui.StatusStyle.Render(m.statusText))
	if m.recording && m.meetingID != "" {
		b.WriteString(ui.DimStyle.Render("  #" + m.meetingID))
	}
	for _, src := range m.disabled {
		b.WriteString("  " + ui.DisabledSourceStyle.Render(src+" off"))
	}
	if m.anySummarizing() {
		b.WriteString("  " + ui.SpinnerStyle.Render("⟳ summarizing"))
	}
	return b.String()
}

// renderMainContent lays the two panels side by side with a vertical rule.
func (m Model) renderMainContent() string {
	h := m.transcriptVisibleLines()
	lw, rw := m.meetingPanelWidth(), m.transcriptPanelWidth()

	box := func(w int, lines []string) string {
		if len(lines) > h {
			lines = lines[:h]
		}
		return lipgloss.NewStyle().Width(w).MaxWidth(w).Height(h).Render(strings.Join(lines, "\n"))
	}
	sep := ui.DividerStyle.Render(strings.TrimSuffix(strings.Repeat("│\n", h), "\n"))

	return lipgloss.JoinHorizontal(lipgloss.Top,
		box(lw, m.meetingLines(lw)),
		sep,
		box(rw, m.transcriptLines(rw, h)),
	)
}

func (m Model) panelTitle(label string, focus PanelFocus) string {
	if m.focusedPanel == focus {
		return ui.PanelTitleActiveStyle.Render(label)
	}
	return ui.PanelTitleStyle.Render(label)
}

func (m Model) meetingLines(width int) []string {
	lines := []string{m.panelTitle(fmt.Sprintf("MEETINGS (%d)", len(m.meetings)), FocusMeetings)}

	if len(m.meetings) == 0 {
		return append(lines,
			ui.DimStyle.Render("  No saved meetings yet"),
			ui.DimStyle.Render("  Meetings appear when recording stops"))
	}

	textWidth := max(10, width-6)
	for i, mt := range m.meetings {
		marker := "▸"
		if mt.Expanded {
			marker = "▾"
		}
		name := mt.Title
		switch {
		case mt.Summarizing:
			name += " …"
		case mt.HasSummary():
			name += " ✓"
		}

		if i == m.selectedMeeting && m.focusedPanel == FocusMeetings {
			lines = append(lines, ui.SelectedStyle.Render("> "+marker+" "+name))
		} else {
			lines = append(lines, "  "+marker+" "+name)
		}
		if !mt.Expanded {
			continue
		}

		lines = append(lines, ui.DimStyle.Render("    "+mt.Date))
		if !mt.HasSummary() {
			lines = append(lines, ui.DimStyle.Render("    No summary. Press s"))
		}
		for _, sec := range mt.Sections {
			lines = append(lines, "    "+ui.SectionTitleStyle.Render(sec.Title))
			for _, wl := range wrapText(sec.Text, textWidth) {
				lines = append(lines, ui.DimStyle.Render("    "+wl))
			}
		}
	}
	return lines
}

func speakerLabel(e TranscriptEntry) string {
	switch {
	case e.Chat:
		return ui.ChatLabelStyle.Render("[CHAT] ") + ui.SpeakerStyle.Render(e.Speaker+": ")
	case e.Speaker == "You":
		return ui.SelfSpeakerStyle.Render(e.Speaker + ": ")
	default:
		return ui.SpeakerStyle.Render(e.Speaker + ": ")
	}
}

// entryLines renders one labelled entry, continuation lines indented.
func entryLines(label, text string, width int, style lipgloss.Style) []string {
	wrapped := wrapText(text, max(10, width-lipgloss.Width(label)))
	out := []string{label + style.Render(wrapped[0])}
	for _, wl := range wrapped[1:] {
		out = append(out, "  "+style.Render(wl))
	}
	return out
}

func (m Model) transcriptLines(width, height int) []string {
	badge := ui.LiveBadgeStyle.Render(" LIVE")
	if !m.transcriptLive {
		badge = ui.ScrollBadgeStyle.Render(" SCROLL")
	}
	lines := []string{m.panelTitle("TRANSCRIPT", FocusTranscript) + badge}

	switch {
	case !m.connected && m.reconnecting:
		return append(lines, "",
			ui.ErrorTextStyle.Render("  Daemon disconnected. Reconnecting..."),
			ui.DimStyle.Render("  Start with: meetmind daemon"))
	case !m.connected:
		return append(lines, ui.DimStyle.Render("  Connecting to meetmind daemon..."))
	case len(m.entries) == 0 && m.partialText == "":
		hint := "  Press Space to start a meeting"
		if m.recording {
			hint = "  Waiting for captions..."
		}
		return append(lines, "", ui.DimStyle.Render(hint))
	}

	textWidth := max(10, width-4)
	plain := lipgloss.NewStyle()
	var body []string
	for _, e := range m.entries {
		body = append(body, ui.TimestampStyle.Render(e.Timestamp))
		body = append(body, entryLines(speakerLabel(e), e.Text, textWidth, plain)...)
	}
	if m.partialText != "" {
		label := ui.PartialTextStyle.Render(m.partialSpeaker + ": ")
		body = append(body, entryLines(label, m.partialText+"▌", textWidth, ui.PartialTextStyle)...)
	}

	visible := height - 1
	start := m.transcriptScroll
	if m.transcriptLive {
		start = len(body) - visible
	}
	start = max(0, min(start, len(body)))
	end := min(start+visible, len(body))
	for _, l := range body[start:end] {
		lines = append(lines, "  "+l)
	}
	return lines
}

func (m Model) renderFooter() string {
	var keys []keyHelp
	if m.connected {
		action := "Start"
		if m.recording {
			action = "Stop"
		}
		keys = append(keys,
			keyHelp{"Space", action},
			keyHelp{"Tab", "Focus"},
			keyHelp{"j/k", "Nav"},
			keyHelp{"Enter", "Expand"},
			keyHelp{"s", "Summarize"},
			keyHelp{"↑↓", "Scroll"},
		)
	}
	keys = append(keys, keyHelp{"r", "Refresh"}, keyHelp{"q", "Quit"})

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = ui.FooterKeyStyle.Render(k.key) + ui.FooterDescStyle.Render(" "+k.desc)
	}
	return strings.Join(parts, "  ")
}

// wrapText word-wraps text to width, keeping explicit line breaks.
func wrapText(text string, width int) []string {
	if width <= 0 {
		return []string{text}
	}
	var out []string
	for _, para := range strings.Split(text, "\n") {
		line := ""
		for _, word := range strings.Fields(para) {
			switch {
			case line == "":
				line = word
			case lipgloss.Width(line)+1+lipgloss.Width(word) <= width:
				line += " " + word
			default:
				out = append(out, line)
				line = word
			}
		}
		out = append(out, line)
	}
	return out
}
