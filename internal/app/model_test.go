package app

import (
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/meetmind/meetmind/internal/daemon"
	"github.com/meetmind/meetmind/internal/db"
)

func TestNewModel(t *testing.T) {
	m := New(":memory:")
	if m.connected {
		t.Error("new model should not be connected")
	}
	if m.recording {
		t.Error("new model should not be recording")
	}
	if !m.transcriptLive {
		t.Error("new model should be in live mode")
	}
	if m.focusedPanel != FocusTranscript {
		t.Error("new model should focus transcript")
	}
}

func TestDaemonConnectError(t *testing.T) {
	m := New(":memory:")
	m.width = 80
	m.height = 24

	updated, cmd := m.Update(DaemonConnectErrorMsg{Err: fmt.Errorf("connection refused")})
	model := updated.(Model)

	if model.connected {
		t.Error("should not be connected after error")
	}
	if !model.reconnecting {
		t.Error("should be reconnecting after connect error")
	}
	if cmd == nil {
		t.Error("connect error should schedule a reconnect")
	}
	if !strings.Contains(model.View(), "Reconnecting") {
		t.Error("view should mention reconnecting")
	}
}

func TestStatusResponse(t *testing.T) {
	m := New(":memory:")
	m.connected = true

	resp := StatusResponseMsg{Response: daemon.Response{
		OK:        true,
		MeetingID: "20261017-1",
		Recording: daemon.BoolPtr(true),
		Title:     "Standup",
		Disabled:  []string{"chat"},
	}}

	updated, _ := m.Update(resp)
	model := updated.(Model)

	if !model.recording {
		t.Error("should be recording")
	}
	if model.meetingID != "20261017-1" {
		t.Errorf("meetingID = %q", model.meetingID)
	}
	if model.title != "Standup" {
		t.Errorf("title = %q", model.title)
	}
	if len(model.disabled) != 1 || model.disabled[0] != "chat" {
		t.Errorf("disabled = %v", model.disabled)
	}
}

func TestStartResponseResetsTranscript(t *testing.T) {
	m := New(":memory:")
	m.connected = true
	m.entries = []TranscriptEntry{{Speaker: "Ada", Text: "old"}}
	m.partialText = "stale"

	updated, _ := m.Update(StartResponseMsg{Response: daemon.Response{OK: true, MeetingID: "m2", Title: "Retro"}})
	model := updated.(Model)

	if !model.recording || model.meetingID != "m2" {
		t.Errorf("recording=%v meetingID=%q", model.recording, model.meetingID)
	}
	if len(model.entries) != 0 || model.partialText != "" {
		t.Error("start should clear the live transcript")
	}
}

func TestStartResponseError(t *testing.T) {
	m := New(":memory:")
	updated, cmd := m.Update(StartResponseMsg{Response: daemon.Response{OK: false, Error: "boom"}})
	model := updated.(Model)

	if model.recording {
		t.Error("failed start should not record")
	}
	if model.errorMessage != "boom" || cmd == nil {
		t.Errorf("errorMessage = %q, cmd nil = %v", model.errorMessage, cmd == nil)
	}
}

func TestStopResponseEmpty(t *testing.T) {
	m := New(":memory:")
	m.recording = true

	updated, _ := m.Update(StopResponseMsg{Response: daemon.Response{OK: true, Status: "empty"}})
	model := updated.(Model)

	if model.recording {
		t.Error("should stop recording")
	}
	if !strings.Contains(model.statusText, "nothing captured") {
		t.Errorf("statusText = %q", model.statusText)
	}
}

func TestUtteranceEvent(t *testing.T) {
	m := New(":memory:")
	m.connected = true
	m.width = 80
	m.height = 24
	m.partialSpeaker = "Ada"
	m.partialText = "Hello wor"

	m.handleEvent(daemon.Event{
		Event:     daemon.EventUtterance,
		Speaker:   "Ada",
		Text:      "Hello world",
		Timestamp: "10/17/2026, 3:00:00 PM",
	})

	if len(m.entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(m.entries))
	}
	if m.entries[0].Text != "Hello world" || m.entries[0].Speaker != "Ada" {
		t.Errorf("entry = %+v", m.entries[0])
	}
	if m.partialText != "" {
		t.Error("committing the speaker's line should clear the partial")
	}
}

func TestPartialEvent(t *testing.T) {
	m := New(":memory:")
	m.connected = true

	m.handleEvent(daemon.Event{Event: daemon.EventPartial, Speaker: "Grace", Text: "testing partial"})

	if m.partialText != "testing partial" {
		t.Errorf("partialText = %q", m.partialText)
	}
	if m.partialSpeaker != "Grace" {
		t.Errorf("partialSpeaker = %q", m.partialSpeaker)
	}
}

func TestChatEvent(t *testing.T) {
	m := New(":memory:")
	m.connected = true
	m.width = 100
	m.height = 30

	m.handleEvent(daemon.Event{Event: daemon.EventChat, Speaker: "Linus", Text: "link in chat"})

	if len(m.entries) != 1 || !m.entries[0].Chat {
		t.Fatalf("entries = %+v", m.entries)
	}
	if !strings.Contains(m.View(), "[CHAT]") {
		t.Error("view should label chat entries")
	}
}

func TestStatusEvent(t *testing.T) {
	m := New(":memory:")
	m.handleEvent(daemon.Event{Event: daemon.EventStatus, Recording: daemon.BoolPtr(true), MeetingID: "m1"})

	if !m.recording || m.meetingID != "m1" {
		t.Errorf("recording=%v meetingID=%q", m.recording, m.meetingID)
	}

	m.partialText = "x"
	m.handleEvent(daemon.Event{Event: daemon.EventStatus, Recording: daemon.BoolPtr(false)})
	if m.recording || m.partialText != "" {
		t.Error("stopped status should clear recording and partial")
	}
}

func TestSummarizationErrorEvent(t *testing.T) {
	m := New(":memory:")
	m.meetings = []MeetingDisplay{{ID: "m1", Summarizing: true}}

	cmd := m.handleEvent(daemon.Event{
		Event:     daemon.EventSummarizationError,
		MeetingID: "m1",
		Message:   "meeting content is too short to summarize",
	})

	if m.errorMessage == "" {
		t.Error("error message should be set")
	}
	if m.meetings[0].Summarizing {
		t.Error("meeting should no longer be summarizing")
	}
	if cmd == nil {
		t.Error("transient error should return a clear command")
	}
}

func TestSavedEventReloadsMeetings(t *testing.T) {
	store, err := db.Open(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer store.Close()

	m := New(":memory:")
	if cmd := m.handleEvent(daemon.Event{Event: daemon.EventSaved, MeetingID: "m1"}); cmd != nil {
		t.Error("without a store there is nothing to reload")
	}

	m.store = store
	if cmd := m.handleEvent(daemon.Event{Event: daemon.EventSaved, MeetingID: "m1"}); cmd == nil {
		t.Error("saved event should reload meetings")
	}
}

func TestLoadMeetingsCmd(t *testing.T) {
	store, err := db.Open(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer store.Close()

	store.SaveTranscript("1", db.SavedTranscript{Content: "a", Title: "Planning", Date: "d1"})
	store.SaveTranscript("2", db.SavedTranscript{Content: "b", Title: "Review", Date: "d2"})
	store.SaveSummary(db.SummaryRecord{
		MeetingID: "1",
		Summary:   map[string]string{"tasks": "ship it", "general_summary": "we planned"},
		Kinds:     []string{"general_summary", "tasks"},
	})

	msg := loadMeetingsCmd(store)().(MeetingsLoadedMsg)
	if len(msg.Meetings) != 2 {
		t.Fatalf("meetings = %d, want 2", len(msg.Meetings))
	}
	var planning MeetingLoaded
	for _, ml := range msg.Meetings {
		if ml.ID == "1" {
			planning = ml
		}
	}
	if len(planning.Sections) != 2 {
		t.Fatalf("sections = %+v", planning.Sections)
	}
	if planning.Sections[0].Title != "General Summary" || planning.Sections[1].Text != "ship it" {
		t.Errorf("sections out of order: %+v", planning.Sections)
	}
}

func TestTabTogglesFocus(t *testing.T) {
	m := New(":memory:")
	m.width = 80
	m.height = 24
	m.connected = true

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	model := updated.(Model)
	if model.focusedPanel != FocusMeetings {
		t.Error("tab should switch to meetings")
	}

	updated, _ = model.Update(tea.KeyMsg{Type: tea.KeyTab})
	model = updated.(Model)
	if model.focusedPanel != FocusTranscript {
		t.Error("tab again should switch back to transcript")
	}
}

func TestMeetingNavigation(t *testing.T) {
	m := New(":memory:")
	m.width = 80
	m.height = 24
	m.connected = true
	m.focusedPanel = FocusMeetings
	m.meetings = []MeetingDisplay{
		{ID: "3", Title: "Meeting C"},
		{ID: "2", Title: "Meeting B"},
		{ID: "1", Title: "Meeting A", Sections: []SectionLoaded{{Title: "Tasks", Text: "none"}}},
	}

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	model := updated.(Model)
	if model.selectedMeeting != 1 {
		t.Errorf("after j, selectedMeeting = %d, want 1", model.selectedMeeting)
	}

	updated, _ = model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}})
	model = updated.(Model)
	if model.selectedMeeting != 0 {
		t.Errorf("after k, selectedMeeting = %d, want 0", model.selectedMeeting)
	}

	updated, _ = model.Update(tea.KeyMsg{Type: tea.KeyEnter})
	model = updated.(Model)
	if !model.meetings[0].Expanded {
		t.Error("enter should expand meeting 0")
	}

	updated, _ = model.Update(tea.KeyMsg{Type: tea.KeyEnter})
	model = updated.(Model)
	if model.meetings[0].Expanded {
		t.Error("enter again should collapse meeting 0")
	}
}

func TestSummarizeKey(t *testing.T) {
	m := New(":memory:")
	m.focusedPanel = FocusMeetings
	m.meetings = []MeetingDisplay{{ID: "1", Title: "Planning"}}

	// Not connected: ignored.
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'s'}})
	model := updated.(Model)
	if cmd != nil || model.meetings[0].Summarizing {
		t.Error("summarize should need a daemon connection")
	}

	model.connected = true
	model.client = &daemon.Client{}
	updated, cmd = model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'s'}})
	model = updated.(Model)
	if cmd == nil || !model.meetings[0].Summarizing {
		t.Error("summarize should mark the meeting and send a command")
	}

	// A second press while running does nothing.
	_, cmd = model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'s'}})
	if cmd != nil {
		t.Error("summarize should not be resent while running")
	}
}

func TestMeetingsLoadedKeepsExpansion(t *testing.T) {
	m := New(":memory:")
	m.meetings = []MeetingDisplay{{ID: "1", Title: "Planning", Expanded: true}}
	m.selectedMeeting = 5

	updated, _ := m.Update(MeetingsLoadedMsg{Meetings: []MeetingLoaded{
		{ID: "2", Title: "Review"},
		{ID: "1", Title: "Planning", Sections: []SectionLoaded{{Title: "Tasks", Text: "x"}}},
	}})
	model := updated.(Model)

	if len(model.meetings) != 2 {
		t.Fatalf("meetings = %d, want 2", len(model.meetings))
	}
	if !model.meetings[1].Expanded {
		t.Error("expansion should survive a reload")
	}
	if model.selectedMeeting != 1 {
		t.Errorf("selection should be clamped, got %d", model.selectedMeeting)
	}
}

func TestViewRendersExpandedSummary(t *testing.T) {
	m := New(":memory:")
	m.width = 120
	m.height = 30
	m.meetings = []MeetingDisplay{{
		ID:       "1",
		Title:    "Planning",
		Expanded: true,
		Sections: []SectionLoaded{{Title: "Key Topics", Text: "budget"}},
	}}

	view := m.View()
	if !strings.Contains(view, "Key Topics") || !strings.Contains(view, "budget") {
		t.Errorf("expanded meeting should show its sections:\n%s", view)
	}
}

func TestViewRendersWithSize(t *testing.T) {
	m := New(":memory:")
	m.width = 80
	m.height = 24

	view := m.View()
	if view == "" {
		t.Error("view should not be empty")
	}
	if view == "Initializing..." {
		t.Error("view should not show initializing with size set")
	}
}

func TestViewWithoutSize(t *testing.T) {
	m := New(":memory:")
	view := m.View()
	if view != "Initializing..." {
		t.Errorf("view without size = %q, want 'Initializing...'", view)
	}
}

func TestWrapText(t *testing.T) {
	lines := wrapText("one two three four", 9)
	want := []string{"one two", "three", "four"}
	if strings.Join(lines, "|") != strings.Join(want, "|") {
		t.Errorf("wrapText = %q, want %q", lines, want)
	}

	if lines := wrapText("first\nsecond", 40); len(lines) != 2 {
		t.Errorf("explicit newline should split, got %q", lines)
	}
}

func TestScrollLeavesLiveMode(t *testing.T) {
	m := New(":memory:")
	m.width = 80
	m.height = 12
	m.connected = true
	for i := 0; i < 20; i++ {
		m.handleEvent(daemon.Event{Event: daemon.EventUtterance, Speaker: "Ada", Text: fmt.Sprint("line ", i)})
	}
	bottom := m.maxTranscriptScroll()
	if m.transcriptScroll != bottom {
		t.Fatalf("live mode should follow the tail: scroll=%d want %d", m.transcriptScroll, bottom)
	}

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyUp})
	model := updated.(Model)
	if model.transcriptLive || model.transcriptScroll != bottom-1 {
		t.Errorf("up: live=%v scroll=%d", model.transcriptLive, model.transcriptScroll)
	}

	updated, _ = model.Update(tea.KeyMsg{Type: tea.KeyDown})
	model = updated.(Model)
	if !model.transcriptLive {
		t.Error("scrolling back to the bottom should resume live mode")
	}
}
