// Package app is the bubbletea TUI: the live transcript of the session being
// recorded next to the list of saved meetings and their summaries.
package app

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/meetmind/meetmind/internal/daemon"
	"github.com/meetmind/meetmind/internal/db"
)

// PanelFocus tracks which panel has keyboard focus.
type PanelFocus int

const (
	FocusMeetings PanelFocus = iota
	FocusTranscript
)

// TranscriptEntry is a committed utterance or chat message.
type TranscriptEntry struct {
	Speaker   string
	Text      string
	Timestamp string
	Chat      bool
}

// MeetingDisplay is one row of the meetings panel.
type MeetingDisplay struct {
	ID          string
	Title       string
	Date        string
	Sections    []SectionLoaded
	Expanded    bool
	Summarizing bool
}

// HasSummary reports whether stored sections exist.
func (m MeetingDisplay) HasSummary() bool { return len(m.Sections) > 0 }

// Model is the root bubbletea model.
type Model struct {
	client    *daemon.Client // commands
	evClient  *daemon.Client // subscribed event stream
	connected bool
	connError string

	recording bool
	meetingID string
	title     string
	disabled  []string

	entries        []TranscriptEntry
	partialSpeaker string
	partialText    string

	meetings        []MeetingDisplay
	selectedMeeting int

	focusedPanel     PanelFocus
	width            int
	height           int
	transcriptScroll int
	transcriptLive   bool

	errorMessage   string
	errorTransient bool
	statusText     string

	dbPath string
	store  *db.Store

	reconnecting     bool
	reconnectAttempt int
}

// New creates a Model that reads saved meetings from the database at dbPath.
func New(dbPath string) Model {
	return Model{
		statusText:     "Connecting to meetmind daemon...",
		transcriptLive: true,
		focusedPanel:   FocusTranscript,
		dbPath:         dbPath,
	}
}

// Init connects to the daemon and opens the store.
func (m Model) Init() tea.Cmd {
	return tea.Batch(connectCmd(), openStoreCmd(m.dbPath))
}

// Update processes messages and returns the updated model and any commands.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height

	case DaemonConnectedMsg:
		m.client, m.evClient = msg.Client, msg.EvClient
		m.connected, m.reconnecting = true, false
		m.connError = ""
		m.reconnectAttempt = 0
		m.statusText = "Connected"
		return m, tea.Batch(subscribeCmd(m.evClient), statusCmd(m.client))

	case DaemonConnectErrorMsg:
		m.connError = msg.Err.Error()
		m.statusText = "Daemon not running. Reconnecting..."
		return m, m.scheduleReconnect()

	case DaemonEventErrorMsg:
		m.connError = msg.Err.Error()
		m.statusText = "Disconnected. Reconnecting..."
		m.closeClients()
		return m, m.scheduleReconnect()

	case ReconnectTickMsg:
		m.reconnectAttempt++
		return m, connectCmd()

	case DaemonEventMsg:
		return m, tea.Batch(m.handleEvent(msg.Event), readEventCmd(m.evClient))

	case StatusResponseMsg:
		r := msg.Response
		if r.Recording != nil {
			m.recording = *r.Recording
		}
		m.meetingID, m.title, m.disabled = r.MeetingID, r.Title, r.Disabled
		m.statusText = idleOrRecording(m.recording)

	case StartResponseMsg:
		r := msg.Response
		if !r.OK {
			return m, m.flashError(r.Error)
		}
		m.recording = true
		m.meetingID, m.title, m.disabled = r.MeetingID, r.Title, nil
		m.entries = nil
		m.clearPartial()
		m.statusText = "Recording"

	case StopResponseMsg:
		r := msg.Response
		if !r.OK {
			m.errorMessage = r.Error
			return m, nil
		}
		m.recording = false
		m.clearPartial()
		if r.Status == "empty" {
			m.statusText = "Idle (nothing captured)"
		} else {
			m.statusText = "Saved " + r.MeetingID
		}

	case SummarizeResponseMsg:
		if !msg.Response.OK {
			m.setSummarizing(msg.MeetingID, false)
			return m, m.flashError(msg.Response.Error)
		}

	case storeOpenedMsg:
		m.store = msg.store
		return m, loadMeetingsCmd(m.store)

	case MeetingsLoadedMsg:
		m.applyMeetings(msg.Meetings)

	case ClearTransientErrorMsg:
		if m.errorTransient {
			m.errorMessage, m.errorTransient = "", false
		}
	}
	return m, nil
}

func idleOrRecording(recording bool) string {
	if recording {
		return "Recording"
	}
	return "Idle"
}

func (m *Model) scheduleReconnect() tea.Cmd {
	m.connected = false
	m.reconnecting = true
	return reconnectCmd(m.reconnectAttempt)
}

func (m *Model) closeClients() {
	for _, c := range []*daemon.Client{m.client, m.evClient} {
		if c != nil {
			c.Close()
		}
	}
	m.client, m.evClient = nil, nil
}

// flashError shows msg until the transient error timer fires.
func (m *Model) flashError(msg string) tea.Cmd {
	m.errorMessage = msg
	m.errorTransient = true
	return clearTransientErrorCmd()
}

func (m *Model) clearPartial() {
	m.partialSpeaker, m.partialText = "", ""
}

// applyMeetings replaces the meeting list, keeping per-meeting UI state.
func (m *Model) applyMeetings(loaded []MeetingLoaded) {
	prev := make(map[string]MeetingDisplay, len(m.meetings))
	for _, mt := range m.meetings {
		prev[mt.ID] = mt
	}
	m.meetings = make([]MeetingDisplay, 0, len(loaded))
	for _, ml := range loaded {
		old := prev[ml.ID]
		m.meetings = append(m.meetings, MeetingDisplay{
			ID:          ml.ID,
			Title:       ml.Title,
			Date:        ml.Date,
			Sections:    ml.Sections,
			Expanded:    old.Expanded,
			Summarizing: old.Summarizing,
		})
	}
	if m.selectedMeeting >= len(m.meetings) {
		m.selectedMeeting = max(0, len(m.meetings)-1)
	}
}

func (m *Model) setSummarizing(id string, on bool) {
	for i := range m.meetings {
		if m.meetings[i].ID == id {
			m.meetings[i].Summarizing = on
		}
	}
}

func (m Model) anySummarizing() bool {
	for _, mt := range m.meetings {
		if mt.Summarizing {
			return true
		}
	}
	return false
}

func (m *Model) appendEntry(e TranscriptEntry) {
	m.entries = append(m.entries, e)
	if m.transcriptLive {
		m.transcriptScroll = m.maxTranscriptScroll()
	}
}

// handleEvent applies a daemon event and returns any follow-up command.
func (m *Model) handleEvent(ev daemon.Event) tea.Cmd {
	switch ev.Event {
	case daemon.EventPartial:
		m.partialSpeaker, m.partialText = ev.Speaker, ev.Text

	case daemon.EventUtterance:
		if ev.Speaker == m.partialSpeaker {
			m.clearPartial()
		}
		m.appendEntry(TranscriptEntry{Speaker: ev.Speaker, Text: ev.Text, Timestamp: ev.Timestamp})

	case daemon.EventChat:
		m.appendEntry(TranscriptEntry{Speaker: ev.Speaker, Text: ev.Text, Timestamp: ev.Timestamp, Chat: true})

	case daemon.EventStatus:
		if ev.Recording != nil {
			m.recording = *ev.Recording
			m.statusText = idleOrRecording(m.recording)
			if m.recording {
				m.meetingID = ev.MeetingID
			} else {
				m.clearPartial()
			}
		}
		if ev.Title != "" {
			m.title = ev.Title
		}

	case daemon.EventSummaryReady, daemon.EventSaved:
		m.setSummarizing(ev.MeetingID, false)
		if m.store != nil {
			return loadMeetingsCmd(m.store)
		}

	case daemon.EventSummarizationError:
		m.setSummarizing(ev.MeetingID, false)
		return m.flashError(ev.Message)
	}
	return nil
}

// handleKey processes key presses.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	inMeetings := m.focusedPanel == FocusMeetings

	switch msg.String() {
	case KeyQuit, KeyQuitUpper, KeyCtrlC:
		m.closeClients()
		if m.store != nil {
			m.store.Close()
		}
		return m, tea.Quit

	case KeySpace:
		switch {
		case !m.connected:
		case m.recording:
			return m, stopCmd(m.client)
		default:
			return m, startCmd(m.client)
		}

	case KeyTab:
		if inMeetings {
			m.focusedPanel = FocusTranscript
		} else {
			m.focusedPanel = FocusMeetings
		}

	case KeyJ:
		if inMeetings && m.selectedMeeting < len(m.meetings)-1 {
			m.selectedMeeting++
		}

	case KeyK:
		if inMeetings && m.selectedMeeting > 0 {
			m.selectedMeeting--
		}

	case KeyEnter:
		if sel := m.selected(); inMeetings && sel != nil {
			sel.Expanded = !sel.Expanded
		}

	case KeySummarize, KeySummarizeUp:
		sel := m.selected()
		if !m.connected || !inMeetings || sel == nil || sel.Summarizing {
			return m, nil
		}
		sel.Summarizing = true
		return m, summarizeCmd(m.client, sel.ID)

	case KeyRefresh, KeyRefreshUp:
		if m.store != nil {
			return m, loadMeetingsCmd(m.store)
		}

	case KeyUp:
		if !inMeetings {
			m.transcriptLive = false
			m.transcriptScroll = max(0, m.transcriptScroll-1)
		}

	case KeyDown:
		if !inMeetings {
			limit := m.maxTranscriptScroll()
			m.transcriptScroll = min(m.transcriptScroll+1, limit)
			m.transcriptLive = m.transcriptScroll == limit
		}
	}
	return m, nil
}

// selected returns the highlighted meeting, or nil when the list is empty.
func (m *Model) selected() *MeetingDisplay {
	if m.selectedMeeting < 0 || m.selectedMeeting >= len(m.meetings) {
		return nil
	}
	return &m.meetings[m.selectedMeeting]
}
