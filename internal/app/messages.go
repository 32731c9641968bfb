package app

import "github.com/meetmind/meetmind/internal/daemon"

// DaemonConnectedMsg is sent when both daemon connections are established.
type DaemonConnectedMsg struct {
	Client   *daemon.Client // for commands (start, stop, status, summarize)
	EvClient *daemon.Client // for event subscription
}

// DaemonConnectErrorMsg is sent when the daemon connection fails.
type DaemonConnectErrorMsg struct {
	Err error
}

// DaemonEventMsg wraps a streamed event from the daemon.
type DaemonEventMsg struct {
	Event daemon.Event
}

// DaemonEventErrorMsg is sent when the event stream encounters an error.
type DaemonEventErrorMsg struct {
	Err error
}

// StatusResponseMsg carries the response to a status command.
type StatusResponseMsg struct {
	Response daemon.Response
}

// StartResponseMsg carries the response to a start command.
type StartResponseMsg struct {
	Response daemon.Response
}

// StopResponseMsg carries the response to a stop command.
type StopResponseMsg struct {
	Response daemon.Response
}

// SummarizeResponseMsg carries the immediate reply to summarize_transcript.
type SummarizeResponseMsg struct {
	MeetingID string
	Response  daemon.Response
}

// ClearTransientErrorMsg clears a transient error after a timeout.
type ClearTransientErrorMsg struct{}

// MeetingsLoadedMsg carries saved meetings and their summaries from SQLite.
type MeetingsLoadedMsg struct {
	Meetings []MeetingLoaded
}

// MeetingLoaded carries one saved meeting.
type MeetingLoaded struct {
	ID       string
	Title    string
	Date     string
	Sections []SectionLoaded
}

// SectionLoaded is one stored summary section.
type SectionLoaded struct {
	Title string
	Text  string
}

// ReconnectTickMsg triggers a reconnection attempt.
type ReconnectTickMsg struct{}
