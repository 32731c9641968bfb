// Package daemon provides the meetmind recording service and its client,
// speaking NDJSON over a Unix socket.
package daemon

import (
	"github.com/meetmind/meetmind/internal/db"
	"github.com/meetmind/meetmind/internal/transcript"
)

// Command names.
const (
	CmdStart          = "start"
	CmdStop           = "stop"
	CmdCaption        = "caption"
	CmdChat           = "chat"
	CmdSourceError    = "source_error"
	CmdSetTitle       = "set_title"
	CmdSetUser        = "set_user"
	CmdStatus         = "status"
	CmdSubscribe      = "subscribe"
	CmdGetTranscript  = "get_transcript"
	CmdSaveTranscript = "save_transcript"
	CmdSummarize      = "summarize_transcript"
	CmdGetSummaries   = "get_summaries"
	CmdGetMeetingList = "get_meeting_list"
	CmdGetErrors      = "get_errors"
	CmdGetPreferences = "get_preferences"
	CmdSetPreferences = "set_preferences"
)

// Event names.
const (
	EventUtterance          = "utterance"
	EventPartial            = "partial"
	EventChat               = "chat"
	EventStatus             = "status"
	EventSaved              = "saved"
	EventSummaryReady       = "summary_ready"
	EventSummarizationError = "summarization_error"
)

// CaptionSnapshot is one observation of the caption region. Empty means no
// speaker slot was rendered; a nil Speaker or Text otherwise marks it malformed.
type CaptionSnapshot struct {
	Empty   bool    `json:"empty,omitempty"`
	Speaker *string `json:"speaker,omitempty"`
	Text    *string `json:"text,omitempty"`
}

// ChatSnapshot is one observation of the chat panel.
type ChatSnapshot struct {
	Count   int     `json:"count"`
	Speaker *string `json:"speaker,omitempty"`
	Text    *string `json:"text,omitempty"`
}

// Command is sent from a client to the daemon.
type Command struct {
	Cmd         string            `json:"cmd"`
	Title       string            `json:"title,omitempty"`
	User        string            `json:"user,omitempty"`
	MeetingID   string            `json:"meetingId,omitempty"`
	Content     string            `json:"content,omitempty"`
	Captions    []CaptionSnapshot `json:"captions,omitempty"`
	Chat        []ChatSnapshot    `json:"chat,omitempty"`
	Source      string            `json:"source,omitempty"`
	Message     string            `json:"message,omitempty"`
	Events      []string          `json:"events,omitempty"`
	Preferences *db.Preferences   `json:"preferences,omitempty"`
}

// Response is returned by the daemon after processing a command.
type Response struct {
	OK               bool                          `json:"ok"`
	Error            string                        `json:"error,omitempty"`
	Status           string                        `json:"status,omitempty"`
	MeetingID        string                        `json:"meetingId,omitempty"`
	Recording        *bool                         `json:"recording,omitempty"`
	AutoCaptions     *bool                         `json:"autoCaptions,omitempty"`
	State            string                        `json:"state,omitempty"`
	Title            string                        `json:"title,omitempty"`
	Utterances       *int                          `json:"utterances,omitempty"`
	ChatMessages     *int                          `json:"chatMessages,omitempty"`
	Committed        *int                          `json:"committed,omitempty"`
	Disabled         []string                      `json:"disabled,omitempty"`
	Content          string                        `json:"content,omitempty"`
	SavedTranscripts map[string]db.SavedTranscript `json:"savedTranscripts,omitempty"`
	Summaries        map[string]db.SummaryRecord   `json:"summaries,omitempty"`
	Meetings         []db.MeetingListItem          `json:"meetings,omitempty"`
	Errors           []db.FaultEntry               `json:"errors,omitempty"`
	Preferences      *db.Preferences               `json:"preferences,omitempty"`
	Session          *transcript.Session           `json:"session,omitempty"`
}

// Event is streamed from the daemon to subscribed clients.
type Event struct {
	Event     string            `json:"event"`
	MeetingID string            `json:"meetingId,omitempty"`
	Speaker   string            `json:"speaker,omitempty"`
	Text      string            `json:"text,omitempty"`
	Timestamp string            `json:"timestamp,omitempty"`
	Reason    string            `json:"reason,omitempty"`
	Title     string            `json:"title,omitempty"`
	Message   string            `json:"message,omitempty"`
	Recording *bool             `json:"recording,omitempty"`
	Summary   *db.SummaryRecord `json:"summary,omitempty"`
}

// BoolPtr returns a pointer to a bool value. Convenience for building responses.
func BoolPtr(b bool) *bool { return &b }

// IntPtr returns a pointer to an int value.
func IntPtr(n int) *int { return &n }

// StrPtr returns a pointer to a string value.
func StrPtr(s string) *string { return &s }

// ToBatch converts wire snapshots to a caption batch, marking incomplete ones
// as malformed.
func ToBatch(snaps []CaptionSnapshot) transcript.Batch {
	batch := make(transcript.Batch, 0, len(snaps))
	for _, s := range snaps {
		switch {
		case s.Empty:
			batch = append(batch, transcript.Snapshot{})
		case s.Speaker == nil || s.Text == nil:
			batch = append(batch, transcript.Snapshot{Fault: &transcript.ObservationFault{
				Code:   transcript.FaultCaptionBatch,
				Reason: "caption slot missing speaker or text",
			}})
		default:
			batch = append(batch, transcript.Snapshot{Slot: &transcript.Slot{Speaker: *s.Speaker, Text: *s.Text}})
		}
	}
	return batch
}

// ToChat converts wire chat snapshots.
func ToChat(snaps []ChatSnapshot) []transcript.ChatSnapshot {
	out := make([]transcript.ChatSnapshot, len(snaps))
	for i, s := range snaps {
		out[i] = transcript.ChatSnapshot{Count: s.Count, Speaker: s.Speaker, Text: s.Text}
	}
	return out
}
