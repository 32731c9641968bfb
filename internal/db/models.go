// Package db provides the SQLite-backed keyed store for meetings, summaries,
// preferences and the fault log.
package db

import "time"

// Scope selects one of the two key spaces.
type Scope string

const (
	// Local holds session content: transcripts, summaries, fault log.
	Local Scope = "local"
	// Sync holds small user preferences.
	Sync Scope = "sync"
)

// Well-known keys.
const (
	KeySavedTranscripts    = "savedTranscripts"
	KeyTranscriptContent   = "transcriptContent"
	KeyCurrentTranscriptID = "currentTranscriptId"
	KeyErrorLogs           = "errorLogs"
	KeyOperationMode       = "operationMode"
	KeySummaryLanguage     = "summaryLanguage"
	SummaryKeyPrefix       = "summary_"

	// Live session keys, rewritten as the recording progresses.
	KeyLiveTranscript   = "transcript"
	KeyLiveChatMessages = "chatMessages"
	KeyLiveTitle        = "meetingTitle"
	KeyLiveStartedAt    = "meetingStartTimeStamp"
	KeyLiveUserName     = "userName"
)

// SavedTranscript is an assembled meeting document.
type SavedTranscript struct {
	Content string `json:"content"`
	Title   string `json:"title"`
	Date    string `json:"date"`
}

// CurrentTranscript is the most recently saved document.
type CurrentTranscript struct {
	ID      string
	Content string
}

// MeetingListItem is one entry of the saved meeting list.
type MeetingListItem struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Date  string `json:"date"`
}

// SummaryRecord is the stored result of a summarization run.
type SummaryRecord struct {
	MeetingID string            `json:"meetingId"`
	Title     string            `json:"title"`
	Date      string            `json:"date"`
	Summary   map[string]string `json:"summary"`
	Kinds     []string          `json:"kinds,omitempty"`
}

// Preferences are the synced user settings.
type Preferences struct {
	OperationMode   string `json:"operationMode"`
	SummaryLanguage string `json:"summaryLanguage"`
}

// Operation modes.
const (
	ModeAuto   = "auto"
	ModeManual = "manual"
)

// FaultEntry is one persisted fault log record.
type FaultEntry struct {
	ID        string    `json:"id"`
	Source    string    `json:"source"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
