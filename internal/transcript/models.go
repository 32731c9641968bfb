// Package transcript reconstructs a speaker-attributed transcript and chat log
// from snapshots of a live caption region.
package transcript

import (
	"errors"
	"fmt"
)

// DefaultUserName is the label the host page renders for the local participant.
const DefaultUserName = "You"

// DefaultShrinkThreshold is how many characters the rendered text may shrink for
// the same speaker before it is treated as a truncated caption region.
const DefaultShrinkThreshold = 250

var (
	// ErrEmptySession is returned when a session has no utterances and no chat.
	ErrEmptySession = errors.New("session has no transcript or chat messages")
	// ErrSealed is returned when a recorder is used after End.
	ErrSealed = errors.New("session already ended")
)

// Utterance is one committed speaker turn.
type Utterance struct {
	Speaker   string `json:"personName"`
	Timestamp string `json:"timeStamp"`
	Text      string `json:"personTranscript"`
}

// ChatMessage is one committed chat message.
type ChatMessage struct {
	Speaker   string `json:"personName"`
	Timestamp string `json:"timeStamp"`
	Text      string `json:"chatMessageText"`
}

// Session is one recorded meeting.
type Session struct {
	ID         string        `json:"id,omitempty"`
	Title      string        `json:"meetingTitle"`
	StartedAt  string        `json:"meetingStartTimeStamp"`
	UserName   string        `json:"userName"`
	Transcript []Utterance   `json:"transcript"`
	ChatLog    []ChatMessage `json:"chatMessages"`
}

// Empty reports whether nothing was captured.
func (s *Session) Empty() bool {
	return len(s.Transcript) == 0 && len(s.ChatLog) == 0
}

// Slot is the most recently active speaker slot as currently rendered.
type Slot struct {
	Speaker string
	Text    string
}

// Snapshot is one observation of the caption region. A nil Slot means no
// speaker slot is rendered at all; a non-nil Fault marks a malformed observation.
type Snapshot struct {
	Slot  *Slot
	Fault error
}

// Batch is the set of snapshots delivered by one mutation callback.
type Batch []Snapshot

// ChatSnapshot is one observation of the chat panel's most recent message.
// Speaker and Text are nil when the rendered message is missing that part.
type ChatSnapshot struct {
	Count   int
	Speaker *string
	Text    *string
}

// ObservationFault describes a snapshot that could not be read.
type ObservationFault struct {
	Code   string
	Reason string
}

func (f *ObservationFault) Error() string {
	return fmt.Sprintf("observation fault %s: %s", f.Code, f.Reason)
}

// FaultLogger receives faults from the segmentation algorithms. Calls must not block.
type FaultLogger interface {
	LogFault(code string, err error)
}

// Fault codes reported by the recorder.
const (
	FaultCaptionSource = "001"
	FaultChatSource    = "003"
	FaultCaptionBatch  = "005"
	FaultChatBatch     = "006"
)

type nopFaults struct{}

func (nopFaults) LogFault(string, error) {}
