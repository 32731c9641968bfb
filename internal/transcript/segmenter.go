package transcript

import (
	"time"
	"unicode/utf8"
)

// State is the segmentation state.
type State int

const (
	Idle State = iota
	Buffering
)

func (s State) String() string {
	if s == Buffering {
		return "buffering"
	}
	return "idle"
}

// FlushReason says why a turn buffer was committed.
type FlushReason int

const (
	SpeakerChanged FlushReason = iota
	// Truncated means the host UI reset the caption region for the same speaker.
	Truncated
	SpeakerGone
	SessionEnded
)

func (r FlushReason) String() string {
	switch r {
	case SpeakerChanged:
		return "speaker_changed"
	case Truncated:
		return "truncated"
	case SpeakerGone:
		return "speaker_gone"
	case SessionEnded:
		return "session_ended"
	}
	return "unknown"
}

// TurnBuffer is the in-progress utterance that has not been committed yet.
type TurnBuffer struct {
	Speaker              string
	Text                 string
	Timestamp            string
	PreviousObservedText string
}

// Empty reports whether the buffer holds nothing that may be committed.
func (b TurnBuffer) Empty() bool {
	return b.Speaker == "" || b.Text == ""
}

// Commit is emitted when the turn buffer is flushed.
type Commit struct {
	Utterance Utterance
	Reason    FlushReason
}

// Segmenter turns caption snapshots into committed utterances.
//
// Caption UIs re-render the whole accumulated text of the current turn on every
// change, so the segmenter compares lengths rather than content: growth extends
// the turn, a speaker change or a large shrink ends it.
type Segmenter struct {
	// ShrinkThreshold is the number of characters the text may shrink for the same
	// speaker before the turn is flushed. Zero means DefaultShrinkThreshold.
	ShrinkThreshold int
	// Now stamps utterances. Defaults to time.Now.
	Now func() time.Time

	buf    TurnBuffer
	active bool
}

// NewSegmenter returns a segmenter with the given shrink threshold.
func NewSegmenter(threshold int) *Segmenter {
	return &Segmenter{ShrinkThreshold: threshold}
}

// State returns the current segmentation state.
func (s *Segmenter) State() State {
	if s.active {
		return Buffering
	}
	return Idle
}

// Pending returns a copy of the turn buffer and whether a turn is in progress.
func (s *Segmenter) Pending() (TurnBuffer, bool) {
	return s.buf, s.active
}

// Observe applies one snapshot. It returns the commit produced by the snapshot, if
// any. A malformed snapshot returns its fault and leaves the buffer untouched.
func (s *Segmenter) Observe(snap Snapshot) (*Commit, error) {
	if snap.Fault != nil {
		return nil, snap.Fault
	}

	if snap.Slot == nil {
		c := s.flush(SpeakerGone)
		s.reset()
		return c, nil
	}
	slot := *snap.Slot

	if !s.active {
		if slot.Text != "" {
			s.begin(slot)
		}
		return nil, nil
	}

	if slot.Speaker != s.buf.Speaker {
		c := s.flush(SpeakerChanged)
		if slot.Text == "" {
			s.reset()
		} else {
			s.begin(slot)
		}
		return c, nil
	}

	// Same speaker with nothing rendered yet.
	if slot.Text == "" {
		return nil, nil
	}

	if s.shrunk(slot.Text) {
		c := s.flush(Truncated)
		s.begin(slot)
		return c, nil
	}

	s.buf.PreviousObservedText = s.buf.Text
	s.buf.Text = slot.Text
	s.buf.Timestamp = s.stamp()
	return nil, nil
}

// Flush commits any pending turn and returns to Idle. Used at session end.
func (s *Segmenter) Flush() *Commit {
	c := s.flush(SessionEnded)
	s.reset()
	return c
}

func (s *Segmenter) begin(slot Slot) {
	s.buf = TurnBuffer{
		Speaker:   slot.Speaker,
		Text:      slot.Text,
		Timestamp: s.stamp(),
	}
	s.active = true
}

func (s *Segmenter) reset() {
	s.buf = TurnBuffer{}
	s.active = false
}

// flush commits the buffer unless it is blank. The buffer is cleared either way.
func (s *Segmenter) flush(reason FlushReason) *Commit {
	buf := s.buf
	s.buf = TurnBuffer{}
	if !s.active || buf.Empty() {
		return nil
	}
	return &Commit{
		Utterance: Utterance{
			Speaker:   buf.Speaker,
			Timestamp: buf.Timestamp,
			Text:      buf.Text,
		},
		Reason: reason,
	}
}

func (s *Segmenter) shrunk(text string) bool {
	threshold := s.ShrinkThreshold
	if threshold <= 0 {
		threshold = DefaultShrinkThreshold
	}
	return utf8.RuneCountInString(text)-utf8.RuneCountInString(s.buf.Text) < -threshold
}

func (s *Segmenter) stamp() string {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	return FormatTimestamp(now())
}
