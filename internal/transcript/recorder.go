package transcript

import (
	"fmt"
	"time"
)

// Source identifies an observation stream.
type Source string

const (
	CaptionSource Source = "captions"
	ChatSource    Source = "chat"
)

// RecorderOptions configures a Recorder.
type RecorderOptions struct {
	Title           string
	UserName        string
	ShrinkThreshold int
	Now             func() time.Time
	Faults          FaultLogger

	// OnUtterance is called synchronously for every committed utterance.
	OnUtterance func(Commit)
	// OnChat is called synchronously for every appended chat message.
	OnChat func(ChatMessage)
}

// Recorder owns the transcript and chat log of the session being recorded.
// It is not safe for concurrent use; callers deliver batches one at a time in
// the order they were observed.
type Recorder struct {
	opts    RecorderOptions
	session Session
	seg     *Segmenter
	chat    *ChatCollector

	disabled map[Source]bool
	sealed   bool
}

// NewRecorder starts recording a session.
func NewRecorder(opts RecorderOptions) *Recorder {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Faults == nil {
		opts.Faults = nopFaults{}
	}
	if opts.UserName == "" {
		opts.UserName = DefaultUserName
	}

	seg := NewSegmenter(opts.ShrinkThreshold)
	seg.Now = opts.Now

	return &Recorder{
		opts: opts,
		session: Session{
			Title:     SanitizeTitle(opts.Title),
			StartedAt: FormatStartTimestamp(opts.Now()),
			UserName:  opts.UserName,
		},
		seg:      seg,
		chat:     &ChatCollector{Now: opts.Now},
		disabled: make(map[Source]bool),
	}
}

// ObserveCaptions applies a batch of caption snapshots in order and returns the
// utterances it committed. Malformed snapshots are skipped and reported.
func (r *Recorder) ObserveCaptions(batch Batch) ([]Commit, error) {
	if r.sealed {
		return nil, ErrSealed
	}
	if r.disabled[CaptionSource] {
		return nil, nil
	}

	var commits []Commit
	for _, snap := range batch {
		c, err := r.seg.Observe(snap)
		if err != nil {
			r.opts.Faults.LogFault(FaultCaptionBatch, err)
			continue
		}
		if c != nil {
			r.commit(*c)
			commits = append(commits, *c)
		}
	}
	return commits, nil
}

// ObserveChat applies a batch of chat snapshots in order and returns the
// messages that were new.
func (r *Recorder) ObserveChat(batch []ChatSnapshot) ([]ChatMessage, error) {
	if r.sealed {
		return nil, ErrSealed
	}
	if r.disabled[ChatSource] {
		return nil, nil
	}

	var added []ChatMessage
	for _, snap := range batch {
		msg, ok, err := r.chat.Observe(snap)
		if err != nil {
			r.opts.Faults.LogFault(FaultChatBatch, err)
			continue
		}
		if !ok {
			continue
		}
		r.session.ChatLog = append(r.session.ChatLog, msg)
		added = append(added, msg)
		if r.opts.OnChat != nil {
			r.opts.OnChat(msg)
		}
	}
	return added, nil
}

// SourceFailed reports that an observation source broke. Later batches from that
// source are ignored; committed utterances and messages are kept.
func (r *Recorder) SourceFailed(src Source, err error) {
	code := FaultCaptionSource
	if src == ChatSource {
		code = FaultChatSource
	}
	r.opts.Faults.LogFault(code, fmt.Errorf("%s source: %w", src, err))
	r.disabled[src] = true
}

// Disabled reports whether src has been switched off by SourceFailed.
func (r *Recorder) Disabled(src Source) bool {
	return r.disabled[src]
}

// SetTitle updates the meeting title.
func (r *Recorder) SetTitle(title string) {
	if r.sealed || title == "" {
		return
	}
	r.session.Title = SanitizeTitle(title)
}

// SetUserName records the local participant's display name.
func (r *Recorder) SetUserName(name string) {
	if r.sealed || name == "" {
		return
	}
	r.session.UserName = name
}

// Pending returns the in-progress turn, if any.
func (r *Recorder) Pending() (TurnBuffer, bool) {
	return r.seg.Pending()
}

// State returns the caption segmentation state.
func (r *Recorder) State() State {
	return r.seg.State()
}

// Sealed reports whether End has been called.
func (r *Recorder) Sealed() bool {
	return r.sealed
}

// Session returns a copy of the session as recorded so far.
func (r *Recorder) Session() Session {
	s := r.session
	s.Transcript = append([]Utterance(nil), r.session.Transcript...)
	s.ChatLog = append([]ChatMessage(nil), r.session.ChatLog...)
	return s
}

// End flushes the in-progress turn and seals the session.
func (r *Recorder) End() (Session, error) {
	if r.sealed {
		return Session{}, ErrSealed
	}
	if c := r.seg.Flush(); c != nil {
		r.commit(*c)
	}
	r.sealed = true
	return r.Session(), nil
}

func (r *Recorder) commit(c Commit) {
	r.session.Transcript = append(r.session.Transcript, c.Utterance)
	if r.opts.OnUtterance != nil {
		r.opts.OnUtterance(c)
	}
}
