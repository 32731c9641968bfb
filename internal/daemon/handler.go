package daemon

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/meetmind/meetmind/internal/db"
	"github.com/meetmind/meetmind/internal/fault"
	"github.com/meetmind/meetmind/internal/logger"
	"github.com/meetmind/meetmind/internal/summarize"
	"github.com/meetmind/meetmind/internal/transcript"
)

var (
	errNoSession     = errors.New("no active session")
	errNoSummarizer  = errors.New("summarization unavailable: no API key configured")
	errUnknownSource = errors.New("unknown source, want captions or chat")
)

// Summarizer produces and stores a summary for a meeting id.
type Summarizer interface {
	SummarizeIn(ctx context.Context, id, language string) (*summarize.SummaryResult, error)
}

// Broadcaster fans events out to subscribers without blocking.
type Broadcaster interface {
	Broadcast(ev Event)
}

// HandlerOptions wires a Handler to its collaborators.
type HandlerOptions struct {
	Store           *db.Store
	Faults          transcript.FaultLogger
	Summarizer      Summarizer
	Events          Broadcaster
	ShrinkThreshold int
	Now             func() time.Time
}

// Handler executes commands against the single recording session. Every
// transport calls Handle, which serializes commands so caption batches never
// interleave.
type Handler struct {
	mu   sync.Mutex
	opts HandlerOptions
	log  zerolog.Logger

	rec       *transcript.Recorder
	meetingID string

	bg sync.WaitGroup
}

type nopBroadcaster struct{}

func (nopBroadcaster) Broadcast(Event) {}

type nopFaults struct{}

func (nopFaults) LogFault(string, error) {}

// NewHandler returns a Handler with no active session.
func NewHandler(opts HandlerOptions) *Handler {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Events == nil {
		opts.Events = nopBroadcaster{}
	}
	if opts.Faults == nil {
		opts.Faults = nopFaults{}
	}
	return &Handler{opts: opts, log: logger.With("daemon")}
}

func fail(err error) Response {
	return Response{OK: false, Error: err.Error()}
}

// Handle runs one command and returns its response. It never panics on bad input.
func (h *Handler) Handle(ctx context.Context, cmd Command) Response {
	h.mu.Lock()
	defer h.mu.Unlock()

	switch cmd.Cmd {
	case CmdStart:
		return h.start(cmd)
	case CmdStop:
		return h.stop()
	case CmdCaption:
		return h.captions(cmd)
	case CmdChat:
		return h.chat(cmd)
	case CmdSourceError:
		return h.sourceError(cmd)
	case CmdSetTitle:
		return h.setTitle(cmd)
	case CmdSetUser:
		return h.setUser(cmd)
	case CmdStatus:
		return h.status()
	case CmdSubscribe:
		return Response{OK: true, Status: "subscribed"}
	case CmdGetTranscript:
		return h.getTranscript()
	case CmdSaveTranscript:
		return h.saveTranscript(cmd)
	case CmdSummarize:
		return h.summarize(ctx, cmd)
	case CmdGetSummaries:
		sums, err := h.opts.Store.Summaries()
		if err != nil {
			return fail(err)
		}
		return Response{OK: true, Summaries: sums}
	case CmdGetMeetingList:
		list, err := h.opts.Store.MeetingList()
		if err != nil {
			return fail(err)
		}
		if list == nil {
			list = []db.MeetingListItem{}
		}
		return Response{OK: true, Meetings: list}
	case CmdGetErrors:
		logs, err := h.opts.Store.Faults()
		if err != nil {
			return fail(err)
		}
		return Response{OK: true, Errors: logs}
	case CmdGetPreferences:
		prefs, err := h.opts.Store.Preferences()
		if err != nil {
			return fail(err)
		}
		return Response{OK: true, Preferences: &prefs}
	case CmdSetPreferences:
		if cmd.Preferences == nil {
			return fail(errors.New("preferences required"))
		}
		if err := h.opts.Store.SetPreferences(*cmd.Preferences); err != nil {
			return fail(err)
		}
		prefs, err := h.opts.Store.Preferences()
		if err != nil {
			return fail(err)
		}
		return Response{OK: true, Preferences: &prefs}
	default:
		return fail(fmt.Errorf("unknown command %q", cmd.Cmd))
	}
}

// Recording reports whether a session is active.
func (h *Handler) Recording() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.rec != nil
}

// Shutdown ends and saves the active session, then waits for background
// summarization runs to finish.
func (h *Handler) Shutdown() {
	h.mu.Lock()
	if h.rec != nil {
		if _, err := h.endSession(); err != nil && !errors.Is(err, transcript.ErrEmptySession) {
			h.log.Error().Err(err).Msg("save session on shutdown")
		}
	}
	h.mu.Unlock()
	h.bg.Wait()
}

func (h *Handler) start(cmd Command) Response {
	if h.rec != nil {
		// A new meeting implies the previous one ended.
		if _, err := h.endSession(); err != nil && !errors.Is(err, transcript.ErrEmptySession) {
			h.log.Warn().Err(err).Msg("implicit end of previous session")
		}
	}

	now := h.opts.Now()
	id := h.opts.Store.NextMeetingID(now)

	var rec *transcript.Recorder
	rec = transcript.NewRecorder(transcript.RecorderOptions{
		Title:           cmd.Title,
		UserName:        cmd.User,
		ShrinkThreshold: h.opts.ShrinkThreshold,
		Now:             h.opts.Now,
		Faults:          h.opts.Faults,
		OnUtterance: func(c transcript.Commit) {
			h.persistLive(rec)
			h.opts.Events.Broadcast(Event{
				Event:     EventUtterance,
				MeetingID: id,
				Speaker:   c.Utterance.Speaker,
				Text:      c.Utterance.Text,
				Timestamp: c.Utterance.Timestamp,
				Reason:    c.Reason.String(),
			})
		},
		OnChat: func(m transcript.ChatMessage) {
			h.persistLive(rec)
			h.opts.Events.Broadcast(Event{
				Event:     EventChat,
				MeetingID: id,
				Speaker:   m.Speaker,
				Text:      m.Text,
				Timestamp: m.Timestamp,
			})
		},
	})
	h.rec = rec
	h.meetingID = id
	h.persistLive(rec)

	prefs, err := h.opts.Store.Preferences()
	if err != nil {
		h.log.Warn().Err(err).Msg("read preferences")
	}
	sess := rec.Session()
	h.log.Info().Str("meeting_id", id).Str("title", sess.Title).Msg("session started")
	h.opts.Events.Broadcast(Event{Event: EventStatus, MeetingID: id, Title: sess.Title, Recording: BoolPtr(true)})

	return Response{
		OK:           true,
		MeetingID:    id,
		Recording:    BoolPtr(true),
		AutoCaptions: BoolPtr(prefs.OperationMode != db.ModeManual),
		Title:        sess.Title,
		State:        rec.State().String(),
	}
}

func (h *Handler) stop() Response {
	if h.rec == nil {
		return fail(errNoSession)
	}
	id, err := h.endSession()
	if err != nil {
		if errors.Is(err, transcript.ErrEmptySession) {
			return Response{OK: true, Status: "empty", Recording: BoolPtr(false)}
		}
		return fail(err)
	}
	return Response{OK: true, Status: "saved", MeetingID: id, Recording: BoolPtr(false)}
}

// endSession flushes, assembles and saves the active session. The session is
// discarded even when saving fails.
func (h *Handler) endSession() (string, error) {
	rec, id := h.rec, h.meetingID
	h.rec, h.meetingID = nil, ""
	defer h.opts.Events.Broadcast(Event{Event: EventStatus, MeetingID: id, Recording: BoolPtr(false)})

	sess, err := rec.End()
	if err != nil {
		return "", err
	}
	sess.ID = id

	if err := h.opts.Store.ClearLiveSession(); err != nil {
		h.opts.Faults.LogFault(fault.CodeStorage, err)
	}

	content, err := transcript.Assemble(sess)
	if err != nil {
		h.log.Info().Str("meeting_id", id).Msg("session ended with nothing to save")
		return "", err
	}
	if err := h.save(id, content, sess.Title, sess.StartedAt); err != nil {
		return "", err
	}
	h.log.Info().Str("meeting_id", id).Int("utterances", len(sess.Transcript)).Int("chat", len(sess.ChatLog)).Msg("session saved")
	return id, nil
}

func (h *Handler) save(id, content, title, date string) error {
	if err := h.opts.Store.SaveTranscript(id, db.SavedTranscript{Content: content, Title: title, Date: date}); err != nil {
		return fmt.Errorf("save transcript: %w", err)
	}
	h.opts.Events.Broadcast(Event{Event: EventSaved, MeetingID: id, Title: title})
	return nil
}

func (h *Handler) persistLive(rec *transcript.Recorder) {
	if err := h.opts.Store.SaveLiveSession(rec.Session()); err != nil {
		h.opts.Faults.LogFault(fault.CodeStorage, err)
	}
}

func (h *Handler) captions(cmd Command) Response {
	if h.rec == nil {
		return fail(errNoSession)
	}
	commits, err := h.rec.ObserveCaptions(ToBatch(cmd.Captions))
	if err != nil {
		return fail(err)
	}
	if buf, ok := h.rec.Pending(); ok {
		h.opts.Events.Broadcast(Event{
			Event:     EventPartial,
			MeetingID: h.meetingID,
			Speaker:   buf.Speaker,
			Text:      buf.Text,
			Timestamp: buf.Timestamp,
		})
	}
	return Response{OK: true, Committed: IntPtr(len(commits)), State: h.rec.State().String()}
}

func (h *Handler) chat(cmd Command) Response {
	if h.rec == nil {
		return fail(errNoSession)
	}
	added, err := h.rec.ObserveChat(ToChat(cmd.Chat))
	if err != nil {
		return fail(err)
	}
	return Response{OK: true, Committed: IntPtr(len(added))}
}

func (h *Handler) sourceError(cmd Command) Response {
	if h.rec == nil {
		return fail(errNoSession)
	}
	src := transcript.Source(cmd.Source)
	if src != transcript.CaptionSource && src != transcript.ChatSource {
		return fail(errUnknownSource)
	}
	msg := cmd.Message
	if msg == "" {
		msg = "source unavailable"
	}
	h.rec.SourceFailed(src, errors.New(msg))
	return h.status()
}

func (h *Handler) setTitle(cmd Command) Response {
	if h.rec == nil {
		return fail(errNoSession)
	}
	h.rec.SetTitle(cmd.Title)
	h.persistLive(h.rec)
	title := h.rec.Session().Title
	h.opts.Events.Broadcast(Event{Event: EventStatus, MeetingID: h.meetingID, Title: title, Recording: BoolPtr(true)})
	return Response{OK: true, Title: title}
}

func (h *Handler) setUser(cmd Command) Response {
	if h.rec == nil {
		return fail(errNoSession)
	}
	if cmd.User == "" {
		return fail(errors.New("user required"))
	}
	h.rec.SetUserName(cmd.User)
	h.persistLive(h.rec)
	return Response{OK: true}
}

func (h *Handler) status() Response {
	if h.rec == nil {
		return Response{OK: true, Recording: BoolPtr(false), State: transcript.Idle.String()}
	}
	sess := h.rec.Session()
	resp := Response{
		OK:           true,
		Recording:    BoolPtr(true),
		MeetingID:    h.meetingID,
		State:        h.rec.State().String(),
		Title:        sess.Title,
		Utterances:   IntPtr(len(sess.Transcript)),
		ChatMessages: IntPtr(len(sess.ChatLog)),
	}
	for _, src := range []transcript.Source{transcript.CaptionSource, transcript.ChatSource} {
		if h.rec.Disabled(src) {
			resp.Disabled = append(resp.Disabled, string(src))
		}
	}
	return resp
}

func (h *Handler) getTranscript() Response {
	saved, err := h.opts.Store.SavedTranscripts()
	if err != nil {
		return fail(err)
	}
	resp := Response{OK: true, SavedTranscripts: saved}
	cur, err := h.opts.Store.Current()
	if err != nil {
		return fail(err)
	}
	if cur != nil {
		resp.Content = cur.Content
		resp.MeetingID = cur.ID
	}
	if h.rec != nil {
		sess := h.rec.Session()
		sess.ID = h.meetingID
		resp.Session = &sess
	}
	return resp
}

// saveTranscript stores explicit content, or else the active or recovered
// live session, without ending anything.
func (h *Handler) saveTranscript(cmd Command) Response {
	now := h.opts.Now()

	if cmd.Content != "" {
		id := cmd.MeetingID
		if id == "" {
			id = h.opts.Store.NextMeetingID(now)
		}
		if err := h.save(id, cmd.Content, cmd.Title, transcript.FormatTimestamp(now)); err != nil {
			return fail(err)
		}
		return Response{OK: true, Status: "saved", MeetingID: id}
	}

	var sess transcript.Session
	id := h.meetingID
	if h.rec != nil {
		sess = h.rec.Session()
	} else {
		live, err := h.opts.Store.LiveSession()
		if err != nil {
			return fail(err)
		}
		if live == nil {
			return fail(transcript.ErrEmptySession)
		}
		sess = *live
		id = h.opts.Store.NextMeetingID(now)
	}
	if cmd.Title != "" {
		sess.Title = transcript.SanitizeTitle(cmd.Title)
	}

	content, err := transcript.Assemble(sess)
	if err != nil {
		return fail(err)
	}
	if err := h.save(id, content, sess.Title, sess.StartedAt); err != nil {
		return fail(err)
	}
	if h.rec == nil {
		if err := h.opts.Store.ClearLiveSession(); err != nil {
			h.opts.Faults.LogFault(fault.CodeStorage, err)
		}
	}
	return Response{OK: true, Status: "saved", MeetingID: id}
}

// summarize answers immediately and runs the dispatch in the background.
func (h *Handler) summarize(ctx context.Context, cmd Command) Response {
	if h.opts.Summarizer == nil {
		return fail(errNoSummarizer)
	}
	id := cmd.MeetingID
	if id == "" {
		id = summarize.CurrentID
	}
	prefs, err := h.opts.Store.Preferences()
	if err != nil {
		h.log.Warn().Err(err).Msg("read preferences")
	}

	bgCtx := context.WithoutCancel(ctx)
	h.bg.Add(1)
	go func() {
		defer h.bg.Done()
		res, err := h.opts.Summarizer.SummarizeIn(bgCtx, id, prefs.SummaryLanguage)
		if err != nil {
			h.opts.Faults.LogFault(fault.CodeSummarization, err)
			h.opts.Events.Broadcast(Event{Event: EventSummarizationError, MeetingID: id, Message: err.Error()})
			return
		}
		rec := res.Record()
		h.opts.Events.Broadcast(Event{Event: EventSummaryReady, MeetingID: id, Title: res.Title, Summary: &rec})
	}()

	return Response{OK: true, Status: "started", MeetingID: id}
}

// Wait blocks until background summarization runs finish.
func (h *Handler) Wait() {
	h.bg.Wait()
}
