// Package summarize resolves a stored meeting document and fans it out to a
// text model as a fixed sequence of prompts.
package summarize

import (
	"context"
	"time"

	"github.com/meetmind/meetmind/internal/db"
	"github.com/meetmind/meetmind/internal/fault"
	"github.com/meetmind/meetmind/internal/logger"
)

// CurrentID asks for the most recently saved document.
const CurrentID = "current"

// TruncationMarker is appended to content cut at Policy.MaxContent.
const TruncationMarker = "\n...(truncated)"

const (
	currentTitle = "Current Meeting"
	untitled     = "Untitled Meeting"
)

// ContentStore is the subset of the store the dispatcher reads and writes.
type ContentStore interface {
	Transcript(id string) (*db.SavedTranscript, error)
	Lookup(key string) (*db.SavedTranscript, error)
	Current() (*db.CurrentTranscript, error)
	SaveSummary(rec db.SummaryRecord) error
}

// FaultLogger receives per-section failures. Calls must not block.
type FaultLogger interface {
	LogFault(code string, err error)
}

// Policy bounds a dispatch.
type Policy struct {
	MinContent int
	MaxContent int
	Pacing     time.Duration
	Language   string
}

// DefaultPolicy returns the standard bounds.
func DefaultPolicy() Policy {
	return Policy{MinContent: 50, MaxContent: 10000, Pacing: time.Second, Language: "en"}
}

// SummaryResult is the outcome of one dispatch. Sections has an entry for
// every kind; failed kinds hold a placeholder and are listed in Failed.
type SummaryResult struct {
	MeetingID string            `json:"meetingId"`
	Title     string            `json:"title"`
	Date      string            `json:"date"`
	Sections  map[string]string `json:"summary"`
	Kinds     []string          `json:"kinds"`
	Failed    []string          `json:"failed,omitempty"`
	Truncated bool              `json:"truncated,omitempty"`
}

// Record converts the result to its stored form.
func (r *SummaryResult) Record() db.SummaryRecord {
	return db.SummaryRecord{
		MeetingID: r.MeetingID,
		Title:     r.Title,
		Date:      r.Date,
		Summary:   r.Sections,
		Kinds:     r.Kinds,
	}
}

// Dispatcher produces and stores multi-section summaries.
type Dispatcher struct {
	Store    ContentStore
	Endpoint Endpoint
	Kinds    []PromptKind
	Policy   Policy
	Faults   FaultLogger
	Now      func() time.Time
	// Sleep overrides the pacing wait, for tests.
	Sleep func(ctx context.Context, d time.Duration) error
}

// NewDispatcher returns a dispatcher using DefaultKinds.
func NewDispatcher(store ContentStore, endpoint Endpoint, policy Policy) *Dispatcher {
	return &Dispatcher{
		Store:    store,
		Endpoint: endpoint,
		Kinds:    DefaultKinds,
		Policy:   policy,
		Now:      time.Now,
	}
}

type resolved struct {
	content string
	title   string
	date    string
}

// resolve finds content for id: the saved map, then a direct key, then the
// current document when id is "current" or matches its id. The first step
// that finds an entry decides the outcome.
func (d *Dispatcher) resolve(id string) (*resolved, error) {
	t, err := d.Store.Transcript(id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		if t, err = d.Store.Lookup(id); err != nil {
			return nil, err
		}
	}
	if t != nil {
		// A matching entry ends the search even when it is empty.
		if t.Content == "" {
			return nil, ErrContentNotFound
		}
		return &resolved{content: t.Content, title: t.Title, date: t.Date}, nil
	}

	cur, err := d.Store.Current()
	if err != nil {
		return nil, err
	}
	if cur != nil && cur.Content != "" && (id == CurrentID || id == cur.ID) {
		return &resolved{content: cur.Content, title: currentTitle}, nil
	}
	return nil, ErrContentNotFound
}

// Summarize dispatches every kind for the meeting id and stores the result as
// summary_<id>. Only resolution failures are returned as errors; per-kind
// failures become placeholder sections.
func (d *Dispatcher) Summarize(ctx context.Context, id string) (*SummaryResult, error) {
	doc, err := d.resolve(id)
	if err != nil {
		return nil, err
	}

	content := []rune(doc.content)
	if d.Policy.MinContent > 0 && len(content) < d.Policy.MinContent {
		return nil, ErrContentTooShort
	}
	truncated := false
	if d.Policy.MaxContent > 0 && len(content) > d.Policy.MaxContent {
		doc.content = string(content[:d.Policy.MaxContent]) + TruncationMarker
		truncated = true
	}

	now := d.now()
	result := &SummaryResult{
		MeetingID: id,
		Title:     doc.title,
		Date:      doc.date,
		Sections:  make(map[string]string, len(d.Kinds)),
		Truncated: truncated,
	}
	if result.Title == "" {
		result.Title = untitled
	}
	if result.Date == "" {
		result.Date = now.UTC().Format(time.RFC3339)
	}

	log := logger.With("summarize").With().Str("meeting_id", id).Logger()
	log.Info().Int("kinds", len(d.Kinds)).Bool("truncated", truncated).Msg("dispatch started")

	fail := func(kind string, err error) {
		result.Sections[kind] = Placeholder(err)
		result.Failed = append(result.Failed, kind)
		log.Warn().Str("kind", kind).Err(err).Msg("section failed")
		if d.Faults != nil {
			d.Faults.LogFault(fault.CodeSummarization, err)
		}
	}

	tasks := make([]Task, len(d.Kinds))
	for i, kind := range d.Kinds {
		result.Kinds = append(result.Kinds, kind.Name)
		tasks[i] = func(ctx context.Context) {
			text, err := d.Endpoint.Generate(ctx, BuildPrompt(kind, d.Policy.Language, doc.content))
			if err != nil {
				fail(kind.Name, err)
				return
			}
			result.Sections[kind.Name] = text
			log.Debug().Str("kind", kind.Name).Int("chars", len(text)).Msg("section done")
		}
	}

	sched := Scheduler{Pacing: d.Policy.Pacing, Sleep: d.Sleep}
	started, err := sched.Run(ctx, tasks)
	if err != nil {
		for _, kind := range d.Kinds[started:] {
			fail(kind.Name, err)
		}
	}

	if err := d.Store.SaveSummary(result.Record()); err != nil {
		return result, err
	}
	log.Info().Int("failed", len(result.Failed)).Msg("summary saved")
	return result, nil
}

func (d *Dispatcher) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// SummarizeIn is Summarize with the response language overridden.
func (d *Dispatcher) SummarizeIn(ctx context.Context, id, language string) (*SummaryResult, error) {
	c := *d
	if language != "" {
		c.Policy.Language = language
	}
	return c.Summarize(ctx, id)
}
