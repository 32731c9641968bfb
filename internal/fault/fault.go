// Package fault records non-fatal errors to the log and the persistent fault log.
package fault

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/meetmind/meetmind/internal/db"
	"github.com/meetmind/meetmind/internal/logger"
)

// Codes not owned by the transcript package.
const (
	CodeSummarization = "summarization_error"
	CodeStorage       = "storage_error"
)

// Sink is where fault entries are persisted.
type Sink interface {
	AppendFault(e db.FaultEntry) error
}

// detailer is implemented by errors that carry extra detail for the log.
type detailer interface {
	FaultDetails() string
}

// Log writes fault entries in the background so callers never block on storage.
type Log struct {
	sink Sink
	now  func() time.Time
	log  zerolog.Logger

	entries chan db.FaultEntry
	wg      sync.WaitGroup
	once    sync.Once
}

// New starts a Log writing to sink. Close must be called to drain it.
func New(sink Sink) *Log {
	l := &Log{
		sink:    sink,
		now:     time.Now,
		log:     logger.With("fault"),
		entries: make(chan db.FaultEntry, 64),
	}
	l.wg.Add(1)
	go l.run()
	return l
}

func (l *Log) run() {
	defer l.wg.Done()
	for e := range l.entries {
		if l.sink == nil {
			continue
		}
		if err := l.sink.AppendFault(e); err != nil {
			l.log.Warn().Err(err).Str("fault_id", e.ID).Msg("persist fault")
		}
	}
}

// LogFault records err under code. It is safe to call from any goroutine.
func (l *Log) LogFault(code string, err error) {
	if err == nil {
		return
	}
	e := db.FaultEntry{
		ID:        uuid.NewString(),
		Source:    code,
		Message:   err.Error(),
		Timestamp: l.now().UTC(),
	}
	var d detailer
	if errors.As(err, &d) {
		e.Details = d.FaultDetails()
	}

	l.log.Warn().Str("code", code).Str("fault_id", e.ID).Err(err).Msg("fault")

	select {
	case l.entries <- e:
	default:
		l.log.Warn().Str("fault_id", e.ID).Msg("fault queue full, dropping")
	}
}

// Close stops the writer after pending entries are persisted.
func (l *Log) Close() {
	l.once.Do(func() {
		close(l.entries)
	})
	l.wg.Wait()
}
