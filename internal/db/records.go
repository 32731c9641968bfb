package db

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/meetmind/meetmind/internal/transcript"
)

// MaxFaultEntries is how many fault log records are kept.
const MaxFaultEntries = 100

// NextMeetingID returns a millisecond timestamp id that is strictly greater than
// any id this store handed out before.
func (s *Store) NextMeetingID(now time.Time) string {
	s.idMu.Lock()
	defer s.idMu.Unlock()

	id := now.UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return strconv.FormatInt(id, 10)
}

// SaveTranscript stores an assembled document under id and makes it current.
func (s *Store) SaveTranscript(id string, t SavedTranscript) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved, err := s.savedTranscripts()
	if err != nil {
		return err
	}
	if t.Title == "" {
		t.Title = "Meeting " + id
	}
	saved[id] = t

	return s.Set(Local, map[string]any{
		KeySavedTranscripts:    saved,
		KeyCurrentTranscriptID: id,
		KeyTranscriptContent:   t.Content,
	})
}

// SavedTranscripts returns every saved document keyed by meeting id.
func (s *Store) SavedTranscripts() (map[string]SavedTranscript, error) {
	return s.savedTranscripts()
}

func (s *Store) savedTranscripts() (map[string]SavedTranscript, error) {
	saved := make(map[string]SavedTranscript)
	if _, err := s.getJSON(Local, KeySavedTranscripts, &saved); err != nil {
		return nil, err
	}
	return saved, nil
}

// Transcript returns the saved document for id, or nil if there is none.
func (s *Store) Transcript(id string) (*SavedTranscript, error) {
	saved, err := s.savedTranscripts()
	if err != nil {
		return nil, err
	}
	t, ok := saved[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

// Lookup decodes a document stored directly under key, or returns nil.
func (s *Store) Lookup(key string) (*SavedTranscript, error) {
	var t SavedTranscript
	ok, err := s.getJSON(Local, key, &t)
	if err != nil || !ok {
		// A key holding some other shape is simply not a document.
		return nil, nil
	}
	return &t, nil
}

// Current returns the most recently saved document, or nil.
func (s *Store) Current() (*CurrentTranscript, error) {
	vals, err := s.Get(Local, KeyTranscriptContent, KeyCurrentTranscriptID)
	if err != nil {
		return nil, err
	}
	raw, ok := vals[KeyTranscriptContent]
	if !ok {
		return nil, nil
	}
	var cur CurrentTranscript
	if err := json.Unmarshal(raw, &cur.Content); err != nil {
		return nil, fmt.Errorf("decode %s: %w", KeyTranscriptContent, err)
	}
	if raw, ok := vals[KeyCurrentTranscriptID]; ok {
		_ = json.Unmarshal(raw, &cur.ID)
	}
	return &cur, nil
}

// MeetingList returns saved meetings, newest first.
func (s *Store) MeetingList() ([]MeetingListItem, error) {
	saved, err := s.savedTranscripts()
	if err != nil {
		return nil, err
	}
	items := make([]MeetingListItem, 0, len(saved))
	for id, t := range saved {
		title := t.Title
		if title == "" {
			title = "Meeting " + id
		}
		items = append(items, MeetingListItem{ID: id, Title: title, Date: t.Date})
	}
	sort.Slice(items, func(i, j int) bool {
		if len(items[i].ID) != len(items[j].ID) {
			return len(items[i].ID) > len(items[j].ID)
		}
		return items[i].ID > items[j].ID
	})
	return items, nil
}

// SaveSummary stores rec under summary_<meetingId>, replacing any earlier run.
func (s *Store) SaveSummary(rec SummaryRecord) error {
	return s.Set(Local, map[string]any{SummaryKeyPrefix + rec.MeetingID: rec})
}

// Summary returns the stored summary for a meeting, or nil.
func (s *Store) Summary(meetingID string) (*SummaryRecord, error) {
	var rec SummaryRecord
	ok, err := s.getJSON(Local, SummaryKeyPrefix+meetingID, &rec)
	if err != nil || !ok {
		return nil, err
	}
	return &rec, nil
}

// Summaries returns every stored summary keyed by its storage key.
func (s *Store) Summaries() (map[string]SummaryRecord, error) {
	all, err := s.GetAll(Local)
	if err != nil {
		return nil, err
	}
	out := make(map[string]SummaryRecord)
	for key, raw := range all {
		if !strings.HasPrefix(key, SummaryKeyPrefix) {
			continue
		}
		var rec SummaryRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("decode %s: %w", key, err)
		}
		out[key] = rec
	}
	return out, nil
}

// Preferences returns the synced settings with defaults applied.
func (s *Store) Preferences() (Preferences, error) {
	prefs := Preferences{OperationMode: ModeAuto, SummaryLanguage: "en"}
	vals, err := s.Get(Sync, KeyOperationMode, KeySummaryLanguage)
	if err != nil {
		return prefs, err
	}
	if raw, ok := vals[KeyOperationMode]; ok {
		_ = json.Unmarshal(raw, &prefs.OperationMode)
	}
	if raw, ok := vals[KeySummaryLanguage]; ok {
		_ = json.Unmarshal(raw, &prefs.SummaryLanguage)
	}
	return prefs, nil
}

// SetPreferences writes the non-empty fields of p.
func (s *Store) SetPreferences(p Preferences) error {
	values := map[string]any{}
	if p.OperationMode != "" {
		if p.OperationMode != ModeAuto && p.OperationMode != ModeManual {
			return fmt.Errorf("invalid operation mode %q", p.OperationMode)
		}
		values[KeyOperationMode] = p.OperationMode
	}
	if p.SummaryLanguage != "" {
		values[KeySummaryLanguage] = p.SummaryLanguage
	}
	if len(values) == 0 {
		return nil
	}
	return s.Set(Sync, values)
}

// AppendFault adds an entry to the fault log, dropping the oldest beyond MaxFaultEntries.
func (s *Store) AppendFault(e FaultEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	logs, err := s.Faults()
	if err != nil {
		return err
	}
	logs = append(logs, e)
	if len(logs) > MaxFaultEntries {
		logs = logs[len(logs)-MaxFaultEntries:]
	}
	return s.Set(Local, map[string]any{KeyErrorLogs: logs})
}

// Faults returns the fault log, oldest first.
func (s *Store) Faults() ([]FaultEntry, error) {
	var logs []FaultEntry
	if _, err := s.getJSON(Local, KeyErrorLogs, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

// SaveLiveSession writes the in-progress session so a crash loses at most the
// pending turn.
func (s *Store) SaveLiveSession(sess transcript.Session) error {
	transcriptList := sess.Transcript
	if transcriptList == nil {
		transcriptList = []transcript.Utterance{}
	}
	chat := sess.ChatLog
	if chat == nil {
		chat = []transcript.ChatMessage{}
	}
	return s.Set(Local, map[string]any{
		KeyLiveTranscript:   transcriptList,
		KeyLiveChatMessages: chat,
		KeyLiveTitle:        sess.Title,
		KeyLiveStartedAt:    sess.StartedAt,
		KeyLiveUserName:     sess.UserName,
	})
}

// LiveSession reads back the in-progress session, or nil if none was written.
func (s *Store) LiveSession() (*transcript.Session, error) {
	vals, err := s.Get(Local, KeyLiveTranscript, KeyLiveChatMessages, KeyLiveTitle, KeyLiveStartedAt, KeyLiveUserName)
	if err != nil {
		return nil, err
	}
	if len(vals) == 0 {
		return nil, nil
	}

	var sess transcript.Session
	fields := []struct {
		key string
		dst any
	}{
		{KeyLiveTranscript, &sess.Transcript},
		{KeyLiveChatMessages, &sess.ChatLog},
		{KeyLiveTitle, &sess.Title},
		{KeyLiveStartedAt, &sess.StartedAt},
		{KeyLiveUserName, &sess.UserName},
	}
	for _, f := range fields {
		raw, ok := vals[f.key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, f.dst); err != nil {
			return nil, fmt.Errorf("decode %s: %w", f.key, err)
		}
	}
	return &sess, nil
}

// ClearLiveSession removes the in-progress session keys.
func (s *Store) ClearLiveSession() error {
	return s.Delete(Local, KeyLiveTranscript, KeyLiveChatMessages, KeyLiveTitle, KeyLiveStartedAt, KeyLiveUserName)
}
