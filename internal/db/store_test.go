package db

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/meetmind/meetmind/internal/transcript"
)

// createTestStore opens an in-memory store with the meetmind schema.
func createTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSetGetScopes(t *testing.T) {
	store := createTestStore(t)

	if err := store.Set(Local, map[string]any{"a": 1, "b": "two"}); err != nil {
		t.Fatalf("Set local: %v", err)
	}
	if err := store.Set(Sync, map[string]any{"a": "sync"}); err != nil {
		t.Fatalf("Set sync: %v", err)
	}

	vals, err := store.Get(Local, "a", "b", "missing")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(vals) != 2 {
		t.Fatalf("got %d values, want 2", len(vals))
	}
	if string(vals["a"]) != "1" || string(vals["b"]) != `"two"` {
		t.Errorf("values = %s, %s", vals["a"], vals["b"])
	}

	all, err := store.GetAll(Sync)
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if len(all) != 1 || string(all["a"]) != `"sync"` {
		t.Errorf("sync scope = %v", all)
	}
}

func TestSetOverwrites(t *testing.T) {
	store := createTestStore(t)

	store.Set(Local, map[string]any{"k": "old"})
	store.Set(Local, map[string]any{"k": "new"})

	vals, _ := store.Get(Local, "k")
	var got string
	json.Unmarshal(vals["k"], &got)
	if got != "new" {
		t.Errorf("k = %q, want new", got)
	}
}

func TestSaveTranscriptAndMeetingList(t *testing.T) {
	store := createTestStore(t)

	now := time.Date(2026, 10, 17, 15, 0, 0, 0, time.UTC)
	first := store.NextMeetingID(now)
	second := store.NextMeetingID(now)
	if first == second {
		t.Fatalf("ids should be unique, both %s", first)
	}

	if err := store.SaveTranscript(first, SavedTranscript{Content: "one", Title: "Standup", Date: "d1"}); err != nil {
		t.Fatalf("SaveTranscript: %v", err)
	}
	if err := store.SaveTranscript(second, SavedTranscript{Content: "two", Date: "d2"}); err != nil {
		t.Fatalf("SaveTranscript: %v", err)
	}

	list, err := store.MeetingList()
	if err != nil {
		t.Fatalf("MeetingList: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("got %d meetings, want 2", len(list))
	}
	if list[0].ID != second {
		t.Errorf("newest first: list[0] = %s, want %s", list[0].ID, second)
	}
	if list[0].Title != "Meeting "+second {
		t.Errorf("default title = %q", list[0].Title)
	}

	cur, err := store.Current()
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if cur == nil || cur.ID != second || cur.Content != "two" {
		t.Errorf("current = %+v", cur)
	}

	got, err := store.Transcript(first)
	if err != nil || got == nil || got.Content != "one" {
		t.Errorf("Transcript(%s) = %+v, %v", first, got, err)
	}
	missing, err := store.Transcript("nope")
	if err != nil || missing != nil {
		t.Errorf("Transcript(nope) = %+v, %v", missing, err)
	}
}

func TestSummariesReplaceWholesale(t *testing.T) {
	store := createTestStore(t)

	store.SaveSummary(SummaryRecord{MeetingID: "1", Summary: map[string]string{"general_summary": "a", "tasks": "b"}})
	store.SaveSummary(SummaryRecord{MeetingID: "1", Summary: map[string]string{"general_summary": "c"}})
	store.SaveSummary(SummaryRecord{MeetingID: "2", Summary: map[string]string{"general_summary": "d"}})

	rec, err := store.Summary("1")
	if err != nil || rec == nil {
		t.Fatalf("Summary: %+v, %v", rec, err)
	}
	if len(rec.Summary) != 1 || rec.Summary["general_summary"] != "c" {
		t.Errorf("summary = %v, want only the second run", rec.Summary)
	}

	all, err := store.Summaries()
	if err != nil {
		t.Fatalf("Summaries: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("got %d summaries, want 2", len(all))
	}
	if _, ok := all["summary_2"]; !ok {
		t.Error("summaries should be keyed by storage key")
	}
}

func TestPreferencesDefaults(t *testing.T) {
	store := createTestStore(t)

	prefs, err := store.Preferences()
	if err != nil {
		t.Fatalf("Preferences: %v", err)
	}
	if prefs.OperationMode != ModeAuto || prefs.SummaryLanguage != "en" {
		t.Errorf("defaults = %+v", prefs)
	}

	if err := store.SetPreferences(Preferences{OperationMode: ModeManual}); err != nil {
		t.Fatalf("SetPreferences: %v", err)
	}
	prefs, _ = store.Preferences()
	if prefs.OperationMode != ModeManual || prefs.SummaryLanguage != "en" {
		t.Errorf("after update = %+v", prefs)
	}

	if err := store.SetPreferences(Preferences{OperationMode: "sometimes"}); err == nil {
		t.Error("expected error for invalid operation mode")
	}
}

func TestFaultLogIsCapped(t *testing.T) {
	store := createTestStore(t)

	for i := 0; i < MaxFaultEntries+5; i++ {
		if err := store.AppendFault(FaultEntry{ID: fmt.Sprint(i), Source: "005"}); err != nil {
			t.Fatalf("AppendFault: %v", err)
		}
	}

	logs, err := store.Faults()
	if err != nil {
		t.Fatalf("Faults: %v", err)
	}
	if len(logs) != MaxFaultEntries {
		t.Fatalf("got %d entries, want %d", len(logs), MaxFaultEntries)
	}
	if logs[0].ID != "5" {
		t.Errorf("oldest kept = %s, want 5", logs[0].ID)
	}
}

func TestLiveSessionRoundTrip(t *testing.T) {
	store := createTestStore(t)

	if sess, err := store.LiveSession(); err != nil || sess != nil {
		t.Fatalf("LiveSession on empty store = %+v, %v", sess, err)
	}

	in := transcript.Session{
		Title:      "Retro",
		UserName:   "Alex",
		Transcript: []transcript.Utterance{{Speaker: "Ada", Timestamp: "t", Text: "hi"}},
	}
	if err := store.SaveLiveSession(in); err != nil {
		t.Fatalf("SaveLiveSession: %v", err)
	}

	out, err := store.LiveSession()
	if err != nil || out == nil {
		t.Fatalf("LiveSession: %+v, %v", out, err)
	}
	if out.Title != "Retro" || len(out.Transcript) != 1 || out.Transcript[0].Speaker != "Ada" {
		t.Errorf("live session = %+v", out)
	}

	if err := store.ClearLiveSession(); err != nil {
		t.Fatalf("ClearLiveSession: %v", err)
	}
	if sess, _ := store.LiveSession(); sess != nil {
		t.Errorf("live session after clear = %+v", sess)
	}
}
