package mcpserver

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/meetmind/meetmind/internal/db"
	"github.com/meetmind/meetmind/internal/summarize"
)

type stubSummarizer struct {
	err error
}

func (s stubSummarizer) SummarizeIn(ctx context.Context, id, language string) (*summarize.SummaryResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &summarize.SummaryResult{
		MeetingID: id,
		Title:     "Standup",
		Sections:  map[string]string{summarize.KindTasks: "- Ada: ship (" + language + ")"},
		Kinds:     []string{summarize.KindTasks},
	}, nil
}

func createTestTools(t *testing.T) *Tools {
	t.Helper()
	store, err := db.Open(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return &Tools{Store: store}
}

func call(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatal("empty result")
	}
	tc, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content = %T, want TextContent", res.Content[0])
	}
	return tc.Text
}

func TestListAndGetTranscript(t *testing.T) {
	tools := createTestTools(t)
	ctx := context.Background()

	res, _ := tools.ListMeetings(ctx, call(nil))
	if got := resultText(t, res); got != "No saved meetings." {
		t.Errorf("empty list = %q", got)
	}

	tools.Store.SaveTranscript("5", db.SavedTranscript{Content: "Ada (t)\nhi\n", Title: "Sync"})

	res, _ = tools.ListMeetings(ctx, call(nil))
	if got := resultText(t, res); !strings.Contains(got, "5\tSync") {
		t.Errorf("list = %q", got)
	}

	res, _ = tools.GetTranscript(ctx, call(map[string]any{"meeting_id": "5"}))
	if got := resultText(t, res); !strings.Contains(got, "hi") {
		t.Errorf("transcript = %q", got)
	}

	res, _ = tools.GetTranscript(ctx, call(map[string]any{"meeting_id": "current"}))
	if got := resultText(t, res); !strings.Contains(got, "hi") {
		t.Errorf("current transcript = %q", got)
	}

	res, _ = tools.GetTranscript(ctx, call(map[string]any{"meeting_id": "9"}))
	if !res.IsError {
		t.Error("missing meeting should be an error result")
	}

	res, _ = tools.GetTranscript(ctx, call(nil))
	if !res.IsError {
		t.Error("missing argument should be an error result")
	}
}

func TestSummarizeAndGetSummary(t *testing.T) {
	tools := createTestTools(t)
	ctx := context.Background()

	res, _ := tools.SummarizeMeeting(ctx, call(map[string]any{"meeting_id": "5"}))
	if !res.IsError {
		t.Error("summarize without a summarizer should fail")
	}

	tools.Summarizer = stubSummarizer{}
	res, _ = tools.SummarizeMeeting(ctx, call(map[string]any{"meeting_id": "5"}))
	if got := resultText(t, res); !strings.Contains(got, "## Tasks") || !strings.Contains(got, "(en)") {
		t.Errorf("summary = %q", got)
	}

	tools.Summarizer = stubSummarizer{err: summarize.ErrContentTooShort}
	res, _ = tools.SummarizeMeeting(ctx, call(map[string]any{"meeting_id": "5"}))
	if !res.IsError || !strings.Contains(resultText(t, res), "too short") {
		t.Errorf("expected too-short error, got %+v", res)
	}

	tools.Store.SaveSummary(db.SummaryRecord{MeetingID: "5", Title: "Sync", Summary: map[string]string{"key_topics": "launch"}})
	res, _ = tools.GetSummary(ctx, call(map[string]any{"meeting_id": "5"}))
	if got := resultText(t, res); !strings.Contains(got, "## Key Topics") {
		t.Errorf("stored summary = %q", got)
	}
}

func TestRecentErrors(t *testing.T) {
	tools := createTestTools(t)
	for i := 0; i < 3; i++ {
		tools.Store.AppendFault(db.FaultEntry{ID: string(rune('a' + i)), Source: "005", Message: errors.New("x").Error()})
	}

	res, _ := tools.RecentErrors(context.Background(), call(map[string]any{"limit": float64(2)}))
	got := resultText(t, res)
	if strings.Contains(got, `"id": "a"`) || !strings.Contains(got, `"id": "c"`) {
		t.Errorf("errors = %s", got)
	}
}

func TestNewRegistersTools(t *testing.T) {
	s := New("test", createTestTools(t))
	if s == nil {
		t.Fatal("nil server")
	}
}
