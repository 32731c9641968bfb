// Package mcpserver exposes saved meetings and summaries as MCP tools over stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/meetmind/meetmind/internal/db"
	"github.com/meetmind/meetmind/internal/summarize"
)

// Summarizer runs a summarization dispatch in the given language.
type Summarizer interface {
	SummarizeIn(ctx context.Context, id, language string) (*summarize.SummaryResult, error)
}

// Tools holds the collaborators the tool handlers read from.
type Tools struct {
	Store      *db.Store
	Summarizer Summarizer
}

// New registers every tool on a fresh MCP server.
func New(version string, tools *Tools) *server.MCPServer {
	s := server.NewMCPServer("meetmind", version, server.WithToolCapabilities(false))

	s.AddTool(mcp.NewTool("list_meetings",
		mcp.WithDescription("List saved meetings, newest first"),
	), tools.ListMeetings)

	s.AddTool(mcp.NewTool("get_transcript",
		mcp.WithDescription("Get the assembled transcript of a saved meeting"),
		mcp.WithString("meeting_id", mcp.Required(), mcp.Description(`Meeting id, or "current" for the latest`)),
	), tools.GetTranscript)

	s.AddTool(mcp.NewTool("get_summary",
		mcp.WithDescription("Get the stored summary sections of a meeting"),
		mcp.WithString("meeting_id", mcp.Required(), mcp.Description("Meeting id")),
	), tools.GetSummary)

	s.AddTool(mcp.NewTool("summarize_meeting",
		mcp.WithDescription("Summarize a meeting now and store the result. Takes several seconds."),
		mcp.WithString("meeting_id", mcp.Required(), mcp.Description(`Meeting id, or "current" for the latest`)),
	), tools.SummarizeMeeting)

	s.AddTool(mcp.NewTool("recent_errors",
		mcp.WithDescription("List recent capture and summarization faults"),
		mcp.WithNumber("limit", mcp.Description("Maximum entries to return (default 20)")),
	), tools.RecentErrors)

	return s
}

// ServeStdio runs the server on stdin/stdout until EOF.
func ServeStdio(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

func (t *Tools) ListMeetings(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	list, err := t.Store.MeetingList()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(list) == 0 {
		return mcp.NewToolResultText("No saved meetings."), nil
	}
	var b strings.Builder
	for _, m := range list {
		fmt.Fprintf(&b, "%s\t%s\t%s\n", m.ID, m.Title, m.Date)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (t *Tools) GetTranscript(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("meeting_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if id == summarize.CurrentID {
		cur, err := t.Store.Current()
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if cur == nil {
			return mcp.NewToolResultError("no meeting saved yet"), nil
		}
		return mcp.NewToolResultText(cur.Content), nil
	}

	saved, err := t.Store.Transcript(id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if saved == nil {
		return mcp.NewToolResultError(fmt.Sprintf("meeting %s not found", id)), nil
	}
	return mcp.NewToolResultText(saved.Content), nil
}

func (t *Tools) GetSummary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("meeting_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rec, err := t.Store.Summary(id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if rec == nil {
		return mcp.NewToolResultError(fmt.Sprintf("no summary for meeting %s", id)), nil
	}
	return mcp.NewToolResultText(summarize.FormatRecord(*rec)), nil
}

func (t *Tools) SummarizeMeeting(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if t.Summarizer == nil {
		return mcp.NewToolResultError("summarization unavailable: no API key configured"), nil
	}
	id, err := req.RequireString("meeting_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	prefs, _ := t.Store.Preferences()

	res, err := t.Summarizer.SummarizeIn(ctx, id, prefs.SummaryLanguage)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(summarize.FormatRecord(res.Record())), nil
}

func (t *Tools) RecentErrors(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := int(req.GetFloat("limit", 20))
	logs, err := t.Store.Faults()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if limit > 0 && len(logs) > limit {
		logs = logs[len(logs)-limit:]
	}
	data, err := json.MarshalIndent(logs, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
