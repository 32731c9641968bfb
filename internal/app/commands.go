package app

import (
	"sort"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/meetmind/meetmind/internal/daemon"
	"github.com/meetmind/meetmind/internal/db"
	"github.com/meetmind/meetmind/internal/summarize"
)

const (
	transientErrorTTL = 5 * time.Second
	maxBackoffShift   = 4 // 16s
)

// connectCmd opens two daemon connections: one for commands and one that is
// turned into an event stream.
func connectCmd() tea.Cmd {
	return func() tea.Msg {
		sock := daemon.SocketPath()
		client, err := daemon.Connect(sock)
		if err != nil {
			return DaemonConnectErrorMsg{Err: err}
		}
		events, err := daemon.Connect(sock)
		if err != nil {
			client.Close()
			return DaemonConnectErrorMsg{Err: err}
		}
		return DaemonConnectedMsg{Client: client, EvClient: events}
	}
}

// subscribeCmd switches evClient to streaming and waits for the first event.
func subscribeCmd(evClient *daemon.Client) tea.Cmd {
	return func() tea.Msg {
		if err := evClient.Subscribe(); err != nil {
			return DaemonEventErrorMsg{Err: err}
		}
		return nextEvent(evClient)
	}
}

func readEventCmd(evClient *daemon.Client) tea.Cmd {
	return func() tea.Msg { return nextEvent(evClient) }
}

func nextEvent(evClient *daemon.Client) tea.Msg {
	ev, err := evClient.ReadEvent()
	if err != nil {
		return DaemonEventErrorMsg{Err: err}
	}
	return DaemonEventMsg{Event: ev}
}

// request sends one command and wraps the reply with wrap.
func request(client *daemon.Client, c daemon.Command, wrap func(daemon.Response) tea.Msg) tea.Cmd {
	return func() tea.Msg {
		resp, err := client.SendCommand(c)
		if err != nil {
			return DaemonEventErrorMsg{Err: err}
		}
		return wrap(resp)
	}
}

func statusCmd(client *daemon.Client) tea.Cmd {
	return request(client, daemon.Command{Cmd: daemon.CmdStatus}, func(r daemon.Response) tea.Msg {
		return StatusResponseMsg{Response: r}
	})
}

func startCmd(client *daemon.Client) tea.Cmd {
	return request(client, daemon.Command{Cmd: daemon.CmdStart}, func(r daemon.Response) tea.Msg {
		return StartResponseMsg{Response: r}
	})
}

func stopCmd(client *daemon.Client) tea.Cmd {
	return request(client, daemon.Command{Cmd: daemon.CmdStop}, func(r daemon.Response) tea.Msg {
		return StopResponseMsg{Response: r}
	})
}

func summarizeCmd(client *daemon.Client, meetingID string) tea.Cmd {
	c := daemon.Command{Cmd: daemon.CmdSummarize, MeetingID: meetingID}
	return request(client, c, func(r daemon.Response) tea.Msg {
		return SummarizeResponseMsg{MeetingID: meetingID, Response: r}
	})
}

func clearTransientErrorCmd() tea.Cmd {
	return tea.Tick(transientErrorTTL, func(time.Time) tea.Msg {
		return ClearTransientErrorMsg{}
	})
}

// reconnectCmd waits 1s, 2s, 4s, 8s, then 16s between attempts.
func reconnectCmd(attempt int) tea.Cmd {
	delay := time.Second << min(attempt, maxBackoffShift)
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return ReconnectTickMsg{}
	})
}

type storeOpenedMsg struct{ store *db.Store }

// openStoreCmd opens the meetings database read side. A missing database is
// not an error; the daemon creates it on first save.
func openStoreCmd(path string) tea.Cmd {
	return func() tea.Msg {
		store, err := db.Open(path)
		if err != nil {
			return nil
		}
		return storeOpenedMsg{store: store}
	}
}

// loadMeetingsCmd reads saved meetings with their summary sections.
func loadMeetingsCmd(store *db.Store) tea.Cmd {
	return func() tea.Msg {
		list, err := store.MeetingList()
		if err != nil {
			return MeetingsLoadedMsg{}
		}
		loaded := make([]MeetingLoaded, 0, len(list))
		for _, item := range list {
			ml := MeetingLoaded{ID: item.ID, Title: item.Title, Date: item.Date}
			if rec, err := store.Summary(item.ID); err == nil && rec != nil {
				ml.Sections = sectionsOf(*rec)
			}
			loaded = append(loaded, ml)
		}
		return MeetingsLoadedMsg{Meetings: loaded}
	}
}

// sectionsOf orders a record's sections the way they were generated.
func sectionsOf(rec db.SummaryRecord) []SectionLoaded {
	order := rec.Kinds
	if len(order) == 0 {
		for k := range rec.Summary {
			order = append(order, k)
		}
		sort.Strings(order)
	}
	var out []SectionLoaded
	for _, k := range order {
		if text, ok := rec.Summary[k]; ok {
			out = append(out, SectionLoaded{Title: summarize.SectionTitle(k), Text: text})
		}
	}
	return out
}
