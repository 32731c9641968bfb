package app

import (
	"fmt"
	"os"
	"testing"

	"github.com/meetmind/meetmind/internal/daemon"
	"github.com/meetmind/meetmind/internal/db"

	tea "github.com/charmbracelet/bubbletea"
)

// TestLiveTUIFlow drives the model against a running daemon and the real
// database without starting a session. Skipped if the daemon isn't running.
func TestLiveTUIFlow(t *testing.T) {
	sockPath := daemon.SocketPath()
	if _, err := os.Stat(sockPath); os.IsNotExist(err) {
		t.Skip("daemon not running")
	}

	m := New(db.DefaultDBPath())

	m, _ = applyUpdate(m, tea.WindowSizeMsg{Width: 120, Height: 40})
	view := m.View()
	if view == "Initializing..." {
		t.Error("view should render after WindowSizeMsg")
	}
	fmt.Println("=== Initial View ===")
	fmt.Println(view)

	client, err := daemon.Connect(sockPath)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer client.Close()
	evClient, err := daemon.Connect(sockPath)
	if err != nil {
		t.Fatalf("connect event: %v", err)
	}
	defer evClient.Close()

	m, _ = applyUpdate(m, DaemonConnectedMsg{Client: client, EvClient: evClient})
	if !m.connected {
		t.Fatal("expected connected")
	}

	resp, err := client.SendCommand(daemon.Command{Cmd: daemon.CmdStatus})
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	m, _ = applyUpdate(m, StatusResponseMsg{Response: resp})
	fmt.Printf("Status: recording=%v meeting=%q\n", m.recording, m.meetingID)

	if err := evClient.Subscribe(daemon.EventStatus); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	if _, err := os.Stat(db.DefaultDBPath()); err == nil {
		msg := openStoreCmd(db.DefaultDBPath())()
		if opened, ok := msg.(storeOpenedMsg); ok {
			defer opened.store.Close()
			m, _ = applyUpdate(m, loadMeetingsCmd(opened.store)())
			fmt.Printf("Meetings: %d\n", len(m.meetings))
		}
	}

	fmt.Println("\n=== Connected View ===")
	fmt.Println(m.View())
}

func applyUpdate(m Model, msg tea.Msg) (Model, tea.Cmd) {
	newModel, cmd := m.Update(msg)
	return newModel.(Model), cmd
}
