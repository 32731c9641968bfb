package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/meetmind/meetmind/internal/app"
	"github.com/meetmind/meetmind/internal/config"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Watch the live transcript and browse saved meetings",
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// The terminal belongs to the UI, so logs go to a file.
	var out io.Writer = io.Discard
	logPath := filepath.Join(config.ConfigDir(), "tui.log")
	if f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600); err == nil {
		defer f.Close()
		out = f
	}
	setupLogging(cfg, out)

	if os.Getenv("MEETMIND_SOCKET") == "" {
		os.Setenv("MEETMIND_SOCKET", cfg.SocketPath)
	}

	p := tea.NewProgram(app.New(cfg.DBPath), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}
