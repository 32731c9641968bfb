package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/meetmind/meetmind/internal/daemon"
	"github.com/meetmind/meetmind/internal/db"
	"github.com/meetmind/meetmind/internal/fault"
)

var replayCmd = &cobra.Command{
	Use:   "replay <file.ndjson>",
	Short: "Feed recorded commands through the recorder offline",
	Long: `Replay a file of newline-delimited daemon commands, as captured from the
bridge, through a fresh recorder and print the assembled transcript.

Only session commands are replayed: start, caption, chat, source_error,
set_title, set_user and stop. A session is started if the file does not start
one and ended when the file runs out. With --save the result is stored as a
new meeting in the configured database; otherwise nothing is persisted.`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

func init() {
	rootCmd.AddCommand(replayCmd)
	replayCmd.Flags().Bool("save", false, "save the replayed meeting to the database")
	replayCmd.Flags().BoolP("verbose", "v", false, "print each committed utterance to stderr")
}

// replayable lists the commands a replay file may drive.
var replayable = map[string]bool{
	daemon.CmdStart:       true,
	daemon.CmdStop:        true,
	daemon.CmdCaption:     true,
	daemon.CmdChat:        true,
	daemon.CmdSourceError: true,
	daemon.CmdSetTitle:    true,
	daemon.CmdSetUser:     true,
}

func runReplay(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open replay file: %w", err)
	}
	defer f.Close()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	setupLogging(cfg, io.Discard)

	path := ":memory:"
	if save, _ := cmd.Flags().GetBool("save"); save {
		path = cfg.DBPath
	}
	store, err := db.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	faults := fault.New(store)
	defer faults.Close()

	var events daemon.Broadcaster
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		events = utterancePrinter{w: cmd.ErrOrStderr()}
	}
	h := daemon.NewHandler(daemon.HandlerOptions{
		Store:           store,
		Faults:          faults,
		Events:          events,
		ShrinkThreshold: cfg.Segmentation.ShrinkThreshold,
	})

	id, err := Replay(cmd.Context(), f, h)
	if err != nil {
		return err
	}
	t, err := store.Transcript(id)
	if err != nil {
		return err
	}
	if t == nil {
		return fmt.Errorf("replayed meeting %s was not saved", id)
	}
	fmt.Fprintln(cmd.OutOrStdout(), t.Content)
	return nil
}

// Replay drives h with the commands read from r and returns the id of the
// meeting saved when the last session ended. Lines that fail to parse or name
// a non-session command are an error.
func Replay(ctx context.Context, r io.Reader, h *daemon.Handler) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)

	var saved string
	started := false
	line := 0
	for scanner.Scan() {
		line++
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var c daemon.Command
		if err := json.Unmarshal(scanner.Bytes(), &c); err != nil {
			return "", fmt.Errorf("line %d: %w", line, err)
		}
		if !replayable[c.Cmd] {
			return "", fmt.Errorf("line %d: command %q cannot be replayed", line, c.Cmd)
		}

		if !started && c.Cmd == daemon.CmdStop {
			continue
		}
		if !started && c.Cmd != daemon.CmdStart {
			if resp := h.Handle(ctx, daemon.Command{Cmd: daemon.CmdStart}); !resp.OK {
				return "", fmt.Errorf("line %d: start: %s", line, resp.Error)
			}
			started = true
		}

		if c.Cmd == daemon.CmdStart && started {
			// Starting again ends the previous session.
			if resp := h.Handle(ctx, daemon.Command{Cmd: daemon.CmdStop}); resp.OK && resp.Status == "saved" {
				saved = resp.MeetingID
			}
		}

		resp := h.Handle(ctx, c)
		if !resp.OK {
			return "", fmt.Errorf("line %d: %s: %s", line, c.Cmd, resp.Error)
		}
		switch c.Cmd {
		case daemon.CmdStart:
			started = true
		case daemon.CmdStop:
			started = false
			if resp.Status == "saved" {
				saved = resp.MeetingID
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("read replay: %w", err)
	}

	if started {
		resp := h.Handle(ctx, daemon.Command{Cmd: daemon.CmdStop})
		if !resp.OK {
			return "", errors.New(resp.Error)
		}
		if resp.Status == "saved" {
			saved = resp.MeetingID
		}
	}
	if saved == "" {
		return "", errors.New("replay produced no transcript")
	}
	return saved, nil
}

type utterancePrinter struct {
	w io.Writer
}

func (p utterancePrinter) Broadcast(ev daemon.Event) {
	switch ev.Event {
	case daemon.EventUtterance:
		fmt.Fprintf(p.w, "[%s] %s: %s\n", ev.Reason, ev.Speaker, ev.Text)
	case daemon.EventChat:
		fmt.Fprintf(p.w, "[chat] %s: %s\n", ev.Speaker, ev.Text)
	}
}
