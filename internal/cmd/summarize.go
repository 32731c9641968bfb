package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/meetmind/meetmind/internal/fault"
	"github.com/meetmind/meetmind/internal/summarize"
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize [meeting-id]",
	Short: "Summarize a saved meeting and store the result",
	Long: `Summarize a saved meeting with the configured text model and store the
result as its summary, replacing any earlier one. The meeting id defaults to
"current", the most recently saved meeting.

Four sections are generated one request at a time: a general summary, dates
and events, key topics, and tasks. A section that fails is stored as a short
placeholder instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSummarize,
}

func init() {
	rootCmd.AddCommand(summarizeCmd)
	summarizeCmd.Flags().StringP("lang", "l", "", "response language code (default: the summaryLanguage preference)")
}

func runSummarize(cmd *cobra.Command, args []string) error {
	cfg, store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()
	setupLogging(cfg, os.Stderr)

	id := summarize.CurrentID
	if len(args) == 1 {
		id = args[0]
	}

	lang, _ := cmd.Flags().GetString("lang")
	if lang == "" {
		prefs, err := store.Preferences()
		if err != nil {
			return err
		}
		lang = prefs.SummaryLanguage
	}

	endpoint, err := summarize.NewEndpoint(cfg.Summarize)
	if err != nil {
		return err
	}
	faults := fault.New(store)
	defer faults.Close()

	d := summarize.NewDispatcher(store, endpoint, policyFrom(cfg.Summarize))
	d.Faults = faults

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, err := d.SummarizeIn(ctx, id, lang)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprint(out, summarize.FormatRecord(res.Record()))
	if res.Truncated {
		fmt.Fprintf(cmd.ErrOrStderr(), "\nnote: content was truncated to %d characters\n", cfg.Summarize.MaxContent)
	}
	if len(res.Failed) > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "\n%d of %d sections failed: %s\n",
			len(res.Failed), len(res.Kinds), strings.Join(res.Failed, ", "))
	}
	return nil
}
