package cmd

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/meetmind/meetmind/internal/ui"
)

var faultsCmd = &cobra.Command{
	Use:   "faults",
	Short: "Show the persisted fault log, newest last",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		logs, err := store.Faults()
		if err != nil {
			return err
		}
		if limit, _ := cmd.Flags().GetInt("limit"); limit > 0 && len(logs) > limit {
			logs = logs[len(logs)-limit:]
		}
		if len(logs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No faults recorded.")
			return nil
		}

		verbose, _ := cmd.Flags().GetBool("verbose")
		t := table.New().
			Border(lipgloss.NormalBorder()).
			BorderStyle(ui.DividerStyle).
			Headers("TIME", "SOURCE", "MESSAGE")
		for _, e := range logs {
			msg := e.Message
			if verbose && e.Details != "" {
				msg += "\n" + ui.DimStyle.Render(e.Details)
			}
			t.Row(e.Timestamp.Local().Format(time.DateTime), e.Source, msg)
		}
		fmt.Fprintln(cmd.OutOrStdout(), t.String())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(faultsCmd)
	faultsCmd.Flags().IntP("limit", "n", 20, "show at most this many entries (0 for all)")
	faultsCmd.Flags().BoolP("verbose", "v", false, "include fault details")
}
