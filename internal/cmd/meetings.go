package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/meetmind/meetmind/internal/db"
	"github.com/meetmind/meetmind/internal/summarize"
	"github.com/meetmind/meetmind/internal/ui"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved meetings, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		list, err := store.MeetingList()
		if err != nil {
			return err
		}
		if len(list) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No saved meetings.")
			return nil
		}
		summaries, err := store.Summaries()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), meetingTable(list, summaries))
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show <meeting-id>",
	Short: `Print a saved transcript ("current" for the latest)`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		id := args[0]
		if wantSummary, _ := cmd.Flags().GetBool("summary"); wantSummary {
			rec, err := store.Summary(id)
			if err != nil {
				return err
			}
			if rec == nil {
				return fmt.Errorf("no summary for meeting %s", id)
			}
			fmt.Fprint(cmd.OutOrStdout(), summarize.FormatRecord(*rec))
			return nil
		}

		content, err := transcriptContent(store, id)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), content)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().Bool("summary", false, "print the stored summary instead of the transcript")
}

func transcriptContent(store *db.Store, id string) (string, error) {
	if id == summarize.CurrentID {
		cur, err := store.Current()
		if err != nil {
			return "", err
		}
		if cur == nil {
			return "", summarize.ErrContentNotFound
		}
		return cur.Content, nil
	}
	t, err := store.Transcript(id)
	if err != nil {
		return "", err
	}
	if t == nil {
		return "", fmt.Errorf("meeting %s: %w", id, summarize.ErrContentNotFound)
	}
	return t.Content, nil
}

func meetingTable(list []db.MeetingListItem, summaries map[string]db.SummaryRecord) string {
	rows := make([][]string, 0, len(list))
	for _, m := range list {
		mark := ""
		if _, ok := summaries[db.SummaryKeyPrefix+m.ID]; ok {
			mark = "✓"
		}
		rows = append(rows, []string{m.ID, m.Title, m.Date, mark})
	}
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(ui.DividerStyle).
		Headers("ID", "TITLE", "DATE", "SUMMARY").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return ui.PanelTitleStyle.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		String()
}
