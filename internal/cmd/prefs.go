package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/meetmind/meetmind/internal/db"
)

var prefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "Show or change preferences",
	Long: `Show or change the synced preferences.

  meetmind prefs                       print the current values
  meetmind prefs --mode manual         captions are not turned on automatically
  meetmind prefs --lang de             summaries are written in German`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		var update db.Preferences
		if cmd.Flags().Changed("mode") {
			update.OperationMode, _ = cmd.Flags().GetString("mode")
		}
		if cmd.Flags().Changed("lang") {
			update.SummaryLanguage, _ = cmd.Flags().GetString("lang")
		}
		if update != (db.Preferences{}) {
			if err := store.SetPreferences(update); err != nil {
				return err
			}
		}

		prefs, err := store.Preferences()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "operationMode:   %s\nsummaryLanguage: %s\n", prefs.OperationMode, prefs.SummaryLanguage)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(prefsCmd)
	prefsCmd.Flags().String("mode", "", "operation mode: auto or manual")
	prefsCmd.Flags().String("lang", "", "summary language code, e.g. en")
}
