package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/meetmind/meetmind/internal/fault"
	"github.com/meetmind/meetmind/internal/logger"
	"github.com/meetmind/meetmind/internal/mcpserver"
	"github.com/meetmind/meetmind/internal/summarize"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve saved meetings as MCP tools over stdio",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()
		// stdout carries the protocol.
		setupLogging(cfg, os.Stderr)

		tools := &mcpserver.Tools{Store: store}
		endpoint, err := summarize.NewEndpoint(cfg.Summarize)
		if err != nil {
			logger.Warnf("summarize_meeting disabled: %v", err)
		} else {
			faults := fault.New(store)
			defer faults.Close()
			d := summarize.NewDispatcher(store, endpoint, policyFrom(cfg.Summarize))
			d.Faults = faults
			tools.Summarizer = d
		}

		return mcpserver.ServeStdio(mcpserver.New(Version, tools))
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
