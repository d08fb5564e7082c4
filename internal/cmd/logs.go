package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/forgeplan/g3planner/internal/logging"
)

var (
	logsWorkspace string
	logsLevel     string
	logsPhase     string
	logsExport    string
	logsFormat    string
)

// logsCmd exposes internal/logging's post-hoc aggregation utility, letting
// a user filter and export a completed or in-progress cycle's debug.log
// without opening it by hand.
var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Inspect a planning cycle's debug.log",
	RunE:  runLogs,
}

func init() {
	logsCmd.Flags().StringVar(&logsWorkspace, "workspace", "", "workspace directory containing logs/debug.log (required)")
	logsCmd.Flags().StringVar(&logsLevel, "level", "", "filter to entries at or above this level")
	logsCmd.Flags().StringVar(&logsPhase, "phase", "", "filter to entries from this phase")
	logsCmd.Flags().StringVar(&logsExport, "export", "", "write filtered entries to this path instead of stdout")
	logsCmd.Flags().StringVar(&logsFormat, "format", "text", "export format: text, json, or csv")
	_ = logsCmd.MarkFlagRequired("workspace")

	rootCmd.AddCommand(logsCmd)
}

func runLogs(cmd *cobra.Command, args []string) error {
	sessionDir := filepath.Join(logsWorkspace, "logs")

	entries, err := logging.AggregateLogs(sessionDir)
	if err != nil {
		return err
	}

	filtered := logging.FilterLogs(entries, logging.LogFilter{Level: logsLevel, Phase: logsPhase})

	if logsExport != "" {
		if err := logging.ExportLogEntries(filtered, logsExport, logsFormat); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %d entries to %s\n", len(filtered), logsExport)
		return nil
	}

	for _, entry := range filtered {
		fmt.Fprintf(cmd.OutOrStdout(), "%s [%s] %s\n", entry.Timestamp.Format("2006-01-02T15:04:05"), entry.Level, entry.Message)
	}
	return nil
}
