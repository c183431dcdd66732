package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"neuroplatform/storage"
)

var (
	exportDBPath string
	exportOutput string
)

var logutilExportSpikesCmd = &cobra.Command{
	Use:   "export-spikes",
	Short: "Export an archive's spike_messages table to CSV.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := storage.ExportSpikesCSV(exportDBPath, exportOutput); err != nil {
			return fmt.Errorf("logutil export-spikes: %w", err)
		}
		return nil
	},
}

var logutilExportImpactsCmd = &cobra.Command{
	Use:   "export-impacts",
	Short: "Export an archive's impact_messages table to CSV.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := storage.ExportImpactsCSV(exportDBPath, exportOutput); err != nil {
			return fmt.Errorf("logutil export-impacts: %w", err)
		}
		return nil
	},
}

func init() {
	logutilCmd.AddCommand(logutilExportSpikesCmd)
	logutilCmd.AddCommand(logutilExportImpactsCmd)

	for _, c := range []*cobra.Command{logutilExportSpikesCmd, logutilExportImpactsCmd} {
		c.Flags().StringVarP(&exportDBPath, "dbPath", "d", "", "Path to the archived SQLite database (required).")
		_ = c.MarkFlagRequired("dbPath")
		c.Flags().StringVarP(&exportOutput, "output", "o", "", "Output CSV file (stdout if unset).")
	}
}
