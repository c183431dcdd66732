package cmd

import (
	"github.com/spf13/cobra"
)

// logutilCmd groups utilities for working with an archived run's SQLite
// database.
var logutilCmd = &cobra.Command{
	Use:   "logutil",
	Short: "Utilities for inspecting and exporting archived SQLite run data.",
}

func init() {
	rootCmd.AddCommand(logutilCmd)
}
