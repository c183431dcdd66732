// Package cmd wires the cobra command tree that drives the backend from
// the command line: sim runs a network to completion, observe presents a
// pattern to a trained network and reports its output, expose trains a
// network's STDP projections over repeated pattern presentations, and
// logutil exports an archived run to CSV.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Persistent flags shared by every subcommand.
	backendConfigFile string
	topologyFile      string
	seed              int64
)

var rootCmd = &cobra.Command{
	Use:   "neuroplatform",
	Short: "A discrete-time, message-driven spiking neural network simulator.",
	Long: `neuroplatform runs BLIFAT/resource-STDP spiking neural networks
described declaratively in YAML, against run parameters in TOML.
Run a specific subcommand's --help for its flags.`,
}

// Execute runs the root command. It is the only exported entry point main
// calls.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&backendConfigFile, "config", "", "Path to a TOML backend config file (run-level parameters).")
	rootCmd.PersistentFlags().StringVar(&topologyFile, "topology", "", "Path to a YAML network topology file (populations/projections/channels).")
	rootCmd.PersistentFlags().Int64Var(&seed, "seed", 0, "Overrides the backend config's seed (0 leaves the config's value).")
}
