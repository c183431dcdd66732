package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"neuroplatform/bus"
	"neuroplatform/config"
	"neuroplatform/datagen"
	"neuroplatform/messaging"
	"neuroplatform/monitoring"
	"neuroplatform/storage"
	"neuroplatform/uid"
)

var (
	simCycles       int
	simDBPath       string
	simWorkers      int
	simLearning     bool
	simInputChannel string
	simDigit        int
	simPresentEvery int
)

var simCmd = &cobra.Command{
	Use:   "sim",
	Short: "Run a network built from --topology for its configured number of cycles.",
	Long: `sim builds the network described by --topology, steps it for the
number of cycles named by --config (or --cycles), and, if a database path is
configured, archives every step's spike and synaptic impact traffic to
SQLite.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadBackendConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("seed") {
			cfg.Seed = seed
		}
		if cmd.Flags().Changed("cycles") {
			cfg.Cycles = simCycles
		}
		if cmd.Flags().Changed("dbPath") {
			cfg.DBPath = simDBPath
		}
		if cmd.Flags().Changed("workers") {
			cfg.Workers = simWorkers
		}
		if cmd.Flags().Changed("learning") {
			cfg.LearningEnabled = simLearning
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		built, err := loadTopology(topologyFile)
		if err != nil {
			return err
		}

		logger, err := newLogger(cfg.LogLevel)
		if err != nil {
			return err
		}
		defer logger.Sync() //nolint:errcheck

		b := newBackend(cfg, logger)
		if closer, ok := b.(interface{ Close() }); ok {
			defer closer.Close()
		}
		loaded := wireNetwork(b, built)
		if cfg.LearningEnabled {
			b.StartLearning()
		} else {
			b.StopLearning()
		}

		var archive *storage.Archive
		if cfg.DBPath != "" {
			archive, err = storage.OpenArchive(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("sim: opening archive: %w", err)
			}
			defer archive.Close()
		}

		archiveEndpoint := b.MessageBus().CreateEndpoint()
		spikeObs := monitoring.NewSpikeObserver(archiveEndpoint, allPopulationUIDs(built))
		impactObs := monitoring.NewImpactObserver(archiveEndpoint, allProjectionUIDs(built))
		rates := monitoring.NewFiringRateTracker(cfg.Cycles)

		var inputChannelID uid.UID
		var inputEndpoint *bus.Endpoint
		if simInputChannel != "" {
			id, ok := built.InputNames[simInputChannel]
			if !ok {
				return fmt.Errorf("sim: unknown input channel %q", simInputChannel)
			}
			inputChannelID = id
			inputEndpoint = loaded.Input[id]
		}

		for step := 0; step < cfg.Cycles; step++ {
			if inputEndpoint != nil && simDigit >= 0 && simPresentEvery > 0 && step%simPresentEvery == 0 {
				msg, err := datagen.DigitSpikeMessage(simDigit, inputChannelID, messaging.Step(step))
				if err != nil {
					return fmt.Errorf("sim: generating digit pattern: %w", err)
				}
				inputEndpoint.Send(msg)
			}

			if err := b.Step(); err != nil {
				return fmt.Errorf("sim: step %d: %w", step, err)
			}

			for _, msg := range spikeObs.Update() {
				rates.Observe(msg)
				if archive != nil {
					if err := archive.LogSpikeMessage(msg); err != nil {
						return fmt.Errorf("sim: logging spike at step %d: %w", step, err)
					}
				}
			}
			if archive != nil {
				for _, msg := range impactObs.Update() {
					if err := archive.LogImpactMessage(msg); err != nil {
						return fmt.Errorf("sim: logging impact at step %d: %w", step, err)
					}
				}
			}
		}

		for name, id := range built.Populations {
			fmt.Printf("%s: mean firing rate %.4f (stddev %.4f)\n", name, rates.MeanRate(id), rates.StdDevRate(id))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(simCmd)

	simCmd.Flags().IntVarP(&simCycles, "cycles", "c", 0, "Overrides the backend config's cycle count.")
	simCmd.Flags().StringVar(&simDBPath, "dbPath", "", "Overrides the backend config's SQLite archive path.")
	simCmd.Flags().IntVar(&simWorkers, "workers", 0, "Overrides the backend config's worker count (>1 selects the multi-threaded backend).")
	simCmd.Flags().BoolVar(&simLearning, "learning", false, "Overrides the backend config's learning_enabled flag.")
	simCmd.Flags().StringVar(&simInputChannel, "inputChannel", "", "Name of a declared input channel to drive with a digit pattern.")
	simCmd.Flags().IntVar(&simDigit, "digit", -1, "Digit (0-9) pattern to present on --inputChannel; -1 disables presentation.")
	simCmd.Flags().IntVar(&simPresentEvery, "presentEvery", 10, "Steps between digit presentations on --inputChannel.")
}

// loadBackendConfig decodes --config if set, else returns the defaults.
func loadBackendConfig() (config.BackendConfig, error) {
	if backendConfigFile == "" {
		return config.DefaultBackendConfig(), nil
	}
	return config.LoadBackendConfig(backendConfigFile)
}
