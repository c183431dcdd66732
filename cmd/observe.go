package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"neuroplatform/datagen"
	"neuroplatform/messaging"
	"neuroplatform/monitoring"
	"neuroplatform/storage"
	"neuroplatform/uid"
)

var (
	observeInputChannel  string
	observeDigit         int
	observeCyclesToSettle int
	observeWeightsDir    string
	observeTrace         bool
)

var observeCmd = &cobra.Command{
	Use:   "observe",
	Short: "Present a digit pattern to a (presumably trained) network and report its output.",
	Long: `observe builds the network described by --topology, loads any
previously saved STDP projection weights from --weightsDir, presents a
single digit pattern on --inputChannel, lets the network settle for
--cyclesToSettle steps with learning disabled, then reports the firing rate
of every population.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadBackendConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("seed") {
			cfg.Seed = seed
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
		b.StopLearning()

		if observeWeightsDir != "" {
			for name, proj := range built.STDPProjs {
				path := filepath.Join(observeWeightsDir, name+".weights.json")
				if _, statErr := os.Stat(path); statErr != nil {
					continue
				}
				if err := storage.LoadSTDPProjectionWeights(proj, path); err != nil {
					return fmt.Errorf("observe: loading weights for %q: %w", name, err)
				}
			}
		}

		id, ok := built.InputNames[observeInputChannel]
		if !ok {
			return fmt.Errorf("observe: unknown input channel %q", observeInputChannel)
		}
		inputEndpoint := loaded.Input[id]

		archiveEndpoint := b.MessageBus().CreateEndpoint()
		spikeObs := monitoring.NewSpikeObserver(archiveEndpoint, allPopulationUIDs(built))
		rates := monitoring.NewFiringRateTracker(observeCyclesToSettle)

		order := make([]uid.UID, 0, len(built.Populations))
		for _, popID := range built.Populations {
			order = append(order, popID)
		}
		writer := monitoring.NewOrderedWriter(os.Stdout, order)

		msg, err := datagen.DigitSpikeMessage(observeDigit, id, messaging.Step(0))
		if err != nil {
			return fmt.Errorf("observe: generating digit pattern: %w", err)
		}
		inputEndpoint.Send(msg)

		for step := 0; step < observeCyclesToSettle; step++ {
			if err := b.Step(); err != nil {
				return fmt.Errorf("observe: step %d: %w", step, err)
			}
			spikes := spikeObs.Update()
			for _, m := range spikes {
				rates.Observe(m)
			}
			if observeTrace {
				if err := writer.Write(spikes); err != nil {
					return fmt.Errorf("observe: writing trace: %w", err)
				}
			}
		}

		for name, popID := range built.Populations {
			fmt.Printf("%s: mean firing rate %.4f (stddev %.4f)\n", name, rates.MeanRate(popID), rates.StdDevRate(popID))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(observeCmd)

	observeCmd.Flags().StringVar(&observeInputChannel, "inputChannel", "", "Name of the input channel to present the digit pattern on (required).")
	_ = observeCmd.MarkFlagRequired("inputChannel")
	observeCmd.Flags().IntVarP(&observeDigit, "digit", "d", 0, "Digit (0-9) to present.")
	observeCmd.Flags().IntVar(&observeCyclesToSettle, "cyclesToSettle", 50, "Steps to run after presenting the pattern.")
	observeCmd.Flags().StringVar(&observeWeightsDir, "weightsDir", "", "Directory of <projection>.weights.json files to load before observing.")
	observeCmd.Flags().BoolVar(&observeTrace, "trace", false, "Print a per-step spike trace in addition to the final firing rates.")
}
