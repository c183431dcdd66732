package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"neuroplatform/datagen"
	"neuroplatform/messaging"
	"neuroplatform/storage"
)

var (
	exposeInputChannel    string
	exposeEpochs          int
	exposeCyclesPerPattern int
	exposeWeightsDir      string
)

var exposeCmd = &cobra.Command{
	Use:   "expose",
	Short: "Train a network's STDP projections by repeatedly presenting digit patterns.",
	Long: `expose builds the network described by --topology, then for
--epochs epochs presents every digit 0-9 in turn on --inputChannel, running
--cyclesPerPattern steps per digit with learning enabled. The plasticity
kernel (resource-STDP) updates synaptic weights as populations spike; expose
itself issues no weight updates directly. Final weights are written to
--weightsDir as one <projection>.weights.json file per STDP and delta projection.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadBackendConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("seed") {
			cfg.Seed = seed
		}
		cfg.LearningEnabled = true

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
		b.StartLearning()

		id, ok := built.InputNames[exposeInputChannel]
		if !ok {
			return fmt.Errorf("expose: unknown input channel %q", exposeInputChannel)
		}
		inputEndpoint := loaded.Input[id]

		step := uint64(0)
		for epoch := 0; epoch < exposeEpochs; epoch++ {
			for digit := 0; digit <= 9; digit++ {
				msg, err := datagen.DigitSpikeMessage(digit, id, messaging.Step(step))
				if err != nil {
					return fmt.Errorf("expose: generating digit %d pattern: %w", digit, err)
				}
				inputEndpoint.Send(msg)

				for c := 0; c < exposeCyclesPerPattern; c++ {
					if err := b.Step(); err != nil {
						return fmt.Errorf("expose: step %d: %w", step, err)
					}
					step++
				}
			}
			fmt.Printf("epoch %d/%d complete (step %d)\n", epoch+1, exposeEpochs, step)
		}

		if err := os.MkdirAll(exposeWeightsDir, 0o755); err != nil {
			return fmt.Errorf("expose: creating weights directory: %w", err)
		}
		for name, proj := range built.STDPProjs {
			path := filepath.Join(exposeWeightsDir, name+".weights.json")
			if err := storage.SaveSTDPProjectionWeights(proj, path); err != nil {
				return fmt.Errorf("expose: saving weights for %q: %w", name, err)
			}
		}
		for name, proj := range built.DeltaProjs {
			path := filepath.Join(exposeWeightsDir, name+".weights.json")
			if err := storage.SaveDeltaProjectionWeights(proj, path); err != nil {
				return fmt.Errorf("expose: saving weights for %q: %w", name, err)
			}
		}
		fmt.Printf("saved weights for %d STDP and %d delta projections to %s\n", len(built.STDPProjs), len(built.DeltaProjs), exposeWeightsDir)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exposeCmd)

	exposeCmd.Flags().StringVar(&exposeInputChannel, "inputChannel", "", "Name of the input channel to present digit patterns on (required).")
	_ = exposeCmd.MarkFlagRequired("inputChannel")
	exposeCmd.Flags().IntVarP(&exposeEpochs, "epochs", "e", 10, "Number of training epochs over digits 0-9.")
	exposeCmd.Flags().IntVar(&exposeCyclesPerPattern, "cyclesPerPattern", 20, "Steps to run per digit presentation.")
	exposeCmd.Flags().StringVarP(&exposeWeightsDir, "weightsDir", "w", "", "Directory to write <projection>.weights.json files to (required).")
	_ = exposeCmd.MarkFlagRequired("weightsDir")
}
