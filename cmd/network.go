package cmd

import (
	"fmt"

	"go.uber.org/zap"

	"neuroplatform/backend"
	"neuroplatform/bus"
	"neuroplatform/config"
	"neuroplatform/messaging"
	"neuroplatform/netmodel"
	"neuroplatform/plasticity"
	"neuroplatform/population"
	"neuroplatform/projection"
	"neuroplatform/uid"
)

// simBackend is the subset of backend.Backend's API the CLI drives.
// backend.New and backend.NewMultiThreaded both satisfy it, so sim/observe/
// expose don't need to care which flavour a run picked.
type simBackend interface {
	Step() error
	CurrentStep() uint64
	WaitSteps(n uint64)
	MessageBus() *bus.MessageBus
	Endpoint() *bus.Endpoint
	StartLearning()
	StopLearning()
	LearningEnabled() bool
	AddBLIFATPopulation(pop *population.Population[population.BLIFATParameters])
	AddSTDPPopulation(pop *population.Population[population.SynapticResourceSTDPParameters])
	AddDeltaProjection(proj *projection.Projection[projection.DeltaSynapseParameters])
	AddSTDPProjection(proj *projection.Projection[plasticity.SynapseParameters], forcing bool, forcingSenders ...uid.UID)
}

// newLogger builds the zap logger the backend cfg.LogLevel names.
func newLogger(level string) (*zap.Logger, error) {
	switch level {
	case "", "info":
		return zap.NewProduction()
	case "debug":
		return zap.NewDevelopment()
	case "none":
		return zap.NewNop(), nil
	default:
		return nil, fmt.Errorf("cmd: unknown log level %q", level)
	}
}

// newBackend constructs the single- or multi-threaded backend cfg.Workers
// selects.
func newBackend(cfg config.BackendConfig, logger *zap.Logger) simBackend {
	if cfg.Workers > 1 {
		return backend.NewMultiThreaded(logger, cfg.Workers)
	}
	return backend.New(logger)
}

// loadTopology reads and builds the YAML network topology at path.
func loadTopology(path string) (*config.BuiltNetwork, error) {
	if path == "" {
		return nil, fmt.Errorf("cmd: a --topology file is required")
	}
	topo, err := config.LoadNetworkTopology(path)
	if err != nil {
		return nil, err
	}
	return config.Build(topo)
}

// wireNetwork loads every population and projection built from a topology
// into b, then runs the ModelLoader over the built model so input/output
// channel endpoints are created and tagged (§4.7), and subscribes b's own
// endpoint so each input projection receives its channel's spikes.
func wireNetwork(b simBackend, built *config.BuiltNetwork) netmodel.LoadedChannels {
	for _, pop := range built.BLIFATPops {
		b.AddBLIFATPopulation(pop)
	}
	for _, pop := range built.STDPPops {
		b.AddSTDPPopulation(pop)
	}
	for _, proj := range built.DeltaProjs {
		b.AddDeltaProjection(proj)
	}
	for name, proj := range built.STDPProjs {
		b.AddSTDPProjection(proj, built.Forcing[name])
	}

	loader := netmodel.NewModelLoader(b.MessageBus())
	loaded := loader.Load(built.Model)
	for channelID, projIDs := range built.Model.InputChannels() {
		for _, projID := range projIDs {
			b.Endpoint().Subscribe(projID, messaging.SpikeMessageType, []uid.UID{channelID})
		}
	}
	return loaded
}

// allPopulationUIDs returns every population UID in built, BLIFAT and STDP
// alike, for wiring a blanket archive/monitoring subscription.
func allPopulationUIDs(built *config.BuiltNetwork) []uid.UID {
	ids := make([]uid.UID, 0, len(built.Populations))
	for _, id := range built.Populations {
		ids = append(ids, id)
	}
	return ids
}

// allProjectionUIDs returns every projection UID in built.
func allProjectionUIDs(built *config.BuiltNetwork) []uid.UID {
	ids := make([]uid.UID, 0, len(built.Projections))
	for _, id := range built.Projections {
		ids = append(ids, id)
	}
	return ids
}
