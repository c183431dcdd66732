package config

import (
	"fmt"

	"neuroplatform/messaging"
	"neuroplatform/netmodel"
	"neuroplatform/plasticity"
	"neuroplatform/population"
	"neuroplatform/projection"
	"neuroplatform/uid"
)

// BuiltNetwork is the result of materializing a NetworkTopologyConfig: the
// assembled Model plus each named population/projection's assigned UID, so
// the caller can wire matching backend.Add* calls and channel endpoints
// without re-deriving names from the network.
type BuiltNetwork struct {
	Model        *netmodel.Model
	Populations  map[string]uid.UID
	Projections  map[string]uid.UID
	BLIFATPops   map[string]*population.Population[population.BLIFATParameters]
	STDPPops     map[string]*population.Population[population.SynapticResourceSTDPParameters]
	DeltaProjs   map[string]*projection.Projection[projection.DeltaSynapseParameters]
	STDPProjs    map[string]*projection.Projection[plasticity.SynapseParameters]
	Forcing      map[string]bool // STDP projection name -> its spec's Forcing flag
	InputNames   map[string]uid.UID // channel name -> channel UID
	OutputNames  map[string]uid.UID
}

var synapseKinds = map[string]messaging.SynapseKind{
	"excitatory":             messaging.Excitatory,
	"inhibitory_current":     messaging.InhibitoryCurrent,
	"inhibitory_conductance": messaging.InhibitoryConductance,
	"dopamine":               messaging.Dopamine,
	"blocking":                messaging.Blocking,
}

// Build materializes topo into a netmodel.Model, following the declarative
// populations/projections/inputs/outputs sections one-for-one.
func Build(topo *NetworkTopologyConfig) (*BuiltNetwork, error) {
	if err := topo.Validate(); err != nil {
		return nil, err
	}

	network := netmodel.NewNetwork()
	built := &BuiltNetwork{
		Model:       netmodel.NewModel(network),
		Populations: make(map[string]uid.UID),
		Projections: make(map[string]uid.UID),
		BLIFATPops:  make(map[string]*population.Population[population.BLIFATParameters]),
		STDPPops:    make(map[string]*population.Population[population.SynapticResourceSTDPParameters]),
		DeltaProjs:  make(map[string]*projection.Projection[projection.DeltaSynapseParameters]),
		STDPProjs:   make(map[string]*projection.Projection[plasticity.SynapseParameters]),
		Forcing:     make(map[string]bool),
		InputNames:  make(map[string]uid.UID),
		OutputNames: make(map[string]uid.UID),
	}

	for _, spec := range topo.Populations {
		switch spec.Kind {
		case "blifat":
			pop := population.New(spec.Size, func(int) population.BLIFATParameters {
				params := population.NewBLIFATParameters()
				if spec.ActivationThreshold != 0 {
					params.ActivationThreshold = spec.ActivationThreshold
				}
				params.PotentialDecay = spec.PotentialDecay
				return params
			})
			if err := network.AddPopulation(pop); err != nil {
				return nil, err
			}
			built.BLIFATPops[spec.Name] = pop
			built.Populations[spec.Name] = pop.UID()
		case "stdp":
			pop := population.New(spec.Size, func(int) population.SynapticResourceSTDPParameters {
				params := population.NewSynapticResourceSTDPParameters()
				if spec.ActivationThreshold != 0 {
					params.ActivationThreshold = spec.ActivationThreshold
				}
				params.PotentialDecay = spec.PotentialDecay
				return params
			})
			if err := network.AddPopulation(pop); err != nil {
				return nil, err
			}
			built.STDPPops[spec.Name] = pop
			built.Populations[spec.Name] = pop.UID()
		}
	}

	for _, spec := range topo.Projections {
		kind, ok := synapseKinds[spec.SynapseKind]
		if !ok {
			return nil, fmt.Errorf("config: projection %q has unknown synapse kind %q", spec.Name, spec.SynapseKind)
		}

		var pre uid.UID
		if spec.From != "" {
			pre = built.Populations[spec.From]
		}
		post := built.Populations[spec.To]
		postSize := populationSize(built, spec.To)

		var fromSize int
		if spec.From != "" {
			fromSize = populationSize(built, spec.From)
		} else {
			fromSize = postSize // one endpoint per postsynaptic neuron when externally driven
		}

		switch spec.Kind {
		case "delta":
			proj := projection.New[projection.DeltaSynapseParameters](pre, post)
			connect(fromSize, postSize, spec.Pattern, func(from, to uint32) {
				proj.Add(projection.Synapse[projection.DeltaSynapseParameters]{
					Params: projection.DeltaSynapseParameters{Weight: spec.Weight, Delay: spec.Delay, Kind: kind},
					From:   from,
					To:     to,
				})
			})
			if err := network.AddProjection(proj); err != nil {
				return nil, err
			}
			built.DeltaProjs[spec.Name] = proj
			built.Projections[spec.Name] = proj.UID()
		case "stdp":
			proj := projection.New[plasticity.SynapseParameters](pre, post)
			connect(fromSize, postSize, spec.Pattern, func(from, to uint32) {
				proj.Add(projection.Synapse[plasticity.SynapseParameters]{
					Params: plasticity.SynapseParameters{
						DeltaSynapseParameters: projection.DeltaSynapseParameters{Weight: spec.Weight, Delay: spec.Delay, Kind: kind},
						SynapticResource:        spec.InitialResource,
						WMin:                    spec.WMin,
						WMax:                    spec.WMax,
						DU:                      spec.DU,
					},
					From: from,
					To:   to,
				})
			})
			if err := network.AddProjection(proj); err != nil {
				return nil, err
			}
			built.STDPProjs[spec.Name] = proj
			built.Projections[spec.Name] = proj.UID()
			built.Forcing[spec.Name] = spec.Forcing
		}
	}

	for _, in := range topo.Inputs {
		projID, ok := built.Projections[in.Target]
		if !ok {
			return nil, fmt.Errorf("config: input channel %q targets unknown projection %q", in.Name, in.Target)
		}
		channelID := uid.NewRandom()
		built.Model.AddInputChannel(channelID, projID)
		built.InputNames[in.Name] = channelID
	}
	for _, out := range topo.Outputs {
		popID, ok := built.Populations[out.Target]
		if !ok {
			return nil, fmt.Errorf("config: output channel %q observes unknown population %q", out.Name, out.Target)
		}
		channelID := uid.NewRandom()
		built.Model.AddOutputChannel(channelID, popID)
		built.OutputNames[out.Name] = channelID
	}

	return built, nil
}

func populationSize(built *BuiltNetwork, name string) int {
	if pop, ok := built.BLIFATPops[name]; ok {
		return pop.Size()
	}
	if pop, ok := built.STDPPops[name]; ok {
		return pop.Size()
	}
	return 0
}

// connect invokes add(from, to) for every synapse pattern requires: either
// a full bipartite all-to-all connection, or a one-to-one connection
// between same-indexed neurons over the first min(fromSize, toSize)
// indices (population sizes are not checked for equality).
func connect(fromSize, toSize int, pattern string, add func(from, to uint32)) {
	switch pattern {
	case "all_to_all":
		for from := 0; from < fromSize; from++ {
			for to := 0; to < toSize; to++ {
				add(uint32(from), uint32(to))
			}
		}
	case "one_to_one":
		n := fromSize
		if toSize < n {
			n = toSize
		}
		for i := 0; i < n; i++ {
			add(uint32(i), uint32(i))
		}
	}
}
