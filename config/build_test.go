package config

import (
	"testing"

	"neuroplatform/backend"
	"neuroplatform/messaging"
	"neuroplatform/projection"
	"neuroplatform/uid"
)

func feedforwardTopology() *NetworkTopologyConfig {
	return &NetworkTopologyConfig{
		Populations: []PopulationSpec{
			{Name: "in", Kind: "blifat", Size: 2},
			{Name: "out", Kind: "blifat", Size: 3},
		},
		Projections: []ProjectionSpec{{
			Name: "feedforward", From: "in", To: "out",
			Kind: "delta", Pattern: "all_to_all",
			Weight: 1.0, Delay: 1, SynapseKind: "excitatory",
		}},
		Inputs:  []ChannelSpec{{Name: "stimulus", Target: "feedforward"}},
		Outputs: []ChannelSpec{{Name: "response", Target: "out"}},
	}
}

func TestBuildMaterializesPopulationsAndProjections(t *testing.T) {
	built, err := Build(feedforwardTopology())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	inPop, ok := built.BLIFATPops["in"]
	if !ok || inPop.Size() != 2 {
		t.Fatalf("expected 'in' population of size 2, got %+v", inPop)
	}
	outPop, ok := built.BLIFATPops["out"]
	if !ok || outPop.Size() != 3 {
		t.Fatalf("expected 'out' population of size 3, got %+v", outPop)
	}

	proj, ok := built.DeltaProjs["feedforward"]
	if !ok {
		t.Fatal("expected 'feedforward' projection to be built")
	}
	if proj.Size() != 2*3 {
		t.Errorf("expected all-to-all projection with 6 synapses, got %d", proj.Size())
	}
	if proj.PresynapticUID() != inPop.UID() || proj.PostsynapticUID() != outPop.UID() {
		t.Error("projection endpoints do not match the named populations")
	}

	if len(built.InputNames) != 1 || len(built.OutputNames) != 1 {
		t.Fatalf("expected one input and one output channel, got %d/%d", len(built.InputNames), len(built.OutputNames))
	}

	inputs := built.Model.InputChannels()
	if targets := inputs[built.InputNames["stimulus"]]; len(targets) != 1 || targets[0] != proj.UID() {
		t.Errorf("input channel does not target the feedforward projection: %v", targets)
	}
	outputs := built.Model.OutputChannels()
	if sources := outputs[built.OutputNames["response"]]; len(sources) != 1 || sources[0] != outPop.UID() {
		t.Errorf("output channel does not observe the out population: %v", sources)
	}
}

func TestBuildOneToOneConnectsMatchingIndices(t *testing.T) {
	topo := &NetworkTopologyConfig{
		Populations: []PopulationSpec{
			{Name: "a", Kind: "blifat", Size: 3},
			{Name: "b", Kind: "blifat", Size: 3},
		},
		Projections: []ProjectionSpec{{
			Name: "oneToOne", From: "a", To: "b",
			Kind: "delta", Pattern: "one_to_one",
			Weight: 0.5, Delay: 2, SynapseKind: "excitatory",
		}},
	}
	built, err := Build(topo)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	proj := built.DeltaProjs["oneToOne"]
	if proj.Size() != 3 {
		t.Fatalf("expected 3 one-to-one synapses, got %d", proj.Size())
	}
	for _, s := range proj.Synapses {
		if s.From != s.To {
			t.Errorf("one-to-one synapse should connect matching indices, got %d -> %d", s.From, s.To)
		}
	}
}

// TestBuildWiresIntoBackend exercises the built network end to end: an
// external channel drives 'in' through a delay-1 projection, and the
// delay-1 feedforward projection built from the topology must relay that
// spike to 'out' one step later, confirming Build's populations and
// projections plug directly into backend.Backend without modification.
func TestBuildWiresIntoBackend(t *testing.T) {
	built, err := Build(&NetworkTopologyConfig{
		Populations: []PopulationSpec{
			{Name: "in", Kind: "blifat", Size: 1},
			{Name: "out", Kind: "blifat", Size: 1},
		},
		Projections: []ProjectionSpec{{
			Name: "feedforward", From: "in", To: "out",
			Kind: "delta", Pattern: "one_to_one",
			Weight: 1.0, Delay: 1, SynapseKind: "excitatory",
		}},
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	inPop := built.BLIFATPops["in"]
	outPop := built.BLIFATPops["out"]

	b := backend.New(nil)
	b.AddBLIFATPopulation(inPop)
	b.AddBLIFATPopulation(outPop)
	b.AddDeltaProjection(built.DeltaProjs["feedforward"])

	channelUID := uid.NewRandom()
	inputProj := projection.New[projection.DeltaSynapseParameters](channelUID, inPop.UID())
	inputProj.Add(projection.Synapse[projection.DeltaSynapseParameters]{
		From: 0, To: 0,
		Params: projection.DeltaSynapseParameters{Weight: 2.0, Delay: 1, Kind: messaging.Excitatory},
	})
	b.AddDeltaProjection(inputProj)

	observerUID := uid.NewRandom()
	observerEndpoint := b.MessageBus().CreateEndpoint()
	observerEndpoint.Subscribe(observerUID, messaging.SpikeMessageType, []uid.UID{outPop.UID()})

	b.Endpoint().Send(messaging.SpikeMessage{
		Header:  messaging.Header{SenderUID: channelUID, Step: 0},
		Indices: messaging.SpikeData{0},
	})

	var spikeSteps []uint64
	for step := 0; step < 5; step++ {
		if err := b.Step(); err != nil {
			t.Fatalf("Step at %d: %v", step, err)
		}
		observerEndpoint.ReceiveAll(0)
		for _, s := range observerEndpoint.UnloadSpikes(observerUID) {
			spikeSteps = append(spikeSteps, s.Header.Step)
		}
	}

	if len(spikeSteps) != 1 || spikeSteps[0] != 2 {
		t.Fatalf("expected 'out' to spike exactly once, at step 2, got %v", spikeSteps)
	}
}
