package projection

import (
	"testing"

	"neuroplatform/bus"
	"neuroplatform/messaging"
	"neuroplatform/uid"
)

func newDeltaProjection() *Projection[DeltaSynapseParameters] {
	return New[DeltaSynapseParameters](uid.NewRandom(), uid.NewRandom())
}

// TestIndexRebuildsAfterMutation implements Testable Property 3: the
// synaptic index is stale (index_is_current false) after any structural
// mutation, and any query rebuilds it before answering.
func TestIndexRebuildsAfterMutation(t *testing.T) {
	p := newDeltaProjection()
	p.Add(Synapse[DeltaSynapseParameters]{From: 0, To: 1, Params: DeltaSynapseParameters{Weight: 1, Delay: 1}})
	p.Add(Synapse[DeltaSynapseParameters]{From: 0, To: 2, Params: DeltaSynapseParameters{Weight: 1, Delay: 1}})

	if p.IndexIsCurrent() {
		t.Fatalf("index must not be current before any query")
	}
	positions := p.ByPresynaptic(0)
	if len(positions) != 2 {
		t.Fatalf("expected 2 synapses from neuron 0, got %d", len(positions))
	}
	if !p.IndexIsCurrent() {
		t.Fatalf("index must be current immediately after a query")
	}

	p.RemoveAt(0)
	if p.IndexIsCurrent() {
		t.Fatalf("index must be invalidated after a structural mutation")
	}
	positions = p.ByPresynaptic(0)
	if len(positions) != 1 {
		t.Fatalf("expected 1 synapse from neuron 0 after removal, got %d", len(positions))
	}
}

// TestSynapticIndexAfterDisconnect implements scenario S3: after
// disconnecting every synapse targeting a neuron, ByPostsynaptic for that
// neuron returns no positions, and ByPresynaptic for surviving synapses is
// unaffected.
func TestSynapticIndexAfterDisconnect(t *testing.T) {
	p := newDeltaProjection()
	p.Add(Synapse[DeltaSynapseParameters]{From: 0, To: 5, Params: DeltaSynapseParameters{Weight: 1, Delay: 1}})
	p.Add(Synapse[DeltaSynapseParameters]{From: 1, To: 5, Params: DeltaSynapseParameters{Weight: 1, Delay: 1}})
	p.Add(Synapse[DeltaSynapseParameters]{From: 2, To: 6, Params: DeltaSynapseParameters{Weight: 1, Delay: 1}})

	removed := p.DisconnectIf(func(s Synapse[DeltaSynapseParameters]) bool { return s.To == 5 })
	if removed != 2 {
		t.Fatalf("expected 2 synapses removed, got %d", removed)
	}

	if got := p.ByPostsynaptic(5); len(got) != 0 {
		t.Fatalf("expected no synapses left targeting neuron 5, got %d", len(got))
	}
	if got := p.ByPresynaptic(2); len(got) != 1 {
		t.Fatalf("expected surviving synapse from neuron 2 intact, got %d", len(got))
	}
}

// TestDeltaDelayRespected implements Testable Property 1: a spike emitted on
// step s through a synapse with delay d is delivered as an impact on step
// s + d, never earlier and never later.
func TestDeltaDelayRespected(t *testing.T) {
	b := bus.NewMessageBus(nil)
	populationEndpoint := b.CreateEndpoint()
	projEndpoint := b.CreateEndpoint()
	observer := b.CreateEndpoint()
	observerUID := uid.NewRandom()
	presynapticPopulation := uid.NewRandom()

	p := newDeltaProjection()
	p.Add(Synapse[DeltaSynapseParameters]{From: 0, To: 0, Params: DeltaSynapseParameters{Weight: 2.5, Delay: 3, Kind: messaging.Excitatory}})

	observer.Subscribe(observerUID, messaging.SynapticImpactMessageType, []uid.UID{p.UID()})
	projEndpoint.Subscribe(p.UID(), messaging.SpikeMessageType, []uid.UID{presynapticPopulation})

	future := NewFutureImpactQueue()

	// A spike is observed on the projection's inbox on step 1 (emitted by
	// the presynaptic population on step 0); delay 3 means the impact must
	// land on step 1 + 3 - 1 = 3, per the §4.5 step-3 key formula.
	injectSpike(t, populationEndpoint, messaging.SpikeMessage{
		Header:  messaging.Header{SenderUID: presynapticPopulation, Step: 0},
		Indices: []uint32{0},
	})

	for step := uint64(1); step <= 4; step++ {
		b.Route()
		projEndpoint.ReceiveAll(0)
		StepDeltaProjection(p, projEndpoint, future, step)
		b.Route()
		observer.ReceiveAll(0)

		impacts := observer.UnloadImpacts(observerUID)
		if step < 3 {
			if len(impacts) != 0 {
				t.Fatalf("impact delivered early at step %d", step)
			}
			continue
		}
		if step == 3 {
			if len(impacts) != 1 {
				t.Fatalf("expected impact delivered at step 3, got %d messages", len(impacts))
			}
			continue
		}
		if len(impacts) != 0 {
			t.Fatalf("impact delivered late at step %d", step)
		}
	}
}

func injectSpike(t *testing.T, e *bus.Endpoint, m messaging.SpikeMessage) {
	t.Helper()
	e.Send(m)
}
