// Package projection implements the network's synapse side: Projection, a
// sequence of synapses of a single kind between two populations (§3.5), its
// multi-view synaptic index (§3.6), and the delta synapse kernel (§4.5).
package projection

import "neuroplatform/messaging"

// DeltaSynapseParameters is the plain (non-plastic) synapse kind's
// per-synapse state (§4.5).
type DeltaSynapseParameters struct {
	Weight float64
	Delay  int64
	Kind   messaging.SynapseKind
}

// DelayValue returns the synapse's delay, satisfying the backend's
// cross-kind delay-validation constraint (every synapse kind embeds
// DeltaSynapseParameters).
func (d DeltaSynapseParameters) DelayValue() int64 { return d.Delay }

// Synapse is one connection within a projection: parameters of kind S plus
// the presynaptic and postsynaptic neuron indices it connects (§3.5).
type Synapse[S any] struct {
	Params S
	From   uint32
	To     uint32
}
