package projection

import (
	"neuroplatform/bus"
	"neuroplatform/messaging"
)

// FutureImpactQueue holds pending SynapticImpactMessages keyed by the step
// on which they must be delivered — the projection's per-step "future
// impact" accumulator (§4.5 step 3). One queue belongs to exactly one
// projection; the backend owns it for the projection's lifetime.
type FutureImpactQueue map[uint64]*messaging.SynapticImpactMessage

// NewFutureImpactQueue returns an empty future-impact queue.
func NewFutureImpactQueue() FutureImpactQueue {
	return make(FutureImpactQueue)
}

// StepDeltaProjection runs the delta synapse kernel (§4.5) for one tick: it
// takes the next spike message addressed to proj, schedules a
// SynapticImpact for each presynaptic match into future, and — if future
// now holds an entry due this step — sends it through endpoint.
func StepDeltaProjection(proj *Projection[DeltaSynapseParameters], endpoint *bus.Endpoint, future FutureImpactQueue, step uint64) {
	messages := endpoint.UnloadSpikes(proj.UID())

	var indices []uint32
	if len(messages) > 0 {
		indices = messages[0].Indices
	}

	for _, neuronIndex := range indices {
		positions := proj.ByPresynaptic(neuronIndex)
		for _, pos := range positions {
			syn := proj.Synapses[pos]

			// The presynaptic spike was emitted on step-1, so the delay is
			// measured from there: key = delay + step - 1.
			key := uint64(syn.Params.Delay) + step - 1

			impact := messaging.SynapticImpact{
				SynapseIndex:          uint64(pos),
				Value:                 syn.Params.Weight,
				Kind:                  syn.Params.Kind,
				PresynapticNeuronIdx:  syn.From,
				PostsynapticNeuronIdx: syn.To,
			}

			entry, ok := future[key]
			if !ok {
				future[key] = &messaging.SynapticImpactMessage{
					Header:                messaging.Header{SenderUID: proj.UID(), Step: step},
					PresynapticPopulation: proj.Presynaptic,
					PostsynapticPopulation: proj.Postsynaptic,
					Impacts:               []messaging.SynapticImpact{impact},
				}
				continue
			}
			entry.Impacts = append(entry.Impacts, impact)
		}
	}

	if due, ok := future[step]; ok {
		endpoint.Send(*due)
		delete(future, step)
	}
}
