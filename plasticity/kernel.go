package plasticity

import (
	"neuroplatform/bus"
	"neuroplatform/messaging"
	"neuroplatform/projection"
)

// StepProjection runs the delta synapse kernel (§4.5) over an STDP-wrapped
// projection, identically to projection.StepDeltaProjection but additionally
// stamping each transmitting synapse's LastSpikeStep so the plasticity
// kernel's eligibility windows (§4.6) can be evaluated afterwards.
func StepProjection(proj *projection.Projection[SynapseParameters], endpoint *bus.Endpoint, future projection.FutureImpactQueue, step uint64) {
	messages := endpoint.UnloadSpikes(proj.UID())

	var indices []uint32
	if len(messages) > 0 {
		indices = messages[0].Indices
	}

	for _, neuronIndex := range indices {
		positions := proj.ByPresynaptic(neuronIndex)
		for _, pos := range positions {
			syn := &proj.Synapses[pos]
			syn.Params.LastSpikeStep = step

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
					Header:                 messaging.Header{SenderUID: proj.UID(), Step: step},
					PresynapticPopulation:  proj.Presynaptic,
					PostsynapticPopulation: proj.Postsynaptic,
					Impacts:                []messaging.SynapticImpact{impact},
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
