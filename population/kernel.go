package population

import (
	"neuroplatform/bus"
	"neuroplatform/messaging"
)

// groupImpactsByNeuron buckets every impact across all pending messages by
// its postsynaptic neuron index, so each neuron's kernel step only iterates
// the impacts addressed to it.
func groupImpactsByNeuron(messages []messaging.SynapticImpactMessage) map[uint32][]messaging.SynapticImpact {
	byNeuron := make(map[uint32][]messaging.SynapticImpact)
	for _, msg := range messages {
		for _, impact := range msg.Impacts {
			byNeuron[impact.PostsynapticNeuronIdx] = append(byNeuron[impact.PostsynapticNeuronIdx], impact)
		}
	}
	return byNeuron
}

// StepBLIFATPopulation runs the BLIFAT kernel (§4.4) over every neuron in
// pop, unloading pending synaptic-impact messages addressed to it from
// endpoint, and sends one SpikeMessage through endpoint if any neuron
// spiked. It returns the indices of neurons that spiked this step.
func StepBLIFATPopulation(pop *Population[BLIFATParameters], endpoint *bus.Endpoint, step uint64) []uint32 {
	messages := endpoint.UnloadImpacts(pop.UID())
	byNeuron := groupImpactsByNeuron(messages)

	var spiked []uint32
	for i := range pop.Neurons {
		if StepNeuron(&pop.Neurons[i], byNeuron[uint32(i)]) {
			spiked = append(spiked, uint32(i))
		}
	}

	if len(spiked) > 0 {
		endpoint.Send(messaging.SpikeMessage{
			Header:  messaging.Header{SenderUID: pop.UID(), Step: step},
			Indices: spiked,
		})
	}
	return spiked
}

// StepSTDPPopulation runs the BLIFAT kernel over a plasticity-enabled
// population's neurons (the ISI bookkeeping itself is driven afterwards by
// the plasticity package, which needs the synapse-level view the
// population alone does not have).
func StepSTDPPopulation(pop *Population[SynapticResourceSTDPParameters], endpoint *bus.Endpoint, step uint64) []uint32 {
	messages := endpoint.UnloadImpacts(pop.UID())
	byNeuron := groupImpactsByNeuron(messages)

	var spiked []uint32
	for i := range pop.Neurons {
		if StepNeuron(&pop.Neurons[i].BLIFATParameters, byNeuron[uint32(i)]) {
			spiked = append(spiked, uint32(i))
		}
	}

	if len(spiked) > 0 {
		endpoint.Send(messaging.SpikeMessage{
			Header:  messaging.Header{SenderUID: pop.UID(), Step: step},
			Indices: spiked,
		})
	}
	return spiked
}
