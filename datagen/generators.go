package datagen

import (
	"neuroplatform/messaging"
	"neuroplatform/population"
	"neuroplatform/projection"
	"neuroplatform/uid"
)

// UniformBLIFATGenerator returns an index -> parameters generator that
// hands every neuron the same BLIFATParameters value, for
// population.New(count, UniformBLIFATGenerator(params)).
func UniformBLIFATGenerator(params population.BLIFATParameters) func(int) population.BLIFATParameters {
	return func(int) population.BLIFATParameters { return params }
}

// UniformSTDPGenerator is UniformBLIFATGenerator for the resource-STDP
// neuron kind.
func UniformSTDPGenerator(params population.SynapticResourceSTDPParameters) func(int) population.SynapticResourceSTDPParameters {
	return func(int) population.SynapticResourceSTDPParameters { return params }
}

// AllToAllDeltaSynapses returns one synapse per (from, to) pair across the
// full fromSize x toSize bipartite graph, all sharing weight, delay and
// kind.
func AllToAllDeltaSynapses(fromSize, toSize int, weight float64, delay int64, kind messaging.SynapseKind) []projection.Synapse[projection.DeltaSynapseParameters] {
	synapses := make([]projection.Synapse[projection.DeltaSynapseParameters], 0, fromSize*toSize)
	for from := 0; from < fromSize; from++ {
		for to := 0; to < toSize; to++ {
			synapses = append(synapses, projection.Synapse[projection.DeltaSynapseParameters]{
				From:   uint32(from),
				To:     uint32(to),
				Params: projection.DeltaSynapseParameters{Weight: weight, Delay: delay, Kind: kind},
			})
		}
	}
	return synapses
}

// OneToOneDeltaSynapses returns one synapse connecting each same-indexed
// neuron pair across size positions, all sharing weight, delay and kind.
func OneToOneDeltaSynapses(size int, weight float64, delay int64, kind messaging.SynapseKind) []projection.Synapse[projection.DeltaSynapseParameters] {
	synapses := make([]projection.Synapse[projection.DeltaSynapseParameters], 0, size)
	for i := 0; i < size; i++ {
		synapses = append(synapses, projection.Synapse[projection.DeltaSynapseParameters]{
			From:   uint32(i),
			To:     uint32(i),
			Params: projection.DeltaSynapseParameters{Weight: weight, Delay: delay, Kind: kind},
		})
	}
	return synapses
}

// DigitSpikeMessage builds a SpikeMessage out of digit's active pixels, sent
// by sender on step, ready to pass to an Endpoint.Send driving an input
// channel projection whose presynaptic side has PatternSize neurons (one
// per pixel).
func DigitSpikeMessage(digit int, sender uid.UID, step messaging.Step) (messaging.SpikeMessage, error) {
	indices, err := DigitSpikeIndices(digit)
	if err != nil {
		return messaging.SpikeMessage{}, err
	}
	return messaging.SpikeMessage{
		Header:  messaging.Header{SenderUID: sender, Step: step},
		Indices: messaging.SpikeData(indices),
	}, nil
}
