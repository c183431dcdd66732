package population

import (
	"neuroplatform/uid"
)

// Population is an ordered sequence of neuron parameter records of a single
// neuron kind N (§3.4). N is one of the closed set of supported neuron
// kinds (BLIFATParameters, SynapticResourceSTDPParameters); the design
// admits adding more by instantiating Population with a new kind, not by
// subclassing.
type Population[N any] struct {
	uid  uid.UID
	tags *uid.TagMap

	Neurons []N

	// neuronTags holds optional per-neuron metadata, addressed by neuron
	// index. Most neurons have no sub-tags, so this is lazily allocated.
	neuronTags map[int]*uid.TagMap
}

// New creates a population with a fresh random UID and count neurons
// produced by gen(index), matching the §6 "constructible from a generator"
// external-interface contract.
func New[N any](count int, gen func(index int) N) *Population[N] {
	neurons := make([]N, count)
	for i := range neurons {
		neurons[i] = gen(i)
	}
	return &Population[N]{
		uid:     uid.NewRandom(),
		tags:    uid.NewTagMap(),
		Neurons: neurons,
	}
}

// UID returns the population's identity.
func (p *Population[N]) UID() uid.UID { return p.uid }

// SetUID overrides the population's UID, used by loaders restoring a
// previously persisted identity.
func (p *Population[N]) SetUID(id uid.UID) { p.uid = id }

// Tags returns the population's metadata map.
func (p *Population[N]) Tags() *uid.TagMap { return p.tags }

// Size returns the number of neurons in the population.
func (p *Population[N]) Size() int { return len(p.Neurons) }

// NeuronTags returns the tag sub-map for the neuron at index, creating one
// if it does not exist yet.
func (p *Population[N]) NeuronTags(index int) *uid.TagMap {
	if p.neuronTags == nil {
		p.neuronTags = make(map[int]*uid.TagMap)
	}
	t, ok := p.neuronTags[index]
	if !ok {
		t = uid.NewTagMap()
		p.neuronTags[index] = t
	}
	return t
}
