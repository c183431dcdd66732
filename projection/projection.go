package projection

import "neuroplatform/uid"

// Projection is an ordered sequence of synapses of a single kind S between
// a presynaptic and a postsynaptic population (§3.5), together with a
// lazily-rebuilt synaptic index (§3.6).
type Projection[S any] struct {
	id   uid.UID
	tags *uid.TagMap

	Presynaptic  uid.UID
	Postsynaptic uid.UID

	Synapses []Synapse[S]

	index          *index
	indexIsCurrent bool
	locked         bool
}

// New creates a projection with a fresh random UID connecting pre to post.
func New[S any](pre, post uid.UID) *Projection[S] {
	return &Projection[S]{
		id:           uid.NewRandom(),
		tags:         uid.NewTagMap(),
		Presynaptic:  pre,
		Postsynaptic: post,
		index:        newIndex(),
	}
}

// UID returns the projection's identity.
func (p *Projection[S]) UID() uid.UID { return p.id }

// SetUID overrides the projection's UID, used by loaders restoring a
// previously persisted identity.
func (p *Projection[S]) SetUID(id uid.UID) { p.id = id }

// Tags returns the projection's metadata map.
func (p *Projection[S]) Tags() *uid.TagMap { return p.tags }

// Size returns the number of synapses currently in the projection.
func (p *Projection[S]) Size() int { return len(p.Synapses) }

// PresynapticUID returns the UID of the projection's presynaptic
// population, or the null UID if the projection is driven externally.
func (p *Projection[S]) PresynapticUID() uid.UID { return p.Presynaptic }

// PostsynapticUID returns the UID of the projection's postsynaptic
// population.
func (p *Projection[S]) PostsynapticUID() uid.UID { return p.Postsynaptic }

// Locked reports whether weight mutation by the plasticity kernel is
// currently forbidden (§3.5). Structural mutations are unaffected.
func (p *Projection[S]) Locked() bool { return p.locked }

// Lock forbids weight mutation by the plasticity kernel.
func (p *Projection[S]) Lock() { p.locked = true }

// Unlock re-enables weight mutation by the plasticity kernel.
func (p *Projection[S]) Unlock() { p.locked = false }

// Add appends a new synapse and invalidates the index.
func (p *Projection[S]) Add(s Synapse[S]) int {
	p.Synapses = append(p.Synapses, s)
	p.indexIsCurrent = false
	return len(p.Synapses) - 1
}

// Clear removes every synapse and invalidates the index.
func (p *Projection[S]) Clear() {
	p.Synapses = nil
	p.indexIsCurrent = false
}

// RemoveAt removes the synapse at position i, shifting later synapses down
// by one and invalidating the index (positions are not stable across a
// removal, per §3.6).
func (p *Projection[S]) RemoveAt(i int) {
	p.Synapses = append(p.Synapses[:i], p.Synapses[i+1:]...)
	p.indexIsCurrent = false
}

// DisconnectIf removes every synapse for which pred returns true and
// invalidates the index.
func (p *Projection[S]) DisconnectIf(pred func(Synapse[S]) bool) int {
	kept := p.Synapses[:0]
	removed := 0
	for _, s := range p.Synapses {
		if pred(s) {
			removed++
			continue
		}
		kept = append(kept, s)
	}
	p.Synapses = kept
	if removed > 0 {
		p.indexIsCurrent = false
	}
	return removed
}

// ensureIndex rebuilds the synaptic index from the current synapse
// sequence if it is stale (§3.6: "the next query MUST rebuild the index
// before answering").
func (p *Projection[S]) ensureIndex() {
	if p.indexIsCurrent {
		return
	}
	p.index.clear()
	for i, s := range p.Synapses {
		p.index.insert(connection{from: s.From, to: s.To, position: i})
	}
	p.indexIsCurrent = true
}

// ByPresynaptic returns the positions of every synapse whose source neuron
// index is presynapticNeuronIndex, rebuilding the index first if stale.
func (p *Projection[S]) ByPresynaptic(presynapticNeuronIndex uint32) []int {
	p.ensureIndex()
	return p.index.findByPresynaptic(presynapticNeuronIndex)
}

// ByPostsynaptic returns the positions of every synapse whose target neuron
// index is postsynapticNeuronIndex, rebuilding the index first if stale.
func (p *Projection[S]) ByPostsynaptic(postsynapticNeuronIndex uint32) []int {
	p.ensureIndex()
	return p.index.findByPostsynaptic(postsynapticNeuronIndex)
}

// IndexIsCurrent reports whether the synaptic index matches the current
// synapse sequence without forcing a rebuild. Exposed for tests verifying
// the freshness-flag contract (§3.6).
func (p *Projection[S]) IndexIsCurrent() bool { return p.indexIsCurrent }
