package backend

import (
	"sync"

	"go.uber.org/zap"

	"neuroplatform/bus"
	"neuroplatform/messaging"
	"neuroplatform/plasticity"
	"neuroplatform/population"
	"neuroplatform/projection"
	"neuroplatform/uid"
)

// Backend owns a bus, an internal endpoint, ordered containers of
// population and projection variants, and the current step counter (§4.8).
// It supports the closed set of neuron/synapse kinds the rest of the module
// defines: BLIFAT and resource-STDP neurons, delta and STDP-wrapped delta
// synapses.
type Backend struct {
	mu       sync.Mutex
	stepCond *sync.Cond

	messageBus *bus.MessageBus
	endpoint   *bus.Endpoint
	logger     *zap.Logger

	blifatPops  map[uid.UID]*population.Population[population.BLIFATParameters]
	blifatOrder []uid.UID

	stdpPops  map[uid.UID]*population.Population[population.SynapticResourceSTDPParameters]
	stdpOrder []uid.UID

	deltaProjs  map[uid.UID]*projection.Projection[projection.DeltaSynapseParameters]
	deltaOrder  []uid.UID
	deltaFuture map[uid.UID]projection.FutureImpactQueue

	stdpProjs  map[uid.UID]*projection.Projection[plasticity.SynapseParameters]
	stdpProjOrder []uid.UID
	stdpFuture map[uid.UID]projection.FutureImpactQueue

	// plasticityTargets maps a postsynaptic population's UID to every
	// STDP-wrapped projection that targets it, so the plasticity kernel can
	// be run against each one after the population's spikes are known.
	plasticityTargets map[uid.UID][]*projection.Projection[plasticity.SynapseParameters]

	// forcingProjections marks an STDP projection's UID as "forcing" (its
	// plasticity configuration names it as a forcing driver rather than
	// part of the network's own recurrent dynamics), per §4.6/§4.8.1.
	forcingProjections map[uid.UID]bool

	// pendingSpikes holds the spike indices produced by the last population
	// phase, keyed by population UID, so the projection phase knows which
	// STDP-wrapped projections need their plasticity kernel run.
	pendingSpikes map[uid.UID][]uint32

	step            uint64
	running         bool
	learningEnabled bool
	poisoned        bool
}

// New returns an empty backend bound to a fresh bus. A nil logger is
// replaced with a no-op logger.
func New(logger *zap.Logger) *Backend {
	if logger == nil {
		logger = zap.NewNop()
	}
	messageBus := bus.NewMessageBus(logger)
	b := &Backend{
		messageBus:          messageBus,
		endpoint:            messageBus.CreateEndpoint(),
		logger:              logger,
		blifatPops:          make(map[uid.UID]*population.Population[population.BLIFATParameters]),
		stdpPops:            make(map[uid.UID]*population.Population[population.SynapticResourceSTDPParameters]),
		deltaProjs:          make(map[uid.UID]*projection.Projection[projection.DeltaSynapseParameters]),
		deltaFuture:         make(map[uid.UID]projection.FutureImpactQueue),
		stdpProjs:           make(map[uid.UID]*projection.Projection[plasticity.SynapseParameters]),
		stdpFuture:          make(map[uid.UID]projection.FutureImpactQueue),
		plasticityTargets:   make(map[uid.UID][]*projection.Projection[plasticity.SynapseParameters]),
		forcingProjections:  make(map[uid.UID]bool),
		learningEnabled:     true,
	}
	b.stepCond = sync.NewCond(&b.mu)
	return b
}

// MessageBus returns the backend's bus, for external endpoints (input and
// output channels) to attach to.
func (b *Backend) MessageBus() *bus.MessageBus { return b.messageBus }

// Endpoint returns the backend's internal endpoint, the one every loaded
// population and projection kernel sends and unloads through.
func (b *Backend) Endpoint() *bus.Endpoint { return b.endpoint }

// CurrentStep returns the backend's step counter.
func (b *Backend) CurrentStep() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.step
}

// StartLearning enables the plasticity kernel (§4.8.4).
func (b *Backend) StartLearning() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.learningEnabled = true
}

// StopLearning disables the plasticity kernel; §4.6 is then skipped.
func (b *Backend) StopLearning() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.learningEnabled = false
}

// LearningEnabled reports whether the plasticity kernel currently runs.
func (b *Backend) LearningEnabled() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.learningEnabled
}

// AddBLIFATPopulation loads a BLIFAT population into the backend.
func (b *Backend) AddBLIFATPopulation(pop *population.Population[population.BLIFATParameters]) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := pop.UID()
	if _, exists := b.blifatPops[id]; !exists {
		b.blifatOrder = append(b.blifatOrder, id)
	}
	b.blifatPops[id] = pop
}

// AddSTDPPopulation loads a resource-STDP-enabled population into the
// backend.
func (b *Backend) AddSTDPPopulation(pop *population.Population[population.SynapticResourceSTDPParameters]) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := pop.UID()
	if _, exists := b.stdpPops[id]; !exists {
		b.stdpOrder = append(b.stdpOrder, id)
	}
	b.stdpPops[id] = pop
}

// AddDeltaProjection loads a plain delta projection, subscribing the
// backend's endpoint to spikes from its presynaptic population (if any)
// and to the impacts it will itself produce, addressed to its
// postsynaptic population (if any), per §4.8.1.
func (b *Backend) AddDeltaProjection(proj *projection.Projection[projection.DeltaSynapseParameters]) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := proj.UID()
	if _, exists := b.deltaProjs[id]; !exists {
		b.deltaOrder = append(b.deltaOrder, id)
		b.deltaFuture[id] = projection.NewFutureImpactQueue()
	}
	b.deltaProjs[id] = proj
	b.subscribeProjectionLocked(id, proj.PresynapticUID(), proj.PostsynapticUID())
}

// AddSTDPProjection loads an STDP-wrapped delta projection. forcing marks
// the projection as a forcing driver: spikes of its postsynaptic population
// are then treated as forced by the plasticity kernel (§4.6, §4.8.1).
// forcingSenders names additional senders whose spikes are also delivered
// to this projection; they do not affect whether a spike counts as forced.
func (b *Backend) AddSTDPProjection(proj *projection.Projection[plasticity.SynapseParameters], forcing bool, forcingSenders ...uid.UID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := proj.UID()
	if _, exists := b.stdpProjs[id]; !exists {
		b.stdpProjOrder = append(b.stdpProjOrder, id)
		b.stdpFuture[id] = projection.NewFutureImpactQueue()
	}
	b.stdpProjs[id] = proj
	b.forcingProjections[id] = forcing
	b.plasticityTargets[proj.PostsynapticUID()] = append(b.plasticityTargets[proj.PostsynapticUID()], proj)

	b.subscribeProjectionLocked(id, proj.PresynapticUID(), proj.PostsynapticUID())
	if len(forcingSenders) > 0 {
		b.endpoint.Subscribe(id, messaging.SpikeMessageType, forcingSenders)
	}
}

func (b *Backend) subscribeProjectionLocked(projID, pre, post uid.UID) {
	if !pre.IsNull() {
		b.endpoint.Subscribe(projID, messaging.SpikeMessageType, []uid.UID{pre})
	}
	if !post.IsNull() {
		b.endpoint.Subscribe(post, messaging.SynapticImpactMessageType, []uid.UID{projID})
	}
}

// RemovePopulation removes the population with the given UID from whichever
// typed container holds it. It reports ErrNotFound if no such population is
// loaded (§4.8.6).
func (b *Backend) RemovePopulation(id uid.UID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.blifatPops[id]; ok {
		delete(b.blifatPops, id)
		b.blifatOrder = removeUID(b.blifatOrder, id)
		return nil
	}
	if _, ok := b.stdpPops[id]; ok {
		delete(b.stdpPops, id)
		b.stdpOrder = removeUID(b.stdpOrder, id)
		return nil
	}
	return ErrNotFound
}

// RemoveProjection removes the projection with the given UID from whichever
// typed container holds it. It reports ErrNotFound if no such projection is
// loaded (§4.8.6).
func (b *Backend) RemoveProjection(id uid.UID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.deltaProjs[id]; ok {
		delete(b.deltaProjs, id)
		delete(b.deltaFuture, id)
		b.deltaOrder = removeUID(b.deltaOrder, id)
		return nil
	}
	if _, ok := b.stdpProjs[id]; ok {
		delete(b.stdpProjs, id)
		delete(b.stdpFuture, id)
		delete(b.forcingProjections, id)
		b.stdpProjOrder = removeUID(b.stdpProjOrder, id)
		return nil
	}
	return ErrNotFound
}

func removeUID(order []uid.UID, id uid.UID) []uid.UID {
	for i, existing := range order {
		if existing == id {
			return append(order[:i], order[i+1:]...)
		}
	}
	return order
}
