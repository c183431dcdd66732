package backend

import (
	"neuroplatform/plasticity"
	"neuroplatform/population"
	"neuroplatform/projection"
	"neuroplatform/uid"
)

// Step runs one tick (§4.8.2): route/receive, population kernels,
// route/receive, projection (and plasticity) kernels, route/receive,
// then increments the step counter. It returns ErrPoisoned without doing
// anything if a previous step failed.
func (b *Backend) Step() error {
	b.mu.Lock()
	if b.poisoned {
		b.mu.Unlock()
		return ErrPoisoned
	}
	b.mu.Unlock()

	if err := b.stepPopulations(); err != nil {
		b.poison()
		return err
	}
	if err := b.stepProjections(); err != nil {
		b.poison()
		return err
	}

	b.mu.Lock()
	b.step++
	b.stepCond.Broadcast()
	b.mu.Unlock()
	return nil
}

// WaitSteps blocks the calling goroutine until the step counter has
// advanced by at least n steps from whatever it was when WaitSteps was
// called, or until the backend is poisoned. It lets a test harness wait
// for a specific step before reading an output channel.
func (b *Backend) WaitSteps(n uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	target := b.step + n
	for b.step < target && !b.poisoned {
		b.stepCond.Wait()
	}
}

func (b *Backend) poison() {
	b.mu.Lock()
	b.poisoned = true
	b.running = false
	b.stepCond.Broadcast()
	b.mu.Unlock()
}

// stepPopulations runs phase 2 of the tick: route, receive, then run the
// neuron kernel over every loaded population, dispatching on its kind.
func (b *Backend) stepPopulations() error {
	b.messageBus.Route()
	b.endpoint.ReceiveAll(0)

	b.mu.Lock()
	step := b.step
	blifatOrder := append([]uid.UID(nil), b.blifatOrder...)
	stdpOrder := append([]uid.UID(nil), b.stdpOrder...)
	b.mu.Unlock()

	spikedByPopulation := make(map[uid.UID][]uint32, len(blifatOrder)+len(stdpOrder))

	for _, id := range blifatOrder {
		pop := b.blifatPops[id]
		spiked := population.StepBLIFATPopulation(pop, b.endpoint, step)
		if len(spiked) > 0 {
			spikedByPopulation[id] = spiked
		}
	}
	for _, id := range stdpOrder {
		pop := b.stdpPops[id]
		spiked := population.StepSTDPPopulation(pop, b.endpoint, step)
		if len(spiked) > 0 {
			spikedByPopulation[id] = spiked
		}
	}

	b.mu.Lock()
	b.pendingSpikes = spikedByPopulation
	b.mu.Unlock()
	return nil
}

// stepProjections runs phase 4 of the tick: route, receive, then run the
// synapse kernel over every loaded projection, followed by the plasticity
// kernel for STDP-wrapped projections whose postsynaptic population
// spiked this step (if learning is enabled).
func (b *Backend) stepProjections() error {
	b.messageBus.Route()
	b.endpoint.ReceiveAll(0)

	b.mu.Lock()
	step := b.step
	deltaOrder := append([]uid.UID(nil), b.deltaOrder...)
	stdpProjOrder := append([]uid.UID(nil), b.stdpProjOrder...)
	learning := b.learningEnabled
	spikedByPopulation := b.pendingSpikes
	b.mu.Unlock()

	for _, id := range deltaOrder {
		proj := b.deltaProjs[id]
		if err := validateSynapseDelays(proj.Synapses); err != nil {
			return &KernelError{Entity: id, Err: err}
		}
		projection.StepDeltaProjection(proj, b.endpoint, b.deltaFuture[id], step)
	}
	for _, id := range stdpProjOrder {
		proj := b.stdpProjs[id]
		if err := validateSynapseDelays(proj.Synapses); err != nil {
			return &KernelError{Entity: id, Err: err}
		}
		plasticity.StepProjection(proj, b.endpoint, b.stdpFuture[id], step)
	}

	if learning {
		for popID, spiked := range spikedByPopulation {
			pop, ok := b.stdpPops[popID]
			if !ok {
				continue
			}
			targets := b.plasticityTargets[popID]
			if len(targets) == 0 {
				continue
			}
			forced := false
			for _, proj := range targets {
				if b.forcingProjections[proj.UID()] {
					forced = true
					break
				}
			}
			plasticity.ApplyToSpikedNeurons(pop, spiked, targets, step, forced)
		}
	}

	b.messageBus.Route()
	b.endpoint.ReceiveAll(0)
	return nil
}
