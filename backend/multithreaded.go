package backend

import (
	"sync"

	"go.uber.org/zap"

	"neuroplatform/plasticity"
	"neuroplatform/population"
	"neuroplatform/projection"
	"neuroplatform/uid"
)

// MultiThreadedBackend is the concurrent flavour of Backend (§4.8.5):
// phases 2 and 4 dispatch per-population and per-projection work to a
// WorkerPool instead of running it inline. The shared endpoint's own
// mutex (neuroplatform/bus) is what keeps concurrent send/unload calls
// safe; kernels otherwise only ever touch their own population/projection
// state and their own future-impact queue, so no further coordination is
// needed.
type MultiThreadedBackend struct {
	*Backend
	pool *WorkerPool
}

// NewMultiThreaded returns a backend whose Step dispatches kernel calls to
// a worker pool of numWorkers goroutines.
func NewMultiThreaded(logger *zap.Logger, numWorkers int) *MultiThreadedBackend {
	return &MultiThreadedBackend{
		Backend: New(logger),
		pool:    NewWorkerPool(numWorkers),
	}
}

// Close shuts down the backend's worker pool.
func (b *MultiThreadedBackend) Close() { b.pool.Close() }

// Step overrides Backend.Step to run phases 2 and 4 across the worker
// pool, joining with Wait before each subsequent route/receive pass.
func (b *MultiThreadedBackend) Step() error {
	b.mu.Lock()
	if b.poisoned {
		b.mu.Unlock()
		return ErrPoisoned
	}
	b.mu.Unlock()

	if err := b.stepPopulationsParallel(); err != nil {
		b.poison()
		return err
	}
	if err := b.stepProjectionsParallel(); err != nil {
		b.poison()
		return err
	}

	b.mu.Lock()
	b.step++
	b.stepCond.Broadcast()
	b.mu.Unlock()
	return nil
}

func (b *MultiThreadedBackend) stepPopulationsParallel() error {
	b.messageBus.Route()
	b.endpoint.ReceiveAll(0)

	b.mu.Lock()
	step := b.step
	blifatOrder := append([]uid.UID(nil), b.blifatOrder...)
	stdpOrder := append([]uid.UID(nil), b.stdpOrder...)
	b.mu.Unlock()

	var spikeMu sync.Mutex
	spikedByPopulation := make(map[uid.UID][]uint32, len(blifatOrder)+len(stdpOrder))

	for _, id := range blifatOrder {
		id := id
		pop := b.blifatPops[id]
		b.pool.Submit(func() {
			spiked := population.StepBLIFATPopulation(pop, b.endpoint, step)
			if len(spiked) == 0 {
				return
			}
			spikeMu.Lock()
			spikedByPopulation[id] = spiked
			spikeMu.Unlock()
		})
	}
	for _, id := range stdpOrder {
		id := id
		pop := b.stdpPops[id]
		b.pool.Submit(func() {
			spiked := population.StepSTDPPopulation(pop, b.endpoint, step)
			if len(spiked) == 0 {
				return
			}
			spikeMu.Lock()
			spikedByPopulation[id] = spiked
			spikeMu.Unlock()
		})
	}
	b.pool.Wait()

	b.mu.Lock()
	b.pendingSpikes = spikedByPopulation
	b.mu.Unlock()
	return nil
}

func (b *MultiThreadedBackend) stepProjectionsParallel() error {
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
		id := id
		proj := b.deltaProjs[id]
		if err := validateSynapseDelays(proj.Synapses); err != nil {
			b.pool.Wait()
			return &KernelError{Entity: id, Err: err}
		}
		future := b.deltaFuture[id]
		b.pool.Submit(func() {
			projection.StepDeltaProjection(proj, b.endpoint, future, step)
		})
	}
	for _, id := range stdpProjOrder {
		id := id
		proj := b.stdpProjs[id]
		if err := validateSynapseDelays(proj.Synapses); err != nil {
			b.pool.Wait()
			return &KernelError{Entity: id, Err: err}
		}
		future := b.stdpFuture[id]
		b.pool.Submit(func() {
			plasticity.StepProjection(proj, b.endpoint, future, step)
		})
	}
	b.pool.Wait()

	if learning {
		for popID, spiked := range spikedByPopulation {
			popID, spiked := popID, spiked
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
			// One pool task per population, not per projection: every
			// targeting projection shares the same neuron state (stability,
			// ISI status, free resource pool), so they must run
			// sequentially within a population even though different
			// populations still run concurrently.
			b.pool.Submit(func() {
				plasticity.ApplyToSpikedNeurons(pop, spiked, targets, step, forced)
			})
		}
		b.pool.Wait()
	}

	b.messageBus.Route()
	b.endpoint.ReceiveAll(0)
	return nil
}
