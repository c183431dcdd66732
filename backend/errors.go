// Package backend implements the step scheduler (§4.8): the three-phase
// tick that dispatches the BLIFAT and delta-synapse kernels (and the
// resource-STDP plasticity wrapper) over every loaded population and
// projection, in both a single-threaded and a worker-pool-backed
// multi-threaded flavour.
package backend

import (
	"errors"
	"fmt"

	"neuroplatform/projection"
	"neuroplatform/uid"
)

// ErrNotFound is returned by RemovePopulation/RemoveProjection when the
// given UID is not loaded (§4.8.6, §7 "lookup failures").
var ErrNotFound = errors.New("backend: not found")

// ErrPoisoned is returned by Step (and surfaced by Start) once a kernel
// invariant violation has poisoned the backend; the backend refuses
// every further step, and there is no way to clear the poisoned state.
var ErrPoisoned = errors.New("backend: poisoned by a prior kernel failure")

// KernelError wraps an invariant violation raised by a neuron or synapse
// kernel, identifying the offending entity (§4.8.6, §7 "invariant
// violations").
type KernelError struct {
	Entity uid.UID
	Err    error
}

func (e *KernelError) Error() string {
	return fmt.Sprintf("backend: kernel invariant violated for %s: %v", e.Entity, e.Err)
}

func (e *KernelError) Unwrap() error { return e.Err }

// delayer is satisfied by every synapse kind, each of which embeds
// projection.DeltaSynapseParameters.
type delayer interface {
	DelayValue() int64
}

// validateSynapseDelays fails fast on a negative or zero delay, the
// invariant violation §4.8.6 calls out by name ("negative delay").
func validateSynapseDelays[S delayer](synapses []projection.Synapse[S]) error {
	for _, s := range synapses {
		if s.Params.DelayValue() <= 0 {
			return fmt.Errorf("synapse delay must be positive, got %d", s.Params.DelayValue())
		}
	}
	return nil
}
