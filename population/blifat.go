// Package population implements the network's neuron side: Population, a
// vector of neuron parameter records of a single kind (§3.4), and the
// BLIFAT neuron kernel (§4.4) that advances one kind by one step.
package population

import "neuroplatform/messaging"

// BLIFATParameters is the per-neuron state the BLIFAT kernel reads and
// writes every step (§4.4). Field names mirror the original platform's
// knp::neuron_traits::BLIFATNeuron so the kernel formulas below read the
// same way they do in knp/backends/cpu/cpu-library/impl/blifat_population.cpp.
type BLIFATParameters struct {
	Potential      float64
	PotentialDecay float64

	DynamicThreshold     float64
	ThresholdDecay       float64
	ThresholdIncrement   float64
	ActivationThreshold  float64

	PostsynapticTrace          float64
	PostsynapticTraceDecay     float64
	PostsynapticTraceIncrement float64

	InhibitoryConductance        float64
	InhibitoryConductanceDecay   float64
	ReversalInhibitoryPotential  float64

	BurstingPhase    int64
	BurstingPeriod   int64
	ReflexiveWeight  float64

	AbsoluteRefractoryPeriod    int64
	NTimeStepsSinceLastFiring   int64

	PotentialResetValue float64
	MinPotential        float64

	PreImpactPotential  float64
	TotalBlockingPeriod int64
	BlockingStepsLeft   int64

	DopamineValue float64
}

// NewBLIFATParameters returns parameters with the defaults used throughout
// the end-to-end scenarios: a decay of 0 at rest (no bursting, no
// inhibition) and an ActivationThreshold of 0; the spike predicate fires
// at a potential of 1 + DynamicThreshold.
func NewBLIFATParameters() BLIFATParameters {
	return BLIFATParameters{
		PotentialDecay:              0,
		ThresholdDecay:              1,
		ActivationThreshold:         0,
		PostsynapticTraceDecay:      1,
		InhibitoryConductanceDecay:  1,
		ReversalInhibitoryPotential: 0,
		PotentialResetValue:         0,
		MinPotential:                -1e9,
	}
}

// impactNeuron applies a single synaptic impact to a neuron's state,
// dispatching on synapse kind (§4.4 step 4).
func impactNeuron(n *BLIFATParameters, kind messaging.SynapseKind, value float64) {
	switch kind {
	case messaging.Excitatory:
		n.Potential += value
	case messaging.InhibitoryCurrent:
		n.Potential -= value
	case messaging.InhibitoryConductance:
		n.InhibitoryConductance += value
	case messaging.Dopamine:
		n.DopamineValue += value
	case messaging.Blocking:
		n.BlockingStepsLeft = n.TotalBlockingPeriod
	}
}

// decayState runs BLIFAT kernel steps 1-3: refractory counter increment,
// exponential decays, and bursting-aware potential decay.
func decayState(n *BLIFATParameters) {
	n.NTimeStepsSinceLastFiring++
	n.DynamicThreshold *= n.ThresholdDecay
	n.PostsynapticTrace *= n.PostsynapticTraceDecay
	n.InhibitoryConductance *= n.InhibitoryConductanceDecay

	if n.BurstingPhase > 0 {
		n.BurstingPhase--
		if n.BurstingPhase == 0 {
			n.Potential = n.Potential*n.PotentialDecay + n.ReflexiveWeight
			return
		}
	}
	n.Potential *= n.PotentialDecay
}

// postInputState runs BLIFAT kernel steps 5-7: conductance-based
// inhibition, the spike predicate, and the potential floor. It returns
// whether the neuron spiked.
func postInputState(n *BLIFATParameters) bool {
	if n.InhibitoryConductance < 1 {
		n.Potential -= (n.Potential - n.ReversalInhibitoryPotential) * n.InhibitoryConductance
	} else {
		n.Potential = n.ReversalInhibitoryPotential
	}

	spiked := false
	if n.NTimeStepsSinceLastFiring > n.AbsoluteRefractoryPeriod && n.Potential >= 1+n.DynamicThreshold {
		n.DynamicThreshold += n.ThresholdIncrement
		n.PostsynapticTrace += n.PostsynapticTraceIncrement
		n.Potential = n.PotentialResetValue
		n.BurstingPhase = n.BurstingPeriod
		n.NTimeStepsSinceLastFiring = 0
		spiked = true
	}

	if n.Potential < n.MinPotential {
		n.Potential = n.MinPotential
	}
	return spiked
}

// StepNeuron runs one full BLIFAT kernel step for a single neuron, applying
// impacts before the spike predicate, and returns whether the neuron
// spiked.
func StepNeuron(n *BLIFATParameters, impacts []messaging.SynapticImpact) bool {
	decayState(n)
	for _, impact := range impacts {
		impactNeuron(n, impact.Kind, impact.Value)
	}
	return postInputState(n)
}
