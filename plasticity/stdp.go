// Package plasticity implements the resource-STDP learning rule (§4.6): an
// optional wrapper around the delta synapse kernel that adjusts synaptic
// resources and weights on every postsynaptic spike.
package plasticity

import (
	"math"

	"neuroplatform/population"
	"neuroplatform/projection"
)

// ApplyToSpikedNeurons runs the resource-STDP update (§4.6) for every
// neuron index in spiked, against every projection in targeting whose
// postsynaptic population is pop. isForced marks the whole batch as driven
// by a forcing projection (the backend decides this from its plasticity
// configuration, §4.8.1).
//
// The neuron-level bookkeeping (ISI status, stability, renormalization)
// runs exactly once per spiked neuron, regardless of how many projections
// in targeting reach it; only the per-synapse weight update (resource
// drain, Hebbian eligibility, weight recomputation) repeats once per
// targeting projection, and the dopamine update runs once over the union of
// their synapses. A population fed by more than one STDP
// projection would otherwise have its ISI bookkeeping re-applied once per
// projection, which forces PeriodContinued on every call after the first
// and re-renormalizes spuriously.
func ApplyToSpikedNeurons(
	pop *population.Population[population.SynapticResourceSTDPParameters],
	spiked []uint32,
	targeting []*projection.Projection[SynapseParameters],
	currentStep uint64,
	isForced bool,
) {
	for _, neuronIndex := range spiked {
		OnPostsynapticSpike(&pop.Neurons[neuronIndex], targeting, neuronIndex, currentStep, isForced)
	}
}

// SynapseParameters is the STDP-wrapped delta synapse kind's per-synapse
// state: a plain delta synapse plus the resource-STDP bookkeeping fields
// (§4.6).
type SynapseParameters struct {
	projection.DeltaSynapseParameters

	SynapticResource         float64
	WMin                     float64
	WMax                     float64
	DU                       float64
	DopaminePlasticityPeriod uint64
	LastSpikeStep            uint64
	HadHebbianUpdate         bool
}

// recomputeWeight applies §4.6 step 5: w = w_min + (w_max-w_min)*r/((w_max-w_min)+r),
// r = max(synaptic_resource, 0).
func recomputeWeight(s *SynapseParameters) {
	r := math.Max(s.SynapticResource, 0)
	span := s.WMax - s.WMin
	denom := span + r
	if denom == 0 {
		s.Weight = s.WMin
		return
	}
	s.Weight = s.WMin + span*r/denom
}

// firedWithinISIWindow reports whether a synapse last fired within
// [firstISISpike - isiMax, currentStep], the Hebbian eligibility window of
// §4.6 step 4.
func firedWithinISIWindow(lastSpikeStep uint64, firstISISpike uint64, isiMax float64, currentStep uint64) bool {
	lowerBound := int64(firstISISpike) - int64(isiMax)
	return int64(lastSpikeStep) >= lowerBound && lastSpikeStep <= currentStep
}

// stabilityFactor returns min(2^-stability, 1), the saturating scale factor
// used throughout §4.6.
func stabilityFactor(stability float64) float64 {
	return math.Min(math.Pow(2, -stability), 1)
}

// synapseRef names one synapse targeting a given neuron by the projection
// it lives in and its position within that projection's Synapses slice, so
// renormalization can spread a neuron's free resource pool over every
// synapse that targets it across every targeting projection at once.
type synapseRef struct {
	proj *projection.Projection[SynapseParameters]
	pos  int
}

// OnPostsynapticSpike runs the resource-STDP update (§4.6) for one neuron
// that spiked on currentStep, against every projection in targeting that
// has a synapse reaching neuronIndex. isForced marks a spike driven by a
// forcing projection rather than the network's own dynamics.
//
// Steps 1-3 (ISI bookkeeping and the stability decrement) run exactly once
// for the neuron; renormalization likewise runs once, spread over the
// union of synapses from every targeting projection. Only the per-synapse
// resource drain and Hebbian update (step 4) and the weight recomputation
// (step 5) repeat per projection, since each projection owns a
// distinct set of synapses.
func OnPostsynapticSpike(
	n *population.SynapticResourceSTDPParameters,
	targeting []*projection.Projection[SynapseParameters],
	neuronIndex uint32,
	currentStep uint64,
	isForced bool,
) {
	previousStatus := n.ISIStatus
	population.UpdateISI(n, currentStep, isForced)

	if n.ISIStatus == population.PeriodStarted {
		n.Stability -= n.StabilityChangeAtISI
	}

	var allPositions []synapseRef
	for _, proj := range targeting {
		positions := proj.ByPostsynaptic(neuronIndex)
		for _, pos := range positions {
			allPositions = append(allPositions, synapseRef{proj: proj, pos: pos})
		}

		if n.ISIStatus != population.PeriodContinued {
			for _, pos := range positions {
				proj.Synapses[pos].Params.HadHebbianUpdate = false
			}
		}

		if n.ISIStatus != population.IsForced {
			for _, pos := range positions {
				syn := &proj.Synapses[pos].Params
				syn.SynapticResource -= syn.DU
				n.FreeSynapticResource += syn.DU

				if !syn.HadHebbianUpdate && firedWithinISIWindow(syn.LastSpikeStep, n.FirstISISpike, n.ISIMax, currentStep) {
					delta := n.DH * stabilityFactor(n.Stability)
					syn.SynapticResource += delta
					n.FreeSynapticResource -= delta
					syn.HadHebbianUpdate = true
				}
			}
		}

		if !proj.Locked() {
			for _, pos := range positions {
				recomputeWeight(&proj.Synapses[pos].Params)
			}
		}
	}

	// Renormalization runs once per step after the ISI period ends or on a
	// forced spike.
	if previousStatus != n.ISIStatus && (n.ISIStatus == population.PeriodStarted || n.ISIStatus == population.IsForced) {
		renormalize(n, allPositions)
	}

	applyDopamineUpdate(n, allPositions, currentStep)
}

// renormalize implements §4.6's renormalization rule: if the free resource
// pool exceeds the configured threshold in magnitude, it is distributed
// evenly (plus a drain term) over every synapse that targets this neuron,
// across every projection that targets it.
func renormalize(n *population.SynapticResourceSTDPParameters, positions []synapseRef) {
	if math.Abs(n.FreeSynapticResource) < n.SynapticResourceThreshold {
		return
	}
	share := n.FreeSynapticResource / (float64(len(positions)) + n.ResourceDrainCoefficient)
	locked := make(map[*projection.Projection[SynapseParameters]]bool, len(positions))
	for _, ref := range positions {
		ref.proj.Synapses[ref.pos].Params.SynapticResource += share
		locked[ref.proj] = ref.proj.Locked()
	}
	n.FreeSynapticResource = 0

	for _, ref := range positions {
		if !locked[ref.proj] {
			recomputeWeight(&ref.proj.Synapses[ref.pos].Params)
		}
	}
}

// applyDopamineUpdate implements §4.6's dopamine update: synapses that
// fired within the dopamine plasticity period have their resource nudged
// by the dopamine signal, and the neuron's stability is updated by the
// forced/punishment or unforced-reward rule. Like the ISI/renormalization
// half above, the stability adjustment is per-neuron and must run exactly
// once per spike; positions spans every synapse targeting the neuron
// across every targeting projection so the per-synapse resource nudge
// still reaches all of them.
func applyDopamineUpdate(n *population.SynapticResourceSTDPParameters, positions []synapseRef, currentStep uint64) {
	punishment := n.DopamineValue < 0 && n.ISIStatus != population.IsForced
	reward := n.DopamineValue > 0
	if !punishment && !reward {
		return
	}

	factor := stabilityFactor(n.Stability)
	touched := false
	for _, ref := range positions {
		syn := &ref.proj.Synapses[ref.pos].Params
		if currentStep-syn.LastSpikeStep > syn.DopaminePlasticityPeriod {
			continue
		}
		dr := n.DopamineValue * factor / 1000
		syn.SynapticResource += dr
		n.FreeSynapticResource -= dr
		touched = true
	}

	if n.IsBeingForced || n.ISIStatus == population.IsForced || !reward {
		n.Stability -= n.DopamineValue * n.StabilityChangeParameter
	} else {
		proximity := math.Max(2-math.Abs(float64(currentStep)-float64(n.FirstISISpike)-n.ISIMax)/n.ISIMax, -1)
		n.Stability += n.StabilityChangeParameter * n.DopamineValue * proximity
	}

	if touched {
		for _, ref := range positions {
			if !ref.proj.Locked() {
				recomputeWeight(&ref.proj.Synapses[ref.pos].Params)
			}
		}
	}
}
