package plasticity

import (
	"math"
	"testing"

	"neuroplatform/population"
	"neuroplatform/projection"
	"neuroplatform/uid"
)

// TestRecomputeWeight implements Testable Property / scenario S6: weight
// recomputation from synaptic resource.
func TestRecomputeWeight(t *testing.T) {
	cases := []struct {
		resource float64
		want     float64
		approx   bool
	}{
		{resource: 1, want: 0.5},
		{resource: 0, want: 0},
		{resource: 1e9, want: 1, approx: true},
	}
	for _, c := range cases {
		s := SynapseParameters{
			DeltaSynapseParameters: projection.DeltaSynapseParameters{},
			SynapticResource:       c.resource,
			WMin:                   0,
			WMax:                   1,
		}
		recomputeWeight(&s)
		if c.approx {
			if math.Abs(s.Weight-c.want) > 1e-6 {
				t.Fatalf("resource=%v: expected weight close to %v, got %v", c.resource, c.want, s.Weight)
			}
			continue
		}
		if s.Weight != c.want {
			t.Fatalf("resource=%v: expected weight %v, got %v", c.resource, c.want, s.Weight)
		}
	}
}

func newSTDPProjection() *projection.Projection[SynapseParameters] {
	return projection.New[SynapseParameters](uid.NewRandom(), uid.NewRandom())
}

func TestOnPostsynapticSpikeRecomputesWeights(t *testing.T) {
	proj := newSTDPProjection()
	proj.Add(projection.Synapse[SynapseParameters]{
		From: 0, To: 0,
		Params: SynapseParameters{
			DeltaSynapseParameters: projection.DeltaSynapseParameters{Weight: 0.1, Delay: 1},
			SynapticResource:       0.5,
			WMin:                   0,
			WMax:                   1,
			DU:                     0.1,
		},
	})

	n := population.NewSynapticResourceSTDPParameters()
	n.ISIMax = 100
	n.SynapticResourceThreshold = 1e9 // avoid triggering renormalization in this test

	OnPostsynapticSpike(&n, []*projection.Projection[SynapseParameters]{proj}, 0, 1, false)

	got := proj.Synapses[0].Params.Weight
	wantResource := 0.5 - 0.1
	wantWeight := 0 + (1-0)*math.Max(wantResource, 0)/((1-0)+math.Max(wantResource, 0))
	if math.Abs(got-wantWeight) > 1e-9 {
		t.Fatalf("expected recomputed weight %v, got %v", wantWeight, got)
	}
}

func TestOnPostsynapticSpikeForcedSkipsResourceDrain(t *testing.T) {
	proj := newSTDPProjection()
	proj.Add(projection.Synapse[SynapseParameters]{
		From: 0, To: 0,
		Params: SynapseParameters{
			DeltaSynapseParameters: projection.DeltaSynapseParameters{Weight: 0.1, Delay: 1},
			SynapticResource:       0.5,
			WMin:                   0,
			WMax:                   1,
			DU:                     0.1,
		},
	})

	n := population.NewSynapticResourceSTDPParameters()
	n.ISIMax = 100
	n.SynapticResourceThreshold = 1e9

	OnPostsynapticSpike(&n, []*projection.Projection[SynapseParameters]{proj}, 0, 1, true)

	if proj.Synapses[0].Params.SynapticResource != 0.5 {
		t.Fatalf("forced spike must not drain synaptic resource, got %v", proj.Synapses[0].Params.SynapticResource)
	}
}

func TestLockedProjectionSkipsWeightRecomputation(t *testing.T) {
	proj := newSTDPProjection()
	proj.Add(projection.Synapse[SynapseParameters]{
		From: 0, To: 0,
		Params: SynapseParameters{
			DeltaSynapseParameters: projection.DeltaSynapseParameters{Weight: 0.1, Delay: 1},
			SynapticResource:       0.5,
			WMin:                   0,
			WMax:                   1,
			DU:                     0.1,
		},
	})
	proj.Lock()

	n := population.NewSynapticResourceSTDPParameters()
	n.ISIMax = 100
	n.SynapticResourceThreshold = 1e9

	OnPostsynapticSpike(&n, []*projection.Projection[SynapseParameters]{proj}, 0, 1, false)

	if proj.Synapses[0].Params.Weight != 0.1 {
		t.Fatalf("locked projection must not have its weight recomputed, got %v", proj.Synapses[0].Params.Weight)
	}
}

// TestMultipleTargetingProjectionsShareOneISIUpdate covers the case a
// population targeted by more than one STDP projection: the neuron-level
// ISI/stability bookkeeping must run once per spike, not once per
// projection. If it ran twice, the second pass would see elapsed == 0
// since the first pass already stamped LastStep, forcing PeriodContinued
// and silently skipping the Hebbian-eligibility reset the real single
// spike is entitled to.
func TestMultipleTargetingProjectionsShareOneISIUpdate(t *testing.T) {
	projA := newSTDPProjection()
	projA.Add(projection.Synapse[SynapseParameters]{
		From: 0, To: 0,
		Params: SynapseParameters{
			DeltaSynapseParameters: projection.DeltaSynapseParameters{Weight: 0.1, Delay: 1},
			SynapticResource:       0.5,
			WMin:                   0,
			WMax:                   1,
			DU:                     0.1,
		},
	})
	projB := newSTDPProjection()
	projB.Add(projection.Synapse[SynapseParameters]{
		From: 0, To: 0,
		Params: SynapseParameters{
			DeltaSynapseParameters: projection.DeltaSynapseParameters{Weight: 0.1, Delay: 1},
			SynapticResource:       0.5,
			WMin:                   0,
			WMax:                   1,
			DU:                     0.1,
		},
	})

	n := population.NewSynapticResourceSTDPParameters()
	n.ISIMax = 100
	n.SynapticResourceThreshold = 1e9
	n.StabilityChangeAtISI = 0.25

	OnPostsynapticSpike(&n, []*projection.Projection[SynapseParameters]{projA, projB}, 0, 1, false)

	if n.ISIStatus != population.PeriodStarted {
		t.Fatalf("expected a single PeriodStarted transition, got %v", n.ISIStatus)
	}
	if math.Abs(n.Stability-(-0.25)) > 1e-9 {
		t.Fatalf("stability must be decremented exactly once across both projections, got %v", n.Stability)
	}
	wantResource := 0.5 - 0.1
	for _, proj := range []*projection.Projection[SynapseParameters]{projA, projB} {
		if math.Abs(proj.Synapses[0].Params.SynapticResource-wantResource) > 1e-9 {
			t.Fatalf("expected resource drain applied once per projection, got %v", proj.Synapses[0].Params.SynapticResource)
		}
	}
}
