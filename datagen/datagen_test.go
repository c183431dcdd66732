package datagen_test

import (
	"testing"

	"neuroplatform/datagen"
	"neuroplatform/messaging"
	"neuroplatform/population"
	"neuroplatform/uid"
)

func TestDigitPatternHasExpectedShapeAndActivePixels(t *testing.T) {
	pattern, err := datagen.DigitPattern(1)
	if err != nil {
		t.Fatalf("DigitPattern: %v", err)
	}
	if len(pattern) != datagen.PatternSize {
		t.Fatalf("expected pattern of size %d, got %d", datagen.PatternSize, len(pattern))
	}

	indices, err := datagen.DigitSpikeIndices(1)
	if err != nil {
		t.Fatalf("DigitSpikeIndices: %v", err)
	}
	active := 0
	for _, v := range pattern {
		if v == 1.0 {
			active++
		}
	}
	if len(indices) != active {
		t.Errorf("expected %d active indices, got %d", active, len(indices))
	}
	for _, idx := range indices {
		if pattern[idx] != 1.0 {
			t.Errorf("index %d reported active but pattern value is %f", idx, pattern[idx])
		}
	}
}

func TestDigitPatternRejectsUnknownDigit(t *testing.T) {
	if _, err := datagen.DigitPattern(42); err == nil {
		t.Error("expected an error for an out-of-range digit")
	}
}

func TestAllDigitPatternsCoversZeroThroughNine(t *testing.T) {
	patterns, err := datagen.AllDigitPatterns()
	if err != nil {
		t.Fatalf("AllDigitPatterns: %v", err)
	}
	for d := 0; d <= 9; d++ {
		if _, ok := patterns[d]; !ok {
			t.Errorf("missing pattern for digit %d", d)
		}
	}
}

func TestDigitSpikeMessageCarriesHeaderAndIndices(t *testing.T) {
	sender := uid.NewRandom()
	msg, err := datagen.DigitSpikeMessage(7, sender, 3)
	if err != nil {
		t.Fatalf("DigitSpikeMessage: %v", err)
	}
	if msg.Header.SenderUID != sender || msg.Header.Step != 3 {
		t.Errorf("unexpected header: %+v", msg.Header)
	}
	if len(msg.Indices) == 0 {
		t.Error("expected a non-empty spike message for digit 7")
	}
}

func TestUniformBLIFATGeneratorAppliesSameParamsToEveryNeuron(t *testing.T) {
	params := population.NewBLIFATParameters()
	params.PotentialDecay = 0.5
	pop := population.New(4, datagen.UniformBLIFATGenerator(params))
	for i, n := range pop.Neurons {
		if n.PotentialDecay != 0.5 {
			t.Errorf("neuron %d did not receive the generator's parameters: %+v", i, n)
		}
	}
}

func TestAllToAllDeltaSynapsesConnectsEveryPair(t *testing.T) {
	synapses := datagen.AllToAllDeltaSynapses(2, 3, 1.0, 1, messaging.Excitatory)
	if len(synapses) != 6 {
		t.Fatalf("expected 6 synapses, got %d", len(synapses))
	}
	seen := make(map[[2]uint32]bool)
	for _, s := range synapses {
		seen[[2]uint32{s.From, s.To}] = true
	}
	if len(seen) != 6 {
		t.Errorf("expected 6 distinct (from, to) pairs, got %d", len(seen))
	}
}

func TestOneToOneDeltaSynapsesConnectsMatchingIndices(t *testing.T) {
	synapses := datagen.OneToOneDeltaSynapses(3, 0.5, 2, messaging.Excitatory)
	if len(synapses) != 3 {
		t.Fatalf("expected 3 synapses, got %d", len(synapses))
	}
	for _, s := range synapses {
		if s.From != s.To {
			t.Errorf("expected matching indices, got %d -> %d", s.From, s.To)
		}
	}
}
