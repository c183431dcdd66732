package netmodel

import (
	"testing"

	"neuroplatform/population"
	"neuroplatform/projection"
	"neuroplatform/uid"
)

func TestNetworkRejectsDuplicateUID(t *testing.T) {
	n := NewNetwork()
	pop := population.New(3, func(int) population.BLIFATParameters { return population.NewBLIFATParameters() })

	if err := n.AddPopulation(pop); err != nil {
		t.Fatalf("unexpected error adding population: %v", err)
	}
	if err := n.AddPopulation(pop); err == nil {
		t.Fatalf("expected error adding duplicate population UID")
	}
}

func TestNetworkAddGetRemoveIterate(t *testing.T) {
	n := NewNetwork()
	popA := population.New(2, func(int) population.BLIFATParameters { return population.NewBLIFATParameters() })
	popB := population.New(2, func(int) population.BLIFATParameters { return population.NewBLIFATParameters() })
	proj := projection.New[projection.DeltaSynapseParameters](popA.UID(), popB.UID())

	if err := n.AddPopulation(popA); err != nil {
		t.Fatalf("add popA: %v", err)
	}
	if err := n.AddPopulation(popB); err != nil {
		t.Fatalf("add popB: %v", err)
	}
	if err := n.AddProjection(proj); err != nil {
		t.Fatalf("add proj: %v", err)
	}

	if got, ok := n.Population(popA.UID()); !ok || got.UID() != popA.UID() {
		t.Fatalf("expected to find popA by UID")
	}
	if len(n.Populations()) != 2 {
		t.Fatalf("expected 2 populations, got %d", len(n.Populations()))
	}
	if len(n.Projections()) != 1 {
		t.Fatalf("expected 1 projection, got %d", len(n.Projections()))
	}

	if !n.RemovePopulation(popA.UID()) {
		t.Fatalf("expected popA removal to succeed")
	}
	if _, ok := n.Population(popA.UID()); ok {
		t.Fatalf("popA should no longer be present")
	}
	if len(n.Populations()) != 1 {
		t.Fatalf("expected 1 population after removal, got %d", len(n.Populations()))
	}

	if n.RemovePopulation(uid.NewRandom()) {
		t.Fatalf("removing an unknown UID must report false")
	}
}
