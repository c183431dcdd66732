package handlers

import (
	"sort"
	"testing"

	"neuroplatform/messaging"
)

// TestGroupWTASelectsHighestSpikeGroup implements scenario S4: groups with
// right-borders [3, 6, 9] and k=1, fed indices [1, 2, 3, 6], must yield the
// spike set {1, 2} (the group [0..2] had the most spikes).
func TestGroupWTASelectsHighestSpikeGroup(t *testing.T) {
	h := NewGroupWTARandomHandler([]int{3, 6, 9}, 1, 42)
	messages := []messaging.SpikeMessage{{
		Header:  messaging.Header{},
		Indices: []uint32{1, 2, 3, 6},
	}}

	got := h.Handle(messages)
	sort.Slice(got, func(i, j int) bool { return got[i] < got[j] })

	want := []uint32{1, 2}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestGroupWTAReturnsFirstMessageWhenWinnersExceedGroups(t *testing.T) {
	h := NewGroupWTARandomHandler([]int{3}, 5, 1)
	messages := []messaging.SpikeMessage{{Indices: []uint32{1, 2, 4}}}
	got := h.Handle(messages)
	if len(got) != 3 {
		t.Fatalf("expected the unmodified message indices, got %v", got)
	}
}

func TestKWTAReturnsAllSpikesBelowWinnerCount(t *testing.T) {
	h := NewKWTARandomHandler(5, 1)
	messages := []messaging.SpikeMessage{{Indices: []uint32{1, 2}}}
	got := h.Handle(messages)
	if len(got) != 2 {
		t.Fatalf("expected both spikes returned, got %v", got)
	}
}

func TestKWTASelectsExactlyNumWinners(t *testing.T) {
	h := NewKWTARandomHandler(2, 7)
	messages := []messaging.SpikeMessage{{Indices: []uint32{1, 2, 3, 4, 5}}}
	got := h.Handle(messages)
	if len(got) != 2 {
		t.Fatalf("expected 2 winners, got %d", len(got))
	}
	seen := make(map[uint32]bool)
	for _, idx := range got {
		if seen[idx] {
			t.Fatalf("winner %d selected twice", idx)
		}
		seen[idx] = true
	}
}

func TestSpikeUnionDeduplicates(t *testing.T) {
	h := SpikeUnionHandler{}
	messages := []messaging.SpikeMessage{
		{Indices: []uint32{1, 2, 3}},
		{Indices: []uint32{2, 3, 4}},
	}
	got := h.Handle(messages)
	sort.Slice(got, func(i, j int) bool { return got[i] < got[j] })
	want := []uint32{1, 2, 3, 4}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}
