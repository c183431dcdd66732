// Package handlers implements the message-handler modifiers described in
// §9 "Suspension-style channel send" and exercised in §8 scenario S4: small
// synchronous callables that turn a batch of incoming SpikeMessages into a
// single reduced SpikeData sequence, used by output channels and
// feedback-loop wiring.
package handlers

import (
	"math/rand"
	"sort"

	"neuroplatform/messaging"
)

// KWTARandomHandler implements k-winners-take-all: given the first message
// in a batch, it picks numWinners neuron indices uniformly at random
// without replacement. If the message carries fewer spikes than
// numWinners, every spike is returned.
type KWTARandomHandler struct {
	NumWinners int
	Rand       *rand.Rand
}

// NewKWTARandomHandler returns a handler seeded from a fresh private
// random source.
func NewKWTARandomHandler(numWinners int, seed int64) *KWTARandomHandler {
	return &KWTARandomHandler{NumWinners: numWinners, Rand: rand.New(rand.NewSource(seed))}
}

// Handle reduces messages to at most NumWinners spike indices.
func (h *KWTARandomHandler) Handle(messages []messaging.SpikeMessage) messaging.SpikeData {
	if len(messages) == 0 {
		return nil
	}

	indices := append(messaging.SpikeData(nil), messages[0].Indices...)
	if len(indices) < h.NumWinners {
		return indices
	}

	out := make(messaging.SpikeData, 0, h.NumWinners)
	for i := 0; i < h.NumWinners; i++ {
		pick := h.Rand.Intn(len(indices) - i)
		out = append(out, indices[pick])
		last := len(indices) - 1 - i
		indices[pick], indices[last] = indices[last], indices[pick]
	}
	return out
}

// GroupWTARandomHandler implements the group-KWTA variant: neurons are
// bucketed into groups by groupBorders (an ascending sequence of
// exclusive upper bounds, plus an implicit final group for anything past
// the last border), and the NumWinners groups with the most spikes win in
// full; ties at the cutoff are broken by a random shuffle.
type GroupWTARandomHandler struct {
	GroupBorders []int
	NumWinners   int
	Rand         *rand.Rand
}

// NewGroupWTARandomHandler returns a handler seeded from a fresh private
// random source.
func NewGroupWTARandomHandler(groupBorders []int, numWinners int, seed int64) *GroupWTARandomHandler {
	return &GroupWTARandomHandler{GroupBorders: groupBorders, NumWinners: numWinners, Rand: rand.New(rand.NewSource(seed))}
}

// Handle reduces messages to the union of spikes in the NumWinners groups
// with the most spikes, implementing Testable Property / scenario S4.
func (h *GroupWTARandomHandler) Handle(messages []messaging.SpikeMessage) messaging.SpikeData {
	if len(messages) == 0 {
		return nil
	}
	if h.NumWinners > len(h.GroupBorders) {
		return append(messaging.SpikeData(nil), messages[0].Indices...)
	}

	spikes := messages[0].Indices
	if len(spikes) == 0 {
		return messaging.SpikeData{}
	}

	groups := make([]messaging.SpikeData, len(h.GroupBorders)+1)
	for _, spike := range spikes {
		idx := upperBound(h.GroupBorders, int(spike))
		groups[idx] = append(groups[idx], spike)
	}

	sort.SliceStable(groups, func(i, j int) bool { return len(groups[i]) > len(groups[j]) })

	// Find the range of groups tied with the k-th group's size, and shuffle
	// only that tied range before truncating to NumWinners, so ties at the
	// cutoff are broken randomly rather than by group order.
	kthSize := len(groups[h.NumWinners-1])
	lo, hi := equalRangeBySize(groups, kthSize)
	h.Rand.Shuffle(hi-lo, func(i, j int) {
		groups[lo+i], groups[lo+j] = groups[lo+j], groups[lo+i]
	})

	var result messaging.SpikeData
	for i := 0; i < h.NumWinners; i++ {
		result = append(result, groups[i]...)
	}
	return result
}

// upperBound returns the index of the first element in sorted ascending
// borders strictly greater than v, or len(borders) if none.
func upperBound(borders []int, v int) int {
	lo, hi := 0, len(borders)
	for lo < hi {
		mid := (lo + hi) / 2
		if borders[mid] > v {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	return lo
}

// equalRangeBySize returns the [lo, hi) index range of groups, sorted
// descending by size, whose length equals size.
func equalRangeBySize(groups []messaging.SpikeData, size int) (int, int) {
	lo := sort.Search(len(groups), func(i int) bool { return len(groups[i]) <= size })
	hi := sort.Search(len(groups), func(i int) bool { return len(groups[i]) < size })
	return lo, hi
}

// SpikeUnionHandler reduces a batch of messages to the deduplicated union
// of every spike index across all of them.
type SpikeUnionHandler struct{}

// Handle returns every distinct spike index across messages.
func (SpikeUnionHandler) Handle(messages []messaging.SpikeMessage) messaging.SpikeData {
	seen := make(map[messaging.SpikeIndex]struct{})
	for _, msg := range messages {
		for _, idx := range msg.Indices {
			seen[idx] = struct{}{}
		}
	}
	result := make(messaging.SpikeData, 0, len(seen))
	for idx := range seen {
		result = append(result, idx)
	}
	return result
}
