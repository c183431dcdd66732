package monitoring

import (
	"gonum.org/v1/gonum/stat"

	"neuroplatform/messaging"
	"neuroplatform/uid"
)

// FiringRateTracker keeps a fixed-size sliding window of per-step spike
// counts for a set of entities (populations or individual output channels)
// and reports their firing-rate statistics via gonum/stat, the same way a
// CLI observe loop would report firing rates without re-deriving mean and
// variance by hand on every poll.
type FiringRateTracker struct {
	window int
	counts map[uid.UID][]float64
}

// NewFiringRateTracker creates a tracker holding the last window steps of
// spike counts per entity.
func NewFiringRateTracker(window int) *FiringRateTracker {
	if window <= 0 {
		window = 1
	}
	return &FiringRateTracker{window: window, counts: make(map[uid.UID][]float64)}
}

// Observe records one step's spike count for msg.Header.SenderUID.
func (t *FiringRateTracker) Observe(msg messaging.SpikeMessage) {
	t.record(msg.Header.SenderUID, float64(len(msg.Indices)))
}

// ObserveCount records a step's spike count directly, for callers that
// already aggregated spikes some other way (e.g. from a storage.Archive
// query).
func (t *FiringRateTracker) ObserveCount(entity uid.UID, spikeCount int) {
	t.record(entity, float64(spikeCount))
}

func (t *FiringRateTracker) record(entity uid.UID, count float64) {
	window := append(t.counts[entity], count)
	if len(window) > t.window {
		window = window[len(window)-t.window:]
	}
	t.counts[entity] = window
}

// MeanRate returns the mean spike count per step over entity's current
// window, or 0 if nothing has been observed yet.
func (t *FiringRateTracker) MeanRate(entity uid.UID) float64 {
	window := t.counts[entity]
	if len(window) == 0 {
		return 0
	}
	return stat.Mean(window, nil)
}

// StdDevRate returns the standard deviation of entity's spike count over
// its current window, or 0 if fewer than two samples have been observed.
func (t *FiringRateTracker) StdDevRate(entity uid.UID) float64 {
	window := t.counts[entity]
	if len(window) < 2 {
		return 0
	}
	return stat.StdDev(window, nil)
}

// Entities returns every entity the tracker currently holds a window for.
func (t *FiringRateTracker) Entities() []uid.UID {
	out := make([]uid.UID, 0, len(t.counts))
	for id := range t.counts {
		out = append(out, id)
	}
	return out
}
