// Package monitoring provides read-only observers over the message bus: a
// generic spike observer grounded on the original platform's
// MessageObserver (knp/core-library/include/knp/monitoring/observer.h), an
// ordered writer for per-entity spike traces, and a firing-rate tracker
// backed by gonum/stat.
package monitoring

import (
	"time"

	"neuroplatform/bus"
	"neuroplatform/messaging"
	"neuroplatform/uid"
)

// SpikeObserver drains spike messages from entities off its own endpoint on
// every Update call, mirroring the original MessageObserver<SpikeMessage>'s
// subscribe-then-unload cycle.
type SpikeObserver struct {
	endpoint *bus.Endpoint
	uid      uid.UID
}

// NewSpikeObserver creates an observer subscribed to spike messages from
// entities on endpoint. The caller owns endpoint's lifetime; the observer
// only subscribes and reads from it.
func NewSpikeObserver(endpoint *bus.Endpoint, entities []uid.UID) *SpikeObserver {
	o := &SpikeObserver{endpoint: endpoint, uid: uid.NewRandom()}
	endpoint.Subscribe(o.uid, messaging.SpikeMessageType, entities)
	return o
}

// Update drains pending messages into subscriptions and returns whatever
// spike messages arrived for this observer since the last call.
func (o *SpikeObserver) Update() []messaging.SpikeMessage {
	o.endpoint.ReceiveAll(0)
	return o.endpoint.UnloadSpikes(o.uid)
}

// Watch subscribes to additional entities without losing the existing
// subscription's accumulated senders.
func (o *SpikeObserver) Watch(entities []uid.UID) {
	o.endpoint.Subscribe(o.uid, messaging.SpikeMessageType, entities)
}

// ImpactObserver is SpikeObserver for synaptic impact messages.
type ImpactObserver struct {
	endpoint *bus.Endpoint
	uid      uid.UID
}

// NewImpactObserver creates an observer subscribed to impact messages
// emitted by the projections in sources.
func NewImpactObserver(endpoint *bus.Endpoint, sources []uid.UID) *ImpactObserver {
	o := &ImpactObserver{endpoint: endpoint, uid: uid.NewRandom()}
	endpoint.Subscribe(o.uid, messaging.SynapticImpactMessageType, sources)
	return o
}

// Update drains pending messages and returns impact messages that arrived
// since the last call.
func (o *ImpactObserver) Update() []messaging.SynapticImpactMessage {
	o.endpoint.ReceiveAll(0)
	return o.endpoint.UnloadImpacts(o.uid)
}

// ReceiveAllWithThrottle blocks for sleep before draining endpoint, matching
// the original platform's optional throttled receive loop; intended for a
// CLI poll loop watching a live simulation's output channel.
func ReceiveAllWithThrottle(endpoint *bus.Endpoint, sleep time.Duration) int {
	return endpoint.ReceiveAll(sleep)
}
