package bus

import (
	"sync"
	"time"

	"neuroplatform/messaging"
	"neuroplatform/uid"
)

// endpointState is the part of an Endpoint that the bus holds a weak
// reference to. Keeping it as a separate, GC-trackable object lets the bus
// detect a dropped Endpoint on the next routing pass without invalidating
// bus state, per §3.7.
type endpointState struct {
	mu      sync.Mutex
	outbox  []messaging.Message
	pending []messaging.Message
	subs    *subscriptionTable
}

// Endpoint is a participant handle on a MessageBus. It owns its
// subscriptions and send/receive queues; dropping the last reference to an
// Endpoint removes it (and its subscriptions) from the bus on the next
// routing pass, without any explicit close call.
type Endpoint struct {
	state *endpointState
	bus   *MessageBus
}

// Send enqueues message on the endpoint's outbox for the next routing pass.
// A SpikeMessage with no spikes is silently dropped rather than enqueued,
// per §4.3 ("send of an empty SpikeMessage is a no-op, not an error").
func (e *Endpoint) Send(message messaging.Message) {
	if sm, ok := message.(messaging.SpikeMessage); ok && sm.IsEmpty() {
		return
	}
	e.state.mu.Lock()
	e.state.outbox = append(e.state.outbox, message)
	e.state.mu.Unlock()
}

// ReceiveOne returns the next message waiting in the endpoint's raw inbox
// (messages delivered by the bus but not yet distributed to subscriptions),
// or false if none is waiting.
func (e *Endpoint) ReceiveOne() (messaging.Message, bool) {
	e.state.mu.Lock()
	defer e.state.mu.Unlock()
	if len(e.state.pending) == 0 {
		return nil, false
	}
	m := e.state.pending[0]
	e.state.pending = e.state.pending[1:]
	return m, true
}

// ReceiveAll drains the endpoint's raw inbox into its subscriptions,
// dispatching each message to every subscription whose type matches and
// whose sender set contains the message's sender. It returns the total
// number of (message, subscription) deliveries. If sleep is positive, the
// call blocks for that duration before draining, matching the original
// platform's optional throttled receive loop.
func (e *Endpoint) ReceiveAll(sleep time.Duration) int {
	if sleep > 0 {
		time.Sleep(sleep)
	}
	e.state.mu.Lock()
	pending := e.state.pending
	e.state.pending = nil
	subs := e.state.subs
	e.state.mu.Unlock()

	count := 0
	for _, m := range pending {
		count += subs.dispatch(m)
	}
	return count
}

// Subscribe adds a subscription for messages of the given type index from
// senders, addressed to receiver. If a matching subscription already
// exists, senders is merged into it. It returns the number of newly added
// senders.
func (e *Endpoint) Subscribe(receiver uid.UID, typeIndex messaging.TypeIndex, senders []uid.UID) int {
	e.state.mu.Lock()
	defer e.state.mu.Unlock()
	_, added := e.state.subs.subscribe(receiver, typeIndex, senders)
	return added
}

// Unsubscribe removes the subscription for (receiver, typeIndex), reporting
// whether one existed.
func (e *Endpoint) Unsubscribe(receiver uid.UID, typeIndex messaging.TypeIndex) bool {
	e.state.mu.Lock()
	defer e.state.mu.Unlock()
	return e.state.subs.unsubscribe(receiver, typeIndex)
}

// RemoveReceiver removes every subscription belonging to receiver,
// regardless of message type.
func (e *Endpoint) RemoveReceiver(receiver uid.UID) {
	e.state.mu.Lock()
	defer e.state.mu.Unlock()
	e.state.subs.removeReceiver(receiver)
}

// UnloadSpikes returns and clears the inbox of the (receiver,
// SpikeMessageType) subscription. It returns nil if no such subscription
// exists.
func (e *Endpoint) UnloadSpikes(receiver uid.UID) []messaging.SpikeMessage {
	e.state.mu.Lock()
	defer e.state.mu.Unlock()
	sub, ok := e.state.subs.get(receiver, messaging.SpikeMessageType)
	if !ok {
		return nil
	}
	raw := sub.drain()
	out := make([]messaging.SpikeMessage, 0, len(raw))
	for _, m := range raw {
		out = append(out, m.(messaging.SpikeMessage))
	}
	return out
}

// UnloadImpacts returns and clears the inbox of the (receiver,
// SynapticImpactMessageType) subscription. It returns nil if no such
// subscription exists.
func (e *Endpoint) UnloadImpacts(receiver uid.UID) []messaging.SynapticImpactMessage {
	e.state.mu.Lock()
	defer e.state.mu.Unlock()
	sub, ok := e.state.subs.get(receiver, messaging.SynapticImpactMessageType)
	if !ok {
		return nil
	}
	raw := sub.drain()
	out := make([]messaging.SynapticImpactMessage, 0, len(raw))
	for _, m := range raw {
		out = append(out, m.(messaging.SynapticImpactMessage))
	}
	return out
}
