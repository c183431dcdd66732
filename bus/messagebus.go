// Package bus implements the fan-out publish/subscribe message bus that
// routes spike and synaptic-impact messages between endpoints: the
// subscription table (§4.2), the endpoint (§4.3), and the bus itself
// (§4.3, §9 "weak references").
package bus

import (
	"weak"

	"go.uber.org/zap"

	"neuroplatform/messaging"
)

// MessageBus is a fan-out router: it moves messages from endpoint outboxes
// to every live endpoint's raw inbox once per Route call. It holds only
// weak references to endpoint state, so a dropped Endpoint simply stops
// participating on the next routing pass (§3.7) without any explicit
// deregistration.
type MessageBus struct {
	endpoints []weak.Pointer[endpointState]
	logger    *zap.Logger
}

// NewMessageBus returns an empty bus. A nil logger is replaced with a no-op
// logger.
func NewMessageBus(logger *zap.Logger) *MessageBus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MessageBus{logger: logger}
}

// CreateEndpoint returns a new Endpoint bound to this bus.
func (b *MessageBus) CreateEndpoint() *Endpoint {
	state := &endpointState{subs: newSubscriptionTable()}
	b.endpoints = append(b.endpoints, weak.Make(state))
	return &Endpoint{state: state, bus: b}
}

// Route performs one routing pass: it snapshots the live endpoints (pruning
// any whose weak reference has gone nil), drains every live endpoint's
// outbox into an internal to-route buffer preserving each endpoint's send
// order, then appends one copy of every buffered message to every live
// endpoint's raw inbox. It returns the total number of (message × live
// recipient) deliveries.
//
// Across endpoints the buffering order is unspecified, matching §4.3;
// within one endpoint's contribution, send order is preserved.
func (b *MessageBus) Route() int {
	live := make([]*endpointState, 0, len(b.endpoints))
	alive := b.endpoints[:0]
	for _, wp := range b.endpoints {
		if s := wp.Value(); s != nil {
			live = append(live, s)
			alive = append(alive, wp)
		}
	}
	b.endpoints = alive

	var toRoute []messaging.Message
	for _, s := range live {
		s.mu.Lock()
		if len(s.outbox) > 0 {
			toRoute = append(toRoute, s.outbox...)
			s.outbox = nil
		}
		s.mu.Unlock()
	}

	deliveries := 0
	for _, s := range live {
		if len(toRoute) == 0 {
			continue
		}
		s.mu.Lock()
		s.pending = append(s.pending, toRoute...)
		s.mu.Unlock()
		deliveries += len(toRoute)
	}

	if deliveries > 0 {
		b.logger.Debug("routed messages", zap.Int("messages", len(toRoute)), zap.Int("deliveries", deliveries))
	}
	return deliveries
}

// EndpointCount returns the number of currently live endpoints, pruning
// dead weak references as a side effect. Mainly useful for tests and
// diagnostics.
func (b *MessageBus) EndpointCount() int {
	alive := b.endpoints[:0]
	count := 0
	for _, wp := range b.endpoints {
		if wp.Value() != nil {
			alive = append(alive, wp)
			count++
		}
	}
	b.endpoints = alive
	return count
}
