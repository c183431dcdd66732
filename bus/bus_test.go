package bus

import (
	"reflect"
	"testing"

	"neuroplatform/messaging"
	"neuroplatform/uid"
)

// TestFanOutDelivery implements Testable Property S2: a bus with three
// endpoints A, B, C; A sends one SpikeMessage; B and C subscribe to spikes
// from A; after one Route, the bus has delivered the message to all three
// live endpoints (fan-out is per-endpoint, not per-subscription — the
// sender's own endpoint receives a copy too, which is what lets a
// self-loop subscription on the same endpoint see its own spikes), but
// only B and C's *subscriptions* surface it: A never subscribed to uidA,
// so A's subscription-level inbox stays empty even though the message
// reached A's raw pending queue.
func TestFanOutDelivery(t *testing.T) {
	b := NewMessageBus(nil)
	a := b.CreateEndpoint()
	bb := b.CreateEndpoint()
	c := b.CreateEndpoint()

	uidA := uid.NewRandom()
	uidB := uid.NewRandom()
	uidC := uid.NewRandom()

	bb.Subscribe(uidB, messaging.SpikeMessageType, []uid.UID{uidA})
	c.Subscribe(uidC, messaging.SpikeMessageType, []uid.UID{uidA})

	msg := messaging.SpikeMessage{Header: messaging.Header{SenderUID: uidA, Step: 0}, Indices: messaging.SpikeData{1, 2, 3}}
	a.Send(msg)

	deliveries := b.Route()
	if deliveries != 3 {
		t.Fatalf("expected 3 deliveries (A, B, and C each receive a copy), got %d", deliveries)
	}

	a.ReceiveAll(0)
	bb.ReceiveAll(0)
	c.ReceiveAll(0)

	gotB := bb.UnloadSpikes(uidB)
	gotC := c.UnloadSpikes(uidC)
	if len(gotB) != 1 || !reflect.DeepEqual(gotB[0].Indices, msg.Indices) {
		t.Fatalf("B: expected one message with indices %v, got %v", msg.Indices, gotB)
	}
	if len(gotC) != 1 || !reflect.DeepEqual(gotC[0].Indices, msg.Indices) {
		t.Fatalf("C: expected one message with indices %v, got %v", msg.Indices, gotC)
	}

	if got := a.UnloadSpikes(uidA); len(got) != 0 {
		t.Fatalf("A never subscribed to uidA, expected its subscription inbox empty, got %v", got)
	}
}

func TestEmptySpikeMessageNotSent(t *testing.T) {
	b := NewMessageBus(nil)
	sender := b.CreateEndpoint()
	receiver := b.CreateEndpoint()
	receiverUID := uid.NewRandom()
	senderUID := uid.NewRandom()
	receiver.Subscribe(receiverUID, messaging.SpikeMessageType, []uid.UID{senderUID})

	sender.Send(messaging.SpikeMessage{Header: messaging.Header{SenderUID: senderUID, Step: 0}})
	deliveries := b.Route()
	if deliveries != 0 {
		t.Fatalf("expected no deliveries for an empty spike message, got %d", deliveries)
	}
}

func TestDroppedEndpointStopsParticipating(t *testing.T) {
	b := NewMessageBus(nil)
	sender := b.CreateEndpoint()
	senderUID := uid.NewRandom()

	func() {
		receiver := b.CreateEndpoint()
		receiverUID := uid.NewRandom()
		receiver.Subscribe(receiverUID, messaging.SpikeMessageType, []uid.UID{senderUID})
		_ = receiver
	}()

	sender.Send(messaging.SpikeMessage{Header: messaging.Header{SenderUID: senderUID, Step: 0}, Indices: messaging.SpikeData{1}})

	// The receiver endpoint above is only reachable through the bus's weak
	// reference now; Route must not panic and must simply skip it. We can't
	// force a GC deterministically in a unit test, so this mainly guards
	// against a nil-dereference if the weak pointer were already cleared.
	if b.Route() < 0 {
		t.Fatalf("unreachable")
	}
}

func TestSubscribeMergesSenders(t *testing.T) {
	b := NewMessageBus(nil)
	e := b.CreateEndpoint()
	receiver := uid.NewRandom()
	s1 := uid.NewRandom()
	s2 := uid.NewRandom()

	added := e.Subscribe(receiver, messaging.SpikeMessageType, []uid.UID{s1})
	if added != 1 {
		t.Fatalf("expected 1 added sender, got %d", added)
	}
	added = e.Subscribe(receiver, messaging.SpikeMessageType, []uid.UID{s1, s2})
	if added != 1 {
		t.Fatalf("expected 1 newly added sender on merge, got %d", added)
	}
}

func TestSubscribeUnsubscribeRoundTrip(t *testing.T) {
	e := &Endpoint{state: &endpointState{subs: newSubscriptionTable()}}
	receiver := uid.NewRandom()
	sender := uid.NewRandom()

	e.Subscribe(receiver, messaging.SpikeMessageType, []uid.UID{sender})
	if !e.Unsubscribe(receiver, messaging.SpikeMessageType) {
		t.Fatalf("expected unsubscribe to report an existing subscription")
	}
	if e.Unsubscribe(receiver, messaging.SpikeMessageType) {
		t.Fatalf("second unsubscribe should report nothing existed")
	}
}
