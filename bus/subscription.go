package bus

import (
	"neuroplatform/messaging"
	"neuroplatform/uid"
)

// subscriptionKey identifies a subscription slot: the message type it
// accepts and the receiver it was created for. The closed, ordered list of
// message types (messaging.TypeIndex) gives this key a stable shape across
// persisted or transmitted type tags, per §4.2.
type subscriptionKey struct {
	typeIndex messaging.TypeIndex
	receiver  uid.UID
}

// Subscription holds a receiver UID, the set of sender UIDs it accepts, and
// an inbox of messages that have already been matched to it by
// Endpoint.ReceiveAll. Every message in Inbox satisfies
// Inbox[i].Sender() ∈ Senders, by construction.
type Subscription struct {
	receiver  uid.UID
	typeIndex messaging.TypeIndex
	senders   map[uid.UID]struct{}
	inbox     []messaging.Message
}

func newSubscription(receiver uid.UID, typeIndex messaging.TypeIndex, senders []uid.UID) *Subscription {
	s := &Subscription{
		receiver:  receiver,
		typeIndex: typeIndex,
		senders:   make(map[uid.UID]struct{}, len(senders)),
	}
	for _, sender := range senders {
		s.senders[sender] = struct{}{}
	}
	return s
}

// Receiver returns the UID this subscription was created for.
func (s *Subscription) Receiver() uid.UID { return s.receiver }

// HasSender reports whether sender is in the subscription's accepted set.
func (s *Subscription) HasSender(sender uid.UID) bool {
	_, ok := s.senders[sender]
	return ok
}

// AddSender adds sender to the accepted set, returning 1 if it was newly
// added or 0 if it was already present.
func (s *Subscription) AddSender(sender uid.UID) int {
	if _, ok := s.senders[sender]; ok {
		return 0
	}
	s.senders[sender] = struct{}{}
	return 1
}

// RemoveSender removes sender from the accepted set, returning 1 if it was
// present or 0 otherwise.
func (s *Subscription) RemoveSender(sender uid.UID) int {
	if _, ok := s.senders[sender]; !ok {
		return 0
	}
	delete(s.senders, sender)
	return 1
}

func (s *Subscription) append(m messaging.Message) {
	s.inbox = append(s.inbox, m)
}

// drain returns and clears the subscription's inbox.
func (s *Subscription) drain() []messaging.Message {
	out := s.inbox
	s.inbox = nil
	return out
}

// subscriptionTable is the (type-index, receiver) -> Subscription map owned
// by a single endpoint.
type subscriptionTable struct {
	entries map[subscriptionKey]*Subscription
}

func newSubscriptionTable() *subscriptionTable {
	return &subscriptionTable{entries: make(map[subscriptionKey]*Subscription)}
}

// subscribe creates or extends the subscription for (receiver, typeIndex),
// returning the number of newly added senders.
func (t *subscriptionTable) subscribe(receiver uid.UID, typeIndex messaging.TypeIndex, senders []uid.UID) (*Subscription, int) {
	key := subscriptionKey{typeIndex: typeIndex, receiver: receiver}
	if existing, ok := t.entries[key]; ok {
		added := 0
		for _, s := range senders {
			added += existing.AddSender(s)
		}
		return existing, added
	}
	sub := newSubscription(receiver, typeIndex, senders)
	t.entries[key] = sub
	return sub, len(sub.senders)
}

// unsubscribe removes the subscription for (receiver, typeIndex), reporting
// whether one existed.
func (t *subscriptionTable) unsubscribe(receiver uid.UID, typeIndex messaging.TypeIndex) bool {
	key := subscriptionKey{typeIndex: typeIndex, receiver: receiver}
	if _, ok := t.entries[key]; !ok {
		return false
	}
	delete(t.entries, key)
	return true
}

// removeReceiver removes every subscription whose receiver equals receiver,
// across all message types.
func (t *subscriptionTable) removeReceiver(receiver uid.UID) {
	for key := range t.entries {
		if key.receiver == receiver {
			delete(t.entries, key)
		}
	}
}

func (t *subscriptionTable) get(receiver uid.UID, typeIndex messaging.TypeIndex) (*Subscription, bool) {
	sub, ok := t.entries[subscriptionKey{typeIndex: typeIndex, receiver: receiver}]
	return sub, ok
}

// dispatch appends m to every subscription whose type matches m's type and
// whose sender set contains m's sender, returning the number of
// subscriptions it was delivered to.
func (t *subscriptionTable) dispatch(m messaging.Message) int {
	count := 0
	for key, sub := range t.entries {
		if key.typeIndex != m.TypeIndex() {
			continue
		}
		if !sub.HasSender(m.Sender()) {
			continue
		}
		sub.append(m)
		count++
	}
	return count
}
