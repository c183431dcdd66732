package messaging

import "neuroplatform/uid"

// Message is the tagged-dispatch interface implemented by every message
// type in the closed registry (SpikeMessage, SynapticImpactMessage). The
// bus and subscription table work exclusively through this interface so
// that adding a new message kind only means adding a new case to the
// closed TypeIndex list and a new implementation of this interface.
type Message interface {
	// TypeIndex returns the stable ordinal of the message's type.
	TypeIndex() TypeIndex
	// Sender returns the UID that produced the message.
	Sender() uid.UID
	// Step returns the simulation step the message was sent on.
	Step() Step
}

func (m SpikeMessage) TypeIndex() TypeIndex { return SpikeMessageType }
func (m SpikeMessage) Sender() uid.UID      { return m.Header.SenderUID }
func (m SpikeMessage) Step() Step           { return m.Header.Step }

func (m SynapticImpactMessage) TypeIndex() TypeIndex { return SynapticImpactMessageType }
func (m SynapticImpactMessage) Sender() uid.UID      { return m.Header.SenderUID }
func (m SynapticImpactMessage) Step() Step           { return m.Header.Step }
