package netmodel

import "neuroplatform/uid"

// Model wraps a Network and associates input-channel UIDs with the target
// projection UIDs they drive, and output-channel UIDs with the source
// population UIDs they observe (§4.7). The channel bookkeeping is a thin
// multimap; it exists only because the backend's initialisation (§4.8.1)
// needs it to wire subscriptions.
type Model struct {
	network *Network

	inputChannels  map[uid.UID][]uid.UID
	outputChannels map[uid.UID][]uid.UID
}

// NewModel wraps network in a fresh model with no channels configured.
func NewModel(network *Network) *Model {
	return &Model{
		network:        network,
		inputChannels:  make(map[uid.UID][]uid.UID),
		outputChannels: make(map[uid.UID][]uid.UID),
	}
}

// Network returns the wrapped network.
func (m *Model) Network() *Network { return m.network }

// AddInputChannel associates channel with the projection it drives.
func (m *Model) AddInputChannel(channel, projection uid.UID) {
	m.inputChannels[channel] = append(m.inputChannels[channel], projection)
}

// AddOutputChannel associates channel with the population it observes.
func (m *Model) AddOutputChannel(channel, population uid.UID) {
	m.outputChannels[channel] = append(m.outputChannels[channel], population)
}

// InputChannels returns every configured input channel UID and the
// projection UIDs it drives.
func (m *Model) InputChannels() map[uid.UID][]uid.UID { return m.inputChannels }

// OutputChannels returns every configured output channel UID and the
// population UIDs it observes.
func (m *Model) OutputChannels() map[uid.UID][]uid.UID { return m.outputChannels }
