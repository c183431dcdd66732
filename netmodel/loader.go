package netmodel

import (
	"neuroplatform/bus"
	"neuroplatform/messaging"
	"neuroplatform/uid"
)

// LoadedChannels is the result of ModelLoader.Load: one endpoint per input
// channel (subscribed by the backend's projections to receive injected
// spikes) and one endpoint per output channel (already subscribed to its
// source populations' spikes), keyed by channel UID.
type LoadedChannels struct {
	Input  map[uid.UID]*bus.Endpoint
	Output map[uid.UID]*bus.Endpoint
}

// ModelLoader composes a Model with a backend's bus (§4.7): it hands each
// input-channel UID a fresh endpoint and subscribes the associated
// projections to it, subscribes output-channel endpoints to the associated
// populations, and tags every such projection/population io_type per
// §4.7/§9.
type ModelLoader struct {
	messageBus *bus.MessageBus
}

// NewModelLoader returns a loader that creates endpoints on messageBus.
func NewModelLoader(messageBus *bus.MessageBus) *ModelLoader {
	return &ModelLoader{messageBus: messageBus}
}

// Load wires every channel configured on model and returns the resulting
// endpoints. The caller (the backend) is responsible for loading the
// model's populations and projections into its own typed containers; Load
// only tags them and sets up bus subscriptions.
func (l *ModelLoader) Load(model *Model) LoadedChannels {
	result := LoadedChannels{
		Input:  make(map[uid.UID]*bus.Endpoint),
		Output: make(map[uid.UID]*bus.Endpoint),
	}

	network := model.Network()

	for channelUID, projectionUIDs := range model.InputChannels() {
		endpoint := l.messageBus.CreateEndpoint()
		for _, projUID := range projectionUIDs {
			endpoint.Subscribe(projUID, messaging.SpikeMessageType, []uid.UID{channelUID})
			if proj, ok := network.Projection(projUID); ok {
				proj.Tags().Set(uid.IOTypeTag, uid.IOTypeInput)
			}
		}
		result.Input[channelUID] = endpoint
	}

	for channelUID, populationUIDs := range model.OutputChannels() {
		endpoint := l.messageBus.CreateEndpoint()
		endpoint.Subscribe(channelUID, messaging.SpikeMessageType, populationUIDs)
		for _, popUID := range populationUIDs {
			if pop, ok := network.Population(popUID); ok {
				pop.Tags().Set(uid.IOTypeTag, uid.IOTypeOutput)
			}
		}
		result.Output[channelUID] = endpoint
	}

	return result
}
