// Package netmodel implements the Network, Model, and ModelLoader layer
// (§4.7): the closed-over network state, its channel bookkeeping, and the
// glue that wires a model's channels and populations/projections onto a
// backend's bus.
//
// Go has no direct analogue of the source's compile-time variant over
// neuron/synapse kinds, so PopulationVariant and ProjectionVariant stand in
// for it: thin interfaces every supported Population[N]/Projection[S]
// instantiation already satisfies, used by Network to hold entities of any
// kind. The backend does not take variants: it has one typed Add method and
// container per kind.
package netmodel

import "neuroplatform/uid"

// PopulationVariant is the closed set of population kinds a Network can
// hold: currently *population.Population[BLIFATParameters] and
// *population.Population[SynapticResourceSTDPParameters].
type PopulationVariant interface {
	UID() uid.UID
	Tags() *uid.TagMap
	Size() int
}

// ProjectionVariant is the closed set of projection kinds a Network can
// hold: currently *projection.Projection[DeltaSynapseParameters] and
// *projection.Projection[plasticity.SynapseParameters].
type ProjectionVariant interface {
	UID() uid.UID
	Tags() *uid.TagMap
	Size() int
	PresynapticUID() uid.UID
	PostsynapticUID() uid.UID
	Locked() bool
}
