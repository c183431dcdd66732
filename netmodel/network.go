package netmodel

import (
	"fmt"

	"neuroplatform/uid"
)

// Network is the closed-over simulation state (§4.7): an ordered set of
// populations and an ordered set of projections, each indexed by UID.
// Duplicate UIDs are rejected.
type Network struct {
	populationOrder []uid.UID
	populations     map[uid.UID]PopulationVariant

	projectionOrder []uid.UID
	projections     map[uid.UID]ProjectionVariant
}

// NewNetwork returns an empty network.
func NewNetwork() *Network {
	return &Network{
		populations: make(map[uid.UID]PopulationVariant),
		projections: make(map[uid.UID]ProjectionVariant),
	}
}

// AddPopulation adds p to the network, preserving insertion order. It
// returns an error if a population with the same UID already exists.
func (n *Network) AddPopulation(p PopulationVariant) error {
	id := p.UID()
	if _, exists := n.populations[id]; exists {
		return fmt.Errorf("netmodel: duplicate population UID %s", id)
	}
	n.populations[id] = p
	n.populationOrder = append(n.populationOrder, id)
	return nil
}

// AddProjection adds p to the network, preserving insertion order. It
// returns an error if a projection with the same UID already exists.
func (n *Network) AddProjection(p ProjectionVariant) error {
	id := p.UID()
	if _, exists := n.projections[id]; exists {
		return fmt.Errorf("netmodel: duplicate projection UID %s", id)
	}
	n.projections[id] = p
	n.projectionOrder = append(n.projectionOrder, id)
	return nil
}

// RemovePopulation removes the population with the given UID, reporting
// whether one was found.
func (n *Network) RemovePopulation(id uid.UID) bool {
	if _, exists := n.populations[id]; !exists {
		return false
	}
	delete(n.populations, id)
	n.populationOrder = removeUID(n.populationOrder, id)
	return true
}

// RemoveProjection removes the projection with the given UID, reporting
// whether one was found.
func (n *Network) RemoveProjection(id uid.UID) bool {
	if _, exists := n.projections[id]; !exists {
		return false
	}
	delete(n.projections, id)
	n.projectionOrder = removeUID(n.projectionOrder, id)
	return true
}

// Population returns the population with the given UID, or false if none
// exists.
func (n *Network) Population(id uid.UID) (PopulationVariant, bool) {
	p, ok := n.populations[id]
	return p, ok
}

// Projection returns the projection with the given UID, or false if none
// exists.
func (n *Network) Projection(id uid.UID) (ProjectionVariant, bool) {
	p, ok := n.projections[id]
	return p, ok
}

// Populations returns every population in insertion order.
func (n *Network) Populations() []PopulationVariant {
	out := make([]PopulationVariant, 0, len(n.populationOrder))
	for _, id := range n.populationOrder {
		out = append(out, n.populations[id])
	}
	return out
}

// Projections returns every projection in insertion order.
func (n *Network) Projections() []ProjectionVariant {
	out := make([]ProjectionVariant, 0, len(n.projectionOrder))
	for _, id := range n.projectionOrder {
		out = append(out, n.projections[id])
	}
	return out
}

func removeUID(order []uid.UID, id uid.UID) []uid.UID {
	for i, existing := range order {
		if existing == id {
			return append(order[:i], order[i+1:]...)
		}
	}
	return order
}
