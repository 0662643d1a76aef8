package graph

import (
	"github.com/yokoncy/pedsa/internal/fingerprint"
	"github.com/yokoncy/pedsa/internal/keyword"
)

// Compile runs the three-step index upkeep of spec §4.3: rebuild the
// keyword automaton over current feature contents, recompute in-degrees
// over both graphs, and rebuild the temporal/affective inverted indexes
// over event nodes. The resulting matcher is returned for the caller
// (internal/engine) to hold alongside the graph.
func (g *Graph) Compile() *keyword.Matcher {
	g.mu.Lock()
	defer g.mu.Unlock()

	matcher := keyword.Compile(g.featureContentsLocked())

	g.recomputeInDegreesLocked()
	g.rebuildInvertedIndexesLocked()

	return matcher
}

func (g *Graph) featureContentsLocked() []string {
	out := make([]string, 0, len(g.wordToFeature))
	for word := range g.wordToFeature {
		out = append(out, word)
	}
	return out
}

func (g *Graph) recomputeInDegreesLocked() {
	g.ontologyInDegree = make(map[int64]int, len(g.nodes))
	g.memoryInDegree = make(map[int64]int, len(g.nodes))

	for _, edges := range g.ontology {
		for _, e := range edges {
			g.ontologyInDegree[e.TargetID]++
		}
	}
	for _, edges := range g.memory {
		for _, e := range edges {
			g.memoryInDegree[e.TargetID]++
		}
	}
}

func (g *Graph) rebuildInvertedIndexesLocked() {
	g.temporalIndex = make(map[uint16]*idSet)
	g.affectiveIndex = make(map[fingerprint.EmotionBits]*idSet)

	for _, n := range g.nodes {
		if n.Kind != KindEvent {
			continue
		}

		if zone := n.Fingerprint.Temporal(); zone != 0 {
			set, ok := g.temporalIndex[zone]
			if !ok {
				set = newIDSet()
				g.temporalIndex[zone] = set
			}
			set.add(n.ID)
		}

		emotions := n.Fingerprint.Emotions()
		for bit := fingerprint.EmotionBits(1); bit != 0; bit <<= 1 {
			if emotions&bit == 0 {
				continue
			}
			set, ok := g.affectiveIndex[bit]
			if !ok {
				set = newIDSet()
				g.affectiveIndex[bit] = set
			}
			set.add(n.ID)
		}
	}
}

// OntologyInDegree returns the precomputed in-degree of a node within
// the ontology graph, or 0 if absent (callers treat absence as "1" per
// the S4 diffusion formula; see internal/retrieval).
func (g *Graph) OntologyInDegree(id int64) int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.ontologyInDegree[id]
}

// MemoryInDegree returns the precomputed in-degree of a node within the
// memory graph.
func (g *Graph) MemoryInDegree(id int64) int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.memoryInDegree[id]
}

// TemporalBucket returns the event ids whose temporal hash zone equals
// hash.
func (g *Graph) TemporalBucket(hash uint16) []int64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	set, ok := g.temporalIndex[hash]
	if !ok {
		return nil
	}
	return set.toSlice()
}

// AffectiveBucket returns the event ids that have emotion bit set.
func (g *Graph) AffectiveBucket(bit fingerprint.EmotionBits) []int64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	set, ok := g.affectiveIndex[bit]
	if !ok {
		return nil
	}
	return set.toSlice()
}
