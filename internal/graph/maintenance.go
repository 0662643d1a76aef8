package graph

// RemoveOntologyEdges deletes any edge from src to one of targets,
// returning the number removed. Grounded on spec §4.5's
// apply_arbitration: arbitration is the only mutator allowed to reduce
// edges (spec §9).
func (g *Graph) RemoveOntologyEdges(src int64, targets []int64) int {
	if len(targets) == 0 {
		return 0
	}
	drop := make(map[int64]struct{}, len(targets))
	for _, t := range targets {
		drop[t] = struct{}{}
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	list := g.ontology[src]
	kept := list[:0]
	removed := 0
	for _, e := range list {
		if _, ok := drop[e.TargetID]; ok {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	g.ontology[src] = kept
	return removed
}

// DecayAndPruneOntology scales every ontology edge's strength by
// decayRate and drops edges whose resulting strength is <= threshold,
// per spec §4.5's apply_global_decay_and_pruning. Returns the number of
// edges pruned.
func (g *Graph) DecayAndPruneOntology(decayRate float64, threshold uint16) int {
	g.mu.Lock()
	defer g.mu.Unlock()

	pruned := 0
	for src, list := range g.ontology {
		kept := list[:0]
		for _, e := range list {
			e.Strength = saturateUint16(float64(e.Strength) * decayRate)
			if e.Strength <= threshold {
				pruned++
				continue
			}
			kept = append(kept, e)
		}
		g.ontology[src] = kept
	}
	return pruned
}
