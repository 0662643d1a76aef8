package graph

import "strings"

// MaintainOntology resolves srcWord and tgtWord to feature ids (creating
// them on first use) and applies the Hebbian update of spec §4.3 to the
// ontology edge between them. Equality and Inhibition edges are mirrored
// on the reverse direction; Representation edges are asserted only
// forward. Returns the resolved (src, tgt) feature ids, or StopwordID for
// whichever endpoint is a stopword (no edge is recorded in that case).
func (g *Graph) MaintainOntology(srcWord, tgtWord, relation string, weight float64) (src, tgt int64) {
	src = g.GetOrCreateFeature(srcWord)
	tgt = g.GetOrCreateFeature(tgtWord)
	if src == StopwordID || tgt == StopwordID {
		return src, tgt
	}

	edgeType := edgeTypeForRelation(relation)

	g.mu.Lock()
	defer g.mu.Unlock()

	hebbianUpdate(g.ontology, src, tgt, weight, edgeType)
	if edgeType == EdgeEquality || edgeType == EdgeInhibition {
		hebbianUpdate(g.ontology, tgt, src, weight, edgeType)
	}

	return src, tgt
}

func edgeTypeForRelation(relation string) EdgeType {
	switch strings.ToLower(relation) {
	case "equality":
		return EdgeEquality
	case "inhibition", "conflict":
		return EdgeInhibition
	default:
		return EdgeRepresentation
	}
}

// hebbianUpdate applies new = max(old + weight*32767.5, weight*65535),
// saturating at uint16 max, to the src→tgt edge in adj (creating it if
// absent).
func hebbianUpdate(adj map[int64][]Edge, src, tgt int64, weight float64, edgeType EdgeType) {
	list := adj[src]
	for i := range list {
		if list[i].TargetID == tgt {
			old := float64(list[i].Strength)
			next := old + weight*32767.5
			if floor := weight * 65535; floor > next {
				next = floor
			}
			list[i].Strength = saturateUint16(next)
			list[i].Type = edgeType
			return
		}
	}
	adj[src] = append(list, Edge{
		TargetID: tgt,
		Strength: saturateUint16(weight * 65535),
		Type:     edgeType,
	})
}

func saturateUint16(v float64) uint16 {
	if v <= 0 {
		return 0
	}
	if v >= maxStrength {
		return maxStrength
	}
	return uint16(v)
}
