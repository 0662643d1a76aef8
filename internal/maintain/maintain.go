// Package maintain implements spec §4.5's maintenance and arbitration
// operations over a two-layer graph: the execute_maintenance dispatch,
// arbitration's edge removal, and the decay/prune sweep.
package maintain

import (
	"fmt"
	"strings"

	"github.com/yokoncy/pedsa/internal/graph"
)

// Action is the execute_maintenance dispatch tag of spec §4.5.
type Action string

const (
	ActionUpsert  Action = "upsert"
	ActionReplace Action = "replace"
)

// ExecuteMaintenance runs maintain_ontology for upsert/replace actions,
// returning an optional arbitration context string for replace. Any
// other action is a no-op warning (no graph mutation).
func ExecuteMaintenance(g *graph.Graph, action Action, src, tgt, relation string, weight float64, reason string) (context string, warning string) {
	switch action {
	case ActionUpsert:
		g.MaintainOntology(src, tgt, relation, weight)
		return "", ""
	case ActionReplace:
		g.MaintainOntology(src, tgt, relation, weight)
		return buildArbitrationContext(g, src), ""
	default:
		return "", fmt.Sprintf("execute_maintenance: unrecognized action %q, reason=%q — no mutation performed", action, reason)
	}
}

// buildArbitrationContext formats every 1-hop ontology neighbour of src
// as "{src} -> {neighbour} (Strength: {w:.2})", per spec §4.5.
func buildArbitrationContext(g *graph.Graph, src string) string {
	srcID, ok := g.FeatureIDForWord(src)
	if !ok {
		return ""
	}

	var lines []string
	for _, e := range g.OntologyEdges(srcID) {
		neighbour, ok := g.Node(e.TargetID)
		if !ok {
			continue
		}
		w := float64(e.Strength) / 65535
		lines = append(lines, fmt.Sprintf("%s -> %s (Strength: %.2f)", src, neighbour.Content, w))
	}
	return strings.Join(lines, "\n")
}

// ApplyArbitration resolves each target content to its feature id via
// the vocabulary map and removes any ontology edge from src to those
// ids, per spec §4.5.
func ApplyArbitration(g *graph.Graph, src string, targets []string) int {
	srcID, ok := g.FeatureIDForWord(src)
	if !ok {
		return 0
	}

	ids := make([]int64, 0, len(targets))
	for _, t := range targets {
		if id, ok := g.FeatureIDForWord(t); ok {
			ids = append(ids, id)
		}
	}

	return g.RemoveOntologyEdges(srcID, ids)
}

// ApplyGlobalDecayAndPruning scales every ontology edge's strength by
// decayRate and drops edges at or below threshold, returning the count
// pruned. Exposed as the scheduled maintenance hook of spec §9's open
// question on edge-capacity bounding; it is never invoked implicitly by
// any other operation.
func ApplyGlobalDecayAndPruning(g *graph.Graph, decayRate float64, threshold uint16) int {
	return g.DecayAndPruneOntology(decayRate, threshold)
}
