package retrieval

import (
	"math"

	"github.com/yokoncy/pedsa/internal/graph"
)

// s4OntologyDiffusion implements spec §4.4 S4: one-hop propagation along
// ontology edges from the S1-S3 activation snapshot. Equality edges copy
// energy losslessly; Inhibition edges subtract; Representation edges
// propagate a damped, inhibition-weighted amount, hard-squelched below
// 0.05.
func (p *Pipeline) s4OntologyDiffusion(act *activation) {
	type source struct {
		id     int64
		energy float64
	}

	ids := act.ids()
	sources := make([]source, 0, len(ids))
	for _, id := range ids {
		if e := act.get(id); e > 0 {
			sources = append(sources, source{id, e})
		}
	}

	for _, s := range sources {
		for _, e := range p.Graph.OntologyEdges(s.id) {
			w := float64(e.Strength) / 65535
			deg := p.Graph.OntologyInDegree(e.TargetID)
			if deg == 0 {
				deg = 1
			}
			inhibition := 1 / (1 + math.Log10(float64(deg)))

			switch e.Type {
			case graph.EdgeEquality:
				act.raiseMax(e.TargetID, s.energy)
			case graph.EdgeInhibition:
				act.add(e.TargetID, -(s.energy * w * 0.95 * inhibition))
			default:
				energy := s.energy * w * 0.95 * inhibition
				if energy < 0.05 {
					continue
				}
				act.raiseMax(e.TargetID, energy)
			}
		}
	}
}

// s5Normalize implements S5: if total activation exceeds 10, scale every
// energy down proportionally.
func s5Normalize(act *activation) {
	if total := act.sum(); total > 10 {
		act.scaleAll(10 / total)
	}
}
