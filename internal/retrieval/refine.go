package retrieval

import (
	"math"
	"sort"

	"github.com/yokoncy/pedsa/internal/fingerprint"
	"github.com/yokoncy/pedsa/internal/graph"
)

const topRefineCount = 50

// s7EventFilterAndRefine implements spec §4.4 S7: keep only activated
// Event nodes, sort descending, and apply a resonance_boost to the top
// 50. Returns the full filtered/sorted candidate list plus the number of
// leading entries the boost (and, by the caller, Ebbinghaus decay) was
// applied to.
func (p *Pipeline) s7EventFilterAndRefine(act *activation, queryFP fingerprint.Fingerprint) ([]Candidate, int) {
	ids := act.ids()
	candidates := make([]Candidate, 0, len(ids))
	for _, id := range ids {
		node, ok := p.Graph.Node(id)
		if !ok || node.Kind != graph.KindEvent {
			continue
		}
		candidates = append(candidates, Candidate{EventID: id, Score: act.get(id)})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	k := topRefineCount
	if k > len(candidates) {
		k = len(candidates)
	}

	for i := 0; i < k; i++ {
		node, ok := p.Graph.Node(candidates[i].EventID)
		if !ok {
			continue
		}
		candidates[i].Score += resonanceBoost(queryFP, node.Fingerprint)
	}

	return candidates, k
}

// resonanceBoost computes the S7 bonus from fingerprint-zone agreement
// between the query and a candidate node.
func resonanceBoost(queryFP, nodeFP fingerprint.Fingerprint) float64 {
	boost := fingerprint.SimilarityWeighted(queryFP, nodeFP, fingerprint.SemanticMask) * 0.6

	if queryFP.Temporal() != 0 {
		boost += fingerprint.SimilarityWeighted(queryFP, nodeFP, fingerprint.TemporalMask) * 0.5
	}
	if queryFP.Emotions()&nodeFP.Emotions() != 0 {
		boost += 0.6
	}
	if queryFP.Type() != 0 {
		boost += fingerprint.SimilarityWeighted(queryFP, nodeFP, fingerprint.TypeMask) * 0.8
	}

	return boost
}

// s8EbbinghausDecay implements S8: for each of the top-refined items
// with a non-zero timestamp, multiply its score by
// max(exp(-Δt/τ), 0.8), using refTime (or a fixed fallback epoch when
// refTime is 0) as "now".
func (p *Pipeline) s8EbbinghausDecay(top []Candidate, refTime int64) {
	now := refTime
	if now == 0 {
		now = fallbackNowEpoch
	}

	const tau = 31_536_000.0

	for i := range top {
		node, ok := p.Graph.Node(top[i].EventID)
		if !ok || node.Timestamp == 0 {
			continue
		}
		dt := float64(now) - float64(node.Timestamp)
		mult := math.Exp(-dt / tau)
		if mult < 0.8 {
			mult = 0.8
		}
		top[i].Score *= mult
	}
}
