package retrieval

import (
	"context"
	"sort"

	"github.com/yokoncy/pedsa/internal/chaos"
)

const (
	chaosMaxDistance = 255
	chaosTopN        = 5000
)

// s9ChaosTrack implements spec §4.4 S9: embed and quantize the query,
// scale the rational-track result by (1 - chaos_level), scan the chaos
// store for close survivors, rerank survivors by f16 cosine similarity,
// and fold a bounded bonus into each survivor's score before a final
// re-sort.
func (p *Pipeline) s9ChaosTrack(ctx context.Context, results []Candidate, query string, chaosLevel float64) ([]Candidate, error) {
	vec, err := p.Embedder.Embed(ctx, query)
	if err != nil {
		// Degrade to the rational-track-only result rather than failing
		// the whole retrieve call.
		return results, nil
	}

	queryF16 := chaos.ToF16(vec)
	queryChaosFP := chaos.Quantize(queryF16)

	scored := make(map[int64]float64, len(results))
	order := make([]int64, 0, len(results))
	for _, c := range results {
		scored[c.EventID] = c.Score * (1 - chaosLevel)
		order = append(order, c.EventID)
	}

	survivors := p.Chaos.ScanChaos(queryChaosFP, chaosMaxDistance, chaosTopN)
	sort.SliceStable(survivors, func(i, j int) bool {
		return survivors[i].Distance < survivors[j].Distance
	})

	for _, s := range survivors {
		sim := chaos.CosineSimilarity(s.Vector, queryF16)
		if sim <= 0.6 {
			continue
		}
		delta := (float64(sim) - 0.6) / 0.4 * 0.15 * chaosLevel
		if _, ok := scored[s.ID]; !ok {
			order = append(order, s.ID)
		}
		scored[s.ID] += delta
	}

	out := make([]Candidate, 0, len(order))
	for _, id := range order {
		out = append(out, Candidate{EventID: id, Score: scored[id]})
	}
	sortCandidates(out)
	return out, nil
}
