package retrieval

import (
	"context"
	"runtime"
	"sort"

	"github.com/yokoncy/pedsa/internal/embed"
	"github.com/yokoncy/pedsa/internal/fingerprint"
	"github.com/yokoncy/pedsa/internal/graph"
	"github.com/yokoncy/pedsa/internal/keyword"
)

// fallbackNowEpoch is "now" for Ebbinghaus decay when ref_time is 0,
// fixed at 2024-01-01T00:00:00Z so decay stays reproducible across runs
// that don't supply a reference time.
const fallbackNowEpoch int64 = 1_704_067_200

// Pipeline runs the S1-S9 spreading-activation retriever of spec §4.4
// over one graph snapshot.
type Pipeline struct {
	Graph    *graph.Graph
	Matcher  *keyword.Matcher
	Chaos    ChaosStore
	Embedder embed.Embedder
	Workers  int
}

// New builds a Pipeline with a worker count of one per core.
func New(g *graph.Graph, m *keyword.Matcher) *Pipeline {
	return &Pipeline{
		Graph:    g,
		Matcher:  m,
		Embedder: embed.NoOp{},
		Workers:  runtime.NumCPU(),
	}
}

// Retrieve runs the full pipeline and returns events sorted by
// descending score, ties broken by first-touch insertion order.
func (p *Pipeline) Retrieve(ctx context.Context, query string, refTime int64, chaosLevel float64) ([]Candidate, error) {
	act := newActivation()
	queryFP := fingerprint.ComputeForQuery(query, refTime)

	p.s1FeatureResonance(act, query)
	p.s2TemporalResonance(act, queryFP)
	p.s3AffectiveResonance(act, queryFP)
	p.s4OntologyDiffusion(act)
	s5Normalize(act)
	if err := p.s6MemoryDiffusion(ctx, act); err != nil {
		return nil, err
	}

	results, topK := p.s7EventFilterAndRefine(act, queryFP)
	p.s8EbbinghausDecay(results[:topK], refTime)
	sortCandidates(results)

	if chaosLevel > 0 && embed.Configured(p.Embedder) && p.Chaos != nil {
		fused, err := p.s9ChaosTrack(ctx, results, query, chaosLevel)
		if err != nil {
			return nil, err
		}
		results = fused
	}

	return results, nil
}

func sortCandidates(c []Candidate) {
	sort.SliceStable(c, func(i, j int) bool {
		return c[i].Score > c[j].Score
	})
}

// s1FeatureResonance implements spec §4.4 S1: run the keyword matcher
// over the lowercased query, raising each matched feature's activation
// to 1.0.
func (p *Pipeline) s1FeatureResonance(act *activation, query string) {
	if p.Matcher == nil {
		return
	}
	for _, pattern := range p.Matcher.Match(query) {
		id, ok := p.Graph.FeatureIDForWord(pattern)
		if !ok {
			continue
		}
		act.raiseMax(id, 1.0)
	}
}

// s2TemporalResonance implements S2: if the query's temporal zone is
// non-zero, raise every event in that zone's bucket to at least 0.6.
func (p *Pipeline) s2TemporalResonance(act *activation, queryFP fingerprint.Fingerprint) {
	zone := queryFP.Temporal()
	if zone == 0 {
		return
	}
	for _, id := range p.Graph.TemporalBucket(zone) {
		act.raiseMax(id, 0.6)
	}
}

// s3AffectiveResonance implements S3: for every set emotion bit in the
// query, raise every event in that bit's bucket to at least 0.7.
func (p *Pipeline) s3AffectiveResonance(act *activation, queryFP fingerprint.Fingerprint) {
	emotions := queryFP.Emotions()
	for bit := fingerprint.EmotionBits(1); bit != 0; bit <<= 1 {
		if emotions&bit == 0 {
			continue
		}
		for _, id := range p.Graph.AffectiveBucket(bit) {
			act.raiseMax(id, 0.7)
		}
	}
}
