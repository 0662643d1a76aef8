package retrieval

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yokoncy/pedsa/internal/fingerprint"
	"github.com/yokoncy/pedsa/internal/graph"
)

func buildPipeline(g *graph.Graph) *Pipeline {
	matcher := g.Compile()
	p := New(g, matcher)
	p.Workers = 2
	return p
}

func TestOntologyAliasScenario(t *testing.T) {
	g := graph.New()
	g.MaintainOntology("佩罗", "pero", "equality", 1.0)

	peroID, _ := g.FeatureIDForWord("pero")
	g.AddEvent(9001, "Pero came by and said hello")
	g.AddMemoryEdge(peroID, 9001, 1.0, graph.EdgeRepresentation)

	p := buildPipeline(g)
	results, err := p.Retrieve(context.Background(), "佩罗最近怎么样", 0, 0.0)
	require.NoError(t, err)
	require.NotEmpty(t, results)

	top := results
	if len(top) > 3 {
		top = top[:3]
	}
	found := false
	for _, c := range top {
		if c.EventID == 9001 {
			found = true
		}
	}
	assert.True(t, found, "expected event 9001 in top 3, got %+v", results)
}

func TestRelativeTimeScenario(t *testing.T) {
	g := graph.New()
	g.AddEvent(1, "2024年1月1日 nothing special happened")
	g.AddEvent(2, "2023年6月1日 an unrelated event")
	g.Compile()

	p := buildPipeline(g)
	refTime := fingerprint.ApproxEpoch(2024, 1, 2)
	results, err := p.Retrieve(context.Background(), "昨天发生了什么", refTime, 0.0)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, int64(1), results[0].EventID)
}

func TestTypedEdgesScenario(t *testing.T) {
	g := graph.New()
	normal := g.GetOrCreateFeature("targetnormal")
	equal := g.GetOrCreateFeature("targetequal")
	inhibit := g.GetOrCreateFeature("targetinhibit")

	g.MaintainOntology("sourcefeat", "targetnormal", "representation", 0.9)
	g.MaintainOntology("sourcefeat", "targetequal", "equality", 1.0)
	g.MaintainOntology("sourcefeat", "targetinhibit", "inhibition", 0.8)

	g.AddEvent(101, "event normal")
	g.AddEvent(102, "event equal")
	g.AddEvent(103, "event inhibit")
	g.AddMemoryEdge(normal, 101, 1.0, graph.EdgeRepresentation)
	g.AddMemoryEdge(equal, 102, 1.0, graph.EdgeRepresentation)
	g.AddMemoryEdge(inhibit, 103, 1.0, graph.EdgeRepresentation)

	g.Compile()

	p := buildPipeline(g)
	results, err := p.Retrieve(context.Background(), "SourceFeat", 0, 0.0)
	require.NoError(t, err)

	scores := make(map[int64]float64)
	for _, c := range results {
		scores[c.EventID] = c.Score
	}

	require.Contains(t, scores, int64(101))
	require.Contains(t, scores, int64(102))

	assert.Greater(t, scores[102], scores[101], "Equal event should outscore Normal event")
	if inhibitScore, ok := scores[103]; ok {
		assert.Less(t, inhibitScore, scores[101], "Inhibit event should score far below Normal")
	}
}

func TestEbbinghausDecayRanksRecentEventHigher(t *testing.T) {
	g := graph.New()
	rust := g.GetOrCreateFeature("rust")

	g.AddEvent(1, "2024年1月1日 Rust 生命周期笔记")
	g.AddEvent(2, "2026年4月1日 Rust 生命周期笔记")
	g.AddMemoryEdge(rust, 1, 1.0, graph.EdgeRepresentation)
	g.AddMemoryEdge(rust, 2, 1.0, graph.EdgeRepresentation)
	g.Compile()

	p := buildPipeline(g)
	refTime := fingerprint.ApproxEpoch(2026, 4, 1)
	results, err := p.Retrieve(context.Background(), "Rust 生命周期", refTime, 0.0)
	require.NoError(t, err)
	require.Len(t, results, 2)

	scores := make(map[int64]float64)
	for _, c := range results {
		scores[c.EventID] = c.Score
	}
	assert.Greater(t, scores[2], scores[1])
}

func TestFeatureResonanceSetsActivationToOne(t *testing.T) {
	g := graph.New()
	g.GetOrCreateFeature("rust")
	g.Compile()

	p := buildPipeline(g)
	act := newActivation()
	p.s1FeatureResonance(act, "I love rust")

	id, ok := g.FeatureIDForWord("rust")
	require.True(t, ok)
	assert.Equal(t, 1.0, act.get(id))
}
