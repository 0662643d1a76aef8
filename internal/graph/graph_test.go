package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yokoncy/pedsa/internal/fingerprint"
)

func TestGetOrCreateFeatureStopword(t *testing.T) {
	g := New()
	assert.Equal(t, StopwordID, g.GetOrCreateFeature("the"))
}

func TestGetOrCreateFeatureStableAndIdempotent(t *testing.T) {
	g := New()
	id1 := g.GetOrCreateFeature("rust")
	id2 := g.GetOrCreateFeature("Rust")
	assert.Equal(t, id1, id2)
	assert.NotEqual(t, StopwordID, id1)
	assert.Equal(t, 1, g.NodeCount())
}

func TestAddEdgeMonotonicMax(t *testing.T) {
	g := New()
	a := g.GetOrCreateFeature("rust")
	g.AddEvent(9001, "a rust talk happened")

	g.AddEdge(a, 9001, 0.3)
	g.AddEdge(a, 9001, 0.9)
	g.AddEdge(a, 9001, 0.1)

	edges := g.MemoryEdges(a)
	assert.Len(t, edges, 1)
	assert.Equal(t, quantizeWeight(0.9), edges[0].Strength)
}

func TestMaintainOntologyEqualityMirrored(t *testing.T) {
	g := New()
	src, tgt := g.MaintainOntology("佩罗", "pero", "equality", 1.0)

	forward := g.OntologyEdges(src)
	backward := g.OntologyEdges(tgt)

	assert.Len(t, forward, 1)
	assert.Len(t, backward, 1)
	assert.Equal(t, forward[0].Strength, backward[0].Strength)
	assert.Equal(t, EdgeEquality, forward[0].Type)
	assert.Equal(t, EdgeEquality, backward[0].Type)
	assert.Equal(t, tgt, forward[0].TargetID)
	assert.Equal(t, src, backward[0].TargetID)
}

func TestMaintainOntologyRepresentationNotMirrored(t *testing.T) {
	g := New()
	src, tgt := g.MaintainOntology("rust", "memory", "representation", 0.5)

	assert.Len(t, g.OntologyEdges(src), 1)
	assert.Empty(t, g.OntologyEdges(tgt))
}

func TestMaintainOntologyIdempotentEdgeCount(t *testing.T) {
	g := New()
	g.MaintainOntology("Alpha", "Beta", "equality", 0.5)
	firstCount := len(g.OntologyEdges(g.GetOrCreateFeature("alpha")))

	g.MaintainOntology("Alpha", "Beta", "equality", 0.5)
	secondCount := len(g.OntologyEdges(g.GetOrCreateFeature("alpha")))

	assert.Equal(t, firstCount, secondCount)
}

func TestCompileBuildsInvertedIndexes(t *testing.T) {
	g := New()
	g.AddEvent(1001, "2024年1月1日 Pero said hello and felt happy")
	g.Compile()

	n, ok := g.Node(1001)
	assert.True(t, ok)

	zone := n.Fingerprint.Temporal()
	assert.NotZero(t, zone)
	assert.Contains(t, g.TemporalBucket(zone), int64(1001))

	emotions := n.Fingerprint.Emotions()
	assert.NotZero(t, emotions & fingerprint.EmotionJoy)
	assert.Contains(t, g.AffectiveBucket(fingerprint.EmotionJoy), int64(1001))
}

func TestCompileRecomputesInDegrees(t *testing.T) {
	g := New()
	a := g.GetOrCreateFeature("rust")
	c := g.GetOrCreateFeature("safety")
	g.AddEvent(9001, "a rust safety talk")

	g.AddEdge(a, 9001, 0.5)
	g.AddEdge(c, 9001, 0.5)
	g.Compile()

	assert.Equal(t, 2, g.MemoryInDegree(9001))
	assert.Equal(t, 0, g.MemoryInDegree(a))
}

func TestBuildTemporalBackboneOrdersByTimestampThenID(t *testing.T) {
	g := New()
	g.AddEvent(3, "2024年1月3日 third")
	g.AddEvent(1, "2024年1月1日 first")
	g.AddEvent(2, "2024年1月2日 second")
	g.BuildTemporalBackbone()

	assert.Equal(t, int64(1), g.EventHead())
	assert.Equal(t, int64(3), g.EventTail())

	first, _ := g.Node(1)
	second, _ := g.Node(2)
	third, _ := g.Node(3)

	assert.Equal(t, int64(0), first.PrevEvent)
	assert.Equal(t, int64(2), first.NextEvent)
	assert.Equal(t, int64(1), second.PrevEvent)
	assert.Equal(t, int64(3), second.NextEvent)
	assert.Equal(t, int64(2), third.PrevEvent)
	assert.Equal(t, int64(0), third.NextEvent)
}

func TestAddFeatureDiscardsStopword(t *testing.T) {
	g := New()
	g.AddFeature(42, "the")
	_, ok := g.Node(42)
	assert.False(t, ok)
}
