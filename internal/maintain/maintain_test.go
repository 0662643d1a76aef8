package maintain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yokoncy/pedsa/internal/graph"
)

func TestExecuteMaintenanceUpsertRunsMaintainOntology(t *testing.T) {
	g := graph.New()
	ctx, warn := ExecuteMaintenance(g, ActionUpsert, "rust", "memory", "representation", 0.5, "")
	assert.Empty(t, ctx)
	assert.Empty(t, warn)

	src := g.GetOrCreateFeature("rust")
	assert.Len(t, g.OntologyEdges(src), 1)
}

func TestExecuteMaintenanceReplaceProducesContext(t *testing.T) {
	g := graph.New()
	ctx, warn := ExecuteMaintenance(g, ActionReplace, "rust", "memory", "representation", 0.9, "")
	assert.Empty(t, warn)
	assert.Contains(t, ctx, "rust -> memory (Strength: 0.90)")
}

func TestExecuteMaintenanceUnknownActionWarns(t *testing.T) {
	g := graph.New()
	ctx, warn := ExecuteMaintenance(g, Action("delete"), "rust", "memory", "representation", 0.9, "testing")
	assert.Empty(t, ctx)
	assert.NotEmpty(t, warn)
	assert.Equal(t, 0, g.NodeCount())
}

func TestApplyArbitrationRemovesEdge(t *testing.T) {
	g := graph.New()
	g.MaintainOntology("rust", "memory", "representation", 0.5)
	src := g.GetOrCreateFeature("rust")
	require.Len(t, g.OntologyEdges(src), 1)

	removed := ApplyArbitration(g, "rust", []string{"memory"})
	assert.Equal(t, 1, removed)
	assert.Empty(t, g.OntologyEdges(src))
}

func TestApplyGlobalDecayAndPruningIdentityIsNoOp(t *testing.T) {
	g := graph.New()
	g.MaintainOntology("rust", "memory", "representation", 0.5)
	src := g.GetOrCreateFeature("rust")
	before := g.OntologyEdges(src)

	pruned := ApplyGlobalDecayAndPruning(g, 1.0, 0)
	assert.Equal(t, 0, pruned)
	assert.Equal(t, before, g.OntologyEdges(src))
}

func TestApplyGlobalDecayAndPruningDropsBelowThreshold(t *testing.T) {
	g := graph.New()
	g.MaintainOntology("rust", "memory", "representation", 0.1)
	src := g.GetOrCreateFeature("rust")

	pruned := ApplyGlobalDecayAndPruning(g, 0.01, 100)
	assert.Equal(t, 1, pruned)
	assert.Empty(t, g.OntologyEdges(src))
}
