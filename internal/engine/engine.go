package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/x448/float16"

	"github.com/yokoncy/pedsa/internal/chaos"
	"github.com/yokoncy/pedsa/internal/embed"
	"github.com/yokoncy/pedsa/internal/graph"
	"github.com/yokoncy/pedsa/internal/keyword"
	"github.com/yokoncy/pedsa/internal/maintain"
	"github.com/yokoncy/pedsa/internal/retrieval"
	"github.com/yokoncy/pedsa/internal/storage"
)

// Engine is the full PEDSA engine of spec §6: the two-layer graph, the
// keyword automaton, the SoA chaos/vector store, and the S1-S9
// retrieval pipeline, wired together behind one API.
type Engine struct {
	config  Config
	graph   *graph.Graph
	matcher *keyword.Matcher
	store   *storage.Engine
	runner  *retrieval.Pipeline
}

// New opens (or creates) the engine's on-disk store and returns a
// ready-to-use Engine. Compile() still needs to run before Retrieve
// after the first batch of add_feature/add_event calls.
func New(opts ...Option) (*Engine, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Embedder == nil {
		cfg.Embedder = embed.NoOp{}
	}

	store, err := storage.Open(cfg.IndexPath, cfg.PayloadPath)
	if err != nil {
		if errors.Is(err, storage.ErrFormatMismatch) {
			return nil, fmt.Errorf("engine: open store: %w", mergeErr(ErrFormatMismatch, err))
		}
		return nil, fmt.Errorf("engine: open store: %w", mergeErr(ErrIO, err))
	}

	g := graph.New()
	if err := rehydrateGraph(g, store); err != nil {
		return nil, fmt.Errorf("engine: rehydrate graph: %w", mergeErr(ErrIO, err))
	}
	matcher := g.Compile()

	runner := retrieval.New(g, matcher)
	runner.Chaos = store
	runner.Embedder = cfg.Embedder
	runner.Workers = cfg.Workers

	e := &Engine{
		config:  cfg,
		graph:   g,
		matcher: matcher,
		store:   store,
		runner:  runner,
	}
	e.logf("opened store %s (%d nodes)", cfg.IndexPath, store.NodeCount())
	return e, nil
}

// rehydrateGraph rebuilds feature/event nodes from whatever rows the
// store already holds, so a reopened engine resumes with the same
// nodes a prior process ingested and persisted. Both add_feature and
// add_event derive their node state deterministically from (id,
// content), so replaying them here reproduces identical nodes without
// needing a separate graph-snapshot format. Ontology/memory edges are
// not part of the SoA store and are not recovered by this replay (see
// DESIGN.md's Open Question resolution on graph durability).
func rehydrateGraph(g *graph.Graph, store *storage.Engine) error {
	for idx := 0; idx < store.NodeCount(); idx++ {
		id, err := store.GetID(idx)
		if err != nil {
			return err
		}
		nodeType, err := store.GetNodeType(idx)
		if err != nil {
			return err
		}
		text, err := store.GetNodeText(idx)
		if err != nil {
			return err
		}

		switch nodeType {
		case storage.NodeTypeFeature:
			g.AddFeature(id, text)
		case storage.NodeTypeEvent:
			g.AddEvent(id, text)
		}
	}
	return nil
}

func mergeErr(sentinel, cause error) error {
	return fmt.Errorf("%w: %v", sentinel, cause)
}

// Close releases the underlying store's file handles.
func (e *Engine) Close() error {
	if err := e.store.Close(); err != nil {
		return fmt.Errorf("engine: close store: %w", mergeErr(ErrIO, err))
	}
	return nil
}

// AddFeature registers a feature node under an explicit id, per spec
// §6's add_feature(id, keyword). A no-op if keyword is a stopword.
// Feature rows carry no chaos fingerprint/vector; they exist in the
// store purely so a reopened engine can rehydrate the feature vocabulary.
func (e *Engine) AddFeature(id int64, keyword string) {
	e.graph.AddFeature(id, keyword)
	if _, ok := e.graph.Node(id); !ok {
		return
	}
	e.store.InsertNode(id, keyword, storage.NodeTypeFeature, 0, chaos.Fingerprint{}, nil)
}

// AddEvent registers an event node, per spec §6's
// add_event(id, summary, chaos_fp?, chaos_vec?). chaosVec is optional:
// nil defers to the configured Embedder, and an unconfigured Embedder
// degrades to a zero chaos fingerprint (the event still participates
// in the rational track).
func (e *Engine) AddEvent(ctx context.Context, id int64, summary string, chaosVec []float32) error {
	e.graph.AddEvent(id, summary)

	node, ok := e.graph.Node(id)
	if !ok {
		return fmt.Errorf("engine: add_event %d: %w", id, ErrInvalidInput)
	}

	vec := chaosVec
	if vec == nil && embed.Configured(e.config.Embedder) {
		embedded, err := e.config.Embedder.Embed(ctx, summary)
		if err != nil {
			e.logf("embed event %d failed, storing rational-track-only: %v", id, err)
		} else {
			vec = embedded
		}
	}

	var f16vec []float16.Float16
	var chaosFP chaos.Fingerprint
	if vec != nil {
		f16vec = chaos.ToF16(vec)
		chaosFP = chaos.Quantize(f16vec)
	} else {
		f16vec = chaos.ToF16(nil)
	}

	e.store.InsertNode(id, summary, storage.NodeTypeEvent, uint64(node.Fingerprint), chaosFP, f16vec)
	return nil
}

// AddEdge adds/reinforces a feature→event (or event→event) association
// in the memory graph, per spec §6's add_edge(src, tgt, weight). This
// is what `retrieve`'s S4/S6 diffusion stages walk to reach an event
// from an activated feature; feature-feature ontology relations go
// through MaintainOntology instead.
func (e *Engine) AddEdge(src, tgt int64, weight float64) uint16 {
	return e.graph.AddEdge(src, tgt, weight)
}

// MaintainOntology runs spec §6's maintain_ontology(src, tgt, relation,
// strength).
func (e *Engine) MaintainOntology(src, tgt, relation string, weight float64) (int64, int64) {
	return e.graph.MaintainOntology(src, tgt, relation, weight)
}

// ExecuteMaintenance runs spec §6's execute_maintenance dispatch.
func (e *Engine) ExecuteMaintenance(action maintain.Action, src, tgt, relation string, weight float64, reason string) (context string, warning string) {
	return maintain.ExecuteMaintenance(e.graph, action, src, tgt, relation, weight, reason)
}

// ApplyArbitration runs spec §6's apply_arbitration(src, targets).
func (e *Engine) ApplyArbitration(src string, targets []string) int {
	return maintain.ApplyArbitration(e.graph, src, targets)
}

// ApplyGlobalDecayAndPruning runs spec §6's
// apply_global_decay_and_pruning(decay_rate, threshold).
func (e *Engine) ApplyGlobalDecayAndPruning(decayRate float64, threshold uint16) int {
	return maintain.ApplyGlobalDecayAndPruning(e.graph, decayRate, threshold)
}

// BuildTemporalBackbone runs spec §6's build_temporal_backbone().
func (e *Engine) BuildTemporalBackbone() {
	e.graph.BuildTemporalBackbone()
}

// Compile runs spec §6's compile(): rebuilds the keyword automaton, the
// in-degree maps, and the inverted indexes, and swaps the rebuilt
// matcher into the retrieval pipeline.
func (e *Engine) Compile() {
	e.matcher = e.graph.Compile()
	e.runner.Matcher = e.matcher
	e.logf("compiled: %d features indexed", len(e.matcher.Patterns()))
}

// Retrieve runs spec §6's retrieve(query, ref_time, chaos_level).
func (e *Engine) Retrieve(ctx context.Context, query string, refTime int64, chaosLevel float64) ([]retrieval.Candidate, error) {
	if query == "" {
		return nil, ErrInvalidInput
	}

	callID := uuid.NewString()
	e.logf("[%s] retrieve query=%q ref_time=%d chaos_level=%.2f", callID, query, refTime, chaosLevel)

	if chaosLevel > 0 && !embed.Configured(e.config.Embedder) {
		e.logf("[%s] chaos_level=%.2f requested but no embedder configured, degrading to rational-track-only", callID, chaosLevel)
	}
	results, err := e.runner.Retrieve(ctx, query, refTime, chaosLevel)
	if err != nil {
		return nil, fmt.Errorf("engine: retrieve: %w", err)
	}
	e.logf("[%s] retrieve returned %d candidates", callID, len(results))
	return results, nil
}

// Persist flushes the hot buffer to disk atomically.
func (e *Engine) Persist() error {
	if err := e.store.Persist(); err != nil {
		return fmt.Errorf("engine: persist: %w", mergeErr(ErrIO, err))
	}
	return nil
}

// NodeCount returns the graph's total feature+event node count.
func (e *Engine) NodeCount() int {
	return e.graph.NodeCount()
}

// NodeContent returns the stored content of a feature or event node, for
// presentation layers that need to show what a retrieved id refers to.
func (e *Engine) NodeContent(id int64) (string, bool) {
	node, ok := e.graph.Node(id)
	if !ok {
		return "", false
	}
	return node.Content, true
}

// StoreStats summarizes graph and store sizes for presentation layers
// (cmd/pedsa's stats subcommand).
type StoreStats struct {
	GraphNodes     int
	StoreNodes     int
	TombstonedRows int
}

// Stats reports current graph and store sizes.
func (e *Engine) Stats() StoreStats {
	return StoreStats{
		GraphNodes:     e.graph.NodeCount(),
		StoreNodes:     e.store.NodeCount(),
		TombstonedRows: e.store.TombstoneCount(),
	}
}
