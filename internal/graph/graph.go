package graph

import (
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/yokoncy/pedsa/internal/fingerprint"
	"github.com/yokoncy/pedsa/internal/keyword"
)

// featureIDSeed fixes the get_or_create_feature hash so that the same
// word always resolves to the same feature id across runs (spec §4.3).
const featureIDSeed = "pedsa-feature-id-v1"

// StopwordID is the sentinel returned by GetOrCreateFeature for words in
// the stopword set.
const StopwordID int64 = -1

// Graph owns the full node set, the ontology and memory adjacency maps,
// the in-degree tallies, and the inverted indexes. A single RWMutex
// guards it, mirroring the AtomSpace-style coarse lock the corpus uses
// for its hypergraph.
type Graph struct {
	mu sync.RWMutex

	nodes map[int64]*Node

	ontology map[int64][]Edge
	memory   map[int64][]Edge

	ontologyInDegree map[int64]int
	memoryInDegree   map[int64]int

	temporalIndex  map[uint16]*idSet
	affectiveIndex map[fingerprint.EmotionBits]*idSet

	eventHead int64
	eventTail int64

	wordToFeature map[string]int64
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		nodes:            make(map[int64]*Node),
		ontology:         make(map[int64][]Edge),
		memory:           make(map[int64][]Edge),
		ontologyInDegree: make(map[int64]int),
		memoryInDegree:   make(map[int64]int),
		temporalIndex:    make(map[uint16]*idSet),
		affectiveIndex:   make(map[fingerprint.EmotionBits]*idSet),
		wordToFeature:    make(map[string]int64),
	}
}

// hashWord derives the stable positive feature id for a word, per
// get_or_create_feature's "absolute value of a 64-bit non-cryptographic
// hash with fixed seed".
func hashWord(word string) int64 {
	h := xxhash.Sum64String(featureIDSeed + word)
	id := int64(h)
	if id < 0 {
		id = -id
	}
	if id <= 0 {
		id = 1
	}
	return id
}

// GetOrCreateFeature resolves word to a feature id, creating the node on
// first use. Returns StopwordID if the lowercased word is a stopword.
func (g *Graph) GetOrCreateFeature(word string) int64 {
	lowered := normalizeWord(word)
	if keyword.IsStopword(lowered) {
		return StopwordID
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if id, ok := g.wordToFeature[lowered]; ok {
		return id
	}

	id := hashWord(lowered)
	for {
		if existing, ok := g.nodes[id]; !ok || existing.Content == lowered {
			break
		}
		id++
	}

	g.nodes[id] = &Node{ID: id, Kind: KindFeature, Content: lowered}
	g.wordToFeature[lowered] = id
	return id
}

// AddFeature registers a feature node under an externally chosen id,
// silently discarding stopwords.
func (g *Graph) AddFeature(id int64, word string) {
	lowered := normalizeWord(word)
	if keyword.IsStopword(lowered) {
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.nodes[id] = &Node{ID: id, Kind: KindFeature, Content: lowered}
	g.wordToFeature[lowered] = id
}

// AddEvent registers an event node, deriving its fingerprint from the
// content's extracted timestamp and emotion bits.
func (g *Graph) AddEvent(id int64, content string) {
	ts := fingerprint.ExtractContentTimestamp(content)
	emotions := fingerprint.ExtractEmotion(content)
	typeTag := fingerprint.TypeUnknown
	fp := fingerprint.ComputeMultimodal(content, ts, emotions, typeTag)

	g.mu.Lock()
	defer g.mu.Unlock()

	g.nodes[id] = &Node{
		ID:          id,
		Kind:        KindEvent,
		Content:     content,
		Fingerprint: fp,
		Timestamp:   ts,
		Emotions:    emotions,
	}
}

// Node returns the node for id, if present.
func (g *Graph) Node(id int64) (*Node, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	n, ok := g.nodes[id]
	return n, ok
}

// NodeCount returns the total number of nodes.
func (g *Graph) NodeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.nodes)
}

// FeatureContents returns every feature node's content, for keyword
// automaton compilation.
func (g *Graph) FeatureContents() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]string, 0, len(g.wordToFeature))
	for word := range g.wordToFeature {
		out = append(out, word)
	}
	return out
}

// FeatureIDForWord returns the feature id registered for a keyword
// pattern, if any.
func (g *Graph) FeatureIDForWord(word string) (int64, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	id, ok := g.wordToFeature[normalizeWord(word)]
	return id, ok
}

// setEdge inserts or reinforces an edge in adjacency list adj[src],
// returning the resulting strength.
func setEdge(adj map[int64][]Edge, src, tgt int64, strength uint16, edgeType EdgeType) uint16 {
	list := adj[src]
	for i := range list {
		if list[i].TargetID == tgt {
			if strength > list[i].Strength {
				list[i].Strength = strength
			}
			list[i].Type = edgeType
			adj[src] = list
			return list[i].Strength
		}
	}
	adj[src] = append(list, Edge{TargetID: tgt, Strength: strength, Type: edgeType})
	return strength
}

// AddEdge inserts a src→tgt edge in the memory graph with weight
// quantized to uint16, reinforcing to the max of old and new strengths
// if the edge already exists. This is the plain feature→event (or
// event→event) association add_edge builds (spec §4.3); feature-feature
// ontology relations, including the "representation" relation, go
// through MaintainOntology instead.
func (g *Graph) AddEdge(src, tgt int64, weight float64) uint16 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return setEdge(g.memory, src, tgt, quantizeWeight(weight), EdgeRepresentation)
}

// OntologyEdges returns a copy of the ontology adjacency list for src.
func (g *Graph) OntologyEdges(src int64) []Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]Edge(nil), g.ontology[src]...)
}

// MemoryEdges returns a copy of the memory adjacency list for src.
func (g *Graph) MemoryEdges(src int64) []Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]Edge(nil), g.memory[src]...)
}

// AddMemoryEdge inserts a feature→event or event→event edge into the
// memory graph (plain reinforcement, forward only).
func (g *Graph) AddMemoryEdge(src, tgt int64, weight float64, edgeType EdgeType) uint16 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return setEdge(g.memory, src, tgt, quantizeWeight(weight), edgeType)
}

func normalizeWord(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
