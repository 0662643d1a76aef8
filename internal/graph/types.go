// Package graph implements the two-layer graph of spec §3.2-§3.7: typed
// nodes and edges, the ontology and memory adjacency maps, the temporal
// and affective inverted indexes, and the temporal backbone.
package graph

import (
	"github.com/yokoncy/pedsa/internal/fingerprint"
)

// NodeKind distinguishes feature (ontology) nodes from event (memory)
// nodes, matching the storage engine's node_type byte (spec §4.6).
type NodeKind uint8

const (
	KindFeature NodeKind = 0
	KindEvent   NodeKind = 1
)

// Node is the node of spec §3.2.
type Node struct {
	ID          int64
	Kind        NodeKind
	Content     string
	Fingerprint fingerprint.Fingerprint
	Timestamp   uint64
	Emotions    fingerprint.EmotionBits
	PrevEvent   int64 // 0 means none
	NextEvent   int64 // 0 means none
}

// EdgeType is the typed-edge enum of spec §3.3.
type EdgeType uint8

const (
	EdgeRepresentation EdgeType = 0
	EdgeEquality       EdgeType = 1
	EdgeInhibition      EdgeType = 255
)

// Edge is the adjacency-list entry of spec §3.3. Strength is weight*65535.
type Edge struct {
	TargetID int64
	Strength uint16
	Type     EdgeType
}

const maxStrength = 65535

// quantizeWeight converts a [0,1] weight into the uint16 strength
// encoding, saturating at the bounds.
func quantizeWeight(weight float64) uint16 {
	if weight <= 0 {
		return 0
	}
	if weight >= 1 {
		return maxStrength
	}
	return uint16(weight * maxStrength)
}
