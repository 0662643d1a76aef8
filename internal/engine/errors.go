// Package engine wires fingerprint, keyword, graph, retrieval, storage,
// maintain, and embed together behind the spec §6 Engine API: new,
// add_feature, add_event, add_edge, maintain_ontology,
// execute_maintenance, apply_arbitration, apply_global_decay_and_pruning,
// build_temporal_backbone, compile, and retrieve.
package engine

import "errors"

// Sentinel error kinds, wrapped with fmt.Errorf("...: %w", Err...) at
// the point of failure. Callers branch with errors.Is.
var (
	ErrIO              = errors.New("pedsa: io error")
	ErrFormatMismatch  = errors.New("pedsa: format mismatch")
	ErrMissingEmbedder = errors.New("pedsa: no embedder configured")
	ErrInvalidInput    = errors.New("pedsa: invalid input")
)
