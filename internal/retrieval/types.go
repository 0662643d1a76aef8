// Package retrieval implements the S1-S9 spreading-activation retrieval
// pipeline of spec §4.4: feature/temporal/affective resonance, one-hop
// ontology diffusion, lateral-inhibition memory diffusion, event
// filtering with local resonance-boost refinement, Ebbinghaus decay, and
// the optional chaos-track fusion.
package retrieval

import (
	"github.com/x448/float16"

	"github.com/yokoncy/pedsa/internal/chaos"
)

// Candidate is one scored retrieval result.
type Candidate struct {
	EventID int64
	Score   float64
}

// ChaosCandidate is a single chaos-store scan survivor.
type ChaosCandidate struct {
	ID       int64
	Distance int
	Vector   []float16.Float16
}

// ChaosStore is the subset of internal/storage's chaos-track surface the
// S9 stage needs. Implemented by internal/storage.Engine.
type ChaosStore interface {
	// ScanChaos returns every chaos fingerprint within maxDistance of
	// query, sorted ascending by distance, truncated to limit.
	ScanChaos(query chaos.Fingerprint, maxDistance, limit int) []ChaosCandidate
}
