package chaos

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHammingDistanceIdentical(t *testing.T) {
	a := Fingerprint{Lanes: [8]uint64{1, 2, 3, 4, 5, 6, 7, 8}}
	assert.Equal(t, 0, a.HammingDistance(a))
}

func TestHammingDistanceSingleBitFlip(t *testing.T) {
	a := Fingerprint{Lanes: [8]uint64{0, 0, 0, 0, 0, 0, 0, 0}}
	b := a
	b.Lanes[3] = 1
	assert.Equal(t, 1, a.HammingDistance(b))
}

func TestQuantizeVectorStable(t *testing.T) {
	vec := make([]float32, VectorDim)
	for i := range vec {
		if i%3 == 0 {
			vec[i] = 1.0
		} else {
			vec[i] = -1.0
		}
	}
	f16vec := ToF16(vec)
	a := Quantize(f16vec)
	b := Quantize(f16vec)
	assert.Equal(t, a, b)
}

func TestCosineSimilarityIdentical(t *testing.T) {
	vec := make([]float32, VectorDim)
	for i := range vec {
		vec[i] = float32(i%7) - 3
	}
	f16vec := ToF16(vec)
	sim := CosineSimilarity(f16vec, f16vec)
	assert.InDelta(t, 1.0, sim, 1e-2)
}

func TestCosineSimilarityZeroVector(t *testing.T) {
	zero := ToF16(make([]float32, VectorDim))
	other := ToF16([]float32{1, 2, 3})
	assert.Equal(t, float32(0), CosineSimilarity(zero, other))
}
