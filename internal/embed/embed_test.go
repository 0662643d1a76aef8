package embed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNoOpDegradesGracefully(t *testing.T) {
	var e NoOp
	_, err := e.Embed(context.Background(), "hello")
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.False(t, Configured(e))
}

type countingEmbedder struct {
	calls int
}

func (c *countingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	c.calls++
	return []float32{1, 2, 3}, nil
}

func (c *countingEmbedder) EmbedWeighted(ctx context.Context, text string, ranges []WeightedRange) ([]float32, error) {
	return c.Embed(ctx, text)
}

func (c *countingEmbedder) Dimension() int { return 3 }

func TestCachedEmbedderMemoizes(t *testing.T) {
	inner := &countingEmbedder{}
	cached := NewCached(inner, 8)

	v1, err := cached.Embed(context.Background(), "hello")
	assert.NoError(t, err)
	v2, err := cached.Embed(context.Background(), "hello")
	assert.NoError(t, err)

	assert.Equal(t, v1, v2)
	assert.Equal(t, 1, inner.calls)
	assert.True(t, Configured(cached))
}
