package embed

import (
	"context"

	lru "github.com/hashicorp/golang-lru"
)

// Cached wraps an Embedder with an LRU memo keyed on text, so repeated
// retrieve() calls over the same query never re-embed. Grounded on the
// corpus's caching idiom for expensive, pure per-key computations.
type Cached struct {
	inner Embedder
	cache *lru.Cache
}

// NewCached wraps inner with an LRU cache of the given capacity.
func NewCached(inner Embedder, capacity int) *Cached {
	if capacity <= 0 {
		capacity = 1024
	}
	cache, err := lru.New(capacity)
	if err != nil {
		// Only returns an error for capacity <= 0, already guarded above.
		panic(err)
	}
	return &Cached{inner: inner, cache: cache}
}

func (c *Cached) Embed(ctx context.Context, text string) ([]float32, error) {
	if v, ok := c.cache.Get(text); ok {
		return v.([]float32), nil
	}
	vec, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	c.cache.Add(text, vec)
	return vec, nil
}

func (c *Cached) EmbedWeighted(ctx context.Context, text string, ranges []WeightedRange) ([]float32, error) {
	return c.inner.EmbedWeighted(ctx, text, ranges)
}

func (c *Cached) Dimension() int { return c.inner.Dimension() }
