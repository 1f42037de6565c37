package text

import (
	"context"

	"github.com/dgraph-io/ristretto"
)

const (
	embedCacheCounters    = 1e6
	embedCacheMaxCost     = 64 << 20 // 64MB of cached vectors
	embedCacheBufferItems = 64
)

// CachedEmbedder memoizes embeddings by input text. Sentence models are
// stateless per call, so a cache hit is always safe to reuse.
type CachedEmbedder struct {
	inner Embedder
	cache *ristretto.Cache
}

func NewCachedEmbedder(inner Embedder) (*CachedEmbedder, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: embedCacheCounters,
		MaxCost:     embedCacheMaxCost,
		BufferItems: embedCacheBufferItems,
	})
	if err != nil {
		return nil, err
	}
	return &CachedEmbedder{inner: inner, cache: cache}, nil
}

func (c *CachedEmbedder) Dimension() int { return c.inner.Dimension() }

func (c *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if value, found := c.cache.Get(text); found {
		if vec, ok := value.([]float32); ok {
			return vec, nil
		}
	}
	vec, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	c.cache.Set(text, vec, int64(4*len(vec)))
	return vec, nil
}

func (c *CachedEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	var missing []string
	var missingIdx []int
	for i, t := range texts {
		if value, found := c.cache.Get(t); found {
			if vec, ok := value.([]float32); ok {
				out[i] = vec
				continue
			}
		}
		missing = append(missing, t)
		missingIdx = append(missingIdx, i)
	}
	if len(missing) == 0 {
		return out, nil
	}
	vecs, err := c.inner.EmbedBatch(ctx, missing)
	if err != nil {
		return nil, err
	}
	for k, vec := range vecs {
		out[missingIdx[k]] = vec
		c.cache.Set(missing[k], vec, int64(4*len(vec)))
	}
	return out, nil
}

func (c *CachedEmbedder) Close() {
	c.cache.Close()
}
