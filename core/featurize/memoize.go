package featurize

import (
	"fmt"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/adalundhe/tabgraph/core/frame"
)

const defaultMemoSize = 128

// Fingerprint derives the memoization key from the resolved options plus the
// identity of the input tables (shape and column names, not cell values).
// Identical logical requests hash identically; any option or schema change
// produces a new fingerprint.
func Fingerprint(kind Kind, src, dst string, opts Options, df, y *frame.DataFrame) uint64 {
	d := xxhash.New()
	writeField := func(parts ...string) {
		for _, p := range parts {
			_, _ = d.WriteString(p)
			_, _ = d.WriteString("\x00")
		}
	}

	writeField(string(kind), src, dst, string(opts.Engine))

	c := opts.Config
	writeField(
		c.UseScaler, c.UseScalerTarget, c.ModelName,
		fmt.Sprint(c.CardinalityThreshold), fmt.Sprint(c.CardinalityThresholdTarget),
		fmt.Sprint(c.NTopics), fmt.Sprint(c.NTopicsTarget),
		fmt.Sprint(c.UseNgrams), fmt.Sprint(c.NGramMin), fmt.Sprint(c.NGramMax),
		fmt.Sprint(c.MaxDF), fmt.Sprint(c.MinDF),
		fmt.Sprint(c.Confidence), fmt.Sprint(c.MinWords),
		fmt.Sprint(c.KeepNDecimals),
	)
	if c.Impute != nil {
		writeField(fmt.Sprint(*c.Impute))
	}

	for _, table := range []*frame.DataFrame{df, y} {
		if table == nil {
			writeField("<nil>")
			continue
		}
		writeField(fmt.Sprint(table.NumRows()))
		writeField(table.Columns()...)
	}
	return d.Sum64()
}

type memoKey struct {
	owner       uuid.UUID
	fingerprint uint64
}

// Memoizer caches fitted encoders per logical owner. It replaces the weak
// reference table of older designs with a bounded LRU plus an explicit
// Forget, so entries cannot keep owners alive and growth stays bounded.
type Memoizer struct {
	mu    sync.Mutex
	cache *lru.Cache[memoKey, *FastEncoder]
}

func NewMemoizer(size int) (*Memoizer, error) {
	if size <= 0 {
		size = defaultMemoSize
	}
	cache, err := lru.New[memoKey, *FastEncoder](size)
	if err != nil {
		return nil, err
	}
	return &Memoizer{cache: cache}, nil
}

// Lookup returns a previously fitted encoder for this owner and fingerprint.
func (m *Memoizer) Lookup(owner uuid.UUID, fingerprint uint64) (*FastEncoder, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cache.Get(memoKey{owner: owner, fingerprint: fingerprint})
}

// Store records a fitted encoder under the owner and fingerprint.
func (m *Memoizer) Store(owner uuid.UUID, fingerprint uint64, enc *FastEncoder) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache.Add(memoKey{owner: owner, fingerprint: fingerprint}, enc)
}

// Forget drops every entry belonging to the owner. Called when the owning
// graph object is disposed.
func (m *Memoizer) Forget(owner uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range m.cache.Keys() {
		if key.owner == owner {
			m.cache.Remove(key)
		}
	}
}

// Len reports the number of cached fits.
func (m *Memoizer) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cache.Len()
}
