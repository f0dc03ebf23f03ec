package batch

import (
	"encoding/json"
	"fmt"

	"github.com/maypok86/otter"
	"github.com/zeebo/xxh3"

	"github.com/mvp-joe/astdigest/internal/engine"
)

// Fingerprint identifies the settings that shape serialized output. Two runs
// with equal fingerprints produce identical bytes for identical sources.
func Fingerprint(opts engine.Options, format engine.Format, frame engine.Frame) uint64 {
	data, err := json.Marshal(struct {
		Options engine.Options
		Format  engine.Format
		Frame   engine.Frame
	}{opts, format, frame})
	if err != nil {
		// Options holds only plain values; fall back to the printed form
		data = fmt.Appendf(nil, "%+v|%s|%s", opts, format, frame)
	}
	return xxh3.Hash(data)
}

// ContentKey combines a source hash with a settings fingerprint.
func ContentKey(src []byte, fingerprint uint64) string {
	return fmt.Sprintf("%016x:%016x", xxh3.Hash(src), fingerprint)
}

// Entry is a cached compression result.
type Entry struct {
	Output  []byte
	Summary FileSummary
}

// CacheStats reports cache effectiveness.
type CacheStats struct {
	Size   int     `json:"size"`
	Hits   int64   `json:"hits"`
	Misses int64   `json:"misses"`
	Ratio  float64 `json:"hit_ratio"`
}

// Cache holds serialized documents keyed by ContentKey. A nil *Cache is a
// valid, always-missing cache.
type Cache struct {
	store otter.Cache[string, *Entry]
}

// NewCache creates a cache holding up to size documents. A size of zero
// disables caching and returns nil.
func NewCache(size int) (*Cache, error) {
	if size <= 0 {
		return nil, nil
	}
	store, err := otter.MustBuilder[string, *Entry](size).
		CollectStats().
		Build()
	if err != nil {
		return nil, fmt.Errorf("build cache: %w", err)
	}
	return &Cache{store: store}, nil
}

// Get returns the entry for key.
func (c *Cache) Get(key string) (*Entry, bool) {
	if c == nil {
		return nil, false
	}
	return c.store.Get(key)
}

// Set stores an entry.
func (c *Cache) Set(key string, e *Entry) {
	if c == nil {
		return
	}
	c.store.Set(key, e)
}

// Stats returns hit and miss counts.
func (c *Cache) Stats() CacheStats {
	if c == nil {
		return CacheStats{}
	}
	s := c.store.Stats()
	return CacheStats{
		Size:   c.store.Size(),
		Hits:   s.Hits(),
		Misses: s.Misses(),
		Ratio:  s.Ratio(),
	}
}

// Close releases the cache's background resources.
func (c *Cache) Close() {
	if c == nil {
		return
	}
	c.store.Close()
}
