package batch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/astdigest/internal/engine"
)

// Test Plan for the result cache:
// - Keys change with content and with every output-shaping setting
// - Get after Set hits; unknown keys miss and are counted
// - A zero size disables the cache and a nil cache is safe to use

func TestContentKey(t *testing.T) {
	t.Parallel()

	opts := engine.DefaultOptions()
	fp := Fingerprint(opts, engine.FormatJSON, engine.FrameNone)
	assert.Equal(t, fp, Fingerprint(opts, engine.FormatJSON, engine.FrameNone))

	src := []byte("class A {}")
	assert.Equal(t, ContentKey(src, fp), ContentKey([]byte("class A {}"), fp))
	assert.NotEqual(t, ContentKey(src, fp), ContentKey([]byte("class B {}"), fp))

	high := opts
	high.Aggregation = engine.High
	assert.NotEqual(t, fp, Fingerprint(high, engine.FormatJSON, engine.FrameNone))
	assert.NotEqual(t, fp, Fingerprint(opts, engine.FormatJSONIndent, engine.FrameNone))
	assert.NotEqual(t, fp, Fingerprint(opts, engine.FormatJSON, engine.FrameGzipBase64))
}

func TestCache_GetSet(t *testing.T) {
	t.Parallel()

	c, err := NewCache(8)
	require.NoError(t, err)
	defer c.Close()

	_, ok := c.Get("missing")
	assert.False(t, ok)

	c.Set("k", &Entry{Output: []byte("{}"), Summary: FileSummary{Classes: 2}})
	e, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, 2, e.Summary.Classes)

	s := c.Stats()
	assert.Equal(t, int64(1), s.Hits)
	assert.Equal(t, int64(1), s.Misses)
}

func TestCache_Disabled(t *testing.T) {
	t.Parallel()

	c, err := NewCache(0)
	require.NoError(t, err)
	assert.Nil(t, c)

	c.Set("k", &Entry{})
	_, ok := c.Get("k")
	assert.False(t, ok)
	assert.Equal(t, CacheStats{}, c.Stats())
	c.Close()
}
