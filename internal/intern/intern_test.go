package intern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for the symbol interner:
// - Ids are assigned densely in first-seen order
// - Re-interning returns the existing id
// - Strings at or below the minimum length are rejected
// - Freeze blocks new strings but still resolves known ones
// - Counter only interns repeated strings, in first-seen order
// - Two builds over the same input produce identical tables

func TestTable_FirstSeenOrder(t *testing.T) {
	t.Parallel()

	tab := New(DefaultMinLength)

	a, ok := tab.Intern("orders")
	require.True(t, ok)
	b, ok := tab.Intern("result")
	require.True(t, ok)
	again, ok := tab.Intern("orders")
	require.True(t, ok)

	assert.Equal(t, SymbolID(0), a)
	assert.Equal(t, SymbolID(1), b)
	assert.Equal(t, a, again)
	assert.Equal(t, []string{"orders", "result"}, tab.Symbols())
}

func TestTable_MinLength(t *testing.T) {
	t.Parallel()

	tab := New(3)

	_, ok := tab.Intern("abc")
	assert.False(t, ok)
	_, ok = tab.Intern("abcd")
	assert.True(t, ok)
	assert.Equal(t, 1, tab.Len())
}

func TestTable_Freeze(t *testing.T) {
	t.Parallel()

	tab := New(0)
	id, _ := tab.Intern("known")
	tab.Freeze()

	_, ok := tab.Intern("fresh")
	assert.False(t, ok)

	got, ok := tab.Intern("known")
	assert.True(t, ok)
	assert.Equal(t, id, got)

	s, ok := tab.Symbol(id)
	assert.True(t, ok)
	assert.Equal(t, "known", s)

	_, ok = tab.Symbol(42)
	assert.False(t, ok)
}

func TestCounter_Build(t *testing.T) {
	t.Parallel()

	build := func() *Table {
		c := NewCounter()
		for _, s := range []string{"value", "once", "doubled", "value", "doubled", "doubled", "ab", "ab"} {
			c.Add(s)
		}
		return c.Build(DefaultMinLength, 2)
	}

	first := build()
	assert.Equal(t, []string{"value", "doubled"}, first.Symbols())

	_, ok := first.Lookup("once")
	assert.False(t, ok)
	_, ok = first.Lookup("ab")
	assert.False(t, ok)

	assert.Equal(t, first.Symbols(), build().Symbols())
}

func TestLoad(t *testing.T) {
	t.Parallel()

	tbl := Load([]string{"orders", "result"})
	s, ok := tbl.Symbol(1)
	require.True(t, ok)
	assert.Equal(t, "result", s)

	_, ok = tbl.Intern("fresh")
	assert.False(t, ok)
}
