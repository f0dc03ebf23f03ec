// Package intern replaces repeated literal text with small integer ids.
package intern

// SymbolID indexes into a Table's symbol list.
type SymbolID int

// DefaultMinLength is the length a string must exceed to be interned.
const DefaultMinLength = 3

// Table is an insertion-ordered bijection between strings and ids.
// It is built once per run and frozen before use.
type Table struct {
	minLen  int
	ids     map[string]SymbolID
	symbols []string
	frozen  bool
}

// New creates an empty table. Strings of length <= minLen are never interned.
func New(minLen int) *Table {
	if minLen < 0 {
		minLen = 0
	}
	return &Table{
		minLen: minLen,
		ids:    make(map[string]SymbolID),
	}
}

// Load rebuilds a frozen table from a serialized symbol list.
func Load(symbols []string) *Table {
	t := New(0)
	for _, s := range symbols {
		if _, dup := t.ids[s]; dup {
			continue
		}
		t.ids[s] = SymbolID(len(t.symbols))
		t.symbols = append(t.symbols, s)
	}
	t.Freeze()
	return t
}

// Intern returns the id for text, inserting it on first sight.
// ok is false when text is too short or the table is frozen and text is new.
func (t *Table) Intern(text string) (SymbolID, bool) {
	if id, ok := t.ids[text]; ok {
		return id, true
	}
	if t.frozen || len(text) <= t.minLen {
		return 0, false
	}
	id := SymbolID(len(t.symbols))
	t.ids[text] = id
	t.symbols = append(t.symbols, text)
	return id, true
}

// Lookup returns the id for text without inserting.
func (t *Table) Lookup(text string) (SymbolID, bool) {
	id, ok := t.ids[text]
	return id, ok
}

// Symbol resolves an id back to its string.
func (t *Table) Symbol(id SymbolID) (string, bool) {
	if id < 0 || int(id) >= len(t.symbols) {
		return "", false
	}
	return t.symbols[id], true
}

// Freeze stops further insertions.
func (t *Table) Freeze() {
	t.frozen = true
}

// Len returns the number of interned strings.
func (t *Table) Len() int {
	return len(t.symbols)
}

// Symbols returns a copy of the interned strings in id order.
func (t *Table) Symbols() []string {
	out := make([]string, len(t.symbols))
	copy(out, t.symbols)
	return out
}

// Counter tallies candidate strings before interning so that only repeated
// text earns a table slot.
type Counter struct {
	order  []string
	counts map[string]int
}

// NewCounter creates an empty counter.
func NewCounter() *Counter {
	return &Counter{counts: make(map[string]int)}
}

// Add records one occurrence of text.
func (c *Counter) Add(text string) {
	if c.counts[text] == 0 {
		c.order = append(c.order, text)
	}
	c.counts[text]++
}

// Build interns, in first-seen order, every string seen at least minCount
// times, and returns the frozen table.
func (c *Counter) Build(minLen, minCount int) *Table {
	t := New(minLen)
	for _, s := range c.order {
		if c.counts[s] >= minCount {
			t.Intern(s)
		}
	}
	t.Freeze()
	return t
}
