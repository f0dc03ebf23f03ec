// Package keymap shortens document keys with a fixed, reversible legend.
package keymap

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Escape prefixes unmapped keys that would otherwise be read back as a short
// code.
const Escape = "~"

var (
	ErrDuplicateShort = errors.New("short code used twice")
	ErrAmbiguousKey   = errors.New("short code is also a long key")
	ErrEscapedKey     = errors.New("legend key starts with the escape prefix")
	ErrEmptyKey       = errors.New("legend key is empty")
)

// Legend is a bijective long to short key mapping.
type Legend struct {
	forward map[string]string
	reverse map[string]string
}

// New builds a legend from a long to short map and validates it.
func New(m map[string]string) (*Legend, error) {
	l := &Legend{
		forward: make(map[string]string, len(m)),
		reverse: make(map[string]string, len(m)),
	}
	for long, short := range m {
		l.forward[long] = short
	}
	if err := l.Validate(); err != nil {
		return nil, err
	}
	for long, short := range l.forward {
		l.reverse[short] = long
	}
	return l, nil
}

// Validate checks that the legend can be inverted without ambiguity.
func (l *Legend) Validate() error {
	var errs []string
	seen := make(map[string]string, len(l.forward))
	for _, long := range l.Keys() {
		short := l.forward[long]
		switch {
		case long == "" || short == "":
			errs = append(errs, fmt.Sprintf("%v: %q", ErrEmptyKey, long))
		case strings.HasPrefix(long, Escape) || strings.HasPrefix(short, Escape):
			errs = append(errs, fmt.Sprintf("%v: %q", ErrEscapedKey, long))
		}
		if prev, ok := seen[short]; ok {
			errs = append(errs, fmt.Sprintf("%v: %q for %q and %q", ErrDuplicateShort, short, prev, long))
		}
		seen[short] = long
		if _, ok := l.forward[short]; ok && short != long {
			errs = append(errs, fmt.Sprintf("%v: %q", ErrAmbiguousKey, short))
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errors.New("invalid legend:\n  - " + strings.Join(errs, "\n  - "))
}

// Keys returns the long keys in sorted order.
func (l *Legend) Keys() []string {
	keys := make([]string, 0, len(l.forward))
	for k := range l.forward {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Map returns a copy of the long to short mapping.
func (l *Legend) Map() map[string]string {
	out := make(map[string]string, len(l.forward))
	for k, v := range l.forward {
		out[k] = v
	}
	return out
}

// Short returns the short code for long, if mapped.
func (l *Legend) Short(long string) (string, bool) {
	s, ok := l.forward[long]
	return s, ok
}

// Len returns the number of mappings.
func (l *Legend) Len() int {
	return len(l.forward)
}

func (l *Legend) remapKey(k string) string {
	if s, ok := l.forward[k]; ok {
		return s
	}
	if _, collides := l.reverse[k]; collides || strings.HasPrefix(k, Escape) {
		return Escape + k
	}
	return k
}

func (l *Legend) restoreKey(k string) string {
	if long, ok := l.reverse[k]; ok {
		return long
	}
	if strings.HasPrefix(k, Escape) {
		return k[len(Escape):]
	}
	return k
}

// Remap rewrites the keys of every map in v. Values are never changed. v is
// expected to be a decoded JSON value: maps, slices and scalars.
func (l *Legend) Remap(v any) any {
	return l.transform(v, l.remapKey)
}

// Restore inverts Remap.
func (l *Legend) Restore(v any) any {
	return l.transform(v, l.restoreKey)
}

func (l *Legend) transform(v any, key func(string) string) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[key(k)] = l.transform(val, key)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = l.transform(val, key)
		}
		return out
	default:
		return v
	}
}

// Document is the envelope written when key mapping is on.
type Document struct {
	KeyMapping map[string]string `json:"key_mapping"`
	Data       any               `json:"data"`
}

// Wrap remaps v and wraps it with the legend.
func (l *Legend) Wrap(v any) Document {
	return Document{KeyMapping: l.Map(), Data: l.Remap(v)}
}
