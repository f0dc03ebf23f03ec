// Package dedupe folds structurally identical subtrees into back-references.
package dedupe

import (
	"encoding/binary"
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// DefaultFloor is the depth at or above which nodes are never replaced.
const DefaultFloor = 2

// Digest identifies a subtree by kind, text and ordered child digests.
type Digest [32]byte

// String returns the hex form of the digest.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// Sum combines kind, text and child digests. Every field is length-prefixed so
// that ("ab","c") and ("a","bc") never collide.
func Sum(kind, text string, children []Digest) Digest {
	h := blake3.New()
	var lenBuf [8]byte

	writeField := func(b []byte) {
		binary.BigEndian.PutUint64(lenBuf[:], uint64(len(b)))
		_, _ = h.Write(lenBuf[:])
		_, _ = h.Write(b)
	}

	writeField([]byte(kind))
	writeField([]byte(text))
	binary.BigEndian.PutUint64(lenBuf[:], uint64(len(children)))
	_, _ = h.Write(lenBuf[:])
	for _, c := range children {
		_, _ = h.Write(c[:])
	}

	var d Digest
	copy(d[:], h.Sum(nil))
	return d
}

// Entry is one cached subtree.
type Entry[T any] struct {
	Value T
	// Refs counts back-references handed out, not including the original.
	Refs int
	// ID is assigned on the first back-reference; zero means unreferenced.
	ID int
}

// Cache maps digests to the first emitted occurrence of a subtree.
type Cache[T any] struct {
	floor   int
	entries map[Digest]*Entry[T]
	nextID  int
}

// NewCache creates a cache that only substitutes below floor.
func NewCache[T any](floor int) *Cache[T] {
	return &Cache[T]{
		floor:   floor,
		entries: make(map[Digest]*Entry[T]),
	}
}

// Lookup returns the cached entry for d when depth is past the floor. It has
// no side effects; a hit only becomes a back-reference once passed to Ref.
func (c *Cache[T]) Lookup(d Digest, depth int) (*Entry[T], bool) {
	if depth <= c.floor {
		return nil, false
	}
	e, ok := c.entries[d]
	return e, ok
}

// Ref counts a back-reference to e and assigns its ID on first use, so IDs
// follow the order in which references are issued.
func (c *Cache[T]) Ref(e *Entry[T]) int {
	if e.ID == 0 {
		c.nextID++
		e.ID = c.nextID
	}
	e.Refs++
	return e.ID
}

// Register stores v as the first occurrence of d. Later registrations of the
// same digest are ignored.
func (c *Cache[T]) Register(d Digest, v T) *Entry[T] {
	if e, ok := c.entries[d]; ok {
		return e
	}
	e := &Entry[T]{Value: v}
	c.entries[d] = e
	return e
}

// Len returns the number of distinct subtrees registered.
func (c *Cache[T]) Len() int {
	return len(c.entries)
}

// Stats reports how many subtrees were referenced and how many references
// were issued in total.
func (c *Cache[T]) Stats() (shared, refs int) {
	for _, e := range c.entries {
		if e.Refs > 0 {
			shared++
			refs += e.Refs
		}
	}
	return shared, refs
}
