// Package edn reads and prints an extensible, EDN-style data notation.
// Text parses into a generic immutable tree: Go natives for scalars
// (nil, bool, string, int64, float64, *big.Int, *big.Float, time.Time,
// uuid.UUID), []any for sequences, *emap.Map for keyword-keyed maps, and
// the types declared in this file for the remaining notation forms.
// Printing is the inverse and is deterministic: collections print in
// insertion order.
//
// Tagged literals beyond the built-in #inst and #uuid are delegated to a
// caller-supplied hook; with no hook they round-trip as Tagged values.
package edn

import (
	"iter"
	"sync"

	"github.com/mesh-intelligence/facet/pkg/emap"
)

// Keyword is an interned, atomic identifier written with a leading colon
// (":artist-name"). Keywords are comparable and usable as map keys.
type Keyword struct {
	name string
}

// kwIntern caches keywords by name so repeated reads of the same keyword
// return the identical value without allocating.
var kwIntern sync.Map // string -> Keyword

// KW returns the canonical Keyword for name. The name is given without
// the leading colon. Calling KW repeatedly with the same name returns the
// same keyword.
func KW(name string) Keyword {
	if k, ok := kwIntern.Load(name); ok {
		return k.(Keyword)
	}
	k, _ := kwIntern.LoadOrStore(name, Keyword{name: name})
	return k.(Keyword)
}

// Name returns the keyword's name without the leading colon.
func (k Keyword) Name() string {
	return k.name
}

func (k Keyword) String() string {
	return ":" + k.name
}

// Symbol is a bare identifier.
type Symbol string

// Char is a single character literal (`\a`, `\newline`).
type Char rune

// Tagged is a tagged literal whose tag was not recognized by the reader.
// It prints back as "#Tag Value", preserving unknown extensions verbatim
// when the caller chooses not to treat them as fatal.
type Tagged struct {
	Tag   string
	Value any
}

// Equal reports whether other is a tagged literal with the same tag and
// an equal value.
func (t Tagged) Equal(other any) bool {
	o, ok := other.(Tagged)
	return ok && t.Tag == o.Tag && emap.ValueEqual(t.Value, o.Value)
}

// Set is an immutable collection of unique values. Insertion order is
// preserved for printing; equality ignores order.
type Set struct {
	elems []any
}

// NewSet creates a Set from elems, dropping duplicates (first wins).
func NewSet(elems ...any) *Set {
	s := &Set{elems: make([]any, 0, len(elems))}
	for _, e := range elems {
		if !s.Contains(e) {
			s.elems = append(s.elems, e)
		}
	}
	return s
}

// Contains reports whether v is an element of the set.
func (s *Set) Contains(v any) bool {
	for _, e := range s.elems {
		if emap.ValueEqual(e, v) {
			return true
		}
	}
	return false
}

// Len returns the number of elements.
func (s *Set) Len() int {
	return len(s.elems)
}

// All returns an iterator over elements in insertion order.
func (s *Set) All() iter.Seq[any] {
	return func(yield func(any) bool) {
		for _, e := range s.elems {
			if !yield(e) {
				return
			}
		}
	}
}

// Equal reports whether other is a *Set with the same elements,
// regardless of order.
func (s *Set) Equal(other any) bool {
	o, ok := other.(*Set)
	if !ok || o == nil || len(s.elems) != len(o.elems) {
		return false
	}
	for _, e := range s.elems {
		if !o.Contains(e) {
			return false
		}
	}
	return true
}

// Hash returns an order-insensitive hash consistent with Equal.
func (s *Set) Hash() uint64 {
	var h uint64
	for _, e := range s.elems {
		h ^= emap.ValueHash(e)
	}
	return h
}
