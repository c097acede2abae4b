// Package emap implements an immutable, insertion-ordered map with an
// out-of-band metadata channel. Maps are never mutated after construction:
// Assoc and Without return new maps that share all values with the
// receiver, so maps are safe to share across goroutines without locking.
package emap

import (
	"fmt"
	"hash/fnv"
	"iter"
	"math"
	"math/big"
	"reflect"
	"time"
)

// Entry is a single key/value pair, used to build maps.
type Entry struct {
	Key   any
	Value any
}

// Map is an immutable mapping from keys to arbitrary values. Keys are
// expected to be comparable (keywords or strings in practice); values may
// be any value, including nested *Map instances. Iteration order is
// insertion order; equality and hashing ignore order.
//
// The zero value is not usable; construct maps with New.
type Map struct {
	keys    []any
	entries map[any]any
	meta    map[string]any
}

// New creates a Map from entries. A later entry with a duplicate key
// overwrites the earlier one in place.
func New(entries ...Entry) *Map {
	m := &Map{
		keys:    make([]any, 0, len(entries)),
		entries: make(map[any]any, len(entries)),
	}
	for _, e := range entries {
		if _, ok := m.entries[e.Key]; !ok {
			m.keys = append(m.keys, e.Key)
		}
		m.entries[e.Key] = e.Value
	}
	return m
}

// Get returns the value stored under k, and whether the key is present.
func (m *Map) Get(k any) (any, bool) {
	v, ok := m.entries[k]
	return v, ok
}

// Has reports whether k is present.
func (m *Map) Has(k any) bool {
	_, ok := m.entries[k]
	return ok
}

// Len returns the number of entries.
func (m *Map) Len() int {
	return len(m.keys)
}

// Assoc returns a new Map with k associated to v. The receiver is
// unchanged. An existing key keeps its position; a new key appends.
// All values, including nested maps, are shared with the receiver.
func (m *Map) Assoc(k, v any) *Map {
	n := m.clone()
	if _, ok := n.entries[k]; !ok {
		n.keys = append(n.keys, k)
	}
	n.entries[k] = v
	return n
}

// Without returns a new Map with k removed. The receiver is unchanged.
// Removing an absent key returns an equal map.
func (m *Map) Without(k any) *Map {
	if _, ok := m.entries[k]; !ok {
		return m
	}
	n := &Map{
		keys:    make([]any, 0, len(m.keys)-1),
		entries: make(map[any]any, len(m.entries)-1),
		meta:    m.meta,
	}
	for _, key := range m.keys {
		if key == k {
			continue
		}
		n.keys = append(n.keys, key)
		n.entries[key] = m.entries[key]
	}
	return n
}

// All returns an iterator over entries in insertion order.
func (m *Map) All() iter.Seq2[any, any] {
	return func(yield func(any, any) bool) {
		for _, k := range m.keys {
			if !yield(k, m.entries[k]) {
				return
			}
		}
	}
}

// Keys returns the keys in insertion order. The slice is a copy.
func (m *Map) Keys() []any {
	out := make([]any, len(m.keys))
	copy(out, m.keys)
	return out
}

// Meta returns the metadata value stored under key. Metadata is invisible
// to Get, Len, All, Equal and Hash.
func (m *Map) Meta(key string) (any, bool) {
	v, ok := m.meta[key]
	return v, ok
}

// WithMeta returns a new Map with the metadata key set to v. Entries are
// shared with the receiver, not copied; only the metadata table is new.
func (m *Map) WithMeta(key string, v any) *Map {
	meta := make(map[string]any, len(m.meta)+1)
	for k, mv := range m.meta {
		meta[k] = mv
	}
	meta[key] = v
	return &Map{keys: m.keys, entries: m.entries, meta: meta}
}

// Equal reports whether other is a *Map with equal entries. Order and
// metadata are ignored. Values compare via ValueEqual.
func (m *Map) Equal(other any) bool {
	o, ok := other.(*Map)
	if !ok || o == nil {
		return false
	}
	if len(m.entries) != len(o.entries) {
		return false
	}
	for k, v := range m.entries {
		ov, ok := o.entries[k]
		if !ok || !ValueEqual(v, ov) {
			return false
		}
	}
	return true
}

// Hash returns an order-insensitive hash consistent with Equal.
func (m *Map) Hash() uint64 {
	var h uint64
	for k, v := range m.entries {
		h ^= 31*ValueHash(k) + ValueHash(v)
	}
	return h
}

func (m *Map) clone() *Map {
	n := &Map{
		keys:    make([]any, len(m.keys), len(m.keys)+1),
		entries: make(map[any]any, len(m.entries)+1),
		meta:    m.meta,
	}
	copy(n.keys, m.keys)
	for k, v := range m.entries {
		n.entries[k] = v
	}
	return n
}

// ValueEqual compares two stored values. Maps compare entry-wise, slices
// element-wise, instants by time.Equal, big numbers by Cmp; a value may
// supply its own semantics by implementing Equal(other any) bool.
// Everything else falls back to Go equality.
func ValueEqual(a, b any) bool {
	switch av := a.(type) {
	case *Map:
		return av.Equal(b)
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !ValueEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	case time.Time:
		bv, ok := b.(time.Time)
		return ok && av.Equal(bv)
	case *big.Int:
		bv, ok := b.(*big.Int)
		return ok && av.Cmp(bv) == 0
	case *big.Float:
		bv, ok := b.(*big.Float)
		return ok && av.Cmp(bv) == 0
	}
	if eq, ok := a.(interface{ Equal(other any) bool }); ok {
		return eq.Equal(b)
	}
	if a == nil || b == nil {
		return a == b
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	if !ta.Comparable() {
		return reflect.DeepEqual(a, b)
	}
	return a == b
}

// ValueHash returns a hash consistent with ValueEqual.
func ValueHash(v any) uint64 {
	h := fnv.New64a()
	switch tv := v.(type) {
	case nil:
		return 0
	case *Map:
		return tv.Hash()
	case []any:
		var acc uint64 = 1
		for _, e := range tv {
			acc = 31*acc + ValueHash(e)
		}
		return acc
	case interface{ Hash() uint64 }:
		return tv.Hash()
	case string:
		h.Write([]byte(tv))
	case bool:
		if tv {
			h.Write([]byte{1})
		} else {
			h.Write([]byte{0})
		}
	case int64:
		writeUint64(h, uint64(tv))
	case float64:
		writeUint64(h, math.Float64bits(tv))
	case time.Time:
		writeUint64(h, uint64(tv.UnixNano()))
	case *big.Int:
		h.Write([]byte(tv.String()))
	case *big.Float:
		h.Write([]byte(tv.Text('g', -1)))
	default:
		// Keywords, symbols, uuids and other small comparable scalars.
		fmt.Fprintf(h, "%T:%v", v, v)
	}
	return h.Sum64()
}

func writeUint64(h interface{ Write(p []byte) (int, error) }, u uint64) {
	var b [8]byte
	for i := 0; i < 8; i++ {
		b[i] = byte(u >> (8 * i))
	}
	h.Write(b[:])
}
