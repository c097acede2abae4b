package emap

import (
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMapAssocLeavesReceiverUnchanged(t *testing.T) {
	m := New(Entry{Key: "a", Value: int64(1)})
	n := m.Assoc("b", int64(2))

	assert.Equal(t, 1, m.Len(), "receiver must not grow")
	assert.Equal(t, 2, n.Len())

	_, ok := m.Get("b")
	assert.False(t, ok, "receiver must not see the new key")

	v, ok := n.Get("b")
	assert.True(t, ok)
	assert.Equal(t, int64(2), v)
}

func TestMapAssocOverwriteKeepsPosition(t *testing.T) {
	m := New(
		Entry{Key: "a", Value: int64(1)},
		Entry{Key: "b", Value: int64(2)},
		Entry{Key: "c", Value: int64(3)},
	)
	n := m.Assoc("b", int64(20))

	assert.Equal(t, []any{"a", "b", "c"}, n.Keys(), "overwrite keeps insertion position")
	v, _ := n.Get("b")
	assert.Equal(t, int64(20), v)
	v, _ = m.Get("b")
	assert.Equal(t, int64(2), v, "original value untouched")
}

func TestMapStructuralSharing(t *testing.T) {
	inner := New(Entry{Key: "x", Value: int64(1)})
	m := New(Entry{Key: "nested", Value: inner}, Entry{Key: "n", Value: int64(0)})
	n := m.Assoc("n", int64(1))

	got, ok := n.Get("nested")
	assert.True(t, ok)
	assert.Same(t, inner, got, "untouched nested map must be shared by identity")
}

func TestMapWithout(t *testing.T) {
	m := New(Entry{Key: "a", Value: int64(1)}, Entry{Key: "b", Value: int64(2)})
	n := m.Without("a")

	assert.Equal(t, 2, m.Len())
	assert.Equal(t, 1, n.Len())
	assert.False(t, n.Has("a"))

	same := n.Without("missing")
	assert.True(t, same.Equal(n))
}

func TestMapEqualIgnoresOrderAndMetadata(t *testing.T) {
	a := New(Entry{Key: "x", Value: int64(1)}, Entry{Key: "y", Value: int64(2)})
	b := New(Entry{Key: "y", Value: int64(2)}, Entry{Key: "x", Value: int64(1)})

	assert.True(t, a.Equal(b))
	assert.True(t, a.Equal(b.WithMeta("tag", "anything")))
	assert.Equal(t, a.Hash(), b.Hash(), "hash must be consistent with equality")

	c := b.Assoc("y", int64(3))
	assert.False(t, a.Equal(c))
}

func TestMapMetadataIsInvisible(t *testing.T) {
	m := New(Entry{Key: "a", Value: int64(1)})
	tagged := m.WithMeta("tag", "demo.Thing")

	assert.Equal(t, m.Len(), tagged.Len(), "metadata must not add entries")
	assert.Equal(t, m.Keys(), tagged.Keys())

	v, ok := tagged.Meta("tag")
	assert.True(t, ok)
	assert.Equal(t, "demo.Thing", v)

	_, ok = m.Meta("tag")
	assert.False(t, ok, "receiver must not gain metadata")
}

func TestMapWithMetaReplacesOnlyThatKey(t *testing.T) {
	m := New().WithMeta("tag", "a.B").WithMeta("source", "test")
	n := m.WithMeta("tag", "c.D")

	v, _ := n.Meta("tag")
	assert.Equal(t, "c.D", v)
	v, _ = n.Meta("source")
	assert.Equal(t, "test", v, "other metadata survives")
}

func TestMapAssocPreservesMetadata(t *testing.T) {
	m := New().WithMeta("tag", "a.B")
	n := m.Assoc("k", int64(1)).Without("k")

	v, ok := n.Meta("tag")
	assert.True(t, ok)
	assert.Equal(t, "a.B", v)
}

func TestMapIterationOrder(t *testing.T) {
	m := New()
	for _, k := range []string{"c", "a", "b"} {
		m = m.Assoc(k, k)
	}
	var keys []any
	for k := range m.All() {
		keys = append(keys, k)
	}
	assert.Equal(t, []any{"c", "a", "b"}, keys)
}

func TestValueEqual(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{name: "scalars", a: int64(1), b: int64(1), want: true},
		{name: "different types", a: int64(1), b: "1", want: false},
		{name: "nil both", a: nil, b: nil, want: true},
		{name: "nil one", a: nil, b: int64(0), want: false},
		{name: "slices", a: []any{int64(1), "x"}, b: []any{int64(1), "x"}, want: true},
		{name: "slices differ", a: []any{int64(1)}, b: []any{int64(2)}, want: false},
		{name: "instants", a: now, b: now.UTC(), want: true},
		{name: "big ints", a: big.NewInt(7), b: big.NewInt(7), want: true},
		{name: "big floats", a: big.NewFloat(1.5), b: big.NewFloat(1.5), want: true},
		{
			name: "nested maps",
			a:    New(Entry{Key: "m", Value: New(Entry{Key: "x", Value: int64(1)})}),
			b:    New(Entry{Key: "m", Value: New(Entry{Key: "x", Value: int64(1)})}),
			want: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValueEqual(tt.a, tt.b))
			assert.Equal(t, tt.want, ValueEqual(tt.b, tt.a), "equality must be symmetric")
			if tt.want {
				assert.Equal(t, ValueHash(tt.a), ValueHash(tt.b), "equal values must hash equal")
			}
		})
	}
}
