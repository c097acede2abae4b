package edn

import (
	"math/big"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/mesh-intelligence/facet/pkg/emap"
)

func TestPrint(t *testing.T) {
	when, _ := time.Parse(time.RFC3339, "2024-03-01T12:30:00Z")
	tests := []struct {
		name string
		v    any
		want string
	}{
		{name: "nil", v: nil, want: "nil"},
		{name: "bool", v: true, want: "true"},
		{name: "integer", v: int64(42), want: "42"},
		{name: "float", v: 1.5, want: "1.5"},
		{name: "whole float keeps point", v: 2.0, want: "2.0"},
		{name: "string", v: "hi", want: `"hi"`},
		{name: "string escapes", v: "a\nb\"c", want: `"a\nb\"c"`},
		{name: "keyword", v: KW("artist-name"), want: ":artist-name"},
		{name: "symbol", v: Symbol("foo"), want: "foo"},
		{name: "char", v: Char('a'), want: `\a`},
		{name: "newline char", v: Char('\n'), want: `\newline`},
		{name: "big int", v: big.NewInt(7), want: "7N"},
		{name: "instant", v: when, want: `#inst "2024-03-01T12:30:00Z"`},
		{
			name: "uuid",
			v:    uuid.MustParse("f81d4fae-7dec-11d0-a765-00a0c91e6bf6"),
			want: `#uuid "f81d4fae-7dec-11d0-a765-00a0c91e6bf6"`,
		},
		{name: "vector", v: []any{int64(1), int64(2)}, want: "[1 2]"},
		{name: "empty vector", v: []any{}, want: "[]"},
		{name: "set", v: NewSet(int64(1), int64(2)), want: "#{1 2}"},
		{name: "tagged", v: Tagged{Tag: "custom", Value: int64(1)}, want: "#custom 1"},
		{
			name: "map in insertion order",
			v: emap.New(
				emap.Entry{Key: KW("b"), Value: int64(2)},
				emap.Entry{Key: KW("a"), Value: int64(1)},
			),
			want: "{:b 2, :a 1}",
		},
		{name: "empty map", v: emap.New(), want: "{}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Print(tt.v)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPrintUnsupportedType(t *testing.T) {
	_, err := Print(struct{ X int }{})
	assert.Error(t, err)
}

func TestPrintMapTagHook(t *testing.T) {
	p := &Printer{MapTag: func(m *emap.Map) (string, bool) {
		return "demo.Thing", true
	}}
	got, err := p.Print(emap.New(emap.Entry{Key: KW("a"), Value: int64(1)}))
	assert.NoError(t, err)
	assert.Equal(t, "#demo.Thing {:a 1}", got)
}

func TestPrintExtHook(t *testing.T) {
	type point struct{ X, Y int64 }
	p := &Printer{Ext: func(v any) (string, any, bool, error) {
		pt, ok := v.(point)
		if !ok {
			return "", nil, false, nil
		}
		return "demo/point", []any{pt.X, pt.Y}, true, nil
	}}
	got, err := p.Print(point{X: 1, Y: 2})
	assert.NoError(t, err)
	assert.Equal(t, "#demo/point [1 2]", got)
}

// Round trip: printing a parsed tree and re-parsing it yields an equal
// tree, and the printed text is stable.
func TestPrintParseRoundTrip(t *testing.T) {
	sources := []string{
		"nil",
		"[1 2.5 \"three\" :four]",
		`{:a 1, :b [true false], :c {:d "deep"}}`,
		"#{1 \"two\" :three}",
		`#inst "2024-03-01T12:30:00Z"`,
		"#custom/ext [1 2]",
		"123456789012345678901234567890N",
		"1.25M",
		`\newline`,
	}
	for _, src := range sources {
		t.Run(src, func(t *testing.T) {
			v, err := Parse(src)
			assert.NoError(t, err)
			printed, err := Print(v)
			assert.NoError(t, err)
			back, err := Parse(printed)
			assert.NoError(t, err)
			assert.True(t, emap.ValueEqual(v, back), "round trip changed %q -> %q", src, printed)
			again, err := Print(back)
			assert.NoError(t, err)
			assert.Equal(t, printed, again, "printing must be deterministic")
		})
	}
}
