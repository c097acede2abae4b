package edn

import (
	"io"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/mesh-intelligence/facet/pkg/emap"
)

func TestParseScalars(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want any
	}{
		{name: "nil", src: "nil", want: nil},
		{name: "true", src: "true", want: true},
		{name: "false", src: "false", want: false},
		{name: "integer", src: "42", want: int64(42)},
		{name: "negative integer", src: "-7", want: int64(-7)},
		{name: "signed positive", src: "+7", want: int64(7)},
		{name: "float", src: "1.5", want: 1.5},
		{name: "float with exponent", src: "2e3", want: 2000.0},
		{name: "string", src: `"hello"`, want: "hello"},
		{name: "string escapes", src: `"a\nb\tc\"d"`, want: "a\nb\tc\"d"},
		{name: "unicode escape", src: "\"\\u00e9\"", want: "é"},
		{name: "keyword", src: ":artist-name", want: KW("artist-name")},
		{name: "namespaced keyword", src: ":demo/album", want: KW("demo/album")},
		{name: "symbol", src: "foo", want: Symbol("foo")},
		{name: "char", src: `\a`, want: Char('a')},
		{name: "named char", src: `\newline`, want: Char('\n')},
		{name: "unicode char", src: "\\u0041", want: Char('A')},
		{name: "big integer", src: "123456789012345678901234567890N", want: mustBigInt("123456789012345678901234567890")},
		{name: "big decimal", src: "1.25M", want: mustBigFloat("1.25")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.src)
			assert.NoError(t, err)
			assert.True(t, emap.ValueEqual(tt.want, got), "got %#v", got)
		})
	}
}

func mustBigInt(s string) *big.Int {
	n, _ := new(big.Int).SetString(s, 10)
	return n
}

func mustBigFloat(s string) *big.Float {
	f, _, _ := big.ParseFloat(s, 10, bigFloatPrec, big.ToNearestEven)
	return f
}

func TestParseCollections(t *testing.T) {
	t.Run("vector", func(t *testing.T) {
		got, err := Parse(`[1 "two" :three]`)
		assert.NoError(t, err)
		assert.Equal(t, []any{int64(1), "two", KW("three")}, got)
	})

	t.Run("list", func(t *testing.T) {
		got, err := Parse(`(1 2 3)`)
		assert.NoError(t, err)
		assert.Equal(t, []any{int64(1), int64(2), int64(3)}, got)
	})

	t.Run("empty vector", func(t *testing.T) {
		got, err := Parse(`[]`)
		assert.NoError(t, err)
		assert.Equal(t, []any{}, got)
	})

	t.Run("map", func(t *testing.T) {
		got, err := Parse(`{:a 1, :b "two"}`)
		assert.NoError(t, err)
		m, ok := got.(*emap.Map)
		assert.True(t, ok)
		assert.Equal(t, 2, m.Len())
		v, _ := m.Get(KW("a"))
		assert.Equal(t, int64(1), v)
		v, _ = m.Get(KW("b"))
		assert.Equal(t, "two", v)
	})

	t.Run("string keys", func(t *testing.T) {
		got, err := Parse(`{"plain" 1}`)
		assert.NoError(t, err)
		m := got.(*emap.Map)
		v, ok := m.Get("plain")
		assert.True(t, ok)
		assert.Equal(t, int64(1), v)
	})

	t.Run("set", func(t *testing.T) {
		got, err := Parse(`#{1 2 3}`)
		assert.NoError(t, err)
		s, ok := got.(*Set)
		assert.True(t, ok)
		assert.Equal(t, 3, s.Len())
		assert.True(t, s.Contains(int64(2)))
	})

	t.Run("nested", func(t *testing.T) {
		got, err := Parse(`{:xs [1 {:y 2}]}`)
		assert.NoError(t, err)
		m := got.(*emap.Map)
		xs, _ := m.Get(KW("xs"))
		inner := xs.([]any)[1].(*emap.Map)
		v, _ := inner.Get(KW("y"))
		assert.Equal(t, int64(2), v)
	})
}

func TestParseBuiltinTags(t *testing.T) {
	t.Run("inst", func(t *testing.T) {
		got, err := Parse(`#inst "2024-03-01T12:30:00Z"`)
		assert.NoError(t, err)
		want, _ := time.Parse(time.RFC3339, "2024-03-01T12:30:00Z")
		assert.True(t, want.Equal(got.(time.Time)))
	})

	t.Run("uuid", func(t *testing.T) {
		got, err := Parse(`#uuid "f81d4fae-7dec-11d0-a765-00a0c91e6bf6"`)
		assert.NoError(t, err)
		assert.Equal(t, uuid.MustParse("f81d4fae-7dec-11d0-a765-00a0c91e6bf6"), got)
	})

	t.Run("inst requires string", func(t *testing.T) {
		_, err := Parse(`#inst 42`)
		assert.Error(t, err)
	})
}

func TestParseUnknownTagsRoundTripAsTagged(t *testing.T) {
	got, err := Parse(`#custom/point [1 2]`)
	assert.NoError(t, err)
	assert.Equal(t, Tagged{Tag: "custom/point", Value: []any{int64(1), int64(2)}}, got)
}

func TestParseTagFunc(t *testing.T) {
	p := &Parser{TagFunc: func(tag string, v any) (any, error) {
		return map[string]any{"tag": tag, "value": v}, nil
	}}
	got, err := p.Parse(`#custom 1`)
	assert.NoError(t, err)
	assert.Equal(t, map[string]any{"tag": "custom", "value": int64(1)}, got)
}

func TestParseCommentsAndDiscard(t *testing.T) {
	got, err := Parse("; a comment\n[1 #_ 2 3] ; trailing")
	assert.NoError(t, err)
	assert.Equal(t, []any{int64(1), int64(3)}, got)
}

func TestParseDiscardBeforeCloser(t *testing.T) {
	got, err := Parse("[1 #_2]")
	assert.NoError(t, err)
	assert.Equal(t, []any{int64(1)}, got)

	m, err := Parse("{:a 1 #_:b}")
	assert.NoError(t, err)
	assert.Equal(t, 1, m.(*emap.Map).Len())
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{name: "empty input", src: ""},
		{name: "unterminated string", src: `"abc`},
		{name: "unterminated vector", src: "[1 2"},
		{name: "unterminated map", src: "{:a 1"},
		{name: "dangling key", src: "{:a}"},
		{name: "duplicate key", src: "{:a 1 :a 2}"},
		{name: "non-keyword key", src: "{[1] 2}"},
		{name: "trailing input", src: "1 2"},
		{name: "bad escape", src: `"\q"`},
		{name: "lone closer", src: "]"},
		{name: "integer overflow", src: "99999999999999999999"},
		{name: "empty keyword", src: ":"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.src)
			assert.Error(t, err)
			var pe *ParseError
			assert.ErrorAs(t, err, &pe)
		})
	}
}

func TestParseDepthLimit(t *testing.T) {
	deep := strings.Repeat("[", MaxDepth) + strings.Repeat("]", MaxDepth)
	_, err := Parse(deep)
	assert.NoError(t, err, "nesting at the limit parses")

	deeper := strings.Repeat("[", MaxDepth+1) + strings.Repeat("]", MaxDepth+1)
	_, err = Parse(deeper)
	var pe *ParseError
	assert.ErrorAs(t, err, &pe, "nesting past the limit is a parse error")
}

func TestParseErrorPosition(t *testing.T) {
	_, err := Parse("{:a 1\n :b}")
	var pe *ParseError
	assert.ErrorAs(t, err, &pe)
	assert.Equal(t, 2, pe.Line)
}

func TestParseAll(t *testing.T) {
	got, err := ParseAll("1 :two \"three\"")
	assert.NoError(t, err)
	assert.Equal(t, []any{int64(1), KW("two"), "three"}, got)
}

func TestScanner(t *testing.T) {
	sc := (&Parser{}).Scanner("1 2 3")
	var got []any
	for {
		v, err := sc.Next()
		if err == io.EOF {
			break
		}
		assert.NoError(t, err)
		got = append(got, v)
	}
	assert.Equal(t, []any{int64(1), int64(2), int64(3)}, got)
}

func TestKeywordInterning(t *testing.T) {
	assert.Equal(t, KW("a"), KW("a"))
	assert.Equal(t, ":demo/album", KW("demo/album").String())
	assert.Equal(t, "demo/album", KW("demo/album").Name())
}
