package facet

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mesh-intelligence/facet/pkg/edn"
)

type album struct {
	ArtistName string
	Year       int64
	Tracks     []string
	Label      string `edn:"record-label"`
	Notes      string `edn:"-"`
	PlayCount  int64  `edn:",optional"`
}

type badShape struct {
	Progress chan int
}

type listNode struct {
	Value int64 `edn:",optional"`
	Next  *listNode
}

func TestKeywordize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "Name", want: "name"},
		{in: "ArtistName", want: "artist-name"},
		{in: "PlayCount", want: "play-count"},
		{in: "ID", want: "id"},
		{in: "HTTPPort", want: "http-port"},
		{in: "TrackID", want: "track-id"},
		{in: "A", want: "a"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, keywordize(tt.in))
		})
	}
}

func TestShapeBinding(t *testing.T) {
	s, err := Of[album]()
	assert.NoError(t, err)
	assert.Equal(t, "facet.album", s.Name())
	assert.Equal(t, []string{"ArtistName", "Year", "Tracks", "Label", "PlayCount"}, s.Operations())

	f, ok := s.field("ArtistName")
	assert.True(t, ok)
	assert.Equal(t, edn.KW("artist-name"), f.key)
	assert.False(t, f.optional)

	f, ok = s.field("Label")
	assert.True(t, ok)
	assert.Equal(t, edn.KW("record-label"), f.key, "tag override is honored verbatim")

	f, ok = s.field("PlayCount")
	assert.True(t, ok)
	assert.True(t, f.optional)

	_, ok = s.field("Notes")
	assert.False(t, ok, "edn:\"-\" excludes the field")
}

func TestShapeBindingMemoized(t *testing.T) {
	a, err := Of[album]()
	assert.NoError(t, err)
	b, err := Of[album]()
	assert.NoError(t, err)
	assert.Same(t, a, b, "binding happens once per shape")
}

func TestShapeBindingRejectsMalformedShapes(t *testing.T) {
	_, err := Of[badShape]()
	assert.ErrorIs(t, err, ErrBinding)

	// The same binding error is reported on every use.
	_, err = New[badShape]()
	assert.ErrorIs(t, err, ErrBinding)
}

func TestShapeBindingNotAStruct(t *testing.T) {
	_, err := Of[int]()
	assert.ErrorIs(t, err, ErrBinding)
}

func TestSelfReferentialShapeBinds(t *testing.T) {
	s, err := Of[listNode]()
	assert.NoError(t, err)
	assert.Equal(t, []string{"Value", "Next"}, s.Operations())
}

func TestShapeTagOverrideWithColon(t *testing.T) {
	type colonKey struct {
		Title string `edn:":the-title"`
	}
	s, err := Of[colonKey]()
	assert.NoError(t, err)
	f, _ := s.field("Title")
	assert.Equal(t, edn.KW("the-title"), f.key, "a leading colon is accepted and stripped")
}

func TestShapeUnknownTagOption(t *testing.T) {
	type badOption struct {
		X int64 `edn:",frobnicate"`
	}
	_, err := Of[badOption]()
	assert.ErrorIs(t, err, ErrBinding)
}
