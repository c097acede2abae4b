package facet

import (
	"fmt"
	"sync"

	"github.com/mesh-intelligence/facet/pkg/edn"
	"github.com/mesh-intelligence/facet/pkg/emap"
)

// tagMetaKey is the metadata key the type tag lives under. Metadata is a
// side channel: tagging never adds, removes or changes map entries.
const tagMetaKey = "facet/tag"

// tagValues caches the keyword stored for each tag name, so repeated
// tagging with the same shape does not re-allocate the tag value.
var tagValues sync.Map // string -> edn.Keyword

func tagValue(name string) edn.Keyword {
	if v, ok := tagValues.Load(name); ok {
		return v.(edn.Keyword)
	}
	v, _ := tagValues.LoadOrStore(name, edn.KW(name))
	return v.(edn.Keyword)
}

// TagOf returns the type tag attached to m, if any. Absence means the
// map is untyped and is not an error.
func TagOf(m *emap.Map) (string, bool) {
	v, ok := m.Meta(tagMetaKey)
	if !ok {
		return "", false
	}
	kw, ok := v.(edn.Keyword)
	if !ok {
		return "", false
	}
	return kw.Name(), true
}

// WithTag returns a new map whose type tag is name. Entries and all
// other metadata are preserved; only the tag is replaced. Tagging is
// idempotent.
func WithTag(m *emap.Map, name string) *emap.Map {
	return m.WithMeta(tagMetaKey, tagValue(name))
}

// ShapeForTag resolves a tag string to its registered shape. A tag that
// resolves to nothing is ErrTagResolution: it indicates a decode-time
// registration problem, not a missing tag.
func ShapeForTag(tag string) (*Shape, error) {
	if s, ok := shapeForTag(tag); ok {
		return s, nil
	}
	return nil, fmt.Errorf("tag %q: %w", tag, ErrTagResolution)
}
