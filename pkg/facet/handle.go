package facet

import (
	"fmt"

	"github.com/mesh-intelligence/facet/pkg/emap"
)

// Handle is a read-only façade over exactly one immutable map, bound to
// a shape. Handles are values; they are safe to share and copy. Two
// handles are equal iff their underlying maps are equal, regardless of
// the shapes they are bound to.
type Handle struct {
	shape *Shape
	m     *emap.Map
}

// New returns a handle over an empty map bound to T. If T's shape is
// registered, the map carries its type tag.
func New[T any]() (Handle, error) {
	s, err := Of[T]()
	if err != nil {
		return Handle{}, err
	}
	m := emap.New()
	if tag, ok := registeredTag(s.typ); ok {
		m = WithTag(m, tag)
	}
	return Handle{shape: s, m: m}, nil
}

// Wrap binds an existing map to T. The map's entries and metadata are
// taken as-is; an embedded type tag is left untouched.
func Wrap[T any](m *emap.Map) (Handle, error) {
	s, err := Of[T]()
	if err != nil {
		return Handle{}, err
	}
	return Handle{shape: s, m: m}, nil
}

// HandleOf rehydrates a map through its type tag. The map must carry a
// tag and the tag must resolve to a registered shape.
func HandleOf(m *emap.Map) (Handle, error) {
	tag, ok := TagOf(m)
	if !ok {
		return Handle{}, fmt.Errorf("map carries no type tag: %w", ErrTagResolution)
	}
	s, err := ShapeForTag(tag)
	if err != nil {
		return Handle{}, err
	}
	return Handle{shape: s, m: m}, nil
}

// Map returns the underlying map.
func (h Handle) Map() *emap.Map {
	return h.m
}

// Shape returns the bound shape.
func (h Handle) Shape() *Shape {
	return h.shape
}

// Get reads the entry a declared operation maps to and converts it to
// the operation's declared type. An absent entry reads as nil when the
// declared type can represent absence, as the zero value for an
// ",optional" field, and is ErrMissingValue otherwise. A stored value
// incompatible with the declared type is ErrTypeConversion at this call.
func (h Handle) Get(name string) (any, error) {
	f, ok := h.shape.field(name)
	if !ok {
		return nil, fmt.Errorf("%s has no operation %q: %w", h.shape.name, name, ErrUnknownOperation)
	}
	v, present := h.m.Get(f.key)
	if !present || v == nil {
		if f.optional {
			return zeroOf(f.typ), nil
		}
		if nillable(f.typ) || isShapeType(f.typ) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s.%s (key %v): %w", h.shape.name, name, f.key, ErrMissingValue)
	}
	return toDeclared(v, f.typ)
}

// GetAs is Get with a typed result. Nested shape fields read as Handle.
func GetAs[V any](h Handle, name string) (V, error) {
	var zero V
	v, err := h.Get(name)
	if err != nil {
		return zero, err
	}
	if v == nil {
		return zero, nil
	}
	out, ok := v.(V)
	if !ok {
		return zero, fmt.Errorf("operation %q yields %T, not %T: %w", name, v, zero, ErrTypeConversion)
	}
	return out, nil
}

// With returns a new handle whose map associates the operation's key to
// v, converted to raw stored form (handles unwrap to their maps). The
// receiver and its map are unchanged; all other values are shared.
func (h Handle) With(name string, v any) (Handle, error) {
	f, ok := h.shape.field(name)
	if !ok {
		return Handle{}, fmt.Errorf("%s has no operation %q: %w", h.shape.name, name, ErrUnknownOperation)
	}
	raw, err := toStorable(v)
	if err != nil {
		return Handle{}, err
	}
	if raw != nil {
		if _, err := toDeclared(raw, f.typ); err != nil {
			return Handle{}, err
		}
	}
	return Handle{shape: h.shape, m: h.m.Assoc(f.key, raw)}, nil
}

// Without returns a new handle whose map omits the operation's entry
// altogether. Absence is entry-omission, never a null-valued entry.
func (h Handle) Without(name string) (Handle, error) {
	f, ok := h.shape.field(name)
	if !ok {
		return Handle{}, fmt.Errorf("%s has no operation %q: %w", h.shape.name, name, ErrUnknownOperation)
	}
	return Handle{shape: h.shape, m: h.m.Without(f.key)}, nil
}

// Invoke dispatches an operation by name: a composite operation defined
// with Define runs its body; otherwise the name dispatches to Get.
func (h Handle) Invoke(name string) (any, error) {
	if fn, ok := h.shape.body(name); ok {
		return fn(h)
	}
	return h.Get(name)
}

// Validate reads every declared operation once, returning the first
// missing-value or conversion error. It supplements the default lazy
// validation for callers that want decoded data checked eagerly.
func (h Handle) Validate() error {
	for _, name := range h.shape.order {
		if _, err := h.Get(name); err != nil {
			return err
		}
	}
	return nil
}

// Equal reports whether other is a Handle or *emap.Map with an equal
// underlying map. The bound shape does not participate.
func (h Handle) Equal(other any) bool {
	switch o := other.(type) {
	case Handle:
		return h.m.Equal(o.m)
	case *emap.Map:
		return h.m.Equal(o)
	}
	return false
}

// Hash returns the underlying map's hash.
func (h Handle) Hash() uint64 {
	return h.m.Hash()
}

// String renders the underlying map through the encode path.
func (h Handle) String() string {
	s, err := Marshal(h)
	if err != nil {
		return fmt.Sprintf("#<%s !%v>", h.shape.name, err)
	}
	return s
}
