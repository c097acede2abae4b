package facet

import (
	"fmt"
	"io"
	"reflect"

	"github.com/mesh-intelligence/facet/pkg/edn"
	"github.com/mesh-intelligence/facet/pkg/emap"
)

// Marshal serializes a handle, map or any notation value to text.
// Handles unwrap to their underlying map; a map carrying a type tag
// prints as a tag-prefixed map literal; a value whose type has a
// registered translator prints under the translator's tag. Output is
// deterministic given equal input: entries print in insertion order.
func Marshal(v any) (string, error) {
	return printer().Print(v)
}

// MarshalTo writes Marshal's output to w.
func MarshalTo(w io.Writer, v any) error {
	return printer().Fprint(w, v)
}

func printer() *edn.Printer {
	return &edn.Printer{
		Rewrite: func(v any) (any, bool) {
			if h, ok := v.(Handle); ok {
				return h.m, true
			}
			return nil, false
		},
		MapTag: TagOf,
		Ext: func(v any) (string, any, bool, error) {
			tr, ok := encoderFor(reflect.TypeOf(v))
			if !ok {
				return "", nil, false, nil
			}
			pv, err := tr.encode(v)
			if err != nil {
				return "", nil, true, fmt.Errorf("encode #%s: %w", tr.tag, err)
			}
			return tr.tag, pv, true, nil
		},
	}
}

// decodeTag resolves a non-built-in tagged literal during decoding:
// translator tags decode through the registry, shape tags attach as map
// metadata, anything else is fatal.
func decodeTag(tag string, v any) (any, error) {
	if tr, ok := decoderFor(tag); ok {
		dv, err := tr.decode(v)
		if err != nil {
			return nil, fmt.Errorf("decode #%s: %w", tag, err)
		}
		return dv, nil
	}
	if _, ok := shapeForTag(tag); ok {
		m, isMap := v.(*emap.Map)
		if !isMap {
			return nil, fmt.Errorf("#%s on non-map value %T: %w", tag, v, ErrTypeConversion)
		}
		return WithTag(m, tag), nil
	}
	return nil, fmt.Errorf("#%s: %w", tag, ErrUnknownTag)
}

func parser() *edn.Parser {
	return &edn.Parser{TagFunc: decodeTag}
}

// Unmarshal parses one value from text. A root map carrying a resolvable
// type tag comes back as a Handle bound to that shape; every other value
// comes back as the generic tree. Malformed text is a *edn.ParseError
// with no partial result; an unknown tag anywhere is ErrUnknownTag.
func Unmarshal(text string) (any, error) {
	v, err := parser().Parse(text)
	if err != nil {
		return nil, err
	}
	return rehydrateRoot(v)
}

// UnmarshalAs parses one value from text, which must be a map literal,
// and binds it to T. An embedded type tag always wins over the explicit
// shape, so nested polymorphic values round-trip with their own tags.
func UnmarshalAs[T any](text string) (Handle, error) {
	v, err := parser().Parse(text)
	if err != nil {
		return Handle{}, err
	}
	m, ok := v.(*emap.Map)
	if !ok {
		return Handle{}, fmt.Errorf("decoded %T, not a map: %w", v, ErrTypeConversion)
	}
	if _, tagged := TagOf(m); tagged {
		return HandleOf(m)
	}
	return Wrap[T](m)
}

// rehydrateRoot materializes a typed handle for a tagged root map.
func rehydrateRoot(v any) (any, error) {
	if m, ok := v.(*emap.Map); ok {
		if _, tagged := TagOf(m); tagged {
			return HandleOf(m)
		}
	}
	return v, nil
}

// Decoder reads a stream of top-level values. Tagged root maps
// materialize as handles, like Unmarshal.
type Decoder struct {
	sc  *edn.Scanner
	err error
}

// NewDecoder reads all of r and returns a decoder over its values.
func NewDecoder(r io.Reader) *Decoder {
	src, err := io.ReadAll(r)
	if err != nil {
		return &Decoder{err: fmt.Errorf("read input: %w", err)}
	}
	return &Decoder{sc: parser().Scanner(string(src))}
}

// Next returns the next value, or io.EOF when the stream is exhausted.
func (d *Decoder) Next() (any, error) {
	if d.err != nil {
		return nil, d.err
	}
	v, err := d.sc.Next()
	if err != nil {
		return nil, err
	}
	return rehydrateRoot(v)
}
