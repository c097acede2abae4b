package facet

import (
	"fmt"
	"reflect"
	"sync"
)

// translator is one registered (type, tag, encode, decode) association.
// Both directions register together; the codec looks encoders up by type
// identity and decoders by tag string.
type translator struct {
	typ    reflect.Type
	tag    string
	encode func(any) (any, error)
	decode func(any) (any, error)
}

// registry is the process-wide table of translators and shape tags.
// Registration is serialized; lookups of settled entries never block on
// new registrations beyond the brief read lock.
type registry struct {
	mu          sync.RWMutex
	encoders    map[reflect.Type]*translator
	decoders    map[string]*translator
	shapesByTag map[string]*Shape
	tagsByType  map[reflect.Type]string
}

var reg = &registry{
	encoders:    make(map[reflect.Type]*translator),
	decoders:    make(map[string]*translator),
	shapesByTag: make(map[string]*Shape),
	tagsByType:  make(map[reflect.Type]string),
}

// RegisterTranslator registers an encode/decode pair for T under tag,
// embedding T values in the notation as "#tag <encoded form>".
// Re-registering the same type or tag replaces the prior entry; last
// write wins. Registrations persist for the process lifetime.
func RegisterTranslator[T any](tag string, encode func(T) (any, error), decode func(any) (T, error)) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	tr := &translator{
		typ: t,
		tag: tag,
		encode: func(v any) (any, error) {
			return encode(v.(T))
		},
		decode: func(v any) (any, error) {
			return decode(v)
		},
	}
	reg.mu.Lock()
	defer reg.mu.Unlock()
	reg.encoders[t] = tr
	reg.decoders[tag] = tr
}

// Register binds T and registers its shape under the default tag, the
// type's canonical "package.Type" name. Registration is what makes a tag
// resolvable at decode time; an unregistered shape still works locally
// but encodes as an untagged map.
func Register[T any]() error {
	s, err := Of[T]()
	if err != nil {
		return err
	}
	registerShape(s, s.name)
	return nil
}

// RegisterNamed is Register with an explicit tag replacing the default.
func RegisterNamed[T any](tag string) error {
	if tag == "" {
		return fmt.Errorf("empty shape tag: %w", ErrBinding)
	}
	s, err := Of[T]()
	if err != nil {
		return err
	}
	registerShape(s, tag)
	return nil
}

func registerShape(s *Shape, tag string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	reg.shapesByTag[tag] = s
	reg.tagsByType[s.typ] = tag
}

func encoderFor(t reflect.Type) (*translator, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	tr, ok := reg.encoders[t]
	return tr, ok
}

func decoderFor(tag string) (*translator, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	tr, ok := reg.decoders[tag]
	return tr, ok
}

func shapeForTag(tag string) (*Shape, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	s, ok := reg.shapesByTag[tag]
	return s, ok
}

// registeredTag returns the encoding tag for a shape's type, if its
// shape has been registered.
func registeredTag(t reflect.Type) (string, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	tag, ok := reg.tagsByType[t]
	return tag, ok
}
