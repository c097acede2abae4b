package facet

import (
	"fmt"
	"math/big"
	"reflect"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/mesh-intelligence/facet/pkg/edn"
	"github.com/mesh-intelligence/facet/pkg/emap"
)

// fieldPlan is the resolved dispatch plan for one declared operation:
// the entry key it maps to and the declared type to convert through.
// Built once at bind time and reused for every call.
type fieldPlan struct {
	name     string
	key      edn.Keyword
	typ      reflect.Type
	optional bool
}

// BodyFunc is a user-defined composite operation: an operation with a
// provided body rather than a direct map mapping. The body may invoke
// other operations on the handle it receives.
type BodyFunc func(Handle) (any, error)

// Shape is a bound set of named operations over a map. A shape is built
// from a struct type on first use and memoized process-wide; shapes are
// immutable after binding except for Define, which is guarded.
type Shape struct {
	name   string
	typ    reflect.Type
	fields map[string]*fieldPlan
	order  []string

	mu     sync.RWMutex
	bodies map[string]BodyFunc
}

// Name returns the shape's canonical name, which is also its default
// encoding tag.
func (s *Shape) Name() string {
	return s.name
}

// Type returns the struct type the shape was declared from.
func (s *Shape) Type() reflect.Type {
	return s.typ
}

// Operations returns the declared operation names in field order.
func (s *Shape) Operations() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

func (s *Shape) field(name string) (*fieldPlan, bool) {
	f, ok := s.fields[name]
	return f, ok
}

func (s *Shape) body(name string) (BodyFunc, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn, ok := s.bodies[name]
	return fn, ok
}

// bindResult memoizes a successful bind or the binding error, so a
// malformed shape is rejected the same way on every use.
type bindResult struct {
	shape *Shape
	err   error
}

var shapeCache sync.Map // reflect.Type -> bindResult

// Of binds T as a shape. Binding happens once per type, lazily, and is
// memoized process-wide; concurrent first binds are safe. A struct field
// of a type no conversion plan exists for is ErrBinding.
func Of[T any]() (*Shape, error) {
	return shapeOf(reflect.TypeOf((*T)(nil)).Elem())
}

func shapeOf(t reflect.Type) (*Shape, error) {
	if r, ok := shapeCache.Load(t); ok {
		res := r.(bindResult)
		return res.shape, res.err
	}
	s, err := bind(t)
	r, _ := shapeCache.LoadOrStore(t, bindResult{shape: s, err: err})
	res := r.(bindResult)
	return res.shape, res.err
}

func bind(t reflect.Type) (*Shape, error) {
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%s is not a struct type: %w", t, ErrBinding)
	}
	s := &Shape{
		name:   t.String(),
		typ:    t,
		fields: make(map[string]*fieldPlan),
		bodies: make(map[string]BodyFunc),
	}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() || f.Anonymous {
			continue
		}
		keyName, optional, skip, err := parseFieldTag(f)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %v: %w", t, f.Name, err, ErrBinding)
		}
		if skip {
			continue
		}
		if keyName == "" {
			keyName = keywordize(f.Name)
		}
		if err := checkFieldType(f.Type); err != nil {
			return nil, fmt.Errorf("%s.%s: %v: %w", t, f.Name, err, ErrBinding)
		}
		s.fields[f.Name] = &fieldPlan{
			name:     f.Name,
			key:      edn.KW(keyName),
			typ:      f.Type,
			optional: optional,
		}
		s.order = append(s.order, f.Name)
	}
	return s, nil
}

// parseFieldTag reads the `edn` struct tag: the key-name override
// (verbatim, leading ':' accepted) and the "optional" option.
func parseFieldTag(f reflect.StructField) (keyName string, optional, skip bool, err error) {
	tag, ok := f.Tag.Lookup("edn")
	if !ok {
		return "", false, false, nil
	}
	parts := strings.Split(tag, ",")
	keyName = strings.TrimPrefix(parts[0], ":")
	if keyName == "-" {
		return "", false, true, nil
	}
	for _, opt := range parts[1:] {
		switch opt {
		case "optional":
			optional = true
		case "":
		default:
			return "", false, false, fmt.Errorf("unknown tag option %q", opt)
		}
	}
	return keyName, optional, false, nil
}

// keywordize converts an exported field name to its default keyword
// name: case boundaries join with '-', everything lowers. A run of
// capitals reads as one word ("HTTPPort" -> "http-port").
func keywordize(name string) string {
	var b strings.Builder
	runes := []rune(name)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			startsWord := i > 0 &&
				(!unicode.IsUpper(runes[i-1]) ||
					(i+1 < len(runes) && unicode.IsLower(runes[i+1])))
			if startsWord {
				b.WriteByte('-')
			}
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Well-known declared types.
var (
	anyType      = reflect.TypeOf((*any)(nil)).Elem()
	mapType      = reflect.TypeOf((*emap.Map)(nil))
	timeType     = reflect.TypeOf(time.Time{})
	uuidType     = reflect.TypeOf(uuid.UUID{})
	bigIntType   = reflect.TypeOf((*big.Int)(nil))
	bigFloatType = reflect.TypeOf((*big.Float)(nil))
	keywordType  = reflect.TypeOf(edn.Keyword{})
	symbolType   = reflect.TypeOf(edn.Symbol(""))
	charType     = reflect.TypeOf(edn.Char(0))
	setType      = reflect.TypeOf((*edn.Set)(nil))
	handleType   = reflect.TypeOf(Handle{})
)

// checkFieldType reports whether a conversion plan exists for a declared
// field type. Shape-typed fields (structs and struct pointers) resolve
// lazily on first traversal, so a shape may reference itself.
func checkFieldType(t reflect.Type) error {
	switch t {
	case anyType, mapType, bigIntType, bigFloatType,
		timeType, uuidType, keywordType, symbolType, charType, setType:
		return nil
	case handleType:
		return fmt.Errorf("declare the nested struct type, not facet.Handle")
	}
	switch t.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return nil
	case reflect.Struct:
		return nil // nested shape, bound lazily
	case reflect.Pointer:
		if t.Elem().Kind() == reflect.Struct {
			return nil // nested shape, bound lazily
		}
		return fmt.Errorf("unsupported pointer type %s", t)
	case reflect.Slice:
		return checkFieldType(t.Elem())
	default:
		return fmt.Errorf("unsupported field type %s", t)
	}
}

// isShapeType reports whether a declared type resolves to a shape.
func isShapeType(t reflect.Type) bool {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return false
	}
	switch t {
	case timeType, uuidType, keywordType, bigIntType.Elem(), bigFloatType.Elem():
		return false
	}
	return true
}

// Define attaches a composite operation to T's shape. The body is
// invoked by Handle.Invoke and may call other operations on the handle
// it receives. Defining an operation that shadows a declared field
// replaces the field dispatch for Invoke; Get still reads the field.
func Define[T any](name string, fn BodyFunc) error {
	s, err := Of[T]()
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bodies[name] = fn
	return nil
}
