package facet

import (
	"fmt"
	"math"
	"math/big"
	"reflect"
	"time"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/facet/pkg/edn"
	"github.com/mesh-intelligence/facet/pkg/emap"
)

func conversionError(v any, t reflect.Type) error {
	return fmt.Errorf("stored %T where %s declared: %w", v, t, ErrTypeConversion)
}

// toDeclared converts a raw stored value to a declared field type.
// Scalars pass through with numeric widening/narrowing; a stored map
// wraps as a Handle when the declared type is itself a shape, resolved
// structurally rather than from the map's tag; collections convert
// element-wise by the same rule.
func toDeclared(v any, t reflect.Type) (any, error) {
	if t == anyType {
		return v, nil
	}
	switch t {
	case mapType, timeType, uuidType, keywordType, symbolType, charType,
		setType, bigIntType, bigFloatType:
		if reflect.TypeOf(v) != t {
			return nil, conversionError(v, t)
		}
		return v, nil
	}
	if isShapeType(t) {
		m, ok := v.(*emap.Map)
		if !ok {
			return nil, conversionError(v, t)
		}
		st := t
		if st.Kind() == reflect.Pointer {
			st = st.Elem()
		}
		sh, err := shapeOf(st)
		if err != nil {
			return nil, err
		}
		return Handle{shape: sh, m: m}, nil
	}
	switch t.Kind() {
	case reflect.Bool:
		b, ok := v.(bool)
		if !ok {
			return nil, conversionError(v, t)
		}
		return b, nil
	case reflect.String:
		s, ok := v.(string)
		if !ok {
			return nil, conversionError(v, t)
		}
		if t == reflect.TypeOf("") {
			return s, nil
		}
		return reflect.ValueOf(s).Convert(t).Interface(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, ok := v.(int64)
		if !ok {
			return nil, conversionError(v, t)
		}
		if reflect.Zero(t).OverflowInt(n) {
			return nil, fmt.Errorf("stored %d overflows %s: %w", n, t, ErrTypeConversion)
		}
		return reflect.ValueOf(n).Convert(t).Interface(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, ok := v.(int64)
		if !ok {
			return nil, conversionError(v, t)
		}
		if n < 0 || reflect.Zero(t).OverflowUint(uint64(n)) {
			return nil, fmt.Errorf("stored %d overflows %s: %w", n, t, ErrTypeConversion)
		}
		return reflect.ValueOf(n).Convert(t).Interface(), nil
	case reflect.Float32, reflect.Float64:
		switch n := v.(type) {
		case float64:
			return reflect.ValueOf(n).Convert(t).Interface(), nil
		case int64:
			return reflect.ValueOf(float64(n)).Convert(t).Interface(), nil
		}
		return nil, conversionError(v, t)
	case reflect.Slice:
		elems, ok := v.([]any)
		if !ok {
			return nil, conversionError(v, t)
		}
		if isShapeType(t.Elem()) {
			out := make([]Handle, len(elems))
			for i, e := range elems {
				c, err := toDeclared(e, t.Elem())
				if err != nil {
					return nil, err
				}
				out[i] = c.(Handle)
			}
			return out, nil
		}
		out := reflect.MakeSlice(t, len(elems), len(elems))
		for i, e := range elems {
			c, err := toDeclared(e, t.Elem())
			if err != nil {
				return nil, err
			}
			out.Index(i).Set(reflect.ValueOf(c))
		}
		return out.Interface(), nil
	}
	return nil, conversionError(v, t)
}

// toStorable converts an argument to its raw stored form, the inverse of
// toDeclared: handles unwrap to their maps, numerics normalize to int64
// and float64, typed slices flatten to []any. Values of unknown types
// pass through untouched so translator-registered types can live in maps
// directly.
func toStorable(v any) (any, error) {
	switch tv := v.(type) {
	case nil:
		return nil, nil
	case Handle:
		// A zero handle carries no map; store plain absence.
		if tv.m == nil {
			return nil, nil
		}
		return tv.m, nil
	case *emap.Map:
		if tv == nil {
			return nil, nil
		}
		return tv, nil
	case string, bool, int64, float64:
		return tv, nil
	case []any:
		out := make([]any, len(tv))
		for i, e := range tv {
			s, err := toStorable(e)
			if err != nil {
				return nil, err
			}
			out[i] = s
		}
		return out, nil
	case edn.Keyword, edn.Symbol, edn.Char, *edn.Set:
		return tv, nil
	case time.Time, uuid.UUID, *big.Int, *big.Float:
		return tv, nil
	}
	// Translator-registered types store raw, whatever their kind.
	if _, ok := encoderFor(reflect.TypeOf(v)); ok {
		return v, nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return nil, fmt.Errorf("%d does not fit a 64-bit integer: %w", u, ErrTypeConversion)
		}
		return int64(u), nil
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	case reflect.Slice:
		out := make([]any, rv.Len())
		for i := range out {
			s, err := toStorable(rv.Index(i).Interface())
			if err != nil {
				return nil, err
			}
			out[i] = s
		}
		return out, nil
	}
	return v, nil
}

// zeroOf returns the zero value of a declared type as an interface, the
// value an optional field reads as when its entry is absent.
func zeroOf(t reflect.Type) any {
	if t == anyType {
		return nil
	}
	switch t.Kind() {
	case reflect.Pointer, reflect.Slice, reflect.Interface, reflect.Map:
		return nil
	}
	if isShapeType(t) {
		return nil
	}
	return reflect.Zero(t).Interface()
}

// nillable reports whether a declared type can represent absence.
func nillable(t reflect.Type) bool {
	if t == anyType {
		return true
	}
	switch t.Kind() {
	case reflect.Pointer, reflect.Slice, reflect.Interface, reflect.Map:
		return true
	}
	return false
}
