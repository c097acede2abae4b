package facet

import "errors"

// Failure modes of binding, dispatch and decoding. All are deterministic
// given the same input and are never retried internally; match with
// errors.Is.
var (
	// ErrBinding reports a shape whose declared operations cannot be
	// resolved to key/conversion plans. Surfaced at first use of the
	// shape, not deep in a call chain.
	ErrBinding = errors.New("shape cannot be bound")

	// ErrUnknownOperation reports an operation name the bound shape does
	// not declare.
	ErrUnknownOperation = errors.New("unknown operation")

	// ErrMissingValue reports an absent entry read through a field whose
	// declared type cannot represent absence.
	ErrMissingValue = errors.New("missing value for required field")

	// ErrTypeConversion reports a stored value whose runtime type does
	// not convert to the declared field type. Surfaced at the accessor
	// call that touches the entry.
	ErrTypeConversion = errors.New("value does not convert to declared type")

	// ErrUnknownTag reports a decoded tagged literal with no registered
	// translator or shape. Fatal: dropping tagged data would corrupt
	// round-trip fidelity.
	ErrUnknownTag = errors.New("unknown tag")

	// ErrTagResolution reports a type tag that names no registered
	// shape. Distinct from an absent tag, which simply means untyped.
	ErrTagResolution = errors.New("tag does not resolve to a registered shape")
)
