// Package facet lets declared Go struct types stand in for immutable,
// keyword-keyed maps. A Handle is a read-only façade over one map, bound
// to a shape derived from a struct type: reading a field looks the entry
// up and converts it to the declared type, and With returns a new Handle
// over a copy-on-write association, leaving the receiver untouched.
//
// Maps round-trip through an EDN-style textual notation. A map can carry
// an out-of-band type tag naming the shape it should rehydrate as, and a
// translator registry embeds arbitrary external value types in the
// notation under custom tags.
package facet

// Version is the facet library version.
const Version = "v0.3.0"
