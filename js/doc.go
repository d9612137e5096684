// Package js implements the dynamically-typed value model shared by the
// control plane and the realtime audio engine.
//
// Value is a closed tagged union over Undefined, Null, Boolean, Number,
// String, Object, Array, Float32Array, and Function. Exactly one variant
// is active at a time. Typed accessors are fail-fast: reading the wrong
// variant is a programmer error and panics. Two operations are
// deliberately soft instead: ToStringSlice on a non-array yields an
// empty slice, and GetWithDefault on a missing key yields the caller's
// default. That split is part of the contract, not an accident.
//
// Values transfer across the producer/consumer boundary by moving, not
// copying: Take rebinds composite storage and leaves the source
// Undefined without allocating, which is what makes the handoff into
// the realtime context safe.
package js
