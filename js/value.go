package js

// Kind identifies the active variant of a Value.
type Kind uint8

const (
	KindUndefined Kind = iota
	KindNull
	KindBoolean
	KindNumber
	KindString
	KindObject
	KindArray
	KindFloat32Array
	KindFunction
)

// String returns the variant name for diagnostics.
func (k Kind) String() string {
	switch k {
	case KindUndefined:
		return "undefined"
	case KindNull:
		return "null"
	case KindBoolean:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	case KindFloat32Array:
		return "float32array"
	case KindFunction:
		return "function"
	default:
		return "unknown"
	}
}

// Array is an ordered, heterogeneous sequence of Values.
type Array []Value

// Float32Array is a contiguous block of raw 32-bit samples. It is a
// distinct variant from an Array of Numbers so that bulk audio buffers
// cross the engine boundary without per-sample boxing.
type Float32Array []float32

// Function is an opaque host callable. Function values carry no
// equality, no ordering, and no serialized form.
type Function func(args Array) Value

// Value is a tagged union over the JavaScript-style value variants that
// cross the boundary between the control plane and the realtime engine.
// The zero Value is Undefined.
//
// Assigning a Value copies only the tag and the payload pointers; the
// composite storage behind an Object, Array, or Float32Array is shared,
// never duplicated. That makes handing a Value through a lock-free ring
// allocation-free regardless of how deep its contents nest. Use Copy
// when an independent tree is actually wanted.
type Value struct {
	kind Kind
	b    bool
	num  float64
	str  string
	obj  *Object
	arr  *Array
	f32  *Float32Array
	fn   Function
}

// Undefined returns the undefined value. It is also the zero Value.
func Undefined() Value {
	return Value{}
}

// Null returns the null value. Null and Undefined are distinct:
// explicit-null versus absence-of-value.
func Null() Value {
	return Value{kind: KindNull}
}

// Boolean wraps a bool.
func Boolean(b bool) Value {
	return Value{kind: KindBoolean, b: b}
}

// Number wraps a float64. There is no separate integer variant; callers
// needing integral semantics round or truncate explicitly.
func Number(f float64) Value {
	return Value{kind: KindNumber, num: f}
}

// String wraps a string.
func String(s string) Value {
	return Value{kind: KindString, str: s}
}

// ObjectValue wraps an Object. A nil Object is treated as empty.
func ObjectValue(o *Object) Value {
	if o == nil {
		o = NewObject()
	}
	return Value{kind: KindObject, obj: o}
}

// ArrayValue wraps an existing Array without copying its elements.
func ArrayValue(a Array) Value {
	return Value{kind: KindArray, arr: &a}
}

// ArrayOf builds an Array value from its elements.
func ArrayOf(elems ...Value) Value {
	a := make(Array, len(elems))
	copy(a, elems)
	return Value{kind: KindArray, arr: &a}
}

// Float32ArrayValue wraps a raw sample buffer without copying it.
func Float32ArrayValue(f Float32Array) Value {
	return Value{kind: KindFloat32Array, f32: &f}
}

// FunctionValue wraps a host callable.
func FunctionValue(fn Function) Value {
	return Value{kind: KindFunction, fn: fn}
}

// StringsValue builds an Array of String values from a plain string
// slice, preserving order.
func StringsValue(ss []string) Value {
	a := make(Array, len(ss))
	for i, s := range ss {
		a[i] = String(s)
	}
	return Value{kind: KindArray, arr: &a}
}

// Kind returns the active variant tag.
func (v Value) Kind() Kind {
	return v.kind
}

// ---------------------------------------------------------------------------
// Type checks
// ---------------------------------------------------------------------------

// IsUndefined returns true if v is the undefined value.
func (v Value) IsUndefined() bool { return v.kind == KindUndefined }

// IsNull returns true if v is the null value.
func (v Value) IsNull() bool { return v.kind == KindNull }

// IsBool returns true if v holds a boolean.
func (v Value) IsBool() bool { return v.kind == KindBoolean }

// IsNumber returns true if v holds a number.
func (v Value) IsNumber() bool { return v.kind == KindNumber }

// IsString returns true if v holds a string.
func (v Value) IsString() bool { return v.kind == KindString }

// IsObject returns true if v holds an object.
func (v Value) IsObject() bool { return v.kind == KindObject }

// IsArray returns true if v holds an array.
func (v Value) IsArray() bool { return v.kind == KindArray }

// IsFloat32Array returns true if v holds a raw sample buffer.
func (v Value) IsFloat32Array() bool { return v.kind == KindFloat32Array }

// IsFunction returns true if v holds a host callable.
func (v Value) IsFunction() bool { return v.kind == KindFunction }

// ---------------------------------------------------------------------------
// Accessors
//
// Wrong-variant access is a contract violation and panics. This is the
// fail-fast policy everywhere except ToStringSlice and the missing-key
// branch of GetWithDefault, which are the two sanctioned soft-absence
// paths. The split is deliberate and load-bearing for callers.
// ---------------------------------------------------------------------------

// Bool returns the boolean payload.
// Panics if v is not a boolean.
func (v Value) Bool() bool {
	if v.kind != KindBoolean {
		panic("js: Value.Bool: not a boolean")
	}
	return v.b
}

// Num returns the number payload.
// Panics if v is not a number.
func (v Value) Num() float64 {
	if v.kind != KindNumber {
		panic("js: Value.Num: not a number")
	}
	return v.num
}

// Str returns the string payload.
// Panics if v is not a string.
func (v Value) Str() string {
	if v.kind != KindString {
		panic("js: Value.Str: not a string")
	}
	return v.str
}

// Object returns the object payload. The returned Object is the live
// storage, not a copy; mutations are visible through v.
// Panics if v is not an object.
func (v Value) Object() *Object {
	if v.kind != KindObject {
		panic("js: Value.Object: not an object")
	}
	return v.obj
}

// Array returns the array payload as live storage.
// Panics if v is not an array.
func (v Value) Array() Array {
	if v.kind != KindArray {
		panic("js: Value.Array: not an array")
	}
	return *v.arr
}

// Float32Array returns the raw sample payload as live storage.
// Panics if v is not a float32 array.
func (v Value) Float32Array() Float32Array {
	if v.kind != KindFloat32Array {
		panic("js: Value.Float32Array: not a float32 array")
	}
	return *v.f32
}

// Func returns the callable payload.
// Panics if v is not a function.
func (v Value) Func() Function {
	if v.kind != KindFunction {
		panic("js: Value.Func: not a function")
	}
	return v.fn
}

// Call invokes a function value with the given arguments.
// Panics if v is not a function.
func (v Value) Call(args Array) Value {
	return v.Func()(args)
}

// ---------------------------------------------------------------------------
// Object field access with a default
// ---------------------------------------------------------------------------

// GetWithDefault reads an optional object field. A present key returns
// the stored Value; a missing key returns def unchanged. This is the
// soft path for optional configuration fields.
// Panics if v is not an object.
func (v Value) GetWithDefault(key string, def Value) Value {
	o := v.Object()
	if stored, ok := o.Get(key); ok {
		return stored
	}
	return def
}

// Scalar constrains GetWithDefault to the primitive payload types.
type Scalar interface {
	bool | float64 | string
}

// GetWithDefault reads an optional scalar field from an object value.
// A present key converts through the matching fail-fast accessor, so a
// stored value of the wrong variant still panics. A missing key returns
// def unchanged.
// Panics if v is not an object.
func GetWithDefault[T Scalar](v Value, key string, def T) T {
	o := v.Object()
	stored, ok := o.Get(key)
	if !ok {
		return def
	}
	var out any
	switch any(def).(type) {
	case bool:
		out = stored.Bool()
	case float64:
		out = stored.Num()
	case string:
		out = stored.Str()
	}
	return out.(T)
}

// ---------------------------------------------------------------------------
// String-slice bridging
// ---------------------------------------------------------------------------

// ToStringSlice renders each element of an array value through String
// and collects the results in order. A non-array value yields an empty
// slice rather than panicking; this is the documented soft-absence
// exception to the fail-fast accessor policy.
func (v Value) ToStringSlice() []string {
	if v.kind != KindArray {
		return nil
	}
	a := *v.arr
	out := make([]string, len(a))
	for i, e := range a {
		out[i] = e.String()
	}
	return out
}

// ---------------------------------------------------------------------------
// Copy / transfer
// ---------------------------------------------------------------------------

// Copy returns a deep copy: nested objects, arrays, and sample buffers
// get fresh storage. Function payloads are shared; a callable has no
// deeper structure to duplicate.
func (v Value) Copy() Value {
	switch v.kind {
	case KindObject:
		return ObjectValue(v.obj.copy())
	case KindArray:
		a := make(Array, len(*v.arr))
		for i, e := range *v.arr {
			a[i] = e.Copy()
		}
		return Value{kind: KindArray, arr: &a}
	case KindFloat32Array:
		f := make(Float32Array, len(*v.f32))
		copy(f, *v.f32)
		return Value{kind: KindFloat32Array, f32: &f}
	default:
		return v
	}
}

// Take transfers the value out of v, leaving v Undefined. Only the tag
// and payload pointers move; composite storage is rebound, not copied,
// so Take never allocates. This is the transfer primitive the engine
// rings use to relocate values into and out of the realtime context.
func (v *Value) Take() Value {
	out := *v
	*v = Value{}
	return out
}

// Equal reports deep structural equality. Function values are never
// equal to anything, including themselves; callables are opaque.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindUndefined, KindNull:
		return true
	case KindBoolean:
		return a.b == b.b
	case KindNumber:
		return a.num == b.num
	case KindString:
		return a.str == b.str
	case KindObject:
		if a.obj.Len() != b.obj.Len() {
			return false
		}
		eq := true
		a.obj.Each(func(k string, av Value) bool {
			bv, ok := b.obj.Get(k)
			if !ok || !Equal(av, bv) {
				eq = false
				return false
			}
			return true
		})
		return eq
	case KindArray:
		aa, ba := *a.arr, *b.arr
		if len(aa) != len(ba) {
			return false
		}
		for i := range aa {
			if !Equal(aa[i], ba[i]) {
				return false
			}
		}
		return true
	case KindFloat32Array:
		af, bf := *a.f32, *b.f32
		if len(af) != len(bf) {
			return false
		}
		for i := range af {
			if af[i] != bf[i] {
				return false
			}
		}
		return true
	default:
		return false
	}
}
