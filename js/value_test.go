package js

import (
	"math"
	"testing"
)

// ---------------------------------------------------------------------------
// Variant exclusivity
// ---------------------------------------------------------------------------

func TestPredicatesMutuallyExclusive(t *testing.T) {
	values := map[string]Value{
		"undefined":    Undefined(),
		"null":         Null(),
		"boolean":      Boolean(true),
		"number":       Number(1.5),
		"string":       String("hi"),
		"object":       ObjectValue(NewObject()),
		"array":        ArrayOf(Number(1)),
		"float32array": Float32ArrayValue(Float32Array{1, 2}),
		"function":     FunctionValue(func(args Array) Value { return Undefined() }),
	}

	for name, v := range values {
		preds := map[string]bool{
			"undefined":    v.IsUndefined(),
			"null":         v.IsNull(),
			"boolean":      v.IsBool(),
			"number":       v.IsNumber(),
			"string":       v.IsString(),
			"object":       v.IsObject(),
			"array":        v.IsArray(),
			"float32array": v.IsFloat32Array(),
			"function":     v.IsFunction(),
		}
		trueCount := 0
		for pname, ok := range preds {
			if ok {
				trueCount++
				if pname != name {
					t.Errorf("%s: predicate %s = true, want false", name, pname)
				}
			}
		}
		if trueCount != 1 {
			t.Errorf("%s: %d predicates true, want exactly 1", name, trueCount)
		}
	}
}

func TestZeroValueIsUndefined(t *testing.T) {
	var v Value
	if !v.IsUndefined() {
		t.Error("zero Value should be undefined")
	}
	if v.IsNull() {
		t.Error("undefined must not be null")
	}
}

// ---------------------------------------------------------------------------
// Round trips
// ---------------------------------------------------------------------------

func TestScalarRoundTrip(t *testing.T) {
	if got := Boolean(true).Bool(); got != true {
		t.Errorf("Boolean(true).Bool() = %v, want true", got)
	}
	if got := Boolean(false).Bool(); got != false {
		t.Errorf("Boolean(false).Bool() = %v, want false", got)
	}

	for _, f := range []float64{0.0, -1.5, math.MaxFloat64, math.Inf(1)} {
		if got := Number(f).Num(); got != f {
			t.Errorf("Number(%v).Num() = %v, want %v", f, got, f)
		}
	}
	if got := Number(math.NaN()).Num(); !math.IsNaN(got) {
		t.Errorf("Number(NaN).Num() = %v, want NaN", got)
	}

	for _, s := range []string{"", "hello"} {
		if got := String(s).Str(); got != s {
			t.Errorf("String(%q).Str() = %q, want %q", s, got, s)
		}
	}
}

func TestCompositeRoundTrip(t *testing.T) {
	a := ArrayOf(Number(1), String("two"), Null())
	elems := a.Array()
	if len(elems) != 3 {
		t.Fatalf("len = %d, want 3", len(elems))
	}
	if elems[0].Num() != 1 || elems[1].Str() != "two" || !elems[2].IsNull() {
		t.Errorf("array elements did not round trip: %v", elems)
	}

	f := Float32ArrayValue(Float32Array{0.5, -0.5})
	buf := f.Float32Array()
	if len(buf) != 2 || buf[0] != 0.5 || buf[1] != -0.5 {
		t.Errorf("float32 buffer did not round trip: %v", buf)
	}
}

// ---------------------------------------------------------------------------
// Fail-fast accessors
// ---------------------------------------------------------------------------

func mustPanic(t *testing.T, name string, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Errorf("%s: wrong-variant access did not panic", name)
		}
	}()
	fn()
}

func TestWrongVariantAccessPanics(t *testing.T) {
	s := String("not a number")
	n := Number(7)

	mustPanic(t, "Num on string", func() { s.Num() })
	mustPanic(t, "Bool on number", func() { n.Bool() })
	mustPanic(t, "Str on number", func() { n.Str() })
	mustPanic(t, "Object on string", func() { s.Object() })
	mustPanic(t, "Array on string", func() { s.Array() })
	mustPanic(t, "Float32Array on string", func() { s.Float32Array() })
	mustPanic(t, "Func on string", func() { s.Func() })
	mustPanic(t, "GetWithDefault on number", func() { n.GetWithDefault("x", Null()) })
}

// ---------------------------------------------------------------------------
// GetWithDefault
// ---------------------------------------------------------------------------

func TestGetWithDefault(t *testing.T) {
	o := NewObject()
	o.Set("x", Number(42))
	o.Set("name", String("voice"))
	v := ObjectValue(o)

	if got := GetWithDefault(v, "x", 5.0); got != 42.0 {
		t.Errorf("GetWithDefault(x, 5) = %v, want 42", got)
	}
	if got := GetWithDefault(v, "missing", 5.0); got != 5.0 {
		t.Errorf("GetWithDefault(missing, 5) = %v, want 5", got)
	}
	if got := GetWithDefault(v, "name", "fallback"); got != "voice" {
		t.Errorf("GetWithDefault(name) = %q, want voice", got)
	}
	if got := GetWithDefault(v, "loop", true); got != true {
		t.Errorf("GetWithDefault(loop, true) = %v, want true", got)
	}

	// Present key of the wrong variant still fails fast.
	mustPanic(t, "scalar mismatch", func() { GetWithDefault(v, "name", 1.0) })

	def := ArrayOf(String("a"))
	got := v.GetWithDefault("missing", def)
	if !Equal(got, def) {
		t.Errorf("value default not returned unchanged: %v", got)
	}
}

// ---------------------------------------------------------------------------
// String-slice bridging
// ---------------------------------------------------------------------------

func TestStringsValue(t *testing.T) {
	v := StringsValue([]string{"kick", "snare", "hat"})
	if !v.IsArray() {
		t.Fatal("StringsValue should produce an array")
	}
	elems := v.Array()
	want := []string{"kick", "snare", "hat"}
	for i, w := range want {
		if elems[i].Str() != w {
			t.Errorf("elems[%d] = %q, want %q", i, elems[i].Str(), w)
		}
	}
}

func TestToStringSlice(t *testing.T) {
	if got := Number(7).ToStringSlice(); len(got) != 0 {
		t.Errorf("non-array ToStringSlice = %v, want empty", got)
	}

	v := ArrayOf(String("a"), String("b"))
	got := v.ToStringSlice()
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("ToStringSlice = %v, want [a b]", got)
	}

	mixed := ArrayOf(Number(1.5), Null())
	got = mixed.ToStringSlice()
	if len(got) != 2 || got[0] != "1.5" || got[1] != "null" {
		t.Errorf("ToStringSlice on mixed = %v", got)
	}
}

// ---------------------------------------------------------------------------
// Copy / Take
// ---------------------------------------------------------------------------

func TestCopyIsDeep(t *testing.T) {
	inner := NewObject()
	inner.Set("gain", Number(0.5))
	v := ObjectValue(inner)

	c := v.Copy()
	c.Object().Set("gain", Number(1.0))

	if got, _ := v.Object().Get("gain"); got.Num() != 0.5 {
		t.Errorf("copy mutated the original: gain = %v", got)
	}
}

func TestTakeMovesWithoutAllocating(t *testing.T) {
	buf := make(Float32Array, 1<<16)
	elems := make(Array, 0, 1024)
	for i := 0; i < 1024; i++ {
		elems = append(elems, Number(float64(i)))
	}
	src := ArrayOf(ArrayValue(elems), Float32ArrayValue(buf))

	var dst Value
	allocs := testing.AllocsPerRun(100, func() {
		dst = src.Take()
		src = dst.Take()
	})
	if allocs != 0 {
		t.Errorf("Take allocated %v times per run, want 0", allocs)
	}

	moved := src.Take()
	if !src.IsUndefined() {
		t.Error("source should be undefined after Take")
	}
	got := moved.Array()
	if len(got) != 2 || len(got[0].Array()) != 1024 {
		t.Fatalf("moved value lost its contents")
	}
	// The backing storage must be the original one, not a copy.
	if &got[1].Float32Array()[0] != &buf[0] {
		t.Error("Take deep-copied the sample buffer")
	}
}

// ---------------------------------------------------------------------------
// Function values
// ---------------------------------------------------------------------------

func TestFunctionCall(t *testing.T) {
	first := FunctionValue(func(args Array) Value {
		if len(args) == 0 {
			return Undefined()
		}
		return args[0]
	})

	got := first.Call(Array{Number(7)})
	if !got.IsNumber() || got.Num() != 7 {
		t.Errorf("identity call = %v, want 7", got)
	}
}

func TestFunctionNeverEqual(t *testing.T) {
	fn := FunctionValue(func(args Array) Value { return Undefined() })
	if Equal(fn, fn) {
		t.Error("function values must not compare equal, even to themselves")
	}
}

// ---------------------------------------------------------------------------
// Equality
// ---------------------------------------------------------------------------

func TestEqual(t *testing.T) {
	a := ObjectValue(ObjectOf(map[string]Value{
		"b": Number(2),
		"a": ArrayOf(Number(1), String("x")),
	}))
	b := ObjectValue(ObjectOf(map[string]Value{
		"a": ArrayOf(Number(1), String("x")),
		"b": Number(2),
	}))
	if !Equal(a, b) {
		t.Error("structurally equal objects compared unequal")
	}

	if Equal(Undefined(), Null()) {
		t.Error("undefined and null must not be equal")
	}
	if Equal(Number(1), Boolean(true)) {
		t.Error("cross-variant values must not be equal")
	}
}
