package js

import (
	"math"
	"strings"
	"testing"
)

func TestParseJSON(t *testing.T) {
	v, err := ParseJSON(`{"type": "meter", "event": {"min": -0.5, "max": 0.5, "active": true, "source": null}}`)
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	if !v.IsObject() {
		t.Fatal("want object")
	}

	typ, _ := v.Object().Get("type")
	if typ.Str() != "meter" {
		t.Errorf("type = %q, want meter", typ.Str())
	}

	evt, _ := v.Object().Get("event")
	if got := GetWithDefault(evt, "max", 0.0); got != 0.5 {
		t.Errorf("max = %v, want 0.5", got)
	}
	if got := GetWithDefault(evt, "active", false); !got {
		t.Error("active = false, want true")
	}
	src, _ := evt.Object().Get("source")
	if !src.IsNull() {
		t.Errorf("source = %v, want null", src)
	}
}

func TestParseJSONArray(t *testing.T) {
	v, err := ParseJSON(`[0, "create", false]`)
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	a := v.Array()
	if len(a) != 3 || a[0].Num() != 0 || a[1].Str() != "create" || a[2].Bool() != false {
		t.Errorf("parsed array = %v", a)
	}
}

func TestParseJSONError(t *testing.T) {
	if _, err := ParseJSON(`{"open":`); err == nil {
		t.Error("malformed JSON should error")
	}
}

func TestSerializeJSON(t *testing.T) {
	o := NewObject()
	o.Set("b", Number(2))
	o.Set("a", ArrayOf(Number(1), String("x"), Null(), Boolean(true)))
	text, err := SerializeJSON(ObjectValue(o))
	if err != nil {
		t.Fatalf("SerializeJSON: %v", err)
	}

	want := `{"a":[1,"x",null,true],"b":2}`
	if text != want {
		t.Errorf("serialized = %s, want %s", text, want)
	}
}

func TestSerializeRejectsNonWireVariants(t *testing.T) {
	cases := map[string]Value{
		"function":     FunctionValue(func(args Array) Value { return Undefined() }),
		"float32array": Float32ArrayValue(Float32Array{1, 2}),
		"undefined":    Undefined(),
		"nan":          Number(math.NaN()),
	}
	for name, v := range cases {
		if _, err := SerializeJSON(v); err == nil {
			t.Errorf("%s: serialize should fail", name)
		}
		// Nested occurrences are rejected too.
		if _, err := SerializeJSON(ArrayOf(Number(1), v)); err == nil {
			t.Errorf("nested %s: serialize should fail", name)
		}
	}
}

func TestJSONRoundTrip(t *testing.T) {
	in := `{"graph":[{"children":[],"kind":"const","props":{"value":110}}]}`
	v, err := ParseJSON(in)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	out, err := SerializeJSON(v)
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	if !strings.Contains(out, `"kind":"const"`) || !strings.Contains(out, `"value":110`) {
		t.Errorf("round trip lost content: %s", out)
	}
}
