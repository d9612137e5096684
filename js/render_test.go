package js

import (
	"math"
	"strings"
	"testing"
)

func TestRenderScalars(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want string
	}{
		{"undefined", Undefined(), "undefined"},
		{"null", Null(), "null"},
		{"true", Boolean(true), "true"},
		{"false", Boolean(false), "false"},
		{"int-valued number", Number(1), "1"},
		{"negative", Number(-1.5), "-1.5"},
		{"empty string", String(""), ""},
		{"string", String("hello"), "hello"},
		{"function", FunctionValue(func(args Array) Value { return Undefined() }), "[Object Function]"},
	}
	for _, tt := range tests {
		if got := tt.v.String(); got != tt.want {
			t.Errorf("%s: String() = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestRenderNeverFailsOnEdgeNumbers(t *testing.T) {
	for _, f := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		got := Number(f).String()
		if got == "" {
			t.Errorf("Number(%v).String() produced empty output", f)
		}
	}
}

func TestRenderArrayPreview(t *testing.T) {
	short := ArrayOf(Number(1), Number(2), Number(3))
	if got := short.String(); got != "[1, 2, 3]" {
		t.Errorf("short array = %q, want [1, 2, 3]", got)
	}

	if got := ArrayOf().String(); got != "[]" {
		t.Errorf("empty array = %q, want []", got)
	}

	long := ArrayOf(Number(1), Number(2), Number(3), Number(4), Number(5))
	got := long.String()
	if !strings.HasPrefix(got, "[1, 2, 3, ...") {
		t.Errorf("long array = %q, want prefix [1, 2, 3, ...", got)
	}
	// The truncated form deliberately leaves the bracket open.
	if strings.HasSuffix(got, "]") {
		t.Errorf("long array = %q, must not be bracket-closed", got)
	}
}

func TestRenderFloat32ArrayPreview(t *testing.T) {
	short := Float32ArrayValue(Float32Array{0.5, 1, 2})
	if got := short.String(); got != "[0.5, 1, 2]" {
		t.Errorf("short buffer = %q, want [0.5, 1, 2]", got)
	}

	long := Float32ArrayValue(make(Float32Array, 512))
	got := long.String()
	if !strings.HasPrefix(got, "[0, 0, 0, ...") || strings.HasSuffix(got, "]") {
		t.Errorf("long buffer = %q, want open-bracket truncated preview", got)
	}
}

func TestRenderObjectSortedKeys(t *testing.T) {
	o := NewObject()
	o.Set("b", Number(2))
	o.Set("a", Number(1))
	got := ObjectValue(o).String()

	want := "{\n    a: 1\n    b: 2\n}\n"
	if got != want {
		t.Errorf("object = %q, want %q", got, want)
	}
	if strings.Index(got, "a:") > strings.Index(got, "b:") {
		t.Error("keys must render in sorted order regardless of insertion order")
	}
}

func TestRenderNested(t *testing.T) {
	o := NewObject()
	o.Set("type", String("meter"))
	o.Set("values", ArrayOf(Number(0.1), Number(0.2)))
	got := ObjectValue(o).String()

	if !strings.Contains(got, "type: meter") {
		t.Errorf("nested render missing scalar line: %q", got)
	}
	if !strings.Contains(got, "values: [0.1, 0.2]") {
		t.Errorf("nested render missing array line: %q", got)
	}
}
