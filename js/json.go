package js

import (
	"encoding/json"
	"fmt"
	"math"
)

// ParseJSON decodes JSON text into a Value. JSON null, booleans,
// numbers, strings, arrays, and objects map directly onto the matching
// variants; there is no JSON form that produces Undefined, a
// Float32Array, or a Function.
func ParseJSON(text string) (Value, error) {
	var raw any
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return Value{}, fmt.Errorf("js: parse: %w", err)
	}
	return FromGo(raw)
}

// SerializeJSON encodes a Value as JSON text. Float32Array and Function
// have no JSON representation and are rejected, as is any number JSON
// cannot carry (NaN, infinities). Object keys serialize in sorted order.
func SerializeJSON(v Value) (string, error) {
	raw, err := v.ToGo()
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return "", fmt.Errorf("js: serialize: %w", err)
	}
	return string(data), nil
}

// FromGo converts a decoded interface tree (the shapes encoding/json
// and the CBOR codec produce) into a Value.
func FromGo(raw any) (Value, error) {
	switch x := raw.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Boolean(x), nil
	case float64:
		return Number(x), nil
	case int:
		return Number(float64(x)), nil
	case int64:
		return Number(float64(x)), nil
	case uint64:
		return Number(float64(x)), nil
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("js: from go: bad number %q", x.String())
		}
		return Number(f), nil
	case string:
		return String(x), nil
	case []float32:
		return Float32ArrayValue(Float32Array(x)), nil
	case []any:
		a := make(Array, len(x))
		for i, e := range x {
			v, err := FromGo(e)
			if err != nil {
				return Value{}, err
			}
			a[i] = v
		}
		return ArrayValue(a), nil
	case map[string]any:
		o := NewObject()
		for k, e := range x {
			v, err := FromGo(e)
			if err != nil {
				return Value{}, err
			}
			o.Set(k, v)
		}
		return ObjectValue(o), nil
	default:
		return Value{}, fmt.Errorf("js: from go: unsupported type %T", raw)
	}
}

// ToGo converts a Value into the interface tree encoding/json marshals
// from. Undefined, Float32Array, and Function have no serialized form.
func (v Value) ToGo() (any, error) {
	switch v.kind {
	case KindNull:
		return nil, nil
	case KindBoolean:
		return v.b, nil
	case KindNumber:
		if math.IsNaN(v.num) || math.IsInf(v.num, 0) {
			return nil, fmt.Errorf("js: serialize: non-finite number %v", v.num)
		}
		return v.num, nil
	case KindString:
		return v.str, nil
	case KindArray:
		a := *v.arr
		out := make([]any, len(a))
		for i, e := range a {
			raw, err := e.ToGo()
			if err != nil {
				return nil, err
			}
			out[i] = raw
		}
		return out, nil
	case KindObject:
		out := make(map[string]any, v.obj.Len())
		var walkErr error
		v.obj.Each(func(k string, val Value) bool {
			raw, err := val.ToGo()
			if err != nil {
				walkErr = err
				return false
			}
			out[k] = raw
			return true
		})
		if walkErr != nil {
			return nil, walkErr
		}
		return out, nil
	default:
		return nil, fmt.Errorf("js: serialize: %s has no serialized form", v.kind)
	}
}
