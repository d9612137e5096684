package js

import (
	"strconv"
	"strings"
)

// String renders the value for diagnostics and logging. It is not a
// wire format and its exact shape is not stable across versions. It
// never fails: NaN and the infinities render as text like any other
// number.
//
// Containers get a bounded preview: the first three elements joined by
// ", " inside square brackets. Past three elements the preview stops at
// a trailing ellipsis and the bracket is left unclosed.
func (v Value) String() string {
	switch v.kind {
	case KindUndefined:
		return "undefined"
	case KindNull:
		return "null"
	case KindBoolean:
		return strconv.FormatBool(v.b)
	case KindNumber:
		return formatNumber(v.num)
	case KindString:
		return v.str
	case KindArray:
		a := *v.arr
		return renderPreview(len(a), func(i int) string { return a[i].String() })
	case KindFloat32Array:
		f := *v.f32
		return renderPreview(len(f), func(i int) string {
			return strconv.FormatFloat(float64(f[i]), 'g', -1, 32)
		})
	case KindObject:
		var sb strings.Builder
		sb.WriteString("{\n")
		v.obj.Each(func(k string, val Value) bool {
			sb.WriteString("    ")
			sb.WriteString(k)
			sb.WriteString(": ")
			sb.WriteString(val.String())
			sb.WriteByte('\n')
			return true
		})
		sb.WriteString("}\n")
		return sb.String()
	case KindFunction:
		return "[Object Function]"
	default:
		return "undefined"
	}
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func renderPreview(n int, elem func(i int) string) string {
	var sb strings.Builder
	sb.WriteByte('[')
	shown := n
	if shown > 3 {
		shown = 3
	}
	for i := 0; i < shown; i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(elem(i))
	}
	if n > 3 {
		// Truncated previews end at the ellipsis; the bracket stays open.
		sb.WriteString(", ...")
		return sb.String()
	}
	sb.WriteByte(']')
	return sb.String()
}
