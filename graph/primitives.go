package graph

import "github.com/cristianvogel/elementary/js"

// Constructors for the standard node kinds the engine ships with.

// Root marks a signal as an output, routed to the given channel.
func Root(channel int, x *Node) *Node {
	props := js.NewObject()
	props.Set("channel", js.Number(float64(channel)))
	return New("root", props, x)
}

// Const emits a constant signal. A non-empty key names the node so
// later renders can update the value in place without remounting.
func Const(key string, value float64) *Node {
	props := js.NewObject()
	if key != "" {
		props.Set("key", js.String(key))
	} else {
		props.Set("key", js.Null())
	}
	props.Set("value", js.Number(value))
	return New("const", props)
}

// Phasor ramps from 0 to 1 at the rate given by its input, in Hz.
func Phasor(rate *Node) *Node {
	return New("phasor", nil, rate)
}

// Sin computes sin(x) per sample.
func Sin(x *Node) *Node {
	return New("sin", nil, x)
}

// Mul multiplies its inputs sample-wise.
func Mul(xs ...*Node) *Node {
	return New("mul", nil, xs...)
}

// Add sums its inputs sample-wise.
func Add(xs ...*Node) *Node {
	return New("add", nil, xs...)
}

// Gain scales x by the gain signal.
func Gain(gain, x *Node) *Node {
	return New("gain", nil, gain, x)
}

// Meter passes x through unchanged and reports min/max per block as
// engine events tagged with the given name.
func Meter(name string, x *Node) *Node {
	props := js.NewObject()
	props.Set("name", js.String(name))
	return New("meter", props, x)
}

// Table reads a named shared resource at the position given by its
// input, where 0 is the first frame and 1 the last, with linear
// interpolation between frames.
func Table(resource string, position *Node) *Node {
	props := js.NewObject()
	props.Set("name", js.String(resource))
	return New("table", props, position)
}

// Cycle is the sine-oscillator convenience: sin(2*pi*phasor(freq)).
func Cycle(freq *Node) *Node {
	return Sin(Mul(Const("", 2*3.141592653589793), Phasor(freq)))
}
