package engine

import (
	"fmt"
	"math"

	"github.com/cristianvogel/elementary/js"
)

// processor is one node kind's per-block render behavior. setProp runs
// on the realtime thread when a setProperty instruction applies;
// process runs once per block with one input slice per appended child.
type processor interface {
	setProp(name string, v js.Value) error
	process(rt *Runtime, inputs [][]float32, out []float32)
}

// processorFactory builds a fresh processor for a created node.
type processorFactory func() processor

var builtinKinds = map[string]processorFactory{
	"root":   func() processor { return &rootProc{} },
	"const":  func() processor { return &constProc{} },
	"phasor": func() processor { return &phasorProc{} },
	"sin":    func() processor { return &sinProc{} },
	"mul":    func() processor { return &mulProc{} },
	"add":    func() processor { return &addProc{} },
	"gain":   func() processor { return &gainProc{} },
	"meter":  func() processor { return &meterProc{} },
	"table":  func() processor { return &tableProc{} },
}

func errUnknownProp(kind, name string) error {
	return fmt.Errorf("engine: %s has no property %q", kind, name)
}

// ---------------------------------------------------------------------------
// root
// ---------------------------------------------------------------------------

type rootProc struct {
	channel int
}

func (p *rootProc) setProp(name string, v js.Value) error {
	if name != "channel" {
		return errUnknownProp("root", name)
	}
	if !v.IsNumber() {
		return fmt.Errorf("engine: root channel is %s, want number", v.Kind())
	}
	p.channel = int(v.Num())
	return nil
}

func (p *rootProc) process(rt *Runtime, inputs [][]float32, out []float32) {
	if len(inputs) == 0 {
		clear(out)
		return
	}
	copy(out, inputs[0])
}

// ---------------------------------------------------------------------------
// const
// ---------------------------------------------------------------------------

type constProc struct {
	value float32
}

func (p *constProc) setProp(name string, v js.Value) error {
	switch name {
	case "value":
		if !v.IsNumber() {
			return fmt.Errorf("engine: const value is %s, want number", v.Kind())
		}
		p.value = float32(v.Num())
		return nil
	case "key":
		// Naming only; reconciliation identity, no audible effect.
		return nil
	default:
		return errUnknownProp("const", name)
	}
}

func (p *constProc) process(rt *Runtime, inputs [][]float32, out []float32) {
	for i := range out {
		out[i] = p.value
	}
}

// ---------------------------------------------------------------------------
// phasor
// ---------------------------------------------------------------------------

type phasorProc struct {
	phase float64
}

func (p *phasorProc) setProp(name string, v js.Value) error {
	return errUnknownProp("phasor", name)
}

func (p *phasorProc) process(rt *Runtime, inputs [][]float32, out []float32) {
	if len(inputs) == 0 {
		clear(out)
		return
	}
	rate := inputs[0]
	step := 1.0 / rt.sampleRate
	for i := range out {
		out[i] = float32(p.phase)
		p.phase += float64(rate[i]) * step
		p.phase -= math.Floor(p.phase)
	}
}

// ---------------------------------------------------------------------------
// sin / mul / add / gain
// ---------------------------------------------------------------------------

type sinProc struct{}

func (sinProc) setProp(name string, v js.Value) error {
	return errUnknownProp("sin", name)
}

func (sinProc) process(rt *Runtime, inputs [][]float32, out []float32) {
	if len(inputs) == 0 {
		clear(out)
		return
	}
	x := inputs[0]
	for i := range out {
		out[i] = float32(math.Sin(float64(x[i])))
	}
}

type mulProc struct{}

func (mulProc) setProp(name string, v js.Value) error {
	return errUnknownProp("mul", name)
}

func (mulProc) process(rt *Runtime, inputs [][]float32, out []float32) {
	if len(inputs) == 0 {
		clear(out)
		return
	}
	copy(out, inputs[0])
	for _, in := range inputs[1:] {
		for i := range out {
			out[i] *= in[i]
		}
	}
}

type addProc struct{}

func (addProc) setProp(name string, v js.Value) error {
	return errUnknownProp("add", name)
}

func (addProc) process(rt *Runtime, inputs [][]float32, out []float32) {
	clear(out)
	for _, in := range inputs {
		for i := range out {
			out[i] += in[i]
		}
	}
}

type gainProc struct{}

func (gainProc) setProp(name string, v js.Value) error {
	return errUnknownProp("gain", name)
}

func (gainProc) process(rt *Runtime, inputs [][]float32, out []float32) {
	if len(inputs) < 2 {
		clear(out)
		return
	}
	g, x := inputs[0], inputs[1]
	for i := range out {
		out[i] = g[i] * x[i]
	}
}

// ---------------------------------------------------------------------------
// meter
// ---------------------------------------------------------------------------

type meterProc struct {
	name string
}

func (p *meterProc) setProp(name string, v js.Value) error {
	if name != "name" {
		return errUnknownProp("meter", name)
	}
	if !v.IsString() {
		return fmt.Errorf("engine: meter name is %s, want string", v.Kind())
	}
	p.name = v.Str()
	return nil
}

func (p *meterProc) process(rt *Runtime, inputs [][]float32, out []float32) {
	if len(inputs) == 0 {
		clear(out)
		return
	}
	in := inputs[0]
	copy(out, in)

	lo, hi := in[0], in[0]
	for _, s := range in[1:] {
		if s < lo {
			lo = s
		}
		if s > hi {
			hi = s
		}
	}

	evt := js.NewObject()
	evt.Set("source", js.String(p.name))
	evt.Set("min", js.Number(float64(lo)))
	evt.Set("max", js.Number(float64(hi)))
	rt.emitEvent("meter", js.ObjectValue(evt))
}

// ---------------------------------------------------------------------------
// table
// ---------------------------------------------------------------------------

type tableProc struct {
	name string
}

func (p *tableProc) setProp(name string, v js.Value) error {
	if name != "name" {
		return errUnknownProp("table", name)
	}
	if !v.IsString() {
		return fmt.Errorf("engine: table name is %s, want string", v.Kind())
	}
	p.name = v.Str()
	return nil
}

func (p *tableProc) process(rt *Runtime, inputs [][]float32, out []float32) {
	res, ok := rt.resources[p.name]
	if !ok || len(inputs) == 0 || res.Frames == 0 {
		clear(out)
		return
	}

	pos := inputs[0]
	samples := res.Channel(0)
	last := float64(res.Frames - 1)
	for i := range out {
		x := float64(pos[i])
		if x < 0 {
			x = 0
		} else if x > 1 {
			x = 1
		}
		idx := x * last
		lo := int(idx)
		hi := lo
		if hi < res.Frames-1 {
			hi++
		}
		frac := float32(idx - float64(lo))
		out[i] = samples[lo] + (samples[hi]-samples[lo])*frac
	}
}
