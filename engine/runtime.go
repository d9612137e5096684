package engine

import (
	"fmt"

	"github.com/cristianvogel/elementary/js"
)

// Runtime is the realtime half of the engine. It consumes instruction
// batches from the instruction ring, maintains the mounted node graph,
// renders one block per Process call, and emits event objects through
// the event ring.
//
// Process belongs to exactly one goroutine (the audio callback). All
// other methods are control-plane side and must be serialized by the
// caller, normally through a Worker.
type Runtime struct {
	sampleRate float64
	blockSize  int

	instructions *Ring[js.Value]
	events       *Ring[js.Value]
	installs     *Ring[resourceInstall]

	nodes     map[int32]*node
	active    []int32
	pending   []int32
	committed bool
	resources map[string]*AudioBuffer // realtime side only, past NewRuntime
	kinds     map[string]processorFactory
	stamp     uint64
}

// resourceInstall hands one named buffer across to the realtime side.
type resourceInstall struct {
	name string
	buf  *AudioBuffer
}

// Builtin processors are single-output: every node renders one signal
// into buf. The appendChild instruction's optional channel operand is
// validated and accepted for wire shape but has no routing effect.
type node struct {
	hash     int32
	kind     string
	children []*node
	inputs   [][]float32 // refilled from children each block
	buf      []float32
	proc     processor
	stamp    uint64
}

// NewRuntime creates a runtime rendering blockSize frames per Process
// call at the given sample rate.
func NewRuntime(sampleRate float64, blockSize int) *Runtime {
	r := &Runtime{
		sampleRate:   sampleRate,
		blockSize:    blockSize,
		instructions: NewRing[js.Value](64),
		events:       NewRing[js.Value](512),
		installs:     NewRing[resourceInstall](16),
		nodes:        make(map[int32]*node),
		resources:    make(map[string]*AudioBuffer),
		kinds:        make(map[string]processorFactory),
	}
	for kind, factory := range builtinKinds {
		r.kinds[kind] = factory
	}
	return r
}

// SampleRate returns the configured sample rate.
func (r *Runtime) SampleRate() float64 { return r.sampleRate }

// BlockSize returns the configured frames-per-block.
func (r *Runtime) BlockSize() int { return r.blockSize }

// RegisterKind installs a processor factory for a node kind, replacing
// any builtin of the same name. Control-plane side; not safe once
// Process is running.
func (r *Runtime) RegisterKind(kind string, factory processorFactory) {
	r.kinds[kind] = factory
}

// AddSharedResource queues a named sample buffer for table nodes. The
// buffer crosses to the realtime side through the install ring and
// becomes readable at the next block boundary, so registration never
// races an active Process loop.
func (r *Runtime) AddSharedResource(name string, buf *AudioBuffer) error {
	if buf == nil || buf.Channels == 0 || buf.Frames == 0 {
		return fmt.Errorf("engine: resource %q is empty", name)
	}
	in := resourceInstall{name: name, buf: buf}
	if !r.installs.Push(&in) {
		return ErrQueueFull
	}
	return nil
}

// ApplyInstructions validates a batch and moves it into the
// instruction ring for the realtime thread to pick up at the next
// block boundary. The batch Value is consumed.
func (r *Runtime) ApplyInstructions(batch js.Value) error {
	if !batch.IsArray() {
		return fmt.Errorf("%w: batch is %s", ErrInvalidBatch, batch.Kind())
	}
	for _, in := range batch.Array() {
		if err := validateInstruction(in); err != nil {
			return err
		}
	}
	if !r.instructions.Push(&batch) {
		return ErrQueueFull
	}
	return nil
}

// ProcessQueuedEvents drains every pending event object and hands its
// type tag and payload to fn, in emission order.
func (r *Runtime) ProcessQueuedEvents(fn func(eventType string, event js.Value)) {
	for {
		wrapped, ok := r.events.Pop()
		if !ok {
			return
		}
		o := wrapped.Object()
		typ, _ := o.Get("type")
		evt, _ := o.Get("event")
		fn(typ.Str(), evt)
	}
}

// Process renders one block into out, one slice per output channel,
// each blockSize frames long. Pending instruction batches apply at the
// top of the block, so a batch is never split across blocks.
func (r *Runtime) Process(out [][]float32) {
	for {
		in, ok := r.installs.Pop()
		if !ok {
			break
		}
		r.resources[in.name] = in.buf
	}
	for {
		batch, ok := r.instructions.Pop()
		if !ok {
			break
		}
		r.applyBatch(batch)
	}

	for _, ch := range out {
		clear(ch)
	}

	r.stamp++
	for _, hash := range r.active {
		n, ok := r.nodes[hash]
		if !ok {
			continue
		}
		r.pull(n)
		root, ok := n.proc.(*rootProc)
		if !ok {
			continue
		}
		if root.channel < 0 || root.channel >= len(out) {
			continue
		}
		dst := out[root.channel]
		for i := range dst {
			dst[i] += n.buf[i]
		}
	}
}

// pull renders n's subtree for the current block, memoized by stamp so
// shared subtrees render once.
func (r *Runtime) pull(n *node) []float32 {
	if n.stamp == r.stamp {
		return n.buf
	}
	n.stamp = r.stamp
	for i, child := range n.children {
		n.inputs[i] = r.pull(child)
	}
	n.proc.process(r, n.inputs, n.buf)
	return n.buf
}

// ---------------------------------------------------------------------------
// Instruction application
// ---------------------------------------------------------------------------

// validateInstruction checks batch shape on the control-plane side so
// the realtime apply can trust its operands. The value accessors stay
// fail-fast; a shape error reported here is an ordinary error, one that
// slips past is a bug.
func validateInstruction(in js.Value) error {
	if !in.IsArray() || len(in.Array()) == 0 || !in.Array()[0].IsNumber() {
		return fmt.Errorf("%w: instruction %s", ErrInvalidBatch, in)
	}
	ops := in.Array()
	argc := map[int]int{
		OpCreateNode:    3,
		OpDeleteNode:    2,
		OpAppendChild:   3,
		OpSetProperty:   4,
		OpActivateRoots: 2,
		OpCommitUpdates: 1,
	}
	op := int(ops[0].Num())
	want, ok := argc[op]
	if !ok {
		return fmt.Errorf("%w: unknown opcode %v", ErrInvalidBatch, ops[0])
	}
	if len(ops) < want {
		return fmt.Errorf("%w: opcode %d wants %d operands, got %d",
			ErrInvalidBatch, op, want-1, len(ops)-1)
	}

	bad := func(i int) error {
		return fmt.Errorf("%w: opcode %d operand %d is %s", ErrInvalidBatch, op, i, ops[i].Kind())
	}
	switch op {
	case OpCreateNode:
		if !ops[1].IsNumber() || !ops[2].IsString() {
			return bad(1)
		}
	case OpDeleteNode:
		if !ops[1].IsNumber() {
			return bad(1)
		}
	case OpAppendChild:
		if !ops[1].IsNumber() || !ops[2].IsNumber() {
			return bad(1)
		}
		if len(ops) > 3 && !ops[3].IsNumber() {
			return bad(3)
		}
	case OpSetProperty:
		if !ops[1].IsNumber() {
			return bad(1)
		}
		if !ops[2].IsString() {
			return bad(2)
		}
	case OpActivateRoots:
		if !ops[1].IsArray() {
			return bad(1)
		}
		for _, h := range ops[1].Array() {
			if !h.IsNumber() {
				return fmt.Errorf("%w: opcode %d root hash is %s", ErrInvalidBatch, op, h.Kind())
			}
		}
	}
	return nil
}

func (r *Runtime) applyBatch(batch js.Value) {
	for _, in := range batch.Array() {
		if err := r.applyInstruction(in.Array()); err != nil {
			r.emitEvent("error", js.String(err.Error()))
		}
	}
}

func (r *Runtime) applyInstruction(in js.Array) error {
	switch int(in[0].Num()) {
	case OpCreateNode:
		hash, kind := int32(in[1].Num()), in[2].Str()
		factory, ok := r.kinds[kind]
		if !ok {
			return fmt.Errorf("engine: unknown node kind %q", kind)
		}
		r.nodes[hash] = &node{
			hash: hash,
			kind: kind,
			buf:  make([]float32, r.blockSize),
			proc: factory(),
		}
	case OpDeleteNode:
		delete(r.nodes, int32(in[1].Num()))
	case OpAppendChild:
		parent, ok := r.nodes[int32(in[1].Num())]
		if !ok {
			return fmt.Errorf("engine: append to unknown node %d", int32(in[1].Num()))
		}
		child, ok := r.nodes[int32(in[2].Num())]
		if !ok {
			return fmt.Errorf("engine: append of unknown node %d", int32(in[2].Num()))
		}
		parent.children = append(parent.children, child)
		parent.inputs = append(parent.inputs, nil)
	case OpSetProperty:
		n, ok := r.nodes[int32(in[1].Num())]
		if !ok {
			return fmt.Errorf("engine: set property on unknown node %d", int32(in[1].Num()))
		}
		return n.proc.setProp(in[2].Str(), in[3])
	case OpActivateRoots:
		hashes := in[1].Array()
		r.pending = r.pending[:0]
		for _, h := range hashes {
			r.pending = append(r.pending, int32(h.Num()))
		}
		r.committed = false
	case OpCommitUpdates:
		if !r.committed {
			r.active = append(r.active[:0], r.pending...)
			r.committed = true
		}
	default:
		return fmt.Errorf("engine: unknown opcode %d", int(in[0].Num()))
	}
	return nil
}

// emitEvent wraps an event payload in the conventional
// {"type": ..., "event": ...} shape and queues it for the control
// plane. A full event ring drops the event; the drain side is behind.
func (r *Runtime) emitEvent(eventType string, event js.Value) {
	o := js.NewObject()
	o.Set("type", js.String(eventType))
	o.Set("event", event)
	wrapped := js.ObjectValue(o)
	r.events.Push(&wrapped)
}
