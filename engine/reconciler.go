package engine

import (
	"sort"

	"github.com/cristianvogel/elementary/graph"
	"github.com/cristianvogel/elementary/js"
)

// shallowNode is the controller's record of what the runtime has
// mounted for one hash: enough to diff props on later renders without
// holding the full subtree.
type shallowNode struct {
	kind     string
	props    *js.Object
	children []int32
}

// Controller is the control-plane half of the engine: it diffs
// authored graphs against what the runtime already has mounted and
// emits the minimal instruction batch to close the gap.
//
// A Controller is not safe for concurrent use; wrap it in a Worker.
type Controller struct {
	rt      *Runtime
	nodeMap map[int32]*shallowNode
}

// NewController creates a controller driving the given runtime.
func NewController(rt *Runtime) *Controller {
	return &Controller{
		rt:      rt,
		nodeMap: make(map[int32]*shallowNode),
	}
}

// Runtime returns the runtime this controller drives.
func (c *Controller) Runtime() *Runtime { return c.rt }

// Reconcile walks the authored roots breadth-first and produces the
// instruction batch that mounts missing nodes, wires children, updates
// changed props, activates the roots, and commits. The batch comes
// back sorted by opcode so creates land before appends and appends
// before prop sets.
func (c *Controller) Reconcile(roots []*graph.Node) js.Value {
	visited := make(map[int32]bool)
	queue := make([]*graph.Node, 0, len(roots))
	queue = append(queue, roots...)

	var batch js.Array

	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]

		if visited[next.Hash] {
			continue
		}

		mounted, known := c.nodeMap[next.Hash]
		if !known {
			batch = append(batch, instr(
				js.Number(OpCreateNode),
				js.Number(float64(next.Hash)),
				js.String(next.Kind),
			))

			mounted = &shallowNode{kind: next.Kind, props: js.NewObject()}
			for _, child := range next.Children {
				batch = append(batch, instr(
					js.Number(OpAppendChild),
					js.Number(float64(next.Hash)),
					js.Number(float64(child.Hash)),
					js.Number(float64(child.OutputChannel)),
				))
				mounted.children = append(mounted.children, child.Hash)
			}
			c.nodeMap[next.Hash] = mounted
		}

		next.Props.Each(func(name string, val js.Value) bool {
			if prev, ok := mounted.props.Get(name); ok && js.Equal(prev, val) {
				return true
			}
			batch = append(batch, instr(
				js.Number(OpSetProperty),
				js.Number(float64(next.Hash)),
				js.String(name),
				val.Copy(),
			))
			mounted.props.Set(name, val.Copy())
			return true
		})

		queue = append(queue, next.Children...)
		visited[next.Hash] = true
	}

	rootHashes := make(js.Array, len(roots))
	for i, root := range roots {
		rootHashes[i] = js.Number(float64(root.Hash))
	}
	batch = append(batch, instr(js.Number(OpActivateRoots), js.ArrayValue(rootHashes)))
	batch = append(batch, instr(js.Number(OpCommitUpdates)))

	sort.SliceStable(batch, func(i, j int) bool {
		return batch[i].Array()[0].Num() < batch[j].Array()[0].Num()
	})

	return js.ArrayValue(batch)
}

func instr(parts ...js.Value) js.Value {
	return js.ArrayOf(parts...)
}

// Render registers a directive's resources, reconciles its graph, and
// hands the resulting batch to the runtime.
func (c *Controller) Render(d Directive) error {
	for name, buf := range d.Resources {
		if err := c.rt.AddSharedResource(name, buf); err != nil {
			return err
		}
	}
	if d.Graph == nil {
		return nil
	}
	return c.rt.ApplyInstructions(c.Reconcile(d.Graph))
}

// ProcessQueuedEvents drains pending engine events through fn.
func (c *Controller) ProcessQueuedEvents(fn func(eventType string, event js.Value)) {
	c.rt.ProcessQueuedEvents(fn)
}

// DrainEventBatch collects every pending event into an Array of
// {"type": ..., "event": ...} objects for transport back across the
// boundary.
func (c *Controller) DrainEventBatch() js.Value {
	var batch js.Array
	c.rt.ProcessQueuedEvents(func(eventType string, event js.Value) {
		o := js.NewObject()
		o.Set("type", js.String(eventType))
		o.Set("event", event)
		batch = append(batch, js.ObjectValue(o))
	})
	return js.ArrayValue(batch)
}
