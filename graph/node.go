// Package graph builds the control-plane representation of an audio
// signal graph. Nodes are content-addressed: a node's hash covers its
// kind, its props, and its children's hashes, so structurally identical
// subtrees collapse to one engine node during reconciliation.
package graph

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"

	"github.com/cristianvogel/elementary/js"
)

// Node is one vertex of the signal graph as authored by the control
// plane. It never reaches the realtime engine directly; the engine sees
// only the instruction batches the reconciler derives from it.
type Node struct {
	Hash          int32
	Kind          string
	Props         *js.Object
	OutputChannel int
	Children      []*Node
}

// New creates a node and computes its structural hash.
func New(kind string, props *js.Object, children ...*Node) *Node {
	if props == nil {
		props = js.NewObject()
	}

	h := fnv.New32a()
	h.Write([]byte(kind))
	props.Each(func(k string, v js.Value) bool {
		h.Write([]byte(k))
		h.Write([]byte(v.String()))
		return true
	})
	var scratch [4]byte
	for _, child := range children {
		binary.LittleEndian.PutUint32(scratch[:], uint32(child.Hash))
		h.Write(scratch[:])
	}

	return &Node{
		Hash:     int32(h.Sum32()),
		Kind:     kind,
		Props:    props,
		Children: children,
	}
}

// FromValue decodes the conventional wire shape of a node,
// {"kind": ..., "props": {...}, "output_channel": ..., "children": [...]},
// recomputing hashes bottom-up. Any hash present in the payload is
// ignored; the structural hash is authoritative.
func FromValue(v js.Value) (*Node, error) {
	if !v.IsObject() {
		return nil, fmt.Errorf("graph: node payload is %s, want object", v.Kind())
	}
	o := v.Object()

	kindVal, ok := o.Get("kind")
	if !ok || !kindVal.IsString() {
		return nil, fmt.Errorf("graph: node payload missing string kind")
	}

	props := js.NewObject()
	if pv, ok := o.Get("props"); ok {
		if !pv.IsObject() {
			return nil, fmt.Errorf("graph: %s props is %s, want object", kindVal.Str(), pv.Kind())
		}
		props = pv.Object()
	}

	var children []*Node
	if cv, ok := o.Get("children"); ok {
		if !cv.IsArray() {
			return nil, fmt.Errorf("graph: %s children is %s, want array", kindVal.Str(), cv.Kind())
		}
		for _, elem := range cv.Array() {
			child, err := FromValue(elem)
			if err != nil {
				return nil, err
			}
			children = append(children, child)
		}
	}

	n := New(kindVal.Str(), props, children...)
	n.OutputChannel = int(js.GetWithDefault(v, "output_channel", 0.0))
	return n, nil
}

// Value encodes the node in its conventional wire shape.
func (n *Node) Value() js.Value {
	children := make(js.Array, len(n.Children))
	for i, c := range n.Children {
		children[i] = c.Value()
	}

	o := js.NewObject()
	o.Set("hash", js.Number(float64(n.Hash)))
	o.Set("kind", js.String(n.Kind))
	o.Set("props", js.ObjectValue(n.Props))
	o.Set("output_channel", js.Number(float64(n.OutputChannel)))
	o.Set("children", js.ArrayValue(children))
	return js.ObjectValue(o)
}
