// Package wire frames directives and event batches for transport
// across a process boundary, using canonical CBOR so the same payload
// always encodes to the same bytes. JSON stays the interchange format
// for the WebSocket surface; wire is for embedding hosts that want a
// binary channel, and it carries Float32Array resources without
// per-sample boxing.
package wire

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/cristianvogel/elementary/engine"
	"github.com/cristianvogel/elementary/graph"
	"github.com/cristianvogel/elementary/js"
)

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("wire: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// NodePayload is the wire shape of one graph node. Hashes are not
// carried; the receiver recomputes them structurally.
type NodePayload struct {
	Kind          string         `cbor:"kind"`
	Props         map[string]any `cbor:"props,omitempty"`
	OutputChannel int            `cbor:"output_channel,omitempty"`
	Children      []NodePayload  `cbor:"children,omitempty"`
}

// ResourcePayload carries one named sample buffer, channel-major.
type ResourcePayload struct {
	Channels int       `cbor:"channels"`
	Frames   int       `cbor:"frames"`
	Data     []float32 `cbor:"data"`
}

// DirectivePayload is the wire shape of a render request.
type DirectivePayload struct {
	Graph     []NodePayload              `cbor:"graph,omitempty"`
	Resources map[string]ResourcePayload `cbor:"resources,omitempty"`
}

// MarshalDirective serializes a directive to CBOR bytes.
func MarshalDirective(d engine.Directive) ([]byte, error) {
	payload := DirectivePayload{}

	for _, root := range d.Graph {
		np, err := nodePayload(root)
		if err != nil {
			return nil, err
		}
		payload.Graph = append(payload.Graph, np)
	}

	if len(d.Resources) > 0 {
		payload.Resources = make(map[string]ResourcePayload, len(d.Resources))
		for name, buf := range d.Resources {
			payload.Resources[name] = ResourcePayload{
				Channels: buf.Channels,
				Frames:   buf.Frames,
				Data:     buf.Data,
			}
		}
	}

	return cborEncMode.Marshal(payload)
}

// UnmarshalDirective deserializes a directive from CBOR bytes.
func UnmarshalDirective(data []byte) (engine.Directive, error) {
	var payload DirectivePayload
	if err := cbor.Unmarshal(data, &payload); err != nil {
		return engine.Directive{}, fmt.Errorf("wire: unmarshal directive: %w", err)
	}

	d := engine.Directive{}
	for _, np := range payload.Graph {
		root, err := payloadNode(np)
		if err != nil {
			return engine.Directive{}, err
		}
		d.Graph = append(d.Graph, root)
	}

	if len(payload.Resources) > 0 {
		d.Resources = make(map[string]*engine.AudioBuffer, len(payload.Resources))
		for name, rp := range payload.Resources {
			if rp.Channels*rp.Frames != len(rp.Data) {
				return engine.Directive{}, fmt.Errorf(
					"wire: resource %q carries %d samples for %d x %d", name, len(rp.Data), rp.Channels, rp.Frames)
			}
			d.Resources[name] = &engine.AudioBuffer{
				Data:     rp.Data,
				Channels: rp.Channels,
				Frames:   rp.Frames,
			}
		}
	}

	return d, nil
}

// MarshalEventBatch serializes a drained event batch to CBOR bytes.
// The same variants JSON rejects have no wire form here either.
func MarshalEventBatch(batch js.Value) ([]byte, error) {
	raw, err := batch.ToGo()
	if err != nil {
		return nil, fmt.Errorf("wire: marshal events: %w", err)
	}
	return cborEncMode.Marshal(raw)
}

// UnmarshalEventBatch deserializes an event batch from CBOR bytes.
func UnmarshalEventBatch(data []byte) (js.Value, error) {
	var raw any
	if err := cbor.Unmarshal(data, &raw); err != nil {
		return js.Undefined(), fmt.Errorf("wire: unmarshal events: %w", err)
	}
	v, err := fromCBOR(raw)
	if err != nil {
		return js.Undefined(), fmt.Errorf("wire: unmarshal events: %w", err)
	}
	return v, nil
}

func nodePayload(n *graph.Node) (NodePayload, error) {
	np := NodePayload{
		Kind:          n.Kind,
		OutputChannel: n.OutputChannel,
	}

	if n.Props.Len() > 0 {
		raw, err := js.ObjectValue(n.Props).ToGo()
		if err != nil {
			return NodePayload{}, fmt.Errorf("wire: %s props: %w", n.Kind, err)
		}
		np.Props = raw.(map[string]any)
	}

	for _, child := range n.Children {
		cp, err := nodePayload(child)
		if err != nil {
			return NodePayload{}, err
		}
		np.Children = append(np.Children, cp)
	}

	return np, nil
}

func payloadNode(np NodePayload) (*graph.Node, error) {
	props := js.NewObject()
	for k, raw := range np.Props {
		v, err := fromCBOR(raw)
		if err != nil {
			return nil, fmt.Errorf("wire: %s prop %q: %w", np.Kind, k, err)
		}
		props.Set(k, v)
	}

	var children []*graph.Node
	for _, cp := range np.Children {
		child, err := payloadNode(cp)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}

	n := graph.New(np.Kind, props, children...)
	n.OutputChannel = np.OutputChannel
	return n, nil
}

// fromCBOR bridges the interface shapes cbor.Unmarshal produces, which
// differ from encoding/json's in map key type and integer width.
func fromCBOR(raw any) (js.Value, error) {
	switch x := raw.(type) {
	case map[any]any:
		o := js.NewObject()
		for k, e := range x {
			key, ok := k.(string)
			if !ok {
				return js.Undefined(), fmt.Errorf("non-string map key %v", k)
			}
			v, err := fromCBOR(e)
			if err != nil {
				return js.Undefined(), err
			}
			o.Set(key, v)
		}
		return js.ObjectValue(o), nil
	case []any:
		a := make(js.Array, len(x))
		for i, e := range x {
			v, err := fromCBOR(e)
			if err != nil {
				return js.Undefined(), err
			}
			a[i] = v
		}
		return js.ArrayValue(a), nil
	case float32:
		return js.Number(float64(x)), nil
	default:
		return js.FromGo(raw)
	}
}
