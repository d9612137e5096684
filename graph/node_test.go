package graph

import (
	"testing"

	"github.com/cristianvogel/elementary/js"
)

func TestHashIsStructural(t *testing.T) {
	a := Cycle(Const("", 110))
	b := Cycle(Const("", 110))
	if a.Hash != b.Hash {
		t.Errorf("identical structures hash differently: %d vs %d", a.Hash, b.Hash)
	}

	c := Cycle(Const("", 220))
	if a.Hash == c.Hash {
		t.Error("different props should change the hash")
	}

	d := Phasor(Const("", 110))
	e := Sin(Const("", 110))
	if d.Hash == e.Hash {
		t.Error("different kinds should change the hash")
	}
}

func TestHashCoversChildren(t *testing.T) {
	x := Sin(Phasor(Const("", 110)))
	y := Sin(Phasor(Const("", 330)))
	if x.Hash == y.Hash {
		t.Error("grandchild change should propagate into the root hash")
	}
}

func TestConstKeyProps(t *testing.T) {
	keyed := Const("lfo-rate", 0.5)
	got, ok := keyed.Props.Get("key")
	if !ok || got.Str() != "lfo-rate" {
		t.Errorf("keyed const key prop = %v", got)
	}

	anon := Const("", 0.5)
	got, _ = anon.Props.Get("key")
	if !got.IsNull() {
		t.Errorf("anonymous const key prop = %v, want null", got)
	}
}

func TestValueRoundTrip(t *testing.T) {
	root := Root(0, Meter("out", Cycle(Const("freq", 440))))

	decoded, err := FromValue(root.Value())
	if err != nil {
		t.Fatalf("FromValue: %v", err)
	}
	if decoded.Hash != root.Hash {
		t.Errorf("round-tripped hash = %d, want %d", decoded.Hash, root.Hash)
	}
	if decoded.Kind != "root" || len(decoded.Children) != 1 {
		t.Errorf("round-tripped shape wrong: %+v", decoded)
	}
}

func TestFromValueErrors(t *testing.T) {
	cases := map[string]js.Value{
		"not an object": js.Number(1),
		"missing kind":  js.ObjectValue(js.NewObject()),
		"bad props": js.ObjectValue(js.ObjectOf(map[string]js.Value{
			"kind":  js.String("sin"),
			"props": js.Number(3),
		})),
		"bad children": js.ObjectValue(js.ObjectOf(map[string]js.Value{
			"kind":     js.String("sin"),
			"children": js.String("nope"),
		})),
	}
	for name, v := range cases {
		if _, err := FromValue(v); err == nil {
			t.Errorf("%s: FromValue should error", name)
		}
	}
}
