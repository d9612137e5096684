package engine

import (
	"strings"
	"sync"
	"testing"

	"github.com/cristianvogel/elementary/graph"
	"github.com/cristianvogel/elementary/js"
)

func TestWorkerRenderAndDrain(t *testing.T) {
	rt := NewRuntime(44100, 32)
	w := NewWorker(NewController(rt))
	defer w.Stop()

	err := w.Render(Directive{
		Graph: []*graph.Node{graph.Root(0, graph.Meter("m", graph.Const("", 0.5)))},
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	out := [][]float32{make([]float32, 32)}
	rt.Process(out)

	batch, err := w.DrainEventBatch()
	if err != nil {
		t.Fatalf("DrainEventBatch: %v", err)
	}
	if len(batch.Array()) != 1 {
		t.Errorf("drained %d events, want 1", len(batch.Array()))
	}
}

func TestWorkerSerializesAccess(t *testing.T) {
	rt := NewRuntime(44100, 16)
	w := NewWorker(NewController(rt))
	defer w.Stop()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = w.Render(Directive{
				Graph: []*graph.Node{graph.Root(0, graph.Const("", float64(i)))},
			})
		}(i)
	}
	wg.Wait()

	// All renders went through the single controller goroutine; the
	// node map saw no concurrent writes and holds every distinct const.
	_, err := w.Do(func(c *Controller) any {
		if len(c.nodeMap) < 17 { // 16 consts + at least one root
			t.Errorf("nodeMap holds %d nodes, want >= 17", len(c.nodeMap))
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestWorkerConvertsPanicsToErrors(t *testing.T) {
	w := NewWorker(NewController(NewRuntime(44100, 16)))
	defer w.Stop()

	_, err := w.Do(func(c *Controller) any {
		// Simulate a malformed directive tripping a fail-fast accessor.
		return js.Number(1).Str()
	})
	if err == nil {
		t.Fatal("panic inside worker should surface as an error")
	}
	if !strings.Contains(err.Error(), "not a string") {
		t.Errorf("err = %v, want the accessor panic message", err)
	}
}

func TestWorkerStop(t *testing.T) {
	w := NewWorker(NewController(NewRuntime(44100, 16)))
	w.Stop()

	if _, err := w.Do(func(c *Controller) any { return nil }); err == nil {
		t.Error("Do after Stop should error")
	}
}
