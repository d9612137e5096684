// Elementary offline renderer - renders a graph to a WAV file.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/cristianvogel/elementary/engine"
	"github.com/cristianvogel/elementary/graph"
	"github.com/cristianvogel/elementary/internal/wav"
	"github.com/cristianvogel/elementary/js"
)

func main() {
	out := flag.String("o", "out.wav", "Output WAV path")
	seconds := flag.Float64("seconds", 2, "Render length in seconds")
	rate := flag.Float64("rate", 44100, "Sample rate")
	block := flag.Int("block", 512, "Block size in frames")
	channels := flag.Int("channels", 2, "Output channels")
	freq := flag.Float64("freq", 110, "Demo tone frequency (used without a graph file)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: elem [options] [graph.json]\n\n")
		fmt.Fprintf(os.Stderr, "Renders a signal graph offline to a WAV file.\n")
		fmt.Fprintf(os.Stderr, "Without a graph file, renders a demo sine tone.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  elem -freq 220 -o tone.wav     # 2s of 220 Hz sine\n")
		fmt.Fprintf(os.Stderr, "  elem patch.json -seconds 10    # Render a saved graph\n")
	}
	flag.Parse()

	roots, err := loadGraph(flag.Arg(0), *freq)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading graph: %v\n", err)
		os.Exit(1)
	}

	rt := engine.NewRuntime(*rate, *block)
	ctrl := engine.NewController(rt)
	if err := ctrl.Render(engine.Directive{Graph: roots}); err != nil {
		fmt.Fprintf(os.Stderr, "Error mounting graph: %v\n", err)
		os.Exit(1)
	}

	frames := int(*seconds * *rate)
	buf := &wav.Buffer{
		Data:       make([]float32, *channels*frames),
		Channels:   *channels,
		Frames:     frames,
		SampleRate: int(*rate),
	}

	scratch := make([][]float32, *channels)
	for c := range scratch {
		scratch[c] = make([]float32, *block)
	}

	for offset := 0; offset < frames; offset += *block {
		rt.Process(scratch)
		n := min(*block, frames-offset)
		for c := 0; c < *channels; c++ {
			copy(buf.Channel(c)[offset:offset+n], scratch[c][:n])
		}
		ctrl.ProcessQueuedEvents(func(eventType string, event js.Value) {
			fmt.Printf("%s %s\n", eventType, event.String())
		})
	}

	if err := os.WriteFile(*out, wav.Encode(buf), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", *out, err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %d frames to %s\n", frames, *out)
}

// loadGraph reads the graph array from a directive file, or builds the
// demo tone when no file is given.
func loadGraph(path string, freq float64) ([]*graph.Node, error) {
	if path == "" {
		return []*graph.Node{
			graph.Root(0, graph.Cycle(graph.Const("demo:freq", freq))),
			graph.Root(1, graph.Cycle(graph.Const("demo:freq", freq))),
		}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	payload, err := js.ParseJSON(string(data))
	if err != nil {
		return nil, err
	}
	if !payload.IsObject() {
		return nil, fmt.Errorf("%s: top level is %s, want object", path, payload.Kind())
	}

	gv, ok := payload.Object().Get("graph")
	if !ok || !gv.IsArray() {
		return nil, fmt.Errorf("%s: missing graph array", path)
	}
	var roots []*graph.Node
	for _, elem := range gv.Array() {
		n, err := graph.FromValue(elem)
		if err != nil {
			return nil, err
		}
		roots = append(roots, n)
	}
	return roots, nil
}
