// Elementary daemon - serves a realtime engine over WebSocket.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/tliron/commonlog"

	_ "github.com/tliron/commonlog/simple"

	"github.com/cristianvogel/elementary/engine"
	"github.com/cristianvogel/elementary/journal"
	"github.com/cristianvogel/elementary/manifest"
	"github.com/cristianvogel/elementary/server"
)

var log = commonlog.GetLogger("elemd")

func main() {
	configDir := flag.String("config", ".", "Directory containing elementary.toml")
	addr := flag.String("addr", "", "Listen address (overrides manifest)")
	verbose := flag.Bool("v", false, "Verbose output")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: elemd [options]\n\n")
		fmt.Fprintf(os.Stderr, "Serves a signal engine over WebSocket at /session.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  elemd                          # Serve with ./elementary.toml\n")
		fmt.Fprintf(os.Stderr, "  elemd -config ~/patch          # Serve a patch directory\n")
		fmt.Fprintf(os.Stderr, "  elemd -addr :9000              # Override the listen address\n")
	}
	flag.Parse()

	verbosity := 0
	if *verbose {
		verbosity = 2
	}
	commonlog.Configure(verbosity, nil)

	man, err := manifest.Load(*configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading manifest: %v\n", err)
		os.Exit(1)
	}

	listenAddr := man.Server.Addr
	if *addr != "" {
		listenAddr = *addr
	}

	rt := engine.NewRuntime(man.Audio.SampleRate, man.Audio.BlockSize)
	worker := engine.NewWorker(engine.NewController(rt))

	var opts []server.Option
	if man.Server.Journal != "" {
		j, err := journal.Open(man.Server.Journal)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening journal: %v\n", err)
			os.Exit(1)
		}
		defer j.Close()
		opts = append(opts, server.WithJournal(j))
	}

	srv := server.New(worker, man, opts...)
	defer srv.Stop()

	go renderClock(rt, man.Audio.Channels)

	log.Infof("engine at %g Hz, block %d, %d channels",
		man.Audio.SampleRate, man.Audio.BlockSize, man.Audio.Channels)
	if err := srv.ListenAndServe(listenAddr); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}

// renderClock stands in for an audio device callback, pacing block
// renders against the wall clock so meter and error events keep
// flowing to sessions.
func renderClock(rt *engine.Runtime, channels int) {
	out := make([][]float32, channels)
	for c := range out {
		out[c] = make([]float32, rt.BlockSize())
	}
	blockDur := time.Duration(float64(rt.BlockSize()) / rt.SampleRate() * float64(time.Second))

	ticker := time.NewTicker(blockDur)
	defer ticker.Stop()
	for range ticker.C {
		rt.Process(out)
	}
}
