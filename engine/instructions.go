package engine

import (
	"errors"
	"fmt"

	"github.com/cristianvogel/elementary/graph"
)

// Instruction opcodes. A batch is a js Array of instruction Arrays,
// each starting with an opcode; batches are sorted by opcode before
// apply so that creates land before appends, appends before prop sets,
// and the commit seals the batch.
const (
	OpCreateNode    = 0
	OpDeleteNode    = 1
	OpAppendChild   = 2
	OpSetProperty   = 3
	OpActivateRoots = 4
	OpCommitUpdates = 5
)

var (
	// ErrQueueFull means the realtime side is not draining instruction
	// batches fast enough.
	ErrQueueFull = errors.New("engine: instruction queue full")

	// ErrInvalidBatch means the batch is not an Array of instruction
	// Arrays.
	ErrInvalidBatch = errors.New("engine: invalid instruction batch")
)

// AudioBuffer is a named multichannel sample resource, stored
// channel-major: channel c occupies Data[c*Frames : (c+1)*Frames].
type AudioBuffer struct {
	Data     []float32
	Channels int
	Frames   int
}

// NewAudioBuffer allocates a zeroed buffer.
func NewAudioBuffer(channels, frames int) *AudioBuffer {
	return &AudioBuffer{
		Data:     make([]float32, channels*frames),
		Channels: channels,
		Frames:   frames,
	}
}

// Channel returns the samples for one channel as a shared slice.
func (b *AudioBuffer) Channel(c int) []float32 {
	if c < 0 || c >= b.Channels {
		panic(fmt.Sprintf("engine: AudioBuffer.Channel: channel %d of %d", c, b.Channels))
	}
	return b.Data[c*b.Frames : (c+1)*b.Frames]
}

// Directive is one render request from the control plane: an optional
// new set of graph roots and optional shared resources to register
// before the graph mounts.
type Directive struct {
	Graph     []*graph.Node
	Resources map[string]*AudioBuffer
}
