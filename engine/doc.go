// Package engine hosts both sides of the realtime boundary: the
// Controller, which reconciles control-plane graphs into instruction
// batches, and the Runtime, which applies those batches and renders
// audio on the realtime thread.
//
// The two sides communicate only through single-producer single-consumer
// rings. Instruction batches and shared-resource installs move into the
// realtime context and event batches move out; a move rebinds storage
// and never allocates, so the audio thread never waits on the control
// plane.
// Concurrent access discipline is the caller's: one goroutine drives
// Process, and all control-plane calls go through a Worker.
package engine
