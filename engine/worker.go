package engine

import (
	"fmt"

	"github.com/cristianvogel/elementary/js"
)

// ctrlRequest is a unit of work to be executed on the controller
// goroutine.
type ctrlRequest struct {
	fn   func(*Controller) any
	done chan ctrlResult
}

// ctrlResult holds the return value from a controller operation.
type ctrlResult struct {
	value any
	err   error
}

// Worker serializes all control-plane access to a Controller through a
// single goroutine. Server handlers and CLI callers go through the
// worker so the controller never sees concurrent mutation; the fail-
// fast value accessors panic on contract violations, and the worker
// converts those panics into errors at the boundary instead of letting
// a malformed directive take the process down.
type Worker struct {
	ctrl     *Controller
	requests chan ctrlRequest
	quit     chan struct{}
}

// NewWorker creates a Worker and starts its processing goroutine.
func NewWorker(c *Controller) *Worker {
	w := &Worker{
		ctrl:     c,
		requests: make(chan ctrlRequest, 64),
		quit:     make(chan struct{}),
	}
	go w.loop()
	return w
}

// loop processes controller requests sequentially.
func (w *Worker) loop() {
	for {
		select {
		case req := <-w.requests:
			req.done <- w.execute(req.fn)
		case <-w.quit:
			return
		}
	}
}

// execute runs a function on the controller, recovering from panics.
func (w *Worker) execute(fn func(*Controller) any) ctrlResult {
	var result ctrlResult
	func() {
		defer func() {
			if r := recover(); r != nil {
				result.err = fmt.Errorf("engine: %v", r)
			}
		}()
		value := fn(w.ctrl)
		if err, ok := value.(error); ok {
			result.err = err
			return
		}
		result.value = value
	}()
	return result
}

// Do runs fn on the controller goroutine and waits for the result.
func (w *Worker) Do(fn func(*Controller) any) (any, error) {
	req := ctrlRequest{fn: fn, done: make(chan ctrlResult, 1)}
	select {
	case w.requests <- req:
	case <-w.quit:
		return nil, fmt.Errorf("engine: worker stopped")
	}
	select {
	case res := <-req.done:
		return res.value, res.err
	case <-w.quit:
		return nil, fmt.Errorf("engine: worker stopped")
	}
}

// Render applies a directive on the controller goroutine.
func (w *Worker) Render(d Directive) error {
	_, err := w.Do(func(c *Controller) any {
		return c.Render(d)
	})
	return err
}

// DrainEventBatch collects pending engine events on the controller
// goroutine.
func (w *Worker) DrainEventBatch() (js.Value, error) {
	v, err := w.Do(func(c *Controller) any {
		return c.DrainEventBatch()
	})
	if err != nil {
		return js.Undefined(), err
	}
	return v.(js.Value), nil
}

// Stop shuts down the worker goroutine. Pending requests fail.
func (w *Worker) Stop() {
	close(w.quit)
}
