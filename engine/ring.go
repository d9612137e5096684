package engine

import "sync/atomic"

// Ring is a fixed-capacity single-producer single-consumer queue. Push
// and Pop move their element through the slot, zeroing the source, so a
// transfer costs one slot write regardless of how much the element
// owns. Neither side blocks and neither side allocates; a full ring
// rejects the push and the producer decides what to do about it.
//
// One goroutine may push and one may pop. Anything beyond that is a
// data race.
type Ring[T any] struct {
	slots []T
	mask  uint64
	head  atomic.Uint64 // next slot to pop
	tail  atomic.Uint64 // next slot to push
}

// NewRing creates a ring holding at least capacity elements, rounded up
// to a power of two.
func NewRing[T any](capacity int) *Ring[T] {
	size := 2
	for size < capacity {
		size <<= 1
	}
	return &Ring[T]{
		slots: make([]T, size),
		mask:  uint64(size - 1),
	}
}

// Push moves *v into the ring, leaving *v zero. Returns false if the
// ring is full, in which case *v is untouched.
func (r *Ring[T]) Push(v *T) bool {
	tail := r.tail.Load()
	if tail-r.head.Load() == uint64(len(r.slots)) {
		return false
	}
	r.slots[tail&r.mask] = *v
	var zero T
	*v = zero
	r.tail.Store(tail + 1)
	return true
}

// Pop moves the oldest element out of the ring. Returns false if the
// ring is empty.
func (r *Ring[T]) Pop() (T, bool) {
	head := r.head.Load()
	var out T
	if head == r.tail.Load() {
		return out, false
	}
	out = r.slots[head&r.mask]
	var zero T
	r.slots[head&r.mask] = zero
	r.head.Store(head + 1)
	return out, true
}

// Len reports how many elements are queued. Racy by nature; useful for
// diagnostics only.
func (r *Ring[T]) Len() int {
	return int(r.tail.Load() - r.head.Load())
}
