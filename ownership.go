// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package waitq

// OwnershipQueue is a non-blocking FIFO of exclusively owned values.
//
// Values travel as *T handles. A successful push moves the handle into the
// queue; from then on the queue is its only owner until a pop hands it to
// exactly one caller. A failed push leaves the handle with the caller and
// the queue keeps no reference to it.
//
// Capacity <= 0 selects an unbounded lock-free linked list. Otherwise a
// bounded lock-free ring is used and capacity rounds up to the next power
// of 2 (minimum 2).
//
// Memory: bounded n slots for capacity n; unbounded one node per value
type OwnershipQueue[T any] struct {
	s store[T]
}

// NewOwnershipQueue creates a multi-producer multi-consumer OwnershipQueue.
func NewOwnershipQueue[T any](capacity int) *OwnershipQueue[T] {
	if capacity <= 0 {
		return &OwnershipQueue[T]{s: newList[T]()}
	}
	return &OwnershipQueue[T]{s: newRing[T](capacity)}
}

// NewOwnershipQueueSC creates an OwnershipQueue for a single consumer.
// Multiple producers remain safe. Unbounded queues use the same list as
// NewOwnershipQueue.
func NewOwnershipQueueSC[T any](capacity int) *OwnershipQueue[T] {
	if capacity <= 0 {
		return &OwnershipQueue[T]{s: newList[T]()}
	}
	return &OwnershipQueue[T]{s: newRingSC[T](capacity)}
}

// PushPtr moves p into the queue.
// Returns ErrWouldBlock if the queue is full; p is then still owned by the caller.
// Panics if p is nil.
func (q *OwnershipQueue[T]) PushPtr(p *T) error {
	if p == nil {
		panic("waitq: nil handle")
	}
	if !q.s.enqueue(p) {
		return ErrWouldBlock
	}
	return nil
}

// PopPtr removes the oldest handle and transfers it to the caller.
// Returns (nil, ErrWouldBlock) if the queue is empty. Never blocks.
func (q *OwnershipQueue[T]) PopPtr() (*T, error) {
	p, ok := q.s.dequeue()
	if !ok {
		return nil, ErrWouldBlock
	}
	return p, nil
}

// Push copies v into a fresh handle and pushes it.
// On ErrWouldBlock the handle is discarded and v is untouched.
func (q *OwnershipQueue[T]) Push(v T) error {
	return q.PushPtr(&v)
}

// Pop removes the oldest value and returns it by value.
// Returns (zero-value, ErrWouldBlock) if the queue is empty.
func (q *OwnershipQueue[T]) Pop() (T, error) {
	p, err := q.PopPtr()
	if err != nil {
		var zero T
		return zero, err
	}
	return *p, nil
}

// Empty reports whether the queue held no values at the time of the call.
// The answer may be stale by the time it returns under concurrent pushes.
func (q *OwnershipQueue[T]) Empty() bool {
	return q.s.empty()
}

// Cap returns the queue capacity, or 0 if unbounded.
func (q *OwnershipQueue[T]) Cap() int {
	return q.s.capacity()
}

// Dispose pops every remaining value and passes it to release.
// Each value is released exactly once. A nil release only drops the
// queue's references. Returns the number of values released.
//
// Dispose must not race with other consumers; producers pushing
// concurrently may leave values behind.
func (q *OwnershipQueue[T]) Dispose(release func(*T)) int {
	n := 0
	for {
		p, ok := q.s.dequeue()
		if !ok {
			return n
		}
		if release != nil {
			release(p)
		}
		n++
	}
}
