// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package waitq

import "sync"

// LockingQueue is the mutex/condition-variable baseline for Queue.
//
// One mutex guards the FIFO and the readiness flag. Every operation takes
// the lock; Push and Wakeup release it before signaling so the woken
// consumer does not immediately block on the mutex again.
//
// It is observably equivalent to NonBlockingQueue: same capacity
// rounding, same backpressure policy, same ownership rules.
type LockingQueue[T any] struct {
	mu    sync.Mutex
	cond  sync.Cond
	items fifo[T]
	ready bool
	limit int // 0 = unbounded
	bp    backpressure
}

// NewLocking creates a LockingQueue with the Reject policy.
// Capacity 0 means unbounded, otherwise it rounds up to the next power of 2.
func NewLocking[T any](capacity int) *LockingQueue[T] {
	return BuildLocking[T](New(capacity).Locking())
}

func newLocking[T any](capacity int) *LockingQueue[T] {
	q := &LockingQueue[T]{}
	q.cond.L = &q.mu
	if capacity > 0 {
		q.limit = roundToPow2(capacity)
		q.items.buf = make([]*T, q.limit)
	}
	return q
}

// Push copies v into the queue and signals readiness.
func (q *LockingQueue[T]) Push(v T) bool {
	return q.PushPtr(&v)
}

// PushPtr moves p into the queue and signals readiness.
// Returns false if the queue is full; the caller still owns p.
// Panics if p is nil.
func (q *LockingQueue[T]) PushPtr(p *T) bool {
	if p == nil {
		panic("waitq: nil handle")
	}
	return q.bp.push(func() bool { return q.tryPush(p) })
}

func (q *LockingQueue[T]) tryPush(p *T) bool {
	q.mu.Lock()
	if q.limit > 0 && q.items.len() >= q.limit {
		q.mu.Unlock()
		return false
	}
	q.items.push(p)
	if q.ready {
		q.mu.Unlock()
		return true
	}
	q.ready = true
	q.mu.Unlock()
	q.cond.Signal()
	return true
}

// Pop removes the oldest value. Never blocks.
func (q *LockingQueue[T]) Pop() (T, bool) {
	p, ok := q.PopPtr()
	if !ok {
		var zero T
		return zero, false
	}
	return *p, true
}

// PopPtr removes the oldest value and transfers its handle. Never blocks.
func (q *LockingQueue[T]) PopPtr() (*T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.items.pop()
}

// Wait blocks until readiness was signaled, then consumes the signal.
func (q *LockingQueue[T]) Wait() {
	q.mu.Lock()
	for !q.ready {
		q.cond.Wait()
	}
	q.ready = false
	q.mu.Unlock()
}

// Wakeup raises the readiness signal without pushing.
func (q *LockingQueue[T]) Wakeup() {
	q.mu.Lock()
	if q.ready {
		q.mu.Unlock()
		return
	}
	q.ready = true
	q.mu.Unlock()
	q.cond.Signal()
}

// Empty reports whether the FIFO is empty.
func (q *LockingQueue[T]) Empty() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.items.len() == 0
}

// Cap returns the capacity, or 0 if unbounded.
func (q *LockingQueue[T]) Cap() int {
	return q.limit
}

// Dispose releases every remaining value exactly once.
func (q *LockingQueue[T]) Dispose(release func(*T)) int {
	n := 0
	for {
		p, ok := q.PopPtr()
		if !ok {
			return n
		}
		if release != nil {
			release(p)
		}
		n++
	}
}

// fifo is a growable ring of handles. Not safe for concurrent use.
type fifo[T any] struct {
	buf  []*T
	head int
	n    int
}

func (f *fifo[T]) len() int {
	return f.n
}

func (f *fifo[T]) push(p *T) {
	if f.n == len(f.buf) {
		f.grow()
	}
	f.buf[(f.head+f.n)%len(f.buf)] = p
	f.n++
}

func (f *fifo[T]) pop() (*T, bool) {
	if f.n == 0 {
		return nil, false
	}
	p := f.buf[f.head]
	f.buf[f.head] = nil
	f.head = (f.head + 1) % len(f.buf)
	f.n--
	return p, true
}

func (f *fifo[T]) grow() {
	size := 2 * len(f.buf)
	if size < 16 {
		size = 16
	}
	buf := make([]*T, size)
	for i := range f.n {
		buf[i] = f.buf[(f.head+i)%len(f.buf)]
	}
	f.buf = buf
	f.head = 0
}
