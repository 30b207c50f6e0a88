// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package waitq

// NonBlockingQueue is a Queue built from an OwnershipQueue and a WakeupFlag.
//
// Push and Pop never take a lock. The only lock is inside the flag's slow
// path, which runs when the consumer finds nothing to do and has to sleep.
type NonBlockingQueue[T any] struct {
	q    *OwnershipQueue[T]
	flag WakeupFlag
	bp   backpressure
}

// NewNonBlocking creates a NonBlockingQueue with the Reject policy.
// Capacity 0 means unbounded; see OwnershipQueue for rounding.
func NewNonBlocking[T any](capacity int) *NonBlockingQueue[T] {
	return BuildNonBlocking[T](New(capacity))
}

// Push copies v into the queue and signals readiness.
func (q *NonBlockingQueue[T]) Push(v T) bool {
	return q.PushPtr(&v)
}

// PushPtr moves p into the queue and signals readiness.
// The flag is set on every successful push; redundant sets coalesce.
func (q *NonBlockingQueue[T]) PushPtr(p *T) bool {
	ok := q.bp.push(func() bool { return q.q.PushPtr(p) == nil })
	if ok {
		q.flag.Set()
	}
	return ok
}

// Pop removes the oldest value. Never blocks.
func (q *NonBlockingQueue[T]) Pop() (T, bool) {
	v, err := q.q.Pop()
	return v, err == nil
}

// PopPtr removes the oldest value and transfers its handle. Never blocks.
func (q *NonBlockingQueue[T]) PopPtr() (*T, bool) {
	p, err := q.q.PopPtr()
	return p, err == nil
}

// Wait blocks until readiness was signaled, then consumes the signal.
func (q *NonBlockingQueue[T]) Wait() {
	q.flag.Wait()
}

// Wakeup raises the readiness signal without pushing.
func (q *NonBlockingQueue[T]) Wakeup() {
	q.flag.Set()
}

// Empty reports whether the underlying OwnershipQueue is empty. Advisory.
func (q *NonBlockingQueue[T]) Empty() bool {
	return q.q.Empty()
}

// Cap returns the capacity, or 0 if unbounded.
func (q *NonBlockingQueue[T]) Cap() int {
	return q.q.Cap()
}

// Dispose releases every remaining value exactly once.
func (q *NonBlockingQueue[T]) Dispose(release func(*T)) int {
	return q.q.Dispose(release)
}
