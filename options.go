// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package waitq

import (
	"unsafe"

	"code.hybscloud.com/iox"
)

// Policy selects what Push does when a bounded queue is full.
type Policy uint8

const (
	// Reject fails the push immediately. The caller keeps the value.
	Reject Policy = iota
	// Retry backs off and retries until the push succeeds or the
	// attached Token is cancelled.
	Retry
)

// String returns the policy name.
func (p Policy) String() string {
	switch p {
	case Reject:
		return "reject"
	case Retry:
		return "retry"
	default:
		return "unknown"
	}
}

// Options configures queue creation.
type Options struct {
	// Variant
	locking bool

	// Consumer constraint (selects the single-consumer ring)
	singleConsumer bool

	// Backpressure on a full bounded queue
	policy Policy
	token  *Token

	// Capacity (0 = unbounded, else rounds up to next power of 2)
	capacity int
}

// Builder creates queues with fluent configuration.
//
// Example:
//
//	// Lock-free variant, unbounded
//	q := waitq.Build[Event](waitq.New(0))
//
//	// Mutex/condition-variable baseline with the same contract
//	q := waitq.Build[Event](waitq.New(0).Locking())
//
//	// Bounded, producers back off while full until tok is cancelled
//	q := waitq.BuildNonBlocking[Event](waitq.New(4096).Retry(tok))
type Builder struct {
	opts Options
}

// New creates a queue builder with the given capacity.
//
// Capacity 0 means unbounded. A positive capacity rounds up to the next
// power of 2 (minimum 2) for both variants, so a NonBlockingQueue and a
// LockingQueue built from the same Builder accept exactly the same number
// of values. The effective bound is the queue's Cap(), not the argument:
// New(5) builds a queue that accepts 8 values.
//
// Panics if capacity < 0.
func New(capacity int) *Builder {
	if capacity < 0 {
		panic("waitq: capacity must be >= 0")
	}
	return &Builder{opts: Options{capacity: capacity}}
}

// Locking selects the mutex/condition-variable variant.
func (b *Builder) Locking() *Builder {
	b.opts.locking = true
	return b
}

// SingleConsumer declares that only one goroutine will pop.
// The lock-free variant then uses a wait-free dequeue on bounded queues.
// The locking variant ignores it.
func (b *Builder) SingleConsumer() *Builder {
	b.opts.singleConsumer = true
	return b
}

// Retry makes Push back off and retry on a full queue instead of failing.
// Retrying stops, and Push reports failure, once tok is cancelled.
// A nil tok retries until the push succeeds.
func (b *Builder) Retry(tok *Token) *Builder {
	b.opts.policy = Retry
	b.opts.token = tok
	return b
}

// Build creates a Queue[T] of the configured variant.
func Build[T any](b *Builder) Queue[T] {
	if b.opts.locking {
		return BuildLocking[T](b)
	}
	return BuildNonBlocking[T](b)
}

// BuildNonBlocking creates a NonBlockingQueue with compile-time type safety.
// Panics if the builder is configured with Locking().
func BuildNonBlocking[T any](b *Builder) *NonBlockingQueue[T] {
	if b.opts.locking {
		panic("waitq: BuildNonBlocking requires a builder without Locking()")
	}
	var oq *OwnershipQueue[T]
	if b.opts.singleConsumer {
		oq = NewOwnershipQueueSC[T](b.opts.capacity)
	} else {
		oq = NewOwnershipQueue[T](b.opts.capacity)
	}
	return &NonBlockingQueue[T]{q: oq, bp: backpressure{policy: b.opts.policy, tok: b.opts.token}}
}

// BuildLocking creates a LockingQueue with compile-time type safety.
// Panics if the builder is not configured with Locking().
func BuildLocking[T any](b *Builder) *LockingQueue[T] {
	if !b.opts.locking {
		panic("waitq: BuildLocking requires Locking()")
	}
	q := newLocking[T](b.opts.capacity)
	q.bp = backpressure{policy: b.opts.policy, tok: b.opts.token}
	return q
}

// backpressure applies a Policy around a single push attempt.
type backpressure struct {
	policy Policy
	tok    *Token
}

// push runs try once, then keeps retrying with backoff under Retry.
func (bp backpressure) push(try func() bool) bool {
	if try() {
		return true
	}
	if bp.policy != Retry {
		return false
	}
	backoff := iox.Backoff{}
	for bp.tok == nil || !bp.tok.Done() {
		backoff.Wait()
		if try() {
			return true
		}
	}
	return false
}

// roundToPow2 rounds n up to the next power of 2.
func roundToPow2(n int) int {
	if n < 2 {
		return 2
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return n + 1
}

// ptrSize is the size of a pointer in bytes.
const ptrSize = int(unsafe.Sizeof(uintptr(0)))

// pad is cache line padding to prevent false sharing.
type pad [64]byte

// padPtr is padding to fill cache line after a sequence and a pointer.
type padPtr [64 - 8 - ptrSize]byte
