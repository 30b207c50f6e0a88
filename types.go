// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package waitq

// Queue is the single-consumer blocking queue contract.
//
// Any number of goroutines may push and call Wakeup. Exactly one goroutine
// consumes: it alternates Wait with a drain loop of Pop calls until Pop
// reports empty, then waits again.
//
// NonBlockingQueue and LockingQueue both satisfy Queue and are observably
// equivalent; only their internal locking and performance differ.
//
// Example:
//
//	q := waitq.NewNonBlocking[Job](0)
//	tok := waitq.NewToken()
//
//	go func() { // consumer
//	    for !tok.Done() {
//	        q.Wait()
//	        for !tok.Done() {
//	            job, ok := q.Pop()
//	            if !ok {
//	                break
//	            }
//	            job.Run()
//	        }
//	    }
//	}()
//
//	q.Push(job) // from any producer
//
//	// shutdown
//	tok.Cancel()
//	q.Wakeup()
type Queue[T any] interface {
	Producer[T]
	Consumer[T]

	// Wakeup raises the readiness signal without pushing a value.
	// Used by the shutdown path to unblock Wait. Safe from any goroutine.
	Wakeup()

	// Empty reports whether no values were queued at the time of the call.
	// Advisory only: it is not a synchronization point.
	Empty() bool

	// Cap returns the capacity, or 0 if unbounded.
	Cap() int

	// Dispose releases every remaining value exactly once.
	// See OwnershipQueue.Dispose.
	Dispose(release func(*T)) int
}

// Producer is the push side of a Queue.
type Producer[T any] interface {
	// Push copies v into the queue and signals readiness.
	// Returns false if the queue is full; v is then not queued.
	Push(v T) bool

	// PushPtr moves p into the queue and signals readiness.
	// Returns false if the queue is full; the caller still owns p.
	PushPtr(p *T) bool
}

// Consumer is the single-consumer side of a Queue.
type Consumer[T any] interface {
	// Pop removes the oldest value. Returns false if none is available.
	// Never blocks.
	Pop() (T, bool)

	// PopPtr removes the oldest value and transfers its handle.
	// Returns (nil, false) if none is available. Never blocks.
	PopPtr() (*T, bool)

	// Wait blocks until readiness has been signaled since the last Wait
	// returned, then consumes the signal. Consumer goroutine only.
	Wait()
}

var (
	_ Queue[int] = (*NonBlockingQueue[int])(nil)
	_ Queue[int] = (*LockingQueue[int])(nil)
)
