// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package waitq provides single-consumer blocking queues for many producers.
//
// Two interchangeable variants implement the same [Queue] contract:
//
//   - [NonBlockingQueue]: lock-free [OwnershipQueue] plus a [WakeupFlag]
//   - [LockingQueue]: one mutex, one condition variable, a plain FIFO
//
// The variants differ only in internal concurrency strategy, which makes
// LockingQueue both a correctness oracle and a throughput baseline.
//
// # Quick Start
//
//	q := waitq.NewNonBlocking[Event](0) // unbounded
//	q := waitq.NewLocking[Event](0)     // same contract, mutex-based
//
// Builder API:
//
//	q := waitq.Build[Event](waitq.New(0))                        // → NonBlockingQueue
//	q := waitq.Build[Event](waitq.New(0).Locking())              // → LockingQueue
//	q := waitq.Build[Event](waitq.New(1024).SingleConsumer())    // wait-free pop
//	q := waitq.Build[Event](waitq.New(1024).Retry(tok))          // back off while full
//
// # Consumer Loop
//
// Exactly one goroutine consumes. It alternates Wait with a drain loop:
//
//	for !tok.Done() {
//	    q.Wait()
//	    for !tok.Done() {
//	        ev, ok := q.Pop()
//	        if !ok {
//	            break
//	        }
//	        handle(ev)
//	    }
//	}
//
// [Consume] and [Drain] implement this loop.
//
// # Shutdown
//
// Cancellation is cooperative. A [Token] is polled by producers and the
// consumer; it does not interrupt a blocked Wait. Shut down in this order:
//
//	prodWg.Wait()       // 1. join producers
//	if !q.Empty() {     // 2. optional grace period
//	    time.Sleep(grace)
//	}
//	tok.Cancel()        // 3. set termination
//	q.Wakeup()          // 4. unblock Wait so the consumer sees it
//	<-consumerDone      // 5. join consumer
//	if !q.Empty() {     // 6. values left behind: consumer starved
//	    slog.Warn("queue not empty after shutdown")
//	}
//
// # Ownership
//
// [OwnershipQueue] moves *T handles through a non-blocking structure:
//
//	p := &Payload{...}
//	if err := oq.PushPtr(p); err != nil {
//	    // ErrWouldBlock: queue full, p is still ours
//	}
//	// on success p belongs to the queue; do not touch it
//
//	p, err := oq.PopPtr() // p now belongs to the caller
//
// Every pushed value is either popped exactly once or, through Dispose,
// released exactly once. A failed push never retains the handle.
//
// # Wakeup Flag
//
// [WakeupFlag] turns non-blocking push events into a blocking wait. The
// common cases are one CAS each:
//
//	Set:  clear→set CAS; only on success lock+unlock, then signal
//	Wait: set→clear CAS; only on failure lock, re-check, sleep
//
// The empty critical section in Set closes the window between a waiter's
// atomic check and its sleep, so no wakeup is lost. Repeated Set calls
// between two Wait returns coalesce into one.
//
// # Capacity
//
// Capacity 0 means unbounded (lock-free linked list). A positive capacity
// rounds up to the next power of 2 for both variants:
//
//	q := waitq.NewNonBlocking[int](3)    // Actual capacity: 4
//	q := waitq.NewLocking[int](1000)     // Actual capacity: 1024
//
// A full bounded queue rejects the push by default; the caller keeps the
// value. [Builder.Retry] switches to backing off until space frees up.
//
// # Race Detection
//
// The lock-free structures publish plain fields through atomix sequence
// numbers, which the race detector cannot observe. Stress tests for the
// bounded lock-free rings are excluded via //go:build !race.
//
// # Dependencies
//
// This package uses [code.hybscloud.com/iox] for semantic errors and
// backoff, [code.hybscloud.com/atomix] for atomics with explicit memory
// ordering, and [code.hybscloud.com/spin] for CPU pause in CAS loops.
package waitq
