// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package waitq

import (
	"sync"

	"code.hybscloud.com/atomix"
)

const (
	flagClear uint64 = 0
	flagSet   uint64 = 1
)

// WakeupFlag is a binary readiness signal for a single waiter.
//
// The state lives in one atomic word. Set and Wait only touch the mutex
// and condition variable when a waiter actually has to sleep, so a busy
// producer/consumer pair never takes a lock.
//
// Any number of Set calls between two Wait returns coalesce into a single
// wakeup. A Set that happens after Wait last observed the flag clear is
// never lost.
//
// The zero value is a clear flag ready for use. A WakeupFlag must not be
// copied after first use.
type WakeupFlag struct {
	_     pad
	state atomix.Uint64
	_     pad
	mu    sync.Mutex
	cond  sync.Cond

	beforeBlock func() // test hook, runs between the fast path and the lock
}

// Set raises the flag and wakes the waiter if the flag was clear.
//
// Only the clear→set transition does any work. The empty critical section
// orders this Set against a waiter that has seen the flag clear but has
// not yet parked on the condition variable: either the waiter re-checks
// after we unlock and sees the flag, or it is already parked and receives
// the signal.
func (f *WakeupFlag) Set() {
	if !f.state.CompareAndSwapAcqRel(flagClear, flagSet) {
		return
	}
	f.mu.Lock()
	f.mu.Unlock()
	f.cond.Signal()
}

// Wait blocks until the flag is set, then clears it.
//
// Fast path: a set flag is consumed with one CAS and no lock.
// Slow path: re-check under the lock and sleep on the condition variable,
// looping on spurious wakeups.
func (f *WakeupFlag) Wait() {
	if f.state.CompareAndSwapAcqRel(flagSet, flagClear) {
		return
	}
	if f.beforeBlock != nil {
		f.beforeBlock()
	}

	f.mu.Lock()
	f.lazyInit()
	for f.state.LoadAcquire() == flagClear {
		f.cond.Wait()
	}
	f.mu.Unlock()
	f.state.StoreRelease(flagClear)
}

// IsSet reports whether the flag is currently set. Advisory only.
func (f *WakeupFlag) IsSet() bool {
	return f.state.LoadAcquire() == flagSet
}

// lazyInit binds the condition variable to the mutex so the zero value
// works. Called with mu held; Signal does not read L.
func (f *WakeupFlag) lazyInit() {
	if f.cond.L == nil {
		f.cond.L = &f.mu
	}
}
