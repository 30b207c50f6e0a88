// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package waitq_test

import (
	"sync"
	"testing"
	"time"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/waitq"
)

// waitReturns runs f.Wait on a new goroutine and reports whether it
// returned within timeout.
func waitReturns(f *waitq.WakeupFlag, timeout time.Duration) bool {
	done := make(chan struct{})
	go func() {
		f.Wait()
		close(done)
	}()
	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}

// =============================================================================
// WakeupFlag - Basic Semantics
// =============================================================================

// TestWakeupFlagZeroValue tests that the zero value starts clear and works.
func TestWakeupFlagZeroValue(t *testing.T) {
	var f waitq.WakeupFlag
	if f.IsSet() {
		t.Fatalf("IsSet: got true, want false")
	}
	f.Set()
	if !f.IsSet() {
		t.Fatalf("IsSet after Set: got false, want true")
	}
	f.Wait() // fast path
	if f.IsSet() {
		t.Fatalf("IsSet after Wait: got true, want false")
	}
}

// TestWakeupFlagCoalesce tests that repeated Sets between two Wait
// returns produce exactly one wakeup.
func TestWakeupFlagCoalesce(t *testing.T) {
	if waitq.RaceEnabled {
		t.Skip("skip: atomix orderings are invisible to the race detector")
	}
	var f waitq.WakeupFlag
	for range 5 {
		f.Set()
	}
	if !waitReturns(&f, time.Second) {
		t.Fatalf("Wait after Set: did not return")
	}
	if f.IsSet() {
		t.Fatalf("IsSet after Wait: got true, want false")
	}

	// The five Sets were consumed by one Wait; the next Wait must block.
	done := make(chan struct{})
	go func() {
		f.Wait()
		close(done)
	}()
	select {
	case <-done:
		t.Fatalf("second Wait returned without a Set")
	case <-time.After(50 * time.Millisecond):
	}
	f.Set()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("second Wait did not return after Set")
	}
}

// TestWakeupFlagSlowPath tests a Set that arrives after the waiter parked.
func TestWakeupFlagSlowPath(t *testing.T) {
	if waitq.RaceEnabled {
		t.Skip("skip: atomix orderings are invisible to the race detector")
	}
	var f waitq.WakeupFlag
	time.AfterFunc(20*time.Millisecond, f.Set)
	if !waitReturns(&f, 5*time.Second) {
		t.Fatalf("Wait: did not return after delayed Set")
	}
	if f.IsSet() {
		t.Fatalf("IsSet after Wait: got true, want false")
	}
}

// =============================================================================
// WakeupFlag - Lost Wakeup Window
// =============================================================================

// TestWakeupFlagSetInWindow tests a Set that lands between the waiter's
// failed fast path and its lock acquisition.
func TestWakeupFlagSetInWindow(t *testing.T) {
	if waitq.RaceEnabled {
		t.Skip("skip: atomix orderings are invisible to the race detector")
	}
	var f waitq.WakeupFlag
	f.SetBeforeBlock(func() {
		done := make(chan struct{})
		go func() {
			f.Set()
			close(done)
		}()
		<-done
	})
	if !waitReturns(&f, 5*time.Second) {
		t.Fatalf("Wait: lost wakeup for Set inside the check-then-block window")
	}
	if f.IsSet() {
		t.Fatalf("IsSet after Wait: got true, want false")
	}
}

// TestWakeupFlagSetDuringDelay tests a Set racing a delayed waiter.
// The hook stalls the waiter so the setter runs concurrently with the
// slow-path check.
func TestWakeupFlagSetDuringDelay(t *testing.T) {
	if waitq.RaceEnabled {
		t.Skip("skip: atomix orderings are invisible to the race detector")
	}
	var f waitq.WakeupFlag
	f.SetBeforeBlock(func() {
		go f.Set()
		time.Sleep(5 * time.Millisecond)
	})
	for i := range 20 {
		if !waitReturns(&f, 5*time.Second) {
			t.Fatalf("round %d: Wait did not return", i)
		}
	}
}

// TestWakeupFlagThreeSetters tests three concurrent setters against one
// waiter: exactly one Wait returns and the flag ends clear.
func TestWakeupFlagThreeSetters(t *testing.T) {
	if waitq.RaceEnabled {
		t.Skip("skip: atomix orderings are invisible to the race detector")
	}
	var f waitq.WakeupFlag
	f.SetBeforeBlock(func() {
		var wg sync.WaitGroup
		for range 3 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				f.Set()
			}()
		}
		wg.Wait()
	})

	if !waitReturns(&f, 5*time.Second) {
		t.Fatalf("Wait: did not return after three Sets")
	}
	if f.IsSet() {
		t.Fatalf("IsSet after Wait: got true, want false (Sets must coalesce)")
	}

	f.SetBeforeBlock(nil)
	if waitReturns(&f, 50*time.Millisecond) {
		t.Fatalf("second Wait returned: three Sets produced more than one wakeup")
	}
	f.Set() // release the pending waiter
}

// TestWakeupFlagPingPong alternates Set and Wait many times. Every Set
// happens after the waiter acknowledged the previous round, so a lost
// wakeup stalls the round.
func TestWakeupFlagPingPong(t *testing.T) {
	if waitq.RaceEnabled {
		t.Skip("skip: atomix orderings are invisible to the race detector")
	}
	const rounds = 2000
	var f waitq.WakeupFlag
	ack := make(chan struct{})
	go func() {
		for range rounds {
			f.Wait()
			ack <- struct{}{}
		}
	}()
	for i := range rounds {
		f.Set()
		select {
		case <-ack:
		case <-time.After(5 * time.Second):
			t.Fatalf("round %d: lost wakeup", i)
		}
	}
}

// TestWakeupFlagManySetters tests N setters hammering the flag while one
// waiter consumes. Every Set must be followed by a Wait return.
func TestWakeupFlagManySetters(t *testing.T) {
	if waitq.RaceEnabled {
		t.Skip("skip: atomix orderings are invisible to the race detector")
	}
	const (
		setters = 16
		perSet  = 500
	)
	var f waitq.WakeupFlag
	var stop atomix.Bool
	var wakeups atomix.Int64

	waiterDone := make(chan struct{})
	go func() {
		defer close(waiterDone)
		for !stop.LoadAcquire() {
			f.Wait()
			wakeups.Add(1)
		}
	}()

	var wg sync.WaitGroup
	for range setters {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range perSet {
				f.Set()
			}
		}()
	}
	wg.Wait()

	stop.StoreRelease(true)
	f.Set()
	select {
	case <-waiterDone:
	case <-time.After(5 * time.Second):
		t.Fatalf("waiter did not observe the final Set")
	}
	if wakeups.Load() < 1 || wakeups.Load() > setters*perSet+1 {
		t.Fatalf("wakeups: got %d, want 1..%d", wakeups.Load(), setters*perSet+1)
	}
}
