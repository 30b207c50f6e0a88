// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build !race

// Stress tests over the bounded lock-free rings, excluded from race
// detection: slot handles are published through atomix sequence numbers,
// which the race detector cannot observe.

package waitq_test

import (
	"runtime"
	"sync"
	"testing"
	"time"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/iox"
	"code.hybscloud.com/waitq"
)

// =============================================================================
// High Contention - Bounded OwnershipQueue
// =============================================================================

// TestOwnershipQueueHighContention runs many producers and consumers
// against a tiny ring and checks that every value is seen exactly once.
func TestOwnershipQueueHighContention(t *testing.T) {
	const (
		producers = 16
		consumers = 4
		perProd   = 2000
		total     = producers * perProd
	)
	q := waitq.NewOwnershipQueue[int](4)

	seen := make([]atomix.Int32, total)
	var consumed atomix.Int64
	var wg sync.WaitGroup

	for p := range producers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			backoff := iox.Backoff{}
			for i := range perProd {
				v := p*perProd + i
				for q.PushPtr(&v) != nil {
					backoff.Wait()
				}
				backoff.Reset()
			}
		}()
	}
	for range consumers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for consumed.Load() < total {
				p, err := q.PopPtr()
				if err != nil {
					runtime.Gosched()
					continue
				}
				seen[*p].Add(1)
				consumed.Add(1)
			}
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(30 * time.Second):
		t.Fatalf("timeout: consumed %d of %d", consumed.Load(), total)
	}
	for i := range seen {
		if n := seen[i].Load(); n != 1 {
			t.Fatalf("value %d seen %d times, want 1", i, n)
		}
	}
}

// =============================================================================
// High Contention - Bounded NonBlockingQueue
// =============================================================================

// TestNonBlockingBoundedNoLoss runs retrying producers against a small
// single-consumer queue driven by Consume.
func TestNonBlockingBoundedNoLoss(t *testing.T) {
	const (
		producers = 10
		perProd   = 1000
		total     = producers * perProd
	)
	for _, single := range []bool{false, true} {
		tok := waitq.NewToken()
		b := waitq.New(8).Retry(tok)
		if single {
			b = b.SingleConsumer()
		}
		q := waitq.BuildNonBlocking[int](b)

		seen := make([]int, total)
		var received atomix.Int64
		consumerDone := make(chan struct{})
		go func() {
			defer close(consumerDone)
			waitq.Consume(q, tok, func(v int) {
				seen[v]++
				received.Add(1)
			})
		}()

		var wg sync.WaitGroup
		for p := range producers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := range perProd {
					if !q.Push(p*perProd + i) {
						t.Errorf("Push under Retry: got false")
						return
					}
				}
			}()
		}
		wg.Wait()

		waitForCount(t, 30*time.Second, &received, total, "bounded drain")
		tok.Cancel()
		q.Wakeup()
		<-consumerDone

		for v, n := range seen {
			if n != 1 {
				t.Fatalf("single=%v value %d seen %d times, want 1", single, v, n)
			}
		}
	}
}
