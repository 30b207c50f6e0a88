// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package bench drives one consumer and many producers through a
// waitq.Queue and measures the run.
//
// A run follows the package shutdown order: join producers, give the
// consumer a grace period if values remain, cancel the token, wake the
// consumer, join it, and report anything left behind as starvation.
package bench

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/waitq"
	"code.hybscloud.com/waitq/trace"
)

// Variant names a Queue implementation.
type Variant string

const (
	NonBlocking Variant = "nonblocking"
	Locking     Variant = "locking"
)

// ParseVariant maps a variant name, case-insensitively, to a Variant.
func ParseVariant(s string) (Variant, error) {
	switch v := Variant(strings.ToLower(strings.TrimSpace(s))); v {
	case NonBlocking, Locking:
		return v, nil
	default:
		return "", fmt.Errorf("bench: unknown variant %q", s)
	}
}

// Config describes one run.
type Config struct {
	Variant   Variant
	Producers int
	Produces  int // values per producer
	Capacity  int // 0 = unbounded
	Policy    waitq.Policy
	Throttle  time.Duration // consumer sleep before each Wait
	Jitter    time.Duration // max random producer sleep before each push, 0 = none
	Grace     time.Duration // drain grace period after producers finish
}

// Payload is the value type pushed by producers.
type Payload [4]int

// NewPayload fills a Payload with values in [1,100].
func NewPayload(rng *rand.Rand) Payload {
	var p Payload
	for i := range p {
		p[i] = 1 + rng.IntN(100)
	}
	return p
}

// NewQueue builds the queue cfg asks for. tok bounds Retry backoff.
func NewQueue(cfg Config, tok *waitq.Token) waitq.Queue[Payload] {
	b := waitq.New(cfg.Capacity).SingleConsumer()
	if cfg.Variant == Locking {
		b = b.Locking()
	}
	if cfg.Policy == waitq.Retry {
		b = b.Retry(tok)
	}
	return waitq.Build[Payload](b)
}

// Result summarizes one run.
type Result struct {
	Variant    Variant       `json:"variant"`
	Producers  int           `json:"producers"`
	Pushed     int64         `json:"pushed"`
	Rejected   int64         `json:"rejected"`
	Popped     int64         `json:"popped"`
	Remaining  int           `json:"remaining"`
	Elapsed    time.Duration `json:"elapsed_ns"`
	Throughput float64       `json:"throughput_msgs_sec"` // popped per second
	Starved    bool          `json:"starved"`
}

// Run executes one run of cfg against q and returns its Result.
//
// tok must be fresh and is cancelled by Run. Cancelling ctx stops the
// producers early, as an interrupt signal does. log receives trace events
// and may be disabled. Values left in q after the consumer exits are
// disposed and counted in Result.Remaining.
func Run(ctx context.Context, cfg Config, q waitq.Queue[Payload], tok *waitq.Token, log *trace.Log, logger *slog.Logger) Result {
	var pushed, rejected, popped atomix.Int64

	stop := context.AfterFunc(ctx, func() {
		log.MessagefNow("Caught signal: %v", context.Cause(ctx))
		tok.Cancel()
		q.Wakeup()
	})
	defer stop()

	start := time.Now()

	consumerDone := make(chan struct{})
	go func() {
		defer close(consumerDone)
		cnt := 0
		for !tok.Done() {
			log.EmptyQueue(cnt)
			if cfg.Throttle > 0 {
				time.Sleep(cfg.Throttle)
			}
			log.Message("sleeping")
			q.Wait()
			log.Message("woke up")
			cnt = waitq.Drain(q, tok, func(Payload) {
				log.Message("<- pop elem")
			})
			popped.Add(int64(cnt))
		}
	}()

	var prodWg sync.WaitGroup
	for range cfg.Producers {
		prodWg.Add(1)
		go func() {
			defer prodWg.Done()
			rng := rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
			for k := 0; k < cfg.Produces && !tok.Done(); k++ {
				if cfg.Jitter > 0 {
					time.Sleep(time.Duration(1 + rng.Int64N(int64(cfg.Jitter))))
				}
				p := NewPayload(rng)
				log.Message("-> push elem")
				if q.PushPtr(&p) {
					pushed.Add(1)
				} else {
					rejected.Add(1)
				}
			}
		}()
	}

	prodWg.Wait()
	if !q.Empty() {
		log.MessageNow("Queue not empty yet, wait a bit")
		time.Sleep(cfg.Grace)
	}

	log.Message("*** Main: QUIT ***")
	tok.Cancel()
	q.Wakeup()
	<-consumerDone

	elapsed := time.Since(start)
	log.MessagefNow("Total time: %v", elapsed)

	res := Result{
		Variant:   cfg.Variant,
		Producers: cfg.Producers,
		Pushed:    pushed.Load(),
		Rejected:  rejected.Load(),
		Popped:    popped.Load(),
		Elapsed:   elapsed,
	}
	if elapsed > 0 {
		res.Throughput = float64(res.Popped) / elapsed.Seconds()
	}
	if !q.Empty() {
		log.MessageNow("QUEUE STILL NOT EMPTY! CONSUMER STARVED?")
		res.Starved = true
		res.Remaining = q.Dispose(nil)
		logger.Warn("queue not empty after shutdown",
			"variant", cfg.Variant, "remaining", res.Remaining)
	}
	return res
}
