// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package trace records timestamped diagnostic events through a
// waitq.OwnershipQueue and replays them later in FIFO order.
//
// Recording is cheap enough for hot loops: when the log is disabled,
// routine events are skipped before anything is allocated. Immediate
// kinds (the "Now" variants) still reach the live logger, so operator
// messages surface even with tracing off.
//
//	log := trace.New(trace.WithEnabled(true))
//	log.Message("-> push elem")
//	log.MessagefNow("caught signal %v", sig) // printed now and recorded
//	log.EmptyQueue(n)
//	...
//	log.Dump(os.Stdout)
package trace

import (
	"fmt"
	"io"
	"iter"
	"log/slog"
	"time"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/waitq"
)

// Log is a multi-producer diagnostic event log.
//
// Any goroutine may record. Draining (All, Dump) must happen on one
// goroutine at a time.
type Log struct {
	q       *waitq.OwnershipQueue[Event]
	held    atomix.Pointer[Event] // returned by a failed Dump, drained first
	enabled atomix.Bool
	dropped atomix.Int64
	live    *slog.Logger
}

// Option configures a Log.
type Option func(*logConfig)

type logConfig struct {
	capacity int
	enabled  bool
	live     *slog.Logger
}

// WithCapacity bounds the log. Events recorded while it is full are
// dropped and counted. The default is unbounded.
func WithCapacity(n int) Option {
	return func(c *logConfig) { c.capacity = n }
}

// WithEnabled sets the initial recording state. The default is disabled.
func WithEnabled(on bool) Option {
	return func(c *logConfig) { c.enabled = on }
}

// WithLogger sets the live logger for immediate kinds. The default is
// slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *logConfig) { c.live = l }
}

// New creates a Log.
func New(opts ...Option) *Log {
	cfg := logConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.live == nil {
		cfg.live = slog.Default()
	}
	l := &Log{
		q:    waitq.NewOwnershipQueue[Event](cfg.capacity),
		live: cfg.live,
	}
	l.enabled.Store(cfg.enabled)
	return l
}

// Enabled reports whether routine events are being recorded.
func (l *Log) Enabled() bool {
	return l.enabled.Load()
}

// SetEnabled turns recording on or off at runtime.
func (l *Log) SetEnabled(on bool) {
	l.enabled.Store(on)
}

// Dropped returns the number of events lost to a full bounded log.
func (l *Log) Dropped() int64 {
	return l.dropped.Load()
}

// Message records a fixed message.
func (l *Log) Message(msg string) {
	if !l.Enabled() {
		return
	}
	l.record(Event{Kind: KindMessage, At: time.Now(), Text: msg})
}

// MessageNow writes msg to the live logger and records it.
func (l *Log) MessageNow(msg string) {
	l.emit(Event{Kind: KindMessageNow, At: time.Now(), Text: msg})
}

// Messagef records a formatted message. Formatting is skipped while the
// log is disabled.
func (l *Log) Messagef(format string, args ...any) {
	if !l.Enabled() {
		return
	}
	l.record(Event{Kind: KindMessageFmt, At: time.Now(), Text: fmt.Sprintf(format, args...)})
}

// MessagefNow writes a formatted message to the live logger and records it.
func (l *Log) MessagefNow(format string, args ...any) {
	l.emit(Event{Kind: KindMessageFmtNow, At: time.Now(), Text: fmt.Sprintf(format, args...)})
}

// EmptyQueue records that a drain pass popped n values.
func (l *Log) EmptyQueue(n int) {
	if !l.Enabled() {
		return
	}
	l.record(Event{Kind: KindEmptyQueue, At: time.Now(), Popped: n})
}

// Record applies the kind's side effect to a prebuilt event and records
// it if the log is enabled. A zero At is stamped with time.Now.
func (l *Log) Record(ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
	l.emit(ev)
}

func (l *Log) emit(ev Event) {
	if ev.Kind.Immediate() {
		l.live.Info(ev.Message(), "kind", ev.Kind.String())
	}
	if l.Enabled() {
		l.record(ev)
	}
}

func (l *Log) record(ev Event) {
	if err := l.q.Push(ev); err != nil {
		l.dropped.Add(1)
	}
}

// Empty reports whether no events are waiting to be drained.
func (l *Log) Empty() bool {
	return l.held.LoadAcquire() == nil && l.q.Empty()
}

// next returns the held event if any, else pops the queue.
func (l *Log) next() (Event, bool) {
	if p := l.held.LoadAcquire(); p != nil {
		l.held.StoreRelease(nil)
		return *p, true
	}
	ev, err := l.q.Pop()
	return ev, err == nil
}

// All drains the log in FIFO order. Each event is yielded with its offset
// from the first event drained by this call.
func (l *Log) All() iter.Seq2[time.Duration, Event] {
	return func(yield func(time.Duration, Event) bool) {
		var start time.Time
		first := true
		for {
			ev, ok := l.next()
			if !ok {
				return
			}
			if first {
				start = ev.At
				first = false
			}
			if !yield(ev.At.Sub(start), ev) {
				return
			}
		}
	}
}

// Dump drains the log to w, one "offset: message" line per event.
// Returns the number of events written. On a write error the event that
// failed stays in the log and the next drain starts with it.
func (l *Log) Dump(w io.Writer) (int, error) {
	n := 0
	for off, ev := range l.All() {
		if _, err := fmt.Fprintf(w, "%s: %s\n", FormatOffset(off), ev.Message()); err != nil {
			l.held.StoreRelease(&ev)
			return n, fmt.Errorf("trace: dump: %w", err)
		}
		n++
	}
	return n, nil
}
