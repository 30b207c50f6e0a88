// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package trace

import (
	"fmt"
	"time"
)

// Kind tags an Event.
type Kind uint8

const (
	// KindMessage is a fixed trace message, recorded only.
	KindMessage Kind = iota
	// KindMessageNow is a fixed message also written to the live logger.
	KindMessageNow
	// KindMessageFmt is a formatted trace message, recorded only.
	KindMessageFmt
	// KindMessageFmtNow is a formatted message also written to the live logger.
	KindMessageFmtNow
	// KindEmptyQueue records how many values one drain pass popped.
	KindEmptyQueue
)

// Immediate reports whether events of this kind are written to the live
// logger when they are created, regardless of whether they are recorded.
func (k Kind) Immediate() bool {
	switch k {
	case KindMessageNow, KindMessageFmtNow:
		return true
	default:
		return false
	}
}

func (k Kind) String() string {
	switch k {
	case KindMessage:
		return "message"
	case KindMessageNow:
		return "message-now"
	case KindMessageFmt:
		return "message-fmt"
	case KindMessageFmtNow:
		return "message-fmt-now"
	case KindEmptyQueue:
		return "empty-queue"
	default:
		return "unknown"
	}
}

// Event is one diagnostic record. At is captured with time.Now, so it
// carries a monotonic reading and offsets between events are immune to
// wall clock changes.
type Event struct {
	Kind   Kind
	At     time.Time
	Text   string // message kinds
	Popped int    // KindEmptyQueue
}

// Message renders the event text.
func (e Event) Message() string {
	switch e.Kind {
	case KindEmptyQueue:
		return fmt.Sprintf("popped %d elements", e.Popped)
	default:
		return e.Text
	}
}

// FormatOffset renders d as seconds with nanosecond precision, e.g. "1.000250000".
func FormatOffset(d time.Duration) string {
	sign := ""
	if d < 0 {
		sign = "-"
		d = -d
	}
	return fmt.Sprintf("%s%d.%09d", sign, d/time.Second, d%time.Second)
}
