// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package waitq

// Drain pops values and passes them to fn until the queue reports empty or
// tok is cancelled. tok is checked before every pop; a nil tok drains
// until empty. Returns the number of values passed to fn.
func Drain[T any](q Consumer[T], tok *Token, fn func(T)) int {
	n := 0
	for tok == nil || !tok.Done() {
		v, ok := q.Pop()
		if !ok {
			break
		}
		fn(v)
		n++
	}
	return n
}

// Consume runs the consumer loop: Wait, then Drain, until tok is
// cancelled. Returns the number of values passed to fn.
//
// tok is the only way to stop the loop. Panics if tok is nil.
//
// Values still queued when tok is cancelled are left in the queue. The
// shutdown path should cancel tok only after producers have finished and
// the queue has had time to drain, then call Wakeup, then inspect Empty.
func Consume[T any](q Consumer[T], tok *Token, fn func(T)) int {
	if tok == nil {
		panic("waitq: Consume requires a non-nil Token")
	}
	n := 0
	for !tok.Done() {
		q.Wait()
		n += Drain(q, tok, fn)
	}
	return n
}
