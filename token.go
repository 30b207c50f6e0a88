// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package waitq

import "code.hybscloud.com/atomix"

// Token is a cooperative termination flag shared by producers, the
// consumer and the shutdown path.
//
// Done is a single atomic load, cheap enough to poll between every push
// and pop. Cancel may be called from any goroutine, including a signal
// handler goroutine, at any time.
//
// Cancelling a Token does not interrupt a blocked Wait. The shutdown path
// must follow Cancel with Queue.Wakeup so the consumer re-checks Done.
type Token struct {
	done atomix.Bool
}

// NewToken creates a Token that is not cancelled.
func NewToken() *Token {
	return &Token{}
}

// Done reports whether Cancel has been called.
func (t *Token) Done() bool {
	return t.done.LoadAcquire()
}

// Cancel marks the token done. Safe to call multiple times.
func (t *Token) Cancel() {
	t.done.StoreRelease(true)
}
