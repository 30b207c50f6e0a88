// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package waitq

// SetBeforeBlock installs a hook that Wait runs after its fast path fails
// and before it takes the lock.
func (f *WakeupFlag) SetBeforeBlock(hook func()) {
	f.beforeBlock = hook
}

// SetBeforeBlock installs the hook on the queue's wakeup flag.
func (q *NonBlockingQueue[T]) SetBeforeBlock(hook func()) {
	q.flag.beforeBlock = hook
}

// RoundToPow2 exposes capacity rounding.
var RoundToPow2 = roundToPow2
