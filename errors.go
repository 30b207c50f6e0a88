// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package waitq

import "code.hybscloud.com/iox"

// ErrWouldBlock reports that an OwnershipQueue operation cannot proceed now.
//
// For PushPtr/Push: the bounded queue is full. The caller still owns the value.
// For PopPtr/Pop: no value is available.
//
// It is a control flow signal, not a failure. This is an alias for
// [iox.ErrWouldBlock] so callers can classify it with the iox helpers.
//
// Example:
//
//	backoff := iox.Backoff{}
//	for {
//	    err := q.PushPtr(p)
//	    if err == nil {
//	        break // p now belongs to the queue
//	    }
//	    if !waitq.IsWouldBlock(err) {
//	        return err
//	    }
//	    backoff.Wait() // p is still ours
//	}
var ErrWouldBlock = iox.ErrWouldBlock

// IsWouldBlock reports whether err indicates the operation would block.
// Delegates to [iox.IsWouldBlock] for wrapped error support.
func IsWouldBlock(err error) bool {
	return iox.IsWouldBlock(err)
}

// IsSemantic reports whether err is a control flow signal (not a failure).
// Delegates to [iox.IsSemantic].
func IsSemantic(err error) bool {
	return iox.IsSemantic(err)
}

// IsNonFailure reports whether err is nil or a control flow signal.
// Delegates to [iox.IsNonFailure].
func IsNonFailure(err error) bool {
	return iox.IsNonFailure(err)
}
