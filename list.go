// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package waitq

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// list is an unbounded Michael-Scott queue of handles.
//
// head always points at a dummy node; the first live handle sits in
// head.next. Nodes are reclaimed by the garbage collector, so there is
// no ABA hazard on the head and tail pointers.
type list[T any] struct {
	_    pad
	head atomix.Pointer[listNode[T]]
	_    pad
	tail atomix.Pointer[listNode[T]]
	_    pad
}

type listNode[T any] struct {
	ptr  atomix.Pointer[T]
	next atomix.Pointer[listNode[T]]
}

func newList[T any]() *list[T] {
	l := &list[T]{}
	dummy := &listNode[T]{}
	l.head.StoreRelease(dummy)
	l.tail.StoreRelease(dummy)
	return l
}

func (l *list[T]) enqueue(p *T) bool {
	n := &listNode[T]{}
	n.ptr.StoreRelease(p)

	sw := spin.Wait{}
	for {
		tail := l.tail.LoadAcquire()
		next := tail.next.LoadAcquire()
		if tail != l.tail.LoadAcquire() {
			sw.Once()
			continue
		}
		if next != nil {
			// Tail is lagging; help it along.
			l.tail.CompareAndSwapAcqRel(tail, next)
			continue
		}
		if tail.next.CompareAndSwapAcqRel(nil, n) {
			l.tail.CompareAndSwapAcqRel(tail, n)
			return true
		}
		sw.Once()
	}
}

func (l *list[T]) dequeue() (*T, bool) {
	sw := spin.Wait{}
	for {
		head := l.head.LoadAcquire()
		tail := l.tail.LoadAcquire()
		next := head.next.LoadAcquire()
		if head != l.head.LoadAcquire() {
			sw.Once()
			continue
		}
		if next == nil {
			return nil, false
		}
		if head == tail {
			l.tail.CompareAndSwapAcqRel(tail, next)
			continue
		}
		p := next.ptr.LoadAcquire()
		if l.head.CompareAndSwapAcqRel(head, next) {
			// next is the new dummy; drop its reference to the handle.
			next.ptr.StoreRelease(nil)
			return p, true
		}
		sw.Once()
	}
}

func (l *list[T]) empty() bool {
	return l.head.LoadAcquire().next.LoadAcquire() == nil
}

func (l *list[T]) capacity() int {
	return 0
}
