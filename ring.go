// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package waitq

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// store is the non-blocking structure behind an OwnershipQueue.
//
// Implementations hold owning handles only. enqueue either commits the
// handle or leaves the store untouched; dequeue hands a committed handle
// back exactly once and drops the store's reference to it.
type store[T any] interface {
	enqueue(p *T) bool
	dequeue() (*T, bool)
	empty() bool
	capacity() int
}

// ring is a CAS-based multi-producer multi-consumer bounded ring of handles.
//
// Each slot carries a sequence number:
//   - seq == pos:            free, producer at pos may claim it
//   - seq == pos+1:          committed, consumer at pos may take it
//   - seq == pos+capacity:   released for the next lap
//
// Memory: n slots for capacity n
type ring[T any] struct {
	_    pad
	tail atomix.Uint64 // Producer cursor
	_    pad
	head atomix.Uint64 // Consumer cursor
	_    pad
	buf  []ringSlot[T]
	mask uint64
	n    uint64
}

type ringSlot[T any] struct {
	seq atomix.Uint64
	ptr *T
	_   padPtr
}

func newRing[T any](capacity int) *ring[T] {
	n := uint64(roundToPow2(capacity))
	r := &ring[T]{
		buf:  make([]ringSlot[T], n),
		mask: n - 1,
		n:    n,
	}
	for i := uint64(0); i < n; i++ {
		r.buf[i].seq.StoreRelaxed(i)
	}
	return r
}

func (r *ring[T]) enqueue(p *T) bool {
	sw := spin.Wait{}
	for {
		tail := r.tail.LoadAcquire()
		slot := &r.buf[tail&r.mask]
		diff := int64(slot.seq.LoadAcquire()) - int64(tail)

		if diff == 0 {
			if r.tail.CompareAndSwapAcqRel(tail, tail+1) {
				slot.ptr = p
				slot.seq.StoreRelease(tail + 1)
				return true
			}
		} else if diff < 0 {
			return false
		}
		sw.Once()
	}
}

func (r *ring[T]) dequeue() (*T, bool) {
	sw := spin.Wait{}
	for {
		head := r.head.LoadAcquire()
		slot := &r.buf[head&r.mask]
		diff := int64(slot.seq.LoadAcquire()) - int64(head+1)

		if diff == 0 {
			if r.head.CompareAndSwapAcqRel(head, head+1) {
				p := slot.ptr
				slot.ptr = nil
				slot.seq.StoreRelease(head + r.n)
				return p, true
			}
		} else if diff < 0 {
			return nil, false
		}
		sw.Once()
	}
}

func (r *ring[T]) empty() bool {
	return r.head.LoadAcquire() >= r.tail.LoadAcquire()
}

func (r *ring[T]) capacity() int {
	return int(r.n)
}

// ringSC is the single-consumer form of ring.
//
// Producers still CAS the tail. The consumer owns head and advances it
// without contention, so dequeue is wait-free.
type ringSC[T any] struct {
	_    pad
	head atomix.Uint64 // Written by the consumer only
	_    pad
	tail atomix.Uint64 // Producers CAS here
	_    pad
	buf  []ringSlot[T]
	mask uint64
	n    uint64
}

func newRingSC[T any](capacity int) *ringSC[T] {
	n := uint64(roundToPow2(capacity))
	r := &ringSC[T]{
		buf:  make([]ringSlot[T], n),
		mask: n - 1,
		n:    n,
	}
	for i := uint64(0); i < n; i++ {
		r.buf[i].seq.StoreRelaxed(i)
	}
	return r
}

func (r *ringSC[T]) enqueue(p *T) bool {
	sw := spin.Wait{}
	for {
		tail := r.tail.LoadAcquire()
		if tail >= r.head.LoadAcquire()+r.n {
			return false
		}

		slot := &r.buf[tail&r.mask]
		seq := slot.seq.LoadAcquire()
		if seq == tail {
			if r.tail.CompareAndSwapAcqRel(tail, tail+1) {
				slot.ptr = p
				slot.seq.StoreRelease(tail + 1)
				return true
			}
		} else if seq < tail {
			return false
		}
		sw.Once()
	}
}

func (r *ringSC[T]) dequeue() (*T, bool) {
	head := r.head.LoadRelaxed()
	slot := &r.buf[head&r.mask]
	if slot.seq.LoadAcquire() != head+1 {
		return nil, false
	}

	p := slot.ptr
	slot.ptr = nil
	slot.seq.StoreRelease(head + r.n)
	r.head.StoreRelease(head + 1)
	return p, true
}

func (r *ringSC[T]) empty() bool {
	return r.head.LoadAcquire() >= r.tail.LoadAcquire()
}

func (r *ringSC[T]) capacity() int {
	return int(r.n)
}
