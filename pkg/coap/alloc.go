package coap

import "sync/atomic"

// Allocator provides transaction buffers.
type Allocator interface {
	Alloc(size int) ([]byte, error)
	Free(buf []byte)
}

// HeapAllocator allocates from the Go heap.
type HeapAllocator struct{}

// Alloc implements Allocator.
func (HeapAllocator) Alloc(size int) ([]byte, error) {
	return make([]byte, size), nil
}

// Free implements Allocator.
func (HeapAllocator) Free([]byte) {}

// StaticAllocator lends a single preallocated buffer, for targets where
// heap allocation on every transaction is not desired.
type StaticAllocator struct {
	buf  []byte
	lent int32
}

// NewStaticAllocator creates a StaticAllocator with the capacity.
func NewStaticAllocator(capacity int) *StaticAllocator {
	return &StaticAllocator{buf: make([]byte, capacity)}
}

// Alloc implements Allocator.
func (a *StaticAllocator) Alloc(size int) ([]byte, error) {
	if size > len(a.buf) {
		return nil, ErrBufferTooSmall
	}
	if !atomic.CompareAndSwapInt32(&a.lent, 0, 1) {
		return nil, ErrBufferBusy
	}
	return a.buf[:size:size], nil
}

// Free implements Allocator.
func (a *StaticAllocator) Free([]byte) {
	atomic.StoreInt32(&a.lent, 0)
}

// InUse indicates the buffer is lent out.
func (a *StaticAllocator) InUse() bool {
	return atomic.LoadInt32(&a.lent) != 0
}
