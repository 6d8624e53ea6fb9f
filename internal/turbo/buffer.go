package turbo

/*
#cgo pkg-config: libturbojpeg
#include <stdlib.h>
#include <turbojpeg.h>
*/
import "C"

import (
	"errors"
	"unsafe"
)

// Buffer is a native-addressable copy of a compressed byte stream,
// allocated with tj3Alloc. It is staged once per codec session and
// shared by header parsing, pixel decoding and metadata scanning.
type Buffer struct {
	ptr  unsafe.Pointer
	size int
}

// NewBuffer copies data into newly allocated native memory. An empty
// input yields a valid zero-length buffer; the header parser will reject
// it downstream.
func NewBuffer(data []byte) (*Buffer, error) {
	ensureLoaded()
	n := len(data)
	alloc := n
	if alloc == 0 {
		alloc = 1
	}
	ptr := C.tj3Alloc(C.size_t(alloc))
	if ptr == nil {
		return nil, errors.New("turbo: tj3Alloc failed")
	}
	if n > 0 {
		copy(unsafe.Slice((*byte)(ptr), n), data)
	}
	return &Buffer{ptr: ptr, size: n}, nil
}

// Len returns the staged byte count.
func (b *Buffer) Len() int {
	return b.size
}

// Bytes returns a view of the native memory without copying. The slice
// is valid only until Free is called.
func (b *Buffer) Bytes() []byte {
	if b == nil || b.ptr == nil || b.size == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(b.ptr), b.size)
}

// Free releases the native memory. It is a no-op on a nil or
// already-freed buffer.
func (b *Buffer) Free() {
	if b == nil || b.ptr == nil {
		return
	}
	C.tj3Free(b.ptr)
	b.ptr = nil
	b.size = 0
}
