package turbo

/*
#cgo pkg-config: libturbojpeg
#include <stdlib.h>
#include <turbojpeg.h>
*/
import "C"

import (
	"errors"
	"fmt"
	"unsafe"
)

// Handle wraps one native codec instance, either a decompressor or a
// compressor. A Handle is bound to a single decode or encode call chain
// and is not safe for concurrent use.
type Handle struct {
	tj C.tjhandle
}

// NewDecompressor creates a decompressor handle.
func NewDecompressor() (*Handle, error) {
	ensureLoaded()
	tj := C.tj3Init(C.TJINIT_DECOMPRESS)
	if tj == nil {
		return nil, errors.New("turbo: tj3Init(TJINIT_DECOMPRESS) failed")
	}
	return &Handle{tj: tj}, nil
}

// NewCompressor creates a compressor handle.
func NewCompressor() (*Handle, error) {
	ensureLoaded()
	tj := C.tj3Init(C.TJINIT_COMPRESS)
	if tj == nil {
		return nil, errors.New("turbo: tj3Init(TJINIT_COMPRESS) failed")
	}
	return &Handle{tj: tj}, nil
}

// Set assigns a parameter value on the handle.
func (h *Handle) Set(p Param, v int) error {
	if C.tj3Set(h.tj, C.int(p), C.int(v)) != 0 {
		return fmt.Errorf("turbo: tj3Set(%d, %d): %s", p, v, h.ErrorString())
	}
	return nil
}

// SetBool assigns a boolean parameter value on the handle.
func (h *Handle) SetBool(p Param, v bool) error {
	iv := 0
	if v {
		iv = 1
	}
	return h.Set(p, iv)
}

// Get reads a parameter value from the handle.
func (h *Handle) Get(p Param) int {
	return int(C.tj3Get(h.tj, C.int(p)))
}

// ErrorString returns the message for the most recent failure on this
// handle.
func (h *Handle) ErrorString() string {
	return C.GoString(C.tj3GetErrorStr(h.tj))
}

// DecompressHeader parses the header of the compressed image in buf,
// populating the JPEG width, height and colorspace parameters.
func (h *Handle) DecompressHeader(buf *Buffer) error {
	if C.tj3DecompressHeader(h.tj, (*C.uchar)(buf.ptr), C.size_t(buf.size)) != 0 {
		return fmt.Errorf("turbo: tj3DecompressHeader: %s", h.ErrorString())
	}
	return nil
}

// Decompress decodes the compressed image in buf into dst, which must be
// width*height*channels bytes for the channel count implied by pf. The
// output is fully packed (zero pitch).
func (h *Handle) Decompress(buf *Buffer, dst []byte, pf PixelFormat) error {
	if len(dst) == 0 {
		return errors.New("turbo: empty destination buffer")
	}
	rc := C.tj3Decompress8(h.tj, (*C.uchar)(buf.ptr), C.size_t(buf.size),
		(*C.uchar)(unsafe.Pointer(&dst[0])), 0, C.int(pf))
	if rc != 0 {
		return fmt.Errorf("turbo: tj3Decompress8: %s", h.ErrorString())
	}
	return nil
}

// Compress encodes the fully-packed pixels in src, laid out per pf, and
// returns the compressed bytes copied out of the library-owned output
// buffer, which is freed before returning.
func (h *Handle) Compress(src []byte, width, height int, pf PixelFormat) ([]byte, error) {
	if len(src) == 0 {
		return nil, errors.New("turbo: empty source buffer")
	}
	var (
		jpegBuf  *C.uchar
		jpegSize C.size_t
	)
	rc := C.tj3Compress8(h.tj, (*C.uchar)(unsafe.Pointer(&src[0])),
		C.int(width), 0, C.int(height), C.int(pf), &jpegBuf, &jpegSize)
	if rc != 0 {
		return nil, fmt.Errorf("turbo: tj3Compress8: %s", h.ErrorString())
	}
	defer C.tj3Free(unsafe.Pointer(jpegBuf))
	return C.GoBytes(unsafe.Pointer(jpegBuf), C.int(jpegSize)), nil
}

// Close destroys the native instance. It is a no-op on a nil or
// already-closed handle.
func (h *Handle) Close() {
	if h == nil || h.tj == nil {
		return
	}
	C.tj3Destroy(h.tj)
	h.tj = nil
}
