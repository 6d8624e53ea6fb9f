package turbojpeg

import (
	"io"

	"github.com/davesmith10/turbojpeg/internal/xmputil"
)

// xmpNamespaceHeader identifies an APP1 segment as StandardXMP.
var xmpNamespaceHeader = []byte("http://ns.adobe.com/xap/1.0/\x00")

// injectOffset is where the segment is spliced in: right after the SOI
// marker and the first application segment the compressor emits.
const injectOffset = 20

// segmentInjectingWriter splices one pre-assembled APP1 segment into a
// JPEG byte stream at the earliest legal position, then passes every
// later write through untouched. The rewrite fires exactly once.
//
// The upstream compressor is expected to flush the structural prefix
// (SOI plus the first application marker) in its first write; writes
// are accumulated until injectOffset bytes are available in case it
// flushes in smaller chunks.
type segmentInjectingWriter struct {
	w       io.Writer
	app1    []byte
	pending []byte
}

func newSegmentInjectingWriter(xmp string, w io.Writer) *segmentInjectingWriter {
	return &segmentInjectingWriter{w: w, app1: assembleAPP1(xmp)}
}

func (s *segmentInjectingWriter) Write(p []byte) (int, error) {
	if s.app1 == nil {
		return s.w.Write(p)
	}
	s.pending = append(s.pending, p...)
	if len(s.pending) < injectOffset {
		return len(p), nil
	}
	if _, err := s.w.Write(s.pending[:injectOffset]); err != nil {
		return 0, err
	}
	if _, err := s.w.Write(s.app1); err != nil {
		return 0, err
	}
	if _, err := s.w.Write(s.pending[injectOffset:]); err != nil {
		return 0, err
	}
	s.app1 = nil
	s.pending = nil
	return len(p), nil
}

// Flush drains any bytes still buffered because the stream ended before
// the splice point, writing them through unmodified. After Flush the
// writer is a plain pass-through. A no-op once the splice has fired.
func (s *segmentInjectingWriter) Flush() error {
	if s.app1 == nil || len(s.pending) == 0 {
		s.app1 = nil
		return nil
	}
	_, err := s.w.Write(s.pending)
	s.app1 = nil
	s.pending = nil
	return err
}

// assembleAPP1 builds the complete segment: marker bytes, big-endian
// length, namespace header, the xpacket-wrapped XMP, and a null
// terminator. The length field covers the namespace header, payload
// and terminator plus the two length bytes themselves, hence the +3
// over header+payload; it excludes the marker.
func assembleAPP1(xmp string) []byte {
	payload := []byte(xmputil.WrapInXPacket(xmp))
	length := len(xmpNamespaceHeader) + len(payload) + 3

	seg := make([]byte, 0, 2+2+len(xmpNamespaceHeader)+len(payload)+1)
	seg = append(seg, 0xFF, 0xE1)
	seg = append(seg, byte(length>>8), byte(length))
	seg = append(seg, xmpNamespaceHeader...)
	seg = append(seg, payload...)
	seg = append(seg, 0x00)
	return seg
}
