// Package jpegmeta scans a compressed JPEG stream for embedded metadata
// payloads. It walks marker segments up to the start-of-scan marker and
// hands back raw byte blocks; no semantic EXIF/IPTC/XMP decoding happens
// here.
package jpegmeta

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrNotJPEG is returned when the scanned stream does not begin with an
// SOI marker.
var ErrNotJPEG = errors.New("jpegmeta: not a JPEG stream")

var (
	exifHeader      = []byte("Exif\x00\x00")
	xmpHeader       = []byte("http://ns.adobe.com/xap/1.0/\x00")
	photoshopHeader = []byte("Photoshop 3.0\x00")
	adobeHeader     = []byte("Adobe")
)

// Reader scans one JPEG byte stream exactly once, on first access, and
// caches everything it finds. The data slice is typically a view of the
// staged native buffer and must outlive the Reader.
type Reader struct {
	data    []byte
	scanned bool
	scanErr error

	exif      []byte
	iptc      []byte
	xmp       []byte
	iccChunks [][]byte
	hasAdobe  bool

	thumbCompression int
	thumbData        []byte
	thumbWidth       int
	thumbHeight      int
}

// NewReader returns a Reader over data. No scanning happens until the
// first accessor is called.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// EXIF returns the raw EXIF payload (TIFF structure, without the
// "Exif\0\0" preamble), or nil if absent.
func (r *Reader) EXIF() ([]byte, error) {
	if err := r.scan(); err != nil {
		return nil, err
	}
	return r.exif, nil
}

// IPTC returns the raw IPTC IIM block, or nil if absent.
func (r *Reader) IPTC() ([]byte, error) {
	if err := r.scan(); err != nil {
		return nil, err
	}
	return r.iptc, nil
}

// XMP returns the raw StandardXMP packet bytes, or nil if absent.
func (r *Reader) XMP() ([]byte, error) {
	if err := r.scan(); err != nil {
		return nil, err
	}
	return r.xmp, nil
}

// ICCProfile reassembles and returns the embedded ICC profile, or nil if
// absent.
func (r *Reader) ICCProfile() ([]byte, error) {
	if err := r.scan(); err != nil {
		return nil, err
	}
	return reassembleICC(r.iccChunks)
}

// HasAdobeSegment reports whether an APP14 Adobe segment is present.
// Adobe encoders write CMYK samples inverted, so this drives channel
// inversion downstream.
func (r *Reader) HasAdobeSegment() (bool, error) {
	if err := r.scan(); err != nil {
		return false, err
	}
	return r.hasAdobe, nil
}

// ThumbnailCompression returns the compression scheme code declared for
// the embedded thumbnail, or 0 if no thumbnail is declared.
func (r *Reader) ThumbnailCompression() (int, error) {
	if err := r.scan(); err != nil {
		return 0, err
	}
	return r.thumbCompression, nil
}

// ThumbnailData returns the raw embedded thumbnail bytes, or nil.
func (r *Reader) ThumbnailData() ([]byte, error) {
	if err := r.scan(); err != nil {
		return nil, err
	}
	return r.thumbData, nil
}

// ThumbnailDeclaredSize returns the width and height declared in the
// thumbnail IFD, or zeros when not declared.
func (r *Reader) ThumbnailDeclaredSize() (int, int, error) {
	if err := r.scan(); err != nil {
		return 0, 0, err
	}
	return r.thumbWidth, r.thumbHeight, nil
}

func (r *Reader) scan() error {
	if r.scanned {
		return r.scanErr
	}
	r.scanned = true
	r.scanErr = r.walkSegments()
	if r.scanErr == nil && r.exif != nil {
		// Failure to parse the thumbnail IFD is not a stream error;
		// the image simply has no usable thumbnail.
		readThumbnailIFD(r)
	}
	return r.scanErr
}

func (r *Reader) walkSegments() error {
	data := r.data
	if len(data) < 2 || data[0] != 0xFF || data[1] != 0xD8 {
		return ErrNotJPEG
	}
	pos := 2
	for pos+1 < len(data) {
		if data[pos] != 0xFF {
			return fmt.Errorf("jpegmeta: expected marker at offset %d, found 0x%02X", pos, data[pos])
		}
		marker := data[pos+1]
		pos += 2

		// Fill bytes before a marker are legal.
		for marker == 0xFF && pos < len(data) {
			marker = data[pos]
			pos++
		}

		switch {
		case marker == 0xD9: // EOI
			return nil
		case marker == 0xDA: // SOS: entropy-coded data follows
			return nil
		case marker >= 0xD0 && marker <= 0xD7: // RST, no length
			continue
		case marker == 0x01: // TEM, no length
			continue
		}

		if pos+2 > len(data) {
			return fmt.Errorf("jpegmeta: truncated segment at offset %d", pos)
		}
		length := int(binary.BigEndian.Uint16(data[pos:])) - 2
		pos += 2
		if length < 0 || pos+length > len(data) {
			return fmt.Errorf("jpegmeta: segment length %d overruns stream", length)
		}
		payload := data[pos : pos+length]
		pos += length

		switch marker {
		case 0xE1: // APP1: EXIF or XMP
			if r.exif == nil && bytes.HasPrefix(payload, exifHeader) {
				r.exif = payload[len(exifHeader):]
			} else if r.xmp == nil && bytes.HasPrefix(payload, xmpHeader) {
				r.xmp = payload[len(xmpHeader):]
			}
		case 0xE2: // APP2: ICC profile chunk
			if bytes.HasPrefix(payload, []byte(iccTag)) {
				r.iccChunks = append(r.iccChunks, payload)
			}
		case 0xED: // APP13: Photoshop resources, IPTC among them
			if r.iptc == nil && bytes.HasPrefix(payload, photoshopHeader) {
				r.iptc = findIPTCResource(payload[len(photoshopHeader):])
			}
		case 0xEE: // APP14
			if bytes.HasPrefix(payload, adobeHeader) {
				r.hasAdobe = true
			}
		}
	}
	return nil
}

// findIPTCResource walks Photoshop 8BIM image resource blocks and
// returns the payload of resource 0x0404 (IPTC-NAA), or nil.
func findIPTCResource(data []byte) []byte {
	pos := 0
	for pos+12 <= len(data) {
		if !bytes.Equal(data[pos:pos+4], []byte("8BIM")) {
			return nil
		}
		id := binary.BigEndian.Uint16(data[pos+4:])
		pos += 6

		// Pascal-style name, padded to an even length.
		if pos >= len(data) {
			return nil
		}
		nameLen := int(data[pos])
		pos += 1 + nameLen
		if (1+nameLen)%2 != 0 {
			pos++
		}

		if pos+4 > len(data) {
			return nil
		}
		size := int(binary.BigEndian.Uint32(data[pos:]))
		pos += 4
		if pos+size > len(data) {
			return nil
		}
		if id == 0x0404 {
			return data[pos : pos+size]
		}
		pos += size
		if size%2 != 0 {
			pos++
		}
	}
	return nil
}
