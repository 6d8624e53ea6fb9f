package jpegmeta

import (
	"bytes"

	"github.com/rwcarlsen/goexif/tiff"
)

// TIFF tag IDs consulted in the thumbnail IFD (IFD1).
const (
	tagImageWidth        = 0x0100
	tagImageLength       = 0x0101
	tagCompression       = 0x0103
	tagStripOffsets      = 0x0111
	tagStripByteCounts   = 0x0117
	tagJPEGInterchange   = 0x0201
	tagJPEGInterchangeSz = 0x0202
)

// readThumbnailIFD parses the TIFF structure inside r.exif and, when a
// second IFD is present, records the thumbnail's compression scheme,
// declared dimensions and raw bytes. Offsets in IFD1 are relative to the
// TIFF header, which is the start of r.exif.
func readThumbnailIFD(r *Reader) {
	t, err := tiff.Decode(bytes.NewReader(r.exif))
	if err != nil || len(t.Dirs) < 2 {
		return
	}
	ifd1 := t.Dirs[1]

	offset, length := -1, -1
	for _, tag := range ifd1.Tags {
		v, err := tag.Int(0)
		if err != nil {
			continue
		}
		switch tag.Id {
		case tagCompression:
			r.thumbCompression = v
		case tagImageWidth:
			r.thumbWidth = v
		case tagImageLength:
			r.thumbHeight = v
		case tagJPEGInterchange:
			offset = v
		case tagJPEGInterchangeSz:
			length = v
		case tagStripOffsets:
			if offset < 0 {
				offset = v
			}
		case tagStripByteCounts:
			if length < 0 {
				length = v
			}
		}
	}

	if offset < 0 || length <= 0 || offset+length > len(r.exif) {
		return
	}
	r.thumbData = r.exif[offset : offset+length]
}
