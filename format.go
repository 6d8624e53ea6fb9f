package turbojpeg

// Format is the result of sniffing a byte stream.
type Format string

const (
	FormatJPEG    Format = "JPEG"
	FormatUnknown Format = "unknown"
)

// sniff classifies the leading bytes of a stream. It recognizes the
// JPEG signatures this codec accepts: quantization-table-first streams,
// JFIF (full signature or bare APP0 prefix), Adobe APP14, and EXIF
// APP1. Anything else, including short input, is unknown.
func sniff(b []byte) Format {
	if len(b) < 4 {
		return FormatUnknown
	}
	if b[0] != 0xFF || b[1] != 0xD8 || b[2] != 0xFF {
		return FormatUnknown
	}
	switch b[3] {
	case 0xDB: // SOI + DQT
		return FormatJPEG
	case 0xEE: // SOI + APP14
		return FormatJPEG
	case 0xE0: // SOI + APP0, with or without the full JFIF signature
		return FormatJPEG
	case 0xE1: // SOI + APP1, must carry the EXIF identifier
		if len(b) >= 12 &&
			b[6] == 'E' && b[7] == 'x' && b[8] == 'i' && b[9] == 'f' &&
			b[10] == 0x00 && b[11] == 0x00 {
			return FormatJPEG
		}
	}
	return FormatUnknown
}
