package turbojpeg

// Metadata holds the raw metadata blocks embedded in a JPEG stream.
// Each block is optional and carried verbatim; no semantic decoding is
// performed.
type Metadata struct {
	// EXIF is the raw TIFF structure from the APP1 EXIF segment,
	// without the "Exif\0\0" preamble.
	EXIF []byte
	// IPTC is the raw IIM block from the Photoshop APP13 segment.
	IPTC []byte
	// XMP is the raw StandardXMP packet.
	XMP string
}

// supportedThumbnailCompressions lists the thumbnail compression scheme
// codes this decoder can hand to a raster decoder. Anything else counts
// as no thumbnail.
var supportedThumbnailCompressions = map[int]bool{
	6:     true, // JPEG (old-style)
	7:     true, // JPEG
	99:    true, // JPEG
	34892: true, // PNG
}
