package turbojpeg

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func newTestDecoder(t *testing.T, data []byte) *Decoder {
	t.Helper()
	d := NewDecoder(DecoderOptions{})
	t.Cleanup(d.Close)
	d.SetSourceReader(bytes.NewReader(data))
	return d
}

func TestDecodeRoundTrip(t *testing.T) {
	data := encodeFixture(t, testRaster(64, 56), DefaultEncoderOptions())
	d := newTestDecoder(t, data)

	format, err := d.DetectFormat()
	if err != nil {
		t.Fatalf("DetectFormat: %v", err)
	}
	if format != FormatJPEG {
		t.Fatalf("format = %v, want JPEG", format)
	}

	w, h, err := d.Dimensions(0)
	if err != nil {
		t.Fatalf("Dimensions: %v", err)
	}
	if w != 64 || h != 56 {
		t.Errorf("dimensions = %dx%d, want 64x56", w, h)
	}

	raster, err := d.Decode(0)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if raster.Width != 64 || raster.Height != 56 {
		t.Errorf("raster = %dx%d, want 64x56", raster.Width, raster.Height)
	}
	if raster.Channels != 3 {
		t.Errorf("channels = %d, want 3", raster.Channels)
	}
	if raster.ColorSpace != ColorSpaceSRGB {
		t.Errorf("color space = %v, want sRGB", raster.ColorSpace)
	}
	if len(raster.Pix) != 64*56*3 {
		t.Errorf("pixel buffer = %d bytes, want %d", len(raster.Pix), 64*56*3)
	}

	again, err := d.Decode(0)
	if err != nil {
		t.Fatalf("second Decode: %v", err)
	}
	if again != raster {
		t.Error("second Decode did not return the cached raster")
	}
}

func TestDecodeFromFile(t *testing.T) {
	data := encodeFixture(t, testRaster(32, 32), DefaultEncoderOptions())
	path := filepath.Join(t.TempDir(), "fixture.jpg")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	d := NewDecoder(DecoderOptions{})
	defer d.Close()
	d.SetSourceFile(path)

	raster, err := d.Decode(0)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if raster.Width != 32 || raster.Height != 32 {
		t.Errorf("raster = %dx%d, want 32x32", raster.Width, raster.Height)
	}
}

func TestDecoderCounts(t *testing.T) {
	data := encodeFixture(t, testRaster(40, 30), DefaultEncoderOptions())
	d := newTestDecoder(t, data)

	if n := d.ImageCount(); n != 1 {
		t.Errorf("ImageCount = %d, want 1", n)
	}
	if n := d.ResolutionLevelCount(); n != 1 {
		t.Errorf("ResolutionLevelCount = %d, want 1", n)
	}
	w, h, err := d.TileDimensions(0)
	if err != nil {
		t.Fatalf("TileDimensions: %v", err)
	}
	if w != 40 || h != 30 {
		t.Errorf("tile = %dx%d, want full image 40x30", w, h)
	}
}

func TestDecodeIndexValidation(t *testing.T) {
	data := encodeFixture(t, testRaster(16, 16), DefaultEncoderOptions())
	d := newTestDecoder(t, data)

	var idxErr *IndexError
	if _, _, err := d.Dimensions(1); !errors.As(err, &idxErr) {
		t.Errorf("Dimensions(1): err = %v, want IndexError", err)
	}
	if _, err := d.Decode(2); !errors.As(err, &idxErr) {
		t.Errorf("Decode(2): err = %v, want IndexError", err)
	}
	if _, err := d.ThumbnailCount(-1); !errors.As(err, &idxErr) {
		t.Errorf("ThumbnailCount(-1): err = %v, want IndexError", err)
	}
	if _, err := d.ReadThumbnail(0, 1); !errors.As(err, &idxErr) {
		t.Errorf("ReadThumbnail(0,1): err = %v, want IndexError", err)
	}
	if idxErr.Kind != "thumbnail" {
		t.Errorf("Kind = %q, want thumbnail", idxErr.Kind)
	}
	if _, err := d.ReadMetadata(3); !errors.As(err, &idxErr) {
		t.Errorf("ReadMetadata(3): err = %v, want IndexError", err)
	}
}

func TestDecodeCorruptStream(t *testing.T) {
	// Sniffs as JPEG but the library cannot parse a header out of it.
	corrupt := append([]byte{0xFF, 0xD8, 0xFF, 0xDB}, bytes.Repeat([]byte{0x42}, 64)...)
	d := newTestDecoder(t, corrupt)

	format, err := d.DetectFormat()
	if err != nil || format != FormatJPEG {
		t.Fatalf("DetectFormat = %v, %v; want JPEG, nil", format, err)
	}

	var srcErr *SourceFormatError
	if _, _, err := d.Dimensions(0); !errors.As(err, &srcErr) {
		t.Fatalf("Dimensions: err = %v, want SourceFormatError", err)
	}
	if srcErr.Msg == "" {
		t.Error("SourceFormatError carries no library message")
	}
}

func TestDecodeWithoutSource(t *testing.T) {
	d := NewDecoder(DecoderOptions{})
	defer d.Close()
	if _, err := d.Decode(0); !errors.Is(err, ErrSourceNotSet) {
		t.Errorf("err = %v, want ErrSourceNotSet", err)
	}
}

func TestDecoderCloseWithoutUse(t *testing.T) {
	d := NewDecoder(DecoderOptions{})
	d.Close()
	d.Close()
}

func TestDecodeRegionIgnoresRequest(t *testing.T) {
	data := encodeFixture(t, testRaster(48, 32), DefaultEncoderOptions())
	d := newTestDecoder(t, data)

	full, err := d.Decode(0)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	var hints DecodeHints
	req := RegionRequest{Scales: []float64{0.5, 0.5, 0.5}, ReductionFactor: 1}
	req.Region.Max.X, req.Region.Max.Y = 10, 10
	regional, err := d.DecodeRegion(0, req, &hints)
	if err != nil {
		t.Fatalf("DecodeRegion: %v", err)
	}
	if regional != full {
		t.Error("DecodeRegion did not return the full cached raster")
	}
	if !hints.IgnoredRegion || !hints.IgnoredScale {
		t.Errorf("hints = %+v, want both ignore flags set", hints)
	}
}

func TestDecodeSequenceUnsupported(t *testing.T) {
	data := encodeFixture(t, testRaster(16, 16), DefaultEncoderOptions())
	d := newTestDecoder(t, data)
	if _, err := d.DecodeSequence(); !errors.Is(err, ErrUnsupportedOperation) {
		t.Errorf("err = %v, want ErrUnsupportedOperation", err)
	}
}

func TestReadMetadataCached(t *testing.T) {
	data := encodeFixture(t, testRaster(16, 16), DefaultEncoderOptions())
	d := newTestDecoder(t, data)

	first, err := d.ReadMetadata(0)
	if err != nil {
		t.Fatalf("ReadMetadata: %v", err)
	}
	second, err := d.ReadMetadata(0)
	if err != nil {
		t.Fatalf("second ReadMetadata: %v", err)
	}
	if first != second {
		t.Error("ReadMetadata did not return the cached result")
	}
}

// makeCMYKJPEG assembles a complete 8x8 baseline JPEG with four
// components and an Adobe APP14 segment (transform 0, plain CMYK). The
// Huffman tables define one code each, so the single MCU is eight zero
// bits: every coefficient is zero and every decoded sample is 128.
func makeCMYKJPEG() []byte {
	var b bytes.Buffer
	b.Write([]byte{0xFF, 0xD8}) // SOI

	// APP14 Adobe, transform 0.
	b.Write([]byte{0xFF, 0xEE, 0x00, 0x0E})
	b.WriteString("Adobe")
	b.Write([]byte{0x00, 0x64, 0x00, 0x00, 0x00, 0x00, 0x00})

	// DQT: table 0, all ones.
	b.Write([]byte{0xFF, 0xDB, 0x00, 0x43, 0x00})
	b.Write(bytes.Repeat([]byte{0x01}, 64))

	// SOF0: 8-bit, 8x8, 4 components, 1x1 sampling, table 0.
	b.Write([]byte{0xFF, 0xC0, 0x00, 0x14, 0x08, 0x00, 0x08, 0x00, 0x08, 0x04})
	for id := byte(1); id <= 4; id++ {
		b.Write([]byte{id, 0x11, 0x00})
	}

	// DHT: DC table 0 and AC table 0, each a single length-1 code for
	// symbol 0 (zero DC category, EOB).
	for _, class := range []byte{0x00, 0x10} {
		b.Write([]byte{0xFF, 0xC4, 0x00, 0x14, class, 0x01})
		b.Write(bytes.Repeat([]byte{0x00}, 15))
		b.Write([]byte{0x00})
	}

	// SOS over all four components.
	b.Write([]byte{0xFF, 0xDA, 0x00, 0x0E, 0x04})
	for id := byte(1); id <= 4; id++ {
		b.Write([]byte{id, 0x00})
	}
	b.Write([]byte{0x00, 0x3F, 0x00})

	b.Write([]byte{0x00})       // the MCU: eight zero bits
	b.Write([]byte{0xFF, 0xD9}) // EOI
	return b.Bytes()
}

func TestDecodeCMYK(t *testing.T) {
	d := newTestDecoder(t, makeCMYKJPEG())

	format, err := d.DetectFormat()
	if err != nil || format != FormatJPEG {
		t.Fatalf("DetectFormat = %v, %v; want JPEG, nil", format, err)
	}

	raster, err := d.Decode(0)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if raster.Width != 8 || raster.Height != 8 {
		t.Errorf("raster = %dx%d, want 8x8", raster.Width, raster.Height)
	}
	if raster.Channels != 3 {
		t.Fatalf("channels = %d, want 3 after CMYK conversion", raster.Channels)
	}
	if raster.ColorSpace != ColorSpaceSRGB {
		t.Errorf("color space = %v, want sRGB", raster.ColorSpace)
	}

	// Every sample decodes to 128; the Adobe segment flips that to 127,
	// and the arithmetic conversion of CMYK(127,127,127,127) lands on 64
	// per channel.
	for i, v := range raster.Pix {
		if v < 62 || v > 66 {
			t.Fatalf("Pix[%d] = %d, want about 64", i, v)
		}
	}
}

// withEXIFThumbnail splices an APP1 EXIF segment carrying an IFD1
// thumbnail record into jpeg, right after the SOI marker.
func withEXIFThumbnail(t *testing.T, jpeg, thumb []byte, compression uint16) []byte {
	t.Helper()
	tiff := buildThumbnailTIFF(thumb, compression)
	payload := append([]byte("Exif\x00\x00"), tiff...)

	var out bytes.Buffer
	out.Write(jpeg[:2])
	out.Write([]byte{0xFF, 0xE1})
	var length [2]byte
	binary.BigEndian.PutUint16(length[:], uint16(len(payload)+2))
	out.Write(length[:])
	out.Write(payload)
	out.Write(jpeg[2:])
	return out.Bytes()
}

// buildThumbnailTIFF emits a minimal big-endian TIFF: IFD0 with an
// orientation tag, then IFD1 declaring the thumbnail compression and
// JPEGInterchangeFormat offset and length, then the thumbnail bytes.
func buildThumbnailTIFF(thumb []byte, compression uint16) []byte {
	var buf bytes.Buffer
	buf.WriteString("MM")
	binary.Write(&buf, binary.BigEndian, uint16(42))
	binary.Write(&buf, binary.BigEndian, uint32(8)) // IFD0 offset

	// IFD0: one entry, then the IFD1 pointer.
	binary.Write(&buf, binary.BigEndian, uint16(1))
	writeTIFFShort(&buf, 0x0112, 1) // orientation
	binary.Write(&buf, binary.BigEndian, uint32(26))

	// IFD1 at 26: 3 entries end at 26+2+36+4 = 68.
	const thumbOffset = 68
	binary.Write(&buf, binary.BigEndian, uint16(3))
	writeTIFFShort(&buf, 0x0103, compression)
	writeTIFFLong(&buf, 0x0201, thumbOffset)
	writeTIFFLong(&buf, 0x0202, uint32(len(thumb)))
	binary.Write(&buf, binary.BigEndian, uint32(0))

	buf.Write(thumb)
	return buf.Bytes()
}

func writeTIFFShort(buf *bytes.Buffer, tag, value uint16) {
	binary.Write(buf, binary.BigEndian, tag)
	binary.Write(buf, binary.BigEndian, uint16(3)) // SHORT
	binary.Write(buf, binary.BigEndian, uint32(1))
	binary.Write(buf, binary.BigEndian, value)
	binary.Write(buf, binary.BigEndian, uint16(0))
}

func writeTIFFLong(buf *bytes.Buffer, tag uint16, value uint32) {
	binary.Write(buf, binary.BigEndian, tag)
	binary.Write(buf, binary.BigEndian, uint16(4)) // LONG
	binary.Write(buf, binary.BigEndian, uint32(1))
	binary.Write(buf, binary.BigEndian, value)
}

func TestReadThumbnail(t *testing.T) {
	thumbOpts := DefaultEncoderOptions()
	thumbOpts.Progressive = false
	thumb := encodeFixture(t, testRaster(20, 14), thumbOpts)
	base := encodeFixture(t, testRaster(64, 48), DefaultEncoderOptions())
	data := withEXIFThumbnail(t, base, thumb, 6)

	d := newTestDecoder(t, data)
	n, err := d.ThumbnailCount(0)
	if err != nil {
		t.Fatalf("ThumbnailCount: %v", err)
	}
	if n != 1 {
		t.Fatalf("ThumbnailCount = %d, want 1", n)
	}

	img, err := d.ReadThumbnail(0, 0)
	if err != nil {
		t.Fatalf("ReadThumbnail: %v", err)
	}
	if img == nil {
		t.Fatal("ReadThumbnail returned nil for a present thumbnail")
	}
	b := img.Bounds()
	if b.Dx() != 20 || b.Dy() != 14 {
		t.Errorf("thumbnail = %dx%d, want 20x14", b.Dx(), b.Dy())
	}

	w, h, err := d.ThumbnailDimensions(0, 0)
	if err != nil {
		t.Fatalf("ThumbnailDimensions: %v", err)
	}
	if w != 20 || h != 14 {
		t.Errorf("ThumbnailDimensions = %dx%d, want 20x14", w, h)
	}

	again, err := d.ReadThumbnail(0, 0)
	if err != nil {
		t.Fatalf("second ReadThumbnail: %v", err)
	}
	if again != img {
		t.Error("second ReadThumbnail did not return the cached image")
	}

	// The main image is still fully decodable.
	raster, err := d.Decode(0)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if raster.Width != 64 || raster.Height != 48 {
		t.Errorf("raster = %dx%d, want 64x48", raster.Width, raster.Height)
	}
}

func TestReadThumbnailUnsupportedScheme(t *testing.T) {
	thumb := encodeFixture(t, testRaster(20, 14), DefaultEncoderOptions())
	base := encodeFixture(t, testRaster(64, 48), DefaultEncoderOptions())
	data := withEXIFThumbnail(t, base, thumb, 5) // LZW, not a thumbnail scheme

	d := newTestDecoder(t, data)
	n, err := d.ThumbnailCount(0)
	if err != nil {
		t.Fatalf("ThumbnailCount: %v", err)
	}
	if n != 0 {
		t.Errorf("ThumbnailCount = %d, want 0", n)
	}
	img, err := d.ReadThumbnail(0, 0)
	if err != nil {
		t.Fatalf("ReadThumbnail: %v", err)
	}
	if img != nil {
		t.Error("ReadThumbnail returned an image for an unsupported scheme")
	}
}

func TestReadThumbnailAbsent(t *testing.T) {
	data := encodeFixture(t, testRaster(32, 32), DefaultEncoderOptions())
	d := newTestDecoder(t, data)

	n, err := d.ThumbnailCount(0)
	if err != nil {
		t.Fatalf("ThumbnailCount: %v", err)
	}
	if n != 0 {
		t.Errorf("ThumbnailCount = %d, want 0", n)
	}
	w, h, err := d.ThumbnailDimensions(0, 0)
	if err != nil {
		t.Fatalf("ThumbnailDimensions: %v", err)
	}
	if w != 0 || h != 0 {
		t.Errorf("ThumbnailDimensions = %dx%d, want zeros", w, h)
	}
}
