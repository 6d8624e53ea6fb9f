package turbojpeg

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg" // thumbnail decoding
	_ "image/png"  // thumbnail decoding
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/davesmith10/turbojpeg/internal/cms"
	"github.com/davesmith10/turbojpeg/internal/jpegmeta"
	"github.com/davesmith10/turbojpeg/internal/turbo"
)

// Decoder decodes one JPEG image through the native library. It reads
// the compressed source once into a native staged buffer, then serves
// header, pixel, metadata and thumbnail requests from it, caching each
// independently. A Decoder is for a single source and is not safe for
// concurrent use. Close must be called to release native memory; it is
// safe on every path, including a Decoder that never made a native
// call.
type Decoder struct {
	opts   DecoderOptions
	path   string
	reader io.ReadSeeker

	handle *turbo.Handle
	staged *turbo.Buffer

	width, height int

	metaReader  *jpegmeta.Reader
	metadata    *Metadata
	raster      *Raster
	thumb       image.Image
	thumbLoaded bool
}

// NewDecoder returns a Decoder with the given options. A source must be
// supplied with SetSourceFile or SetSourceReader before use.
func NewDecoder(opts DecoderOptions) *Decoder {
	return &Decoder{opts: opts}
}

// SetSourceFile points the decoder at a file on disk.
func (d *Decoder) SetSourceFile(path string) {
	d.path = path
}

// SetSourceReader points the decoder at a random-access stream. The
// caller keeps ownership and must keep it valid and unmodified for the
// decoder's lifetime.
func (d *Decoder) SetSourceReader(r io.ReadSeeker) {
	d.reader = r
}

// Close releases the native codec instance and the staged buffer. It is
// idempotent and safe when nothing was ever allocated.
func (d *Decoder) Close() {
	d.handle.Close()
	d.staged.Free()
}

// DetectFormat sniffs the source's leading bytes without disturbing its
// read position. A stream opened just for sniffing is closed again.
func (d *Decoder) DetectFormat() (Format, error) {
	magic := make([]byte, 12)
	if d.path != "" {
		f, err := os.Open(d.path)
		if err != nil {
			return FormatUnknown, err
		}
		defer f.Close()
		n, err := io.ReadFull(f, magic)
		if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
			return FormatUnknown, err
		}
		return sniff(magic[:n]), nil
	}
	if d.reader == nil {
		return FormatUnknown, ErrSourceNotSet
	}
	pos, err := d.reader.Seek(0, io.SeekCurrent)
	if err != nil {
		return FormatUnknown, err
	}
	if _, err := d.reader.Seek(0, io.SeekStart); err != nil {
		return FormatUnknown, err
	}
	n, err := io.ReadFull(d.reader, magic)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return FormatUnknown, err
	}
	if _, err := d.reader.Seek(pos, io.SeekStart); err != nil {
		return FormatUnknown, err
	}
	return sniff(magic[:n]), nil
}

// ImageCount returns the number of images in the source. JPEG is a
// single-image format.
func (d *Decoder) ImageCount() int {
	return 1
}

// ResolutionLevelCount returns the number of resolution levels.
func (d *Decoder) ResolutionLevelCount() int {
	return 1
}

// Dimensions returns the full source image dimensions.
func (d *Decoder) Dimensions(imageIndex int) (int, int, error) {
	if err := validateImageIndex(imageIndex); err != nil {
		return 0, 0, err
	}
	if err := d.readHeader(); err != nil {
		return 0, 0, err
	}
	return d.width, d.height, nil
}

// TileDimensions returns the tile size, which for JPEG is the full
// image: there is no internal tiling.
func (d *Decoder) TileDimensions(imageIndex int) (int, int, error) {
	return d.Dimensions(imageIndex)
}

// ThumbnailCount returns the number of usable embedded thumbnails,
// which is 1 when the declared compression scheme is supported and 0
// otherwise.
func (d *Decoder) ThumbnailCount(imageIndex int) (int, error) {
	if err := validateImageIndex(imageIndex); err != nil {
		return 0, err
	}
	mr, err := d.metadataReader()
	if err != nil {
		return 0, err
	}
	compression, err := mr.ThumbnailCompression()
	if err != nil {
		return 0, &SourceFormatError{Msg: err.Error()}
	}
	if supportedThumbnailCompressions[compression] {
		return 1, nil
	}
	return 0, nil
}

// ThumbnailDimensions returns the pixel dimensions of the decoded
// thumbnail, or zeros when the image has none.
func (d *Decoder) ThumbnailDimensions(imageIndex, thumbIndex int) (int, int, error) {
	thumb, err := d.ReadThumbnail(imageIndex, thumbIndex)
	if err != nil || thumb == nil {
		return 0, 0, err
	}
	b := thumb.Bounds()
	return b.Dx(), b.Dy(), nil
}

// ReadThumbnail decodes and returns the embedded thumbnail, or nil when
// the image has none (including an unsupported compression scheme).
// The decoded thumbnail is cached for the session.
func (d *Decoder) ReadThumbnail(imageIndex, thumbIndex int) (image.Image, error) {
	if thumbIndex != 0 {
		return nil, &IndexError{Kind: "thumbnail", Index: thumbIndex}
	}
	if err := validateImageIndex(imageIndex); err != nil {
		return nil, err
	}
	mr, err := d.metadataReader()
	if err != nil {
		return nil, err
	}
	if d.thumbLoaded {
		return d.thumb, nil
	}
	compression, err := mr.ThumbnailCompression()
	if err != nil {
		return nil, &SourceFormatError{Msg: err.Error()}
	}
	d.thumbLoaded = true
	if !supportedThumbnailCompressions[compression] {
		return nil, nil
	}
	data, err := mr.ThumbnailData()
	if err != nil || data == nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("turbojpeg: decoding thumbnail: %w", err)
	}
	d.thumb = img
	return d.thumb, nil
}

// Decode decodes the full image at imageIndex (which must be 0) and
// returns the raster. The result is cached; repeated calls do not touch
// the native library again.
func (d *Decoder) Decode(imageIndex int) (*Raster, error) {
	if err := validateImageIndex(imageIndex); err != nil {
		return nil, err
	}
	if err := d.readHeader(); err != nil {
		return nil, err
	}
	if d.raster != nil {
		return d.raster, nil
	}

	start := time.Now()
	cs := turbo.Colorspace(d.handle.Get(turbo.ParamColorspace))
	plan := resolveColorspace(cs)

	decoded := make([]byte, d.width*d.height*plan.inChannels)
	if err := d.handle.Decompress(d.staged, decoded, plan.format); err != nil {
		return nil, &SourceFormatError{Msg: d.handle.ErrorString()}
	}
	logrus.WithFields(logrus.Fields{
		"colorspace": cs,
		"elapsed":    time.Since(start),
	}).Trace("turbojpeg: decompressed pixels")

	if plan.colorSpace == ColorSpaceUnset {
		raster, err := d.finishCMYK(decoded)
		if err != nil {
			return nil, err
		}
		d.raster = raster
	} else {
		d.raster = newRaster(d.width, d.height, plan.outChannels, plan.colorSpace, decoded)
	}
	return d.raster, nil
}

// finishCMYK applies the vendor inversion quirk and converts the
// 4-channel buffer to RGB using the embedded profile when one exists.
func (d *Decoder) finishCMYK(decoded []byte) (*Raster, error) {
	mr, err := d.metadataReader()
	if err != nil {
		return nil, err
	}
	hasAdobe, err := mr.HasAdobeSegment()
	if err != nil {
		return nil, &SourceFormatError{Msg: err.Error()}
	}
	if hasAdobe {
		invertSamples(decoded)
	}
	icc, err := mr.ICCProfile()
	if err != nil {
		logrus.WithError(err).Debug("turbojpeg: ignoring unusable ICC profile")
		icc = nil
	}
	rgb, err := cms.ConvertCMYKToRGB(decoded, d.width, d.height, icc)
	if err != nil {
		return nil, fmt.Errorf("turbojpeg: converting CMYK: %w", err)
	}
	return newRaster(d.width, d.height, 3, ColorSpaceSRGB, rgb), nil
}

// DecodeHints reports request aspects that were accepted but ignored.
type DecodeHints struct {
	IgnoredRegion bool
	IgnoredScale  bool
}

// RegionRequest carries a caller's region and scale request. JPEG has
// no internal tiling or resolution levels, so the request is accepted
// but ignored; the hints record that.
type RegionRequest struct {
	Region          image.Rectangle
	Scales          []float64
	ReductionFactor int
	DiffScales      []float64
}

// DecodeRegion decodes the full image regardless of the requested
// region and scale, setting both ignore hints.
func (d *Decoder) DecodeRegion(imageIndex int, req RegionRequest, hints *DecodeHints) (*Raster, error) {
	if err := validateImageIndex(imageIndex); err != nil {
		return nil, err
	}
	if hints != nil {
		hints.IgnoredRegion = true
		hints.IgnoredScale = true
	}
	return d.Decode(imageIndex)
}

// DecodeSequence always fails: JPEG is a single-image format.
func (d *Decoder) DecodeSequence() ([]*Raster, error) {
	return nil, ErrUnsupportedOperation
}

// ReadMetadata scans the source for raw EXIF, IPTC and XMP blocks. The
// result is computed once per session and cached.
func (d *Decoder) ReadMetadata(imageIndex int) (*Metadata, error) {
	if d.metadata != nil {
		return d.metadata, nil
	}
	if err := validateImageIndex(imageIndex); err != nil {
		return nil, err
	}
	mr, err := d.metadataReader()
	if err != nil {
		return nil, err
	}
	exif, err := mr.EXIF()
	if err != nil {
		return nil, &SourceFormatError{Msg: err.Error()}
	}
	iptc, err := mr.IPTC()
	if err != nil {
		return nil, &SourceFormatError{Msg: err.Error()}
	}
	xmp, err := mr.XMP()
	if err != nil {
		return nil, &SourceFormatError{Msg: err.Error()}
	}
	d.metadata = &Metadata{EXIF: exif, IPTC: iptc, XMP: string(xmp)}
	return d.metadata, nil
}

func validateImageIndex(index int) error {
	if index != 0 {
		return &IndexError{Kind: "image", Index: index}
	}
	return nil
}

// stage reads the compressed source into native memory exactly once.
func (d *Decoder) stage() error {
	if d.staged != nil {
		return nil
	}
	start := time.Now()
	var (
		data []byte
		err  error
	)
	switch {
	case d.path != "":
		data, err = os.ReadFile(d.path)
	case d.reader != nil:
		if _, err = d.reader.Seek(0, io.SeekStart); err == nil {
			data, err = io.ReadAll(d.reader)
		}
	default:
		return ErrSourceNotSet
	}
	if err != nil {
		return err
	}
	buf, err := turbo.NewBuffer(data)
	if err != nil {
		return err
	}
	d.staged = buf
	logrus.WithFields(logrus.Fields{
		"bytes":   buf.Len(),
		"elapsed": time.Since(start),
	}).Trace("turbojpeg: staged compressed image")
	return nil
}

// readHeader stages the source and parses the JPEG header, caching the
// dimensions. Non-positive dimensions mean the library could not parse
// the stream.
func (d *Decoder) readHeader() error {
	if d.width > 0 {
		return nil
	}
	if err := d.stage(); err != nil {
		return err
	}
	if d.handle == nil {
		h, err := turbo.NewDecompressor()
		if err != nil {
			return err
		}
		d.handle = h
		d.handle.SetBool(turbo.ParamFastUpsample, d.opts.FastUpsampling)
		d.handle.SetBool(turbo.ParamFastDCT, d.opts.FastDCT)
	}
	// The header call's return code is folded into the dimension
	// check: either way the error text comes from the library.
	_ = d.handle.DecompressHeader(d.staged)
	width := d.handle.Get(turbo.ParamJPEGWidth)
	height := d.handle.Get(turbo.ParamJPEGHeight)
	if width <= 0 || height <= 0 {
		return &SourceFormatError{Msg: d.handle.ErrorString()}
	}
	d.width, d.height = width, height
	return nil
}

// metadataReader returns the session's segment scanner, creating it
// over the staged buffer on first use.
func (d *Decoder) metadataReader() (*jpegmeta.Reader, error) {
	if err := d.stage(); err != nil {
		return nil, err
	}
	if d.metaReader == nil {
		d.metaReader = jpegmeta.NewReader(d.staged.Bytes())
	}
	return d.metaReader, nil
}
