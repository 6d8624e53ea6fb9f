package turbojpeg

import (
	"fmt"
	"image"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/davesmith10/turbojpeg/internal/turbo"
)

// Encoder compresses rasters to JPEG through the native library.
// Options are validated when the Encoder is created, before any native
// call. An Encoder may encode multiple images; it is not safe for
// concurrent use. Close releases the native instance and is idempotent.
type Encoder struct {
	opts    EncoderOptions
	subsamp turbo.Subsampling
	handle  *turbo.Handle
}

// NewEncoder validates opts and returns an Encoder. An unrecognized
// subsampling scheme or an out-of-range quality is a ConfigurationError.
func NewEncoder(opts EncoderOptions) (*Encoder, error) {
	if opts.Quality == 0 {
		opts.Quality = DefaultQuality
	}
	if opts.Quality < 1 || opts.Quality > 100 {
		return nil, &ConfigurationError{Option: "quality", Value: fmt.Sprint(opts.Quality)}
	}
	if opts.Subsampling == "" {
		opts.Subsampling = Subsampling444
	}
	subsamp, err := opts.Subsampling.resolve()
	if err != nil {
		return nil, err
	}
	return &Encoder{opts: opts, subsamp: subsamp}, nil
}

// Close releases the native codec instance. Safe to call more than
// once, or on an Encoder that never encoded.
func (e *Encoder) Close() {
	e.handle.Close()
}

// Encode compresses img and writes the complete JPEG stream to w in one
// pass. When an XMP string was supplied, the output is routed through a
// segment-injecting writer that splices it in as an APP1 segment.
func (e *Encoder) Encode(img image.Image, w io.Writer) error {
	start := time.Now()
	b := img.Bounds()
	width, height := b.Dx(), b.Dy()
	if width <= 0 || height <= 0 {
		return fmt.Errorf("turbojpeg: empty source image")
	}

	pix, channels := packPixels(img, e.opts.Background)
	format, subsamp := resolveRasterFormat(channels, e.subsamp)

	if e.handle == nil {
		h, err := turbo.NewCompressor()
		if err != nil {
			return err
		}
		e.handle = h
	}
	e.handle.Set(turbo.ParamQuality, e.opts.Quality)
	e.handle.Set(turbo.ParamSubsamp, int(subsamp))
	e.handle.SetBool(turbo.ParamFastDCT, e.opts.FastDCT)
	e.handle.SetBool(turbo.ParamProgressive, e.opts.Progressive)
	e.handle.SetBool(turbo.ParamOptimize, e.opts.OptimizeCoding)
	e.handle.Set(turbo.ParamScanLimit, scanLimit)

	compressed, err := e.handle.Compress(pix, width, height, format)
	if err != nil {
		return fmt.Errorf("turbojpeg: encode: %w", err)
	}
	logrus.WithFields(logrus.Fields{
		"bytes":   len(compressed),
		"elapsed": time.Since(start),
	}).Trace("turbojpeg: compressed image")

	if e.opts.XMP != "" {
		inj := newSegmentInjectingWriter(e.opts.XMP, w)
		if _, err := inj.Write(compressed); err != nil {
			return fmt.Errorf("turbojpeg: writing output: %w", err)
		}
		if err := inj.Flush(); err != nil {
			return fmt.Errorf("turbojpeg: writing output: %w", err)
		}
		return nil
	}
	if _, err := w.Write(compressed); err != nil {
		return fmt.Errorf("turbojpeg: writing output: %w", err)
	}
	return nil
}
