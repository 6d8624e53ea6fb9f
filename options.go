package turbojpeg

import (
	"image/color"

	"github.com/davesmith10/turbojpeg/internal/turbo"
)

// DefaultQuality is the quality factor used when none is supplied.
const DefaultQuality = 50

// scanLimit caps the number of progressive scans the compressor may
// emit, guarding against pathological scan explosion. Not configurable.
const scanLimit = 100

// DecoderOptions tunes the decode pipeline.
type DecoderOptions struct {
	// FastDCT enables a faster, lower-fidelity DCT approximation.
	FastDCT bool
	// FastUpsampling enables approximate chroma upsampling.
	FastUpsampling bool
}

// Subsampling is a chroma subsampling scheme name.
type Subsampling string

const (
	Subsampling411 Subsampling = "411"
	Subsampling420 Subsampling = "420"
	Subsampling422 Subsampling = "422"
	Subsampling440 Subsampling = "440"
	Subsampling441 Subsampling = "441"
	Subsampling444 Subsampling = "444"
)

func (s Subsampling) resolve() (turbo.Subsampling, error) {
	switch s {
	case Subsampling411:
		return turbo.Subsamp411, nil
	case Subsampling420:
		return turbo.Subsamp420, nil
	case Subsampling422:
		return turbo.Subsamp422, nil
	case Subsampling440:
		return turbo.Subsamp440, nil
	case Subsampling441:
		return turbo.Subsamp441, nil
	case Subsampling444:
		return turbo.Subsamp444, nil
	}
	return 0, &ConfigurationError{Option: "subsampling", Value: string(s)}
}

// EncoderOptions tunes the encode pipeline. Start from
// DefaultEncoderOptions; the zero value encodes baseline (non-
// progressive) output at the default quality.
type EncoderOptions struct {
	// Quality is the JPEG quality factor, 1-100. Zero selects
	// DefaultQuality.
	Quality int
	// Subsampling selects the chroma subsampling scheme for sources
	// with 3 or more channels. Empty selects 4:4:4. An unrecognized
	// value is a ConfigurationError.
	Subsampling Subsampling
	// Progressive selects a progressive scan structure over baseline.
	Progressive bool
	// OptimizeCoding enables optimized entropy coding: smaller
	// output, slower encode.
	OptimizeCoding bool
	// FastDCT enables a faster, lower-fidelity DCT approximation.
	FastDCT bool
	// XMP, when non-empty, is injected into the output stream as an
	// APP1 segment. It must have a root <rdf:RDF> element.
	XMP string
	// Background is the color composited under any alpha channel
	// before encoding. Nil means white.
	Background color.Color
}

// DefaultEncoderOptions returns the canonical encoder defaults:
// quality 50, 4:4:4 subsampling, progressive output.
func DefaultEncoderOptions() EncoderOptions {
	return EncoderOptions{
		Quality:     DefaultQuality,
		Subsampling: Subsampling444,
		Progressive: true,
	}
}
