package turbojpeg

import "github.com/davesmith10/turbojpeg/internal/turbo"

// pixelPlan describes how a native colorspace maps onto raster memory:
// the channel count the library will emit, the channel count of the
// final raster after any downstream conversion, the native pixel format
// to request, and the logical color space of the result.
type pixelPlan struct {
	inChannels  int
	outChannels int
	format      turbo.PixelFormat
	colorSpace  ColorSpace
}

// resolveColorspace is the decode-side pixel format policy. CMYK and
// YCCK both decode to a 4-channel CMYK layout whose color space stays
// unset until the downstream CMYK→RGB conversion runs; everything that
// is not gray or CMYK-family decodes as RGB.
func resolveColorspace(cs turbo.Colorspace) pixelPlan {
	switch cs {
	case turbo.ColorspaceGray:
		return pixelPlan{1, 1, turbo.PixelFormatGray, ColorSpaceGray}
	case turbo.ColorspaceCMYK, turbo.ColorspaceYCCK:
		return pixelPlan{4, 3, turbo.PixelFormatCMYK, ColorSpaceUnset}
	default: // RGB or YCbCr
		return pixelPlan{3, 3, turbo.PixelFormatRGB, ColorSpaceSRGB}
	}
}

// resolveRasterFormat is the encode-side half of the policy: a
// 1-channel source selects grayscale output with grayscale subsampling
// (which cannot fail); anything else is compressed as RGB with the
// caller-requested subsampling.
func resolveRasterFormat(channels int, requested turbo.Subsampling) (turbo.PixelFormat, turbo.Subsampling) {
	if channels == 1 {
		return turbo.PixelFormatGray, turbo.SubsampGray
	}
	return turbo.PixelFormatRGB, requested
}
