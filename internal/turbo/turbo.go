// Package turbo is a thin cgo bridge to the TurboJPEG 3 API of
// libjpeg-turbo. It owns every native allocation made on behalf of the
// codec: handles created here must be released with Close, and buffers
// with Free. Both are safe to release more than once.
package turbo

/*
#cgo pkg-config: libturbojpeg
#include <stdlib.h>
#include <turbojpeg.h>
*/
import "C"

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// Colorspace is a JPEG-internal colorspace as reported by the library
// after reading a header (TJCS_*).
type Colorspace int

const (
	ColorspaceRGB   = Colorspace(C.TJCS_RGB)
	ColorspaceYCbCr = Colorspace(C.TJCS_YCbCr)
	ColorspaceGray  = Colorspace(C.TJCS_GRAY)
	ColorspaceCMYK  = Colorspace(C.TJCS_CMYK)
	ColorspaceYCCK  = Colorspace(C.TJCS_YCCK)
)

func (cs Colorspace) String() string {
	switch cs {
	case ColorspaceRGB:
		return "RGB"
	case ColorspaceYCbCr:
		return "YCbCr"
	case ColorspaceGray:
		return "Gray"
	case ColorspaceCMYK:
		return "CMYK"
	case ColorspaceYCCK:
		return "YCCK"
	}
	return "Unknown"
}

// PixelFormat describes the memory layout of uncompressed pixels passed
// to or received from the library (TJPF_*).
type PixelFormat int

const (
	PixelFormatRGB  = PixelFormat(C.TJPF_RGB)
	PixelFormatBGR  = PixelFormat(C.TJPF_BGR)
	PixelFormatGray = PixelFormat(C.TJPF_GRAY)
	PixelFormatCMYK = PixelFormat(C.TJPF_CMYK)
)

// Subsampling is a chroma subsampling scheme (TJSAMP_*).
type Subsampling int

const (
	Subsamp444  = Subsampling(C.TJSAMP_444)
	Subsamp422  = Subsampling(C.TJSAMP_422)
	Subsamp420  = Subsampling(C.TJSAMP_420)
	SubsampGray = Subsampling(C.TJSAMP_GRAY)
	Subsamp440  = Subsampling(C.TJSAMP_440)
	Subsamp411  = Subsampling(C.TJSAMP_411)
	Subsamp441  = Subsampling(C.TJSAMP_441)
)

// Param is a tunable codec parameter (TJPARAM_*).
type Param int

const (
	ParamQuality      = Param(C.TJPARAM_QUALITY)
	ParamSubsamp      = Param(C.TJPARAM_SUBSAMP)
	ParamJPEGWidth    = Param(C.TJPARAM_JPEGWIDTH)
	ParamJPEGHeight   = Param(C.TJPARAM_JPEGHEIGHT)
	ParamColorspace   = Param(C.TJPARAM_COLORSPACE)
	ParamFastDCT      = Param(C.TJPARAM_FASTDCT)
	ParamFastUpsample = Param(C.TJPARAM_FASTUPSAMPLE)
	ParamOptimize     = Param(C.TJPARAM_OPTIMIZE)
	ParamProgressive  = Param(C.TJPARAM_PROGRESSIVE)
	ParamScanLimit    = Param(C.TJPARAM_SCANLIMIT)
)

var loadOnce sync.Once

// ensureLoaded runs once per process, no matter how many handles are
// created. The library itself is linked at load time; this only records
// that the first native call is about to happen.
func ensureLoaded() {
	loadOnce.Do(func() {
		logrus.Debug("turbo: TurboJPEG library in use")
	})
}
