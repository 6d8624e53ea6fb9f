// Package cms converts decoded CMYK pixels to RGB. When the source JPEG
// carries a CMYK ICC profile the conversion runs through lcms2 against
// a built-in sRGB destination; otherwise it falls back to plain
// arithmetic.
package cms

/*
#cgo pkg-config: lcms2
#include <lcms2.h>
#include <stdlib.h>
*/
import "C"

import (
	"fmt"
	"image/color"
	"runtime"
	"unsafe"
)

// Lcms2Version returns the encoded CMM version from lcms2.
func Lcms2Version() int {
	return int(C.cmsGetEncodedCMMversion())
}

// Transform performs an ICC CMYK→RGB transformation using lcms2.
type Transform struct {
	hSrc       C.cmsHPROFILE
	hDst       C.cmsHPROFILE
	hTransform C.cmsHTRANSFORM
}

// NewTransform creates a CMYK→sRGB transform from raw ICC profile data.
func NewTransform(srcICC []byte) (*Transform, error) {
	if len(srcICC) == 0 {
		return nil, fmt.Errorf("cms: empty source profile")
	}
	hSrc := C.cmsOpenProfileFromMem(unsafe.Pointer(&srcICC[0]), C.cmsUInt32Number(len(srcICC)))
	if hSrc == nil {
		return nil, fmt.Errorf("cms: failed to open source profile")
	}

	hDst := C.cmsCreate_sRGBProfile()
	if hDst == nil {
		C.cmsCloseProfile(hSrc)
		return nil, fmt.Errorf("cms: failed to create sRGB profile")
	}

	hTransform := C.cmsCreateTransform(
		hSrc, C.TYPE_CMYK_8,
		hDst, C.TYPE_RGB_8,
		C.INTENT_PERCEPTUAL,
		C.cmsFLAGS_NOCACHE,
	)
	if hTransform == nil {
		C.cmsCloseProfile(hDst)
		C.cmsCloseProfile(hSrc)
		return nil, fmt.Errorf("cms: failed to create transform")
	}

	t := &Transform{
		hSrc:       hSrc,
		hDst:       hDst,
		hTransform: hTransform,
	}
	runtime.SetFinalizer(t, (*Transform).Close)
	return t, nil
}

// TransformPixels converts CMYK pixels to RGB row by row.
// src must be width*height*4 bytes (CMYK), returns width*height*3 bytes (RGB).
func (t *Transform) TransformPixels(src []byte, width, height int) ([]byte, error) {
	expectedSrc := width * height * 4
	if len(src) != expectedSrc {
		return nil, fmt.Errorf("cms: expected %d CMYK bytes, got %d", expectedSrc, len(src))
	}

	dst := make([]byte, width*height*3)

	for y := 0; y < height; y++ {
		srcOff := y * width * 4
		dstOff := y * width * 3
		C.cmsDoTransform(
			t.hTransform,
			unsafe.Pointer(&src[srcOff]),
			unsafe.Pointer(&dst[dstOff]),
			C.cmsUInt32Number(width),
		)
	}

	return dst, nil
}

// Close releases lcms2 resources.
func (t *Transform) Close() {
	if t.hTransform != nil {
		C.cmsDeleteTransform(t.hTransform)
		t.hTransform = nil
	}
	if t.hDst != nil {
		C.cmsCloseProfile(t.hDst)
		t.hDst = nil
	}
	if t.hSrc != nil {
		C.cmsCloseProfile(t.hSrc)
		t.hSrc = nil
	}
}

// ConvertCMYKToRGB converts interleaved CMYK pixels to RGB. A usable
// CMYK ICC profile routes the conversion through lcms2; anything else
// falls back to the arithmetic conversion.
func ConvertCMYKToRGB(src []byte, width, height int, srcICC []byte) ([]byte, error) {
	if profileIsCMYK(srcICC) {
		t, err := NewTransform(srcICC)
		if err == nil {
			defer t.Close()
			return t.TransformPixels(src, width, height)
		}
	}
	return convertCMYKToRGBFallback(src, width, height)
}

func profileIsCMYK(icc []byte) bool {
	pi, err := ParseProfileInfo(icc)
	return err == nil && pi.ColorSpace == "CMYK"
}

func convertCMYKToRGBFallback(src []byte, width, height int) ([]byte, error) {
	expectedSrc := width * height * 4
	if len(src) != expectedSrc {
		return nil, fmt.Errorf("cms: expected %d CMYK bytes, got %d", expectedSrc, len(src))
	}
	dst := make([]byte, width*height*3)
	for p, q := 0, 0; p < len(src); p, q = p+4, q+3 {
		r, g, b := color.CMYKToRGB(src[p], src[p+1], src[p+2], src[p+3])
		dst[q], dst[q+1], dst[q+2] = r, g, b
	}
	return dst, nil
}
