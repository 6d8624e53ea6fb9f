package turbojpeg

import (
	"image"
	"image/color"
	"image/draw"
)

// ColorSpace is the logical color space of a raster.
type ColorSpace int

const (
	// ColorSpaceUnset marks a CMYK-family raster whose color space is
	// resolved by the downstream CMYK→RGB conversion.
	ColorSpaceUnset ColorSpace = iota
	ColorSpaceGray
	ColorSpaceSRGB
)

func (cs ColorSpace) String() string {
	switch cs {
	case ColorSpaceGray:
		return "Gray"
	case ColorSpaceSRGB:
		return "sRGB"
	}
	return "unset"
}

// Raster is an 8-bit-per-sample pixel buffer in interleaved layout,
// fully packed with no scanline padding. Pix holds exactly
// Width*Height*Channels bytes. It is backed directly by the bytes
// transferred out of the native library, with no further copying.
type Raster struct {
	Width      int
	Height     int
	Channels   int
	ColorSpace ColorSpace
	Pix        []byte
}

func newRaster(width, height, channels int, cs ColorSpace, pix []byte) *Raster {
	if pix == nil {
		pix = make([]byte, width*height*channels)
	}
	return &Raster{
		Width:      width,
		Height:     height,
		Channels:   channels,
		ColorSpace: cs,
		Pix:        pix,
	}
}

// PixOffset returns the index of the first sample of the pixel at (x, y).
func (r *Raster) PixOffset(x, y int) int {
	return (y*r.Width + x) * r.Channels
}

// Bounds implements image.Image.
func (r *Raster) Bounds() image.Rectangle {
	return image.Rect(0, 0, r.Width, r.Height)
}

// ColorModel implements image.Image.
func (r *Raster) ColorModel() color.Model {
	switch r.Channels {
	case 1:
		return color.GrayModel
	case 4:
		return color.CMYKModel
	}
	return color.NRGBAModel
}

// At implements image.Image.
func (r *Raster) At(x, y int) color.Color {
	if x < 0 || y < 0 || x >= r.Width || y >= r.Height {
		return color.NRGBA{}
	}
	i := r.PixOffset(x, y)
	switch r.Channels {
	case 1:
		return color.Gray{Y: r.Pix[i]}
	case 4:
		return color.CMYK{C: r.Pix[i], M: r.Pix[i+1], Y: r.Pix[i+2], K: r.Pix[i+3]}
	}
	return color.NRGBA{R: r.Pix[i], G: r.Pix[i+1], B: r.Pix[i+2], A: 0xFF}
}

// invertSamples flips every sample in place. Adobe encoders write CMYK
// channels inverted; this undoes that before conversion.
func invertSamples(pix []byte) {
	for i := range pix {
		pix[i] = ^pix[i]
	}
}

// packPixels flattens an arbitrary source image into the fully-packed
// interleaved byte layout the native compressor expects, returning the
// bytes and the channel count. Byte-interleaved 3-channel and 1-channel
// sources copy directly; images with an alpha channel are flattened
// against bg first; everything else goes through the per-pixel slow
// path.
func packPixels(img image.Image, bg color.Color) ([]byte, int) {
	switch src := img.(type) {
	case *Raster:
		switch src.Channels {
		case 3:
			return src.Pix, 3
		case 1:
			return src.Pix, 1
		}
		// 4-channel rasters fall through to the slow path.
	case *image.Gray:
		return packGray(src), 1
	case *image.RGBA, *image.NRGBA, *image.RGBA64, *image.NRGBA64:
		return packPixels(removeAlpha(img, bg), bg)
	}
	return packSlow(img), 3
}

func packGray(src *image.Gray) []byte {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	pix := make([]byte, w*h)
	for y := 0; y < h; y++ {
		copy(pix[y*w:(y+1)*w], src.Pix[y*src.Stride:y*src.Stride+w])
	}
	return pix
}

// packSlow fetches each sample individually, pixel by pixel, band by
// band within the pixel.
func packSlow(img image.Image) []byte {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	pix := make([]byte, w*h*3)
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			pix[i] = byte(r >> 8)
			pix[i+1] = byte(g >> 8)
			pix[i+2] = byte(bl >> 8)
			i += 3
		}
	}
	return pix
}

// removeAlpha composites img over bg and returns a 3-channel raster.
func removeAlpha(img image.Image, bg color.Color) *Raster {
	if bg == nil {
		bg = color.White
	}
	b := img.Bounds()
	flat := image.NewRGBA(b)
	draw.Draw(flat, b, image.NewUniform(bg), image.Point{}, draw.Src)
	draw.Draw(flat, b, img, b.Min, draw.Over)

	w, h := b.Dx(), b.Dy()
	out := newRaster(w, h, 3, ColorSpaceSRGB, nil)
	for y := 0; y < h; y++ {
		si := y * flat.Stride
		di := y * w * 3
		for x := 0; x < w; x++ {
			out.Pix[di] = flat.Pix[si]
			out.Pix[di+1] = flat.Pix[si+1]
			out.Pix[di+2] = flat.Pix[si+2]
			si += 4
			di += 3
		}
	}
	return out
}
