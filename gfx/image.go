package gfx

import (
	"errors"
	"fmt"
)

var ErrConvert = errors.New("unsupported pixel format conversion")

// Offsets is a pixel-space anchor carried alongside the image, such as a
// sprite hotspot. It does not affect pixel data.
type Offsets struct {
	X int32
	Y int32
}

// Image is a tightly packed pixel buffer of a single pixel format. The
// pixel at (x, y) starts at Pix()[y*Stride() + x*Format().Traits().Bytes].
type Image struct {
	pix     []byte
	width   int
	height  int
	format  PixelFormat
	palette *Palette
	offsets Offsets
}

// NewImage allocates a zeroed image. Index8 images get a default 256-entry
// RGB palette which decoders may fill in place or replace.
func NewImage(width, height int, format PixelFormat) *Image {
	if width < 0 || height < 0 {
		panic(fmt.Sprintf("gfx: negative image size %dx%d", width, height))
	}
	if !format.Valid() {
		panic(fmt.Sprintf("gfx: invalid pixel format %d", int(format)))
	}

	img := &Image{
		pix:    make([]byte, width*height*format.Traits().Bytes),
		width:  width,
		height: height,
		format: format,
	}
	if format.Traits().Indexed {
		img.palette = &Palette{
			data:   make([]byte, MaxPaletteEntries*RGB.Traits().Bytes),
			format: RGB,
			mask:   format.Traits().PalMask,
			count:  MaxPaletteEntries,
		}
	}
	return img
}

func (img *Image) Width() int          { return img.width }
func (img *Image) Height() int         { return img.height }
func (img *Image) Format() PixelFormat { return img.format }
func (img *Image) Pix() []byte         { return img.pix }
func (img *Image) Stride() int         { return img.width * img.format.Traits().Bytes }
func (img *Image) IsIndexed() bool     { return img.format.Traits().Indexed }
func (img *Image) Palette() *Palette   { return img.palette }
func (img *Image) Offsets() Offsets    { return img.offsets }

func (img *Image) SetOffsets(o Offsets) { img.offsets = o }

// SetPalette replaces the palette of an indexed image.
func (img *Image) SetPalette(p *Palette) error {
	if !img.IsIndexed() {
		return fmt.Errorf("cannot attach a palette to a %s image", img.format)
	}
	if p == nil {
		return errors.New("nil palette")
	}
	img.palette = p
	return nil
}

// Scanline returns row y. The slice aliases the pixel buffer.
func (img *Image) Scanline(y int) []byte {
	stride := img.Stride()
	return img.pix[y*stride : (y+1)*stride : (y+1)*stride]
}

// Convert changes the pixel format in place. Indexed images expand through
// their palette; channel order and alpha are adjusted between the direct
// colour formats. Converting to Index8 is not supported.
func (img *Image) Convert(to PixelFormat) error {
	if to == img.format {
		return nil
	}
	if !to.Valid() || to.Traits().Indexed {
		return fmt.Errorf("%w: %s to %s", ErrConvert, img.format, to)
	}

	dst := make([]byte, img.width*img.height*to.Traits().Bytes)
	if img.IsIndexed() {
		if err := img.expandIndexed(dst, to); err != nil {
			return err
		}
	} else {
		img.swizzle(dst, to)
	}

	img.pix = dst
	img.format = to
	img.palette = nil
	return nil
}

func (img *Image) expandIndexed(dst []byte, to PixelFormat) error {
	if img.palette == nil {
		return fmt.Errorf("%w: indexed image has no palette", ErrConvert)
	}
	n := to.Traits().Bytes
	mask := img.palette.Mask()
	for i, idx := range img.pix {
		idx &= mask
		if int(idx) >= img.palette.Count() {
			return fmt.Errorf("%w: palette index %d out of range (%d entries)", ErrConvert, idx, img.palette.Count())
		}
		c := img.palette.Color(int(idx))
		putPixel(dst[i*n:i*n+n], to, c.R, c.G, c.B, c.A)
	}
	return nil
}

func (img *Image) swizzle(dst []byte, to PixelFormat) {
	sn, dn := img.format.Traits().Bytes, to.Traits().Bytes
	for i := range img.width * img.height {
		r, g, b, a := getPixel(img.pix[i*sn:i*sn+sn], img.format)
		putPixel(dst[i*dn:i*dn+dn], to, r, g, b, a)
	}
}

func getPixel(p []byte, f PixelFormat) (r, g, b, a uint8) {
	switch f {
	case RGB:
		return p[0], p[1], p[2], 0xFF
	case BGR:
		return p[2], p[1], p[0], 0xFF
	case RGBA:
		return p[0], p[1], p[2], p[3]
	case BGRA:
		return p[2], p[1], p[0], p[3]
	}
	return 0, 0, 0, 0xFF
}

func putPixel(p []byte, f PixelFormat, r, g, b, a uint8) {
	switch f {
	case RGB:
		p[0], p[1], p[2] = r, g, b
	case BGR:
		p[0], p[1], p[2] = b, g, r
	case RGBA:
		p[0], p[1], p[2], p[3] = r, g, b, a
	case BGRA:
		p[0], p[1], p[2], p[3] = b, g, r, a
	}
}
