package gfx

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// ToImage copies the image into a standard library image: *image.Paletted
// for indexed images and *image.NRGBA otherwise. Offsets are not carried.
func (img *Image) ToImage() image.Image {
	bounds := image.Rect(0, 0, img.width, img.height)
	if img.IsIndexed() {
		var pal color.Palette
		if img.palette != nil {
			pal = img.palette.ColorPalette()
		}
		dst := image.NewPaletted(bounds, pal)
		copy(dst.Pix, img.pix)
		return dst
	}

	dst := image.NewNRGBA(bounds)
	n := img.format.Traits().Bytes
	for i := range img.width * img.height {
		r, g, b, a := getPixel(img.pix[i*n:i*n+n], img.format)
		dst.Pix[i*4+0], dst.Pix[i*4+1], dst.Pix[i*4+2], dst.Pix[i*4+3] = r, g, b, a
	}
	return dst
}

// FromImage converts a standard library image. Paletted images keep their
// indices and get an RGBA palette; everything else becomes RGBA, or RGB
// when every pixel is opaque.
func FromImage(src image.Image) *Image {
	b := src.Bounds()
	if p, ok := src.(*image.Paletted); ok && len(p.Palette) <= MaxPaletteEntries {
		return fromPaletted(p)
	}

	// Non-premultiplied sources are read as is; drawing them would round
	// colours through premultiplied alpha.
	nrgba, ok := src.(*image.NRGBA)
	if !ok {
		nrgba = image.NewNRGBA(b)
		draw.Draw(nrgba, b, src, b.Min, draw.Src)
	}
	row := func(y int) []byte {
		off := nrgba.PixOffset(b.Min.X, b.Min.Y+y)
		return nrgba.Pix[off : off+b.Dx()*4]
	}

	opaque := true
	for y := 0; y < b.Dy() && opaque; y++ {
		r := row(y)
		for i := 3; i < len(r); i += 4 {
			if r[i] != 0xFF {
				opaque = false
				break
			}
		}
	}

	if !opaque {
		img := NewImage(b.Dx(), b.Dy(), RGBA)
		for y := range img.height {
			copy(img.Scanline(y), row(y))
		}
		return img
	}

	img := NewImage(b.Dx(), b.Dy(), RGB)
	for y := range img.height {
		in, out := row(y), img.Scanline(y)
		for x := range img.width {
			copy(out[x*3:x*3+3], in[x*4:x*4+3])
		}
	}
	return img
}

func fromPaletted(p *image.Paletted) *Image {
	b := p.Bounds()
	img := NewImage(b.Dx(), b.Dy(), Index8)
	for y := range img.height {
		off := p.PixOffset(b.Min.X, b.Min.Y+y)
		copy(img.Scanline(y), p.Pix[off:off+img.width])
	}

	data := make([]byte, len(p.Palette)*4)
	for i, c := range p.Palette {
		n := color.NRGBAModel.Convert(c).(color.NRGBA)
		data[i*4+0], data[i*4+1], data[i*4+2], data[i*4+3] = n.R, n.G, n.B, n.A
	}
	// cannot fail: at most 256 RGBA entries
	img.palette, _ = NewPalette(data, RGBA, Index8.Traits().PalMask, len(p.Palette))
	return img
}
