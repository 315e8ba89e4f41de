package gfx

import (
	"fmt"
	"image/color"
)

// MaxPaletteEntries is the size of the 8-bit index space.
const MaxPaletteEntries = 256

// Palette is an owned table of fixed-size colour entries.
type Palette struct {
	data   []byte
	format PixelFormat
	mask   uint8
	count  int
}

// NewPalette takes ownership of data, which must hold exactly count
// entries of the given entry format (RGB or RGBA).
func NewPalette(data []byte, format PixelFormat, mask uint8, count int) (*Palette, error) {
	if format != RGB && format != RGBA {
		return nil, fmt.Errorf("unsupported palette entry format: %s", format)
	}
	if count < 0 || count > MaxPaletteEntries || count > int(mask)+1 {
		return nil, fmt.Errorf("invalid palette entry count %d for mask %#x", count, mask)
	}
	if n := count * format.Traits().Bytes; len(data) != n {
		return nil, fmt.Errorf("palette data holds %d bytes, want %d", len(data), n)
	}

	return &Palette{
		data:   data,
		format: format,
		mask:   mask,
		count:  count,
	}, nil
}

func (p *Palette) Data() []byte        { return p.data }
func (p *Palette) Format() PixelFormat { return p.format }
func (p *Palette) Mask() uint8         { return p.mask }
func (p *Palette) Count() int          { return p.count }
func (p *Palette) HasAlpha() bool      { return p.format.Traits().Alpha }

// Entry returns the bytes of entry i. Writes go straight to the palette.
func (p *Palette) Entry(i int) []byte {
	n := p.format.Traits().Bytes
	return p.data[i*n : i*n+n : i*n+n]
}

func (p *Palette) Color(i int) color.NRGBA {
	e := p.Entry(i)
	c := color.NRGBA{R: e[0], G: e[1], B: e[2], A: 0xFF}
	if p.HasAlpha() {
		c.A = e[3]
	}
	return c
}

func (p *Palette) Clone() *Palette {
	cp := *p
	cp.data = append([]byte(nil), p.data...)
	return &cp
}

// ColorPalette returns the palette as a standard library palette.
func (p *Palette) ColorPalette() color.Palette {
	pal := make(color.Palette, p.count)
	for i := range p.count {
		pal[i] = p.Color(i)
	}
	return pal
}
