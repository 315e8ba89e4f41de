package palette

import (
	"errors"
	"fmt"
	"math"

	"pngbridge/gfx"
)

// BankSize is the number of entries in one palette bank.
const BankSize = 16

var ErrNotIndexed = errors.New("image is not palette-indexed")

// Swap overwrites the colour of the image palette's entries with those of
// src, entry for entry. Alpha is kept. Entries beyond src are untouched.
func Swap(img *gfx.Image, src *gfx.Palette) error {
	pal := img.Palette()
	if !img.IsIndexed() || pal == nil {
		return ErrNotIndexed
	}

	for i := range min(pal.Count(), src.Count()) {
		c := src.Color(i)
		e := pal.Entry(i)
		e[0], e[1], e[2] = c.R, c.G, c.B
	}
	return nil
}

// SelectBank copies the 16-entry bank at index bank to the front of the
// image palette, so that indices 0-15 draw with that bank's colours.
func SelectBank(img *gfx.Image, bank int) error {
	pal := img.Palette()
	if !img.IsIndexed() || pal == nil {
		return ErrNotIndexed
	}

	start := bank * BankSize
	if bank < 0 || start+BankSize > pal.Count() {
		return fmt.Errorf("palette bank %d out of range (%d entries)", bank, pal.Count())
	}
	if bank == 0 {
		return nil
	}

	n := pal.Format().Traits().Bytes
	data := pal.Data()
	copy(data[:BankSize*n], data[start*n:(start+BankSize)*n])
	return nil
}

// Gamma brightens the colour channels of every entry as c^(1+level/100),
// clamped to 255. A level of 0 leaves the palette unchanged.
func Gamma(p *gfx.Palette, level float64) {
	if level == 0 {
		return
	}

	var table [256]uint8
	exp := 1 + 0.01*level
	for c := range table {
		table[c] = uint8(math.Min(math.Pow(float64(c), exp), 255))
	}

	for i := range p.Count() {
		e := p.Entry(i)
		e[0], e[1], e[2] = table[e[0]], table[e[1]], table[e[2]]
	}
}
