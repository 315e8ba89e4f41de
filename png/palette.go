package png

import (
	"fmt"

	"pngbridge/gfx"
)

// MergePalette builds an image palette from PLTE entries (RGB triples) and
// an optional tRNS array. With transparency the palette holds RGBA entries
// and slots past the end of trns are opaque; without it, RGB entries.
func MergePalette(plte, trns []byte, hasTRNS bool) (*gfx.Palette, error) {
	if len(plte)%3 != 0 {
		return nil, fmt.Errorf("palette length %d is not a multiple of 3", len(plte))
	}
	count := len(plte) / 3
	mask := gfx.Index8.Traits().PalMask

	if !hasTRNS {
		return gfx.NewPalette(append([]byte(nil), plte...), gfx.RGB, mask, count)
	}

	data := make([]byte, count*4)
	for i := range count {
		copy(data[i*4:i*4+3], plte[i*3:i*3+3])
		data[i*4+3] = 0xFF
		if i < len(trns) {
			data[i*4+3] = trns[i]
		}
	}
	return gfx.NewPalette(data, gfx.RGBA, mask, count)
}
