package palette

import (
	"fmt"
	"image"
	"log/slog"

	"pngbridge/gfx"

	"golang.org/x/image/draw"
)

// Remap maps a direct-colour image onto pal and returns a new Index8
// image carrying a copy of pal. Offsets are kept.
func Remap(logger *slog.Logger, img *gfx.Image, pal *gfx.Palette, dither bool) (*gfx.Image, error) {
	if img.IsIndexed() {
		return nil, fmt.Errorf("image is already palette-indexed")
	}
	if pal.Count() == 0 {
		return nil, fmt.Errorf("empty palette")
	}

	logger.Info("applying palette", "colors", pal.Count(), "dither", dither)
	src := img.ToImage()
	sr := src.Bounds()
	dr := image.Rect(0, 0, sr.Dx(), sr.Dy())
	dest := image.NewPaletted(dr, pal.ColorPalette())

	if dither {
		draw.FloydSteinberg.Draw(dest, dr, src, sr.Min)
	} else {
		draw.Draw(dest, dr, src, sr.Min, draw.Src)
	}

	out := gfx.NewImage(img.Width(), img.Height(), gfx.Index8)
	for y := range out.Height() {
		copy(out.Scanline(y), dest.Pix[y*dest.Stride:y*dest.Stride+out.Width()])
	}
	if err := out.SetPalette(pal.Clone()); err != nil {
		return nil, err
	}
	out.SetOffsets(img.Offsets())
	return out, nil
}
