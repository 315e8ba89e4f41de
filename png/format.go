package png

import (
	"fmt"

	"pngbridge/gfx"
	"pngbridge/pngio"
)

// ResolveFormat maps a post-transform colour type and bit depth to the
// pixel format the decoder produces.
func ResolveFormat(colorType, bitDepth int) (gfx.PixelFormat, error) {
	var f gfx.PixelFormat
	switch colorType {
	case pngio.ColorRGB:
		f = gfx.RGB
	case pngio.ColorRGBA:
		f = gfx.RGBA
	case pngio.ColorPalette:
		f = gfx.Index8
	default:
		return gfx.None, &LoadError{
			Kind: ErrUnsupportedFormat,
			Msg:  fmt.Sprintf("unknown color type: %d", colorType),
		}
	}
	if bitDepth != 8 {
		return gfx.None, &LoadError{
			Kind: ErrUnsupportedFormat,
			Msg:  fmt.Sprintf("invalid bit depth: %d", bitDepth),
		}
	}
	return f, nil
}

// ResolveColorType maps a pixel format to the colour type it is written
// as. Channel order does not matter here, only the channel count.
func ResolveColorType(f gfx.PixelFormat) (int, error) {
	switch f {
	case gfx.RGB, gfx.BGR:
		return pngio.ColorRGB, nil
	case gfx.RGBA, gfx.BGRA:
		return pngio.ColorRGBA, nil
	}
	return 0, &SaveError{
		Kind: ErrUnsupportedFormat,
		Msg:  "incompatible pixel format",
		Err:  fmt.Errorf("cannot encode %s", f),
	}
}
