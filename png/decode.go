package png

import (
	"io"

	"pngbridge/gfx"
	"pngbridge/pngio"
)

// Load decodes a PNG stream positioned at its signature. Errors are
// *LoadError values; the decode session is closed on every return.
func (Codec) Load(r io.Reader) (*gfx.Image, error) {
	if r == nil {
		return nil, &LoadError{Kind: ErrResourceInit, Msg: "failed to initialize decoder"}
	}

	log := logger()
	d := pngio.NewReader(r, pngio.WithLogger(log))
	defer d.Close()

	// Installed before ReadInfo so it sees the chunks preceding IDAT.
	grab := &offsetChunk{}
	d.SetChunkHandler(grab)

	if err := d.ReadInfo(); err != nil {
		return nil, loadFailure(err)
	}
	hdr := d.Header()

	d.SetStrip16()
	d.SetPacking()
	d.SetInterlaceHandling()
	switch hdr.ColorType {
	case pngio.ColorGray:
		d.SetExpand()
	case pngio.ColorGrayAlpha:
		d.SetGrayToRGB()
	}

	info := d.UpdateInfo()
	format, err := ResolveFormat(info.ColorType, info.BitDepth)
	if err != nil {
		return nil, err
	}

	img := gfx.NewImage(info.Width, info.Height, format)
	rows := make([][]byte, info.Height)
	for y := range rows {
		rows[y] = img.Scanline(y)
	}

	if format == gfx.Index8 {
		trns, ok := d.Transparency()
		pal, err := MergePalette(d.Palette(), trns, ok)
		if err != nil {
			return nil, &LoadError{Kind: ErrLibrary, Msg: "library error", Err: err}
		}
		if err := img.SetPalette(pal); err != nil {
			return nil, &LoadError{Kind: ErrLibrary, Msg: "library error", Err: err}
		}
	}
	img.SetOffsets(grab.offsets)

	if err := d.ReadImage(rows); err != nil {
		return nil, loadFailure(err)
	}
	if err := d.ReadEnd(); err != nil {
		return nil, loadFailure(err)
	}

	log.Debug("decoded image",
		"width", info.Width,
		"height", info.Height,
		"format", format,
		"interlaced", hdr.Interlace == pngio.InterlaceAdam7,
		"offsets", grab.offsets)
	return img, nil
}
