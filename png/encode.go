package png

import (
	"io"

	"pngbridge/gfx"
	"pngbridge/pngio"
)

// Save encodes img as an 8-bit non-interlaced PNG. Errors are *SaveError
// values. An unsupported pixel format fails before anything is written.
func (Codec) Save(w io.Writer, img *gfx.Image) error {
	if w == nil || img == nil {
		return &SaveError{Kind: ErrResourceInit, Msg: "failed to initialize encoder"}
	}

	log := logger()
	e := pngio.NewWriter(w, pngio.WithLogger(log))
	defer e.Close()

	colorType, err := ResolveColorType(img.Format())
	if err != nil {
		return err
	}
	if f := img.Format(); f == gfx.BGR || f == gfx.BGRA {
		e.SetBGR()
	}

	err = e.WriteHeader(pngio.Header{
		Width:     img.Width(),
		Height:    img.Height(),
		BitDepth:  8,
		ColorType: colorType,
		Interlace: pngio.InterlaceNone,
	})
	if err != nil {
		return saveFailure(err)
	}

	rows := make([][]byte, img.Height())
	for y := range rows {
		rows[y] = img.Scanline(y)
	}
	if err := e.WriteImage(rows); err != nil {
		return saveFailure(err)
	}
	if err := e.WriteEnd(); err != nil {
		return saveFailure(err)
	}

	log.Debug("encoded image",
		"width", img.Width(),
		"height", img.Height(),
		"format", img.Format())
	return nil
}
