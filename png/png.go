// Package png translates between PNG files and gfx images.
//
// Decoding produces RGB, RGBA or Index8 images. Indexed images get an RGBA
// palette when the file carries tRNS, RGB otherwise. The private "grAb"
// chunk, when present before the image data, sets the image offsets.
//
// Encoding accepts RGB, BGR, RGBA and BGRA images, written as 8-bit
// non-interlaced RGB or RGBA. Offsets are not written.
package png

import (
	"io"
	"log/slog"

	"pngbridge/gfx"
	"pngbridge/pngio"
)

// Codec implements gfx.Codec for PNG. It holds no state and is safe for
// concurrent use.
type Codec struct{}

var _ gfx.Codec = Codec{}

func New() Codec {
	return Codec{}
}

func (Codec) Mimetype() string {
	return "png"
}

type peeker interface {
	Peek(n int) ([]byte, error)
}

// Detect reports whether r begins with the PNG signature. Readers with a
// Peek method are left unread; others lose the bytes read.
func (Codec) Detect(r io.Reader) bool {
	n := len(pngio.Signature)
	if p, ok := r.(peeker); ok {
		b, err := p.Peek(n)
		return err == nil && string(b) == pngio.Signature
	}

	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return false
	}
	return string(buf) == pngio.Signature
}

func logger() *slog.Logger {
	return slog.Default().With("codec", "png")
}
