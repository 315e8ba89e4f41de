// Package formats assembles the codec registry used by the command line
// tools: the native PNG codec plus adapters over standard library and
// golang.org/x/image codecs for the other formats.
package formats

import (
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"io"

	"pngbridge/gfx"
	"pngbridge/png"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/image/vp8l"
	"golang.org/x/image/webp"
)

var ErrReadOnly = errors.New("format cannot be written")

// New returns a registry with PNG first, then GIF, JPEG, BMP, TIFF, WebP
// and bare VP8L bitstreams.
func New() *gfx.Registry {
	return gfx.NewRegistry(
		png.New(),
		&stdCodec{
			name:   "gif",
			magic:  []string{"GIF87a", "GIF89a"},
			decode: gif.Decode,
			encode: func(w io.Writer, img image.Image) error {
				return gif.Encode(w, img, nil)
			},
		},
		&stdCodec{
			name:   "jpeg",
			magic:  []string{"\xff\xd8"},
			decode: jpeg.Decode,
			encode: func(w io.Writer, img image.Image) error {
				return jpeg.Encode(w, img, &jpeg.Options{Quality: 100})
			},
		},
		&stdCodec{
			name:   "bmp",
			magic:  []string{"BM????\x00\x00\x00\x00"},
			decode: bmp.Decode,
			encode: bmp.Encode,
		},
		&stdCodec{
			name:   "tiff",
			magic:  []string{"II*\x00", "MM\x00*"},
			decode: tiff.Decode,
			encode: func(w io.Writer, img image.Image) error {
				return tiff.Encode(w, img, nil)
			},
		},
		&stdCodec{
			name:   "webp",
			magic:  []string{"RIFF????WEBPVP8"},
			decode: webp.Decode,
		},
		&stdCodec{
			name:   "vp8l",
			magic:  []string{"/????"},
			// The version field, the top three bits of byte 4, must be 0.
			check:  func(b []byte) bool { return b[4]>>5 == 0 },
			decode: vp8l.Decode,
		},
	)
}

// stdCodec adapts an image.Image codec to gfx.Codec.
type stdCodec struct {
	name   string
	magic  []string
	check  func(header []byte) bool
	decode func(io.Reader) (image.Image, error)
	encode func(io.Writer, image.Image) error
}

func (c *stdCodec) Mimetype() string {
	return c.name
}

type peeker interface {
	Peek(n int) ([]byte, error)
}

// Detect matches the magic strings, where '?' matches any byte. Only
// readers with a Peek method are examined.
func (c *stdCodec) Detect(r io.Reader) bool {
	p, ok := r.(peeker)
	if !ok {
		return false
	}
	for _, m := range c.magic {
		b, err := p.Peek(len(m))
		if err == nil && match(m, b) && (c.check == nil || c.check(b)) {
			return true
		}
	}
	return false
}

func match(magic string, b []byte) bool {
	if len(magic) != len(b) {
		return false
	}
	for i, c := range b {
		if magic[i] != c && magic[i] != '?' {
			return false
		}
	}
	return true
}

func (c *stdCodec) Load(r io.Reader) (*gfx.Image, error) {
	img, err := c.decode(r)
	if err != nil {
		return nil, fmt.Errorf("could not decode %s: %w", c.name, err)
	}
	return gfx.FromImage(img), nil
}

func (c *stdCodec) Save(w io.Writer, img *gfx.Image) error {
	if c.encode == nil {
		return fmt.Errorf("%s: %w", c.name, ErrReadOnly)
	}
	if err := c.encode(w, img.ToImage()); err != nil {
		return fmt.Errorf("could not encode %s: %w", c.name, err)
	}
	return nil
}
