package gfx

import (
	"bufio"
	"errors"
	"fmt"
	"io"
)

var ErrUnknownFormat = errors.New("unknown image format")

// Codec reads and writes one image file format.
type Codec interface {
	Mimetype() string
	// Detect reports whether r starts with this codec's signature. Readers
	// with a Peek method are not advanced.
	Detect(r io.Reader) bool
	Load(r io.Reader) (*Image, error)
	Save(w io.Writer, img *Image) error
}

// Registry picks a codec by signature or by name. The zero value is empty
// and ready to use.
type Registry struct {
	codecs []Codec
}

func NewRegistry(codecs ...Codec) *Registry {
	r := &Registry{}
	for _, c := range codecs {
		r.Register(c)
	}
	return r
}

// Register adds c. Codecs are tried in registration order.
func (r *Registry) Register(c Codec) {
	r.codecs = append(r.codecs, c)
}

func (r *Registry) Lookup(mimetype string) (Codec, bool) {
	for _, c := range r.codecs {
		if c.Mimetype() == mimetype {
			return c, true
		}
	}
	return nil, false
}

// Detect returns the first codec recognising the stream. The returned
// reader must be used in place of src for the actual load.
func (r *Registry) Detect(src io.Reader) (Codec, io.Reader, error) {
	br, ok := src.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(src)
	}
	for _, c := range r.codecs {
		if c.Detect(br) {
			return c, br, nil
		}
	}
	return nil, br, ErrUnknownFormat
}

// Load detects the stream's format and decodes it, returning the image
// and the name of the codec that read it.
func (r *Registry) Load(src io.Reader) (*Image, string, error) {
	c, br, err := r.Detect(src)
	if err != nil {
		return nil, "", err
	}
	img, err := c.Load(br)
	if err != nil {
		return nil, c.Mimetype(), fmt.Errorf("could not load %s image: %w", c.Mimetype(), err)
	}
	return img, c.Mimetype(), nil
}
