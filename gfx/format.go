package gfx

import (
	"fmt"
	"strings"
)

type PixelFormat int

const (
	None PixelFormat = iota
	Index8
	RGB
	BGR
	RGBA
	BGRA
)

// Traits describes the storage layout of a pixel format.
type Traits struct {
	Bytes    int
	Channels int
	Alpha    bool
	Indexed  bool
	// PalMask is the index mask for palette-indexed formats, 0 otherwise.
	PalMask uint8
}

var traits = [...]Traits{
	None:   {},
	Index8: {Bytes: 1, Channels: 1, Indexed: true, PalMask: 0xFF},
	RGB:    {Bytes: 3, Channels: 3},
	BGR:    {Bytes: 3, Channels: 3},
	RGBA:   {Bytes: 4, Channels: 4, Alpha: true},
	BGRA:   {Bytes: 4, Channels: 4, Alpha: true},
}

var names = [...]string{
	None:   "none",
	Index8: "index8",
	RGB:    "rgb",
	BGR:    "bgr",
	RGBA:   "rgba",
	BGRA:   "bgra",
}

func (f PixelFormat) Valid() bool {
	return f > None && int(f) < len(traits)
}

func (f PixelFormat) Traits() Traits {
	if f < None || int(f) >= len(traits) {
		return Traits{}
	}
	return traits[f]
}

func (f PixelFormat) String() string {
	if f < None || int(f) >= len(names) {
		return fmt.Sprintf("PixelFormat(%d)", int(f))
	}
	return names[f]
}

// ParsePixelFormat maps a lower-case format name back to its value.
func ParsePixelFormat(s string) (PixelFormat, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range names {
		if n == s && PixelFormat(i).Valid() {
			return PixelFormat(i), nil
		}
	}
	return None, fmt.Errorf("unknown pixel format: %q", s)
}
