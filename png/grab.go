package png

import (
	"encoding/binary"

	"pngbridge/gfx"
	"pngbridge/pngio"
)

// OffsetChunkType tags the private ancillary chunk holding an image's
// offsets as two big-endian signed 32-bit integers.
const OffsetChunkType = "grAb"

// ReadOffsets decodes a grAb payload. Payloads shorter than 8 bytes are
// rejected; bytes past the first 8 are ignored.
func ReadOffsets(data []byte) (gfx.Offsets, bool) {
	if len(data) < 8 {
		return gfx.Offsets{}, false
	}
	return gfx.Offsets{
		X: int32(binary.BigEndian.Uint32(data[0:4])),
		Y: int32(binary.BigEndian.Uint32(data[4:8])),
	}, true
}

// offsetChunk collects the offsets while the session scans chunks.
type offsetChunk struct {
	offsets gfx.Offsets
}

func (o *offsetChunk) HandleChunk(c pngio.Chunk) (bool, error) {
	if c.Type != OffsetChunkType {
		return false, nil
	}
	off, ok := ReadOffsets(c.Data)
	if !ok {
		return false, nil
	}
	o.offsets = off
	return true, nil
}
