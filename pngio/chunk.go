package pngio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
)

// Chunk is a chunk the session does not interpret itself.
type Chunk struct {
	Type string
	Data []byte
}

// Critical reports whether a decoder must understand the chunk to render
// the image, as signalled by an upper-case first letter.
func (c Chunk) Critical() bool {
	return len(c.Type) == 4 && c.Type[0] >= 'A' && c.Type[0] <= 'Z'
}

// ChunkHandler receives chunks unknown to the session. It returns true
// when it consumed the chunk. An unknown critical chunk that no handler
// consumes fails the decode; unknown ancillary chunks are dropped.
type ChunkHandler interface {
	HandleChunk(c Chunk) (bool, error)
}

// ChunkFunc adapts a function to ChunkHandler.
type ChunkFunc func(c Chunk) (bool, error)

func (f ChunkFunc) HandleChunk(c Chunk) (bool, error) {
	return f(c)
}

func validChunkType(t []byte) bool {
	for _, b := range t {
		if (b < 'A' || b > 'Z') && (b < 'a' || b > 'z') {
			return false
		}
	}
	return true
}

// readChunkHeader reads a chunk's length and type and starts its CRC.
func (d *Reader) readChunkHeader() (uint32, string, error) {
	if _, err := io.ReadFull(d.r, d.tmp[:8]); err != nil {
		return 0, "", readErr(err)
	}
	length := binary.BigEndian.Uint32(d.tmp[:4])
	if length > 0x7fffffff {
		return 0, "", FormatError(fmt.Sprintf("bad chunk length: %d", length))
	}
	if !validChunkType(d.tmp[4:8]) {
		return 0, "", FormatError(fmt.Sprintf("invalid chunk type %q", d.tmp[4:8]))
	}
	d.crc.Reset()
	d.crc.Write(d.tmp[4:8])
	return length, string(d.tmp[4:8]), nil
}

// readChunkData reads a chunk payload and verifies its CRC. The buffer
// grows as data arrives so a lying length cannot force a huge allocation.
func (d *Reader) readChunkData(length uint32) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := io.CopyN(&buf, d.r, int64(length)); err != nil {
		return nil, readErr(err)
	}
	d.crc.Write(buf.Bytes())
	if err := d.verifyChecksum(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// skipChunkData discards a payload, still checking its CRC.
func (d *Reader) skipChunkData(length uint32) error {
	if _, err := io.CopyN(d.crc, d.r, int64(length)); err != nil {
		return readErr(err)
	}
	return d.verifyChecksum()
}

func (d *Reader) verifyChecksum() error {
	if _, err := io.ReadFull(d.r, d.tmp[:4]); err != nil {
		return readErr(err)
	}
	if binary.BigEndian.Uint32(d.tmp[:4]) != d.crc.Sum32() {
		return FormatError("invalid checksum")
	}
	return nil
}

// handleUnknown offers a chunk to the installed handler.
func (d *Reader) handleUnknown(length uint32, typ string) error {
	data, err := d.readChunkData(length)
	if err != nil {
		return err
	}
	c := Chunk{Type: typ, Data: data}

	handled := false
	if d.handler != nil {
		if handled, err = d.handler.HandleChunk(c); err != nil {
			return err
		}
	}
	if !handled && c.Critical() {
		return FormatError("unknown critical chunk " + typ)
	}
	return nil
}

// writeChunk emits one chunk with its length and CRC.
func (e *Writer) writeChunk(b []byte, name string) error {
	if e.err != nil {
		return e.err
	}
	if len(b) > 0x7fffffff {
		e.err = UnsupportedError(fmt.Sprintf("%s chunk is too large: %d", name, len(b)))
		return e.err
	}
	var hdr [8]byte
	binary.BigEndian.PutUint32(hdr[:4], uint32(len(b)))
	copy(hdr[4:8], name)

	crc := crc32.NewIEEE()
	crc.Write(hdr[4:8])
	crc.Write(b)

	var sum [4]byte
	binary.BigEndian.PutUint32(sum[:], crc.Sum32())

	for _, part := range [][]byte{hdr[:], b, sum[:]} {
		if _, err := e.w.Write(part); err != nil {
			e.err = &StreamError{Err: err}
			return e.err
		}
	}
	return nil
}
