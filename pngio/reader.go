package pngio

import (
	"encoding/binary"
	"fmt"
	"hash"
	"hash/crc32"
	"io"

	"github.com/klauspost/compress/zlib"
)

// Header is the content of an IHDR chunk.
type Header struct {
	Width     int
	Height    int
	BitDepth  int
	ColorType int
	Interlace int
}

// Reader is a decode session over a PNG datastream.
type Reader struct {
	r       io.Reader
	opts    options
	crc     hash.Hash32
	tmp     [3 * 256]byte
	handler ChunkHandler

	hdr     Header
	stage   int
	plte    []byte
	trns    []byte
	hasTRNS bool

	transforms Transform

	idatLength uint32
	zr         io.ReadCloser
	imageRead  bool
	scratch    *scratch
	closed     bool
}

// NewReader starts a decode session reading from r. The caller must Close
// it.
func NewReader(r io.Reader, opts ...Option) *Reader {
	live.Add(1)
	return &Reader{
		r:       r,
		opts:    buildOptions(opts),
		crc:     crc32.NewIEEE(),
		scratch: getScratch(),
	}
}

// SetChunkHandler installs the hook for unknown chunks. It must be set
// before ReadInfo to see the chunks preceding the image data.
func (d *Reader) SetChunkHandler(h ChunkHandler) {
	d.handler = h
}

// Header returns the IHDR content as declared in the stream.
func (d *Reader) Header() Header {
	return d.hdr
}

// Palette returns the PLTE entries as RGB triples.
func (d *Reader) Palette() []byte {
	return d.plte
}

// Transparency returns the tRNS payload and whether a valid one was read.
func (d *Reader) Transparency() ([]byte, bool) {
	return d.trns, d.hasTRNS
}

// ReadInfo checks the signature and reads every chunk up to the start of
// the image data.
func (d *Reader) ReadInfo() error {
	if d.closed {
		return ErrClosed
	}
	if d.stage != dsStart {
		return ErrState
	}

	if _, err := io.ReadFull(d.r, d.tmp[:len(Signature)]); err != nil {
		return readErr(err)
	}
	if string(d.tmp[:len(Signature)]) != Signature {
		return FormatError("not a PNG file")
	}

	for {
		length, typ, err := d.readChunkHeader()
		if err != nil {
			return err
		}

		switch typ {
		case "IHDR":
			if d.stage != dsStart {
				return chunkOrderError
			}
			if err := d.parseIHDR(length); err != nil {
				return err
			}
			d.stage = dsSeenIHDR
		case "PLTE":
			if err := d.parsePLTE(length); err != nil {
				return err
			}
		case "tRNS":
			if err := d.parseTRNS(length); err != nil {
				return err
			}
		case "IDAT":
			if d.stage < dsSeenIHDR {
				return chunkOrderError
			}
			if d.hdr.ColorType == ColorPalette && d.plte == nil {
				return FormatError("missing palette")
			}
			d.idatLength = length
			d.stage = dsSeenIDAT
			return nil
		case "IEND":
			return FormatError("no image data")
		default:
			if d.stage == dsStart {
				return chunkOrderError
			}
			if err := d.handleUnknown(length, typ); err != nil {
				return err
			}
		}
	}
}

func (d *Reader) parseIHDR(length uint32) error {
	if length != 13 {
		return FormatError("bad IHDR length")
	}
	if _, err := io.ReadFull(d.r, d.tmp[:13]); err != nil {
		return readErr(err)
	}
	d.crc.Write(d.tmp[:13])
	if d.tmp[10] != 0 {
		return UnsupportedError("compression method")
	}
	if d.tmp[11] != 0 {
		return UnsupportedError("filter method")
	}
	if d.tmp[12] != InterlaceNone && d.tmp[12] != InterlaceAdam7 {
		return FormatError("invalid interlace method")
	}

	w := int32(binary.BigEndian.Uint32(d.tmp[0:4]))
	h := int32(binary.BigEndian.Uint32(d.tmp[4:8]))
	if w <= 0 || h <= 0 {
		return FormatError("non-positive dimension")
	}
	if w > maxDimension {
		return FormatError(fmt.Sprintf("image width exceeds limit: %d", w))
	}
	if h > maxDimension {
		return FormatError(fmt.Sprintf("image height exceeds limit: %d", h))
	}
	// Up to 8 bytes per pixel, for 16 bits per channel RGBA.
	if int64(w)*int64(h)*8 > maxImageBytes {
		return FormatError(fmt.Sprintf("image too large: %dx%d", w, h))
	}

	depth, colorType := int(d.tmp[8]), int(d.tmp[9])
	if !validDepth(colorType, depth) {
		return UnsupportedError(fmt.Sprintf("bit depth %d, color type %d", depth, colorType))
	}

	d.hdr = Header{
		Width:     int(w),
		Height:    int(h),
		BitDepth:  depth,
		ColorType: colorType,
		Interlace: int(d.tmp[12]),
	}
	return d.verifyChecksum()
}

func (d *Reader) parsePLTE(length uint32) error {
	if d.stage != dsSeenIHDR {
		return chunkOrderError
	}
	if d.hdr.ColorType == ColorGray || d.hdr.ColorType == ColorGrayAlpha {
		return FormatError("PLTE in a grayscale image")
	}
	n := int(length / 3)
	if length%3 != 0 || n <= 0 || n > 256 {
		return FormatError("bad PLTE length")
	}
	if d.hdr.ColorType == ColorPalette && n > 1<<d.hdr.BitDepth {
		return FormatError("palette larger than bit depth allows")
	}
	data, err := d.readChunkData(length)
	if err != nil {
		return err
	}
	d.plte = data
	d.stage = dsSeenPLTE
	return nil
}

func (d *Reader) parseTRNS(length uint32) error {
	if d.stage != dsSeenIHDR && d.stage != dsSeenPLTE {
		return chunkOrderError
	}
	data, err := d.readChunkData(length)
	if err != nil {
		return err
	}
	d.stage = dsSeentRNS

	var reason string
	switch d.hdr.ColorType {
	case ColorPalette:
		switch {
		case d.plte == nil:
			return chunkOrderError
		case len(data) == 0:
			reason = "no entries"
		case len(data) > len(d.plte)/3:
			reason = "more entries than the palette"
		}
	case ColorGray:
		if len(data) != 2 {
			reason = "bad length for grayscale"
		}
	case ColorRGB:
		if len(data) != 6 {
			reason = "bad length for truecolor"
		}
	default:
		reason = "image already has an alpha channel"
	}
	if reason != "" {
		d.opts.logger.Warn("ignoring tRNS chunk", "reason", reason, "length", len(data))
		return nil
	}

	d.trns = data
	d.hasTRNS = true
	return nil
}

// idatReader presents consecutive IDAT payloads as one stream.
type idatReader struct {
	d *Reader
}

func (r idatReader) Read(p []byte) (int, error) {
	d := r.d
	if len(p) == 0 {
		return 0, nil
	}
	for d.idatLength == 0 {
		// We have exhausted an IDAT chunk. Verify the checksum of that chunk.
		if err := d.verifyChecksum(); err != nil {
			return 0, err
		}
		length, typ, err := d.readChunkHeader()
		if err != nil {
			return 0, err
		}
		if typ != "IDAT" {
			return 0, FormatError("not enough pixel data")
		}
		d.idatLength = length
	}
	n, err := d.r.Read(p[:min(len(p), int(d.idatLength))])
	d.crc.Write(p[:n])
	d.idatLength -= uint32(n)
	if err != nil {
		if n > 0 && err == io.EOF {
			return n, nil
		}
		return n, readErr(err)
	}
	return n, nil
}

// ReadImage decodes the whole image into rows, top to bottom. Each row
// must hold at least UpdateInfo().RowBytes bytes.
func (d *Reader) ReadImage(rows [][]byte) error {
	if d.closed {
		return ErrClosed
	}
	if d.stage != dsSeenIDAT || d.imageRead {
		return ErrState
	}

	info := d.UpdateInfo()
	if info.BitDepth < 8 {
		return UnsupportedError(fmt.Sprintf("packed %d-bit output rows", info.BitDepth))
	}
	if len(rows) != info.Height {
		return fmt.Errorf("png: got %d rows, want %d", len(rows), info.Height)
	}
	for y, row := range rows {
		if len(row) < info.RowBytes {
			return fmt.Errorf("png: row %d holds %d bytes, want %d", y, len(row), info.RowBytes)
		}
	}

	passes := progressive[:]
	if d.hdr.Interlace == InterlaceAdam7 {
		if d.transforms&Deinterlace == 0 {
			return UnsupportedError("interlaced image without interlace handling")
		}
		passes = adam7[:]
	}

	if d.zr == nil {
		zr, err := zlib.NewReader(idatReader{d})
		if err != nil {
			return zlibErr(err)
		}
		d.zr = zr
	}
	d.imageRead = true

	plan := d.plan()
	bitsPP := channels(d.hdr.ColorType) * d.hdr.BitDepth
	bytesPP := max(1, bitsPP/8)

	for _, p := range passes {
		pw, ph := p.size(d.hdr.Width, d.hdr.Height)
		if pw == 0 || ph == 0 {
			continue
		}
		// The +1 is for the per-row filter type, which is at cr[0].
		rowSize := 1 + (bitsPP*pw+7)/8
		cr, pr := d.scratch.rows(rowSize)

		for py := range ph {
			if _, err := io.ReadFull(d.zr, cr); err != nil {
				return zlibErr(err)
			}
			if err := unfilter(cr[0], cr[1:], pr[1:], bytesPP); err != nil {
				return err
			}
			plan.emit(rows[p.yOffset+py*p.yFactor], cr[1:], pw, p.xOffset, p.xFactor)
			cr, pr = pr, cr
		}
	}
	return nil
}

// ReadEnd consumes the rest of the image data and the chunks after it,
// through IEND.
func (d *Reader) ReadEnd() error {
	if d.closed {
		return ErrClosed
	}
	if d.stage != dsSeenIDAT {
		return ErrState
	}

	if d.zr != nil {
		extra := false
		for {
			n, err := d.zr.Read(d.tmp[:])
			extra = extra || n > 0
			if err == io.EOF {
				break
			}
			if err != nil {
				return zlibErr(err)
			}
		}
		if extra {
			d.opts.logger.Warn("extra compressed data")
		}
	}

	if d.idatLength > 0 {
		if d.zr != nil {
			d.opts.logger.Warn("trailing bytes in IDAT chunk", "length", d.idatLength)
		}
		if _, err := io.CopyN(d.crc, d.r, int64(d.idatLength)); err != nil {
			return readErr(err)
		}
		d.idatLength = 0
	}
	if err := d.verifyChecksum(); err != nil {
		return err
	}

	for {
		length, typ, err := d.readChunkHeader()
		if err != nil {
			return err
		}

		switch typ {
		case "IEND":
			if length != 0 {
				return FormatError("bad IEND length")
			}
			if err := d.verifyChecksum(); err != nil {
				return err
			}
			d.stage = dsSeenIEND
			return nil
		case "IDAT":
			// Ignore trailing zero-length or garbage IDAT chunks.
			if d.zr != nil && length > 0 {
				d.opts.logger.Warn("extra IDAT chunk", "length", length)
			}
			if err := d.skipChunkData(length); err != nil {
				return err
			}
		case "IHDR", "PLTE", "tRNS":
			return chunkOrderError
		default:
			if err := d.handleUnknown(length, typ); err != nil {
				return err
			}
		}
	}
}

// Close ends the session and releases its buffers. It is safe to call
// more than once.
func (d *Reader) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	if d.zr != nil {
		// A decode failure is reported by the call that hit it.
		_ = d.zr.Close()
		d.zr = nil
	}
	d.scratch.release()
	d.scratch = nil
	d.handler = nil
	live.Add(-1)
	return nil
}
