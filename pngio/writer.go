package pngio

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
)

// Flusher is implemented by destinations that buffer their output.
type Flusher interface {
	Flush() error
}

const (
	wsStart = iota
	wsHeader
	wsImage
	wsEnd
)

// Writer is an encode session producing a PNG datastream. Only 8-bit RGB
// and RGBA non-interlaced images are written.
type Writer struct {
	w       io.Writer
	opts    options
	hdr     Header
	bgr     bool
	stage   int
	err     error
	scratch *scratch
	closed  bool
}

// NewWriter starts an encode session writing to w. The caller must Close
// it.
func NewWriter(w io.Writer, opts ...Option) *Writer {
	live.Add(1)
	return &Writer{
		w:       w,
		opts:    buildOptions(opts),
		scratch: getScratch(),
	}
}

// SetBGR declares that source rows store blue first; they are swapped to
// RGB order on write.
func (e *Writer) SetBGR() { e.bgr = true }

// WriteHeader emits the signature and the IHDR chunk.
func (e *Writer) WriteHeader(h Header) error {
	if e.closed {
		return ErrClosed
	}
	if e.stage != wsStart {
		return ErrState
	}
	if h.BitDepth != 8 || (h.ColorType != ColorRGB && h.ColorType != ColorRGBA) {
		return UnsupportedError(fmt.Sprintf("writing bit depth %d, color type %d", h.BitDepth, h.ColorType))
	}
	if h.Interlace != InterlaceNone {
		return UnsupportedError("writing interlaced images")
	}
	if h.Width <= 0 || h.Height <= 0 || int64(h.Width) > 0x7fffffff || int64(h.Height) > 0x7fffffff {
		return FormatError(fmt.Sprintf("invalid image size %dx%d", h.Width, h.Height))
	}

	if _, err := io.WriteString(e.w, Signature); err != nil {
		e.err = &StreamError{Err: err}
		return e.err
	}

	var ihdr [13]byte
	binary.BigEndian.PutUint32(ihdr[0:4], uint32(h.Width))
	binary.BigEndian.PutUint32(ihdr[4:8], uint32(h.Height))
	ihdr[8] = uint8(h.BitDepth)
	ihdr[9] = uint8(h.ColorType)
	ihdr[10] = 0 // compression method
	ihdr[11] = 0 // filter method
	ihdr[12] = uint8(h.Interlace)
	if err := e.writeChunk(ihdr[:], "IHDR"); err != nil {
		return err
	}

	e.hdr = h
	e.stage = wsHeader
	return nil
}

// idatWriter emits written data as IDAT chunks of at most idatSize bytes.
type idatWriter struct {
	e *Writer
}

func (w idatWriter) Write(b []byte) (int, error) {
	n := 0
	for len(b) > 0 {
		part := b[:min(len(b), idatSize)]
		if err := w.e.writeChunk(part, "IDAT"); err != nil {
			return n, err
		}
		n += len(part)
		b = b[len(part):]
	}
	return n, nil
}

// WriteImage filters, compresses and emits every row. Rows are read, not
// modified.
func (e *Writer) WriteImage(rows [][]byte) error {
	if e.closed {
		return ErrClosed
	}
	if e.stage != wsHeader {
		return ErrState
	}
	bpp := channels(e.hdr.ColorType)
	rowBytes := e.hdr.Width * bpp
	if len(rows) != e.hdr.Height {
		return fmt.Errorf("png: got %d rows, want %d", len(rows), e.hdr.Height)
	}
	for y, row := range rows {
		if len(row) < rowBytes {
			return fmt.Errorf("png: row %d holds %d bytes, want %d", y, len(row), rowBytes)
		}
	}

	bw := bufio.NewWriterSize(idatWriter{e}, idatSize)
	zw, err := zlib.NewWriterLevel(bw, e.opts.level)
	if err != nil {
		return UnsupportedError(err.Error())
	}
	e.stage = wsImage

	cr, pr := e.scratch.rows(rowBytes)
	for _, row := range rows {
		copy(cr, row[:rowBytes])
		if e.bgr {
			for i := 0; i < rowBytes; i += bpp {
				cr[i], cr[i+2] = cr[i+2], cr[i]
			}
		}
		ft := filter(&e.scratch.cand, cr, pr, bpp)
		if _, err := zw.Write(e.scratch.cand[ft]); err != nil {
			return e.fail(err)
		}
		cr, pr = pr, cr
	}

	if err := zw.Close(); err != nil {
		return e.fail(err)
	}
	if err := bw.Flush(); err != nil {
		return e.fail(err)
	}
	return nil
}

// WriteEnd emits IEND and flushes the destination when it buffers.
func (e *Writer) WriteEnd() error {
	if e.closed {
		return ErrClosed
	}
	if e.stage != wsImage {
		return ErrState
	}
	if err := e.writeChunk(nil, "IEND"); err != nil {
		return err
	}
	if f, ok := e.w.(Flusher); ok {
		if err := f.Flush(); err != nil {
			e.err = &StreamError{Err: err}
			return e.err
		}
	}
	e.stage = wsEnd
	return nil
}

func (e *Writer) fail(err error) error {
	if e.err != nil {
		return e.err
	}
	return &StreamError{Err: err}
}

// Close ends the session. Bytes already written stay written. It is safe
// to call more than once.
func (e *Writer) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	for i := range e.scratch.cand {
		e.scratch.cand[i] = e.scratch.cand[i][:0]
	}
	e.scratch.release()
	e.scratch = nil
	live.Add(-1)
	return nil
}
