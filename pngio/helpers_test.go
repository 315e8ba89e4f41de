package pngio

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"testing"

	"github.com/klauspost/compress/zlib"
)

func chunk(typ string, data []byte) []byte {
	b := binary.BigEndian.AppendUint32(nil, uint32(len(data)))
	b = append(b, typ...)
	b = append(b, data...)
	return binary.BigEndian.AppendUint32(b, crc32.ChecksumIEEE(b[4:]))
}

func ihdr(h Header) []byte {
	b := binary.BigEndian.AppendUint32(nil, uint32(h.Width))
	b = binary.BigEndian.AppendUint32(b, uint32(h.Height))
	return chunk("IHDR", append(b, byte(h.BitDepth), byte(h.ColorType), 0, 0, byte(h.Interlace)))
}

func deflate(t *testing.T, raw []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(raw); err != nil {
		t.Fatalf("zlib write: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zlib close: %v", err)
	}
	return buf.Bytes()
}

// encodePNG assembles a datastream from a header, chunks placed before
// and after the image data, and already filtered scanlines.
func encodePNG(t *testing.T, h Header, pre [][]byte, raw []byte, post [][]byte) []byte {
	t.Helper()
	b := []byte(Signature)
	b = append(b, ihdr(h)...)
	for _, c := range pre {
		b = append(b, c...)
	}
	b = append(b, chunk("IDAT", deflate(t, raw))...)
	for _, c := range post {
		b = append(b, c...)
	}
	return append(b, chunk("IEND", nil)...)
}

// unfiltered prefixes every row with filter type None.
func unfiltered(rows ...[]byte) []byte {
	var raw []byte
	for _, r := range rows {
		raw = append(raw, ftNone)
		raw = append(raw, r...)
	}
	return raw
}

// decode runs a full session over data. setup runs after ReadInfo.
func decode(data []byte, handler ChunkHandler, setup func(*Reader)) (Info, [][]byte, error) {
	d := NewReader(bytes.NewReader(data))
	defer d.Close()
	if handler != nil {
		d.SetChunkHandler(handler)
	}
	if err := d.ReadInfo(); err != nil {
		return Info{}, nil, err
	}
	if setup != nil {
		setup(d)
	}

	info := d.UpdateInfo()
	rows := make([][]byte, info.Height)
	for y := range rows {
		rows[y] = make([]byte, info.RowBytes)
	}
	if err := d.ReadImage(rows); err != nil {
		return info, nil, err
	}
	if err := d.ReadEnd(); err != nil {
		return info, nil, err
	}
	return info, rows, nil
}

func checkRows(t *testing.T, got [][]byte, want ...[]byte) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d rows, want %d", len(got), len(want))
	}
	for y := range want {
		if !bytes.Equal(got[y], want[y]) {
			t.Errorf("row %d = %v, want %v", y, got[y], want[y])
		}
	}
}
