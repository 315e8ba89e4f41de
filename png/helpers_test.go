package png

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	stdpng "image/png"
	"testing"

	"github.com/klauspost/compress/zlib"

	"pngbridge/pngio"
)

func encodeStd(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := stdpng.Encode(&buf, img); err != nil {
		t.Fatalf("image/png: %v", err)
	}
	return buf.Bytes()
}

func decodeStd(data []byte) (image.Image, error) {
	return stdpng.Decode(bytes.NewReader(data))
}

func chunk(typ string, data []byte) []byte {
	b := binary.BigEndian.AppendUint32(nil, uint32(len(data)))
	b = append(b, typ...)
	b = append(b, data...)
	return binary.BigEndian.AppendUint32(b, crc32.ChecksumIEEE(b[4:]))
}

// ihdrEnd is the offset just past the IHDR chunk of any valid PNG.
const ihdrEnd = 8 + 8 + 13 + 4

// afterIHDR inserts a chunk right after IHDR.
func afterIHDR(data []byte, typ string, payload []byte) []byte {
	out := append([]byte(nil), data[:ihdrEnd]...)
	out = append(out, chunk(typ, payload)...)
	return append(out, data[ihdrEnd:]...)
}

// beforeIEND inserts a chunk right before the trailing IEND.
func beforeIEND(data []byte, typ string, payload []byte) []byte {
	end := len(data) - 12
	out := append([]byte(nil), data[:end]...)
	out = append(out, chunk(typ, payload)...)
	return append(out, data[end:]...)
}

// patchIHDR rewrites the bit depth and colour type and fixes the CRC.
func patchIHDR(data []byte, depth, colorType byte) []byte {
	out := bytes.Clone(data)
	out[24], out[25] = depth, colorType
	binary.BigEndian.PutUint32(out[29:], crc32.ChecksumIEEE(out[12:29]))
	return out
}

// rawPNG builds a PNG from already filtered scanline data.
func rawPNG(t *testing.T, w, h, depth, colorType, interlace int, pre [][]byte, raw []byte) []byte {
	t.Helper()
	var z bytes.Buffer
	zw := zlib.NewWriter(&z)
	if _, err := zw.Write(raw); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}

	hdr := binary.BigEndian.AppendUint32(nil, uint32(w))
	hdr = binary.BigEndian.AppendUint32(hdr, uint32(h))
	hdr = append(hdr, byte(depth), byte(colorType), 0, 0, byte(interlace))

	b := []byte(pngio.Signature)
	b = append(b, chunk("IHDR", hdr)...)
	for _, c := range pre {
		b = append(b, c...)
	}
	b = append(b, chunk("IDAT", z.Bytes())...)
	return append(b, chunk("IEND", nil)...)
}

func grabPayload(x, y int32) []byte {
	b := binary.BigEndian.AppendUint32(nil, uint32(x))
	return binary.BigEndian.AppendUint32(b, uint32(y))
}

// paletted returns a w x h image over n palette entries whose indices
// cycle through the palette. Entry 1 is half transparent when translucent
// is set.
func paletted(w, h, n int, translucent bool) *image.Paletted {
	pal := make(color.Palette, n)
	for i := range pal {
		pal[i] = color.NRGBA{R: uint8(i * 10), G: uint8(255 - i), B: uint8(i * 3), A: 0xff}
	}
	if translucent {
		pal[1] = color.NRGBA{R: 10, G: 254, B: 3, A: 0x80}
	}
	img := image.NewPaletted(image.Rect(0, 0, w, h), pal)
	for i := range img.Pix {
		img.Pix[i] = uint8(i % n)
	}
	return img
}
