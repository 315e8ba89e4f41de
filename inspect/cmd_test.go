package inspect

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	stdpng "image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pngbridge/palette"
	"pngbridge/png"
)

// withOffsets inserts a grAb chunk right after IHDR.
func withOffsets(data []byte, x, y int32) []byte {
	payload := binary.BigEndian.AppendUint32(nil, uint32(x))
	payload = binary.BigEndian.AppendUint32(payload, uint32(y))

	chunk := binary.BigEndian.AppendUint32(nil, uint32(len(payload)))
	chunk = append(chunk, png.OffsetChunkType...)
	chunk = append(chunk, payload...)
	chunk = binary.BigEndian.AppendUint32(chunk, crc32.ChecksumIEEE(chunk[4:]))

	const ihdrEnd = 8 + 8 + 13 + 4
	out := append([]byte(nil), data[:ihdrEnd]...)
	out = append(out, chunk...)
	return append(out, data[ihdrEnd:]...)
}

func writeSprite(t *testing.T, name string, x, y int32) {
	t.Helper()
	pal := make(color.Palette, 40)
	for i := range pal {
		pal[i] = color.NRGBA{R: uint8(i), G: uint8(2 * i), B: uint8(3 * i), A: 0xff}
	}
	var buf bytes.Buffer
	if err := stdpng.Encode(&buf, image.NewPaletted(image.Rect(0, 0, 3, 3), pal)); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(name, withOffsets(buf.Bytes(), x, y), 0o644); err != nil {
		t.Fatal(err)
	}
}

func run(t *testing.T, c *CLICmd) (string, error) {
	t.Helper()
	if err := c.Validate(nil); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	var out bytes.Buffer
	err := c.Run(slog.New(slog.NewTextHandler(&out, nil)))
	return out.String(), err
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	writeSprite(t, filepath.Join(dir, "hero.png"), -4, 12)
	writeSprite(t, filepath.Join(dir, "tile.png"), 0, 0)
	if err := os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, &CLICmd{Scan: dir, Palettes: "pal"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for _, want := range []string{"x=-4 y=12", "format=index8", "colors=40", "png=2 skipped=1 errors=0"} {
		if !strings.Contains(out, want) {
			t.Errorf("log lacks %q:\n%s", want, out)
		}
	}

	pal, err := palette.Load(filepath.Join(dir, "pal", "hero.pal"))
	if err != nil {
		t.Fatalf("exported palette: %v", err)
	}
	if pal.Count() != 40 || pal.Color(5) != (color.NRGBA{R: 5, G: 10, B: 15, A: 0xff}) {
		t.Errorf("exported palette has %d entries, entry 5 = %v", pal.Count(), pal.Color(5))
	}
}

func TestRunOnlyOffsets(t *testing.T) {
	dir := t.TempDir()
	writeSprite(t, filepath.Join(dir, "hero.png"), 1, 2)
	writeSprite(t, filepath.Join(dir, "tile.png"), 0, 0)

	out, err := run(t, &CLICmd{Scan: dir, OnlyOffsets: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(out, "hero.png") || strings.Contains(out, "tile.png") {
		t.Errorf("unexpected report:\n%s", out)
	}
}

func TestRunCorrupt(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "broken.png"), []byte("\x89PNG\r\n\x1a\n\x00\x00"), 0o644); err != nil {
		t.Fatal(err)
	}
	out, err := run(t, &CLICmd{Scan: dir})
	if err == nil {
		t.Error("Run succeeded on a truncated PNG")
	}
	if !strings.Contains(out, "could not read image") {
		t.Errorf("log lacks the failure:\n%s", out)
	}
}

func TestValidate(t *testing.T) {
	c := &CLICmd{Scan: filepath.Join(t.TempDir(), "missing")}
	if err := c.Validate(nil); err == nil {
		t.Error("Validate accepted a missing folder")
	}
}
