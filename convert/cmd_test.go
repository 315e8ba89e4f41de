package convert

import (
	"bytes"
	"image"
	"image/color"
	stdpng "image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"pngbridge/gfx"
	"pngbridge/palette"
	"pngbridge/parallel"
	"pngbridge/png"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func writeIndexedPNG(t *testing.T, name string, alpha uint8) {
	t.Helper()
	pal := make(color.Palette, 32)
	for i := range pal {
		pal[i] = color.NRGBA{R: uint8(i * 8), G: 0x10, B: 0x20, A: 0xff}
	}
	pal[3] = color.NRGBA{R: 24, G: 0x10, B: 0x20, A: alpha}
	img := image.NewPaletted(image.Rect(0, 0, 4, 2), pal)
	copy(img.Pix, []byte{0, 1, 2, 3, 31, 30, 29, 3})

	f, err := os.Create(name)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := stdpng.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func loadPNG(t *testing.T, name string) *gfx.Image {
	t.Helper()
	f, err := os.Open(name)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.New().Load(f)
	if err != nil {
		t.Fatalf("Load %s: %v", name, err)
	}
	return img
}

func newCmd(t *testing.T, scan string) *CLICmd {
	t.Helper()
	c := &CLICmd{Scan: scan, Dest: "out", Format: "png", Expand: "auto"}
	if err := c.Validate(nil); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	return c
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	writeIndexedPNG(t, filepath.Join(dir, "opaque.png"), 0xff)
	writeIndexedPNG(t, filepath.Join(dir, "alpha.png"), 0x40)

	c := newCmd(t, dir)
	pool := parallel.Start(2, discard)
	if err := c.Run(pool.Do, pool.Wait, discard); err != nil {
		t.Fatalf("Run: %v", err)
	}

	opaque := loadPNG(t, filepath.Join(dir, "out", "opaque.png"))
	if opaque.Format() != gfx.RGB || opaque.Width() != 4 || opaque.Height() != 2 {
		t.Errorf("opaque.png: %s %dx%d", opaque.Format(), opaque.Width(), opaque.Height())
	}
	if got := opaque.Pix()[3:6]; !bytes.Equal(got, []byte{8, 0x10, 0x20}) {
		t.Errorf("opaque.png pixel 1 = %v", got)
	}

	alpha := loadPNG(t, filepath.Join(dir, "out", "alpha.png"))
	if alpha.Format() != gfx.RGBA {
		t.Errorf("alpha.png: %s", alpha.Format())
	}
	if got := alpha.Pix()[12:16]; !bytes.Equal(got, []byte{24, 0x10, 0x20, 0x40}) {
		t.Errorf("alpha.png pixel 3 = %v", got)
	}

	entries, err := os.ReadDir(filepath.Join(dir, "out"))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Errorf("output folder holds %d files, want 2", len(entries))
	}
}

func TestRunReportsErrors(t *testing.T) {
	dir := t.TempDir()
	writeIndexedPNG(t, filepath.Join(dir, "good.png"), 0xff)
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}

	c := newCmd(t, dir)
	pool := parallel.Start(1, discard)
	if err := c.Run(pool.Do, pool.Wait, discard); err == nil {
		t.Error("Run succeeded with an unreadable file")
	}
	if _, err := os.Stat(filepath.Join(dir, "out", "good.png")); err != nil {
		t.Errorf("good file not converted: %v", err)
	}
}

func TestRunBMP(t *testing.T) {
	dir := t.TempDir()
	writeIndexedPNG(t, filepath.Join(dir, "sprite.png"), 0xff)

	c := &CLICmd{Scan: dir, Dest: "bmp", Format: "bmp", Expand: "none"}
	if err := c.Validate(nil); err != nil {
		t.Fatal(err)
	}
	pool := parallel.Start(1, discard)
	if err := c.Run(pool.Do, pool.Wait, discard); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "bmp", "sprite.bmp")); err != nil {
		t.Errorf("no BMP output: %v", err)
	}
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	tests := map[string]*CLICmd{
		"missing scan": {Scan: filepath.Join(dir, "nope"), Dest: "out", Expand: "auto"},
		"scan is file": {Scan: file, Dest: "out", Expand: "auto"},
		"remap alone":  {Scan: dir, Dest: "out", Expand: "auto", Remap: true},
		"bad bank":     {Scan: dir, Dest: "out", Expand: "auto", Bank: -1},
		"bad palette":  {Scan: dir, Dest: "out", Expand: "auto", Palette: file},
	}
	for name, c := range tests {
		if err := c.Validate(nil); err == nil {
			t.Errorf("%s: Validate succeeded", name)
		}
	}

	c := &CLICmd{Scan: dir, Dest: "out", Expand: "rgba"}
	if err := c.Validate(nil); err != nil {
		t.Fatal(err)
	}
	if c.Dest != filepath.Join(dir, "out") || c.ExpandTo != gfx.RGBA {
		t.Errorf("Dest %q, ExpandTo %s", c.Dest, c.ExpandTo)
	}
}

func TestProcess(t *testing.T) {
	dir := t.TempDir()
	palFile := filepath.Join(dir, "swap.pal")
	swap, err := gfx.NewPalette([]byte{200, 201, 202, 100, 101, 102}, gfx.RGB, 0xff, 2)
	if err != nil {
		t.Fatal(err)
	}
	f, err := os.Create(palFile)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := palette.WriteTo(f, []*gfx.Palette{swap}); err != nil {
		t.Fatal(err)
	}
	f.Close()

	newIndexed := func() *gfx.Image {
		img := gfx.NewImage(2, 1, gfx.Index8)
		pal, _ := gfx.NewPalette([]byte{1, 1, 1, 0xff, 2, 2, 2, 0x80}, gfx.RGBA, 0xff, 2)
		_ = img.SetPalette(pal)
		copy(img.Pix(), []byte{1, 0})
		return img
	}

	t.Run("swap then expand", func(t *testing.T) {
		c := &CLICmd{Scan: dir, Dest: "out", Format: "png", Expand: "auto", Palette: palFile}
		if err := c.Validate(nil); err != nil {
			t.Fatal(err)
		}
		img, err := c.process(discard, newIndexed())
		if err != nil {
			t.Fatal(err)
		}
		want := []byte{100, 101, 102, 0x80, 200, 201, 202, 0xff}
		if img.Format() != gfx.RGBA || !bytes.Equal(img.Pix(), want) {
			t.Errorf("got %s %v, want %v", img.Format(), img.Pix(), want)
		}
	})

	t.Run("keep indexed", func(t *testing.T) {
		c := &CLICmd{Format: "bmp", Expand: "auto"}
		img, err := c.process(discard, newIndexed())
		if err != nil {
			t.Fatal(err)
		}
		if !img.IsIndexed() {
			t.Errorf("format = %s, want index8", img.Format())
		}
	})

	t.Run("remap", func(t *testing.T) {
		c := &CLICmd{Format: "png", Expand: "none", Remap: true, SwapPalette: swap}
		src := gfx.NewImage(2, 1, gfx.RGB)
		copy(src.Pix(), []byte{100, 100, 100, 200, 200, 200})
		img, err := c.process(discard, src)
		if err != nil {
			t.Fatal(err)
		}
		if !img.IsIndexed() || !bytes.Equal(img.Pix(), []byte{1, 0}) {
			t.Errorf("got %s %v", img.Format(), img.Pix())
		}
	})

	t.Run("bank out of range", func(t *testing.T) {
		c := &CLICmd{Format: "png", Expand: "auto", Bank: 1}
		if _, err := c.process(discard, newIndexed()); err == nil {
			t.Error("bank 1 accepted on a 2-entry palette")
		}
	})
}
