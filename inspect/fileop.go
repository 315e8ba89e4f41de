package inspect

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"pngbridge/gfx"
	"pngbridge/palette"
	"pngbridge/png"
)

// inspectFile loads name when it starts with the PNG signature. The
// second result is false for files of any other format.
func inspectFile(codec png.Codec, name string) (*gfx.Image, bool, error) {
	inFile, err := os.Open(name)
	if err != nil {
		return nil, true, fmt.Errorf("could not open source file %q: %w", name, err)
	}
	defer func() {
		if close_err := inFile.Close(); close_err != nil {
			slog.Error("could not close source file", "name", name, "error", close_err)
		}
	}()

	br := bufio.NewReader(inFile)
	if !codec.Detect(br) {
		return nil, false, nil
	}
	img, err := codec.Load(br)
	return img, true, err
}

func exportPalette(pal *gfx.Palette, destDir, srcName string) error {
	dest := filepath.Join(destDir, srcName[:len(srcName)-len(filepath.Ext(srcName))]+".pal")
	slog.Info("exporting palette", "to", dest, "colors", pal.Count())

	outFile, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("could not open destination file %q: %w", dest, err)
	}
	defer func() {
		if close_err := outFile.Close(); close_err != nil {
			slog.Error("could not close destination file", "name", dest, "error", close_err)
		}
	}()

	if _, err = palette.WriteTo(outFile, []*gfx.Palette{pal}); err != nil {
		return fmt.Errorf("could not write palette to %q: %w", dest, err)
	}

	if err = outFile.Sync(); err != nil {
		return fmt.Errorf("could not flush destination file %q: %w", dest, err)
	}
	return nil
}
