package inspect

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"pngbridge/gfx"
	"pngbridge/png"

	"github.com/alecthomas/kong"
	"github.com/google/uuid"
)

type CLICmd struct {
	Scan        string `help:"Source folder to scan" default:"."`
	OnlyOffsets bool   `help:"Only report images carrying non-zero offsets" default:"false"`
	Palettes    string `help:"Folder to export the palette of indexed images to, as RIFF PAL files. Relative to scan dir if not absolute."`
}

func (c *CLICmd) Validate(kctx *kong.Context) error {
	scanDir, err := filepath.Abs(c.Scan)
	var info os.FileInfo
	if err == nil {
		if info, err = os.Stat(scanDir); err == nil && !info.IsDir() {
			err = fmt.Errorf("not a directory")
		}
	}
	if err != nil {
		return fmt.Errorf("invalid scan path %q: %w", c.Scan, err)
	}
	c.Scan = scanDir

	if c.Palettes != "" && !filepath.IsAbs(c.Palettes) {
		c.Palettes = filepath.Join(scanDir, c.Palettes)
	}

	return nil
}

func (c *CLICmd) Run(logger *slog.Logger) error {
	if c.Palettes != "" {
		if err := os.MkdirAll(c.Palettes, 0o755); err != nil {
			return fmt.Errorf("unable to create palette folder %q: %w", c.Palettes, err)
		}
	}

	files, err := os.ReadDir(c.Scan)
	if err != nil {
		return fmt.Errorf("unable to read folder %q: %w", c.Scan, err)
	}

	logger = logger.With("run", uuid.NewString())
	codec := png.New()
	var pngCount, skipCount, errCount int
	for _, file := range files {
		if file.IsDir() {
			continue
		}

		name := filepath.Join(c.Scan, file.Name())
		log := logger.With("file", name)
		img, isPNG, err := inspectFile(codec, name)
		if !isPNG {
			skipCount++
			log.Debug("not a PNG file")
			continue
		}
		if err != nil {
			errCount++
			log.Error("could not read image", "error", err)
			continue
		}
		pngCount++

		off := img.Offsets()
		if c.OnlyOffsets && off == (gfx.Offsets{}) {
			continue
		}

		attrs := []any{
			"width", img.Width(),
			"height", img.Height(),
			"format", img.Format(),
			"x", off.X,
			"y", off.Y,
		}
		if pal := img.Palette(); pal != nil {
			attrs = append(attrs, "colors", pal.Count(), "alpha", pal.HasAlpha())
		}
		log.Info("image", attrs...)

		if c.Palettes != "" && img.IsIndexed() {
			if err = exportPalette(img.Palette(), c.Palettes, file.Name()); err != nil {
				errCount++
				log.Error("could not export palette", "error", err)
			}
		}
	}

	logger.Info("stats", "png", pngCount, "skipped", skipCount, "errors", errCount, "total",
		pngCount+skipCount+errCount)

	if errCount > 0 {
		return fmt.Errorf("error processing %d files", errCount)
	}
	return nil
}
