package convert

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	"pngbridge/formats"
	"pngbridge/gfx"
	"pngbridge/palette"
	"pngbridge/parallel"

	"github.com/alecthomas/kong"
	"github.com/google/uuid"
)

type CLICmd struct {
	Scan    string  `help:"Source folder to scan" default:"."`
	Dest    string  `help:"Destination folder for converted pictures. Relative to scan dir if not absolute." default:"converted"`
	Format  string  `help:"Output format" enum:"png,bmp,tiff" default:"png"`
	Expand  string  `help:"Expand indexed images before saving. 'auto' expands only when the output format cannot hold them." enum:"auto,none,rgb,rgba" default:"auto"`
	Palette string  `help:"PAL file in RIFF format whose colors replace the image palette, or are mapped onto with --remap" group:"palette"`
	Bank    int     `help:"16-color palette bank moved to the front of the palette" default:"0" group:"palette"`
	Gamma   float64 `help:"Palette gamma level, 0 leaves colors unchanged" default:"0" group:"palette"`
	Remap   bool    `help:"Map true-color images onto --palette" default:"false" group:"palette"`
	Dither  bool    `help:"Apply dithering when remapping" default:"false" group:"palette"`

	SwapPalette *gfx.Palette    `kong:"-"`
	ExpandTo    gfx.PixelFormat `kong:"-"`
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

	if !filepath.IsAbs(c.Dest) {
		c.Dest = filepath.Join(scanDir, c.Dest)
	}

	switch c.Expand {
	case "rgb":
		c.ExpandTo = gfx.RGB
	case "rgba":
		c.ExpandTo = gfx.RGBA
	}

	if c.Bank < 0 {
		return fmt.Errorf("invalid palette bank: %d", c.Bank)
	}

	if c.Remap && c.Palette == "" {
		return fmt.Errorf("--remap needs a --palette")
	}
	if c.Palette != "" {
		if c.SwapPalette, err = palette.Load(c.Palette); err != nil {
			return err
		}
	}

	return nil
}

func (c *CLICmd) Run(worker parallel.WorkerFunc, wait parallel.WaitFunc, logger *slog.Logger) error {
	if err := os.MkdirAll(c.Dest, 0o755); err != nil {
		return fmt.Errorf("unable to create destination folder %q: %w", c.Dest, err)
	}

	files, err := os.ReadDir(c.Scan)
	if err != nil {
		return fmt.Errorf("unable to read folder %q: %w", c.Scan, err)
	}

	registry := formats.New()
	out, ok := registry.Lookup(c.Format)
	if !ok {
		return fmt.Errorf("unsupported output format: %s", c.Format)
	}

	logger = logger.With("run", uuid.NewString())
	var processedCount, errCount atomic.Uint64
	for _, file := range files {
		if file.IsDir() {
			continue
		}

		worker(func(fileName string) func() {
			return func() {
				filePath := filepath.Join(c.Scan, fileName)
				log := logger.With("file", filePath)

				img, imgType, err := load(registry, filePath)
				if err != nil {
					errCount.Add(1)
					log.Error("could not load image", "error", err)
					return
				}
				log.Debug("loaded", "type", imgType, "format", img.Format(),
					"width", img.Width(), "height", img.Height())

				if img, err = c.process(log, img); err != nil {
					errCount.Add(1)
					log.Error("could not process image", "error", err)
					return
				}

				if err = save(out, img, c.Dest, fileName); err != nil {
					errCount.Add(1)
					log.Error("could not save image", "dir", c.Dest, "error", err)
					return
				}
				processedCount.Add(1)
			}
		}(file.Name()))
	}

	wait(true)

	processed := processedCount.Load()
	errors := errCount.Load()
	logger.Info("stats", "processed", processed, "errors", errors,
		"total", processed+errors)

	if errors > 0 {
		return fmt.Errorf("error processing %d files", errors)
	}
	return nil
}

// process applies the palette options, then the expansion the output
// format needs.
func (c *CLICmd) process(logger *slog.Logger, img *gfx.Image) (*gfx.Image, error) {
	var err error
	if c.SwapPalette != nil {
		if c.Remap && !img.IsIndexed() {
			if img, err = palette.Remap(logger, img, c.SwapPalette, c.Dither); err != nil {
				return nil, err
			}
		} else if img.IsIndexed() {
			if err = palette.Swap(img, c.SwapPalette); err != nil {
				return nil, err
			}
		}
	}

	if img.IsIndexed() {
		if c.Bank > 0 {
			if err = palette.SelectBank(img, c.Bank); err != nil {
				return nil, err
			}
		}
		palette.Gamma(img.Palette(), c.Gamma)
	}

	to := c.ExpandTo
	if c.Expand == "auto" && c.Format == "png" && img.IsIndexed() {
		to = gfx.RGB
		if img.Palette().HasAlpha() {
			to = gfx.RGBA
		}
	}
	if to != gfx.None && img.IsIndexed() {
		logger.Debug("expanding indexed image", "to", to)
		if err = img.Convert(to); err != nil {
			return nil, err
		}
	}
	return img, nil
}
