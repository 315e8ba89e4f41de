package convert

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"pngbridge/gfx"
)

func load(registry *gfx.Registry, name string) (*gfx.Image, string, error) {
	inFile, err := os.Open(name)
	if err != nil {
		return nil, "", fmt.Errorf("could not open source file %q: %w", name, err)
	}
	defer func() {
		if close_err := inFile.Close(); close_err != nil {
			slog.Error("could not close source file", "name", name, "error", close_err)
		}
	}()

	return registry.Load(bufio.NewReader(inFile))
}

// save writes img next to its final name and renames it into place once
// the codec succeeded.
func save(codec gfx.Codec, img *gfx.Image, destDir, srcName string) (err error) {
	oldExt := filepath.Ext(srcName)
	destName := fmt.Sprintf("%s.%s", srcName[:len(srcName)-len(oldExt)], codec.Mimetype())

	outFile, err := os.CreateTemp(destDir, destName)
	if err != nil {
		return fmt.Errorf("could not create temporary destination %q: %w", destName, err)
	}
	canRename := false
	defer func() {
		if defErr := outFile.Sync(); defErr != nil && err == nil {
			err = fmt.Errorf("could not flush temporary destination %q: %w", destName, defErr)
		}
		if defErr := outFile.Close(); defErr != nil && err == nil {
			err = fmt.Errorf("could not close temporary destination %q: %w", destName, defErr)
		}

		if canRename && err == nil {
			if defErr := os.Rename(outFile.Name(), filepath.Join(destDir, destName)); defErr != nil {
				err = fmt.Errorf("could not rename destination file %q: %w", destName, defErr)
			}
		} else if defErr := os.Remove(outFile.Name()); defErr != nil {
			slog.Error("could not remove temporary destination", "name", outFile.Name(), "error", defErr)
		}
	}()

	w := bufio.NewWriter(outFile)
	if err = codec.Save(w, img); err != nil {
		return fmt.Errorf("could not encode %s destination %q: %w", codec.Mimetype(), destName, err)
	}
	// The PNG codec flushes on its own; the adapters do not.
	if err = w.Flush(); err != nil {
		return fmt.Errorf("could not flush %s destination %q: %w", codec.Mimetype(), destName, err)
	}

	canRename = true
	return nil
}
