package imagery

import (
	"fmt"
	"image"
	"image/jpeg"
	"os"
)

// jpegQuality matches the export quality the reference CSVs were
// calibrated against.
const jpegQuality = 95

// SaveJPEG writes an image to path. Output I/O failures are fatal to the
// run, so errors here are returned wrapped rather than logged.
func SaveJPEG(path string, img image.Image) (err error) {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() {
		if cErr := out.Close(); cErr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", path, cErr)
		}
	}()

	if err = jpeg.Encode(out, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return nil
}
