package trackmap

import (
	"fmt"
	"image"
	"image/png"
	"os"
)

// MapFilename is the mission map output name within the run directory.
const MapFilename = "mission_map.png"

// WritePNG persists a rendered map.
func WritePNG(path string, img image.Image) (err error) {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() {
		if cErr := out.Close(); cErr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", path, cErr)
		}
	}()

	if err = png.Encode(out, img); err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return nil
}
