// Package imagery decodes recorded camera payloads and persists them as
// JPEG files for photogrammetry import.
package imagery

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/auvtools/georef/internal/mission"
)

// DecodeError marks a single undecodable frame. One bad frame is isolated:
// the pipeline logs it and moves on, it never aborts the run.
type DecodeError struct {
	Role mission.Role
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding %s frame: %s", e.Role, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Decode turns an image sample into a drawable image. Raw payloads carry a
// geometry header and packed mono8/rgb8/bgr8/bgra8 pixels; compressed
// payloads are self-describing PNG or JPEG streams.
func Decode(sample mission.ImageSample) (image.Image, error) {
	switch sample.Encoding {
	case mission.EncodingRaw:
		raw, err := mission.DecodeRawImage(sample.Payload)
		if err != nil {
			return nil, &DecodeError{Role: sample.Role, Err: err}
		}
		img, err := fromRaw(raw)
		if err != nil {
			return nil, &DecodeError{Role: sample.Role, Err: err}
		}
		return img, nil

	case mission.EncodingCompressed:
		img, _, err := image.Decode(bytes.NewReader(sample.Payload))
		if err != nil {
			return nil, &DecodeError{Role: sample.Role, Err: err}
		}
		return img, nil

	default:
		return nil, &DecodeError{Role: sample.Role, Err: fmt.Errorf("unknown encoding %q", sample.Encoding)}
	}
}

func fromRaw(raw mission.RawImage) (*image.RGBA, error) {
	img := image.NewRGBA(image.Rect(0, 0, raw.Width, raw.Height))

	switch raw.Format {
	case mission.PixelMono8:
		for i, v := range raw.Pix {
			o := i * 4
			img.Pix[o] = v
			img.Pix[o+1] = v
			img.Pix[o+2] = v
			img.Pix[o+3] = 0xff
		}

	case mission.PixelRGB8:
		for i := 0; i < len(raw.Pix); i += 3 {
			o := i / 3 * 4
			img.Pix[o] = raw.Pix[i]
			img.Pix[o+1] = raw.Pix[i+1]
			img.Pix[o+2] = raw.Pix[i+2]
			img.Pix[o+3] = 0xff
		}

	case mission.PixelBGR8:
		for i := 0; i < len(raw.Pix); i += 3 {
			o := i / 3 * 4
			img.Pix[o] = raw.Pix[i+2]
			img.Pix[o+1] = raw.Pix[i+1]
			img.Pix[o+2] = raw.Pix[i]
			img.Pix[o+3] = 0xff
		}

	case mission.PixelBGRA8:
		for i := 0; i < len(raw.Pix); i += 4 {
			img.Pix[i] = raw.Pix[i+2]
			img.Pix[i+1] = raw.Pix[i+1]
			img.Pix[i+2] = raw.Pix[i]
			img.Pix[i+3] = raw.Pix[i+3]
		}

	default:
		return nil, fmt.Errorf("unknown pixel format %d", raw.Format)
	}

	return img, nil
}
