package imagery

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"path/filepath"
	"testing"

	"github.com/auvtools/georef/internal/mission"
)

func rawSample(t *testing.T, raw mission.RawImage) mission.ImageSample {
	t.Helper()
	payload, err := mission.EncodeRawImage(raw)
	if err != nil {
		t.Fatalf("encoding raw image: %v", err)
	}
	return mission.ImageSample{Role: "down", Encoding: mission.EncodingRaw, Payload: payload}
}

func TestDecode_Mono8(t *testing.T) {
	sample := rawSample(t, mission.RawImage{
		Width:  2,
		Height: 1,
		Format: mission.PixelMono8,
		Pix:    []byte{0x00, 0xff},
	})

	img, err := Decode(sample)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	r0, g0, b0, _ := img.At(0, 0).RGBA()
	if r0 != 0 || g0 != 0 || b0 != 0 {
		t.Errorf("pixel (0,0): got (%d,%d,%d), want black", r0, g0, b0)
	}
	r1, g1, b1, _ := img.At(1, 0).RGBA()
	if r1 != 0xffff || g1 != 0xffff || b1 != 0xffff {
		t.Errorf("pixel (1,0): got (%d,%d,%d), want white", r1, g1, b1)
	}
}

func TestDecode_BGR8SwapsChannels(t *testing.T) {
	// One blue pixel stored as BGR.
	sample := rawSample(t, mission.RawImage{
		Width:  1,
		Height: 1,
		Format: mission.PixelBGR8,
		Pix:    []byte{0xff, 0x00, 0x00},
	})

	img, err := Decode(sample)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	r, g, b, _ := img.At(0, 0).RGBA()
	if r != 0 || g != 0 || b != 0xffff {
		t.Errorf("pixel: got (%d,%d,%d), want pure blue", r, g, b)
	}
}

func TestDecode_Compressed(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 3, 2))
	var buf bytes.Buffer
	if err := png.Encode(&buf, src); err != nil {
		t.Fatalf("encoding fixture: %v", err)
	}

	img, err := Decode(mission.ImageSample{
		Role:     "forward",
		Encoding: mission.EncodingCompressed,
		Payload:  buf.Bytes(),
	})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if img.Bounds().Dx() != 3 || img.Bounds().Dy() != 2 {
		t.Errorf("bounds: got %v, want 3x2", img.Bounds())
	}
}

func TestDecode_BadPayloadIsDecodeError(t *testing.T) {
	cases := []struct {
		name   string
		sample mission.ImageSample
	}{
		{"truncated raw header", mission.ImageSample{Role: "down", Encoding: mission.EncodingRaw, Payload: []byte{1, 2, 3}}},
		{"garbage compressed", mission.ImageSample{Role: "down", Encoding: mission.EncodingCompressed, Payload: []byte("not an image")}},
		{"unknown encoding", mission.ImageSample{Role: "down", Encoding: "avif", Payload: nil}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode(tc.sample)
			var decodeErr *DecodeError
			if !errors.As(err, &decodeErr) {
				t.Fatalf("got %v, want *DecodeError", err)
			}
			if decodeErr.Role != "down" {
				t.Errorf("role: got %q, want down", decodeErr.Role)
			}
		})
	}
}

func TestSaveJPEG(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	path := filepath.Join(t.TempDir(), "frame_0000.jpg")

	if err := SaveJPEG(path, img); err != nil {
		t.Fatalf("SaveJPEG: %v", err)
	}
}
