package mission

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Pose payloads are a fixed 56-byte little-endian frame of seven float64
// fields. The message timestamp lives on the log row, not in the payload.
const posePayloadSize = 7 * 8

// Pixel formats carried in the RawImage header.
const (
	PixelMono8 uint32 = iota + 1
	PixelRGB8
	PixelBGR8
	PixelBGRA8
)

// rawHeaderSize is the fixed raw-image header: width, height, pixel
// format and a reserved word, all uint32 little-endian.
const rawHeaderSize = 4 * 4

// RawImage is a decoded uncompressed frame payload.
type RawImage struct {
	Width  int
	Height int
	Format uint32
	Pix    []byte
}

// EncodePose serializes a pose sample payload. Field order is longitude,
// latitude, depth, heading, pitch, roll, altitudeUsed.
func EncodePose(p PoseSample) []byte {
	buf := make([]byte, posePayloadSize)
	fields := [7]float64{p.Longitude, p.Latitude, p.Depth, p.Heading, p.Pitch, p.Roll, p.AltitudeUsed}
	for i, f := range fields {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(f))
	}
	return buf
}

// DecodePose parses a pose payload. The caller supplies the row timestamp.
func DecodePose(timestamp float64, payload []byte) (PoseSample, error) {
	if len(payload) != posePayloadSize {
		return PoseSample{}, fmt.Errorf("pose payload is %d bytes, want %d", len(payload), posePayloadSize)
	}

	var fields [7]float64
	for i := range fields {
		fields[i] = math.Float64frombits(binary.LittleEndian.Uint64(payload[i*8:]))
	}

	return PoseSample{
		Timestamp:    timestamp,
		Longitude:    fields[0],
		Latitude:     fields[1],
		Depth:        fields[2],
		Heading:      fields[3],
		Pitch:        fields[4],
		Roll:         fields[5],
		AltitudeUsed: fields[6],
	}, nil
}

// EncodeRawImage serializes an uncompressed frame payload.
func EncodeRawImage(img RawImage) ([]byte, error) {
	if img.Width <= 0 || img.Height <= 0 {
		return nil, fmt.Errorf("invalid raw image dimensions %dx%d", img.Width, img.Height)
	}
	channels, err := pixelChannels(img.Format)
	if err != nil {
		return nil, err
	}
	if want := img.Width * img.Height * channels; len(img.Pix) != want {
		return nil, fmt.Errorf("raw image pixel data is %d bytes, want %d", len(img.Pix), want)
	}

	buf := make([]byte, rawHeaderSize+len(img.Pix))
	binary.LittleEndian.PutUint32(buf[0:], uint32(img.Width))
	binary.LittleEndian.PutUint32(buf[4:], uint32(img.Height))
	binary.LittleEndian.PutUint32(buf[8:], img.Format)
	copy(buf[rawHeaderSize:], img.Pix)
	return buf, nil
}

// DecodeRawImage parses an uncompressed frame payload and validates that
// the pixel data matches the advertised geometry.
func DecodeRawImage(payload []byte) (RawImage, error) {
	if len(payload) < rawHeaderSize {
		return RawImage{}, fmt.Errorf("raw image payload is %d bytes, shorter than the %d-byte header", len(payload), rawHeaderSize)
	}

	img := RawImage{
		Width:  int(binary.LittleEndian.Uint32(payload[0:])),
		Height: int(binary.LittleEndian.Uint32(payload[4:])),
		Format: binary.LittleEndian.Uint32(payload[8:]),
		Pix:    payload[rawHeaderSize:],
	}
	if img.Width <= 0 || img.Height <= 0 {
		return RawImage{}, fmt.Errorf("invalid raw image dimensions %dx%d", img.Width, img.Height)
	}

	channels, err := pixelChannels(img.Format)
	if err != nil {
		return RawImage{}, err
	}
	if want := img.Width * img.Height * channels; len(img.Pix) != want {
		return RawImage{}, fmt.Errorf("raw image pixel data is %d bytes, want %d for %dx%d", len(img.Pix), want, img.Width, img.Height)
	}
	return img, nil
}

func pixelChannels(format uint32) (int, error) {
	switch format {
	case PixelMono8:
		return 1, nil
	case PixelRGB8, PixelBGR8:
		return 3, nil
	case PixelBGRA8:
		return 4, nil
	default:
		return 0, fmt.Errorf("unknown pixel format %d", format)
	}
}
