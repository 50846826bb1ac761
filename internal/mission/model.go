package mission

// Role is a logical camera position on the vehicle (e.g. "down", "forward").
// Roles name output directories and reference tables, so they must be
// stable across runs of the same mission configuration.
type Role string

// Encoding describes how an image payload is stored in the mission log.
type Encoding string

const (
	// EncodingRaw is an uncompressed frame: a RawImage header followed by
	// packed pixel data.
	EncodingRaw Encoding = "raw"

	// EncodingCompressed is a self-describing PNG or JPEG byte stream.
	EncodingCompressed Encoding = "compressed"
)

// Kind identifies the decoded type of a log message.
type Kind int

const (
	KindPose Kind = iota
	KindImage
)

// PoseSample is a single vehicle position/attitude record. Timestamps are
// monotonic seconds; angles are degrees with heading in [0, 360); depth is
// metres positive-down.
type PoseSample struct {
	Timestamp    float64 // Seconds since the log epoch
	Longitude    float64 // WGS84 degrees
	Latitude     float64 // WGS84 degrees
	Depth        float64 // Metres, positive-down
	Heading      float64 // Compass degrees [0, 360), 0 = north, clockwise
	Pitch        float64 // Degrees
	Roll         float64 // Degrees
	AltitudeUsed float64 // DVL altitude above seafloor, metres
}

// ImageSample is one camera frame as recorded. The payload stays opaque
// until the pipeline decodes it; an ImageSample is consumed exactly once.
type ImageSample struct {
	Timestamp float64
	Role      Role
	Encoding  Encoding
	Payload   []byte
}

// Record is one decoded mission-log message. Exactly one of Pose or Image
// is set, according to Kind.
type Record struct {
	Kind  Kind
	Pose  *PoseSample
	Image *ImageSample
}
